//go:build !headless

package engine

import (
	"encoding/binary"
	"fmt"

	"github.com/gordonklaus/portaudio"
)

// realtimeSink is the §6 realtime audio sink: it opens a blocking
// output stream at (sample_rate, 16-bit signed, nchnls) and writes
// exactly byte_buffer_size bytes per block, converting the engine's
// little-endian PCM bytes into the int16 frame buffer bound to the
// stream at open time.
//
// Grounded on gordonklaus/portaudio's blocking I/O mode (the same
// package SynteLang-SynteLang depends on) rather than a callback
// stream: a callback stream would invert control away from the
// engine loop, which already owns exactly when a block is ready.
type realtimeSink struct {
	stream *portaudio.Stream
	frames []int16
}

// NewRealtimeSink opens a default output stream for nchnls channels
// at sampleRate, sized to deliver blockSize frames per Write.
func NewRealtimeSink(sampleRate, nchnls, blockSize uint32) (Sink, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, fmt.Errorf("beatengine: portaudio init: %w", err)
	}
	frames := make([]int16, int(blockSize)*int(nchnls))
	stream, err := portaudio.OpenDefaultStream(0, int(nchnls), float64(sampleRate), int(blockSize), frames)
	if err != nil {
		portaudio.Terminate()
		return nil, fmt.Errorf("beatengine: open stream: %w", err)
	}
	if err := stream.Start(); err != nil {
		stream.Close()
		portaudio.Terminate()
		return nil, fmt.Errorf("beatengine: start stream: %w", err)
	}
	return &realtimeSink{stream: stream, frames: frames}, nil
}

func (s *realtimeSink) WriteBlock(pcm []byte) error {
	for i := range s.frames {
		s.frames[i] = int16(binary.LittleEndian.Uint16(pcm[2*i:]))
	}
	return s.stream.Write()
}

func (s *realtimeSink) Close() error {
	err := s.stream.Stop()
	if cerr := s.stream.Close(); err == nil {
		err = cerr
	}
	if terr := portaudio.Terminate(); err == nil {
		err = terr
	}
	return err
}
