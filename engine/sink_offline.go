package engine

import (
	"bytes"
	"fmt"
	"os"

	wav "github.com/youpy/go-wav"
)

// offlineSink is the §6 offline sink: it accumulates every block's
// PCM bytes into an in-memory buffer and, on Close, emits a WAV file
// whose header matches the engine configuration — grounded on the
// youpy/go-wav writer the pack already reaches for when round-tripping
// PCM to disk (other_examples/mrdg-vibe__audio.go uses the reader
// half of the same package).
type offlineSink struct {
	path       string
	sampleRate uint32
	nchnls     uint32
	buf        bytes.Buffer
}

// NewOfflineSink returns a Sink that writes a WAV file to path once
// Close is called.
func NewOfflineSink(path string, sampleRate, nchnls uint32) Sink {
	return &offlineSink{path: path, sampleRate: sampleRate, nchnls: nchnls}
}

func (s *offlineSink) WriteBlock(pcm []byte) error {
	_, err := s.buf.Write(pcm)
	return err
}

func (s *offlineSink) Close() error {
	f, err := os.Create(s.path)
	if err != nil {
		return fmt.Errorf("beatengine: create %s: %w", s.path, err)
	}
	defer f.Close()

	const bitsPerSample = 16
	bytesPerFrame := int(s.nchnls) * (bitsPerSample / 8)
	frames := uint32(0)
	if bytesPerFrame > 0 {
		frames = uint32(s.buf.Len() / bytesPerFrame)
	}

	w := wav.NewWriter(f, frames, uint16(s.nchnls), uint32(s.sampleRate), bitsPerSample)
	_, err = w.Write(s.buf.Bytes())
	return err
}
