//go:build headless

package engine

// NewRealtimeSink in headless builds discards audio instead of
// opening a real device, grounded on the teacher pack's own headless
// audio backend (IntuitionAmiga-IntuitionEngine/audio_backend_headless.go).
// Useful for CI and for engines whose only job is rendering to disk.
func NewRealtimeSink(sampleRate, nchnls, blockSize uint32) (Sink, error) {
	return &headlessSink{}, nil
}

type headlessSink struct{}

func (headlessSink) WriteBlock(pcm []byte) error { return nil }
func (headlessSink) Close() error                { return nil }
