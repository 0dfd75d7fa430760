package engine

// fakeSink hands each written block to a channel, giving tests a
// deterministic, hardware-free way to observe exactly what the engine
// loop wrote, block by block. A blocking send (the channel's buffer
// depth is the only backpressure) stands in for whatever pacing a
// real sink would apply; the engine contract never assumes more than
// that the sink write may block (§5 Suspension points).
type fakeSink struct {
	blocks chan []byte
	closed chan struct{}
}

func newFakeSink(buffer int) *fakeSink {
	return &fakeSink{
		blocks: make(chan []byte, buffer),
		closed: make(chan struct{}),
	}
}

func (f *fakeSink) WriteBlock(pcm []byte) error {
	cp := make([]byte, len(pcm))
	copy(cp, pcm)
	f.blocks <- cp
	return nil
}

func (f *fakeSink) Close() error {
	close(f.closed)
	return nil
}
