package engine

// Sink is the engine's output boundary (§6). An engine writes exactly
// byte_buffer_size bytes to its Sink once per block, in the PCM format
// described in §6 (interleaved 16-bit signed little-endian, channel 0
// first within each frame). Close flushes and releases any underlying
// resource; it is called exactly once, when the engine's audio thread
// exits.
type Sink interface {
	WriteBlock(pcm []byte) error
	Close() error
}
