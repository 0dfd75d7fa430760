package engine

import "encoding/binary"

// outputBus is the per-engine accumulating multi-channel sample
// buffer. It owns two preallocated slices — the float mixing buffer
// and the quantised byte buffer handed to the sink — both reused every
// block so the hot path never allocates, mirroring the teacher's
// preallocated sampleBuf in the realtime sink (audio_backend_oto.go).
type outputBus struct {
	nchnls    uint32
	blockSize uint32
	floats    []float64
	bytes     []byte
}

func newOutputBus(nchnls, blockSize uint32) *outputBus {
	outSize := int(blockSize) * int(nchnls)
	return &outputBus{
		nchnls:    nchnls,
		blockSize: blockSize,
		floats:    make([]float64, outSize),
		bytes:     make([]byte, 2*outSize),
	}
}

func (b *outputBus) zero() {
	for i := range b.floats {
		b.floats[i] = 0
	}
}

// mix sums a single generator's output into the bus per §4.3: a Mono
// buffer is summed into channel 0 with stride nchnls (stride 1 when
// nchnls == 1); a Multi buffer must supply exactly nchnls channels,
// each summed into its own channel.
func (b *outputBus) mix(out GenOutput) {
	switch out.Kind {
	case GenMono:
		if b.nchnls == 1 {
			for i, s := range out.Mono {
				if i >= len(b.floats) {
					break
				}
				b.floats[i] += s
			}
			return
		}
		stride := int(b.nchnls)
		for i, s := range out.Mono {
			idx := i * stride
			if idx >= len(b.floats) {
				break
			}
			b.floats[idx] += s
		}
	case GenMulti:
		n := len(out.Multi)
		if uint32(n) != b.nchnls {
			return
		}
		stride := int(b.nchnls)
		for ch, buf := range out.Multi {
			for i, s := range buf {
				idx := i*stride + ch
				if idx >= len(b.floats) {
					break
				}
				b.floats[idx] += s
			}
		}
	}
}

// quantise converts the float mixing buffer to little-endian 16-bit
// signed PCM, saturating at ±1.0, and returns the reused byte buffer.
func (b *outputBus) quantise() []byte {
	for i, x := range b.floats {
		s := quantiseSample(x)
		binary.LittleEndian.PutUint16(b.bytes[2*i:], uint16(s))
	}
	return b.bytes
}

// quantiseSample converts x to int16 as x * 32767 truncated toward
// zero (0.5 -> 16383). Values at or above 1.0 saturate to 32767 and
// values at or below -1.0 saturate to -32768, the int16 extremes.
func quantiseSample(x float64) int16 {
	switch {
	case x >= 1.0:
		return 32767
	case x <= -1.0:
		return -32768
	default:
		return int16(x * 32767)
	}
}
