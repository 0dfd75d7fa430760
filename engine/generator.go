package engine

// GenKind tags the variant carried by a GenOutput.
type GenKind int

const (
	// GenMono carries one channel's worth of samples, summed into
	// channel 0 of the output bus (or every channel, when Nchnls == 1).
	GenMono GenKind = iota
	// GenMulti carries exactly Nchnls channel buffers, in channel order.
	GenMulti
	// GenDone signals that the generator is finished; it is removed
	// from the active set and never polled again.
	GenDone
)

// GenOutput is the tagged return value of Generator.Pull. Exactly one
// of Mono or Multi is meaningful, selected by Kind.
type GenOutput struct {
	Kind  GenKind
	Mono  []float64
	Multi [][]float64
}

// Mono wraps a single-channel buffer of length BlockCtx.BlockSize.
func Mono(buf []float64) GenOutput { return GenOutput{Kind: GenMono, Mono: buf} }

// Multi wraps an ordered tuple of exactly Nchnls channel buffers.
func Multi(bufs [][]float64) GenOutput { return GenOutput{Kind: GenMulti, Multi: bufs} }

// Done is the sentinel returned by a generator that has nothing more
// to produce.
func Done() GenOutput { return GenOutput{Kind: GenDone} }

// Generator is the uniform pull-based contract every audio producer
// satisfies. Pull is called at most once per engine block, always on
// the engine's single audio thread, never concurrently with another
// call into the same Generator.
//
// A Generator that panics during Pull is treated exactly like one
// that returned Done: the engine recovers at the call boundary and
// drops it silently (§4.2, §7 class 1).
type Generator interface {
	Pull(ctx *BlockCtx) GenOutput
}

// ControlFunc is a per-block side-effecting thunk with no audio
// output. Returning a non-nil error (or panicking) causes the
// callback to be dropped after this invocation; returning nil retains
// it for the next block.
type ControlFunc func(ctx *BlockCtx) error
