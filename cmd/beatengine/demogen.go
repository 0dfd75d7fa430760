package main

import (
	"math"

	"github.com/beatengine/beatengine/engine"
)

// toySine is a minimal stand-in for the real oscillator library that
// the engine treats as an out-of-scope external collaborator (§1):
// just enough of a Generator to make the REPL's add_afunc command
// produce audible output, not a DSP primitive the library itself
// depends on.
//
// Grounded on the teacher's nextSineValue (generator.go): phase
// accumulator advanced by hz/sampleRate each sample, wrapped at 1.0.
type toySine struct {
	hz    float64
	gain  float64
	phase float64
}

func newToySine(hz, gain float64) *toySine {
	return &toySine{hz: hz, gain: gain}
}

func (g *toySine) Pull(ctx *engine.BlockCtx) engine.GenOutput {
	buf := make([]float64, ctx.BlockSize)
	for i := range buf {
		buf[i] = math.Sin(2*math.Pi*g.phase) * g.gain
		g.phase += g.hz / float64(ctx.SampleRate)
		if g.phase > 1 {
			g.phase -= 1
		}
	}
	return engine.Mono(buf)
}
