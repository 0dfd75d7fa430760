package engine

import "sync/atomic"

// FnCell is an indirect handle to an EventFunc, letting a live-coding
// layer rebind ("redef") or silence ("kill") a recurring event's body
// without the event list itself knowing anything about redefinition.
//
// Design Note "Temporal recursion": the source language rebinds a
// global var via "redef!"/"kill-recur!" macros; this reinterprets
// that as an atomic indirection cell the engine dereferences each
// time the event fires, rather than any language-level
// metaprogramming.
type FnCell struct {
	fn atomic.Pointer[EventFunc]
}

// NewFnCell returns a cell initially bound to fn.
func NewFnCell(fn EventFunc) *FnCell {
	c := &FnCell{}
	c.Redef(fn)
	return c
}

// Redef atomically rebinds the cell to a new function body.
func (c *FnCell) Redef(fn EventFunc) {
	c.fn.Store(&fn)
}

// Kill rebinds the cell to a no-op, so any event still holding this
// cell fires harmlessly from now on.
func (c *FnCell) Kill() {
	noop := EventFunc(func(ctx *BlockCtx, args []any) EventResult { return NothingResult() })
	c.fn.Store(&noop)
}

// Bound returns an EventFunc that, when called, dereferences the cell
// and invokes whatever function is currently bound — the indirection
// point an Event.Fn can be set to instead of a direct function value.
func (c *FnCell) Bound() EventFunc {
	return func(ctx *BlockCtx, args []any) EventResult {
		fn := c.fn.Load()
		if fn == nil {
			return NothingResult()
		}
		return (*fn)(ctx, args)
	}
}
