package engine

import (
	"testing"
)

func bgCtx(sampleRate, blockSize uint32) *BlockCtx {
	return &BlockCtx{SampleRate: sampleRate, BlockSize: blockSize, Nchnls: 1}
}

func TestAdvanceBeatMath(t *testing.T) {
	el := NewEventList(60)
	ctx := bgCtx(44100, 22050)

	el.Advance(ctx, 22050, func(Generator) {})
	if got, want := el.Now(), 0.5; got != want {
		t.Fatalf("cur_beat after first advance = %v, want %v", got, want)
	}
	el.Advance(ctx, 22050, func(Generator) {})
	if got, want := el.Now(), 1.0; got != want {
		t.Fatalf("cur_beat after second advance = %v, want %v", got, want)
	}
}

func TestEventFiresOnExpectedBlock(t *testing.T) {
	el := NewEventList(60)
	fired := 0
	el.Add(NewEvent(func(ctx *BlockCtx, args []any) EventResult {
		fired++
		return NothingResult()
	}, 1.0))

	ctx := bgCtx(44100, 44100)
	el.Advance(ctx, 44100, func(Generator) {}) // block 0: cur_beat 0 -> 1, must not fire yet
	if fired != 0 {
		t.Fatalf("event fired during block 0, want no fire until beat is reached")
	}
	el.Advance(ctx, 44100, func(Generator) {}) // block 1: beat 1.0 <= cur_beat(1.0)
	if fired != 1 {
		t.Fatalf("fired = %d after block 1, want 1", fired)
	}
}

func TestEventFiresOnExpectedBlockSmallerBlockSize(t *testing.T) {
	el := NewEventList(60)
	fired := 0
	el.Add(NewEvent(func(ctx *BlockCtx, args []any) EventResult {
		fired++
		return NothingResult()
	}, 1.0))

	ctx := bgCtx(44100, 22050)
	el.Advance(ctx, 22050, func(Generator) {}) // cur_beat -> 0.5
	el.Advance(ctx, 22050, func(Generator) {}) // cur_beat -> 1.0, event due now but checked before increment
	if fired != 0 {
		t.Fatalf("fired = %d after block 1, want 0 (fires during block 2 per spec)", fired)
	}
	el.Advance(ctx, 22050, func(Generator) {}) // cur_beat 1.0 -> checks beat<=1.0 true, fires
	if fired != 1 {
		t.Fatalf("fired = %d after block 2, want 1", fired)
	}
}

func TestEqualBeatEventsFireInInsertionOrder(t *testing.T) {
	el := NewEventList(60)
	var order []int
	for i := 0; i < 5; i++ {
		i := i
		el.Add(NewEvent(func(ctx *BlockCtx, args []any) EventResult {
			order = append(order, i)
			return NothingResult()
		}, 0.0))
	}
	ctx := bgCtx(44100, 64)
	el.Advance(ctx, 64, func(Generator) {})
	for i, v := range order {
		if v != i {
			t.Fatalf("order[%d] = %d, want %d (insertion order)", i, v, i)
		}
	}
}

func TestCascadedEventFiresInSameBlock(t *testing.T) {
	el := NewEventList(60)
	var fired []int
	var chain EventFunc
	chain = func(ctx *BlockCtx, args []any) EventResult {
		n := args[0].(int)
		fired = append(fired, n)
		if n < 2 {
			// beat 0.0 is still <= cur_beat (which hasn't advanced yet
			// within this Advance call), so this must cascade within
			// the same block rather than waiting for the next one.
			return EventResultOf(NewEvent(chain, 0.0, n+1))
		}
		return NothingResult()
	}
	el.Add(NewEvent(chain, 0.0, 0))

	ctx := bgCtx(44100, 64)
	el.Advance(ctx, 64, func(Generator) {})

	if len(fired) != 3 {
		t.Fatalf("fired %v, want 3 cascaded events in one block (chain of beat-0.0 events firing before cur_beat advances)", fired)
	}
}

func TestTemporalRecursionDoesNotBackUp(t *testing.T) {
	el := NewEventList(60)
	var firedAt []float64
	var recur EventFunc
	recur = func(ctx *BlockCtx, args []any) EventResult {
		this := args[0].(float64)
		firedAt = append(firedAt, this)
		next := this + NextBeat(this, 1.0) + 1.0 // always strictly in the future
		return EventResultOf(NewEvent(recur, next, next))
	}
	el.Add(NewEvent(recur, 0.0, 0.0))

	ctx := bgCtx(44100, 44100) // 1-second blocks at tempo 60bpm == 1 beat/block
	for i := 0; i < 5; i++ {
		el.Advance(ctx, 44100, func(Generator) {})
	}
	if len(firedAt) != 5 {
		t.Fatalf("fired %v over 5 one-beat blocks, want exactly 5 (one per beat, no backlog)", firedAt)
	}
	for i, beat := range firedAt {
		if beat != float64(i) {
			t.Fatalf("firedAt[%d] = %v, want %v", i, beat, float64(i))
		}
	}
}

func TestEventProducesGenerator(t *testing.T) {
	el := NewEventList(60)
	el.Add(NewEvent(func(ctx *BlockCtx, args []any) EventResult {
		return GenResult(constGen{value: 0.1})
	}, 0.0))

	var got []Generator
	ctx := bgCtx(44100, 64)
	el.Advance(ctx, 64, func(g Generator) { got = append(got, g) })

	if len(got) != 1 {
		t.Fatalf("got %d generators from firing event, want 1", len(got))
	}
}

func TestFnCellRedefAndKill(t *testing.T) {
	calls := 0
	cell := NewFnCell(func(ctx *BlockCtx, args []any) EventResult {
		calls++
		return NothingResult()
	})
	bound := cell.Bound()
	bound(nil, nil)
	if calls != 1 {
		t.Fatalf("calls = %d, want 1", calls)
	}

	redefCalls := 0
	cell.Redef(func(ctx *BlockCtx, args []any) EventResult {
		redefCalls++
		return NothingResult()
	})
	bound(nil, nil)
	if calls != 1 || redefCalls != 1 {
		t.Fatalf("after Redef: calls=%d redefCalls=%d, want 1,1", calls, redefCalls)
	}

	cell.Kill()
	bound(nil, nil)
	if calls != 1 || redefCalls != 1 {
		t.Fatalf("after Kill: calls=%d redefCalls=%d, want unchanged at 1,1", calls, redefCalls)
	}
}
