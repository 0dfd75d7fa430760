package engine

import (
	"container/heap"
	"fmt"
	"sync"
)

// EventFunc is the thunk carried by an Event. It runs with the
// ambient BlockCtx set, on the audio thread, exactly once, when its
// beat comes due.
type EventFunc func(ctx *BlockCtx, args []any) EventResult

// Event is a beat-stamped thunk. Events are totally ordered by Beat;
// ties are broken by insertion order (seq), assigned when the event
// is added to an EventList.
type Event struct {
	Beat float64
	Fn   EventFunc
	Args []any

	seq uint64
}

// NewEvent constructs an Event ready to be added to an EventList via
// EventList.Add. fn, start, args mirror the client API's
// event(fn, start_beat, args...) helper (§6).
func NewEvent(fn EventFunc, startBeat float64, args ...any) Event {
	return Event{Beat: startBeat, Fn: fn, Args: args}
}

// ResultKind tags the variant an EventFunc may return.
type ResultKind int

const (
	ResultNothing ResultKind = iota
	ResultGen
	ResultEvent
	ResultMany
)

// EventResult is the tagged variant an EventFunc may return,
// interpreted deterministically by the event list's advance loop
// (§4.5 step 2, Design Note "Event return values").
type EventResult struct {
	Kind  ResultKind
	Gen   Generator
	Event *Event
	Many  []EventResult
}

func NothingResult() EventResult                { return EventResult{Kind: ResultNothing} }
func GenResult(g Generator) EventResult         { return EventResult{Kind: ResultGen, Gen: g} }
func EventResultOf(e Event) EventResult         { return EventResult{Kind: ResultEvent, Event: &e} }
func ManyResults(rs ...EventResult) EventResult { return EventResult{Kind: ResultMany, Many: rs} }

// eventHeap is a container/heap min-heap over (Beat, seq), giving
// stable tie-break ordering among equal beats.
type eventHeap []Event

func (h eventHeap) Len() int { return len(h) }
func (h eventHeap) Less(i, j int) bool {
	if h[i].Beat != h[j].Beat {
		return h[i].Beat < h[j].Beat
	}
	return h[i].seq < h[j].seq
}
func (h eventHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }
func (h *eventHeap) Push(x any)   { *h = append(*h, x.(Event)) }
func (h *eventHeap) Pop() any {
	old := *h
	n := len(old)
	e := old[n-1]
	*h = old[:n-1]
	return e
}

// EventList is the time-ordered collection of beat-stamped thunks
// advanced once per block by the engine loop (§4.5). All operations
// are safe to call from any goroutine; advance is intended to be
// called only from the owning engine's audio thread.
type EventList struct {
	mu       sync.Mutex
	curBeat  float64
	tempo    float64
	scheduled eventHeap
	nextSeq  uint64

	pending pendingQueue[Event]

	diag Diag
}

// NewEventList returns an EventList with the given starting tempo (in
// beats per minute) and cur_beat == 0.
func NewEventList(tempoBPM float64) *EventList {
	el := &EventList{tempo: tempoBPM}
	heap.Init(&el.scheduled)
	return el
}

// Add appends events to the pending buffer (§4.5 add).
func (el *EventList) Add(events ...Event) {
	el.pending.pushAll(events)
}

// Clear removes all pending and scheduled events (§4.5 clear).
func (el *EventList) Clear() {
	el.pending.drain()
	el.mu.Lock()
	el.scheduled = el.scheduled[:0]
	el.mu.Unlock()
}

// SetTempo sets the tempo in beats per minute.
func (el *EventList) SetTempo(bpm float64) {
	el.mu.Lock()
	el.tempo = bpm
	el.mu.Unlock()
}

// Tempo returns the current tempo in beats per minute.
func (el *EventList) Tempo() float64 {
	el.mu.Lock()
	defer el.mu.Unlock()
	return el.tempo
}

// Now returns the current beat.
func (el *EventList) Now() float64 {
	el.mu.Lock()
	defer el.mu.Unlock()
	return el.curBeat
}

func (el *EventList) String() string {
	el.mu.Lock()
	defer el.mu.Unlock()
	return fmt.Sprintf("EventList: beat %.3f, tempo %.1f bpm, %d scheduled", el.curBeat, el.tempo, len(el.scheduled))
}

// Advance is the core per-block operation (§4.5 "Advance protocol").
// It merges pending events, fires every event with Beat <= cur_beat
// (cascading newly-fired events that are themselves due in this same
// block), advances cur_beat by nsamples worth of beats, and reports
// whether any event — scheduled or freshly pending — remains.
//
// genOut receives generators produced by firing events, so the caller
// (the engine loop) can enqueue them on the engine's pending-generator
// queue without this type depending on Engine.
func (el *EventList) Advance(ctx *BlockCtx, nsamples uint32, genOut func(Generator)) bool {
	el.mergePending()

	for {
		el.mu.Lock()
		if len(el.scheduled) == 0 || el.scheduled[0].Beat > el.curBeat {
			el.mu.Unlock()
			break
		}
		ev := heap.Pop(&el.scheduled).(Event)
		el.mu.Unlock()

		result := el.fire(ctx, ev)
		el.apply(result, genOut)
		el.mergePending()
	}

	el.mu.Lock()
	sampleRate := ctx.SampleRate
	tempo := el.tempo
	el.curBeat += float64(nsamples) * (tempo / 60) / float64(sampleRate)
	remaining := len(el.scheduled) > 0
	el.mu.Unlock()

	if !remaining {
		remaining = el.pending.peekNonEmpty()
	}
	return remaining
}

func (el *EventList) mergePending() {
	drained := el.pending.drain()
	if len(drained) == 0 {
		return
	}
	el.mu.Lock()
	for i := range drained {
		drained[i].seq = el.nextSeq
		el.nextSeq++
		heap.Push(&el.scheduled, drained[i])
	}
	el.mu.Unlock()
}

// fire invokes an event's thunk, recovering from a panic exactly as a
// generator fault is handled (§7 class 1): the event is dropped and
// contributes NothingResult.
func (el *EventList) fire(ctx *BlockCtx, ev Event) (result EventResult) {
	defer func() {
		if r := recover(); r != nil {
			if el.diag != nil {
				el.diag.Printf("event at beat %.3f panicked: %v", ev.Beat, r)
			}
			result = NothingResult()
		}
	}()
	return ev.Fn(ctx, ev.Args)
}

func (el *EventList) apply(result EventResult, genOut func(Generator)) {
	switch result.Kind {
	case ResultGen:
		if result.Gen != nil {
			genOut(result.Gen)
		}
	case ResultEvent:
		if result.Event != nil {
			el.Add(*result.Event)
		}
	case ResultMany:
		for _, r := range result.Many {
			el.apply(r, genOut)
		}
	case ResultNothing:
	}
}
