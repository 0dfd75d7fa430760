package engine

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"
)

// Status is the engine's coarse lifecycle state (§3 Lifecycle).
type Status int32

const (
	StatusStopped Status = iota
	StatusRunning
)

func (s Status) String() string {
	if s == StatusRunning {
		return "running"
	}
	return "stopped"
}

// Config holds the immutable per-engine parameters fixed at creation
// (§3 Engine, §7 class 2). NewEngine validates these and never
// returns a half-initialised Engine.
type Config struct {
	SampleRate uint32
	Nchnls     uint32
	BlockSize  uint32
	Tempo      float64 // beats per minute; defaults to 60 if zero
	Diag       Diag    // optional; nil means silent
}

// Engine drives one block-based mixing/scheduling loop on a single
// dedicated audio thread (§5). Everything exported here is safe to
// call from any goroutine; the loop itself never runs concurrently
// with another call into the same Engine's processing state.
type Engine struct {
	cfg Config

	outBufferSize  int
	byteBufferSize int

	status    atomic.Int32
	clearFlag atomic.Bool

	pendingGens    pendingQueue[Generator]
	pendingPreCfn  pendingQueue[ControlFunc]
	pendingPostCfn pendingQueue[ControlFunc]

	events *EventList

	sink Sink
	bus  *outputBus

	blockNum atomic.Uint64

	stopCh chan struct{}
	doneWg sync.WaitGroup

	diag Diag
}

// NewEngine validates cfg and constructs a stopped Engine. Sink may be
// nil, in which case Start opens a realtime sink (NewRealtimeSink);
// callers that want offline rendering should use RenderToDisk instead
// of Start.
func NewEngine(cfg Config) (*Engine, error) {
	if cfg.SampleRate == 0 {
		return nil, fmt.Errorf("beatengine: sample rate must be > 0")
	}
	if cfg.BlockSize == 0 {
		return nil, fmt.Errorf("beatengine: block size must be > 0")
	}
	if cfg.Nchnls == 0 {
		return nil, fmt.Errorf("beatengine: channel count must be > 0")
	}
	tempo := cfg.Tempo
	if tempo == 0 {
		tempo = 60
	}
	cfg.Tempo = tempo

	e := &Engine{
		cfg:            cfg,
		outBufferSize:  int(cfg.BlockSize) * int(cfg.Nchnls),
		events:         NewEventList(tempo),
		diag:           cfg.Diag,
	}
	e.byteBufferSize = 2 * e.outBufferSize
	e.events.diag = cfg.Diag
	e.status.Store(int32(StatusStopped))
	Register(e)
	return e, nil
}

// Status reports the engine's current lifecycle state.
func (e *Engine) Status() Status { return Status(e.status.Load()) }

// Events returns the engine's event list, the entry point for the
// event-list client API (§6).
func (e *Engine) Events() *EventList { return e.events }

// AddGenerator enqueues a new audio generator; it becomes active on
// the next block boundary that an audio thread actually drains (§4.4).
// Callers may enqueue while the engine is stopped — the pending queue
// exists from construction (§3) — but nothing drains it until Start
// or RenderToDisk runs; this lets a caller preload generators and
// events before kicking off an offline render.
func (e *Engine) AddGenerator(g Generator) {
	e.pendingGens.push(g)
}

// AddPreCfunc enqueues a control callback that runs before the mixer
// each block.
func (e *Engine) AddPreCfunc(f ControlFunc) {
	e.pendingPreCfn.push(f)
}

// AddPostCfunc enqueues a control callback that runs after the mixer
// each block.
func (e *Engine) AddPostCfunc(f ControlFunc) {
	e.pendingPostCfn.push(f)
}

// AddEvents enqueues events on the engine's event list (§6
// add_events).
func (e *Engine) AddEvents(events ...Event) {
	e.events.Add(events...)
}

// Clear requests that all pending and active state be dropped at the
// end of the current block (§4.6 step 7, §4.7). Idempotent; safe to
// call any number of times, including while stopped.
func (e *Engine) Clear() {
	e.clearFlag.Store(true)
}

// Start moves the engine from stopped to running and spawns its audio
// thread against sink. Double-start is a no-op (§7 class 3).
func (e *Engine) Start(sink Sink) error {
	if !e.status.CompareAndSwap(int32(StatusStopped), int32(StatusRunning)) {
		return nil
	}
	if sink == nil {
		var err error
		sink, err = NewRealtimeSink(e.cfg.SampleRate, e.cfg.Nchnls, e.cfg.BlockSize)
		if err != nil {
			e.status.Store(int32(StatusStopped))
			return err
		}
	}
	e.sink = sink
	e.stopCh = make(chan struct{})
	e.doneWg.Add(1)
	go e.runRealtime()
	return nil
}

// Stop cooperatively stops the audio thread; it returns once the
// thread has observed the request and exited (§5 Cancellation).
// Stop-when-stopped is a no-op (§7 class 3).
func (e *Engine) Stop() {
	if !e.status.CompareAndSwap(int32(StatusRunning), int32(StatusStopped)) {
		return
	}
	close(e.stopCh)
	e.doneWg.Wait()
}

func (e *Engine) String() string {
	return fmt.Sprintf("Engine(sr=%d nchnls=%d bs=%d status=%s) %s", e.cfg.SampleRate, e.cfg.Nchnls, e.cfg.BlockSize, e.Status(), e.events)
}

// runRealtime is the realtime-mode audio thread body: loop while
// running, printing "stopping..." once on exit (§6 compatibility
// note), then flush and close the sink.
func (e *Engine) runRealtime() {
	defer e.doneWg.Done()
	defer func() {
		fmt.Println("stopping...")
		e.sink.Close()
	}()

	gens := []Generator{}
	preCfns := []ControlFunc{}
	postCfns := []ControlFunc{}

	for {
		select {
		case <-e.stopCh:
			return
		default:
		}

		ctx := &BlockCtx{
			SampleRate:      e.cfg.SampleRate,
			BlockSize:       e.cfg.BlockSize,
			Nchnls:          e.cfg.Nchnls,
			CurrentBlockNum: e.blockNum.Load(),
		}

		gens, preCfns, postCfns, _ = e.runBlock(ctx, gens, preCfns, postCfns)

		if e.clearFlag.CompareAndSwap(true, false) {
			e.pendingGens.drain()
			e.pendingPreCfn.drain()
			e.pendingPostCfn.drain()
			e.events.Clear()
			gens, preCfns, postCfns = nil, nil, nil
		}

		e.blockNum.Add(1)
	}
}

// runBlock executes the §4.6 per-block protocol, returning the
// retained generators/cfuncs for the next block and whether the event
// list reports further pending work (used by the offline renderer's
// termination check).
func (e *Engine) runBlock(ctx *BlockCtx, gens []Generator, preCfns, postCfns []ControlFunc) (retGens []Generator, retPre, retPost []ControlFunc, eventsPending bool) {
	var pendingFromEvents []Generator
	eventsPending = e.events.Advance(ctx, e.cfg.BlockSize, func(g Generator) {
		pendingFromEvents = append(pendingFromEvents, g)
	})
	if len(pendingFromEvents) > 0 {
		e.pendingGens.pushAll(pendingFromEvents)
	}

	preCfns = append(preCfns, e.pendingPreCfn.drain()...)
	preCfns = runCfuncs(ctx, preCfns, e.diag)

	gens = append(gens, e.pendingGens.drain()...)
	bus := e.busFor(ctx)
	bus.zero()
	gens = pullAndMix(ctx, gens, bus, e.diag)
	pcm := bus.quantise()

	postCfns = append(postCfns, e.pendingPostCfn.drain()...)
	postCfns = runCfuncs(ctx, postCfns, e.diag)

	if err := e.sink.WriteBlock(pcm); err != nil && e.diag != nil {
		e.diag.Printf("beatengine: sink write: %v", err)
	}

	return gens, preCfns, postCfns, eventsPending
}

// busFor lazily allocates the engine's output bus. Kept as a method
// (rather than a field initialised in NewEngine) so RenderToDisk and
// runRealtime share identical bus-construction logic.
func (e *Engine) busFor(ctx *BlockCtx) *outputBus {
	if e.bus == nil {
		e.bus = newOutputBus(ctx.Nchnls, ctx.BlockSize)
	}
	return e.bus
}

// runCfuncs invokes each control callback once, recovering from a
// panic and dropping it (§4.2 analogue for cfuncs, §7 class 1). A
// callback that returns a non-nil error is also dropped. Survivors
// are returned in order.
func runCfuncs(ctx *BlockCtx, fns []ControlFunc, diag Diag) []ControlFunc {
	retained := fns[:0]
	for _, f := range fns {
		if callCfunc(ctx, f, diag) {
			retained = append(retained, f)
		}
	}
	return retained
}

func callCfunc(ctx *BlockCtx, f ControlFunc, diag Diag) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			if diag != nil {
				diag.Printf("beatengine: cfunc panicked: %v", r)
			}
			ok = false
		}
	}()
	if err := f(ctx); err != nil {
		if diag != nil {
			diag.Printf("beatengine: cfunc error: %v", err)
		}
		return false
	}
	return true
}

// pullAndMix polls every generator exactly once, mixing survivors
// into bus and dropping any that returned Done or faulted (§4.2,
// §4.3). Order is preserved among survivors.
func pullAndMix(ctx *BlockCtx, gens []Generator, bus *outputBus, diag Diag) []Generator {
	retained := gens[:0]
	for _, g := range gens {
		out, ok := pullOne(ctx, g, diag)
		if !ok {
			continue
		}
		bus.mix(out)
		retained = append(retained, g)
	}
	return retained
}

func pullOne(ctx *BlockCtx, g Generator, diag Diag) (out GenOutput, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			if diag != nil {
				diag.Printf("beatengine: generator panicked: %v", r)
			}
			ok = false
		}
	}()
	out = g.Pull(ctx)
	if out.Kind == GenDone {
		return out, false
	}
	return out, true
}

// RenderToDisk runs the engine in offline mode (§4.6 offline
// termination, §6 offline sink): it loops until the event list
// reports no pending work and all three active lists are empty after
// their phase, then emits a WAV file at path. It prints the elapsed
// wall-clock seconds on exit, matching the teacher's compatibility
// note (§6).
func (e *Engine) RenderToDisk(path string) error {
	if !e.status.CompareAndSwap(int32(StatusStopped), int32(StatusRunning)) {
		return fmt.Errorf("beatengine: engine already running")
	}
	defer e.status.Store(int32(StatusStopped))

	sink := NewOfflineSink(path, e.cfg.SampleRate, e.cfg.Nchnls)
	e.sink = sink

	start := time.Now()
	gens := []Generator{}
	preCfns := []ControlFunc{}
	postCfns := []ControlFunc{}

	for {
		ctx := &BlockCtx{
			SampleRate:      e.cfg.SampleRate,
			BlockSize:       e.cfg.BlockSize,
			Nchnls:          e.cfg.Nchnls,
			CurrentBlockNum: e.blockNum.Load(),
		}

		var eventsPending bool
		gens, preCfns, postCfns, eventsPending = e.runBlock(ctx, gens, preCfns, postCfns)

		if e.clearFlag.CompareAndSwap(true, false) {
			e.pendingGens.drain()
			e.pendingPreCfn.drain()
			e.pendingPostCfn.drain()
			e.events.Clear()
			gens, preCfns, postCfns = nil, nil, nil
		}

		e.blockNum.Add(1)

		if !eventsPending && len(gens) == 0 && len(preCfns) == 0 && len(postCfns) == 0 {
			break
		}
	}

	err := sink.Close()
	fmt.Printf("%.3f\n", time.Since(start).Seconds())
	return err
}
