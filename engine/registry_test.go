package engine

import "testing"

func TestKillAllStopsRegisteredEngines(t *testing.T) {
	defaultRegistry.mu.Lock()
	defaultRegistry.engines = nil
	defaultRegistry.mu.Unlock()

	e1, err := NewEngine(Config{SampleRate: 44100, Nchnls: 1, BlockSize: 8})
	if err != nil {
		t.Fatal(err)
	}
	e2, err := NewEngine(Config{SampleRate: 44100, Nchnls: 1, BlockSize: 8})
	if err != nil {
		t.Fatal(err)
	}

	sink1, sink2 := newFakeSink(8), newFakeSink(8)
	if err := e1.Start(sink1); err != nil {
		t.Fatal(err)
	}
	if err := e2.Start(sink2); err != nil {
		t.Fatal(err)
	}
	readBlock(t, sink1)
	readBlock(t, sink2)

	if err := KillAll(); err != nil {
		t.Fatalf("KillAll returned error: %v", err)
	}

	if e1.Status() != StatusStopped || e2.Status() != StatusStopped {
		t.Fatalf("expected both engines stopped, got %s and %s", e1.Status(), e2.Status())
	}
}

func TestClearAllEnginesEmptiesRegistry(t *testing.T) {
	defaultRegistry.mu.Lock()
	defaultRegistry.engines = nil
	defaultRegistry.mu.Unlock()

	if _, err := NewEngine(Config{SampleRate: 44100, Nchnls: 1, BlockSize: 8}); err != nil {
		t.Fatal(err)
	}
	if err := ClearAllEngines(); err != nil {
		t.Fatal(err)
	}
	if n := len(ListEngines()); n != 0 {
		t.Fatalf("registry has %d engines after ClearAllEngines, want 0", n)
	}
}
