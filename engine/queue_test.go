package engine

import "testing"

func TestPendingQueueDrainIsSwapWithEmpty(t *testing.T) {
	var q pendingQueue[int]
	q.push(1)
	q.push(2)

	got := q.drain()
	if len(got) != 2 || got[0] != 1 || got[1] != 2 {
		t.Fatalf("drain = %v, want [1 2]", got)
	}

	if q.peekNonEmpty() {
		t.Fatal("queue should be empty immediately after drain")
	}

	q.push(3)
	got2 := q.drain()
	if len(got2) != 1 || got2[0] != 3 {
		t.Fatalf("second drain = %v, want [3]", got2)
	}
}

func TestPendingQueuePushAllEmpty(t *testing.T) {
	var q pendingQueue[int]
	q.pushAll(nil)
	if q.peekNonEmpty() {
		t.Fatal("pushAll(nil) should not mark the queue non-empty")
	}
}
