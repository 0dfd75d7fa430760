package engine

import "sync"

// pendingQueue is a thread-safe drop-box: producers on arbitrary
// goroutines push items, and the audio thread drains it once per
// block. drain is an atomic swap-with-empty — the caller gets exactly
// what had accumulated up to the swap, and the queue is empty again
// immediately, even if a push lands mid-swap (it simply lands in the
// next drain instead).
type pendingQueue[T any] struct {
	mu    sync.Mutex
	items []T
}

func (q *pendingQueue[T]) push(v T) {
	q.mu.Lock()
	q.items = append(q.items, v)
	q.mu.Unlock()
}

func (q *pendingQueue[T]) pushAll(vs []T) {
	if len(vs) == 0 {
		return
	}
	q.mu.Lock()
	q.items = append(q.items, vs...)
	q.mu.Unlock()
}

func (q *pendingQueue[T]) drain() []T {
	q.mu.Lock()
	items := q.items
	q.items = nil
	q.mu.Unlock()
	return items
}

// peekNonEmpty reports whether the queue currently holds anything,
// without draining it. Used by the offline renderer's termination
// check (§4.6) so a push landing between drains isn't lost.
func (q *pendingQueue[T]) peekNonEmpty() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items) > 0
}
