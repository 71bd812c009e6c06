package reconcile

import "sync"

// List is a concurrency-safe optimistic list: handlers append provisional
// records while a poller goroutine reconciles backend snapshots into it.
type List[T any, K comparable] struct {
	mu   sync.Mutex
	id   func(T) K
	less func(a, b T) bool
	recs []T
}

func NewList[T any, K comparable](id func(T) K, less func(a, b T) bool) *List[T, K] {
	return &List[T, K]{id: id, less: less}
}

// Snapshot returns a copy safe to render.
func (l *List[T, K]) Snapshot() []T {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]T, len(l.recs))
	copy(out, l.recs)
	return out
}

func (l *List[T, K]) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.recs)
}

// Append inserts a provisional record at the end of the list.
func (l *List[T, K]) Append(rec T) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.recs = append(l.recs, rec)
}

// Reconcile merges an authoritative snapshot into the list.
func (l *List[T, K]) Reconcile(incoming []T) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.recs = Merge(l.recs, incoming, l.id, l.less)
}

// Resolve removes the provisional record and merges the records the backend
// confirmed. If the confirmed payload omits the new record, it stays absent
// until the next poll reconciles it.
func (l *List[T, K]) Resolve(tempID K, confirmed []T) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.removeLocked(tempID)
	l.recs = Merge(l.recs, confirmed, l.id, l.less)
}

// Rollback removes the provisional record after a failed request.
func (l *List[T, K]) Rollback(tempID K) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.removeLocked(tempID)
}

func (l *List[T, K]) removeLocked(id K) {
	for i, rec := range l.recs {
		if l.id(rec) == id {
			l.recs = append(l.recs[:i], l.recs[i+1:]...)
			return
		}
	}
}
