// Package snapshot holds the latest result of a refresh cycle as an
// immutable value behind a single atomically-swapped reference. Readers
// always see one complete snapshot (possibly the empty pre-refresh one),
// never a partially-installed collection, and never block on an in-flight
// refresh.
package snapshot

import (
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// Snapshot is the complete result of one refresh cycle. The generation tag
// identifies the cycle that produced it.
type Snapshot[T any] struct {
	Generation string
	FetchedAt  time.Time
	Items      []T
}

// Store is a container for the current snapshot of one data source.
// Replace installs a new snapshot atomically; all reads are lock-free.
type Store[T any] struct {
	cur atomic.Pointer[Snapshot[T]]
}

// NewStore returns a store holding an empty snapshot, so reads before the
// first refresh return an empty collection rather than an error.
func NewStore[T any]() *Store[T] {
	s := &Store[T]{}
	s.cur.Store(&Snapshot[T]{Generation: "", Items: []T{}})
	return s
}

// Replace installs items as the new current snapshot and returns it. The
// slice is owned by the snapshot afterwards and must not be mutated by the
// caller.
func (s *Store[T]) Replace(items []T) *Snapshot[T] {
	if items == nil {
		items = []T{}
	}
	snap := &Snapshot[T]{
		Generation: uuid.NewString(),
		FetchedAt:  time.Now().UTC(),
		Items:      items,
	}
	s.cur.Store(snap)
	return snap
}

// Current returns the installed snapshot. Never nil.
func (s *Store[T]) Current() *Snapshot[T] {
	return s.cur.Load()
}

// Items returns the current snapshot's collection.
func (s *Store[T]) Items() []T {
	return s.cur.Load().Items
}

// Filter returns the items of the current snapshot matching pred. The
// filter is recomputed against whatever snapshot is installed at call time;
// it holds no state of its own.
func (s *Store[T]) Filter(pred func(T) bool) []T {
	items := s.cur.Load().Items
	out := make([]T, 0, len(items))
	for _, item := range items {
		if pred(item) {
			out = append(out, item)
		}
	}
	return out
}
