// Package queue ranks work items into a deterministic total order.
package queue

import (
	"sort"
	"time"
)

// Item is anything that can take a place in a work queue.
type Item interface {
	// QueueRank is the primary key: ascending, lower means more urgent.
	QueueRank() int
	// QueuedAt is the secondary key: ascending, oldest waiting first.
	QueuedAt() time.Time
	// QueueKey is the tertiary key: a unique ID giving a stable total
	// order independent of storage order.
	QueueKey() string
}

// Sort returns the items ordered by rank, wait time, then key. The
// input slice is not mutated.
func Sort[T Item](items []T) []T {
	sorted := append([]T(nil), items...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return Less(sorted[i], sorted[j])
	})
	return sorted
}

// Less reports whether a ranks ahead of b in the queue.
func Less(a, b Item) bool {
	if a.QueueRank() != b.QueueRank() {
		return a.QueueRank() < b.QueueRank()
	}
	if !a.QueuedAt().Equal(b.QueuedAt()) {
		return a.QueuedAt().Before(b.QueuedAt())
	}
	return a.QueueKey() < b.QueueKey()
}
