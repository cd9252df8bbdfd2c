// Package ordering maintains the manual display order of a collection.
//
// Positions live in an explicit integer order field per item. Values need
// not be contiguous; an unset order sorts after every set one.
package ordering

import (
	"math"
	"sort"
	"time"
)

// Item is anything positioned in a manually ordered collection.
type Item interface {
	// OrderValue returns the display order and whether it is set.
	OrderValue() (int, bool)
	// OrderCreatedAt is the tie-break key.
	OrderCreatedAt() time.Time
}

// KeyedItem additionally exposes the identity used in batch order updates.
type KeyedItem interface {
	Item
	OrderKey() string
}

// Update is one element of a batch reorder payload.
type Update struct {
	ID    string `json:"id" binding:"required"`
	Order int    `json:"order"`
}

// Sort returns a new slice ordered by (order ascending, createdAt
// descending). Items without an order sort last, newest first. Stable for
// fully equal keys.
func Sort[T Item](items []T) []T {
	out := make([]T, len(items))
	copy(out, items)

	sort.SliceStable(out, func(i, j int) bool {
		oi := orderOrSentinel(out[i])
		oj := orderOrSentinel(out[j])
		if oi != oj {
			return oi < oj
		}
		return out[i].OrderCreatedAt().After(out[j].OrderCreatedAt())
	})

	return out
}

func orderOrSentinel(it Item) int {
	if v, ok := it.OrderValue(); ok {
		return v
	}
	return math.MaxInt
}

// Move removes the item at from and reinserts it at to, shifting the
// items in between by one position. Either index out of range is a no-op.
// The input slice is never mutated.
func Move[T any](items []T, from, to int) []T {
	out := make([]T, len(items))
	copy(out, items)

	if from < 0 || from >= len(out) || to < 0 || to >= len(out) {
		return out
	}

	moved := out[from]
	out = append(out[:from], out[from+1:]...)
	out = append(out[:to], append([]T{moved}, out[to:]...)...)
	return out
}

// Next returns the order to assign a newly created item: one past the
// largest assigned order, or zero for an empty or fully unordered
// collection.
func Next[T Item](items []T) int {
	next := 0
	for _, it := range items {
		if v, ok := it.OrderValue(); ok && v >= next {
			next = v + 1
		}
	}
	return next
}

// Updates assigns each item's order to its zero-based position in the
// given (already rearranged) list, producing the batch persistence
// payload.
func Updates[T KeyedItem](items []T) []Update {
	updates := make([]Update, len(items))
	for i, it := range items {
		updates[i] = Update{ID: it.OrderKey(), Order: i}
	}
	return updates
}
