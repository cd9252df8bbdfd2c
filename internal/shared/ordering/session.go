package ordering

import "errors"

// State of one drag session: Idle → Dragging → Committed | Cancelled.
type State int

const (
	StateIdle State = iota
	StateDragging
	StateCommitted
	StateCancelled
)

var (
	ErrNotDragging     = errors.New("ordering: no drag in progress")
	ErrAlreadyDragging = errors.New("ordering: drag already in progress")
	ErrIndexOutOfRange = errors.New("ordering: index out of range")
)

// Session drives one continuous drag over a collection. Swaps commit only
// when the pointer crosses the midpoint of the hovered item in the
// direction of travel; hovering back and forth near a boundary does not
// flicker.
type Session[T any] struct {
	original []T
	working  []T
	dragIdx  int
	state    State
}

func NewSession[T any](items []T) *Session[T] {
	original := make([]T, len(items))
	copy(original, items)
	working := make([]T, len(items))
	copy(working, items)
	return &Session[T]{original: original, working: working, state: StateIdle}
}

func (s *Session[T]) State() State { return s.state }

// Items is the current working order, reflecting committed hover swaps.
func (s *Session[T]) Items() []T {
	out := make([]T, len(s.working))
	copy(out, s.working)
	return out
}

// Begin picks up the item at index.
func (s *Session[T]) Begin(index int) error {
	if s.state != StateIdle {
		return ErrAlreadyDragging
	}
	if index < 0 || index >= len(s.working) {
		return ErrIndexOutOfRange
	}
	s.dragIdx = index
	s.state = StateDragging
	return nil
}

// Hover evaluates one pointer sample over the item currently at target.
// pointer is the pointer's vertical position; targetTop and targetHeight
// describe the hovered item's bounding box. It reports whether a swap was
// committed.
//
// Dragging downward commits once the pointer passes below the target's
// midpoint; dragging upward commits once it passes above.
func (s *Session[T]) Hover(target int, pointer, targetTop, targetHeight float64) bool {
	if s.state != StateDragging {
		return false
	}
	if target < 0 || target >= len(s.working) || target == s.dragIdx {
		return false
	}

	mid := targetTop + targetHeight/2

	if target > s.dragIdx && pointer <= mid {
		return false
	}
	if target < s.dragIdx && pointer >= mid {
		return false
	}

	s.working = Move(s.working, s.dragIdx, target)
	s.dragIdx = target
	return true
}

// Drop commits the session and returns the final order.
func (s *Session[T]) Drop() ([]T, error) {
	if s.state != StateDragging {
		return nil, ErrNotDragging
	}
	s.state = StateCommitted
	return s.Items(), nil
}

// Cancel abandons the session, restoring the pre-drag order. No
// persistence call should follow.
func (s *Session[T]) Cancel() ([]T, error) {
	if s.state != StateDragging {
		return nil, ErrNotDragging
	}
	s.state = StateCancelled
	s.working = s.original
	return s.Items(), nil
}
