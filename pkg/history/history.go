// Package history implements bounded linear undo/redo over canvas
// snapshots.
package history

import (
	"github.com/ha1tch/paintkit/internal/logging"
)

// DefaultLimit is the default number of undo levels kept.
const DefaultLimit = 50

// State is the manager's position in its lifecycle.
type State int

const (
	StateEmpty     State = iota // nothing pushed since creation or Clear
	StateRecording              // at least one entry on the undo stack
)

// String returns the state name.
func (s State) String() string {
	if s == StateRecording {
		return "recording"
	}
	return "empty"
}

// Manager keeps two stacks: undo holds past states with the current state
// on top, redo holds states that were undone, most recent last.
//
// The bottom entry of the undo stack is a floor: Undo never removes the last
// remaining entry, so the baseline canvas is always restorable.
//
// A Manager is not safe for concurrent use.
type Manager[T any] struct {
	undo  []T
	redo  []T
	limit int
}

// New creates a manager keeping at most limit undo entries. A limit below 1
// selects DefaultLimit.
func New[T any](limit int) *Manager[T] {
	if limit < 1 {
		limit = DefaultLimit
	}
	return &Manager[T]{limit: limit}
}

// Limit returns the maximum number of undo entries.
func (m *Manager[T]) Limit() int { return m.limit }

// Push records s as the new current state. The oldest entry is evicted when
// the limit is exceeded, and any redo history is discarded.
func (m *Manager[T]) Push(s T) {
	if len(m.undo) >= m.limit {
		evict := len(m.undo) - m.limit + 1
		clear(m.undo[:evict])
		m.undo = append(m.undo[:0], m.undo[evict:]...)
	}
	m.undo = append(m.undo, s)

	if len(m.redo) > 0 {
		clear(m.redo)
		m.redo = m.redo[:0]
	}
	logging.Logger().Debug("history push", "undo", len(m.undo))
}

// Undo moves the current state to the redo stack and returns the state that
// is now current. It reports false and changes nothing when only the floor
// entry remains.
func (m *Manager[T]) Undo() (T, bool) {
	var zero T
	if len(m.undo) <= 1 {
		return zero, false
	}
	top := m.undo[len(m.undo)-1]
	m.undo[len(m.undo)-1] = zero
	m.undo = m.undo[:len(m.undo)-1]
	m.redo = append(m.redo, top)

	logging.Logger().Debug("history undo", "undo", len(m.undo), "redo", len(m.redo))
	return m.undo[len(m.undo)-1], true
}

// Redo moves the most recently undone state back onto the undo stack and
// returns it. It reports false when there is nothing to redo.
func (m *Manager[T]) Redo() (T, bool) {
	var zero T
	if len(m.redo) == 0 {
		return zero, false
	}
	next := m.redo[len(m.redo)-1]
	m.redo[len(m.redo)-1] = zero
	m.redo = m.redo[:len(m.redo)-1]
	m.undo = append(m.undo, next)

	logging.Logger().Debug("history redo", "undo", len(m.undo), "redo", len(m.redo))
	return next, true
}

// Clear empties both stacks.
func (m *Manager[T]) Clear() {
	clear(m.undo)
	clear(m.redo)
	m.undo = m.undo[:0]
	m.redo = m.redo[:0]
	logging.Logger().Debug("history clear")
}

// Current returns the top of the undo stack.
func (m *Manager[T]) Current() (T, bool) {
	if len(m.undo) == 0 {
		var zero T
		return zero, false
	}
	return m.undo[len(m.undo)-1], true
}

// CanUndo reports whether Undo would succeed.
func (m *Manager[T]) CanUndo() bool { return len(m.undo) > 1 }

// CanRedo reports whether Redo would succeed.
func (m *Manager[T]) CanRedo() bool { return len(m.redo) > 0 }

// Len returns the number of entries on the undo stack.
func (m *Manager[T]) Len() int { return len(m.undo) }

// RedoLen returns the number of entries on the redo stack.
func (m *Manager[T]) RedoLen() int { return len(m.redo) }

// State reports whether anything has been recorded.
func (m *Manager[T]) State() State {
	if len(m.undo) == 0 {
		return StateEmpty
	}
	return StateRecording
}

// Entries returns a copy of the undo stack, oldest first.
func (m *Manager[T]) Entries() []T {
	out := make([]T, len(m.undo))
	copy(out, m.undo)
	return out
}

// RedoEntries returns a copy of the redo stack, most recent last.
func (m *Manager[T]) RedoEntries() []T {
	out := make([]T, len(m.redo))
	copy(out, m.redo)
	return out
}
