// Package history provides a bounded undo/redo stack of immutable entries.
package history

// DefaultCap is the number of entries retained when no cap is given.
const DefaultCap = 50

// Stack is a bounded, linear history with a cursor. Entries are stored as
// given; callers are responsible for pushing values that are not shared
// with live state.
//
// Invariant: when non-empty, 0 <= index < len(entries) <= cap.
type Stack[T any] struct {
	entries []T
	index   int
	cap     int
}

// New returns an empty stack retaining at most capacity entries. A
// capacity below 1 selects DefaultCap.
func New[T any](capacity int) *Stack[T] {
	if capacity < 1 {
		capacity = DefaultCap
	}
	return &Stack[T]{index: -1, cap: capacity}
}

// Push discards any entries after the cursor, appends v, moves the cursor
// to it and evicts the oldest entry if the cap is exceeded.
func (s *Stack[T]) Push(v T) {
	s.entries = append(s.entries[:s.index+1], v)
	if len(s.entries) > s.cap {
		// Shift rather than reslice so the backing array does not grow
		// without bound across long sessions.
		copy(s.entries, s.entries[1:])
		var zero T
		s.entries[len(s.entries)-1] = zero
		s.entries = s.entries[:len(s.entries)-1]
	}
	s.index = len(s.entries) - 1
}

// Reset discards all entries and makes v the sole entry.
func (s *Stack[T]) Reset(v T) {
	s.entries = []T{v}
	s.index = 0
}

// Back moves the cursor one entry towards the oldest and returns that entry.
// It returns false, leaving the cursor alone, when already at the oldest.
func (s *Stack[T]) Back() (T, bool) {
	if !s.CanUndo() {
		var zero T
		return zero, false
	}
	s.index--
	return s.entries[s.index], true
}

// Forward moves the cursor one entry towards the newest and returns that
// entry. It returns false when already at the newest.
func (s *Stack[T]) Forward() (T, bool) {
	if !s.CanRedo() {
		var zero T
		return zero, false
	}
	s.index++
	return s.entries[s.index], true
}

// Current returns the entry under the cursor.
func (s *Stack[T]) Current() (T, bool) {
	if s.index < 0 {
		var zero T
		return zero, false
	}
	return s.entries[s.index], true
}

// CanUndo reports whether Back would succeed.
func (s *Stack[T]) CanUndo() bool {
	return s.index > 0
}

// CanRedo reports whether Forward would succeed.
func (s *Stack[T]) CanRedo() bool {
	return s.index >= 0 && s.index < len(s.entries)-1
}

// Len returns the number of retained entries.
func (s *Stack[T]) Len() int {
	return len(s.entries)
}

// Index returns the cursor position, or -1 when empty.
func (s *Stack[T]) Index() int {
	return s.index
}

// Cap returns the maximum number of retained entries.
func (s *Stack[T]) Cap() int {
	return s.cap
}
