// Package ordering keeps members of an unordered set in a sparse positional
// order.
//
// Positions are caller-chosen integers that need not be contiguous, so a member
// can be placed between two others by picking any unused integer in the gap
// without renumbering the rest. The dense 1-based rank of a member is derived
// on read from the sorted positions.
//
// A Store is not safe for concurrent mutation.
package ordering

import (
	"cmp"
	"errors"
	"math"
	"slices"
	"sort"
)

var (
	// ErrNotPositioned is returned when a member has no position
	ErrNotPositioned = errors.New("member has no position")

	// ErrNoGap is returned when no unused position exists between two members
	ErrNoGap = errors.New("no free position between members")

	// ErrNoRoom is returned when the last member already holds the largest position
	ErrNoRoom = errors.New("no free position after the last member")
)

// Entry is a single position -> member assignment
type Entry[T comparable] struct {
	Position int
	ID       T
}

// Store maps sparse positions to members. Positions are unique and no member
// holds more than one position.
type Store[T comparable] struct {
	entries []Entry[T] // sorted by Position, ascending
	index   map[T]int  // member -> position
}

// New creates an empty store
func New[T comparable]() *Store[T] {
	return &Store[T]{index: make(map[T]int)}
}

// FromPositions creates a store seeded from persisted positions
func FromPositions[T comparable](positions map[int]T) *Store[T] {
	s := New[T]()
	s.SetPositions(positions)
	return s
}

// SetPosition places id at position. Any previous position of id is removed.
// If another member holds position, it is overwritten and becomes unpositioned.
func (s *Store[T]) SetPosition(id T, position int) {
	if current, ok := s.index[id]; ok {
		if current == position {
			return
		}
		s.removeAt(current)
	}

	i, found := s.search(position)
	if found {
		delete(s.index, s.entries[i].ID)
		s.entries[i].ID = id
	} else {
		s.entries = slices.Insert(s.entries, i, Entry[T]{Position: position, ID: id})
	}
	s.index[id] = position
}

// SetPositions replaces all positions
func (s *Store[T]) SetPositions(positions map[int]T) {
	s.entries = make([]Entry[T], 0, len(positions))
	s.index = make(map[T]int, len(positions))

	keys := make([]int, 0, len(positions))
	for position := range positions {
		keys = append(keys, position)
	}
	sort.Ints(keys)

	for _, position := range keys {
		s.SetPosition(positions[position], position)
	}
}

// Position returns the position of id
func (s *Store[T]) Position(id T) (int, bool) {
	position, ok := s.index[id]
	return position, ok
}

// Order returns the members sorted by position
func (s *Store[T]) Order() []T {
	order := make([]T, len(s.entries))
	for i, e := range s.entries {
		order[i] = e.ID
	}
	return order
}

// Rank returns the 1-based index of id within Order
func (s *Store[T]) Rank(id T) (int, bool) {
	position, ok := s.index[id]
	if !ok {
		return 0, false
	}
	i, _ := s.search(position)
	return i + 1, true
}

// Positions returns a copy of all assignments in ascending position order
func (s *Store[T]) Positions() []Entry[T] {
	return slices.Clone(s.entries)
}

// PositionMap returns the assignments as a position -> member map
func (s *Store[T]) PositionMap() map[int]T {
	m := make(map[int]T, len(s.entries))
	for _, e := range s.entries {
		m[e.Position] = e.ID
	}
	return m
}

// Len returns the number of positioned members
func (s *Store[T]) Len() int {
	return len(s.entries)
}

// Remove unpositions id. It reports whether id had a position.
func (s *Store[T]) Remove(id T) bool {
	position, ok := s.index[id]
	if !ok {
		return false
	}
	s.removeAt(position)
	return true
}

// Append places id after the last member and returns the chosen position
func (s *Store[T]) Append(id T) (int, error) {
	if n := len(s.entries); n > 0 && s.entries[n-1].Position == math.MaxInt && s.entries[n-1].ID != id {
		return 0, ErrNoRoom
	}
	s.Remove(id)

	position := 1
	if n := len(s.entries); n > 0 {
		position = s.entries[n-1].Position + 1
	}
	s.SetPosition(id, position)
	return position, nil
}

// Between returns an unused position strictly between the positions of before
// and after. When other members already sit in that interval the midpoint of
// the widest remaining gap is chosen.
func (s *Store[T]) Between(before, after T) (int, error) {
	lo, ok := s.index[before]
	if !ok {
		return 0, ErrNotPositioned
	}
	hi, ok := s.index[after]
	if !ok {
		return 0, ErrNotPositioned
	}
	if lo > hi {
		lo, hi = hi, lo
	}

	start, _ := s.search(lo)
	end, _ := s.search(hi)

	// widths are unsigned so gaps spanning most of the int range do not overflow
	gapStart, gapWidth := lo, uint64(0)
	prev := lo
	for _, e := range s.entries[start+1 : end+1] {
		if width := uint64(e.Position) - uint64(prev); width > gapWidth {
			gapStart, gapWidth = prev, width
		}
		prev = e.Position
	}
	if gapWidth < 2 {
		return 0, ErrNoGap
	}
	return int(uint64(gapStart) + gapWidth/2), nil
}

func (s *Store[T]) removeAt(position int) {
	i, found := s.search(position)
	if !found {
		return
	}
	delete(s.index, s.entries[i].ID)
	s.entries = slices.Delete(s.entries, i, i+1)
}

// search returns the index where position is or would be inserted
func (s *Store[T]) search(position int) (int, bool) {
	return slices.BinarySearchFunc(s.entries, position, func(e Entry[T], target int) int {
		return cmp.Compare(e.Position, target)
	})
}
