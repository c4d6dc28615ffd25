package raster

import (
	"github.com/benbjohnson/immutable"
)

// VarInfo holds the facts tracked for one variable: a congruence fact and
// a value interval. Note that a zero Align claims the value is exactly
// zero; variables with unknown alignment should carry NoAlignment().
type VarInfo struct {
	Align  ModulusRemainder
	Bounds ConstBounds
}

// Scope maps variable names to facts with lexically scoped push/pop.
// Bindings live in an immutable map, so entering a let body snapshots the
// whole map in O(1) and leaving it restores the snapshot.
type Scope struct {
	m     *immutable.SortedMap
	stack []*immutable.SortedMap
}

// NewScope returns an empty scope.
func NewScope() *Scope {
	return &Scope{m: immutable.NewSortedMap(&stringComparer{})}
}

// Get returns the facts bound to name.
func (s *Scope) Get(name string) (VarInfo, bool) {
	v, ok := s.m.Get(name)
	if !ok {
		return VarInfo{}, false
	}
	return v.(VarInfo), true
}

// Push binds name to info, shadowing any previous binding until Pop.
func (s *Scope) Push(name string, info VarInfo) {
	s.stack = append(s.stack, s.m)
	s.m = s.m.Set(name, info)
}

// Pop undoes the most recent Push.
func (s *Scope) Pop() {
	assert(len(s.stack) > 0, "scope: pop on empty stack")
	s.m = s.stack[len(s.stack)-1]
	s.stack = s.stack[:len(s.stack)-1]
}

// Len returns the number of visible bindings.
func (s *Scope) Len() int { return s.m.Len() }

// stringComparer compares two strings. Implements immutable.Comparer.
type stringComparer struct{}

// Compare returns -1 if a is less than b, returns 1 if a is greater than b,
// and returns 0 if a is equal to b. Panic if a or b is not a string.
func (c *stringComparer) Compare(a, b interface{}) int {
	if i, j := a.(string), b.(string); i < j {
		return -1
	} else if i > j {
		return 1
	}
	return 0
}
