package scope

import (
	"github.com/dolthub/swiss"

	"github.com/go-ecma/scopecore/atom"
)

// orderedAtomSet is an insertion-ordered set of atoms with O(1) membership
// tests. Scope builders are created and torn down at a very high rate
// during a single-pass compile, so membership is backed by a swiss-table
// map rather than a plain Go map, which keeps insert/lookup cheap without
// paying map-growth jitter on every single nested block.
type orderedAtomSet struct {
	index *swiss.Map[atom.Atom, int]
	order []atom.Atom
}

func newOrderedAtomSet() *orderedAtomSet {
	return &orderedAtomSet{index: swiss.NewMap[atom.Atom, int](8)}
}

// add inserts a if absent and reports whether it was already present.
func (s *orderedAtomSet) add(a atom.Atom) (alreadyPresent bool) {
	if _, ok := s.index.Get(a); ok {
		return true
	}
	s.index.Put(a, len(s.order))
	s.order = append(s.order, a)
	return false
}

func (s *orderedAtomSet) has(a atom.Atom) bool {
	_, ok := s.index.Get(a)
	return ok
}

func (s *orderedAtomSet) remove(a atom.Atom) {
	i, ok := s.index.Get(a)
	if !ok {
		return
	}
	s.order = append(s.order[:i], s.order[i+1:]...)
	s.index.Delete(a)
	for j := i; j < len(s.order); j++ {
		s.index.Put(s.order[j], j)
	}
}

func (s *orderedAtomSet) names() []atom.Atom {
	return append([]atom.Atom(nil), s.order...)
}

func (s *orderedAtomSet) len() int { return len(s.order) }
