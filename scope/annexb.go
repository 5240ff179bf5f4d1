package scope

import "github.com/go-ecma/scopecore/atom"

// annexBCandidate is one function eligible for Annex B legacy block-function
// hoisting: a function declared directly in a Block, CaseClause or
// DefaultClause's statement list.
type annexBCandidate struct {
	name         atom.Atom
	ownerScope   Index
	bindingIndex int
	scriptIndex  StencilIndex
}

// annexBList is the shared PossiblyAnnexBFunctionList: a mapping from atom
// to the list of candidates declared under that name, in declaration order.
// It is populated during block-scope finalization and consumed (cleared) at
// the nearest enclosing function or script boundary. Every sibling block
// that declares a function of the same name contributes its own surviving
// candidate - e.g. `if (c) { function h(){} } else { function h(){} }` must
// promote both `h`s, not just the most recent one.
type annexBList struct {
	byName map[atom.Atom][]annexBCandidate
	order  []atom.Atom
}

func newAnnexBList() *annexBList {
	return &annexBList{byName: make(map[atom.Atom][]annexBCandidate)}
}

// push appends a new candidate under its name, recording the name's first
// occurrence in order.
func (l *annexBList) push(c annexBCandidate) {
	if _, exists := l.byName[c.name]; !exists {
		l.order = append(l.order, c.name)
	}
	l.byName[c.name] = append(l.byName[c.name], c)
}

// removeIfExists drops every candidate for name, if any - used when a
// let/const/"arguments" declaration at the enclosing boundary makes the
// promotion an early error under the real (non-Annex-B) semantics.
func (l *annexBList) removeIfExists(a atom.Atom) {
	if _, ok := l.byName[a]; !ok {
		return
	}
	delete(l.byName, a)
	for i, n := range l.order {
		if n == a {
			l.order = append(l.order[:i], l.order[i+1:]...)
			break
		}
	}
}

// names returns the surviving candidate names in original declaration
// order, one entry per name regardless of how many candidates it carries.
func (l *annexBList) names() []atom.Atom {
	return append([]atom.Atom(nil), l.order...)
}

// markAnnexB flips the owner lexical scope's binding flag and the backing
// function's script-level flag for every surviving candidate of every
// surviving name, then clears the list.
func (l *annexBList) markAnnexB(scopes *DataList, stencils *StencilBuilder) {
	for _, name := range l.order {
		for _, c := range l.byName[name] {
			scopes.flagLexicalBindingAt(c.ownerScope, c.bindingIndex, FlagAnnexB)
			stencils.Get(c.scriptIndex).IsAnnexBFunction = true
		}
	}
	l.clear()
}

func (l *annexBList) clear() {
	l.byName = make(map[atom.Atom][]annexBCandidate)
	l.order = nil
}
