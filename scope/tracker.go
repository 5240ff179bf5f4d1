package scope

import (
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"

	"github.com/go-ecma/scopecore/atom"
)

// FreeNameTracker tallies names defined, used and closed-over within one
// builder's scope, and knows how to merge an inner tracker's findings into
// itself when the inner builder pops.
type FreeNameTracker struct {
	defs           map[atom.Atom]struct{}
	uses           map[atom.Atom]struct{}
	closedOverUses map[atom.Atom]struct{}

	// dynamicAccess records that a direct eval was observed in this scope or
	// in any scope nested within it that has already merged upward. It
	// propagates on every merge regardless of whether the merge crosses a
	// function boundary, since a non-strict direct eval can introduce
	// bindings that shadow anything in an enclosing scope.
	dynamicAccess bool
}

func newFreeNameTracker() *FreeNameTracker {
	return &FreeNameTracker{
		defs:           make(map[atom.Atom]struct{}),
		uses:           make(map[atom.Atom]struct{}),
		closedOverUses: make(map[atom.Atom]struct{}),
	}
}

func (t *FreeNameTracker) noteDef(a atom.Atom) { t.defs[a] = struct{}{} }
func (t *FreeNameTracker) noteUse(a atom.Atom) { t.uses[a] = struct{}{} }

func (t *FreeNameTracker) isDef(a atom.Atom) bool {
	_, ok := t.defs[a]
	return ok
}

// isClosedOverDef reports whether a is both defined here and observed as a
// closed-over use - i.e. it must be heap-allocated.
func (t *FreeNameTracker) isClosedOverDef(a atom.Atom) bool {
	_, def := t.defs[a]
	_, closed := t.closedOverUses[a]
	return def && closed
}

// closedOverOrDynamic reports whether a should be treated as closed over
// for output purposes: either it is genuinely referenced from a strictly
// inner function, or this scope (or something nested in it) observed a
// direct eval, which can dynamically reach any binding in scope and so
// forces every binding to be treated as potentially closed over.
func (t *FreeNameTracker) closedOverOrDynamic(a atom.Atom) bool {
	return t.isClosedOverDef(a) || t.dynamicAccess
}

// isUsedOrClosedOver reports whether a was referenced at all from this
// scope or from something that merged into it.
func (t *FreeNameTracker) isUsedOrClosedOver(a atom.Atom) bool {
	if _, ok := t.uses[a]; ok {
		return true
	}
	_, ok := t.closedOverUses[a]
	return ok
}

// propagateFromInnerNonScript merges inner into self without crossing a
// function boundary: names not locally defined simply become uses, closed-
// over status does not change.
func (t *FreeNameTracker) propagateFromInnerNonScript(inner *FreeNameTracker) {
	for _, u := range sortedUnion(inner.uses, inner.closedOverUses) {
		if _, defined := t.defs[u]; !defined {
			t.uses[u] = struct{}{}
		}
	}
	t.dynamicAccess = t.dynamicAccess || inner.dynamicAccess
}

// propagateFromInnerScript merges inner into self across a function
// boundary: a name used anywhere within the inner function that resolves to
// a binding defined here is promoted to closed-over, since the inner
// function is necessarily a strictly nested function relative to self.
func (t *FreeNameTracker) propagateFromInnerScript(inner *FreeNameTracker) {
	for _, u := range sortedUnion(inner.uses, inner.closedOverUses) {
		if _, defined := t.defs[u]; defined {
			t.closedOverUses[u] = struct{}{}
		} else {
			t.uses[u] = struct{}{}
		}
	}
	t.dynamicAccess = t.dynamicAccess || inner.dynamicAccess
}

// closedOverDefs returns, in deterministic order, the names that are both
// defined here and closed over - the set FunctionScriptStencilBuilder
// records per scope.
func (t *FreeNameTracker) closedOverDefs() []atom.Atom {
	var out []atom.Atom
	for a := range t.closedOverUses {
		if _, def := t.defs[a]; def {
			out = append(out, a)
		}
	}
	slices.Sort(out)
	return out
}

func sortedUnion(a, b map[atom.Atom]struct{}) []atom.Atom {
	seen := make(map[atom.Atom]struct{}, len(a)+len(b))
	for k := range a {
		seen[k] = struct{}{}
	}
	for k := range b {
		seen[k] = struct{}{}
	}
	out := maps.Keys(seen)
	slices.Sort(out)
	return out
}
