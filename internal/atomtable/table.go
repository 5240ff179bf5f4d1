// Package atomtable is a minimal string interner for drivers of the scope
// core (the CLI and the event-trace replayer). The core itself never
// interns strings - it only ever compares atom.Atom values - so this table
// lives outside package scope, same as the out-of-scope interner described
// by the core's external interfaces.
package atomtable

import (
	"github.com/dolthub/swiss"
	"github.com/go-ecma/scopecore/atom"
)

// Table interns strings into atom.Atom values. The zero value is not ready
// for use; call New.
type Table struct {
	byName *swiss.Map[string, atom.Atom]
	names  []string
}

// New returns a Table pre-seeded with the two reserved atoms so that callers
// intern "this" and "arguments" to atom.This and atom.Arguments.
func New() *Table {
	t := &Table{
		byName: swiss.NewMap[string, atom.Atom](64),
		names:  make([]string, 1, 64), // index 0 is atom.Invalid, never used
	}
	t.names = append(t.names, "this", "arguments")
	t.byName.Put("this", atom.This)
	t.byName.Put("arguments", atom.Arguments)
	return t
}

// Intern returns the atom for name, allocating a new one if name was not
// seen before.
func (t *Table) Intern(name string) atom.Atom {
	if a, ok := t.byName.Get(name); ok {
		return a
	}
	a := atom.Atom(len(t.names))
	t.names = append(t.names, name)
	t.byName.Put(name, a)
	return a
}

// Name returns the string a was interned from. It panics if a was never
// returned by Intern on this table.
func (t *Table) Name(a atom.Atom) string {
	if a == atom.Invalid || int(a) >= len(t.names) {
		panic("atomtable: atom not interned by this table")
	}
	return t.names[a]
}
