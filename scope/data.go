package scope

import "github.com/go-ecma/scopecore/atom"

// Index is a stable dense index assigned at scope allocation time, before
// the scope's content is known.
type Index int

// BindingFlags annotate a BindingName beyond its atom and closed-over bit.
type BindingFlags uint8

const (
	// FlagTopLevelFunction marks a global binding that backs
	// CreateGlobalFunctionBinding rather than a plain var.
	FlagTopLevelFunction BindingFlags = 1 << iota
	// FlagAnnexB marks a binding promoted (or, for the owning block's
	// lexical function binding, flagged) by Annex B legacy hoisting.
	FlagAnnexB
)

// BindingName is one named slot in a scope's binding layout.
type BindingName struct {
	Atom         atom.Atom
	IsClosedOver bool
	Flags        BindingFlags
}

func (b BindingName) hasFlag(f BindingFlags) bool { return b.Flags&f != 0 }

// LexicalKind distinguishes the three reasons a Lexical scope exists.
type LexicalKind uint8

const (
	LexicalBlock LexicalKind = iota
	LexicalNamedLambda
	LexicalFunctionLexical
)

// Data is the sealed tagged union calls ScopeData. Exactly one of
// the concrete types below backs every populated Index.
type Data interface {
	isData()
}

// GlobalData is the single script-level scope.
type GlobalData struct {
	Bindings             []BindingName
	FunctionsToInitialize []StencilIndex
}

// LexicalData is a let/const (or named-lambda, or function-lexical) scope.
type LexicalData struct {
	Bindings       []BindingName
	Enclosing      Index
	Kind           LexicalKind
	InnerFunctions []StencilIndex
}

// FunctionData is a function's parameter scope.
type FunctionData struct {
	// Bindings holds positional parameters first (a zero atom.Invalid entry
	// is a destructuring hole), then non-positional parameter names, then -
	// only when there is no extra body-var scope - deduplicated body var
	// names.
	Bindings               []BindingName
	HasParameterExpressions bool
	Enclosing              Index
	ScriptIndex            StencilIndex
	IsArrow                bool
}

// VarData is a function's extra body-var scope, only populated when
// HasExtensibleScope's owning function has parameter expressions.
type VarData struct {
	Bindings            []BindingName
	HasExtensibleScope  bool
	Enclosing           Index
}

// AliasData is a placeholder for a scope ECMA-262 would create a distinct
// environment for, but that this implementation merges into Target.
type AliasData struct {
	Target Index
}

func (GlobalData) isData()   {}
func (LexicalData) isData()  {}
func (FunctionData) isData() {}
func (VarData) isData()      {}
func (AliasData) isData()    {}

// DataList is the final output container: scope indices are allocated
// before their content is known, then populated exactly once each.
type DataList struct {
	entries []Data
}

// Allocate reserves the next Index. Its Data is unset until Populate is
// called; calling Get before that is a programmer error.
func (l *DataList) Allocate() Index {
	l.entries = append(l.entries, nil)
	return Index(len(l.entries) - 1)
}

// AllocateLexicalFollowing allocates the scope immediately following varIdx
// and asserts the invariant that a function body's lexical scope index is
// exactly its var scope index plus one. Callers must invoke it immediately
// after allocating varIdx, with no other allocation in between.
func (l *DataList) AllocateLexicalFollowing(varIdx Index) Index {
	lex := l.Allocate()
	if lex != varIdx+1 {
		fail("lexical scope index %d does not immediately follow var scope index %d", lex, varIdx)
	}
	return lex
}

// AllocateFunctionPair allocates a function body's var and lexical scope
// indices back to back, guaranteeing lexical == var+1 regardless of which
// of them ends up holding real data versus an Alias (finalizeFunction
// decides that later).
func (l *DataList) AllocateFunctionPair() (varIdx, lexIdx Index) {
	varIdx = l.Allocate()
	lexIdx = l.AllocateLexicalFollowing(varIdx)
	return varIdx, lexIdx
}

// Populate fills in previously allocated idx. It is a programmer error to
// populate the same index twice or an index that was never allocated.
func (l *DataList) Populate(idx Index, d Data) {
	if int(idx) < 0 || int(idx) >= len(l.entries) {
		fail("scope index %d was never allocated", idx)
	}
	if l.entries[idx] != nil {
		fail("scope index %d populated more than once", idx)
	}
	l.entries[idx] = d
}

// Get returns the data at idx. It is a programmer error to call Get before
// Populate.
func (l *DataList) Get(idx Index) Data {
	if int(idx) < 0 || int(idx) >= len(l.entries) {
		fail("scope index %d out of range", idx)
	}
	if l.entries[idx] == nil {
		fail("scope index %d read before it was populated", idx)
	}
	return l.entries[idx]
}

// Len reports the number of allocated indices, populated or not.
func (l *DataList) Len() int { return len(l.entries) }

// flagLexicalBindingAt flips flags on the bindingIndex'th binding of an
// already-populated Lexical scope. It is a programmer error if idx is not a
// populated LexicalData or bindingIndex is out of range.
func (l *DataList) flagLexicalBindingAt(idx Index, bindingIndex int, flags BindingFlags) {
	ld, ok := l.Get(idx).(LexicalData)
	if !ok {
		fail("scope index %d is not a lexical scope", idx)
	}
	if bindingIndex < 0 || bindingIndex >= len(ld.Bindings) {
		fail("lexical scope %d has no binding at index %d", idx, bindingIndex)
	}
	ld.Bindings[bindingIndex].Flags |= flags
	l.entries[idx] = ld
}

// AllPopulated reports whether every allocated index has been populated.
func (l *DataList) AllPopulated() bool {
	for _, e := range l.entries {
		if e == nil {
			return false
		}
	}
	return true
}
