package scope

import "github.com/go-ecma/scopecore/atom"

// StencilIndex identifies one entry in the flat ScriptStencil list.
type StencilIndex int

// FunctionKind distinguishes the handful of function-ish constructs the
// core must track separately for stencil flag purposes.
type FunctionKind uint8

const (
	KindScript FunctionKind = iota
	KindFunctionDeclaration
	KindFunctionExpression
	KindMethod
	KindGetter
	KindSetter
	KindArrow
)

func (k FunctionKind) String() string {
	switch k {
	case KindScript:
		return "script"
	case KindFunctionDeclaration:
		return "function-declaration"
	case KindFunctionExpression:
		return "function-expression"
	case KindMethod:
		return "method"
	case KindGetter:
		return "getter"
	case KindSetter:
		return "setter"
	case KindArrow:
		return "arrow"
	default:
		return "unknown"
	}
}

// ScriptStencil is the per-function serialized descriptor consumed by the
// downstream emitter.
type ScriptStencil struct {
	Kind FunctionKind

	SourceStart, SourceEnd int

	InnerFunctions []StencilIndex

	// ClosedOverBindings is the per-scope, depth-first post-order list of
	// names this function's nested scopes close over, with a zero atom.Atom
	// delimiting each scope's contribution (trailing delimiters stripped).
	ClosedOverBindings []atom.Atom

	NeedsFunctionEnvironmentObjects bool
	FunctionHasExtraBodyVarScope    bool
	HasMappedArgsObj                bool
	FunctionHasThisBinding          bool
	UsesArguments                   bool
	ShouldDeclareArguments          bool
	ArgumentsHasVarBinding          bool
	AlwaysNeedsArgsObj              bool
	HasDuplicateParameters          bool
	IsAnnexBFunction                bool
}

// StencilBuilder tracks in-progress function stencils as functions are
// entered and left in source order, plus a parallel stack of closed-over-
// binding buffers used to record FunctionScriptStencilBuilder's per-scope
// lists.
type StencilBuilder struct {
	scripts []*ScriptStencil
	stack   []StencilIndex

	// closedOverStack holds one accumulator per in-progress function; each
	// scope pop appends its closed-over defs followed by a delimiter onto
	// the top accumulator.
	closedOverStack [][]atom.Atom
}

func newStencilBuilder() *StencilBuilder {
	return &StencilBuilder{}
}

// Enter creates a lazy stencil for a newly-entered function (or script) and,
// if there is an enclosing function on the stack, records the new index as
// one of its inner functions.
func (b *StencilBuilder) Enter(kind FunctionKind, sourceStart int) StencilIndex {
	idx := StencilIndex(len(b.scripts))
	st := &ScriptStencil{Kind: kind, SourceStart: sourceStart}
	b.scripts = append(b.scripts, st)
	if len(b.stack) > 0 {
		parent := b.stack[len(b.stack)-1]
		b.scripts[parent].InnerFunctions = append(b.scripts[parent].InnerFunctions, idx)
	}
	b.stack = append(b.stack, idx)
	b.closedOverStack = append(b.closedOverStack, nil)
	return idx
}

// Leave records sourceEnd on the given (must be top-of-stack) function and
// pops it, attaching its accumulated closed-over-binding list with trailing
// delimiters stripped.
func (b *StencilBuilder) Leave(idx StencilIndex, sourceEnd int) {
	n := len(b.stack)
	if n == 0 || b.stack[n-1] != idx {
		fail("stencil builder: leave(%d) does not match top of stack", idx)
	}
	b.scripts[idx].SourceEnd = sourceEnd

	acc := b.closedOverStack[n-1]
	for len(acc) > 0 && acc[len(acc)-1] == atom.Invalid {
		acc = acc[:len(acc)-1]
	}
	b.scripts[idx].ClosedOverBindings = acc

	b.stack = b.stack[:n-1]
	b.closedOverStack = b.closedOverStack[:n-1]
}

// RecordScopePop appends names (already the closed-over defs of a just-
// popped scope, depth-first post-order) to the current function's
// accumulator, followed by a delimiter.
func (b *StencilBuilder) RecordScopePop(names []atom.Atom) {
	if len(b.closedOverStack) == 0 {
		// No stencil is in progress (not even the script's own), so there is
		// nothing to attach the names to and they are dropped.
		return
	}
	top := len(b.closedOverStack) - 1
	acc := b.closedOverStack[top]
	acc = append(acc, names...)
	acc = append(acc, atom.Invalid)
	b.closedOverStack[top] = acc
}

// Current returns the StencilIndex of the function currently being built,
// or false if none is in progress (before before_script has entered the
// script's own stencil, which stays current at top level).
func (b *StencilBuilder) Current() (StencilIndex, bool) {
	if len(b.stack) == 0 {
		return 0, false
	}
	return b.stack[len(b.stack)-1], true
}

// Get returns the stencil at idx for read or mutation.
func (b *StencilBuilder) Get(idx StencilIndex) *ScriptStencil { return b.scripts[idx] }

// All returns the flat list of stencils in allocation order.
func (b *StencilBuilder) All() []ScriptStencil {
	out := make([]ScriptStencil, len(b.scripts))
	for i, s := range b.scripts {
		out[i] = *s
	}
	return out
}
