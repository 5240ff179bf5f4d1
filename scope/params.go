package scope

import "github.com/go-ecma/scopecore/atom"

// paramState is the five-state automaton classifying each formal parameter
// as it is scanned: a plain identifier stays in paramParameter, while
// before_binding_pattern diverts it to one of the destructuring states.
// before_parameter (or before_rest_parameter) self-loops back to start the
// next parameter once the current one's binding identifiers are done.
type paramState uint8

const (
	paramInit paramState = iota
	paramParameter
	paramDestructuringParameter
	paramRestParameter
	paramDestructuringRestParameter
)

// paramsScopeBuilder implements the FunctionParametersScopeBuilder: it both
// classifies formal parameters via the state machine and, as the
// ScopeBuilder pushed for the entire function construct, is the one builder
// whose pop crosses a function boundary for free-name propagation (it
// implements isFunctionBoundary).
type paramsScopeBuilder struct {
	base FreeNameTracker

	state paramState

	// positionalParameterNames holds one entry per formal parameter in
	// source order, atom.Invalid reserved for a destructuring hole.
	// pendingPositionalSlot is the index of the slot reserved by the most
	// recent before_parameter/before_rest_parameter, filled in by
	// declareParam only when the parameter turns out to be a plain
	// identifier (invariant: every parameter - simple, destructured, or
	// rest - contributes exactly one positional slot).
	positionalParameterNames    []atom.Atom
	pendingPositionalSlot       int
	nonPositionalParameterNames []atom.Atom
	parameterNames              *orderedAtomSet

	simpleParameterList     bool
	hasParameterExpressions bool
	hasDuplicates           bool
	parameterHasArguments   bool
	hasDirectEval           bool

	isArrow     bool
	scriptIndex StencilIndex
	// scopeIndex is the function's own Function-scope Index, allocated when
	// the parameters builder is pushed.
	scopeIndex Index
	// enclosing is the scope index the function's own Function scope
	// encloses into, captured from the enclosing builder at push time.
	enclosing Index
}

func newParamsScopeBuilder(isArrow bool, scriptIndex StencilIndex, scopeIndex, enclosing Index) *paramsScopeBuilder {
	b := &paramsScopeBuilder{
		base:                  *newFreeNameTracker(),
		pendingPositionalSlot: -1,
		parameterNames:        newOrderedAtomSet(),
		simpleParameterList:   true,
		isArrow:               isArrow,
		scriptIndex:           scriptIndex,
		scopeIndex:            scopeIndex,
		enclosing:             enclosing,
	}
	if isArrow {
		// Arrow functions have no own `this`/`arguments`; pre-seeding defs
		// here means uses of either inside the arrow propagate outward to
		// the enclosing function via the ordinary script-boundary merge
		// instead of being treated as free names of the arrow itself.
		b.base.noteDef(atom.This)
		b.base.noteDef(atom.Arguments)
	}
	return b
}

func (b *paramsScopeBuilder) tracker() *FreeNameTracker   { return &b.base }
func (*paramsScopeBuilder) functionBoundary()             {}
func (b *paramsScopeBuilder) scopeIndexForNesting() Index { return b.scopeIndex }

func (b *paramsScopeBuilder) reservePositionalSlot() {
	b.positionalParameterNames = append(b.positionalParameterNames, atom.Invalid)
	b.pendingPositionalSlot = len(b.positionalParameterNames) - 1
}

func (b *paramsScopeBuilder) beforeParameter() {
	switch b.state {
	case paramInit, paramParameter, paramDestructuringParameter:
		b.state = paramParameter
	default:
		fail("function parameters: before_parameter invalid from state %d", b.state)
	}
	b.reservePositionalSlot()
}

func (b *paramsScopeBuilder) beforeRestParameter() {
	switch b.state {
	case paramInit, paramParameter, paramDestructuringParameter:
		b.state = paramRestParameter
	default:
		fail("function parameters: before_rest_parameter invalid from state %d", b.state)
	}
	b.reservePositionalSlot()
	b.simpleParameterList = false
}

func (b *paramsScopeBuilder) beforeBindingPattern() {
	switch b.state {
	case paramParameter:
		b.state = paramDestructuringParameter
	case paramRestParameter:
		b.state = paramDestructuringRestParameter
	default:
		fail("function parameters: before_binding_pattern invalid from state %d", b.state)
	}
	b.simpleParameterList = false
}

func (b *paramsScopeBuilder) afterInitializer() {
	b.simpleParameterList = false
	b.hasParameterExpressions = true
}

func (b *paramsScopeBuilder) beforeComputedPropertyName() {
	b.hasParameterExpressions = true
}

func (b *paramsScopeBuilder) declareParam(name atom.Atom) {
	switch b.state {
	case paramParameter, paramRestParameter:
		if b.pendingPositionalSlot < 0 {
			fail("function parameters: declare_param has no reserved positional slot")
		}
		b.positionalParameterNames[b.pendingPositionalSlot] = name
		b.pendingPositionalSlot = -1
	case paramDestructuringParameter, paramDestructuringRestParameter:
		b.nonPositionalParameterNames = append(b.nonPositionalParameterNames, name)
	default:
		fail("function parameters: declare_param invalid from state %d", b.state)
	}

	if b.parameterNames.add(name) {
		b.hasDuplicates = true
	}
	if name == atom.Arguments {
		b.parameterHasArguments = true
	}
	b.base.noteDef(name)
}

func (b *paramsScopeBuilder) onDirectEval() {
	b.hasDirectEval = true
	b.base.dynamicAccess = true
}
