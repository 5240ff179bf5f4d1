package scope

import "github.com/go-ecma/scopecore/atom"

// namedLambdaScopeBuilder implements the FunctionExpressionScopeBuilder: the
// one-binding immutable "named-lambda" environment a named function
// expression introduces so the function can refer to its own name from
// within itself. It is pushed only when the expression has a name; an
// anonymous function expression instead encloses directly into whatever
// was on top of the stack (see Core.BeforeFunctionExpression).
type namedLambdaScopeBuilder struct {
	base FreeNameTracker
	name atom.Atom

	// selfIndex is this scope's own allocated Index, returned to anything
	// nested directly within the named-lambda scope.
	selfIndex Index
	enclosing Index
}

func newNamedLambdaScopeBuilder(name atom.Atom, selfIndex, enclosing Index) *namedLambdaScopeBuilder {
	b := &namedLambdaScopeBuilder{base: *newFreeNameTracker(), name: name, selfIndex: selfIndex, enclosing: enclosing}
	b.base.noteDef(name)
	return b
}

func (b *namedLambdaScopeBuilder) tracker() *FreeNameTracker   { return &b.base }
func (b *namedLambdaScopeBuilder) scopeIndexForNesting() Index { return b.selfIndex }

// finalize must run after the function construct it encloses has already
// popped (and merged into b.base via propagateFromInnerScript), so
// base.closedOverOrDynamic reflects whether the function referenced its own
// name from anywhere within itself.
func (b *namedLambdaScopeBuilder) finalize() LexicalData {
	return LexicalData{
		Bindings:  []BindingName{{Atom: b.name, IsClosedOver: b.base.closedOverOrDynamic(b.name)}},
		Enclosing: b.enclosing,
		Kind:      LexicalNamedLambda,
	}
}
