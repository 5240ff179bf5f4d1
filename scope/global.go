package scope

import "github.com/go-ecma/scopecore/atom"

// globalScopeBuilder implements the GlobalScopeBuilder: the
// single script-level scope, gathering declared vars, functions and
// lexicals before a single finalize pass applies Annex B and emits the
// canonical binding order.
type globalScopeBuilder struct {
	base FreeNameTracker

	declaredFunctionNames *orderedAtomSet
	declaredVarNames      *orderedAtomSet
	letNames              *orderedAtomSet
	constNames            *orderedAtomSet
	functionsToInitialize []StencilIndex
}

func newGlobalScopeBuilder() *globalScopeBuilder {
	return &globalScopeBuilder{
		base:                  *newFreeNameTracker(),
		declaredFunctionNames: newOrderedAtomSet(),
		declaredVarNames:      newOrderedAtomSet(),
		letNames:              newOrderedAtomSet(),
		constNames:            newOrderedAtomSet(),
	}
}

func (b *globalScopeBuilder) tracker() *FreeNameTracker { return &b.base }
func (*globalScopeBuilder) scopeIndexForNesting() Index { return 0 }

func (b *globalScopeBuilder) declareVar(a atom.Atom) {
	b.declaredVarNames.add(a)
	b.base.noteDef(a)
}

func (b *globalScopeBuilder) declareLet(a atom.Atom) {
	b.letNames.add(a)
	b.base.noteDef(a)
}

func (b *globalScopeBuilder) declareConst(a atom.Atom) {
	b.constNames.add(a)
	b.base.noteDef(a)
}

// declareFunction records a top-level FunctionDeclaration: it is both a
// var-declared name (until step 2 of finalize removes it) and a function
// name, and contributes scriptIdx to functions_to_initialize in source
// order.
func (b *globalScopeBuilder) declareFunction(a atom.Atom, scriptIdx StencilIndex) {
	b.declaredFunctionNames.add(a)
	b.declaredVarNames.add(a)
	b.functionsToInitialize = append(b.functionsToInitialize, scriptIdx)
	b.base.noteDef(a)
}

// finalize runs the Annex B pass (when non-strict) and emits the canonical
// binding order: var, function (flagged top-level-function), let, const.
func (b *globalScopeBuilder) finalize(scopes *DataList, stencils *StencilBuilder, annexB *annexBList, strict bool) GlobalData {
	if !strict {
		for _, n := range b.letNames.names() {
			annexB.removeIfExists(n)
		}
		for _, n := range b.constNames.names() {
			annexB.removeIfExists(n)
		}
		for _, n := range annexB.names() {
			b.declaredVarNames.add(n)
		}
		annexB.markAnnexB(scopes, stencils)
	} else {
		annexB.clear()
	}

	for _, n := range b.declaredFunctionNames.names() {
		b.declaredVarNames.remove(n)
	}

	var bindings []BindingName
	for _, n := range b.declaredVarNames.names() {
		bindings = append(bindings, BindingName{Atom: n, IsClosedOver: b.base.closedOverOrDynamic(n)})
	}
	for _, n := range b.declaredFunctionNames.names() {
		bindings = append(bindings, BindingName{
			Atom:         n,
			IsClosedOver: b.base.closedOverOrDynamic(n),
			Flags:        FlagTopLevelFunction,
		})
	}
	for _, n := range b.letNames.names() {
		bindings = append(bindings, BindingName{Atom: n, IsClosedOver: b.base.closedOverOrDynamic(n)})
	}
	for _, n := range b.constNames.names() {
		bindings = append(bindings, BindingName{Atom: n, IsClosedOver: b.base.closedOverOrDynamic(n)})
	}

	return GlobalData{
		Bindings:              bindings,
		FunctionsToInitialize: b.functionsToInitialize,
	}
}
