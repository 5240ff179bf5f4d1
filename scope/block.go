package scope

import "github.com/go-ecma/scopecore/atom"

type blockFunction struct {
	name        atom.Atom
	scriptIndex StencilIndex
}

// blockScopeBuilder implements the BlockScopeBuilder: a
// `{ ... }` block, switch case, or similar lexical region collecting
// let/const declarations and the function declarations directly nested in
// it (candidates for Annex B promotion).
type blockScopeBuilder struct {
	base FreeNameTracker

	selfIndex  Index
	enclosing  Index
	letNames   *orderedAtomSet
	constNames *orderedAtomSet
	functions  []blockFunction
}

func newBlockScopeBuilder(selfIndex, enclosing Index) *blockScopeBuilder {
	return &blockScopeBuilder{
		base:       *newFreeNameTracker(),
		selfIndex:  selfIndex,
		enclosing:  enclosing,
		letNames:   newOrderedAtomSet(),
		constNames: newOrderedAtomSet(),
	}
}

func (b *blockScopeBuilder) tracker() *FreeNameTracker       { return &b.base }
func (b *blockScopeBuilder) scopeIndexForNesting() Index     { return b.selfIndex }

func (b *blockScopeBuilder) declareLet(a atom.Atom)   { b.letNames.add(a); b.base.noteDef(a) }
func (b *blockScopeBuilder) declareConst(a atom.Atom) { b.constNames.add(a); b.base.noteDef(a) }

// declareFunction records a function declared directly in this block's
// statement list. It becomes both a lexical binding of this block (emitted
// below) and an Annex B promotion candidate; base.noteDef marks the name so
// that any strictly inner function referencing it is seen as closing over
// it the ordinary way regardless of whether Annex B later also promotes it
// to a var.
func (b *blockScopeBuilder) declareFunction(a atom.Atom, scriptIdx StencilIndex) {
	b.functions = append(b.functions, blockFunction{name: a, scriptIndex: scriptIdx})
	b.base.noteDef(a)
}

// finalize emits let names, then each function name, then const names, and
// registers every function as an Annex B candidate owned by selfIndex.
func (b *blockScopeBuilder) finalize(selfIndex, enclosing Index, annexB *annexBList) LexicalData {
	var bindings []BindingName
	for _, n := range b.letNames.names() {
		bindings = append(bindings, BindingName{Atom: n, IsClosedOver: b.base.closedOverOrDynamic(n)})
	}

	inner := make([]StencilIndex, 0, len(b.functions))
	for _, fn := range b.functions {
		bindingIdx := len(bindings)
		bindings = append(bindings, BindingName{Atom: fn.name, IsClosedOver: b.base.closedOverOrDynamic(fn.name)})
		annexB.push(annexBCandidate{
			name:         fn.name,
			ownerScope:   selfIndex,
			bindingIndex: bindingIdx,
			scriptIndex:  fn.scriptIndex,
		})
		inner = append(inner, fn.scriptIndex)
	}

	for _, n := range b.constNames.names() {
		bindings = append(bindings, BindingName{Atom: n, IsClosedOver: b.base.closedOverOrDynamic(n)})
	}

	return LexicalData{
		Bindings:       bindings,
		Enclosing:      enclosing,
		Kind:           LexicalBlock,
		InnerFunctions: inner,
	}
}
