package scope

import "github.com/go-ecma/scopecore/atom"

// Core is the single entry point a driver (an AST walker, or a replayed
// event trace) calls to run the scope analysis. Events must arrive in
// pre-order/post-order pairs surrounding each construct, in source order.
// Core is not safe for concurrent use: exactly one goroutine may drive one
// Core through one program.
type Core struct {
	builders builderStack
	kinds    kindStack
	annexB   *annexBList
	stencils *StencilBuilder
	scopes   *DataList

	// strictStack holds the strictness resolved for the current script by
	// the driver at before_script time; functions nested within it are
	// analyzed under the same strictness.
	strictStack []bool

	scopeByNode       map[NodeID]Index
	stencilByNode     map[NodeID]StencilIndex
	namedLambdaByNode map[NodeID]bool
}

// NewCore returns a ready-to-drive Core. defaultStrict is used if Finish is
// ever reached without a matching before_script having run (a programmer
// error path, but currentStrict must still return something).
func NewCore(defaultStrict bool) *Core {
	return &Core{
		annexB:            newAnnexBList(),
		stencils:          newStencilBuilder(),
		scopes:            &DataList{},
		strictStack:       []bool{defaultStrict},
		scopeByNode:       make(map[NodeID]Index),
		stencilByNode:     make(map[NodeID]StencilIndex),
		namedLambdaByNode: make(map[NodeID]bool),
	}
}

func (c *Core) currentStrict() bool {
	return c.strictStack[len(c.strictStack)-1]
}

// popAndRecord pops the innermost builder (merging its tracker into the new
// top, if any, via builderStack.pop) and records its closed-over defs onto
// the current function stencil's accumulator.
func (c *Core) popAndRecord() builder {
	popped := c.builders.pop()
	c.stencils.RecordScopePop(popped.tracker().closedOverDefs())
	return popped
}

// BeforeScript opens the single top-level Global scope. strict is the
// driver-resolved strictness of the script (this core does not parse "use
// strict" directives itself).
func (c *Core) BeforeScript(node NodeID, strict bool, sourceStart int) StencilIndex {
	c.strictStack = append(c.strictStack, strict)
	scriptIdx := c.stencils.Enter(KindScript, sourceStart)
	idx := c.scopes.Allocate()
	if idx != 0 {
		fail("before_script: global scope index must be 0, got %d", idx)
	}
	c.builders.push(newGlobalScopeBuilder())
	c.scopeByNode[node] = idx
	c.stencilByNode[node] = scriptIdx
	return scriptIdx
}

func (c *Core) AfterScript(node NodeID, sourceEnd int) {
	popped := c.popAndRecord()
	g, ok := popped.(*globalScopeBuilder)
	if !ok {
		fail("after_script: builder stack top is not the global scope builder")
	}
	data := g.finalize(c.scopes, c.stencils, c.annexB, c.currentStrict())
	c.scopes.Populate(0, data)

	scriptIdx := c.stencilByNode[node]
	c.stencils.Leave(scriptIdx, sourceEnd)
	c.strictStack = c.strictStack[:len(c.strictStack)-1]
}

func (c *Core) BeforeBlockStatement(node NodeID) {
	enclosing := c.builders.top().scopeIndexForNesting()
	selfIdx := c.scopes.Allocate()
	c.builders.push(newBlockScopeBuilder(selfIdx, enclosing))
	c.scopeByNode[node] = selfIdx
}

func (c *Core) AfterBlockStatement(node NodeID) {
	popped := c.popAndRecord()
	b, ok := popped.(*blockScopeBuilder)
	if !ok {
		fail("after_block_statement: builder stack top is not a block scope builder")
	}
	data := b.finalize(b.selfIndex, b.enclosing, c.annexB)
	c.scopes.Populate(b.selfIndex, data)
}

func (c *Core) BeforeVarDeclaration()   { c.kinds.push(KindVar) }
func (c *Core) AfterVarDeclaration()    { c.kinds.pop() }
func (c *Core) BeforeLetDeclaration()   { c.kinds.push(KindLet) }
func (c *Core) AfterLetDeclaration()    { c.kinds.pop() }
func (c *Core) BeforeConstDeclaration() { c.kinds.push(KindConst) }
func (c *Core) AfterConstDeclaration()  { c.kinds.pop() }

// OnBindingIdentifier dispatches a to whichever builder owns bindings of the
// kind on top of the ScopeKindStack. If the stack is empty, the identifier
// belongs to a construct this core does not support and the event is
// silently ignored, so the downstream emitter can report
// "not implemented" uniformly rather than the core aborting.
func (c *Core) OnBindingIdentifier(a atom.Atom) {
	kind, ok := c.kinds.top()
	if !ok {
		return
	}
	switch kind {
	case KindVar:
		c.declareVarHoisted(a)
	case KindLet:
		c.declareLetOrConstAtTop(a, true)
	case KindConst:
		c.declareLetOrConstAtTop(a, false)
	case KindFunctionName:
		// The function's own declare_function call (before_function_*) has
		// already recorded the binding; this only needs the current
		// tracker to see the def so self-references resolve correctly.
		c.builders.top().tracker().noteDef(a)
	case KindFormalParameter:
		p, ok := c.builders.top().(*paramsScopeBuilder)
		if !ok {
			fail("on_binding_identifier: formal parameter kind active but a parameters builder is not on top of the stack")
		}
		p.declareParam(a)
	default:
		fail("on_binding_identifier: unrecognized scope kind stack entry %d", kind)
	}
}

func (c *Core) OnNonBindingIdentifier(a atom.Atom) {
	c.builders.top().tracker().noteUse(a)
}

// declareVarHoisted walks the builder stack outward from the innermost
// frame to the nearest Function or Global builder, since a var declaration
// always binds at that level regardless of how many blocks it is nested
// inside.
func (c *Core) declareVarHoisted(a atom.Atom) {
	for i := len(c.builders.frames) - 1; i >= 0; i-- {
		switch b := c.builders.frames[i].(type) {
		case *globalScopeBuilder:
			b.declareVar(a)
			return
		case *functionBodyScopeBuilder:
			b.declareVar(a)
			return
		}
	}
	fail("on_binding_identifier: var declaration with no enclosing function or global scope")
}

func (c *Core) declareLetOrConstAtTop(a atom.Atom, isLet bool) {
	switch b := c.builders.top().(type) {
	case *globalScopeBuilder:
		if isLet {
			b.declareLet(a)
		} else {
			b.declareConst(a)
		}
	case *blockScopeBuilder:
		if isLet {
			b.declareLet(a)
		} else {
			b.declareConst(a)
		}
	case *functionBodyScopeBuilder:
		if isLet {
			b.declareLet(a)
		} else {
			b.declareConst(a)
		}
	default:
		fail("on_binding_identifier: let/const declaration with an unsupported builder on top of the stack")
	}
}

func (c *Core) declareFunctionAtTop(name atom.Atom, scriptIdx StencilIndex) {
	switch b := c.builders.top().(type) {
	case *globalScopeBuilder:
		b.declareFunction(name, scriptIdx)
	case *blockScopeBuilder:
		b.declareFunction(name, scriptIdx)
	case *functionBodyScopeBuilder:
		b.declareFunction(name, scriptIdx)
	default:
		fail("before_function_declaration: unsupported enclosing builder")
	}
}

// BeforeFunctionDeclaration records the function as a declared-function
// binding of whatever builder is innermost (Global, Block or
// FunctionBody), then returns the new stencil index for the emitter.
func (c *Core) BeforeFunctionDeclaration(node NodeID, name atom.Atom, isGenerator, isAsync bool, sourceStart int) StencilIndex {
	scriptIdx := c.stencils.Enter(KindFunctionDeclaration, sourceStart)
	c.declareFunctionAtTop(name, scriptIdx)
	c.stencilByNode[node] = scriptIdx
	return scriptIdx
}

func (c *Core) AfterFunctionDeclaration(node NodeID, sourceEnd int) {
	c.afterFunctionLike(node, sourceEnd)
}

// BeforeFunctionExpression pushes a named-lambda scope only when name is not
// atom.Invalid; an anonymous function expression encloses directly into
// whatever was already on top of the stack.
func (c *Core) BeforeFunctionExpression(node NodeID, name atom.Atom, isGenerator, isAsync bool, sourceStart int) StencilIndex {
	scriptIdx := c.stencils.Enter(KindFunctionExpression, sourceStart)
	if name != atom.Invalid {
		enclosing := c.builders.top().scopeIndexForNesting()
		selfIdx := c.scopes.Allocate()
		c.builders.push(newNamedLambdaScopeBuilder(name, selfIdx, enclosing))
		c.namedLambdaByNode[node] = true
		c.scopeByNode[node] = selfIdx
	}
	c.stencilByNode[node] = scriptIdx
	return scriptIdx
}

func (c *Core) AfterFunctionExpression(node NodeID, sourceEnd int) {
	c.afterFunctionLike(node, sourceEnd)
	if c.namedLambdaByNode[node] {
		popped := c.popAndRecord()
		nl, ok := popped.(*namedLambdaScopeBuilder)
		if !ok {
			fail("after_function_expression: builder stack top is not the named-lambda scope builder")
		}
		c.scopes.Populate(nl.selfIndex, nl.finalize())
		delete(c.namedLambdaByNode, node)
	}
}

func (c *Core) BeforeMethod(node NodeID, isGenerator, isAsync bool, sourceStart int) StencilIndex {
	return c.beforeFunctionLikeNode(node, KindMethod, sourceStart)
}
func (c *Core) AfterMethod(node NodeID, sourceEnd int) { c.afterFunctionLike(node, sourceEnd) }

func (c *Core) BeforeGetter(node NodeID, sourceStart int) StencilIndex {
	return c.beforeFunctionLikeNode(node, KindGetter, sourceStart)
}
func (c *Core) AfterGetter(node NodeID, sourceEnd int) { c.afterFunctionLike(node, sourceEnd) }

func (c *Core) BeforeSetter(node NodeID, sourceStart int) StencilIndex {
	return c.beforeFunctionLikeNode(node, KindSetter, sourceStart)
}
func (c *Core) AfterSetter(node NodeID, sourceEnd int) { c.afterFunctionLike(node, sourceEnd) }

func (c *Core) BeforeArrowFunction(node NodeID, sourceStart int) StencilIndex {
	return c.beforeFunctionLikeNode(node, KindArrow, sourceStart)
}
func (c *Core) AfterArrowFunction(node NodeID, sourceEnd int) { c.afterFunctionLike(node, sourceEnd) }

func (c *Core) beforeFunctionLikeNode(node NodeID, kind FunctionKind, sourceStart int) StencilIndex {
	scriptIdx := c.stencils.Enter(kind, sourceStart)
	c.stencilByNode[node] = scriptIdx
	return scriptIdx
}

// afterFunctionLike pops the parameters builder (crossing the function
// boundary for free-name propagation) and closes its stencil. It is shared
// by every function-like construct's after event; named function
// expressions additionally pop their named-lambda wrapper afterward.
func (c *Core) afterFunctionLike(node NodeID, sourceEnd int) {
	popped := c.popAndRecord()
	if _, ok := popped.(*paramsScopeBuilder); !ok {
		fail("after_function_*: builder stack top is not the parameters builder")
	}
	scriptIdx := c.stencilByNode[node]
	c.stencils.Leave(scriptIdx, sourceEnd)
}

func (c *Core) BeforeFunctionParameters(node NodeID) {
	scriptIdx, ok := c.stencils.Current()
	if !ok {
		fail("before_function_parameters: no function currently being built")
	}
	enclosing := c.builders.top().scopeIndexForNesting()
	scopeIdx := c.scopes.Allocate()
	isArrow := c.stencils.Get(scriptIdx).Kind == KindArrow
	c.builders.push(newParamsScopeBuilder(isArrow, scriptIdx, scopeIdx, enclosing))
	c.scopeByNode[node] = scopeIdx
	c.kinds.push(KindFormalParameter)
}

func (c *Core) AfterFunctionParameters() { c.kinds.pop() }

func (c *Core) paramsBuilderOrFail(op string) *paramsScopeBuilder {
	p, ok := c.builders.top().(*paramsScopeBuilder)
	if !ok {
		fail("%s: parameters builder is not on top of the stack", op)
	}
	return p
}

func (c *Core) BeforeParameter() { c.paramsBuilderOrFail("before_parameter").beforeParameter() }
func (c *Core) BeforeRestParameter() {
	c.paramsBuilderOrFail("before_rest_parameter").beforeRestParameter()
}
func (c *Core) BeforeBindingPattern() {
	c.paramsBuilderOrFail("before_binding_pattern").beforeBindingPattern()
}
func (c *Core) AfterInitializer() { c.paramsBuilderOrFail("after_initializer").afterInitializer() }
func (c *Core) BeforeComputedPropertyName() {
	c.paramsBuilderOrFail("before_computed_property_name").beforeComputedPropertyName()
}

func (c *Core) BeforeFunctionBody(node NodeID) {
	varIdx, lexIdx := c.scopes.AllocateFunctionPair()
	c.builders.push(newFunctionBodyScopeBuilder(varIdx, lexIdx))
	c.scopeByNode[node] = lexIdx
}

func (c *Core) AfterFunctionBody() {
	popped := c.popAndRecord()
	body, ok := popped.(*functionBodyScopeBuilder)
	if !ok {
		fail("after_function_body: builder stack top is not the function body builder")
	}
	params, ok := c.builders.top().(*paramsScopeBuilder)
	if !ok {
		fail("after_function_body: builder stack top is not the parameters builder")
	}
	finalizeFunction(params, body, params.enclosing, c.annexB, c.scopes, c.stencils, c.currentStrict())
}

// OnDirectEval marks the current scope's tracker as dynamically accessed
// (propagating upward through every subsequent pop) and flags the nearest
// enclosing parameters builder's has_direct_eval, which gates
// has_extensible_scope in finalizeFunction's step 6; step 8's
// always_needs_args_obj reads the propagated dynamic-access mark instead.
func (c *Core) OnDirectEval() {
	c.builders.top().tracker().dynamicAccess = true
	for i := len(c.builders.frames) - 1; i >= 0; i-- {
		if p, ok := c.builders.frames[i].(*paramsScopeBuilder); ok {
			p.hasDirectEval = true
			return
		}
	}
}

// Finish asserts the structural invariants every well-formed program must
// leave the core in, and returns the output.
func (c *Core) Finish() *Output {
	if !c.builders.empty() {
		fail("finish: builder stack is not empty - an after_* event is missing")
	}
	if !c.kinds.empty() {
		fail("finish: scope kind stack is not empty - an after_*_declaration event is missing")
	}
	if !c.scopes.AllPopulated() {
		fail("finish: not every allocated scope index was populated")
	}

	annexBFlags := make(map[NodeID]bool, len(c.stencilByNode))
	for node, idx := range c.stencilByNode {
		if c.stencils.Get(idx).IsAnnexBFunction {
			annexBFlags[node] = true
		}
	}

	return &Output{
		Scopes:        c.scopes,
		ByNode:        c.scopeByNode,
		StencilByNode: c.stencilByNode,
		AnnexBFlags:   annexBFlags,
		Stencils:      c.stencils.All(),
	}
}
