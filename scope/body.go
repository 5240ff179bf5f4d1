package scope

import "github.com/go-ecma/scopecore/atom"

// functionBodyScopeBuilder implements the FunctionBodyScopeBuilder: it
// collects var/let/const names declared directly in a function's top-level
// body (not inside a nested block) along with the functions to initialize
// at body-instantiation time, pending joint finalization with the parameter
// builder (see finalizeFunction below).
type functionBodyScopeBuilder struct {
	base FreeNameTracker

	varNames   *orderedAtomSet
	letNames   *orderedAtomSet
	constNames *orderedAtomSet

	functionsToInitialize []StencilIndex

	// functionOrLexicalHasArguments is set the first time a let, const or
	// function-declaration name equals "arguments" - it feeds the
	// arguments-object-need computation, which treats a lexically or
	// function-declared "arguments" differently from a plain var one.
	functionOrLexicalHasArguments bool

	// varScopeIndex and lexicalScopeIndex are pre-allocated together at
	// before_function_body time, back to back, so that lexicalScopeIndex is
	// always varScopeIndex+1 regardless of which branch of step 5/6 below
	// actually populates them.
	varScopeIndex     Index
	lexicalScopeIndex Index
}

func newFunctionBodyScopeBuilder(varScopeIndex, lexicalScopeIndex Index) *functionBodyScopeBuilder {
	return &functionBodyScopeBuilder{
		base:              *newFreeNameTracker(),
		varNames:          newOrderedAtomSet(),
		letNames:          newOrderedAtomSet(),
		constNames:        newOrderedAtomSet(),
		varScopeIndex:     varScopeIndex,
		lexicalScopeIndex: lexicalScopeIndex,
	}
}

func (b *functionBodyScopeBuilder) tracker() *FreeNameTracker   { return &b.base }
func (b *functionBodyScopeBuilder) scopeIndexForNesting() Index { return b.lexicalScopeIndex }

func (b *functionBodyScopeBuilder) declareVar(a atom.Atom) {
	b.varNames.add(a)
	b.base.noteDef(a)
}

func (b *functionBodyScopeBuilder) declareLet(a atom.Atom) {
	b.letNames.add(a)
	b.base.noteDef(a)
	if a == atom.Arguments {
		b.functionOrLexicalHasArguments = true
	}
}

func (b *functionBodyScopeBuilder) declareConst(a atom.Atom) {
	b.constNames.add(a)
	b.base.noteDef(a)
	if a == atom.Arguments {
		b.functionOrLexicalHasArguments = true
	}
}

// declareFunction records a function declared directly in the function's
// top-level body: it is recorded as a var name (the body keeps no separate
// function-name list, unlike the global builder) and contributes to
// functions_to_initialize in source order.
func (b *functionBodyScopeBuilder) declareFunction(a atom.Atom, scriptIdx StencilIndex) {
	b.varNames.add(a)
	b.functionsToInitialize = append(b.functionsToInitialize, scriptIdx)
	b.base.noteDef(a)
	if a == atom.Arguments {
		b.functionOrLexicalHasArguments = true
	}
}

// finalizeFunction runs the joint finalization of a function's parameter and
// body builders into the function's scope data and stencil flags, once the
// body builder (and everything nested in it) has popped and merged into the
// parameter builder's tracker across the function boundary.
func finalizeFunction(
	params *paramsScopeBuilder,
	body *functionBodyScopeBuilder,
	enclosing Index,
	annexB *annexBList,
	scopes *DataList,
	stencils *StencilBuilder,
	strict bool,
) {
	// Step 1: arguments-object need.
	argumentsObjectNeeded := true
	if params.isArrow {
		argumentsObjectNeeded = false
	}
	if params.parameterHasArguments {
		argumentsObjectNeeded = false
	}
	if !params.hasParameterExpressions && body.functionOrLexicalHasArguments {
		argumentsObjectNeeded = false
	}

	// Step 2: Annex B re-run at the function boundary. Candidates that
	// collide with a body-level let/const, or with the implicit "arguments"
	// binding, are dropped; survivors are unioned into the body's var names
	// and flagged.
	if !strict {
		for _, n := range body.letNames.names() {
			annexB.removeIfExists(n)
		}
		for _, n := range body.constNames.names() {
			annexB.removeIfExists(n)
		}
		annexB.removeIfExists(atom.Arguments)
		for _, n := range annexB.names() {
			body.varNames.add(n)
		}
		annexB.markAnnexB(scopes, stencils)
	} else {
		annexB.clear()
	}

	// Step 3: extra body-var scope iff the parameter list has expressions.
	hasExtraBodyVarScope := params.hasParameterExpressions

	// Step 4: function scope bindings - positional parameters (preserving
	// None holes), then non-positional parameters. A parameter is closed
	// over if the parameter tracker says so, or - only when there is no
	// extra var scope, so the body resolves directly against this same
	// environment - the body tracker says so.
	closedOverInFunctionScope := func(name atom.Atom) bool {
		closed := params.base.closedOverOrDynamic(name)
		if !hasExtraBodyVarScope {
			closed = closed || body.base.closedOverOrDynamic(name)
		}
		return closed
	}

	var functionBindings []BindingName
	for _, p := range params.positionalParameterNames {
		if p == atom.Invalid {
			functionBindings = append(functionBindings, BindingName{Atom: atom.Invalid})
			continue
		}
		functionBindings = append(functionBindings, BindingName{Atom: p, IsClosedOver: closedOverInFunctionScope(p)})
	}
	for _, p := range params.nonPositionalParameterNames {
		functionBindings = append(functionBindings, BindingName{Atom: p, IsClosedOver: closedOverInFunctionScope(p)})
	}

	if !hasExtraBodyVarScope {
		// Step 5: no extra var scope - body vars that are not already
		// parameters (and are not a still-needed "arguments") join the
		// function scope directly, and the var/function environment is
		// merely an alias of it.
		for _, n := range body.varNames.names() {
			if params.parameterNames.has(n) {
				continue
			}
			if n == atom.Arguments && argumentsObjectNeeded {
				continue
			}
			functionBindings = append(functionBindings, BindingName{Atom: n, IsClosedOver: body.base.closedOverOrDynamic(n)})
		}
		scopes.Populate(body.varScopeIndex, AliasData{Target: params.scopeIndex})
	} else {
		// Step 6: a real Var scope listing every body var name.
		var varBindings []BindingName
		for _, n := range body.varNames.names() {
			varBindings = append(varBindings, BindingName{Atom: n, IsClosedOver: body.base.closedOverOrDynamic(n)})
		}
		scopes.Populate(body.varScopeIndex, VarData{
			Bindings:           varBindings,
			HasExtensibleScope: !strict && params.hasDirectEval,
			Enclosing:          params.scopeIndex,
		})
	}

	scopes.Populate(params.scopeIndex, FunctionData{
		Bindings:                functionBindings,
		HasParameterExpressions: params.hasParameterExpressions,
		Enclosing:               enclosing,
		ScriptIndex:             params.scriptIndex,
		IsArrow:                 params.isArrow,
	})

	// Step 7: lexical scope, enclosing whichever scope step 5/6 populated as
	// the var environment.
	if body.letNames.len() > 0 || body.constNames.len() > 0 {
		var lexBindings []BindingName
		for _, n := range body.letNames.names() {
			lexBindings = append(lexBindings, BindingName{Atom: n, IsClosedOver: body.base.closedOverOrDynamic(n)})
		}
		for _, n := range body.constNames.names() {
			lexBindings = append(lexBindings, BindingName{Atom: n, IsClosedOver: body.base.closedOverOrDynamic(n)})
		}
		scopes.Populate(body.lexicalScopeIndex, LexicalData{
			Bindings:       lexBindings,
			Enclosing:      body.varScopeIndex,
			Kind:           LexicalFunctionLexical,
			InnerFunctions: body.functionsToInitialize,
		})
	} else {
		scopes.Populate(body.lexicalScopeIndex, AliasData{Target: body.varScopeIndex})
	}

	// Step 8: function stencil flags.
	st := stencils.Get(params.scriptIndex)

	needsEnv := params.base.dynamicAccess
	for _, bd := range functionBindings {
		if bd.IsClosedOver {
			needsEnv = true
			break
		}
	}
	st.NeedsFunctionEnvironmentObjects = needsEnv
	st.FunctionHasExtraBodyVarScope = hasExtraBodyVarScope
	st.HasMappedArgsObj = !strict && params.simpleParameterList
	st.HasDuplicateParameters = params.hasDuplicates

	if !params.isArrow {
		st.FunctionHasThisBinding = params.base.isUsedOrClosedOver(atom.This) || params.base.dynamicAccess

		bodyDefinesArguments := body.varNames.has(atom.Arguments) ||
			body.letNames.has(atom.Arguments) ||
			body.constNames.has(atom.Arguments)

		// try_declare_arguments is only eligible when something actually
		// observed a use of "arguments" (directly, closed over, or via a
		// dynamic eval that could reach it) - unless the body declares its
		// own "arguments" var alongside an extra body-var scope, in which
		// case the declaration must still be tried to give that var its
		// value.
		hasUsedArguments := params.base.isUsedOrClosedOver(atom.Arguments) || params.base.dynamicAccess
		tryDeclareArguments := hasUsedArguments
		if body.varNames.has(atom.Arguments) && hasExtraBodyVarScope {
			tryDeclareArguments = true
		}

		usesArguments := false
		if tryDeclareArguments && !params.parameterHasArguments && (hasExtraBodyVarScope || !bodyDefinesArguments) {
			st.ShouldDeclareArguments = true
			usesArguments = true
		}

		if usesArguments {
			st.UsesArguments = true
			st.ArgumentsHasVarBinding = true
			if params.base.dynamicAccess {
				st.AlwaysNeedsArgsObj = true
			}
		}
	}
}
