package scope_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-ecma/scopecore/atom"
	"github.com/go-ecma/scopecore/internal/atomtable"
	"github.com/go-ecma/scopecore/scope"
)

func names(bindings []scope.BindingName) []atom.Atom {
	out := make([]atom.Atom, len(bindings))
	for i, b := range bindings {
		out[i] = b.Atom
	}
	return out
}

// S1: var x = 1; let y = 2; function f(){}
func TestGlobalBindingOrderAndFunctionsToInitialize(t *testing.T) {
	at := atomtable.New()
	x, y, f := at.Intern("x"), at.Intern("y"), at.Intern("f")

	c := scope.NewCore(false)
	c.BeforeScript(1, false, 0)

	c.BeforeVarDeclaration()
	c.OnBindingIdentifier(x)
	c.AfterVarDeclaration()

	c.BeforeLetDeclaration()
	c.OnBindingIdentifier(y)
	c.AfterLetDeclaration()

	fScript := c.BeforeFunctionDeclaration(2, f, false, false, 0)
	c.BeforeFunctionParameters(3)
	c.AfterFunctionParameters()
	c.BeforeFunctionBody(4)
	c.AfterFunctionBody()
	c.AfterFunctionDeclaration(2, 10)

	c.AfterScript(1, 20)
	out := c.Finish()

	global, ok := out.Scopes.Get(0).(scope.GlobalData)
	require.True(t, ok)

	assert.Equal(t, []atom.Atom{x, f, y}, names(global.Bindings))
	assert.True(t, global.Bindings[1].Flags&scope.FlagTopLevelFunction != 0)
	assert.Equal(t, []scope.StencilIndex{fScript}, global.FunctionsToInitialize)
}

// S2: function g(a, {b, c=1}, ...r){ var x; }
func TestFunctionParameterClassificationAndExtraVarScope(t *testing.T) {
	at := atomtable.New()
	g, a, b, cc, r, x := at.Intern("g"), at.Intern("a"), at.Intern("b"), at.Intern("c"), at.Intern("r"), at.Intern("x")

	c := scope.NewCore(false)
	c.BeforeScript(1, false, 0)

	c.BeforeFunctionDeclaration(2, g, false, false, 0)
	c.BeforeFunctionParameters(3)

	c.BeforeParameter()
	c.OnBindingIdentifier(a)

	c.BeforeParameter()
	c.BeforeBindingPattern()
	c.OnBindingIdentifier(b)
	c.OnBindingIdentifier(cc)
	c.AfterInitializer()

	c.BeforeRestParameter()
	c.OnBindingIdentifier(r)

	c.AfterFunctionParameters()

	c.BeforeFunctionBody(4)
	c.BeforeVarDeclaration()
	c.OnBindingIdentifier(x)
	c.AfterVarDeclaration()
	c.AfterFunctionBody()

	c.AfterFunctionDeclaration(2, 50)
	c.AfterScript(1, 60)
	out := c.Finish()

	// allocation order: global=0, function scope=1, var=2, lex=3
	fn, ok := out.Scopes.Get(1).(scope.FunctionData)
	require.True(t, ok)
	assert.True(t, fn.HasParameterExpressions)
	assert.Equal(t, []atom.Atom{a, atom.Invalid, r, b, cc}, names(fn.Bindings))

	vr, ok := out.Scopes.Get(2).(scope.VarData)
	require.True(t, ok)
	assert.Equal(t, []atom.Atom{x}, names(vr.Bindings))
	assert.False(t, vr.HasExtensibleScope)

	_, ok = out.Scopes.Get(3).(scope.AliasData)
	assert.True(t, ok, "no let/const in body, lexical scope should alias the var scope")
}

// S3: (function f(){ return f; })
func TestNamedFunctionExpressionSelfReferenceIsClosedOver(t *testing.T) {
	at := atomtable.New()
	f := at.Intern("f")

	c := scope.NewCore(false)
	c.BeforeScript(1, false, 0)

	c.BeforeFunctionExpression(2, f, false, false, 0)
	c.BeforeFunctionParameters(3)
	c.AfterFunctionParameters()
	c.BeforeFunctionBody(4)
	c.OnNonBindingIdentifier(f)
	c.AfterFunctionBody()
	c.AfterFunctionExpression(2, 30)

	c.AfterScript(1, 40)
	out := c.Finish()

	// allocation order: global=0, named-lambda=1, function scope=2, var=3, lex=4
	nl, ok := out.Scopes.Get(1).(scope.LexicalData)
	require.True(t, ok)
	assert.Equal(t, scope.LexicalNamedLambda, nl.Kind)
	require.Len(t, nl.Bindings, 1)
	assert.Equal(t, f, nl.Bindings[0].Atom)
	assert.True(t, nl.Bindings[0].IsClosedOver)
}

// S4: non-strict `{ function h(){} }` at top level, no shadowing let/const.
func TestAnnexBPromotesBlockFunctionToGlobalVar(t *testing.T) {
	at := atomtable.New()
	h := at.Intern("h")

	c := scope.NewCore(false)
	c.BeforeScript(1, false, 0)

	c.BeforeBlockStatement(2)
	hScript := c.BeforeFunctionDeclaration(3, h, false, false, 0)
	c.BeforeFunctionParameters(4)
	c.AfterFunctionParameters()
	c.BeforeFunctionBody(5)
	c.AfterFunctionBody()
	c.AfterFunctionDeclaration(3, 20)
	c.AfterBlockStatement(2)

	c.AfterScript(1, 30)
	out := c.Finish()

	global, ok := out.Scopes.Get(0).(scope.GlobalData)
	require.True(t, ok)
	assert.Contains(t, names(global.Bindings), h)

	block, ok := out.Scopes.Get(1).(scope.LexicalData)
	require.True(t, ok)
	require.Len(t, block.Bindings, 1)
	assert.True(t, block.Bindings[0].Flags&scope.FlagAnnexB != 0)

	assert.True(t, out.Stencils[hScript].IsAnnexBFunction)
	assert.True(t, out.AnnexBFlags[3])
}

// Two sibling blocks (e.g. the two arms of an if/else) each declaring a
// function of the same name must both be promoted by Annex B - the
// candidate list is keyed by name but must not collapse to a single
// winner.
func TestAnnexBPromotesEverySiblingCandidateOfTheSameName(t *testing.T) {
	at := atomtable.New()
	h := at.Intern("h")

	c := scope.NewCore(false)
	c.BeforeScript(1, false, 0)

	c.BeforeBlockStatement(2)
	h1Script := c.BeforeFunctionDeclaration(3, h, false, false, 0)
	c.BeforeFunctionParameters(4)
	c.AfterFunctionParameters()
	c.BeforeFunctionBody(5)
	c.AfterFunctionBody()
	c.AfterFunctionDeclaration(3, 10)
	c.AfterBlockStatement(2)

	c.BeforeBlockStatement(6)
	h2Script := c.BeforeFunctionDeclaration(7, h, false, false, 0)
	c.BeforeFunctionParameters(8)
	c.AfterFunctionParameters()
	c.BeforeFunctionBody(9)
	c.AfterFunctionBody()
	c.AfterFunctionDeclaration(7, 20)
	c.AfterBlockStatement(6)

	c.AfterScript(1, 30)
	out := c.Finish()

	blockA, ok := out.Scopes.Get(1).(scope.LexicalData)
	require.True(t, ok)
	require.Len(t, blockA.Bindings, 1)
	assert.True(t, blockA.Bindings[0].Flags&scope.FlagAnnexB != 0, "first sibling's candidate must still be promoted")

	blockB, ok := out.Scopes.Get(5).(scope.LexicalData)
	require.True(t, ok)
	require.Len(t, blockB.Bindings, 1)
	assert.True(t, blockB.Bindings[0].Flags&scope.FlagAnnexB != 0, "second sibling's candidate must also be promoted")

	assert.True(t, out.Stencils[h1Script].IsAnnexBFunction)
	assert.True(t, out.Stencils[h2Script].IsAnnexBFunction)

	global, ok := out.Scopes.Get(0).(scope.GlobalData)
	require.True(t, ok)
	count := 0
	for _, n := range names(global.Bindings) {
		if n == h {
			count++
		}
	}
	assert.Equal(t, 1, count, "both blocks promote the same global var binding exactly once")
}

// An ordinary function that never references "arguments", has no extra
// body-var scope, and declares no binding named "arguments" must not have
// an arguments object forced on it.
func TestOrdinaryFunctionWithoutArgumentsUseSkipsArgumentsObject(t *testing.T) {
	at := atomtable.New()
	n, a, b := at.Intern("n"), at.Intern("a"), at.Intern("b")

	c := scope.NewCore(false)
	c.BeforeScript(1, false, 0)

	nScript := c.BeforeFunctionDeclaration(2, n, false, false, 0)
	c.BeforeFunctionParameters(3)
	c.BeforeParameter()
	c.OnBindingIdentifier(a)
	c.AfterFunctionParameters()

	c.BeforeFunctionBody(4)
	c.BeforeVarDeclaration()
	c.OnBindingIdentifier(b)
	c.AfterVarDeclaration()
	c.AfterFunctionBody()

	c.AfterFunctionDeclaration(2, 20)
	c.AfterScript(1, 30)
	out := c.Finish()

	st := out.Stencils[nScript]
	assert.False(t, st.ShouldDeclareArguments)
	assert.False(t, st.UsesArguments)
	assert.False(t, st.ArgumentsHasVarBinding)
	assert.False(t, st.AlwaysNeedsArgsObj)
}

// S5: function k(){ arguments; } - no parameter or var named arguments.
func TestUndeclaredArgumentsUseForcesMappedArgumentsObject(t *testing.T) {
	at := atomtable.New()
	k := at.Intern("k")

	c := scope.NewCore(false)
	c.BeforeScript(1, false, 0)

	kScript := c.BeforeFunctionDeclaration(2, k, false, false, 0)
	c.BeforeFunctionParameters(3)
	c.AfterFunctionParameters()
	c.BeforeFunctionBody(4)
	c.OnNonBindingIdentifier(atom.Arguments)
	c.AfterFunctionBody()
	c.AfterFunctionDeclaration(2, 20)

	c.AfterScript(1, 30)
	out := c.Finish()

	st := out.Stencils[kScript]
	assert.True(t, st.ShouldDeclareArguments)
	assert.True(t, st.ArgumentsHasVarBinding)
	assert.True(t, st.HasMappedArgsObj)
}

// S6: function m(a){ eval(""); var b; }
func TestDirectEvalForcesDynamicAccessAndAlwaysNeedsArgsObj(t *testing.T) {
	at := atomtable.New()
	m, a, b := at.Intern("m"), at.Intern("a"), at.Intern("b")

	c := scope.NewCore(false)
	c.BeforeScript(1, false, 0)

	mScript := c.BeforeFunctionDeclaration(2, m, false, false, 0)
	c.BeforeFunctionParameters(3)
	c.BeforeParameter()
	c.OnBindingIdentifier(a)
	c.AfterFunctionParameters()

	c.BeforeFunctionBody(4)
	c.OnDirectEval()
	c.BeforeVarDeclaration()
	c.OnBindingIdentifier(b)
	c.AfterVarDeclaration()
	c.AfterFunctionBody()

	c.AfterFunctionDeclaration(2, 30)
	c.AfterScript(1, 40)
	out := c.Finish()

	fn, ok := out.Scopes.Get(1).(scope.FunctionData)
	require.True(t, ok)
	require.Len(t, fn.Bindings, 2)
	for _, bd := range fn.Bindings {
		assert.True(t, bd.IsClosedOver, "direct eval forces every binding to be treated as potentially closed over")
	}

	alias, ok := out.Scopes.Get(2).(scope.AliasData)
	require.True(t, ok, "var scope aliases the function scope since has_parameter_expressions is false")
	assert.Equal(t, scope.Index(1), alias.Target)
	assert.Contains(t, names(fn.Bindings), b, "body var b joins the function scope directly")

	st := out.Stencils[mScript]
	assert.True(t, st.NeedsFunctionEnvironmentObjects)
	assert.True(t, st.AlwaysNeedsArgsObj)
}
