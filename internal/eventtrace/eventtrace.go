// Package eventtrace defines a JSON encoding of a scope.Core event sequence
// and a replayer that drives a *scope.Core from it. It exists because this
// repository has no parser or AST walker of its own (both are out-of-scope
// collaborators of the core): a recorded trace stands in for them in tests
// and in the CLI's "trace" subcommand.
package eventtrace

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/go-ecma/scopecore/atom"
	"github.com/go-ecma/scopecore/internal/atomtable"
	"github.com/go-ecma/scopecore/scope"
)

// Event is one entry of a recorded trace. Op selects which scope.Core
// method is invoked; the remaining fields are interpreted according to Op,
// left at their zero value when unused.
type Event struct {
	Op string `json:"op"`

	Node uint64 `json:"node,omitempty"`
	Name string `json:"name,omitempty"`

	Strict      bool `json:"strict,omitempty"`
	IsGenerator bool `json:"is_generator,omitempty"`
	IsAsync     bool `json:"is_async,omitempty"`

	SourceStart int `json:"source_start,omitempty"`
	SourceEnd   int `json:"source_end,omitempty"`
}

// Replay decodes a JSON array of Event from r and drives core through it in
// order, interning every Name field through its own atom table (shared
// across the whole trace, so repeated names intern to the same atom.Atom).
// It returns core.Finish()'s Output once the trace is exhausted.
func Replay(core *scope.Core, r io.Reader) (*scope.Output, error) {
	var events []Event
	if err := json.NewDecoder(r).Decode(&events); err != nil {
		return nil, fmt.Errorf("eventtrace: decode: %w", err)
	}

	atoms := atomtable.New()
	for i, ev := range events {
		if err := apply(core, atoms, ev); err != nil {
			return nil, fmt.Errorf("eventtrace: event %d (%s): %w", i, ev.Op, err)
		}
	}

	out, err := finish(core)
	if err != nil {
		return nil, fmt.Errorf("eventtrace: %w", err)
	}
	return out, nil
}

func finish(core *scope.Core) (out *scope.Output, err error) {
	defer func() {
		if r := recover(); r != nil {
			if ie, ok := r.(*scope.InternalError); ok {
				err = ie
				return
			}
			panic(r)
		}
	}()
	return core.Finish(), nil
}

func apply(core *scope.Core, atoms *atomtable.Table, ev Event) (err error) {
	defer func() {
		if r := recover(); r != nil {
			if ie, ok := r.(*scope.InternalError); ok {
				err = ie
				return
			}
			panic(r)
		}
	}()

	node := scope.NodeID(ev.Node)
	name := func() atom.Atom {
		if ev.Name == "" {
			return atom.Invalid
		}
		return atoms.Intern(ev.Name)
	}

	switch ev.Op {
	case "before_script":
		core.BeforeScript(node, ev.Strict, ev.SourceStart)
	case "after_script":
		core.AfterScript(node, ev.SourceEnd)
	case "before_block_statement":
		core.BeforeBlockStatement(node)
	case "after_block_statement":
		core.AfterBlockStatement(node)
	case "before_var_declaration":
		core.BeforeVarDeclaration()
	case "after_var_declaration":
		core.AfterVarDeclaration()
	case "before_let_declaration":
		core.BeforeLetDeclaration()
	case "after_let_declaration":
		core.AfterLetDeclaration()
	case "before_const_declaration":
		core.BeforeConstDeclaration()
	case "after_const_declaration":
		core.AfterConstDeclaration()
	case "on_binding_identifier":
		core.OnBindingIdentifier(name())
	case "on_non_binding_identifier":
		core.OnNonBindingIdentifier(name())
	case "before_function_declaration":
		core.BeforeFunctionDeclaration(node, name(), ev.IsGenerator, ev.IsAsync, ev.SourceStart)
	case "after_function_declaration":
		core.AfterFunctionDeclaration(node, ev.SourceEnd)
	case "before_function_expression":
		core.BeforeFunctionExpression(node, name(), ev.IsGenerator, ev.IsAsync, ev.SourceStart)
	case "after_function_expression":
		core.AfterFunctionExpression(node, ev.SourceEnd)
	case "before_method":
		core.BeforeMethod(node, ev.IsGenerator, ev.IsAsync, ev.SourceStart)
	case "after_method":
		core.AfterMethod(node, ev.SourceEnd)
	case "before_getter":
		core.BeforeGetter(node, ev.SourceStart)
	case "after_getter":
		core.AfterGetter(node, ev.SourceEnd)
	case "before_setter":
		core.BeforeSetter(node, ev.SourceStart)
	case "after_setter":
		core.AfterSetter(node, ev.SourceEnd)
	case "before_arrow_function":
		core.BeforeArrowFunction(node, ev.SourceStart)
	case "after_arrow_function":
		core.AfterArrowFunction(node, ev.SourceEnd)
	case "before_function_parameters":
		core.BeforeFunctionParameters(node)
	case "after_function_parameters":
		core.AfterFunctionParameters()
	case "before_parameter":
		core.BeforeParameter()
	case "before_rest_parameter":
		core.BeforeRestParameter()
	case "before_binding_pattern":
		core.BeforeBindingPattern()
	case "after_initializer":
		core.AfterInitializer()
	case "before_computed_property_name":
		core.BeforeComputedPropertyName()
	case "before_function_body":
		core.BeforeFunctionBody(node)
	case "after_function_body":
		core.AfterFunctionBody()
	case "on_direct_eval":
		core.OnDirectEval()
	default:
		return fmt.Errorf("unknown op %q", ev.Op)
	}
	return nil
}
