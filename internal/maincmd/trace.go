package maincmd

import (
	"context"
	"fmt"
	"os"

	"github.com/mna/mainer"

	"github.com/go-ecma/scopecore/internal/config"
	"github.com/go-ecma/scopecore/internal/eventtrace"
	"github.com/go-ecma/scopecore/scope"
)

// Trace replays one or more recorded event-trace files and prints each
// one's resulting scope data and stencils.
func (c *Cmd) Trace(ctx context.Context, stdio mainer.Stdio, args []string) error {
	return TraceFiles(stdio, c.defaultStrict(), dumpVerbose, args...)
}

// Dump is identical to Trace but uses a terser, one-scope-per-line render
// aimed at quick eyeballing rather than full fidelity.
func (c *Cmd) Dump(ctx context.Context, stdio mainer.Stdio, args []string) error {
	return TraceFiles(stdio, c.defaultStrict(), dumpTerse, args...)
}

// defaultStrict resolves the fallback strictness a trace is analyzed under
// when it never sends a before_script event of its own: the --strict flag
// takes precedence over the SCOPECORE_STRICT environment default.
func (c *Cmd) defaultStrict() bool {
	if c.Strict {
		return true
	}
	cfg, err := config.Load()
	if err != nil {
		return false
	}
	return cfg.Strict
}

type dumpStyle int

const (
	dumpVerbose dumpStyle = iota
	dumpTerse
)

func TraceFiles(stdio mainer.Stdio, defaultStrict bool, style dumpStyle, files ...string) error {
	var failed error
	for _, path := range files {
		out, err := traceOneFile(stdio, defaultStrict, path)
		if err != nil {
			fmt.Fprintf(stdio.Stderr, "%s: %s\n", path, err)
			failed = err
			continue
		}
		render(stdio, path, out, style)
	}
	return failed
}

func traceOneFile(stdio mainer.Stdio, defaultStrict bool, path string) (out *scope.Output, err error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	core := scope.NewCore(defaultStrict)
	return eventtrace.Replay(core, f)
}

func render(stdio mainer.Stdio, path string, out *scope.Output, style dumpStyle) {
	fmt.Fprintf(stdio.Stdout, "== %s ==\n", path)
	for i := 0; i < out.Scopes.Len(); i++ {
		d := out.Scopes.Get(scope.Index(i))
		if style == dumpTerse {
			fmt.Fprintf(stdio.Stdout, "%d: %T\n", i, d)
			continue
		}
		fmt.Fprintf(stdio.Stdout, "%d: %#v\n", i, d)
	}
	for _, st := range out.Stencils {
		fmt.Fprintf(stdio.Stdout, "stencil %s: annexB=%v needsEnv=%v\n", st.Kind, st.IsAnnexBFunction, st.NeedsFunctionEnvironmentObjects)
	}
}
