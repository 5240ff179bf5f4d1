package maincmd

import (
	"bytes"
	"flag"
	"path/filepath"
	"testing"

	"github.com/mna/mainer"

	"github.com/go-ecma/scopecore/internal/filetest"
)

var testUpdateTraceTests = flag.Bool("test.update-trace-tests", false, "If set, replace expected trace test results with actual results.")

func TestTraceFiles(t *testing.T) {
	srcDir, resultDir := filepath.Join("testdata", "in"), filepath.Join("testdata", "out")

	for _, fi := range filetest.SourceFiles(t, srcDir, ".json") {
		t.Run(fi.Name(), func(t *testing.T) {
			var buf bytes.Buffer
			stdio := mainer.Stdio{Stdout: &buf, Stderr: &buf}

			// error is ignored, a malformed fixture would fail the diff instead
			_ = TraceFiles(stdio, false, dumpTerse, filepath.Join(srcDir, fi.Name()))
			filetest.DiffOutput(t, fi, buf.String(), resultDir, testUpdateTraceTests)
		})
	}
}
