package machine_test

import (
	"bytes"
	"flag"
	"os"
	"path/filepath"
	"testing"

	"github.com/mna/nrk/internal/filetest"
	"github.com/mna/nrk/lang/machine"
	"github.com/mna/nrk/lang/runtime"
	"github.com/stretchr/testify/require"
)

var testUpdateMachineTests = flag.Bool("test.update-machine-tests", false, "If set, replace expected machine golden outputs with actual results.")

// TestGoldenPrograms runs every .nrk file in testdata/in to completion and
// compares its stdout against the matching golden file in testdata/out.
func TestGoldenPrograms(t *testing.T) {
	srcDir, resultDir := filepath.Join("testdata", "in"), filepath.Join("testdata", "out")

	for _, fi := range filetest.SourceFiles(t, srcDir, ".nrk") {
		t.Run(fi.Name(), func(t *testing.T) {
			source, err := os.ReadFile(filepath.Join(srcDir, fi.Name()))
			require.NoError(t, err)

			mem := runtime.NewMemory()
			vm := machine.New(mem)
			var buf bytes.Buffer
			vm.Stdout = &buf

			res, err := machine.Interpret(source, mem, vm)
			require.NoError(t, err)
			require.Equal(t, machine.ResultOK, res)

			filetest.DiffOutput(t, fi, buf.String(), resultDir, testUpdateMachineTests)
		})
	}
}

// Error paths are asserted directly rather than golden-diffed: the
// multierror-wrapped message format is an implementation detail of how
// compile errors are aggregated, not a contract worth pinning byte-for-byte.
func TestConstReassignmentAcrossStatementsIsReported(t *testing.T) {
	mem := runtime.NewMemory()
	vm := machine.New(mem)
	var buf bytes.Buffer
	vm.Stdout = &buf

	res, err := machine.Interpret([]byte("const PI = 3;\nPI = 4;\n"), mem, vm)
	require.Error(t, err)
	require.Equal(t, machine.ResultCompileError, res)
	require.Contains(t, err.Error(), "constant")
}
