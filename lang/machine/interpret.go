package machine

import (
	"github.com/mna/nrk/lang/compiler"
	"github.com/mna/nrk/lang/debug"
	"github.com/mna/nrk/lang/runtime"
)

// Interpret compiles source against mem and, if compilation succeeds, runs
// it on vm. This is the single entry point both cmd/nrk's file runner and
// the REPL drive: one chunk per file, one chunk per REPL line, always
// sharing the same Memory (and hence the same globals and interned
// strings) across calls from the same session.
func Interpret(source []byte, mem *runtime.Memory, vm *VM) (Result, error) {
	c, err := compiler.Compile(source, mem)
	if err != nil {
		return ResultCompileError, err
	}

	if vm.Trace {
		debug.Chunk(vm.Stdout, c, "code")
	}

	return vm.Interpret(c)
}
