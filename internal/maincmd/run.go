package maincmd

import (
	"context"
	"fmt"
	"os"

	"github.com/mna/mainer"
	"github.com/mna/nrk/lang/machine"
	"github.com/mna/nrk/lang/runtime"
)

func (c *Cmd) runFile(_ context.Context, stdio mainer.Stdio, path string) mainer.ExitCode {
	source, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(stdio.Stderr, "Could not open file %s\n", path)
		return mainer.ExitCode(exitIOError)
	}

	mem := runtime.NewMemory()
	vm := machine.New(mem)
	vm.Stdout = stdio.Stdout
	vm.Trace = c.Trace

	res, err := machine.Interpret(source, mem, vm)
	if err != nil {
		fmt.Fprintln(stdio.Stderr, err)
	}

	switch res {
	case machine.ResultCompileError:
		return mainer.ExitCode(exitCompileError)
	case machine.ResultRuntimeError:
		return mainer.ExitCode(exitRuntimeError)
	default:
		return mainer.Success
	}
}
