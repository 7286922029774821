package maincmd

import (
	"context"
	"fmt"

	"github.com/mna/mainer"
	"github.com/mna/nrk/internal/repl"
	"github.com/mna/nrk/lang/runtime"
)

func (c *Cmd) repl(_ context.Context, stdio mainer.Stdio) mainer.ExitCode {
	cfg, err := repl.LoadConfig()
	if err != nil {
		fmt.Fprintf(stdio.Stderr, "invalid REPL configuration: %s\n", err)
		return mainer.ExitCode(exitUsage)
	}

	mem := runtime.NewMemory()
	r := repl.New(cfg, mem, stdio.Stdout, c.Trace)
	if err := r.Run(stdio.Stdin, stdio.Stdout, stdio.Stderr); err != nil {
		fmt.Fprintln(stdio.Stderr, err)
		return mainer.ExitCode(exitIOError)
	}
	return mainer.Success
}
