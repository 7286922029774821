// Package repl implements nrk's interactive read-eval-print loop on top of
// chzyer/readline, sharing one lang/runtime.Memory (and hence one set of
// globals and interned strings) across every line typed in a session.
package repl

import (
	"fmt"
	"io"
	"os"
	"strings"
	"syscall"

	"github.com/caarlos0/env/v6"
	"github.com/chzyer/readline"
	"github.com/mna/nrk/lang/machine"
	"github.com/mna/nrk/lang/runtime"
)

// Config controls REPL behavior, overridable via NRK_-prefixed environment
// variables (e.g. NRK_HISTORY_FILE, NRK_HISTORY_LIMIT).
type Config struct {
	HistoryFile  string `env:"NRK_HISTORY_FILE" envDefault:"/tmp/nrklang_repl_history_log"`
	HistoryLimit int    `env:"NRK_HISTORY_LIMIT" envDefault:"1000"`
}

// LoadConfig reads Config from the environment, falling back to its
// defaults for anything unset.
func LoadConfig() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// REPL is one interactive session: a line editor plus the VM and Memory it
// feeds.
type REPL struct {
	cfg Config
	vm  *machine.VM
	mem *runtime.Memory
}

// New returns a REPL ready to Run, sharing mem with any other interpreter
// in the same process that uses it.
func New(cfg Config, mem *runtime.Memory, stdout io.Writer, trace bool) *REPL {
	vm := machine.New(mem)
	vm.Stdout = stdout
	vm.Trace = trace
	return &REPL{cfg: cfg, vm: vm, mem: mem}
}

// Run drives the prompt loop until EOF (Ctrl-D) or a read error, reading
// and evaluating one line of nrk source at a time. An interrupt (Ctrl-C)
// discards the current line and prompts again.
func (r *REPL) Run(stdin io.Reader, stdout, stderr io.Writer) error {
	unlock, err := lockHistoryFile(r.cfg.HistoryFile)
	if err != nil {
		// A locked or unwritable history file degrades to a session with no
		// persisted history rather than refusing to start the REPL.
		fmt.Fprintf(stderr, "warning: history disabled: %s\n", err)
	} else {
		defer unlock()
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "nrk> ",
		HistoryFile:     r.cfg.HistoryFile,
		HistoryLimit:    r.cfg.HistoryLimit,
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
		Stdin:           io.NopCloser(stdin),
		Stdout:          stdout,
		Stderr:          stderr,
	})
	if err != nil {
		return err
	}
	defer rl.Close()

	fmt.Fprintf(stdout, "nrk %s\n", version)

	for {
		line, err := rl.Readline()
		switch err {
		case readline.ErrInterrupt:
			continue
		case io.EOF:
			return nil
		case nil:
		default:
			return err
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if _, runErr := machine.Interpret([]byte(line), r.mem, r.vm); runErr != nil {
			fmt.Fprintln(stderr, runErr)
		}
	}
}

const version = "0.0.1"

// lockHistoryFile takes an exclusive advisory lock on path so two REPL
// sessions don't interleave writes to the same history file. The returned
// func releases the lock; callers should defer it.
func lockHistoryFile(path string) (func(), error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0o644)
	if err != nil {
		return nil, err
	}
	if err := syscall.Flock(int(f.Fd()), syscall.LOCK_EX|syscall.LOCK_NB); err != nil {
		f.Close()
		return nil, fmt.Errorf("history file %s is locked by another session: %w", path, err)
	}
	return func() {
		syscall.Flock(int(f.Fd()), syscall.LOCK_UN)
		f.Close()
	}, nil
}
