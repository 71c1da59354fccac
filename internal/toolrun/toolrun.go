// Package toolrun executes external quality tools (coverage runners, linters)
// as child processes and captures their output.
//
// A non-zero exit status is not an error here: many linters exit non-zero to
// signal "issues found", so the exit code is reported to the caller, which
// decides what it means. Err is only set when the process could not produce
// an exit status at all.
package toolrun

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
	"time"
)

// Command is an external tool invocation.
type Command struct {
	Name string
	Args []string
}

// NewCommand builds a Command from an argv slice. It returns false for an
// empty slice.
func NewCommand(argv []string) (Command, bool) {
	if len(argv) == 0 || strings.TrimSpace(argv[0]) == "" {
		return Command{}, false
	}
	return Command{Name: argv[0], Args: append([]string(nil), argv[1:]...)}, true
}

func (c Command) String() string {
	return strings.TrimSpace(c.Name + " " + strings.Join(c.Args, " "))
}

// Output is the captured result of one invocation.
type Output struct {
	Command  Command
	Stdout   string
	Stderr   string
	ExitCode int
	Duration time.Duration
	Err      error
}

// Succeeded reports whether the tool ran and exited with status 0.
func (o *Output) Succeeded() bool {
	return o.Err == nil && o.ExitCode == 0
}

// Runner is implemented by anything that can execute a Command.
type Runner interface {
	Run(ctx context.Context, cmd Command) *Output
}

// Invoker runs commands in a fixed working directory.
type Invoker struct {
	Dir     string
	Timeout time.Duration
	logger  *slog.Logger
}

// NewInvoker creates an Invoker rooted at dir. A zero timeout means the
// child runs until it exits or ctx is cancelled.
func NewInvoker(dir string, timeout time.Duration, logger *slog.Logger) *Invoker {
	if logger == nil {
		logger = slog.Default()
	}
	return &Invoker{Dir: dir, Timeout: timeout, logger: logger}
}

// Run executes cmd and blocks until it finishes.
func (inv *Invoker) Run(ctx context.Context, cmd Command) *Output {
	out := &Output{Command: cmd, ExitCode: -1}

	if cmd.Name == "" {
		out.Err = errors.New("empty command")
		return out
	}

	if inv.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, inv.Timeout)
		defer cancel()
	}

	c := exec.CommandContext(ctx, cmd.Name, cmd.Args...)
	c.Dir = inv.Dir
	// grandchildren may keep the pipes open after the child is killed
	c.WaitDelay = 2 * time.Second
	var stdout, stderr bytes.Buffer
	c.Stdout = &stdout
	c.Stderr = &stderr

	start := time.Now()
	err := c.Run()
	out.Duration = time.Since(start)
	out.Stdout = stdout.String()
	out.Stderr = stderr.String()

	switch {
	case err == nil:
		out.ExitCode = 0
	case ctx.Err() != nil:
		// a killed child reports "signal: killed", so check the context first
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			out.Err = fmt.Errorf("%s: exceeded time limit (%v)", cmd.Name, inv.Timeout)
		} else {
			out.Err = fmt.Errorf("%s: %w", cmd.Name, ctx.Err())
		}
	default:
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && exitErr.ExitCode() >= 0 {
			out.ExitCode = exitErr.ExitCode()
		} else {
			out.Err = fmt.Errorf("running %s: %w", cmd.Name, err)
		}
	}

	inv.logger.Debug("tool finished",
		"command", cmd.String(),
		"dir", inv.Dir,
		"exit_code", out.ExitCode,
		"duration", out.Duration,
		"error", out.Err,
	)
	return out
}
