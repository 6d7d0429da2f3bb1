package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strings"
)

// Command describes one external tool invocation. Arguments are passed to
// the tool verbatim; no shell is involved, so paths with spaces need no
// quoting.
type Command struct {
	// Program is the executable name or path (e.g. "augur", "nextstrain").
	Program string

	// Args are the arguments passed to the program.
	Args []string
}

// String renders the command the way a user would type it. Used for dry-run
// output, logs, and build reports.
func (c Command) String() string {
	if len(c.Args) == 0 {
		return c.Program
	}
	return c.Program + " " + strings.Join(c.Args, " ")
}

// Runner executes Commands as subprocesses. The zero value is not usable;
// create runners with New. Stdout and stderr of the child process stream to
// the configured writers while the command runs, so users see tool progress
// live rather than after completion.
type Runner struct {
	stdout io.Writer
	stderr io.Writer
	dir    string
	env    []string
	logger *slog.Logger
}

// Option configures a Runner.
type Option func(*Runner)

// WithStdout sets the writer receiving the child's standard output.
// Defaults to os.Stdout.
func WithStdout(w io.Writer) Option {
	return func(r *Runner) {
		r.stdout = w
	}
}

// WithStderr sets the writer receiving the child's standard error.
// Defaults to os.Stderr.
func WithStderr(w io.Writer) Option {
	return func(r *Runner) {
		r.stderr = w
	}
}

// WithDir sets the working directory for executed commands.
// Defaults to the current directory.
func WithDir(dir string) Option {
	return func(r *Runner) {
		r.dir = dir
	}
}

// WithEnv appends extra environment variables (in "KEY=value" form) to the
// inherited environment. External tools keep seeing PATH, HOME, and the rest
// of the parent environment.
func WithEnv(env []string) Option {
	return func(r *Runner) {
		r.env = env
	}
}

// WithLogger sets the logger for command diagnostics.
// Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) {
		r.logger = logger
	}
}

// New creates a Runner with the given options applied.
func New(opts ...Option) *Runner {
	r := &Runner{
		stdout: os.Stdout,
		stderr: os.Stderr,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run executes cmd and waits for it to finish. The child inherits the parent
// environment (plus any extras from WithEnv) and streams its output to the
// runner's writers.
//
// Error returns distinguish three failure classes:
//   - ctx.Err() when the context was cancelled or timed out; the child is
//     killed before Run returns
//   - *ExitError when the tool ran but exited non-zero
//   - a wrapped start error when the tool could not be executed at all
//     (typically exec.ErrNotFound for a tool missing from PATH)
func (r *Runner) Run(ctx context.Context, cmd Command) error {
	if cmd.Program == "" {
		return ErrEmptyCommand
	}

	c := exec.CommandContext(ctx, cmd.Program, cmd.Args...)
	c.Dir = r.dir
	c.Stdout = r.stdout
	c.Stderr = r.stderr
	if len(r.env) > 0 {
		c.Env = append(os.Environ(), r.env...)
	}

	r.logger.Debug("executing command", "command", cmd.String(), "dir", r.dir)

	err := c.Run()
	if err == nil {
		return nil
	}

	// Cancellation kills the child and surfaces as an ExitError from
	// exec; report the context error instead so callers see the
	// interruption, not a meaningless exit code.
	if ctx.Err() != nil {
		return ctx.Err()
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		r.logger.Debug("command failed", "command", cmd.String(), "exit_code", exitErr.ExitCode())
		return &ExitError{Command: cmd.String(), ExitCode: exitErr.ExitCode()}
	}

	return fmt.Errorf("start %s: %w", cmd.Program, err)
}
