// Package toolrunner shells out to the external Perl tools formatting
// and diagnostics commands depend on: perltidy, perlcritic, and prove.
package toolrunner

import (
	"bytes"
	"context"
	"os/exec"
	"time"

	"github.com/mattn/go-shellwords"
)

// Result is the outcome of running an external tool to completion (or
// to its context deadline).
type Result struct {
	Stdout   string
	Stderr   string
	ExitCode int
	TimedOut bool
}

//go:generate mockgen -source=runner.go -destination=mock_runner.go -package=toolrunner

// Runner executes a named tool with arguments against stdin, bounded by
// ctx. Implementations shell out to a real binary; tests substitute a
// generated mock.
type Runner interface {
	Run(ctx context.Context, name string, args []string, stdin string) (Result, error)
}

// ExecRunner is the production Runner, invoking real binaries via
// os/exec with a per-call timeout applied on top of ctx.
type ExecRunner struct {
	// Paths overrides a tool name to a concrete binary path; a name
	// absent here is looked up on $PATH.
	Paths map[string]string
	// Timeout bounds how long any single invocation may run.
	Timeout time.Duration
}

// Run executes name with args, feeding stdin and collecting stdout and
// stderr. A timeout (from r.Timeout, falling back to ctx's own
// deadline) cancels the child process rather than blocking forever on a
// misbehaving tool.
func (r ExecRunner) Run(ctx context.Context, name string, args []string, stdin string) (Result, error) {
	if r.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.Timeout)
		defer cancel()
	}

	bin := name
	if path, ok := r.Paths[name]; ok && path != "" {
		bin = path
	}

	cmd := exec.CommandContext(ctx, bin, args...)
	cmd.Stdin = bytes.NewBufferString(stdin)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()

	res := Result{Stdout: stdout.String(), Stderr: stderr.String()}
	if ctx.Err() == context.DeadlineExceeded {
		res.TimedOut = true
	}
	if exitErr, ok := err.(*exec.ExitError); ok {
		res.ExitCode = exitErr.ExitCode()
		return res, nil // a non-zero exit is a normal tool outcome, not a Go error
	}
	if err != nil {
		return res, err
	}
	return res, nil
}

// ParseArgs splits a user-supplied argument string (e.g. from
// perl-lsp's execute-command arguments or a configured extra-flags
// string) the way a POSIX shell would, honoring quoting and escapes.
func ParseArgs(s string) ([]string, error) {
	return shellwords.Parse(s)
}
