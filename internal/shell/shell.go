// Package shell runs assembled linter command lines.
package shell

import (
	"context"
	"io"
	"os/exec"
	"runtime"

	"github.com/google/shlex"

	"lintrunner/internal/errors"
)

// Executor runs one command line and waits for it. ok reports whether the
// command exited successfully; err is set only when it could not be run.
type Executor interface {
	Execute(ctx context.Context, cmdStr string) (ok bool, err error)
}

// ShellExecutor hands the command line to the system shell unchanged.
type ShellExecutor struct {
	Dir    string
	Stdout io.Writer
	Stderr io.Writer
}

func (e *ShellExecutor) Execute(ctx context.Context, cmdStr string) (bool, error) {
	name, flag := "sh", "-c"
	if runtime.GOOS == "windows" {
		name, flag = "cmd", "/C"
	}
	return run(e.command(ctx, name, flag, cmdStr))
}

func (e *ShellExecutor) command(ctx context.Context, name string, args ...string) *exec.Cmd {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = e.Dir
	cmd.Stdout = e.Stdout
	cmd.Stderr = e.Stderr
	return cmd
}

// ArgvExecutor splits the command line into words and runs the program
// directly, bypassing the shell.
type ArgvExecutor ShellExecutor

func (e *ArgvExecutor) Execute(ctx context.Context, cmdStr string) (bool, error) {
	args, err := shlex.Split(cmdStr)
	if err != nil {
		return false, errors.WithStackTraceAndPrefix(err, "split %q", cmdStr)
	}
	if len(args) == 0 {
		return false, errors.New("empty command line")
	}
	return run((*ShellExecutor)(e).command(ctx, args[0], args[1:]...))
}

func run(cmd *exec.Cmd) (bool, error) {
	err := cmd.Run()
	if err == nil {
		return true, nil
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return false, nil
	}
	return false, errors.WithStackTraceAndPrefix(err, "run %q", cmd.String())
}
