// The lintrunner command runs the project's linters over its source files,
// or only over the files changed according to git.
package main

import (
	"context"
	"fmt"
	"io"
	"os"

	flag "github.com/spf13/pflag"

	runnerconfig "lintrunner/config/runner"
	"lintrunner/internal/errors"
	"lintrunner/internal/logger"
	"lintrunner/internal/runner"
)

func main() {
	os.Exit(run(context.Background(), os.Args[1:], os.Stdout))
}

func run(ctx context.Context, args []string, stdout io.Writer) (code int) {
	cfg := runnerconfig.New(stdout)

	defer errors.Recover(func(cause error) {
		reportFault(cfg.Stdout, cause)
		code = 1
	})

	log, level, err := logger.New()
	if err != nil {
		fmt.Fprintln(os.Stderr, "unable to create logger:", err)
		return 1
	}
	defer log.Sync()

	workDir, err := os.Getwd()
	if err != nil {
		reportFault(cfg.Stdout, errors.WithStackTrace(err))
		return 1
	}

	paths, err := cfg.GetConfig(args, workDir, log)
	switch {
	case errors.Is(err, flag.ErrHelp):
		fmt.Fprintln(cfg.Stdout, cfg.HelpMsg())
		return 0
	case errors.Is(err, runnerconfig.ErrVersion):
		fmt.Fprintln(cfg.Stdout, cfg.Version)
		return 0
	case err != nil:
		fmt.Fprintf(cfg.Stdout, "%s\n\n", err)
		fmt.Fprintln(cfg.Stdout, cfg.HelpMsg())
		return 1
	}
	logger.SetDebug(level, cfg.Debug)
	log.Debugw("configured",
		"paths", paths,
		"config_file", cfg.ConfigFile,
		"changed_only", cfg.ChangedOnly,
		"dry_run", cfg.DryRun,
		"list", cfg.List)

	// A failing linter does not change the exit code.
	ok, err := runner.New(paths, cfg, workDir, log).Run(ctx)
	if err != nil {
		reportFault(cfg.Stdout, err)
		return 1
	}
	log.Debugw("linters finished", "success", ok)
	return 0
}

// reportFault prints the error's type, message and stack trace.
func reportFault(w io.Writer, err error) {
	err = errors.WithStackTrace(err)
	fmt.Fprintf(w, "%s: %s\n", errors.TypeName(err), err)
	fmt.Fprintln(w, errors.Stack(err))
}
