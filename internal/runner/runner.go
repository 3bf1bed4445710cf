// Package runner resolves the files to lint and dispatches them to each
// configured linter according to the list, dry-run and debug modes.
package runner

import (
	"context"
	"os"
	"slices"
	"strings"

	"go.uber.org/zap"

	runnerconfig "lintrunner/config/runner"
	"lintrunner/internal/bench"
	"lintrunner/internal/console"
	"lintrunner/internal/linter"
	"lintrunner/internal/shell"
	"lintrunner/internal/sourcefiles"
	"lintrunner/internal/vcs"
)

const (
	DefaultFilePath    = "."
	LinterCmdSeparator = "; "
	headerPrefix       = "# "
)

type Runner struct {
	filePaths []string
	config    *runnerconfig.Config
	logger    *zap.SugaredLogger

	console  *console.Console
	bench    *bench.Bench
	globber  *sourcefiles.Globber
	selector *sourcefiles.Selector
	lister   vcs.Lister
	executor shell.Executor

	resolved *resolution
}

type resolution struct {
	files []string
	// changed is nil unless the files came from the VCS
	changed *vcs.ChangedResult
}

type Option func(*Runner)

// WithLister replaces the git lister used in changed-only mode.
func WithLister(l vcs.Lister) Option {
	return func(r *Runner) { r.lister = l }
}

// WithExecutor replaces the process executor used to run linters.
func WithExecutor(e shell.Executor) Option {
	return func(r *Runner) { r.executor = e }
}

// New builds a Runner over filePaths. workDir is the directory paths are
// resolved against and linters run in; it must not change during a run.
func New(filePaths []string, config *runnerconfig.Config, workDir string, logger *zap.SugaredLogger, opts ...Option) *Runner {
	c := console.New(config.Stdout, config.Debug)
	globber := sourcefiles.NewGlobber(workDir)

	r := &Runner{
		filePaths: filePaths,
		config:    config,
		logger:    logger,
		console:   c,
		bench:     bench.New(c),
		globber:   globber,
		selector:  sourcefiles.NewSelector(globber, config.SourceDirs, config.IgnoredDirs),
		lister:    vcs.New(workDir, logger),
	}
	if config.NoShell {
		r.executor = &shell.ArgvExecutor{Dir: workDir, Stdout: c.Writer(), Stderr: os.Stderr}
	} else {
		r.executor = &shell.ShellExecutor{Dir: workDir, Stdout: c.Writer(), Stderr: os.Stderr}
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Runner) FilePaths() []string { return r.filePaths }

func (r *Runner) Config() *runnerconfig.Config { return r.config }

func (r *Runner) Linters() []linter.Linter { return r.config.Linters }

func (r *Runner) AnyLinters() bool { return len(r.config.Linters) > 0 }

func (r *Runner) DryRun() bool { return r.config.DryRun }

func (r *Runner) List() bool { return r.config.List }

func (r *Runner) Debug() bool { return r.config.Debug }

func (r *Runner) ChangedOnly() bool { return r.config.ChangedOnly }

// Execute reports whether linters would actually be run over files.
func (r *Runner) Execute(files []string) bool {
	return len(files) > 0 && r.AnyLinters() && !r.DryRun() && !r.List()
}

// CmdStr joins every linter's command for files, skipping linters with
// nothing to do.
func (r *Runner) CmdStr(files []string) string {
	var cmds []string
	for _, l := range r.Linters() {
		if cmd := l.CmdStr(files); cmd != "" {
			cmds = append(cmds, cmd)
		}
	}
	return strings.Join(cmds, LinterCmdSeparator)
}

// SourceFiles resolves, selects and caches the files to lint. The returned
// slice is a copy.
func (r *Runner) SourceFiles(ctx context.Context) ([]string, error) {
	res, err := r.lookup(ctx)
	if err != nil {
		return nil, err
	}
	return slices.Clone(res.files), nil
}

func (r *Runner) lookup(ctx context.Context) (*resolution, error) {
	if r.resolved != nil {
		return r.resolved, nil
	}

	paths := r.filePaths
	if len(paths) == 0 {
		paths = []string{DefaultFilePath}
	}

	res := &resolution{}
	var discovered []string
	if r.ChangedOnly() {
		changed, err := bench.Measure(r.bench, "Lookup changed source files", func() (vcs.ChangedResult, error) {
			return sourcefiles.ResolveChanged(ctx, r.lister, r.globber, paths, r.config.ChangedRef)
		})
		if err != nil {
			return nil, err
		}
		discovered = changed.Files
		res.changed = &changed
	} else {
		files, err := bench.Measure(r.bench, "Lookup source files", func() ([]string, error) {
			return r.globber.Expand(paths...)
		})
		if err != nil {
			return nil, err
		}
		discovered = files
	}

	files, err := r.selector.Select(discovered)
	if err != nil {
		return nil, err
	}
	res.files = files
	r.resolved = res
	return res, nil
}

// Run resolves the source files and either lists them, prints each linter's
// command, or runs each linter in turn. The result is false if any executed
// linter exited unsuccessfully; the error is set only when the run itself
// could not proceed.
func (r *Runner) Run(ctx context.Context) (bool, error) {
	res, err := r.lookup(ctx)
	if err != nil {
		return false, err
	}
	files := res.files

	if r.Debug() {
		if res.changed != nil {
			r.console.DebugPuts("  `" + res.changed.Cmd + "`")
		}
		r.console.DebugPutsf("%d source files:", len(files))
		for _, f := range files {
			r.console.DebugPuts("  " + f)
		}
	}

	if r.List() {
		if len(files) > 0 {
			r.console.Puts(strings.Join(files, "\n"))
		}
		return true, nil
	}

	execute := r.Execute(files)
	success := true
	for i, l := range r.Linters() {
		if i > 0 {
			r.console.Puts("")
		}
		r.console.Puts(headerPrefix + l.Name)

		cmdStr := l.CmdStr(files)
		if cmdStr == "" {
			continue
		}
		if r.Debug() {
			r.console.DebugPuts("Lint command:")
			r.console.DebugPuts("  " + cmdStr)
		}

		switch {
		case execute:
			ok, err := r.executor.Execute(ctx, cmdStr)
			if err != nil {
				r.logger.Errorw("unable to run linter", "linter", l.Name, "error", err)
				return false, err
			}
			if !ok {
				r.logger.Warnw("linter failed", "linter", l.Name, "cmd", cmdStr)
				success = false
			}
		case r.DryRun():
			r.console.Puts(cmdStr)
		}
	}
	return success, nil
}
