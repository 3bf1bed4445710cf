package runner

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"golang.org/x/tools/txtar"

	runnerconfig "lintrunner/config/runner"
	"lintrunner/internal/linter"
	"lintrunner/internal/vcs"
)

const projectTree = `
-- Rakefile --
-- app/a.rb --
-- app/b.js --
-- app/c.scss --
-- lib/x.rb --
-- test/unit/x_test.rb --
-- test/fixtures/sample.rb --
-- vendor/v.rb --
`

func writeTree(t *testing.T, archive string) string {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "project")
	for _, f := range txtar.Parse([]byte(archive)).Files {
		path := filepath.Join(dir, filepath.FromSlash(f.Name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, f.Data, 0o644))
	}
	return dir
}

type fakeExecutor struct {
	cmds []string
	// fail lists command lines that exit unsuccessfully
	fail map[string]bool
	err  error
}

func (e *fakeExecutor) Execute(_ context.Context, cmdStr string) (bool, error) {
	e.cmds = append(e.cmds, cmdStr)
	if e.err != nil {
		return false, e.err
	}
	return !e.fail[cmdStr], nil
}

type fakeLister struct {
	files []string
	calls int
	roots []string
	ref   string
}

func (l *fakeLister) Changed(_ context.Context, roots []string, ref string) vcs.ChangedResult {
	l.calls++
	l.roots, l.ref = roots, ref
	return vcs.ChangedResult{Cmd: vcs.Cmd(roots, ref), Files: l.files}
}

var (
	rubocop = linter.Linter{Name: "Rubocop", Executable: "rubocop", Extensions: []string{".rb"}}
	eslint  = linter.Linter{Name: "ESLint", Executable: "eslint", Extensions: []string{".js"}}
)

type fixture struct {
	out      *bytes.Buffer
	cfg      *runnerconfig.Config
	executor *fakeExecutor
	lister   *fakeLister
	workDir  string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	out := &bytes.Buffer{}
	cfg := runnerconfig.New(out)
	cfg.Linters = []linter.Linter{rubocop, eslint}
	return &fixture{
		out:      out,
		cfg:      cfg,
		executor: &fakeExecutor{},
		lister:   &fakeLister{},
		workDir:  writeTree(t, projectTree),
	}
}

func (f *fixture) runner(t *testing.T, paths ...string) *Runner {
	return New(paths, f.cfg, f.workDir, zaptest.NewLogger(t).Sugar(),
		WithExecutor(f.executor), WithLister(f.lister))
}

func TestRunner_defaults(t *testing.T) {
	f := newFixture(t)
	r := f.runner(t)

	assert.Empty(t, r.FilePaths())
	assert.Same(t, f.cfg, r.Config())
	assert.Equal(t, f.cfg.Linters, r.Linters())
	assert.True(t, r.AnyLinters())
	assert.False(t, r.DryRun())
	assert.False(t, r.List())
	assert.False(t, r.Debug())
	assert.False(t, r.ChangedOnly())

	files, err := r.SourceFiles(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"Rakefile", "app/a.rb", "app/b.js", "app/c.scss", "lib/x.rb", "test/unit/x_test.rb"}, files)
	assert.True(t, r.Execute(files))
	assert.Equal(t, "rubocop app/a.rb lib/x.rb test/unit/x_test.rb; eslint app/b.js", r.CmdStr(files))
}

func TestRunner_Run(t *testing.T) {
	t.Run("executes each linter in order", func(t *testing.T) {
		f := newFixture(t)

		ok, err := f.runner(t, "app").Run(context.Background())
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, []string{"rubocop app/a.rb", "eslint app/b.js"}, f.executor.cmds)
		assert.Equal(t, "# Rubocop\n\n# ESLint\n", f.out.String())
	})

	t.Run("dry run prints commands without executing", func(t *testing.T) {
		f := newFixture(t)
		f.cfg.DryRun = true
		r := f.runner(t, "app")

		ok, err := r.Run(context.Background())
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Empty(t, f.executor.cmds)
		assert.Equal(t, "# Rubocop\nrubocop app/a.rb\n\n# ESLint\neslint app/b.js\n", f.out.String())

		files, err := r.SourceFiles(context.Background())
		require.NoError(t, err)
		assert.False(t, r.Execute(files))
	})

	t.Run("list prints files and ignores linters", func(t *testing.T) {
		f := newFixture(t)
		f.cfg.List = true
		f.cfg.DryRun = true

		ok, err := f.runner(t, "app", "lib").Run(context.Background())
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Empty(t, f.executor.cmds)
		assert.Equal(t, "app/a.rb\napp/b.js\napp/c.scss\nlib/x.rb\n", f.out.String())
	})

	t.Run("list with nothing to lint", func(t *testing.T) {
		f := newFixture(t)
		f.cfg.List = true

		ok, err := f.runner(t, "missing").Run(context.Background())
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Empty(t, f.out.String())
	})

	t.Run("linter without applicable files only prints its header", func(t *testing.T) {
		f := newFixture(t)

		ok, err := f.runner(t, "lib").Run(context.Background())
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, []string{"rubocop lib/x.rb"}, f.executor.cmds)
		assert.Equal(t, "# Rubocop\n\n# ESLint\n", f.out.String())
	})

	t.Run("ignored directories are never linted", func(t *testing.T) {
		f := newFixture(t)

		_, err := f.runner(t, "test").Run(context.Background())
		require.NoError(t, err)
		assert.Equal(t, []string{"rubocop test/unit/x_test.rb"}, f.executor.cmds)
	})

	t.Run("files outside source dirs are never linted", func(t *testing.T) {
		f := newFixture(t)

		_, err := f.runner(t, "vendor").Run(context.Background())
		require.NoError(t, err)
		assert.Empty(t, f.executor.cmds)
	})

	t.Run("no linters", func(t *testing.T) {
		f := newFixture(t)
		f.cfg.Linters = nil
		r := f.runner(t, "app")

		ok, err := r.Run(context.Background())
		require.NoError(t, err)
		assert.True(t, ok)
		assert.False(t, r.AnyLinters())
		assert.Empty(t, f.executor.cmds)
		assert.Empty(t, f.out.String())
	})

	t.Run("failing linter does not stop the others", func(t *testing.T) {
		f := newFixture(t)
		f.executor.fail = map[string]bool{"rubocop app/a.rb": true}

		ok, err := f.runner(t, "app").Run(context.Background())
		require.NoError(t, err)
		assert.False(t, ok)
		assert.Equal(t, []string{"rubocop app/a.rb", "eslint app/b.js"}, f.executor.cmds)
	})

	t.Run("executor error aborts the run", func(t *testing.T) {
		f := newFixture(t)
		boom := errors.New("exec: not found")
		f.executor.err = boom

		ok, err := f.runner(t, "app").Run(context.Background())
		assert.ErrorIs(t, err, boom)
		assert.False(t, ok)
		assert.Equal(t, []string{"rubocop app/a.rb"}, f.executor.cmds)
	})
}

func TestRunner_changedOnly(t *testing.T) {
	f := newFixture(t)
	f.cfg.ChangedOnly = true
	f.cfg.ChangedRef = "origin/main"
	f.lister.files = []string{"app/a.rb", "app/removed.rb"}

	r := f.runner(t, "app", "lib")
	ok, err := r.Run(context.Background())
	require.NoError(t, err)
	assert.True(t, ok)

	assert.Equal(t, []string{"app", "lib"}, f.lister.roots)
	assert.Equal(t, "origin/main", f.lister.ref)
	assert.Equal(t, []string{"rubocop app/a.rb"}, f.executor.cmds)

	files, err := r.SourceFiles(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"app/a.rb"}, files)
	assert.Equal(t, 1, f.lister.calls)
}

func TestRunner_SourceFilesReturnsCopy(t *testing.T) {
	f := newFixture(t)
	r := f.runner(t, "lib")

	files, err := r.SourceFiles(context.Background())
	require.NoError(t, err)
	require.Equal(t, []string{"lib/x.rb"}, files)
	files[0] = "vendor/v.rb"

	again, err := r.SourceFiles(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"lib/x.rb"}, again)

	_, err = r.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"rubocop lib/x.rb"}, f.executor.cmds)
}

func TestRunner_changedOnlyNothingChanged(t *testing.T) {
	f := newFixture(t)
	f.cfg.ChangedOnly = true

	ok, err := f.runner(t).Run(context.Background())
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []string{"."}, f.lister.roots)
	assert.Empty(t, f.executor.cmds)
}

func TestRunner_debug(t *testing.T) {
	f := newFixture(t)
	f.cfg.Debug = true
	f.cfg.DryRun = true
	f.cfg.ChangedOnly = true
	f.lister.files = []string{"app/a.rb"}

	ok, err := f.runner(t, "app").Run(context.Background())
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Empty(t, f.executor.cmds)

	out := f.out.String()
	assert.Contains(t, out, "[DEBUG] Lookup changed source files...")
	assert.Contains(t, out,
		"[DEBUG]   `"+vcs.Cmd([]string{"app"}, "")+"`\n"+
			"[DEBUG] 1 source files:\n"+
			"[DEBUG]   app/a.rb\n"+
			"# Rubocop\n"+
			"[DEBUG] Lint command:\n"+
			"[DEBUG]   rubocop app/a.rb\n"+
			"rubocop app/a.rb\n"+
			"\n"+
			"# ESLint\n")
}

func TestRunner_debugFilesystem(t *testing.T) {
	f := newFixture(t)
	f.cfg.Debug = true

	ok, err := f.runner(t, "lib").Run(context.Background())
	require.NoError(t, err)
	assert.True(t, ok)

	out := f.out.String()
	assert.Contains(t, out, "[DEBUG] Lookup source files...")
	assert.NotContains(t, out, "`git")
	assert.Contains(t, out, "[DEBUG] 1 source files:\n[DEBUG]   lib/x.rb\n")
	assert.Contains(t, out, "[DEBUG] Lint command:\n[DEBUG]   rubocop lib/x.rb\n")
	assert.Equal(t, []string{"rubocop lib/x.rb"}, f.executor.cmds)
}
