// Package vcs asks git which files changed under a set of search roots.
package vcs

import (
	"bufio"
	"bytes"
	"context"
	"os/exec"
	"runtime"
	"strings"

	"go.uber.org/zap"
)

// ChangedResult holds the query that was issued and the raw file names it
// returned, before any filesystem expansion.
type ChangedResult struct {
	Cmd   string
	Files []string
}

// Lister lists files that changed under roots relative to ref.
type Lister interface {
	Changed(ctx context.Context, roots []string, ref string) ChangedResult
}

const (
	diffCmd      = "git diff --no-ext-diff --name-only "
	untrackedCmd = "git ls-files --others --exclude-standard"
)

// Cmd builds the shell query listing changed and untracked files under
// roots. An empty ref compares the working tree against the index.
func Cmd(roots []string, ref string) string {
	scope := " -- " + strings.Join(roots, " ")
	return diffCmd + ref + scope + " && " + untrackedCmd + scope
}

type Git struct {
	dir    string
	logger *zap.SugaredLogger
}

// New returns a Git lister running its queries in dir.
func New(dir string, logger *zap.SugaredLogger) *Git {
	return &Git{dir: dir, logger: logger}
}

// Changed runs the query through the shell. A failing or missing git is not
// reported: whatever was written to stdout before the failure is used, which
// usually means no files at all.
func (g *Git) Changed(ctx context.Context, roots []string, ref string) ChangedResult {
	cmdStr := Cmd(roots, ref)

	name, flag := "sh", "-c"
	if runtime.GOOS == "windows" {
		name, flag = "cmd", "/C"
	}
	cmd := exec.CommandContext(ctx, name, flag, cmdStr)
	cmd.Dir = g.dir

	out, err := cmd.Output()
	if err != nil {
		g.logger.Debugw("git query failed", "cmd", cmdStr, "error", err)
	}
	return ChangedResult{Cmd: cmdStr, Files: splitLines(out)}
}

func splitLines(out []byte) []string {
	var lines []string
	s := bufio.NewScanner(bytes.NewReader(out))
	for s.Scan() {
		if line := strings.TrimRight(s.Text(), "\r"); line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}
