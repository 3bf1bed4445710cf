// Package sourcefiles finds the files lintrunner hands to linters: it expands
// search roots on disk, resolves changed files through the VCS, and narrows
// the result with the configured source and ignored directories.
package sourcefiles

import (
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strings"
	"sync"

	"github.com/mattn/go-zglob/fastwalk"

	"lintrunner/internal/errors"
)

// Globber expands search roots into the files that currently exist under
// them. Returned paths are relative to the working directory when they are
// inside it.
type Globber struct {
	workDir string
}

func NewGlobber(workDir string) *Globber {
	return &Globber{workDir: filepath.Clean(workDir)}
}

func (g *Globber) WorkDir() string { return g.workDir }

// Expand returns the sorted union of every root's files.
//
// A root matches by prefix on its last segment: "lib" expands both "lib/"
// and "lib_extra". Directories are walked recursively, skipping entries whose
// name starts with a dot. Matched names are used literally, so "app" also
// reaches "app[old]/b.rb".
func (g *Globber) Expand(roots ...string) ([]string, error) {
	var files []string
	for _, root := range roots {
		rootFiles, err := g.expandRoot(root)
		if err != nil {
			return nil, err
		}
		files = append(files, rootFiles...)
	}
	return sortUnique(files), nil
}

func (g *Globber) expandRoot(root string) ([]string, error) {
	path := root
	if !filepath.IsAbs(path) {
		path = filepath.Join(g.workDir, root)
	}

	matches, err := filepath.Glob(escapeMeta(path) + "*")
	if err != nil {
		return nil, errors.WithStackTraceAndPrefix(err, "expand %q", root)
	}

	var files []string
	for _, match := range matches {
		info, err := os.Stat(match)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return nil, errors.WithStackTrace(err)
		}
		if info.Mode().IsRegular() {
			files = append(files, g.rel(match))
			continue
		}
		if !info.IsDir() {
			continue
		}

		descendants, err := g.walk(match)
		if err != nil {
			return nil, err
		}
		files = append(files, descendants...)
	}
	return files, nil
}

// walk lists the regular files below dir. dir is a literal path, never a
// pattern, so names holding glob metacharacters are walked like any other.
func (g *Globber) walk(dir string) ([]string, error) {
	var (
		mu    sync.Mutex
		files []string
	)
	err := fastwalk.FastWalk(dir, func(path string, typ os.FileMode) error {
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return nil
		}
		if hidden(rel) {
			if typ.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if typ.IsDir() {
			return nil
		}
		info, err := os.Stat(path)
		if err != nil || !info.Mode().IsRegular() {
			// Vanished or dangling entries are not source files.
			return nil
		}
		mu.Lock()
		files = append(files, g.rel(path))
		mu.Unlock()
		return nil
	})
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, errors.WithStackTraceAndPrefix(err, "walk %q", dir)
	}
	return files, nil
}

// RootFiles lists the regular files directly inside the working directory.
func (g *Globber) RootFiles() ([]string, error) {
	entries, err := os.ReadDir(g.workDir)
	if err != nil {
		return nil, errors.WithStackTrace(err)
	}
	var files []string
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), ".") {
			continue
		}
		info, err := os.Stat(filepath.Join(g.workDir, e.Name()))
		if err != nil || !info.Mode().IsRegular() {
			continue
		}
		files = append(files, e.Name())
	}
	return sortUnique(files), nil
}

func (g *Globber) rel(path string) string {
	prefix := g.workDir + string(filepath.Separator)
	if g.workDir == string(filepath.Separator) {
		prefix = g.workDir
	}
	return strings.TrimPrefix(path, prefix)
}

func hidden(rel string) bool {
	for _, seg := range strings.Split(filepath.ToSlash(rel), "/") {
		if strings.HasPrefix(seg, ".") && seg != "." && seg != ".." {
			return true
		}
	}
	return false
}

// escapeMeta quotes the characters filepath.Match treats specially. Windows
// has no escape character, so names there are used unchanged.
func escapeMeta(path string) string {
	if runtime.GOOS == "windows" {
		return path
	}
	var b strings.Builder
	for _, r := range path {
		if strings.ContainsRune(`*?[\`, r) {
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}

func sortUnique(files []string) []string {
	slices.Sort(files)
	return slices.Compact(files)
}
