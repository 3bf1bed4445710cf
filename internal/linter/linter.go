// Package linter describes the external linters lintrunner knows how to invoke.
package linter

import (
	"fmt"
	"path/filepath"
	"slices"
	"strings"
)

// ArgumentSeparator joins the executable and every file of a command line.
const ArgumentSeparator = " "

// Linter is a static description of one linter: how it is called and which
// file extensions it handles. Extensions carry the leading dot and are
// compared case-sensitively.
type Linter struct {
	Name       string   `mapstructure:"name"`
	Executable string   `mapstructure:"executable"`
	Extensions []string `mapstructure:"extensions"`
}

// Defaults is the linter table used when no config file overrides it.
var Defaults = []Linter{
	{
		Name:       "Rubocop",
		Executable: "rubocop",
		Extensions: []string{".rb"},
	},
	{
		Name:       "ES Lint",
		Executable: "./node_modules/.bin/eslint",
		Extensions: []string{".js"},
	},
	{
		Name:       "SCSS Lint",
		Executable: "scss-lint",
		Extensions: []string{".scss"},
	},
}

// ApplicableFiles returns the files whose extension is handled by l,
// in the order they were given.
func (l Linter) ApplicableFiles(files []string) []string {
	var result []string
	for _, f := range files {
		if slices.Contains(l.Extensions, filepath.Ext(f)) {
			result = append(result, f)
		}
	}
	return result
}

// CmdStr builds the command line for files. It returns an empty string when
// none of the files apply, which means there is nothing for l to do.
//
// Paths are not quoted.
func (l Linter) CmdStr(files []string) string {
	applicable := l.ApplicableFiles(files)
	if len(applicable) == 0 {
		return ""
	}
	return l.Executable + ArgumentSeparator + strings.Join(applicable, ArgumentSeparator)
}

func (l Linter) Validate() error {
	if l.Name == "" {
		return fmt.Errorf("linter %q: empty name", l.Executable)
	}
	if l.Executable == "" {
		return fmt.Errorf("linter %q: empty executable", l.Name)
	}
	for _, ext := range l.Extensions {
		if !strings.HasPrefix(ext, ".") {
			return fmt.Errorf("linter %q: extension %q must start with a dot", l.Name, ext)
		}
	}
	return nil
}
