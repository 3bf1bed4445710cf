// Package console writes lintrunner's user-facing output: file listings,
// linter headers, dry-run commands and debug traces.
package console

import (
	"fmt"
	"io"
	"os"
)

const debugPrefix = "[DEBUG] "

type Console struct {
	w     io.Writer
	debug bool
}

// New returns a Console writing to w, or to os.Stdout if w is nil.
func New(w io.Writer, debug bool) *Console {
	if w == nil {
		w = os.Stdout
	}
	return &Console{w: w, debug: debug}
}

func (c *Console) Writer() io.Writer { return c.w }

func (c *Console) Debug() bool { return c.debug }

// Puts writes msg followed by a newline.
func (c *Console) Puts(msg string) {
	fmt.Fprintln(c.w, msg)
}

// Print writes msg as is.
func (c *Console) Print(msg string) {
	fmt.Fprint(c.w, msg)
}

// DebugMsg prefixes msg with the debug marker.
func DebugMsg(msg string) string {
	return debugPrefix + msg
}

// DebugPuts writes a debug line. It writes regardless of the debug flag;
// callers decide whether a trace is wanted.
func (c *Console) DebugPuts(msg string) {
	c.Puts(DebugMsg(msg))
}

func (c *Console) DebugPutsf(format string, args ...any) {
	c.DebugPuts(fmt.Sprintf(format, args...))
}
