package sourcefiles

import (
	"context"

	"lintrunner/internal/vcs"
)

// ResolveChanged asks lister for the files changed under roots and expands
// each reported name on disk. Names that no longer exist drop out; a
// reported directory becomes its current files.
func ResolveChanged(ctx context.Context, lister vcs.Lister, g *Globber, roots []string, ref string) (vcs.ChangedResult, error) {
	res := lister.Changed(ctx, roots, ref)
	files, err := g.Expand(res.Files...)
	if err != nil {
		return vcs.ChangedResult{Cmd: res.Cmd}, err
	}
	return vcs.ChangedResult{Cmd: res.Cmd, Files: files}, nil
}
