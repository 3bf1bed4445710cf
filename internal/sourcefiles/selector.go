package sourcefiles

import (
	"sync"
)

// Selector narrows discovered files to those under the source directories
// and outside the ignored ones. Both lists are expanded once per Selector.
type Selector struct {
	whitelist func() ([]string, error)
	blacklist func() ([]string, error)
}

// NewSelector builds a Selector. Files directly inside the working directory
// are always whitelisted; its subdirectories only through sourceDirs.
func NewSelector(g *Globber, sourceDirs, ignoredDirs []string) *Selector {
	return &Selector{
		whitelist: sync.OnceValues(func() ([]string, error) {
			rootFiles, err := g.RootFiles()
			if err != nil {
				return nil, err
			}
			dirFiles, err := g.Expand(sourceDirs...)
			if err != nil {
				return nil, err
			}
			return sortUnique(append(rootFiles, dirFiles...)), nil
		}),
		blacklist: sync.OnceValues(func() ([]string, error) {
			return g.Expand(ignoredDirs...)
		}),
	}
}

func (s *Selector) Whitelist() ([]string, error) { return s.whitelist() }

func (s *Selector) Blacklist() ([]string, error) { return s.blacklist() }

// Select returns (discovered ∩ whitelist) − blacklist in discovered's order,
// without duplicates.
func (s *Selector) Select(discovered []string) ([]string, error) {
	whitelist, err := s.Whitelist()
	if err != nil {
		return nil, err
	}
	blacklist, err := s.Blacklist()
	if err != nil {
		return nil, err
	}

	allowed := toSet(whitelist)
	ignored := toSet(blacklist)
	seen := make(map[string]struct{}, len(discovered))

	result := make([]string, 0, len(discovered))
	for _, f := range discovered {
		if _, ok := seen[f]; ok {
			continue
		}
		seen[f] = struct{}{}
		if _, ok := allowed[f]; !ok {
			continue
		}
		if _, ok := ignored[f]; ok {
			continue
		}
		result = append(result, f)
	}
	return result, nil
}

func toSet(files []string) map[string]struct{} {
	set := make(map[string]struct{}, len(files))
	for _, f := range files {
		set[f] = struct{}{}
	}
	return set
}
