// Package ignore compiles the configured ignore patterns into a single
// predicate over project-relative paths.
//
// Patterns use gitignore syntax via go-git's matcher: bare names match a
// file or directory anywhere in the tree, `*.ext` matches by extension,
// and `dir/` anchors to directories. Legacy pipe-separated alternation
// ("bin|*.log|logs") is accepted and split before compilation. Matching
// is path-component-aware, so the tree walker can prune an entire
// subtree on a directory match without descending into it.
package ignore

import (
	"path/filepath"
	"strings"

	"github.com/go-git/go-git/v5/plumbing/format/gitignore"
)

// Matcher is an immutable compiled pattern list.
type Matcher struct {
	matcher gitignore.Matcher
}

// New compiles an ordered pattern list. Empty and whitespace-only
// patterns are dropped; an empty list yields a matcher that never
// ignores.
func New(patterns []string) *Matcher {
	var compiled []gitignore.Pattern
	for _, raw := range patterns {
		// Accept pipe-separated alternation within one entry.
		for _, p := range strings.Split(raw, "|") {
			p = strings.TrimSpace(p)
			if p == "" {
				continue
			}
			compiled = append(compiled, gitignore.ParsePattern(p, nil))
		}
	}
	if len(compiled) == 0 {
		return &Matcher{}
	}
	return &Matcher{matcher: gitignore.NewMatcher(compiled)}
}

// Matches reports whether a project-relative path is ignored.
func (m *Matcher) Matches(relPath string, isDir bool) bool {
	if m.matcher == nil {
		return false
	}
	return m.matcher.Match(splitPath(relPath), isDir)
}

// splitPath converts a relative path into the segment form go-git's
// matcher expects, dropping empty and "." components.
func splitPath(path string) []string {
	normalized := filepath.ToSlash(path)
	parts := strings.Split(normalized, "/")
	segments := make([]string, 0, len(parts))
	for _, part := range parts {
		if part != "" && part != "." {
			segments = append(segments, part)
		}
	}
	return segments
}
