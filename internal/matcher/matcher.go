package matcher

import (
	"path/filepath"
	"strings"

	"github.com/gobwas/glob"
)

// WebPPattern matches WebP file names once they are lower-cased.
const WebPPattern = "?*.webp"

// Matcher matches file names against a list of glob patterns, ignoring case.
type Matcher struct {
	globs []glob.Glob
}

// New creates a Matcher from a list of glob patterns.
// Patterns are lower-cased and use '/' as the path separator.
func New(patterns ...string) (*Matcher, error) {
	var globs []glob.Glob
	for _, pat := range patterns {
		g, err := glob.Compile(strings.ToLower(pat), '/')
		if err != nil {
			return nil, err
		}
		globs = append(globs, g)
	}
	return &Matcher{globs: globs}, nil
}

// WebP returns a Matcher for "*.webp" in any casing. A bare ".webp" has no
// stem and does not match.
func WebP() *Matcher {
	m, err := New(WebPPattern)
	if err != nil {
		panic(err)
	}
	return m
}

// Match reports whether the base name of path matches any pattern.
func (m *Matcher) Match(path string) bool {
	name := strings.ToLower(filepath.Base(path))
	for _, g := range m.globs {
		if g.Match(name) {
			return true
		}
	}
	return false
}
