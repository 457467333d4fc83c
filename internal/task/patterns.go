package task

import (
	"path"
	"strings"

	"github.com/gobwas/glob"
)

// MatchFiles filters files by glob patterns. Patterns use '/' as separator and
// support "**". A pattern without a '/' is matched against the base name, so
// "*.go" selects Go files in every directory. Invalid patterns match nothing.
func MatchFiles(patterns []string, files []string) []string {
	if len(patterns) == 0 {
		return files
	}

	type matcher struct {
		g        glob.Glob
		baseOnly bool
	}
	matchers := make([]matcher, 0, len(patterns))
	for _, p := range patterns {
		g, err := glob.Compile(p, '/')
		if err != nil {
			continue
		}
		matchers = append(matchers, matcher{g: g, baseOnly: !strings.Contains(p, "/")})
	}

	var out []string
	for _, f := range files {
		for _, m := range matchers {
			subject := f
			if m.baseOnly {
				subject = path.Base(f)
			}
			if m.g.Match(subject) {
				out = append(out, f)
				break
			}
		}
	}
	return out
}
