package localfs

import (
	"errors"
	"io/fs"
	"path"
	"path/filepath"
	"strings"
)

// globLister enumerates files under root whose logical name matches
// pattern, skipping the temp directory subtree entirely.
//
// Patterns use '/'-separated logical names and support '*', '?', '[...]'
// character classes, '{a,b}' alternation groups, and the recursive '**'
// segment, mirroring LocalActiveFs.list's use of Java's glob PathMatcher
// extended with a literal-prefix split for efficient subtree walking.
type globLister struct {
	res *resolver
}

func newGlobLister(res *resolver) *globLister {
	return &globLister{res: res}
}

// list returns the logical names of every regular file matching pattern.
func (g *globLister) list(pattern string) ([]string, error) {
	if !validGlob(pattern) {
		return nil, errMalformedGlob
	}

	prefix, sub := extractSubDir(pattern)
	walkRoot := filepath.Join(g.res.root, toLocalName(prefix))

	var names []string
	err := filepath.WalkDir(walkRoot, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			if isNotExistWalkErr(err) {
				return fs.SkipDir
			}
			return err
		}
		if d.IsDir() {
			if samePath(p, g.res.tempDir) {
				return fs.SkipDir
			}
			return nil
		}

		rel := g.res.relativeName(p)
		if matchGlob(sub, relativeTo(prefix, rel)) {
			names = append(names, rel)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return names, nil
}

// extractSubDir splits pattern into its longest glob-metacharacter-free
// directory prefix and the remaining glob suffix, so list() only has to
// walk the subtree the pattern could possibly match rather than the whole
// root. Mirrors LocalActiveFs's own prefix extraction ahead of its
// PathMatcher construction.
func extractSubDir(pattern string) (prefix, sub string) {
	segments := strings.Split(pattern, "/")
	i := 0
	for ; i < len(segments); i++ {
		if containsMeta(segments[i]) {
			break
		}
	}
	prefix = strings.Join(segments[:i], "/")
	sub = strings.Join(segments[i:], "/")
	return prefix, sub
}

func containsMeta(segment string) bool {
	return strings.ContainsAny(segment, "*?[{")
}

// relativeTo strips prefix (and a following separator, if any) from rel.
func relativeTo(prefix, rel string) string {
	if prefix == "" {
		return rel
	}
	rel = strings.TrimPrefix(rel, prefix)
	return strings.TrimPrefix(rel, "/")
}

// validGlob does a light structural check: brace and bracket groups must
// balance. A real mismatch surfaces as KindMalformedGlob rather than a
// silent empty match.
func validGlob(pattern string) bool {
	braces, brackets := 0, 0
	for _, r := range pattern {
		switch r {
		case '{':
			braces++
		case '}':
			braces--
		case '[':
			brackets++
		case ']':
			brackets--
		}
		if braces < 0 || brackets < 0 {
			return false
		}
	}
	return braces == 0 && brackets == 0
}

// matchGlob matches a '/'-separated name against a pattern supporting '*'
// (any run within a segment), '?' (one rune), '[...]' classes, '{a,b}'
// alternation, and '**' (any number of segments, including zero).
func matchGlob(pattern, name string) bool {
	if pattern == "" {
		return name == ""
	}
	for _, alt := range expandBraces(pattern) {
		if matchSegments(strings.Split(alt, "/"), strings.Split(name, "/")) {
			return true
		}
	}
	return false
}

// expandBraces expands the first top-level {a,b,c} group in pattern into
// one alternative per option, recursively, so nested/multiple groups all
// get enumerated.
func expandBraces(pattern string) []string {
	start := strings.IndexByte(pattern, '{')
	if start < 0 {
		return []string{pattern}
	}
	depth := 0
	end := -1
	for i := start; i < len(pattern); i++ {
		switch pattern[i] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				end = i
			}
		}
		if end >= 0 {
			break
		}
	}
	if end < 0 {
		return []string{pattern}
	}

	head, tail := pattern[:start], pattern[end+1:]
	options := splitTopLevel(pattern[start+1:end])

	var out []string
	for _, opt := range options {
		for _, expanded := range expandBraces(head + opt + tail) {
			out = append(out, expanded)
		}
	}
	return out
}

func splitTopLevel(s string) []string {
	var parts []string
	depth := 0
	last := 0
	for i, r := range s {
		switch r {
		case '{':
			depth++
		case '}':
			depth--
		case ',':
			if depth == 0 {
				parts = append(parts, s[last:i])
				last = i + 1
			}
		}
	}
	parts = append(parts, s[last:])
	return parts
}

// matchSegments matches a slice of pattern segments against a slice of
// name segments, with "**" in the pattern consuming zero or more name
// segments.
func matchSegments(pattern, name []string) bool {
	if len(pattern) == 0 {
		return len(name) == 0
	}
	if pattern[0] == "**" {
		if matchSegments(pattern[1:], name) {
			return true
		}
		if len(name) == 0 {
			return false
		}
		return matchSegments(pattern, name[1:])
	}
	if len(name) == 0 {
		return false
	}
	ok, err := path.Match(pattern[0], name[0])
	if err != nil || !ok {
		return false
	}
	return matchSegments(pattern[1:], name[1:])
}

func samePath(a, b string) bool {
	return filepath.Clean(a) == filepath.Clean(b)
}

func isNotExistWalkErr(err error) bool {
	return errors.Is(err, fs.ErrNotExist)
}
