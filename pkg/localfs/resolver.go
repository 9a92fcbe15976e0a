package localfs

import (
	"path/filepath"
	"strings"
)

// resolver maps logical names to absolute paths confined to a storage root,
// rejecting traversal and collisions with the temp directory.
//
// It performs no I/O: resolution is pure path arithmetic, so it is safe to
// call from any goroutine without synchronization.
type resolver struct {
	root    string
	tempDir string
}

func newResolver(root, tempDir string) *resolver {
	return &resolver{root: filepath.Clean(root), tempDir: filepath.Clean(tempDir)}
}

// resolve implements Path Resolver rule 1-5: reject empty names, translate
// the logical separator to the host separator, canonicalize against root
// without touching the filesystem, and reject anything that escapes root or
// lands inside tempDir.
func (r *resolver) resolve(name string) (string, *Error) {
	if name == "" {
		return "", newError(KindForbiddenPath, name, "empty name", nil)
	}

	local := toLocalName(name)
	joined := filepath.Join(r.root, local)
	clean := filepath.Clean(joined)

	if !isDescendant(r.root, clean) {
		return "", newError(KindForbiddenPath, name, "escapes storage root", nil)
	}
	if clean == r.tempDir || isDescendant(r.tempDir, clean) {
		return "", newError(KindForbiddenPath, name, "resolves into temp directory", nil)
	}

	return clean, nil
}

// relativeName expresses an absolute path, known to be a descendant of
// root, as a logical name using '/' as separator.
func (r *resolver) relativeName(path string) string {
	rel, err := filepath.Rel(r.root, path)
	if err != nil {
		return path
	}
	return toRemoteName(rel)
}

// isDescendant reports whether child is equal to or nested under parent.
// Both must already be filepath.Clean'd absolute paths.
func isDescendant(parent, child string) bool {
	if child == parent {
		return true
	}
	return strings.HasPrefix(child, parent+string(filepath.Separator))
}

// toLocalName translates the logical '/'-separated name to the host path
// separator. On every platform this module currently builds for it is the
// identity, but the translation matters on Windows.
func toLocalName(name string) string {
	if filepath.Separator == '/' {
		return name
	}
	return filepath.FromSlash(name)
}

// toRemoteName is the inverse of toLocalName, used when reporting paths
// discovered by walking the filesystem back as logical names.
func toRemoteName(path string) string {
	if filepath.Separator == '/' {
		return path
	}
	return filepath.ToSlash(path)
}
