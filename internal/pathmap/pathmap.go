// Package pathmap maps files between two directory roots that mirror each
// other's layout.
package pathmap

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

type ContainmentError struct {
	Root string
	Path string
}

func (e *ContainmentError) Error() string {
	return fmt.Sprintf("path %s is not inside root %s", e.Path, e.Root)
}

// Normalize returns p as an absolute, cleaned path without trailing
// separators. Case is preserved; comparisons fold case separately.
func Normalize(p string) string {
	abs, err := filepath.Abs(p)
	if err != nil {
		abs = filepath.Clean(p)
	}

	vol := filepath.VolumeName(abs)
	trimmed := strings.TrimRight(abs[len(vol):], `/\`)
	if trimmed == "" {
		return vol + string(filepath.Separator)
	}

	return vol + trimmed
}

// RelativePath returns path relative to root, prefixed with "./". The
// containment check ignores case and only matches whole path components.
func RelativePath(root, path string) (string, error) {
	r := Normalize(root)
	p := Normalize(path)

	if len(p) < len(r) || !strings.EqualFold(p[:len(r)], r) {
		return "", &ContainmentError{Root: root, Path: path}
	}

	rest := p[len(r):]
	if rest == "" {
		return ".", nil
	}

	if !strings.HasSuffix(r, string(filepath.Separator)) {
		if rest[0] != filepath.Separator {
			return "", &ContainmentError{Root: root, Path: path}
		}
		rest = rest[1:]
	}

	return "." + string(filepath.Separator) + rest, nil
}

// Project joins a relative path produced by RelativePath onto newRoot.
func Project(rel, newRoot string) string {
	return filepath.Join(newRoot, rel)
}

// EnsureDir creates dir and its parents. A directory that already exists,
// including one created concurrently by another copy, counts as success.
func EnsureDir(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		if info, statErr := os.Stat(dir); statErr == nil && info.IsDir() {
			return nil
		}
		return err
	}

	return nil
}
