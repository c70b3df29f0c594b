// Package security validates client-supplied file paths before the tool
// writes artifacts to them.
package security

import (
	"fmt"
	"path/filepath"
	"strings"
)

// ResolveWithin resolves path against dir and verifies the result stays
// inside dir. Relative paths are joined onto dir; absolute paths must
// already point inside it. The canonical resolved path is returned so
// callers write through any symlinked dir consistently.
func ResolveWithin(dir, path string) (string, error) {
	if path == "" {
		return "", fmt.Errorf("path is required")
	}

	absDir, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("failed to resolve output directory: %w", err)
	}
	// The output directory must exist; resolving its symlinks gives the
	// canonical prefix every candidate path is checked against.
	canonDir, err := filepath.EvalSymlinks(absDir)
	if err != nil {
		return "", fmt.Errorf("failed to resolve output directory: %w", err)
	}

	candidate := filepath.Clean(path)
	if !filepath.IsAbs(candidate) {
		candidate = filepath.Join(canonDir, candidate)
	}
	canonPath, err := canonicalize(candidate)
	if err != nil {
		return "", err
	}

	rel, err := filepath.Rel(canonDir, canonPath)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("path %q escapes output directory %q", path, dir)
	}
	return canonPath, nil
}

// canonicalize resolves symlinks in path. Output artifacts usually do not
// exist yet, so when the path is missing the nearest existing ancestor is
// resolved instead and the remaining components are re-joined. This blocks
// traversal through a symlinked intermediate directory.
func canonicalize(path string) (string, error) {
	if resolved, err := filepath.EvalSymlinks(path); err == nil {
		return resolved, nil
	}
	probe := path
	for {
		parent := filepath.Dir(probe)
		if parent == probe {
			return path, nil
		}
		if resolved, err := filepath.EvalSymlinks(parent); err == nil {
			rel, err := filepath.Rel(parent, path)
			if err != nil {
				return "", fmt.Errorf("failed to canonicalize %q: %w", path, err)
			}
			return filepath.Join(resolved, rel), nil
		}
		probe = parent
	}
}
