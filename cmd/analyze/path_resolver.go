package analyze

import (
	"fmt"
	"path"
	"path/filepath"
	"strings"
)

// RawPath is a user-provided file path from CLI flags.
type RawPath string

// NodeID is a repository-relative, slash-separated file path as it appears in the graph.
type NodeID string

// PathResolver maps raw user paths onto graph node IDs. When the analyzed
// repository is a local directory, absolute paths and paths relative to it
// are accepted; otherwise paths are taken as repository-relative.
type PathResolver struct {
	baseDir string
}

// NewPathResolver returns a resolver for a repository checked out at baseDir.
// An empty baseDir means the repository has no local checkout.
func NewPathResolver(baseDir string) (PathResolver, error) {
	if baseDir == "" {
		return PathResolver{}, nil
	}

	absBaseDir, err := filepath.Abs(baseDir)
	if err != nil {
		return PathResolver{}, fmt.Errorf("failed to resolve base path: %w", err)
	}
	return PathResolver{baseDir: resolveSymlinks(filepath.Clean(absBaseDir))}, nil
}

// Resolve returns the node ID p refers to.
func (r PathResolver) Resolve(p RawPath) (NodeID, error) {
	pathStr := strings.TrimSpace(string(p))
	if pathStr == "" {
		return "", fmt.Errorf("path cannot be empty")
	}

	if filepath.IsAbs(pathStr) {
		if r.baseDir == "" {
			return "", fmt.Errorf("absolute path %q needs a local repository", pathStr)
		}
		rel, within, err := relativeToBase(r.baseDir, pathStr)
		if err != nil {
			return "", err
		}
		if !within {
			return "", fmt.Errorf("path must be within repository: %q", pathStr)
		}
		return NodeID(rel), nil
	}

	id := path.Clean(filepath.ToSlash(pathStr))
	if id == "." || id == ".." || strings.HasPrefix(id, "../") {
		return "", fmt.Errorf("path must be within repository: %q", pathStr)
	}
	return NodeID(id), nil
}

func relativeToBase(baseDir, targetPath string) (string, bool, error) {
	targetPath = resolveSymlinks(filepath.Clean(targetPath))

	rel, err := filepath.Rel(baseDir, targetPath)
	if err != nil {
		return "", false, fmt.Errorf("failed to evaluate path %q: %w", targetPath, err)
	}
	if rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) || filepath.IsAbs(rel) {
		return "", false, nil
	}
	return filepath.ToSlash(rel), true, nil
}

func resolveSymlinks(p string) string {
	resolved, err := filepath.EvalSymlinks(p)
	if err != nil {
		return p
	}
	return resolved
}
