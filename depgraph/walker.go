package depgraph

import (
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/LegacyCodeHQ/codegraph/depgraph/registry"
)

var excludedDirs = map[string]bool{
	".git":          true,
	".hg":           true,
	".svn":          true,
	"__pycache__":   true,
	"venv":          true,
	"env":           true,
	".venv":         true,
	"virtualenv":    true,
	"node_modules":  true,
	"build":         true,
	"dist":          true,
	"site-packages": true,
	".eggs":         true,
	".pytest_cache": true,
	".mypy_cache":   true,
	".tox":          true,
	".nox":          true,
	"vendor":        true,
	"third_party":   true,
}

// WalkOptions controls which files Walk returns.
type WalkOptions struct {
	// MaxFiles truncates the result; zero or negative means unlimited.
	MaxFiles     int
	IncludeTests bool
	// Extensions defaults to every registered language extension.
	Extensions []string
	// IsTestFile defaults to the registered language rules.
	IsTestFile func(filePath string) bool
}

var errWalkLimit = errors.New("file limit reached")

// Walk lists source files under root as repository-relative slash paths.
// Directories are visited depth-first with entries in lexicographic order, so
// truncation at MaxFiles always keeps the same prefix.
func Walk(root string, opts WalkOptions) ([]string, error) {
	extensions := opts.Extensions
	if len(extensions) == 0 {
		extensions = registry.SupportedExtensions()
	}
	w := &walker{
		opts:       opts,
		extensions: make(map[string]bool, len(extensions)),
		visited:    make(map[string]bool),
	}
	for _, ext := range extensions {
		w.extensions[ext] = true
	}
	if w.opts.IsTestFile == nil {
		w.opts.IsTestFile = registry.IsTestFile
	}

	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("failed to walk %s: %w", root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("failed to walk %s: not a directory", root)
	}

	if err := w.walkDir(root, ""); err != nil && !errors.Is(err, errWalkLimit) {
		return nil, err
	}
	return w.files, nil
}

type walker struct {
	opts       WalkOptions
	extensions map[string]bool
	// visited holds real paths of directories already walked; symlink loops stop here.
	visited map[string]bool
	files   []string
}

func (w *walker) walkDir(absDir, relDir string) error {
	realDir, err := filepath.EvalSymlinks(absDir)
	if err != nil {
		return nil
	}
	if w.visited[realDir] {
		return nil
	}
	w.visited[realDir] = true

	entries, err := os.ReadDir(absDir)
	if err != nil {
		if relDir == "" {
			return fmt.Errorf("failed to read %s: %w", absDir, err)
		}
		return nil
	}

	for _, entry := range entries {
		name := entry.Name()
		absPath := filepath.Join(absDir, name)
		relPath := path.Join(relDir, name)

		info, err := os.Stat(absPath)
		if err != nil {
			// dangling symlink
			continue
		}

		if info.IsDir() {
			if isExcludedDir(name) {
				continue
			}
			if err := w.walkDir(absPath, relPath); err != nil {
				return err
			}
			continue
		}

		if !info.Mode().IsRegular() || info.Size() == 0 {
			continue
		}
		if !w.extensions[filepath.Ext(name)] {
			continue
		}
		if !w.opts.IncludeTests && w.opts.IsTestFile(relPath) {
			continue
		}

		w.files = append(w.files, relPath)
		if w.opts.MaxFiles > 0 && len(w.files) >= w.opts.MaxFiles {
			return errWalkLimit
		}
	}
	return nil
}

func isExcludedDir(name string) bool {
	return excludedDirs[name] || strings.HasSuffix(name, ".egg-info")
}
