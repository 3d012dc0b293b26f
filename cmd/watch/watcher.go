package watch

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/LegacyCodeHQ/codegraph/depgraph/registry"
	"github.com/LegacyCodeHQ/codegraph/vcs/git"
)

const debounceInterval = 300 * time.Millisecond
const gitStatePollInterval = 500 * time.Millisecond

var skippedDirs = map[string]bool{
	".git":          true,
	"node_modules":  true,
	"__pycache__":   true,
	".venv":         true,
	"venv":          true,
	".tox":          true,
	".mypy_cache":   true,
	".pytest_cache": true,
	"build":         true,
	"dist":          true,
	".idea":         true,
	".vscode":       true,
}

type publisher func(ctx context.Context)

// watchAndRebuild republishes the graph after relevant file changes settle
// and whenever the git HEAD or index changes. It returns when ctx is done.
func watchAndRebuild(ctx context.Context, repoPath string, publish publisher, logger *slog.Logger) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer watcher.Close()

	if err := addWatchDirs(watcher, repoPath); err != nil {
		return fmt.Errorf("failed to watch directories: %w", err)
	}

	var debounceTimer *time.Timer
	defer func() {
		if debounceTimer != nil {
			debounceTimer.Stop()
		}
	}()

	var gitStateTick <-chan time.Time
	var lastGitStateSig string
	if git.IsRepository(ctx, repoPath) {
		lastGitStateSig, err = git.GetRepositoryStateSignature(ctx, repoPath)
		if err != nil {
			logger.Warn("Git state read failed", "error", err)
		}
		ticker := time.NewTicker(gitStatePollInterval)
		defer ticker.Stop()
		gitStateTick = ticker.C
	}

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}

			if event.Has(fsnotify.Create) {
				addIfDirectory(watcher, event.Name)
			}
			if !isRelevantChange(event) {
				continue
			}
			logger.Debug("Source changed", "path", event.Name, "op", event.Op.String())

			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			debounceTimer = time.AfterFunc(debounceInterval, func() {
				publish(ctx)
			})

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("Watcher error", "error", err)

		case <-gitStateTick:
			stateSig, err := git.GetRepositoryStateSignature(ctx, repoPath)
			if err != nil {
				logger.Warn("Git state read failed", "error", err)
				continue
			}
			if stateSig == lastGitStateSig {
				continue
			}

			lastGitStateSig = stateSig
			publish(ctx)
		}
	}
}

func isRelevantChange(event fsnotify.Event) bool {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
		!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
		return false
	}
	_, ok := registry.ModuleForExtension(filepath.Ext(event.Name))
	return ok
}

func addWatchDirs(watcher *fsnotify.Watcher, root string) error {
	return addWatchDirsWithAdder(root, watcher.Add)
}

// addWatchDirsWithAdder registers root and its subdirectories with add,
// skipping tool directories and paths that vanish mid-walk.
func addWatchDirsWithAdder(root string, add func(string) error) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil
			}
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && skippedDirs[d.Name()] {
			return filepath.SkipDir
		}
		if err := add(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return err
		}
		return nil
	})
}

func addIfDirectory(watcher *fsnotify.Watcher, path string) {
	info, err := os.Stat(path)
	if err != nil {
		return
	}
	if info.IsDir() {
		_ = addWatchDirs(watcher, path)
	}
}
