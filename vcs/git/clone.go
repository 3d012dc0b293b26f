package git

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const defaultCloneTimeout = 2 * time.Minute

// Checkout is a local working copy of a repository. Close releases it.
type Checkout struct {
	Path    string
	Name    string
	URL     string
	cleanup func() error
}

// Close removes temporary state created for the checkout.
func (c *Checkout) Close() error {
	if c == nil || c.cleanup == nil {
		return nil
	}
	cleanup := c.cleanup
	c.cleanup = nil
	return cleanup()
}

// Acquirer obtains a local working copy of a repository.
type Acquirer interface {
	Acquire(ctx context.Context, repoURL string) (*Checkout, error)
}

// Limits is the size ceiling for an acquired working copy. Zero values disable a check.
type Limits struct {
	MaxBytes int64
	MaxFiles int
}

// CloneAcquirer shallow-clones remote repositories into a temporary directory.
type CloneAcquirer struct {
	Policy  URLPolicy
	Limits  Limits
	Timeout time.Duration
	Branch  string
	// TempDir is the parent for clone directories; empty uses os.TempDir.
	TempDir string
}

// Acquire clones repoURL with depth 1 and enforces Limits on the result.
func (a *CloneAcquirer) Acquire(ctx context.Context, repoURL string) (*Checkout, error) {
	ref, err := NormalizeRepoURL(repoURL, a.Policy)
	if err != nil {
		return nil, err
	}

	dir, err := os.MkdirTemp(a.TempDir, "codegraph_")
	if err != nil {
		return nil, &AcquisitionError{Kind: KindCloneFailed, URL: repoURL, Err: fmt.Errorf("create temp dir: %w", err)}
	}
	cleanup := func() error { return os.RemoveAll(dir) }

	args := []string{"clone", "--depth", "1", "--no-tags", "--quiet"}
	if a.Branch != "" {
		if err := validateGitRef(a.Branch); err != nil {
			_ = cleanup()
			return nil, &AcquisitionError{Kind: KindInvalidURL, URL: repoURL, Err: err}
		}
		args = append(args, "--branch", a.Branch, "--single-branch")
	}
	args = append(args, "--", ref.CloneURL, dir)

	timeout := a.Timeout
	if timeout <= 0 {
		timeout = defaultCloneTimeout
	}
	if _, stderr, err := runGitCommand(ctx, "", timeout, args...); err != nil {
		_ = cleanup()
		return nil, classifyCloneError(repoURL, err, stderr)
	}

	if err := checkLimits(dir, a.Limits); err != nil {
		_ = cleanup()
		return nil, &AcquisitionError{Kind: KindTooLarge, URL: repoURL, Err: err}
	}

	return &Checkout{Path: dir, Name: ref.Name, URL: repoURL, cleanup: cleanup}, nil
}

func classifyCloneError(repoURL string, err error, stderr string) error {
	lower := strings.ToLower(stderr)
	if strings.Contains(lower, "not found") || strings.Contains(lower, "does not exist") ||
		strings.Contains(lower, "could not read username") {
		return &AcquisitionError{Kind: KindNotFound, URL: repoURL, Err: gitCommandError(err, stderr)}
	}
	return &AcquisitionError{Kind: KindCloneFailed, URL: repoURL, Err: gitCommandError(err, stderr)}
}

var errLimitExceeded = errors.New("limit exceeded")

// checkLimits walks dir (skipping .git) and fails once either ceiling is crossed.
func checkLimits(dir string, limits Limits) error {
	if limits.MaxBytes <= 0 && limits.MaxFiles <= 0 {
		return nil
	}

	var totalBytes int64
	var totalFiles int
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if d.Name() == ".git" {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		totalFiles++
		totalBytes += info.Size()
		if limits.MaxFiles > 0 && totalFiles > limits.MaxFiles {
			return fmt.Errorf("%w: more than %d files", errLimitExceeded, limits.MaxFiles)
		}
		if limits.MaxBytes > 0 && totalBytes > limits.MaxBytes {
			return fmt.Errorf("%w: more than %d MB", errLimitExceeded, limits.MaxBytes>>20)
		}
		return nil
	})
	return err
}

// LocalAcquirer serves directories that already exist on disk.
type LocalAcquirer struct{}

// Acquire returns a checkout for a local directory. Close is a no-op.
func (LocalAcquirer) Acquire(_ context.Context, path string) (*Checkout, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, &AcquisitionError{Kind: KindInvalidURL, URL: path, Err: err}
	}
	info, err := os.Stat(absPath)
	if err != nil {
		return nil, &AcquisitionError{Kind: KindNotFound, URL: path, Err: err}
	}
	if !info.IsDir() {
		return nil, &AcquisitionError{Kind: KindInvalidURL, URL: path, Err: fmt.Errorf("%s is not a directory", absPath)}
	}
	return &Checkout{Path: absPath, Name: filepath.Base(absPath), URL: path}, nil
}
