package git

import (
	"context"
	"fmt"
	"strings"
)

// IsRepository reports whether path is inside a git work tree.
func IsRepository(ctx context.Context, path string) bool {
	_, _, err := runGitCommand(ctx, path, 0, "rev-parse", "--git-dir")
	return err == nil
}

func validateGitRef(ref string) error {
	if ref == "" {
		return fmt.Errorf("git reference cannot be empty")
	}
	if strings.HasPrefix(ref, "-") {
		return fmt.Errorf("git reference cannot start with '-': %q", ref)
	}
	if strings.ContainsAny(ref, "\x00\n\r\t ") {
		return fmt.Errorf("git reference contains whitespace or NUL: %q", ref)
	}
	return nil
}
