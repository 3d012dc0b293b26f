package git

import (
	"errors"
	"fmt"
)

// AcquisitionKind classifies why a repository could not be acquired.
type AcquisitionKind string

const (
	KindInvalidURL  AcquisitionKind = "invalid_url"
	KindNotFound    AcquisitionKind = "not_found"
	KindCloneFailed AcquisitionKind = "clone_failed"
	KindTooLarge    AcquisitionKind = "too_large"
)

// AcquisitionError reports a failure to obtain a local working copy.
// Acquisition errors are surfaced to the caller and never retried.
type AcquisitionError struct {
	Kind AcquisitionKind
	URL  string
	Err  error
}

func (e *AcquisitionError) Error() string {
	switch e.Kind {
	case KindInvalidURL:
		return fmt.Sprintf("invalid repository URL %q: %v", e.URL, e.Err)
	case KindNotFound:
		return fmt.Sprintf("repository not found: %s", e.URL)
	case KindTooLarge:
		return fmt.Sprintf("repository too large: %v", e.Err)
	default:
		return fmt.Sprintf("failed to clone repository: %v", e.Err)
	}
}

func (e *AcquisitionError) Unwrap() error {
	return e.Err
}

// IsInvalidURL reports whether err is an acquisition error caused by a malformed URL.
func IsInvalidURL(err error) bool {
	var acqErr *AcquisitionError
	return errors.As(err, &acqErr) && acqErr.Kind == KindInvalidURL
}
