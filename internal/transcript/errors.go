package transcript

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned by Edit and Delete for an unknown turn id.
	ErrNotFound = errors.New("transcript: turn not found")
	// ErrNoProject is returned when the store has not been switched to a project yet.
	ErrNoProject = errors.New("transcript: no active project")
	// ErrInvalidProjectKey rejects keys that cannot name a single storage resource.
	ErrInvalidProjectKey = errors.New("transcript: invalid project key")
)

// StorageError reports durable I/O failures and malformed records.
// It is recoverable: callers may treat the transcript as empty or report it.
type StorageError struct {
	Op      string
	Project string
	Err     error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("transcript: %s %q: %v", e.Op, e.Project, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// IsStorageError reports whether err carries a StorageError.
func IsStorageError(err error) bool {
	var se *StorageError
	return errors.As(err, &se)
}
