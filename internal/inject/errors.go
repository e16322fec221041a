package inject

import (
	"fmt"

	"envkey/internal/cryptostore"
)

// ChildSpawnError reports that the child process could not be found,
// started, or exec'd.
type ChildSpawnError struct {
	Command string
	Err     error
}

func (e *ChildSpawnError) Error() string {
	return fmt.Sprintf("spawning %q: %v", e.Command, e.Err)
}

func (e *ChildSpawnError) Unwrap() error { return e.Err }

func (e *ChildSpawnError) ExitCode() cryptostore.ExitCode { return cryptostore.ExitOperationError }
