package secretsengine

import (
	"fmt"

	"envkey/internal/cryptostore"
)

// RecipientDrift reports that a stored ciphertext's openers do not match
// the environment's current recipient_set, the one finding Verify produces.
type RecipientDrift struct {
	Env      string
	Key      string
	Expected []string
	Actual   []string
}

func (e *RecipientDrift) Error() string {
	return fmt.Sprintf("recipient drift in %s/%s: expected %v, got %v", e.Env, e.Key, e.Expected, e.Actual)
}

func (e *RecipientDrift) ExitCode() cryptostore.ExitCode { return cryptostore.ExitOperationError }

// EnvironmentDestroyedError is returned by operations that would have left
// an environment with zero entries; callers must obtain confirmation before
// retrying with Confirmed set.
type EnvironmentDestroyedError struct {
	Env string
}

func (e *EnvironmentDestroyedError) Error() string {
	return fmt.Sprintf("removing this entry empties environment %q; confirm to destroy it", e.Env)
}

func (e *EnvironmentDestroyedError) ExitCode() cryptostore.ExitCode { return cryptostore.ExitOperationError }
