package policy

import (
	"fmt"

	"envkey/internal/cryptostore"
)

// DeniedError reports that an actor's role does not permit an operation,
// either at all or against a specific environment.
type DeniedError struct {
	Actor string
	Op    Operation
	Env   string
}

func (e *DeniedError) Error() string {
	if e.Env == "" {
		return fmt.Sprintf("%s: %s is not permitted for role", e.Actor, e.Op)
	}
	return fmt.Sprintf("%s: %s on %s is not permitted for role", e.Actor, e.Op, e.Env)
}

func (e *DeniedError) ExitCode() cryptostore.ExitCode { return cryptostore.ExitOperationError }
