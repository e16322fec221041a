package secretsengine

import (
	"envkey/internal/document"
	"envkey/internal/policy"
)

// Remove deletes key from env. No cryptographic work is performed. If the
// removal would leave env with no secrets, Remove reports
// EnvironmentDestroyedError instead of mutating the document unless
// confirmed is true, in which case the now-empty environment (other than
// default, which is never pruned) is also removed.
func (e *Engine) Remove(envName, key string, confirmed bool) error {
	if err := e.require(policy.OpRemove, envName); err != nil {
		return err
	}
	env, ok := e.Doc.Environment(envName)
	if !ok {
		return &document.NotFoundError{Env: envName, Key: key}
	}
	if _, ok := env.Secrets[key]; !ok {
		return &document.NotFoundError{Env: envName, Key: key}
	}
	if len(env.Secrets) == 1 && envName != document.DefaultEnvironment && !confirmed {
		return &EnvironmentDestroyedError{Env: envName}
	}
	delete(env.Secrets, key)
	e.Doc.PruneEnvironmentIfEmpty(envName)
	return nil
}
