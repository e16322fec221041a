package secretsengine

import (
	"envkey/internal/cryptostore"
	"envkey/internal/document"
	"envkey/internal/policy"
)

// Get locates key in env and decrypts it with e.Identity. The returned
// Buffer must be zeroed by the caller.
func (e *Engine) Get(envName, key string) (*cryptostore.Buffer, error) {
	if err := e.require(policy.OpGetList, envName); err != nil {
		return nil, err
	}
	env, ok := e.Doc.Environment(envName)
	if !ok {
		return nil, &document.NotFoundError{Env: envName, Key: key}
	}
	entry, ok := env.Secrets[key]
	if !ok {
		return nil, &document.NotFoundError{Env: envName, Key: key}
	}
	return cryptostore.Decrypt(entry.Value, e.Identity.Key())
}

// List returns the decrypted values of every secret in env, as a map that
// callers must zero entry-by-entry when done (use ZeroAll).
func (e *Engine) List(envName string) (map[string]*cryptostore.Buffer, error) {
	if err := e.require(policy.OpGetList, envName); err != nil {
		return nil, err
	}
	env, ok := e.Doc.Environment(envName)
	if !ok {
		return nil, &document.NotFoundError{Env: envName}
	}
	out := make(map[string]*cryptostore.Buffer, len(env.Secrets))
	for name, entry := range env.Secrets {
		buf, err := cryptostore.Decrypt(entry.Value, e.Identity.Key())
		if err != nil {
			ZeroAll(out)
			return nil, err
		}
		out[name] = buf
	}
	return out, nil
}

// ZeroAll zeroes every buffer in a map produced by List or run/export
// decryption, safe to call once the caller is done with the plaintexts.
func ZeroAll(m map[string]*cryptostore.Buffer) {
	for _, buf := range m {
		buf.Zero()
	}
}
