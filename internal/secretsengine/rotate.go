package secretsengine

import (
	"crypto/rand"
	"encoding/base64"

	"envkey/internal/document"
	"envkey/internal/policy"
)

// GenerateValue samples n bytes from a cryptographically secure RNG and
// returns them base64-encoded, the alphabet rotate --generate uses by
// default.
func GenerateValue(n int) ([]byte, error) {
	raw := make([]byte, n)
	if _, err := rand.Read(raw); err != nil {
		return nil, err
	}
	encoded := base64.RawURLEncoding.EncodeToString(raw)
	return []byte(encoded), nil
}

// RotateValue replaces key's plaintext with value, re-encrypting to the
// environment's current recipient set. Equivalent to Set but named
// separately so callers (and audit logs) can distinguish a rotation from
// an ordinary set.
func (e *Engine) RotateValue(envName, key string, value []byte) error {
	return e.Set(envName, key, value, document.KindString)
}

// RotateAll re-encrypts every entry in every environment the actor can
// access with a freshly sampled file key, without changing any plaintext.
// It is the bulk equivalent of member add/rm's forced re-keying, run on
// demand as a hygiene operation.
func (e *Engine) RotateAll() error {
	if err := e.requireGlobal(policy.OpRotate); err != nil {
		return err
	}
	for _, envName := range e.Doc.EnvironmentNames() {
		if !policy.CanAccessEnvironment(e.Actor, envName, policy.OpRotate) {
			continue
		}
		env, _ := e.Doc.Environment(envName)
		recipients := policy.RecipientSet(e.Doc, envName)
		if len(recipients) == 0 {
			continue
		}
		if err := e.rekeyEnvironment(env, recipients); err != nil {
			return err
		}
	}
	return nil
}
