package secretsengine

import (
	"envkey/internal/cryptostore"
	"envkey/internal/document"
	"envkey/internal/policy"
)

// Set upserts key in env to plaintext, encrypted to the environment's
// current recipient set. Callers must zero plaintext themselves once Set
// returns; Set does not retain it.
func (e *Engine) Set(envName, key string, plaintext []byte, kind document.SecretKind) error {
	if !document.ValidSecretName(key) {
		return &document.InvariantError{Which: "schema", Msg: "invalid secret name " + key}
	}
	if err := e.require(policy.OpSet, envName); err != nil {
		return err
	}
	recipients := policy.RecipientSet(e.Doc, envName)
	if len(recipients) == 0 {
		return &cryptostore.NoRecipientsError{Env: envName}
	}
	ct, err := cryptostore.Encrypt(plaintext, recipients)
	if err != nil {
		return err
	}

	env := e.Doc.EnsureEnvironment(envName)
	entry, ok := env.Secrets[key]
	if !ok {
		entry = &document.SecretEntry{Name: key}
		env.Secrets[key] = entry
	}
	entry.Value = ct
	entry.SetBy = e.Actor.Name
	entry.Modified = now()
	entry.Kind = kind
	return nil
}
