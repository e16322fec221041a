// Package secretsengine is the central orchestrator: it combines the
// Document Model, the Access Policy, and the Crypto Engine into the coarse
// transactional operations the command surface calls (set, get, rm, rotate,
// member management). Each exported method is a transaction over the
// document that either succeeds atomically or leaves the prior document
// untouched.
package secretsengine

import (
	"time"

	"envkey/internal/cryptostore"
	"envkey/internal/document"
	"envkey/internal/policy"
)

// Engine binds a loaded document to the actor performing operations on it
// and the identity used to decrypt entries the actor is entitled to during
// re-keying. Engine holds no state beyond these three references; every
// method mutates d in place and leaves the caller responsible for Save.
type Engine struct {
	Doc      *document.Document
	Actor    *document.Member
	Identity *cryptostore.Identity
}

// New returns an Engine over d acting as actor, using identity for any
// decrypt step an operation requires.
func New(d *document.Document, actor *document.Member, identity *cryptostore.Identity) *Engine {
	return &Engine{Doc: d, Actor: actor, Identity: identity}
}

func (e *Engine) require(op policy.Operation, env string) error {
	if !policy.CanAccessEnvironment(e.Actor, env, op) {
		return &policy.DeniedError{Actor: e.Actor.Name, Op: op, Env: env}
	}
	return nil
}

// Authorize exposes the environment-scoped policy check to callers outside
// this package (the CLI's ls and run commands, which need the check
// without going through Get/Set/List).
func (e *Engine) Authorize(op policy.Operation, env string) error {
	return e.require(op, env)
}

func (e *Engine) requireGlobal(op policy.Operation) error {
	if !policy.CanPerform(e.Actor, op) {
		return &policy.DeniedError{Actor: e.Actor.Name, Op: op}
	}
	return nil
}

// rekeyEnvironment decrypts every entry in env with e.Identity and
// re-encrypts it to recipients, in place. It is the shared core of every
// operation that changes an environment's recipient set: member add/rm,
// grant/revoke, update, and rotate --all.
func (e *Engine) rekeyEnvironment(env *document.Environment, recipients []string) error {
	type plain struct {
		name  string
		entry *document.SecretEntry
		buf   *cryptostore.Buffer
	}
	decrypted := make([]plain, 0, len(env.Secrets))
	defer func() {
		for _, p := range decrypted {
			p.buf.Zero()
		}
	}()

	for name, entry := range env.Secrets {
		buf, err := cryptostore.Decrypt(entry.Value, e.Identity.Key())
		if err != nil {
			return err
		}
		decrypted = append(decrypted, plain{name: name, entry: entry, buf: buf})
	}

	for _, p := range decrypted {
		ct, err := cryptostore.Encrypt(p.buf.Bytes(), recipients)
		if err != nil {
			return err
		}
		p.entry.Value = ct
	}
	return nil
}

func now() time.Time {
	return time.Now().UTC()
}
