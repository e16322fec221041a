package cryptostore

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strings"

	"filippo.io/age"
)

// Encrypt seals plaintext to every recipient in recipientStrs using the age
// v1 scheme (fresh X25519 file key per call, ChaCha20-Poly1305 payload). The
// result is the standard base64 encoding of the age binary ciphertext, ready
// to store verbatim in a document's secret entry.
func Encrypt(plaintext []byte, recipientStrs []string) (string, error) {
	recipients := make([]age.Recipient, 0, len(recipientStrs))
	for _, r := range recipientStrs {
		r = strings.TrimSpace(r)
		if r == "" {
			continue
		}
		parsed, err := age.ParseX25519Recipient(r)
		if err != nil {
			return "", fmt.Errorf("invalid recipient %q: %w", r, err)
		}
		recipients = append(recipients, parsed)
	}
	if len(recipients) == 0 {
		return "", &NoRecipientsError{}
	}

	var buf bytes.Buffer
	w, err := age.Encrypt(&buf, recipients...)
	if err != nil {
		return "", err
	}
	if _, err := w.Write(plaintext); err != nil {
		_ = w.Close()
		return "", err
	}
	if err := w.Close(); err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

// Decrypt opens ciphertext (as produced by Encrypt) with identity, returning
// the plaintext wrapped in a zeroizing Buffer. Callers must call Zero on the
// returned buffer on every exit path.
func Decrypt(ciphertext string, identity *age.X25519Identity) (*Buffer, error) {
	if identity == nil {
		return nil, &IdentityMissingError{}
	}
	raw, err := base64.StdEncoding.DecodeString(strings.TrimSpace(ciphertext))
	if err != nil {
		return nil, &CorruptError{Err: err}
	}
	r, err := age.Decrypt(bytes.NewReader(raw), identity)
	if err != nil {
		if errors.Is(err, age.ErrIncorrectIdentity) {
			return nil, &NotARecipientError{}
		}
		return nil, &CorruptError{Err: err}
	}
	plain, err := io.ReadAll(r)
	if err != nil {
		return nil, &CorruptError{Err: err}
	}
	return NewBuffer(plain), nil
}

// RecipientsMatch returns the names (keys of identities) of every identity
// that can open ciphertext, used by Verify to detect drift between a stored
// ciphertext and the document's current recipient set.
//
// age does not expose stanza recipients directly; the only reliable way to
// learn "who can open this" is to attempt decryption with each candidate
// identity. RecipientsMatch implements that approach instead of parsing
// the wire format by hand.
func RecipientsMatch(ciphertext string, identities map[string]*age.X25519Identity) (openers []string, err error) {
	raw, err := base64.StdEncoding.DecodeString(strings.TrimSpace(ciphertext))
	if err != nil {
		return nil, &CorruptError{Err: err}
	}
	for name, id := range identities {
		if id == nil {
			continue
		}
		r, derr := age.Decrypt(bytes.NewReader(raw), id)
		if derr != nil {
			continue
		}
		_, _ = io.Copy(io.Discard, r)
		openers = append(openers, name)
	}
	return openers, nil
}

// GenerateIdentity creates a fresh age X25519 keypair.
func GenerateIdentity() (*age.X25519Identity, error) {
	return age.GenerateX25519Identity()
}

// ValidRecipient reports whether s parses as a bech32 age1... X25519
// recipient, without retaining any key material.
func ValidRecipient(s string) bool {
	_, err := age.ParseX25519Recipient(strings.TrimSpace(s))
	return err == nil
}
