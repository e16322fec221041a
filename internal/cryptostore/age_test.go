package cryptostore

import (
	"testing"

	"filippo.io/age"
)

func TestEncryptDecryptRoundTrip(t *testing.T) {
	id, err := GenerateIdentity()
	if err != nil {
		t.Fatalf("GenerateIdentity: %v", err)
	}
	recipient := id.Recipient().String()

	ct, err := Encrypt([]byte("hunter2"), []string{recipient})
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}

	buf, err := Decrypt(ct, id)
	if err != nil {
		t.Fatalf("Decrypt: %v", err)
	}
	defer buf.Zero()
	if got := buf.String(); got != "hunter2" {
		t.Fatalf("got %q want %q", got, "hunter2")
	}
}

func TestDecryptNotARecipient(t *testing.T) {
	a, err := GenerateIdentity()
	if err != nil {
		t.Fatalf("GenerateIdentity a: %v", err)
	}
	b, err := GenerateIdentity()
	if err != nil {
		t.Fatalf("GenerateIdentity b: %v", err)
	}

	ct, err := Encrypt([]byte("secret"), []string{a.Recipient().String()})
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}

	_, err = Decrypt(ct, b)
	if err == nil {
		t.Fatalf("expected NotARecipientError")
	}
	if _, ok := err.(*NotARecipientError); !ok {
		t.Fatalf("got %T, want *NotARecipientError", err)
	}
}

func TestEncryptNoRecipients(t *testing.T) {
	_, err := Encrypt([]byte("x"), nil)
	if _, ok := err.(*NoRecipientsError); !ok {
		t.Fatalf("got %v, want NoRecipientsError", err)
	}
}

func TestEncryptMultiRecipient(t *testing.T) {
	a, err := GenerateIdentity()
	if err != nil {
		t.Fatalf("GenerateIdentity a: %v", err)
	}
	b, err := GenerateIdentity()
	if err != nil {
		t.Fatalf("GenerateIdentity b: %v", err)
	}

	ct, err := Encrypt([]byte("shared"), []string{a.Recipient().String(), b.Recipient().String()})
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}

	for _, id := range []*age.X25519Identity{a, b} {
		buf, err := Decrypt(ct, id)
		if err != nil {
			t.Fatalf("Decrypt: %v", err)
		}
		if buf.String() != "shared" {
			t.Fatalf("got %q", buf.String())
		}
		buf.Zero()
	}
}

func TestRecipientsMatch(t *testing.T) {
	a, err := GenerateIdentity()
	if err != nil {
		t.Fatalf("GenerateIdentity a: %v", err)
	}
	b, err := GenerateIdentity()
	if err != nil {
		t.Fatalf("GenerateIdentity b: %v", err)
	}

	ct, err := Encrypt([]byte("team-secret"), []string{a.Recipient().String()})
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}

	openers, err := RecipientsMatch(ct, map[string]*age.X25519Identity{
		"alice": a,
		"bob":   b,
	})
	if err != nil {
		t.Fatalf("RecipientsMatch: %v", err)
	}
	if len(openers) != 1 || openers[0] != "alice" {
		t.Fatalf("got %v, want [alice]", openers)
	}
}
