package document

import (
	"testing"
	"time"

	"envkey/internal/cryptostore"
)

func realRecipient(t *testing.T) string {
	t.Helper()
	id, err := cryptostore.GenerateIdentity()
	if err != nil {
		t.Fatalf("GenerateIdentity: %v", err)
	}
	return id.Recipient().String()
}

func TestMarshalParseRoundTrip(t *testing.T) {
	d := New()
	d.AddMember(&Member{
		Name:   "alice",
		Pubkey: realRecipient(t),
		Role:   RoleAdmin,
		Added:  time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC),
	})
	env := d.EnsureEnvironment(DefaultEnvironment)
	env.Secrets["DATABASE_URL"] = &SecretEntry{
		Name:     "DATABASE_URL",
		Value:    "ZmFrZS1jaXBoZXJ0ZXh0",
		SetBy:    "alice",
		Modified: time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC),
		Kind:     KindString,
	}

	out, err := d.Marshal()
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	parsed, err := Parse(out)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if parsed.Version != CurrentVersion {
		t.Fatalf("got version %d, want %d", parsed.Version, CurrentVersion)
	}
	m, ok := parsed.Member("alice")
	if !ok {
		t.Fatalf("expected member alice")
	}
	if m.Pubkey != d.Team[0].Pubkey || m.Role != RoleAdmin {
		t.Fatalf("member round-trip mismatch: %+v", m)
	}
	env2, ok := parsed.Environment(DefaultEnvironment)
	if !ok {
		t.Fatalf("expected default environment")
	}
	entry, ok := env2.Secrets["DATABASE_URL"]
	if !ok {
		t.Fatalf("expected DATABASE_URL entry")
	}
	if entry.Value != "ZmFrZS1jaXBoZXJ0ZXh0" || entry.SetBy != "alice" {
		t.Fatalf("entry round-trip mismatch: %+v", entry)
	}
}

func TestMarshalIdempotent(t *testing.T) {
	d := New()
	d.AddMember(&Member{Name: "alice", Pubkey: realRecipient(t), Role: RoleAdmin, Added: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)})
	d.EnsureEnvironment(DefaultEnvironment)

	first, err := d.Marshal()
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	parsed, err := Parse(first)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	second, err := parsed.Marshal()
	if err != nil {
		t.Fatalf("second Marshal: %v", err)
	}
	if string(first) != string(second) {
		t.Fatalf("re-marshal without mutation changed output:\n--- first ---\n%s\n--- second ---\n%s", first, second)
	}
}

func TestParseEnvironmentOrdering(t *testing.T) {
	d := New()
	d.AddMember(&Member{Name: "alice", Pubkey: realRecipient(t), Role: RoleAdmin, Added: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)})
	d.EnsureEnvironment("staging")
	d.EnsureEnvironment(DefaultEnvironment)
	d.EnsureEnvironment("production")

	raw, err := d.Marshal()
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	parsed, err := Parse(raw)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	names := parsed.EnvironmentNames()
	want := []string{"default", "production", "staging"}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("got %v, want %v", names, want)
		}
	}
}
