package secretsengine

import (
	"encoding/base64"
	"path/filepath"
	"testing"
	"time"

	"envkey/internal/cryptostore"
	"envkey/internal/document"
)

// newTestIdentity creates a fresh on-disk identity and loads it back as a
// *cryptostore.Identity, since Identity's private key field is unexported
// and only reachable through Store.
func newTestIdentity(t *testing.T) *cryptostore.Identity {
	t.Helper()
	dir := t.TempDir()
	s := cryptostore.Store{Path: filepath.Join(dir, "identity.age")}
	ident, err := s.Create(false)
	if err != nil {
		t.Fatalf("Store.Create: %v", err)
	}
	return ident
}

// newAdminEngine builds a fresh document with a single admin member and
// returns an Engine acting as that admin, plus the admin's Identity for
// decrypting in assertions.
func newAdminEngine(t *testing.T) (*Engine, *cryptostore.Identity) {
	t.Helper()
	ident := newTestIdentity(t)
	d := document.New()
	admin := &document.Member{Name: "admin", Pubkey: ident.Recipient(), Role: document.RoleAdmin, Added: time.Now()}
	d.AddMember(admin)
	d.EnsureEnvironment(document.DefaultEnvironment)
	return New(d, admin, ident), ident
}

func TestSetGetRoundTrip(t *testing.T) {
	e, _ := newAdminEngine(t)
	if err := e.Set(document.DefaultEnvironment, "API_KEY", []byte("k-123"), document.KindString); err != nil {
		t.Fatalf("Set: %v", err)
	}
	buf, err := e.Get(document.DefaultEnvironment, "API_KEY")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	defer buf.Zero()
	if buf.String() != "k-123" {
		t.Fatalf("got %q", buf.String())
	}
}

func TestGetNotFound(t *testing.T) {
	e, _ := newAdminEngine(t)
	if _, err := e.Get(document.DefaultEnvironment, "MISSING"); err == nil {
		t.Fatalf("expected NotFoundError")
	}
}

func TestRemoveDeletesEntry(t *testing.T) {
	e, _ := newAdminEngine(t)
	if err := e.Set(document.DefaultEnvironment, "FOO", []byte("bar"), document.KindString); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := e.Remove(document.DefaultEnvironment, "FOO", false); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if _, err := e.Get(document.DefaultEnvironment, "FOO"); err == nil {
		t.Fatalf("expected NotFound after Remove")
	}
}

func TestRemoveLastEntryInNonDefaultRequiresConfirm(t *testing.T) {
	e, _ := newAdminEngine(t)
	if err := e.Set("staging", "FOO", []byte("bar"), document.KindString); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := e.Remove("staging", "FOO", false); err == nil {
		t.Fatalf("expected EnvironmentDestroyedError")
	}
	if err := e.Remove("staging", "FOO", true); err != nil {
		t.Fatalf("Remove confirmed: %v", err)
	}
	if _, ok := e.Doc.Environment("staging"); ok {
		t.Fatalf("expected staging pruned after confirmed removal")
	}
}

func TestMemberAddGrantsAccess(t *testing.T) {
	e, _ := newAdminEngine(t)
	if err := e.Set(document.DefaultEnvironment, "API_KEY", []byte("k-123"), document.KindString); err != nil {
		t.Fatalf("Set: %v", err)
	}

	bobIdent := newTestIdentity(t)
	bob := &document.Member{Name: "bob", Pubkey: bobIdent.Recipient(), Role: document.RoleMember, Added: time.Now()}
	if err := e.AddMember(bob); err != nil {
		t.Fatalf("AddMember: %v", err)
	}

	bobEngine := New(e.Doc, bob, bobIdent)
	buf, err := bobEngine.Get(document.DefaultEnvironment, "API_KEY")
	if err != nil {
		t.Fatalf("bob Get: %v", err)
	}
	defer buf.Zero()
	if buf.String() != "k-123" {
		t.Fatalf("got %q", buf.String())
	}

	adminBuf, err := e.Get(document.DefaultEnvironment, "API_KEY")
	if err != nil {
		t.Fatalf("admin Get after add: %v", err)
	}
	defer adminBuf.Zero()
	if adminBuf.String() != "k-123" {
		t.Fatalf("admin lost access to plaintext after re-keying: got %q", adminBuf.String())
	}
}

func TestMemberRemoveRevokesAccess(t *testing.T) {
	e, _ := newAdminEngine(t)
	if err := e.Set(document.DefaultEnvironment, "API_KEY", []byte("k-123"), document.KindString); err != nil {
		t.Fatalf("Set: %v", err)
	}
	bobIdent := newTestIdentity(t)
	bob := &document.Member{Name: "bob", Pubkey: bobIdent.Recipient(), Role: document.RoleMember, Added: time.Now()}
	if err := e.AddMember(bob); err != nil {
		t.Fatalf("AddMember: %v", err)
	}
	if err := e.RemoveMember("bob"); err != nil {
		t.Fatalf("RemoveMember: %v", err)
	}

	entry := e.Doc.Environments[document.DefaultEnvironment].Secrets["API_KEY"]
	if _, err := cryptostore.Decrypt(entry.Value, bobIdent.Key()); err == nil {
		t.Fatalf("expected bob to lose decrypt access after removal")
	}
}

func TestMemberRemoveRefusesLastAdmin(t *testing.T) {
	e, _ := newAdminEngine(t)
	if err := e.RemoveMember("admin"); err == nil {
		t.Fatalf("expected LastAdminError")
	}
}

func TestRotateAllChangesCiphertextNotPlaintext(t *testing.T) {
	e, _ := newAdminEngine(t)
	if err := e.Set(document.DefaultEnvironment, "FOO", []byte("bar"), document.KindString); err != nil {
		t.Fatalf("Set: %v", err)
	}
	before := e.Doc.Environments[document.DefaultEnvironment].Secrets["FOO"].Value
	if err := e.RotateAll(); err != nil {
		t.Fatalf("RotateAll: %v", err)
	}
	after := e.Doc.Environments[document.DefaultEnvironment].Secrets["FOO"].Value
	if before == after {
		t.Fatalf("expected ciphertext to change after RotateAll")
	}
	buf, err := e.Get(document.DefaultEnvironment, "FOO")
	if err != nil {
		t.Fatalf("Get after rotate: %v", err)
	}
	defer buf.Zero()
	if buf.String() != "bar" {
		t.Fatalf("plaintext changed after RotateAll: got %q", buf.String())
	}
}

func TestAddMemberCIRequiresExplicitEnvironments(t *testing.T) {
	e, _ := newAdminEngine(t)
	botIdent := newTestIdentity(t)
	bot := &document.Member{Name: "bot", Pubkey: botIdent.Recipient(), Role: document.RoleCI, Added: time.Now()}
	if err := e.AddMember(bot); err == nil {
		t.Fatalf("expected I6 error for ci member with no environments")
	}
	if _, ok := e.Doc.Member("bot"); ok {
		t.Fatalf("rejected ci member must not be added to the roster")
	}
}

func TestAddMemberCIRejectsDefaultEnvironment(t *testing.T) {
	e, _ := newAdminEngine(t)
	botIdent := newTestIdentity(t)
	bot := &document.Member{Name: "bot", Pubkey: botIdent.Recipient(), Role: document.RoleCI, Environments: []string{document.DefaultEnvironment}, Added: time.Now()}
	if err := e.AddMember(bot); err == nil {
		t.Fatalf("expected I6 error for ci member granted default")
	}
}

func TestAddMemberCIWithExplicitEnvironmentSucceeds(t *testing.T) {
	e, _ := newAdminEngine(t)
	botIdent := newTestIdentity(t)
	bot := &document.Member{Name: "bot", Pubkey: botIdent.Recipient(), Role: document.RoleCI, Environments: []string{"staging"}, Added: time.Now()}
	if err := e.AddMember(bot); err != nil {
		t.Fatalf("AddMember: %v", err)
	}
	if _, ok := e.Doc.Member("bot"); !ok {
		t.Fatalf("expected ci member to be added")
	}
}

func TestGrantEnvironmentRejectsDefaultForCI(t *testing.T) {
	e, _ := newAdminEngine(t)
	botIdent := newTestIdentity(t)
	bot := &document.Member{Name: "bot", Pubkey: botIdent.Recipient(), Role: document.RoleCI, Environments: []string{"staging"}, Added: time.Now()}
	if err := e.AddMember(bot); err != nil {
		t.Fatalf("AddMember: %v", err)
	}
	if err := e.GrantEnvironment("bot", document.DefaultEnvironment); err == nil {
		t.Fatalf("expected I6 error granting default to a ci member")
	}
}

func TestGenerateValueLength(t *testing.T) {
	v, err := GenerateValue(32)
	if err != nil {
		t.Fatalf("GenerateValue: %v", err)
	}
	if len(v) == 0 {
		t.Fatalf("expected non-empty generated value")
	}
	raw, err := base64.RawURLEncoding.DecodeString(string(v))
	if err != nil {
		t.Fatalf("generated value is not base64url: %v", err)
	}
	if len(raw) != 32 {
		t.Fatalf("got %d random bytes, want 32", len(raw))
	}
}
