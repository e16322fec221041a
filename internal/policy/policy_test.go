package policy

import (
	"testing"
	"time"

	"envkey/internal/document"
)

func buildDoc(t *testing.T) *document.Document {
	t.Helper()
	d := document.New()
	d.AddMember(&document.Member{Name: "admin", Pubkey: "age1admin", Role: document.RoleAdmin, Added: time.Now()})
	d.AddMember(&document.Member{Name: "bob", Pubkey: "age1bob", Role: document.RoleMember, Added: time.Now()})
	d.AddMember(&document.Member{Name: "ci-prod", Pubkey: "age1ci", Role: document.RoleCI, Added: time.Now(), Environments: []string{"production"}})
	d.AddMember(&document.Member{Name: "ro", Pubkey: "age1ro", Role: document.RoleReadonly, Added: time.Now(), Environments: []string{"production"}})
	return d
}

func TestRecipientSetDefaultExcludesCI(t *testing.T) {
	d := buildDoc(t)
	recipients := RecipientSet(d, document.DefaultEnvironment)
	want := map[string]bool{"age1admin": true, "age1bob": true}
	if len(recipients) != len(want) {
		t.Fatalf("got %v, want keys of %v", recipients, want)
	}
	for _, r := range recipients {
		if !want[r] {
			t.Fatalf("unexpected recipient %s in default", r)
		}
	}
}

func TestRecipientSetProductionIncludesGrantedMembers(t *testing.T) {
	d := buildDoc(t)
	recipients := RecipientSet(d, "production")
	want := map[string]bool{"age1admin": true, "age1ci": true, "age1ro": true}
	if len(recipients) != len(want) {
		t.Fatalf("got %v, want keys of %v", recipients, want)
	}
	for _, r := range recipients {
		if !want[r] {
			t.Fatalf("unexpected recipient %s in production", r)
		}
	}
}

func TestCanPerformRoleTable(t *testing.T) {
	cases := []struct {
		role document.Role
		op   Operation
		want bool
	}{
		{document.RoleAdmin, OpSet, true},
		{document.RoleAdmin, OpMemberManage, true},
		{document.RoleMember, OpSet, true},
		{document.RoleMember, OpMemberManage, false},
		{document.RoleCI, OpSet, false},
		{document.RoleCI, OpGetList, true},
		{document.RoleReadonly, OpSet, false},
		{document.RoleReadonly, OpInspect, true},
	}
	for _, c := range cases {
		actor := &document.Member{Name: "x", Role: c.role}
		if got := CanPerform(actor, c.op); got != c.want {
			t.Fatalf("CanPerform(%s, %s) = %v, want %v", c.role, c.op, got, c.want)
		}
	}
}

func TestCanAccessEnvironmentRequiresEntitlement(t *testing.T) {
	ci := &document.Member{Name: "ci-prod", Role: document.RoleCI, Environments: []string{"production"}}
	if CanAccessEnvironment(ci, document.DefaultEnvironment, OpGetList) {
		t.Fatalf("ci should not access default without entitlement")
	}
	if !CanAccessEnvironment(ci, "production", OpGetList) {
		t.Fatalf("ci should access production with entitlement")
	}

	admin := &document.Member{Name: "admin", Role: document.RoleAdmin}
	if !CanAccessEnvironment(admin, "anything-unlisted", OpSet) {
		t.Fatalf("admin should implicitly access every environment")
	}
}
