// Package policy computes, for any (environment, operation) pair, which
// member identities must be ciphertext recipients and whether a given
// actor may perform the operation. It is a pure function over a Document;
// it holds no state of its own.
package policy

import "envkey/internal/document"

// Operation names one of the coarse operations the Secrets Engine exposes.
type Operation string

const (
	OpGetList      Operation = "get_list"
	OpSet          Operation = "set"
	OpRemove       Operation = "rm"
	OpRotate       Operation = "rotate"
	OpMemberManage Operation = "member_manage"
	OpInspect      Operation = "inspect" // verify/diff/log
)

// roleTable mirrors the can_perform table: for each role, the set of
// operations it may perform regardless of environment entitlement. get_list
// additionally requires environment entitlement, checked separately by
// CanAccessEnvironment.
var roleTable = map[document.Role]map[Operation]bool{
	document.RoleAdmin: {
		OpGetList: true, OpSet: true, OpRemove: true, OpRotate: true,
		OpMemberManage: true, OpInspect: true,
	},
	document.RoleMember: {
		OpGetList: true, OpSet: true, OpRemove: true, OpInspect: true,
	},
	document.RoleCI: {
		OpGetList: true,
	},
	document.RoleReadonly: {
		OpGetList: true, OpInspect: true,
	},
}

// CanPerform reports whether a member with actor's role may perform op at
// all, independent of any specific environment's entitlement.
func CanPerform(actor *document.Member, op Operation) bool {
	if actor == nil {
		return false
	}
	ops, ok := roleTable[actor.Role]
	if !ok {
		return false
	}
	return ops[op]
}

// CanAccessEnvironment reports whether actor may perform op against env
// specifically: admins can reach every environment; everyone else needs
// both the role-level permission and entitlement to env.
func CanAccessEnvironment(actor *document.Member, env string, op Operation) bool {
	if !CanPerform(actor, op) {
		return false
	}
	if actor.Role == document.RoleAdmin {
		return true
	}
	return actor.EntitledTo(env)
}

// RecipientSet returns the public keys of every member entitled to decrypt
// env: every admin (who can see all environments), plus every other member
// whose Environments entitlement contains env. Order is the document's team
// insertion order; callers that need a deterministic encryption order
// should treat the result as a set.
func RecipientSet(d *document.Document, env string) []string {
	var recipients []string
	seen := map[string]bool{}
	for _, m := range d.Team {
		if !memberSeesEnvironment(m, env) {
			continue
		}
		if seen[m.Pubkey] {
			continue
		}
		seen[m.Pubkey] = true
		recipients = append(recipients, m.Pubkey)
	}
	return recipients
}

func memberSeesEnvironment(m *document.Member, env string) bool {
	if m.Role == document.RoleAdmin {
		return true
	}
	return m.EntitledTo(env)
}

// RecipientMembers is RecipientSet but returns the member records rather
// than bare public keys, for callers (Verify, re-keying) that need names.
func RecipientMembers(d *document.Document, env string) []*document.Member {
	var members []*document.Member
	for _, m := range d.Team {
		if memberSeesEnvironment(m, env) {
			members = append(members, m)
		}
	}
	return members
}
