package secretsengine

import (
	"fmt"

	"envkey/internal/cryptostore"
	"envkey/internal/document"
	"envkey/internal/policy"
)

// rekeyMemberEnvironments re-encrypts every environment in envs (typically
// the set a membership change affects) to its freshly recomputed recipient
// set. Environments with zero entries are skipped; an environment whose
// recipient set is empty after the change is not an error here, it is also
// skipped and keeps its existing ciphertexts unchanged.
func (e *Engine) rekeyMemberEnvironments(envs []string) error {
	for _, envName := range envs {
		env, ok := e.Doc.Environment(envName)
		if !ok || len(env.Secrets) == 0 {
			continue
		}
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

// AddMember appends a new team member and re-encrypts every environment
// the new member is entitled to, so they immediately become a recipient.
func (e *Engine) AddMember(m *document.Member) error {
	if err := e.requireGlobal(policy.OpMemberManage); err != nil {
		return err
	}
	if _, exists := e.Doc.Member(m.Name); exists {
		return &document.NameInUseError{Kind: "member name", Name: m.Name}
	}
	if !cryptostore.ValidRecipient(m.Pubkey) {
		return &document.InvariantError{Which: "I2", Msg: "invalid recipient pubkey for " + m.Name}
	}
	for _, other := range e.Doc.Team {
		if other.Pubkey == m.Pubkey {
			return &document.NameInUseError{Kind: "pubkey", Name: m.Pubkey}
		}
	}
	if !m.Role.Valid() {
		return &document.InvariantError{Which: "I2", Msg: "invalid role for " + m.Name}
	}
	if m.Role == document.RoleCI && len(m.Environments) == 0 {
		return &document.InvariantError{Which: "I6", Msg: "ci member " + m.Name + " must declare an explicit environments set"}
	}
	if m.Role == document.RoleCI {
		for _, env := range m.Environments {
			if env == document.DefaultEnvironment {
				return &document.InvariantError{Which: "I6", Msg: "ci member " + m.Name + " must not be granted default implicitly"}
			}
		}
	}
	m.Added = now()
	e.Doc.AddMember(m)

	envs := m.Environments
	if m.Role == document.RoleAdmin {
		envs = e.Doc.EnvironmentNames()
	} else if envs == nil {
		envs = []string{document.DefaultEnvironment}
	}
	return e.rekeyMemberEnvironments(envs)
}

// RemoveMember deletes name from the team and re-encrypts every
// environment they could see, so their identity can no longer decrypt any
// entry. It does not rotate plaintext values: the caller is responsible
// for surfacing the follow-up warning that prior plaintext remains
// compromised and recommending rotate --all with new values.
func (e *Engine) RemoveMember(name string) error {
	if err := e.requireGlobal(policy.OpMemberManage); err != nil {
		return err
	}
	target, ok := e.Doc.Member(name)
	if !ok {
		return &document.NotFoundError{Env: "", Key: name}
	}
	if target.Role == document.RoleAdmin && e.Doc.AdminCount() <= 1 {
		return &document.LastAdminError{Name: name}
	}

	envs := e.Doc.EnvironmentNames()
	if target.Role != document.RoleAdmin {
		envs = target.Environments
		if envs == nil {
			envs = []string{document.DefaultEnvironment}
		}
	}

	e.Doc.RemoveMember(name)
	return e.rekeyMemberEnvironments(envs)
}

// GrantEnvironment adds env to name's entitlement set and re-encrypts env
// so the member becomes a recipient.
func (e *Engine) GrantEnvironment(name, envName string) error {
	if err := e.requireGlobal(policy.OpMemberManage); err != nil {
		return err
	}
	m, ok := e.Doc.Member(name)
	if !ok {
		return &document.NotFoundError{Key: name}
	}
	if m.Role == document.RoleCI && envName == document.DefaultEnvironment {
		return &document.InvariantError{Which: "I6", Msg: "ci member " + m.Name + " must not be granted default implicitly"}
	}
	if m.Role == document.RoleCI && len(m.Environments) == 0 {
		return &document.InvariantError{Which: "I6", Msg: "ci member " + m.Name + " must declare an explicit environments set"}
	}
	current := m.Environments
	if current == nil && m.Role != document.RoleAdmin {
		current = []string{document.DefaultEnvironment}
	}
	for _, existing := range current {
		if existing == envName {
			return nil
		}
	}
	m.Environments = append(current, envName)
	return e.rekeyMemberEnvironments([]string{envName})
}

// RevokeEnvironment removes env from name's entitlement set and
// re-encrypts env with a fresh file key so the member can no longer
// decrypt it.
func (e *Engine) RevokeEnvironment(name, envName string) error {
	if err := e.requireGlobal(policy.OpMemberManage); err != nil {
		return err
	}
	m, ok := e.Doc.Member(name)
	if !ok {
		return &document.NotFoundError{Key: name}
	}
	if m.Role == document.RoleAdmin {
		return fmt.Errorf("cannot revoke environment access from an admin; change role first")
	}
	current := m.Environments
	if current == nil {
		current = []string{document.DefaultEnvironment}
	}
	kept := make([]string, 0, len(current))
	for _, existing := range current {
		if existing != envName {
			kept = append(kept, existing)
		}
	}
	m.Environments = kept
	return e.rekeyMemberEnvironments([]string{envName})
}

// UpdateMemberKey replaces name's public key and re-encrypts every
// environment they have access to, so ciphertexts address the new key.
func (e *Engine) UpdateMemberKey(name, newPubkey string) error {
	if err := e.requireGlobal(policy.OpMemberManage); err != nil {
		return err
	}
	m, ok := e.Doc.Member(name)
	if !ok {
		return &document.NotFoundError{Key: name}
	}
	if !cryptostore.ValidRecipient(newPubkey) {
		return &document.InvariantError{Which: "I2", Msg: "invalid recipient pubkey for " + name}
	}
	m.Pubkey = newPubkey

	envs := m.Environments
	if m.Role == document.RoleAdmin {
		envs = e.Doc.EnvironmentNames()
	} else if envs == nil {
		envs = []string{document.DefaultEnvironment}
	}
	return e.rekeyMemberEnvironments(envs)
}
