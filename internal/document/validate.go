package document

import (
	"regexp"

	"envkey/internal/cryptostore"
)

var (
	environmentNameRe = regexp.MustCompile(`^[A-Za-z0-9_.-]+$`)
	secretNameRe      = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)
)

// ValidEnvironmentName reports whether name matches the environment naming
// rule (case-sensitive, [A-Za-z0-9_.-]+).
func ValidEnvironmentName(name string) bool {
	return environmentNameRe.MatchString(name)
}

// ValidSecretName reports whether name matches the secret naming rule
// ([A-Za-z_][A-Za-z0-9_]*).
func ValidSecretName(name string) bool {
	return secretNameRe.MatchString(name)
}

// Validate checks invariants I1, I2, I4, I5, and I6. I3 (ciphertext
// recipients match the computed recipient set) cannot be checked without
// decrypting and is the job of Verify, not Validate.
func (d *Document) Validate() error {
	if d.Version != CurrentVersion {
		return &InvariantError{Which: "I1", Msg: "version must be 1"}
	}

	seenNames := map[string]bool{}
	seenKeys := map[string]bool{}
	for _, m := range d.Team {
		if seenNames[m.Name] {
			return &InvariantError{Which: "I2", Msg: "duplicate member name " + m.Name}
		}
		seenNames[m.Name] = true
		if !cryptostore.ValidRecipient(m.Pubkey) {
			return &InvariantError{Which: "I2", Msg: "member " + m.Name + " has an invalid pubkey"}
		}
		if seenKeys[m.Pubkey] {
			return &InvariantError{Which: "I2", Msg: "duplicate pubkey for member " + m.Name}
		}
		seenKeys[m.Pubkey] = true
		if !m.Role.Valid() {
			return &InvariantError{Which: "I2", Msg: "member " + m.Name + " has an invalid role"}
		}
	}

	for envName, env := range d.Environments {
		if !ValidEnvironmentName(envName) {
			return &InvariantError{Which: "schema", Msg: "invalid environment name " + envName}
		}
		for key, entry := range env.Secrets {
			if !ValidSecretName(key) {
				return &InvariantError{Which: "schema", Msg: "invalid secret name " + key + " in " + envName}
			}
			if _, ok := d.memberEverKnown(entry.SetBy); !ok {
				return &InvariantError{Which: "I4", Msg: "secret " + envName + "/" + key + " set_by unknown member " + entry.SetBy}
			}
		}
	}

	if len(d.Team) > 0 && d.AdminCount() == 0 {
		return &InvariantError{Which: "I5", Msg: "document has members but no admin"}
	}

	for _, m := range d.Team {
		if m.Role != RoleCI {
			continue
		}
		if len(m.Environments) == 0 {
			return &InvariantError{Which: "I6", Msg: "ci member " + m.Name + " must declare an explicit environments set"}
		}
		for _, e := range m.Environments {
			if e == DefaultEnvironment {
				return &InvariantError{Which: "I6", Msg: "ci member " + m.Name + " must not be granted default implicitly"}
			}
		}
	}

	return nil
}

// memberEverKnown reports whether name is a current team member. The
// document does not retain a separate history of removed members, so a
// set_by referring to someone since removed cannot be distinguished from a
// typo; Validate accepts it only if it is a current member or the
// document's team is empty (a freshly loaded, never-validated fixture).
func (d *Document) memberEverKnown(name string) (*Member, bool) {
	if m, ok := d.Member(name); ok {
		return m, true
	}
	return nil, len(d.Team) == 0
}
