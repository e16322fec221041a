package secretsengine

import (
	"sort"

	"filippo.io/age"

	"envkey/internal/cryptostore"
	"envkey/internal/document"
	"envkey/internal/policy"
)

// Verify checks I3 — that every stored ciphertext's recipients match the
// document's current recipient_set — against whichever identities the
// caller can supply, keyed by member name. age exposes no way to list a
// ciphertext's recipients without attempting to open it (see
// cryptostore.RecipientsMatch), so Verify can only confirm membership for
// identities present in the map; a solo admin running Verify with only
// their own identity confirms they remain a recipient everywhere they
// should, which is the common case this operation is run for.
func Verify(d *document.Document, identities map[string]*cryptostore.Identity) ([]*RecipientDrift, error) {
	ageIDs := make(map[string]*age.X25519Identity, len(identities))
	for name, id := range identities {
		if id == nil || id.Key() == nil {
			continue
		}
		ageIDs[name] = id.Key()
	}

	var drifts []*RecipientDrift
	for _, envName := range d.EnvironmentNames() {
		env, _ := d.Environment(envName)
		expected := memberNames(policy.RecipientMembers(d, envName))

		for _, key := range env.SecretNames() {
			entry := env.Secrets[key]
			openers, err := cryptostore.RecipientsMatch(entry.Value, ageIDs)
			if err != nil {
				return nil, err
			}
			sort.Strings(openers)
			if !sameRelevantSet(expected, openers, ageIDs) {
				drifts = append(drifts, &RecipientDrift{
					Env:      envName,
					Key:      key,
					Expected: expected,
					Actual:   openers,
				})
			}
		}
	}
	return drifts, nil
}

func memberNames(members []*document.Member) []string {
	names := make([]string, 0, len(members))
	for _, m := range members {
		names = append(names, m.Name)
	}
	sort.Strings(names)
	return names
}

// sameRelevantSet compares expected against actual restricted to the names
// present in ids, since Verify cannot assert anything about a member whose
// identity it was never given.
func sameRelevantSet(expected, actual []string, ids map[string]*age.X25519Identity) bool {
	expectedKnown := map[string]bool{}
	for _, name := range expected {
		if _, known := ids[name]; known {
			expectedKnown[name] = true
		}
	}
	actualSet := map[string]bool{}
	for _, name := range actual {
		actualSet[name] = true
	}
	if len(expectedKnown) != len(actualSet) {
		return false
	}
	for name := range expectedKnown {
		if !actualSet[name] {
			return false
		}
	}
	return true
}
