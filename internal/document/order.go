package document

import "sort"

// sortStrings sorts names lexicographically by byte value, matching YAML's
// own string ordering so re-saves without edits stay byte-identical.
func sortStrings(names []string) {
	sort.Strings(names)
}

// sortEnvironmentNames sorts with "default" pinned first, then lexicographic.
func sortEnvironmentNames(names []string) {
	sort.Slice(names, func(i, j int) bool {
		a, b := names[i], names[j]
		if a == DefaultEnvironment {
			return b != DefaultEnvironment
		}
		if b == DefaultEnvironment {
			return false
		}
		return a < b
	})
}
