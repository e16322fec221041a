package main

import (
	"fmt"
	"os/exec"

	"envkey/internal/document"
)

// runDiff compares the working tree's document against HEAD's committed
// copy, reporting which secret names were added, removed, or changed
// (ciphertext differs) per environment. It never decrypts either side.
func runDiff(args []string) {
	filePath, _, args := extractFlag(args, "--file")
	_ = args
	path := resolveDocPath(filePath)

	working, err := document.Load(path)
	if err != nil {
		fatalCode(err)
	}

	out, err := exec.Command("git", "show", "HEAD:"+path).Output()
	if err != nil {
		fatal(fmt.Errorf("reading HEAD's copy of %s: %w", path, err))
	}
	head, err := document.Parse(out)
	if err != nil {
		fatalCode(err)
	}

	names := mergedEnvironmentNames(working, head)
	any := false
	for _, envName := range names {
		added, removed, changed := diffEnvironment(head, working, envName)
		if len(added) == 0 && len(removed) == 0 && len(changed) == 0 {
			continue
		}
		any = true
		fmt.Printf("== %s ==\n", envName)
		for _, k := range added {
			fmt.Printf("  + %s\n", k)
		}
		for _, k := range removed {
			fmt.Printf("  - %s\n", k)
		}
		for _, k := range changed {
			fmt.Printf("  ~ %s\n", k)
		}
	}
	if !any {
		infof("no changes")
	}
}

func mergedEnvironmentNames(a, b *document.Document) []string {
	seen := map[string]bool{}
	var names []string
	for _, n := range a.EnvironmentNames() {
		if !seen[n] {
			seen[n] = true
			names = append(names, n)
		}
	}
	for _, n := range b.EnvironmentNames() {
		if !seen[n] {
			seen[n] = true
			names = append(names, n)
		}
	}
	return names
}

func diffEnvironment(before, after *document.Document, envName string) (added, removed, changed []string) {
	beforeEnv, hasBefore := before.Environment(envName)
	afterEnv, hasAfter := after.Environment(envName)

	beforeKeys := map[string]string{}
	if hasBefore {
		for k, e := range beforeEnv.Secrets {
			beforeKeys[k] = e.Value
		}
	}
	afterKeys := map[string]string{}
	if hasAfter {
		for k, e := range afterEnv.Secrets {
			afterKeys[k] = e.Value
		}
	}

	for k, v := range afterKeys {
		prev, existed := beforeKeys[k]
		if !existed {
			added = append(added, k)
		} else if prev != v {
			changed = append(changed, k)
		}
	}
	for k := range beforeKeys {
		if _, stillThere := afterKeys[k]; !stillThere {
			removed = append(removed, k)
		}
	}
	return added, removed, changed
}
