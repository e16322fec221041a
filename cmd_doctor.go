package main

import (
	"fmt"
	"os"

	"envkey/internal/cryptostore"
	"envkey/internal/document"
	"envkey/internal/secretsengine"
)

// runDoctor runs a read-only diagnostic sweep: identity file permissions,
// document parse and schema invariants, and recipient-set consistency for
// whatever identity the caller can supply. It never mutates the document.
func runDoctor(args []string) {
	filePath, _, args := extractFlag(args, "--file")
	_ = args

	checks := make([][2]string, 0, 4)

	cfg := loadConfig()
	ident, identErr := loadIdentity(cfg, "")
	if identErr != nil {
		checks = append(checks, [2]string{"identity", "FAIL: " + identErr.Error()})
	} else if ident.Warning != nil {
		checks = append(checks, [2]string{"identity", "WARN: " + ident.Warning.Error()})
	} else {
		checks = append(checks, [2]string{"identity", "OK (" + ident.Source + ")"})
	}

	path := resolveDocPath(filePath)
	raw, readErr := os.ReadFile(path)
	if readErr != nil {
		checks = append(checks, [2]string{"document parse", "FAIL: " + readErr.Error()})
		printDoctorReport(checks)
		return
	}
	doc, parseErr := document.Parse(raw)
	if parseErr != nil {
		checks = append(checks, [2]string{"document parse", "FAIL: " + parseErr.Error()})
		printDoctorReport(checks)
		return
	}
	checks = append(checks, [2]string{"document parse", "OK"})

	if err := doc.Validate(); err != nil {
		checks = append(checks, [2]string{"invariants", "FAIL: " + err.Error()})
	} else {
		checks = append(checks, [2]string{"invariants", "OK"})
	}

	if identErr == nil {
		actorName := memberNameForRecipient(doc, ident.Recipient())
		if actorName == "" {
			checks = append(checks, [2]string{"recipient sets", fmt.Sprintf("WARN: identity %s is not a team member, skipping", ident.Recipient())})
		} else {
			drifts, err := secretsengine.Verify(doc, map[string]*cryptostore.Identity{actorName: ident})
			if err != nil {
				checks = append(checks, [2]string{"recipient sets", "FAIL: " + err.Error()})
			} else if len(drifts) > 0 {
				checks = append(checks, [2]string{"recipient sets", fmt.Sprintf("FAIL: %d entr(ies) out of sync", len(drifts))})
			} else {
				checks = append(checks, [2]string{"recipient sets", "OK"})
			}
		}
	}

	printDoctorReport(checks)
}

func printDoctorReport(checks [][2]string) {
	printKeyValueTable(checks)
}
