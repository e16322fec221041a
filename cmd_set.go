package main

import (
	"fmt"

	"envkey/internal/cryptostore"
	"envkey/internal/document"
)

func runSet(args []string) {
	envName, _, args := extractFlag(args, "-e", "--env")
	filePath, useFile, args := extractFlag(args, "--file")

	if len(args) < 1 {
		fatal(fmt.Errorf("usage: envkey set [-e ENV] KEY VALUE [--file path]"))
	}
	key := args[0]

	var plaintext []byte
	kind := document.KindString
	if useFile {
		data, err := cryptostore.ReadFileScoped(filePath)
		if err != nil {
			fatal(err)
		}
		plaintext = data
		kind = document.KindFile
	} else {
		if len(args) < 2 {
			fatal(fmt.Errorf("usage: envkey set [-e ENV] KEY VALUE [--file path]"))
		}
		plaintext = []byte(args[1])
	}

	ctx := loadAppContext("", envName, "")
	if err := ctx.engine.Set(ctx.envName, key, plaintext, kind); err != nil {
		fatalCode(err)
	}
	ctx.save()

	al := ctx.openAuditLog()
	al.record("set", ctx.actor.Name, ctx.envName, key, "")
	al.close()

	successf("set %s/%s", ctx.envName, key)
}
