package main

import (
	"fmt"
	"os"
)

func runGet(args []string) {
	envName, _, args := extractFlag(args, "-e", "--env")
	asFile, args := extractBoolFlag(args, "--file")

	if len(args) < 1 {
		fatal(fmt.Errorf("usage: envkey get [-e ENV] KEY [--file]"))
	}
	key := args[0]

	ctx := loadAppContext("", envName, "")
	buf, err := ctx.engine.Get(ctx.envName, key)
	if err != nil {
		fatalCode(err)
	}
	defer buf.Zero()

	if asFile {
		f, err := os.CreateTemp("", "envkey-get-*")
		if err != nil {
			fatal(err)
		}
		if err := f.Chmod(0o600); err != nil {
			fatal(err)
		}
		if _, err := f.Write(buf.Bytes()); err != nil {
			fatal(err)
		}
		if err := f.Close(); err != nil {
			fatal(err)
		}
		fmt.Println(f.Name())
		return
	}

	fmt.Println(buf.String())
}
