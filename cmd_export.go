package main

import (
	"fmt"

	"envkey/internal/inject"
	"envkey/internal/secretsengine"
)

func runExport(args []string) {
	envName, _, args := extractFlag(args, "-e", "--env")
	format, _, args := extractFlag(args, "--format")
	secretName, _, args := extractFlag(args, "--name")
	_ = args

	ctx := loadAppContext("", envName, "")
	if _, ok := ctx.doc.Environment(ctx.envName); !ok {
		fatal(fmt.Errorf("environment %q not found", ctx.envName))
	}

	if format == "" {
		format = ctx.cfg.Output.Format
	}

	values, err := ctx.engine.List(ctx.envName)
	if err != nil {
		fatalCode(err)
	}
	defer secretsengine.ZeroAll(values)

	out, err := inject.Export(values, inject.Format(format), secretName)
	if err != nil {
		fatal(err)
	}
	fmt.Print(out)
}
