package main

import (
	"fmt"
	"os"

	"envkey/internal/inject"
	"envkey/internal/policy"
)

func runRun(args []string) {
	envName, _, args := extractFlag(args, "-e", "--env")
	before, argv := splitDoubleDash(args)
	_ = before
	if len(argv) == 0 {
		fatal(fmt.Errorf("usage: envkey run [-e ENV] -- CMD..."))
	}

	ctx := loadAppContext("", envName, "")
	env, ok := ctx.doc.Environment(ctx.envName)
	if !ok {
		fatal(fmt.Errorf("environment %q not found", ctx.envName))
	}
	if err := ctx.engine.Authorize(policy.OpGetList, ctx.envName); err != nil {
		fatalCode(err)
	}

	al := ctx.openAuditLog()
	al.record("run", ctx.actor.Name, ctx.envName, "", argv[0])
	al.close()

	code, err := inject.Run(env, ctx.identity, argv)
	if err != nil {
		fatalCode(err)
	}
	os.Exit(code)
}
