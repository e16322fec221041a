package main

import (
	"fmt"

	"envkey/internal/secretsengine"
)

func runRm(args []string) {
	envName, _, args := extractFlag(args, "-e", "--env")
	if len(args) < 1 {
		fatal(fmt.Errorf("usage: envkey rm [-e ENV] KEY"))
	}
	key := args[0]

	ctx := loadAppContext("", envName, "")
	err := ctx.engine.Remove(ctx.envName, key, false)
	if err != nil {
		if destroyed, ok := err.(*secretsengine.EnvironmentDestroyedError); ok {
			confirmed, ok := confirmYN(fmt.Sprintf("removing %s empties environment %q; remove it too?", key, destroyed.Env), false)
			if !ok || !confirmed {
				infof("aborted")
				return
			}
			err = ctx.engine.Remove(ctx.envName, key, true)
		}
	}
	if err != nil {
		fatalCode(err)
	}
	ctx.save()

	al := ctx.openAuditLog()
	al.record("rm", ctx.actor.Name, ctx.envName, key, "")
	al.close()

	successf("removed %s/%s", ctx.envName, key)
}
