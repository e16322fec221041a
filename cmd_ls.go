package main

import (
	"fmt"

	"envkey/internal/policy"
)

func runLs(args []string) {
	envName, explicit, _ := extractFlag(args, "-e", "--env")
	ctx := loadAppContext("", "", "")

	if explicit || envName != "" {
		printEnvironmentTable(ctx, resolveEnvName(envName))
		return
	}

	names := ctx.doc.EnvironmentNames()
	any := false
	for _, n := range names {
		if !policy.CanAccessEnvironment(ctx.actor, n, policy.OpGetList) {
			continue
		}
		any = true
		fmt.Printf("== %s ==\n", n)
		printEnvironmentTable(ctx, n)
	}
	if !any {
		infof("no environments visible to %s", ctx.actor.Name)
	}
}

func printEnvironmentTable(ctx *appContext, envName string) {
	env, ok := ctx.doc.Environment(envName)
	if !ok {
		fatal(fmt.Errorf("environment %q not found", envName))
	}
	if err := ctx.engine.Authorize(policy.OpGetList, envName); err != nil {
		fatalCode(err)
	}
	rows := make([][]string, 0, len(env.Secrets))
	for _, key := range env.SecretNames() {
		entry := env.Secrets[key]
		rows = append(rows, []string{key, string(entry.Kind), entry.SetBy, entry.Modified.Format("2006-01-02T15:04:05Z07:00")})
	}
	if len(rows) == 0 {
		infof("(no secrets in %s)", envName)
		return
	}
	printAlignedTable([]string{"KEY", "KIND", "SET_BY", "MODIFIED"}, rows, 2)
}
