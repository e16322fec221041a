package main

import (
	"fmt"
	"strings"

	"envkey/internal/document"
)

func runMember(args []string) {
	if len(args) < 1 {
		fatal(fmt.Errorf("usage: envkey member add|rm|grant|revoke|update|ls ..."))
	}
	sub := args[0]
	rest := args[1:]

	switch sub {
	case "add":
		memberAdd(rest)
	case "rm":
		memberRm(rest)
	case "grant":
		memberGrant(rest)
	case "revoke":
		memberRevoke(rest)
	case "update":
		memberUpdate(rest)
	case "ls":
		memberLs(rest)
	default:
		fatal(fmt.Errorf("unknown member subcommand %q", sub))
	}
}

func memberAdd(args []string) {
	roleStr, _, args := extractFlag(args, "--role")
	envs, args := extractAllFlag(args, "--env")

	if len(args) < 2 {
		fatal(fmt.Errorf("usage: envkey member add NAME PUBKEY [--role ROLE] [--env ENV ...]"))
	}
	name, pubkey := args[0], args[1]

	role := document.RoleMember
	if roleStr != "" {
		role = document.Role(roleStr)
	}

	m := &document.Member{Name: name, Pubkey: pubkey, Role: role}
	if len(envs) > 0 {
		m.Environments = envs
	}

	ctx := loadAppContext("", "", "")
	if err := ctx.engine.AddMember(m); err != nil {
		fatalCode(err)
	}
	ctx.save()

	al := ctx.openAuditLog()
	al.record("member_add", ctx.actor.Name, "", name, string(role))
	al.close()

	successf("added member %q (%s)", name, role)
}

func memberRm(args []string) {
	if len(args) < 1 {
		fatal(fmt.Errorf("usage: envkey member rm NAME"))
	}
	name := args[0]

	ctx := loadAppContext("", "", "")
	if err := ctx.engine.RemoveMember(name); err != nil {
		fatalCode(err)
	}
	ctx.save()

	al := ctx.openAuditLog()
	al.record("member_rm", ctx.actor.Name, "", name, "")
	al.close()

	successf("removed member %q", name)
	warnf("prior plaintext %q could decrypt remains compromised; run 'envkey rotate --all' to issue fresh values", name)
}

func memberGrant(args []string) {
	envName, _, args := extractFlag(args, "-e", "--env")
	if len(args) < 1 || envName == "" {
		fatal(fmt.Errorf("usage: envkey member grant NAME -e ENV"))
	}
	name := args[0]

	ctx := loadAppContext("", "", "")
	if err := ctx.engine.GrantEnvironment(name, envName); err != nil {
		fatalCode(err)
	}
	ctx.save()

	al := ctx.openAuditLog()
	al.record("member_grant", ctx.actor.Name, envName, name, "")
	al.close()

	successf("granted %s access to %s", name, envName)
}

func memberRevoke(args []string) {
	envName, _, args := extractFlag(args, "-e", "--env")
	if len(args) < 1 || envName == "" {
		fatal(fmt.Errorf("usage: envkey member revoke NAME -e ENV"))
	}
	name := args[0]

	ctx := loadAppContext("", "", "")
	if err := ctx.engine.RevokeEnvironment(name, envName); err != nil {
		fatalCode(err)
	}
	ctx.save()

	al := ctx.openAuditLog()
	al.record("member_revoke", ctx.actor.Name, envName, name, "")
	al.close()

	successf("revoked %s access to %s", name, envName)
}

func memberUpdate(args []string) {
	if len(args) < 2 {
		fatal(fmt.Errorf("usage: envkey member update NAME NEW_PUBKEY"))
	}
	name, newPubkey := args[0], args[1]

	ctx := loadAppContext("", "", "")
	if err := ctx.engine.UpdateMemberKey(name, newPubkey); err != nil {
		fatalCode(err)
	}
	ctx.save()

	al := ctx.openAuditLog()
	al.record("member_update", ctx.actor.Name, "", name, "")
	al.close()

	successf("updated %s's key", name)
}

func memberLs(args []string) {
	_ = args
	ctx := loadAppContext("", "", "")
	rows := make([][]string, 0, len(ctx.doc.Team))
	for _, m := range ctx.doc.Team {
		envs := "*"
		if m.Role != document.RoleAdmin {
			envs = strings.Join(m.Environments, ",")
			if envs == "" {
				envs = document.DefaultEnvironment
			}
		}
		rows = append(rows, []string{m.Name, string(m.Role), m.Pubkey, envs})
	}
	printAlignedTable([]string{"NAME", "ROLE", "PUBKEY", "ENVIRONMENTS"}, rows, 2)
}
