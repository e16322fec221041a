package main

import (
	"fmt"
	"strconv"

	"envkey/internal/secretsengine"
)

func runRotate(args []string) {
	envName, _, args := extractFlag(args, "-e", "--env")
	generateStr, doGenerate, args := extractFlag(args, "--generate")
	all, args := extractBoolFlag(args, "--all")

	ctx := loadAppContext("", envName, "")

	if all {
		if err := ctx.engine.RotateAll(); err != nil {
			fatalCode(err)
		}
		ctx.save()
		al := ctx.openAuditLog()
		al.record("rotate_all", ctx.actor.Name, "", "", "")
		al.close()
		successf("rotated every entry this identity can access")
		return
	}

	if len(args) < 1 {
		fatal(fmt.Errorf("usage: envkey rotate [-e ENV] KEY --generate N | envkey rotate [-e ENV] KEY VALUE | envkey rotate --all"))
	}
	key := args[0]

	var value []byte
	if doGenerate {
		n, err := strconv.Atoi(generateStr)
		if err != nil || n <= 0 {
			n = ctx.cfg.Rotate.DefaultLen
		}
		if ctx.cfg.Rotate.Alphabet == "hex" {
			value, err = generateHexValue(n)
		} else {
			value, err = secretsengine.GenerateValue(n)
		}
		if err != nil {
			fatal(err)
		}
	} else {
		if len(args) < 2 {
			fatal(fmt.Errorf("usage: envkey rotate [-e ENV] KEY VALUE"))
		}
		value = []byte(args[1])
	}

	if err := ctx.engine.RotateValue(ctx.envName, key, value); err != nil {
		fatalCode(err)
	}
	ctx.save()

	al := ctx.openAuditLog()
	al.record("rotate", ctx.actor.Name, ctx.envName, key, "")
	al.close()

	successf("rotated %s/%s", ctx.envName, key)
}

const hexAlphabet = "0123456789abcdef"

// generateHexValue builds an n-character hex string by sampling one
// securely-random index into hexAlphabet per character, the rotate.alphabet
// = "hex" config branch.
func generateHexValue(n int) ([]byte, error) {
	out := make([]byte, n)
	for i := range out {
		idx, err := secureIntn(len(hexAlphabet))
		if err != nil {
			return nil, err
		}
		out[i] = hexAlphabet[idx]
	}
	return out, nil
}
