package main

import (
	"envkey/internal/cryptostore"
	"envkey/internal/secretsengine"
)

func runVerify(args []string) {
	_ = args
	ctx := loadAppContext("", "", "")

	identities := map[string]*cryptostore.Identity{ctx.actor.Name: ctx.identity}
	drifts, err := secretsengine.Verify(ctx.doc, identities)
	if err != nil {
		fatalCode(err)
	}
	if len(drifts) == 0 {
		successf("verified: every ciphertext %s can open matches its environment's recipient set", ctx.actor.Name)
		return
	}
	for _, d := range drifts {
		warnf("%s", d.Error())
	}
	fatalCode(drifts[0])
}
