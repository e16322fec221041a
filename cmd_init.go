package main

import (
	"fmt"

	"envkey/internal/cryptostore"
	"envkey/internal/document"
)

func runInit(args []string) {
	force, args := extractBoolFlag(args, "--force")
	filePath, _, args := extractFlag(args, "--file")
	name, _, args := extractFlag(args, "--name")
	_ = args

	path := resolveDocPath(filePath)
	if exists(path) && !force {
		fatal(fmt.Errorf("%s already exists (use --force to overwrite)", path))
	}

	cfg := loadConfig()
	store := cryptostore.Store{Path: cfg.Identity.Path}
	ident, err := store.Load()
	if err != nil {
		ident, err = store.Create(false)
		if err != nil {
			fatal(err)
		}
		infof("generated identity at %s", ident.Path)
	} else {
		infof("reusing existing identity at %s", ident.Path)
	}

	if name == "" {
		name = currentUserName()
	}

	doc := document.New()
	doc.AddMember(&document.Member{
		Name:   name,
		Pubkey: ident.Recipient(),
		Role:   document.RoleAdmin,
		Added:  now(),
	})

	if err := doc.Validate(); err != nil {
		fatalCode(err)
	}
	if err := document.Save(path, doc); err != nil {
		fatalCode(err)
	}

	successf("initialized %s with admin %q (%s)", path, name, ident.Recipient())
}
