package main

import (
	"fmt"
	"os"
	"os/user"
	"strings"
	"time"

	"envkey/internal/config"
	"envkey/internal/cryptostore"
	"envkey/internal/document"
	"envkey/internal/secretsengine"
)

// now returns the current time, used for timestamps this package writes
// directly into the document (init's bootstrap admin member).
func now() time.Time {
	return time.Now().UTC()
}

// dispatchRootCommand routes a top-level command name to its handler. It
// returns false for an unrecognized command so main can print usage.
func dispatchRootCommand(cmd string, args []string) bool {
	switch cmd {
	case "help", "-h", "--help":
		usage()
	case "version", "--version", "-v":
		printVersion()
	case "init":
		runInit(args)
	case "set":
		runSet(args)
	case "get":
		runGet(args)
	case "ls":
		runLs(args)
	case "rm":
		runRm(args)
	case "member":
		runMember(args)
	case "rotate":
		runRotate(args)
	case "run":
		runRun(args)
	case "export":
		runExport(args)
	case "diff":
		runDiff(args)
	case "log":
		runLog(args)
	case "verify":
		runVerify(args)
	case "doctor":
		runDoctor(args)
	default:
		return false
	}
	return true
}

// actorNotFoundError reports that the loaded identity's public key does not
// match any member in the document's team roster.
type actorNotFoundError struct {
	recipient string
}

func (e *actorNotFoundError) Error() string {
	return fmt.Sprintf("identity %s is not a member of this document's team", e.recipient)
}

func (e *actorNotFoundError) ExitCode() cryptostore.ExitCode { return cryptostore.ExitIdentityError }

// appContext bundles what every document-operating command needs: the
// resolved document, the caller's identity and matching team member, a
// ready Secrets Engine, and the loaded CLI config.
type appContext struct {
	docPath  string
	envName  string
	cfg      config.Config
	doc      *document.Document
	identity *cryptostore.Identity
	actor    *document.Member
	engine   *secretsengine.Engine
}

// resolveDocPath applies the target-selection precedence documented in
// usage(): an explicit --file flag, then $ENVKEY_FILE, then the
// conventional default name in the working directory.
func resolveDocPath(explicit string) string {
	if explicit != "" {
		return explicit
	}
	return envOr("ENVKEY_FILE", document.DefaultFileName)
}

// resolveEnvName applies the same precedence for -e/--env.
func resolveEnvName(explicit string) string {
	if explicit != "" {
		return explicit
	}
	return envOr("ENVKEY_ENV", document.DefaultEnvironment)
}

// loadConfig loads CLI preferences, falling back to defaults and printing a
// warning if the file exists but cannot be parsed.
func loadConfig() config.Config {
	cfg, err := config.Load("")
	if err != nil {
		warnf("config: %v (using defaults)", err)
		return config.Default()
	}
	return cfg
}

// loadIdentity resolves the caller's age identity per cfg.Identity, with
// ENVKEY_IDENTITY taking precedence (see cryptostore.Store.Load); a
// non-empty explicitPath overrides cfg.Identity.Path.
func loadIdentity(cfg config.Config, explicitPath string) (*cryptostore.Identity, error) {
	strict := false
	if cfg.Identity.StrictPermissions != nil {
		strict = *cfg.Identity.StrictPermissions
	}
	path := explicitPath
	if path == "" {
		path = cfg.Identity.Path
	}
	store := cryptostore.Store{Path: path, StrictPermissions: strict}
	ident, err := store.Load()
	if err != nil {
		return nil, err
	}
	if ident.Warning != nil {
		warnf("%v", ident.Warning)
	}
	return ident, nil
}

// loadAppContext performs the full setup every mutating or reading command
// needs: config, identity, document, actor lookup, and engine construction.
func loadAppContext(docPath, envName, identityPath string) *appContext {
	cfg := loadConfig()

	ident, err := loadIdentity(cfg, identityPath)
	if err != nil {
		fatalCode(err)
	}

	path := resolveDocPath(docPath)
	doc, err := document.Load(path)
	if err != nil {
		fatalCode(err)
	}

	actor, ok := doc.Member(memberNameForRecipient(doc, ident.Recipient()))
	if !ok {
		fatalCode(&actorNotFoundError{recipient: ident.Recipient()})
	}

	return &appContext{
		docPath:  path,
		envName:  resolveEnvName(envName),
		cfg:      cfg,
		doc:      doc,
		identity: ident,
		actor:    actor,
		engine:   secretsengine.New(doc, actor, ident),
	}
}

// memberNameForRecipient finds the team member whose pubkey matches
// recipient, returning "" if none match (loadAppContext then fails with
// actorNotFoundError).
func memberNameForRecipient(d *document.Document, recipient string) string {
	for _, m := range d.Team {
		if m.Pubkey == recipient {
			return m.Name
		}
	}
	return ""
}

func (c *appContext) save() {
	if err := document.Save(c.docPath, c.doc); err != nil {
		fatalCode(err)
	}
}

// openAuditLog opens the configured audit log, best-effort: a failure here
// is surfaced as a warning, never as a reason to abort the operation it's
// logging.
func (c *appContext) openAuditLog() *auditLogHandle {
	path := c.cfg.Log.Path
	console := c.cfg.Log.JSON != nil && !*c.cfg.Log.JSON
	l, err := openAuditLogFile(path, console)
	if err != nil {
		warnf("audit log: %v", err)
		return &auditLogHandle{}
	}
	return &auditLogHandle{log: l}
}

// currentUserName is used only by init to name the bootstrap admin member
// when the caller doesn't supply --name.
func currentUserName() string {
	if u, err := user.Current(); err == nil && strings.TrimSpace(u.Username) != "" {
		return u.Username
	}
	if v := strings.TrimSpace(os.Getenv("USER")); v != "" {
		return v
	}
	return "admin"
}

// extractFlag pulls the first occurrence of a value-taking flag (one of
// names) out of args, returning its value, whether it was found, and args
// with the flag and its value removed.
func extractFlag(args []string, names ...string) (value string, found bool, rest []string) {
	rest = make([]string, 0, len(args))
	for i := 0; i < len(args); i++ {
		matched := false
		for _, n := range names {
			if args[i] == n {
				matched = true
				break
			}
		}
		if matched {
			if i+1 < len(args) {
				value = args[i+1]
				found = true
				i++
				continue
			}
			found = true
			continue
		}
		rest = append(rest, args[i])
	}
	return value, found, rest
}

// extractAllFlag behaves like extractFlag but collects every occurrence,
// for flags that may repeat (member add --env ENV --env ENV).
func extractAllFlag(args []string, names ...string) (values []string, rest []string) {
	rest = make([]string, 0, len(args))
	for i := 0; i < len(args); i++ {
		matched := false
		for _, n := range names {
			if args[i] == n {
				matched = true
				break
			}
		}
		if matched && i+1 < len(args) {
			values = append(values, args[i+1])
			i++
			continue
		}
		rest = append(rest, args[i])
	}
	return values, rest
}

// extractBoolFlag pulls a value-less flag out of args.
func extractBoolFlag(args []string, names ...string) (found bool, rest []string) {
	rest = make([]string, 0, len(args))
	for _, a := range args {
		matched := false
		for _, n := range names {
			if a == n {
				matched = true
				break
			}
		}
		if matched {
			found = true
			continue
		}
		rest = append(rest, a)
	}
	return found, rest
}

// splitDoubleDash splits args on the first "--" separator.
func splitDoubleDash(args []string) (before, after []string) {
	for i, a := range args {
		if a == "--" {
			return args[:i], args[i+1:]
		}
	}
	return args, nil
}
