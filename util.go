package main

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/mattn/go-runewidth"
	"golang.org/x/term"

	"envkey/internal/cryptostore"
)

func usage() {
	fmt.Print(colorizeHelp(`envkey [command] [args]

Zero-infrastructure secret management. Secrets live encrypted in a single
file committed to version control; decryption happens locally using each
team member's age identity.

Usage:
  envkey <command> [args...]
  envkey help | -h | --help
  envkey version | --version | -v

Commands:
  envkey init [--force]
  envkey set [-e ENV] KEY VALUE [--file path]
  envkey get [-e ENV] KEY [--file]
  envkey ls [-e ENV]
  envkey rm [-e ENV] KEY
  envkey member add NAME PUBKEY [--role admin|member|ci|readonly] [--env ENV ...]
  envkey member rm NAME
  envkey member grant NAME -e ENV
  envkey member revoke NAME -e ENV
  envkey member update NAME NEW_PUBKEY
  envkey member ls
  envkey rotate [-e ENV] [KEY] [--generate N|--all]
  envkey run [-e ENV] -- CMD...
  envkey export [-e ENV] [--format env|json|docker|k8s-secret]
  envkey diff
  envkey log
  envkey verify
  envkey doctor

Target selection (most commands):
  --file <path>     explicit document path, for init, diff and doctor (default: .envkey.yaml, or $ENVKEY_FILE)
  -e, --env <name>  environment name (default: "default", or $ENVKEY_ENV)

init:
  envkey init [--force]
    Generates an age identity (unless one already exists) and creates an
    empty document with the caller as the sole admin.
    --force    overwrite an existing document

set:
  envkey set [-e ENV] KEY VALUE [--file path]
    Encrypts VALUE to every recipient entitled to ENV and upserts the entry.
    --file <path>    read the secret's value from a file and mark kind: file

get:
  envkey get [-e ENV] KEY [--file]
    Decrypts KEY with the caller's identity.
    --file    write the plaintext to a temp file and print its path instead

ls:
  envkey ls [-e ENV]
    Lists secret names in ENV (or all environments when ENV is omitted).

rm:
  envkey rm [-e ENV] KEY
    Removes KEY from ENV. No cryptographic work is performed.

member:
  envkey member add NAME PUBKEY [--role ROLE] [--env ENV ...]
  envkey member rm NAME
  envkey member grant NAME -e ENV
  envkey member revoke NAME -e ENV
  envkey member update NAME NEW_PUBKEY
  envkey member ls
    add/rm/grant/revoke/update re-key every affected environment so that
    its ciphertexts match the new recipient set.

rotate:
  envkey rotate [-e ENV] KEY --generate N
  envkey rotate [-e ENV] KEY VALUE
  envkey rotate --all
    --generate N    replace KEY with N cryptographically random bytes (base64url);
                    with rotate.alphabet = "hex", N random hex characters
    --all           re-encrypt every entry the caller can access with a fresh
                    file key, without changing any plaintext

run:
  envkey run [-e ENV] -- CMD...
    Decrypts ENV and replaces the current process image with CMD, carrying
    the decrypted values as environment variables. Falls back to spawn-and-
    wait on platforms without process replacement.

export:
  envkey export [-e ENV] [--format env|json|docker|k8s-secret]
    Writes the decrypted map for ENV to stdout.
    --format env          KEY='value' lines, shell-quoted (default)
    --format json          a JSON object of string values
    --format docker        KEY=value lines, unquoted
    --format k8s-secret    a Kubernetes Secret manifest, base64-encoded values

diff:
  envkey diff
    Shows which secret names changed between the working tree and HEAD's
    copy of the document, without decrypting either.

log:
  envkey log
    Shows the operations recorded in the local audit log (op, actor,
    environment, key), newest first.

verify:
  envkey verify
    For every entry in every environment, checks that the caller's identity
    opens it exactly when the caller is in that environment's current
    recipient set. Other members' access is not checked. Reports
    RecipientDrift on mismatch.

doctor:
  envkey doctor
    Checks identity file permissions, document parse/invariants, and
    recipient-set consistency; prints a pass/fail summary.

Environment variables:
  ENVKEY_IDENTITY   path to the identity file, or raw AGE-SECRET-KEY material
  ENVKEY_FILE       overrides the document path
  ENVKEY_ENV        default environment for commands that accept -e
`))
}

const envkeyVersion = "v0.1.0"

func printVersion() {
	fmt.Println(envkeyVersion)
}

func envOr(key, def string) string {
	val := strings.TrimSpace(os.Getenv(key))
	if val == "" {
		return def
	}
	return val
}

func isEscCancelInput(value string) bool {
	return strings.ContainsRune(value, '\x1b')
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func fatal(err error) {
	_, _ = fmt.Fprintln(os.Stderr, styleError(err.Error()))
	os.Exit(1)
}

// exitCoder is implemented by errors in internal/cryptostore, internal/document,
// internal/policy, and internal/secretsengine that carry a specific process
// exit code (the command surface's exit-code contract).
type exitCoder interface {
	ExitCode() cryptostore.ExitCode
}

// fatalCode prints err and exits with its ExitCode() if it implements
// exitCoder, or 1 otherwise.
func fatalCode(err error) {
	_, _ = fmt.Fprintln(os.Stderr, styleError(err.Error()))
	if ec, ok := err.(exitCoder); ok {
		os.Exit(int(ec.ExitCode()))
	}
	os.Exit(1)
}

func validateSlug(name string) error {
	if name == "" {
		return errors.New("name required")
	}
	for _, ch := range name {
		if (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z') || (ch >= '0' && ch <= '9') || ch == '-' || ch == '_' {
			continue
		}
		return fmt.Errorf("invalid name %q (allowed: letters, numbers, - and _)", name)
	}
	return nil
}

func isValidSlug(name string) bool {
	if strings.TrimSpace(name) == "" {
		return false
	}
	for _, ch := range name {
		if (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z') || (ch >= '0' && ch <= '9') || ch == '-' || ch == '_' {
			continue
		}
		return false
	}
	return true
}

var ansiEnabled = initAnsiEnabled()

func initAnsiEnabled() bool {
	if strings.TrimSpace(os.Getenv("NO_COLOR")) != "" || strings.TrimSpace(os.Getenv("SI_NO_COLOR")) != "" {
		return false
	}
	if strings.EqualFold(strings.TrimSpace(os.Getenv("TERM")), "dumb") {
		return false
	}
	if force := strings.TrimSpace(os.Getenv("SI_COLOR")); force != "" {
		return force == "1" || strings.EqualFold(force, "true")
	}
	if force := strings.TrimSpace(os.Getenv("CLICOLOR_FORCE")); force != "" && force != "0" {
		return true
	}
	return term.IsTerminal(int(os.Stdout.Fd()))
}

func ansi(codes ...string) string {
	return "\x1b[" + strings.Join(codes, ";") + "m"
}

func colorize(s string, codes ...string) string {
	if !ansiEnabled || s == "" {
		return s
	}
	return ansi(codes...) + s + ansi("0")
}

func styleHeading(s string) string { return colorize(s, "1", "36") }
func styleSection(s string) string { return colorize(s, "1", "34") }
func styleCmd(s string) string     { return colorize(s, "1", "32") }
func styleFlag(s string) string    { return colorize(s, "33") }
func styleArg(s string) string     { return colorize(s, "35") }
func styleDim(s string) string     { return colorize(s, "90") }
func styleInfo(s string) string    { return colorize(s, "36") }
func styleSuccess(s string) string { return colorize(s, "32") }
func styleWarn(s string) string    { return colorize(s, "33") }
func styleError(s string) string   { return colorize(s, "31") }
func styleUsage(s string) string   { return colorize(s, "1", "33") }

func styleStatus(s string) string {
	val := strings.ToLower(strings.TrimSpace(s))
	switch val {
	case "running", "ok", "ready", "done", "success", "yes", "true", "available", "up":
		return styleSuccess(s)
	case "blocked", "warning", "warn", "pending":
		return styleWarn(s)
	case "failed", "error", "missing", "stopped", "exited", "not found", "no", "false", "down":
		return styleError(s)
	default:
		return styleInfo(s)
	}
}

func printUsage(line string) {
	raw := strings.TrimSpace(line)
	if strings.HasPrefix(raw, "usage:") {
		rest := strings.TrimSpace(strings.TrimPrefix(raw, "usage:"))
		fmt.Printf("%s %s\n", styleUsage("usage:"), rest)
		return
	}
	fmt.Println(styleUsage(raw))
}

func printUnknown(kind, cmd string) {
	kind = strings.TrimSpace(kind)
	if kind != "" {
		kind = kind + " "
	}
	fmt.Fprintf(os.Stderr, "%s %s%s\n", styleError("unknown"), kind+"command:", styleCmd(cmd))
}

func warnf(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	if containsANSI(msg) {
		fmt.Fprintln(os.Stderr, styleWarn("warning:")+" "+msg)
		return
	}
	fmt.Fprintln(os.Stderr, styleWarn("warning:")+" "+msg)
}

func infof(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	if containsANSI(msg) {
		fmt.Println(msg)
		return
	}
	fmt.Println(styleInfo(msg))
}

func successf(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	if containsANSI(msg) {
		fmt.Println(msg)
		return
	}
	fmt.Println(styleSuccess(msg))
}

func colorizeHelp(text string) string {
	if !ansiEnabled {
		return text
	}
	sectionRe := regexp.MustCompile(`^[A-Za-z][A-Za-z0-9 /-]*:$`)
	cmdRe := regexp.MustCompile(`\\b(envkey|init|set|get|ls|rm|member|rotate|run|export|diff|log|verify|doctor)\\b`)
	flagRe := regexp.MustCompile(`--[a-zA-Z0-9-]+`)
	shortFlagRe := regexp.MustCompile(`(^|\\s)(-[a-zA-Z])\\b`)
	argRe := regexp.MustCompile(`<[^>]+>`)
	dividerRe := regexp.MustCompile(`^-{3,}$`)

	lines := strings.Split(text, "\n")
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		if dividerRe.MatchString(trimmed) {
			lines[i] = indentLine(line, styleDim(trimmed))
			continue
		}
		if sectionRe.MatchString(trimmed) {
			lines[i] = indentLine(line, styleHeading(trimmed))
			continue
		}
		if strings.HasPrefix(trimmed, "Usage:") || strings.HasPrefix(trimmed, "Features:") || strings.HasPrefix(trimmed, "Core:") || strings.HasPrefix(trimmed, "Build:") || strings.HasPrefix(trimmed, "Profiles:") || strings.HasPrefix(trimmed, "Command details") || strings.HasPrefix(trimmed, "Environment defaults") {
			lines[i] = indentLine(line, styleHeading(trimmed))
			continue
		}
		if strings.HasPrefix(strings.ToLower(trimmed), "usage:") {
			parts := strings.SplitN(trimmed, ":", 2)
			if len(parts) == 2 {
				lines[i] = indentLine(line, styleUsage(parts[0]+":")+" "+strings.TrimSpace(parts[1]))
				continue
			}
		}
		line = flagRe.ReplaceAllStringFunc(line, styleFlag)
		line = shortFlagRe.ReplaceAllStringFunc(line, func(m string) string {
			trim := strings.TrimSpace(m)
			if trim == "" {
				return m
			}
			return strings.Replace(m, trim, styleFlag(trim), 1)
		})
		line = argRe.ReplaceAllStringFunc(line, styleArg)
		line = cmdRe.ReplaceAllStringFunc(line, styleCmd)
		lines[i] = line
	}
	return strings.Join(lines, "\n")
}

func indentLine(line, replacement string) string {
	prefix := line[:len(line)-len(strings.TrimLeft(line, " "))]
	return prefix + replacement
}

var ansiStripRe = regexp.MustCompile(`\x1b\[[0-9;]*m`)

func stripANSIForPad(s string) string {
	return ansiStripRe.ReplaceAllString(s, "")
}

func displayWidth(s string) int {
	return runewidth.StringWidth(stripANSIForPad(s))
}

func padRightANSI(s string, width int) string {
	visible := displayWidth(s)
	if visible >= width {
		return s
	}
	return s + strings.Repeat(" ", width-visible)
}

func containsANSI(s string) bool {
	return ansiStripRe.MatchString(s)
}
