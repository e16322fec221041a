package main

import (
	"reflect"
	"testing"

	"envkey/internal/document"
)

func TestExtractFlag(t *testing.T) {
	value, found, rest := extractFlag([]string{"KEY", "-e", "prod", "VALUE"}, "-e", "--env")
	if !found || value != "prod" {
		t.Fatalf("got value=%q found=%v", value, found)
	}
	if !reflect.DeepEqual(rest, []string{"KEY", "VALUE"}) {
		t.Fatalf("got rest=%v", rest)
	}
}

func TestExtractFlagAbsent(t *testing.T) {
	_, found, rest := extractFlag([]string{"KEY", "VALUE"}, "-e", "--env")
	if found {
		t.Fatalf("expected not found")
	}
	if !reflect.DeepEqual(rest, []string{"KEY", "VALUE"}) {
		t.Fatalf("got rest=%v", rest)
	}
}

func TestExtractAllFlag(t *testing.T) {
	values, rest := extractAllFlag([]string{"NAME", "PUBKEY", "--env", "dev", "--env", "staging"}, "--env")
	if !reflect.DeepEqual(values, []string{"dev", "staging"}) {
		t.Fatalf("got values=%v", values)
	}
	if !reflect.DeepEqual(rest, []string{"NAME", "PUBKEY"}) {
		t.Fatalf("got rest=%v", rest)
	}
}

func TestExtractBoolFlag(t *testing.T) {
	found, rest := extractBoolFlag([]string{"--all", "KEY"}, "--all")
	if !found {
		t.Fatalf("expected found")
	}
	if !reflect.DeepEqual(rest, []string{"KEY"}) {
		t.Fatalf("got rest=%v", rest)
	}
}

func TestSplitDoubleDash(t *testing.T) {
	before, after := splitDoubleDash([]string{"-e", "prod", "--", "printenv", "FOO"})
	if !reflect.DeepEqual(before, []string{"-e", "prod"}) {
		t.Fatalf("got before=%v", before)
	}
	if !reflect.DeepEqual(after, []string{"printenv", "FOO"}) {
		t.Fatalf("got after=%v", after)
	}
}

func TestSplitDoubleDashAbsent(t *testing.T) {
	before, after := splitDoubleDash([]string{"-e", "prod"})
	if !reflect.DeepEqual(before, []string{"-e", "prod"}) {
		t.Fatalf("got before=%v", before)
	}
	if after != nil {
		t.Fatalf("expected nil after, got %v", after)
	}
}

func TestResolveDocPathExplicitWins(t *testing.T) {
	t.Setenv("ENVKEY_FILE", "/tmp/from-env.yaml")
	if got := resolveDocPath("/tmp/explicit.yaml"); got != "/tmp/explicit.yaml" {
		t.Fatalf("got %q", got)
	}
}

func TestResolveDocPathFallsBackToEnv(t *testing.T) {
	t.Setenv("ENVKEY_FILE", "/tmp/from-env.yaml")
	if got := resolveDocPath(""); got != "/tmp/from-env.yaml" {
		t.Fatalf("got %q", got)
	}
}

func TestResolveEnvNameDefault(t *testing.T) {
	t.Setenv("ENVKEY_ENV", "")
	if got := resolveEnvName(""); got != "default" {
		t.Fatalf("got %q", got)
	}
}

func TestDispatchRootCommandUnknown(t *testing.T) {
	if dispatchRootCommand("not-a-real-command", nil) {
		t.Fatalf("expected unknown command to return false")
	}
}

func TestMemberNameForRecipient(t *testing.T) {
	doc := document.New()
	doc.AddMember(&document.Member{Name: "alice", Pubkey: "age1alicekey", Role: document.RoleAdmin})

	if got := memberNameForRecipient(doc, "age1alicekey"); got != "alice" {
		t.Fatalf("got %q", got)
	}
	if got := memberNameForRecipient(doc, "age1unknown"); got != "" {
		t.Fatalf("got %q, want empty", got)
	}
}
