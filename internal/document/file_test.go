package document

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestSaveLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, DefaultFileName)

	d := New()
	d.AddMember(&Member{Name: "alice", Pubkey: realRecipient(t), Role: RoleAdmin, Added: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)})
	d.EnsureEnvironment(DefaultEnvironment)

	if err := Save(path, d); err != nil {
		t.Fatalf("Save: %v", err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if _, ok := loaded.Member("alice"); !ok {
		t.Fatalf("expected member alice after reload")
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("Stat: %v", err)
	}
	if info.Mode().Perm() != 0o644 {
		t.Fatalf("got mode %o, want 0644", info.Mode().Perm())
	}
}

func TestLoadRejectsInvalidDocument(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, DefaultFileName)

	d := New()
	d.AddMember(&Member{Name: "bot", Pubkey: realRecipient(t), Role: RoleCI, Added: time.Now()})
	if err := Save(path, d); err != nil {
		t.Fatalf("Save: %v", err)
	}

	if _, err := Load(path); err == nil {
		t.Fatalf("expected Load to reject a document with a ci member that has no declared environments")
	}
}

func TestSaveLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, DefaultFileName)
	if err := Save(path, New()); err != nil {
		t.Fatalf("Save: %v", err)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	if len(entries) != 1 || entries[0].Name() != DefaultFileName {
		t.Fatalf("expected only %s in %s, got %v", DefaultFileName, dir, entries)
	}
}
