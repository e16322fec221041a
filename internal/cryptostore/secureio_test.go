package cryptostore

import (
	"os"
	"path/filepath"
	"testing"
)

func TestReadFileScoped(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env.dev")
	want := []byte("A=1\n")
	if err := os.WriteFile(path, want, 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	got, err := ReadFileScoped(path)
	if err != nil {
		t.Fatalf("readFileScoped: %v", err)
	}
	if string(got) != string(want) {
		t.Fatalf("got %q want %q", string(got), string(want))
	}
}

func TestReadFileScopedEmptyPath(t *testing.T) {
	if _, err := ReadFileScoped("   "); err == nil {
		t.Fatalf("expected path required error")
	}
}

func TestReadFileScopedRejectsOversizedFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "big.bin")
	if err := os.WriteFile(path, make([]byte, MaxScopedFileSize+1), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := ReadFileScoped(path); err == nil {
		t.Fatalf("expected size limit error")
	}
}

func TestReadFileScopedRejectsDirectory(t *testing.T) {
	dir := t.TempDir()
	sub := filepath.Join(dir, "subdir")
	if err := os.Mkdir(sub, 0o700); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if _, err := ReadFileScoped(sub); err == nil {
		t.Fatalf("expected directory error")
	}
}
