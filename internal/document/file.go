package document

import (
	"fmt"
	"os"
	"path/filepath"
)

// DefaultFileName is the document's conventional on-disk name.
const DefaultFileName = ".envkey.yaml"

// Load reads and parses the document at path, then checks its invariants
// (I1, I2, I4, I5, I6) before returning it, so every caller downstream of
// Load only ever operates on a structurally sound document.
func Load(path string) (*Document, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	d, err := Parse(raw)
	if err != nil {
		return nil, &ParseError{Path: path, Err: err}
	}
	if err := d.Validate(); err != nil {
		return nil, err
	}
	return d, nil
}

// Save serializes the document and writes it to path via write-to-temp,
// fsync, rename, so a crash between write and rename leaves the prior
// document byte-identical on disk.
func Save(path string, d *Document) error {
	out, err := d.Marshal()
	if err != nil {
		return err
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, ".envkey-*.yaml.tmp")
	if err != nil {
		return fmt.Errorf("atomic write: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := tmp.Write(out); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("atomic write: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("atomic write: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("atomic write: %w", err)
	}
	if err := os.Chmod(tmpPath, 0o644); err != nil {
		return fmt.Errorf("atomic write: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("atomic write: %w", err)
	}
	return nil
}
