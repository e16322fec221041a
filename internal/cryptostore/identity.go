package cryptostore

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"filippo.io/age"
)

const (
	// EnvIdentity carries either raw AGE-SECRET-KEY material directly (for
	// CI) or the path of an identity file.
	EnvIdentity = "ENVKEY_IDENTITY"
)

// Identity is a team member's long-lived asymmetric identity, handed to the
// Crypto Engine for the duration of a single decrypt call.
type Identity struct {
	key    *age.X25519Identity
	Source string // "env", "file", "default"
	Path   string // set for file/default sources
	// Warning holds a non-fatal IdentityPermissionsTooOpenError surfaced by
	// Load when StrictPermissions is false. Callers should report it.
	Warning error
}

// Recipient returns the bech32 age1... public key for this identity.
func (i *Identity) Recipient() string {
	if i == nil || i.key == nil {
		return ""
	}
	return i.key.Recipient().String()
}

// Key exposes the underlying age identity for the Crypto Engine. It is a
// short-lived handle: callers must not persist it beyond the operation that
// requested it.
func (i *Identity) Key() *age.X25519Identity {
	if i == nil {
		return nil
	}
	return i.key
}

// StrictPermissions, when true, promotes IdentityPermissionsTooOpenError
// from a warning to a fatal error.
type Store struct {
	// Path overrides the default per-user identity file location.
	Path string
	// StrictPermissions promotes loose file permissions to a fatal error.
	StrictPermissions bool
}

// DefaultPath returns the platform-specific per-user identity file path,
// envkey/identity.age under the user config directory.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "envkey", "identity.age"), nil
}

// Load resolves an identity from, in order: the ENVKEY_IDENTITY environment
// variable (raw secret key for CI, or an identity file path when the value
// does not start with AGE-SECRET-KEY-), an explicit Path, or the default
// platform config directory.
func (s Store) Load() (*Identity, error) {
	if raw := strings.TrimSpace(os.Getenv(EnvIdentity)); raw != "" && !strings.HasPrefix(raw, "AGE-SECRET-KEY-") {
		s.Path = raw
	} else if raw != "" {
		key, err := age.ParseX25519Identity(raw)
		if err != nil {
			return nil, &IdentityMalformedError{Source: "env:" + EnvIdentity, Err: err}
		}
		return &Identity{key: key, Source: "env"}, nil
	}

	path := strings.TrimSpace(s.Path)
	tried := []string{EnvIdentity}
	if path == "" {
		def, err := DefaultPath()
		if err != nil {
			return nil, &IdentityMissingError{Tried: tried}
		}
		path = def
	}
	tried = append(tried, path)

	warning, err := s.checkPermissions(path)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &IdentityMissingError{Tried: tried}
		}
		return nil, err
	}
	key, err := parseIdentityFile(data)
	if err != nil {
		return nil, &IdentityMalformedError{Source: path, Err: err}
	}
	source := "file"
	if s.Path == "" {
		source = "default"
	}
	return &Identity{key: key, Source: source, Path: path, Warning: warning}, nil
}

// Create generates a fresh X25519 identity and writes it to Path (or the
// default config path), refusing to overwrite an existing file unless
// force is set.
func (s Store) Create(force bool) (*Identity, error) {
	path := strings.TrimSpace(s.Path)
	if path == "" {
		def, err := DefaultPath()
		if err != nil {
			return nil, err
		}
		path = def
	}
	if !force {
		if _, err := os.Stat(path); err == nil {
			return nil, fmt.Errorf("identity file already exists at %s (use --force to overwrite)", path)
		} else if !os.IsNotExist(err) {
			return nil, err
		}
	}

	key, err := GenerateIdentity()
	if err != nil {
		return nil, err
	}
	if err := writeIdentityFile(path, key.String()); err != nil {
		return nil, err
	}
	return &Identity{key: key, Source: "file", Path: path}, nil
}

// checkPermissions returns (warning, fatal): warning is a non-nil
// IdentityPermissionsTooOpenError to surface to the caller without aborting
// the load, fatal is non-nil when StrictPermissions promotes it.
func (s Store) checkPermissions(path string) (warning, fatal error) {
	info, err := os.Lstat(path)
	if err != nil {
		return nil, nil // surfaced as IdentityMissing by the caller's ReadFile
	}
	if runtime.GOOS == "windows" {
		return nil, nil
	}
	if info.Mode()&os.ModeSymlink != 0 {
		e := &IdentityPermissionsTooOpenError{Path: path, Mode: "symlink"}
		if s.StrictPermissions {
			return nil, e
		}
		return e, nil
	}
	perm := info.Mode().Perm()
	if perm&0o077 != 0 {
		e := &IdentityPermissionsTooOpenError{Path: path, Mode: fmt.Sprintf("%04o", perm)}
		if s.StrictPermissions {
			return nil, e
		}
		return e, nil
	}
	return nil, nil
}

func parseIdentityFile(data []byte) (*age.X25519Identity, error) {
	for _, raw := range strings.Split(string(data), "\n") {
		line := strings.TrimSpace(raw)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if strings.HasPrefix(line, "AGE-SECRET-KEY-") {
			return age.ParseX25519Identity(line)
		}
	}
	return nil, fmt.Errorf("no AGE-SECRET-KEY line found")
}

func writeIdentityFile(path, secret string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, "identity-*.age")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())
	if err := tmp.Chmod(0o600); err != nil {
		_ = tmp.Close()
		return err
	}
	if _, err := tmp.WriteString(strings.TrimSpace(secret) + "\n"); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmp.Name(), 0o600); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
