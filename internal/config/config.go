// Package config loads ambient CLI preferences for envkey from an optional
// TOML file. Absence of the file is not an error: every field has a
// documented default, applied the same way the model CLI this tool is
// descended from applies settings defaults.
package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// Config holds CLI-level preferences that are not part of the secrets
// document itself.
type Config struct {
	SchemaVersion int            `toml:"schema_version"`
	Output        OutputSettings `toml:"output,omitempty"`
	Identity      IdentitySettings `toml:"identity,omitempty"`
	Rotate        RotateSettings `toml:"rotate,omitempty"`
	Log           LogSettings    `toml:"log,omitempty"`
}

type OutputSettings struct {
	// Format is the default export format: env, json, docker, k8s-secret.
	Format string `toml:"format,omitempty"`
	Color  *bool  `toml:"color,omitempty"`
}

type IdentitySettings struct {
	// Path overrides the default per-user identity file location.
	Path string `toml:"path,omitempty"`
	// StrictPermissions promotes loose identity file permissions to fatal.
	StrictPermissions *bool `toml:"strict_permissions,omitempty"`
}

type RotateSettings struct {
	// Alphabet selects the encoding rotate --generate uses: base64 or hex.
	Alphabet   string `toml:"alphabet,omitempty"`
	DefaultLen int    `toml:"default_len,omitempty"`
}

type LogSettings struct {
	Path    string `toml:"path,omitempty"`
	JSON    *bool  `toml:"json,omitempty"`
	Verbose *bool  `toml:"verbose,omitempty"`
}

func boolPtr(b bool) *bool { return &b }

// Default returns the baseline config with every field at its documented
// default, for callers that need a fallback without touching disk.
func Default() Config {
	return defaultConfig()
}

func defaultConfig() Config {
	return Config{
		SchemaVersion: 1,
		Output: OutputSettings{
			Format: "env",
			Color:  boolPtr(true),
		},
		Identity: IdentitySettings{
			StrictPermissions: boolPtr(false),
		},
		Rotate: RotateSettings{
			Alphabet:   "base64",
			DefaultLen: 32,
		},
		Log: LogSettings{
			JSON:    boolPtr(true),
			Verbose: boolPtr(false),
		},
	}
}

func applyDefaults(c *Config) {
	if c.SchemaVersion == 0 {
		c.SchemaVersion = 1
	}
	if strings.TrimSpace(c.Output.Format) == "" {
		c.Output.Format = "env"
	}
	if c.Output.Color == nil {
		c.Output.Color = boolPtr(true)
	}
	if c.Identity.StrictPermissions == nil {
		c.Identity.StrictPermissions = boolPtr(false)
	}
	if strings.TrimSpace(c.Rotate.Alphabet) == "" {
		c.Rotate.Alphabet = "base64"
	}
	if c.Rotate.DefaultLen <= 0 {
		c.Rotate.DefaultLen = 32
	}
	if c.Log.JSON == nil {
		c.Log.JSON = boolPtr(true)
	}
	if c.Log.Verbose == nil {
		c.Log.Verbose = boolPtr(false)
	}
}

// DefaultPath returns ~/.config/envkey/config.toml (or the platform
// equivalent via os.UserConfigDir).
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "envkey", "config.toml"), nil
}

// Load reads path (or the default path if path is empty), applying
// defaults for every unset field. A missing file is not an error: Load
// returns defaultConfig().
func Load(path string) (Config, error) {
	if strings.TrimSpace(path) == "" {
		def, err := DefaultPath()
		if err != nil {
			return defaultConfig(), nil
		}
		path = def
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return defaultConfig(), nil
		}
		return Config{}, err
	}
	cfg := defaultConfig()
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return Config{}, err
	}
	applyDefaults(&cfg)
	return cfg, nil
}
