// Package config loads the recipient allow list document and resolves the
// on-disk layout for session state. Configuration problems never abort
// startup: a missing or malformed document degrades to an empty allow list,
// which denies every gated operation until the operator fixes it.
package config

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/nextlevelbuilder/zappy/internal/allowlist"
)

// Config is the operator-supplied document.
type Config struct {
	Allowed          []allowlist.Recipient `json:"allowed"`
	SuppressWarnings bool                  `json:"suppressWarnings"`
}

// Load reads the config document at path. An empty path, an unreadable file,
// or invalid JSON all degrade to an empty config with a logged warning.
func Load(path string) Config {
	var cfg Config
	if path == "" {
		slog.Warn("no config file given; all recipients will be denied",
			"hint", "pass --config with an allowed recipients file")
		return cfg
	}
	data, err := os.ReadFile(path)
	if err != nil {
		slog.Warn("could not read config file; all recipients will be denied",
			"path", path, "error", err)
		return Config{}
	}
	if err := json.Unmarshal(data, &cfg); err != nil {
		slog.Warn("could not parse config file; all recipients will be denied",
			"path", path, "error", err)
		return Config{}
	}
	slog.Info("config loaded", "path", path, "recipients", len(cfg.Allowed))
	return cfg
}

// Paths is the resolved on-disk layout for session state.
type Paths struct {
	DataDir   string
	AuthDB    string
	MessageDB string
}

// DefaultPaths resolves the data directory, creating it if needed. An empty
// dataDir defaults to ~/.config/zappy.
func DefaultPaths(dataDir string) (Paths, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return Paths{}, fmt.Errorf("resolve home dir: %w", err)
		}
		dataDir = filepath.Join(home, ".config", "zappy")
	}
	if err := os.MkdirAll(dataDir, 0o700); err != nil {
		return Paths{}, fmt.Errorf("create data dir: %w", err)
	}
	return Paths{
		DataDir:   dataDir,
		AuthDB:    filepath.Join(dataDir, "auth.db"),
		MessageDB: filepath.Join(dataDir, "messages.db"),
	}, nil
}
