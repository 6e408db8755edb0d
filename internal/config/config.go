// Package config loads run configuration from an optional TOML file with
// environment variable overrides. Flags override both; that wiring lives in
// cmd. Secrets (token, webhook URL, vault key) are never read from the file.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

const defaultNicksFile = "slack_nicks_encrypted.yaml"

type Config struct {
	Org       string `toml:"org"`
	Repo      string `toml:"repo"`
	NicksFile string `toml:"nicks_file"`

	// Environment-only secrets.
	WebhookURL string `toml:"-"`
	NicksKey   string `toml:"-"`

	ConfigPath string `toml:"-"`
}

func defaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "prqueue", "config.toml")
}

// Load reads the config file (when present) and applies environment
// overrides. A missing file is not an error; a malformed one is.
func Load(configPath string) (*Config, error) {
	cfg := &Config{
		NicksFile: defaultNicksFile,
	}

	if configPath == "" {
		configPath = defaultConfigPath()
	}
	cfg.ConfigPath = configPath

	if _, err := os.Stat(configPath); err == nil {
		if _, err := toml.DecodeFile(configPath, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if org := os.Getenv("PRQUEUE_ORG"); org != "" {
		cfg.Org = org
	}
	if repo := os.Getenv("PRQUEUE_REPO"); repo != "" {
		cfg.Repo = repo
	}
	if file := os.Getenv("SLACK_NICKS_FILE"); file != "" {
		cfg.NicksFile = file
	}

	cfg.WebhookURL = os.Getenv("SLACK_WEBHOOK_URL")
	cfg.NicksKey = os.Getenv("SLACK_NICKS_KEY")

	if cfg.NicksFile == "" {
		cfg.NicksFile = defaultNicksFile
	}

	return cfg, nil
}
