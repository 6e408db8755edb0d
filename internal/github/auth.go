package github

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// GetGitHubToken retrieves a GitHub token from various sources in priority order
func GetGitHubToken() (string, error) {
	// 1. Environment variable (highest priority)
	if token := os.Getenv("GITHUB_TOKEN"); token != "" {
		return token, nil
	}

	// 2. gh CLI configuration
	if token, err := getGHToken(); err == nil && token != "" {
		return token, nil
	}

	return "", fmt.Errorf("no GitHub token found: set GITHUB_TOKEN or log in with the gh CLI")
}

// getGHToken reads the token from gh CLI configuration using simple parsing
func getGHToken() (string, error) {
	// Check if GH_CONFIG_DIR is set (for testing)
	configDir := os.Getenv("GH_CONFIG_DIR")
	if configDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		configDir = filepath.Join(homeDir, ".config", "gh")
	}

	configPath := filepath.Join(configDir, "hosts.yml")
	data, err := os.ReadFile(configPath)
	if err != nil {
		return "", err
	}

	// Simple YAML parsing for oauth_token under github.com
	lines := strings.Split(string(data), "\n")
	inGithubSection := false

	for _, line := range lines {
		trimmed := strings.TrimSpace(line)

		if trimmed == "github.com:" {
			inGithubSection = true
			continue
		}

		if inGithubSection && strings.HasPrefix(trimmed, "oauth_token:") {
			parts := strings.SplitN(trimmed, ":", 2)
			if len(parts) == 2 {
				return strings.TrimSpace(parts[1]), nil
			}
		}

		// Reset if we hit another top-level section
		if inGithubSection && !strings.HasPrefix(line, " ") && !strings.HasPrefix(line, "\t") && trimmed != "" {
			inGithubSection = false
		}
	}

	return "", fmt.Errorf("oauth_token not found in gh config")
}
