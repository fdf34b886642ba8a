// Copyright 2025 SirSeer, LLC
//
// Licensed under the Business Source License 1.1 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://mariadb.com/bsl11
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package config provides configuration management for fieldwatch with
// support for multiple configuration sources and a well-defined precedence
// order.
//
// Configuration sources (in precedence order, highest to lowest):
//  1. Command-line flags
//  2. Environment variables
//  3. Configuration file
//  4. Built-in defaults
//
// The package supports YAML configuration files and provides automatic
// discovery of configuration in standard locations. Custom GraphQL endpoints
// make it usable against GitHub Enterprise deployments.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	fwerrors "github.com/sirseerhq/sirseer-fieldwatch/internal/errors"
	"github.com/sirseerhq/sirseer-fieldwatch/internal/github"
)

// LoadConfig loads configuration from multiple sources and applies them in
// the correct precedence order. If configPath is provided, it loads from
// that specific file. Otherwise, it searches standard locations:
//   - .fieldwatch.yaml (current directory)
//   - .fieldwatch.yml (current directory)
//   - ~/.fieldwatch/config.yaml
//   - ~/.fieldwatch/config.yml
//
// Environment variables are applied after loading the config file, allowing
// runtime overrides.
//
// Returns an error if the specified config file cannot be loaded, but will
// succeed with defaults if no config file is found in standard locations.
func LoadConfig(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	if configPath != "" {
		if err := loadConfigFile(configPath, cfg); err != nil {
			return nil, fmt.Errorf("failed to load config file: %w", err)
		}
	} else {
		defaultPaths := []string{
			".fieldwatch.yaml",
			".fieldwatch.yml",
			filepath.Join(os.Getenv("HOME"), ".fieldwatch", "config.yaml"),
			filepath.Join(os.Getenv("HOME"), ".fieldwatch", "config.yml"),
		}

		for _, path := range defaultPaths {
			if _, err := os.Stat(path); err == nil {
				if err := loadConfigFile(path, cfg); err != nil {
					return nil, fmt.Errorf("failed to load config from %s: %w", path, err)
				}
				break
			}
		}
	}

	applyEnvOverrides(cfg)

	cfg.Notify.LedgerDir = expandPath(cfg.Notify.LedgerDir)

	return cfg, nil
}

// loadConfigFile reads and parses a YAML config file
func loadConfigFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	return nil
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(cfg *Config) {
	if endpoint := os.Getenv("GITHUB_GRAPHQL_ENDPOINT"); endpoint != "" {
		cfg.GitHub.GraphQLEndpoint = endpoint
	}

	if owner := os.Getenv("FIELDWATCH_OWNER"); owner != "" {
		cfg.Project.Owner = owner
	}
	if ownerType := os.Getenv("FIELDWATCH_OWNER_TYPE"); ownerType != "" {
		cfg.Project.OwnerType = ownerType
	}
	if number := os.Getenv("FIELDWATCH_PROJECT_NUMBER"); number != "" {
		if n, err := parsePositiveInt(number); err == nil {
			cfg.Project.Number = n
		}
	}

	if dryRun := os.Getenv("FIELDWATCH_DRY_RUN"); dryRun != "" {
		cfg.Notify.DryRun = parseBool(dryRun)
	}
	if channel := os.Getenv("FIELDWATCH_CHANNEL"); channel != "" {
		cfg.Notify.Channel = channel
	}

	if pageSize := os.Getenv("FIELDWATCH_PAGE_SIZE"); pageSize != "" {
		if size, err := parsePositiveInt(pageSize); err == nil {
			cfg.Defaults.PageSize = size
		}
	}
}

// expandPath expands ~ and environment variables in paths
func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home := os.Getenv("HOME")
		if home == "" {
			home = os.Getenv("USERPROFILE") // Windows
		}
		path = filepath.Join(home, path[2:])
	}
	return os.ExpandEnv(path)
}

// parsePositiveInt parses a string to a positive integer
func parsePositiveInt(s string) (int, error) {
	var i int
	_, err := fmt.Sscanf(s, "%d", &i)
	if err != nil {
		return 0, fmt.Errorf("failed to parse integer from '%s': %w", s, err)
	}
	if i <= 0 {
		return 0, fmt.Errorf("value must be positive, got: %d", i)
	}
	return i, nil
}

// parseBool parses various boolean representations
func parseBool(s string) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	return s == "true" || s == "yes" || s == "1" || s == "on"
}

// ProjectRef builds the board reference from the project configuration.
// Validate must have succeeded first.
func (c *Config) ProjectRef() github.ProjectRef {
	ownerType, _ := github.ParseOwnerType(c.Project.OwnerType)
	return github.ProjectRef{
		Owner:     c.Project.Owner,
		OwnerType: ownerType,
		Number:    c.Project.Number,
	}
}

// Validate checks if the configuration contains valid values. It ensures the
// project is fully identified, every declared field has a supported type, and
// the notification settings name known strategies. This should be called
// after loading configuration to catch invalid settings early.
func (c *Config) Validate() error {
	if c.Project.Owner == "" {
		return fmt.Errorf("project owner cannot be empty: %w", fwerrors.ErrConfig)
	}
	if _, err := github.ParseOwnerType(c.Project.OwnerType); err != nil {
		return err
	}
	if c.Project.Number <= 0 {
		return fmt.Errorf("project number must be positive, got %d: %w", c.Project.Number, fwerrors.ErrConfig)
	}

	if c.GitHub.GraphQLEndpoint == "" {
		return fmt.Errorf("GitHub GraphQL endpoint cannot be empty: %w", fwerrors.ErrConfig)
	}

	if len(c.Fields) == 0 {
		return fmt.Errorf("at least one required field must be declared: %w", fwerrors.ErrConfig)
	}
	seen := make(map[string]bool, len(c.Fields))
	for _, f := range c.Fields {
		if f.Name == "" {
			return fmt.Errorf("field name cannot be empty: %w", fwerrors.ErrConfig)
		}
		if seen[f.Name] {
			return fmt.Errorf("field %q declared twice: %w", f.Name, fwerrors.ErrConfig)
		}
		seen[f.Name] = true
		if _, err := github.ParseFieldType(f.Type); err != nil {
			return fmt.Errorf("field %q: %w", f.Name, err)
		}
	}

	switch c.Notify.Channel {
	case "comment", "email":
	default:
		return fmt.Errorf("unknown notification channel %q: %w", c.Notify.Channel, fwerrors.ErrConfig)
	}
	switch c.Notify.Dedup {
	case "comments", "ledger":
	default:
		return fmt.Errorf("unknown dedup strategy %q: %w", c.Notify.Dedup, fwerrors.ErrConfig)
	}

	if c.Defaults.PageSize <= 0 {
		return fmt.Errorf("page size must be positive, got %d: %w", c.Defaults.PageSize, fwerrors.ErrConfig)
	}
	if c.Defaults.PageSize > 100 {
		return fmt.Errorf("page size %d exceeds GitHub API limit of 100: %w", c.Defaults.PageSize, fwerrors.ErrConfig)
	}

	return nil
}
