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

// Package config types define the configuration structures used throughout
// fieldwatch. These types represent settings that can be loaded from YAML
// configuration files, environment variables, or command-line flags.
package config

// Config represents the complete configuration for fieldwatch.
// It consolidates settings from various sources and provides a unified
// interface for accessing configuration values throughout the application.
type Config struct {
	GitHub       GitHubConfig      `yaml:"github"`
	Project      ProjectConfig     `yaml:"project"`
	Notify       NotifyConfig      `yaml:"notify"`
	Fields       []FieldConfig     `yaml:"fields"`
	DisplayNames map[string]string `yaml:"display_names"`
	IgnoreFields []string          `yaml:"ignore_fields"`
	Defaults     DefaultsConfig    `yaml:"defaults"`
}

// GitHubConfig contains GitHub-specific settings including the GraphQL
// endpoint and authentication configuration. This allows easy configuration
// for GitHub Enterprise deployments by specifying a custom endpoint.
type GitHubConfig struct {
	GraphQLEndpoint string `yaml:"graphql_endpoint"`
	TokenEnv        string `yaml:"token_env"`
}

// ProjectConfig identifies the project board to audit. OwnerType selects
// the GraphQL query root: "organization" or "user".
type ProjectConfig struct {
	Owner     string `yaml:"owner"`
	OwnerType string `yaml:"owner_type"`
	Number    int    `yaml:"number"`
}

// NotifyConfig controls how notifications are delivered and deduplicated.
// Channel is "comment"; "email" is reserved and rejected until implemented.
// Dedup selects the strategy: "comments" scans issue comment history,
// "ledger" consults a local file under LedgerDir.
type NotifyConfig struct {
	Channel   string `yaml:"channel"`
	DryRun    bool   `yaml:"dry_run"`
	Dedup     string `yaml:"dedup"`
	LedgerDir string `yaml:"ledger_dir"`
}

// FieldConfig declares one required field on the board. Type must be one of
// the supported field types; DisplayName, when set, replaces Name in
// notification comments.
type FieldConfig struct {
	Name        string `yaml:"name"`
	Type        string `yaml:"type"`
	DisplayName string `yaml:"display_name"`
}

// DefaultsConfig contains settings that apply to all fetch operations unless
// overridden by command-line flags.
type DefaultsConfig struct {
	PageSize int `yaml:"page_size"`
}

// DefaultConfig returns a Config with the standard required-field set and
// defaults suitable for public GitHub.com usage. The ignore list names board
// columns kept around for historical data that must never be audited.
func DefaultConfig() *Config {
	return &Config{
		GitHub: GitHubConfig{
			GraphQLEndpoint: "https://api.github.com/graphql",
			TokenEnv:        "GITHUB_TOKEN",
		},
		Project: ProjectConfig{
			OwnerType: "organization",
		},
		Notify: NotifyConfig{
			Channel: "comment",
			Dedup:   "comments",
		},
		Fields: []FieldConfig{
			{Name: "Status", Type: "single_select"},
			{Name: "Due Date", Type: "date"},
			{Name: "Time Spent", Type: "text"},
			{Name: "Release", Type: "single_select"},
			{Name: "Estimate", Type: "text"},
			{Name: "Priority", Type: "single_select"},
			{Name: "Size", Type: "single_select"},
			{Name: "Week", Type: "iteration"},
		},
		DisplayNames: make(map[string]string),
		IgnoreFields: []string{
			"Time Spend OLD(DO NOT SET)",
			"Estimate OLD(DO NOT SET)",
		},
		Defaults: DefaultsConfig{
			PageSize: 100,
		},
	}
}
