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

// Package main implements the fieldwatch command-line interface.
// This tool audits a GitHub Projects V2 board for closed issues that are
// missing required custom field values and notifies the assignees with an
// issue comment.
//
// The CLI supports:
//   - Auditing a project board with the default required-field set
//   - Custom field declarations via a YAML configuration file
//   - A dry-run mode that reports what would be posted without posting
//   - NDJSON audit reports to stdout or a file
//   - GitHub token authentication via flag or environment variable
//   - Graceful error handling with appropriate exit codes
//
// Usage:
//
//	fieldwatch audit [flags]
//
// Example:
//
//	export GITHUB_TOKEN=your_token
//	fieldwatch audit --owner acme --project 7 --dry-run
//
// Exit codes:
//   - 0: Success
//   - 1: General error
//   - 2: Authentication/authorization/configuration error
//   - 3: Network error
package main
