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

// Package errors defines sentinel errors for consistent error handling across the application.
// These errors map to specific exit codes in the CLI for proper scripting support.
package errors

import "errors"

// Sentinel errors for consistent error handling and exit code mapping
var (
	// ErrInvalidToken indicates GitHub authentication failed.
	// Maps to exit code 2.
	ErrInvalidToken = errors.New("invalid github token")

	// ErrProjectNotFound indicates the specified project board does not exist
	// or is not accessible with the provided token.
	// Maps to exit code 2.
	ErrProjectNotFound = errors.New("project not found")

	// ErrRateLimit indicates GitHub API rate limit has been exceeded.
	// Maps to exit code 2.
	ErrRateLimit = errors.New("github rate limit exceeded")

	// ErrNetworkFailure indicates a network connection problem.
	// Maps to exit code 3.
	ErrNetworkFailure = errors.New("network connection failed")

	// ErrGraphQL indicates the GraphQL endpoint returned an errors array
	// that could not be classified more specifically.
	// Maps to exit code 1.
	ErrGraphQL = errors.New("graphql query failed")

	// ErrConfig indicates a required configuration value is missing or invalid.
	// Fatal at startup, before any fetch. Maps to exit code 2.
	ErrConfig = errors.New("invalid configuration")

	// ErrUnsupportedFieldType indicates a required field declares a type with
	// no classification rule. A new field type must be classified explicitly,
	// never guessed. Fatal for that field's pass.
	ErrUnsupportedFieldType = errors.New("unsupported field type")

	// ErrNotify indicates a comment-creation mutation failed. Non-fatal:
	// the affected issue is skipped and the run continues.
	ErrNotify = errors.New("notification failed")
)
