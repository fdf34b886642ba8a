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

// Package github provides a client for interacting with GitHub's GraphQL API
// to read Projects (v2) board data and post issue comments. It abstracts the
// complexity of GraphQL queries and provides a simple interface for paging
// through project items and issue comments with consistent error handling.
//
// The package includes:
//   - A Client interface for fetching project items, issue comments, and
//     creating issue comments
//   - A GraphQL implementation using the shurcooL/graphql library
//   - Mock client for testing
//   - Type definitions for project items, field values, issues, and comments
//
// Basic usage:
//
//	client := github.NewGraphQLClient("your-github-token", "https://api.github.com/graphql")
//	page, err := client.FetchProjectItems(ctx, ref, github.FieldQuery{
//	    Name: "Status",
//	    Type: github.FieldTypeSingleSelect,
//	}, github.FetchOptions{PageSize: 100})
//	if err != nil {
//	    // Handle error
//	}
//	for _, item := range page.Items {
//	    // Process project item
//	}
package github
