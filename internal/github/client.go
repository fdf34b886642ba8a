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

package github

import "context"

// Client defines the interface for interacting with GitHub's API.
// This interface allows for easy mocking in tests.
type Client interface {
	// FetchProjectItems retrieves a page of items from the specified project
	// board, requesting the value of one named field per item. It supports
	// cursor-based pagination through the opts.After parameter to fetch
	// subsequent pages. The page size can be configured via opts.PageSize.
	FetchProjectItems(ctx context.Context, ref ProjectRef, field FieldQuery, opts FetchOptions) (*ItemPage, error)

	// FetchIssueComments retrieves a page of comments for the issue with the
	// given node ID, following the same cursor discipline as item fetches.
	FetchIssueComments(ctx context.Context, issueID string, opts FetchOptions) (*CommentPage, error)

	// AddIssueComment posts a comment on the issue with the given node ID.
	AddIssueComment(ctx context.Context, issueID, body string) error
}
