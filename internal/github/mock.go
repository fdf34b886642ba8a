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

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	fwerrors "github.com/sirseerhq/sirseer-fieldwatch/internal/errors"
)

// MockClient is a mock implementation of the GitHub Client interface for testing.
// Item pages are scripted per field name; comments live in a mutable store so
// that posted comments become visible to subsequent comment fetches, which is
// what makes idempotence testable without a real server.
type MockClient struct {
	// itemPages holds scripted pages keyed by field name.
	itemPages map[string][][]ProjectItem

	// comments holds comment history keyed by issue node ID.
	comments map[string][]Comment

	// Errors to return from each method
	ItemsError    error
	CommentsError error
	AddError      error

	// Behavior flags
	ShouldFailAuth    bool
	ShouldFailNetwork bool

	// Track calls for verification
	ItemsCalls    int
	CommentsCalls int
	AddCalls      int
	Posted        []PostedComment
	LastRef       ProjectRef
	LastField     FieldQuery
	LastOpts      FetchOptions
}

// PostedComment records one AddIssueComment call for assertions.
type PostedComment struct {
	IssueID string
	Body    string
}

// NewMockClient creates a new mock client with empty stores.
func NewMockClient() *MockClient {
	return &MockClient{
		itemPages: make(map[string][][]ProjectItem),
		comments:  make(map[string][]Comment),
	}
}

// SetItemPages scripts the pages returned for a field, in order. Page cursors
// and hasNextPage flags are derived from the position in the sequence.
func (m *MockClient) SetItemPages(field string, pages ...[]ProjectItem) {
	m.itemPages[field] = pages
}

// SetComments seeds the comment history for an issue.
func (m *MockClient) SetComments(issueID string, comments ...Comment) {
	m.comments[issueID] = comments
}

// FetchProjectItems implements the Client interface.
func (m *MockClient) FetchProjectItems(ctx context.Context, ref ProjectRef, field FieldQuery, opts FetchOptions) (*ItemPage, error) {
	m.ItemsCalls++
	m.LastRef = ref
	m.LastField = field
	m.LastOpts = opts

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	if err := m.injectedError(m.ItemsError); err != nil {
		return nil, err
	}

	pages := m.itemPages[field.Name]
	idx, err := cursorIndex(opts.After)
	if err != nil {
		return nil, err
	}
	if idx >= len(pages) {
		return &ItemPage{}, nil
	}

	return &ItemPage{
		Items:       pages[idx],
		HasNextPage: idx < len(pages)-1,
		EndCursor:   fmt.Sprintf("cursor:%d", idx+1),
	}, nil
}

// FetchIssueComments implements the Client interface. The stored comment
// slice is split into pages of opts.PageSize.
func (m *MockClient) FetchIssueComments(ctx context.Context, issueID string, opts FetchOptions) (*CommentPage, error) {
	m.CommentsCalls++

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	if err := m.injectedError(m.CommentsError); err != nil {
		return nil, err
	}

	all := m.comments[issueID]
	size := opts.effectivePageSize()
	start, err := cursorIndex(opts.After)
	if err != nil {
		return nil, err
	}

	end := start + size
	if end > len(all) {
		end = len(all)
	}
	if start > len(all) {
		start = len(all)
	}

	return &CommentPage{
		Comments:    all[start:end],
		HasNextPage: end < len(all),
		EndCursor:   fmt.Sprintf("cursor:%d", end),
	}, nil
}

// AddIssueComment implements the Client interface. The posted comment is
// appended to the issue's history so later fetches observe it.
func (m *MockClient) AddIssueComment(ctx context.Context, issueID, body string) error {
	m.AddCalls++

	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	if m.AddError != nil {
		return m.AddError
	}

	m.Posted = append(m.Posted, PostedComment{IssueID: issueID, Body: body})
	m.comments[issueID] = append(m.comments[issueID], Comment{
		Body:      body,
		Author:    "fieldwatch[bot]",
		CreatedAt: time.Now().UTC(),
	})
	return nil
}

// injectedError returns the first configured failure, if any.
func (m *MockClient) injectedError(methodErr error) error {
	if m.ShouldFailAuth {
		return fmt.Errorf("authentication failed: %w", fwerrors.ErrInvalidToken)
	}
	if m.ShouldFailNetwork {
		return fmt.Errorf("network timeout: %w", fwerrors.ErrNetworkFailure)
	}
	return methodErr
}

// cursorIndex decodes the synthetic "cursor:N" continuation tokens the mock
// hands out. An empty cursor starts from the beginning.
func cursorIndex(after string) (int, error) {
	if after == "" {
		return 0, nil
	}
	raw, ok := strings.CutPrefix(after, "cursor:")
	if !ok {
		return 0, fmt.Errorf("malformed mock cursor %q", after)
	}
	idx, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("malformed mock cursor %q: %w", after, err)
	}
	return idx, nil
}
