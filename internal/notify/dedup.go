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

package notify

import (
	"context"
	"fmt"
	"strings"

	"github.com/sirseerhq/sirseer-fieldwatch/internal/github"
)

// Deduplicator decides whether an issue has already received a notification
// carrying the given anchor phrase. Implementations other than the
// comment-history scan (for example a local ledger) can substitute without
// touching the dispatcher.
type Deduplicator interface {
	// AlreadyNotified reports whether a prior notification with the anchor
	// phrase exists for the issue.
	AlreadyNotified(ctx context.Context, issue *github.Issue, anchor string) (bool, error)

	// MarkNotified records that a notification was posted. Implementations
	// whose durable record is the posted comment itself treat this as a
	// no-op.
	MarkNotified(ctx context.Context, issue *github.Issue, anchor string) error
}

// CommentScan is the default Deduplicator. It pages through the issue's full
// comment history and checks each body for the anchor phrase as a substring.
// The posted comment is the durable record, so the system keeps no state of
// its own across runs.
type CommentScan struct {
	client   github.Client
	pageSize int
}

// NewCommentScan creates a comment-history deduplicator backed by the client.
func NewCommentScan(client github.Client) *CommentScan {
	return &CommentScan{client: client, pageSize: 100}
}

// AlreadyNotified implements Deduplicator by scanning every comment on the
// issue. A comment attributed to any author counts; the anchor phrase is
// specific enough that a human quoting it means the notification has been
// seen.
func (s *CommentScan) AlreadyNotified(ctx context.Context, issue *github.Issue, anchor string) (bool, error) {
	cursor := ""
	for {
		page, err := s.client.FetchIssueComments(ctx, issue.ID, github.FetchOptions{
			PageSize: s.pageSize,
			After:    cursor,
		})
		if err != nil {
			return false, fmt.Errorf("scanning comments on issue #%d: %w", issue.Number, err)
		}

		for _, c := range page.Comments {
			if strings.Contains(c.Body, anchor) {
				return true, nil
			}
		}

		if !page.HasNextPage {
			return false, nil
		}
		cursor = page.EndCursor
	}
}

// MarkNotified implements Deduplicator. The comment posted by the dispatcher
// is itself the record, so there is nothing to persist.
func (s *CommentScan) MarkNotified(ctx context.Context, issue *github.Issue, anchor string) error {
	return nil
}
