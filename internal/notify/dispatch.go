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
	"log/slog"

	fwerrors "github.com/sirseerhq/sirseer-fieldwatch/internal/errors"
	"github.com/sirseerhq/sirseer-fieldwatch/internal/github"
)

// Outcome is the result of one notification attempt.
type Outcome string

// Notification outcomes.
const (
	// OutcomePosted means the comment mutation was issued successfully.
	OutcomePosted Outcome = "posted"

	// OutcomeSuppressed means no comment was needed: either the missing-field
	// list was empty or a prior notification already exists.
	OutcomeSuppressed Outcome = "suppressed"

	// OutcomeDryRun means the comment was built but the mutation was skipped
	// because the run is a dry run.
	OutcomeDryRun Outcome = "dry_run_skipped"

	// OutcomeFailed means the comment mutation was attempted and failed.
	OutcomeFailed Outcome = "failed"
)

// Channel selects how notifications are delivered.
type Channel string

// Notification channels. Email is recognized in configuration but has no
// implementation yet; selecting it fails at dispatcher construction.
const (
	ChannelComment Channel = "comment"
	ChannelEmail   Channel = "email"
)

// Dispatcher delivers a missing-fields notification for one issue.
type Dispatcher interface {
	// Notify builds and delivers the notification. An empty missingFields
	// slice returns OutcomeSuppressed without any network call.
	Notify(ctx context.Context, issue *github.Issue, missingFields []string) (Outcome, error)
}

// NewDispatcher constructs the dispatcher for the configured channel.
func NewDispatcher(channel Channel, client github.Client, dryRun bool, logger *slog.Logger) (Dispatcher, error) {
	switch channel {
	case ChannelComment:
		return NewCommentDispatcher(client, dryRun, logger), nil
	case ChannelEmail:
		return nil, fmt.Errorf("notification channel %q is declared but not implemented: %w", channel, fwerrors.ErrConfig)
	default:
		return nil, fmt.Errorf("unsupported notification channel %q: %w", channel, fwerrors.ErrConfig)
	}
}

// CommentDispatcher posts notifications as issue comments.
type CommentDispatcher struct {
	client github.Client
	dryRun bool
	logger *slog.Logger
}

// NewCommentDispatcher creates a comment dispatcher. Under dryRun the
// dispatcher builds and logs every comment but never calls the mutation.
func NewCommentDispatcher(client github.Client, dryRun bool, logger *slog.Logger) *CommentDispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &CommentDispatcher{client: client, dryRun: dryRun, logger: logger}
}

// Notify implements Dispatcher.
func (d *CommentDispatcher) Notify(ctx context.Context, issue *github.Issue, missingFields []string) (Outcome, error) {
	if len(missingFields) == 0 {
		return OutcomeSuppressed, nil
	}

	body := BuildComment(issue.Assignees, missingFields)
	if len(issue.Assignees) == 0 {
		d.logger.Info("no assignees on issue, posting unaddressed comment",
			"issue", issue.Number)
	}

	if d.dryRun {
		d.logger.Info("dry run, comment not posted",
			"issue", issue.Number, "comment", body)
		return OutcomeDryRun, nil
	}

	if err := d.client.AddIssueComment(ctx, issue.ID, body); err != nil {
		return OutcomeFailed, fmt.Errorf("issue #%d: %w", issue.Number, err)
	}

	d.logger.Info("comment added to issue",
		"issue", issue.Number, "issue_id", issue.ID, "missing_fields", missingFields)
	return OutcomePosted, nil
}
