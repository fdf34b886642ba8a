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
	"time"

	"github.com/shurcooL/graphql"
	fwerrors "github.com/sirseerhq/sirseer-fieldwatch/internal/errors"
)

// AddCommentInput is the input object for GitHub's addComment mutation.
type AddCommentInput struct {
	// SubjectID is the node ID of the issue to comment on.
	SubjectID graphql.ID `json:"subjectId"`
	// Body is the comment text.
	Body graphql.String `json:"body"`
}

// FetchIssueComments fetches a page of comments for the issue with the given
// node ID. It supports cursor-based pagination via the opts.After parameter.
// Comment history is the sole durable record of past notifications, so this
// must page to exhaustion before a dedup decision is trustworthy.
func (c *GraphQLClient) FetchIssueComments(ctx context.Context, issueID string, opts FetchOptions) (*CommentPage, error) {
	var query struct {
		Node struct {
			Issue struct {
				Comments struct {
					Nodes []struct {
						Body      graphql.String
						CreatedAt time.Time
						Author    struct {
							Login graphql.String
						}
					}
					PageInfo pageInfo
				} `graphql:"comments(first: $first, after: $after)"`
			} `graphql:"... on Issue"`
		} `graphql:"node(id: $id)"`
	}

	variables := map[string]interface{}{
		"id":    graphql.ID(issueID),
		"first": graphql.Int(int32(opts.effectivePageSize())), // #nosec G115 - capped at 100
		"after": (*graphql.String)(nil),
	}
	if opts.After != "" {
		variables["after"] = graphql.NewString(graphql.String(opts.After))
	}

	if err := c.client.Query(ctx, &query, variables); err != nil {
		return nil, c.mapError(err, fmt.Sprintf("issue %s comments", issueID))
	}

	comments := query.Node.Issue.Comments
	page := &CommentPage{
		HasNextPage: bool(comments.PageInfo.HasNextPage),
		EndCursor:   string(comments.PageInfo.EndCursor),
		Comments:    make([]Comment, 0, len(comments.Nodes)),
	}
	for _, node := range comments.Nodes {
		page.Comments = append(page.Comments, Comment{
			Body:      string(node.Body),
			Author:    string(node.Author.Login),
			CreatedAt: node.CreatedAt,
		})
	}

	return page, nil
}

// AddIssueComment posts a comment on the issue with the given node ID.
// Failures are wrapped as notification errors so callers can skip the issue
// and continue the run.
func (c *GraphQLClient) AddIssueComment(ctx context.Context, issueID, body string) error {
	var mutation struct {
		AddComment struct {
			CommentEdge struct {
				Node struct {
					ID graphql.String
				}
			}
		} `graphql:"addComment(input: $input)"`
	}

	variables := map[string]interface{}{
		"input": AddCommentInput{
			SubjectID: graphql.ID(issueID),
			Body:      graphql.String(body),
		},
	}

	if err := c.client.Mutate(ctx, &mutation, variables); err != nil {
		mapped := c.mapError(err, fmt.Sprintf("issue %s", issueID))
		return fmt.Errorf("add comment: %v: %w", mapped, fwerrors.ErrNotify)
	}

	return nil
}
