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
	"io"
	"net/http"
	"time"

	"github.com/shurcooL/graphql"
	fwerrors "github.com/sirseerhq/sirseer-fieldwatch/internal/errors"
	"github.com/sirseerhq/sirseer-fieldwatch/internal/giterror"
	"github.com/sirseerhq/sirseer-fieldwatch/pkg/version"
)

// GraphQLClient implements the GitHub Client interface using GraphQL API.
// It provides efficient access to GitHub's data with support for pagination,
// error handling, and safety features like timeouts and response size limits.
type GraphQLClient struct {
	client    *graphql.Client
	token     string
	inspector giterror.Inspector
}

// NewGraphQLClient creates a new GitHub GraphQL client with the provided token and endpoint.
// The client is configured with:
//   - Authentication via the provided token
//   - Custom GraphQL endpoint URL (e.g., for GitHub Enterprise)
//   - Automatic timeout handling (set at CLI level)
//   - Response size limiting to prevent memory issues
//   - User-Agent header for API compliance
//   - Optimized connection pooling for API performance
func NewGraphQLClient(token string, endpoint string) *GraphQLClient {
	// Create optimized transport with connection pooling
	transport := &http.Transport{
		MaxIdleConns:        10,
		MaxIdleConnsPerHost: 10, // Increased from default 2
		MaxConnsPerHost:     10,
		IdleConnTimeout:     90 * time.Second,
		DisableCompression:  false,
		ForceAttemptHTTP2:   true, // Ensure HTTP/2 is used
	}

	httpClient := &http.Client{
		Transport: &authTransport{
			token: token,
			base:  transport,
		},
	}

	client := graphql.NewClient(endpoint, httpClient)

	return &GraphQLClient{
		client:    client,
		token:     token,
		inspector: giterror.NewInspector(),
	}
}

// pageInfo is the shared pagination block of every connection we query.
type pageInfo struct {
	EndCursor   graphql.String
	HasNextPage graphql.Boolean
}

// itemFieldValue mirrors the fieldValueByName union. All four value fragments
// are requested on every query; only the one matching the field's declared
// type is populated. TypeName distinguishes a present value from a null one.
type itemFieldValue struct {
	TypeName     graphql.String `graphql:"__typename"`
	SingleSelect struct {
		OptionID graphql.String `graphql:"optionId"`
		Name     graphql.String
	} `graphql:"... on ProjectV2ItemFieldSingleSelectValue"`
	Date struct {
		Date graphql.String
	} `graphql:"... on ProjectV2ItemFieldDateValue"`
	Text struct {
		Text graphql.String
	} `graphql:"... on ProjectV2ItemFieldTextValue"`
	Iteration struct {
		IterationID graphql.String `graphql:"iterationId"`
		Title       graphql.String
	} `graphql:"... on ProjectV2ItemFieldIterationValue"`
}

// projectItemNode mirrors one items(...) node. Content is only expanded for
// Issue; draft notes and pull requests leave the fragment empty.
type projectItemNode struct {
	ID               graphql.String
	FieldValueByName itemFieldValue `graphql:"fieldValueByName(name: $field)"`
	Content          struct {
		Issue struct {
			ID        graphql.String
			Number    graphql.Int
			Title     graphql.String
			URL       graphql.String `graphql:"url"`
			State     graphql.String
			Assignees struct {
				Nodes []struct {
					Login graphql.String
					Name  graphql.String
					Email graphql.String
				}
			} `graphql:"assignees(first: 20)"`
		} `graphql:"... on Issue"`
	}
}

// itemsConnection is the items(...) connection on a ProjectV2.
type itemsConnection struct {
	Nodes    []projectItemNode
	PageInfo pageInfo
}

// FetchProjectItems fetches a page of items from the specified project board,
// requesting the value of one named field per item. It supports cursor-based
// pagination via the opts.After parameter and configurable page sizes through
// opts.PageSize. The query root differs between organization- and user-owned
// projects, so two static query shapes are maintained.
func (c *GraphQLClient) FetchProjectItems(ctx context.Context, ref ProjectRef, field FieldQuery, opts FetchOptions) (*ItemPage, error) {
	variables := map[string]interface{}{
		"login":  graphql.String(ref.Owner),
		"number": graphql.Int(int32(ref.Number)), // #nosec G115 - validated at config time
		"field":  graphql.String(field.Name),
		"first":  graphql.Int(int32(opts.effectivePageSize())), // #nosec G115 - capped at 100
		"after":  (*graphql.String)(nil),
	}
	if opts.After != "" {
		variables["after"] = graphql.NewString(graphql.String(opts.After))
	}

	var conn itemsConnection
	var err error
	switch ref.OwnerType {
	case OwnerTypeOrganization:
		var query struct {
			Organization struct {
				ProjectV2 struct {
					Items itemsConnection `graphql:"items(first: $first, after: $after)"`
				} `graphql:"projectV2(number: $number)"`
			} `graphql:"organization(login: $login)"`
		}
		err = c.client.Query(ctx, &query, variables)
		conn = query.Organization.ProjectV2.Items
	case OwnerTypeUser:
		var query struct {
			User struct {
				ProjectV2 struct {
					Items itemsConnection `graphql:"items(first: $first, after: $after)"`
				} `graphql:"projectV2(number: $number)"`
			} `graphql:"user(login: $login)"`
		}
		err = c.client.Query(ctx, &query, variables)
		conn = query.User.ProjectV2.Items
	default:
		return nil, fmt.Errorf("owner type %q: %w", ref.OwnerType, fwerrors.ErrConfig)
	}
	if err != nil {
		return nil, c.mapError(err, ref.String())
	}

	page := &ItemPage{
		HasNextPage: bool(conn.PageInfo.HasNextPage),
		EndCursor:   string(conn.PageInfo.EndCursor),
		Items:       make([]ProjectItem, 0, len(conn.Nodes)),
	}
	for i := range conn.Nodes {
		page.Items = append(page.Items, convertItemNode(&conn.Nodes[i], field))
	}

	return page, nil
}

// convertItemNode converts a GraphQL item node to our domain model.
func convertItemNode(node *projectItemNode, field FieldQuery) ProjectItem {
	item := ProjectItem{
		ID:         string(node.ID),
		FieldName:  field.Name,
		FieldValue: convertFieldValue(&node.FieldValueByName, field.Type),
	}

	// An empty issue ID means the content is a draft note or otherwise not
	// an issue; leave Issue nil so the item is dropped before evaluation.
	if node.Content.Issue.ID == "" {
		return item
	}

	issue := &Issue{
		ID:     string(node.Content.Issue.ID),
		Number: int(node.Content.Issue.Number),
		Title:  string(node.Content.Issue.Title),
		URL:    string(node.Content.Issue.URL),
		State:  IssueState(node.Content.Issue.State),
	}
	issue.Assignees = make([]Assignee, 0, len(node.Content.Issue.Assignees.Nodes))
	for _, a := range node.Content.Issue.Assignees.Nodes {
		issue.Assignees = append(issue.Assignees, Assignee{
			Login: string(a.Login),
			Name:  string(a.Name),
			Email: string(a.Email),
		})
	}
	item.Issue = issue

	return item
}

// convertFieldValue extracts the fragment matching the field's declared type.
// A null fieldValueByName (no __typename) converts to nil, meaning unset.
func convertFieldValue(v *itemFieldValue, t FieldType) *FieldValue {
	if v.TypeName == "" {
		return nil
	}

	fv := &FieldValue{Type: t}
	switch t {
	case FieldTypeSingleSelect:
		fv.OptionID = string(v.SingleSelect.OptionID)
		fv.OptionName = string(v.SingleSelect.Name)
	case FieldTypeDate:
		fv.Date = string(v.Date.Date)
	case FieldTypeText:
		fv.Text = string(v.Text.Text)
	case FieldTypeIteration:
		fv.IterationID = string(v.Iteration.IterationID)
		fv.IterationTitle = string(v.Iteration.Title)
	}
	return fv
}

// mapError maps GraphQL errors to our domain errors with actionable messages
func (c *GraphQLClient) mapError(err error, subject string) error {
	if err == nil {
		return nil
	}

	// Use the inspector to classify errors
	// Check rate limit first, as 403 can be both auth and rate limit
	if c.inspector.IsRateLimitError(err) {
		return fmt.Errorf("GitHub API rate limit exceeded. Please wait before retrying: %w", fwerrors.ErrRateLimit)
	}

	if c.inspector.IsAuthError(err) {
		return fmt.Errorf("GitHub API authentication failed. Please provide a valid token via --token flag or GITHUB_TOKEN environment variable: %w", fwerrors.ErrInvalidToken)
	}

	if c.inspector.IsNotFoundError(err) {
		return fmt.Errorf("%s not found. Please check the owner, owner type, project number, and your access permissions: %w", subject, fwerrors.ErrProjectNotFound)
	}

	if c.inspector.IsNetworkError(err) {
		return fmt.Errorf("network error connecting to GitHub API. Please check your internet connection and try again: %w", fwerrors.ErrNetworkFailure)
	}

	// Generic error: the server answered but the query failed
	return fmt.Errorf("%s: %v: %w", subject, err, fwerrors.ErrGraphQL)
}

// limitedReader wraps a ReadCloser with a size limit to prevent excessive memory usage.
type limitedReader struct {
	io.ReadCloser
	limit int64
	read  int64
}

// Read implements io.Reader with size limit enforcement.
func (lr *limitedReader) Read(p []byte) (n int, err error) {
	if lr.read >= lr.limit {
		return 0, fmt.Errorf("response size exceeded limit of %d bytes", lr.limit)
	}

	// Calculate how much we can read
	remaining := lr.limit - lr.read
	if int64(len(p)) > remaining {
		p = p[:remaining]
	}

	n, err = lr.ReadCloser.Read(p)
	lr.read += int64(n)

	return n, err
}

// authTransport adds authentication header and safety limits to HTTP requests
type authTransport struct {
	token string
	base  http.RoundTripper
}

// RoundTrip implements http.RoundTripper
func (t *authTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	// Clone the request to avoid modifying the original
	req = req.Clone(req.Context())

	// Add auth header
	req.Header.Set("Authorization", "Bearer "+t.token)

	// Add user agent for identification
	req.Header.Set("User-Agent", fmt.Sprintf("sirseer-fieldwatch/%s", version.Version))

	// Execute the request
	resp, err := t.base.RoundTrip(req)
	if err != nil {
		return nil, err
	}

	// Apply response size limit (10MB)
	if resp.Body != nil {
		resp.Body = &limitedReader{
			ReadCloser: resp.Body,
			limit:      10 * 1024 * 1024, // 10MB
		}
	}

	return resp, nil
}
