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
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	fwerrors "github.com/sirseerhq/sirseer-fieldwatch/internal/errors"
)

// itemsResponse builds a GraphQL data payload for an organization-owned
// project items query.
func itemsResponse(root string, nodes []map[string]interface{}, endCursor string, hasNext bool) map[string]interface{} {
	return map[string]interface{}{
		"data": map[string]interface{}{
			root: map[string]interface{}{
				"projectV2": map[string]interface{}{
					"items": map[string]interface{}{
						"nodes": nodes,
						"pageInfo": map[string]interface{}{
							"endCursor":   endCursor,
							"hasNextPage": hasNext,
						},
					},
				},
			},
		},
	}
}

func issueNode(id string, number int, state string, logins ...string) map[string]interface{} {
	assignees := make([]map[string]interface{}, 0, len(logins))
	for _, l := range logins {
		assignees = append(assignees, map[string]interface{}{
			"login": l,
			"name":  "",
			"email": "",
		})
	}
	return map[string]interface{}{
		"id":     id,
		"number": number,
		"title":  "issue " + id,
		"url":    "https://github.com/acme/repo/issues/" + id,
		"state":  state,
		"assignees": map[string]interface{}{
			"nodes": assignees,
		},
	}
}

func newItemsServer(t *testing.T, response interface{}, statusCode int) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST request, got %s", r.Method)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-token" {
			t.Errorf("Authorization header = %q, want bearer token", got)
		}
		if statusCode != http.StatusOK {
			w.WriteHeader(statusCode)
			_, _ = w.Write([]byte(http.StatusText(statusCode)))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(response)
	}))
}

func TestGraphQLClient_FetchProjectItems(t *testing.T) {
	nodes := []map[string]interface{}{
		{
			// Closed issue with a populated single-select value
			"id": "ITEM_1",
			"fieldValueByName": map[string]interface{}{
				"__typename": "ProjectV2ItemFieldSingleSelectValue",
				"optionId":   "opt-1",
				"name":       "Done",
			},
			"content": issueNode("I_1", 41, "CLOSED", "ana"),
		},
		{
			// Closed issue with the field unset
			"id":               "ITEM_2",
			"fieldValueByName": nil,
			"content":          issueNode("I_2", 42, "CLOSED", "ana", "bob"),
		},
		{
			// Draft note: content carries no Issue fields
			"id":               "ITEM_3",
			"fieldValueByName": nil,
			"content":          map[string]interface{}{},
		},
	}

	server := newItemsServer(t, itemsResponse("organization", nodes, "cursor-abc", true), http.StatusOK)
	defer server.Close()

	client := NewGraphQLClient("test-token", server.URL)
	page, err := client.FetchProjectItems(context.Background(),
		ProjectRef{Owner: "acme", OwnerType: OwnerTypeOrganization, Number: 7},
		FieldQuery{Name: "Status", Type: FieldTypeSingleSelect},
		FetchOptions{PageSize: 100},
	)
	if err != nil {
		t.Fatalf("FetchProjectItems() error: %v", err)
	}

	if !page.HasNextPage {
		t.Error("HasNextPage = false, want true")
	}
	if page.EndCursor != "cursor-abc" {
		t.Errorf("EndCursor = %q, want %q", page.EndCursor, "cursor-abc")
	}
	if len(page.Items) != 3 {
		t.Fatalf("len(Items) = %d, want 3", len(page.Items))
	}

	populated := page.Items[0]
	if populated.FieldValue == nil {
		t.Fatal("item 0: FieldValue = nil, want populated")
	}
	if populated.FieldValue.OptionName != "Done" || populated.FieldValue.OptionID != "opt-1" {
		t.Errorf("item 0: FieldValue = %+v, want option Done/opt-1", populated.FieldValue)
	}
	if populated.Issue == nil || populated.Issue.Number != 41 {
		t.Errorf("item 0: Issue = %+v, want issue #41", populated.Issue)
	}

	unset := page.Items[1]
	if unset.FieldValue != nil {
		t.Errorf("item 1: FieldValue = %+v, want nil for null fieldValueByName", unset.FieldValue)
	}
	if unset.Issue == nil || len(unset.Issue.Assignees) != 2 {
		t.Errorf("item 1: Issue = %+v, want two assignees", unset.Issue)
	}
	if unset.Issue != nil && unset.Issue.Assignees[0].Login != "ana" {
		t.Errorf("item 1: first assignee = %q, want assignee order preserved", unset.Issue.Assignees[0].Login)
	}

	draft := page.Items[2]
	if draft.Issue != nil {
		t.Errorf("item 2: Issue = %+v, want nil for draft content", draft.Issue)
	}
}

func TestGraphQLClient_FetchProjectItems_UserOwner(t *testing.T) {
	nodes := []map[string]interface{}{
		{
			"id": "ITEM_1",
			"fieldValueByName": map[string]interface{}{
				"__typename": "ProjectV2ItemFieldDateValue",
				"date":       "2026-03-15",
			},
			"content": issueNode("I_1", 10, "CLOSED"),
		},
	}

	server := newItemsServer(t, itemsResponse("user", nodes, "", false), http.StatusOK)
	defer server.Close()

	client := NewGraphQLClient("test-token", server.URL)
	page, err := client.FetchProjectItems(context.Background(),
		ProjectRef{Owner: "ana", OwnerType: OwnerTypeUser, Number: 2},
		FieldQuery{Name: "Due Date", Type: FieldTypeDate},
		FetchOptions{},
	)
	if err != nil {
		t.Fatalf("FetchProjectItems() error: %v", err)
	}
	if page.HasNextPage {
		t.Error("HasNextPage = true, want false")
	}
	if len(page.Items) != 1 {
		t.Fatalf("len(Items) = %d, want 1", len(page.Items))
	}
	fv := page.Items[0].FieldValue
	if fv == nil || fv.Date != "2026-03-15" {
		t.Errorf("FieldValue = %+v, want date 2026-03-15", fv)
	}
}

func TestGraphQLClient_FetchProjectItems_UnknownOwnerType(t *testing.T) {
	client := NewGraphQLClient("test-token", "http://127.0.0.1:0")
	_, err := client.FetchProjectItems(context.Background(),
		ProjectRef{Owner: "acme", OwnerType: "team", Number: 1},
		FieldQuery{Name: "Status", Type: FieldTypeSingleSelect},
		FetchOptions{},
	)
	if !errors.Is(err, fwerrors.ErrConfig) {
		t.Errorf("error = %v, want ErrConfig", err)
	}
}

func TestGraphQLClient_ErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		statusCode int
		response   interface{}
		sentinel   error
	}{
		{
			name:       "authentication failure",
			statusCode: http.StatusUnauthorized,
			sentinel:   fwerrors.ErrInvalidToken,
		},
		{
			name:       "rate limited",
			statusCode: http.StatusTooManyRequests,
			sentinel:   fwerrors.ErrRateLimit,
		},
		{
			name:       "project not found",
			statusCode: http.StatusOK,
			response: map[string]interface{}{
				"errors": []map[string]interface{}{
					{"message": "Could not resolve to a ProjectV2 with the number 99."},
				},
			},
			sentinel: fwerrors.ErrProjectNotFound,
		},
		{
			name:       "unclassified graphql error",
			statusCode: http.StatusOK,
			response: map[string]interface{}{
				"errors": []map[string]interface{}{
					{"message": "Something went wrong while executing your query."},
				},
			},
			sentinel: fwerrors.ErrGraphQL,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := newItemsServer(t, tt.response, tt.statusCode)
			defer server.Close()

			client := NewGraphQLClient("test-token", server.URL)
			_, err := client.FetchProjectItems(context.Background(),
				ProjectRef{Owner: "acme", OwnerType: OwnerTypeOrganization, Number: 99},
				FieldQuery{Name: "Status", Type: FieldTypeSingleSelect},
				FetchOptions{},
			)
			if err == nil {
				t.Fatal("expected error")
			}
			if !errors.Is(err, tt.sentinel) {
				t.Errorf("error = %v, want sentinel %v", err, tt.sentinel)
			}
		})
	}
}

func TestGraphQLClient_NetworkFailure(t *testing.T) {
	// A server that is immediately closed guarantees a connection error.
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	client := NewGraphQLClient("test-token", server.URL)
	_, err := client.FetchProjectItems(context.Background(),
		ProjectRef{Owner: "acme", OwnerType: OwnerTypeOrganization, Number: 7},
		FieldQuery{Name: "Status", Type: FieldTypeSingleSelect},
		FetchOptions{},
	)
	if !errors.Is(err, fwerrors.ErrNetworkFailure) {
		t.Errorf("error = %v, want ErrNetworkFailure", err)
	}
}

func TestGraphQLClient_FetchIssueComments(t *testing.T) {
	response := map[string]interface{}{
		"data": map[string]interface{}{
			"node": map[string]interface{}{
				"comments": map[string]interface{}{
					"nodes": []map[string]interface{}{
						{
							"body":      "first comment",
							"createdAt": "2026-01-02T15:04:05Z",
							"author":    map[string]interface{}{"login": "ana"},
						},
						{
							"body":      "second comment",
							"createdAt": "2026-01-03T10:00:00Z",
							"author":    map[string]interface{}{"login": "bob"},
						},
					},
					"pageInfo": map[string]interface{}{
						"endCursor":   "c2",
						"hasNextPage": true,
					},
				},
			},
		},
	}

	server := newItemsServer(t, response, http.StatusOK)
	defer server.Close()

	client := NewGraphQLClient("test-token", server.URL)
	page, err := client.FetchIssueComments(context.Background(), "I_1", FetchOptions{PageSize: 2})
	if err != nil {
		t.Fatalf("FetchIssueComments() error: %v", err)
	}

	if len(page.Comments) != 2 {
		t.Fatalf("len(Comments) = %d, want 2", len(page.Comments))
	}
	if page.Comments[0].Body != "first comment" || page.Comments[0].Author != "ana" {
		t.Errorf("comment 0 = %+v, want ana's first comment", page.Comments[0])
	}
	if !page.HasNextPage || page.EndCursor != "c2" {
		t.Errorf("pageInfo = (%v, %q), want (true, c2)", page.HasNextPage, page.EndCursor)
	}
}

func TestGraphQLClient_AddIssueComment(t *testing.T) {
	var gotBody string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Query     string                 `json:"query"`
			Variables map[string]interface{} `json:"variables"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("failed to decode request: %v", err)
		}
		if input, ok := req.Variables["input"].(map[string]interface{}); ok {
			gotBody, _ = input["body"].(string)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":{"addComment":{"commentEdge":{"node":{"id":"IC_1"}}}}}`))
	}))
	defer server.Close()

	client := NewGraphQLClient("test-token", server.URL)
	if err := client.AddIssueComment(context.Background(), "I_1", "@ana please fill the fields"); err != nil {
		t.Fatalf("AddIssueComment() error: %v", err)
	}
	if gotBody != "@ana please fill the fields" {
		t.Errorf("mutation body = %q, want the comment text", gotBody)
	}
}

func TestGraphQLClient_AddIssueComment_Failure(t *testing.T) {
	server := newItemsServer(t, map[string]interface{}{
		"errors": []map[string]interface{}{
			{"message": "Could not resolve to a node with the global id of 'I_bad'"},
		},
	}, http.StatusOK)
	defer server.Close()

	client := NewGraphQLClient("test-token", server.URL)
	err := client.AddIssueComment(context.Background(), "I_bad", "body")
	if !errors.Is(err, fwerrors.ErrNotify) {
		t.Errorf("error = %v, want ErrNotify", err)
	}
}
