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

// Package testutil provides common test helpers for fieldwatch
package testutil

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"
)

// FieldValue is a board field value as stored on the mock server.
// Kind selects which member is meaningful.
type FieldValue struct {
	Kind      string // "single_select", "date", "text", "iteration"
	Option    string
	Date      string
	Text      string
	Iteration string
}

// BoardIssue is an issue backing a board item, including its comment history.
type BoardIssue struct {
	ID        string
	Number    int
	Title     string
	URL       string
	State     string // "OPEN" or "CLOSED"
	Assignees []string
	Comments  []string
}

// BoardItem is one row on the mock board. A nil Issue models a draft note.
// Values maps field names to their set values; an absent key means the field
// is unset on this item.
type BoardItem struct {
	ID     string
	Issue  *BoardIssue
	Values map[string]FieldValue
}

// PostedComment records one addComment mutation received by the server.
type PostedComment struct {
	SubjectID string
	Body      string
}

// BoardServer is an in-process GraphQL server that models a single ProjectV2
// board. It answers the three operations the client issues: the paginated
// items query (organization and user roots), the paginated issue comments
// query, and the addComment mutation. Posted comments are appended to the
// issue's history so dedup behaves like it would against the real API.
type BoardServer struct {
	*httptest.Server

	mu      sync.Mutex
	owner   string
	number  int
	items   []BoardItem
	token   string
	Posted  []PostedComment

	// FailStatus, when nonzero, makes every request answer with that HTTP
	// status code.
	FailStatus int

	// GraphQLError, when set, makes every request answer 200 with a GraphQL
	// errors array containing this message.
	GraphQLError string

	// AddCommentError, when set, makes only addComment mutations answer with
	// a GraphQL errors array containing this message; queries are unaffected.
	AddCommentError string

	// RequestCount tracks how many requests the server has served.
	RequestCount int
}

// NewBoardServer starts a mock board server. Requests must authenticate with
// the given token; owner and number must match the query variables or the
// server answers with a not-found GraphQL error, same as the real API.
func NewBoardServer(t *testing.T, token, owner string, number int, items []BoardItem) *BoardServer {
	t.Helper()

	s := &BoardServer{
		owner:  owner,
		number: number,
		items:  items,
		token:  token,
	}
	s.Server = httptest.NewServer(http.HandlerFunc(s.handle))
	t.Cleanup(s.Close)
	return s
}

// graphqlRequest is the wire shape of an incoming GraphQL POST.
type graphqlRequest struct {
	Query     string                 `json:"query"`
	Variables map[string]interface{} `json:"variables"`
}

func (s *BoardServer) handle(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.RequestCount++

	if s.FailStatus != 0 {
		w.WriteHeader(s.FailStatus)
		_, _ = w.Write([]byte(http.StatusText(s.FailStatus)))
		return
	}

	if got := r.Header.Get("Authorization"); got != "Bearer "+s.token {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"message": "Bad credentials"}`))
		return
	}

	var req graphqlRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	if s.GraphQLError != "" {
		writeErrors(w, s.GraphQLError)
		return
	}

	switch {
	case strings.Contains(req.Query, "addComment"):
		s.handleAddComment(w, req)
	case strings.Contains(req.Query, "comments("):
		s.handleComments(w, req)
	default:
		s.handleItems(w, req)
	}
}

func (s *BoardServer) handleItems(w http.ResponseWriter, req graphqlRequest) {
	login, _ := req.Variables["login"].(string)
	number := intVariable(req.Variables["number"])
	if login != s.owner || number != s.number {
		writeErrors(w, fmt.Sprintf("Could not resolve to a ProjectV2 with the number %d.", number))
		return
	}

	fieldName, _ := req.Variables["field"].(string)
	first := intVariable(req.Variables["first"])
	if first <= 0 {
		first = 100
	}
	start := cursorIndex(req.Variables["after"])

	end := start + first
	if end > len(s.items) {
		end = len(s.items)
	}
	if start > len(s.items) {
		start = len(s.items)
	}

	nodes := make([]map[string]interface{}, 0, end-start)
	for _, item := range s.items[start:end] {
		nodes = append(nodes, itemNode(item, fieldName))
	}

	items := map[string]interface{}{
		"nodes": nodes,
		"pageInfo": map[string]interface{}{
			"hasNextPage": end < len(s.items),
			"endCursor":   strconv.Itoa(end),
		},
	}

	root := "organization"
	if strings.Contains(req.Query, "user(") {
		root = "user"
	}
	writeData(w, map[string]interface{}{
		root: map[string]interface{}{
			"projectV2": map[string]interface{}{"items": items},
		},
	})
}

func (s *BoardServer) handleComments(w http.ResponseWriter, req graphqlRequest) {
	id, _ := req.Variables["id"].(string)
	issue := s.findIssue(id)
	if issue == nil {
		writeErrors(w, fmt.Sprintf("Could not resolve to a node with the global id of '%s'", id))
		return
	}

	first := intVariable(req.Variables["first"])
	if first <= 0 {
		first = 100
	}
	start := cursorIndex(req.Variables["after"])

	end := start + first
	if end > len(issue.Comments) {
		end = len(issue.Comments)
	}
	if start > len(issue.Comments) {
		start = len(issue.Comments)
	}

	nodes := make([]map[string]interface{}, 0, end-start)
	for _, body := range issue.Comments[start:end] {
		nodes = append(nodes, map[string]interface{}{
			"body":      body,
			"createdAt": time.Now().UTC().Format(time.RFC3339),
			"author":    map[string]interface{}{"login": "fieldwatch[bot]"},
		})
	}

	writeData(w, map[string]interface{}{
		"node": map[string]interface{}{
			"comments": map[string]interface{}{
				"nodes": nodes,
				"pageInfo": map[string]interface{}{
					"hasNextPage": end < len(issue.Comments),
					"endCursor":   strconv.Itoa(end),
				},
			},
		},
	})
}

func (s *BoardServer) handleAddComment(w http.ResponseWriter, req graphqlRequest) {
	if s.AddCommentError != "" {
		writeErrors(w, s.AddCommentError)
		return
	}

	input, _ := req.Variables["input"].(map[string]interface{})
	subjectID, _ := input["subjectId"].(string)
	body, _ := input["body"].(string)

	issue := s.findIssue(subjectID)
	if issue == nil {
		writeErrors(w, fmt.Sprintf("Could not resolve to a node with the global id of '%s'", subjectID))
		return
	}

	issue.Comments = append(issue.Comments, body)
	s.Posted = append(s.Posted, PostedComment{SubjectID: subjectID, Body: body})

	writeData(w, map[string]interface{}{
		"addComment": map[string]interface{}{
			"commentEdge": map[string]interface{}{
				"node": map[string]interface{}{
					"id": fmt.Sprintf("IC_%d", len(s.Posted)),
				},
			},
		},
	})
}

// findIssue returns the board issue with the given node ID. Callers hold the
// mutex.
func (s *BoardServer) findIssue(id string) *BoardIssue {
	for i := range s.items {
		if s.items[i].Issue != nil && s.items[i].Issue.ID == id {
			return s.items[i].Issue
		}
	}
	return nil
}

// PostedBodies returns the bodies of every comment posted so far.
func (s *BoardServer) PostedBodies() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	bodies := make([]string, 0, len(s.Posted))
	for _, p := range s.Posted {
		bodies = append(bodies, p.Body)
	}
	return bodies
}

// PostedCount returns how many comments have been posted.
func (s *BoardServer) PostedCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.Posted)
}

// itemNode renders one board item as the JSON node shape of the items query.
func itemNode(item BoardItem, fieldName string) map[string]interface{} {
	node := map[string]interface{}{
		"id":               item.ID,
		"fieldValueByName": nil,
		"content":          map[string]interface{}{},
	}

	if value, ok := item.Values[fieldName]; ok {
		node["fieldValueByName"] = fieldValueNode(value)
	}

	if item.Issue != nil {
		assignees := make([]map[string]interface{}, 0, len(item.Issue.Assignees))
		for _, login := range item.Issue.Assignees {
			assignees = append(assignees, map[string]interface{}{
				"login": login,
				"name":  "",
				"email": "",
			})
		}
		node["content"] = map[string]interface{}{
			"id":        item.Issue.ID,
			"number":    item.Issue.Number,
			"title":     item.Issue.Title,
			"url":       item.Issue.URL,
			"state":     item.Issue.State,
			"assignees": map[string]interface{}{"nodes": assignees},
		}
	}

	return node
}

func fieldValueNode(v FieldValue) map[string]interface{} {
	switch v.Kind {
	case "single_select":
		return map[string]interface{}{
			"__typename": "ProjectV2ItemFieldSingleSelectValue",
			"optionId":   "opt_" + v.Option,
			"name":       v.Option,
		}
	case "date":
		return map[string]interface{}{
			"__typename": "ProjectV2ItemFieldDateValue",
			"date":       v.Date,
		}
	case "text":
		return map[string]interface{}{
			"__typename": "ProjectV2ItemFieldTextValue",
			"text":       v.Text,
		}
	case "iteration":
		return map[string]interface{}{
			"__typename":  "ProjectV2ItemFieldIterationValue",
			"iterationId": "iter_" + v.Iteration,
			"title":       v.Iteration,
		}
	default:
		return nil
	}
}

// cursorIndex decodes the integer continuation cursors the server hands out.
func cursorIndex(after interface{}) int {
	s, ok := after.(string)
	if !ok || s == "" {
		return 0
	}
	idx, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return idx
}

// intVariable converts a GraphQL variable that arrives as JSON number.
func intVariable(v interface{}) int {
	f, ok := v.(float64)
	if !ok {
		return 0
	}
	return int(f)
}

func writeData(w http.ResponseWriter, data map[string]interface{}) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]interface{}{"data": data})
}

func writeErrors(w http.ResponseWriter, messages ...string) {
	errs := make([]map[string]interface{}, 0, len(messages))
	for _, m := range messages {
		errs = append(errs, map[string]interface{}{"message": m})
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]interface{}{"errors": errs})
}
