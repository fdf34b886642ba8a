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

package integration

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"

	"github.com/sirseerhq/sirseer-fieldwatch/internal/audit"
	fwerrors "github.com/sirseerhq/sirseer-fieldwatch/internal/errors"
	"github.com/sirseerhq/sirseer-fieldwatch/internal/github"
	"github.com/sirseerhq/sirseer-fieldwatch/internal/notify"
	"github.com/sirseerhq/sirseer-fieldwatch/test/testutil"
)

const testToken = "test-token"

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func orgRef() github.ProjectRef {
	return github.ProjectRef{
		Owner:     "acme",
		OwnerType: github.OwnerTypeOrganization,
		Number:    7,
	}
}

func requiredFields() []audit.FieldSpec {
	return []audit.FieldSpec{
		{Name: "Due Date", Type: github.FieldTypeDate},
		{Name: "Estimate", Type: github.FieldTypeText},
	}
}

func newAuditPipeline(server *testutil.BoardServer, dryRun bool) *audit.Pipeline {
	client := github.NewGraphQLClient(testToken, server.URL)
	return &audit.Pipeline{
		Client:     client,
		Ref:        orgRef(),
		Fields:     requiredFields(),
		PageSize:   100,
		Dedup:      notify.NewCommentScan(client),
		Dispatcher: notify.NewCommentDispatcher(client, dryRun, testLogger()),
		Logger:     testLogger(),
	}
}

func TestAuditEndToEnd(t *testing.T) {
	items := []testutil.BoardItem{
		// Missing both fields.
		testutil.IssueItem(testutil.ClosedIssue(42, "ana"), nil),
		// Fully populated, must not be touched.
		testutil.IssueItem(testutil.ClosedIssue(43, "bob"), map[string]testutil.FieldValue{
			"Due Date": testutil.DateValue("2025-06-01"),
			"Estimate": testutil.TextValue("3d"),
		}),
		// Open issue, out of scope.
		testutil.IssueItem(testutil.OpenIssue(44, "cy"), nil),
		// Draft note, out of scope.
		testutil.DraftItem("PVTI_draft"),
	}
	server := testutil.NewBoardServer(t, testToken, "acme", 7, items)

	summary, err := newAuditPipeline(server, false).Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if summary.Posted != 1 {
		t.Errorf("Posted = %d, want 1", summary.Posted)
	}
	bodies := server.PostedBodies()
	if len(bodies) != 1 {
		t.Fatalf("expected 1 posted comment, got %d", len(bodies))
	}
	want := "@ana Kindly set the missing required fields for the project: Due Date, Estimate."
	if bodies[0] != want {
		t.Errorf("comment body = %q, want %q", bodies[0], want)
	}
}

func TestAuditIdempotentAcrossRuns(t *testing.T) {
	items := []testutil.BoardItem{
		testutil.IssueItem(testutil.ClosedIssue(42, "ana"), nil),
	}
	server := testutil.NewBoardServer(t, testToken, "acme", 7, items)
	ctx := context.Background()

	first, err := newAuditPipeline(server, false).Run(ctx)
	if err != nil {
		t.Fatalf("first Run() error = %v", err)
	}
	if first.Posted != 1 {
		t.Fatalf("first run Posted = %d, want 1", first.Posted)
	}

	second, err := newAuditPipeline(server, false).Run(ctx)
	if err != nil {
		t.Fatalf("second Run() error = %v", err)
	}
	if second.Posted != 0 || second.Suppressed != 1 {
		t.Errorf("second run posted=%d suppressed=%d, want 0 and 1", second.Posted, second.Suppressed)
	}
	if server.PostedCount() != 1 {
		t.Errorf("comments posted across runs = %d, want 1", server.PostedCount())
	}
}

func TestAuditPaginatesLargeBoard(t *testing.T) {
	// More items than one page; every flagged issue must still be reached.
	var items []testutil.BoardItem
	for n := 1; n <= 250; n++ {
		values := map[string]testutil.FieldValue{
			"Estimate": testutil.TextValue("1d"),
		}
		if n%2 == 0 {
			values["Due Date"] = testutil.DateValue("2025-06-01")
		}
		items = append(items, testutil.IssueItem(testutil.ClosedIssue(n, "ana"), values))
	}
	server := testutil.NewBoardServer(t, testToken, "acme", 7, items)

	p := newAuditPipeline(server, true)
	p.PageSize = 100

	summary, err := p.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	// Odd-numbered issues are missing Due Date: 125 of 250.
	if summary.IssuesFlagged != 125 {
		t.Errorf("IssuesFlagged = %d, want 125", summary.IssuesFlagged)
	}
	if summary.DryRunSkipped != 125 {
		t.Errorf("DryRunSkipped = %d, want 125", summary.DryRunSkipped)
	}
}

func TestAuditDryRunPostsNothing(t *testing.T) {
	items := []testutil.BoardItem{
		testutil.IssueItem(testutil.ClosedIssue(1, "ana"), nil),
		testutil.IssueItem(testutil.ClosedIssue(2, "bob"), nil),
	}
	server := testutil.NewBoardServer(t, testToken, "acme", 7, items)

	summary, err := newAuditPipeline(server, true).Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if summary.DryRunSkipped != 2 {
		t.Errorf("DryRunSkipped = %d, want 2", summary.DryRunSkipped)
	}
	if server.PostedCount() != 0 {
		t.Errorf("dry run posted %d comments", server.PostedCount())
	}
}

func TestAuditBadToken(t *testing.T) {
	items := []testutil.BoardItem{
		testutil.IssueItem(testutil.ClosedIssue(1, "ana"), nil),
	}
	server := testutil.NewBoardServer(t, testToken, "acme", 7, items)

	client := github.NewGraphQLClient("wrong-token", server.URL)
	p := newAuditPipeline(server, false)
	p.Client = client
	p.Dedup = notify.NewCommentScan(client)
	p.Dispatcher = notify.NewCommentDispatcher(client, false, testLogger())

	_, err := p.Run(context.Background())
	if err == nil {
		t.Fatal("expected error with bad token")
	}
	if !errors.Is(err, fwerrors.ErrInvalidToken) {
		t.Errorf("expected ErrInvalidToken, got %v", err)
	}
}

func TestAuditProjectNotFound(t *testing.T) {
	server := testutil.NewBoardServer(t, testToken, "acme", 7, nil)

	p := newAuditPipeline(server, false)
	p.Ref = github.ProjectRef{Owner: "acme", OwnerType: github.OwnerTypeOrganization, Number: 99}

	_, err := p.Run(context.Background())
	if err == nil {
		t.Fatal("expected error for unknown project number")
	}
	if !errors.Is(err, fwerrors.ErrProjectNotFound) {
		t.Errorf("expected ErrProjectNotFound, got %v", err)
	}
}

func TestAuditUserOwnedBoard(t *testing.T) {
	items := []testutil.BoardItem{
		testutil.IssueItem(testutil.ClosedIssue(5, "dee"), nil),
	}
	server := testutil.NewBoardServer(t, testToken, "dee", 3, items)

	p := newAuditPipeline(server, false)
	p.Ref = github.ProjectRef{Owner: "dee", OwnerType: github.OwnerTypeUser, Number: 3}

	summary, err := p.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if summary.Posted != 1 {
		t.Errorf("Posted = %d, want 1", summary.Posted)
	}
}

func TestAuditDedupScansDeepHistory(t *testing.T) {
	issue := testutil.ClosedIssue(42, "ana")
	for i := 0; i < 150; i++ {
		issue.Comments = append(issue.Comments, fmt.Sprintf("discussion %d", i))
	}
	issue.Comments = append(issue.Comments,
		"@ana Kindly set the missing required fields for the project: Due Date.")

	items := []testutil.BoardItem{testutil.IssueItem(issue, nil)}
	server := testutil.NewBoardServer(t, testToken, "acme", 7, items)

	summary, err := newAuditPipeline(server, false).Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if summary.Suppressed != 1 || summary.Posted != 0 {
		t.Errorf("suppressed=%d posted=%d, want 1 and 0", summary.Suppressed, summary.Posted)
	}
}
