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

package audit

import (
	"errors"
	"reflect"
	"testing"

	fwerrors "github.com/sirseerhq/sirseer-fieldwatch/internal/errors"
	"github.com/sirseerhq/sirseer-fieldwatch/internal/github"
)

func TestEvaluate(t *testing.T) {
	spec := FieldSpec{Name: "Due Date", Type: github.FieldTypeDate}
	items := []github.ProjectItem{
		closedIssueItem(1, nil),
		closedIssueItem(2, &github.FieldValue{Type: github.FieldTypeDate, Date: "2025-06-01"}),
		closedIssueItem(3, nil),
	}

	findings, err := Evaluate(items, spec)
	if err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}
	if len(findings) != 2 {
		t.Fatalf("expected 2 flagged issues, got %d", len(findings))
	}
	for _, id := range []string{"I_1", "I_3"} {
		f, ok := findings[id]
		if !ok {
			t.Fatalf("issue %s not flagged", id)
		}
		if !f.Has("Due Date") {
			t.Errorf("issue %s missing set should include Due Date", id)
		}
	}
	if _, ok := findings["I_2"]; ok {
		t.Error("issue with populated value must not be flagged")
	}
}

func TestEvaluateOrderIndependent(t *testing.T) {
	spec := FieldSpec{Name: "Due Date", Type: github.FieldTypeDate}
	items := []github.ProjectItem{closedIssueItem(1, nil), closedIssueItem(2, nil)}
	reversed := []github.ProjectItem{items[1], items[0]}

	a, err := Evaluate(items, spec)
	if err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}
	b, err := Evaluate(reversed, spec)
	if err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}

	if len(a) != len(b) {
		t.Fatalf("evaluation depends on item order: %d vs %d findings", len(a), len(b))
	}
	for id := range a {
		if _, ok := b[id]; !ok {
			t.Errorf("issue %s flagged in one order only", id)
		}
	}
}

func TestEvaluateUnsupportedType(t *testing.T) {
	spec := FieldSpec{Name: "Points", Type: github.FieldType("number")}
	_, err := Evaluate([]github.ProjectItem{closedIssueItem(1, nil)}, spec)
	if !errors.Is(err, fwerrors.ErrUnsupportedFieldType) {
		t.Errorf("expected ErrUnsupportedFieldType, got %v", err)
	}
}

func TestFieldSpecDisplay(t *testing.T) {
	plain := FieldSpec{Name: "Due Date", Type: github.FieldTypeDate}
	if got := plain.Display(); got != "Due Date" {
		t.Errorf("Display() = %q, want field name", got)
	}
	renamed := FieldSpec{Name: "Target", Type: github.FieldTypeDate, DisplayName: "Due Date"}
	if got := renamed.Display(); got != "Due Date" {
		t.Errorf("Display() = %q, want display name", got)
	}
}

func TestMergeFindingsCanonicalOrder(t *testing.T) {
	order := []FieldSpec{
		{Name: "Status", Type: github.FieldTypeSingleSelect},
		{Name: "Due Date", Type: github.FieldTypeDate},
		{Name: "Estimate", Type: github.FieldTypeText},
	}
	issue := &github.Issue{ID: "I_42", Number: 42}

	// Passes arrive in Estimate-then-DueDate order; the report must not.
	run := make(map[string]*IssueFindings)
	pass1 := map[string]*IssueFindings{"I_42": {Issue: issue}}
	pass1["I_42"].Add("Estimate")
	pass2 := map[string]*IssueFindings{"I_42": {Issue: issue}}
	pass2["I_42"].Add("Due Date")

	MergeFindings(run, pass1)
	MergeFindings(run, pass2)

	got := run["I_42"].MissingFields(order)
	want := []string{"Due Date", "Estimate"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("MissingFields() = %v, want canonical order %v", got, want)
	}
}

func TestMergeFindingsDistinctIssues(t *testing.T) {
	run := make(map[string]*IssueFindings)
	pass := map[string]*IssueFindings{
		"I_1": {Issue: &github.Issue{ID: "I_1", Number: 1}},
		"I_2": {Issue: &github.Issue{ID: "I_2", Number: 2}},
	}
	pass["I_1"].Add("Status")
	pass["I_2"].Add("Status")

	MergeFindings(run, pass)
	if len(run) != 2 {
		t.Errorf("expected 2 issues after merge, got %d", len(run))
	}
}
