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
	"github.com/sirseerhq/sirseer-fieldwatch/internal/github"
)

// FieldSpec describes one required board field: the name used to query the
// board, its declared type, and the display name used in notifications.
// Display names are configurable so a renamed board column does not change
// the wording of the comment.
type FieldSpec struct {
	Name        string
	Type        github.FieldType
	DisplayName string
}

// Query returns the GraphQL query parameters for this field.
func (s FieldSpec) Query() github.FieldQuery {
	return github.FieldQuery{Name: s.Name, Type: s.Type}
}

// Display returns the name used for this field in notification comments.
func (s FieldSpec) Display() string {
	if s.DisplayName != "" {
		return s.DisplayName
	}
	return s.Name
}

// IssueFindings accumulates the missing required fields observed for one
// issue across field passes.
type IssueFindings struct {
	Issue   *github.Issue
	missing map[string]bool
}

// Add records that the named field is missing on this issue.
func (f *IssueFindings) Add(displayName string) {
	if f.missing == nil {
		f.missing = make(map[string]bool)
	}
	f.missing[displayName] = true
}

// Has reports whether the named field was recorded as missing.
func (f *IssueFindings) Has(displayName string) bool {
	return f.missing[displayName]
}

// MissingFields returns the recorded field names in canonical required-field
// order, independent of the order the passes observed them in.
func (f *IssueFindings) MissingFields(order []FieldSpec) []string {
	names := make([]string, 0, len(f.missing))
	for _, spec := range order {
		if f.Has(spec.Display()) {
			names = append(names, spec.Display())
		}
	}
	return names
}

// Evaluate runs the classifier over the items fetched for a single required
// field and returns, per issue, the findings for that field. Items with no
// backing issue are skipped, and issues whose value is present are omitted
// entirely: the dispatcher never runs on a fully populated issue.
//
// The result depends only on the input items, not on their order.
func Evaluate(items []github.ProjectItem, spec FieldSpec) (map[string]*IssueFindings, error) {
	findings := make(map[string]*IssueFindings)

	for i := range items {
		item := items[i]
		if item.Issue == nil {
			continue
		}

		missing, err := Missing(spec.Type, item.FieldValue)
		if err != nil {
			return nil, err
		}
		if !missing {
			continue
		}

		f, ok := findings[item.Issue.ID]
		if !ok {
			f = &IssueFindings{Issue: item.Issue}
			findings[item.Issue.ID] = f
		}
		f.Add(spec.Display())
	}

	return findings, nil
}

// MergeFindings folds the findings of one field pass into the accumulated
// per-issue map of the whole run.
func MergeFindings(dst, src map[string]*IssueFindings) {
	for id, f := range src {
		existing, ok := dst[id]
		if !ok {
			dst[id] = f
			continue
		}
		for name := range f.missing {
			existing.Add(name)
		}
	}
}
