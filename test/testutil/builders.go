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

package testutil

import "fmt"

// ClosedIssue builds a closed board issue with the given number and assignees.
func ClosedIssue(number int, assignees ...string) *BoardIssue {
	return &BoardIssue{
		ID:        fmt.Sprintf("I_%d", number),
		Number:    number,
		Title:     fmt.Sprintf("Issue %d", number),
		URL:       fmt.Sprintf("https://github.com/acme/repo/issues/%d", number),
		State:     "CLOSED",
		Assignees: assignees,
	}
}

// OpenIssue builds an open board issue.
func OpenIssue(number int, assignees ...string) *BoardIssue {
	issue := ClosedIssue(number, assignees...)
	issue.State = "OPEN"
	return issue
}

// IssueItem builds a board item backed by the given issue. Values maps field
// names to set values; fields absent from the map are unset on the item.
func IssueItem(issue *BoardIssue, values map[string]FieldValue) BoardItem {
	if values == nil {
		values = make(map[string]FieldValue)
	}
	return BoardItem{
		ID:     fmt.Sprintf("PVTI_%d", issue.Number),
		Issue:  issue,
		Values: values,
	}
}

// DraftItem builds a draft note item with no backing issue.
func DraftItem(id string) BoardItem {
	return BoardItem{ID: id, Values: make(map[string]FieldValue)}
}

// DateValue builds a set date field value.
func DateValue(date string) FieldValue {
	return FieldValue{Kind: "date", Date: date}
}

// TextValue builds a set text field value.
func TextValue(text string) FieldValue {
	return FieldValue{Kind: "text", Text: text}
}

// SelectValue builds a set single-select field value.
func SelectValue(option string) FieldValue {
	return FieldValue{Kind: "single_select", Option: option}
}

// IterationValue builds a set iteration field value.
func IterationValue(title string) FieldValue {
	return FieldValue{Kind: "iteration", Iteration: title}
}
