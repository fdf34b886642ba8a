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
	"fmt"
	"time"

	fwerrors "github.com/sirseerhq/sirseer-fieldwatch/internal/errors"
)

// FieldType identifies the declared kind of a ProjectV2 custom field.
// Classification of "present" versus "missing" depends on this type, so a
// field whose type is not listed here cannot be audited.
type FieldType string

// Supported ProjectV2 field types.
const (
	FieldTypeSingleSelect FieldType = "single_select"
	FieldTypeDate         FieldType = "date"
	FieldTypeText         FieldType = "text"
	FieldTypeIteration    FieldType = "iteration"
)

// ParseFieldType converts a configuration string into a FieldType.
// Unknown types are rejected rather than guessed; a new field type must be
// given an explicit classification rule before it can be audited.
func ParseFieldType(s string) (FieldType, error) {
	switch FieldType(s) {
	case FieldTypeSingleSelect, FieldTypeDate, FieldTypeText, FieldTypeIteration:
		return FieldType(s), nil
	default:
		return "", fmt.Errorf("field type %q: %w", s, fwerrors.ErrUnsupportedFieldType)
	}
}

// ValueFragment returns the GraphQL type name of the field value node
// returned by fieldValueByName for this field type.
func (t FieldType) ValueFragment() string {
	switch t {
	case FieldTypeSingleSelect:
		return "ProjectV2ItemFieldSingleSelectValue"
	case FieldTypeDate:
		return "ProjectV2ItemFieldDateValue"
	case FieldTypeText:
		return "ProjectV2ItemFieldTextValue"
	case FieldTypeIteration:
		return "ProjectV2ItemFieldIterationValue"
	default:
		return ""
	}
}

// OwnerType identifies whether a project board belongs to a user or an
// organization. The GraphQL query root differs between the two.
type OwnerType string

// Supported project owner types.
const (
	OwnerTypeUser         OwnerType = "user"
	OwnerTypeOrganization OwnerType = "organization"
)

// ParseOwnerType converts a configuration string into an OwnerType.
func ParseOwnerType(s string) (OwnerType, error) {
	switch OwnerType(s) {
	case OwnerTypeUser, OwnerTypeOrganization:
		return OwnerType(s), nil
	default:
		return "", fmt.Errorf("owner type %q (want %q or %q): %w",
			s, OwnerTypeUser, OwnerTypeOrganization, fwerrors.ErrConfig)
	}
}

// ProjectRef identifies a single ProjectV2 board.
type ProjectRef struct {
	Owner     string
	OwnerType OwnerType
	Number    int
}

// String returns a human-readable reference like "acme/projects/7".
func (r ProjectRef) String() string {
	return fmt.Sprintf("%s/projects/%d", r.Owner, r.Number)
}

// FieldQuery names a single board field and its declared type for a fetch pass.
type FieldQuery struct {
	Name string
	Type FieldType
}

// FieldValue holds the value a project item carries for the field under
// inspection. Exactly one group of members is meaningful, selected by Type.
// A nil *FieldValue means the field is unset on the item.
type FieldValue struct {
	Type FieldType

	// single_select
	OptionID   string
	OptionName string

	// date, ISO 8601 date scalar (YYYY-MM-DD)
	Date string

	// text
	Text string

	// iteration
	IterationID    string
	IterationTitle string
}

// IssueState is the lifecycle state of an issue.
type IssueState string

// Issue states as reported by the GraphQL API.
const (
	IssueStateOpen   IssueState = "OPEN"
	IssueStateClosed IssueState = "CLOSED"
)

// Assignee is a user assigned to an issue. Login is the only member required
// for mention formatting; name and email are carried for reporting.
type Assignee struct {
	Login string
	Name  string
	Email string
}

// Issue is the read-only projection of a GitHub issue backing a project item.
type Issue struct {
	ID        string
	Number    int
	Title     string
	URL       string
	State     IssueState
	Assignees []Assignee
}

// IsClosed reports whether the issue has been closed.
func (i *Issue) IsClosed() bool {
	return i.State == IssueStateClosed
}

// ProjectItem is one row on a project board, inspected for a single field.
// Issue is nil when the item is a draft note with no backing issue; such
// items are excluded before evaluation.
type ProjectItem struct {
	ID         string
	FieldName  string
	FieldValue *FieldValue
	Issue      *Issue
}

// Comment is a single issue comment, used for notification deduplication.
type Comment struct {
	Body      string
	Author    string
	CreatedAt time.Time
}

// ItemPage is one page of project items from a GraphQL query. It includes
// pagination information to support fetching subsequent pages, so callers
// can walk boards of any size without loading everything at once.
type ItemPage struct {
	Items       []ProjectItem
	HasNextPage bool
	EndCursor   string
}

// CommentPage is one page of issue comments from a GraphQL query.
type CommentPage struct {
	Comments    []Comment
	HasNextPage bool
	EndCursor   string
}

// FetchOptions configures a single page fetch.
type FetchOptions struct {
	// PageSize controls how many nodes to fetch per page.
	// Defaults to 100 if not specified, which is also GitHub's maximum.
	PageSize int

	// After is the cursor for pagination.
	// Empty string fetches from the beginning.
	// Use the EndCursor from the previous page for the next page.
	After string
}

// Default values for fetch operations
const (
	defaultPageSize = 100
	maxPageSize     = 100
)

// effectivePageSize clamps the requested page size into GitHub's limits.
func (o FetchOptions) effectivePageSize() int {
	if o.PageSize <= 0 {
		return defaultPageSize
	}
	if o.PageSize > maxPageSize {
		return maxPageSize
	}
	return o.PageSize
}
