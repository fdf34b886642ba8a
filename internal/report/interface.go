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

package report

import "time"

// Writer defines the interface for writing audit records.
// This abstraction allows for different output formats to be implemented
// in the future without changing the core logic.
type Writer interface {
	// Write writes a single record to the output.
	// The record should be immediately flushed to avoid memory accumulation.
	Write(record interface{}) error

	// Close closes the underlying writer and releases any resources.
	// This should be called when all writing is complete.
	Close() error
}

// IssueRecord is one notification decision for one issue.
type IssueRecord struct {
	Type          string    `json:"type"` // always "issue"
	Time          time.Time `json:"time"`
	Project       string    `json:"project"`
	IssueNumber   int       `json:"issue_number"`
	IssueURL      string    `json:"issue_url"`
	MissingFields []string  `json:"missing_fields"`
	Outcome       string    `json:"outcome"`
	Error         string    `json:"error,omitempty"`
}

// FieldSummaryRecord is the per-field counter line emitted at the end of a
// field pass.
type FieldSummaryRecord struct {
	Type          string    `json:"type"` // always "field_summary"
	Time          time.Time `json:"time"`
	Project       string    `json:"project"`
	Field         string    `json:"field"`
	ItemsMatched  int       `json:"items_matched"`
	IssuesFlagged int       `json:"issues_flagged"`
	Error         string    `json:"error,omitempty"`
}

// Record type tags.
const (
	RecordTypeIssue        = "issue"
	RecordTypeFieldSummary = "field_summary"
)
