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

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestWriteNDJSONLines(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)

	records := []IssueRecord{
		{Type: RecordTypeIssue, Project: "acme/projects/7", IssueNumber: 42, Outcome: "posted", MissingFields: []string{"Due Date"}},
		{Type: RecordTypeIssue, Project: "acme/projects/7", IssueNumber: 43, Outcome: "suppressed", MissingFields: []string{"Estimate"}},
	}
	for _, r := range records {
		if err := w.Write(r); err != nil {
			t.Fatalf("Write() error = %v", err)
		}
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 NDJSON lines, got %d", len(lines))
	}

	for i, line := range lines {
		var got IssueRecord
		if err := json.Unmarshal([]byte(line), &got); err != nil {
			t.Fatalf("line %d is not valid JSON: %v", i, err)
		}
		if got.IssueNumber != records[i].IssueNumber {
			t.Errorf("line %d issue_number = %d, want %d", i, got.IssueNumber, records[i].IssueNumber)
		}
	}

	if w.Count() != 2 {
		t.Errorf("Count() = %d, want 2", w.Count())
	}
}

func TestErrorFieldOmittedWhenEmpty(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)

	if err := w.Write(FieldSummaryRecord{
		Type:    RecordTypeFieldSummary,
		Time:    time.Now().UTC(),
		Project: "acme/projects/7",
		Field:   "Status",
	}); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	if strings.Contains(buf.String(), `"error"`) {
		t.Errorf("empty error field serialized: %s", buf.String())
	}
}

func TestFileWriter(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit.ndjson")

	w, err := NewFileWriter(path)
	if err != nil {
		t.Fatalf("NewFileWriter() error = %v", err)
	}
	if err := w.Write(IssueRecord{Type: RecordTypeIssue, IssueNumber: 1, Outcome: "posted"}); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading report file: %v", err)
	}
	var rec IssueRecord
	if err := json.Unmarshal(bytes.TrimSpace(data), &rec); err != nil {
		t.Fatalf("report file content is not valid JSON: %v", err)
	}
	if rec.IssueNumber != 1 {
		t.Errorf("issue_number = %d, want 1", rec.IssueNumber)
	}
}

func TestFileWriterBadPath(t *testing.T) {
	if _, err := NewFileWriter(filepath.Join(t.TempDir(), "missing", "audit.ndjson")); err == nil {
		t.Error("expected error creating file in nonexistent directory")
	}
}
