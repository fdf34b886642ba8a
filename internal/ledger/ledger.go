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

package ledger

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/sirseerhq/sirseer-fieldwatch/internal/github"
)

// CurrentVersion is the current ledger schema version.
// Increment this when making breaking changes to the file structure.
const CurrentVersion = 1

// Entry records one posted notification.
type Entry struct {
	// IssueID is the GraphQL node ID of the notified issue.
	IssueID string `json:"issue_id"`

	// IssueNumber is the human-facing issue number, kept for inspection.
	IssueNumber int `json:"issue_number"`

	// AnchorHash is the SHA256 of the anchor phrase the notification carried.
	// A changed anchor phrase invalidates old entries, matching the behavior
	// of the comment-history scan.
	AnchorHash string `json:"anchor_hash"`

	// NotifiedAt is when the notification was posted.
	NotifiedAt time.Time `json:"notified_at"`
}

// fileState is the on-disk representation of a ledger.
type fileState struct {
	// Version indicates the schema version of this ledger file.
	Version int `json:"version"`

	// Checksum is the SHA256 hash of the file content (excluding this field).
	// Used to detect corruption or tampering.
	Checksum string `json:"checksum"`

	// Project is the board the ledger belongs to, like "acme/projects/7".
	Project string `json:"project"`

	// UpdatedAt is when the ledger was last written.
	UpdatedAt time.Time `json:"updated_at"`

	// Entries is keyed by issue node ID.
	Entries map[string]Entry `json:"entries"`
}

// Ledger is a file-backed notification record. It implements the
// deduplicator contract: AlreadyNotified consults the in-memory entries and
// MarkNotified appends and persists.
type Ledger struct {
	mu    sync.Mutex
	path  string
	state *fileState
}

// FilePath returns the standard ledger file path for a project board inside
// the given directory: <dir>/<owner>-projects-<number>.ledger.
func FilePath(dir string, ref github.ProjectRef) string {
	safe := strings.ReplaceAll(ref.String(), "/", "-")
	return filepath.Join(dir, safe+".ledger")
}

// DefaultDir returns the default directory for ledger files,
// ~/.fieldwatch/ledger, falling back to the current directory when the home
// directory is not accessible.
func DefaultDir() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		homeDir = "."
	}
	return filepath.Join(homeDir, ".fieldwatch", "ledger")
}

// Open loads the ledger at path, validating version and checksum. A missing
// file is not an error: the first run against a board starts with an empty
// ledger.
func Open(path string, ref github.ProjectRef) (*Ledger, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Ledger{
				path: path,
				state: &fileState{
					Version: CurrentVersion,
					Project: ref.String(),
					Entries: make(map[string]Entry),
				},
			}, nil
		}
		return nil, fmt.Errorf("failed to read ledger file %s: %w", path, err)
	}

	var state fileState
	if unmarshalErr := json.Unmarshal(data, &state); unmarshalErr != nil {
		return nil, fmt.Errorf("ledger file is corrupted (invalid JSON): %w", unmarshalErr)
	}

	if state.Version != CurrentVersion {
		return nil, fmt.Errorf("ledger file version (%d) is incompatible with current version (%d)",
			state.Version, CurrentVersion)
	}

	savedChecksum := state.Checksum
	state.Checksum = ""

	calculated, err := calculateChecksum(&state)
	if err != nil {
		return nil, fmt.Errorf("failed to calculate checksum for validation: %w", err)
	}
	if savedChecksum != calculated {
		return nil, fmt.Errorf("ledger file is corrupted (checksum mismatch)")
	}
	state.Checksum = savedChecksum

	if state.Project != ref.String() {
		return nil, fmt.Errorf("ledger file belongs to project %s, not %s", state.Project, ref.String())
	}
	if state.Entries == nil {
		state.Entries = make(map[string]Entry)
	}

	return &Ledger{path: path, state: &state}, nil
}

// AlreadyNotified reports whether the ledger records a notification for the
// issue with the same anchor phrase.
func (l *Ledger) AlreadyNotified(ctx context.Context, issue *github.Issue, anchor string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	entry, ok := l.state.Entries[issue.ID]
	if !ok {
		return false, nil
	}
	return entry.AnchorHash == hashAnchor(anchor), nil
}

// MarkNotified records the notification and persists the ledger atomically.
func (l *Ledger) MarkNotified(ctx context.Context, issue *github.Issue, anchor string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.state.Entries[issue.ID] = Entry{
		IssueID:     issue.ID,
		IssueNumber: issue.Number,
		AnchorHash:  hashAnchor(anchor),
		NotifiedAt:  time.Now().UTC(),
	}
	return l.save()
}

// Len returns the number of recorded notifications.
func (l *Ledger) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.state.Entries)
}

// save writes the ledger to disk using a write-to-temp-and-rename pattern so
// a crash mid-write never leaves a truncated file behind.
func (l *Ledger) save() error {
	l.state.Version = CurrentVersion
	l.state.UpdatedAt = time.Now().UTC()
	l.state.Checksum = ""

	checksum, err := calculateChecksum(l.state)
	if err != nil {
		return fmt.Errorf("failed to calculate checksum: %w", err)
	}
	l.state.Checksum = checksum

	dir := filepath.Dir(l.path)
	if mkdirErr := os.MkdirAll(dir, 0o755); mkdirErr != nil {
		return fmt.Errorf("failed to create ledger directory: %w", mkdirErr)
	}

	data, err := json.Marshal(l.state)
	if err != nil {
		return fmt.Errorf("failed to marshal ledger: %w", err)
	}

	tempFile := l.path + ".tmp"
	if writeErr := os.WriteFile(tempFile, data, 0o600); writeErr != nil {
		return fmt.Errorf("failed to write temporary ledger file: %w", writeErr)
	}

	file, err := os.Open(tempFile)
	if err != nil {
		_ = os.Remove(tempFile)
		return fmt.Errorf("failed to open temp file for sync: %w", err)
	}
	if err := file.Sync(); err != nil {
		_ = file.Close()
		_ = os.Remove(tempFile)
		return fmt.Errorf("failed to sync temp file: %w", err)
	}
	if err := file.Close(); err != nil {
		_ = os.Remove(tempFile)
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	if err := os.Rename(tempFile, l.path); err != nil {
		_ = os.Remove(tempFile)
		return fmt.Errorf("failed to rename temp file: %w", err)
	}

	return nil
}

// calculateChecksum computes the SHA256 hash of the ledger content with the
// checksum field itself excluded.
func calculateChecksum(state *fileState) (string, error) {
	stateCopy := *state
	stateCopy.Checksum = ""

	data, err := json.Marshal(stateCopy)
	if err != nil {
		return "", err
	}

	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:]), nil
}

func hashAnchor(anchor string) string {
	hash := sha256.Sum256([]byte(anchor))
	return hex.EncodeToString(hash[:])
}
