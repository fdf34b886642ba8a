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

// Package ledger provides a local, file-backed record of posted
// notifications. It is an alternative deduplication strategy to scanning
// issue comment history: a run consults the ledger instead of the API, which
// avoids one comment query per flagged issue at the cost of keeping state on
// the machine that runs the audit.
//
// Ledger files are versioned and carry a content checksum so corruption is
// detected on load rather than silently producing duplicate notifications.
// Writes are atomic (write to a temp file, then rename).
package ledger
