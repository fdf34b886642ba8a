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

// Package notify formats and delivers "missing required fields" notifications
// and decides, per issue, whether an equivalent notification already exists.
//
// Deduplication is anchored on a stable phrase at the start of every
// generated comment rather than on the fully formatted text, so the field
// list may evolve between runs without defeating the check. The check is
// best-effort: two concurrent runs can race and both post before either
// observes the other's comment. That rare double notification is accepted in
// place of distributed locking.
package notify
