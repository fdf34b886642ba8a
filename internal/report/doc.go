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

// Package report writes audit results as NDJSON, one record per line. Issue
// records capture each notification decision; field summary records capture
// the per-field counters the process-level contract requires. NDJSON keeps
// the output streamable and trivially consumable by log pipelines, the same
// reasoning that applies to any long-running extraction.
package report
