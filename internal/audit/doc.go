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

// Package audit implements the field-completeness engine: it pages through a
// project board one required field at a time, classifies each item's field
// value as present or missing by the field's declared type, and merges the
// per-field results into per-issue findings that drive notification.
//
// The engine is deliberately sequential. One field pass runs at a time, one
// page after another, so a run either completes or fails at a recorded cursor
// position. Pagination is an explicit loop with a cursor variable; boards with
// thousands of items must never be walked by recursion.
package audit
