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
	"context"
	"fmt"

	"github.com/sirseerhq/sirseer-fieldwatch/internal/github"
)

// Filters selects which project items a fetch pass accumulates. The two
// predicates are independent and composable.
type Filters struct {
	// ClosedOnly drops items whose backing issue is not CLOSED.
	ClosedOnly bool

	// EmptyValueOnly drops items whose value for the field under inspection
	// is present. Presence follows the classifier, so a whitespace-only text
	// value still counts as empty.
	EmptyValueOnly bool
}

// FetchError reports a failed page fetch during a field pass. It carries the
// cursor position at which the fetch failed; no partial results are returned,
// so the caller decides whether to rerun the pass from scratch or abort.
type FetchError struct {
	Field  string
	Cursor string
	Err    error
}

// Error implements the error interface.
func (e *FetchError) Error() string {
	if e.Cursor == "" {
		return fmt.Sprintf("fetching items for field %q (first page): %v", e.Field, e.Err)
	}
	return fmt.Sprintf("fetching items for field %q (after cursor %q): %v", e.Field, e.Cursor, e.Err)
}

// Unwrap returns the underlying transport error.
func (e *FetchError) Unwrap() error {
	return e.Err
}

// FetchAll retrieves every project item for one required field, following the
// server's continuation cursor until it reports no further pages. Items are
// filtered page by page: draft notes (items with no backing issue) are always
// dropped, then the configured Filters apply.
//
// The loop is bounded by the total size of the board, which is finite; it is
// an explicit cursor loop rather than recursion so that boards with thousands
// of items cannot exhaust the stack.
func FetchAll(ctx context.Context, client github.Client, ref github.ProjectRef, field github.FieldQuery, filters Filters, pageSize int) ([]github.ProjectItem, error) {
	var (
		items  []github.ProjectItem
		cursor string
	)

	for {
		page, err := client.FetchProjectItems(ctx, ref, field, github.FetchOptions{
			PageSize: pageSize,
			After:    cursor,
		})
		if err != nil {
			return nil, &FetchError{Field: field.Name, Cursor: cursor, Err: err}
		}

		for i := range page.Items {
			item := page.Items[i]
			if item.Issue == nil {
				continue
			}
			if filters.ClosedOnly && !item.Issue.IsClosed() {
				continue
			}
			if filters.EmptyValueOnly {
				missing, err := Missing(field.Type, item.FieldValue)
				if err != nil {
					return nil, err
				}
				if !missing {
					continue
				}
			}
			items = append(items, item)
		}

		if !page.HasNextPage {
			return items, nil
		}
		cursor = page.EndCursor
	}
}
