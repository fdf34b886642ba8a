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

package notify

import (
	"strings"

	"github.com/sirseerhq/sirseer-fieldwatch/internal/github"
)

// AnchorPhrase is the stable prefix of every generated notification comment.
// Deduplication matches on this phrase, not on the full comment text, so the
// field list and mentions may change without producing duplicate comments.
// Changing this string orphans every previously posted notification.
const AnchorPhrase = "Kindly set the missing required fields for the project:"

// BuildComment renders the notification body: one @login mention per assignee
// in assignee order, then the anchor phrase and the missing field names,
// comma-joined in the order given. Callers pass field names in canonical
// required-field order. An issue with no assignees still gets a comment; there
// is simply no one to mention.
func BuildComment(assignees []github.Assignee, missingFields []string) string {
	var b strings.Builder
	for _, a := range assignees {
		if a.Login == "" {
			continue
		}
		b.WriteString("@")
		b.WriteString(a.Login)
		b.WriteString(" ")
	}
	b.WriteString(AnchorPhrase)
	b.WriteString(" ")
	b.WriteString(strings.Join(missingFields, ", "))
	b.WriteString(".")
	return b.String()
}
