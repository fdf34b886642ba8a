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
	"fmt"
	"strings"

	fwerrors "github.com/sirseerhq/sirseer-fieldwatch/internal/errors"
	"github.com/sirseerhq/sirseer-fieldwatch/internal/github"
)

// Missing reports whether a field value counts as unset for the given
// declared field type.
//
// For single_select, date, and iteration fields, presence is "value is not
// null". For text fields, a value whose content is empty or whitespace-only
// also counts as missing. An unknown field type is an error: classification
// rules are explicit, never guessed.
func Missing(t github.FieldType, v *github.FieldValue) (bool, error) {
	switch t {
	case github.FieldTypeSingleSelect, github.FieldTypeDate, github.FieldTypeIteration:
		return v == nil, nil
	case github.FieldTypeText:
		return v == nil || strings.TrimSpace(v.Text) == "", nil
	default:
		return false, fmt.Errorf("field type %q: %w", t, fwerrors.ErrUnsupportedFieldType)
	}
}
