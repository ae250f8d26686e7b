// flex.go
//
// Matching data service for founders and investors
// Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC
//
// This file is part of napkins.
// napkins is free software: you can redistribute it and/or modify it
// under the terms of the GNU Affero General Public License as published by the Free Software
// Foundation, either version 3 of the License, or (at your option) any later version.
// napkins is distributed in the hope that it will be useful, but WITHOUT ANY WARRANTY;
// without even the implied warranty of MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.
// See the GNU Affero General Public License for more details.
// You should have received a copy of the GNU Affero General Public License along with napkins.
// If not, see <https://www.gnu.org/licenses/>.
// Additional terms under GNU AGPL version 3 section 7:
// a) The reasonable legal notice of original copyright and author attribution must be preserved
//    by including the string: "Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC"
//    in this material, copies, or source code of derived works.

package types

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// ID is a row id that decodes from either a JSON number or a numeric string.
// Browsers send ids as strings once they exceed 2^53.
type ID uint64

// ParseID parses a decimal row id. Zero is not a valid id.
func ParseID(s string) (ID, error) {
	v, err := strconv.ParseUint(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0, Validation("invalid id %q", s)
	}
	if v == 0 {
		return 0, Validation("id must be positive")
	}
	return ID(v), nil
}

// UnmarshalJSON implements the json.Unmarshaler interface.
func (f *ID) UnmarshalJSON(data []byte) error {
	if len(data) == 0 || string(data) == "null" {
		return nil
	}

	var n uint64
	if err := json.Unmarshal(data, &n); err == nil {
		*f = ID(n)
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("id: expected number or string")
	}
	id, err := ParseID(s)
	if err != nil {
		return err
	}
	*f = id
	return nil
}

// MarshalJSON implements the json.Marshaler interface.
func (f ID) MarshalJSON() ([]byte, error) {
	return json.Marshal(uint64(f))
}

// Uint64 converts the id back to uint64.
func (f ID) Uint64() uint64 {
	return uint64(f)
}

// IDList decodes from a single id or an array of ids.
type IDList []ID

// UnmarshalJSON implements the json.Unmarshaler interface.
func (l *IDList) UnmarshalJSON(data []byte) error {
	if len(data) == 0 || string(data) == "null" {
		return nil
	}

	if data[0] == '[' {
		var ids []ID
		if err := json.Unmarshal(data, &ids); err != nil {
			return err
		}
		*l = ids
		return nil
	}

	var id ID
	if err := json.Unmarshal(data, &id); err != nil {
		return err
	}
	*l = IDList{id}
	return nil
}

// Uint64s returns the distinct, non-zero ids in first-seen order.
func (l IDList) Uint64s() []uint64 {
	seen := make(map[ID]struct{}, len(l))
	out := make([]uint64, 0, len(l))
	for _, id := range l {
		if id == 0 {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, uint64(id))
	}
	return out
}
