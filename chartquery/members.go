// Copyright (C) 2025-2026 CardinalHQ, Inc
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as
// published by the Free Software Foundation, version 3.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program. If not, see <http://www.gnu.org/licenses/>.
package chartquery

import (
	"bytes"
	"encoding/json"
	"reflect"
	"strings"
)

// decodeMembers decodes data into v, a pointer to a struct without its own
// UnmarshalJSON, and returns the object members none of v's fields claim.
// Field names match case-insensitively, as encoding/json does.
func decodeMembers(data []byte, v any) (map[string]json.RawMessage, error) {
	if err := json.Unmarshal(data, v); err != nil {
		return nil, err
	}
	var members map[string]json.RawMessage
	if err := json.Unmarshal(data, &members); err != nil {
		return nil, err
	}
	names := jsonNames(reflect.TypeOf(v).Elem())
	for key := range members {
		for _, name := range names {
			if strings.EqualFold(key, name) {
				delete(members, key)
				break
			}
		}
	}
	if len(members) == 0 {
		return nil, nil
	}
	return members, nil
}

// encodeMembers encodes v, a struct without its own MarshalJSON, and adds
// every extra member v's encoding does not already carry.
func encodeMembers(v any, extra map[string]json.RawMessage) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil || len(extra) == 0 {
		return data, err
	}
	var members map[string]json.RawMessage
	if err := json.Unmarshal(data, &members); err != nil {
		return nil, err
	}
	for key, raw := range extra {
		if _, found := members[key]; !found {
			members[key] = raw
		}
	}
	return json.Marshal(members)
}

func jsonNames(t reflect.Type) []string {
	names := make([]string, 0, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		switch name {
		case "-":
			continue
		case "":
			name = f.Name
		}
		names = append(names, name)
	}
	return names
}

func isNull(data []byte) bool {
	return bytes.Equal(bytes.TrimSpace(data), []byte("null"))
}
