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

// Form data keys read by the post-processing builders.
const (
	KeyResampleMethod   = "resample_method"
	KeyResampleRule     = "resample_rule"
	KeyGranularity      = "granularity"
	KeyMetrics          = "metrics"
	KeyShowEmptyColumns = "show_empty_columns"
)

// FormData is the chart configuration as submitted by the dashboard,
// keyed by option name. Values keep whatever type the JSON decoder
// produced; use the typed accessors rather than asserting directly.
type FormData map[string]any

// String returns the value for key when it is a non-empty string.
// Absent keys, nil, non-string values and "" all report ok=false.
func (fd FormData) String(key string) (string, bool) {
	v, found := fd[key]
	if !found || v == nil {
		return "", false
	}
	s, isString := v.(string)
	if !isString || s == "" {
		return "", false
	}
	return s, true
}

// Bool returns the value for key when it is a bool, false otherwise.
func (fd FormData) Bool(key string) bool {
	b, _ := fd[key].(bool)
	return b
}

func (fd FormData) ResampleMethod() (string, bool) {
	return fd.String(KeyResampleMethod)
}

func (fd FormData) ResampleRule() (string, bool) {
	return fd.String(KeyResampleRule)
}

// With returns a copy of fd with the given key set. The receiver is not modified.
func (fd FormData) With(key string, value any) FormData {
	out := make(FormData, len(fd)+1)
	for k, v := range fd {
		out[k] = v
	}
	out[key] = value
	return out
}
