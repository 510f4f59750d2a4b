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
	"fmt"
)

// AdhocColumn is a column defined by an expression rather than by name.
// Members other than the typed ones (timeGrain, columnType, ...) are kept
// in Extra.
type AdhocColumn struct {
	Label          *string                    `json:"label,omitempty"`
	HasCustomLabel bool                       `json:"hasCustomLabel,omitempty"`
	SQLExpression  string                     `json:"sqlExpression,omitempty"`
	ExpressionType string                     `json:"expressionType,omitempty"`
	Extra          map[string]json.RawMessage `json:"-"`
}

// adhocColumnFields has AdhocColumn's fields without its methods.
type adhocColumnFields AdhocColumn

func (c AdhocColumn) MarshalJSON() ([]byte, error) {
	return encodeMembers(adhocColumnFields(c), c.Extra)
}

func (c *AdhocColumn) UnmarshalJSON(data []byte) error {
	if isNull(data) {
		return nil
	}
	var f adhocColumnFields
	extra, err := decodeMembers(data, &f)
	if err != nil {
		return err
	}
	f.Extra = extra
	*c = AdhocColumn(f)
	return nil
}

// Column is one entry of a query's columns list. On the wire it is either
// a plain string (a physical column) or an object (an adhoc column).
type Column struct {
	Name  string
	Adhoc *AdhocColumn
}

func PhysicalColumn(name string) Column {
	return Column{Name: name}
}

func NewAdhocColumn(c AdhocColumn) Column {
	return Column{Adhoc: &c}
}

func (c Column) IsAdhoc() bool {
	return c.Adhoc != nil
}

// Label is the name the column carries in query results. Adhoc columns
// without a label yield nil.
func (c Column) Label() *string {
	if c.Adhoc == nil {
		return StringPtr(c.Name)
	}
	if c.Adhoc.Label == nil {
		return nil
	}
	return StringPtr(*c.Adhoc.Label)
}

func (c Column) MarshalJSON() ([]byte, error) {
	if c.Adhoc != nil {
		return json.Marshal(c.Adhoc)
	}
	return json.Marshal(c.Name)
}

func (c *Column) UnmarshalJSON(data []byte) error {
	var adhoc AdhocColumn
	isObject, err := decodeNameOrObject(data, &c.Name, &adhoc)
	if err != nil {
		return fmt.Errorf("column: %w", err)
	}
	if isObject {
		c.Name = ""
		c.Adhoc = &adhoc
	} else {
		c.Adhoc = nil
	}
	return nil
}

// AdhocMetric is a metric defined inline by an expression. Untyped
// members (column, optionName, ...) are kept in Extra.
type AdhocMetric struct {
	Label          *string                    `json:"label,omitempty"`
	HasCustomLabel bool                       `json:"hasCustomLabel,omitempty"`
	ExpressionType string                     `json:"expressionType,omitempty"`
	SQLExpression  string                     `json:"sqlExpression,omitempty"`
	Aggregate      string                     `json:"aggregate,omitempty"`
	Extra          map[string]json.RawMessage `json:"-"`
}

type adhocMetricFields AdhocMetric

func (m AdhocMetric) MarshalJSON() ([]byte, error) {
	return encodeMembers(adhocMetricFields(m), m.Extra)
}

func (m *AdhocMetric) UnmarshalJSON(data []byte) error {
	if isNull(data) {
		return nil
	}
	var f adhocMetricFields
	extra, err := decodeMembers(data, &f)
	if err != nil {
		return err
	}
	f.Extra = extra
	*m = AdhocMetric(f)
	return nil
}

// Metric is either a saved metric name or an adhoc metric.
type Metric struct {
	Name  string
	Adhoc *AdhocMetric
}

func SavedMetric(name string) Metric {
	return Metric{Name: name}
}

func NewAdhocMetric(m AdhocMetric) Metric {
	return Metric{Adhoc: &m}
}

// Label follows the same rules as Column.Label.
func (m Metric) Label() *string {
	if m.Adhoc == nil {
		return StringPtr(m.Name)
	}
	if m.Adhoc.Label == nil {
		return nil
	}
	return StringPtr(*m.Adhoc.Label)
}

func (m Metric) MarshalJSON() ([]byte, error) {
	if m.Adhoc != nil {
		return json.Marshal(m.Adhoc)
	}
	return json.Marshal(m.Name)
}

func (m *Metric) UnmarshalJSON(data []byte) error {
	var adhoc AdhocMetric
	isObject, err := decodeNameOrObject(data, &m.Name, &adhoc)
	if err != nil {
		return fmt.Errorf("metric: %w", err)
	}
	if isObject {
		m.Name = ""
		m.Adhoc = &adhoc
	} else {
		m.Adhoc = nil
	}
	return nil
}

// decodeNameOrObject decodes a JSON string into name or a JSON object into obj.
func decodeNameOrObject(data []byte, name *string, obj any) (bool, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return false, fmt.Errorf("empty value")
	}
	switch trimmed[0] {
	case '"':
		return false, json.Unmarshal(trimmed, name)
	case '{':
		return true, json.Unmarshal(trimmed, obj)
	default:
		return false, fmt.Errorf("expected string or object, got %s", string(trimmed))
	}
}

// StringPtr returns a pointer to a copy of s.
func StringPtr(s string) *string {
	return &s
}
