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
	"encoding/json"
	"maps"
)

// PostProcessingStep is a declarative instruction applied to query results
// after retrieval. Options is operation specific.
type PostProcessingStep struct {
	Operation string `json:"operation"`
	Options   any    `json:"options,omitempty"`
}

// QueryObject describes one query issued on behalf of a chart. Only the
// members the builders read are typed. Everything else a client sends
// (filters, orderby, time_range, extras, ...) is kept in Extra and encoded
// back unchanged.
//
// A nil slice means the member was absent. An empty one encodes as [].
type QueryObject struct {
	Granularity    string
	Columns        []Column
	Metrics        []Metric
	PostProcessing []PostProcessingStep
	Extra          map[string]json.RawMessage
}

type queryWire struct {
	Granularity    string                `json:"granularity,omitempty"`
	Columns        *[]Column             `json:"columns,omitempty"`
	Metrics        *[]Metric             `json:"metrics,omitempty"`
	PostProcessing *[]PostProcessingStep `json:"post_processing,omitempty"`
}

func (q QueryObject) MarshalJSON() ([]byte, error) {
	w := queryWire{Granularity: q.Granularity}
	if q.Columns != nil {
		w.Columns = &q.Columns
	}
	if q.Metrics != nil {
		w.Metrics = &q.Metrics
	}
	if q.PostProcessing != nil {
		w.PostProcessing = &q.PostProcessing
	}
	return encodeMembers(w, q.Extra)
}

func (q *QueryObject) UnmarshalJSON(data []byte) error {
	if isNull(data) {
		return nil
	}
	var w queryWire
	extra, err := decodeMembers(data, &w)
	if err != nil {
		return err
	}
	*q = QueryObject{Granularity: w.Granularity, Extra: extra}
	if w.Columns != nil {
		q.Columns = *w.Columns
	}
	if w.Metrics != nil {
		q.Metrics = *w.Metrics
	}
	if w.PostProcessing != nil {
		q.PostProcessing = *w.PostProcessing
	}
	return nil
}

// Clone returns a copy of q that shares no slices or maps with it.
// Adhoc column and metric definitions and raw members are treated as
// immutable and shared.
func (q QueryObject) Clone() QueryObject {
	out := q
	if q.Columns != nil {
		out.Columns = append(make([]Column, 0, len(q.Columns)), q.Columns...)
	}
	if q.Metrics != nil {
		out.Metrics = append(make([]Metric, 0, len(q.Metrics)), q.Metrics...)
	}
	if q.PostProcessing != nil {
		out.PostProcessing = append(make([]PostProcessingStep, 0, len(q.PostProcessing)), q.PostProcessing...)
	}
	if q.Extra != nil {
		out.Extra = maps.Clone(q.Extra)
	}
	return out
}

// ColumnLabels maps each column to its label, preserving order and length.
// The result is never nil.
func (q QueryObject) ColumnLabels() []*string {
	labels := make([]*string, 0, len(q.Columns))
	for _, c := range q.Columns {
		labels = append(labels, c.Label())
	}
	return labels
}
