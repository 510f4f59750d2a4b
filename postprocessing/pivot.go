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

package postprocessing

import (
	"github.com/cardinalhq/chartrunner/chartquery"
)

const (
	OperationPivot = "pivot"

	defaultPivotAggregate = "mean"
)

type PivotAggregate struct {
	Operator string `json:"operator"`
}

// PivotOptions turn long-format rows into one column per (metric, column
// values) combination, indexed by the time column.
type PivotOptions struct {
	Index              []string                  `json:"index"`
	Columns            []*string                 `json:"columns"`
	Aggregates         map[string]PivotAggregate `json:"aggregates"`
	DropMissingColumns bool                      `json:"drop_missing_columns"`
}

// Pivot returns a pivot step for time series queries with at least one
// labelled metric. Metrics without a label cannot be addressed after the
// query runs and are left out of the aggregates.
func Pivot(fd chartquery.FormData, q chartquery.QueryObject) *chartquery.PostProcessingStep {
	if q.Granularity == "" || len(q.Metrics) == 0 {
		return nil
	}

	aggregates := make(map[string]PivotAggregate, len(q.Metrics))
	for _, m := range q.Metrics {
		label := m.Label()
		if label == nil {
			continue
		}
		aggregates[*label] = PivotAggregate{Operator: defaultPivotAggregate}
	}
	if len(aggregates) == 0 {
		return nil
	}

	return &chartquery.PostProcessingStep{
		Operation: OperationPivot,
		Options: PivotOptions{
			Index:              []string{q.Granularity},
			Columns:            q.ColumnLabels(),
			Aggregates:         aggregates,
			DropMissingColumns: !fd.Bool(chartquery.KeyShowEmptyColumns),
		},
	}
}
