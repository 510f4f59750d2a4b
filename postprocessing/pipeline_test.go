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
	"errors"
	"testing"

	"github.com/hashicorp/go-multierror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cardinalhq/chartrunner/chartquery"
)

func TestPivot(t *testing.T) {
	q := baseQuery()
	q.Columns = []chartquery.Column{chartquery.PhysicalColumn("nation")}

	got := Pivot(chartquery.FormData{}, q)
	require.NotNil(t, got)
	assert.Equal(t, "pivot", got.Operation)
	assert.Equal(t, PivotOptions{
		Index:   []string{"month"},
		Columns: []*string{chartquery.StringPtr("nation")},
		Aggregates: map[string]PivotAggregate{
			"count(*)": {Operator: "mean"},
			"sum(val)": {Operator: "mean"},
		},
		DropMissingColumns: true,
	}, got.Options)

	got = Pivot(chartquery.FormData{"show_empty_columns": true}, q)
	require.NotNil(t, got)
	assert.False(t, got.Options.(PivotOptions).DropMissingColumns)
}

func TestPivotSkipped(t *testing.T) {
	q := baseQuery()
	q.Granularity = ""
	assert.Nil(t, Pivot(nil, q), "no time column")

	q = baseQuery()
	q.Metrics = nil
	assert.Nil(t, Pivot(nil, q), "no metrics")

	q = baseQuery()
	q.Metrics = []chartquery.Metric{chartquery.NewAdhocMetric(chartquery.AdhocMetric{SQLExpression: "sum(x)"})}
	assert.Nil(t, Pivot(nil, q), "no labelled metrics")
}

func TestNewPipelineUnknownOperators(t *testing.T) {
	p, err := NewPipeline("resample", "rolling", "Pivot", "flatten")
	require.Error(t, err)
	assert.Nil(t, p)
	assert.True(t, errors.Is(err, ErrUnknownOperator))

	var merr *multierror.Error
	require.True(t, errors.As(err, &merr))
	assert.Len(t, merr.Errors, 2)
	assert.Contains(t, err.Error(), `"rolling"`)
	assert.Contains(t, err.Error(), `"flatten"`)
}

func TestNewPipelineNormalizesNames(t *testing.T) {
	p, err := NewPipeline(" Resample ", "", "PIVOT")
	require.NoError(t, err)
	assert.Equal(t, []string{"resample", "pivot"}, p.Names())
}

func TestOperatorNames(t *testing.T) {
	assert.Equal(t, []string{"pivot", "resample"}, OperatorNames())
}

func TestPipelineBuild(t *testing.T) {
	fd := baseFormData().With("resample_method", "zerofill").With("resample_rule", "1D")
	q := baseQuery()

	steps := DefaultPipeline().Build(fd, q)
	require.Len(t, steps, 2)
	assert.Equal(t, "resample", steps[0].Operation)
	assert.Equal(t, "pivot", steps[1].Operation)

	steps = DefaultPipeline().Build(baseFormData(), q)
	require.Len(t, steps, 1, "resample is skipped without resample fields")
	assert.Equal(t, "pivot", steps[0].Operation)

	empty, err := NewPipeline()
	require.NoError(t, err)
	assert.Equal(t, []chartquery.PostProcessingStep{}, empty.Build(fd, q))
}

func TestPipelineApply(t *testing.T) {
	fd := baseFormData().With("resample_method", "ffill").With("resample_rule", "1D")
	q := baseQuery()
	q.PostProcessing = q.PostProcessing[:1:1]

	p, err := NewPipeline("resample")
	require.NoError(t, err)

	out := p.Apply(fd, q)
	require.Len(t, out.PostProcessing, 2)
	assert.Equal(t, "pivot", out.PostProcessing[0].Operation)
	assert.Equal(t, "resample", out.PostProcessing[1].Operation)

	require.Len(t, q.PostProcessing, 1, "input query is untouched")
	assert.Equal(t, q.Granularity, out.Granularity)
	assert.Equal(t, q.Metrics, out.Metrics)
}

func TestPipelineApplyDoesNotShareBackingArray(t *testing.T) {
	fd := chartquery.FormData{"resample_method": "ffill", "resample_rule": "1D"}
	existing := make([]chartquery.PostProcessingStep, 1, 8)
	existing[0] = chartquery.PostProcessingStep{Operation: "pivot"}
	q := chartquery.QueryObject{Granularity: "month", PostProcessing: existing}

	p, err := NewPipeline("resample")
	require.NoError(t, err)
	_ = p.Apply(fd, q)

	assert.Equal(t, "", existing[:2][1].Operation, "spare capacity of the input must not be written")
}
