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

const OperationResample = "resample"

// MethodZerofill is a form-level method with no direct resampler
// counterpart; it becomes an asfreq resample with a zero fill value.
const (
	MethodZerofill = "zerofill"
	MethodAsfreq   = "asfreq"
)

// ResampleOptions are the options of a resample step. FillValue is nil
// unless the method fills gaps with a constant. A nil entry in
// GroupbyColumns stands for an adhoc column without a label.
type ResampleOptions struct {
	Method         string    `json:"method"`
	Rule           string    `json:"rule"`
	FillValue      *float64  `json:"fill_value"`
	TimeColumn     string    `json:"time_column"`
	GroupbyColumns []*string `json:"groupby_columns"`
}

type fillSpec struct {
	method string
	value  float64
}

var constantFills = map[string]fillSpec{
	MethodZerofill: {method: MethodAsfreq, value: 0},
}

// Resample returns a resample step when the form data asks for one, nil
// otherwise. Both resample_method and resample_rule must be set.
func Resample(fd chartquery.FormData, q chartquery.QueryObject) *chartquery.PostProcessingStep {
	method, ok := fd.ResampleMethod()
	if !ok {
		return nil
	}
	rule, ok := fd.ResampleRule()
	if !ok {
		return nil
	}

	opts := ResampleOptions{
		Method:         method,
		Rule:           rule,
		TimeColumn:     q.Granularity,
		GroupbyColumns: q.ColumnLabels(),
	}
	if fill, ok := constantFills[method]; ok {
		v := fill.value
		opts.Method = fill.method
		opts.FillValue = &v
	}

	return &chartquery.PostProcessingStep{
		Operation: OperationResample,
		Options:   opts,
	}
}
