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
	"fmt"
	"slices"
	"strings"

	"github.com/hashicorp/go-multierror"

	"github.com/cardinalhq/chartrunner/chartquery"
)

// Operator derives at most one post-processing step from a chart's form
// data and query. Operators must not modify their inputs.
type Operator func(chartquery.FormData, chartquery.QueryObject) *chartquery.PostProcessingStep

var ErrUnknownOperator = errors.New("unknown post-processing operator")

var operators = map[string]Operator{
	OperationResample: Resample,
	OperationPivot:    Pivot,
}

// DefaultOperators is the order used when a caller does not pick operators.
// Resample runs first so groupby columns still exist as rows.
var DefaultOperators = []string{OperationResample, OperationPivot}

// OperatorNames lists every registered operator, sorted.
func OperatorNames() []string {
	names := make([]string, 0, len(operators))
	for name := range operators {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

type namedOperator struct {
	name string
	op   Operator
}

// Pipeline is an ordered list of operators. It holds no mutable state and
// may be shared between goroutines.
type Pipeline struct {
	ops []namedOperator
}

// NewPipeline resolves names against the registry. Every unknown name is
// reported, each wrapping ErrUnknownOperator. Names are trimmed and
// matched case-insensitively; empty names are skipped.
func NewPipeline(names ...string) (*Pipeline, error) {
	var errs *multierror.Error
	p := &Pipeline{ops: make([]namedOperator, 0, len(names))}
	for _, raw := range names {
		name := strings.ToLower(strings.TrimSpace(raw))
		if name == "" {
			continue
		}
		op, ok := operators[name]
		if !ok {
			errs = multierror.Append(errs, fmt.Errorf("%w: %q", ErrUnknownOperator, raw))
			continue
		}
		p.ops = append(p.ops, namedOperator{name: name, op: op})
	}
	if err := errs.ErrorOrNil(); err != nil {
		return nil, err
	}
	return p, nil
}

// DefaultPipeline returns a pipeline over DefaultOperators.
func DefaultPipeline() *Pipeline {
	p, err := NewPipeline(DefaultOperators...)
	if err != nil {
		panic(fmt.Errorf("default post-processing pipeline: %w", err))
	}
	return p
}

func (p *Pipeline) Names() []string {
	names := make([]string, 0, len(p.ops))
	for _, o := range p.ops {
		names = append(names, o.name)
	}
	return names
}

// Build runs every operator in order and collects the steps they produce.
// The result is never nil.
func (p *Pipeline) Build(fd chartquery.FormData, q chartquery.QueryObject) []chartquery.PostProcessingStep {
	steps := make([]chartquery.PostProcessingStep, 0, len(p.ops))
	for _, o := range p.ops {
		if step := o.op(fd, q); step != nil {
			steps = append(steps, *step)
		}
	}
	return steps
}

// Apply returns a copy of q whose post-processing list is q's existing
// steps followed by the steps built from fd.
func (p *Pipeline) Apply(fd chartquery.FormData, q chartquery.QueryObject) chartquery.QueryObject {
	out := q.Clone()
	out.PostProcessing = append(out.PostProcessing, p.Build(fd, q)...)
	return out
}
