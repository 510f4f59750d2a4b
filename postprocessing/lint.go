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

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/hashicorp/go-multierror"

	"github.com/cardinalhq/chartrunner/chartquery"
)

var (
	ErrPartialResample = errors.New("resample_method and resample_rule must be set together")
	ErrUnknownMethod   = errors.New("unknown resample method")
)

// KnownResampleMethods are the methods a resampler understands, plus the
// zerofill form-level alias.
var KnownResampleMethods = mapset.NewSet(
	MethodAsfreq, MethodZerofill,
	"ffill", "bfill", "linear",
	"mean", "sum", "median", "min", "max",
)

// LintResample reports every problem with the resample fields of fd.
// Form data that does not configure resampling at all is valid.
// Resample itself never calls this; it is for request boundaries.
func LintResample(fd chartquery.FormData) error {
	method, hasMethod := fd.ResampleMethod()
	rule, hasRule := fd.ResampleRule()
	if !hasMethod && !hasRule {
		return nil
	}

	var errs *multierror.Error
	if hasMethod != hasRule {
		errs = multierror.Append(errs, ErrPartialResample)
	}
	if hasMethod && !KnownResampleMethods.Contains(method) {
		errs = multierror.Append(errs, fmt.Errorf("%w: %q", ErrUnknownMethod, method))
	}
	if hasRule {
		if _, err := ParseRule(rule); err != nil {
			errs = multierror.Append(errs, err)
		}
	}
	return errs.ErrorOrNil()
}

// LintProblems flattens a LintResample error into one message per problem.
func LintProblems(err error) []string {
	if err == nil {
		return nil
	}
	var merr *multierror.Error
	if errors.As(err, &merr) {
		out := make([]string, 0, len(merr.Errors))
		for _, e := range merr.Errors {
			out = append(out, e.Error())
		}
		return out
	}
	return []string{err.Error()}
}
