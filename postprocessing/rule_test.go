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
	"math"
	"testing"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cardinalhq/chartrunner/chartquery"
)

func TestParseRule(t *testing.T) {
	tests := []struct {
		rule     string
		want     Rule
		duration time.Duration
		fixed    bool
	}{
		{"1D", Rule{Multiple: 1, Alias: "D"}, 24 * time.Hour, true},
		{"D", Rule{Multiple: 1, Alias: "D"}, 24 * time.Hour, true},
		{"15min", Rule{Multiple: 15, Alias: "min"}, 15 * time.Minute, true},
		{"30S", Rule{Multiple: 30, Alias: "S"}, 30 * time.Second, true},
		{"6H", Rule{Multiple: 6, Alias: "H"}, 6 * time.Hour, true},
		{"500ms", Rule{Multiple: 500, Alias: "ms"}, 500 * time.Millisecond, true},
		{"W-MON", Rule{Multiple: 1, Alias: "W-MON"}, 0, false},
		{"MS", Rule{Multiple: 1, Alias: "MS"}, 0, false},
		{"2Q", Rule{Multiple: 2, Alias: "Q"}, 0, false},
		{"AS", Rule{Multiple: 1, Alias: "AS"}, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.rule, func(t *testing.T) {
			got, err := ParseRule(tt.rule)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)

			d, ok := got.Duration()
			assert.Equal(t, tt.fixed, ok)
			assert.Equal(t, tt.duration, d)
		})
	}
}

func TestParseRuleInvalid(t *testing.T) {
	for _, rule := range []string{"", "0D", "1.5D", "D1", "1 D", "1X", "W-XYZ", "-1D"} {
		t.Run(rule, func(t *testing.T) {
			_, err := ParseRule(rule)
			assert.Error(t, err)
		})
	}
}

func TestParseRulePeriodBounds(t *testing.T) {
	r, err := ParseRule("9223372036854775807N")
	require.NoError(t, err)
	d, ok := r.Duration()
	assert.True(t, ok)
	assert.Equal(t, time.Duration(math.MaxInt64), d)

	for _, rule := range []string{"9999999999999D", "9223372036854775807U", "99999999999999999999D"} {
		t.Run(rule, func(t *testing.T) {
			_, err := ParseRule(rule)
			assert.Error(t, err)
		})
	}

	d, ok = Rule{Multiple: 9999999999999, Alias: "D"}.Duration()
	assert.False(t, ok)
	assert.Zero(t, d)

	err = LintResample(chartquery.FormData{"resample_method": "ffill", "resample_rule": "9999999999999D"})
	assert.Equal(t, []string{`invalid resample rule "9999999999999D": period is too long`}, LintProblems(err))
}

func TestRuleString(t *testing.T) {
	assert.Equal(t, "D", Rule{Multiple: 1, Alias: "D"}.String())
	assert.Equal(t, "15min", Rule{Multiple: 15, Alias: "min"}.String())
}

func TestLintResample(t *testing.T) {
	assert.NoError(t, LintResample(chartquery.FormData{}))
	assert.NoError(t, LintResample(chartquery.FormData{"resample_method": "ffill", "resample_rule": "1D"}))
	assert.NoError(t, LintResample(chartquery.FormData{"resample_method": "zerofill", "resample_rule": "W-SUN"}))

	err := LintResample(chartquery.FormData{"resample_method": "ffill"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrPartialResample))

	err = LintResample(chartquery.FormData{"resample_method": "pad", "resample_rule": "1X"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnknownMethod))
	var merr *multierror.Error
	require.True(t, errors.As(err, &merr))
	assert.Len(t, merr.Errors, 2)

	err = LintResample(chartquery.FormData{"resample_rule": "bogus"})
	require.Error(t, err)
	assert.Len(t, LintProblems(err), 2)
}

func TestLintProblems(t *testing.T) {
	assert.Nil(t, LintProblems(nil))
	assert.Equal(t, []string{"boom"}, LintProblems(errors.New("boom")))
}
