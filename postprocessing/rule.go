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
	"fmt"
	"math"
	"regexp"
	"strconv"
	"time"

	mapset "github.com/deckarep/golang-set/v2"
)

// Rule is a parsed resample frequency code such as "1D", "15min" or "W-MON".
type Rule struct {
	Multiple int
	Alias    string
}

var ruleRE = regexp.MustCompile(`^(\d+)?([A-Za-z]+(?:-[A-Za-z]{3})?)$`)

var fixedAliases = map[string]time.Duration{
	"N":   time.Nanosecond,
	"ns":  time.Nanosecond,
	"U":   time.Microsecond,
	"us":  time.Microsecond,
	"L":   time.Millisecond,
	"ms":  time.Millisecond,
	"S":   time.Second,
	"s":   time.Second,
	"T":   time.Minute,
	"min": time.Minute,
	"H":   time.Hour,
	"h":   time.Hour,
	"D":   24 * time.Hour,
}

// Calendar aliases have no fixed width; their length depends on the date.
var calendarAliases = mapset.NewSet(
	"B",
	"W", "W-MON", "W-TUE", "W-WED", "W-THU", "W-FRI", "W-SAT", "W-SUN",
	"M", "ME", "MS", "BM", "BMS",
	"Q", "QE", "QS", "BQ",
	"A", "Y", "YE", "AS", "YS",
)

// ParseRule parses a frequency code. The multiple defaults to 1 and must be
// positive when given.
func ParseRule(rule string) (Rule, error) {
	m := ruleRE.FindStringSubmatch(rule)
	if m == nil {
		return Rule{}, fmt.Errorf("invalid resample rule %q", rule)
	}
	r := Rule{Multiple: 1, Alias: m[2]}
	if m[1] != "" {
		n, err := strconv.Atoi(m[1])
		if err != nil {
			return Rule{}, fmt.Errorf("invalid resample rule %q: %w", rule, err)
		}
		if n <= 0 {
			return Rule{}, fmt.Errorf("invalid resample rule %q: multiple must be positive", rule)
		}
		r.Multiple = n
	}
	d, fixed := fixedAliases[r.Alias]
	if !fixed && !calendarAliases.Contains(r.Alias) {
		return Rule{}, fmt.Errorf("invalid resample rule %q: unknown frequency %q", rule, r.Alias)
	}
	if fixed && !fitsDuration(r.Multiple, d) {
		return Rule{}, fmt.Errorf("invalid resample rule %q: period is too long", rule)
	}
	return r, nil
}

// Duration returns the width of one period for fixed-width aliases.
// Calendar aliases, and periods longer than time.Duration can hold,
// report ok=false.
func (r Rule) Duration() (time.Duration, bool) {
	d, ok := fixedAliases[r.Alias]
	if !ok || !fitsDuration(r.Multiple, d) {
		return 0, false
	}
	return time.Duration(r.Multiple) * d, true
}

func fitsDuration(multiple int, d time.Duration) bool {
	return multiple > 0 && int64(multiple) <= math.MaxInt64/int64(d)
}

func (r Rule) String() string {
	if r.Multiple == 1 {
		return r.Alias
	}
	return strconv.Itoa(r.Multiple) + r.Alias
}
