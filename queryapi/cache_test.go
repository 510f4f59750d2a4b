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

package queryapi

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCacheKey(t *testing.T) {
	a := cacheKey("resample", []byte(`{"a": 1, "b": [1, 2]}`))
	b := cacheKey("resample", []byte("{\n  \"a\":1,\"b\":[1,2]\n}"))
	assert.Equal(t, a, b, "whitespace is not significant")

	assert.NotEqual(t, a, cacheKey("build", []byte(`{"a": 1, "b": [1, 2]}`)))
	assert.NotEqual(t, a, cacheKey("resample", []byte(`{"b": [1, 2], "a": 1}`)))

	// Bodies that are not JSON still hash consistently.
	assert.Equal(t, cacheKey("x", []byte("{nope")), cacheKey("x", []byte("{nope")))
}

func TestNilCache(t *testing.T) {
	c := newResponseCache(0, 100)
	assert.Nil(t, c)

	c.set(1, []byte("x"))
	_, ok := c.get(1)
	assert.False(t, ok)
	assert.Equal(t, 0, c.len())
	c.start()
	c.stop()
}

func TestResponseCacheCapacity(t *testing.T) {
	c := newResponseCache(time.Minute, 2)
	c.set(1, []byte("one"))
	c.set(2, []byte("two"))
	c.set(3, []byte("three"))
	assert.Equal(t, 2, c.len())

	v, ok := c.get(3)
	assert.True(t, ok)
	assert.Equal(t, []byte("three"), v)
}

func TestResponseCacheExpiry(t *testing.T) {
	c := newResponseCache(20*time.Millisecond, 0)
	c.set(1, []byte("one"))
	_, ok := c.get(1)
	assert.True(t, ok)

	assert.Eventually(t, func() bool {
		_, ok := c.get(1)
		return !ok
	}, time.Second, 10*time.Millisecond)
}
