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
	"bytes"
	"encoding/json"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/jellydator/ttlcache/v3"
)

// responseCache holds encoded responses keyed by route and request body.
// A nil *responseCache is a valid, always-missing cache.
type responseCache struct {
	items *ttlcache.Cache[uint64, []byte]
}

func newResponseCache(ttl time.Duration, capacity uint64) *responseCache {
	if ttl <= 0 {
		return nil
	}
	opts := []ttlcache.Option[uint64, []byte]{
		ttlcache.WithTTL[uint64, []byte](ttl),
		ttlcache.WithDisableTouchOnHit[uint64, []byte](),
	}
	if capacity > 0 {
		opts = append(opts, ttlcache.WithCapacity[uint64, []byte](capacity))
	}
	return &responseCache{items: ttlcache.New(opts...)}
}

// cacheKey hashes the route and the compacted body, so requests that
// differ only in whitespace share an entry.
func cacheKey(route string, body []byte) uint64 {
	var buf bytes.Buffer
	buf.Grow(len(route) + 1 + len(body))
	buf.WriteString(route)
	buf.WriteByte(0)
	if err := json.Compact(&buf, body); err != nil {
		buf.Write(body)
	}
	return xxhash.Sum64(buf.Bytes())
}

func (c *responseCache) get(key uint64) ([]byte, bool) {
	if c == nil {
		return nil, false
	}
	item := c.items.Get(key)
	if item == nil {
		return nil, false
	}
	return item.Value(), true
}

func (c *responseCache) set(key uint64, body []byte) {
	if c == nil {
		return
	}
	c.items.Set(key, body, ttlcache.DefaultTTL)
}

func (c *responseCache) len() int {
	if c == nil {
		return 0
	}
	return c.items.Len()
}

// start runs expiry until stop is called. It blocks.
func (c *responseCache) start() {
	if c == nil {
		return
	}
	c.items.Start()
}

func (c *responseCache) stop() {
	if c == nil {
		return
	}
	c.items.Stop()
}
