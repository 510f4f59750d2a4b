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
	"context"
	"net"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type readyRecorder struct {
	mu     sync.Mutex
	events []bool
	ready  chan struct{}
}

func newReadyRecorder() *readyRecorder {
	return &readyRecorder{ready: make(chan struct{}, 1)}
}

func (r *readyRecorder) record(ready bool) {
	r.mu.Lock()
	r.events = append(r.events, ready)
	r.mu.Unlock()
	if ready {
		r.ready <- struct{}{}
	}
}

func (r *readyRecorder) snapshot() []bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]bool(nil), r.events...)
}

func TestRunReportsReadyAfterBind(t *testing.T) {
	s := newTestService(t, func(c *Config) { c.ListenAddr = "127.0.0.1:0" })
	rec := newReadyRecorder()
	s.OnReadyChange(rec.record)
	assert.Empty(t, s.Addr())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	select {
	case <-rec.ready:
	case <-time.After(5 * time.Second):
		t.Fatal("service never reported ready")
	}

	addr := s.Addr()
	require.NotEmpty(t, addr)
	resp, err := http.Get("http://" + addr + "/healthz")
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	cancel()
	require.NoError(t, <-done)

	events := rec.snapshot()
	require.NotEmpty(t, events)
	assert.True(t, events[0])
	assert.False(t, events[len(events)-1], "not ready after shutdown")
	assert.Empty(t, s.Addr())
}

func TestRunBindFailureNeverReady(t *testing.T) {
	taken, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer func() { _ = taken.Close() }()

	s := newTestService(t, func(c *Config) { c.ListenAddr = taken.Addr().String() })
	rec := newReadyRecorder()
	s.OnReadyChange(rec.record)

	err = s.Run(context.Background())
	assert.Error(t, err)
	assert.Empty(t, rec.snapshot())
}
