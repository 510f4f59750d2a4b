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

package healthcheck

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatus_String(t *testing.T) {
	tests := []struct {
		status Status
		want   string
	}{
		{StatusStarting, "starting"},
		{StatusHealthy, "healthy"},
		{StatusUnhealthy, "unhealthy"},
		{Status(999), "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.status.String())
		})
	}
}

func TestNewServer(t *testing.T) {
	assert.Equal(t, 8090, NewServer(Config{}).port)
	assert.Equal(t, 8090, NewServer(Config{Port: 70000}).port)
	assert.Equal(t, 9090, NewServer(Config{Port: 9090}).port)
	assert.Equal(t, 8090, DefaultConfig().Port)
}

func TestServer_SetGetStatus(t *testing.T) {
	server := NewServer(Config{})
	assert.Equal(t, StatusStarting, server.GetStatus())

	server.SetStatus(StatusHealthy)
	assert.Equal(t, StatusHealthy, server.GetStatus())

	server.SetStatus(StatusUnhealthy)
	assert.Equal(t, StatusUnhealthy, server.GetStatus())
}

func TestReadyConditions(t *testing.T) {
	server := NewServer(Config{})
	assert.False(t, server.IsReady(), "not ready while starting")

	server.SetStatus(StatusHealthy)
	assert.True(t, server.IsReady())

	server.SetReadyCondition("api", false)
	assert.False(t, server.IsReady())

	server.SetReadyCondition("api", true)
	assert.True(t, server.IsReady())

	server.SetReadyCondition("cache", false)
	assert.False(t, server.IsReady())
	server.ClearReadyCondition("cache")
	assert.True(t, server.IsReady())
}

func TestHealthEndpoints(t *testing.T) {
	server := NewServer(Config{})
	h := server.Handler()

	tests := []struct {
		name            string
		status          Status
		endpoint        string
		expectedStatus  int
		expectedHealthy bool
	}{
		{"healthz starting", StatusStarting, "/healthz", http.StatusServiceUnavailable, false},
		{"healthz healthy", StatusHealthy, "/healthz", http.StatusOK, true},
		{"healthz unhealthy", StatusUnhealthy, "/healthz", http.StatusServiceUnavailable, false},
		{"readyz starting", StatusStarting, "/readyz", http.StatusServiceUnavailable, false},
		{"readyz healthy", StatusHealthy, "/readyz", http.StatusOK, true},
		{"readyz unhealthy", StatusUnhealthy, "/readyz", http.StatusServiceUnavailable, false},
		{"livez starting", StatusStarting, "/livez", http.StatusOK, true},
		{"livez healthy", StatusHealthy, "/livez", http.StatusOK, true},
		{"livez unhealthy", StatusUnhealthy, "/livez", http.StatusServiceUnavailable, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server.SetStatus(tt.status)

			rr := httptest.NewRecorder()
			h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, tt.endpoint, nil))

			assert.Equal(t, tt.expectedStatus, rr.Code)
			assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))

			var response Response
			require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &response))
			assert.Equal(t, tt.expectedHealthy, response.Healthy)
		})
	}
}

func TestStopWithoutStart(t *testing.T) {
	assert.NoError(t, NewServer(Config{}).Stop())
}
