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
	"crypto/subtle"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
)

const (
	apiKeyHeader    = "x-chartrunner-api-key"
	requestIDHeader = "x-request-id"
)

type contextKey struct{}

var requestIDKey = contextKey{}

// WithRequestID returns a new context with the request ID stored in it
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}

// GetRequestIDFromContext retrieves the request ID from the context
func GetRequestIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(requestIDKey).(string)
	return id, ok
}

// requestIDMiddleware keeps the caller's x-request-id, or assigns one, and
// echoes it on the response.
func requestIDMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, id)
		next(w, r.WithContext(WithRequestID(r.Context(), id)))
	}
}

// apiKeyMiddleware rejects requests without a configured API key. With no
// keys configured every request is let through.
func (s *PostProcessingService) apiKeyMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if len(s.apiKeys) == 0 {
			next(w, r)
			return
		}

		apiKey := r.Header.Get(apiKeyHeader)
		if apiKey == "" {
			writeAPIError(w, http.StatusUnauthorized, ErrUnauthorized, "missing "+apiKeyHeader+" header")
			return
		}
		if !s.validAPIKey(apiKey) {
			requestID, _ := GetRequestIDFromContext(r.Context())
			slog.Warn("API key validation failed", slog.String("requestID", requestID))
			writeAPIError(w, http.StatusUnauthorized, ErrUnauthorized, "invalid API key")
			return
		}
		next(w, r)
	}
}

func (s *PostProcessingService) validAPIKey(key string) bool {
	ok := false
	for _, k := range s.apiKeys {
		if subtle.ConstantTimeCompare([]byte(k), []byte(key)) == 1 {
			ok = true
		}
	}
	return ok
}
