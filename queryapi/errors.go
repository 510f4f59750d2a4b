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
	"encoding/json"
	"net/http"
)

type APIErrorCode string

const (
	InvalidJSON            APIErrorCode = "INVALID_JSON"
	ErrMethodNotAllowed    APIErrorCode = "METHOD_NOT_ALLOWED"
	ErrUnsupportedMedia    APIErrorCode = "UNSUPPORTED_CONTENT_TYPE"
	ErrUnknownOperatorCode APIErrorCode = "UNKNOWN_OPERATOR"
	ErrUnauthorized        APIErrorCode = "UNAUTHORIZED"
	ErrInternalError       APIErrorCode = "INTERNAL_ERROR"
)

type APIError struct {
	Status  int          `json:"status"`
	Code    APIErrorCode `json:"code"`
	Message string       `json:"message"`
}

func writeAPIError(w http.ResponseWriter, status int, code APIErrorCode, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(APIError{
		Status:  status,
		Code:    code,
		Message: msg,
	})
}
