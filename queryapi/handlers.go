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
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/cardinalhq/chartrunner/chartquery"
	"github.com/cardinalhq/chartrunner/postprocessing"
)

const cacheHeader = "x-chartrunner-cache"

type resampleResponse struct {
	Step *chartquery.PostProcessingStep `json:"step"`
}

type buildResponse struct {
	PostProcessing []chartquery.PostProcessingStep `json:"post_processing"`
	Query          chartquery.QueryObject          `json:"query"`
}

type validateResponse struct {
	Valid  bool     `json:"valid"`
	Errors []string `json:"errors,omitempty"`
}

// routeHandler computes the response for a decoded request. Returned
// errors wrapping postprocessing.ErrUnknownOperator are the caller's fault.
type routeHandler func(ctx context.Context, req chartquery.Request) (any, error)

type requestError struct {
	status int
	code   APIErrorCode
	msg    string
}

func (s *PostProcessingService) readRequest(w http.ResponseWriter, r *http.Request) ([]byte, chartquery.Request, *requestError) {
	var req chartquery.Request
	if r.Method != http.MethodPost {
		return nil, req, &requestError{http.StatusMethodNotAllowed, ErrMethodNotAllowed, "only POST method is allowed"}
	}
	if ct := r.Header.Get("Content-Type"); !strings.HasPrefix(ct, "application/json") {
		return nil, req, &requestError{http.StatusUnsupportedMediaType, ErrUnsupportedMedia, "unsupported content type"}
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.maxBody))
	defer func() { _ = r.Body.Close() }()
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, req, &requestError{http.StatusRequestEntityTooLarge, InvalidJSON, "request body too large"}
		}
		return nil, req, &requestError{http.StatusBadRequest, InvalidJSON, "failed to read request body"}
	}
	if err := json.Unmarshal(body, &req); err != nil {
		return nil, req, &requestError{http.StatusBadRequest, InvalidJSON, "invalid JSON body: " + err.Error()}
	}
	return body, req, nil
}

func (s *PostProcessingService) serveRoute(route string, h routeHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ctx, span := s.tracer.Start(r.Context(), "chartrunner.api."+route)
		defer span.End()

		status := http.StatusOK
		defer func() { recordRequestDuration(ctx, route, status, start) }()

		requestID, _ := GetRequestIDFromContext(ctx)
		span.SetAttributes(attribute.String("request_id", requestID))

		body, req, rerr := s.readRequest(w, r)
		if rerr != nil {
			status = rerr.status
			span.SetStatus(codes.Error, rerr.msg)
			writeAPIError(w, rerr.status, rerr.code, rerr.msg)
			return
		}

		key := cacheKey(route, body)
		if cached, ok := s.cache.get(key); ok {
			recordCacheLookup(ctx, route, true)
			span.SetAttributes(attribute.Bool("cache_hit", true))
			w.Header().Set(cacheHeader, "hit")
			writeJSONBytes(w, cached)
			return
		}
		if s.cache != nil {
			recordCacheLookup(ctx, route, false)
		}

		resp, err := h(ctx, req)
		if err != nil {
			span.RecordError(err)
			if errors.Is(err, postprocessing.ErrUnknownOperator) {
				status = http.StatusBadRequest
				span.SetStatus(codes.Error, "unknown operator")
				writeAPIError(w, status, ErrUnknownOperatorCode, err.Error())
				return
			}
			status = http.StatusInternalServerError
			span.SetStatus(codes.Error, "handler error")
			slog.Error("Post-processing request failed",
				slog.String("route", route),
				slog.String("requestID", requestID),
				slog.Any("error", err))
			writeAPIError(w, status, ErrInternalError, err.Error())
			return
		}

		encoded, err := json.Marshal(resp)
		if err != nil {
			status = http.StatusInternalServerError
			span.RecordError(err)
			span.SetStatus(codes.Error, "encode error")
			writeAPIError(w, status, ErrInternalError, "failed to encode response: "+err.Error())
			return
		}

		s.cache.set(key, encoded)
		if s.cache != nil {
			w.Header().Set(cacheHeader, "miss")
		}
		writeJSONBytes(w, encoded)
	}
}

func writeJSONBytes(w http.ResponseWriter, body []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

func (s *PostProcessingService) pipelineFor(req chartquery.Request) (*postprocessing.Pipeline, error) {
	if len(req.Operators) == 0 {
		return s.pipeline, nil
	}
	return postprocessing.NewPipeline(req.Operators...)
}

func (s *PostProcessingService) handleResample(ctx context.Context, req chartquery.Request) (any, error) {
	step := postprocessing.Resample(req.FormData, req.Query)
	if step != nil {
		recordSteps(ctx, []chartquery.PostProcessingStep{*step})
	}
	return resampleResponse{Step: step}, nil
}

func (s *PostProcessingService) handleBuild(ctx context.Context, req chartquery.Request) (any, error) {
	pipeline, err := s.pipelineFor(req)
	if err != nil {
		return nil, err
	}
	query := pipeline.Apply(req.FormData, req.Query)
	steps := query.PostProcessing[len(req.Query.PostProcessing):]
	if steps == nil {
		steps = []chartquery.PostProcessingStep{}
	}
	recordSteps(ctx, steps)

	requestID, _ := GetRequestIDFromContext(ctx)
	slog.Debug("Built post-processing steps",
		slog.String("requestID", requestID),
		slog.Any("operators", pipeline.Names()),
		slog.Int("steps", len(steps)))

	return buildResponse{PostProcessing: steps, Query: query}, nil
}

func (s *PostProcessingService) handleValidate(_ context.Context, req chartquery.Request) (any, error) {
	problems := postprocessing.LintProblems(postprocessing.LintResample(req.FormData))
	if len(req.Operators) > 0 {
		if _, err := postprocessing.NewPipeline(req.Operators...); err != nil {
			problems = append(problems, postprocessing.LintProblems(err)...)
		}
	}
	return validateResponse{Valid: len(problems) == 0, Errors: problems}, nil
}
