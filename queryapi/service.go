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
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/cardinalhq/chartrunner/postprocessing"
)

// Config is owned by this package and embedded in the application config.
type Config struct {
	ListenAddr       string        `mapstructure:"listen_addr"`
	APIKeys          []string      `mapstructure:"api_keys"`
	CacheTTL         time.Duration `mapstructure:"cache_ttl"`
	CacheCapacity    uint64        `mapstructure:"cache_capacity"`
	DefaultOperators []string      `mapstructure:"default_operators"`
	MaxBodyBytes     int64         `mapstructure:"max_body_bytes"`
}

func DefaultConfig() Config {
	return Config{
		ListenAddr:       ":8080",
		CacheTTL:         5 * time.Minute,
		CacheCapacity:    10_000,
		DefaultOperators: append([]string(nil), postprocessing.DefaultOperators...),
		MaxBodyBytes:     1 << 20,
	}
}

// PostProcessingService serves the post-processing builders over HTTP.
type PostProcessingService struct {
	addr     string
	apiKeys  []string
	pipeline *postprocessing.Pipeline
	cache    *responseCache
	maxBody  int64

	tracer    trace.Tracer
	onReady   func(ready bool)
	boundAddr atomic.Pointer[string]
}

func NewPostProcessingService(cfg Config) (*PostProcessingService, error) {
	names := cfg.DefaultOperators
	if len(names) == 0 {
		names = postprocessing.DefaultOperators
	}
	pipeline, err := postprocessing.NewPipeline(names...)
	if err != nil {
		return nil, fmt.Errorf("invalid default operators: %w", err)
	}

	maxBody := cfg.MaxBodyBytes
	if maxBody <= 0 {
		maxBody = DefaultConfig().MaxBodyBytes
	}

	keys := make([]string, 0, len(cfg.APIKeys))
	for _, k := range cfg.APIKeys {
		if k != "" {
			keys = append(keys, k)
		}
	}

	return &PostProcessingService{
		addr:     cfg.ListenAddr,
		apiKeys:  keys,
		pipeline: pipeline,
		cache:    newResponseCache(cfg.CacheTTL, cfg.CacheCapacity),
		maxBody:  maxBody,
		tracer:   tracer,
	}, nil
}

// Handler returns the routes served by Run.
func (s *PostProcessingService) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/api/v1/postprocessing/resample", s.wrap("resample", s.handleResample))
	mux.HandleFunc("/api/v1/postprocessing/build", s.wrap("build", s.handleBuild))
	mux.HandleFunc("/api/v1/postprocessing/validate", s.wrap("validate", s.handleValidate))

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	return mux
}

func (s *PostProcessingService) wrap(route string, h routeHandler) http.HandlerFunc {
	return requestIDMiddleware(s.apiKeyMiddleware(s.serveRoute(route, h)))
}

// OnReadyChange registers fn to be told when the API starts accepting
// connections (true) and when it stops (false). Call it before Run.
func (s *PostProcessingService) OnReadyChange(fn func(ready bool)) {
	s.onReady = fn
}

// Addr is the address the listener is bound to, or "" when Run is not
// serving.
func (s *PostProcessingService) Addr() string {
	if a := s.boundAddr.Load(); a != nil {
		return *a
	}
	return ""
}

func (s *PostProcessingService) setReady(ready bool, addr string) {
	if ready {
		s.boundAddr.Store(&addr)
	} else {
		s.boundAddr.Store(nil)
	}
	if s.onReady != nil {
		s.onReady(ready)
	}
}

// Run serves until doneCtx is cancelled, then shuts the server down.
// Readiness is reported only once the listener is bound.
func (s *PostProcessingService) Run(doneCtx context.Context) error {
	slog.Info("Starting post-processing service",
		slog.String("addr", s.addr),
		slog.Any("defaultOperators", s.pipeline.Names()),
		slog.Bool("apiKeysRequired", len(s.apiKeys) > 0))

	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		slog.Error("Failed to start HTTP server", slog.Any("error", err))
		return fmt.Errorf("failed to listen on %s: %w", s.addr, err)
	}

	if s.cache != nil {
		go s.cache.start()
		defer s.cache.stop()
	}

	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("HTTP server stopped", slog.Any("error", err))
			errCh <- err
		}
		close(errCh)
	}()

	s.setReady(true, ln.Addr().String())
	defer s.setReady(false, "")

	select {
	case <-doneCtx.Done():
	case err, ok := <-errCh:
		if ok && err != nil {
			return fmt.Errorf("HTTP server failed: %w", err)
		}
	}

	s.setReady(false, "")
	slog.Info("Shutting down post-processing service")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("Failed to shutdown HTTP server", slog.Any("error", err))
		return fmt.Errorf("failed to shutdown HTTP server: %w", err)
	}
	return nil
}
