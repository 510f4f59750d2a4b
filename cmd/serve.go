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

package cmd

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/cardinalhq/chartrunner/config"
	"github.com/cardinalhq/chartrunner/internal/debugging"
	"github.com/cardinalhq/chartrunner/internal/healthcheck"
	"github.com/cardinalhq/chartrunner/internal/idgen"
	"github.com/cardinalhq/chartrunner/queryapi"
)

func init() {
	var configFile string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "start the post-processing API server",
		RunE: func(_ *cobra.Command, _ []string) error {
			servicename := "chartrunner"
			doneCtx, doneFx, err := setupTelemetry(servicename, idgen.InstanceID())
			if err != nil {
				return fmt.Errorf("failed to setup telemetry: %w", err)
			}

			defer func() {
				if err := doneFx(); err != nil {
					slog.Error("Error shutting down telemetry", slog.Any("error", err))
				}
			}()

			cfg, err := loadConfig(configFile)
			if err != nil {
				slog.Error("Failed to load config", slog.Any("error", err))
				return fmt.Errorf("failed to load config: %w", err)
			}

			service, err := queryapi.NewPostProcessingService(cfg.API)
			if err != nil {
				slog.Error("Failed to create post-processing service", slog.Any("error", err))
				return fmt.Errorf("failed to create post-processing service: %w", err)
			}

			healthServer := healthcheck.NewServer(cfg.Health)
			healthServer.SetReadyCondition("api", false)
			service.OnReadyChange(func(ready bool) {
				healthServer.SetReadyCondition("api", ready)
			})

			g, ctx := errgroup.WithContext(doneCtx)
			g.Go(func() error {
				return healthServer.Start(ctx)
			})
			g.Go(func() error {
				return debugging.RunPprof(ctx, cfg.Debug)
			})
			g.Go(func() error {
				defer healthServer.SetStatus(healthcheck.StatusUnhealthy)
				return service.Run(ctx)
			})

			// Readiness also waits for the api condition, set once the listener is bound.
			healthServer.SetStatus(healthcheck.StatusHealthy)

			return g.Wait()
		},
	}

	cmd.Flags().StringVarP(&configFile, "config", "c", "", "path to a config file (default: ./config.yaml if present)")

	rootCmd.AddCommand(cmd)
}

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.Load()
	}
	return config.LoadFile(path)
}
