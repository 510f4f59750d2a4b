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
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cardinalhq/chartrunner/postprocessing"
)

func init() {
	opts := &requestOptions{}

	cmd := &cobra.Command{
		Use:   "build",
		Short: "print the post-processing steps for a request file",
		Long: "Run the operator pipeline over a request file and print the resulting post_processing list.\n" +
			"Available operators: " + strings.Join(postprocessing.OperatorNames(), ", "),
		RunE: func(c *cobra.Command, _ []string) error {
			setupLogging(c.ErrOrStderr())
			return runBuild(c.OutOrStdout(), c.InOrStdin(), opts)
		},
	}

	cmd.Flags().StringVarP(&opts.file, "file", "f", "", "request file (YAML or JSON), - for stdin, or env:NAME")
	cmd.Flags().StringSliceVar(&opts.operators, "operators", nil, "operators to run, in order (default resample,pivot)")

	rootCmd.AddCommand(cmd)
}

func runBuild(out io.Writer, in io.Reader, opts *requestOptions) error {
	req, err := opts.load(in)
	if err != nil {
		return err
	}
	pipeline, err := pipelineFor(req)
	if err != nil {
		return err
	}

	steps := pipeline.Build(req.FormData, req.Query)
	slog.Debug("Built post-processing steps",
		slog.Any("operators", pipeline.Names()),
		slog.Int("steps", len(steps)))

	return writeJSON(out, steps)
}

