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

	"github.com/spf13/cobra"

	"github.com/cardinalhq/chartrunner/postprocessing"
)

func init() {
	opts := &requestOptions{}

	cmd := &cobra.Command{
		Use:   "resample",
		Short: "print the resample step for a request file, or null",
		RunE: func(c *cobra.Command, _ []string) error {
			setupLogging(c.ErrOrStderr())
			return runResample(c.OutOrStdout(), c.InOrStdin(), opts)
		},
	}

	cmd.Flags().StringVarP(&opts.file, "file", "f", "", "request file (YAML or JSON), - for stdin, or env:NAME")

	rootCmd.AddCommand(cmd)
}

func runResample(out io.Writer, in io.Reader, opts *requestOptions) error {
	req, err := opts.load(in)
	if err != nil {
		return err
	}
	return writeJSON(out, postprocessing.Resample(req.FormData, req.Query))
}
