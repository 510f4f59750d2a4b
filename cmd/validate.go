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
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/cardinalhq/chartrunner/postprocessing"
)

var errInvalidRequest = errors.New("request is not valid")

func init() {
	opts := &requestOptions{}

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "lint the resample settings and operators of a request file",
		RunE: func(c *cobra.Command, _ []string) error {
			setupLogging(c.ErrOrStderr())
			return runValidate(c.OutOrStdout(), c.InOrStdin(), opts)
		},
	}

	cmd.Flags().StringVarP(&opts.file, "file", "f", "", "request file (YAML or JSON), - for stdin, or env:NAME")
	cmd.Flags().StringSliceVar(&opts.operators, "operators", nil, "operators to check")

	rootCmd.AddCommand(cmd)
}

// runValidate prints one problem per line and returns errInvalidRequest
// when there is at least one.
func runValidate(out io.Writer, in io.Reader, opts *requestOptions) error {
	req, err := opts.load(in)
	if err != nil {
		return err
	}

	problems := postprocessing.LintProblems(postprocessing.LintResample(req.FormData))
	if _, err := pipelineFor(req); err != nil {
		problems = append(problems, postprocessing.LintProblems(err)...)
	}

	if len(problems) == 0 {
		_, err := fmt.Fprintln(out, "ok")
		return err
	}
	for _, p := range problems {
		if _, err := fmt.Fprintln(out, p); err != nil {
			return err
		}
	}
	return fmt.Errorf("%w: %d problem(s)", errInvalidRequest, len(problems))
}
