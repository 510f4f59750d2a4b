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
	"encoding/json"
	"fmt"
	"io"

	"github.com/cardinalhq/chartrunner/chartquery"
	"github.com/cardinalhq/chartrunner/internal/requestfile"
	"github.com/cardinalhq/chartrunner/postprocessing"
)

// requestOptions are the flags shared by the offline commands.
type requestOptions struct {
	file      string
	operators []string
}

func (o *requestOptions) load(stdin io.Reader) (chartquery.Request, error) {
	if o.file == "" {
		return chartquery.Request{}, fmt.Errorf("a request file is required (-f path, -f - for stdin, or -f env:NAME)")
	}
	req, err := requestfile.Load(o.file, stdin)
	if err != nil {
		return req, err
	}
	if len(o.operators) > 0 {
		req.Operators = o.operators
	}
	return req, nil
}

// pipelineFor picks the operators from the flags, then the request file, then
// the defaults.
func pipelineFor(req chartquery.Request) (*postprocessing.Pipeline, error) {
	if len(req.Operators) == 0 {
		return postprocessing.DefaultPipeline(), nil
	}
	return postprocessing.NewPipeline(req.Operators...)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
