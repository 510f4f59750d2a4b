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

// Package requestfile loads post-processing requests for the CLI.
package requestfile

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/cardinalhq/chartrunner/chartquery"
)

// Load reads a request from filename. "env:NAME" reads the contents of
// the NAME environment variable and "-" reads stdin. YAML and JSON are
// both accepted.
func Load(filename string, stdin io.Reader) (chartquery.Request, error) {
	if after, ok := strings.CutPrefix(filename, "env:"); ok {
		contents := os.Getenv(after)
		if contents == "" {
			return chartquery.Request{}, fmt.Errorf("environment variable %s is not set", after)
		}
		return Parse(filename, []byte(contents))
	}

	var (
		contents []byte
		err      error
	)
	if filename == "-" {
		contents, err = io.ReadAll(stdin)
	} else {
		contents, err = os.ReadFile(filename)
	}
	if err != nil {
		return chartquery.Request{}, fmt.Errorf("failed to read request from %s: %w", filename, err)
	}
	return Parse(filename, contents)
}

// Parse decodes YAML (or JSON) contents into a request. The document is
// routed through JSON so column and metric unions decode the same way as
// on the HTTP API.
func Parse(source string, contents []byte) (chartquery.Request, error) {
	var req chartquery.Request

	var doc any
	dec := yaml.NewDecoder(bytes.NewReader(contents))
	if err := dec.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return req, fmt.Errorf("request from %s is empty", source)
		}
		return req, fmt.Errorf("failed to parse request from %s: %w", source, err)
	}

	asJSON, err := json.Marshal(doc)
	if err != nil {
		return req, fmt.Errorf("failed to convert request from %s: %w", source, err)
	}
	if err := json.Unmarshal(asJSON, &req); err != nil {
		return req, fmt.Errorf("invalid request in %s: %w", source, err)
	}
	return req, nil
}
