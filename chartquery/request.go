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

package chartquery

// Request pairs a chart's form data with one of its queries. Operators,
// when set, names the post-processing operators to run instead of the
// default pipeline.
type Request struct {
	FormData  FormData    `json:"form_data"`
	Query     QueryObject `json:"query"`
	Operators []string    `json:"operators,omitempty"`
}
