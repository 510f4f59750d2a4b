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
	"log"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/cardinalhq/chartrunner/chartquery"
	"github.com/cardinalhq/chartrunner/postprocessing"
)

var (
	tracer = otel.Tracer("github.com/cardinalhq/chartrunner/queryapi")

	stepsBuiltCounter  metric.Int64Counter
	cacheLookupCounter metric.Int64Counter
	requestDuration    metric.Float64Histogram
)

func init() {
	meter := otel.Meter("github.com/cardinalhq/chartrunner/queryapi")

	var err error

	stepsBuiltCounter, err = meter.Int64Counter(
		"chartrunner.postprocessing.steps.built",
		metric.WithDescription("Number of post-processing steps built, by operation and resample method"),
	)
	if err != nil {
		log.Fatalf("failed to create postprocessing.steps.built counter: %v", err)
	}

	cacheLookupCounter, err = meter.Int64Counter(
		"chartrunner.api.cache.lookups",
		metric.WithDescription("Response cache lookups, by route and result"),
	)
	if err != nil {
		log.Fatalf("failed to create api.cache.lookups counter: %v", err)
	}

	requestDuration, err = meter.Float64Histogram(
		"chartrunner.api.request.duration",
		metric.WithUnit("s"),
		metric.WithDescription("Time spent handling a post-processing API request"),
	)
	if err != nil {
		log.Fatalf("failed to create api.request.duration histogram: %v", err)
	}
}

func recordSteps(ctx context.Context, steps []chartquery.PostProcessingStep) {
	for _, step := range steps {
		attrs := []attribute.KeyValue{attribute.String("operation", step.Operation)}
		if opts, ok := step.Options.(postprocessing.ResampleOptions); ok {
			attrs = append(attrs, attribute.String("method", opts.Method))
		}
		stepsBuiltCounter.Add(ctx, 1, metric.WithAttributes(attrs...))
	}
}

func recordCacheLookup(ctx context.Context, route string, hit bool) {
	cacheLookupCounter.Add(ctx, 1, metric.WithAttributes(
		attribute.String("route", route),
		attribute.Bool("hit", hit),
	))
}

func recordRequestDuration(ctx context.Context, route string, status int, start time.Time) {
	requestDuration.Record(ctx, time.Since(start).Seconds(), metric.WithAttributes(
		attribute.String("route", route),
		attribute.Int("status", status),
	))
}
