package metrics

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

var (
	meter = otel.Meter("haaangry/business")

	// Recipe search metrics
	RecipeSearchesTotal  metric.Int64Counter
	RecipeSearchDuration metric.Float64Histogram

	// External API metrics
	ExternalAPICallsTotal metric.Int64Counter
	ExternalAPIDuration   metric.Float64Histogram

	// Tool call metrics
	ToolCallsTotal metric.Int64Counter

	// Recommendation fallback metrics
	RecommendFallbackTotal metric.Int64Counter
)

func Init() error {
	var err error

	// Recipe search metrics
	RecipeSearchesTotal, err = meter.Int64Counter(
		"recipe.searches.total",
		metric.WithDescription("Total number of recipe link searches"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return err
	}

	RecipeSearchDuration, err = meter.Float64Histogram(
		"recipe.search.duration",
		metric.WithDescription("Duration of the dual-path recipe link search"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.1, 0.5, 1, 2, 5, 10, 30, 60),
	)
	if err != nil {
		return err
	}

	// External API metrics
	ExternalAPICallsTotal, err = meter.Int64Counter(
		"external.api.calls.total",
		metric.WithDescription("Total number of external API calls"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return err
	}

	ExternalAPIDuration, err = meter.Float64Histogram(
		"external.api.duration",
		metric.WithDescription("Duration of external API calls"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.1, 0.5, 1, 2, 5, 10, 30),
	)
	if err != nil {
		return err
	}

	// Tool call metrics
	ToolCallsTotal, err = meter.Int64Counter(
		"model.tool.calls.total",
		metric.WithDescription("Total number of tool calls executed for the model"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return err
	}

	// Recommendation fallback metrics
	RecommendFallbackTotal, err = meter.Int64Counter(
		"recommend.fallback.total",
		metric.WithDescription("Total number of recommendation fallback ranker invocations"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return err
	}

	return nil
}
