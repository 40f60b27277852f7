package config

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/akeren/telecheck/internal/log"
	"github.com/akeren/telecheck/pkg/utils"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// SetupTracing installs the global tracer provider when OTEL_TRACES_ENABLED
// is true. The returned shutdown flushes pending spans; it is nil when
// tracing is off.
func SetupTracing(logger *log.Logger) (func(context.Context) error, error) {
	settings := utils.TracingFromEnv()
	if !settings.Enabled {
		return nil, nil
	}

	endpoint, err := otlpEndpointURL(settings.Endpoint)
	if err != nil {
		return nil, err
	}

	ctx := context.Background()
	exporter, err := otlptracehttp.New(ctx, otlptracehttp.WithEndpointURL(endpoint))
	if err != nil {
		return nil, fmt.Errorf("otlp exporter: %w", err)
	}

	res, err := resource.Merge(resource.Default(), resource.NewSchemaless(
		attribute.String("service.name", settings.ServiceName),
		attribute.String("deployment.environment", GetAppEnv()),
	))
	if err != nil {
		return nil, fmt.Errorf("tracing resource: %w", err)
	}

	provider := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(settings.SampleRatio))),
	)

	otel.SetTracerProvider(provider)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(propagation.TraceContext{}, propagation.Baggage{}))

	logger.Info("Tracing enabled",
		"service", settings.ServiceName,
		"endpoint", endpoint,
		"sample_ratio", settings.SampleRatio,
	)
	return provider.Shutdown, nil
}

// otlpEndpointURL accepts a full http(s) URL or a bare host:port, which is
// sent over plain http. A URL without a path posts to /v1/traces.
func otlpEndpointURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", fmt.Errorf("OTEL_EXPORTER_OTLP_ENDPOINT is empty")
	}
	if !strings.Contains(raw, "://") {
		raw = "http://" + raw
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("OTEL_EXPORTER_OTLP_ENDPOINT %q: %w", raw, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("OTEL_EXPORTER_OTLP_ENDPOINT %q: scheme must be http or https", raw)
	}
	if u.Host == "" {
		return "", fmt.Errorf("OTEL_EXPORTER_OTLP_ENDPOINT %q: missing host", raw)
	}
	if u.Path == "" || u.Path == "/" {
		u.Path = "/v1/traces"
	}
	return u.String(), nil
}
