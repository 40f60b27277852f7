package utils

import (
	"strconv"

	"github.com/akeren/telecheck/pkg/constants"
)

// Tracing is the OTEL_* environment shared by the tracer provider and the
// HTTP middleware.
type Tracing struct {
	Enabled     bool
	ServiceName string
	Endpoint    string
	// SampleRatio is the share of root spans kept, between 0 and 1.
	SampleRatio float64
}

func TracingFromEnv() Tracing {
	t := Tracing{
		Enabled:     GetEnvBool("OTEL_TRACES_ENABLED", false),
		ServiceName: GetEnvTrimmedOrDefault("OTEL_SERVICE_NAME", constants.ServiceName),
		Endpoint:    GetEnvTrimmedOrDefault("OTEL_EXPORTER_OTLP_ENDPOINT", "http://localhost:4318"),
		SampleRatio: 1,
	}

	if raw := GetEnvTrimmed("OTEL_TRACES_SAMPLER_ARG"); raw != "" {
		if ratio, err := strconv.ParseFloat(raw, 64); err == nil && ratio >= 0 && ratio <= 1 {
			t.SampleRatio = ratio
		}
	}
	return t
}
