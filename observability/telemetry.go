// Package observability wires OpenTelemetry tracing and metrics for
// bookmarkhub. With telemetry disabled every operation degrades to a no-op,
// so callers never need to branch.
package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "bookmarkhub"

// Config controls the telemetry provider. It is embedded into the process
// configuration document.
type Config struct {
	Enabled        bool              `json:"enabled" yaml:"enabled" env:"TELEMETRY_ENABLED" env-default:"false"`
	ServiceName    string            `json:"service_name" yaml:"service_name" env:"TELEMETRY_SERVICE_NAME" env-default:"bookmarkhub"`
	ServiceVersion string            `json:"service_version" yaml:"service_version" env:"TELEMETRY_SERVICE_VERSION" env-default:"0.1.0"`
	Environment    string            `json:"environment" yaml:"environment" env:"TELEMETRY_ENVIRONMENT" env-default:"development"`
	OTLPEndpoint   string            `json:"otlp_endpoint" yaml:"otlp_endpoint" env:"TELEMETRY_OTLP_ENDPOINT" env-default:"localhost:4318"`
	OTLPHeaders    map[string]string `json:"otlp_headers,omitempty" yaml:"otlp_headers,omitempty"`
	TracingEnabled bool              `json:"tracing_enabled" yaml:"tracing_enabled" env:"TELEMETRY_TRACING_ENABLED" env-default:"true"`
	MetricsEnabled bool              `json:"metrics_enabled" yaml:"metrics_enabled" env:"TELEMETRY_METRICS_ENABLED" env-default:"true"`
	SampleRate     float64           `json:"sample_rate" yaml:"sample_rate" env:"TELEMETRY_SAMPLE_RATE" env-default:"1.0"`
}

// TelemetryProvider provides observability features
type TelemetryProvider struct {
	config        *Config
	tracer        trace.Tracer
	meter         metric.Meter
	traceProvider *sdktrace.TracerProvider

	// Metrics
	bookmarksReceived  metric.Int64Counter
	messagesSent       metric.Int64Counter
	messagesFailed     metric.Int64Counter
	sendDuration       metric.Float64Histogram
	dispatchesInFlight metric.Int64UpDownCounter
}

// NewTelemetryProvider creates a new telemetry provider
func NewTelemetryProvider(cfg *Config) (*TelemetryProvider, error) {
	if cfg == nil {
		cfg = &Config{
			ServiceName:    "bookmarkhub",
			ServiceVersion: "0.1.0",
			Environment:    "development",
			OTLPEndpoint:   "localhost:4318",
			TracingEnabled: true,
			MetricsEnabled: true,
			SampleRate:     1.0,
			Enabled:        false,
		}
	}

	tp := &TelemetryProvider{
		config: cfg,
	}

	if !cfg.Enabled {
		// Return no-op provider
		tp.tracer = otel.Tracer(instrumentationName)
		tp.meter = otel.Meter(instrumentationName)
		return tp, nil
	}

	if cfg.TracingEnabled {
		if err := tp.initTracing(); err != nil {
			return nil, fmt.Errorf("init tracing: %v", err)
		}
	}

	if cfg.MetricsEnabled {
		if err := tp.initMetrics(); err != nil {
			return nil, fmt.Errorf("init metrics: %v", err)
		}
	}

	return tp, nil
}

// initTracing initializes OpenTelemetry tracing
func (tp *TelemetryProvider) initTracing() error {
	res, err := resource.New(context.Background(),
		resource.WithAttributes(
			semconv.ServiceName(tp.config.ServiceName),
			semconv.ServiceVersion(tp.config.ServiceVersion),
			semconv.DeploymentEnvironment(tp.config.Environment),
		),
	)
	if err != nil {
		return fmt.Errorf("create resource: %v", err)
	}

	exporter, err := otlptrace.New(context.Background(),
		otlptracehttp.NewClient(
			otlptracehttp.WithEndpoint(tp.config.OTLPEndpoint),
			otlptracehttp.WithHeaders(tp.config.OTLPHeaders),
		),
	)
	if err != nil {
		return fmt.Errorf("create exporter: %v", err)
	}

	tp.traceProvider = sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(tp.config.SampleRate))),
	)

	otel.SetTracerProvider(tp.traceProvider)
	otel.SetTextMapPropagator(propagation.TraceContext{})

	tp.tracer = otel.Tracer(instrumentationName,
		trace.WithInstrumentationVersion(tp.config.ServiceVersion),
		trace.WithSchemaURL(semconv.SchemaURL),
	)

	return nil
}

// initMetrics initializes OpenTelemetry metrics
func (tp *TelemetryProvider) initMetrics() error {
	tp.meter = otel.Meter(instrumentationName,
		metric.WithInstrumentationVersion(tp.config.ServiceVersion),
		metric.WithSchemaURL(semconv.SchemaURL),
	)

	var err error

	tp.bookmarksReceived, err = tp.meter.Int64Counter(
		"bookmarkhub_bookmarks_received_total",
		metric.WithDescription("Total number of bookmark events accepted"),
	)
	if err != nil {
		return fmt.Errorf("create bookmarks_received counter: %v", err)
	}

	tp.messagesSent, err = tp.meter.Int64Counter(
		"bookmarkhub_messages_sent_total",
		metric.WithDescription("Total number of messages delivered to chat services"),
	)
	if err != nil {
		return fmt.Errorf("create messages_sent counter: %v", err)
	}

	tp.messagesFailed, err = tp.meter.Int64Counter(
		"bookmarkhub_messages_failed_total",
		metric.WithDescription("Total number of failed message deliveries"),
	)
	if err != nil {
		return fmt.Errorf("create messages_failed counter: %v", err)
	}

	tp.sendDuration, err = tp.meter.Float64Histogram(
		"bookmarkhub_send_duration_seconds",
		metric.WithDescription("Duration of per-client send operations"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return fmt.Errorf("create send_duration histogram: %v", err)
	}

	tp.dispatchesInFlight, err = tp.meter.Int64UpDownCounter(
		"bookmarkhub_dispatches_in_flight",
		metric.WithDescription("Number of dispatch goroutines currently running"),
	)
	if err != nil {
		return fmt.Errorf("create dispatches_in_flight counter: %v", err)
	}

	return nil
}

// TraceOperation creates a new span for an operation
func (tp *TelemetryProvider) TraceOperation(ctx context.Context, operationName string, attributes ...attribute.KeyValue) (context.Context, trace.Span) {
	if tp.tracer == nil {
		return ctx, trace.SpanFromContext(ctx)
	}

	return tp.tracer.Start(ctx, operationName,
		trace.WithAttributes(attributes...),
		trace.WithSpanKind(trace.SpanKindInternal),
	)
}

// TraceDispatch creates a span covering one bookmark dispatch.
func (tp *TelemetryProvider) TraceDispatch(ctx context.Context, dispatchID, category string, targeted int) (context.Context, trace.Span) {
	attributes := []attribute.KeyValue{
		attribute.String("bookmarkhub.dispatch.id", dispatchID),
		attribute.String("bookmarkhub.dispatch.category", category),
		attribute.Int("bookmarkhub.dispatch.targeted", targeted),
	}

	return tp.TraceOperation(ctx, "bookmarkhub.dispatch", attributes...)
}

// TraceClientSend creates a span covering one client's send attempt.
func (tp *TelemetryProvider) TraceClientSend(ctx context.Context, client string) (context.Context, trace.Span) {
	attributes := []attribute.KeyValue{
		attribute.String("bookmarkhub.client", client),
		attribute.String("bookmarkhub.operation", "send"),
	}

	return tp.TraceOperation(ctx, "bookmarkhub.send", attributes...)
}

// RecordBookmarkReceived counts an accepted bookmark event.
func (tp *TelemetryProvider) RecordBookmarkReceived(ctx context.Context, category string) {
	if tp.bookmarksReceived != nil {
		tp.bookmarksReceived.Add(ctx, 1, metric.WithAttributes(
			attribute.Bool("categorized", category != ""),
		))
	}
}

// RecordMessageSent records a successful message send
func (tp *TelemetryProvider) RecordMessageSent(ctx context.Context, client string, duration time.Duration) {
	if tp.messagesSent != nil {
		tp.messagesSent.Add(ctx, 1, metric.WithAttributes(
			attribute.String("client", client),
			attribute.String("status", "success"),
		))
	}

	if tp.sendDuration != nil {
		tp.sendDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(
			attribute.String("client", client),
			attribute.String("status", "success"),
		))
	}
}

// RecordMessageFailed records a failed message send
func (tp *TelemetryProvider) RecordMessageFailed(ctx context.Context, client string, duration time.Duration) {
	if tp.messagesFailed != nil {
		tp.messagesFailed.Add(ctx, 1, metric.WithAttributes(
			attribute.String("client", client),
		))
	}

	if tp.sendDuration != nil {
		tp.sendDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(
			attribute.String("client", client),
			attribute.String("status", "error"),
		))
	}
}

// DispatchStarted bumps the in-flight dispatch gauge.
func (tp *TelemetryProvider) DispatchStarted(ctx context.Context) {
	if tp.dispatchesInFlight != nil {
		tp.dispatchesInFlight.Add(ctx, 1)
	}
}

// DispatchFinished decrements the in-flight dispatch gauge.
func (tp *TelemetryProvider) DispatchFinished(ctx context.Context) {
	if tp.dispatchesInFlight != nil {
		tp.dispatchesInFlight.Add(ctx, -1)
	}
}

// SetSpanError sets an error on the current span
func (tp *TelemetryProvider) SetSpanError(span trace.Span, err error) {
	if span != nil && err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
}

// SetSpanSuccess marks the span as successful
func (tp *TelemetryProvider) SetSpanSuccess(span trace.Span) {
	if span != nil {
		span.SetStatus(codes.Ok, "")
	}
}

// Shutdown gracefully shuts down the telemetry provider
func (tp *TelemetryProvider) Shutdown(ctx context.Context) error {
	if tp.traceProvider != nil {
		return tp.traceProvider.Shutdown(ctx)
	}
	return nil
}

// GetTracer returns the tracer instance
func (tp *TelemetryProvider) GetTracer() trace.Tracer {
	return tp.tracer
}

// GetMeter returns the meter instance
func (tp *TelemetryProvider) GetMeter() metric.Meter {
	return tp.meter
}
