// Package logger настраивает структурированный лог (slog) и трассировку OpenTelemetry.
package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
	"go.opentelemetry.io/otel/trace"
)

const serviceName = "idx-news-movers"

var (
	globalLogger   *slog.Logger
	tracingEnabled bool
	tracer         trace.Tracer
	tracerProvider *sdktrace.TracerProvider
)

// Config — параметры логирования.
type Config struct {
	Level          string // DEBUG, INFO, WARN, ERROR
	Format         string // json или text
	TracingEnabled bool
	Output         io.Writer // по умолчанию os.Stdout
}

// ConfigFromEnv читает LOG_LEVEL, LOG_FORMAT и LOG_TRACING_ENABLED.
func ConfigFromEnv() Config {
	return Config{
		Level:          getEnvOrDefault("LOG_LEVEL", "INFO"),
		Format:         getEnvOrDefault("LOG_FORMAT", "text"),
		TracingEnabled: getEnvOrDefault("LOG_TRACING_ENABLED", "false") == "true",
	}
}

// Init настраивает глобальный логгер и, при необходимости, трассировку.
func Init(cfg Config) {
	out := cfg.Output
	if out == nil {
		out = os.Stdout
	}

	opts := &slog.HandlerOptions{Level: parseLevel(cfg.Level)}
	var handler slog.Handler
	if strings.EqualFold(cfg.Format, "json") {
		handler = slog.NewJSONHandler(out, opts)
	} else {
		handler = slog.NewTextHandler(out, opts)
	}
	globalLogger = slog.New(handler)
	slog.SetDefault(globalLogger)

	tracingEnabled = false
	if cfg.TracingEnabled {
		if err := initTracer(); err != nil {
			globalLogger.Warn("tracing disabled", "error", err)
			return
		}
		tracingEnabled = true
	}
}

func initTracer() error {
	exporter, err := stdouttrace.New(stdouttrace.WithPrettyPrint())
	if err != nil {
		return err
	}

	res, err := resource.New(
		context.Background(),
		resource.WithAttributes(semconv.ServiceName(serviceName)),
	)
	if err != nil {
		return err
	}

	tracerProvider = sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(tracerProvider)
	tracer = otel.Tracer(serviceName)
	return nil
}

// Shutdown сбрасывает незавершённые спаны.
func Shutdown(ctx context.Context) error {
	if tracerProvider != nil {
		return tracerProvider.Shutdown(ctx)
	}
	return nil
}

func parseLevel(level string) slog.Level {
	switch strings.ToUpper(strings.TrimSpace(level)) {
	case "DEBUG":
		return slog.LevelDebug
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func getEnvOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func current() *slog.Logger {
	if globalLogger != nil {
		return globalLogger
	}
	return slog.Default()
}

// StartSpan открывает спан, если трассировка включена.
func StartSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	if !tracingEnabled || tracer == nil {
		return ctx, trace.SpanFromContext(ctx)
	}
	return tracer.Start(ctx, name)
}

func traceAttrs(ctx context.Context) []any {
	if !tracingEnabled {
		return nil
	}
	sc := trace.SpanFromContext(ctx).SpanContext()
	if !sc.IsValid() {
		return nil
	}
	return []any{"trace_id", sc.TraceID().String(), "span_id", sc.SpanID().String()}
}

func log(ctx context.Context, level slog.Level, msg string, args ...any) {
	if attrs := traceAttrs(ctx); attrs != nil {
		args = append(attrs, args...)
	}
	current().Log(ctx, level, msg, args...)
}

// Debug пишет сообщение уровня DEBUG с trace_id/span_id активного спана.
func Debug(ctx context.Context, msg string, args ...any) { log(ctx, slog.LevelDebug, msg, args...) }

// Info пишет сообщение уровня INFO.
func Info(ctx context.Context, msg string, args ...any) { log(ctx, slog.LevelInfo, msg, args...) }

// Warn пишет сообщение уровня WARN.
func Warn(ctx context.Context, msg string, args ...any) { log(ctx, slog.LevelWarn, msg, args...) }

// ErrorWithErr пишет ошибку в лог и помечает активный спан.
func ErrorWithErr(ctx context.Context, msg string, err error, args ...any) {
	if tracingEnabled {
		span := trace.SpanFromContext(ctx)
		if span.SpanContext().IsValid() {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
	}
	log(ctx, slog.LevelError, msg, append([]any{"error", err}, args...)...)
}

// Operation измеряет длительность этапа и закрывает его спан.
type Operation struct {
	ctx   context.Context
	span  trace.Span
	name  string
	start time.Time
}

// StartOperation открывает спан этапа. Поля передаются парами ключ/значение (string, int, bool).
func StartOperation(ctx context.Context, name string, fields ...any) *Operation {
	ctx, span := StartSpan(ctx, name)
	if tracingEnabled {
		span.SetAttributes(toAttributes(fields)...)
	}
	return &Operation{ctx: ctx, span: span, name: name, start: time.Now()}
}

// Context возвращает контекст со спаном этапа.
func (o *Operation) Context() context.Context {
	return o.ctx
}

// End закрывает спан и пишет длительность на уровне DEBUG.
func (o *Operation) End(fields ...any) {
	elapsed := time.Since(o.start)
	if tracingEnabled {
		o.span.SetAttributes(toAttributes(fields)...)
		o.span.SetAttributes(attribute.Int64("duration_ms", elapsed.Milliseconds()))
		o.span.SetStatus(codes.Ok, "completed")
		o.span.End()
	}
	Debug(o.ctx, "operation completed", append([]any{"operation", o.name, "duration_ms", elapsed.Milliseconds()}, fields...)...)
}

func toAttributes(fields []any) []attribute.KeyValue {
	attrs := make([]attribute.KeyValue, 0, len(fields)/2)
	for i := 0; i+1 < len(fields); i += 2 {
		key, ok := fields[i].(string)
		if !ok {
			continue
		}
		switch v := fields[i+1].(type) {
		case string:
			attrs = append(attrs, attribute.String(key, v))
		case int:
			attrs = append(attrs, attribute.Int(key, v))
		case int64:
			attrs = append(attrs, attribute.Int64(key, v))
		case bool:
			attrs = append(attrs, attribute.Bool(key, v))
		}
	}
	return attrs
}
