package tracer

import (
	"context"
	"log/slog"
	"os"
	"sync"

	"fleximart-catalog/internal/config"
	"fleximart-catalog/internal/logger"
	"fleximart-catalog/internal/version"

	otelpyroscope "github.com/grafana/otel-profiling-go"
	"github.com/grafana/pyroscope-go"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	"go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.17.0"
)

var (
	once         sync.Once
	shutdownFunc = func() {}
	initErr      error
)

var pyroLogrus = func() *logrus.Logger {
	l := logrus.New()
	l.SetLevel(logrus.InfoLevel)
	return l
}()

// newExporter picks OTLP gRPC when a collector is configured, stdout when
// TRACE_STDOUT is set, and nil (no export) otherwise.
func newExporter(ctx context.Context, cfg *config.Config) (trace.SpanExporter, error) {
	switch {
	case cfg.RemoteTraceRpcURI != "":
		return otlptracegrpc.New(ctx,
			otlptracegrpc.WithInsecure(),
			otlptracegrpc.WithEndpoint(cfg.RemoteTraceRpcURI),
			otlptracegrpc.WithCompressor("gzip"),
		)
	case cfg.TraceStdout:
		return stdouttrace.New(stdouttrace.WithWriter(os.Stderr), stdouttrace.WithPrettyPrint())
	default:
		return nil, nil
	}
}

func newResource(ctx context.Context, cfg *config.Config) (*resource.Resource, error) {
	return resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceNameKey.String(cfg.AppName),
			semconv.ServiceVersionKey.String(version.Version),
			attribute.String("db.name", cfg.MongoDBName),
		),
	)
}

// Instance installs the global tracer provider and starts Pyroscope when a
// profiling endpoint is configured. The returned func flushes pending spans.
func Instance(globalCtx context.Context, cfg *config.Config) (func(), error) {
	once.Do(func() {
		log := logger.Instance()

		exp, err := newExporter(globalCtx, cfg)
		if err != nil {
			log.Error("Failed to create trace exporter", slog.String("error", err.Error()))
			initErr = err
			return
		}

		res, err := newResource(globalCtx, cfg)
		if err != nil {
			log.Error("Failed to create resource", slog.String("error", err.Error()))
			initErr = err
			return
		}

		opts := []trace.TracerProviderOption{trace.WithResource(res)}
		if exp != nil {
			opts = append(opts, trace.WithBatcher(exp))
		}
		tp := trace.NewTracerProvider(opts...)

		otel.SetTracerProvider(otelpyroscope.NewTracerProvider(tp))
		otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
			propagation.TraceContext{},
			propagation.Baggage{},
		))

		log.Info("OpenTelemetry Tracer initialized", slog.Bool("exporting", exp != nil))

		var profiler *pyroscope.Profiler
		if cfg.RemoteProfilingHttpURI != "" {
			profiler, err = pyroscope.Start(pyroscope.Config{
				ApplicationName: cfg.AppName,
				ServerAddress:   cfg.RemoteProfilingHttpURI,
				Logger:          pyroLogrus,
				Tags:            map[string]string{"db": cfg.MongoDBName},
			})
			if err != nil {
				log.Error("Pyroscope failed to start", slog.String("error", err.Error()))
			} else {
				log.Info("Pyroscope started successfully")
			}
		}

		shutdownFunc = func() {
			if err := tp.Shutdown(globalCtx); err != nil {
				log.Error("Error shutting down tracer provider", slog.String("error", err.Error()))
			}
			if profiler != nil {
				_ = profiler.Stop()
			}
		}
	})

	return shutdownFunc, initErr
}
