package telemetry

import (
	"context"
	"errors"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlplog/otlploghttp"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/log/global"
	sdklog "go.opentelemetry.io/otel/sdk/log"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

const serviceName = "nftbridge"

// InitOtelSDK installs the global meter, tracer and logger providers exporting to the given
// collector endpoint. Logrus entries are forwarded to the logger provider.
func InitOtelSDK(
	ctx context.Context, otelCollectorEndpoint string, pushInterval time.Duration,
) (func(context.Context) error, error) {
	if pushInterval <= 0 {
		pushInterval = 10 * time.Second
	}

	res, err := resource.New(
		ctx, resource.WithAttributes(attribute.String("service.name", serviceName)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create otel resource: %s", err)
	}

	metricExporter, err := otlpmetrichttp.New(
		ctx,
		otlpmetrichttp.WithEndpoint(otelCollectorEndpoint),
		otlpmetrichttp.WithInsecure(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create otel metric exporter: %s", err)
	}
	meterProvider := sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(
			sdkmetric.NewPeriodicReader(metricExporter, sdkmetric.WithInterval(pushInterval)),
		),
	)
	otel.SetMeterProvider(meterProvider)

	traceExporter, err := otlptracehttp.New(
		ctx,
		otlptracehttp.WithEndpoint(otelCollectorEndpoint),
		otlptracehttp.WithInsecure(),
	)
	if err != nil {
		// nolint
		meterProvider.Shutdown(ctx)
		return nil, fmt.Errorf("failed to create otel trace exporter: %s", err)
	}
	tracerProvider := sdktrace.NewTracerProvider(
		sdktrace.WithResource(res),
		sdktrace.WithBatcher(traceExporter),
	)
	otel.SetTracerProvider(tracerProvider)

	logExporter, err := otlploghttp.New(
		ctx,
		otlploghttp.WithEndpoint(otelCollectorEndpoint),
		otlploghttp.WithInsecure(),
	)
	if err != nil {
		// nolint
		meterProvider.Shutdown(ctx)
		// nolint
		tracerProvider.Shutdown(ctx)
		return nil, fmt.Errorf("failed to create otel log exporter: %s", err)
	}
	loggerProvider := sdklog.NewLoggerProvider(
		sdklog.WithResource(res),
		sdklog.WithProcessor(sdklog.NewBatchProcessor(logExporter)),
	)
	global.SetLoggerProvider(loggerProvider)
	log.AddHook(NewLogHook(loggerProvider.Logger(serviceName)))

	log.WithFields(log.Fields{
		"endpoint":      otelCollectorEndpoint,
		"push_interval": pushInterval,
	}).Info("otel sdk initialized")

	shutdown := func(ctx context.Context) error {
		return errors.Join(
			meterProvider.Shutdown(ctx),
			tracerProvider.Shutdown(ctx),
			loggerProvider.Shutdown(ctx),
		)
	}
	return shutdown, nil
}
