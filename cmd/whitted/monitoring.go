package main

import (
	"context"
	"fmt"
	"time"

	"contrib.go.opencensus.io/exporter/stackdriver"
	cloudmetrics "github.com/GoogleCloudPlatform/opentelemetry-operations-go/exporter/metric"
	cloudtrace "github.com/GoogleCloudPlatform/opentelemetry-operations-go/exporter/trace"
	"github.com/golang/glog"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/global"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

var renderSeconds = metric.Must(global.Meter("whitted/cmd/whitted")).NewFloat64ValueRecorder(
	"whitted/render_seconds",
	metric.WithDescription("Wall time spent rendering one image"),
)

// installMonitoring exports traces and metrics to Google Cloud.  The
// returned function flushes and stops every exporter.
func installMonitoring(ctx context.Context, project string, traceRatio float64) (func(), error) {
	metricsOpts := []cloudmetrics.Option{}
	traceOpts := []cloudtrace.Option{}
	if project != "" {
		metricsOpts = append(metricsOpts, cloudmetrics.WithProjectID(project))
		traceOpts = append(traceOpts, cloudtrace.WithProjectID(project))
	}

	_, traceShutdown, err := cloudtrace.InstallNewPipeline(traceOpts, sdktrace.WithSampler(sdktrace.TraceIDRatioBased(traceRatio)))
	if err != nil {
		return nil, fmt.Errorf("while installing Cloud Trace OpenTelemetry trace pipeline: %w", err)
	}

	pusher, err := cloudmetrics.InstallNewPipeline(metricsOpts)
	if err != nil {
		traceShutdown()
		return nil, fmt.Errorf("while installing Cloud Metrics OpenTelemetry meter pipeline: %w", err)
	}

	exporter, err := stackdriver.NewExporter(stackdriver.Options{
		ProjectID:         project,
		MetricPrefix:      "whitted",
		ReportingInterval: 60 * time.Second,
	})
	if err != nil {
		pusher.Stop(ctx)
		traceShutdown()
		return nil, fmt.Errorf("while creating Stackdriver metrics exporter: %w", err)
	}
	if err := exporter.StartMetricsExporter(); err != nil {
		pusher.Stop(ctx)
		traceShutdown()
		return nil, fmt.Errorf("while starting Stackdriver metrics exporter: %w", err)
	}

	return func() {
		exporter.Flush()
		exporter.StopMetricsExporter()
		if err := pusher.Stop(ctx); err != nil {
			glog.Errorf("While stopping metrics pusher: %v", err)
		}
		traceShutdown()
	}, nil
}
