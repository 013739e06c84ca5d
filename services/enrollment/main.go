// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/AleutianAI/PolicyDesk/pkg/catalog"
	"github.com/AleutianAI/PolicyDesk/pkg/export"
	"github.com/AleutianAI/PolicyDesk/pkg/logging"
	"github.com/AleutianAI/PolicyDesk/services/enrollment/observability"
	"github.com/AleutianAI/PolicyDesk/services/enrollment/routes"
	"github.com/AleutianAI/PolicyDesk/services/enrollment/storage"
	"github.com/AleutianAI/PolicyDesk/services/extract"

	// --- OpenTelemetry imports ---
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"google.golang.org/grpc"
)

func initTracer() (func(context.Context), error) {
	ctx := context.Background()

	otelEndpoint := os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT")
	if otelEndpoint == "" {
		otelEndpoint = "policydesk-otel-collector:4317"
	}
	conn, err := grpc.NewClient(otelEndpoint,
		grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, err
	}
	traceExporter, err := otlptracegrpc.New(ctx, otlptracegrpc.WithGRPCConn(conn))
	if err != nil {
		return nil, err
	}
	res, err := resource.New(ctx,
		resource.WithAttributes(semconv.ServiceNameKey.String("enrollment-service")))
	if err != nil {
		return nil, err
	}
	bsp := sdktrace.NewBatchSpanProcessor(traceExporter)
	traceProvider := sdktrace.NewTracerProvider(
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
		sdktrace.WithResource(res),
		sdktrace.WithSpanProcessor(bsp))
	otel.SetTracerProvider(traceProvider)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(propagation.
		TraceContext{}, propagation.Baggage{}))

	return func(ctx context.Context) {
		ctx, cancel := context.WithTimeout(ctx, time.Second*5)
		defer cancel()
		if err := traceExporter.Shutdown(ctx); err != nil {
			slog.Error("failed to shutdown OTLP exporter", "error", err)
		}
	}, nil
}

// newLogExporter builds a GCS log exporter when POLICYDESK_LOG_BUCKET
// is set to a gs://bucket[/prefix] target. POLICYDESK_GCS_KEY may point
// at a service account key; otherwise application default credentials
// apply. Returns nil when shipping is not configured.
func newLogExporter() *logging.GCSExporter {
	target := os.Getenv("POLICYDESK_LOG_BUCKET")
	if target == "" {
		return nil
	}
	bucket, prefix, err := export.ParseGCSTarget(target)
	if err != nil {
		log.Fatalf("invalid POLICYDESK_LOG_BUCKET: %v", err)
	}
	exporter, err := logging.NewGCSExporter(context.Background(),
		bucket, prefix, "enrollment-service", os.Getenv("POLICYDESK_GCS_KEY"))
	if err != nil {
		log.Fatalf("failed to configure the GCS log exporter: %v", err)
	}
	return exporter
}

// loadCatalog picks the plan catalog: a YAML file from
// POLICYDESK_CATALOG_PATH when set, otherwise the embedded default. When
// a file is used, a watcher hot-reloads it on change.
func loadCatalog() (*catalog.Catalog, *catalog.Watcher) {
	path := os.Getenv("POLICYDESK_CATALOG_PATH")
	if path == "" {
		slog.Info("POLICYDESK_CATALOG_PATH not set, using the embedded plan catalog")
		return catalog.Default(), nil
	}

	cat, err := catalog.Load(path)
	if err != nil {
		log.Fatalf("failed to load plan catalog from %s: %v", path, err)
	}
	watcher, err := catalog.NewWatcher(cat, slog.Default())
	if err != nil {
		slog.Warn("catalog hot reload disabled", "error", err)
		return cat, nil
	}
	watcher.Start()
	slog.Info("plan catalog loaded", "path", path, "hot_reload", true)
	return cat, watcher
}

func main() {
	port := os.Getenv("POLICYDESK_PORT")
	if port == "" {
		port = "12310"
	}

	logCfg := logging.ConfigFromEnv()
	if exporter := newLogExporter(); exporter != nil {
		logCfg.Exporter = exporter
		defer func() {
			if err := exporter.Close(); err != nil {
				slog.Error("failed to flush logs to GCS", "error", err)
			}
		}()
	}
	if err := logging.Init(logCfg); err != nil {
		log.Fatalf("failed to initialize logging: %v", err)
	}

	cleanup, err := initTracer()
	if err != nil {
		log.Fatalf("failed to setup the OTLP tracer: %v", err)
	}
	defer cleanup(context.Background())

	dataDir := os.Getenv("POLICYDESK_DATA_DIR")
	if dataDir == "" {
		dataDir = "/var/lib/policydesk"
		slog.Warn("POLICYDESK_DATA_DIR not set, defaulting", "path", dataDir)
	}
	store, err := storage.NewRecordStore(storage.DefaultConfig(dataDir))
	if err != nil {
		log.Fatalf("failed to open the record store at %s: %v", dataDir, err)
	}
	defer store.Close()

	cat, watcher := loadCatalog()
	if watcher != nil {
		defer watcher.Stop()
	}

	aiClient, err := extract.NewOpenAIClient()
	if err != nil {
		log.Fatalf("failed to configure the extraction client: %v", err)
	}

	metrics := observability.InitMetrics()
	if n, err := store.Count(context.Background()); err == nil {
		metrics.SetRecordsStored(n)
	}

	apiToken := os.Getenv("POLICYDESK_API_TOKEN")
	if apiToken == "" {
		slog.Warn("POLICYDESK_API_TOKEN not set, API authentication is disabled")
	}

	router := gin.Default()
	router.Use(otelgin.Middleware("enrollment-service"))

	routes.SetupRoutes(router, routes.Deps{
		Store:               store,
		Catalog:             cat,
		Extractor:           aiClient,
		Transcriber:         aiClient,
		APIToken:            apiToken,
		AIRequestsPerSecond: rate.Limit(2),
		AIBurst:             5,
	})

	log.Println("Starting the enrollment server on port ", port)
	if err := router.Run(":" + port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
