// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package observability provides Prometheus metrics for the enrollment
// service.
//
// Metrics cover record CRUD traffic, export downloads, and the two AI
// integrations (autofill latency and dictation outcomes). Everything is
// exposed on /metrics for scraping.
//
// # Thread Safety
//
// All metric operations are thread-safe via Prometheus's internal locking.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Namespace for all metrics.
const metricsNamespace = "policydesk"

// Subsystem for enrollment service metrics.
const enrollmentSubsystem = "enrollment"

// Metrics holds all Prometheus metrics for the enrollment service.
// Initialize once at startup via InitMetrics.
type Metrics struct {
	// RecordOpsTotal counts record operations.
	// Labels: op (create, update, delete, query, import), status (success, error)
	RecordOpsTotal *prometheus.CounterVec

	// RecordsStored tracks the current number of stored records.
	RecordsStored prometheus.Gauge

	// ExportsTotal counts export downloads.
	// Labels: format (csv, xlsx, pdf), status (success, error)
	ExportsTotal *prometheus.CounterVec

	// AutofillDurationSeconds measures end-to-end autofill latency,
	// dominated by the external AI call.
	// Labels: status (success, error)
	AutofillDurationSeconds *prometheus.HistogramVec

	// DictationsTotal counts dictation requests.
	// Labels: transport (http, websocket), status (success, error)
	DictationsTotal *prometheus.CounterVec
}

// DefaultMetrics is the singleton instance, set by InitMetrics.
var DefaultMetrics *Metrics

// InitMetrics creates and registers all metrics on the default registry.
// Call once at startup; calling twice panics on duplicate registration.
func InitMetrics() *Metrics {
	DefaultMetrics = &Metrics{
		RecordOpsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: enrollmentSubsystem,
				Name:      "record_ops_total",
				Help:      "Total record operations by type and status",
			},
			[]string{"op", "status"},
		),

		RecordsStored: promauto.NewGauge(
			prometheus.GaugeOpts{
				Namespace: metricsNamespace,
				Subsystem: enrollmentSubsystem,
				Name:      "records_stored",
				Help:      "Current number of stored enrollment records",
			},
		),

		ExportsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: enrollmentSubsystem,
				Name:      "exports_total",
				Help:      "Total export downloads by format and status",
			},
			[]string{"format", "status"},
		),

		AutofillDurationSeconds: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: metricsNamespace,
				Subsystem: enrollmentSubsystem,
				Name:      "autofill_duration_seconds",
				Help:      "End-to-end document autofill latency in seconds",
				Buckets:   []float64{0.5, 1, 2.5, 5, 10, 20, 30, 60},
			},
			[]string{"status"},
		),

		DictationsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: enrollmentSubsystem,
				Name:      "dictations_total",
				Help:      "Total dictation requests by transport and status",
			},
			[]string{"transport", "status"},
		),
	}
	return DefaultMetrics
}

// statusLabel converts a success flag to the conventional label value.
func statusLabel(success bool) string {
	if success {
		return "success"
	}
	return "error"
}

// RecordOp records one record operation outcome.
func (m *Metrics) RecordOp(op string, success bool) {
	m.RecordOpsTotal.WithLabelValues(op, statusLabel(success)).Inc()
}

// SetRecordsStored updates the stored-record gauge.
func (m *Metrics) SetRecordsStored(n int) {
	m.RecordsStored.Set(float64(n))
}

// RecordExport records one export download outcome.
func (m *Metrics) RecordExport(format string, success bool) {
	m.ExportsTotal.WithLabelValues(format, statusLabel(success)).Inc()
}

// RecordAutofill records one autofill call's latency and outcome.
func (m *Metrics) RecordAutofill(seconds float64, success bool) {
	m.AutofillDurationSeconds.WithLabelValues(statusLabel(success)).Observe(seconds)
}

// RecordDictation records one dictation outcome.
func (m *Metrics) RecordDictation(transport string, success bool) {
	m.DictationsTotal.WithLabelValues(transport, statusLabel(success)).Inc()
}

// Package-level helpers that tolerate an uninitialized DefaultMetrics,
// so handler unit tests don't have to touch the global registry.

func RecordOp(op string, success bool) {
	if DefaultMetrics != nil {
		DefaultMetrics.RecordOp(op, success)
	}
}

func SetRecordsStored(n int) {
	if DefaultMetrics != nil {
		DefaultMetrics.SetRecordsStored(n)
	}
}

func RecordExport(format string, success bool) {
	if DefaultMetrics != nil {
		DefaultMetrics.RecordExport(format, success)
	}
}

func RecordAutofill(seconds float64, success bool) {
	if DefaultMetrics != nil {
		DefaultMetrics.RecordAutofill(seconds, success)
	}
}

func RecordDictation(transport string, success bool) {
	if DefaultMetrics != nil {
		DefaultMetrics.RecordDictation(transport, success)
	}
}
