// Package metrics exposes Prometheus instrumentation for the scanner.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// DecodeAttempts counts decode attempts, partitioned by outcome:
	// hit, miss, fault, debounced.
	DecodeAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "scanner_decode_attempts_total",
		Help: "The total number of decode attempts, partitioned by outcome",
	}, []string{"outcome"})

	// ScanEvents counts accepted scan events, partitioned by symbology.
	ScanEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "scanner_scan_events_total",
		Help: "The total number of accepted scan events, partitioned by format",
	}, []string{"format"})

	// FramesDropped counts camera frames dropped because the consumer
	// lagged.
	FramesDropped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "scanner_frames_dropped_total",
		Help: "The total number of camera frames dropped before decoding",
	})

	// SessionState reports the current camera session state as a numeric
	// gauge (0 idle, 1 requesting, 2 active, 3 failed, 4 stopped).
	SessionState = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "scanner_session_state",
		Help: "Current camera session state (0 idle, 1 requesting, 2 active, 3 failed, 4 stopped)",
	})

	// OpenRetries counts overconstrained fallback retries during open.
	OpenRetries = promauto.NewCounter(prometheus.CounterOpts{
		Name: "scanner_open_retries_total",
		Help: "The total number of constraint fallback retries during camera open",
	})
)
