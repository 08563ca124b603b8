// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	x509revocation "github.com/H0llyW00dzZ/x509-trust-verifier/src/internal/x509/revocation"
	x509verify "github.com/H0llyW00dzZ/x509-trust-verifier/src/x509/verify"
)

const (
	// Namespace is the Prometheus namespace for all verifier metrics.
	Namespace = "x509_verify"

	// Label names
	LabelCode   = "code"
	LabelStatus = "status"
	LabelCache  = "cache"

	// Status values
	StatusValid   = "valid"
	StatusInvalid = "invalid"
)

var _ x509verify.Observer = (*Collector)(nil)

// Collector records verification outcomes. It implements the observer of an
// x509verify store and owns a private registry, so several collectors can
// coexist in one process.
//
// Thread Safety: Safe for concurrent use.
type Collector struct {
	registry *prometheus.Registry

	verifications *prometheus.CounterVec
	duration      *prometheus.HistogramVec
	chainLength   prometheus.Histogram
	overridden    *prometheus.CounterVec
}

// NewCollector creates a collector and registers its metrics.
func NewCollector() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		verifications: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Name:      "verifications_total",
				Help:      "Total number of chain verifications by result code",
			},
			[]string{LabelCode, LabelStatus},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: Namespace,
				Name:      "verification_duration_seconds",
				Help:      "Duration of chain verifications in seconds",
				Buckets:   []float64{.0001, .0005, .001, .005, .01, .05, .1, .5, 1, 5, 10},
			},
			[]string{LabelStatus},
		),
		chainLength: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: Namespace,
				Name:      "chain_length",
				Help:      "Number of certificates in the built chain",
				Buckets:   prometheus.LinearBuckets(1, 1, 8),
			},
		),
		overridden: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Name:      "overridden_failures_total",
				Help:      "Total number of failures accepted by a verify callback",
			},
			[]string{LabelCode},
		),
	}
	c.registry.MustRegister(c.verifications, c.duration, c.chainLength, c.overridden)
	return c
}

// Registry returns the registry holding the collector's metrics.
func (c *Collector) Registry() *prometheus.Registry { return c.registry }

// ObserveVerification implements the observer of an x509verify store.
func (c *Collector) ObserveVerification(res *x509verify.Result, elapsed time.Duration) {
	status := StatusInvalid
	if res.Valid() {
		status = StatusValid
	}
	c.verifications.WithLabelValues(res.Code.String(), status).Inc()
	c.duration.WithLabelValues(status).Observe(elapsed.Seconds())
	if len(res.Chain) > 0 {
		c.chainLength.Observe(float64(len(res.Chain)))
	}
	for _, f := range res.Overridden {
		c.overridden.WithLabelValues(f.Code.String()).Inc()
	}
}

// CacheSource reports CRL cache counters.
type CacheSource interface {
	Metrics() x509revocation.CacheMetrics
}

// RegisterCache exposes the counters of a CRL cache under the given name.
// Values are read from src at scrape time.
func (c *Collector) RegisterCache(name string, src CacheSource) error {
	labels := prometheus.Labels{LabelCache: name}
	gauge := func(metric, help string, value func(x509revocation.CacheMetrics) int64) prometheus.Collector {
		return prometheus.NewGaugeFunc(
			prometheus.GaugeOpts{
				Namespace:   Namespace,
				Subsystem:   "crl_cache",
				Name:        metric,
				Help:        help,
				ConstLabels: labels,
			},
			func() float64 { return float64(value(src.Metrics())) },
		)
	}
	counter := func(metric, help string, value func(x509revocation.CacheMetrics) int64) prometheus.Collector {
		return prometheus.NewCounterFunc(
			prometheus.CounterOpts{
				Namespace:   Namespace,
				Subsystem:   "crl_cache",
				Name:        metric,
				Help:        help,
				ConstLabels: labels,
			},
			func() float64 { return float64(value(src.Metrics())) },
		)
	}

	collectors := []prometheus.Collector{
		gauge("entries", "Number of cached CRLs", func(m x509revocation.CacheMetrics) int64 { return m.Size }),
		gauge("memory_bytes", "Approximate memory held by cached CRLs", func(m x509revocation.CacheMetrics) int64 { return m.TotalMemory }),
		counter("hits_total", "Total number of CRL cache hits", func(m x509revocation.CacheMetrics) int64 { return m.Hits }),
		counter("misses_total", "Total number of CRL cache misses", func(m x509revocation.CacheMetrics) int64 { return m.Misses }),
		counter("evictions_total", "Total number of LRU evictions", func(m x509revocation.CacheMetrics) int64 { return m.Evictions }),
		counter("cleanups_total", "Total number of expired CRLs removed", func(m x509revocation.CacheMetrics) int64 { return m.Cleanups }),
	}
	for _, col := range collectors {
		if err := c.registry.Register(col); err != nil {
			return err
		}
	}
	return nil
}

// WriteTextfile writes the current metrics to path in the Prometheus text
// exposition format, for pickup by the node exporter textfile collector.
// The file is replaced atomically.
func (c *Collector) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, c.registry)
}
