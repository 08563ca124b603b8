// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

// Package metrics provides Prometheus instrumentation for chain verification.
//
// A [Collector] is attached to a store with SetObserver and counts results by
// error code, times each verification and records chain lengths. CRL cache
// counters can be exposed with [Collector.RegisterCache]. Since the verifier
// is usually a short-lived command, metrics are exported by writing a
// textfile rather than serving an endpoint:
//
//	c := metrics.NewCollector()
//	store.SetObserver(c)
//	// ... verify ...
//	if err := c.WriteTextfile("/var/lib/node_exporter/x509_verify.prom"); err != nil {
//		return err
//	}
package metrics
