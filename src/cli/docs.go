// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

// Package cli provides the command-line interface for the X.509 trust verifier.
// It implements a Cobra-based CLI that loads trust anchors and CRLs, applies
// verification policy from flags and an optional JSON or YAML config file,
// verifies a certificate file or the chain presented by a TLS server, and
// reports the result as text, an ASCII tree, a markdown table or JSON.
// Revocation data can come from CRL files, CRL distribution points or OCSP
// responders, and missing issuers can be fetched through AIA. The package
// handles context cancellation and integrates with the logger package for
// diagnostics and the metrics package for Prometheus textfile output.
package cli
