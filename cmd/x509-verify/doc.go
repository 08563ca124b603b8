// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

// x509-verify is a command-line tool for verifying X.509 certificate chains
// against a trust store.
//
// # Installation
//
// Install with Go 1.25.5 or later:
//
//	go install github.com/H0llyW00dzZ/x509-trust-verifier/cmd/x509-verify@latest
//
// # Usage
//
//	x509-verify [FLAGS] CERT_FILE
//	x509-verify [FLAGS] --connect host[:port]
//	x509-verify codes [-o json]
//
// # Flags
//
//	-c, --config               Config file (JSON or YAML)
//	    --CAfile               Trusted certificates file
//	    --CApath               Trusted certificates directory
//	-u, --untrusted            Untrusted intermediates file (repeatable)
//	    --reject               SHA-256 fingerprint of an anchor to reject
//	    --CRLfile              CRL file (repeatable)
//	    --crl-check            Check the leaf against CRLs
//	    --crl-check-all        Check the whole chain against CRLs
//	    --crl-download         Download CRLs from distribution points
//	    --flags                Verification flags, e.g. X509_STRICT; -NAME clears one
//	    --purpose              Required purpose, e.g. ssl_server
//	    --trust                Trust kind evaluated on the anchor
//	    --verify-depth         Maximum number of intermediates
//	    --attime               Verification time (RFC 3339 or Unix seconds)
//	    --policy               Acceptable policy OID (repeatable)
//	    --verify-hostname      Expected DNS name (repeatable)
//	    --verify-email         Expected email address
//	    --verify-ip            Expected IP address
//	    --auth-level           Minimum security level (0-5)
//	    --aia                  Fetch missing issuers over AIA
//	    --ocsp                 Query OCSP for the leaf
//	    --ocsp-url             OCSP responder override
//	    --connect              Verify the chain presented by a TLS server
//	-o, --output               text, tree, table or json
//	    --metrics-file         Write Prometheus metrics to a textfile
//	    --log-format           Diagnostic log format: text or json
//	-v, --verbose              Log AIA downloads and CRL cache statistics
//
// # Exit Status
//
// 0 when the chain verifies, 2 when it does not and 1 when verification
// could not be attempted.
//
// # Examples
//
// Verify a server certificate bundle against the system trust store:
//
//	x509-verify --purpose ssl_server --verify-hostname example.com chain.pem
//
// Verify a live server with revocation checking:
//
//	x509-verify --connect example.com --crl-download --crl-check-all --aia
//
// Render the chain as a markdown table:
//
//	x509-verify --CAfile root.pem -o table chain.pem
package main
