// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

// Package x509chain connects an x509verify store to the network and to the
// terminal. It provides capabilities to:
//   - Download missing issuers via [AIA] URLs, as the store's issuer lookup.
//   - Fetch the chain a TLS endpoint presents during the handshake.
//   - Render verification results as an ASCII tree, a markdown table or JSON.
//
// The package handles context-aware cancellation and HTTP client configuration
// for reliable network operations.
//
// [AIA]: https://datatracker.ietf.org/doc/html/rfc5280#section-4.2.2.1
package x509chain
