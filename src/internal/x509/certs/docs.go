// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

// Package x509certs provides encoding and decoding of [X.509] certificates and
// certificate revocation lists in PEM, DER and PKCS#7 form, together with
// loaders that read trust anchors and CRLs from files, hashed CA directories
// and the host's default certificate locations into an x509verify store.
//
// [X.509]: https://grokipedia.com/page/X.509
package x509certs
