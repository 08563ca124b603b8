// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

// Package x509revocation supplies revocation data to an x509verify store:
// CRLs from a fixed set ([Static]), CRLs downloaded from certificate
// distribution points and kept in an LRU [Cache] ([Fetcher]), and OCSP
// responses fetched over HTTP ([OCSPClient]).
//
// Nothing here decides whether a certificate is revoked. Suppliers only
// fetch; the verification engine filters, validates and applies what they
// return.
package x509revocation
