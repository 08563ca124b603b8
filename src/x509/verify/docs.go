// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

// Package x509verify evaluates X.509 certificate chains against a trust store.
//
// A [Store] holds trusted certificates, CRLs and the verification policy
// (flags, purpose, trust kind, depth, time override, policies). A
// [StoreContext] is created per verification: it snapshots the store, builds a
// chain from the leaf to a trust anchor and walks it leaf first, applying in
// order signature, validity, basic constraints, key usage and purpose, critical
// extension, name constraint, revocation and policy checks. The first failure
// wins and is reported as a [Code] together with the depth at which it
// occurred.
//
// Verification never panics and never returns a bare error: every call yields
// a [Result]. Collaborators (CRL suppliers, remote issuer lookup, OCSP
// responders) may block; the engine imposes no timeout beyond the supplied
// [context.Context].
//
// Error codes, flag bits, purposes and trust kinds keep the numbering used by
// OpenSSL so values can be exchanged with existing consumers.
package x509verify
