// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package x509verify

import (
	"context"
	"time"

	x509cert "github.com/H0llyW00dzZ/x509-trust-verifier/src/x509/cert"
)

// CRLSupplier supplies candidate CRLs for a certificate. Returned CRLs are
// filtered and validated by the engine; a supplier may return any CRL that
// could apply.
type CRLSupplier interface {
	LookupCRLs(ctx context.Context, cert, issuer *x509cert.Certificate) ([]*x509cert.RevocationList, error)
}

// IssuerLookup finds issuer candidates that are not held locally, for example
// by following the Authority Information Access extension. Returned
// certificates are treated as untrusted.
type IssuerLookup interface {
	LookupIssuers(ctx context.Context, cert *x509cert.Certificate) ([]*x509cert.Certificate, error)
}

// OCSPResponder returns a DER encoded OCSP response for cert, or nil when cert
// has no responder, in which case the OCSP check is skipped for it. An error
// fails verification with [OCSPVerifyNeeded]. The engine validates the
// response.
type OCSPResponder interface {
	FetchOCSP(ctx context.Context, cert, issuer *x509cert.Certificate) ([]byte, error)
}

// Observer is notified of every completed verification.
type Observer interface {
	ObserveVerification(res *Result, elapsed time.Duration)
}

// Failure is a single check failure reported to a [VerifyCallback].
type Failure struct {
	Code  Code
	Depth int
	Cert  *x509cert.Certificate
	Err   error
}

// VerifyCallback is consulted on every failure. Returning true overrides the
// failure and verification continues; the failure is then recorded in
// [Result.Overridden].
type VerifyCallback func(f Failure, chain []*x509cert.Certificate) bool

// CertificateCheck is an application defined check run after all built-in
// checks pass. A non-nil error fails verification with
// [ApplicationVerification].
type CertificateCheck func(chain []*x509cert.Certificate) error
