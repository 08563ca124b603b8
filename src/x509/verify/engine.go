// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package x509verify

import (
	"context"
	"crypto/x509"
	"errors"
	"slices"

	x509cert "github.com/H0llyW00dzZ/x509-trust-verifier/src/x509/cert"
)

// check is one step of the per-certificate walk. It returns true when
// verification must stop.
type check func(ctx context.Context, i int) bool

// engine walks a built chain from the leaf to the anchor.
type engine struct {
	c     *StoreContext
	sn    *snapshot
	chain []*x509cert.Certificate

	// mustBeCA is -1 for the leaf, 0 for the issuer of a proxy certificate
	// and 1 for every other issuer.
	mustBeCA     int
	caBelow      int
	proxiesBelow int
	policy       policyOutcome
}

func newEngine(c *StoreContext) *engine {
	return &engine{
		c:        c,
		sn:       c.snap,
		chain:    c.chain,
		mustBeCA: -1,
	}
}

func (e *engine) run(ctx context.Context) {
	if e.sn.flags.Normalize().Any(PolicyCheck) {
		e.policy = evaluatePolicy(e.chain, e.c.anchored, e.sn)
		e.c.policies = e.policy.policies
	}

	if code, depth := checkSuiteB(e.chain, e.sn.flags); code != OK {
		if e.c.fail(code, depth, nil) {
			return
		}
	}

	steps := []check{
		e.checkSignature,
		e.checkValidity,
		e.checkBasicConstraints,
		e.checkUsage,
		e.checkExtensions,
		e.checkNames,
		e.checkRevocation,
		e.checkPolicy,
	}
	for i := range e.chain {
		for _, step := range steps {
			if step(ctx, i) {
				return
			}
		}
		e.advance(i)
	}
}

// advance updates the path counters after index i was checked.
func (e *engine) advance(i int) {
	cert := e.chain[i]
	if i > 0 && e.mustBeCA == 1 && !cert.IsSelfIssued() {
		e.caBelow++
	}
	if cert.IsProxy() {
		e.proxiesBelow++
		e.mustBeCA = 0
		return
	}
	e.mustBeCA = 1
}

// isAnchor reports whether index i is the trust anchor.
func (e *engine) isAnchor(i int) bool {
	return e.c.anchored && i == len(e.chain)-1
}

func (e *engine) checkSignature(_ context.Context, i int) bool {
	cert := e.chain[i]
	if keyTooSmall(cert, e.sn.securityLevel) {
		code := CAKeyTooSmall
		if i == 0 {
			code = EEKeyTooSmall
		}
		if e.c.fail(code, i, nil) {
			return true
		}
	}

	var issuer *x509cert.Certificate
	switch {
	case i+1 < len(e.chain):
		issuer = e.chain[i+1]
	case e.isAnchor(i) && cert.IsSelfIssued() && (i > 0 || e.sn.flags.Has(CheckSSSignature)):
		issuer = cert
	default:
		return false
	}

	if err := cert.CheckSignatureFrom(issuer); err != nil {
		return e.c.fail(signatureCode(err), i, err)
	}
	if issuer != cert && digestTooWeak(cert.SignatureAlgorithm(), e.sn.securityLevel) {
		return e.c.fail(CAMDTooWeak, i, nil)
	}
	return false
}

func signatureCode(err error) Code {
	var insecure x509.InsecureAlgorithmError
	switch {
	case errors.As(err, &insecure):
		return CAMDTooWeak
	case errors.Is(err, x509.ErrUnsupportedAlgorithm):
		return UnableToDecodeIssuerPublicKey
	default:
		return CertSignatureFailure
	}
}

func (e *engine) checkValidity(_ context.Context, i int) bool {
	cert := e.chain[i]
	if cert.X509().NotBefore.IsZero() {
		return e.c.fail(ErrorInCertNotBeforeField, i, nil)
	}
	if cert.X509().NotAfter.IsZero() {
		return e.c.fail(ErrorInCertNotAfterField, i, nil)
	}
	if !e.sn.checkTimes() {
		return false
	}
	switch now := e.sn.now; {
	case now.Before(cert.NotBefore()):
		return e.c.fail(CertNotYetValid, i, nil)
	case now.After(cert.NotAfter()):
		return e.c.fail(CertHasExpired, i, nil)
	}
	return false
}

// caLevel classifies a certificate as an issuer: 1 for a basicConstraints CA,
// 3 for a self-issued version 1 certificate, 4 for keyCertSign without
// basicConstraints and 0 otherwise.
func caLevel(cert *x509cert.Certificate) int {
	if bc, ok := cert.BasicConstraints(); ok {
		if bc.IsCA {
			return 1
		}
		return 0
	}
	if cert.Version() == 1 && cert.IsSelfIssued() {
		return 3
	}
	if ku, ok := cert.KeyUsage(); ok && ku&x509.KeyUsageCertSign != 0 {
		return 4
	}
	return 0
}

func (e *engine) checkBasicConstraints(_ context.Context, i int) bool {
	cert := e.chain[i]
	strict := e.sn.flags.Has(X509Strict)

	if cert.IsProxy() && e.checkProxy(i) {
		return true
	}

	ret := caLevel(cert)
	switch e.mustBeCA {
	case -1:
		if strict && ret != 0 && ret != 1 && e.c.fail(InvalidCA, i, nil) {
			return true
		}
	case 0:
		if ret != 0 && e.c.fail(InvalidNonCA, i, nil) {
			return true
		}
	default:
		if (ret == 0 || ((i+1 < len(e.chain) || strict) && ret != 1)) && e.c.fail(InvalidCA, i, nil) {
			return true
		}
	}

	bc, ok := cert.BasicConstraints()
	if ok && strict && !bc.IsCA && bc.MaxPathLen >= 0 && e.c.fail(InvalidExtension, i, nil) {
		return true
	}
	if i > 0 && e.mustBeCA == 1 && ok && bc.MaxPathLen >= 0 && e.caBelow > bc.MaxPathLen {
		return e.c.fail(PathLengthExceeded, i, nil)
	}
	return false
}

// checkProxy applies the RFC 3820 rules to the proxy certificate at index i.
func (e *engine) checkProxy(i int) bool {
	cert := e.chain[i]
	if !e.sn.flags.Has(AllowProxyCerts) {
		return e.c.fail(ProxyCertificatesNotAllowed, i, nil)
	}
	info, _, err := cert.ProxyCertInfo()
	if err != nil {
		return e.c.fail(InvalidExtension, i, err)
	}
	if info.PathLen >= 0 && e.proxiesBelow > info.PathLen && e.c.fail(ProxyPathLengthExceeded, i, nil) {
		return true
	}
	if i+1 >= len(e.chain) {
		return false
	}
	if !proxySubjectValid(cert.Subject(), e.chain[i+1].Subject()) {
		return e.c.fail(ProxySubjectNameViolation, i, nil)
	}
	return false
}

// proxySubjectValid reports whether subject is the issuer subject followed by
// a single commonName RDN.
func proxySubjectValid(subject, issuer x509cert.Name) bool {
	if subject.Len() != issuer.Len()+1 || !subject.HasPrefix(issuer) {
		return false
	}
	last := subject.RDNs()[subject.Len()-1]
	return len(last) == 1 && last[0].Type.Equal(x509cert.OIDCommonName)
}

func (e *engine) checkUsage(_ context.Context, i int) bool {
	cert := e.chain[i]
	if i > 0 {
		ku, ok := cert.KeyUsage()
		switch {
		case !ok:
		case e.chain[i-1].IsProxy():
			if ku&x509.KeyUsageDigitalSignature == 0 && e.c.fail(KeyUsageNoDigitalSignature, i, nil) {
				return true
			}
		case ku&x509.KeyUsageCertSign == 0:
			if e.c.fail(KeyUsageNoCertSign, i, nil) {
				return true
			}
		}
	}

	if p := e.sn.purpose; p != 0 {
		var ok bool
		switch {
		case i == 0:
			ok = leafPurposeOK(cert, p)
		case !e.isAnchor(i):
			ok = caPurposeOK(cert, p)
		default:
			ok = true
		}
		if !ok && e.c.fail(InvalidPurpose, i, nil) {
			return true
		}
	}

	if e.isAnchor(i) {
		return e.checkTrust(i)
	}
	return false
}

// checkTrust applies the anchor trust settings for the effective trust kind.
func (e *engine) checkTrust(i int) bool {
	a, ok := e.sn.trusted(e.chain[i])
	if !ok {
		return false
	}
	kind := e.sn.trust
	if kind == 0 {
		kind = e.sn.purpose.DefaultTrust()
	}
	if kind == 0 {
		if slices.Contains(a.trust.Rejected, TrustCompat) {
			return e.c.fail(CertRejected, i, nil)
		}
		return false
	}
	if slices.Contains(a.trust.Rejected, kind) {
		return e.c.fail(CertRejected, i, nil)
	}
	if len(a.trust.Trusted) > 0 && !slices.Contains(a.trust.Trusted, kind) {
		return e.c.fail(CertUntrusted, i, nil)
	}
	return false
}

func (e *engine) checkExtensions(_ context.Context, i int) bool {
	cert := e.chain[i]
	if !e.sn.flags.Has(IgnoreCritical) {
		for _, ext := range cert.Extensions() {
			if ext.Critical && !x509cert.SupportedExtension(ext.OID) {
				return e.c.fail(UnhandledCriticalExtension, i, nil)
			}
		}
	}

	if _, _, err := cert.AuthorityKeyID(); err != nil {
		return e.c.fail(InvalidExtension, i, err)
	}
	if _, err := cert.AltNames(); err != nil {
		return e.c.fail(InvalidExtension, i, err)
	}
	if _, err := cert.NameConstraints(); err != nil {
		return e.c.fail(InvalidExtension, i, err)
	}
	return false
}
