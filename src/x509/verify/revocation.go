// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package x509verify

import (
	"bytes"
	"context"
	"crypto/x509"
	"fmt"
	"slices"

	x509cert "github.com/H0llyW00dzZ/x509-trust-verifier/src/x509/cert"
	"golang.org/x/crypto/ocsp"
)

// reasonRemoveFromCRL is the CRLReason that un-revokes a certificate in a delta CRL.
const reasonRemoveFromCRL = 8

func (e *engine) checkRevocation(ctx context.Context, i int) bool {
	if e.isAnchor(i) || i+1 >= len(e.chain) {
		return false
	}
	cert, issuer := e.chain[i], e.chain[i+1]
	flags := e.sn.flags

	crlMode := flags.Has(CRLCheckAll) || (i == 0 && flags.Has(CRLCheck))
	if crlMode && e.checkCRL(ctx, i, cert, issuer) {
		return true
	}
	if e.sn.ocsp != nil && (i == 0 || flags.Has(CRLCheckAll)) {
		return e.checkOCSP(ctx, i, cert, issuer)
	}
	return false
}

func (e *engine) checkCRL(ctx context.Context, i int, cert, issuer *x509cert.Certificate) bool {
	candidates := slices.Clone(e.sn.crls)
	if sup := e.sn.crlSupplier; sup != nil {
		more, err := sup.LookupCRLs(ctx, cert, issuer)
		if err != nil {
			return e.c.fail(StoreLookup, i, fmt.Errorf("crl lookup: %w", err))
		}
		for _, crl := range more {
			if crl != nil {
				candidates = append(candidates, crl)
			}
		}
	}

	extended := e.sn.flags.Has(ExtendedCRLSupport)
	var bases, deltas []*x509cert.RevocationList
	outOfScope := false
	for _, crl := range candidates {
		if !crlIssuerMatches(crl, cert, extended) {
			continue
		}
		if !crlInScope(crl, cert, extended) {
			outOfScope = true
			continue
		}
		if crl.IsDelta() {
			deltas = append(deltas, crl)
		} else {
			bases = append(bases, crl)
		}
	}
	if len(bases) == 0 {
		if outOfScope {
			return e.c.fail(DifferentCRLScope, i, nil)
		}
		return e.c.fail(UnableToGetCRL, i, nil)
	}

	base := e.pickCRL(bases)
	signer, stop := e.crlSigner(i, base, issuer)
	if stop || signer == nil {
		return stop
	}
	if e.validateCRL(i, base, signer) {
		return true
	}

	entry, revoked := base.Lookup(cert.SerialNumber(), cert.Issuer())
	if revoked && entry.ReasonCode == reasonRemoveFromCRL {
		revoked = false
	}
	if e.sn.flags.Has(UseDeltas) {
		if delta := deltaFor(base, deltas); delta != nil {
			if e.validateCRL(i, delta, signer) {
				return true
			}
			if de, ok := delta.Lookup(cert.SerialNumber(), cert.Issuer()); ok {
				entry, revoked = de, de.ReasonCode != reasonRemoveFromCRL
			}
		}
	}
	if revoked {
		return e.c.fail(CertRevoked, i, fmt.Errorf("revoked at %s, reason %d",
			entry.RevocationTime.Format("2006-01-02T15:04:05Z"), entry.ReasonCode))
	}
	return false
}

// crlIssuerMatches reports whether crl may cover cert: issued by the
// certificate issuer, or an indirect CRL when extended support is enabled.
func crlIssuerMatches(crl *x509cert.RevocationList, cert *x509cert.Certificate, extended bool) bool {
	if crl.Issuer().Equal(cert.Issuer()) {
		return true
	}
	if !extended {
		return false
	}
	idp, err := crl.IssuingDistributionPoint()
	return err == nil && idp != nil && idp.IndirectCRL
}

// crlInScope applies the issuingDistributionPoint restrictions.
func crlInScope(crl *x509cert.RevocationList, cert *x509cert.Certificate, extended bool) bool {
	idp, err := crl.IssuingDistributionPoint()
	if err != nil {
		return false
	}
	if idp == nil {
		return true
	}
	bc, _ := cert.BasicConstraints()
	switch {
	case idp.OnlyContainsAttributes:
		return false
	case idp.OnlyContainsUserCerts && bc.IsCA:
		return false
	case idp.OnlyContainsCACerts && !bc.IsCA:
		return false
	case (idp.IndirectCRL || idp.OnlySomeReasons.BitLength > 0) && !extended:
		return false
	}

	var idpURIs []string
	for _, gn := range idp.FullName {
		if gn.Kind == x509cert.URIName {
			idpURIs = append(idpURIs, gn.Text())
		}
	}
	cdp := cert.X509().CRLDistributionPoints
	if len(idpURIs) == 0 || len(cdp) == 0 {
		return true
	}
	for _, u := range cdp {
		if slices.Contains(idpURIs, u) {
			return true
		}
	}
	return false
}

// pickCRL prefers the most recent CRL current at the verification time.
func (e *engine) pickCRL(crls []*x509cert.RevocationList) *x509cert.RevocationList {
	var best, bestCurrent *x509cert.RevocationList
	now := e.sn.now
	for _, crl := range crls {
		if best == nil || crl.ThisUpdate().After(best.ThisUpdate()) {
			best = crl
		}
		current := !now.Before(crl.ThisUpdate()) && (crl.NextUpdate().IsZero() || !now.After(crl.NextUpdate()))
		if current && (bestCurrent == nil || crl.ThisUpdate().After(bestCurrent.ThisUpdate())) {
			bestCurrent = crl
		}
	}
	if bestCurrent != nil {
		return bestCurrent
	}
	return best
}

// deltaFor returns the newest delta CRL that applies to base.
func deltaFor(base *x509cert.RevocationList, deltas []*x509cert.RevocationList) *x509cert.RevocationList {
	var best *x509cert.RevocationList
	for _, d := range deltas {
		if !d.Issuer().Equal(base.Issuer()) || base.Number() == nil || d.Number() == nil {
			continue
		}
		if d.DeltaBase().Cmp(base.Number()) > 0 || d.Number().Cmp(base.Number()) <= 0 {
			continue
		}
		if best == nil || d.Number().Cmp(best.Number()) > 0 {
			best = d
		}
	}
	return best
}

// crlSigner finds the certificate that signed crl. The second result is true
// when verification must stop.
func (e *engine) crlSigner(i int, crl *x509cert.RevocationList, issuer *x509cert.Certificate) (*x509cert.Certificate, bool) {
	if crlSignedBy(crl, issuer) {
		return issuer, false
	}
	if !e.sn.flags.Has(ExtendedCRLSupport) {
		return nil, e.c.fail(UnableToGetCRLIssuer, i, nil)
	}

	for _, c := range e.chain {
		if crlSignedBy(crl, c) {
			return c, false
		}
	}
	pool := append(e.sn.trustedCandidates(crl.Issuer()), e.c.untrusted...)
	for _, c := range pool {
		if !crlSignedBy(crl, c) {
			continue
		}
		if !e.chainsToPath(c) {
			return nil, e.c.fail(CRLPathValidationError, i, nil)
		}
		return c, false
	}
	return nil, e.c.fail(UnableToGetCRLIssuer, i, nil)
}

// crlSignedBy reports whether cert is named as the CRL issuer and matches the
// CRL authority key identifier.
func crlSignedBy(crl *x509cert.RevocationList, cert *x509cert.Certificate) bool {
	if !cert.Subject().Equal(crl.Issuer()) {
		return false
	}
	akid, skid := crl.AuthorityKeyID(), cert.SubjectKeyID()
	return len(akid) == 0 || len(skid) == 0 || bytes.Equal(akid, skid)
}

// chainsToPath reports whether signer is trusted or signed by a certificate
// of the verified chain or the trusted set.
func (e *engine) chainsToPath(signer *x509cert.Certificate) bool {
	if _, ok := e.sn.trusted(signer); ok {
		return true
	}
	pool := append(slices.Clone(e.chain), e.sn.trustedCandidates(signer.Issuer())...)
	for _, c := range pool {
		if signer.MatchesIssuer(c) && signer.CheckSignatureFrom(c) == nil {
			return true
		}
	}
	return false
}

// validateCRL checks the signer key usage, the signature, the update times and
// the critical extensions of crl.
func (e *engine) validateCRL(i int, crl *x509cert.RevocationList, signer *x509cert.Certificate) bool {
	if ku, ok := signer.KeyUsage(); ok && ku&x509.KeyUsageCRLSign == 0 {
		return e.c.fail(KeyUsageNoCRLSign, i, nil)
	}
	if err := crl.CheckSignatureFrom(signer); err != nil {
		return e.c.fail(CRLSignatureFailure, i, err)
	}
	if crl.X509().ThisUpdate.IsZero() {
		return e.c.fail(ErrorInCRLLastUpdateField, i, nil)
	}
	if e.sn.checkTimes() {
		now := e.sn.now
		if now.Before(crl.ThisUpdate()) && e.c.fail(CRLNotYetValid, i, nil) {
			return true
		}
		if next := crl.NextUpdate(); !next.IsZero() && now.After(next) && e.c.fail(CRLHasExpired, i, nil) {
			return true
		}
	}
	if e.sn.flags.Has(IgnoreCritical) {
		return false
	}
	for _, ext := range crl.Extensions() {
		if ext.Critical && !x509cert.SupportedCRLExtension(ext.OID) {
			return e.c.fail(UnhandledCriticalCRLExtension, i, nil)
		}
	}
	for _, entry := range crl.Entries() {
		for _, ext := range entry.Extensions {
			if ext.Critical && !x509cert.SupportedCRLEntryExtension(ext.OID) {
				return e.c.fail(UnhandledCriticalCRLExtension, i, nil)
			}
		}
	}
	return false
}

func (e *engine) checkOCSP(ctx context.Context, i int, cert, issuer *x509cert.Certificate) bool {
	der, err := e.sn.ocsp.FetchOCSP(ctx, cert, issuer)
	if err != nil {
		return e.c.fail(OCSPVerifyNeeded, i, err)
	}
	if len(der) == 0 {
		// No responder for this certificate.
		return false
	}
	resp, err := ocsp.ParseResponseForCert(der, cert.X509(), issuer.X509())
	if err != nil {
		return e.c.fail(OCSPVerifyFailed, i, err)
	}
	if e.sn.checkTimes() {
		now := e.sn.now
		if now.Before(resp.ThisUpdate) || (!resp.NextUpdate.IsZero() && now.After(resp.NextUpdate)) {
			return e.c.fail(OCSPVerifyFailed, i, fmt.Errorf("ocsp response outside its validity window"))
		}
	}
	switch resp.Status {
	case ocsp.Good:
		return false
	case ocsp.Revoked:
		return e.c.fail(CertRevoked, i, fmt.Errorf("ocsp: revoked at %s, reason %d",
			resp.RevokedAt.UTC().Format("2006-01-02T15:04:05Z"), resp.RevocationReason))
	default:
		return e.c.fail(OCSPCertUnknown, i, nil)
	}
}
