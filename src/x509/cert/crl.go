// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package x509cert

import (
	"crypto/x509"
	"encoding/asn1"
	"fmt"
	"math/big"
	"time"
)

// CRL extension identifiers.
var (
	OIDCRLNumber                = asn1.ObjectIdentifier{2, 5, 29, 20}
	OIDCRLReasonCode            = asn1.ObjectIdentifier{2, 5, 29, 21}
	OIDInvalidityDate           = asn1.ObjectIdentifier{2, 5, 29, 24}
	OIDDeltaCRLIndicator        = asn1.ObjectIdentifier{2, 5, 29, 27}
	OIDIssuingDistributionPoint = asn1.ObjectIdentifier{2, 5, 29, 28}
	OIDCertificateIssuer        = asn1.ObjectIdentifier{2, 5, 29, 29}
)

var supportedCRLExtensions = []asn1.ObjectIdentifier{
	OIDCRLNumber,
	OIDAuthorityKeyID,
	OIDIssuerAltName,
	OIDDeltaCRLIndicator,
	OIDIssuingDistributionPoint,
	OIDFreshestCRL,
}

var supportedCRLEntryExtensions = []asn1.ObjectIdentifier{
	OIDCRLReasonCode,
	OIDInvalidityDate,
	OIDCertificateIssuer,
}

// SupportedCRLExtension reports whether a critical CRL extension is understood.
func SupportedCRLExtension(oid asn1.ObjectIdentifier) bool {
	return containsOID(supportedCRLExtensions, oid)
}

// SupportedCRLEntryExtension reports whether a critical CRL entry extension is understood.
func SupportedCRLEntryExtension(oid asn1.ObjectIdentifier) bool {
	return containsOID(supportedCRLEntryExtensions, oid)
}

func containsOID(list []asn1.ObjectIdentifier, oid asn1.ObjectIdentifier) bool {
	for _, o := range list {
		if o.Equal(oid) {
			return true
		}
	}
	return false
}

// IssuingDistributionPoint is the decoded issuingDistributionPoint CRL extension.
type IssuingDistributionPoint struct {
	// FullName holds the fullName distribution point names, if any.
	FullName []GeneralName

	OnlyContainsUserCerts    bool
	OnlyContainsCACerts      bool
	OnlyContainsAttributes   bool
	IndirectCRL              bool
	OnlySomeReasons          asn1.BitString
	HasDistributionPointName bool
}

func parseIssuingDistributionPoint(der []byte) (*IssuingDistributionPoint, error) {
	elems, err := parseSequence(der)
	if err != nil {
		return nil, err
	}
	idp := &IssuingDistributionPoint{}
	for _, e := range elems {
		if e.Class != asn1.ClassContextSpecific {
			return nil, fmt.Errorf("unexpected element class %d", e.Class)
		}
		switch e.Tag {
		case 0:
			idp.HasDistributionPointName = true
			inner, err := splitElements(e.Bytes)
			if err != nil {
				return nil, err
			}
			if len(inner) == 1 && isContext(inner[0], 0) {
				if idp.FullName, err = parseGeneralNames(inner[0].Bytes); err != nil {
					return nil, err
				}
			}
		case 1, 2, 4, 5:
			v, err := implicitBool(e.Bytes)
			if err != nil {
				return nil, err
			}
			switch e.Tag {
			case 1:
				idp.OnlyContainsUserCerts = v
			case 2:
				idp.OnlyContainsCACerts = v
			case 4:
				idp.IndirectCRL = v
			case 5:
				idp.OnlyContainsAttributes = v
			}
		case 3:
			if len(e.Bytes) == 0 {
				return nil, fmt.Errorf("empty reason flags")
			}
			idp.OnlySomeReasons = asn1.BitString{
				Bytes:     e.Bytes[1:],
				BitLength: (len(e.Bytes)-1)*8 - int(e.Bytes[0]),
			}
		default:
			return nil, fmt.Errorf("unexpected element tag %d", e.Tag)
		}
	}
	n := 0
	for _, only := range []bool{idp.OnlyContainsUserCerts, idp.OnlyContainsCACerts, idp.OnlyContainsAttributes} {
		if only {
			n++
		}
	}
	if n > 1 {
		return nil, fmt.Errorf("more than one onlyContains flag set")
	}
	return idp, nil
}

// RevokedEntry is one revoked certificate listed by a CRL.
type RevokedEntry struct {
	SerialNumber   *big.Int
	RevocationTime time.Time
	// ReasonCode is the CRLReason value, or -1 when absent.
	ReasonCode int
	// CertificateIssuer names the issuer of the revoked certificate for
	// indirect CRLs. It is nil when the CRL issuer issued it.
	CertificateIssuer []GeneralName
	Extensions        []Extension
}

// RevocationList is an immutable view over a parsed CRL.
type RevocationList struct {
	crl     *x509.RevocationList
	issuer  Name
	exts    []Extension
	entries []RevokedEntry
	idp     *IssuingDistributionPoint
	idpErr  error
	delta   *big.Int
	fp      Fingerprint
}

// NewRevocationList wraps a CRL decoded by [crypto/x509].
func NewRevocationList(crl *x509.RevocationList) (*RevocationList, error) {
	if crl == nil {
		return nil, ErrNilRevocationList
	}
	issuer, err := ParseName(crl.RawIssuer)
	if err != nil {
		return nil, fmt.Errorf("issuer: %w", err)
	}
	rl := &RevocationList{
		crl:    crl,
		issuer: issuer,
		exts:   extensionsFrom(crl.Extensions),
		fp:     FingerprintOf(crl.Raw),
	}

	if ext, ok := rl.ExtensionByOID(OIDIssuingDistributionPoint); ok {
		if rl.idp, err = parseIssuingDistributionPoint(ext.Value); err != nil {
			rl.idpErr = fmt.Errorf("%w: issuing distribution point: %w", ErrInvalidExtension, err)
		}
	}
	if ext, ok := rl.ExtensionByOID(OIDDeltaCRLIndicator); ok {
		var base *big.Int
		if _, err := asn1.Unmarshal(ext.Value, &base); err != nil {
			return nil, fmt.Errorf("%w: delta CRL indicator: %w", ErrInvalidExtension, err)
		}
		rl.delta = base
	}

	var current []GeneralName
	rl.entries = make([]RevokedEntry, 0, len(crl.RevokedCertificateEntries))
	for _, e := range crl.RevokedCertificateEntries {
		entry := RevokedEntry{
			SerialNumber:   e.SerialNumber,
			RevocationTime: e.RevocationTime.UTC(),
			ReasonCode:     -1,
			Extensions:     extensionsFrom(e.Extensions),
		}
		if _, ok := findExtension(entry.Extensions, OIDCRLReasonCode); ok {
			entry.ReasonCode = e.ReasonCode
		}
		if ext, ok := findExtension(entry.Extensions, OIDCertificateIssuer); ok {
			content, err := parseSequenceContent(ext.Value)
			if err == nil {
				current, err = parseGeneralNames(content)
			}
			if err != nil {
				return nil, fmt.Errorf("%w: certificate issuer: %w", ErrInvalidExtension, err)
			}
		}
		entry.CertificateIssuer = current
		rl.entries = append(rl.entries, entry)
	}
	return rl, nil
}

// ParseRevocationList decodes a single DER CRL.
func ParseRevocationList(der []byte) (*RevocationList, error) {
	crl, err := x509.ParseRevocationList(der)
	if err != nil {
		return nil, err
	}
	return NewRevocationList(crl)
}

// X509 returns the underlying parsed CRL.
func (r *RevocationList) X509() *x509.RevocationList { return r.crl }

// Raw returns the complete DER encoding.
func (r *RevocationList) Raw() []byte { return r.crl.Raw }

// Issuer returns the CRL issuer name.
func (r *RevocationList) Issuer() Name { return r.issuer }

// ThisUpdate returns the issue time in UTC.
func (r *RevocationList) ThisUpdate() time.Time { return r.crl.ThisUpdate.UTC() }

// NextUpdate returns the next update time in UTC; it is zero when absent.
func (r *RevocationList) NextUpdate() time.Time {
	if r.crl.NextUpdate.IsZero() {
		return time.Time{}
	}
	return r.crl.NextUpdate.UTC()
}

// Number returns the CRL number, or nil.
func (r *RevocationList) Number() *big.Int { return r.crl.Number }

// AuthorityKeyID returns the authority key identifier of the CRL, or nil.
func (r *RevocationList) AuthorityKeyID() []byte { return r.crl.AuthorityKeyId }

// DeltaBase returns the base CRL number of a delta CRL, or nil for a complete CRL.
func (r *RevocationList) DeltaBase() *big.Int { return r.delta }

// IsDelta reports whether the CRL is a delta CRL.
func (r *RevocationList) IsDelta() bool { return r.delta != nil }

// IssuingDistributionPoint returns the decoded IDP extension, or nil.
func (r *RevocationList) IssuingDistributionPoint() (*IssuingDistributionPoint, error) {
	return r.idp, r.idpErr
}

// Extensions returns the CRL extensions in encoding order.
func (r *RevocationList) Extensions() []Extension { return r.exts }

// ExtensionByOID returns the CRL extension with the given identifier.
func (r *RevocationList) ExtensionByOID(oid asn1.ObjectIdentifier) (Extension, bool) {
	return findExtension(r.exts, oid)
}

// Entries returns the revoked entries in encoding order.
func (r *RevocationList) Entries() []RevokedEntry { return r.entries }

// Fingerprint returns the SHA-256 fingerprint of the DER encoding.
func (r *RevocationList) Fingerprint() Fingerprint { return r.fp }

// Lookup returns the entry revoking serial as issued by issuer. For an
// indirect CRL, entries naming another certificate issuer are skipped.
func (r *RevocationList) Lookup(serial *big.Int, issuer Name) (RevokedEntry, bool) {
	for _, e := range r.entries {
		if e.SerialNumber.Cmp(serial) != 0 {
			continue
		}
		if e.CertificateIssuer == nil {
			if issuer.Equal(r.issuer) {
				return e, true
			}
			continue
		}
		for _, gn := range e.CertificateIssuer {
			if n, err := gn.Directory(); err == nil && n.Equal(issuer) {
				return e, true
			}
		}
	}
	return RevokedEntry{}, false
}

// CheckSignatureFrom verifies the CRL signature with the issuer's key.
func (r *RevocationList) CheckSignatureFrom(issuer *Certificate) error {
	if issuer == nil {
		return ErrNilCertificate
	}
	return issuer.X509().CheckSignature(r.crl.SignatureAlgorithm, r.crl.RawTBSRevocationList, r.crl.Signature)
}
