// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package x509cert

import (
	"bytes"
	"crypto"
	"crypto/ed25519"
	"crypto/x509"
	"encoding/asn1"
	"fmt"
	"math/big"
	"time"

	"github.com/cloudflare/cfssl/helpers"
)

// IssuerMatch is the outcome of comparing a certificate with a candidate issuer.
type IssuerMatch int

const (
	// IssuerOK means the candidate may have issued the certificate.
	IssuerOK IssuerMatch = iota
	// IssuerSubjectMismatch means the candidate subject differs from the issuer name.
	IssuerSubjectMismatch
	// IssuerAKIDSKIDMismatch means the authority key identifier names another key.
	IssuerAKIDSKIDMismatch
	// IssuerAKIDSerialMismatch means the authority key identifier names another
	// issuer name or serial number.
	IssuerAKIDSerialMismatch
)

// Certificate is an immutable view over a parsed X.509 certificate.
//
// A Certificate never mutates the wrapped [x509.Certificate]; callers that keep
// a reference to it must not mutate it either.
type Certificate struct {
	cert    *x509.Certificate
	issuer  Name
	subject Name
	exts    []Extension
	fp      Fingerprint
}

// New wraps a certificate decoded by [crypto/x509].
//
// Parameters:
//   - c: The parsed certificate
//
// Returns:
//   - *Certificate: The wrapped certificate
//   - error: [ErrNilCertificate] or a name decoding error
func New(c *x509.Certificate) (*Certificate, error) {
	if c == nil {
		return nil, ErrNilCertificate
	}
	issuer, err := ParseName(c.RawIssuer)
	if err != nil {
		return nil, fmt.Errorf("issuer: %w", err)
	}
	subject, err := ParseName(c.RawSubject)
	if err != nil {
		return nil, fmt.Errorf("subject: %w", err)
	}
	return &Certificate{
		cert:    c,
		issuer:  issuer,
		subject: subject,
		exts:    extensionsFrom(c.Extensions),
		fp:      FingerprintOf(c.Raw),
	}, nil
}

// Parse decodes a single DER certificate.
func Parse(der []byte) (*Certificate, error) {
	c, err := x509.ParseCertificate(der)
	if err != nil {
		return nil, err
	}
	return New(c)
}

// X509 returns the underlying parsed certificate.
func (c *Certificate) X509() *x509.Certificate { return c.cert }

// Raw returns the complete DER encoding.
func (c *Certificate) Raw() []byte { return c.cert.Raw }

// Version returns the certificate version (1, 2 or 3).
func (c *Certificate) Version() int { return c.cert.Version }

// SerialNumber returns the serial number.
func (c *Certificate) SerialNumber() *big.Int { return c.cert.SerialNumber }

// Issuer returns the issuer name.
func (c *Certificate) Issuer() Name { return c.issuer }

// Subject returns the subject name.
func (c *Certificate) Subject() Name { return c.subject }

// NotBefore returns the start of the validity window in UTC.
func (c *Certificate) NotBefore() time.Time { return c.cert.NotBefore.UTC() }

// NotAfter returns the end of the validity window in UTC.
func (c *Certificate) NotAfter() time.Time { return c.cert.NotAfter.UTC() }

// PublicKey returns the subject public key.
func (c *Certificate) PublicKey() crypto.PublicKey { return c.cert.PublicKey }

// SignatureAlgorithm returns the algorithm used to sign the certificate.
func (c *Certificate) SignatureAlgorithm() x509.SignatureAlgorithm {
	return c.cert.SignatureAlgorithm
}

// Signature returns the signature bytes.
func (c *Certificate) Signature() []byte { return c.cert.Signature }

// Extensions returns the extensions in encoding order.
func (c *Certificate) Extensions() []Extension { return c.exts }

// ExtensionByOID returns the extension with the given identifier.
func (c *Certificate) ExtensionByOID(oid asn1.ObjectIdentifier) (Extension, bool) {
	return findExtension(c.exts, oid)
}

// Fingerprint returns the SHA-256 fingerprint of the DER encoding.
func (c *Certificate) Fingerprint() Fingerprint { return c.fp }

// Equal reports whether both certificates have the same encoding.
func (c *Certificate) Equal(o *Certificate) bool {
	if c == nil || o == nil {
		return c == o
	}
	return c.fp == o.fp
}

// BasicConstraints returns the basicConstraints extension, if present.
func (c *Certificate) BasicConstraints() (BasicConstraints, bool) {
	if !c.cert.BasicConstraintsValid {
		return BasicConstraints{MaxPathLen: -1}, false
	}
	bc := BasicConstraints{IsCA: c.cert.IsCA, MaxPathLen: -1}
	if c.cert.MaxPathLen > 0 || c.cert.MaxPathLenZero {
		bc.MaxPathLen = c.cert.MaxPathLen
	}
	return bc, true
}

// KeyUsage returns the keyUsage bits, if the extension is present.
func (c *Certificate) KeyUsage() (x509.KeyUsage, bool) {
	_, ok := c.ExtensionByOID(OIDKeyUsage)
	return c.cert.KeyUsage, ok
}

// ExtKeyUsage returns the known extended key usages, if the extension is present.
func (c *Certificate) ExtKeyUsage() ([]x509.ExtKeyUsage, bool) {
	_, ok := c.ExtensionByOID(OIDExtKeyUsage)
	return c.cert.ExtKeyUsage, ok
}

// SubjectKeyID returns the subject key identifier, or nil.
func (c *Certificate) SubjectKeyID() []byte { return c.cert.SubjectKeyId }

// AuthorityKeyID decodes the authorityKeyIdentifier extension.
func (c *Certificate) AuthorityKeyID() (AuthorityKeyID, bool, error) {
	ext, ok := c.ExtensionByOID(OIDAuthorityKeyID)
	if !ok {
		return AuthorityKeyID{}, false, nil
	}
	aki, err := parseAuthorityKeyID(ext.Value)
	if err != nil {
		return aki, true, fmt.Errorf("%w: authority key identifier: %w", ErrInvalidExtension, err)
	}
	return aki, true, nil
}

// AltNames decodes the subjectAltName extension, including kinds that
// [crypto/x509] does not surface.
func (c *Certificate) AltNames() ([]GeneralName, error) {
	ext, ok := c.ExtensionByOID(OIDSubjectAltName)
	if !ok {
		return nil, nil
	}
	elems, err := parseSequenceContent(ext.Value)
	if err != nil {
		return nil, fmt.Errorf("%w: subject alternative name: %w", ErrInvalidExtension, err)
	}
	names, err := parseGeneralNames(elems)
	if err != nil {
		return nil, fmt.Errorf("%w: subject alternative name: %w", ErrInvalidExtension, err)
	}
	return names, nil
}

// NameConstraints decodes the nameConstraints extension. It returns nil when the
// extension is absent.
func (c *Certificate) NameConstraints() (*NameConstraints, error) {
	ext, ok := c.ExtensionByOID(OIDNameConstraints)
	if !ok {
		return nil, nil
	}
	nc, err := parseNameConstraints(ext.Value)
	if err != nil {
		return nil, fmt.Errorf("%w: name constraints: %w", ErrInvalidExtension, err)
	}
	return nc, nil
}

// Policies decodes the certificatePolicies extension.
func (c *Certificate) Policies() ([]asn1.ObjectIdentifier, bool, error) {
	ext, ok := c.ExtensionByOID(OIDCertificatePolicies)
	if !ok {
		return nil, false, nil
	}
	p, err := parseCertificatePolicies(ext.Value)
	if err != nil {
		return nil, true, fmt.Errorf("%w: certificate policies: %w", ErrInvalidPolicyExtension, err)
	}
	return p, true, nil
}

// PolicyConstraints decodes the policyConstraints extension.
func (c *Certificate) PolicyConstraints() (PolicyConstraints, bool, error) {
	ext, ok := c.ExtensionByOID(OIDPolicyConstraints)
	if !ok {
		return PolicyConstraints{RequireExplicitPolicy: -1, InhibitPolicyMapping: -1}, false, nil
	}
	pc, err := parsePolicyConstraints(ext.Value)
	if err != nil {
		return pc, true, fmt.Errorf("%w: policy constraints: %w", ErrInvalidPolicyExtension, err)
	}
	return pc, true, nil
}

// PolicyMappings decodes the policyMappings extension.
func (c *Certificate) PolicyMappings() ([]PolicyMapping, bool, error) {
	ext, ok := c.ExtensionByOID(OIDPolicyMappings)
	if !ok {
		return nil, false, nil
	}
	m, err := parsePolicyMappings(ext.Value)
	if err != nil {
		return nil, true, fmt.Errorf("%w: policy mappings: %w", ErrInvalidPolicyExtension, err)
	}
	return m, true, nil
}

// InhibitAnyPolicy decodes the inhibitAnyPolicy extension.
func (c *Certificate) InhibitAnyPolicy() (int, bool, error) {
	ext, ok := c.ExtensionByOID(OIDInhibitAnyPolicy)
	if !ok {
		return -1, false, nil
	}
	var n *big.Int
	rest, err := asn1.Unmarshal(ext.Value, &n)
	if err == nil && len(rest) > 0 {
		err = ErrTrailingData
	}
	if err == nil && n.Sign() < 0 {
		err = fmt.Errorf("negative skip count")
	}
	if err != nil {
		return -1, true, fmt.Errorf("%w: inhibit any policy: %w", ErrInvalidPolicyExtension, err)
	}
	return smallInt(n), true, nil
}

// ProxyCertInfo decodes the RFC 3820 proxyCertInfo extension.
func (c *Certificate) ProxyCertInfo() (ProxyCertInfo, bool, error) {
	ext, ok := c.ExtensionByOID(OIDProxyCertInfo)
	if !ok {
		return ProxyCertInfo{PathLen: -1}, false, nil
	}
	info, err := parseProxyCertInfo(ext.Value)
	if err != nil {
		return info, true, fmt.Errorf("%w: proxy certificate info: %w", ErrInvalidExtension, err)
	}
	return info, true, nil
}

// IsProxy reports whether the certificate carries proxyCertInfo.
func (c *Certificate) IsProxy() bool {
	_, ok := c.ExtensionByOID(OIDProxyCertInfo)
	return ok
}

// KeyBits returns the public key size in bits, or 0 for unknown key types.
func (c *Certificate) KeyBits() int {
	if _, ok := c.cert.PublicKey.(ed25519.PublicKey); ok {
		return ed25519.PublicKeySize * 8
	}
	return helpers.KeyLength(c.cert.PublicKey)
}

// IssuerCheck compares the certificate against a candidate issuer using the
// issuer name and, when present, the authority key identifier.
func (c *Certificate) IssuerCheck(candidate *Certificate) IssuerMatch {
	if candidate == nil || !candidate.subject.Equal(c.issuer) {
		return IssuerSubjectMismatch
	}
	aki, ok, err := c.AuthorityKeyID()
	if !ok || err != nil {
		return IssuerOK
	}
	if skid := candidate.SubjectKeyID(); len(aki.KeyID) > 0 && len(skid) > 0 && !bytes.Equal(aki.KeyID, skid) {
		return IssuerAKIDSKIDMismatch
	}
	if aki.SerialNumber != nil && aki.SerialNumber.Cmp(candidate.SerialNumber()) != 0 {
		return IssuerAKIDSerialMismatch
	}
	if len(aki.Issuer) > 0 {
		found := false
		for _, gn := range aki.Issuer {
			if gn.Kind != DirectoryName {
				continue
			}
			found = true
			if n, err := gn.Directory(); err == nil && n.Equal(candidate.issuer) {
				return IssuerOK
			}
		}
		if found {
			return IssuerAKIDSerialMismatch
		}
	}
	return IssuerOK
}

// MatchesIssuer reports whether candidate may have issued the certificate.
func (c *Certificate) MatchesIssuer(candidate *Certificate) bool {
	return c.IssuerCheck(candidate) == IssuerOK
}

// IsSelfIssued reports whether the certificate names itself as issuer.
func (c *Certificate) IsSelfIssued() bool { return c.MatchesIssuer(c) }

// IsSelfSigned reports whether the certificate is self-issued and its signature
// verifies with its own public key.
func (c *Certificate) IsSelfSigned() bool {
	return c.IsSelfIssued() && c.CheckSignatureFrom(c) == nil
}

// CheckSignatureFrom verifies the certificate signature with the issuer's key.
// It performs no constraint checks on the issuer.
func (c *Certificate) CheckSignatureFrom(issuer *Certificate) error {
	if issuer == nil {
		return ErrNilCertificate
	}
	return issuer.cert.CheckSignature(c.cert.SignatureAlgorithm, c.cert.RawTBSCertificate, c.cert.Signature)
}

// String returns the subject in RFC 2253 form.
func (c *Certificate) String() string { return c.subject.String() }
