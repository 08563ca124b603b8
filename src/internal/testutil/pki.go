// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package testutil

import (
	"crypto"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/asn1"
	"math/big"
	"net"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/ocsp"

	x509cert "github.com/H0llyW00dzZ/x509-trust-verifier/src/x509/cert"
)

// Now is the reference time used for default validity windows.
var Now = time.Now().UTC().Truncate(time.Second)

var serials atomic.Int64

// Spec describes a certificate to generate. Zero values select defaults:
// a one hour backdated, one day validity window and key usages suited to the
// certificate role.
type Spec struct {
	CommonName   string
	Organization string
	Subject      *pkix.Name

	NotBefore time.Time
	NotAfter  time.Time

	CA bool
	// PathLen is the basicConstraints path length; nil leaves it unset.
	PathLen *int
	// NoBasicConstraints omits the basicConstraints extension.
	NoBasicConstraints bool
	// Version1 requests a certificate without extensions.
	Version1 bool

	KeyUsage    x509.KeyUsage
	ExtKeyUsage []x509.ExtKeyUsage

	DNSNames       []string
	EmailAddresses []string
	IPAddresses    []net.IP

	PermittedDNSDomains []string
	ExcludedDNSDomains  []string
	PermittedEmail      []string
	ExcludedEmail       []string
	PermittedIPRanges   []*net.IPNet
	ExcludedIPRanges    []*net.IPNet
	PermittedCritical   bool

	Policies        []asn1.ObjectIdentifier
	CRLDistribution []string
	OCSPServer      []string
	IssuingURL      []string

	// RSABits selects an RSA key of that size instead of ECDSA P-256.
	RSABits int
	// Key reuses an existing key pair.
	Key crypto.Signer

	ExtraExtensions []pkix.Extension
	SignatureAlgo   x509.SignatureAlgorithm
}

// PathLen returns a pointer to n for [Spec.PathLen].
func PathLen(n int) *int { return &n }

// Entity is a generated certificate together with its private key.
type Entity struct {
	Cert *x509.Certificate
	Key  crypto.Signer
}

// Wrapped returns the certificate as an [x509cert.Certificate].
func (e *Entity) Wrapped(t testing.TB) *x509cert.Certificate {
	t.Helper()
	c, err := x509cert.New(e.Cert)
	require.NoError(t, err, "wrap certificate")
	return c
}

// NewKey generates an ECDSA P-256 key.
func NewKey(t testing.TB) crypto.Signer {
	t.Helper()
	k, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err, "generate key")
	return k
}

func keyFor(t testing.TB, s Spec) crypto.Signer {
	t.Helper()
	switch {
	case s.Key != nil:
		return s.Key
	case s.RSABits > 0:
		k, err := rsa.GenerateKey(rand.Reader, s.RSABits)
		require.NoError(t, err, "generate rsa key")
		return k
	default:
		return NewKey(t)
	}
}

// template converts a Spec into a certificate template.
func template(s Spec) *x509.Certificate {
	subject := pkix.Name{CommonName: s.CommonName}
	if s.Organization != "" {
		subject.Organization = []string{s.Organization}
	}
	if s.Subject != nil {
		subject = *s.Subject
	}
	notBefore, notAfter := s.NotBefore, s.NotAfter
	if notBefore.IsZero() {
		notBefore = Now.Add(-time.Hour)
	}
	if notAfter.IsZero() {
		notAfter = Now.Add(24 * time.Hour)
	}

	tmpl := &x509.Certificate{
		SerialNumber:          big.NewInt(serials.Add(1) + 1000),
		Subject:               subject,
		NotBefore:             notBefore,
		NotAfter:              notAfter,
		KeyUsage:              s.KeyUsage,
		ExtKeyUsage:           s.ExtKeyUsage,
		DNSNames:              s.DNSNames,
		EmailAddresses:        s.EmailAddresses,
		IPAddresses:           s.IPAddresses,
		PolicyIdentifiers:     s.Policies,
		CRLDistributionPoints: s.CRLDistribution,
		OCSPServer:            s.OCSPServer,
		IssuingCertificateURL: s.IssuingURL,
		ExtraExtensions:       s.ExtraExtensions,
		SignatureAlgorithm:    s.SignatureAlgo,
		BasicConstraintsValid: !s.NoBasicConstraints,
		IsCA:                  s.CA,
		MaxPathLen:            -1,
	}
	tmpl.Policies = policyOIDs(s.Policies)
	tmpl.PermittedDNSDomains = s.PermittedDNSDomains
	tmpl.ExcludedDNSDomains = s.ExcludedDNSDomains
	tmpl.PermittedEmailAddresses = s.PermittedEmail
	tmpl.ExcludedEmailAddresses = s.ExcludedEmail
	tmpl.PermittedIPRanges = s.PermittedIPRanges
	tmpl.ExcludedIPRanges = s.ExcludedIPRanges
	tmpl.PermittedDNSDomainsCritical = s.PermittedCritical
	if s.PathLen != nil {
		tmpl.MaxPathLen = *s.PathLen
		tmpl.MaxPathLenZero = *s.PathLen == 0
	}
	if tmpl.KeyUsage == 0 {
		if s.CA {
			tmpl.KeyUsage = x509.KeyUsageCertSign | x509.KeyUsageCRLSign | x509.KeyUsageDigitalSignature
		} else {
			tmpl.KeyUsage = x509.KeyUsageDigitalSignature
		}
	}
	if !s.CA && tmpl.ExtKeyUsage == nil {
		tmpl.ExtKeyUsage = []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth, x509.ExtKeyUsageClientAuth}
	}
	return tmpl
}

// policyOIDs converts policy identifiers for [x509.Certificate.Policies],
// which CreateCertificate encodes in preference to PolicyIdentifiers.
func policyOIDs(ids []asn1.ObjectIdentifier) []x509.OID {
	var out []x509.OID
	for _, id := range ids {
		ints := make([]uint64, len(id))
		for i, v := range id {
			ints[i] = uint64(v)
		}
		oid, err := x509.OIDFromInts(ints)
		if err != nil {
			panic(err)
		}
		out = append(out, oid)
	}
	return out
}

func create(t testing.TB, tmpl, parent *x509.Certificate, pub crypto.PublicKey, signer crypto.Signer) *x509.Certificate {
	t.Helper()
	der, err := x509.CreateCertificate(rand.Reader, tmpl, parent, pub, signer)
	require.NoError(t, err, "create certificate")
	cert, err := x509.ParseCertificate(der)
	require.NoError(t, err, "parse certificate")
	return cert
}

// NewRoot generates a self-signed CA certificate.
func NewRoot(t testing.TB, s Spec) *Entity {
	t.Helper()
	s.CA = true
	if s.CommonName == "" && s.Subject == nil {
		s.CommonName = "Test Root CA"
	}
	key := keyFor(t, s)
	tmpl := template(s)
	if s.Version1 {
		return &Entity{Cert: createV1(t, tmpl, nil, key.Public(), key), Key: key}
	}
	return &Entity{Cert: create(t, tmpl, tmpl, key.Public(), key), Key: key}
}

// NewSelfSigned generates a self-signed certificate from s as given.
func NewSelfSigned(t testing.TB, s Spec) *Entity {
	t.Helper()
	key := keyFor(t, s)
	tmpl := template(s)
	return &Entity{Cert: create(t, tmpl, tmpl, key.Public(), key), Key: key}
}

// Issue generates a certificate signed by e.
func (e *Entity) Issue(t testing.TB, s Spec) *Entity {
	t.Helper()
	key := keyFor(t, s)
	tmpl := template(s)
	if s.Version1 {
		return &Entity{Cert: createV1(t, tmpl, e, key.Public(), key), Key: key}
	}
	return &Entity{Cert: create(t, tmpl, e.Cert, key.Public(), e.Key), Key: key}
}

// Chain returns the certificates as wrapped values in order.
func Chain(t testing.TB, entities ...*Entity) []*x509cert.Certificate {
	t.Helper()
	out := make([]*x509cert.Certificate, len(entities))
	for i, e := range entities {
		out[i] = e.Wrapped(t)
	}
	return out
}

// Revoked describes one CRL entry.
type Revoked struct {
	Serial     *big.Int
	ReasonCode int
	Time       time.Time
	Extensions []pkix.Extension
}

// CRLSpec describes a CRL to generate.
type CRLSpec struct {
	Number          int64
	ThisUpdate      time.Time
	NextUpdate      time.Time
	Revoked         []Revoked
	ExtraExtensions []pkix.Extension
}

// CRL generates a CRL signed by e.
func (e *Entity) CRL(t testing.TB, s CRLSpec) *x509cert.RevocationList {
	t.Helper()
	if s.Number == 0 {
		s.Number = serials.Add(1)
	}
	if s.ThisUpdate.IsZero() {
		s.ThisUpdate = Now.Add(-time.Hour)
	}
	if s.NextUpdate.IsZero() {
		s.NextUpdate = Now.Add(24 * time.Hour)
	}
	tmpl := &x509.RevocationList{
		Number:          big.NewInt(s.Number),
		ThisUpdate:      s.ThisUpdate,
		NextUpdate:      s.NextUpdate,
		ExtraExtensions: s.ExtraExtensions,
	}
	for _, r := range s.Revoked {
		when := r.Time
		if when.IsZero() {
			when = Now.Add(-30 * time.Minute)
		}
		tmpl.RevokedCertificateEntries = append(tmpl.RevokedCertificateEntries, x509.RevocationListEntry{
			SerialNumber:    r.Serial,
			RevocationTime:  when,
			ReasonCode:      r.ReasonCode,
			ExtraExtensions: r.Extensions,
		})
	}
	der, err := x509.CreateRevocationList(rand.Reader, tmpl, e.Cert, e.Key)
	require.NoError(t, err, "create CRL")
	crl, err := x509cert.ParseRevocationList(der)
	require.NoError(t, err, "parse CRL")
	return crl
}

// OCSP generates a DER OCSP response for cert signed directly by e.
func (e *Entity) OCSP(t testing.TB, cert *x509.Certificate, status int) []byte {
	t.Helper()
	tmpl := ocsp.Response{
		Status:       status,
		SerialNumber: cert.SerialNumber,
		ThisUpdate:   Now.Add(-time.Hour),
		NextUpdate:   Now.Add(time.Hour),
	}
	if status == ocsp.Revoked {
		tmpl.RevokedAt = Now.Add(-30 * time.Minute)
		tmpl.RevocationReason = ocsp.KeyCompromise
	}
	der, err := ocsp.CreateResponse(e.Cert, e.Cert, tmpl, e.Key)
	require.NoError(t, err, "create OCSP response")
	return der
}
