// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package x509verify_test

import (
	"context"
	"crypto"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/asn1"
	"errors"
	"slices"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/H0llyW00dzZ/x509-trust-verifier/src/internal/testutil"
	x509cert "github.com/H0llyW00dzZ/x509-trust-verifier/src/x509/cert"
	x509verify "github.com/H0llyW00dzZ/x509-trust-verifier/src/x509/verify"
)

// pki is a three level hierarchy: root, intermediate and leaf.
type pki struct {
	root, inter, leaf *testutil.Entity
}

func newPKI(t *testing.T) pki {
	t.Helper()
	root := testutil.NewRoot(t, testutil.Spec{CommonName: "Verify Root"})
	inter := root.Issue(t, testutil.Spec{CommonName: "Verify Intermediate", CA: true})
	leaf := inter.Issue(t, testutil.Spec{CommonName: "leaf.example.com", DNSNames: []string{"leaf.example.com"}})
	return pki{root: root, inter: inter, leaf: leaf}
}

func newStore(t *testing.T, anchors ...*testutil.Entity) *x509verify.Store {
	t.Helper()
	s := x509verify.NewStore()
	for _, a := range anchors {
		require.NoError(t, s.AddTrustedCertificate(a.Wrapped(t)))
	}
	return s
}

// tamper flips the last signature byte of the certificate.
func tamper(t *testing.T, e *testutil.Entity) *x509cert.Certificate {
	t.Helper()
	der := slices.Clone(e.Cert.Raw)
	der[len(der)-1] ^= 0xff
	c, err := x509cert.Parse(der)
	require.NoError(t, err)
	return c
}

func assertFailure(t *testing.T, res *x509verify.Result, code x509verify.Code, depth int) {
	t.Helper()
	assert.Equal(t, code, res.Code, "got %s", res.Code)
	assert.Equal(t, depth, res.Depth)
	assert.False(t, res.Valid())
	err := res.Err()
	require.Error(t, err)
	assert.ErrorIs(t, err, code)
}

func TestVerifyChainBuilding(t *testing.T) {
	p := newPKI(t)
	ctx := context.Background()

	tests := []struct {
		name     string
		testFunc func(t *testing.T)
	}{
		{
			name: "Valid Three Level Chain",
			testFunc: func(t *testing.T) {
				s := newStore(t, p.root)
				res := s.Verify(ctx, p.leaf.Wrapped(t), p.inter.Wrapped(t))
				require.True(t, res.Valid(), "got %s", res.Code)
				assert.Equal(t, -1, res.Depth)
				assert.NoError(t, res.Err())
				require.Len(t, res.Chain, 3)
				assert.Equal(t, p.leaf.Wrapped(t).Fingerprint(), res.Chain[0].Fingerprint())
				assert.Equal(t, p.inter.Wrapped(t).Fingerprint(), res.Chain[1].Fingerprint())
				assert.Equal(t, p.root.Wrapped(t).Fingerprint(), res.Chain[2].Fingerprint())
			},
		},
		{
			name: "Nil Leaf Is An Invalid Call",
			testFunc: func(t *testing.T) {
				res := newStore(t, p.root).Verify(ctx, nil)
				assert.Equal(t, x509verify.InvalidCall, res.Code)
				assert.Empty(t, res.Chain)
			},
		},
		{
			name: "Missing Intermediate",
			testFunc: func(t *testing.T) {
				res := newStore(t, p.root).Verify(ctx, p.leaf.Wrapped(t))
				assertFailure(t, res, x509verify.UnableToGetIssuerCertLocally, 0)
				require.Len(t, res.Chain, 1)
				assert.Equal(t, p.leaf.Wrapped(t).Fingerprint(), res.Cert.Fingerprint())
			},
		},
		{
			name: "Untrusted Root In Pool",
			testFunc: func(t *testing.T) {
				res := newStore(t).Verify(ctx, p.leaf.Wrapped(t), p.inter.Wrapped(t), p.root.Wrapped(t))
				assertFailure(t, res, x509verify.SelfSignedCertInChain, 2)
			},
		},
		{
			name: "Self Signed Leaf",
			testFunc: func(t *testing.T) {
				self := testutil.NewSelfSigned(t, testutil.Spec{CommonName: "self.example.com"})
				res := newStore(t, p.root).Verify(ctx, self.Wrapped(t))
				assertFailure(t, res, x509verify.DepthZeroSelfSignedCert, 0)

				res = newStore(t, self).Verify(ctx, self.Wrapped(t))
				assert.True(t, res.Valid(), "got %s", res.Code)
				assert.Len(t, res.Chain, 1)
			},
		},
		{
			name: "Trusted Intermediate Needs Partial Chain",
			testFunc: func(t *testing.T) {
				s := newStore(t, p.inter)
				res := s.Verify(ctx, p.leaf.Wrapped(t))
				assertFailure(t, res, x509verify.UnableToGetIssuerCert, 1)

				s.SetFlags(x509verify.PartialChain)
				res = s.Verify(ctx, p.leaf.Wrapped(t))
				assert.True(t, res.Valid(), "got %s", res.Code)
				assert.Len(t, res.Chain, 2)
			},
		},
		{
			name: "Depth Limit",
			testFunc: func(t *testing.T) {
				s := newStore(t, p.root)
				s.SetDepth(0)
				res := s.Verify(ctx, p.leaf.Wrapped(t), p.inter.Wrapped(t))
				assertFailure(t, res, x509verify.CertChainTooLong, 1)

				s.SetDepth(1)
				res = s.Verify(ctx, p.leaf.Wrapped(t), p.inter.Wrapped(t))
				assert.True(t, res.Valid(), "got %s", res.Code)
			},
		},
		{
			name: "Trusted Intermediate Still Builds To Root",
			testFunc: func(t *testing.T) {
				s := newStore(t, p.root, p.inter)
				res := s.Verify(ctx, p.leaf.Wrapped(t))
				require.True(t, res.Valid(), "got %s", res.Code)
				assert.Len(t, res.Chain, 3)

				s.ClearFlags(x509verify.TrustedFirst)
				res = s.Verify(ctx, p.leaf.Wrapped(t), p.inter.Wrapped(t))
				require.True(t, res.Valid(), "got %s", res.Code)
				assert.Len(t, res.Chain, 3)

				s.SetFlags(x509verify.PartialChain)
				res = s.Verify(ctx, p.leaf.Wrapped(t))
				require.True(t, res.Valid(), "got %s", res.Code)
				assert.Len(t, res.Chain, 2, "a trusted intermediate anchors a partial chain")
			},
		},
		{
			name: "Issuer Lookup",
			testFunc: func(t *testing.T) {
				s := newStore(t, p.root)
				lookup := &fakeLookup{certs: []*x509cert.Certificate{p.inter.Wrapped(t)}}
				s.SetIssuerLookup(lookup)
				res := s.Verify(ctx, p.leaf.Wrapped(t))
				require.True(t, res.Valid(), "got %s", res.Code)
				assert.Equal(t, 1, lookup.calls)

				s.SetIssuerLookup(&fakeLookup{})
				res = s.Verify(ctx, p.leaf.Wrapped(t))
				assertFailure(t, res, x509verify.UnableToGetIssuerCert, 0)

				boom := errors.New("aia unreachable")
				s.SetIssuerLookup(&fakeLookup{err: boom})
				res = s.Verify(ctx, p.leaf.Wrapped(t))
				assertFailure(t, res, x509verify.StoreLookup, 0)
				assert.ErrorIs(t, res.Err(), boom)
			},
		},
		{
			name: "Issuer Cycle In Pool",
			testFunc: func(t *testing.T) {
				keyA, keyB := testutil.NewKey(t), testutil.NewKey(t)
				selfA := testutil.NewRoot(t, testutil.Spec{CommonName: "Cycle A", Key: keyA})
				selfB := testutil.NewRoot(t, testutil.Spec{CommonName: "Cycle B", Key: keyB})
				aByB := selfB.Issue(t, testutil.Spec{CommonName: "Cycle A", CA: true, Key: keyA})
				bByA := selfA.Issue(t, testutil.Spec{CommonName: "Cycle B", CA: true, Key: keyB})
				leaf := aByB.Issue(t, testutil.Spec{CommonName: "cycle.example.com"})

				res := newStore(t, p.root).Verify(ctx, leaf.Wrapped(t), aByB.Wrapped(t), bByA.Wrapped(t))
				assertFailure(t, res, x509verify.UnableToGetIssuerCertLocally, 2)
				assert.Len(t, res.Chain, 3, "each certificate enters the chain once")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, tt.testFunc)
	}
}

type fakeLookup struct {
	certs []*x509cert.Certificate
	err   error
	calls int
}

func (f *fakeLookup) LookupIssuers(context.Context, *x509cert.Certificate) ([]*x509cert.Certificate, error) {
	f.calls++
	return f.certs, f.err
}

func TestVerifyCertificateChecks(t *testing.T) {
	p := newPKI(t)
	ctx := context.Background()

	tests := []struct {
		name     string
		testFunc func(t *testing.T)
	}{
		{
			name: "Tampered Leaf Signature",
			testFunc: func(t *testing.T) {
				res := newStore(t, p.root).Verify(ctx, tamper(t, p.leaf), p.inter.Wrapped(t))
				assertFailure(t, res, x509verify.CertSignatureFailure, 0)
			},
		},
		{
			name: "Tampered Intermediate Signature",
			testFunc: func(t *testing.T) {
				res := newStore(t, p.root).Verify(ctx, p.leaf.Wrapped(t), tamper(t, p.inter))
				assertFailure(t, res, x509verify.CertSignatureFailure, 1)
			},
		},
		{
			name: "Anchor Self Signature Is Checked With Flag",
			testFunc: func(t *testing.T) {
				broken := tamper(t, p.root)
				s := x509verify.NewStore()
				require.NoError(t, s.AddTrustedCertificate(broken))
				res := s.Verify(ctx, broken)
				assert.True(t, res.Valid(), "got %s", res.Code)

				s.SetFlags(x509verify.CheckSSSignature)
				res = s.Verify(ctx, broken)
				assertFailure(t, res, x509verify.CertSignatureFailure, 0)
			},
		},
		{
			name: "Expired Leaf And Time Override",
			testFunc: func(t *testing.T) {
				expired := p.inter.Issue(t, testutil.Spec{
					CommonName: "expired.example.com",
					NotBefore:  testutil.Now.Add(-50 * time.Minute),
					NotAfter:   testutil.Now.Add(-10 * time.Minute),
				})
				s := newStore(t, p.root)
				res := s.Verify(ctx, expired.Wrapped(t), p.inter.Wrapped(t))
				assertFailure(t, res, x509verify.CertHasExpired, 0)

				s.SetVerificationTime(testutil.Now.Add(-30 * time.Minute))
				res = s.Verify(ctx, expired.Wrapped(t), p.inter.Wrapped(t))
				assert.True(t, res.Valid(), "got %s", res.Code)
			},
		},
		{
			name: "Not Yet Valid Intermediate",
			testFunc: func(t *testing.T) {
				future := p.root.Issue(t, testutil.Spec{
					CommonName: "Future CA",
					CA:         true,
					NotBefore:  testutil.Now.Add(time.Hour),
					NotAfter:   testutil.Now.Add(2 * time.Hour),
				})
				leaf := future.Issue(t, testutil.Spec{CommonName: "future.example.com"})
				res := newStore(t, p.root).Verify(ctx, leaf.Wrapped(t), future.Wrapped(t))
				assertFailure(t, res, x509verify.CertNotYetValid, 1)
			},
		},
		{
			name: "No Check Time",
			testFunc: func(t *testing.T) {
				expired := p.inter.Issue(t, testutil.Spec{
					CommonName: "stale.example.com",
					NotBefore:  testutil.Now.Add(-50 * time.Minute),
					NotAfter:   testutil.Now.Add(-10 * time.Minute),
				})
				s := newStore(t, p.root)
				s.SetFlags(x509verify.NoCheckTime)
				res := s.Verify(ctx, expired.Wrapped(t), p.inter.Wrapped(t))
				assert.True(t, res.Valid(), "got %s", res.Code)
			},
		},
		{
			name: "Path Length Exceeded",
			testFunc: func(t *testing.T) {
				root := testutil.NewRoot(t, testutil.Spec{CommonName: "Pathlen Root", PathLen: testutil.PathLen(0)})
				inter := root.Issue(t, testutil.Spec{CommonName: "Pathlen Intermediate", CA: true})
				leaf := inter.Issue(t, testutil.Spec{CommonName: "pathlen.example.com"})
				res := newStore(t, root).Verify(ctx, leaf.Wrapped(t), inter.Wrapped(t))
				assertFailure(t, res, x509verify.PathLengthExceeded, 2)

				direct := root.Issue(t, testutil.Spec{CommonName: "direct.example.com"})
				res = newStore(t, root).Verify(ctx, direct.Wrapped(t))
				assert.True(t, res.Valid(), "got %s", res.Code)
			},
		},
		{
			name: "Non CA Issuer",
			testFunc: func(t *testing.T) {
				sub := p.leaf.Issue(t, testutil.Spec{CommonName: "sub.example.com"})
				res := newStore(t, p.root).Verify(ctx, sub.Wrapped(t), p.leaf.Wrapped(t), p.inter.Wrapped(t))
				assertFailure(t, res, x509verify.InvalidCA, 1)
			},
		},
		{
			name: "Strict Mode",
			testFunc: func(t *testing.T) {
				legacy := testutil.NewRoot(t, testutil.Spec{CommonName: "Legacy Root", Version1: true})
				leaf := legacy.Issue(t, testutil.Spec{CommonName: "legacy.example.com"})
				s := newStore(t, legacy)
				require.True(t, s.Verify(ctx, leaf.Wrapped(t)).Valid(), "a version 1 anchor is accepted by default")

				s.SetFlags(x509verify.X509Strict)
				assertFailure(t, s.Verify(ctx, leaf.Wrapped(t)), x509verify.InvalidCA, 1)

				signer := p.inter.Issue(t, testutil.Spec{
					CommonName:         "signer.example.com",
					NoBasicConstraints: true,
					KeyUsage:           x509.KeyUsageDigitalSignature | x509.KeyUsageCertSign,
				})
				s = newStore(t, p.root)
				require.True(t, s.Verify(ctx, signer.Wrapped(t), p.inter.Wrapped(t)).Valid())

				s.SetFlags(x509verify.X509Strict)
				assertFailure(t, s.Verify(ctx, signer.Wrapped(t), p.inter.Wrapped(t)), x509verify.InvalidCA, 0)
			},
		},
		{
			name: "Issuer Without Cert Sign",
			testFunc: func(t *testing.T) {
				inter := p.root.Issue(t, testutil.Spec{
					CommonName: "Signing Only CA",
					CA:         true,
					KeyUsage:   x509.KeyUsageDigitalSignature | x509.KeyUsageCRLSign,
				})
				leaf := inter.Issue(t, testutil.Spec{CommonName: "ku.example.com"})
				res := newStore(t, p.root).Verify(ctx, leaf.Wrapped(t), inter.Wrapped(t))
				assertFailure(t, res, x509verify.KeyUsageNoCertSign, 1)
			},
		},
		{
			name: "Purpose",
			testFunc: func(t *testing.T) {
				client := p.inter.Issue(t, testutil.Spec{
					CommonName:  "client",
					ExtKeyUsage: []x509.ExtKeyUsage{x509.ExtKeyUsageClientAuth},
				})
				s := newStore(t, p.root)
				s.SetPurpose(x509verify.PurposeSSLServer)
				res := s.Verify(ctx, client.Wrapped(t), p.inter.Wrapped(t))
				assertFailure(t, res, x509verify.InvalidPurpose, 0)

				s.SetPurpose(x509verify.PurposeSSLClient)
				res = s.Verify(ctx, client.Wrapped(t), p.inter.Wrapped(t))
				assert.True(t, res.Valid(), "got %s", res.Code)
			},
		},
		{
			name: "Anchor Trust Settings",
			testFunc: func(t *testing.T) {
				s := x509verify.NewStore()
				require.NoError(t, s.AddTrustedCertificateWithTrust(p.root.Wrapped(t), x509verify.RejectAll()))
				res := s.Verify(ctx, p.leaf.Wrapped(t), p.inter.Wrapped(t))
				assertFailure(t, res, x509verify.CertRejected, 2)

				s = x509verify.NewStore(x509verify.WithPurpose(x509verify.PurposeSSLServer))
				require.NoError(t, s.AddTrustedCertificateWithTrust(p.root.Wrapped(t), x509verify.TrustSettings{
					Trusted: []x509verify.Trust{x509verify.TrustEmail},
				}))
				res = s.Verify(ctx, p.leaf.Wrapped(t), p.inter.Wrapped(t))
				assertFailure(t, res, x509verify.CertUntrusted, 2)

				s.SetTrust(x509verify.TrustEmail)
				res = s.Verify(ctx, p.leaf.Wrapped(t), p.inter.Wrapped(t))
				assert.True(t, res.Valid(), "got %s", res.Code)
			},
		},
		{
			name: "Unhandled Critical Extension",
			testFunc: func(t *testing.T) {
				leaf := p.inter.Issue(t, testutil.Spec{
					CommonName:      "critical.example.com",
					ExtraExtensions: []pkix.Extension{testutil.CriticalExt(asn1.ObjectIdentifier{1, 3, 6, 1, 4, 1, 99999, 1})},
				})
				s := newStore(t, p.root)
				res := s.Verify(ctx, leaf.Wrapped(t), p.inter.Wrapped(t))
				assertFailure(t, res, x509verify.UnhandledCriticalExtension, 0)

				s.SetFlags(x509verify.IgnoreCritical)
				res = s.Verify(ctx, leaf.Wrapped(t), p.inter.Wrapped(t))
				assert.True(t, res.Valid(), "got %s", res.Code)
			},
		},
		{
			name: "Security Level",
			testFunc: func(t *testing.T) {
				weak := p.inter.Issue(t, testutil.Spec{CommonName: "weak.example.com", RSABits: 1024})
				s := newStore(t, p.root)
				res := s.Verify(ctx, weak.Wrapped(t), p.inter.Wrapped(t))
				assert.True(t, res.Valid(), "got %s", res.Code)

				s.SetSecurityLevel(2)
				res = s.Verify(ctx, weak.Wrapped(t), p.inter.Wrapped(t))
				assertFailure(t, res, x509verify.EEKeyTooSmall, 0)

				s.SetSecurityLevel(4)
				res = s.Verify(ctx, p.leaf.Wrapped(t), p.inter.Wrapped(t))
				assertFailure(t, res, x509verify.EEKeyTooSmall, 0)
			},
		},
		{
			name: "Proxy Certificates",
			testFunc: func(t *testing.T) {
				// Each ExtraNames entry becomes its own RDN.
				proxySubject := pkix.Name{ExtraNames: []pkix.AttributeTypeAndValue{
					{Type: x509cert.OIDCommonName, Value: "leaf.example.com"},
					{Type: x509cert.OIDCommonName, Value: "proxy"},
				}}
				subject := pkix.Name{CommonName: "proxy"}
				proxy := p.leaf.Issue(t, testutil.Spec{
					Subject:            &proxySubject,
					NoBasicConstraints: true,
					ExtraExtensions:    []pkix.Extension{testutil.ProxyCertInfoExt(t, -1)},
				})
				s := newStore(t, p.root)
				res := s.Verify(ctx, proxy.Wrapped(t), p.leaf.Wrapped(t), p.inter.Wrapped(t))
				assertFailure(t, res, x509verify.ProxyCertificatesNotAllowed, 0)

				s.SetFlags(x509verify.AllowProxyCerts)
				res = s.Verify(ctx, proxy.Wrapped(t), p.leaf.Wrapped(t), p.inter.Wrapped(t))
				assert.True(t, res.Valid(), "got %s", res.Code)

				badSubject := p.leaf.Issue(t, testutil.Spec{
					Subject:            &subject,
					NoBasicConstraints: true,
					ExtraExtensions:    []pkix.Extension{testutil.ProxyCertInfoExt(t, -1)},
				})
				res = s.Verify(ctx, badSubject.Wrapped(t), p.leaf.Wrapped(t), p.inter.Wrapped(t))
				assertFailure(t, res, x509verify.ProxySubjectNameViolation, 0)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, tt.testFunc)
	}
}

func TestVerifyHooks(t *testing.T) {
	p := newPKI(t)
	ctx := context.Background()
	expired := p.inter.Issue(t, testutil.Spec{
		CommonName: "hook.example.com",
		NotBefore:  testutil.Now.Add(-50 * time.Minute),
		NotAfter:   testutil.Now.Add(-10 * time.Minute),
	})

	tests := []struct {
		name     string
		testFunc func(t *testing.T)
	}{
		{
			name: "Callback Overrides A Failure",
			testFunc: func(t *testing.T) {
				s := newStore(t, p.root)
				var seen []x509verify.Code
				s.SetVerifyCallback(func(f x509verify.Failure, chain []*x509cert.Certificate) bool {
					seen = append(seen, f.Code)
					return f.Code == x509verify.CertHasExpired
				})
				res := s.Verify(ctx, expired.Wrapped(t), p.inter.Wrapped(t))
				require.True(t, res.Valid(), "got %s", res.Code)
				require.Len(t, res.Overridden, 1)
				assert.Equal(t, x509verify.CertHasExpired, res.Overridden[0].Code)
				assert.Equal(t, 0, res.Overridden[0].Depth)
				assert.Equal(t, []x509verify.Code{x509verify.CertHasExpired}, seen)
			},
		},
		{
			name: "Callback Declines",
			testFunc: func(t *testing.T) {
				s := newStore(t, p.root)
				s.SetVerifyCallback(func(x509verify.Failure, []*x509cert.Certificate) bool { return false })
				res := s.Verify(ctx, expired.Wrapped(t), p.inter.Wrapped(t))
				assertFailure(t, res, x509verify.CertHasExpired, 0)
				assert.Empty(t, res.Overridden)
			},
		},
		{
			name: "Application Check",
			testFunc: func(t *testing.T) {
				s := newStore(t, p.root)
				boom := errors.New("pinned key mismatch")
				var got int
				s.SetCertificateCheck(func(chain []*x509cert.Certificate) error {
					got = len(chain)
					return boom
				})
				res := s.Verify(ctx, p.leaf.Wrapped(t), p.inter.Wrapped(t))
				assertFailure(t, res, x509verify.ApplicationVerification, 0)
				assert.ErrorIs(t, res.Err(), boom)
				assert.Equal(t, 3, got)
			},
		},
		{
			name: "Observer",
			testFunc: func(t *testing.T) {
				s := newStore(t, p.root)
				obs := &fakeObserver{}
				s.SetObserver(obs)
				s.Verify(ctx, p.leaf.Wrapped(t), p.inter.Wrapped(t))
				s.Verify(ctx, expired.Wrapped(t), p.inter.Wrapped(t))
				assert.Equal(t, []x509verify.Code{x509verify.OK, x509verify.CertHasExpired}, obs.codes)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, tt.testFunc)
	}
}

type fakeObserver struct {
	codes []x509verify.Code
}

func (f *fakeObserver) ObserveVerification(res *x509verify.Result, _ time.Duration) {
	f.codes = append(f.codes, res.Code)
}

func TestVerifySuiteB(t *testing.T) {
	ctx := context.Background()
	key := func(t *testing.T, curve elliptic.Curve) crypto.Signer {
		t.Helper()
		k, err := ecdsa.GenerateKey(curve, rand.Reader)
		require.NoError(t, err)
		return k
	}

	// verify builds root, intermediate and leaf with the given keys and
	// verifies the leaf with flags.
	verify := func(t *testing.T, flags x509verify.Flags, rootKey, interKey crypto.Signer, leaf testutil.Spec) *x509verify.Result {
		t.Helper()
		root := testutil.NewRoot(t, testutil.Spec{CommonName: "Suite B Root", Key: rootKey})
		inter := root.Issue(t, testutil.Spec{CommonName: "Suite B Intermediate", CA: true, Key: interKey})
		leaf.CommonName = "suiteb.example.com"
		l := inter.Issue(t, leaf)
		s := x509verify.NewStore(x509verify.WithFlags(flags))
		require.NoError(t, s.AddTrustedCertificate(root.Wrapped(t)))
		return s.Verify(ctx, l.Wrapped(t), inter.Wrapped(t))
	}

	tests := []struct {
		name     string
		testFunc func(t *testing.T)
	}{
		{
			name: "Flag Names",
			testFunc: func(t *testing.T) {
				for name, want := range map[string]x509verify.Flags{
					"SUITEB_128_LOS_ONLY": x509verify.SuiteB128LOSOnly,
					"SUITEB_192_LOS":      x509verify.SuiteB192LOS,
					"SUITEB_128_LOS":      x509verify.SuiteB128LOS,
				} {
					f, err := x509verify.ParseFlags(name)
					require.NoError(t, err, name)
					assert.Equal(t, want, f)
					assert.Equal(t, name, f.String())
				}
			},
		},
		{
			name: "128 Bit Chain",
			testFunc: func(t *testing.T) {
				p256 := elliptic.P256()
				res := verify(t, x509verify.SuiteB128LOSOnly, key(t, p256), key(t, p256), testutil.Spec{Key: key(t, p256)})
				assert.True(t, res.Valid(), "got %s", res.Code)
			},
		},
		{
			name: "192 Bit Chain",
			testFunc: func(t *testing.T) {
				p384 := elliptic.P384()
				res := verify(t, x509verify.SuiteB192LOS, key(t, p384), key(t, p384), testutil.Spec{Key: key(t, p384)})
				assert.True(t, res.Valid(), "got %s", res.Code)
			},
		},
		{
			name: "Not Enforced Without Flags",
			testFunc: func(t *testing.T) {
				res := verify(t, 0, key(t, elliptic.P256()), key(t, elliptic.P256()), testutil.Spec{RSABits: 2048})
				assert.True(t, res.Valid(), "got %s", res.Code)
			},
		},
		{
			name: "Invalid Version",
			testFunc: func(t *testing.T) {
				p256 := elliptic.P256()
				res := verify(t, x509verify.SuiteB128LOS, key(t, p256), key(t, p256), testutil.Spec{Key: key(t, p256), Version1: true})
				assertFailure(t, res, x509verify.SuiteBInvalidVersion, 0)
			},
		},
		{
			name: "Invalid Algorithm",
			testFunc: func(t *testing.T) {
				p256 := elliptic.P256()
				res := verify(t, x509verify.SuiteB128LOS, key(t, p256), key(t, p256), testutil.Spec{RSABits: 2048})
				assertFailure(t, res, x509verify.SuiteBInvalidAlgorithm, 0)
			},
		},
		{
			name: "Invalid Curve",
			testFunc: func(t *testing.T) {
				p256 := elliptic.P256()
				res := verify(t, x509verify.SuiteB128LOS, key(t, p256), key(t, p256), testutil.Spec{Key: key(t, elliptic.P521())})
				assertFailure(t, res, x509verify.SuiteBInvalidCurve, 0)
			},
		},
		{
			name: "Invalid Signature Algorithm",
			testFunc: func(t *testing.T) {
				p256 := elliptic.P256()
				res := verify(t, x509verify.SuiteB128LOSOnly, key(t, p256), key(t, p256), testutil.Spec{
					Key:           key(t, p256),
					SignatureAlgo: x509.ECDSAWithSHA384,
				})
				assertFailure(t, res, x509verify.SuiteBInvalidSignatureAlgorithm, 0)
			},
		},
		{
			name: "Level Not Allowed",
			testFunc: func(t *testing.T) {
				p256, p384 := elliptic.P256(), elliptic.P384()
				res := verify(t, x509verify.SuiteB192LOS, key(t, p384), key(t, p384), testutil.Spec{Key: key(t, p256)})
				assertFailure(t, res, x509verify.SuiteBLOSNotAllowed, 0)

				res = verify(t, x509verify.SuiteB128LOSOnly, key(t, p256), key(t, p256), testutil.Spec{Key: key(t, p384)})
				assertFailure(t, res, x509verify.SuiteBLOSNotAllowed, 0)
			},
		},
		{
			name: "P-384 Signed With P-256",
			testFunc: func(t *testing.T) {
				p256, p384 := elliptic.P256(), elliptic.P384()
				res := verify(t, x509verify.SuiteB128LOS, key(t, p256), key(t, p256), testutil.Spec{Key: key(t, p384)})
				assertFailure(t, res, x509verify.SuiteBCannotSignP384WithP256, 0)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, tt.testFunc)
	}
}
