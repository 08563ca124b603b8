// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package x509cert_test

import (
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/asn1"
	"math/big"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/H0llyW00dzZ/x509-trust-verifier/src/internal/testutil"
	x509cert "github.com/H0llyW00dzZ/x509-trust-verifier/src/x509/cert"
)

func TestCertificateOperations(t *testing.T) {
	root := testutil.NewRoot(t, testutil.Spec{CommonName: "Model Root"})
	inter := root.Issue(t, testutil.Spec{CommonName: "Model Intermediate", CA: true, PathLen: testutil.PathLen(0)})
	leaf := inter.Issue(t, testutil.Spec{
		CommonName:     "leaf.example.com",
		DNSNames:       []string{"leaf.example.com"},
		EmailAddresses: []string{"ops@example.com"},
		IPAddresses:    []net.IP{net.ParseIP("192.0.2.10")},
	})

	tests := []struct {
		name     string
		testFunc func(t *testing.T)
	}{
		{
			name: "New Rejects Nil",
			testFunc: func(t *testing.T) {
				_, err := x509cert.New(nil)
				assert.ErrorIs(t, err, x509cert.ErrNilCertificate)
			},
		},
		{
			name: "Parse From DER",
			testFunc: func(t *testing.T) {
				c, err := x509cert.Parse(leaf.Cert.Raw)
				require.NoError(t, err)
				assert.True(t, c.Equal(leaf.Wrapped(t)))
				assert.Equal(t, 3, c.Version())
				assert.Equal(t, leaf.Cert.SerialNumber, c.SerialNumber())
				assert.Equal(t, "leaf.example.com", c.Subject().CommonName())
				assert.Equal(t, "Model Intermediate", c.Issuer().CommonName())
				assert.Equal(t, leaf.Cert.NotAfter.UTC(), c.NotAfter())
				assert.Equal(t, 256, c.KeyBits())
			},
		},
		{
			name: "Self Signed Detection",
			testFunc: func(t *testing.T) {
				assert.True(t, root.Wrapped(t).IsSelfSigned())
				assert.True(t, root.Wrapped(t).IsSelfIssued())
				assert.False(t, inter.Wrapped(t).IsSelfSigned())
				assert.False(t, leaf.Wrapped(t).IsSelfIssued())
			},
		},
		{
			name: "Issuer Matching",
			testFunc: func(t *testing.T) {
				l, i, r := leaf.Wrapped(t), inter.Wrapped(t), root.Wrapped(t)
				assert.True(t, l.MatchesIssuer(i))
				assert.True(t, i.MatchesIssuer(r))
				assert.Equal(t, x509cert.IssuerSubjectMismatch, l.IssuerCheck(r))
				assert.NoError(t, l.CheckSignatureFrom(i))
				assert.Error(t, l.CheckSignatureFrom(r))
			},
		},
		{
			name: "Key Identifier Mismatch",
			testFunc: func(t *testing.T) {
				// Same subject as the intermediate but a different key.
				twin := root.Issue(t, testutil.Spec{CommonName: "Model Intermediate", CA: true})
				assert.Equal(t, x509cert.IssuerAKIDSKIDMismatch, leaf.Wrapped(t).IssuerCheck(twin.Wrapped(t)))
			},
		},
		{
			name: "Authority Issuer And Serial",
			testFunc: func(t *testing.T) {
				ext := testutil.AuthorityKeyIDExt(t, nil, root.Cert.RawSubject, big.NewInt(1))
				child := inter.Issue(t, testutil.Spec{CommonName: "AKID child", ExtraExtensions: []pkix.Extension{ext}})
				c := child.Wrapped(t)

				aki, ok, err := c.AuthorityKeyID()
				require.NoError(t, err)
				require.True(t, ok)
				assert.Equal(t, int64(1), aki.SerialNumber.Int64())
				require.Len(t, aki.Issuer, 1)
				assert.Equal(t, x509cert.DirectoryName, aki.Issuer[0].Kind)

				assert.Equal(t, x509cert.IssuerAKIDSerialMismatch, c.IssuerCheck(inter.Wrapped(t)))
			},
		},
		{
			name: "Basic Constraints And Key Usage",
			testFunc: func(t *testing.T) {
				bc, ok := inter.Wrapped(t).BasicConstraints()
				require.True(t, ok)
				assert.True(t, bc.IsCA)
				assert.Equal(t, 0, bc.MaxPathLen)

				bc, ok = root.Wrapped(t).BasicConstraints()
				require.True(t, ok)
				assert.Equal(t, -1, bc.MaxPathLen)

				ku, ok := inter.Wrapped(t).KeyUsage()
				require.True(t, ok)
				assert.NotZero(t, ku&x509.KeyUsageCertSign)

				eku, ok := leaf.Wrapped(t).ExtKeyUsage()
				require.True(t, ok)
				assert.Contains(t, eku, x509.ExtKeyUsageServerAuth)
			},
		},
		{
			name: "Subject Alternative Names",
			testFunc: func(t *testing.T) {
				names, err := leaf.Wrapped(t).AltNames()
				require.NoError(t, err)
				kinds := make([]x509cert.GeneralNameKind, len(names))
				for i, n := range names {
					kinds[i] = n.Kind
				}
				assert.ElementsMatch(t, []x509cert.GeneralNameKind{x509cert.DNSName, x509cert.RFC822Name, x509cert.IPAddressName}, kinds)
				for _, n := range names {
					if n.Kind == x509cert.IPAddressName {
						assert.Equal(t, "IP Address:192.0.2.10", n.String())
					}
				}
			},
		},
		{
			name: "Name Constraints",
			testFunc: func(t *testing.T) {
				_, ipnet, _ := net.ParseCIDR("10.0.0.0/8")
				ca := root.Issue(t, testutil.Spec{
					CommonName:          "Constrained",
					CA:                  true,
					PermittedDNSDomains: []string{"example.com"},
					ExcludedDNSDomains:  []string{"bad.example.com"},
					PermittedIPRanges:   []*net.IPNet{ipnet},
				})
				nc, err := ca.Wrapped(t).NameConstraints()
				require.NoError(t, err)
				require.NotNil(t, nc)
				require.Len(t, nc.Permitted, 2)
				require.Len(t, nc.Excluded, 1)
				assert.Equal(t, "example.com", nc.Permitted[0].Base.Text())
				assert.Equal(t, x509cert.IPAddressName, nc.Permitted[1].Base.Kind)
				assert.Len(t, nc.Permitted[1].Base.Value, 8)
				assert.Equal(t, -1, nc.Excluded[0].Maximum)

				none, err := leaf.Wrapped(t).NameConstraints()
				require.NoError(t, err)
				assert.Nil(t, none)
			},
		},
		{
			name: "Policy Extensions",
			testFunc: func(t *testing.T) {
				p1 := asn1.ObjectIdentifier{1, 3, 6, 1, 4, 1, 99999, 1}
				p2 := asn1.ObjectIdentifier{1, 3, 6, 1, 4, 1, 99999, 2}
				ca := root.Issue(t, testutil.Spec{
					CommonName: "Policy CA",
					CA:         true,
					Policies:   []asn1.ObjectIdentifier{p1},
					ExtraExtensions: []pkix.Extension{
						testutil.PolicyConstraintsExt(t, 0, 2),
						testutil.PolicyMappingsExt(t, x509cert.PolicyMapping{IssuerDomainPolicy: p1, SubjectDomainPolicy: p2}),
						testutil.InhibitAnyPolicyExt(t, 1),
					},
				})
				c := ca.Wrapped(t)

				policies, ok, err := c.Policies()
				require.NoError(t, err)
				require.True(t, ok)
				assert.True(t, policies[0].Equal(p1))

				pc, ok, err := c.PolicyConstraints()
				require.NoError(t, err)
				require.True(t, ok)
				assert.Equal(t, 0, pc.RequireExplicitPolicy)
				assert.Equal(t, 2, pc.InhibitPolicyMapping)

				mappings, ok, err := c.PolicyMappings()
				require.NoError(t, err)
				require.True(t, ok)
				require.Len(t, mappings, 1)
				assert.True(t, mappings[0].SubjectDomainPolicy.Equal(p2))

				skip, ok, err := c.InhibitAnyPolicy()
				require.NoError(t, err)
				require.True(t, ok)
				assert.Equal(t, 1, skip)
			},
		},
		{
			name: "Empty Policy Constraints Are Invalid",
			testFunc: func(t *testing.T) {
				ca := root.Issue(t, testutil.Spec{
					CommonName:      "Broken Policy CA",
					CA:              true,
					ExtraExtensions: []pkix.Extension{testutil.PolicyConstraintsExt(t, -1, -1)},
				})
				_, ok, err := ca.Wrapped(t).PolicyConstraints()
				assert.True(t, ok)
				assert.ErrorIs(t, err, x509cert.ErrInvalidPolicyExtension)
			},
		},
		{
			name: "Proxy Certificate Info",
			testFunc: func(t *testing.T) {
				proxy := leaf.Issue(t, testutil.Spec{
					CommonName:      "proxy",
					ExtraExtensions: []pkix.Extension{testutil.ProxyCertInfoExt(t, 3)},
				})
				c := proxy.Wrapped(t)
				assert.True(t, c.IsProxy())

				info, ok, err := c.ProxyCertInfo()
				require.NoError(t, err)
				require.True(t, ok)
				assert.Equal(t, 3, info.PathLen)
				assert.True(t, info.PolicyLanguage.Equal(testutil.OIDProxyPolicyInheritAll))
				assert.False(t, leaf.Wrapped(t).IsProxy())
			},
		},
		{
			name: "Supported Extensions",
			testFunc: func(t *testing.T) {
				assert.True(t, x509cert.SupportedExtension(x509cert.OIDBasicConstraints))
				assert.True(t, x509cert.SupportedExtension(x509cert.OIDNameConstraints))
				assert.False(t, x509cert.SupportedExtension(asn1.ObjectIdentifier{1, 2, 3, 4}))
				assert.True(t, x509cert.SupportedCRLExtension(x509cert.OIDIssuingDistributionPoint))
				assert.True(t, x509cert.SupportedCRLEntryExtension(x509cert.OIDCertificateIssuer))
			},
		},
		{
			name: "Version 1 Certificate",
			testFunc: func(t *testing.T) {
				v1 := testutil.NewRoot(t, testutil.Spec{CommonName: "Legacy Root", Version1: true})
				c := v1.Wrapped(t)
				assert.Equal(t, 1, c.Version())
				assert.True(t, c.IsSelfSigned())
				_, ok := c.BasicConstraints()
				assert.False(t, ok)
				assert.Empty(t, c.Extensions())
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.testFunc(t)
		})
	}
}
