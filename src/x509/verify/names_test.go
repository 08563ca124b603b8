// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package x509verify_test

import (
	"context"
	"crypto/x509/pkix"
	"encoding/asn1"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/H0llyW00dzZ/x509-trust-verifier/src/internal/testutil"
	x509verify "github.com/H0llyW00dzZ/x509-trust-verifier/src/x509/verify"
)

func TestVerifyNameConstraints(t *testing.T) {
	root := testutil.NewRoot(t, testutil.Spec{CommonName: "Constraint Root"})
	ctx := context.Background()

	verify := func(t *testing.T, ca testutil.Spec, leaf testutil.Spec) *x509verify.Result {
		t.Helper()
		ca.CA = true
		inter := root.Issue(t, ca)
		l := inter.Issue(t, leaf)
		return newStore(t, root).Verify(ctx, l.Wrapped(t), inter.Wrapped(t))
	}

	tests := []struct {
		name     string
		testFunc func(t *testing.T)
	}{
		{
			name: "Permitted DNS",
			testFunc: func(t *testing.T) {
				ca := testutil.Spec{CommonName: "DNS CA", PermittedDNSDomains: []string{"example.com"}}
				res := verify(t, ca, testutil.Spec{CommonName: "www.example.com", DNSNames: []string{"www.example.com"}})
				assert.True(t, res.Valid(), "got %s", res.Code)

				res = verify(t, ca, testutil.Spec{CommonName: "www.example.org", DNSNames: []string{"www.example.org"}})
				assertFailure(t, res, x509verify.PermittedViolation, 0)
			},
		},
		{
			name: "Common Name Counts Without DNS SAN",
			testFunc: func(t *testing.T) {
				ca := testutil.Spec{CommonName: "CN CA", PermittedDNSDomains: []string{"example.com"}}
				res := verify(t, ca, testutil.Spec{CommonName: "host.example.net"})
				assertFailure(t, res, x509verify.PermittedViolation, 0)
			},
		},
		{
			name: "Excluded DNS",
			testFunc: func(t *testing.T) {
				ca := testutil.Spec{CommonName: "Excluding CA", ExcludedDNSDomains: []string{".internal.example.com"}}
				res := verify(t, ca, testutil.Spec{CommonName: "db", DNSNames: []string{"db.internal.example.com"}})
				assertFailure(t, res, x509verify.ExcludedViolation, 0)

				res = verify(t, ca, testutil.Spec{CommonName: "web", DNSNames: []string{"internal.example.com"}})
				assert.True(t, res.Valid(), "a leading dot only excludes subdomains, got %s", res.Code)
			},
		},
		{
			name: "Email",
			testFunc: func(t *testing.T) {
				ca := testutil.Spec{CommonName: "Mail CA", PermittedEmail: []string{"example.com"}}
				res := verify(t, ca, testutil.Spec{CommonName: "alice", EmailAddresses: []string{"alice@Example.COM"}})
				assert.True(t, res.Valid(), "got %s", res.Code)

				res = verify(t, ca, testutil.Spec{CommonName: "mallory", EmailAddresses: []string{"mallory@evil.test"}})
				assertFailure(t, res, x509verify.PermittedViolation, 0)
			},
		},
		{
			name: "IP Ranges",
			testFunc: func(t *testing.T) {
				_, allowed, _ := net.ParseCIDR("10.0.0.0/8")
				ca := testutil.Spec{CommonName: "IP CA", PermittedIPRanges: []*net.IPNet{allowed}}
				res := verify(t, ca, testutil.Spec{CommonName: "ip", IPAddresses: []net.IP{net.ParseIP("10.1.2.3")}})
				assert.True(t, res.Valid(), "got %s", res.Code)

				res = verify(t, ca, testutil.Spec{CommonName: "ip", IPAddresses: []net.IP{net.ParseIP("192.168.1.1")}})
				assertFailure(t, res, x509verify.PermittedViolation, 0)
			},
		},
		{
			name: "Permitted Directory Name",
			testFunc: func(t *testing.T) {
				ext := testutil.NameConstraintsExt(t, []testutil.Subtree{{Directory: dirName(t, "Example Corp"), Max: -1}}, nil)
				ca := testutil.Spec{CommonName: "Directory CA", ExtraExtensions: []pkix.Extension{ext}}

				res := verify(t, ca, testutil.Spec{Subject: &pkix.Name{Organization: []string{"Example Corp"}, CommonName: "in.example.com"}})
				assert.True(t, res.Valid(), "got %s", res.Code)

				res = verify(t, ca, testutil.Spec{Subject: &pkix.Name{Organization: []string{"Other Corp"}, CommonName: "out.example.com"}})
				assertFailure(t, res, x509verify.PermittedViolation, 0)
			},
		},
		{
			name: "Excluded Directory Name",
			testFunc: func(t *testing.T) {
				ext := testutil.NameConstraintsExt(t, nil, []testutil.Subtree{{Directory: dirName(t, "Blocked Corp"), Max: -1}})
				ca := testutil.Spec{CommonName: "Excluding Directory CA", ExtraExtensions: []pkix.Extension{ext}}

				res := verify(t, ca, testutil.Spec{Subject: &pkix.Name{Organization: []string{"Blocked Corp"}, CommonName: "blocked"}})
				assertFailure(t, res, x509verify.ExcludedViolation, 0)

				res = verify(t, ca, testutil.Spec{Subject: &pkix.Name{Organization: []string{"Allowed Corp"}, CommonName: "allowed"}})
				assert.True(t, res.Valid(), "got %s", res.Code)
			},
		},
		{
			name: "Subtree Bounds",
			testFunc: func(t *testing.T) {
				leaf := testutil.Spec{CommonName: "www.example.com", DNSNames: []string{"www.example.com"}}
				for _, st := range []testutil.Subtree{
					{DNS: "example.com", Min: 1, Max: -1},
					{DNS: "example.com", Max: 2},
				} {
					ext := testutil.NameConstraintsExt(t, []testutil.Subtree{st}, nil)
					res := verify(t, testutil.Spec{CommonName: "Bounded CA", ExtraExtensions: []pkix.Extension{ext}}, leaf)
					assertFailure(t, res, x509verify.SubtreeMinMax, 0)
				}

				ext := testutil.NameConstraintsExt(t, []testutil.Subtree{{DNS: "example.com", Max: -1}}, nil)
				res := verify(t, testutil.Spec{CommonName: "Unbounded CA", ExtraExtensions: []pkix.Extension{ext}}, leaf)
				assert.True(t, res.Valid(), "got %s", res.Code)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, tt.testFunc)
	}
}

// dirName encodes a distinguished name holding only an organization.
func dirName(t *testing.T, org string) []byte {
	t.Helper()
	der, err := asn1.Marshal(pkix.Name{Organization: []string{org}}.ToRDNSequence())
	require.NoError(t, err)
	return der
}

func TestVerifyIdentity(t *testing.T) {
	root := testutil.NewRoot(t, testutil.Spec{CommonName: "Identity Root"})
	leaf := root.Issue(t, testutil.Spec{
		CommonName:     "api.example.com",
		DNSNames:       []string{"api.example.com", "*.cdn.example.com"},
		EmailAddresses: []string{"ops@example.com"},
		IPAddresses:    []net.IP{net.ParseIP("192.0.2.10")},
	})
	ctx := context.Background()

	tests := []struct {
		name     string
		testFunc func(t *testing.T)
	}{
		{
			name: "Host",
			testFunc: func(t *testing.T) {
				s := newStore(t, root)
				s.SetHost("other.example.com", "img.cdn.example.com")
				assert.True(t, s.Verify(ctx, leaf.Wrapped(t)).Valid())

				s.SetHost("example.org")
				assertFailure(t, s.Verify(ctx, leaf.Wrapped(t)), x509verify.HostnameMismatch, 0)
			},
		},
		{
			name: "Email",
			testFunc: func(t *testing.T) {
				s := newStore(t, root)
				s.SetEmail("ops@EXAMPLE.com")
				assert.True(t, s.Verify(ctx, leaf.Wrapped(t)).Valid())

				s.SetEmail("OPS@example.com")
				assertFailure(t, s.Verify(ctx, leaf.Wrapped(t)), x509verify.EmailMismatch, 0)
			},
		},
		{
			name: "IP Address",
			testFunc: func(t *testing.T) {
				s := newStore(t, root)
				s.SetIPAddress(net.ParseIP("192.0.2.10"))
				assert.True(t, s.Verify(ctx, leaf.Wrapped(t)).Valid())

				s.SetIPAddress(net.ParseIP("192.0.2.11"))
				assertFailure(t, s.Verify(ctx, leaf.Wrapped(t)), x509verify.IPAddressMismatch, 0)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, tt.testFunc)
	}
}
