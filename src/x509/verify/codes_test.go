// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package x509verify_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	x509verify "github.com/H0llyW00dzZ/x509-trust-verifier/src/x509/verify"
)

func TestCodes(t *testing.T) {
	tests := []struct {
		name     string
		testFunc func(t *testing.T)
	}{
		{
			name: "Stable Numbers",
			testFunc: func(t *testing.T) {
				assert.Equal(t, 0, int(x509verify.OK))
				assert.Equal(t, 2, int(x509verify.UnableToGetIssuerCert))
				assert.Equal(t, 10, int(x509verify.CertHasExpired))
				assert.Equal(t, 20, int(x509verify.UnableToGetIssuerCertLocally))
				assert.Equal(t, 23, int(x509verify.CertRevoked))
				assert.Equal(t, 25, int(x509verify.PathLengthExceeded))
				assert.Equal(t, 62, int(x509verify.HostnameMismatch))
			},
		},
		{
			name: "Names And Descriptions",
			testFunc: func(t *testing.T) {
				assert.Equal(t, "CERT_HAS_EXPIRED", x509verify.CertHasExpired.String())
				assert.Equal(t, "certificate has expired", x509verify.CertHasExpired.Description())
				assert.Equal(t, "Code(9999)", x509verify.Code(9999).String())
				for _, c := range x509verify.Codes() {
					assert.NotEmpty(t, c.Description(), c.String())
					parsed, err := x509verify.ParseCode(c.String())
					require.NoError(t, err)
					assert.Equal(t, c, parsed)
				}
			},
		},
		{
			name: "Parse Variants",
			testFunc: func(t *testing.T) {
				for _, in := range []string{"cert_revoked", "V_ERR_CERT_REVOKED", "23"} {
					c, err := x509verify.ParseCode(in)
					require.NoError(t, err, in)
					assert.Equal(t, x509verify.CertRevoked, c)
				}
				c, err := x509verify.ParseCode("V_OK")
				require.NoError(t, err)
				assert.Equal(t, x509verify.OK, c)

				_, err = x509verify.ParseCode("NOT_A_CODE")
				assert.Error(t, err)
				_, err = x509verify.ParseCode("9999")
				assert.Error(t, err)
			},
		},
		{
			name: "Verify Error Matching",
			testFunc: func(t *testing.T) {
				cause := errors.New("download failed")
				err := error(&x509verify.VerifyError{Code: x509verify.StoreLookup, Depth: 1, Subject: "CN=Test", Err: cause})
				assert.ErrorIs(t, err, x509verify.StoreLookup)
				assert.NotErrorIs(t, err, x509verify.CertRevoked)
				assert.ErrorIs(t, err, cause)
				assert.Contains(t, err.Error(), "STORE_LOOKUP")
				assert.Contains(t, err.Error(), "at depth 1")
				assert.Contains(t, err.Error(), "CN=Test")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, tt.testFunc)
	}
}

func TestFlagsPurposeTrust(t *testing.T) {
	tests := []struct {
		name     string
		testFunc func(t *testing.T)
	}{
		{
			name: "Parse And Render Flags",
			testFunc: func(t *testing.T) {
				f, err := x509verify.ParseFlags("crl_check | V_FLAG_X509_STRICT,0x80000")
				require.NoError(t, err)
				assert.Equal(t, x509verify.CRLCheck|x509verify.X509Strict|x509verify.PartialChain, f)
				assert.Equal(t, "CRL_CHECK|X509_STRICT|PARTIAL_CHAIN", f.String())
				assert.Equal(t, "0", x509verify.Flags(0).String())

				_, err = x509verify.ParseFlags("NO_SUCH_FLAG")
				assert.Error(t, err)
			},
		},
		{
			name: "Policy Implications",
			testFunc: func(t *testing.T) {
				f, err := x509verify.ParseFlags("INHIBIT_MAP")
				require.NoError(t, err)
				assert.True(t, f.Has(x509verify.PolicyCheck))

				f = x509verify.Flags(0).With(x509verify.ExplicitPolicy).Without(x509verify.PolicyCheck)
				assert.True(t, f.Has(x509verify.PolicyCheck), "an implying flag keeps policy checking on")
			},
		},
		{
			name: "Purpose",
			testFunc: func(t *testing.T) {
				p, err := x509verify.ParsePurpose("ssl-server")
				require.NoError(t, err)
				assert.Equal(t, x509verify.PurposeSSLServer, p)
				assert.Equal(t, "SSL_SERVER", p.String())
				assert.Equal(t, x509verify.TrustSSLServer, p.DefaultTrust())

				p, err = x509verify.ParsePurpose("")
				require.NoError(t, err)
				assert.Zero(t, p)
				assert.Equal(t, "NONE", p.String())

				_, err = x509verify.ParsePurpose("42")
				assert.Error(t, err)
			},
		},
		{
			name: "Trust",
			testFunc: func(t *testing.T) {
				tr, err := x509verify.ParseTrust("trust_email")
				require.NoError(t, err)
				assert.Equal(t, x509verify.TrustEmail, tr)
				assert.True(t, tr.Valid())

				tr, err = x509verify.ParseTrust("default")
				require.NoError(t, err)
				assert.Equal(t, "DEFAULT", tr.String())

				_, err = x509verify.ParseTrust("everything")
				assert.Error(t, err)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, tt.testFunc)
	}
}
