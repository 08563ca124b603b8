// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package x509certs_test

import (
	"encoding/pem"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/H0llyW00dzZ/x509-trust-verifier/src/config"
	"github.com/H0llyW00dzZ/x509-trust-verifier/src/internal/testutil"
	x509certs "github.com/H0llyW00dzZ/x509-trust-verifier/src/internal/x509/certs"
	x509cert "github.com/H0llyW00dzZ/x509-trust-verifier/src/x509/cert"
	x509verify "github.com/H0llyW00dzZ/x509-trust-verifier/src/x509/verify"
)

const (
	invalidPEM = `
-----BEGIN INVALID-----
MIIEmTCCBD+gAwIBAgIRANFjRCmF+Y2bUYHbhxwkEpowCgYIKoZIzj0EAwIwgY8x
-----END INVALID-----
`

	invalidCERT = `
-----BEGIN CERTIFICATE-----
MIIBIjANBgkqhkiG9w0BAQEFAAOCAQ8AMIIBCgKCAQEAz6e5VV5F8rF2sFJ0Q4vA
-----END CERTIFICATE-----
`
)

type fixture struct {
	root  *testutil.Entity
	leaf  *testutil.Entity
	crl   *x509cert.RevocationList
	codec *x509certs.Codec
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	root := testutil.NewRoot(t, testutil.Spec{CommonName: "Codec Root"})
	leaf := root.Issue(t, testutil.Spec{CommonName: "codec.example.com"})
	return &fixture{
		root:  root,
		leaf:  leaf,
		crl:   root.CRL(t, testutil.CRLSpec{}),
		codec: x509certs.New(),
	}
}

func TestCodec(t *testing.T) {
	f := newFixture(t)

	tests := []struct {
		name     string
		testFunc func(t *testing.T)
	}{
		{
			name: "Encode And Decode PEM",
			testFunc: func(t *testing.T) {
				encoded := f.codec.EncodePEM(f.leaf.Wrapped(t))
				assert.True(t, f.codec.IsPEM(encoded))

				cert, err := f.codec.Decode(encoded)
				require.NoError(t, err, "Decode() error")
				assert.Equal(t, "codec.example.com", cert.X509().Subject.CommonName)
			},
		},
		{
			name: "Decode DER",
			testFunc: func(t *testing.T) {
				cert, err := f.codec.Decode(f.leaf.Cert.Raw)
				require.NoError(t, err, "Decode() error")
				assert.True(t, cert.Equal(f.leaf.Wrapped(t)))
			},
		},
		{
			name: "Trusted Certificate Block",
			testFunc: func(t *testing.T) {
				data := pem.EncodeToMemory(&pem.Block{Type: x509certs.BlockTrustedCertificate, Bytes: f.root.Cert.Raw})
				cert, err := f.codec.Decode(data)
				require.NoError(t, err)
				assert.True(t, cert.IsSelfSigned())
			},
		},
		{
			name: "Decode Multiple PEM Skips CRL Blocks",
			testFunc: func(t *testing.T) {
				data := f.codec.EncodeMultiplePEM(testutil.Chain(t, f.leaf, f.root))
				data = append(data, f.codec.EncodeCRLPEM(f.crl)...)

				certs, err := f.codec.DecodeMultiple(data)
				require.NoError(t, err, "DecodeMultiple() error")
				require.Len(t, certs, 2)
				assert.True(t, certs[1].IsSelfSigned())
			},
		},
		{
			name: "Decode Multiple DER",
			testFunc: func(t *testing.T) {
				data := f.codec.EncodeMultipleDER(testutil.Chain(t, f.leaf, f.root))
				certs, err := f.codec.DecodeMultiple(data)
				require.NoError(t, err)
				assert.Len(t, certs, 2)
			},
		},
		{
			name: "Decode CRL PEM And DER",
			testFunc: func(t *testing.T) {
				crl, err := f.codec.DecodeCRL(f.codec.EncodeCRLPEM(f.crl))
				require.NoError(t, err)
				assert.Equal(t, f.crl.Fingerprint(), crl.Fingerprint())

				crl, err = f.codec.DecodeCRL(f.crl.Raw())
				require.NoError(t, err)
				assert.Equal(t, f.crl.Fingerprint(), crl.Fingerprint())

				_, err = f.codec.DecodeCRL(f.codec.EncodePEM(f.leaf.Wrapped(t)))
				assert.ErrorIs(t, err, x509certs.ErrInvalidBlockType)
			},
		},
		{
			name: "Decode Bundle",
			testFunc: func(t *testing.T) {
				data := append(f.codec.EncodeCRLPEM(f.crl), f.codec.EncodePEM(f.root.Wrapped(t))...)
				b, err := f.codec.DecodeBundle(data)
				require.NoError(t, err)
				assert.Len(t, b.Certificates, 1)
				assert.Len(t, b.CRLs, 1)

				b, err = f.codec.DecodeBundle(f.crl.Raw())
				require.NoError(t, err, "a DER CRL is a bundle too")
				assert.Len(t, b.CRLs, 1)

				_, err = f.codec.DecodeBundle([]byte("not a certificate"))
				assert.ErrorIs(t, err, x509certs.ErrNoObjects)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, tt.testFunc)
	}
}

func TestDecodeCertificate_Invalid(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected error
	}{
		{
			name:     "Invalid PEM Block",
			input:    invalidPEM,
			expected: x509certs.ErrInvalidBlockType,
		},
		{
			name:     "Invalid Certificate",
			input:    invalidCERT,
			expected: x509certs.ErrParseCertificate,
		},
		{
			name:     "Garbage DER",
			input:    "\x30\x03\x02\x01",
			expected: x509certs.ErrParseCertificate,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			decoder := x509certs.New()
			_, err := decoder.Decode([]byte(tt.input))
			assert.ErrorIs(t, err, tt.expected, "expected specific error")
		})
	}
}

func writeFile(t *testing.T, path string, data []byte) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, data, 0o644))
}

func TestLoad(t *testing.T) {
	f := newFixture(t)

	tests := []struct {
		name     string
		testFunc func(t *testing.T)
	}{
		{
			name: "Load File",
			testFunc: func(t *testing.T) {
				path := filepath.Join(t.TempDir(), "bundle.pem")
				writeFile(t, path, append(f.codec.EncodePEM(f.root.Wrapped(t)), f.codec.EncodeCRLPEM(f.crl)...))

				b, err := f.codec.LoadFile(path)
				require.NoError(t, err)
				assert.Len(t, b.Certificates, 1)
				assert.Len(t, b.CRLs, 1)
			},
		},
		{
			name: "Load Missing File",
			testFunc: func(t *testing.T) {
				_, err := f.codec.LoadFile(filepath.Join(t.TempDir(), "missing.pem"))
				assert.ErrorIs(t, err, x509certs.ErrReadFile)
				assert.ErrorIs(t, err, os.ErrNotExist)
			},
		},
		{
			name: "Load Dir",
			testFunc: func(t *testing.T) {
				dir := t.TempDir()
				writeFile(t, filepath.Join(dir, "a1b2c3d4.0"), f.codec.EncodePEM(f.root.Wrapped(t)))
				writeFile(t, filepath.Join(dir, "a1b2c3d4.r0"), f.crl.Raw())
				writeFile(t, filepath.Join(dir, "README"), []byte("hashed CA directory"))
				writeFile(t, filepath.Join(dir, ".hidden.pem"), f.codec.EncodePEM(f.leaf.Wrapped(t)))
				require.NoError(t, os.Mkdir(filepath.Join(dir, "sub"), 0o755))

				b, err := f.codec.LoadDir(dir)
				require.NoError(t, err)
				assert.Len(t, b.Certificates, 1)
				assert.Len(t, b.CRLs, 1)
				assert.Equal(t, []string{filepath.Join(dir, "README")}, b.Skipped)
			},
		},
		{
			name: "Add To Store",
			testFunc: func(t *testing.T) {
				store := x509verify.NewStore()
				n, err := x509certs.AddToStore(store, &x509certs.Bundle{
					Certificates: testutil.Chain(t, f.root),
					CRLs:         []*x509cert.RevocationList{f.crl},
				})
				require.NoError(t, err)
				assert.Equal(t, 1, n)
				assert.Equal(t, 1, store.Len())

				res := store.Verify(t.Context(), f.leaf.Wrapped(t))
				assert.True(t, res.Valid(), "leaf should verify against the loaded root: %v", res.Err())
			},
		},
		{
			name: "Add To Store Rejecting Fingerprint",
			testFunc: func(t *testing.T) {
				store := x509verify.NewStore()
				root := f.root.Wrapped(t)
				_, err := x509certs.AddToStore(store, &x509certs.Bundle{
					Certificates: []*x509cert.Certificate{root},
				}, root.Fingerprint())
				require.NoError(t, err)

				res := store.Verify(t.Context(), f.leaf.Wrapped(t))
				assert.Equal(t, x509verify.CertRejected, res.Code)
				assert.Equal(t, 1, res.Depth)
			},
		},
		{
			name: "Load Default Locations",
			testFunc: func(t *testing.T) {
				area := t.TempDir()
				paths := config.PathsFor(area)
				require.NoError(t, os.Mkdir(paths.CertDir, 0o755))
				writeFile(t, paths.CertFile, f.codec.EncodePEM(f.root.Wrapped(t)))
				other := testutil.NewRoot(t, testutil.Spec{CommonName: "Dir Root"})
				writeFile(t, filepath.Join(paths.CertDir, "dir-root.pem"), f.codec.EncodePEM(other.Wrapped(t)))
				t.Setenv(config.CertFileEnv, "")
				t.Setenv(config.CertDirEnv, "")

				store := x509verify.NewStore(x509verify.WithPaths(paths))
				n, err := f.codec.LoadDefaultLocations(store, store.Paths())
				require.NoError(t, err)
				assert.Equal(t, 2, n)
				assert.Equal(t, 2, store.Len())
			},
		},
		{
			name: "Load Default Locations Missing",
			testFunc: func(t *testing.T) {
				t.Setenv(config.CertFileEnv, "")
				t.Setenv(config.CertDirEnv, "")
				store := x509verify.NewStore()
				n, err := f.codec.LoadDefaultLocations(store, config.PathsFor(filepath.Join(t.TempDir(), "nowhere")))
				require.NoError(t, err)
				assert.Zero(t, n)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, tt.testFunc)
	}
}
