// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package testutil

import (
	"crypto"
	"crypto/ecdsa"
	"crypto/rand"
	"crypto/sha256"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/asn1"
	"math/big"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

var oidECDSAWithSHA256 = asn1.ObjectIdentifier{1, 2, 840, 10045, 4, 3, 2}

type validityV1 struct {
	NotBefore, NotAfter time.Time
}

type tbsCertificateV1 struct {
	SerialNumber *big.Int
	Signature    pkix.AlgorithmIdentifier
	Issuer       asn1.RawValue
	Validity     validityV1
	Subject      asn1.RawValue
	PublicKey    asn1.RawValue
}

type certificateV1 struct {
	TBS       asn1.RawValue
	Algorithm pkix.AlgorithmIdentifier
	Signature asn1.BitString
}

// createV1 encodes a version 1 certificate, which [x509.CreateCertificate]
// cannot produce. Only ECDSA issuers are supported.
func createV1(t testing.TB, tmpl *x509.Certificate, parent *Entity, pub crypto.PublicKey, key crypto.Signer) *x509.Certificate {
	t.Helper()
	signer := key
	if parent != nil {
		signer = parent.Key
	}
	_, ok := signer.(*ecdsa.PrivateKey)
	require.True(t, ok, "version 1 certificates require an ECDSA issuer")

	subject, err := asn1.Marshal(tmpl.Subject.ToRDNSequence())
	require.NoError(t, err, "marshal subject")
	issuer := subject
	if parent != nil {
		issuer = parent.Cert.RawSubject
	}
	spki, err := x509.MarshalPKIXPublicKey(pub)
	require.NoError(t, err, "marshal public key")

	alg := pkix.AlgorithmIdentifier{Algorithm: oidECDSAWithSHA256}
	tbs, err := asn1.Marshal(tbsCertificateV1{
		SerialNumber: tmpl.SerialNumber,
		Signature:    alg,
		Issuer:       asn1.RawValue{FullBytes: issuer},
		Validity:     validityV1{NotBefore: tmpl.NotBefore.UTC(), NotAfter: tmpl.NotAfter.UTC()},
		Subject:      asn1.RawValue{FullBytes: subject},
		PublicKey:    asn1.RawValue{FullBytes: spki},
	})
	require.NoError(t, err, "marshal TBSCertificate")

	digest := sha256.Sum256(tbs)
	sig, err := signer.Sign(rand.Reader, digest[:], crypto.SHA256)
	require.NoError(t, err, "sign TBSCertificate")

	der, err := asn1.Marshal(certificateV1{
		TBS:       asn1.RawValue{FullBytes: tbs},
		Algorithm: alg,
		Signature: asn1.BitString{Bytes: sig, BitLength: len(sig) * 8},
	})
	require.NoError(t, err, "marshal certificate")
	cert, err := x509.ParseCertificate(der)
	require.NoError(t, err, "parse version 1 certificate")
	return cert
}
