// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package x509verify

import (
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/rsa"
	"crypto/x509"

	x509cert "github.com/H0llyW00dzZ/x509-trust-verifier/src/x509/cert"
)

// levelBits is the minimum security strength in bits for each security level.
var levelBits = [...]int{0, 80, 112, 128, 192, 256}

// requiredBits returns the strength demanded by level.
func requiredBits(level int) int {
	if level <= 0 {
		return 0
	}
	if level >= len(levelBits) {
		level = len(levelBits) - 1
	}
	return levelBits[level]
}

// keySecurityBits estimates the strength of the certificate public key, or
// -1 when the key type is unknown.
func keySecurityBits(cert *x509cert.Certificate) int {
	switch k := cert.PublicKey().(type) {
	case *rsa.PublicKey:
		return rsaSecurityBits(k.N.BitLen())
	case *ecdsa.PublicKey:
		return k.Curve.Params().BitSize / 2
	case ed25519.PublicKey:
		return 128
	default:
		return -1
	}
}

// rsaSecurityBits follows the NIST SP 800-57 equivalences.
func rsaSecurityBits(bits int) int {
	switch {
	case bits >= 15360:
		return 256
	case bits >= 7680:
		return 192
	case bits >= 3072:
		return 128
	case bits >= 2048:
		return 112
	case bits >= 1024:
		return 80
	default:
		return bits / 16
	}
}

// digestSecurityBits estimates the collision strength of the signature digest,
// or -1 when unknown.
func digestSecurityBits(alg x509.SignatureAlgorithm) int {
	switch alg {
	case x509.MD2WithRSA, x509.MD5WithRSA:
		return 39
	case x509.SHA1WithRSA, x509.DSAWithSHA1, x509.ECDSAWithSHA1:
		return 80
	case x509.SHA256WithRSA, x509.SHA256WithRSAPSS, x509.DSAWithSHA256, x509.ECDSAWithSHA256, x509.PureEd25519:
		return 128
	case x509.SHA384WithRSA, x509.SHA384WithRSAPSS, x509.ECDSAWithSHA384:
		return 192
	case x509.SHA512WithRSA, x509.SHA512WithRSAPSS, x509.ECDSAWithSHA512:
		return 256
	default:
		return -1
	}
}

// digestTooWeak reports whether level forbids the digest. Level 1 rejects
// MD5 and level 2 also rejects SHA-1.
func digestTooWeak(alg x509.SignatureAlgorithm, level int) bool {
	bits := digestSecurityBits(alg)
	return bits >= 0 && bits < requiredBits(level)
}

// keyTooSmall reports whether level forbids the certificate key.
func keyTooSmall(cert *x509cert.Certificate, level int) bool {
	bits := keySecurityBits(cert)
	return bits >= 0 && bits < requiredBits(level)
}
