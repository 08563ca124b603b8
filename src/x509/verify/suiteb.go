// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package x509verify

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/x509"

	x509cert "github.com/H0llyW00dzZ/x509-trust-verifier/src/x509/cert"
)

// checkSuiteB applies the RFC 6460 Suite B restrictions to a chain, leaf
// first. It returns OK and -1 when flags request no Suite B level or the
// chain conforms.
func checkSuiteB(chain []*x509cert.Certificate, flags Flags) (Code, int) {
	requested := flags & SuiteB128LOS
	if requested == 0 || len(chain) == 0 {
		return OK, -1
	}

	los := requested
	code, depth := suiteBChain(chain, &los)
	// A P-384 key cleared the 128 bit level, then a P-256 key signed it.
	if code == SuiteBLOSNotAllowed && los != requested {
		code = SuiteBCannotSignP384WithP256
	}
	return code, depth
}

// suiteBChain walks the chain. Signature and level errors found while
// checking an issuer key are reported at the certificate it signed.
func suiteBChain(chain []*x509cert.Certificate, los *Flags) (Code, int) {
	leaf := chain[0]
	if leaf.Version() != 3 {
		return SuiteBInvalidVersion, 0
	}
	if code := suiteBKey(leaf, nil, los); code != OK {
		return code, 0
	}

	for i := 1; i < len(chain); i++ {
		cert := chain[i]
		if cert.Version() != 3 {
			return SuiteBInvalidVersion, i
		}
		signedWith := chain[i-1].SignatureAlgorithm()
		if code := suiteBKey(cert, &signedWith, los); code != OK {
			if code == SuiteBInvalidSignatureAlgorithm || code == SuiteBLOSNotAllowed {
				return code, i - 1
			}
			return code, i
		}
	}

	top := chain[len(chain)-1]
	signedWith := top.SignatureAlgorithm()
	if code := suiteBKey(top, &signedWith, los); code != OK {
		return code, len(chain) - 1
	}
	return OK, -1
}

// suiteBKey checks the key of cert and, when signedWith is not nil, the
// algorithm of a signature made with that key. Meeting a P-384 key removes
// the 128 bit level from los.
func suiteBKey(cert *x509cert.Certificate, signedWith *x509.SignatureAlgorithm, los *Flags) Code {
	key, ok := cert.PublicKey().(*ecdsa.PublicKey)
	if !ok {
		return SuiteBInvalidAlgorithm
	}

	switch key.Curve {
	case elliptic.P384():
		if signedWith != nil && *signedWith != x509.ECDSAWithSHA384 {
			return SuiteBInvalidSignatureAlgorithm
		}
		if !los.Any(SuiteB192LOS) {
			return SuiteBLOSNotAllowed
		}
		*los &^= SuiteB128LOSOnly
	case elliptic.P256():
		if signedWith != nil && *signedWith != x509.ECDSAWithSHA256 {
			return SuiteBInvalidSignatureAlgorithm
		}
		if !los.Any(SuiteB128LOSOnly) {
			return SuiteBLOSNotAllowed
		}
	default:
		return SuiteBInvalidCurve
	}
	return OK
}
