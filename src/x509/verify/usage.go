// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package x509verify

import (
	"crypto/x509"
	"slices"

	x509cert "github.com/H0llyW00dzZ/x509-trust-verifier/src/x509/cert"
)

// ekuAllows reports whether the extended key usage is absent or permits one
// of the usages.
func ekuAllows(cert *x509cert.Certificate, usages ...x509.ExtKeyUsage) bool {
	eku, ok := cert.ExtKeyUsage()
	if !ok || slices.Contains(eku, x509.ExtKeyUsageAny) {
		return true
	}
	for _, u := range usages {
		if slices.Contains(eku, u) {
			return true
		}
	}
	return false
}

// kuAllows reports whether the key usage is absent or has one of the bits.
func kuAllows(cert *x509cert.Certificate, bits x509.KeyUsage) bool {
	ku, ok := cert.KeyUsage()
	return !ok || ku&bits != 0
}

var sslServerEKU = []x509.ExtKeyUsage{
	x509.ExtKeyUsageServerAuth,
	x509.ExtKeyUsageNetscapeServerGatedCrypto,
	x509.ExtKeyUsageMicrosoftServerGatedCrypto,
}

// leafPurposeOK applies the purpose rules to the end-entity certificate.
func leafPurposeOK(cert *x509cert.Certificate, p Purpose) bool {
	switch p {
	case PurposeSSLClient:
		return ekuAllows(cert, x509.ExtKeyUsageClientAuth) &&
			kuAllows(cert, x509.KeyUsageDigitalSignature|x509.KeyUsageKeyAgreement)
	case PurposeSSLServer:
		return ekuAllows(cert, sslServerEKU...) &&
			kuAllows(cert, x509.KeyUsageDigitalSignature|x509.KeyUsageKeyEncipherment|x509.KeyUsageKeyAgreement)
	case PurposeNSSSLServer:
		return ekuAllows(cert, sslServerEKU...) && kuAllows(cert, x509.KeyUsageKeyEncipherment)
	case PurposeSMIMESign:
		return ekuAllows(cert, x509.ExtKeyUsageEmailProtection) &&
			kuAllows(cert, x509.KeyUsageDigitalSignature|x509.KeyUsageContentCommitment)
	case PurposeSMIMEEncrypt:
		return ekuAllows(cert, x509.ExtKeyUsageEmailProtection) && kuAllows(cert, x509.KeyUsageKeyEncipherment)
	case PurposeCRLSign:
		return kuAllows(cert, x509.KeyUsageCRLSign)
	case PurposeTimestampSign:
		return timestampLeafOK(cert)
	default:
		return true
	}
}

// timestampLeafOK requires timeStamping as the only extended key usage, as
// RFC 3161 mandates.
func timestampLeafOK(cert *x509cert.Certificate) bool {
	eku, ok := cert.ExtKeyUsage()
	if !ok || len(cert.X509().UnknownExtKeyUsage) > 0 {
		return false
	}
	if len(eku) != 1 || eku[0] != x509.ExtKeyUsageTimeStamping {
		return false
	}
	ku, ok := cert.KeyUsage()
	return !ok || ku&^(x509.KeyUsageDigitalSignature|x509.KeyUsageContentCommitment) == 0
}

// caPurposeOK applies the purpose rules to an untrusted intermediate.
func caPurposeOK(cert *x509cert.Certificate, p Purpose) bool {
	switch p {
	case PurposeSSLClient:
		return ekuAllows(cert, x509.ExtKeyUsageClientAuth)
	case PurposeSSLServer, PurposeNSSSLServer:
		return ekuAllows(cert, sslServerEKU...)
	case PurposeSMIMESign, PurposeSMIMEEncrypt:
		return ekuAllows(cert, x509.ExtKeyUsageEmailProtection)
	case PurposeTimestampSign:
		return ekuAllows(cert, x509.ExtKeyUsageTimeStamping)
	default:
		return true
	}
}
