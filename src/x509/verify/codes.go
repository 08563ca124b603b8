// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package x509verify

import (
	"fmt"
	"strconv"
	"strings"
)

// Code is a verification result code. The numbering is stable.
type Code int

// Verification result codes.
const (
	OK                              Code = 0
	Unspecified                     Code = 1
	UnableToGetIssuerCert           Code = 2
	UnableToGetCRL                  Code = 3
	UnableToDecryptCertSignature    Code = 4
	UnableToDecryptCRLSignature     Code = 5
	UnableToDecodeIssuerPublicKey   Code = 6
	CertSignatureFailure            Code = 7
	CRLSignatureFailure             Code = 8
	CertNotYetValid                 Code = 9
	CertHasExpired                  Code = 10
	CRLNotYetValid                  Code = 11
	CRLHasExpired                   Code = 12
	ErrorInCertNotBeforeField       Code = 13
	ErrorInCertNotAfterField        Code = 14
	ErrorInCRLLastUpdateField       Code = 15
	ErrorInCRLNextUpdateField       Code = 16
	OutOfMem                        Code = 17
	DepthZeroSelfSignedCert         Code = 18
	SelfSignedCertInChain           Code = 19
	UnableToGetIssuerCertLocally    Code = 20
	UnableToVerifyLeafSignature     Code = 21
	CertChainTooLong                Code = 22
	CertRevoked                     Code = 23
	InvalidCA                       Code = 24
	PathLengthExceeded              Code = 25
	InvalidPurpose                  Code = 26
	CertUntrusted                   Code = 27
	CertRejected                    Code = 28
	SubjectIssuerMismatch           Code = 29
	AKIDSKIDMismatch                Code = 30
	AKIDIssuerSerialMismatch        Code = 31
	KeyUsageNoCertSign              Code = 32
	UnableToGetCRLIssuer            Code = 33
	UnhandledCriticalExtension      Code = 34
	KeyUsageNoCRLSign               Code = 35
	UnhandledCriticalCRLExtension   Code = 36
	InvalidNonCA                    Code = 37
	ProxyPathLengthExceeded         Code = 38
	KeyUsageNoDigitalSignature      Code = 39
	ProxyCertificatesNotAllowed     Code = 40
	InvalidExtension                Code = 41
	InvalidPolicyExtension          Code = 42
	NoExplicitPolicy                Code = 43
	DifferentCRLScope               Code = 44
	UnsupportedExtensionFeature     Code = 45
	UnnestedResource                Code = 46
	PermittedViolation              Code = 47
	ExcludedViolation               Code = 48
	SubtreeMinMax                   Code = 49
	ApplicationVerification         Code = 50
	UnsupportedConstraintType       Code = 51
	UnsupportedConstraintSyntax     Code = 52
	UnsupportedNameSyntax           Code = 53
	CRLPathValidationError          Code = 54
	PathLoop                        Code = 55
	SuiteBInvalidVersion            Code = 56
	SuiteBInvalidAlgorithm          Code = 57
	SuiteBInvalidCurve              Code = 58
	SuiteBInvalidSignatureAlgorithm Code = 59
	SuiteBLOSNotAllowed             Code = 60
	SuiteBCannotSignP384WithP256    Code = 61
	HostnameMismatch                Code = 62
	EmailMismatch                   Code = 63
	IPAddressMismatch               Code = 64
	DANENoMatch                     Code = 65
	EEKeyTooSmall                   Code = 66
	CAKeyTooSmall                   Code = 67
	CAMDTooWeak                     Code = 68
	InvalidCall                     Code = 69
	StoreLookup                     Code = 70
	NoValidSCTs                     Code = 71
	ProxySubjectNameViolation       Code = 72
	OCSPVerifyNeeded                Code = 73
	OCSPVerifyFailed                Code = 74
	OCSPCertUnknown                 Code = 75
)

type codeInfo struct {
	name string
	desc string
}

var codeTable = map[Code]codeInfo{
	OK:                              {"OK", "ok"},
	Unspecified:                     {"UNSPECIFIED", "unspecified certificate verification error"},
	UnableToGetIssuerCert:           {"UNABLE_TO_GET_ISSUER_CERT", "unable to get issuer certificate"},
	UnableToGetCRL:                  {"UNABLE_TO_GET_CRL", "unable to get certificate CRL"},
	UnableToDecryptCertSignature:    {"UNABLE_TO_DECRYPT_CERT_SIGNATURE", "unable to decrypt certificate's signature"},
	UnableToDecryptCRLSignature:     {"UNABLE_TO_DECRYPT_CRL_SIGNATURE", "unable to decrypt CRL's signature"},
	UnableToDecodeIssuerPublicKey:   {"UNABLE_TO_DECODE_ISSUER_PUBLIC_KEY", "unable to decode issuer public key"},
	CertSignatureFailure:            {"CERT_SIGNATURE_FAILURE", "certificate signature failure"},
	CRLSignatureFailure:             {"CRL_SIGNATURE_FAILURE", "CRL signature failure"},
	CertNotYetValid:                 {"CERT_NOT_YET_VALID", "certificate is not yet valid"},
	CertHasExpired:                  {"CERT_HAS_EXPIRED", "certificate has expired"},
	CRLNotYetValid:                  {"CRL_NOT_YET_VALID", "CRL is not yet valid"},
	CRLHasExpired:                   {"CRL_HAS_EXPIRED", "CRL has expired"},
	ErrorInCertNotBeforeField:       {"ERROR_IN_CERT_NOT_BEFORE_FIELD", "format error in certificate's notBefore field"},
	ErrorInCertNotAfterField:        {"ERROR_IN_CERT_NOT_AFTER_FIELD", "format error in certificate's notAfter field"},
	ErrorInCRLLastUpdateField:       {"ERROR_IN_CRL_LAST_UPDATE_FIELD", "format error in CRL's lastUpdate field"},
	ErrorInCRLNextUpdateField:       {"ERROR_IN_CRL_NEXT_UPDATE_FIELD", "format error in CRL's nextUpdate field"},
	OutOfMem:                        {"OUT_OF_MEM", "out of memory"},
	DepthZeroSelfSignedCert:         {"DEPTH_ZERO_SELF_SIGNED_CERT", "self-signed certificate"},
	SelfSignedCertInChain:           {"SELF_SIGNED_CERT_IN_CHAIN", "self-signed certificate in certificate chain"},
	UnableToGetIssuerCertLocally:    {"UNABLE_TO_GET_ISSUER_CERT_LOCALLY", "unable to get local issuer certificate"},
	UnableToVerifyLeafSignature:     {"UNABLE_TO_VERIFY_LEAF_SIGNATURE", "unable to verify the first certificate"},
	CertChainTooLong:                {"CERT_CHAIN_TOO_LONG", "certificate chain too long"},
	CertRevoked:                     {"CERT_REVOKED", "certificate revoked"},
	InvalidCA:                       {"INVALID_CA", "invalid CA certificate"},
	PathLengthExceeded:              {"PATH_LENGTH_EXCEEDED", "path length constraint exceeded"},
	InvalidPurpose:                  {"INVALID_PURPOSE", "unsupported certificate purpose"},
	CertUntrusted:                   {"CERT_UNTRUSTED", "certificate not trusted"},
	CertRejected:                    {"CERT_REJECTED", "certificate rejected"},
	SubjectIssuerMismatch:           {"SUBJECT_ISSUER_MISMATCH", "subject issuer mismatch"},
	AKIDSKIDMismatch:                {"AKID_SKID_MISMATCH", "authority and subject key identifier mismatch"},
	AKIDIssuerSerialMismatch:        {"AKID_ISSUER_SERIAL_MISMATCH", "authority and issuer serial number mismatch"},
	KeyUsageNoCertSign:              {"KEYUSAGE_NO_CERTSIGN", "key usage does not include certificate signing"},
	UnableToGetCRLIssuer:            {"UNABLE_TO_GET_CRL_ISSUER", "unable to get CRL issuer certificate"},
	UnhandledCriticalExtension:      {"UNHANDLED_CRITICAL_EXTENSION", "unhandled critical extension"},
	KeyUsageNoCRLSign:               {"KEYUSAGE_NO_CRL_SIGN", "key usage does not include CRL signing"},
	UnhandledCriticalCRLExtension:   {"UNHANDLED_CRITICAL_CRL_EXTENSION", "unhandled critical CRL extension"},
	InvalidNonCA:                    {"INVALID_NON_CA", "invalid non-CA certificate (has CA markings)"},
	ProxyPathLengthExceeded:         {"PROXY_PATH_LENGTH_EXCEEDED", "proxy path length constraint exceeded"},
	KeyUsageNoDigitalSignature:      {"KEYUSAGE_NO_DIGITAL_SIGNATURE", "key usage does not include digital signature"},
	ProxyCertificatesNotAllowed:     {"PROXY_CERTIFICATES_NOT_ALLOWED", "proxy certificates not allowed, please set the appropriate flag"},
	InvalidExtension:                {"INVALID_EXTENSION", "invalid or inconsistent certificate extension"},
	InvalidPolicyExtension:          {"INVALID_POLICY_EXTENSION", "invalid or inconsistent certificate policy extension"},
	NoExplicitPolicy:                {"NO_EXPLICIT_POLICY", "no explicit policy"},
	DifferentCRLScope:               {"DIFFERENT_CRL_SCOPE", "different CRL scope"},
	UnsupportedExtensionFeature:     {"UNSUPPORTED_EXTENSION_FEATURE", "unsupported extension feature"},
	UnnestedResource:                {"UNNESTED_RESOURCE", "RFC 3779 resource not subset of parent's resources"},
	PermittedViolation:              {"PERMITTED_VIOLATION", "permitted subtree violation"},
	ExcludedViolation:               {"EXCLUDED_VIOLATION", "excluded subtree violation"},
	SubtreeMinMax:                   {"SUBTREE_MINMAX", "name constraints minimum and maximum not supported"},
	ApplicationVerification:         {"APPLICATION_VERIFICATION", "application verification failure"},
	UnsupportedConstraintType:       {"UNSUPPORTED_CONSTRAINT_TYPE", "unsupported name constraint type"},
	UnsupportedConstraintSyntax:     {"UNSUPPORTED_CONSTRAINT_SYNTAX", "unsupported or invalid name constraint syntax"},
	UnsupportedNameSyntax:           {"UNSUPPORTED_NAME_SYNTAX", "unsupported or invalid name syntax"},
	CRLPathValidationError:          {"CRL_PATH_VALIDATION_ERROR", "CRL path validation error"},
	PathLoop:                        {"PATH_LOOP", "path loop"},
	SuiteBInvalidVersion:            {"SUITE_B_INVALID_VERSION", "Suite B: certificate version invalid"},
	SuiteBInvalidAlgorithm:          {"SUITE_B_INVALID_ALGORITHM", "Suite B: invalid public key algorithm"},
	SuiteBInvalidCurve:              {"SUITE_B_INVALID_CURVE", "Suite B: invalid ECC curve"},
	SuiteBInvalidSignatureAlgorithm: {"SUITE_B_INVALID_SIGNATURE_ALGORITHM", "Suite B: invalid signature algorithm"},
	SuiteBLOSNotAllowed:             {"SUITE_B_LOS_NOT_ALLOWED", "Suite B: curve not allowed for this LOS"},
	SuiteBCannotSignP384WithP256:    {"SUITE_B_CANNOT_SIGN_P_384_WITH_P_256", "Suite B: cannot sign P-384 with P-256"},
	HostnameMismatch:                {"HOSTNAME_MISMATCH", "hostname mismatch"},
	EmailMismatch:                   {"EMAIL_MISMATCH", "email address mismatch"},
	IPAddressMismatch:               {"IP_ADDRESS_MISMATCH", "IP address mismatch"},
	DANENoMatch:                     {"DANE_NO_MATCH", "no matching DANE TLSA records"},
	EEKeyTooSmall:                   {"EE_KEY_TOO_SMALL", "EE certificate key too weak"},
	CAKeyTooSmall:                   {"CA_KEY_TOO_SMALL", "CA certificate key too weak"},
	CAMDTooWeak:                     {"CA_MD_TOO_WEAK", "CA signature digest algorithm too weak"},
	InvalidCall:                     {"INVALID_CALL", "invalid certificate verification context"},
	StoreLookup:                     {"STORE_LOOKUP", "issuer certificate lookup error"},
	NoValidSCTs:                     {"NO_VALID_SCTS", "certificate transparency required, but no valid SCTs found"},
	ProxySubjectNameViolation:       {"PROXY_SUBJECT_NAME_VIOLATION", "proxy subject name violation"},
	OCSPVerifyNeeded:                {"OCSP_VERIFY_NEEDED", "OCSP verification needed"},
	OCSPVerifyFailed:                {"OCSP_VERIFY_FAILED", "OCSP verification failed"},
	OCSPCertUnknown:                 {"OCSP_CERT_UNKNOWN", "OCSP unknown cert"},
}

// String returns the stable constant name, for example "CERT_HAS_EXPIRED".
func (c Code) String() string {
	if info, ok := codeTable[c]; ok {
		return info.name
	}
	return "Code(" + strconv.Itoa(int(c)) + ")"
}

// Description returns the human readable message for the code.
func (c Code) Description() string {
	if info, ok := codeTable[c]; ok {
		return info.desc
	}
	return fmt.Sprintf("unknown verification code %d", int(c))
}

// Error makes a Code usable as an [errors.Is] target.
func (c Code) Error() string { return c.Description() }

// Codes returns every known code in ascending order.
func Codes() []Code {
	out := make([]Code, 0, len(codeTable))
	for c := OK; c <= OCSPCertUnknown; c++ {
		if _, ok := codeTable[c]; ok {
			out = append(out, c)
		}
	}
	return out
}

// ParseCode accepts a constant name (case-insensitive, with or without a
// "V_ERR_" prefix) or a decimal number.
func ParseCode(s string) (Code, error) {
	s = strings.TrimSpace(s)
	if n, err := strconv.Atoi(s); err == nil {
		if _, ok := codeTable[Code(n)]; ok {
			return Code(n), nil
		}
		return 0, fmt.Errorf("x509verify: unknown code %d", n)
	}
	name := strings.ToUpper(s)
	name = strings.TrimPrefix(name, "V_ERR_")
	if name == "V_OK" {
		name = "OK"
	}
	for c, info := range codeTable {
		if info.name == name {
			return c, nil
		}
	}
	return 0, fmt.Errorf("x509verify: unknown code %q", s)
}
