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

// Purpose is the intended use of the leaf certificate. Zero means no purpose
// check is performed.
type Purpose int

// Certificate purposes.
const (
	PurposeSSLClient     Purpose = 1
	PurposeSSLServer     Purpose = 2
	PurposeNSSSLServer   Purpose = 3
	PurposeSMIMESign     Purpose = 4
	PurposeSMIMEEncrypt  Purpose = 5
	PurposeCRLSign       Purpose = 6
	PurposeAny           Purpose = 7
	PurposeOCSPHelper    Purpose = 8
	PurposeTimestampSign Purpose = 9
)

var purposeNames = map[Purpose]string{
	PurposeSSLClient:     "SSL_CLIENT",
	PurposeSSLServer:     "SSL_SERVER",
	PurposeNSSSLServer:   "NS_SSL_SERVER",
	PurposeSMIMESign:     "SMIME_SIGN",
	PurposeSMIMEEncrypt:  "SMIME_ENCRYPT",
	PurposeCRLSign:       "CRL_SIGN",
	PurposeAny:           "ANY",
	PurposeOCSPHelper:    "OCSP_HELPER",
	PurposeTimestampSign: "TIMESTAMP_SIGN",
}

// String returns the stable constant name.
func (p Purpose) String() string {
	if p == 0 {
		return "NONE"
	}
	if n, ok := purposeNames[p]; ok {
		return n
	}
	return "Purpose(" + strconv.Itoa(int(p)) + ")"
}

// Valid reports whether p is a known purpose.
func (p Purpose) Valid() bool {
	_, ok := purposeNames[p]
	return ok
}

// DefaultTrust returns the trust kind checked for anchors when no explicit
// trust kind is configured.
func (p Purpose) DefaultTrust() Trust {
	switch p {
	case PurposeSSLClient:
		return TrustSSLClient
	case PurposeSSLServer, PurposeNSSSLServer:
		return TrustSSLServer
	case PurposeSMIMESign, PurposeSMIMEEncrypt:
		return TrustEmail
	case PurposeTimestampSign:
		return TrustTSA
	case PurposeCRLSign, PurposeAny, PurposeOCSPHelper:
		return TrustCompat
	}
	return 0
}

// ParsePurpose parses a purpose name (case-insensitive, optional "PURPOSE_"
// prefix) or number. The empty string and "NONE" yield zero.
func ParsePurpose(s string) (Purpose, error) {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "NONE") {
		return 0, nil
	}
	if n, err := strconv.Atoi(s); err == nil {
		if p := Purpose(n); p.Valid() {
			return p, nil
		}
		return 0, fmt.Errorf("x509verify: unknown purpose %d", n)
	}
	name := strings.TrimPrefix(strings.ToUpper(strings.ReplaceAll(s, "-", "_")), "PURPOSE_")
	for p, n := range purposeNames {
		if n == name {
			return p, nil
		}
	}
	return 0, fmt.Errorf("x509verify: unknown purpose %q", s)
}

// Trust is the trust kind an anchor must carry. Zero means the default for
// the configured purpose.
type Trust int

// Trust kinds.
const (
	TrustCompat      Trust = 1
	TrustSSLClient   Trust = 2
	TrustSSLServer   Trust = 3
	TrustEmail       Trust = 4
	TrustObjectSign  Trust = 5
	TrustOCSPSign    Trust = 6
	TrustOCSPRequest Trust = 7
	TrustTSA         Trust = 8
)

var trustNames = map[Trust]string{
	TrustCompat:      "COMPAT",
	TrustSSLClient:   "SSL_CLIENT",
	TrustSSLServer:   "SSL_SERVER",
	TrustEmail:       "EMAIL",
	TrustObjectSign:  "OBJECT_SIGN",
	TrustOCSPSign:    "OCSP_SIGN",
	TrustOCSPRequest: "OCSP_REQUEST",
	TrustTSA:         "TSA",
}

// String returns the stable constant name.
func (t Trust) String() string {
	if t == 0 {
		return "DEFAULT"
	}
	if n, ok := trustNames[t]; ok {
		return n
	}
	return "Trust(" + strconv.Itoa(int(t)) + ")"
}

// Valid reports whether t is a known trust kind.
func (t Trust) Valid() bool {
	_, ok := trustNames[t]
	return ok
}

// ParseTrust parses a trust name (case-insensitive, optional "TRUST_" prefix)
// or number. The empty string and "DEFAULT" yield zero.
func ParseTrust(s string) (Trust, error) {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "DEFAULT") {
		return 0, nil
	}
	if n, err := strconv.Atoi(s); err == nil {
		if t := Trust(n); t.Valid() {
			return t, nil
		}
		return 0, fmt.Errorf("x509verify: unknown trust %d", n)
	}
	name := strings.TrimPrefix(strings.ToUpper(strings.ReplaceAll(s, "-", "_")), "TRUST_")
	for t, n := range trustNames {
		if n == name {
			return t, nil
		}
	}
	return 0, fmt.Errorf("x509verify: unknown trust %q", s)
}
