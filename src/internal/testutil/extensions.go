// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package testutil

import (
	"crypto/x509/pkix"
	"encoding/asn1"
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"

	x509cert "github.com/H0llyW00dzZ/x509-trust-verifier/src/x509/cert"
)

func intContent(n int) []byte {
	b := big.NewInt(int64(n)).Bytes()
	if len(b) == 0 || b[0]&0x80 != 0 {
		b = append([]byte{0}, b...)
	}
	return b
}

func marshal(t testing.TB, v any) []byte {
	t.Helper()
	der, err := asn1.Marshal(v)
	require.NoError(t, err, "marshal extension value")
	return der
}

func tagged(tag int, compound bool, content []byte) asn1.RawValue {
	return asn1.RawValue{Class: asn1.ClassContextSpecific, Tag: tag, IsCompound: compound, Bytes: content}
}

func sequence(t testing.TB, elems ...asn1.RawValue) []byte {
	t.Helper()
	var content []byte
	for _, e := range elems {
		content = append(content, marshal(t, e)...)
	}
	return marshal(t, asn1.RawValue{Class: asn1.ClassUniversal, Tag: asn1.TagSequence, IsCompound: true, Bytes: content})
}

// PolicyConstraintsExt encodes policyConstraints; a negative value omits the field.
func PolicyConstraintsExt(t testing.TB, requireExplicit, inhibitMapping int) pkix.Extension {
	t.Helper()
	var elems []asn1.RawValue
	if requireExplicit >= 0 {
		elems = append(elems, tagged(0, false, intContent(requireExplicit)))
	}
	if inhibitMapping >= 0 {
		elems = append(elems, tagged(1, false, intContent(inhibitMapping)))
	}
	return pkix.Extension{Id: x509cert.OIDPolicyConstraints, Critical: true, Value: sequence(t, elems...)}
}

// PolicyMappingsExt encodes policyMappings from issuer/subject pairs.
func PolicyMappingsExt(t testing.TB, mappings ...x509cert.PolicyMapping) pkix.Extension {
	t.Helper()
	return pkix.Extension{Id: x509cert.OIDPolicyMappings, Critical: true, Value: marshal(t, mappings)}
}

// InhibitAnyPolicyExt encodes inhibitAnyPolicy.
func InhibitAnyPolicyExt(t testing.TB, skip int) pkix.Extension {
	t.Helper()
	return pkix.Extension{Id: x509cert.OIDInhibitAnyPolicy, Critical: true, Value: marshal(t, skip)}
}

// OIDProxyPolicyInheritAll is the id-ppl-inheritAll proxy policy language.
var OIDProxyPolicyInheritAll = asn1.ObjectIdentifier{1, 3, 6, 1, 5, 5, 7, 21, 1}

// ProxyCertInfoExt encodes an RFC 3820 proxyCertInfo; a negative pathLen omits it.
func ProxyCertInfoExt(t testing.TB, pathLen int) pkix.Extension {
	t.Helper()
	policy := marshal(t, struct{ Language asn1.ObjectIdentifier }{OIDProxyPolicyInheritAll})
	var elems []asn1.RawValue
	if pathLen >= 0 {
		elems = append(elems, asn1.RawValue{FullBytes: marshal(t, pathLen)})
	}
	elems = append(elems, asn1.RawValue{FullBytes: policy})
	return pkix.Extension{Id: x509cert.OIDProxyCertInfo, Critical: true, Value: sequence(t, elems...)}
}

// IDP describes an issuingDistributionPoint extension.
type IDP struct {
	URI             string
	OnlyUser        bool
	OnlyCA          bool
	OnlyAttributes  bool
	Indirect        bool
	OnlySomeReasons []byte
}

// IDPExt encodes an issuingDistributionPoint CRL extension.
func IDPExt(t testing.TB, idp IDP) pkix.Extension {
	t.Helper()
	var elems []asn1.RawValue
	if idp.URI != "" {
		uri := marshal(t, tagged(6, false, []byte(idp.URI)))
		full := marshal(t, tagged(0, true, uri))
		elems = append(elems, tagged(0, true, full))
	}
	for i, v := range []bool{idp.OnlyUser, idp.OnlyCA} {
		if v {
			elems = append(elems, tagged(i+1, false, []byte{0xff}))
		}
	}
	if len(idp.OnlySomeReasons) > 0 {
		elems = append(elems, tagged(3, false, append([]byte{0}, idp.OnlySomeReasons...)))
	}
	if idp.Indirect {
		elems = append(elems, tagged(4, false, []byte{0xff}))
	}
	if idp.OnlyAttributes {
		elems = append(elems, tagged(5, false, []byte{0xff}))
	}
	return pkix.Extension{Id: x509cert.OIDIssuingDistributionPoint, Critical: true, Value: sequence(t, elems...)}
}

// DeltaCRLIndicatorExt encodes a deltaCRLIndicator naming the base CRL number.
func DeltaCRLIndicatorExt(t testing.TB, base int64) pkix.Extension {
	t.Helper()
	return pkix.Extension{Id: x509cert.OIDDeltaCRLIndicator, Critical: true, Value: marshal(t, big.NewInt(base))}
}

// CertificateIssuerExt encodes a certificateIssuer CRL entry extension naming issuer.
func CertificateIssuerExt(t testing.TB, issuerRawSubject []byte) pkix.Extension {
	t.Helper()
	dirName := tagged(4, true, issuerRawSubject)
	return pkix.Extension{Id: x509cert.OIDCertificateIssuer, Critical: true, Value: sequence(t, dirName)}
}

// AuthorityKeyIDExt encodes an authorityKeyIdentifier with an issuer name and serial.
func AuthorityKeyIDExt(t testing.TB, keyID []byte, issuerRawSubject []byte, serial *big.Int) pkix.Extension {
	t.Helper()
	var elems []asn1.RawValue
	if keyID != nil {
		elems = append(elems, tagged(0, false, keyID))
	}
	if issuerRawSubject != nil {
		dirName := marshal(t, tagged(4, true, issuerRawSubject))
		elems = append(elems, tagged(1, true, dirName))
	}
	if serial != nil {
		elems = append(elems, tagged(2, false, intContent(int(serial.Int64()))))
	}
	return pkix.Extension{Id: x509cert.OIDAuthorityKeyID, Value: sequence(t, elems...)}
}

// CriticalExt returns an opaque critical extension with an unknown identifier.
func CriticalExt(oid asn1.ObjectIdentifier) pkix.Extension {
	return pkix.Extension{Id: oid, Critical: true, Value: []byte{0x05, 0x00}}
}

// Subtree is one GeneralSubtree for [NameConstraintsExt]. Exactly one of
// Directory (a DER Name) and DNS should be set. Max is omitted when negative.
type Subtree struct {
	Directory []byte
	DNS       string
	Min, Max  int
}

func (s Subtree) encode(t testing.TB) asn1.RawValue {
	t.Helper()
	base := tagged(2, false, []byte(s.DNS))
	if s.Directory != nil {
		base = tagged(4, true, s.Directory)
	}
	elems := []asn1.RawValue{base}
	if s.Min != 0 {
		elems = append(elems, tagged(0, false, intContent(s.Min)))
	}
	if s.Max >= 0 {
		elems = append(elems, tagged(1, false, intContent(s.Max)))
	}
	return asn1.RawValue{FullBytes: sequence(t, elems...)}
}

// NameConstraintsExt encodes a critical nameConstraints extension, including
// directoryName bases and subtree bounds that CreateCertificate cannot
// produce.
func NameConstraintsExt(t testing.TB, permitted, excluded []Subtree) pkix.Extension {
	t.Helper()
	var elems []asn1.RawValue
	for tag, list := range [][]Subtree{permitted, excluded} {
		if len(list) == 0 {
			continue
		}
		var content []byte
		for _, st := range list {
			content = append(content, st.encode(t).FullBytes...)
		}
		elems = append(elems, tagged(tag, true, content))
	}
	return pkix.Extension{Id: x509cert.OIDNameConstraints, Critical: true, Value: sequence(t, elems...)}
}
