// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package x509cert

import (
	"crypto/x509/pkix"
	"encoding/asn1"
	"fmt"
	"math/big"
)

// Certificate extension identifiers.
var (
	OIDSubjectKeyID          = asn1.ObjectIdentifier{2, 5, 29, 14}
	OIDKeyUsage              = asn1.ObjectIdentifier{2, 5, 29, 15}
	OIDSubjectAltName        = asn1.ObjectIdentifier{2, 5, 29, 17}
	OIDIssuerAltName         = asn1.ObjectIdentifier{2, 5, 29, 18}
	OIDBasicConstraints      = asn1.ObjectIdentifier{2, 5, 29, 19}
	OIDNameConstraints       = asn1.ObjectIdentifier{2, 5, 29, 30}
	OIDCRLDistributionPoints = asn1.ObjectIdentifier{2, 5, 29, 31}
	OIDCertificatePolicies   = asn1.ObjectIdentifier{2, 5, 29, 32}
	OIDPolicyMappings        = asn1.ObjectIdentifier{2, 5, 29, 33}
	OIDAuthorityKeyID        = asn1.ObjectIdentifier{2, 5, 29, 35}
	OIDPolicyConstraints     = asn1.ObjectIdentifier{2, 5, 29, 36}
	OIDExtKeyUsage           = asn1.ObjectIdentifier{2, 5, 29, 37}
	OIDFreshestCRL           = asn1.ObjectIdentifier{2, 5, 29, 46}
	OIDInhibitAnyPolicy      = asn1.ObjectIdentifier{2, 5, 29, 54}
	OIDAuthorityInfoAccess   = asn1.ObjectIdentifier{1, 3, 6, 1, 5, 5, 7, 1, 1}
	OIDProxyCertInfo         = asn1.ObjectIdentifier{1, 3, 6, 1, 5, 5, 7, 1, 14}
	OIDNetscapeCertType      = asn1.ObjectIdentifier{2, 16, 840, 1, 113730, 1, 1}

	// OIDAnyPolicy is the special anyPolicy certificate policy.
	OIDAnyPolicy = asn1.ObjectIdentifier{2, 5, 29, 32, 0}
)

// supportedExtensions are the certificate extensions the verifier processes.
var supportedExtensions = []asn1.ObjectIdentifier{
	OIDBasicConstraints,
	OIDKeyUsage,
	OIDExtKeyUsage,
	OIDSubjectAltName,
	OIDIssuerAltName,
	OIDSubjectKeyID,
	OIDAuthorityKeyID,
	OIDCertificatePolicies,
	OIDPolicyMappings,
	OIDPolicyConstraints,
	OIDInhibitAnyPolicy,
	OIDNameConstraints,
	OIDCRLDistributionPoints,
	OIDAuthorityInfoAccess,
	OIDProxyCertInfo,
	OIDNetscapeCertType,
}

// SupportedExtension reports whether a critical certificate extension with the
// given identifier is understood by the verifier.
func SupportedExtension(oid asn1.ObjectIdentifier) bool {
	for _, s := range supportedExtensions {
		if s.Equal(oid) {
			return true
		}
	}
	return false
}

// Extension is a single certificate or CRL extension.
type Extension struct {
	OID      asn1.ObjectIdentifier
	Critical bool
	Value    []byte
}

func extensionsFrom(in []pkix.Extension) []Extension {
	out := make([]Extension, len(in))
	for i, e := range in {
		out[i] = Extension{OID: e.Id, Critical: e.Critical, Value: e.Value}
	}
	return out
}

func findExtension(exts []Extension, oid asn1.ObjectIdentifier) (Extension, bool) {
	for _, e := range exts {
		if e.OID.Equal(oid) {
			return e, true
		}
	}
	return Extension{}, false
}

// BasicConstraints is the decoded basicConstraints extension.
//
// MaxPathLen is -1 when no path length constraint is present.
type BasicConstraints struct {
	IsCA       bool
	MaxPathLen int
}

// AuthorityKeyID is the decoded authorityKeyIdentifier extension.
type AuthorityKeyID struct {
	KeyID        []byte
	Issuer       []GeneralName
	SerialNumber *big.Int
}

func parseAuthorityKeyID(der []byte) (AuthorityKeyID, error) {
	var aki AuthorityKeyID
	elems, err := parseSequence(der)
	if err != nil {
		return aki, err
	}
	for _, e := range elems {
		switch {
		case isContext(e, 0):
			aki.KeyID = e.Bytes
		case isContext(e, 1):
			names, err := parseGeneralNames(e.Bytes)
			if err != nil {
				return aki, err
			}
			aki.Issuer = names
		case isContext(e, 2):
			serial, err := implicitInt(e.Bytes)
			if err != nil {
				return aki, err
			}
			aki.SerialNumber = serial
		default:
			return aki, fmt.Errorf("unexpected element tag %d", e.Tag)
		}
	}
	return aki, nil
}

// PolicyConstraints is the decoded policyConstraints extension.
// A value of -1 means the field is absent.
type PolicyConstraints struct {
	RequireExplicitPolicy int
	InhibitPolicyMapping  int
}

func parsePolicyConstraints(der []byte) (PolicyConstraints, error) {
	pc := PolicyConstraints{RequireExplicitPolicy: -1, InhibitPolicyMapping: -1}
	elems, err := parseSequence(der)
	if err != nil {
		return pc, err
	}
	if len(elems) == 0 {
		return pc, fmt.Errorf("empty policy constraints")
	}
	for _, e := range elems {
		v, err := implicitInt(e.Bytes)
		if err != nil {
			return pc, err
		}
		switch {
		case isContext(e, 0):
			pc.RequireExplicitPolicy = smallInt(v)
		case isContext(e, 1):
			pc.InhibitPolicyMapping = smallInt(v)
		default:
			return pc, fmt.Errorf("unexpected element tag %d", e.Tag)
		}
	}
	return pc, nil
}

// PolicyMapping maps an issuer domain policy to a subject domain policy.
type PolicyMapping struct {
	IssuerDomainPolicy  asn1.ObjectIdentifier
	SubjectDomainPolicy asn1.ObjectIdentifier
}

func parsePolicyMappings(der []byte) ([]PolicyMapping, error) {
	var out []PolicyMapping
	rest, err := asn1.Unmarshal(der, &out)
	if err != nil {
		return nil, err
	}
	if len(rest) > 0 {
		return nil, ErrTrailingData
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("empty policy mappings")
	}
	for _, m := range out {
		if m.IssuerDomainPolicy.Equal(OIDAnyPolicy) || m.SubjectDomainPolicy.Equal(OIDAnyPolicy) {
			return nil, fmt.Errorf("anyPolicy in policy mapping")
		}
	}
	return out, nil
}

type policyInformation struct {
	Policy     asn1.ObjectIdentifier
	Qualifiers asn1.RawValue `asn1:"optional"`
}

func parseCertificatePolicies(der []byte) ([]asn1.ObjectIdentifier, error) {
	var infos []policyInformation
	rest, err := asn1.Unmarshal(der, &infos)
	if err != nil {
		return nil, err
	}
	if len(rest) > 0 {
		return nil, ErrTrailingData
	}
	out := make([]asn1.ObjectIdentifier, 0, len(infos))
	for _, info := range infos {
		for _, seen := range out {
			if seen.Equal(info.Policy) {
				return nil, fmt.Errorf("duplicate policy %s", info.Policy)
			}
		}
		out = append(out, info.Policy)
	}
	return out, nil
}

// ProxyCertInfo is the decoded RFC 3820 proxyCertInfo extension.
// PathLen is -1 when unlimited.
type ProxyCertInfo struct {
	PathLen        int
	PolicyLanguage asn1.ObjectIdentifier
	Policy         []byte
}

func parseProxyCertInfo(der []byte) (ProxyCertInfo, error) {
	info := ProxyCertInfo{PathLen: -1}
	elems, err := parseSequence(der)
	if err != nil {
		return info, err
	}
	if len(elems) == 2 {
		var n *big.Int
		if _, err := asn1.Unmarshal(elems[0].FullBytes, &n); err != nil {
			return info, err
		}
		if n.Sign() < 0 {
			return info, fmt.Errorf("negative proxy path length")
		}
		info.PathLen = smallInt(n)
		elems = elems[1:]
	}
	if len(elems) != 1 {
		return info, fmt.Errorf("missing proxy policy")
	}
	var policy struct {
		Language asn1.ObjectIdentifier
		Policy   []byte `asn1:"optional"`
	}
	if _, err := asn1.Unmarshal(elems[0].FullBytes, &policy); err != nil {
		return info, err
	}
	info.PolicyLanguage = policy.Language
	info.Policy = policy.Policy
	return info, nil
}
