// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package x509cert

import (
	"bytes"
	"crypto/sha256"
	"crypto/x509/pkix"
	"encoding/asn1"
	"encoding/hex"
	"fmt"
	"slices"
	"strings"

	"golang.org/x/text/cases"
)

// Well-known attribute types.
var (
	OIDCommonName   = asn1.ObjectIdentifier{2, 5, 4, 3}
	OIDEmailAddress = asn1.ObjectIdentifier{1, 2, 840, 113549, 1, 9, 1}
)

// Name is an ordered X.501 distinguished name.
//
// Two names are equal when they hold the same RDNs in the same order and each
// RDN holds the same set of attributes. String values are compared after case
// folding and whitespace collapsing, binary values byte for byte.
type Name struct {
	raw   []byte
	rdns  pkix.RDNSequence
	canon []string
}

// ParseName decodes a DER encoded Name.
//
// Parameters:
//   - der: The DER encoding of an RDNSequence
//
// Returns:
//   - Name: The decoded name
//   - error: [ErrInvalidName] wrapped with the decoder failure
func ParseName(der []byte) (Name, error) {
	var rdns pkix.RDNSequence
	rest, err := asn1.Unmarshal(der, &rdns)
	if err != nil {
		return Name{}, fmt.Errorf("%w: %w", ErrInvalidName, err)
	}
	if len(rest) > 0 {
		return Name{}, fmt.Errorf("%w: %w", ErrInvalidName, ErrTrailingData)
	}
	return newName(bytes.Clone(der), rdns), nil
}

// NameFromPKIX builds a Name from a [pkix.Name] in its canonical RDN order.
func NameFromPKIX(n pkix.Name) (Name, error) {
	der, err := asn1.Marshal(n.ToRDNSequence())
	if err != nil {
		return Name{}, fmt.Errorf("%w: %w", ErrInvalidName, err)
	}
	return ParseName(der)
}

func newName(raw []byte, rdns pkix.RDNSequence) Name {
	canon := make([]string, len(rdns))
	for i, rdn := range rdns {
		attrs := make([]string, len(rdn))
		for j, atv := range rdn {
			attrs[j] = atv.Type.String() + "=" + canonicalValue(atv.Value)
		}
		slices.Sort(attrs)
		canon[i] = strings.Join(attrs, "+")
	}
	return Name{raw: raw, rdns: rdns, canon: canon}
}

func canonicalValue(v any) string {
	switch val := v.(type) {
	case string:
		return cases.Fold().String(strings.Join(strings.Fields(val), " "))
	case []byte:
		return "#" + hex.EncodeToString(val)
	default:
		return fmt.Sprintf("%T:%v", v, v)
	}
}

// Raw returns the DER encoding the name was parsed from.
func (n Name) Raw() []byte { return n.raw }

// RDNs returns the relative distinguished names in encoding order.
func (n Name) RDNs() pkix.RDNSequence { return n.rdns }

// Len returns the number of RDNs.
func (n Name) Len() int { return len(n.rdns) }

// IsEmpty reports whether the name holds no RDNs.
func (n Name) IsEmpty() bool { return len(n.rdns) == 0 }

// Equal reports attribute-wise equality.
func (n Name) Equal(o Name) bool { return slices.Equal(n.canon, o.canon) }

// HasPrefix reports whether prefix names the same leading RDNs as n.
// It is the subtree test used by directoryName constraints.
func (n Name) HasPrefix(prefix Name) bool {
	if len(prefix.canon) > len(n.canon) {
		return false
	}
	return slices.Equal(n.canon[:len(prefix.canon)], prefix.canon)
}

// Key returns the index key for the name: a hex SHA-256 of its canonical form.
func (n Name) Key() string {
	sum := sha256.Sum256([]byte(strings.Join(n.canon, "/")))
	return hex.EncodeToString(sum[:])
}

// Attributes returns every attribute value of the given type in encoding order.
func (n Name) Attributes(oid asn1.ObjectIdentifier) []string {
	var out []string
	for _, rdn := range n.rdns {
		for _, atv := range rdn {
			if atv.Type.Equal(oid) {
				out = append(out, fmt.Sprint(atv.Value))
			}
		}
	}
	return out
}

// CommonName returns the last commonName attribute, or "".
func (n Name) CommonName() string {
	cns := n.Attributes(OIDCommonName)
	if len(cns) == 0 {
		return ""
	}
	return cns[len(cns)-1]
}

// EmailAddresses returns the legacy emailAddress attributes.
func (n Name) EmailAddresses() []string { return n.Attributes(OIDEmailAddress) }

// String renders the name in RFC 2253 form.
func (n Name) String() string { return n.rdns.String() }
