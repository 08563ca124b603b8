// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package x509cert

import (
	"encoding/asn1"
	"fmt"
	"math/big"
	"net"
)

// GeneralNameKind is the CHOICE tag of a GeneralName.
type GeneralNameKind int

// GeneralName kinds as defined by RFC 5280 section 4.2.1.6.
const (
	OtherName GeneralNameKind = iota
	RFC822Name
	DNSName
	X400Address
	DirectoryName
	EDIPartyName
	URIName
	IPAddressName
	RegisteredID
)

var generalNameKinds = [...]string{
	"othername", "email", "DNS", "X400Name", "DirName", "EdiPartyName", "URI", "IP Address", "Registered ID",
}

// String returns the conventional label for the kind.
func (k GeneralNameKind) String() string {
	if k < 0 || int(k) >= len(generalNameKinds) {
		return fmt.Sprintf("GeneralName(%d)", int(k))
	}
	return generalNameKinds[k]
}

// GeneralName is a single GeneralName value. Value holds the content octets:
// the IA5String bytes for rfc822, dNS and URI names, the address (or address
// and mask for constraints) for iPAddress and the Name DER for directoryName.
type GeneralName struct {
	Kind  GeneralNameKind
	Value []byte
}

// Text returns the value of a string-typed name.
func (g GeneralName) Text() string { return string(g.Value) }

// Directory decodes a directoryName.
func (g GeneralName) Directory() (Name, error) {
	if g.Kind != DirectoryName {
		return Name{}, fmt.Errorf("%w: %s is not a directory name", ErrInvalidName, g.Kind)
	}
	return ParseName(g.Value)
}

// IP returns the address of an iPAddress name.
func (g GeneralName) IP() net.IP { return net.IP(g.Value) }

// String renders the name as "kind:value".
func (g GeneralName) String() string {
	switch g.Kind {
	case RFC822Name, DNSName, URIName:
		return g.Kind.String() + ":" + g.Text()
	case IPAddressName:
		switch len(g.Value) {
		case net.IPv4len, net.IPv6len:
			return g.Kind.String() + ":" + g.IP().String()
		case 2 * net.IPv4len, 2 * net.IPv6len:
			half := len(g.Value) / 2
			n := net.IPNet{IP: g.Value[:half], Mask: g.Value[half:]}
			return g.Kind.String() + ":" + n.String()
		}
	case DirectoryName:
		if n, err := g.Directory(); err == nil {
			return g.Kind.String() + ":" + n.String()
		}
	}
	return g.Kind.String() + ":<unsupported>"
}

func parseGeneralName(rv asn1.RawValue) (GeneralName, error) {
	if rv.Class != asn1.ClassContextSpecific || rv.Tag > int(RegisteredID) {
		return GeneralName{}, fmt.Errorf("invalid GeneralName tag class %d tag %d", rv.Class, rv.Tag)
	}
	return GeneralName{Kind: GeneralNameKind(rv.Tag), Value: rv.Bytes}, nil
}

// parseGeneralNames decodes the content octets of a GeneralNames SEQUENCE.
func parseGeneralNames(content []byte) ([]GeneralName, error) {
	elems, err := splitElements(content)
	if err != nil {
		return nil, err
	}
	out := make([]GeneralName, 0, len(elems))
	for _, e := range elems {
		gn, err := parseGeneralName(e)
		if err != nil {
			return nil, err
		}
		out = append(out, gn)
	}
	return out, nil
}

// GeneralSubtree is a single permitted or excluded subtree.
// Maximum is -1 when absent.
type GeneralSubtree struct {
	Base    GeneralName
	Minimum int
	Maximum int
}

// NameConstraints is the decoded nameConstraints extension.
type NameConstraints struct {
	Permitted []GeneralSubtree
	Excluded  []GeneralSubtree
}

func parseNameConstraints(der []byte) (*NameConstraints, error) {
	elems, err := parseSequence(der)
	if err != nil {
		return nil, err
	}
	nc := &NameConstraints{}
	for _, e := range elems {
		subtrees, err := parseSubtrees(e.Bytes)
		if err != nil {
			return nil, err
		}
		switch {
		case isContext(e, 0):
			nc.Permitted = subtrees
		case isContext(e, 1):
			nc.Excluded = subtrees
		default:
			return nil, fmt.Errorf("unexpected element tag %d", e.Tag)
		}
	}
	return nc, nil
}

func parseSubtrees(content []byte) ([]GeneralSubtree, error) {
	elems, err := splitElements(content)
	if err != nil {
		return nil, err
	}
	out := make([]GeneralSubtree, 0, len(elems))
	for _, e := range elems {
		if e.Tag != asn1.TagSequence || !e.IsCompound {
			return nil, fmt.Errorf("subtree is not a SEQUENCE")
		}
		fields, err := splitElements(e.Bytes)
		if err != nil {
			return nil, err
		}
		if len(fields) == 0 {
			return nil, fmt.Errorf("empty subtree")
		}
		base, err := parseGeneralName(fields[0])
		if err != nil {
			return nil, err
		}
		st := GeneralSubtree{Base: base, Maximum: -1}
		for _, f := range fields[1:] {
			var v *big.Int
			if v, err = implicitInt(f.Bytes); err != nil {
				return nil, err
			}
			switch {
			case isContext(f, 0):
				st.Minimum = smallInt(v)
			case isContext(f, 1):
				st.Maximum = smallInt(v)
			default:
				return nil, fmt.Errorf("unexpected subtree field tag %d", f.Tag)
			}
		}
		out = append(out, st)
	}
	return out, nil
}
