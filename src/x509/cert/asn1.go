// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package x509cert

import (
	"encoding/asn1"
	"fmt"
	"math/big"
)

// parseSequence decodes a DER SEQUENCE and returns its elements undecoded.
func parseSequence(der []byte) ([]asn1.RawValue, error) {
	var seq asn1.RawValue
	rest, err := asn1.Unmarshal(der, &seq)
	if err != nil {
		return nil, err
	}
	if len(rest) > 0 {
		return nil, ErrTrailingData
	}
	if seq.Class != asn1.ClassUniversal || seq.Tag != asn1.TagSequence || !seq.IsCompound {
		return nil, fmt.Errorf("expected SEQUENCE, got class %d tag %d", seq.Class, seq.Tag)
	}
	return splitElements(seq.Bytes)
}

// splitElements splits concatenated DER TLVs.
func splitElements(b []byte) ([]asn1.RawValue, error) {
	var out []asn1.RawValue
	for len(b) > 0 {
		var rv asn1.RawValue
		rest, err := asn1.Unmarshal(b, &rv)
		if err != nil {
			return nil, err
		}
		out = append(out, rv)
		b = rest
	}
	return out, nil
}

// implicitInt decodes the content octets of an implicitly tagged non-negative INTEGER.
func implicitInt(content []byte) (*big.Int, error) {
	if len(content) == 0 {
		return nil, fmt.Errorf("empty integer")
	}
	if content[0]&0x80 != 0 {
		return nil, fmt.Errorf("negative integer")
	}
	return new(big.Int).SetBytes(content), nil
}

// implicitBool decodes the content octets of an implicitly tagged BOOLEAN.
func implicitBool(content []byte) (bool, error) {
	if len(content) != 1 {
		return false, fmt.Errorf("invalid boolean length %d", len(content))
	}
	return content[0] != 0, nil
}

// smallInt converts v to an int, saturating at a large bound.
func smallInt(v *big.Int) int {
	const limit = 1 << 30
	if !v.IsInt64() || v.Int64() > limit {
		return limit
	}
	return int(v.Int64())
}

func isContext(rv asn1.RawValue, tag int) bool {
	return rv.Class == asn1.ClassContextSpecific && rv.Tag == tag
}

// parseSequenceContent returns the content octets of a DER SEQUENCE.
func parseSequenceContent(der []byte) ([]byte, error) {
	var seq asn1.RawValue
	rest, err := asn1.Unmarshal(der, &seq)
	if err != nil {
		return nil, err
	}
	if len(rest) > 0 {
		return nil, ErrTrailingData
	}
	if seq.Class != asn1.ClassUniversal || seq.Tag != asn1.TagSequence {
		return nil, fmt.Errorf("expected SEQUENCE, got class %d tag %d", seq.Class, seq.Tag)
	}
	return seq.Bytes, nil
}
