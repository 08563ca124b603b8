// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package x509certs

import (
	"encoding/pem"
	"fmt"

	x509cert "github.com/H0llyW00dzZ/x509-trust-verifier/src/x509/cert"
)

// Bundle is the set of objects decoded from one input.
type Bundle struct {
	Certificates []*x509cert.Certificate
	CRLs         []*x509cert.RevocationList
	// Skipped lists inputs that held nothing decodable (directory loads only).
	Skipped []string
}

// Empty reports whether the bundle holds no certificates and no CRLs.
func (b *Bundle) Empty() bool { return len(b.Certificates) == 0 && len(b.CRLs) == 0 }

func (b *Bundle) merge(o *Bundle) {
	b.Certificates = append(b.Certificates, o.Certificates...)
	b.CRLs = append(b.CRLs, o.CRLs...)
	b.Skipped = append(b.Skipped, o.Skipped...)
}

// DecodeCRL decodes a single PEM or DER encoded CRL.
func (c *Codec) DecodeCRL(data []byte) (*x509cert.RevocationList, error) {
	if c.IsPEM(data) {
		block, _ := pem.Decode(data)
		if block.Type != c.crlBlockType {
			return nil, ErrInvalidBlockType
		}
		data = block.Bytes
	}
	crl, err := x509cert.ParseRevocationList(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrParseCRL, err)
	}
	return crl, nil
}

// DecodeCRLs decodes every CRL in data. PEM input may carry other blocks,
// which are skipped.
func (c *Codec) DecodeCRLs(data []byte) ([]*x509cert.RevocationList, error) {
	if !c.IsPEM(data) {
		crl, err := c.DecodeCRL(data)
		if err != nil {
			return nil, err
		}
		return []*x509cert.RevocationList{crl}, nil
	}

	var out []*x509cert.RevocationList
	for _, block := range pemBlocks(data) {
		if block.Type != c.crlBlockType {
			continue
		}
		crl, err := x509cert.ParseRevocationList(block.Bytes)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrParseCRL, err)
		}
		out = append(out, crl)
	}
	return out, nil
}

// DecodeBundle decodes every certificate and CRL in data.
//
// PEM input may mix certificate, PKCS7 and CRL blocks; any other block type
// fails with [ErrInvalidBlockType]. DER input is tried as certificates
// (or PKCS7) first and as a single CRL second.
//
// Returns [ErrNoObjects] when nothing was decoded.
func (c *Codec) DecodeBundle(data []byte) (*Bundle, error) {
	b := &Bundle{}

	if !c.IsPEM(data) {
		if certs, err := c.DecodeMultiple(data); err == nil {
			b.Certificates = certs
			return b, nil
		}
		crl, err := c.DecodeCRL(data)
		if err != nil {
			return nil, ErrNoObjects
		}
		b.CRLs = append(b.CRLs, crl)
		return b, nil
	}

	certs, err := c.DecodeMultiple(data)
	if err != nil {
		return nil, err
	}
	crls, err := c.DecodeCRLs(data)
	if err != nil {
		return nil, err
	}
	b.Certificates, b.CRLs = certs, crls
	if b.Empty() {
		return nil, ErrNoObjects
	}
	return b, nil
}

// EncodeCRLPEM encodes a CRL to PEM format.
func (c *Codec) EncodeCRLPEM(crl *x509cert.RevocationList) []byte {
	return pem.EncodeToMemory(&pem.Block{Type: c.crlBlockType, Bytes: crl.Raw()})
}
