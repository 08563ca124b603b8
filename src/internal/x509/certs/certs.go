// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package x509certs

import (
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"

	"github.com/cloudflare/cfssl/crypto/pkcs7"

	x509cert "github.com/H0llyW00dzZ/x509-trust-verifier/src/x509/cert"
)

var (
	// ErrInvalidPEMBlock indicates that the provided data does not contain a valid PEM block.
	ErrInvalidPEMBlock = errors.New("x509certs: invalid PEM block")

	// ErrInvalidBlockType indicates that the PEM block type is neither a certificate, a CRL nor PKCS7.
	ErrInvalidBlockType = errors.New("x509certs: invalid block type")

	// ErrParseCertificate indicates a failure to parse the certificate from the provided data.
	ErrParseCertificate = errors.New("x509certs: failed to parse certificate")

	// ErrParsePKCS7 indicates a failure to parse PKCS7 formatted data.
	ErrParsePKCS7 = errors.New("x509certs: failed to parse PKCS7 data")

	// ErrNoCertificatesInPKCS indicates that no certificates were found in the PKCS7 data.
	ErrNoCertificatesInPKCS = errors.New("x509certs: no certificates found in PKCS7 data")

	// ErrParseCRL indicates a failure to parse a certificate revocation list.
	ErrParseCRL = errors.New("x509certs: failed to parse CRL")

	// ErrNoObjects indicates that data held neither certificates nor CRLs.
	ErrNoObjects = errors.New("x509certs: no certificates or CRLs found")
)

// PEM block types understood by [Codec].
const (
	BlockCertificate        = "CERTIFICATE"
	BlockTrustedCertificate = "TRUSTED CERTIFICATE"
	BlockCRL                = "X509 CRL"
	BlockPKCS7              = "PKCS7"
)

// Codec decodes and encodes [X.509] certificates and CRLs in PEM, DER and
// PKCS#7 form. A Codec holds no mutable state and is safe for concurrent use.
//
// [X.509]: https://en.wikipedia.org/wiki/X.509
type Codec struct {
	certBlockType string
	crlBlockType  string
}

// New creates a new Codec with default settings.
func New() *Codec {
	return &Codec{
		certBlockType: BlockCertificate,
		crlBlockType:  BlockCRL,
	}
}

// IsPEM checks if the data is in PEM format.
func (c *Codec) IsPEM(data []byte) bool {
	block, _ := pem.Decode(data)
	return block != nil
}

func (c *Codec) isCertBlock(t string) bool {
	return t == c.certBlockType || t == BlockTrustedCertificate
}

// pemBlocks splits data into its PEM blocks.
func pemBlocks(data []byte) []*pem.Block {
	var blocks []*pem.Block
	for len(data) > 0 {
		block, rest := pem.Decode(data)
		if block == nil {
			break
		}
		blocks = append(blocks, block)
		data = rest
	}
	return blocks
}

// parseDERCertificates parses concatenated DER certificates, falling back to
// a PKCS#7 SignedData bundle.
func parseDERCertificates(der []byte) ([]*x509.Certificate, error) {
	if certs, err := x509.ParseCertificates(der); err == nil {
		return certs, nil
	}

	// Attempt to parse as PKCS7 using Cloudflare's library
	p, err := pkcs7.ParsePKCS7(der)
	if err != nil {
		return nil, ErrParsePKCS7
	}
	if len(p.Content.SignedData.Certificates) == 0 {
		return nil, ErrNoCertificatesInPKCS
	}
	return p.Content.SignedData.Certificates, nil
}

func wrapAll(certs []*x509.Certificate) ([]*x509cert.Certificate, error) {
	out := make([]*x509cert.Certificate, 0, len(certs))
	for _, raw := range certs {
		cert, err := x509cert.New(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrParseCertificate, err)
		}
		out = append(out, cert)
	}
	return out, nil
}

// DecodeMultiple decodes one or more certificates from data. PEM input may
// mix certificate and PKCS7 blocks; CRL blocks are skipped.
func (c *Codec) DecodeMultiple(data []byte) ([]*x509cert.Certificate, error) {
	if !c.IsPEM(data) {
		certs, err := parseDERCertificates(data)
		if err != nil {
			return nil, err
		}
		return wrapAll(certs)
	}

	var certs []*x509.Certificate
	for _, block := range pemBlocks(data) {
		switch {
		case c.isCertBlock(block.Type):
			cert, err := x509.ParseCertificate(block.Bytes)
			if err != nil {
				return nil, ErrParseCertificate
			}
			certs = append(certs, cert)
		case block.Type == BlockPKCS7:
			bundle, err := parseDERCertificates(block.Bytes)
			if err != nil {
				return nil, err
			}
			certs = append(certs, bundle...)
		case block.Type == c.crlBlockType:
		default:
			return nil, ErrInvalidBlockType
		}
	}
	return wrapAll(certs)
}

// Decode decodes the first certificate from data.
func (c *Codec) Decode(data []byte) (*x509cert.Certificate, error) {
	if c.IsPEM(data) {
		block, _ := pem.Decode(data)
		switch {
		case c.isCertBlock(block.Type), block.Type == BlockPKCS7:
			data = block.Bytes
		default:
			return nil, ErrInvalidBlockType
		}
	}

	raw, err := x509.ParseCertificate(data)
	if err != nil {
		certs, perr := parseDERCertificates(data)
		if perr != nil {
			if errors.Is(perr, ErrParsePKCS7) {
				return nil, ErrParseCertificate
			}
			return nil, perr
		}
		raw = certs[0]
	}

	cert, err := x509cert.New(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrParseCertificate, err)
	}
	return cert, nil
}

// EncodePEM encodes a certificate to PEM format.
func (c *Codec) EncodePEM(cert *x509cert.Certificate) []byte {
	block := pem.Block{
		Type:  c.certBlockType,
		Bytes: cert.Raw(),
	}
	return pem.EncodeToMemory(&block)
}

// EncodeDER encodes a certificate to DER format.
func (c *Codec) EncodeDER(cert *x509cert.Certificate) []byte { return cert.Raw() }

// EncodeMultiplePEM encodes multiple certificates to PEM format.
func (c *Codec) EncodeMultiplePEM(certs []*x509cert.Certificate) []byte {
	var data []byte

	for _, cert := range certs {
		data = append(data, c.EncodePEM(cert)...)
	}

	return data
}

// EncodeMultipleDER encodes multiple certificates to concatenated DER.
func (c *Codec) EncodeMultipleDER(certs []*x509cert.Certificate) []byte {
	var data []byte

	for _, cert := range certs {
		data = append(data, c.EncodeDER(cert)...)
	}

	return data
}
