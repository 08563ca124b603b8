// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package x509revocation

import (
	"context"
	"crypto"
	"errors"
	"fmt"

	"golang.org/x/crypto/ocsp"

	x509chain "github.com/H0llyW00dzZ/x509-trust-verifier/src/internal/x509/chain"
	x509cert "github.com/H0llyW00dzZ/x509-trust-verifier/src/x509/cert"
	x509verify "github.com/H0llyW00dzZ/x509-trust-verifier/src/x509/verify"
)

// ErrOCSPRequest indicates that an OCSP request could not be built.
var ErrOCSPRequest = errors.New("x509revocation: failed to create OCSP request")

var _ x509verify.OCSPResponder = (*OCSPClient)(nil)

// OCSPClient queries OCSP responders over HTTP POST ([RFC 6960] Appendix A).
// Responses are returned undecoded; the verification engine checks the
// signature, status and validity window.
//
// [RFC 6960]: https://datatracker.ietf.org/doc/html/rfc6960#appendix-A
type OCSPClient struct {
	http *x509chain.HTTPConfig
	// Responder overrides the URL taken from the certificate's AIA extension.
	Responder string
	// Hash is the CertID hash algorithm; zero means SHA-1, which every
	// responder supports.
	Hash crypto.Hash
}

// NewOCSPClient creates an OCSP client.
func NewOCSPClient(httpConfig *x509chain.HTTPConfig) *OCSPClient {
	return &OCSPClient{http: httpConfig}
}

// responderURL picks the override or the first HTTP OCSP URL of cert.
func (o *OCSPClient) responderURL(cert *x509cert.Certificate) string {
	if o.Responder != "" {
		return o.Responder
	}
	for _, u := range cert.X509().OCSPServer {
		if x509chain.CheckURL(u) == nil {
			return u
		}
	}
	return ""
}

// FetchOCSP sends a request for cert to its responder.
//
// Returns:
//   - []byte: The DER encoded response, or nil when cert names no responder
//   - error: Error if the request cannot be built or the exchange fails
func (o *OCSPClient) FetchOCSP(ctx context.Context, cert, issuer *x509cert.Certificate) ([]byte, error) {
	url := o.responderURL(cert)
	if url == "" {
		return nil, nil
	}

	hash := o.Hash
	if hash == 0 {
		hash = crypto.SHA1
	}
	req, err := ocsp.CreateRequest(cert.X509(), issuer.X509(), &ocsp.RequestOptions{Hash: hash})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrOCSPRequest, err)
	}

	resp, err := o.http.Post(ctx, url, "application/ocsp-request", "application/ocsp-response", req)
	if err != nil {
		return nil, fmt.Errorf("OCSP request to %s failed: %w", url, err)
	}
	return resp, nil
}
