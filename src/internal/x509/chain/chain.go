// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package x509chain

import (
	"context"
	"errors"
	"fmt"
	"sync"

	x509certs "github.com/H0llyW00dzZ/x509-trust-verifier/src/internal/x509/certs"
	x509cert "github.com/H0llyW00dzZ/x509-trust-verifier/src/x509/cert"
	x509verify "github.com/H0llyW00dzZ/x509-trust-verifier/src/x509/verify"
)

// DefaultMaxDepth bounds [Resolver.Resolve].
const DefaultMaxDepth = 10

// ErrNoIssuer indicates that a downloaded object did not issue the certificate.
var ErrNoIssuer = errors.New("x509chain: downloaded certificate is not the issuer")

var _ x509verify.IssuerLookup = (*Resolver)(nil)

// Resolver downloads issuer certificates named by the [Authority Information
// Access] extension. It serves as the remote issuer lookup of an x509verify
// store; downloaded certificates are always untrusted.
//
// Downloads are cached per URL for the lifetime of the Resolver.
//
// Thread Safety: Safe for concurrent use.
//
// [Authority Information Access]: https://datatracker.ietf.org/doc/html/rfc5280#section-4.2.2.1
type Resolver struct {
	HTTPConfig *HTTPConfig
	// MaxDepth bounds the number of downloads in [Resolver.Resolve].
	MaxDepth int

	codec *x509certs.Codec

	mu    sync.RWMutex
	cache map[string][]*x509cert.Certificate
}

// NewResolver creates a Resolver.
//
// Parameters:
//   - version: Application version for the User-Agent header
//
// Returns:
//   - *Resolver: New resolver with default HTTP configuration
func NewResolver(version string) *Resolver {
	return &Resolver{
		HTTPConfig: NewHTTPConfig(version),
		MaxDepth:   DefaultMaxDepth,
		codec:      x509certs.New(),
		cache:      make(map[string][]*x509cert.Certificate),
	}
}

// fetch downloads and decodes the certificates at url. AIA responses are
// either a single DER certificate or a PKCS#7 bundle.
func (r *Resolver) fetch(ctx context.Context, url string) ([]*x509cert.Certificate, error) {
	r.mu.RLock()
	certs, ok := r.cache[url]
	r.mu.RUnlock()
	if ok {
		return certs, nil
	}

	data, err := r.HTTPConfig.Get(ctx, url)
	if err != nil {
		return nil, err
	}
	certs, err = r.codec.DecodeMultiple(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", url, err)
	}

	r.mu.Lock()
	r.cache[url] = certs
	r.mu.Unlock()
	return certs, nil
}

// LookupIssuers downloads the caIssuers URLs of cert and returns the
// certificates that could have issued it.
//
// Returns:
//   - []*x509cert.Certificate: Issuer candidates, possibly empty
//   - error: The last download error, only when no candidate was found
func (r *Resolver) LookupIssuers(ctx context.Context, cert *x509cert.Certificate) ([]*x509cert.Certificate, error) {
	var (
		out     []*x509cert.Certificate
		lastErr error
	)
	for _, url := range cert.X509().IssuingCertificateURL {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		certs, err := r.fetch(ctx, url)
		if err != nil {
			lastErr = err
			continue
		}
		for _, c := range certs {
			if cert.MatchesIssuer(c) {
				out = append(out, c)
			}
		}
	}
	if len(out) == 0 && lastErr != nil {
		return nil, lastErr
	}
	return out, nil
}

// Resolve follows caIssuers links from leaf until a self-issued certificate,
// a certificate without links or MaxDepth downloads.
//
// Returns:
//   - []*x509cert.Certificate: The chain found, leaf first
//   - error: Error if a download fails or returns a non-issuer
func (r *Resolver) Resolve(ctx context.Context, leaf *x509cert.Certificate) ([]*x509cert.Certificate, error) {
	chain := []*x509cert.Certificate{leaf}
	maxDepth := r.MaxDepth
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}

	for range maxDepth {
		last := chain[len(chain)-1]
		if last.IsSelfIssued() || len(last.X509().IssuingCertificateURL) == 0 {
			break
		}
		issuers, err := r.LookupIssuers(ctx, last)
		if err != nil {
			return chain, err
		}
		if len(issuers) == 0 {
			return chain, fmt.Errorf("%w: %s", ErrNoIssuer, last)
		}
		chain = append(chain, issuers[0])
	}
	return chain, nil
}

// FilterIntermediates returns the certificates strictly between the leaf
// and the last certificate of chain, or nil if there are none.
func FilterIntermediates(chain []*x509cert.Certificate) []*x509cert.Certificate {
	if len(chain) <= 2 {
		return nil // No intermediates if 2 or fewer certs
	}
	return chain[1 : len(chain)-1] // Skip the first (leaf) and last (root)
}
