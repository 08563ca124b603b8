// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package x509revocation

import (
	"context"
	"errors"
	"fmt"

	x509certs "github.com/H0llyW00dzZ/x509-trust-verifier/src/internal/x509/certs"
	x509chain "github.com/H0llyW00dzZ/x509-trust-verifier/src/internal/x509/chain"
	x509cert "github.com/H0llyW00dzZ/x509-trust-verifier/src/x509/cert"
	x509verify "github.com/H0llyW00dzZ/x509-trust-verifier/src/x509/verify"
)

// ErrNoCRL indicates that none of a certificate's distribution points
// yielded a CRL.
var ErrNoCRL = errors.New("x509revocation: no CRL could be downloaded")

var _ x509verify.CRLSupplier = (*Fetcher)(nil)

// Fetcher downloads CRLs from the HTTP distribution points named in a
// certificate and caches them in a [Cache].
//
// Thread Safety: Safe for concurrent use.
type Fetcher struct {
	http  *x509chain.HTTPConfig
	cache *Cache
	codec *x509certs.Codec
}

// NewFetcher creates a Fetcher. A nil cache creates one with
// [DefaultCacheConfig].
func NewFetcher(httpConfig *x509chain.HTTPConfig, cache *Cache) *Fetcher {
	if cache == nil {
		cache = NewCache(CacheConfig{})
	}
	return &Fetcher{http: httpConfig, cache: cache, codec: x509certs.New()}
}

// Cache returns the CRL cache.
func (f *Fetcher) Cache() *Cache { return f.cache }

// LookupCRLs returns the CRLs published at the HTTP distribution points of
// cert. Non-HTTP distribution points are ignored. The verification engine
// decides which of the returned CRLs apply and validates them.
//
// Returns:
//   - []*x509cert.RevocationList: The CRLs downloaded or served from cache
//   - error: [ErrNoCRL] wrapping the last failure when the certificate names
//     HTTP distribution points and none of them could be read
func (f *Fetcher) LookupCRLs(ctx context.Context, cert, issuer *x509cert.Certificate) ([]*x509cert.RevocationList, error) {
	var (
		out     []*x509cert.RevocationList
		lastErr error
	)
	for _, url := range cert.X509().CRLDistributionPoints {
		if x509chain.CheckURL(url) != nil {
			continue
		}
		if crl, ok := f.cache.Get(url); ok {
			out = append(out, crl)
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		data, err := f.http.Get(ctx, url)
		if err != nil {
			lastErr = err
			continue
		}
		crl, err := f.codec.DecodeCRL(data)
		if err != nil {
			lastErr = fmt.Errorf("%s: %w", url, err)
			continue
		}
		f.cache.Put(url, crl)
		out = append(out, crl)
	}
	if len(out) == 0 && lastErr != nil {
		return nil, fmt.Errorf("%w: %w", ErrNoCRL, lastErr)
	}
	return out, nil
}
