// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package x509revocation

import (
	"context"
	"errors"
	"sync"

	x509cert "github.com/H0llyW00dzZ/x509-trust-verifier/src/x509/cert"
	x509verify "github.com/H0llyW00dzZ/x509-trust-verifier/src/x509/verify"
)

var _ x509verify.CRLSupplier = (*Static)(nil)

// Static supplies CRLs from a fixed set, indexed by issuer name. It returns
// every CRL issued under the certificate's issuer name; indirect CRLs are
// returned for every certificate.
//
// Thread Safety: Safe for concurrent use.
type Static struct {
	mu       sync.RWMutex
	byIssuer map[string][]*x509cert.RevocationList
	indirect []*x509cert.RevocationList
}

// NewStatic creates a Static supplier holding crls.
func NewStatic(crls ...*x509cert.RevocationList) *Static {
	s := &Static{byIssuer: make(map[string][]*x509cert.RevocationList)}
	for _, crl := range crls {
		s.Add(crl)
	}
	return s
}

// Add adds a CRL. Nil CRLs are ignored.
func (s *Static) Add(crl *x509cert.RevocationList) {
	if crl == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if idp, err := crl.IssuingDistributionPoint(); err == nil && idp != nil && idp.IndirectCRL {
		s.indirect = append(s.indirect, crl)
		return
	}
	key := crl.Issuer().Key()
	s.byIssuer[key] = append(s.byIssuer[key], crl)
}

// Len returns the number of CRLs held.
func (s *Static) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := len(s.indirect)
	for _, l := range s.byIssuer {
		n += len(l)
	}
	return n
}

// LookupCRLs implements the CRL supplier of an x509verify store.
func (s *Static) LookupCRLs(ctx context.Context, cert, issuer *x509cert.Certificate) ([]*x509cert.RevocationList, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	direct := s.byIssuer[cert.Issuer().Key()]
	out := make([]*x509cert.RevocationList, 0, len(direct)+len(s.indirect))
	out = append(out, direct...)
	return append(out, s.indirect...), nil
}

// Chain tries each supplier in order and returns the CRLs of the first one
// that yields any. Errors are only reported when no supplier yields a CRL.
type Chain []x509verify.CRLSupplier

var _ x509verify.CRLSupplier = Chain(nil)

// LookupCRLs implements the CRL supplier of an x509verify store.
func (c Chain) LookupCRLs(ctx context.Context, cert, issuer *x509cert.Certificate) ([]*x509cert.RevocationList, error) {
	var errs []error
	for _, s := range c {
		crls, err := s.LookupCRLs(ctx, cert, issuer)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if len(crls) > 0 {
			return crls, nil
		}
	}
	return nil, errors.Join(errs...)
}
