// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package x509verify

import (
	"context"
	"fmt"

	x509cert "github.com/H0llyW00dzZ/x509-trust-verifier/src/x509/cert"
)

// build constructs the chain from the leaf to a trust anchor. It reports
// whether the per-certificate checks should run.
func (c *StoreContext) build(ctx context.Context) bool {
	sn := c.snap
	c.chain = []*x509cert.Certificate{c.leaf}
	remoteTried := false

	for {
		cur := c.chain[len(c.chain)-1]
		depth := len(c.chain) - 1
		_, trusted := sn.trusted(cur)
		selfIssued := cur.IsSelfIssued()

		if trusted && (selfIssued || sn.flags.Has(PartialChain)) {
			c.anchored = true
			return true
		}

		if selfIssued {
			// Only a trusted certificate for the same name and key can
			// anchor an untrusted self-issued certificate.
			if issuer := c.pick(c.trustedIssuers(cur)); issuer != nil {
				c.chain = append(c.chain, issuer)
				continue
			}
			code := SelfSignedCertInChain
			if depth == 0 {
				code = DepthZeroSelfSignedCert
			}
			return !c.fail(code, depth, nil)
		}

		if sn.depth >= 0 && len(c.chain) >= sn.depth+2 {
			return !c.fail(CertChainTooLong, depth, nil)
		}

		issuer, err := c.findIssuer(ctx, cur, &remoteTried)
		if err != nil {
			return !c.fail(StoreLookup, depth, err)
		}
		if issuer == nil {
			code := UnableToGetIssuerCertLocally
			if remoteTried || trusted {
				code = UnableToGetIssuerCert
			}
			return !c.fail(code, depth, nil)
		}
		c.chain = append(c.chain, issuer)
	}
}

// findIssuer searches the trusted set and the untrusted pool in the order
// selected by TrustedFirst, then the remote issuer lookup.
func (c *StoreContext) findIssuer(ctx context.Context, cur *x509cert.Certificate, remoteTried *bool) (*x509cert.Certificate, error) {
	first, second := c.trustedIssuers, c.untrustedIssuers
	if !c.snap.flags.Has(TrustedFirst) {
		first, second = second, first
	}
	if issuer := c.pick(first(cur)); issuer != nil {
		return issuer, nil
	}
	if issuer := c.pick(second(cur)); issuer != nil {
		return issuer, nil
	}

	lookup := c.snap.issuerLookup
	if lookup == nil {
		return nil, nil
	}
	*remoteTried = true
	fetched, err := lookup.LookupIssuers(ctx, cur)
	if err != nil {
		return nil, fmt.Errorf("issuer lookup: %w", err)
	}
	for _, f := range fetched {
		if f != nil {
			c.untrusted = append(c.untrusted, f)
		}
	}
	return c.pick(c.untrustedIssuers(cur)), nil
}

func (c *StoreContext) trustedIssuers(cur *x509cert.Certificate) []*x509cert.Certificate {
	return c.filterIssuers(cur, c.snap.trustedCandidates(cur.Issuer()))
}

func (c *StoreContext) untrustedIssuers(cur *x509cert.Certificate) []*x509cert.Certificate {
	return c.filterIssuers(cur, c.untrusted)
}

// filterIssuers keeps the candidates that may have issued cur and are not
// already part of the chain.
func (c *StoreContext) filterIssuers(cur *x509cert.Certificate, candidates []*x509cert.Certificate) []*x509cert.Certificate {
	var out []*x509cert.Certificate
	for _, cand := range candidates {
		if cur.MatchesIssuer(cand) && !c.inChain(cand) {
			out = append(out, cand)
		}
	}
	return out
}

func (c *StoreContext) inChain(cert *x509cert.Certificate) bool {
	for _, x := range c.chain {
		if x.Equal(cert) {
			return true
		}
	}
	return false
}

// pick returns the first candidate valid at the verification time, or the
// first candidate when none is.
func (c *StoreContext) pick(candidates []*x509cert.Certificate) *x509cert.Certificate {
	if len(candidates) == 0 {
		return nil
	}
	now := c.snap.now
	for _, cand := range candidates {
		if !now.Before(cand.NotBefore()) && !now.After(cand.NotAfter()) {
			return cand
		}
	}
	return candidates[0]
}
