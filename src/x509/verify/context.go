// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package x509verify

import (
	"context"
	"encoding/asn1"
	"slices"
	"time"

	x509cert "github.com/H0llyW00dzZ/x509-trust-verifier/src/x509/cert"
)

// Result is the outcome of one verification.
type Result struct {
	// Code is OK on success, otherwise the first failure that was not overridden.
	Code Code
	// Depth is the chain index of the failing certificate, or -1.
	Depth int
	// Cert is the failing certificate, or nil.
	Cert *x509cert.Certificate
	// Chain is the chain built, leaf first. On failure it may be partial.
	Chain []*x509cert.Certificate
	// Policies is the valid policy set, reported with NotifyPolicy.
	Policies []asn1.ObjectIdentifier
	// Overridden lists failures accepted by the verify callback.
	Overridden []Failure
	// Cause is the collaborator or decoding error behind Code, if any.
	Cause error
}

// Valid reports whether verification succeeded.
func (r *Result) Valid() bool { return r.Code == OK }

// Err returns the failure as a [*VerifyError], or nil on success.
func (r *Result) Err() error {
	if r.Code == OK {
		return nil
	}
	e := &VerifyError{Code: r.Code, Depth: r.Depth, Err: r.Cause}
	if r.Cert != nil {
		e.Subject = r.Cert.Subject().String()
	}
	return e
}

// StoreContext is a single verification of a leaf certificate against a
// [Store]. It must not be shared between goroutines.
type StoreContext struct {
	snap      *snapshot
	leaf      *x509cert.Certificate
	untrusted []*x509cert.Certificate

	chain      []*x509cert.Certificate
	anchored   bool
	overridden []Failure
	stop       *Failure
	policies   []asn1.ObjectIdentifier
}

// NewContext snapshots the store and prepares a verification of leaf with an
// optional pool of untrusted intermediates.
func (s *Store) NewContext(leaf *x509cert.Certificate, untrusted ...*x509cert.Certificate) *StoreContext {
	return &StoreContext{
		snap:      s.snapshot(),
		leaf:      leaf,
		untrusted: slices.DeleteFunc(slices.Clone(untrusted), func(c *x509cert.Certificate) bool { return c == nil }),
	}
}

// Verify is shorthand for NewContext followed by [StoreContext.Verify].
func (s *Store) Verify(ctx context.Context, leaf *x509cert.Certificate, untrusted ...*x509cert.Certificate) *Result {
	return s.NewContext(leaf, untrusted...).Verify(ctx)
}

// Verify builds the chain and runs every check. It always returns a Result.
//
// Parameters:
//   - ctx: Passed to collaborators (CRL supplier, issuer lookup, OCSP
//     responder); the engine itself does not block
//
// Returns:
//   - *Result: The verification outcome
//
// Thread Safety: a StoreContext is single use and not safe for concurrent
// calls; create one context per verification.
func (c *StoreContext) Verify(ctx context.Context) *Result {
	start := time.Now()
	res := c.verify(ctx)
	if obs := c.snap.observer; obs != nil {
		obs.ObserveVerification(res, time.Since(start))
	}
	return res
}

func (c *StoreContext) verify(ctx context.Context) *Result {
	c.chain, c.anchored, c.overridden, c.stop, c.policies = nil, false, nil, nil, nil
	if c.leaf == nil {
		return &Result{Code: InvalidCall, Depth: -1, Cause: invalidCall("nil leaf certificate").Err}
	}

	if c.build(ctx) {
		newEngine(c).run(ctx)
	}
	if c.stop == nil && c.snap.appCheck != nil {
		if err := c.snap.appCheck(slices.Clone(c.chain)); err != nil {
			c.fail(ApplicationVerification, 0, err)
		}
	}

	res := &Result{
		Code:       OK,
		Depth:      -1,
		Chain:      c.chain,
		Overridden: c.overridden,
	}
	if c.stop != nil {
		res.Code = c.stop.Code
		res.Depth = c.stop.Depth
		res.Cert = c.stop.Cert
		res.Cause = c.stop.Err
		return res
	}
	if c.snap.flags.Has(NotifyPolicy) {
		res.Policies = c.policies
	}
	return res
}

// fail records a failure and reports whether verification must stop. The
// verify callback may override it.
func (c *StoreContext) fail(code Code, depth int, cause error) bool {
	f := Failure{Code: code, Depth: depth, Err: cause}
	if depth >= 0 && depth < len(c.chain) {
		f.Cert = c.chain[depth]
	}
	if cb := c.snap.callback; cb != nil && cb(f, slices.Clone(c.chain)) {
		c.overridden = append(c.overridden, f)
		return false
	}
	c.stop = &f
	return true
}
