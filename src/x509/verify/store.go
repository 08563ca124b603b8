// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package x509verify

import (
	"encoding/asn1"
	"net"
	"slices"
	"sync"
	"time"

	"github.com/H0llyW00dzZ/x509-trust-verifier/src/config"
	x509cert "github.com/H0llyW00dzZ/x509-trust-verifier/src/x509/cert"
)

// DefaultDepth is the default maximum number of intermediate certificates.
const DefaultDepth = config.DefaultDepth

// DefaultSecurityLevel is the default minimum key and digest strength.
const DefaultSecurityLevel = config.DefaultSecurityLevel

// TrustSettings restrict the trust kinds an anchor is accepted for.
// An empty Trusted list accepts every kind not listed in Rejected.
type TrustSettings struct {
	Trusted  []Trust
	Rejected []Trust
}

// RejectAll returns settings rejecting the anchor for every trust kind.
func RejectAll() TrustSettings {
	return TrustSettings{Rejected: []Trust{
		TrustCompat, TrustSSLClient, TrustSSLServer, TrustEmail,
		TrustObjectSign, TrustOCSPSign, TrustOCSPRequest, TrustTSA,
	}}
}

// anchor is a trusted certificate. Anchors are never mutated after insertion.
type anchor struct {
	cert  *x509cert.Certificate
	trust TrustSettings
}

// settings is the verification policy copied into every StoreContext.
type settings struct {
	flags         Flags
	purpose       Purpose
	trust         Trust
	checkTime     time.Time
	depth         int
	policies      []asn1.ObjectIdentifier
	hosts         []string
	email         string
	ip            net.IP
	securityLevel int

	crlSupplier  CRLSupplier
	issuerLookup IssuerLookup
	ocsp         OCSPResponder
	observer     Observer
	callback     VerifyCallback
	appCheck     CertificateCheck
}

// Store is a trust store: trusted certificates, CRLs and verification policy.
//
// Thread Safety: every method is safe for concurrent use. A verification
// snapshots the policy and the current trusted set when its [StoreContext] is
// created, so later mutations never affect it.
type Store struct {
	mu        sync.RWMutex
	anchors   []anchor
	bySubject map[string][]int
	byFP      map[x509cert.Fingerprint]int
	crls      []*x509cert.RevocationList
	crlFP     map[x509cert.Fingerprint]struct{}
	settings  settings
	paths     *config.Paths
}

// StoreOption configures a new Store.
type StoreOption func(*Store)

// WithPaths attaches the resolved default trust-anchor locations.
func WithPaths(p *config.Paths) StoreOption { return func(s *Store) { s.paths = p } }

// WithFlags sets flags in addition to [DefaultFlags], like [Store.SetFlags].
func WithFlags(f Flags) StoreOption {
	return func(s *Store) { s.settings.flags = s.settings.flags.With(f) }
}

// WithoutFlags clears flags, including defaults. Options apply in order, so
// it only undoes [WithFlags] options that precede it.
func WithoutFlags(f Flags) StoreOption {
	return func(s *Store) { s.settings.flags = s.settings.flags.Without(f) }
}

// WithPurpose sets the initial purpose.
func WithPurpose(p Purpose) StoreOption { return func(s *Store) { s.settings.purpose = p } }

// WithTrust sets the initial trust kind.
func WithTrust(t Trust) StoreOption { return func(s *Store) { s.settings.trust = t } }

// WithDepth sets the initial maximum number of intermediates.
func WithDepth(d int) StoreOption { return func(s *Store) { s.settings.depth = d } }

// NewStore creates an empty store with [DefaultFlags], [DefaultDepth] and
// [DefaultSecurityLevel].
func NewStore(opts ...StoreOption) *Store {
	s := &Store{
		bySubject: make(map[string][]int),
		byFP:      make(map[x509cert.Fingerprint]int),
		crlFP:     make(map[x509cert.Fingerprint]struct{}),
		settings: settings{
			flags:         DefaultFlags,
			depth:         DefaultDepth,
			securityLevel: DefaultSecurityLevel,
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Paths returns the default locations the store was created with, or nil.
func (s *Store) Paths() *config.Paths { return s.paths }

// AddTrustedCertificate adds cert to the trusted set.
//
// Parameters:
//   - cert: The certificate to trust
//
// Returns:
//   - error: A [*VerifyError] with [InvalidCall] for a nil certificate
//
// Adding a certificate that is already trusted is a no-op. Insertion is
// all-or-nothing: the index and the trusted set are updated together under
// the store lock.
func (s *Store) AddTrustedCertificate(cert *x509cert.Certificate) error {
	return s.AddTrustedCertificateWithTrust(cert, TrustSettings{})
}

// AddTrustedCertificateWithTrust adds cert with explicit trust settings.
// The settings of an already trusted certificate are left unchanged.
func (s *Store) AddTrustedCertificateWithTrust(cert *x509cert.Certificate, ts TrustSettings) error {
	if cert == nil {
		return invalidCall("nil certificate")
	}
	ts = TrustSettings{Trusted: slices.Clone(ts.Trusted), Rejected: slices.Clone(ts.Rejected)}

	s.mu.Lock()
	defer s.mu.Unlock()

	fp := cert.Fingerprint()
	if _, ok := s.byFP[fp]; ok {
		return nil
	}
	idx := len(s.anchors)
	key := cert.Subject().Key()
	s.anchors = append(s.anchors, anchor{cert: cert, trust: ts})
	s.byFP[fp] = idx
	s.bySubject[key] = append(s.bySubject[key], idx)
	return nil
}

// Len returns the number of trusted certificates.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.anchors)
}

// FindIssuerCandidates returns the trusted certificates whose subject equals
// name, in insertion order.
func (s *Store) FindIssuerCandidates(name x509cert.Name) []*x509cert.Certificate {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.candidatesLocked(name, len(s.anchors))
}

// candidatesLocked returns the anchors below limit whose subject equals name.
func (s *Store) candidatesLocked(name x509cert.Name, limit int) []*x509cert.Certificate {
	var out []*x509cert.Certificate
	for _, idx := range s.bySubject[name.Key()] {
		if idx >= limit {
			break
		}
		out = append(out, s.anchors[idx].cert)
	}
	return out
}

func (s *Store) candidates(name x509cert.Name, limit int) []*x509cert.Certificate {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.candidatesLocked(name, limit)
}

// lookupAnchor reports whether cert was trusted before limit.
func (s *Store) lookupAnchor(cert *x509cert.Certificate, limit int) (anchor, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	idx, ok := s.byFP[cert.Fingerprint()]
	if !ok || idx >= limit {
		return anchor{}, false
	}
	return s.anchors[idx], true
}

// AddCRL adds a CRL consulted before any [CRLSupplier]. Adding the same CRL
// twice is a no-op.
func (s *Store) AddCRL(crl *x509cert.RevocationList) error {
	if crl == nil {
		return invalidCall("nil CRL")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	fp := crl.Fingerprint()
	if _, ok := s.crlFP[fp]; ok {
		return nil
	}
	s.crlFP[fp] = struct{}{}
	s.crls = append(s.crls, crl)
	return nil
}

// SetFlags sets the given flag bits in addition to those already set.
func (s *Store) SetFlags(f Flags) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settings.flags = s.settings.flags.With(f)
}

// ClearFlags clears the given flag bits.
func (s *Store) ClearFlags(f Flags) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settings.flags = s.settings.flags.Without(f)
}

// Flags returns the current flags.
func (s *Store) Flags() Flags {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.settings.flags
}

// Depth returns the maximum number of intermediates.
func (s *Store) Depth() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.settings.depth
}

// SetPurpose sets the purpose the leaf is checked for; zero disables it.
func (s *Store) SetPurpose(p Purpose) { s.update(func(st *settings) { st.purpose = p }) }

// SetTrust sets the trust kind anchors must carry; zero selects the purpose default.
func (s *Store) SetTrust(t Trust) { s.update(func(st *settings) { st.trust = t }) }

// SetVerificationTime overrides the current time and sets [UseCheckTime].
func (s *Store) SetVerificationTime(t time.Time) {
	s.update(func(st *settings) {
		st.checkTime = t.UTC()
		st.flags |= UseCheckTime
	})
}

// SetDepth sets the maximum number of intermediate certificates. A negative
// depth removes the limit.
func (s *Store) SetDepth(d int) { s.update(func(st *settings) { st.depth = d }) }

// SetPolicies sets the acceptable policy set used by policy checking. An
// empty set means anyPolicy.
func (s *Store) SetPolicies(oids ...asn1.ObjectIdentifier) {
	s.update(func(st *settings) { st.policies = slices.Clone(oids) })
}

// SetHost sets the host names the leaf must match; one match suffices.
func (s *Store) SetHost(hosts ...string) {
	s.update(func(st *settings) { st.hosts = slices.Clone(hosts) })
}

// SetEmail sets the email address the leaf must carry.
func (s *Store) SetEmail(email string) { s.update(func(st *settings) { st.email = email }) }

// SetIPAddress sets the IP address the leaf must carry.
func (s *Store) SetIPAddress(ip net.IP) { s.update(func(st *settings) { st.ip = slices.Clone(ip) }) }

// SetSecurityLevel sets the minimum key and digest strength (0 to 5).
func (s *Store) SetSecurityLevel(level int) {
	s.update(func(st *settings) { st.securityLevel = max(0, min(level, 5)) })
}

// SetCRLSupplier sets the CRL source consulted after the store CRLs.
func (s *Store) SetCRLSupplier(c CRLSupplier) { s.update(func(st *settings) { st.crlSupplier = c }) }

// SetIssuerLookup sets the remote issuer source consulted when local lookup fails.
func (s *Store) SetIssuerLookup(l IssuerLookup) {
	s.update(func(st *settings) { st.issuerLookup = l })
}

// SetOCSPResponder sets the OCSP source. Once set, the leaf is checked
// independently of [CRLCheck]; with [CRLCheckAll] every certificate below the
// anchor is checked too.
func (s *Store) SetOCSPResponder(r OCSPResponder) { s.update(func(st *settings) { st.ocsp = r }) }

// SetObserver sets the verification observer.
func (s *Store) SetObserver(o Observer) { s.update(func(st *settings) { st.observer = o }) }

// SetVerifyCallback sets the failure override callback.
func (s *Store) SetVerifyCallback(cb VerifyCallback) {
	s.update(func(st *settings) { st.callback = cb })
}

// SetCertificateCheck sets the application check.
func (s *Store) SetCertificateCheck(fn CertificateCheck) {
	s.update(func(st *settings) { st.appCheck = fn })
}

func (s *Store) update(fn func(*settings)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(&s.settings)
}

// snapshot is the frozen view of a store used by one verification.
type snapshot struct {
	settings
	store   *Store
	limit   int
	crls    []*x509cert.RevocationList
	hasTime bool
	now     time.Time
}

func (s *Store) snapshot() *snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap := &snapshot{
		settings: s.settings,
		store:    s,
		limit:    len(s.anchors),
		crls:     s.crls[:len(s.crls):len(s.crls)],
	}
	snap.policies = slices.Clone(s.settings.policies)
	snap.hosts = slices.Clone(s.settings.hosts)
	snap.hasTime = snap.flags.Has(UseCheckTime) && !snap.checkTime.IsZero()
	if snap.hasTime {
		snap.now = snap.checkTime
	} else {
		snap.now = time.Now().UTC()
	}
	return snap
}

// checkTimes reports whether validity windows are evaluated.
func (sn *snapshot) checkTimes() bool {
	return sn.hasTime || !sn.flags.Has(NoCheckTime)
}

func (sn *snapshot) trusted(cert *x509cert.Certificate) (anchor, bool) {
	return sn.store.lookupAnchor(cert, sn.limit)
}

func (sn *snapshot) trustedCandidates(name x509cert.Name) []*x509cert.Certificate {
	return sn.store.candidates(name, sn.limit)
}
