// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package x509verify

import (
	"fmt"
	"strconv"
	"strings"
)

// Flags is the verification behaviour bitmask. Bit values are stable.
type Flags uint64

// Verification flags.
const (
	// UseCheckTime uses the store's verification time instead of the current time.
	UseCheckTime Flags = 0x2
	// CRLCheck checks the leaf certificate against a CRL.
	CRLCheck Flags = 0x4
	// CRLCheckAll checks every certificate in the chain against a CRL.
	CRLCheckAll Flags = 0x8
	// IgnoreCritical accepts unhandled critical extensions.
	IgnoreCritical Flags = 0x10
	// X509Strict disables workarounds for broken certificates.
	X509Strict Flags = 0x20
	// AllowProxyCerts enables RFC 3820 proxy certificate verification.
	AllowProxyCerts Flags = 0x40
	// PolicyCheck enables certificate policy checking.
	PolicyCheck Flags = 0x80
	// ExplicitPolicy requires an explicit policy. Implies PolicyCheck.
	ExplicitPolicy Flags = 0x100
	// InhibitAny disables the anyPolicy special policy. Implies PolicyCheck.
	InhibitAny Flags = 0x200
	// InhibitMap disables policy mapping. Implies PolicyCheck.
	InhibitMap Flags = 0x400
	// NotifyPolicy reports the resulting policy set.
	NotifyPolicy Flags = 0x800
	// ExtendedCRLSupport enables indirect CRLs and CRLs signed by other keys.
	ExtendedCRLSupport Flags = 0x1000
	// UseDeltas applies delta CRLs.
	UseDeltas Flags = 0x2000
	// CheckSSSignature verifies the self signature of a self-signed leaf anchor.
	CheckSSSignature Flags = 0x4000
	// TrustedFirst searches the trusted set before untrusted intermediates.
	TrustedFirst Flags = 0x8000
	// SuiteB128LOSOnly restricts the chain to Suite B 128 bit security
	// (P-256 with SHA-256).
	SuiteB128LOSOnly Flags = 0x10000
	// SuiteB192LOS restricts the chain to Suite B 192 bit security
	// (P-384 with SHA-384).
	SuiteB192LOS Flags = 0x20000
	// SuiteB128LOS allows either Suite B level, but a P-384 key may not be
	// signed by a P-256 key.
	SuiteB128LOS Flags = 0x30000
	// PartialChain accepts a chain ending at any trusted certificate.
	PartialChain Flags = 0x80000
	// NoAltChains stops at the first chain found. Chain building here never
	// searches alternatives, so the flag only round-trips.
	NoAltChains Flags = 0x100000
	// NoCheckTime skips validity checks unless a verification time is set.
	NoCheckTime Flags = 0x200000
)

// DefaultFlags are the flags of a new store.
const DefaultFlags = TrustedFirst

var flagNames = []struct {
	flag Flags
	name string
}{
	{UseCheckTime, "USE_CHECK_TIME"},
	{CRLCheck, "CRL_CHECK"},
	{CRLCheckAll, "CRL_CHECK_ALL"},
	{IgnoreCritical, "IGNORE_CRITICAL"},
	{X509Strict, "X509_STRICT"},
	{AllowProxyCerts, "ALLOW_PROXY_CERTS"},
	{PolicyCheck, "POLICY_CHECK"},
	{ExplicitPolicy, "EXPLICIT_POLICY"},
	{InhibitAny, "INHIBIT_ANY"},
	{InhibitMap, "INHIBIT_MAP"},
	{NotifyPolicy, "NOTIFY_POLICY"},
	{ExtendedCRLSupport, "EXTENDED_CRL_SUPPORT"},
	{UseDeltas, "USE_DELTAS"},
	{CheckSSSignature, "CHECK_SS_SIGNATURE"},
	{TrustedFirst, "TRUSTED_FIRST"},
	{SuiteB128LOS, "SUITEB_128_LOS"},
	{SuiteB128LOSOnly, "SUITEB_128_LOS_ONLY"},
	{SuiteB192LOS, "SUITEB_192_LOS"},
	{PartialChain, "PARTIAL_CHAIN"},
	{NoAltChains, "NO_ALT_CHAINS"},
	{NoCheckTime, "NO_CHECK_TIME"},
}

// Has reports whether every bit of want is set.
func (f Flags) Has(want Flags) bool { return f&want == want }

// Any reports whether at least one bit of want is set.
func (f Flags) Any(want Flags) bool { return f&want != 0 }

// With returns f with the given bits set.
func (f Flags) With(bits Flags) Flags { return (f | bits).Normalize() }

// Without returns f with the given bits cleared. Clearing PolicyCheck while
// an implying flag remains set has no effect on PolicyCheck.
func (f Flags) Without(bits Flags) Flags { return (f &^ bits).Normalize() }

// Normalize makes flag implications explicit: ExplicitPolicy, InhibitAny and
// InhibitMap each imply PolicyCheck.
func (f Flags) Normalize() Flags {
	if f.Any(ExplicitPolicy | InhibitAny | InhibitMap) {
		f |= PolicyCheck
	}
	return f
}

// String renders the set bits as names joined by "|".
func (f Flags) String() string {
	if f == 0 {
		return "0"
	}
	var parts []string
	rest := f
	for _, fn := range flagNames {
		if rest.Has(fn.flag) {
			parts = append(parts, fn.name)
			rest &^= fn.flag
		}
	}
	if rest != 0 {
		parts = append(parts, "0x"+strconv.FormatUint(uint64(rest), 16))
	}
	return strings.Join(parts, "|")
}

// ParseFlags parses names separated by "|", "," or whitespace. Names are
// case-insensitive and may carry a "V_FLAG_" prefix; numeric values are
// accepted in any base understood by [strconv.ParseUint].
func ParseFlags(s string) (Flags, error) {
	var f Flags
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == '|' || r == ',' || r == ' ' || r == '\t'
	})
	for _, field := range fields {
		if n, err := strconv.ParseUint(field, 0, 64); err == nil {
			f |= Flags(n)
			continue
		}
		name := strings.TrimPrefix(strings.ToUpper(field), "V_FLAG_")
		found := false
		for _, fn := range flagNames {
			if fn.name == name {
				f |= fn.flag
				found = true
				break
			}
		}
		if !found {
			return 0, fmt.Errorf("x509verify: unknown flag %q", field)
		}
	}
	return f.Normalize(), nil
}
