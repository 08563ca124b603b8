// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package x509cert

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

// ErrInvalidFingerprint indicates a fingerprint string that could not be parsed.
var ErrInvalidFingerprint = errors.New("x509cert: invalid fingerprint")

// Fingerprint is the SHA-256 digest of a DER encoding.
type Fingerprint [sha256.Size]byte

// fingerprintGrammar accepts hex pairs optionally split by a single separator.
//
//	fingerprint := PAIR ( SEP? PAIR )*
//	PAIR        := [0-9A-Fa-f]{2}
//	SEP         := [: -]
type fingerprintGrammar struct {
	First string            `parser:"@Pair"`
	Rest  []fingerprintPair `parser:"@@*"`
}

type fingerprintPair struct {
	Sep  string `parser:"@Sep?"`
	Pair string `parser:"@Pair"`
}

var fingerprintParser = participle.MustBuild[fingerprintGrammar](
	participle.Lexer(lexer.MustSimple([]lexer.SimpleRule{
		{Name: "Pair", Pattern: `[0-9A-Fa-f]{2}`},
		{Name: "Sep", Pattern: `[: -]`},
	})),
)

// FingerprintOf returns the fingerprint of a DER encoding.
func FingerprintOf(der []byte) Fingerprint { return sha256.Sum256(der) }

// ParseFingerprint parses 64 hex digits, either contiguous or as 32 pairs
// split by one consistent separator (":", "-" or " ").
func ParseFingerprint(input string) (Fingerprint, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return Fingerprint{}, fmt.Errorf("%w: empty input", ErrInvalidFingerprint)
	}
	fp, err := fingerprintParser.ParseString("", input)
	if err != nil {
		return Fingerprint{}, fmt.Errorf("%w: %w", ErrInvalidFingerprint, err)
	}
	if len(fp.Rest) != sha256.Size-1 {
		return Fingerprint{}, fmt.Errorf("%w: got %d pairs, want %d", ErrInvalidFingerprint, len(fp.Rest)+1, sha256.Size)
	}

	var b strings.Builder
	b.WriteString(fp.First)
	sep := fp.Rest[0].Sep
	for _, p := range fp.Rest {
		if p.Sep != sep {
			return Fingerprint{}, fmt.Errorf("%w: inconsistent separators", ErrInvalidFingerprint)
		}
		b.WriteString(p.Pair)
	}

	raw, err := hex.DecodeString(b.String())
	if err != nil {
		return Fingerprint{}, fmt.Errorf("%w: %w", ErrInvalidFingerprint, err)
	}
	var f Fingerprint
	copy(f[:], raw)
	return f, nil
}

// String returns the "AA:BB:..." form.
func (f Fingerprint) String() string {
	parts := make([]string, len(f))
	for i, b := range f {
		parts[i] = fmt.Sprintf("%02X", b)
	}
	return strings.Join(parts, ":")
}

// Hex returns the lowercase contiguous hex form.
func (f Fingerprint) Hex() string { return hex.EncodeToString(f[:]) }

// IsZero reports whether the fingerprint is unset.
func (f Fingerprint) IsZero() bool { return f == Fingerprint{} }

// Truncate renders the first octets followed by an ellipsis.
func (f Fingerprint) Truncate(octets int) string {
	if octets <= 0 {
		return ""
	}
	if octets >= len(f) {
		return f.String()
	}
	parts := make([]string, octets)
	for i := range octets {
		parts[i] = fmt.Sprintf("%02X", f[i])
	}
	return strings.Join(parts, ":") + "..."
}
