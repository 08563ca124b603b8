// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package x509verify

import (
	"fmt"
)

// VerifyError describes a verification failure.
//
// It matches its [Code] with [errors.Is] and unwraps to the collaborator
// error that caused it, if any:
//
//	if errors.Is(err, x509verify.CertHasExpired) { ... }
type VerifyError struct {
	Code    Code
	Depth   int
	Subject string
	Err     error
}

// Error implements the error interface.
func (e *VerifyError) Error() string {
	msg := fmt.Sprintf("x509verify: %s (%s)", e.Code.Description(), e.Code)
	if e.Depth >= 0 {
		msg += fmt.Sprintf(" at depth %d", e.Depth)
	}
	if e.Subject != "" {
		msg += ": " + e.Subject
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Is reports whether target is the same [Code].
func (e *VerifyError) Is(target error) bool {
	c, ok := target.(Code)
	return ok && c == e.Code
}

// Unwrap returns the underlying cause.
func (e *VerifyError) Unwrap() error { return e.Err }

func invalidCall(msg string) *VerifyError {
	return &VerifyError{Code: InvalidCall, Depth: -1, Err: fmt.Errorf("%s", msg)}
}
