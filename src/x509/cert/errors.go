// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package x509cert

import "errors"

var (
	// ErrNilCertificate indicates that a nil certificate was supplied.
	ErrNilCertificate = errors.New("x509cert: nil certificate")

	// ErrNilRevocationList indicates that a nil revocation list was supplied.
	ErrNilRevocationList = errors.New("x509cert: nil revocation list")

	// ErrInvalidName indicates a distinguished name that could not be decoded.
	ErrInvalidName = errors.New("x509cert: invalid distinguished name")

	// ErrInvalidExtension indicates an understood extension whose value is malformed.
	ErrInvalidExtension = errors.New("x509cert: invalid extension")

	// ErrInvalidPolicyExtension indicates a malformed or inconsistent policy extension.
	ErrInvalidPolicyExtension = errors.New("x509cert: invalid policy extension")

	// ErrTrailingData indicates extra bytes after a DER structure.
	ErrTrailingData = errors.New("x509cert: trailing data after DER structure")
)
