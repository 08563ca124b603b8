// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

// Package testutil generates throwaway PKI hierarchies for package tests:
// roots, intermediates, leaves, CRLs and OCSP responses signed with ECDSA P-256.
//
// Every helper takes a [testing.TB] and fails the test on error, so callers can
// build hierarchies inline:
//
//	root := testutil.NewRoot(t, testutil.Spec{CommonName: "Root"})
//	inter := root.Issue(t, testutil.Spec{CommonName: "Intermediate", CA: true})
//	leaf := inter.Issue(t, testutil.Spec{CommonName: "leaf.example.com"})
package testutil
