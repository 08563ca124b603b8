// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

// Package x509cert provides the read-only [X.509] model consumed by the trust
// evaluator: certificates, distinguished names, extensions and revocation lists.
//
// Values are built from structures already decoded by [crypto/x509]; this package
// adds the views the verifier needs (ordered names with attribute-wise equality,
// authority/subject key identifier matching, name constraints, policy extensions,
// proxy certificate information, issuing distribution points) and never performs
// any verification policy of its own.
//
// [X.509]: https://grokipedia.com/page/X.509
package x509cert
