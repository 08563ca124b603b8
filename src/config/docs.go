// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

// Package config resolves the default trust-anchor locations and loads the
// verifier configuration file.
//
// [Paths] is resolved once at process start by [ResolvePaths] and passed to
// the trust store explicitly; nothing in this module reads global path state.
// [Load] reads a JSON or YAML file (detected by extension) on top of built-in
// defaults, honouring the X509_VERIFY_CONFIG_FILE environment variable when no
// path is given.
package config
