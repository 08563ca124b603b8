// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package config

import (
	"os"
	"path/filepath"
	"strings"
)

const (
	// CertDirEnv names the environment variable overriding the CA directory.
	CertDirEnv = "SSL_CERT_DIR"
	// CertFileEnv names the environment variable overriding the CA bundle file.
	CertFileEnv = "SSL_CERT_FILE"

	// fallbackArea is the compiled-in OpenSSL directory used when no
	// candidate exists on this host.
	fallbackArea = "/usr/local/ssl"
)

// candidateAreas are probed in order by [ResolvePaths].
var candidateAreas = []string{
	"/usr/lib/ssl",
	"/etc/ssl",
	"/etc/pki/tls",
	"/usr/local/etc/openssl",
	fallbackArea,
}

// Paths holds the default locations of trust anchors and keys.
//
// Thread Safety: Paths is read-only after construction and safe to share.
type Paths struct {
	// CertArea is the base configuration directory.
	CertArea string
	// CertDir is the hashed CA certificate directory.
	CertDir string
	// CertFile is the CA bundle file.
	CertFile string
	// CertDirEnv and CertFileEnv name the override environment variables.
	CertDirEnv  string
	CertFileEnv string
	// PrivateDir is the private key directory.
	PrivateDir string
}

// PathsFor builds the default layout below a certificate area.
func PathsFor(area string) *Paths {
	return &Paths{
		CertArea:    area,
		CertDir:     filepath.Join(area, "certs"),
		CertFile:    filepath.Join(area, "cert.pem"),
		CertDirEnv:  CertDirEnv,
		CertFileEnv: CertFileEnv,
		PrivateDir:  filepath.Join(area, "private"),
	}
}

// ResolvePaths probes the well-known certificate areas of this host and
// returns the layout of the first one that exists.
//
// Returns:
//   - *Paths: The resolved default paths
//
// The probe touches the filesystem; call it once at start-up and pass the
// result around.
func ResolvePaths() *Paths {
	return resolvePaths(candidateAreas, dirExists)
}

func resolvePaths(candidates []string, exists func(string) bool) *Paths {
	for _, area := range candidates {
		if exists(area) {
			return PathsFor(area)
		}
	}
	return PathsFor(fallbackArea)
}

func dirExists(path string) bool {
	fi, err := os.Stat(path)
	return err == nil && fi.IsDir()
}

// EffectiveCertDirs returns the CA directories to search: the entries of the
// directory override variable when set, otherwise [Paths.CertDir].
func (p *Paths) EffectiveCertDirs() []string {
	if v := os.Getenv(p.CertDirEnv); p.CertDirEnv != "" && v != "" {
		var dirs []string
		for _, d := range filepath.SplitList(v) {
			if d = strings.TrimSpace(d); d != "" {
				dirs = append(dirs, d)
			}
		}
		return dirs
	}
	return []string{p.CertDir}
}

// EffectiveCertFile returns the CA bundle to load: the file override variable
// when set, otherwise [Paths.CertFile].
func (p *Paths) EffectiveCertFile() string {
	if v := os.Getenv(p.CertFileEnv); p.CertFileEnv != "" && v != "" {
		return v
	}
	return p.CertFile
}
