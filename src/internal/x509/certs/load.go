// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package x509certs

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strings"

	"github.com/H0llyW00dzZ/x509-trust-verifier/src/config"
	"github.com/H0llyW00dzZ/x509-trust-verifier/src/internal/helper/gc"
	x509cert "github.com/H0llyW00dzZ/x509-trust-verifier/src/x509/cert"
	x509verify "github.com/H0llyW00dzZ/x509-trust-verifier/src/x509/verify"
)

// ErrReadFile indicates that an input file could not be read.
var ErrReadFile = errors.New("x509certs: failed to read file")

// readFile reads path through a pooled buffer and returns a private copy.
func readFile(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrReadFile, err)
	}
	defer f.Close()

	buf := gc.Default.Get()
	defer func() {
		buf.Reset()         // Reset the buffer to prevent data leaks
		gc.Default.Put(buf) // Return the buffer to the pool for reuse
	}()

	if _, err := buf.ReadFrom(f); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrReadFile, path, err)
	}
	return append([]byte(nil), buf.Bytes()...), nil
}

// LoadFile decodes every certificate and CRL in the file at path.
func (c *Codec) LoadFile(path string) (*Bundle, error) {
	data, err := readFile(path)
	if err != nil {
		return nil, err
	}
	b, err := c.DecodeBundle(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return b, nil
}

// LoadDir decodes the regular files directly inside dir in name order.
// Hidden files are ignored and files holding nothing decodable are recorded
// in [Bundle.Skipped] rather than failing the load.
func (c *Codec) LoadDir(dir string) (*Bundle, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrReadFile, err)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	out := &Bundle{}
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), ".") || !isRegular(dir, e) {
			continue
		}
		path := filepath.Join(dir, e.Name())
		b, err := c.LoadFile(path)
		if err != nil {
			out.Skipped = append(out.Skipped, path)
			continue
		}
		out.merge(b)
	}
	return out, nil
}

// isRegular follows symlinks, which hashed CA directories are made of.
func isRegular(dir string, e fs.DirEntry) bool {
	if e.Type().IsRegular() {
		return true
	}
	if e.Type()&fs.ModeSymlink == 0 {
		return false
	}
	fi, err := os.Stat(filepath.Join(dir, e.Name()))
	return err == nil && fi.Mode().IsRegular()
}

// AddToStore adds the bundle's certificates as trust anchors and its CRLs to
// store. Certificates whose fingerprint is listed in rejected are added with
// every trust kind rejected. It returns the number of certificates offered.
func AddToStore(store *x509verify.Store, b *Bundle, rejected ...x509cert.Fingerprint) (int, error) {
	for _, cert := range b.Certificates {
		ts := x509verify.TrustSettings{}
		if slices.Contains(rejected, cert.Fingerprint()) {
			ts = x509verify.RejectAll()
		}
		if err := store.AddTrustedCertificateWithTrust(cert, ts); err != nil {
			return 0, err
		}
	}
	for _, crl := range b.CRLs {
		if err := store.AddCRL(crl); err != nil {
			return 0, err
		}
	}
	return len(b.Certificates), nil
}

// LoadDefaultLocations loads the CA bundle file and CA directories named by
// paths into store, honouring the environment overrides. Missing locations
// are not an error, matching how default trust locations behave on hosts
// without a system bundle.
//
// Returns the number of certificates offered to the store.
func (c *Codec) LoadDefaultLocations(store *x509verify.Store, paths *config.Paths, rejected ...x509cert.Fingerprint) (int, error) {
	if paths == nil {
		return 0, nil
	}
	total := 0

	if file := paths.EffectiveCertFile(); file != "" {
		b, err := c.LoadFile(file)
		switch {
		case err == nil:
			n, err := AddToStore(store, b, rejected...)
			if err != nil {
				return total, err
			}
			total += n
		case !errors.Is(err, fs.ErrNotExist):
			return total, err
		}
	}

	for _, dir := range paths.EffectiveCertDirs() {
		b, err := c.LoadDir(dir)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return total, err
		}
		n, err := AddToStore(store, b, rejected...)
		if err != nil {
			return total, err
		}
		total += n
	}
	return total, nil
}
