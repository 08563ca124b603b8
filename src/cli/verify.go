// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package cli

import (
	"context"
	"encoding/asn1"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/H0llyW00dzZ/x509-trust-verifier/src/config"
	x509certs "github.com/H0llyW00dzZ/x509-trust-verifier/src/internal/x509/certs"
	x509chain "github.com/H0llyW00dzZ/x509-trust-verifier/src/internal/x509/chain"
	x509revocation "github.com/H0llyW00dzZ/x509-trust-verifier/src/internal/x509/revocation"
	"github.com/H0llyW00dzZ/x509-trust-verifier/src/logger"
	"github.com/H0llyW00dzZ/x509-trust-verifier/src/metrics"
	x509cert "github.com/H0llyW00dzZ/x509-trust-verifier/src/x509/cert"
	x509verify "github.com/H0llyW00dzZ/x509-trust-verifier/src/x509/verify"
)

// verifier is a configured store and its collaborators.
type verifier struct {
	store   *x509verify.Store
	metrics *metrics.Collector
	// crls is nil unless CRL download is enabled.
	crls *x509revocation.Fetcher
	// aia is nil unless AIA fetching is enabled.
	aia *x509chain.Resolver
}

// runVerify loads the configuration, builds the store, verifies the target
// and writes the result.
func runVerify(cmd *cobra.Command, args []string, opts *options, version string, log logger.Logger) error {
	OperationPerformed, OperationPerformedSuccessfully = false, false

	if len(args) == 0 && opts.connect == "" {
		return ErrInputFileRequired
	}
	switch opts.output {
	case OutputText, OutputTree, OutputTable, OutputJSON:
	default:
		return fmt.Errorf("%w: unknown output format %q", ErrInvalidOption, opts.output)
	}

	cfg, err := config.Load(opts.configFile)
	if err != nil {
		return err
	}
	applyFlags(cmd, opts, cfg)

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	codec := x509certs.New()
	v, err := newVerifier(ctx, cfg, version, codec, log)
	if err != nil {
		return err
	}

	name, leaf, untrusted, err := loadTarget(ctx, cfg, opts, args, codec)
	if err != nil {
		return err
	}

	if v.aia != nil && len(untrusted) == 0 {
		untrusted = v.prefetchIssuers(ctx, leaf, opts.verbose, log)
	}

	res := v.store.Verify(ctx, leaf, untrusted...)
	OperationPerformed = true
	if opts.verbose && v.crls != nil {
		log.Println(v.crls.Cache().Stats())
	}

	if err := writeResult(cmd.OutOrStdout(), opts.output, name, res); err != nil {
		return err
	}
	if path := cfg.Metrics.TextFile; path != "" {
		if err := v.metrics.WriteTextfile(path); err != nil {
			log.Printf("Failed to write metrics to %s: %v", path, err)
		}
	}

	if !res.Valid() {
		return fmt.Errorf("%w: %w", ErrVerificationFailed, res.Err())
	}
	OperationPerformedSuccessfully = true
	return nil
}

// applyFlags overlays explicitly set flags on the loaded configuration.
// List flags add to the configured values.
func applyFlags(cmd *cobra.Command, opts *options, cfg *config.Config) {
	changed := cmd.Flags().Changed

	if changed("CAfile") {
		cfg.Store.CAFile = opts.caFile
	}
	if changed("CApath") {
		cfg.Store.CADir = opts.caDir
	}
	if opts.noDefaultLocations {
		cfg.Store.NoDefaultLocations = true
	}
	cfg.Store.RejectedFingerprints = append(cfg.Store.RejectedFingerprints, opts.rejected...)
	cfg.CRL.Files = append(cfg.CRL.Files, opts.crlFiles...)
	if opts.crlDownload {
		cfg.CRL.Download = true
	}

	cfg.Store.Flags = append(cfg.Store.Flags, opts.flags...)
	if opts.crlCheck {
		cfg.Store.Flags = append(cfg.Store.Flags, "CRL_CHECK")
	}
	if opts.crlCheckAll {
		cfg.Store.Flags = append(cfg.Store.Flags, "CRL_CHECK", "CRL_CHECK_ALL")
	}
	if changed("purpose") {
		cfg.Store.Purpose = opts.purpose
	}
	if changed("trust") {
		cfg.Store.Trust = opts.trust
	}
	if changed("verify-depth") {
		cfg.Store.Depth = opts.depth
	}
	if changed("attime") {
		cfg.Store.VerificationTime = opts.atTime
	}
	cfg.Store.Policies = append(cfg.Store.Policies, opts.policies...)
	if len(opts.hosts) > 0 {
		cfg.Store.Host = strings.Join(opts.hosts, ",")
	}
	if changed("verify-email") {
		cfg.Store.Email = opts.email
	}
	if changed("verify-ip") {
		cfg.Store.IP = opts.ip
	}
	if changed("auth-level") {
		cfg.Store.SecurityLevel = opts.securityLevel
	}

	if opts.aia {
		cfg.AIA.Enabled = true
	}
	if opts.ocsp {
		cfg.OCSP.Enabled = true
	}
	if opts.ocspURL != "" {
		cfg.OCSP.Enabled = true
		cfg.OCSP.Responder = opts.ocspURL
	}
	if opts.timeout > 0 {
		cfg.CRL.Timeout, cfg.AIA.Timeout, cfg.OCSP.Timeout = opts.timeout, opts.timeout, opts.timeout
	}
	if changed("metrics-file") {
		cfg.Metrics.TextFile = opts.metricsOut
	}
}

// newVerifier builds a store from cfg. Background work started here stops
// when ctx is done.
func newVerifier(ctx context.Context, cfg *config.Config, version string, codec *x509certs.Codec, log logger.Logger) (*verifier, error) {
	set, clear, err := parseFlagList(cfg.Store.Flags)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidOption, err)
	}
	purpose, err := x509verify.ParsePurpose(cfg.Store.Purpose)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidOption, err)
	}
	trust, err := x509verify.ParseTrust(cfg.Store.Trust)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidOption, err)
	}

	store := x509verify.NewStore(
		x509verify.WithPaths(config.ResolvePaths()),
		x509verify.WithFlags(set),
		x509verify.WithoutFlags(clear),
		x509verify.WithPurpose(purpose),
		x509verify.WithTrust(trust),
		x509verify.WithDepth(cfg.Store.Depth),
	)
	store.SetSecurityLevel(cfg.Store.SecurityLevel)

	if err := applyIdentity(store, cfg); err != nil {
		return nil, err
	}

	v := &verifier{store: store, metrics: metrics.NewCollector()}
	store.SetObserver(v.metrics)

	if err := loadAnchors(store, cfg, codec, log); err != nil {
		return nil, err
	}
	if err := v.configureRevocation(ctx, cfg, version, codec, log); err != nil {
		return nil, err
	}

	if cfg.AIA.Enabled {
		resolver := x509chain.NewResolver(version)
		resolver.HTTPConfig.Timeout = time.Duration(cfg.AIA.Timeout) * time.Second
		// The path holds at most depth intermediates plus the anchor.
		resolver.MaxDepth = min(cfg.Store.Depth+1, x509chain.DefaultMaxDepth)
		store.SetIssuerLookup(resolver)
		v.aia = resolver
	}
	if cfg.OCSP.Enabled {
		httpConfig := x509chain.NewHTTPConfig(version)
		httpConfig.Timeout = time.Duration(cfg.OCSP.Timeout) * time.Second
		client := x509revocation.NewOCSPClient(httpConfig)
		client.Responder = cfg.OCSP.Responder
		store.SetOCSPResponder(client)
	}
	return v, nil
}

// prefetchIssuers follows the caIssuers links of leaf and returns the
// downloaded intermediates. The last certificate found is left to the store's
// own lookup, which either trusts it or downloads it again from the cache.
func (v *verifier) prefetchIssuers(ctx context.Context, leaf *x509cert.Certificate, verbose bool, log logger.Logger) []*x509cert.Certificate {
	chain, err := v.aia.Resolve(ctx, leaf)
	if err != nil {
		log.Printf("AIA download stopped after %d certificates: %v", len(chain), err)
	}
	intermediates := x509chain.FilterIntermediates(chain)
	if verbose {
		log.Printf("Downloaded %d intermediate certificates via AIA", len(intermediates))
	}
	return intermediates
}

// parseFlagList splits flag names into flags to set on top of the store
// defaults and flags to clear. A leading "-" clears, so "-TRUSTED_FIRST"
// turns off the default issuer search order. The last mention of a flag wins.
func parseFlagList(names []string) (set, clear x509verify.Flags, err error) {
	for _, name := range names {
		name = strings.TrimSpace(name)
		negate := strings.HasPrefix(name, "-")
		f, err := x509verify.ParseFlags(strings.TrimPrefix(name, "-"))
		if err != nil {
			return 0, 0, err
		}
		if negate {
			set, clear = set&^f, clear|f
		} else {
			set, clear = set|f, clear&^f
		}
	}
	return set, clear, nil
}

// applyIdentity sets the verification time, policies and expected leaf
// identities.
func applyIdentity(store *x509verify.Store, cfg *config.Config) error {
	if s := cfg.Store.VerificationTime; s != "" {
		at, err := parseTime(s)
		if err != nil {
			return err
		}
		store.SetVerificationTime(at)
	}

	if len(cfg.Store.Policies) > 0 {
		oids := make([]asn1.ObjectIdentifier, 0, len(cfg.Store.Policies))
		for _, s := range cfg.Store.Policies {
			oid, err := parseOID(s)
			if err != nil {
				return err
			}
			oids = append(oids, oid)
		}
		store.SetPolicies(oids...)
	}

	if cfg.Store.Host != "" {
		store.SetHost(strings.Split(cfg.Store.Host, ",")...)
	}
	if cfg.Store.Email != "" {
		store.SetEmail(cfg.Store.Email)
	}
	if cfg.Store.IP != "" {
		ip := net.ParseIP(cfg.Store.IP)
		if ip == nil {
			return fmt.Errorf("%w: invalid IP address %q", ErrInvalidOption, cfg.Store.IP)
		}
		store.SetIPAddress(ip)
	}
	return nil
}

// loadAnchors adds the configured trusted certificates to store. The default
// locations are used when neither a CA file nor a CA directory is set, unless
// they are disabled.
func loadAnchors(store *x509verify.Store, cfg *config.Config, codec *x509certs.Codec, log logger.Logger) error {
	rejected := make([]x509cert.Fingerprint, 0, len(cfg.Store.RejectedFingerprints))
	for _, s := range cfg.Store.RejectedFingerprints {
		fp, err := x509cert.ParseFingerprint(s)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidOption, err)
		}
		rejected = append(rejected, fp)
	}

	load := func(b *x509certs.Bundle, source string) error {
		for _, path := range b.Skipped {
			log.Printf("Skipping %s: no certificates or CRLs", path)
		}
		n, err := x509certs.AddToStore(store, b, rejected...)
		if err != nil {
			return err
		}
		log.Printf("Loaded %d trusted certificates from %s", n, source)
		return nil
	}

	if cfg.Store.CAFile != "" {
		b, err := codec.LoadFile(cfg.Store.CAFile)
		if err != nil {
			return err
		}
		if err := load(b, cfg.Store.CAFile); err != nil {
			return err
		}
	}
	if cfg.Store.CADir != "" {
		b, err := codec.LoadDir(cfg.Store.CADir)
		if err != nil {
			return err
		}
		if err := load(b, cfg.Store.CADir); err != nil {
			return err
		}
	}
	if cfg.Store.CAFile == "" && cfg.Store.CADir == "" && !cfg.Store.NoDefaultLocations {
		n, err := codec.LoadDefaultLocations(store, store.Paths(), rejected...)
		if err != nil {
			return err
		}
		log.Printf("Loaded %d trusted certificates from default locations", n)
	}
	return nil
}

// configureRevocation installs the CRL supplier: configured CRL files first,
// then distribution point downloads when enabled.
func (v *verifier) configureRevocation(ctx context.Context, cfg *config.Config, version string, codec *x509certs.Codec, log logger.Logger) error {
	static := x509revocation.NewStatic()
	for _, path := range cfg.CRL.Files {
		b, err := codec.LoadFile(path)
		if err != nil {
			return err
		}
		if len(b.CRLs) == 0 {
			return fmt.Errorf("%w: no CRL in %s", x509certs.ErrNoObjects, path)
		}
		for _, crl := range b.CRLs {
			static.Add(crl)
		}
	}

	var suppliers x509revocation.Chain
	if static.Len() > 0 {
		suppliers = append(suppliers, static)
	}
	if cfg.CRL.Download {
		httpConfig := x509chain.NewHTTPConfig(version)
		httpConfig.Timeout = time.Duration(cfg.CRL.Timeout) * time.Second
		cache := x509revocation.NewCache(x509revocation.CacheConfig{
			MaxSize:         cfg.CRL.CacheSize,
			CleanupInterval: time.Duration(cfg.CRL.CleanupInterval) * time.Second,
		})
		go cache.Run(ctx)

		v.crls = x509revocation.NewFetcher(httpConfig, cache)
		if err := v.metrics.RegisterCache("cdp", cache); err != nil {
			return err
		}
		suppliers = append(suppliers, v.crls)
	}
	if len(suppliers) == 0 {
		return nil
	}

	if !v.store.Flags().Any(x509verify.CRLCheck) {
		log.Printf("CRLs configured but CRL_CHECK is not set; revocation will not be checked")
	}
	v.store.SetCRLSupplier(suppliers)
	return nil
}

// loadTarget returns the certificate to verify and its untrusted
// intermediates, either from a file or from a TLS server.
func loadTarget(ctx context.Context, cfg *config.Config, opts *options, args []string, codec *x509certs.Codec) (string, *x509cert.Certificate, []*x509cert.Certificate, error) {
	var (
		name  string
		certs []*x509cert.Certificate
	)
	if opts.connect != "" {
		host, port, err := x509chain.SplitHostPort(opts.connect)
		if err != nil {
			return "", nil, nil, fmt.Errorf("%w: %w", ErrInvalidOption, err)
		}
		certs, err = x509chain.FetchRemoteChain(ctx, host, port, time.Duration(cfg.AIA.Timeout)*time.Second)
		if err != nil {
			return "", nil, nil, err
		}
		name = net.JoinHostPort(host, strconv.Itoa(port))
	} else {
		name = args[0]
		b, err := codec.LoadFile(name)
		if err != nil {
			return "", nil, nil, err
		}
		if len(b.Certificates) == 0 {
			return "", nil, nil, fmt.Errorf("%w: no certificate in %s", x509certs.ErrNoObjects, name)
		}
		certs = b.Certificates
	}

	untrusted := certs[1:]
	for _, path := range opts.untrusted {
		b, err := codec.LoadFile(path)
		if err != nil {
			return "", nil, nil, err
		}
		untrusted = append(untrusted, b.Certificates...)
	}
	return name, certs[0], untrusted, nil
}

// parseTime accepts RFC 3339 or Unix seconds.
func parseTime(s string) (time.Time, error) {
	if secs, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.Unix(secs, 0).UTC(), nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: verification time %q: %w", ErrInvalidOption, s, err)
	}
	return t, nil
}

// parseOID parses a dotted object identifier such as 2.5.29.32.0.
func parseOID(s string) (asn1.ObjectIdentifier, error) {
	parts := strings.Split(strings.TrimSpace(s), ".")
	if len(parts) < 2 {
		return nil, fmt.Errorf("%w: invalid policy OID %q", ErrInvalidOption, s)
	}
	oid := make(asn1.ObjectIdentifier, len(parts))
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 {
			return nil, fmt.Errorf("%w: invalid policy OID %q", ErrInvalidOption, s)
		}
		oid[i] = n
	}
	return oid, nil
}
