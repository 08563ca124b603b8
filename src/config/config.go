// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// EnvConfigFile names the environment variable pointing at the config file.
const EnvConfigFile = "X509_VERIFY_CONFIG_FILE"

// Defaults applied before the config file is read.
const (
	DefaultDepth           = 100
	DefaultSecurityLevel   = 1
	DefaultCRLCacheSize    = 100
	DefaultCleanupInterval = 3600
	DefaultTimeout         = 10
)

var (
	// ErrReadConfig indicates the config file could not be read.
	ErrReadConfig = errors.New("config: failed to read config file")
	// ErrParseConfig indicates the config file could not be decoded.
	ErrParseConfig = errors.New("config: failed to parse config file")
)

// format represents supported configuration file formats.
type format int

const (
	// formatJSON represents JSON configuration format (.json)
	formatJSON format = iota
	// formatYAML represents YAML configuration format (.yaml, .yml)
	formatYAML
)

// Config is the verifier configuration.
//
// Store policy values are kept as strings so the file stays readable; the
// CLI converts them with the x509verify parsers.
type Config struct {
	// Store: trust store policy
	Store struct {
		// CAFile and CADir override the default trust-anchor locations.
		CAFile string `json:"caFile,omitempty" yaml:"caFile,omitempty"`
		CADir  string `json:"caDir,omitempty" yaml:"caDir,omitempty"`
		// NoDefaultLocations skips the default trust-anchor locations
		NoDefaultLocations bool `json:"noDefaultLocations,omitempty" yaml:"noDefaultLocations,omitempty"`
		// Flags: verification flag names set on top of the store defaults,
		// e.g. "CRL_CHECK_ALL"; a "-" prefix clears one, e.g. "-TRUSTED_FIRST"
		Flags []string `json:"flags,omitempty" yaml:"flags,omitempty"`
		// Purpose and Trust: enum names, e.g. "SSL_SERVER"
		Purpose string `json:"purpose,omitempty" yaml:"purpose,omitempty"`
		Trust   string `json:"trust,omitempty" yaml:"trust,omitempty"`
		// Depth: maximum number of intermediate certificates; 0 allows none
		Depth int `json:"depth,omitempty" yaml:"depth,omitempty"`
		// VerificationTime: RFC 3339 override of the current time
		VerificationTime string `json:"verificationTime,omitempty" yaml:"verificationTime,omitempty"`
		// Policies: acceptable policy OIDs in dotted form
		Policies []string `json:"policies,omitempty" yaml:"policies,omitempty"`
		// Host, Email and IP: expected leaf identities
		Host  string `json:"host,omitempty" yaml:"host,omitempty"`
		Email string `json:"email,omitempty" yaml:"email,omitempty"`
		IP    string `json:"ip,omitempty" yaml:"ip,omitempty"`
		// SecurityLevel: minimum key and digest strength (0-5)
		SecurityLevel int `json:"securityLevel,omitempty" yaml:"securityLevel,omitempty"`
		// RejectedFingerprints: anchors rejected for every trust kind
		RejectedFingerprints []string `json:"rejectedFingerprints,omitempty" yaml:"rejectedFingerprints,omitempty"`
	} `json:"store" yaml:"store"`

	// CRL: revocation list sources
	CRL struct {
		// Files: CRL files (PEM or DER) added to the store
		Files []string `json:"files,omitempty" yaml:"files,omitempty"`
		// Download: fetch CRLs from certificate distribution points
		Download bool `json:"download,omitempty" yaml:"download,omitempty"`
		// CacheSize: maximum number of downloaded CRLs kept
		CacheSize int `json:"cacheSize,omitempty" yaml:"cacheSize,omitempty"`
		// CleanupInterval: seconds between expired entry sweeps
		CleanupInterval int `json:"cleanupIntervalSeconds,omitempty" yaml:"cleanupIntervalSeconds,omitempty"`
		// Timeout: per download timeout in seconds
		Timeout int `json:"timeoutSeconds,omitempty" yaml:"timeoutSeconds,omitempty"`
	} `json:"crl" yaml:"crl"`

	// AIA: remote issuer fetching
	AIA struct {
		Enabled bool `json:"enabled,omitempty" yaml:"enabled,omitempty"`
		Timeout int  `json:"timeoutSeconds,omitempty" yaml:"timeoutSeconds,omitempty"`
	} `json:"aia" yaml:"aia"`

	// OCSP: online status checking
	OCSP struct {
		Enabled bool `json:"enabled,omitempty" yaml:"enabled,omitempty"`
		// Responder overrides the responder URL of every certificate
		Responder string `json:"responder,omitempty" yaml:"responder,omitempty"`
		Timeout   int    `json:"timeoutSeconds,omitempty" yaml:"timeoutSeconds,omitempty"`
	} `json:"ocsp" yaml:"ocsp"`

	// Metrics: Prometheus text exposition output
	Metrics struct {
		TextFile string `json:"textFile,omitempty" yaml:"textFile,omitempty"`
	} `json:"metrics" yaml:"metrics"`
}

// Default returns a configuration holding only the built-in defaults.
func Default() *Config {
	c := &Config{}
	c.Store.Depth = DefaultDepth
	c.Store.SecurityLevel = DefaultSecurityLevel
	c.CRL.CacheSize = DefaultCRLCacheSize
	c.CRL.CleanupInterval = DefaultCleanupInterval
	c.CRL.Timeout = DefaultTimeout
	c.AIA.Timeout = DefaultTimeout
	c.OCSP.Timeout = DefaultTimeout
	return c
}

// detectFormat determines the configuration file format based on file extension.
func detectFormat(path string) format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return formatYAML
	default:
		return formatJSON
	}
}

func unmarshal(data []byte, c *Config, f format) error {
	switch f {
	case formatYAML:
		if err := yaml.Unmarshal(data, c); err != nil {
			return fmt.Errorf("%w: YAML: %w", ErrParseConfig, err)
		}
	default:
		if err := json.Unmarshal(data, c); err != nil {
			return fmt.Errorf("%w: JSON: %w", ErrParseConfig, err)
		}
	}
	return nil
}

// Load reads the configuration file at path on top of [Default].
//
// Parameters:
//   - path: Config file path; when empty the X509_VERIFY_CONFIG_FILE
//     environment variable is consulted, and when that is empty too only
//     defaults are returned. Supported formats: .json, .yaml, .yml
//
// Returns:
//   - *Config: The loaded configuration with defaults applied
//   - error: [ErrReadConfig] or [ErrParseConfig] wrapped with the cause
//
// Non-positive numeric values in the file fall back to their defaults, except
// Depth and SecurityLevel where zero is a meaningful choice. Fields absent
// from the file keep their defaults.
func Load(path string) (*Config, error) {
	c := Default()

	if path == "" {
		path = os.Getenv(EnvConfigFile)
	}
	if path == "" {
		return c, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrReadConfig, err)
	}
	if err := unmarshal(data, c, detectFormat(path)); err != nil {
		return nil, err
	}

	if c.Store.Depth < 0 {
		c.Store.Depth = DefaultDepth
	}
	if c.Store.SecurityLevel < 0 || c.Store.SecurityLevel > 5 {
		c.Store.SecurityLevel = DefaultSecurityLevel
	}
	if c.CRL.CacheSize <= 0 {
		c.CRL.CacheSize = DefaultCRLCacheSize
	}
	if c.CRL.CleanupInterval <= 0 {
		c.CRL.CleanupInterval = DefaultCleanupInterval
	}
	if c.CRL.Timeout <= 0 {
		c.CRL.Timeout = DefaultTimeout
	}
	if c.AIA.Timeout <= 0 {
		c.AIA.Timeout = DefaultTimeout
	}
	if c.OCSP.Timeout <= 0 {
		c.OCSP.Timeout = DefaultTimeout
	}
	return c, nil
}
