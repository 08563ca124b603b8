// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package x509chain

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"strconv"
	"time"

	x509cert "github.com/H0llyW00dzZ/x509-trust-verifier/src/x509/cert"
)

// ErrNoPeerCertificates indicates a TLS handshake without certificates.
var ErrNoPeerCertificates = errors.New("x509chain: no certificates received from server")

// FetchRemoteChain establishes a TLS connection to the target host and
// returns the certificates presented during the handshake, leaf first.
// Nothing is verified here: the result is meant for an x509verify store,
// with the leaf as the certificate to verify and the rest as untrusted
// intermediates.
func FetchRemoteChain(ctx context.Context, hostname string, port int, timeout time.Duration) ([]*x509cert.Certificate, error) {
	addr := net.JoinHostPort(hostname, strconv.Itoa(port))
	dialer := &tls.Dialer{
		NetDialer: &net.Dialer{Timeout: timeout},
		Config: &tls.Config{
			ServerName: hostname,
			// We just want the cert chain, not to verify
			InsecureSkipVerify: true,
		},
	}

	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", addr, err)
	}
	defer conn.Close()

	// Get the certificate chain from the connection
	peerCerts := conn.(*tls.Conn).ConnectionState().PeerCertificates
	if len(peerCerts) == 0 {
		return nil, ErrNoPeerCertificates
	}

	out := make([]*x509cert.Certificate, 0, len(peerCerts))
	for _, pc := range peerCerts {
		c, err := x509cert.New(pc)
		if err != nil {
			return nil, fmt.Errorf("peer certificate: %w", err)
		}
		out = append(out, c)
	}
	return out, nil
}

// SplitHostPort parses "host:port" or a bare host, defaulting to port 443.
func SplitHostPort(target string) (string, int, error) {
	host, portStr, err := net.SplitHostPort(target)
	if err != nil {
		var addrErr *net.AddrError
		if errors.As(err, &addrErr) && addrErr.Err == "missing port in address" {
			return target, 443, nil
		}
		return "", 0, err
	}
	port, err := strconv.Atoi(portStr)
	if err != nil || port <= 0 || port > 65535 {
		return "", 0, fmt.Errorf("invalid port %q", portStr)
	}
	return host, port, nil
}
