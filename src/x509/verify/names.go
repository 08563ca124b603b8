// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package x509verify

import (
	"context"
	"net"
	"net/url"
	"strings"

	x509cert "github.com/H0llyW00dzZ/x509-trust-verifier/src/x509/cert"
)

func (e *engine) checkNames(_ context.Context, i int) bool {
	cert := e.chain[i]
	// Self-issued intermediates are exempt from name constraints (RFC 5280
	// section 6.1.4 step (b)).
	if !cert.IsProxy() && (i == 0 || !cert.IsSelfIssued()) {
		for j := i + 1; j < len(e.chain); j++ {
			nc, err := e.chain[j].NameConstraints()
			if err != nil {
				return e.c.fail(InvalidExtension, j, err)
			}
			if nc == nil {
				continue
			}
			if code := checkConstraints(cert, nc, i == 0); code != OK && e.c.fail(code, i, nil) {
				return true
			}
		}
	}
	if i == 0 {
		return e.checkIdentity(cert)
	}
	return false
}

// constrainedNames collects every name of cert subject to name constraints.
// For the leaf, a hostname-like commonName counts as a DNS name when no DNS
// subjectAltName is present.
func constrainedNames(cert *x509cert.Certificate, leaf bool) []x509cert.GeneralName {
	var names []x509cert.GeneralName
	subject := cert.Subject()
	if !subject.IsEmpty() {
		names = append(names, x509cert.GeneralName{Kind: x509cert.DirectoryName, Value: subject.Raw()})
	}
	for _, email := range subject.EmailAddresses() {
		names = append(names, x509cert.GeneralName{Kind: x509cert.RFC822Name, Value: []byte(email)})
	}

	alt, _ := cert.AltNames()
	hasDNS := false
	for _, gn := range alt {
		if gn.Kind == x509cert.DNSName {
			hasDNS = true
		}
		names = append(names, gn)
	}
	if leaf && !hasDNS {
		if cn := subject.CommonName(); looksLikeHostname(cn) {
			names = append(names, x509cert.GeneralName{Kind: x509cert.DNSName, Value: []byte(cn)})
		}
	}
	return names
}

func looksLikeHostname(s string) bool {
	if !strings.Contains(s, ".") || strings.HasPrefix(s, ".") || strings.HasSuffix(s, ".") {
		return false
	}
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		case r == '-', r == '.', r == '*', r == '_':
		default:
			return false
		}
	}
	return true
}

// checkConstraints matches the names of cert against one nameConstraints
// extension.
func checkConstraints(cert *x509cert.Certificate, nc *x509cert.NameConstraints, leaf bool) Code {
	for _, list := range [][]x509cert.GeneralSubtree{nc.Permitted, nc.Excluded} {
		for _, st := range list {
			if st.Minimum != 0 || st.Maximum != -1 {
				return SubtreeMinMax
			}
		}
	}
	for _, name := range constrainedNames(cert, leaf) {
		if code := matchConstraints(name, nc); code != OK {
			return code
		}
	}
	return OK
}

// matchConstraints checks a name against the permitted then the excluded
// subtrees of its kind.
func matchConstraints(name x509cert.GeneralName, nc *x509cert.NameConstraints) Code {
	permitted, matched := false, false
	for _, st := range nc.Permitted {
		if st.Base.Kind != name.Kind {
			continue
		}
		permitted = true
		ok, code := matchSubtree(name, st.Base)
		if code != OK {
			return code
		}
		if ok {
			matched = true
			break
		}
	}
	if permitted && !matched {
		return PermittedViolation
	}
	for _, st := range nc.Excluded {
		if st.Base.Kind != name.Kind {
			continue
		}
		ok, code := matchSubtree(name, st.Base)
		if code != OK {
			return code
		}
		if ok {
			return ExcludedViolation
		}
	}
	return OK
}

// matchSubtree reports whether name falls within base. Both have the same kind.
func matchSubtree(name, base x509cert.GeneralName) (bool, Code) {
	switch name.Kind {
	case x509cert.DNSName:
		return matchDNS(name.Text(), base.Text()), OK
	case x509cert.RFC822Name:
		return matchEmail(name.Text(), base.Text())
	case x509cert.URIName:
		return matchURI(name.Text(), base.Text())
	case x509cert.IPAddressName:
		return matchIP(name.Value, base.Value)
	case x509cert.DirectoryName:
		n, err := x509cert.ParseName(name.Value)
		if err != nil {
			return false, UnsupportedNameSyntax
		}
		b, err := x509cert.ParseName(base.Value)
		if err != nil {
			return false, UnsupportedConstraintSyntax
		}
		return n.HasPrefix(b), OK
	default:
		return false, UnsupportedConstraintType
	}
}

// matchDNS: a constraint matches the host itself and any subdomain; a leading
// dot matches subdomains only.
func matchDNS(name, constraint string) bool {
	name = strings.ToLower(strings.TrimSuffix(name, "."))
	constraint = strings.ToLower(constraint)
	switch {
	case constraint == "":
		return true
	case strings.HasPrefix(constraint, "."):
		return strings.HasSuffix(name, constraint)
	default:
		return name == constraint || strings.HasSuffix(name, "."+constraint)
	}
}

func matchEmail(name, constraint string) (bool, Code) {
	at := strings.LastIndex(name, "@")
	if at <= 0 || at == len(name)-1 {
		return false, UnsupportedNameSyntax
	}
	local, host := name[:at], name[at+1:]
	if i := strings.LastIndex(constraint, "@"); i >= 0 {
		return local == constraint[:i] && strings.EqualFold(host, constraint[i+1:]), OK
	}
	if strings.HasPrefix(constraint, ".") {
		return strings.HasSuffix(strings.ToLower(host), strings.ToLower(constraint)), OK
	}
	return strings.EqualFold(host, constraint), OK
}

func matchURI(name, constraint string) (bool, Code) {
	u, err := url.Parse(name)
	if err != nil || u.Hostname() == "" {
		return false, UnsupportedNameSyntax
	}
	host := strings.ToLower(u.Hostname())
	if strings.HasPrefix(constraint, ".") {
		return strings.HasSuffix(host, strings.ToLower(constraint)), OK
	}
	return strings.EqualFold(host, constraint), OK
}

func matchIP(ip, constraint []byte) (bool, Code) {
	if len(constraint) != 2*net.IPv4len && len(constraint) != 2*net.IPv6len {
		return false, UnsupportedConstraintSyntax
	}
	if len(ip) != net.IPv4len && len(ip) != net.IPv6len {
		return false, UnsupportedNameSyntax
	}
	if 2*len(ip) != len(constraint) {
		return false, OK
	}
	base, mask := constraint[:len(ip)], constraint[len(ip):]
	for k := range ip {
		if ip[k]&mask[k] != base[k]&mask[k] {
			return false, OK
		}
	}
	return true, OK
}

// checkIdentity matches the configured host, email and IP against the leaf.
func (e *engine) checkIdentity(leaf *x509cert.Certificate) bool {
	if hosts := e.sn.hosts; len(hosts) > 0 {
		matched := false
		for _, h := range hosts {
			if leaf.X509().VerifyHostname(h) == nil {
				matched = true
				break
			}
		}
		if !matched && e.c.fail(HostnameMismatch, 0, nil) {
			return true
		}
	}
	if email := e.sn.email; email != "" && !leafHasEmail(leaf, email) && e.c.fail(EmailMismatch, 0, nil) {
		return true
	}
	if ip := e.sn.ip; ip != nil {
		for _, addr := range leaf.X509().IPAddresses {
			if addr.Equal(ip) {
				return false
			}
		}
		return e.c.fail(IPAddressMismatch, 0, nil)
	}
	return false
}

// leafHasEmail compares the local part exactly and the domain without case.
func leafHasEmail(leaf *x509cert.Certificate, email string) bool {
	candidates := append([]string{}, leaf.X509().EmailAddresses...)
	candidates = append(candidates, leaf.Subject().EmailAddresses()...)
	at := strings.LastIndex(email, "@")
	for _, c := range candidates {
		ca := strings.LastIndex(c, "@")
		if at < 0 || ca < 0 {
			if c == email {
				return true
			}
			continue
		}
		if c[:ca] == email[:at] && strings.EqualFold(c[ca+1:], email[at+1:]) {
			return true
		}
	}
	return false
}
