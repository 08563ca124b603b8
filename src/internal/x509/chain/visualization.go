// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package x509chain

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/cloudflare/cfssl/helpers"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/renderer"
	"github.com/olekukonko/tablewriter/tw"

	x509cert "github.com/H0llyW00dzZ/x509-trust-verifier/src/x509/cert"
	x509verify "github.com/H0llyW00dzZ/x509-trust-verifier/src/x509/verify"
)

// Certificate status labels used by the renderers.
const (
	StatusOK         = "ok"
	StatusOverridden = "overridden"
)

// certStatus returns the status label of the certificate at index.
func certStatus(res *x509verify.Result, index int) string {
	if !res.Valid() && res.Depth == index {
		return res.Code.String()
	}
	for _, f := range res.Overridden {
		if f.Depth == index {
			return StatusOverridden + ": " + f.Code.String()
		}
	}
	return StatusOK
}

// RenderASCIITree renders the verified chain as an ASCII tree diagram, root
// first, with a status mark per certificate.
//
// Parameters:
//   - res: The verification result
//
// Returns:
//   - string: ASCII tree representation of the certificate chain
func RenderASCIITree(res *x509verify.Result) string {
	if len(res.Chain) == 0 {
		return "No certificates in chain"
	}

	var result strings.Builder
	last := len(res.Chain) - 1
	for level, i := 0, last; i >= 0; level, i = level+1, i-1 {
		cert := res.Chain[i]

		connector := "└── "
		if level == 0 {
			connector = ""
		}

		statusIcon := "✓"
		if status := certStatus(res, i); status != StatusOK {
			statusIcon = "✗"
			if strings.HasPrefix(status, StatusOverridden) {
				statusIcon = "!"
			}
		}

		certInfo := fmt.Sprintf("[%s] %s", statusIcon, displayName(cert))
		if role := certificateRole(res, i); role != "" {
			certInfo += fmt.Sprintf(" (%s)", role)
		}

		result.WriteString(strings.Repeat("    ", max(level-1, 0)) + connector + certInfo + "\n")
	}

	return result.String()
}

// RenderTable renders the verified chain as a formatted markdown table.
//
// It displays certificate details including role, subject, issuer, validity dates,
// key size, and status in a tabular format using tablewriter.
//
// Parameters:
//   - res: The verification result
//
// Returns:
//   - string: Markdown table representation of the certificate chain
func RenderTable(res *x509verify.Result) string {
	if len(res.Chain) == 0 {
		return "No certificates to display"
	}

	var buf strings.Builder
	table := tablewriter.NewTable(&buf,
		tablewriter.WithRenderer(renderer.NewMarkdown(tw.Rendition{Streaming: true})),
	)

	table.Header([]string{"Depth", "Role", "Subject", "Issuer", "Valid Until", "Key", "Status"})

	var rows [][]string
	for i, cert := range res.Chain {
		rows = append(rows, []string{
			fmt.Sprintf("%d", i),
			certificateRole(res, i),
			displayName(cert),
			cert.Issuer().String(),
			cert.NotAfter().Format("2006-01-02"),
			keyDescription(cert),
			certStatus(res, i),
		})
	}

	table.Bulk(rows)
	table.Render()
	return buf.String()
}

// CertificateData is the JSON form of one chain element.
type CertificateData struct {
	Depth              int       `json:"depth"`
	Role               string    `json:"role"`
	Subject            string    `json:"subject"`
	Issuer             string    `json:"issuer"`
	SerialNumber       string    `json:"serialNumber"`
	Fingerprint        string    `json:"sha256Fingerprint"`
	SignatureAlgorithm string    `json:"signatureAlgorithm"`
	KeyBits            int       `json:"keyBits"`
	NotBefore          time.Time `json:"notBefore"`
	NotAfter           time.Time `json:"notAfter"`
	Status             string    `json:"status"`
}

// FailureData is the JSON form of a failure.
type FailureData struct {
	Code        string `json:"code"`
	Number      int    `json:"number"`
	Description string `json:"description"`
	Depth       int    `json:"depth"`
	Cause       string `json:"cause,omitempty"`
}

// ResultData is the JSON form of a verification result.
type ResultData struct {
	Timestamp    string            `json:"timestamp"`
	Valid        bool              `json:"valid"`
	Error        *FailureData      `json:"error,omitempty"`
	ChainLength  int               `json:"chainLength"`
	Certificates []CertificateData `json:"certificates"`
	Overridden   []FailureData     `json:"overridden,omitempty"`
	Policies     []string          `json:"policies,omitempty"`
}

func failureData(code x509verify.Code, depth int, cause error) *FailureData {
	f := &FailureData{
		Code:        code.String(),
		Number:      int(code),
		Description: code.Description(),
		Depth:       depth,
	}
	if cause != nil {
		f.Cause = cause.Error()
	}
	return f
}

// NewResultData converts a result into its JSON form.
func NewResultData(res *x509verify.Result, now time.Time) ResultData {
	data := ResultData{
		Timestamp:    now.UTC().Format(time.RFC3339),
		Valid:        res.Valid(),
		ChainLength:  len(res.Chain),
		Certificates: make([]CertificateData, len(res.Chain)),
	}
	if !res.Valid() {
		data.Error = failureData(res.Code, res.Depth, res.Cause)
	}
	for i, cert := range res.Chain {
		data.Certificates[i] = CertificateData{
			Depth:              i,
			Role:               certificateRole(res, i),
			Subject:            cert.Subject().String(),
			Issuer:             cert.Issuer().String(),
			SerialNumber:       cert.SerialNumber().String(),
			Fingerprint:        cert.Fingerprint().String(),
			SignatureAlgorithm: helpers.SignatureString(cert.SignatureAlgorithm()),
			KeyBits:            helpers.KeyLength(cert.PublicKey()),
			NotBefore:          cert.NotBefore(),
			NotAfter:           cert.NotAfter(),
			Status:             certStatus(res, i),
		}
	}
	for _, f := range res.Overridden {
		data.Overridden = append(data.Overridden, *failureData(f.Code, f.Depth, f.Err))
	}
	for _, p := range res.Policies {
		data.Policies = append(data.Policies, p.String())
	}
	return data
}

// ToVisualizationJSON converts the result to indented JSON for external tools.
//
// Returns:
//   - []byte: JSON representation of the result
//   - error: Error if JSON marshaling fails
func ToVisualizationJSON(res *x509verify.Result) ([]byte, error) {
	return json.MarshalIndent(NewResultData(res, time.Now()), "", "  ")
}

// certificateRole determines the role of a certificate in the chain.
func certificateRole(res *x509verify.Result, index int) string {
	total := len(res.Chain)
	cert := res.Chain[index]
	switch {
	case total == 1 && cert.IsSelfIssued():
		return "Self-Signed Certificate"
	case index == 0 && cert.IsProxy():
		return "Proxy Certificate"
	case index == 0:
		return "End-Entity Certificate"
	case index == total-1 && cert.IsSelfIssued():
		return "Root CA Certificate"
	case index == total-1 && res.Valid():
		return "Trust Anchor"
	default:
		return "Intermediate CA Certificate"
	}
}

// displayName prefers the common name and falls back to the full subject.
func displayName(cert *x509cert.Certificate) string {
	if cn := cert.X509().Subject.CommonName; cn != "" {
		return cn
	}
	return cert.Subject().String()
}

func keyDescription(cert *x509cert.Certificate) string {
	bits := helpers.KeyLength(cert.PublicKey())
	algo := cert.X509().PublicKeyAlgorithm.String()
	if bits <= 0 {
		return algo
	}
	return fmt.Sprintf("%d-bit %s", bits, algo)
}
