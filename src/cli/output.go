// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/renderer"
	"github.com/olekukonko/tablewriter/tw"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	x509chain "github.com/H0llyW00dzZ/x509-trust-verifier/src/internal/x509/chain"
	x509verify "github.com/H0llyW00dzZ/x509-trust-verifier/src/x509/verify"
)

var title = cases.Title(language.English)

// codeTitle turns CERT_HAS_EXPIRED into "Cert Has Expired".
func codeTitle(c x509verify.Code) string {
	return title.String(strings.ReplaceAll(strings.ToLower(c.String()), "_", " "))
}

// writeResult renders res in format.
func writeResult(w io.Writer, format, name string, res *x509verify.Result) error {
	var out string
	switch format {
	case OutputTree:
		out = x509chain.RenderASCIITree(res)
	case OutputTable:
		out = x509chain.RenderTable(res)
	case OutputJSON:
		data, err := x509chain.ToVisualizationJSON(res)
		if err != nil {
			return err
		}
		out = string(data) + "\n"
	default:
		out = renderText(name, res)
	}
	_, err := io.WriteString(w, out)
	return err
}

// renderText prints the chain and the outcome in the style of
// "openssl verify".
func renderText(name string, res *x509verify.Result) string {
	var b strings.Builder
	for i := len(res.Chain) - 1; i >= 0; i-- {
		fmt.Fprintf(&b, "depth=%d %s\n", i, res.Chain[i].Subject())
	}
	for _, f := range res.Overridden {
		fmt.Fprintf(&b, "overridden: error %d at %d depth lookup: %s\n", int(f.Code), f.Depth, f.Code.Description())
	}
	if len(res.Policies) > 0 {
		oids := make([]string, len(res.Policies))
		for i, p := range res.Policies {
			oids[i] = p.String()
		}
		fmt.Fprintf(&b, "policies: %s\n", strings.Join(oids, ", "))
	}

	if res.Valid() {
		fmt.Fprintf(&b, "%s: OK\n", name)
		return b.String()
	}

	if res.Cert != nil {
		fmt.Fprintf(&b, "error %s\n", res.Cert.Subject())
	}
	fmt.Fprintf(&b, "error %d at %d depth lookup: %s\n", int(res.Code), res.Depth, res.Code.Description())
	if res.Cause != nil {
		fmt.Fprintf(&b, "cause: %v\n", res.Cause)
	}
	fmt.Fprintf(&b, "%s: verification failed (%s)\n", name, codeTitle(res.Code))
	return b.String()
}

// renderCodesTable lists every result code as a markdown table.
func renderCodesTable() string {
	var buf strings.Builder
	table := tablewriter.NewTable(&buf,
		tablewriter.WithRenderer(renderer.NewMarkdown(tw.Rendition{Streaming: true})),
	)
	table.Header([]string{"Number", "Name", "Description"})

	codes := x509verify.Codes()
	rows := make([][]string, 0, len(codes))
	for _, c := range codes {
		rows = append(rows, []string{fmt.Sprintf("%d", int(c)), c.String(), c.Description()})
	}
	table.Bulk(rows)
	table.Render()
	return buf.String()
}

// codeData is the JSON form of a result code.
type codeData struct {
	Number      int    `json:"number"`
	Name        string `json:"name"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

func writeCodesJSON(w io.Writer) error {
	codes := x509verify.Codes()
	data := make([]codeData, 0, len(codes))
	for _, c := range codes {
		data = append(data, codeData{
			Number:      int(c),
			Name:        c.String(),
			Title:       codeTitle(c),
			Description: c.Description(),
		})
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}
