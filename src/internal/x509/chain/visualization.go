// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package x509chain

import (
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/rsa"
	"crypto/x509"
	"fmt"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/renderer"
	"github.com/olekukonko/tablewriter/tw"
)

// RenderASCIITree renders a sorted chain as an ASCII tree diagram.
//
// It displays the certificate hierarchy root-first with visual connectors and
// marks the pinned (leaf) certificate.
//
// Parameters:
//   - chain: Root-first chain as produced by [Sort]
//
// Returns:
//   - string: ASCII tree representation of the chain
func RenderASCIITree(chain []*x509.Certificate) string {
	if len(chain) == 0 {
		return "No certificates in chain"
	}

	var result strings.Builder
	for i, cert := range chain {
		connector := "├── "
		if i == len(chain)-1 {
			connector = "└── "
		}

		certInfo := cert.Subject.CommonName
		if role := certificateRole(i, len(chain)); role != "" {
			certInfo += fmt.Sprintf(" (%s)", role)
		}
		if i == len(chain)-1 {
			certInfo += " [pinned]"
		}

		result.WriteString(connector + certInfo + "\n")
	}

	return result.String()
}

// RenderTable renders a sorted chain as a formatted markdown table.
//
// It displays certificate details including role, subject, issuer, validity
// dates, and key size in a tabular format using tablewriter, with the pinned
// certificate marked in the last row.
//
// Parameters:
//   - chain: Root-first chain as produced by [Sort]
//
// Returns:
//   - string: Markdown table representation of the chain
func RenderTable(chain []*x509.Certificate) string {
	if len(chain) == 0 {
		return "No certificates to display"
	}

	var buf strings.Builder
	table := tablewriter.NewTable(&buf,
		tablewriter.WithRenderer(renderer.NewMarkdown(tw.Rendition{Streaming: true})),
	)

	table.Header([]string{"#", "Role", "Subject", "Issuer", "Valid Until", "Key", "Pinned"})

	var rows [][]string
	for i, cert := range chain {
		pinned := ""
		if i == len(chain)-1 {
			pinned = "yes"
		}

		rows = append(rows, []string{
			fmt.Sprintf("%d", i+1),
			certificateRole(i, len(chain)),
			cert.Subject.CommonName,
			cert.Issuer.CommonName,
			cert.NotAfter.Format("2006-01-02"),
			keySizeString(cert),
			pinned,
		})
	}

	table.Bulk(rows)
	table.Render()
	return buf.String()
}

// keySizeString formats the public key algorithm and size for display.
func keySizeString(cert *x509.Certificate) string {
	switch pubKey := cert.PublicKey.(type) {
	case *rsa.PublicKey:
		return fmt.Sprintf("%d-bit RSA", pubKey.Size()*8)
	case *ecdsa.PublicKey:
		return fmt.Sprintf("%d-bit ECDSA", pubKey.Curve.Params().BitSize)
	case ed25519.PublicKey:
		return "Ed25519"
	default:
		return "unknown"
	}
}

// certificateRole determines the role of a certificate in a root-first chain.
//
// Parameters:
//   - index: Zero-based position of the certificate in the chain
//   - total: Chain length
//
// Returns:
//   - string: Role description ("Root CA", "Intermediate CA", or "Leaf")
func certificateRole(index, total int) string {
	switch {
	case total == 1:
		return "Self-Signed"
	case index == 0:
		return "Root CA"
	case index == total-1:
		return "Leaf"
	default:
		return "Intermediate CA"
	}
}
