// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package mcpserver

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	x509certs "github.com/H0llyW00dzZ/tls-cert-pinner/src/internal/x509/certs"
	x509chain "github.com/H0llyW00dzZ/tls-cert-pinner/src/internal/x509/chain"
	x509pin "github.com/H0llyW00dzZ/tls-cert-pinner/src/internal/x509/pin"
)

// readCertInput reads certificate data from a file path or base64-encoded string.
func readCertInput(input string) ([]byte, error) {
	// Try to read as file first
	if fileData, err := os.ReadFile(input); err == nil {
		return fileData, nil
	}
	// Try to decode as base64
	if decoded, err := base64.StdEncoding.DecodeString(input); err == nil {
		return decoded, nil
	}
	return nil, fmt.Errorf("not a valid file path or base64 data")
}

// decodeCertInput reads and decodes one or more certificates from a file path
// or base64-encoded string.
func decodeCertInput(input string) ([]*x509.Certificate, error) {
	data, err := readCertInput(input)
	if err != nil {
		return nil, err
	}
	return x509certs.New().DecodeMultiple(data)
}

// handleSortCertChain sorts an unordered certificate set into a root-first
// chain and renders it in the requested format.
func handleSortCertChain(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	certInput, err := request.RequireString("certificates")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("certificates parameter required: %v", err)), nil
	}
	format := request.GetString("format", "table")

	certs, err := decodeCertInput(certInput)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to decode certificates: %v", err)), nil
	}

	chain, err := x509chain.Sort(certs)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to sort chain: %v", err)), nil
	}

	var output string
	switch format {
	case "pem":
		output = string(x509certs.New().EncodeMultiplePEM(chain))
	case "tree":
		output = x509chain.RenderASCIITree(chain)
	default: // table
		output = x509chain.RenderTable(chain)
	}

	result := fmt.Sprintf("Certificate chain sorted successfully (%d certificate(s), root first):\n\n%s",
		len(chain), output)

	if warnings := expiryWarnings(chain, activeConfig.Defaults.WarnDays); warnings != "" {
		result += "\n" + warnings
	}
	return mcp.NewToolResultText(result), nil
}

// expiryWarnings lists chain members expiring within warnDays.
func expiryWarnings(chain []*x509.Certificate, warnDays int) string {
	if warnDays <= 0 {
		return ""
	}

	deadline := time.Now().AddDate(0, 0, warnDays)
	var b strings.Builder
	for _, cert := range chain {
		if cert.NotAfter.Before(deadline) {
			fmt.Fprintf(&b, "Warning: %s expires %s\n",
				cert.Subject.CommonName, cert.NotAfter.Format("2006-01-02"))
		}
	}
	return b.String()
}

// handleExtractPin derives a (root, pinned) pair from a certificate bundle
// and returns the pin manifest as JSON.
func handleExtractPin(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	certInput, err := request.RequireString("certificates")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("certificates parameter required: %v", err)), nil
	}
	ignoreExpired := request.GetBool("ignore_expired", false)

	certs, err := decodeCertInput(certInput)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to decode certificates: %v", err)), nil
	}

	manifest, err := x509pin.NewManifest(certs, ignoreExpired, "")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to extract pin: %v", err)), nil
	}

	data, err := json.MarshalIndent(manifest, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to encode manifest: %v", err)), nil
	}

	result := fmt.Sprintf("Pin extracted: peer %q anchored to root %q\n\n%s",
		manifest.PinnedSubject(), manifest.RootSubject(), string(data))
	return mcp.NewToolResultText(result), nil
}

// handleCheckPinnedHost dials an endpoint with the manifest's pinned TLS
// configuration and reports the decision.
func handleCheckPinnedHost(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	manifestInput, err := request.RequireString("manifest")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("manifest parameter required: %v", err)), nil
	}
	hostInput, err := request.RequireString("host")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("host parameter required: %v", err)), nil
	}
	timeout := time.Duration(request.GetFloat("timeout_seconds", 10)) * time.Second

	var manifest *x509pin.Manifest
	if strings.HasPrefix(strings.TrimSpace(manifestInput), "{") {
		manifest, err = x509pin.ParseManifest([]byte(manifestInput), false)
	} else {
		manifest, err = x509pin.LoadManifest(manifestInput)
	}
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to load manifest: %v", err)), nil
	}

	opts, err := manifest.TLSOptions()
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to build TLS options: %v", err)), nil
	}

	host := hostInput
	port := 443
	if h, p, splitErr := net.SplitHostPort(hostInput); splitErr == nil {
		if parsed, convErr := strconv.Atoi(p); convErr == nil {
			host, port = h, parsed
		}
	}

	dialer := &net.Dialer{Timeout: timeout}
	if deadline, ok := ctx.Deadline(); ok {
		dialer.Deadline = deadline
	}

	cfg := opts.Config.Clone()
	cfg.ServerName = host

	conn, err := tls.DialWithDialer(dialer, "tcp", fmt.Sprintf("%s:%d", host, port), cfg)
	if err != nil {
		return mcp.NewToolResultText(fmt.Sprintf("Pin REJECTED %s:%d: %v", host, port, err)), nil
	}
	conn.Close()

	return mcp.NewToolResultText(fmt.Sprintf("Pin ACCEPTED %s:%d (peer %q, root %q)",
		host, port, manifest.PinnedSubject(), manifest.RootSubject())), nil
}
