// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package mcpserver

import (
	"fmt"
	"os"

	"github.com/H0llyW00dzZ/tls-cert-pinner/src/version"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

var serverName = "TLS Certificate Pinner" // MCP server name
var appVersion = version.Version          // default version

// GetVersion returns the current version of the MCP server.
func GetVersion() string {
	return appVersion
}

// Run starts the MCP server with TLS certificate pinning tools.
// It loads configuration from the MCP_PINNER_CONFIG_FILE environment variable.
func Run(version string) error {
	// Set the version for GetVersion
	appVersion = version

	// Load configuration
	config, err := loadConfig(os.Getenv("MCP_PINNER_CONFIG_FILE"))
	if err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	activeConfig = config

	// Create MCP server
	s := server.NewMCPServer(
		serverName,
		appVersion,
		server.WithToolCapabilities(true),
	)

	// Define chain sorting tool
	sortCertChainTool := mcp.NewTool("sort_cert_chain",
		mcp.WithDescription("Sort an unordered X509 certificate set into a root-first chain using subject/issuer linkage"),
		mcp.WithString("certificates",
			mcp.Required(),
			mcp.Description("Certificate bundle file path or base64-encoded certificate data"),
		),
		mcp.WithString("format",
			mcp.Description("Output format: 'pem', 'tree', or 'table' (default: table)"),
			mcp.DefaultString("table"),
		),
	)

	// Define pin extraction tool
	extractPinTool := mcp.NewTool("extract_pin",
		mcp.WithDescription("Derive a (root, pinned) pair from a certificate bundle and return it as a pin manifest"),
		mcp.WithString("certificates",
			mcp.Required(),
			mcp.Description("Certificate bundle file path or base64-encoded certificate data"),
		),
		mcp.WithBoolean("ignore_expired",
			mcp.Description(fmt.Sprintf("Tolerate the pinned certificate being expired (default: %v)", config.Defaults.IgnoreExpiredPinnedCert)),
			mcp.DefaultBool(config.Defaults.IgnoreExpiredPinnedCert),
		),
	)

	// Define pinned endpoint checking tool
	checkPinnedHostTool := mcp.NewTool("check_pinned_host",
		mcp.WithDescription("Dial an endpoint with a pinned TLS configuration and report whether the pin accepts it"),
		mcp.WithString("manifest",
			mcp.Required(),
			mcp.Description("Pin manifest file path or inline JSON manifest"),
		),
		mcp.WithString("host",
			mcp.Required(),
			mcp.Description("Endpoint to check (HOST or HOST:PORT, default port 443)"),
		),
		mcp.WithNumber("timeout_seconds",
			mcp.Description(fmt.Sprintf("Dial timeout in seconds (default: %d)", config.Defaults.Timeout)),
			mcp.DefaultNumber(float64(config.Defaults.Timeout)),
		),
	)

	// Register tool handlers
	s.AddTool(sortCertChainTool, handleSortCertChain)
	s.AddTool(extractPinTool, handleExtractPin)
	s.AddTool(checkPinnedHostTool, handleCheckPinnedHost)

	// Start the stdio server
	return server.ServeStdio(s)
}
