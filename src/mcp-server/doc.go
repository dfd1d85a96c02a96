// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

// Package mcpserver provides the MCP server implementation for TLS certificate
// pinning. It exposes the chain sorter, pin extraction, and pinned-endpoint
// checking as MCP tools over stdio so agent tooling can derive and verify pins
// without shelling out to the CLI.
package mcpserver
