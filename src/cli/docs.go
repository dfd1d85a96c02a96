// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

// Package cli provides the command-line interface for the TLS certificate pinner.
// It implements a Cobra-based CLI with three subcommands: "pin" derives a pin
// manifest from a certificate bundle or a remote endpoint, "show" renders a
// sorted chain as a table, ASCII tree, or PEM, and "check" dials an endpoint
// with a pinned TLS configuration and reports the decision. The package
// handles file I/O, context cancellation, and integrates with the logger
// package for output and error reporting.
package cli
