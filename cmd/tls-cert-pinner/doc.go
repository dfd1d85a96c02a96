// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

// Command tls-cert-pinner derives, inspects, and checks TLS certificate pins
// from the command line. See the cli package for the available subcommands.
package main
