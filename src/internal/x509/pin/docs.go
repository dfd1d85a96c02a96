// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

// Package x509pin implements certificate pinning for TLS connections. It
// provides capabilities to:
//   - Derive a (root, pinned) pair from a PEM bundle or remote endpoint.
//   - Run the pin decision procedure as an explicit state machine over
//     handshake validation events.
//   - Build a ready-to-use [crypto/tls] configuration whose peer verification
//     hook accepts a connection only when the peer presents exactly the
//     pinned certificate.
//   - Persist and reload pins as JSON or YAML manifests.
//
// The decision procedure is a step function: the TLS engine driver calls it
// once per certificate encountered in the presented chain, threading a state
// value from call to call. The state is the full verification options and is
// carried unchanged across calls, so the expiry-tolerance flag stays
// available for every certificate in the handshake, not just the first.
package x509pin
