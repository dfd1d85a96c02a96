// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package x509pin

import (
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"time"

	x509certs "github.com/H0llyW00dzZ/tls-cert-pinner/src/internal/x509/certs"
	x509chain "github.com/H0llyW00dzZ/tls-cert-pinner/src/internal/x509/chain"
)

// TLSOptions bundles everything a caller needs to dial a pinned endpoint: the
// derived pin, the initial verification state, and a [tls.Config] with the
// decision hook registered.
type TLSOptions struct {
	// Pin is the (root, pinned) pair derived from the input set.
	Pin *x509chain.Pin

	// Options is the initial verification state registered with the hook.
	Options Options

	// Config is ready to use for outbound connections. Each handshake runs
	// the decision procedure over its own copy of the state.
	Config *tls.Config
}

// BuildTLSOptions derives a pin from PEM (or DER) encoded certificate bytes
// and returns a ready-to-use TLS configuration.
//
// Sorting and pin extraction happen here, synchronously: a set that does not
// form a single unambiguous chain fails now and never reaches a connection
// attempt. Building twice from the same bytes and flag yields equal pins.
//
// Parameters:
//   - data: Certificate bundle (root, any intermediates, one leaf; any order)
//   - ignoreExpiredPinned: Tolerate the pinned certificate being expired
//
// Returns:
//   - *TLSOptions: Pin plus configured [tls.Config]
//   - error: Decoding or chain-sorting failure
func BuildTLSOptions(data []byte, ignoreExpiredPinned bool) (*TLSOptions, error) {
	certs, err := x509certs.New().DecodeMultiple(data)
	if err != nil {
		return nil, err
	}
	return NewTLSOptions(certs, ignoreExpiredPinned)
}

// NewTLSOptions derives a pin from already-decoded certificates and returns a
// ready-to-use TLS configuration. See [BuildTLSOptions].
func NewTLSOptions(certs []*x509.Certificate, ignoreExpiredPinned bool) (*TLSOptions, error) {
	p, err := x509chain.ExtractPin(certs)
	if err != nil {
		return nil, err
	}

	roots := x509.NewCertPool()
	roots.AddCert(p.Root)

	eng := &engine{
		state: Options{Pinned: p.Pinned, IgnoreExpiredPinned: ignoreExpiredPinned},
		root:  p.Root,
	}

	return &TLSOptions{
		Pin:     p,
		Options: eng.state,
		Config: &tls.Config{
			RootCAs:    roots,
			MinVersion: tls.VersionTLS12,
			// The pin decision procedure owns verification; the built-in
			// chain building would reject pins whose root is absent from
			// the presented chain before the hook ever ran.
			InsecureSkipVerify:    true,
			VerifyPeerCertificate: eng.verifyPeerCertificate,
		},
	}, nil
}

// engine drives the decision procedure from [crypto/tls]'s per-handshake
// verification callback. It owns the immutable initial state and the pinned
// root; every handshake threads its own copy of the state, so a single engine
// serves any number of concurrent connections.
type engine struct {
	state Options
	root  *x509.Certificate
}

// verifyPeerCertificate implements the [tls.Config.VerifyPeerCertificate]
// contract. It examines the presented chain from the root side down to the
// peer certificate, classifies each certificate into validation events, and
// feeds them through [Verify]. The first Fail outcome aborts the handshake
// with its reason.
func (e *engine) verifyPeerCertificate(rawCerts [][]byte, _ [][]*x509.Certificate) error {
	if len(rawCerts) == 0 {
		return ErrNoPeerCertificates
	}

	presented := make([]*x509.Certificate, 0, len(rawCerts))
	for _, raw := range rawCerts {
		cert, err := x509.ParseCertificate(raw)
		if err != nil {
			return fmt.Errorf("x509pin: failed to parse peer certificate: %w", err)
		}
		presented = append(presented, cert)
	}

	// TLS presents the leaf first; examine root-most first so the peer
	// certificate is the last one decided, matching the engine contract.
	state := e.state
	for i := len(presented) - 1; i >= 0; i-- {
		cert := presented[i]
		for _, event := range e.classify(cert, i, presented) {
			outcome := Verify(cert, event, state)
			if outcome.Status == StatusFail {
				return outcome.Reason
			}
			state = outcome.State
		}
	}

	return nil
}

// classify runs the built-in checks on one certificate and returns the
// resulting validation events in order: one Extension event per unrecognized
// critical extension, then exactly one terminal classification (BadCert,
// ValidPeer, or Valid).
//
// Index 0 is the peer certificate. The issuer for the signature check is the
// next certificate up the presented chain, or the pinned root for the
// top-most certificate when the server did not present the root itself.
func (e *engine) classify(cert *x509.Certificate, idx int, presented []*x509.Certificate) []Event {
	var events []Event
	for range cert.UnhandledCriticalExtensions {
		events = append(events, ExtensionEvent())
	}

	now := time.Now()
	if now.Before(cert.NotBefore) {
		return append(events, BadCertEvent(ErrCertNotYetValid))
	}
	if now.After(cert.NotAfter) {
		return append(events, BadCertEvent(ErrCertExpired))
	}

	if !cert.Equal(e.root) {
		issuer := e.root
		if idx+1 < len(presented) {
			issuer = presented[idx+1]
		}
		if err := cert.CheckSignatureFrom(issuer); err != nil {
			return append(events, BadCertEvent(fmt.Errorf("%w: %v", ErrUntrustedIssuer, err)))
		}
	}

	if idx == 0 {
		return append(events, ValidPeerEvent())
	}
	return append(events, ValidEvent())
}
