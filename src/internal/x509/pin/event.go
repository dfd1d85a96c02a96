// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package x509pin

import "errors"

// BadCert reasons produced by the engine driver's built-in checks. They pass
// through [Verify] unchanged so a rejected handshake reports the original
// cause.
var (
	// ErrCertExpired indicates the certificate's NotAfter is behind the time
	// of the handshake.
	ErrCertExpired = errors.New("x509pin: certificate expired")

	// ErrCertNotYetValid indicates the certificate's NotBefore is ahead of
	// the time of the handshake. Unlike expiry this is never excused: a pin
	// taken from a certificate that was valid once cannot predate itself.
	ErrCertNotYetValid = errors.New("x509pin: certificate not yet valid")

	// ErrUntrustedIssuer indicates a certificate whose signature does not
	// verify against its issuer in the presented chain or the pinned root.
	ErrUntrustedIssuer = errors.New("x509pin: certificate not signed by a trusted issuer")

	// ErrNoPeerCertificates indicates the peer presented no certificates at all.
	ErrNoPeerCertificates = errors.New("x509pin: no peer certificates presented")
)

// EventKind classifies the outcome of the engine's built-in checks on a
// single certificate in the presented chain.
type EventKind int

const (
	// EventValid reports an intermediate or root certificate that passed
	// the built-in checks.
	EventValid EventKind = iota
	// EventValidPeer reports the final peer (leaf) certificate passing the
	// built-in checks. This is the position where the pin is decided.
	EventValidPeer
	// EventBadCert reports a certificate that failed a built-in check; the
	// event carries the failure reason.
	EventBadCert
	// EventExtension reports a certificate carrying an extension the
	// built-in checks do not recognize.
	EventExtension
)

// String returns the event kind name for diagnostics.
func (k EventKind) String() string {
	switch k {
	case EventValid:
		return "Valid"
	case EventValidPeer:
		return "ValidPeer"
	case EventBadCert:
		return "BadCert"
	case EventExtension:
		return "Extension"
	default:
		return "Unknown"
	}
}

// Event is one handshake validation event: the classification of a single
// certificate by the engine's built-in checks. For EventBadCert the Reason
// field carries the failure cause; it is nil otherwise.
type Event struct {
	Kind   EventKind
	Reason error
}

// ValidEvent reports an intermediate or root certificate passing built-in checks.
func ValidEvent() Event { return Event{Kind: EventValid} }

// ValidPeerEvent reports the peer certificate passing built-in checks.
func ValidPeerEvent() Event { return Event{Kind: EventValidPeer} }

// BadCertEvent reports a failed built-in check with its reason.
func BadCertEvent(reason error) Event { return Event{Kind: EventBadCert, Reason: reason} }

// ExtensionEvent reports an unrecognized certificate extension.
func ExtensionEvent() Event { return Event{Kind: EventExtension} }
