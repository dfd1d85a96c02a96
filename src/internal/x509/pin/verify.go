// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package x509pin

import (
	"crypto/x509"
	"errors"
	"fmt"
)

// Options is the verification state threaded through one handshake's sequence
// of decision calls. It is created once per connection setup and never
// mutated; each handshake owns an independent copy, so concurrent handshakes
// need no locking.
//
// The full Options value is the state after every decision, never a bare
// certificate. An earlier design narrowed the state to the pinned certificate
// after the first Valid outcome, which silently dropped IgnoreExpiredPinned
// for the rest of the handshake; see the compatibility test for the
// difference in behavior.
type Options struct {
	// Pinned is the exact peer certificate the remote endpoint must present.
	Pinned *x509.Certificate

	// IgnoreExpiredPinned tolerates the pinned certificate itself being
	// expired. No other certificate, and no other failure, is excused.
	IgnoreExpiredPinned bool
}

// PeerMismatchError is the decisive pinning rejection: the peer presented a
// structurally different leaf certificate than the pinned one. It is a
// handshake outcome, not a configuration error.
type PeerMismatchError struct {
	PresentedSubject string
	PinnedSubject    string
}

func (e *PeerMismatchError) Error() string {
	return fmt.Sprintf("x509pin: peer certificate %q differs from pinned certificate %q",
		e.PresentedSubject, e.PinnedSubject)
}

// Status is the decision for one certificate in the presented chain.
type Status int

const (
	// StatusValid accepts the certificate; the engine proceeds to the next
	// one or finalizes the handshake.
	StatusValid Status = iota
	// StatusUnknown defers to further built-in checks without deciding.
	StatusUnknown
	// StatusFail rejects the handshake. Terminal.
	StatusFail
)

// String returns the status name for diagnostics.
func (s Status) String() string {
	switch s {
	case StatusValid:
		return "Valid"
	case StatusUnknown:
		return "Unknown"
	case StatusFail:
		return "Fail"
	default:
		return "Invalid"
	}
}

// Outcome is the result of one decision call: the status, the state to thread
// into the next call (meaningful for Valid and Unknown), and the rejection
// reason (meaningful for Fail).
type Outcome struct {
	Status Status
	State  Options
	Reason error
}

// Verify is the pin decision procedure, called once per certificate
// encountered while validating the peer's presented chain.
//
// The match order is load-bearing: the pinned-equality check on ValidPeer
// precedes the generic mismatch rejection, and the excused-expiry check
// precedes the generic BadCert rejection. Reordering either pair changes the
// accepted set.
//
// Parameters:
//   - cert: Certificate currently being examined
//   - event: Classification of cert by the engine's built-in checks
//   - state: Verification state from the previous call (or the initial Options)
//
// Returns:
//   - Outcome: Valid/Unknown with the state for the next call, or Fail with
//     the terminal rejection reason
func Verify(cert *x509.Certificate, event Event, state Options) Outcome {
	switch {
	case event.Kind == EventValidPeer && cert.Equal(state.Pinned):
		return Outcome{Status: StatusValid, State: state}

	case event.Kind == EventBadCert &&
		errors.Is(event.Reason, ErrCertExpired) &&
		cert.Equal(state.Pinned) &&
		state.IgnoreExpiredPinned:
		// Expiry of the pinned certificate itself is tolerated only when
		// explicitly allowed.
		return Outcome{Status: StatusValid, State: state}

	case event.Kind == EventExtension:
		return Outcome{Status: StatusUnknown, State: state}

	case event.Kind == EventBadCert:
		return Outcome{Status: StatusFail, Reason: event.Reason}

	case event.Kind == EventValid:
		return Outcome{Status: StatusValid, State: state}

	default: // EventValidPeer with a certificate that is not the pinned one
		return Outcome{Status: StatusFail, Reason: &PeerMismatchError{
			PresentedSubject: cert.Subject.String(),
			PinnedSubject:    state.Pinned.Subject.String(),
		}}
	}
}
