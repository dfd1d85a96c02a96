// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package x509chain

import (
	"bytes"
	"crypto/x509"
	"errors"
	"fmt"
)

// ErrNoSelfSignedCertificate indicates that the input set contains no
// self-signed certificate to anchor the chain.
var ErrNoSelfSignedCertificate = errors.New("x509chain: no self-signed certificate in input set")

// ErrEmptyInput indicates that Sort was called with no certificates.
var ErrEmptyInput = errors.New("x509chain: empty certificate set")

// BrokenChainError reports a dangling link: no certificate in the remaining
// set was issued by the current chain tail.
type BrokenChainError struct {
	// MissingIssuerFor is the distinguished name of the subject that
	// issued no remaining certificate.
	MissingIssuerFor string
}

func (e *BrokenChainError) Error() string {
	return fmt.Sprintf("x509chain: broken chain, no certificate issued by %q", e.MissingIssuerFor)
}

// AmbiguousChainError reports that two or more certificates continue the same
// link. Sorting never picks one arbitrarily; a subject with multiple issued
// candidates at one position is treated as hostile input.
type AmbiguousChainError struct {
	// Subject is the distinguished name whose issued certificates are ambiguous.
	Subject string
}

func (e *AmbiguousChainError) Error() string {
	return fmt.Sprintf("x509chain: ambiguous chain, multiple certificates issued by %q", e.Subject)
}

// IsSelfSigned checks if a certificate is self-signed.
//
// It verifies the certificate's signature against itself.
//
// Parameters:
//   - cert: Certificate to check
//
// Returns:
//   - bool: true if self-signed, false otherwise
func IsSelfSigned(cert *x509.Certificate) bool {
	return cert.CheckSignatureFrom(cert) == nil
}

// selectRoot returns the first self-signed certificate in input order.
//
// The tie-break is deliberate: when a set carries more than one self-signed
// certificate, the first one encountered wins, so repeated calls over the
// same input always anchor the same chain. Callers that need a different
// root must filter the input themselves.
func selectRoot(certs []*x509.Certificate) (int, error) {
	for i, cert := range certs {
		if IsSelfSigned(cert) {
			return i, nil
		}
	}
	return -1, ErrNoSelfSignedCertificate
}

// issuedBy reports whether child names parent as its issuer.
//
// The comparison is on the raw DER-encoded distinguished names, which keeps
// attribute ordering and string encoding significant instead of relying on a
// lossy textual rendering.
func issuedBy(child, parent *x509.Certificate) bool {
	return bytes.Equal(child.RawIssuer, parent.RawSubject)
}

// Sort orders an unordered certificate set into a root-first chain.
//
// The set must describe a single trust path: a self-signed root, zero or
// more intermediates, and one leaf, with no duplicates. Starting from the
// root, Sort repeatedly looks for the unique remaining certificate issued by
// the current chain tail and appends it.
//
// A set carrying more than one self-signed certificate is anchored at the
// first one in input order; the others are competing trust anchors, not chain
// members, and are left out of the walk. Without that exclusion a second root
// sharing the anchor's distinguished name would collide with the real
// intermediate as a link candidate.
//
// Parameters:
//   - certs: Unordered certificate set (not mutated)
//
// Returns:
//   - []*x509.Certificate: Root-first chain of the selected root and every
//     non-self-signed input
//   - error: ErrEmptyInput, ErrNoSelfSignedCertificate, *BrokenChainError if a
//     link is missing, or *AmbiguousChainError if a link has multiple candidates
//
// Complexity is O(n²) in chain length, which is fine for real chains
// (root, a few intermediates, one leaf).
func Sort(certs []*x509.Certificate) ([]*x509.Certificate, error) {
	if len(certs) == 0 {
		return nil, ErrEmptyInput
	}

	rootIdx, err := selectRoot(certs)
	if err != nil {
		return nil, err
	}

	chain := make([]*x509.Certificate, 0, len(certs))
	chain = append(chain, certs[rootIdx])

	remaining := make([]*x509.Certificate, 0, len(certs)-1)
	for i, cert := range certs {
		if i == rootIdx || IsSelfSigned(cert) {
			continue
		}
		remaining = append(remaining, cert)
	}

	for len(remaining) > 0 {
		tail := chain[len(chain)-1]

		match := -1
		for i, candidate := range remaining {
			if !issuedBy(candidate, tail) {
				continue
			}
			if match >= 0 {
				return nil, &AmbiguousChainError{Subject: tail.Subject.String()}
			}
			match = i
		}
		if match < 0 {
			return nil, &BrokenChainError{MissingIssuerFor: tail.Subject.String()}
		}

		chain = append(chain, remaining[match])
		remaining = append(remaining[:match], remaining[match+1:]...)
	}

	return chain, nil
}

// Pin is the trust anchor configuration for a pinned connection: the root
// certificate to trust and the exact peer certificate the remote endpoint
// must present.
type Pin struct {
	Root   *x509.Certificate
	Pinned *x509.Certificate
}

// ExtractPin derives the (root, pinned) pair from an unordered certificate set.
//
// The root is the anchor Sort selects, with the same first-in-input-order
// tie-break, so both always agree. The pinned certificate is the leaf of the
// sorted chain.
//
// Parameters:
//   - certs: Unordered certificate set (not mutated)
//
// Returns:
//   - *Pin: Root and pinned certificates
//   - error: Any error Sort reports for the same input
func ExtractPin(certs []*x509.Certificate) (*Pin, error) {
	chain, err := Sort(certs)
	if err != nil {
		return nil, err
	}
	return PinFromChain(chain)
}

// PinFromChain derives the (root, pinned) pair from an already-sorted chain:
// the root is the first element and the pinned certificate the last. Callers
// holding Sort's output avoid sorting twice.
func PinFromChain(chain []*x509.Certificate) (*Pin, error) {
	if len(chain) == 0 {
		return nil, ErrEmptyInput
	}
	return &Pin{
		Root:   chain[0],
		Pinned: chain[len(chain)-1],
	}, nil
}
