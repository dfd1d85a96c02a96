// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

// Package certtest issues throwaway certificate hierarchies for tests. The
// generated material uses ECDSA P-256 keys and short validity windows; it is
// never suitable for anything but a test process.
package certtest

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"crypto/x509/pkix"
	"math/big"
	"testing"
	"time"
)

// Spec describes a certificate to issue. Zero values get sensible test
// defaults: valid from an hour ago until an hour from now, not a CA.
type Spec struct {
	CommonName string
	IsCA       bool
	NotBefore  time.Time
	NotAfter   time.Time
	DNSNames   []string
}

// Identity is an issued certificate together with its private key, so it can
// sign children or serve a TLS endpoint.
type Identity struct {
	Cert *x509.Certificate
	Key  *ecdsa.PrivateKey
}

// Issue creates a certificate from spec, signed by parent. A nil parent
// produces a self-signed certificate.
func Issue(t *testing.T, spec Spec, parent *Identity) *Identity {
	t.Helper()

	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		t.Fatalf("failed to generate key: %v", err)
	}

	serial, err := rand.Int(rand.Reader, new(big.Int).Lsh(big.NewInt(1), 128))
	if err != nil {
		t.Fatalf("failed to generate serial: %v", err)
	}

	notBefore := spec.NotBefore
	if notBefore.IsZero() {
		notBefore = time.Now().Add(-time.Hour)
	}
	notAfter := spec.NotAfter
	if notAfter.IsZero() {
		notAfter = time.Now().Add(time.Hour)
	}

	template := &x509.Certificate{
		SerialNumber:          serial,
		Subject:               pkix.Name{CommonName: spec.CommonName},
		NotBefore:             notBefore,
		NotAfter:              notAfter,
		BasicConstraintsValid: true,
		IsCA:                  spec.IsCA,
		DNSNames:              spec.DNSNames,
	}
	if spec.IsCA {
		template.KeyUsage = x509.KeyUsageCertSign | x509.KeyUsageCRLSign
	} else {
		template.KeyUsage = x509.KeyUsageDigitalSignature
		template.ExtKeyUsage = []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth}
	}

	signerCert := template
	signerKey := key
	if parent != nil {
		signerCert = parent.Cert
		signerKey = parent.Key
	}

	der, err := x509.CreateCertificate(rand.Reader, template, signerCert, &key.PublicKey, signerKey)
	if err != nil {
		t.Fatalf("failed to create certificate: %v", err)
	}

	cert, err := x509.ParseCertificate(der)
	if err != nil {
		t.Fatalf("failed to parse created certificate: %v", err)
	}

	return &Identity{Cert: cert, Key: key}
}

// NewChain issues a root CA, one intermediate, and a leaf, returning them in
// that order. Common names follow the root/int/leaf naming used across the
// pinner's tests.
func NewChain(t *testing.T) (root, intermediate, leaf *Identity) {
	t.Helper()

	root = Issue(t, Spec{CommonName: "RootCA", IsCA: true}, nil)
	intermediate = Issue(t, Spec{CommonName: "IntCA", IsCA: true}, root)
	leaf = Issue(t, Spec{
		CommonName: "host.example.com",
		DNSNames:   []string{"host.example.com"},
	}, intermediate)
	return root, intermediate, leaf
}
