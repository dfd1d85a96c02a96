// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package x509pin_test

import (
	"crypto/x509"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/H0llyW00dzZ/tls-cert-pinner/src/internal/x509/certtest"
	x509chain "github.com/H0llyW00dzZ/tls-cert-pinner/src/internal/x509/chain"
	x509pin "github.com/H0llyW00dzZ/tls-cert-pinner/src/internal/x509/pin"
)

func testManifest(t *testing.T) (*x509pin.Manifest, *certtest.Identity, *certtest.Identity) {
	t.Helper()

	root, intermediate, leaf := certtest.NewChain(t)
	m, err := x509pin.NewManifest(
		[]*x509.Certificate{leaf.Cert, root.Cert, intermediate.Cert}, true, "host.example.com:443")
	require.NoError(t, err)
	return m, root, leaf
}

func TestNewManifest(t *testing.T) {
	m, _, _ := testManifest(t)

	assert.Equal(t, "host.example.com:443", m.Host)
	assert.True(t, m.IgnoreExpiredPinnedCert)
	assert.False(t, m.CreatedAt.IsZero())
	assert.Equal(t, "RootCA", m.RootSubject())
	assert.Equal(t, "host.example.com", m.PinnedSubject())
	assert.Equal(t, 3, strings.Count(m.ChainPEM, "BEGIN CERTIFICATE"),
		"chain must carry the full sorted set")
}

func TestNewManifestPropagatesSortErrors(t *testing.T) {
	_, intermediate, leaf := certtest.NewChain(t)

	_, err := x509pin.NewManifest([]*x509.Certificate{intermediate.Cert, leaf.Cert}, false, "")
	assert.ErrorIs(t, err, x509chain.ErrNoSelfSignedCertificate)
}

func TestManifestRoundTrip(t *testing.T) {
	m, root, leaf := testManifest(t)

	for _, filename := range []string{"pin.json", "pin.yaml", "pin.yml"} {
		t.Run(filename, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), filename)
			require.NoError(t, m.Save(path))

			loaded, err := x509pin.LoadManifest(path)
			require.NoError(t, err)

			assert.Equal(t, m.Host, loaded.Host)
			assert.Equal(t, m.IgnoreExpiredPinnedCert, loaded.IgnoreExpiredPinnedCert)
			assert.Equal(t, m.ChainPEM, loaded.ChainPEM)

			opts, err := loaded.TLSOptions()
			require.NoError(t, err)
			assert.True(t, opts.Pin.Root.Equal(root.Cert), "reloaded manifest must yield the original root")
			assert.True(t, opts.Pin.Pinned.Equal(leaf.Cert), "reloaded manifest must yield the original pin")
			assert.True(t, opts.Options.IgnoreExpiredPinned)
		})
	}
}

func TestParseManifestSchemaRejection(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{
			name: "missing required fields",
			data: `{"host": "host.example.com"}`,
		},
		{
			name: "empty pem fields",
			data: `{"chainPem": "", "rootPem": "", "pinnedPem": ""}`,
		},
		{
			name: "unknown field",
			data: `{"chainPem": "x", "rootPem": "x", "pinnedPem": "x", "fingerprint": "sha256"}`,
		},
		{
			name: "wrong field type",
			data: `{"chainPem": "x", "rootPem": "x", "pinnedPem": "x", "ignoreExpiredPinnedCert": "yes"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := x509pin.ParseManifest([]byte(tt.data), false)
			assert.ErrorIs(t, err, x509pin.ErrManifestSchema)
		})
	}
}

func TestParseManifestInvalidDocuments(t *testing.T) {
	_, err := x509pin.ParseManifest([]byte("{not json"), false)
	assert.Error(t, err)

	_, err = x509pin.ParseManifest([]byte("\t: not yaml"), true)
	assert.Error(t, err)
}

func TestLoadManifestMissingFile(t *testing.T) {
	_, err := x509pin.LoadManifest(filepath.Join(t.TempDir(), "absent.json"))
	assert.Error(t, err)
}

// A stored chain that was tampered with still parses as a manifest but must
// fail when rebuilt into a TLS configuration.
func TestManifestTLSOptionsBadChain(t *testing.T) {
	m, _, _ := testManifest(t)
	m.ChainPEM = "-----BEGIN CERTIFICATE-----\nnotbase64\n-----END CERTIFICATE-----\n"

	_, err := m.TLSOptions()
	assert.Error(t, err)
}
