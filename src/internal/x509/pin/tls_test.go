// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package x509pin_test

import (
	"crypto/tls"
	"crypto/x509"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	x509certs "github.com/H0llyW00dzZ/tls-cert-pinner/src/internal/x509/certs"
	"github.com/H0llyW00dzZ/tls-cert-pinner/src/internal/x509/certtest"
	x509chain "github.com/H0llyW00dzZ/tls-cert-pinner/src/internal/x509/chain"
	x509pin "github.com/H0llyW00dzZ/tls-cert-pinner/src/internal/x509/pin"
)

func bundlePEM(t *testing.T, identities ...*certtest.Identity) []byte {
	t.Helper()

	certs := make([]*x509.Certificate, 0, len(identities))
	for _, id := range identities {
		certs = append(certs, id.Cert)
	}
	return x509certs.New().EncodeMultiplePEM(certs)
}

func rawChain(identities ...*certtest.Identity) [][]byte {
	raw := make([][]byte, 0, len(identities))
	for _, id := range identities {
		raw = append(raw, id.Cert.Raw)
	}
	return raw
}

func TestBuildTLSOptions(t *testing.T) {
	root, intermediate, leaf := certtest.NewChain(t)
	bundle := bundlePEM(t, leaf, root, intermediate)

	opts, err := x509pin.BuildTLSOptions(bundle, false)
	require.NoError(t, err)

	assert.True(t, opts.Pin.Root.Equal(root.Cert))
	assert.True(t, opts.Pin.Pinned.Equal(leaf.Cert))
	assert.True(t, opts.Options.Pinned.Equal(leaf.Cert))
	assert.False(t, opts.Options.IgnoreExpiredPinned)

	require.NotNil(t, opts.Config)
	assert.True(t, opts.Config.InsecureSkipVerify, "built-in verification must be disabled in favor of the hook")
	assert.NotNil(t, opts.Config.VerifyPeerCertificate)
	assert.NotNil(t, opts.Config.RootCAs)
	assert.Equal(t, uint16(tls.VersionTLS12), opts.Config.MinVersion)
}

func TestBuildTLSOptionsDeterministic(t *testing.T) {
	root, intermediate, leaf := certtest.NewChain(t)
	bundle := bundlePEM(t, leaf, root, intermediate)

	first, err := x509pin.BuildTLSOptions(bundle, true)
	require.NoError(t, err)
	second, err := x509pin.BuildTLSOptions(bundle, true)
	require.NoError(t, err)

	assert.True(t, first.Pin.Root.Equal(second.Pin.Root))
	assert.True(t, first.Pin.Pinned.Equal(second.Pin.Pinned))
	assert.Equal(t, first.Options.IgnoreExpiredPinned, second.Options.IgnoreExpiredPinned)
}

func TestBuildTLSOptionsErrors(t *testing.T) {
	_, intermediate, leaf := certtest.NewChain(t)

	t.Run("undecodable input", func(t *testing.T) {
		_, err := x509pin.BuildTLSOptions([]byte("not a certificate"), false)
		assert.Error(t, err)
	})

	t.Run("no self-signed root", func(t *testing.T) {
		_, err := x509pin.BuildTLSOptions(bundlePEM(t, intermediate, leaf), false)
		assert.ErrorIs(t, err, x509chain.ErrNoSelfSignedCertificate)
	})
}

func TestVerifyPeerCertificateAccepts(t *testing.T) {
	root, intermediate, leaf := certtest.NewChain(t)
	opts, err := x509pin.BuildTLSOptions(bundlePEM(t, root, intermediate, leaf), false)
	require.NoError(t, err)

	t.Run("full presented chain", func(t *testing.T) {
		assert.NoError(t, opts.Config.VerifyPeerCertificate(rawChain(leaf, intermediate, root), nil))
	})

	t.Run("root omitted by server", func(t *testing.T) {
		// Common server setup: leaf plus intermediates only. The top-most
		// presented certificate is checked against the pinned root.
		assert.NoError(t, opts.Config.VerifyPeerCertificate(rawChain(leaf, intermediate), nil))
	})
}

func TestVerifyPeerCertificateRejectsImpostor(t *testing.T) {
	root, intermediate, leaf := certtest.NewChain(t)
	opts, err := x509pin.BuildTLSOptions(bundlePEM(t, root, intermediate, leaf), false)
	require.NoError(t, err)

	// Same subject, same issuing CA, different certificate: must not pass.
	impostor := certtest.Issue(t, certtest.Spec{
		CommonName: "host.example.com",
		DNSNames:   []string{"host.example.com"},
	}, intermediate)

	err = opts.Config.VerifyPeerCertificate(rawChain(impostor, intermediate), nil)
	require.Error(t, err)

	var mismatch *x509pin.PeerMismatchError
	assert.ErrorAs(t, err, &mismatch)
}

func TestVerifyPeerCertificateRejectsForeignChain(t *testing.T) {
	root, intermediate, leaf := certtest.NewChain(t)
	opts, err := x509pin.BuildTLSOptions(bundlePEM(t, root, intermediate, leaf), false)
	require.NoError(t, err)

	foreignRoot := certtest.Issue(t, certtest.Spec{CommonName: "OtherRoot", IsCA: true}, nil)
	foreignInt := certtest.Issue(t, certtest.Spec{CommonName: "OtherInt", IsCA: true}, foreignRoot)
	foreignLeaf := certtest.Issue(t, certtest.Spec{CommonName: "host.example.com"}, foreignInt)

	err = opts.Config.VerifyPeerCertificate(rawChain(foreignLeaf, foreignInt), nil)
	assert.ErrorIs(t, err, x509pin.ErrUntrustedIssuer)
}

func TestVerifyPeerCertificateExpiredPinned(t *testing.T) {
	root := certtest.Issue(t, certtest.Spec{CommonName: "RootCA", IsCA: true}, nil)
	intermediate := certtest.Issue(t, certtest.Spec{CommonName: "IntCA", IsCA: true}, root)
	expiredLeaf := certtest.Issue(t, certtest.Spec{
		CommonName: "host.example.com",
		NotBefore:  time.Now().Add(-2 * time.Hour),
		NotAfter:   time.Now().Add(-time.Hour),
	}, intermediate)

	bundle := bundlePEM(t, root, intermediate, expiredLeaf)
	presented := rawChain(expiredLeaf, intermediate)

	t.Run("rejected by default", func(t *testing.T) {
		opts, err := x509pin.BuildTLSOptions(bundle, false)
		require.NoError(t, err)
		assert.ErrorIs(t, opts.Config.VerifyPeerCertificate(presented, nil), x509pin.ErrCertExpired)
	})

	t.Run("accepted with tolerance", func(t *testing.T) {
		opts, err := x509pin.BuildTLSOptions(bundle, true)
		require.NoError(t, err)
		assert.NoError(t, opts.Config.VerifyPeerCertificate(presented, nil))
	})
}

// TestVerifyPeerCertificateNotYetValidPinned: the expiry tolerance excuses a
// pinned certificate that has expired, not one whose validity has not started.
func TestVerifyPeerCertificateNotYetValidPinned(t *testing.T) {
	root := certtest.Issue(t, certtest.Spec{CommonName: "RootCA", IsCA: true}, nil)
	intermediate := certtest.Issue(t, certtest.Spec{CommonName: "IntCA", IsCA: true}, root)
	futureLeaf := certtest.Issue(t, certtest.Spec{
		CommonName: "host.example.com",
		NotBefore:  time.Now().Add(time.Hour),
		NotAfter:   time.Now().Add(2 * time.Hour),
	}, intermediate)

	opts, err := x509pin.BuildTLSOptions(bundlePEM(t, root, intermediate, futureLeaf), true)
	require.NoError(t, err)

	err = opts.Config.VerifyPeerCertificate(rawChain(futureLeaf, intermediate), nil)
	assert.ErrorIs(t, err, x509pin.ErrCertNotYetValid)
}

// TestVerifyPeerCertificateExpiredIntermediate: the tolerance flag excuses the
// pinned certificate only, never other chain members.
func TestVerifyPeerCertificateExpiredIntermediate(t *testing.T) {
	root := certtest.Issue(t, certtest.Spec{CommonName: "RootCA", IsCA: true}, nil)
	expiredInt := certtest.Issue(t, certtest.Spec{
		CommonName: "IntCA",
		IsCA:       true,
		NotBefore:  time.Now().Add(-2 * time.Hour),
		NotAfter:   time.Now().Add(-time.Hour),
	}, root)
	leaf := certtest.Issue(t, certtest.Spec{CommonName: "host.example.com"}, expiredInt)

	opts, err := x509pin.BuildTLSOptions(bundlePEM(t, root, expiredInt, leaf), true)
	require.NoError(t, err)

	err = opts.Config.VerifyPeerCertificate(rawChain(leaf, expiredInt), nil)
	assert.ErrorIs(t, err, x509pin.ErrCertExpired)
}

func TestVerifyPeerCertificateEmptyChain(t *testing.T) {
	root, intermediate, leaf := certtest.NewChain(t)
	opts, err := x509pin.BuildTLSOptions(bundlePEM(t, root, intermediate, leaf), false)
	require.NoError(t, err)

	assert.ErrorIs(t, opts.Config.VerifyPeerCertificate(nil, nil), x509pin.ErrNoPeerCertificates)
}

// pipeHandshake runs a full in-memory TLS handshake between a server holding
// serverIdentity and a client using cfg, returning the client's handshake
// error.
func pipeHandshake(t *testing.T, cfg *tls.Config, serverChain []*certtest.Identity, serverKey *certtest.Identity) error {
	t.Helper()

	clientConn, serverConn := net.Pipe()
	defer clientConn.Close()
	defer serverConn.Close()

	deadline := time.Now().Add(5 * time.Second)
	require.NoError(t, clientConn.SetDeadline(deadline))
	require.NoError(t, serverConn.SetDeadline(deadline))

	serverCert := tls.Certificate{PrivateKey: serverKey.Key}
	for _, id := range serverChain {
		serverCert.Certificate = append(serverCert.Certificate, id.Cert.Raw)
	}

	server := tls.Server(serverConn, &tls.Config{
		Certificates: []tls.Certificate{serverCert},
		MinVersion:   tls.VersionTLS12,
	})
	client := tls.Client(clientConn, cfg)

	serverErr := make(chan error, 1)
	go func() { serverErr <- server.Handshake() }()

	err := client.Handshake()
	<-serverErr
	return err
}

func TestPinnedHandshake(t *testing.T) {
	root, intermediate, leaf := certtest.NewChain(t)
	opts, err := x509pin.BuildTLSOptions(bundlePEM(t, root, intermediate, leaf), false)
	require.NoError(t, err)

	cfg := opts.Config.Clone()
	cfg.ServerName = "host.example.com"

	t.Run("pinned server accepted", func(t *testing.T) {
		err := pipeHandshake(t, cfg, []*certtest.Identity{leaf, intermediate}, leaf)
		assert.NoError(t, err)
	})

	t.Run("rotated server rejected", func(t *testing.T) {
		rotated := certtest.Issue(t, certtest.Spec{
			CommonName: "host.example.com",
			DNSNames:   []string{"host.example.com"},
		}, intermediate)

		err := pipeHandshake(t, cfg, []*certtest.Identity{rotated, intermediate}, rotated)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "differs from pinned")
	})
}
