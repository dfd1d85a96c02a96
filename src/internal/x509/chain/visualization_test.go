// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package x509chain_test

import (
	"crypto/x509"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/H0llyW00dzZ/tls-cert-pinner/src/internal/x509/certtest"
	x509chain "github.com/H0llyW00dzZ/tls-cert-pinner/src/internal/x509/chain"
)

func sortedTestChain(t *testing.T) []*x509.Certificate {
	t.Helper()

	root, intermediate, leaf := certtest.NewChain(t)
	chain, err := x509chain.Sort([]*x509.Certificate{leaf.Cert, root.Cert, intermediate.Cert})
	require.NoError(t, err)
	return chain
}

func TestRenderASCIITree(t *testing.T) {
	chain := sortedTestChain(t)

	tree := x509chain.RenderASCIITree(chain)
	lines := strings.Split(strings.TrimRight(tree, "\n"), "\n")
	require.Len(t, lines, 3)

	assert.Contains(t, lines[0], "RootCA")
	assert.Contains(t, lines[0], "Root CA")
	assert.Contains(t, lines[1], "IntCA")
	assert.Contains(t, lines[2], "host.example.com")
	assert.Contains(t, lines[2], "[pinned]", "leaf line must carry the pinned marker")
	assert.NotContains(t, lines[0], "[pinned]")
}

func TestRenderASCIITreeEmpty(t *testing.T) {
	assert.Equal(t, "No certificates in chain", x509chain.RenderASCIITree(nil))
}

func TestRenderTable(t *testing.T) {
	chain := sortedTestChain(t)

	table := x509chain.RenderTable(chain)

	assert.Contains(t, table, "RootCA")
	assert.Contains(t, table, "IntCA")
	assert.Contains(t, table, "host.example.com")
	assert.Contains(t, table, "Intermediate CA")
	assert.Contains(t, table, "256-bit ECDSA")
	assert.Contains(t, table, "yes", "pinned column must mark the leaf row")
}

func TestRenderTableEmpty(t *testing.T) {
	assert.Equal(t, "No certificates to display", x509chain.RenderTable(nil))
}
