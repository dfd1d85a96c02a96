// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package gc_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/H0llyW00dzZ/tls-cert-pinner/src/internal/helper/gc"
)

func TestDefaultPoolRoundTrip(t *testing.T) {
	buf := gc.Default.Get()
	defer func() {
		buf.Reset()
		gc.Default.Put(buf)
	}()

	_, err := buf.WriteString("-----BEGIN CERTIFICATE-----")
	require.NoError(t, err)
	require.NoError(t, buf.WriteByte('\n'))

	n, err := buf.ReadFrom(strings.NewReader("payload"))
	require.NoError(t, err)
	assert.Equal(t, int64(len("payload")), n)

	assert.Equal(t, "-----BEGIN CERTIFICATE-----\npayload", string(buf.Bytes()))
}

func TestBufferReset(t *testing.T) {
	buf := gc.Default.Get()
	defer gc.Default.Put(buf)

	_, err := buf.Write([]byte("stale data"))
	require.NoError(t, err)
	buf.Reset()

	assert.Empty(t, buf.Bytes(), "reset must drop previous contents")
}
