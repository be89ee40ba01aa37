// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package secret

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVault_RoundTrip(t *testing.T) {
	keyfile := filepath.Join(t.TempDir(), "settings.key")

	v, err := Open(keyfile)
	require.NoError(t, err)

	sealed, err := v.Seal("sk-or-v1-abc123")
	require.NoError(t, err)
	assert.True(t, IsSealed(sealed))
	assert.NotContains(t, sealed, "abc123")

	plain, err := v.Unseal(sealed)
	require.NoError(t, err)
	assert.Equal(t, "sk-or-v1-abc123", plain)
}

func TestVault_KeyfilePersistsAcrossOpens(t *testing.T) {
	keyfile := filepath.Join(t.TempDir(), "settings.key")

	v1, err := Open(keyfile)
	require.NoError(t, err)
	sealed, err := v1.Seal("secret value")
	require.NoError(t, err)

	// A second vault over the same keyfile must open the same envelope.
	v2, err := Open(keyfile)
	require.NoError(t, err)
	plain, err := v2.Unseal(sealed)
	require.NoError(t, err)
	assert.Equal(t, "secret value", plain)
}

func TestVault_PlaintextPassthrough(t *testing.T) {
	v, err := Open(filepath.Join(t.TempDir(), "settings.key"))
	require.NoError(t, err)

	plain, err := v.Unseal("legacy-plaintext-key")
	require.NoError(t, err)
	assert.Equal(t, "legacy-plaintext-key", plain)
}

func TestVault_EmptyValue(t *testing.T) {
	v, err := Open(filepath.Join(t.TempDir(), "settings.key"))
	require.NoError(t, err)

	sealed, err := v.Seal("")
	require.NoError(t, err)
	assert.Empty(t, sealed)
}

func TestVault_TamperDetected(t *testing.T) {
	v, err := Open(filepath.Join(t.TempDir(), "settings.key"))
	require.NoError(t, err)

	sealed, err := v.Seal("payload")
	require.NoError(t, err)

	// Flip a character inside the base64 body.
	body := []byte(sealed)
	last := len(body) - 5
	if body[last] == 'A' {
		body[last] = 'B'
	} else {
		body[last] = 'A'
	}

	_, err = v.Unseal(string(body))
	assert.Error(t, err)
}

func TestVault_MalformedEnvelope(t *testing.T) {
	v, err := Open(filepath.Join(t.TempDir(), "settings.key"))
	require.NoError(t, err)

	_, err = v.Unseal("ENC:!!!not-base64!!!")
	assert.ErrorIs(t, err, ErrInvalidCiphertext)

	_, err = v.Unseal("ENC:QQ==")
	assert.ErrorIs(t, err, ErrInvalidCiphertext)
}
