/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package keys

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/rsa"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/webpki/saturn-go/pkg/doc/json"
)

func TestECRoundTrip(t *testing.T) {
	priv, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)

	jwk, err := WritePublicKey(&priv.PublicKey)
	require.NoError(t, err)

	data, err := jwk.Normalized()
	require.NoError(t, err)

	rd, err := json.Parse(data)
	require.NoError(t, err)

	parsed, err := ParsePublicKey(rd)
	require.NoError(t, err)
	require.True(t, Equal(&priv.PublicKey, parsed))
	require.NoError(t, rd.CheckForUnread())
}

func TestRSARoundTrip(t *testing.T) {
	priv, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	jwk, err := WritePublicKey(&priv.PublicKey)
	require.NoError(t, err)

	data, err := jwk.Normalized()
	require.NoError(t, err)

	rd, err := json.Parse(data)
	require.NoError(t, err)

	parsed, err := ParsePublicKey(rd)
	require.NoError(t, err)
	require.True(t, Equal(&priv.PublicKey, parsed))
}

func TestEqual(t *testing.T) {
	key1, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)

	key2, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)

	require.True(t, Equal(&key1.PublicKey, &key1.PublicKey))
	require.False(t, Equal(&key1.PublicKey, &key2.PublicKey))
	require.False(t, Equal(&key1.PublicKey, nil))
	require.True(t, Equal(nil, nil))
}

func TestHashIsStable(t *testing.T) {
	priv, err := ecdsa.GenerateKey(elliptic.P384(), rand.Reader)
	require.NoError(t, err)

	first, err := Hash(&priv.PublicKey)
	require.NoError(t, err)
	require.Len(t, first, 32)

	second, err := Hash(&priv.PublicKey)
	require.NoError(t, err)
	require.Equal(t, first, second)

	other, err := ecdsa.GenerateKey(elliptic.P384(), rand.Reader)
	require.NoError(t, err)

	otherHash, err := Hash(&other.PublicKey)
	require.NoError(t, err)
	require.NotEqual(t, first, otherHash)
}

func TestParseRejectsUnknownKeyType(t *testing.T) {
	rd, err := json.Parse([]byte(`{"kty":"oct","k":"c2VjcmV0"}`))
	require.NoError(t, err)

	_, err = ParsePublicKey(rd)
	require.Error(t, err)
}
