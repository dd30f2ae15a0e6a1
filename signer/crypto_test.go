package signer

import (
	"crypto/sha256"
	"testing"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/stretchr/testify/require"
)

func TestGenerateKeyProducesUsableKeypair(t *testing.T) {
	priv, pub, err := GenerateKey()
	require.NoError(t, err)
	require.NotNil(t, priv)
	require.True(t, priv.PubKey().IsEqual(pub))
}

func TestSignVerifyRoundTrip(t *testing.T) {
	priv, pub, err := GenerateKey()
	require.NoError(t, err)

	digest := sha256.Sum256([]byte("outbox entry digest"))
	sig, err := Sign(priv, digest[:])
	require.NoError(t, err)

	ok, err := Verify(pub, digest[:], sig)
	require.NoError(t, err)
	require.True(t, ok)
}

func TestVerifyRejectsWrongKey(t *testing.T) {
	priv, _, err := GenerateKey()
	require.NoError(t, err)
	_, other, err := GenerateKey()
	require.NoError(t, err)

	digest := sha256.Sum256([]byte("some digest"))
	sig, err := Sign(priv, digest[:])
	require.NoError(t, err)

	ok, err := Verify(other, digest[:], sig)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestVerifyRejectsTamperedDigest(t *testing.T) {
	priv, pub, err := GenerateKey()
	require.NoError(t, err)

	digest := sha256.Sum256([]byte("original"))
	sig, err := Sign(priv, digest[:])
	require.NoError(t, err)

	tampered := sha256.Sum256([]byte("tampered"))
	ok, err := Verify(pub, tampered[:], sig)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestSignRejectsWrongLengthHash(t *testing.T) {
	priv, _, err := GenerateKey()
	require.NoError(t, err)
	_, err = Sign(priv, []byte{1, 2, 3})
	require.Error(t, err)
}

func TestSignRejectsNilKey(t *testing.T) {
	digest := sha256.Sum256([]byte("x"))
	_, err := Sign(nil, digest[:])
	require.Error(t, err)
}

func TestSignProducesLowS(t *testing.T) {
	priv, _, err := GenerateKey()
	require.NoError(t, err)

	digest := sha256.Sum256([]byte("low-s check"))
	sig, err := Sign(priv, digest[:])
	require.NoError(t, err)

	var s btcec.ModNScalar
	overflow := s.SetByteSlice(sig[32:])
	require.False(t, overflow)
	require.False(t, s.IsOverHalfOrder())
}

func TestPublicKeySerializeParseRoundTrip(t *testing.T) {
	_, pub, err := GenerateKey()
	require.NoError(t, err)

	data := SerializePublicKey(pub)
	require.Len(t, data, 33)

	parsed, err := ParsePublicKey(data)
	require.NoError(t, err)
	require.True(t, pub.IsEqual(parsed))
}

func TestParsePublicKeyRejectsEmpty(t *testing.T) {
	_, err := ParsePublicKey(nil)
	require.Error(t, err)
}

func TestPrivateKeySerializeParseRoundTrip(t *testing.T) {
	priv, _, err := GenerateKey()
	require.NoError(t, err)

	data := SerializePrivateKey(priv)
	require.Len(t, data, 32)

	parsed, err := ParsePrivateKey(data)
	require.NoError(t, err)
	require.Equal(t, priv.Serialize(), parsed.Serialize())
}

func TestParsePrivateKeyRejectsWrongLength(t *testing.T) {
	_, err := ParsePrivateKey([]byte{1, 2, 3})
	require.Error(t, err)
}

func TestSerializeNilReturnsNil(t *testing.T) {
	require.Nil(t, SerializePublicKey(nil))
	require.Nil(t, SerializePrivateKey(nil))
}
