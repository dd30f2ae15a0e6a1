// Package signer provides the off-chain half of the bridge's signing flow:
// a local secp256k1 keystore and the primitives a validator uses to answer
// a bridge `sign` call (low-S ECDSA over the message digest the bridge
// core hands out), and recovery-ID search to turn that signature into the
// (v,r,s) triple the destination chain's contract can verify.
package signer

import (
	"fmt"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/ecdsa"
)

// GenerateKey creates a new secp256k1 validator keypair.
func GenerateKey() (*btcec.PrivateKey, *btcec.PublicKey, error) {
	priv, err := btcec.NewPrivateKey()
	if err != nil {
		return nil, nil, fmt.Errorf("generate validator key: %w", err)
	}
	return priv, priv.PubKey(), nil
}

// Sign produces a low-S normalized compact (r,s) signature over a 32-byte
// digest, the form the bridge core's ThresholdSig.Sign verifies against.
func Sign(priv *btcec.PrivateKey, hash []byte) ([64]byte, error) {
	var out [64]byte
	if len(hash) != 32 {
		return out, fmt.Errorf("hash must be 32 bytes, got %d", len(hash))
	}
	if priv == nil {
		return out, fmt.Errorf("private key cannot be nil")
	}

	sig := ecdsa.Sign(priv, hash)
	r, s := extractRS(sig.Serialize())
	if s.IsOverHalfOrder() {
		s.Negate()
	}

	r.PutBytesUnchecked(out[:32])
	s.PutBytesUnchecked(out[32:])
	return out, nil
}

// Verify checks a compact (r,s) signature against a public key and digest.
func Verify(pub *btcec.PublicKey, hash []byte, sig [64]byte) (bool, error) {
	if pub == nil {
		return false, fmt.Errorf("public key cannot be nil")
	}
	if len(hash) != 32 {
		return false, fmt.Errorf("hash must be 32 bytes, got %d", len(hash))
	}

	var r, s btcec.ModNScalar
	if overflow := r.SetByteSlice(sig[:32]); overflow {
		return false, fmt.Errorf("signature r overflows")
	}
	if overflow := s.SetByteSlice(sig[32:]); overflow {
		return false, fmt.Errorf("signature s overflows")
	}
	if r.IsZero() || s.IsZero() {
		return false, fmt.Errorf("invalid signature: r or s is zero")
	}

	return ecdsa.NewSignature(&r, &s).Verify(hash, pub), nil
}

// SerializePublicKey returns the compressed 33-byte encoding of pub.
func SerializePublicKey(pub *btcec.PublicKey) []byte {
	if pub == nil {
		return nil
	}
	return pub.SerializeCompressed()
}

// ParsePublicKey parses a compressed or uncompressed public key.
func ParsePublicKey(data []byte) (*btcec.PublicKey, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("public key data cannot be empty")
	}
	pub, err := btcec.ParsePubKey(data)
	if err != nil {
		return nil, fmt.Errorf("parse public key: %w", err)
	}
	return pub, nil
}

// ParsePrivateKey parses a raw 32-byte private key scalar.
func ParsePrivateKey(data []byte) (*btcec.PrivateKey, error) {
	if len(data) != 32 {
		return nil, fmt.Errorf("private key must be 32 bytes, got %d", len(data))
	}
	priv, _ := btcec.PrivKeyFromBytes(data)
	if priv == nil {
		return nil, fmt.Errorf("failed to parse private key")
	}
	return priv, nil
}

// SerializePrivateKey returns the raw 32-byte scalar of priv.
func SerializePrivateKey(priv *btcec.PrivateKey) []byte {
	if priv == nil {
		return nil
	}
	return priv.Serialize()
}

// extractRS pulls R and S out of a DER-encoded ECDSA signature.
func extractRS(der []byte) (*btcec.ModNScalar, *btcec.ModNScalar) {
	offset := 2 // sequence tag + length byte

	offset++ // R integer tag
	rLen := int(der[offset])
	offset++
	rBytes := der[offset : offset+rLen]
	offset += rLen

	offset++ // S integer tag
	sLen := int(der[offset])
	offset++
	sBytes := der[offset : offset+sLen]

	if len(rBytes) == 33 && rBytes[0] == 0 {
		rBytes = rBytes[1:]
	}
	if len(sBytes) == 33 && sBytes[0] == 0 {
		sBytes = sBytes[1:]
	}

	rPadded := make([]byte, 32)
	sPadded := make([]byte, 32)
	copy(rPadded[32-len(rBytes):], rBytes)
	copy(sPadded[32-len(sBytes):], sBytes)

	r := new(btcec.ModNScalar)
	s := new(btcec.ModNScalar)
	r.SetByteSlice(rPadded)
	s.SetByteSlice(sPadded)
	return r, s
}
