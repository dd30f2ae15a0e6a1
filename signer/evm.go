package signer

import (
	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/Bidon15/nbtcbridge/bridge"
)

// EthAddress derives the Ethereum address a validator key recovers to: the
// low 20 bytes of Keccak256 of the uncompressed public key point, matching
// bridge.SignatorySet.EthAddress.
func EthAddress(pub *btcec.PublicKey) common.Address {
	uncompressed := pub.SerializeUncompressed()
	hash := crypto.Keccak256(uncompressed[1:])

	var addr common.Address
	copy(addr[:], hash[12:])
	return addr
}

// SignOutboxEntry signs the sighash-wrapped digest of an outbox entry with
// priv, returning the compact (r,s) signature a `sign` call submits and the
// (v,r,s) triple a relayer would attach to the eventual contract call.
func SignOutboxEntry(priv *btcec.PrivateKey, digest [32]byte) (sig [64]byte, v uint8, r, s [32]byte, err error) {
	sig, err = Sign(priv, digest[:])
	if err != nil {
		return sig, 0, r, s, err
	}

	var pubBytes [33]byte
	copy(pubBytes[:], priv.PubKey().SerializeCompressed())

	v, r, s, err = bridge.ToEthSig(sig, pubBytes, digest)
	return sig, v, r, s, err
}
