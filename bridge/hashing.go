package bridge

import (
	errorsmod "cosmossdk.io/errors"
	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/ecdsa"
	"github.com/ethereum/go-ethereum/crypto"
)

var ethSignedMessagePrefix = []byte("\x19Ethereum Signed Message:\n32")

// Sighash wraps a raw 32-byte digest in the EIP-191 "personal_sign" envelope
// the bridge contract expects every submitted signature to verify against.
func Sighash(inner [32]byte) [32]byte {
	return crypto.Keccak256Hash(ethSignedMessagePrefix, inner[:])
}

// ToEthSig turns a 64-byte compact (r,s) signature into the (v,r,s) triple
// an EVM contract's ecrecover expects, by searching the two possible
// recovery IDs for the one whose recovered public key matches pubkey. The
// core never stores v because it is cheap to recompute and doing so keeps
// the accumulated signature state independent of which recovery ID a
// signer happened to produce.
func ToEthSig(sig [64]byte, pubkey [33]byte, hash [32]byte) (v uint8, r, s [32]byte, err error) {
	want, err := btcec.ParsePubKey(pubkey[:])
	if err != nil {
		return 0, r, s, errorsmod.Wrap(ErrInvalidInput, "invalid pubkey")
	}

	copy(r[:], sig[:32])
	copy(s[:], sig[32:])

	for recID := byte(0); recID < 2; recID++ {
		compact := make([]byte, 65)
		compact[0] = recID + 27
		copy(compact[1:], sig[:])

		recovered, _, rerr := ecdsa.RecoverCompact(compact, hash[:])
		if rerr != nil {
			continue
		}
		if recovered.IsEqual(want) {
			return 27 + recID, r, s, nil
		}
	}
	return 0, r, s, errorsmod.Wrap(ErrSignatureRejected, "no recovery id matches pubkey")
}

// verifySignature checks a compact (r,s) signature against pubkey and hash
// without needing a recovery ID.
func verifySignature(pubkey [33]byte, hash [32]byte, sig [64]byte) (bool, error) {
	pub, err := btcec.ParsePubKey(pubkey[:])
	if err != nil {
		return false, err
	}

	var rMod, sMod btcec.ModNScalar
	rMod.SetByteSlice(sig[:32])
	sMod.SetByteSlice(sig[32:])
	parsed := ecdsa.NewSignature(&rMod, &sMod)

	return parsed.Verify(hash[:], pub), nil
}
