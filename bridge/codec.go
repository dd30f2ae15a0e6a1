package bridge

import (
	"encoding/binary"

	errorsmod "cosmossdk.io/errors"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// Bytes32 right-pads b into a 32-byte array, rejecting anything that would
// not fit. Used for the bridge ID and other fixed-width identifiers that
// enter the ABI-encoded messages as the solidity `bytes32` type.
func Bytes32(b []byte) ([32]byte, error) {
	var out [32]byte
	if len(b) > 32 {
		return out, errorsmod.Wrapf(ErrInvalidInput, "value is %d bytes, want at most 32", len(b))
	}
	copy(out[:len(b)], b)
	return out, nil
}

// Uint256Bytes32 big-endian encodes n into the low 8 bytes of a 32-byte word,
// matching how a solidity `uint256` argument looks on the wire for values
// that fit in a uint64.
func Uint256Bytes32(n uint64) [32]byte {
	var out [32]byte
	binary.BigEndian.PutUint64(out[24:], n)
	return out
}

// AddrToBytes32 right-aligns a 20-byte EVM address into a 32-byte word, the
// same padding solidity applies when an `address` is read back as `bytes32`.
func AddrToBytes32(addr common.Address) [32]byte {
	var out [32]byte
	copy(out[12:], addr.Bytes())
	return out
}

// Keccak256 hashes the concatenation of data with Ethereum's Keccak-256,
// the hash function every checkpoint, batch, and logic-call digest in this
// package is built from.
func Keccak256(data ...[]byte) [32]byte {
	return crypto.Keccak256Hash(data...)
}
