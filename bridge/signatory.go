package bridge

import (
	"math/big"

	errorsmod "cosmossdk.io/errors"
	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// Signatory is one member of a SignatorySet: a compressed secp256k1 pubkey
// and the voting power backing it at the time the set was captured.
type Signatory struct {
	Pubkey      [33]byte
	VotingPower uint64
}

// SignatorySet is a snapshot of the validators eligible to sign outgoing
// messages, along with the bookkeeping needed to reproduce its checkpoint
// hash and to detect when it is time to rotate.
type SignatorySet struct {
	Index       uint32
	CreateTime  int64
	Signatories []Signatory
	PresentVP   uint64 // sum of VotingPower as captured from the source chain
	PossibleVP  uint64 // total possible voting power at capture time
}

// EthAddress derives the Ethereum address a signatory's compressed pubkey
// recovers to: the low 20 bytes of Keccak256 of the uncompressed point,
// dropping its 0x04 prefix byte, exactly as the EVM does for ecrecover.
func (ss *SignatorySet) EthAddress(sig Signatory) (common.Address, error) {
	pub, err := btcec.ParsePubKey(sig.Pubkey[:])
	if err != nil {
		return common.Address{}, errorsmod.Wrap(ErrInvalidInput, "invalid signatory pubkey")
	}
	uncompressed := pub.SerializeUncompressed()
	hash := crypto.Keccak256(uncompressed[1:])

	var addr common.Address
	copy(addr[:], hash[12:])
	return addr, nil
}

// EthAddresses derives the Ethereum address of every signatory, in order.
func (ss *SignatorySet) EthAddresses() ([]common.Address, error) {
	out := make([]common.Address, len(ss.Signatories))
	for i, s := range ss.Signatories {
		addr, err := ss.EthAddress(s)
		if err != nil {
			return nil, err
		}
		out[i] = addr
	}
	return out, nil
}

// NormalizeVP rescales every signatory's voting power (and PossibleVP) so
// PresentVP sums to total, using 128-bit intermediate products so the
// rescale never overflows for realistic voting-power magnitudes. Used to
// project native-chain voting power onto the fixed u32 range the contract's
// checkpoint hash encodes power in.
func (ss *SignatorySet) NormalizeVP(total uint64) {
	if ss.PresentVP == 0 {
		return
	}

	presentBig := new(big.Int).SetUint64(ss.PresentVP)
	totalBig := new(big.Int).SetUint64(total)

	adjust := func(n uint64) uint64 {
		v := new(big.Int).Mul(new(big.Int).SetUint64(n), totalBig)
		v.Div(v, presentBig)
		return v.Uint64()
	}

	for i := range ss.Signatories {
		ss.Signatories[i].VotingPower = adjust(ss.Signatories[i].VotingPower)
	}
	ss.PossibleVP = adjust(ss.PossibleVP)
	ss.PresentVP = total
}

// CheckpointHash computes the digest the bridge contract verifies a valset
// update's threshold signature against: the Keccak256 of the ABI-encoded
// (id, "checkpoint", index, validator addresses, voting powers, zero
// reward) tuple.
func CheckpointHash(id [32]byte, valset *SignatorySet, valsetIndex uint64) ([32]byte, error) {
	packed, err := packCheckpoint(id, valset, valsetIndex)
	if err != nil {
		return [32]byte{}, err
	}
	return Keccak256(packed), nil
}
