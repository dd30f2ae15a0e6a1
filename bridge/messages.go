package bridge

import (
	"math"

	errorsmod "cosmossdk.io/errors"
	"github.com/ethereum/go-ethereum/common"
)

// MessageKind discriminates the tagged OutMessageArgs union. Persisted as a
// single leading byte (see store.go) so the on-disk layout never depends on
// field order inside a particular variant.
type MessageKind uint8

const (
	MessageBatch MessageKind = iota
	MessageLogicCall
	MessageUpdateValset
)

// Transfer is one leg of an outgoing batch: a destination address, the
// amount it receives, and the fee it pays the batch relayer.
type Transfer struct {
	Dest      common.Address
	Amount    uint64
	FeeAmount uint64
}

// ContractCall describes a single arbitrary call the bridge contract should
// make on the destination chain, carrying along the escrowed transfer that
// funds it.
type ContractCall struct {
	Contract       common.Address
	TransferAmount uint64
	FeeAmount      uint64
	Payload        []byte
	Timeout        uint64
}

const maxPayloadLen = math.MaxUint16

// OutMessageArgs is the tagged union of everything the outbox can carry:
// a transaction batch, a single logic call, or a signatory-set update. Only
// the fields for Kind are meaningful; the others are left zero.
type OutMessageArgs struct {
	Kind MessageKind

	// MessageBatch
	Transfers    []Transfer
	BatchTimeout uint64
	BatchIndex   uint64

	// MessageLogicCall
	NonceID uint64
	Call    ContractCall

	// MessageUpdateValset
	ValsetIndex uint64
	Valset      SignatorySet
}

// NewBatchArgs builds a MessageBatch, rejecting batches too large to fit
// the protocol's 16-bit transfer count.
func NewBatchArgs(transfers []Transfer, timeout, batchIndex uint64) (OutMessageArgs, error) {
	if len(transfers) > maxPayloadLen {
		return OutMessageArgs{}, errorsmod.Wrap(ErrInvalidInput, "too many transfers for one batch")
	}
	return OutMessageArgs{
		Kind:         MessageBatch,
		Transfers:    transfers,
		BatchTimeout: timeout,
		BatchIndex:   batchIndex,
	}, nil
}

// hash computes the digest this message's accumulated signatures are over:
// the Keccak256 of its ABI-encoded representation, keyed by the bridge ID
// and (for batches and logic calls) the escrowed token contract.
func (m OutMessageArgs) hash(id [32]byte, tokenContract common.Address) ([32]byte, error) {
	switch m.Kind {
	case MessageBatch:
		packed, err := packBatch(id, m.BatchIndex, m.Transfers, tokenContract, m.BatchTimeout)
		if err != nil {
			return [32]byte{}, err
		}
		return Keccak256(packed), nil
	case MessageLogicCall:
		packed, err := packLogicCall(id, m.Call, tokenContract, m.NonceID)
		if err != nil {
			return [32]byte{}, err
		}
		return Keccak256(packed), nil
	case MessageUpdateValset:
		return CheckpointHash(id, &m.Valset, m.ValsetIndex)
	default:
		return [32]byte{}, errorsmod.Wrapf(ErrInvalidInput, "unknown message kind %d", m.Kind)
	}
}

// OutMessage is one entry in the outbox: the signatory set it must be
// signed against, the accumulating threshold signature, and the message
// itself.
type OutMessage struct {
	SigsetIndex uint32
	Sigs        *ThresholdSig
	Msg         OutMessageArgs
}
