package bridge

import (
	"math/big"

	errorsmod "cosmossdk.io/errors"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
)

// ABI argument types shared by the three message encoders below. Built once
// at init time since abi.NewType parses a small grammar and there is no
// reason to repeat that work per call.
var (
	tyBytes32    abi.Type
	tyBytes32Arr abi.Type
	tyUint256    abi.Type
	tyUint256Arr abi.Type
	tyAddress    abi.Type
	tyBytes      abi.Type
)

func init() {
	var err error
	if tyBytes32, err = abi.NewType("bytes32", "", nil); err != nil {
		panic(err)
	}
	if tyBytes32Arr, err = abi.NewType("bytes32[]", "", nil); err != nil {
		panic(err)
	}
	if tyUint256, err = abi.NewType("uint256", "", nil); err != nil {
		panic(err)
	}
	if tyUint256Arr, err = abi.NewType("uint256[]", "", nil); err != nil {
		panic(err)
	}
	if tyAddress, err = abi.NewType("address", "", nil); err != nil {
		panic(err)
	}
	if tyBytes, err = abi.NewType("bytes", "", nil); err != nil {
		panic(err)
	}
}

func u64ToBig(n uint64) *big.Int {
	return new(big.Int).SetUint64(n)
}

// packBatch ABI-encodes the arguments the bridge contract hashes to approve
// a Gravity-style outgoing transaction batch: the bridge ID, a fixed
// "transactionBatch" tag, the parallel amount/destination/fee arrays, the
// batch index, the escrowed token contract, and the batch timeout.
func packBatch(id [32]byte, batchIndex uint64, transfers []Transfer, tokenContract common.Address, timeout uint64) ([]byte, error) {
	args := abi.Arguments{
		{Type: tyBytes32}, {Type: tyBytes32},
		{Type: tyUint256Arr}, {Type: tyBytes32Arr}, {Type: tyUint256Arr},
		{Type: tyUint256}, {Type: tyBytes32}, {Type: tyUint256},
	}

	amounts := make([]*big.Int, len(transfers))
	dests := make([][32]byte, len(transfers))
	fees := make([]*big.Int, len(transfers))
	for i, t := range transfers {
		amounts[i] = u64ToBig(t.Amount)
		dests[i] = AddrToBytes32(t.Dest)
		fees[i] = u64ToBig(t.FeeAmount)
	}

	tag, err := Bytes32([]byte("transactionBatch"))
	if err != nil {
		return nil, err
	}
	packed, err := args.Pack(
		id, tag,
		amounts, dests, fees,
		u64ToBig(batchIndex), AddrToBytes32(tokenContract), u64ToBig(timeout),
	)
	if err != nil {
		return nil, errorsmod.Wrap(ErrInvalidInput, err.Error())
	}
	return packed, nil
}

// packLogicCall ABI-encodes a single arbitrary-call message. Every array
// field carries exactly one element (the contract only ever receives one
// (amount, token) pair per logic call in this module), matching the layout
// the reference implementation produces.
func packLogicCall(id [32]byte, call ContractCall, tokenContract common.Address, nonceID uint64) ([]byte, error) {
	args := abi.Arguments{
		{Type: tyBytes32}, {Type: tyBytes32},
		{Type: tyUint256Arr}, {Type: tyBytes32Arr},
		{Type: tyUint256Arr}, {Type: tyBytes32Arr},
		{Type: tyBytes32}, {Type: tyBytes},
		{Type: tyUint256}, {Type: tyUint256}, {Type: tyUint256},
	}

	tag, err := Bytes32([]byte("logicCall"))
	if err != nil {
		return nil, err
	}
	packed, err := args.Pack(
		id, tag,
		[]*big.Int{u64ToBig(call.TransferAmount)}, [][32]byte{AddrToBytes32(tokenContract)},
		[]*big.Int{u64ToBig(call.FeeAmount)}, [][32]byte{AddrToBytes32(tokenContract)},
		AddrToBytes32(call.Contract), call.Payload,
		u64ToBig(call.Timeout), u64ToBig(nonceID), u64ToBig(1),
	)
	if err != nil {
		return nil, errorsmod.Wrap(ErrInvalidInput, err.Error())
	}
	return packed, nil
}

// packCheckpoint ABI-encodes a signatory-set checkpoint: the bridge ID, a
// fixed "checkpoint" tag, the valset index, the parallel validator-address
// and voting-power arrays, and a zeroed reward (address, amount) pair. This
// module never pays out a valset-update reward, but the contract's checkpoint
// hash still reserves the slot.
func packCheckpoint(id [32]byte, valset *SignatorySet, valsetIndex uint64) ([]byte, error) {
	args := abi.Arguments{
		{Type: tyBytes32}, {Type: tyBytes32}, {Type: tyUint256},
		{Type: tyBytes32Arr}, {Type: tyUint256Arr},
		{Type: tyAddress}, {Type: tyUint256},
	}

	tag, err := Bytes32([]byte("checkpoint"))
	if err != nil {
		return nil, err
	}
	addrs, err := valset.EthAddresses()
	if err != nil {
		return nil, err
	}
	validators := make([][32]byte, len(addrs))
	powers := make([]*big.Int, len(addrs))
	for i, a := range addrs {
		validators[i] = AddrToBytes32(a)
		powers[i] = u64ToBig(valset.Signatories[i].VotingPower)
	}

	packed, err := args.Pack(
		id, tag, u64ToBig(valsetIndex),
		validators, powers,
		common.Address{}, u64ToBig(0),
	)
	if err != nil {
		return nil, errorsmod.Wrap(ErrInvalidInput, err.Error())
	}
	return packed, nil
}
