package bridge

import (
	"math"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"
)

func TestNewBatchArgsRejectsOversizeBatch(t *testing.T) {
	transfers := make([]Transfer, maxPayloadLen+1)
	_, err := NewBatchArgs(transfers, math.MaxUint64, 1)
	require.ErrorIs(t, err, ErrInvalidInput)
}

func TestNewBatchArgsAccepted(t *testing.T) {
	transfers := []Transfer{{Dest: common.Address{0x1}, Amount: 10}}
	args, err := NewBatchArgs(transfers, 1000, 7)
	require.NoError(t, err)
	require.Equal(t, MessageBatch, args.Kind)
	require.Equal(t, uint64(7), args.BatchIndex)
}

func TestOutMessageArgsHashDispatch(t *testing.T) {
	id := [32]byte{1}
	token := common.Address{2}

	batch, err := NewBatchArgs([]Transfer{{Dest: common.Address{3}, Amount: 5}}, 100, 1)
	require.NoError(t, err)
	h1, err := batch.hash(id, token)
	require.NoError(t, err)
	h2, err := batch.hash(id, token)
	require.NoError(t, err)
	require.Equal(t, h1, h2)

	logicCall := OutMessageArgs{Kind: MessageLogicCall, NonceID: 2, Call: ContractCall{Contract: common.Address{4}, Timeout: 10}}
	h3, err := logicCall.hash(id, token)
	require.NoError(t, err)
	require.NotEqual(t, h1, h3)

	_, signatory := newTestSignatory(t, 1)
	valset := SignatorySet{Index: 1, Signatories: []Signatory{signatory}, PresentVP: 1, PossibleVP: 1}
	updateValset := OutMessageArgs{Kind: MessageUpdateValset, ValsetIndex: 1, Valset: valset}
	h4, err := updateValset.hash(id, token)
	require.NoError(t, err)

	want, err := CheckpointHash(id, &valset, 1)
	require.NoError(t, err)
	require.Equal(t, want, h4)
}

func TestOutMessageArgsHashRejectsUnknownKind(t *testing.T) {
	m := OutMessageArgs{Kind: MessageKind(99)}
	_, err := m.hash([32]byte{}, common.Address{})
	require.ErrorIs(t, err, ErrInvalidInput)
}
