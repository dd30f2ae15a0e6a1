package bridge

import (
	"encoding/hex"
	"strings"
	"testing"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/ethereum/go-ethereum/common"
	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/stretchr/testify/require"
)

func testSignatorySet(t *testing.T, index uint32, createTime int64, vp uint64) SignatorySet {
	t.Helper()
	_, sig := newTestSignatory(t, vp)
	return SignatorySet{
		Index:       index,
		CreateTime:  createTime,
		Signatories: []Signatory{sig},
		PresentVP:   vp,
		PossibleVP:  vp,
	}
}

func TestIndicesFixture(t *testing.T) {
	initial := testSignatorySet(t, 0, 0, 1000)
	e, err := New([]byte("test"), common.Address{1}, common.Address{2}, initial, DefaultOptions())
	require.NoError(t, err)

	require.Equal(t, uint64(0), e.BatchIndex)
	require.Equal(t, uint64(0), e.ValsetIndex)
	require.Equal(t, uint64(1), e.MessageIndex)
	require.Equal(t, 0, len(e.Outbox))

	next1 := testSignatorySet(t, 1, int64(e.opts.ValsetInterval), 2000)
	require.NoError(t, e.Step(&next1))
	require.Equal(t, uint64(1), e.ValsetIndex)
	require.Equal(t, uint64(1), e.MessageIndex)
	require.Equal(t, 1, len(e.Outbox))

	next2 := testSignatorySet(t, 2, int64(2*e.opts.ValsetInterval), 3000)
	require.NoError(t, e.Step(&next2))
	require.Equal(t, uint64(2), e.ValsetIndex)
	require.Equal(t, uint64(2), e.MessageIndex)
	require.Equal(t, 2, len(e.Outbox))
}

func TestStepIsNoopBelowInterval(t *testing.T) {
	initial := testSignatorySet(t, 0, 0, 1000)
	e, err := New([]byte("test"), common.Address{1}, common.Address{2}, initial, DefaultOptions())
	require.NoError(t, err)

	next := testSignatorySet(t, 1, 10, 2000)
	require.NoError(t, e.Step(&next))
	require.Equal(t, uint64(0), e.ValsetIndex)
	require.Equal(t, 0, len(e.Outbox))
}

func TestReturnQueueFixture(t *testing.T) {
	initial := testSignatorySet(t, 0, 0, 1000)
	e, err := New([]byte("test"), common.Address{1}, common.Address{2}, initial, DefaultOptions())
	require.NoError(t, err)

	dest := common.Address{0xaa}
	require.NoError(t, e.Transfer(dest, Coin{Amount: 1_000_000}))
	require.Equal(t, uint64(1_000_000), e.Coins.Amount)

	addr := sdk.AccAddress([]byte("return-destination--"))
	env := StaticHostEnv{Signer: addr, HasSigner: true}
	verifier := WhitelistVerifier{Allowed: addr}

	require.NoError(t, e.RelayReturn(env, verifier, nil, nil, []ReturnEntry{
		{Dest: NewNativeAccountDest(addr), Amount: 500_000},
	}))

	require.Equal(t, uint64(1), e.ReturnIndex)
	require.Equal(t, uint64(500_000), e.Coins.Amount)
	require.Equal(t, 1, len(e.Pending))
}

func TestOutOfRangeSign(t *testing.T) {
	initial := testSignatorySet(t, 0, 0, 1000)
	e, err := New([]byte("test"), common.Address{1}, common.Address{2}, initial, DefaultOptions())
	require.NoError(t, err)

	require.NoError(t, e.Transfer(common.Address{0xbb}, Coin{Amount: 1}))
	require.Equal(t, uint64(1), e.MessageIndex)

	before := e.MessageIndex
	err = e.Sign(StaticHostEnv{}, 42, Pubkey{}, Signature{})
	require.ErrorIs(t, err, ErrOutOfRange)
	require.Equal(t, before, e.MessageIndex)
}

func TestLogicCallNonceUsesProspectiveIndex(t *testing.T) {
	initial := testSignatorySet(t, 0, 0, 1000)
	e, err := New([]byte("test"), common.Address{1}, common.Address{2}, initial, DefaultOptions())
	require.NoError(t, err)

	require.NoError(t, e.Call(ContractCall{Contract: common.Address{0xcc}, Timeout: 10}, Coin{Amount: 5}))
	m, err := e.Get(e.MessageIndex)
	require.NoError(t, err)
	require.Equal(t, e.MessageIndex+1, m.Msg.NonceID)
}

func TestCheckpointFixture(t *testing.T) {
	var key [32]byte
	copy(key[:], []byte("test"))
	priv, _ := btcec.PrivKeyFromBytes(key[:])

	var pk Pubkey
	copy(pk[:], priv.PubKey().SerializeCompressed())

	valset := SignatorySet{
		Index:       0,
		CreateTime:  0,
		Signatories: []Signatory{{Pubkey: pk, VotingPower: 10_000_000_000}},
		PresentVP:   10_000_000_000,
		PossibleVP:  10_000_000_000,
	}

	var id [32]byte
	copy(id[:], []byte("test"))

	hash, err := CheckpointHash(id, &valset, 0)
	require.NoError(t, err)

	want, err := hex.DecodeString("61fe378d7a8aac20d5882ff4696d9c14c0db93b583fcd25f0616ce5187efae69")
	require.NoError(t, err)
	require.Equal(t, want, hash[:])
}

func TestUpdatedCheckpointAndSignatureFixture(t *testing.T) {
	var key [32]byte
	copy(key[:], []byte("test"))
	priv, _ := btcec.PrivKeyFromBytes(key[:])

	var pk Pubkey
	copy(pk[:], priv.PubKey().SerializeCompressed())

	vp := uint64(10_000_000_000 + 1)
	valset := SignatorySet{
		Index:       0,
		CreateTime:  0,
		Signatories: []Signatory{{Pubkey: pk, VotingPower: vp}},
		PresentVP:   vp,
		PossibleVP:  vp,
	}

	var id [32]byte
	copy(id[:], []byte("test"))

	hash, err := CheckpointHash(id, &valset, 1)
	require.NoError(t, err)

	want, err := hex.DecodeString("0b73bc9926c210f36673973a0ecb0a5f337ca1c7f99ba44ecf3624c891a8ab2b")
	require.NoError(t, err)
	require.Equal(t, want, hash[:])

	digest := Sighash(hash)
	sig := lowSSign(t, priv, digest)

	var pubBytes [33]byte
	copy(pubBytes[:], priv.PubKey().SerializeCompressed())
	v, r, s, err := ToEthSig(sig, pubBytes, digest)
	require.NoError(t, err)
	require.Equal(t, uint8(27), v)

	rHex := hex.EncodeToString(r[:])
	sHex := hex.EncodeToString(s[:])
	require.True(t, strings.HasPrefix(rHex, "060215a2"), "r = %s", rHex)
	require.True(t, strings.HasSuffix(rHex, "1f69d8"), "r = %s", rHex)
	require.True(t, strings.HasPrefix(sHex, "24d99"), "s = %s", sHex)
	require.True(t, strings.HasSuffix(sHex, "6a43"), "s = %s", sHex)
}

func TestPruneConfirmed(t *testing.T) {
	initial := testSignatorySet(t, 0, 0, 1000)
	e, err := New([]byte("test"), common.Address{1}, common.Address{2}, initial, DefaultOptions())
	require.NoError(t, err)

	require.NoError(t, e.Transfer(common.Address{1}, Coin{Amount: 1}))
	require.NoError(t, e.Transfer(common.Address{2}, Coin{Amount: 1}))
	require.NoError(t, e.Transfer(common.Address{3}, Coin{Amount: 1}))
	require.Equal(t, 3, len(e.Outbox))

	e.PruneConfirmed(e.MessageIndex - 1)
	require.Equal(t, 1, len(e.Outbox))

	_, err = e.Get(e.MessageIndex - 1)
	require.ErrorIs(t, err, ErrOutOfRange)
}
