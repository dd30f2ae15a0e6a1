package bridge

import (
	"math"
	"testing"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/stretchr/testify/require"
)

func btcecGenerateKeyForTest(t *testing.T) (*btcec.PrivateKey, []byte, error) {
	t.Helper()
	priv, err := btcec.NewPrivateKey()
	if err != nil {
		return nil, nil, err
	}
	return priv, priv.PubKey().SerializeCompressed(), nil
}

func TestNormalizeVP(t *testing.T) {
	ss := &SignatorySet{
		Signatories: []Signatory{
			{VotingPower: 10},
			{VotingPower: 20},
			{VotingPower: 30},
		},
		PresentVP:  60,
		PossibleVP: 60,
	}

	ss.NormalizeVP(6)
	require.Equal(t, uint64(1), ss.Signatories[0].VotingPower)
	require.Equal(t, uint64(2), ss.Signatories[1].VotingPower)
	require.Equal(t, uint64(3), ss.Signatories[2].VotingPower)
	require.Equal(t, uint64(6), ss.PossibleVP)
	require.Equal(t, uint64(6), ss.PresentVP)

	ss.NormalizeVP(math.MaxUint32)
	require.Equal(t, uint64(715827882), ss.Signatories[0].VotingPower)
	require.Equal(t, uint64(1431655765), ss.Signatories[1].VotingPower)
	require.Equal(t, uint64(2147483647), ss.Signatories[2].VotingPower)
	require.Equal(t, uint64(math.MaxUint32), ss.PresentVP)
}

func TestNormalizeVPSlack(t *testing.T) {
	ss := &SignatorySet{
		Signatories: []Signatory{{VotingPower: 1}, {VotingPower: 1}, {VotingPower: 1}},
		PresentVP:   3,
		PossibleVP:  3,
	}
	ss.NormalizeVP(10)

	var sum uint64
	for _, s := range ss.Signatories {
		sum += s.VotingPower
	}
	require.LessOrEqual(t, sum, uint64(10))
	require.LessOrEqual(t, uint64(10)-sum, uint64(len(ss.Signatories)))
	require.Equal(t, uint64(10), ss.PresentVP)
}

func TestEthAddressesPreservesOrder(t *testing.T) {
	priv1, pub1, err := btcecGenerateKeyForTest(t)
	require.NoError(t, err)
	priv2, pub2, err := btcecGenerateKeyForTest(t)
	require.NoError(t, err)
	_ = priv1
	_ = priv2

	var k1, k2 [33]byte
	copy(k1[:], pub1)
	copy(k2[:], pub2)

	ss := &SignatorySet{Signatories: []Signatory{{Pubkey: k1}, {Pubkey: k2}}}
	addrs, err := ss.EthAddresses()
	require.NoError(t, err)
	require.Len(t, addrs, 2)
	require.NotEqual(t, addrs[0], addrs[1])

	want0, err := ss.EthAddress(ss.Signatories[0])
	require.NoError(t, err)
	want1, err := ss.EthAddress(ss.Signatories[1])
	require.NoError(t, err)
	require.Equal(t, want0, addrs[0])
	require.Equal(t, want1, addrs[1])
}
