package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValsetCmdTree(t *testing.T) {
	names := map[string]bool{}
	for _, c := range valsetCmd.Commands() {
		names[c.Name()] = true
	}
	assert.True(t, names["show"])
}

func TestValsetShowAfterInit(t *testing.T) {
	resetFlags(t)
	resetInitFlags()

	require.NoError(t, keysGenerateCmd.RunE(keysGenerateCmd, []string{"op"}))
	initID = "valset-bridge"
	initBridgeContract = "0x1111111111111111111111111111111111111111"
	initTokenContract = "0x2222222222222222222222222222222222222222"
	initValsetKeys = []string{"op"}
	initValsetPowers = []uint64{100}
	require.NoError(t, initCmd.RunE(initCmd, nil))

	keeper, _, err := openKeeper()
	require.NoError(t, err)
	snap, err := keeper.Snapshot(ctx())
	require.NoError(t, err)

	hash, err := checkpointHashOf(snap)
	require.NoError(t, err)
	assert.Len(t, hash, 32)
	assert.Equal(t, uint32(0), snap.Valset.Index)
}
