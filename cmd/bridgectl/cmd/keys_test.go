package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeysCmdTree(t *testing.T) {
	names := map[string]bool{}
	for _, c := range keysCmd.Commands() {
		names[c.Name()] = true
	}
	assert.True(t, names["generate"])
	assert.True(t, names["list"])
	assert.True(t, names["show"])
}

func TestKeysGenerateAndShow(t *testing.T) {
	resetFlags(t)

	require.NoError(t, keysGenerateCmd.RunE(keysGenerateCmd, []string{"validator-a"}))

	ks, err := openKeystore()
	require.NoError(t, err)
	meta, err := ks.Get("validator-a")
	require.NoError(t, err)
	assert.Equal(t, "validator-a", meta.Name)
	assert.NotEmpty(t, meta.EthAddress)
	assert.Len(t, meta.PubKey, 33)
}

func TestKeysGenerateDuplicateRejected(t *testing.T) {
	resetFlags(t)
	require.NoError(t, keysGenerateCmd.RunE(keysGenerateCmd, []string{"dup"}))
	require.Error(t, keysGenerateCmd.RunE(keysGenerateCmd, []string{"dup"}))
}

func TestKeysShowUnknownKey(t *testing.T) {
	resetFlags(t)
	require.Error(t, keysShowCmd.RunE(keysShowCmd, []string{"nope"}))
}

func TestKeysListEmpty(t *testing.T) {
	resetFlags(t)
	ks, err := openKeystore()
	require.NoError(t, err)
	assert.Empty(t, ks.List())
}
