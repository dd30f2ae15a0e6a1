package cmd

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// resetFlags points every path flag at a fresh temp directory and clears
// jsonOut, mirroring each test's need for an isolated state/keys pair.
func resetFlags(t *testing.T) {
	t.Helper()
	dir := t.TempDir()
	statePath = filepath.Join(dir, "bridge-state.json")
	keysPath = filepath.Join(dir, "bridge-keys.json")
	relayerBz = ""
	jsonOut = false
}

func TestRootCmd(t *testing.T) {
	resetFlags(t)

	t.Run("has correct use name", func(t *testing.T) {
		assert.Equal(t, "bridgectl", rootCmd.Use)
	})

	for _, name := range []string{"version", "init", "keys", "outbox", "sign", "valset", "relay"} {
		t.Run("has "+name+" subcommand", func(t *testing.T) {
			found := false
			for _, c := range rootCmd.Commands() {
				if c.Name() == name {
					found = true
					break
				}
			}
			assert.True(t, found, "%s subcommand should exist", name)
		})
	}
}

func TestPersistentFlags(t *testing.T) {
	for _, name := range []string{"config", "state", "keys", "relayer", "json"} {
		t.Run(name+" flag exists", func(t *testing.T) {
			assert.NotNil(t, rootCmd.PersistentFlags().Lookup(name))
		})
	}
}

func TestLoadStoreMissingFile(t *testing.T) {
	resetFlags(t)
	store, err := loadStore()
	require.NoError(t, err)
	require.NotNil(t, store)
	assert.Empty(t, store.Snapshot())
}

func TestSaveAndLoadStoreRoundTrip(t *testing.T) {
	resetFlags(t)
	store, err := loadStore()
	require.NoError(t, err)
	require.NoError(t, store.Set([]byte("k"), []byte("v")))
	require.NoError(t, saveStore(store))

	reloaded, err := loadStore()
	require.NoError(t, err)
	assert.Equal(t, []byte("v"), reloaded.Snapshot()["k"])
}
