// Package cmd implements bridgectl, a local operator CLI for inspecting
// outbox/valset state and driving sign/relay calls against a bridge.Keeper
// backed by a flat JSON snapshot of an in-memory store. It is not a relayer
// process or an EVM RPC client, just a local development and ops surface.
package cmd

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Bidon15/nbtcbridge/bridge"
	"github.com/Bidon15/nbtcbridge/internal/memkv"
	"github.com/Bidon15/nbtcbridge/signer"
)

var (
	// Version is set at build time.
	Version = "dev"

	cfgFile    string
	statePath  string
	keysPath   string
	jsonOut    bool
	relayerBz  string
)

var rootCmd = &cobra.Command{
	Use:   "bridgectl",
	Short: "bridgectl manages a local nBTC<->EVM bridge outbox and validator keys",
	Long: `bridgectl is the operator CLI for a local bridge.Keeper instance.

It reads and writes a flat JSON snapshot of the bridge's state, so each
invocation is a self-contained process - there is no daemon to talk to.

Configuration (in order of priority):
  1. Command-line flags (--state, --keys, --config)
  2. Environment variables (BRIDGECTL_STATE, BRIDGECTL_KEYS)
  3. Config file (~/.bridgectl.yaml)`,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("bridgectl version %s\n", Version)
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ~/.bridgectl.yaml)")
	rootCmd.PersistentFlags().StringVar(&statePath, "state", "./bridge-state.json", "bridge state snapshot path (or BRIDGECTL_STATE)")
	rootCmd.PersistentFlags().StringVar(&keysPath, "keys", "./bridge-keys.json", "validator keystore path (or BRIDGECTL_KEYS)")
	rootCmd.PersistentFlags().StringVar(&relayerBz, "relayer", "", "bech32 address of the whitelisted return relayer")
	rootCmd.PersistentFlags().BoolVar(&jsonOut, "json", false, "output in JSON format")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(keysCmd)
	rootCmd.AddCommand(outboxCmd)
	rootCmd.AddCommand(signCmd)
	rootCmd.AddCommand(valsetCmd)
	rootCmd.AddCommand(relayCmd)
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func initConfig() {
	viper.SetDefault("state", "./bridge-state.json")
	viper.SetDefault("keys", "./bridge-keys.json")

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else if home, err := os.UserHomeDir(); err == nil {
		viper.AddConfigPath(home)
		viper.SetConfigType("yaml")
		viper.SetConfigName(".bridgectl")
	}

	viper.SetEnvPrefix("BRIDGECTL")
	viper.AutomaticEnv()
	_ = viper.BindEnv("state", "BRIDGECTL_STATE")
	_ = viper.BindEnv("keys", "BRIDGECTL_KEYS")

	_ = viper.ReadInConfig()
}

func resolveStatePath() string {
	if statePath != "" && statePath != "./bridge-state.json" {
		return statePath
	}
	return viper.GetString("state")
}

func resolveKeysPath() string {
	if keysPath != "" && keysPath != "./bridge-keys.json" {
		return keysPath
	}
	return viper.GetString("keys")
}

// loadStore reads the snapshot at resolveStatePath into a memkv.Store,
// starting empty if the file does not exist yet (first `bridgectl init`).
func loadStore() (*memkv.Store, error) {
	raw, err := os.ReadFile(resolveStatePath())
	if os.IsNotExist(err) {
		return memkv.New(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read state snapshot: %w", err)
	}

	var encoded map[string][]byte
	if err := json.Unmarshal(raw, &encoded); err != nil {
		return nil, fmt.Errorf("parse state snapshot: %w", err)
	}
	snapshot := make(map[string][]byte, len(encoded))
	for k, v := range encoded {
		key, err := hex.DecodeString(k)
		if err != nil {
			return nil, fmt.Errorf("parse state snapshot key %q: %w", k, err)
		}
		snapshot[string(key)] = v
	}
	return memkv.FromSnapshot(snapshot), nil
}

// saveStore writes store's contents back to resolveStatePath.
func saveStore(store *memkv.Store) error {
	snapshot := store.Snapshot()
	encoded := make(map[string][]byte, len(snapshot))
	for k, v := range snapshot {
		encoded[hex.EncodeToString([]byte(k))] = v
	}

	raw, err := json.MarshalIndent(encoded, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal state snapshot: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(resolveStatePath()), 0o700); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("create state dir: %w", err)
	}
	return os.WriteFile(resolveStatePath(), raw, 0o600)
}

// openKeeper loads the state snapshot and wires a bridge.Keeper over it,
// returning a commit function that must be called (on success) to persist
// any mutation the caller performed.
func openKeeper() (keeper *bridge.Keeper, commit func() error, err error) {
	store, err := loadStore()
	if err != nil {
		return nil, nil, err
	}
	k := bridge.NewKeeper(store, bridge.DefaultOptions())
	return k, func() error { return saveStore(store) }, nil
}

func openKeystore() (*signer.Keystore, error) {
	return signer.OpenKeystore(signer.KeystoreConfig{Path: resolveKeysPath()})
}

func ctx() context.Context { return context.Background() }

func newTable() *tabwriter.Writer {
	return tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
}

func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printError(err error) {
	fmt.Fprintf(os.Stderr, "Error: %s\n", err.Error())
}
