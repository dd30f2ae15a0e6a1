package cmd

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"

	"github.com/Bidon15/nbtcbridge/bridge"
	"github.com/Bidon15/nbtcbridge/internal/memkv"
)

var (
	initID             string
	initBridgeContract string
	initTokenContract  string
	initValsetKeys     []string
	initValsetPowers   []uint64
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Bootstrap a fresh bridge state snapshot",
	Long: `init seeds a brand new bridge.Keeper instance, writing the genesis
signatory set and bridge/token contract addresses to the state snapshot.

The genesis signatory set is built from one or more --valset-key names
already present in the keystore (see "bridgectl keys generate"), paired
positionally with --valset-power values.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if initID == "" {
			return fmt.Errorf("--id is required")
		}
		if initBridgeContract == "" || initTokenContract == "" {
			return fmt.Errorf("--bridge-contract and --token-contract are required")
		}
		if len(initValsetKeys) == 0 {
			return fmt.Errorf("at least one --valset-key is required")
		}
		if len(initValsetPowers) != len(initValsetKeys) {
			return fmt.Errorf("--valset-power must be given once per --valset-key")
		}

		ks, err := openKeystore()
		if err != nil {
			return err
		}

		signatories := make([]bridge.Signatory, len(initValsetKeys))
		for i, name := range initValsetKeys {
			meta, err := ks.Get(name)
			if err != nil {
				return fmt.Errorf("valset key %q: %w", name, err)
			}
			var pk bridge.Pubkey
			copy(pk[:], meta.PubKey)
			signatories[i] = bridge.Signatory{Pubkey: pk, VotingPower: initValsetPowers[i]}
		}

		var totalVP uint64
		for _, s := range signatories {
			totalVP += s.VotingPower
		}
		valset := bridge.SignatorySet{
			Index:       0,
			Signatories: signatories,
			PresentVP:   totalVP,
			PossibleVP:  totalVP,
		}

		store := memkv.New()
		keeper := bridge.NewKeeper(store, bridge.DefaultOptions())
		if err := keeper.Init(ctx(), []byte(initID), common.HexToAddress(initBridgeContract), common.HexToAddress(initTokenContract), valset); err != nil {
			return err
		}
		if err := saveStore(store); err != nil {
			return err
		}

		fmt.Printf("initialized bridge %q at %s\n", initID, resolveStatePath())
		return nil
	},
}

func init() {
	initCmd.Flags().StringVar(&initID, "id", "", "bridge instance identifier (arbitrary bytes, encoded as a string)")
	initCmd.Flags().StringVar(&initBridgeContract, "bridge-contract", "", "0x-prefixed bridge contract address")
	initCmd.Flags().StringVar(&initTokenContract, "token-contract", "", "0x-prefixed token contract address")
	initCmd.Flags().StringSliceVar(&initValsetKeys, "valset-key", nil, "keystore key name to include in the genesis signatory set (repeatable)")
	initCmd.Flags().Uint64SliceVar(&initValsetPowers, "valset-power", nil, "voting power for the matching --valset-key (repeatable)")
}
