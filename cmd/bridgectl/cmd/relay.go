package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/Bidon15/nbtcbridge/bridge"
)

var relayDest string
var relayAmount uint64

var relayCmd = &cobra.Command{
	Use:   "relay",
	Short: "Submit a relay_return call on behalf of the whitelisted relayer",
	RunE: func(cmd *cobra.Command, args []string) error {
		if relayerBz == "" {
			return fmt.Errorf("--relayer is required")
		}
		if relayDest == "" {
			return fmt.Errorf("--dest is required")
		}
		if relayAmount == 0 {
			return fmt.Errorf("--amount must be greater than zero")
		}

		relayer, err := sdk.AccAddressFromBech32(relayerBz)
		if err != nil {
			return fmt.Errorf("invalid --relayer address: %w", err)
		}
		dest, err := sdk.AccAddressFromBech32(relayDest)
		if err != nil {
			return fmt.Errorf("invalid --dest address: %w", err)
		}

		keeper, commit, err := openKeeper()
		if err != nil {
			return err
		}

		env := bridge.StaticHostEnv{Signer: relayer, HasSigner: true}
		verifier := bridge.WhitelistVerifier{Allowed: relayer}
		returns := []bridge.ReturnEntry{{
			Dest:   bridge.NewNativeAccountDest(dest),
			Amount: relayAmount,
		}}

		if err := keeper.RelayReturn(ctx(), env, verifier, nil, nil, returns); err != nil {
			return err
		}
		if err := commit(); err != nil {
			return err
		}

		fmt.Printf("released %d to %s\n", relayAmount, dest)
		return nil
	},
}

var relayTakeCmd = &cobra.Command{
	Use:   "take-pending",
	Short: "Drain and print every pending return released by relay_return",
	RunE: func(cmd *cobra.Command, args []string) error {
		keeper, commit, err := openKeeper()
		if err != nil {
			return err
		}
		taken, err := keeper.TakePending(ctx())
		if err != nil {
			return err
		}
		if err := commit(); err != nil {
			return err
		}
		return printJSON(taken)
	},
}

func init() {
	relayCmd.Flags().StringVar(&relayDest, "dest", "", "bech32 destination account")
	relayCmd.Flags().Uint64Var(&relayAmount, "amount", 0, "amount to release from escrow")
	relayCmd.AddCommand(relayTakeCmd)
}
