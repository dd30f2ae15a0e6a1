package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/Bidon15/nbtcbridge/bridge"
	"github.com/Bidon15/nbtcbridge/signer"
)

var signKeyName string

var signCmd = &cobra.Command{
	Use:   "sign [index]",
	Short: "Sign a pending outbox message with a local validator key",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		idx, err := strconv.ParseUint(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid index: %w", err)
		}
		if signKeyName == "" {
			return fmt.Errorf("--key is required")
		}

		ks, err := openKeystore()
		if err != nil {
			return err
		}
		priv, err := ks.PrivateKey(signKeyName)
		if err != nil {
			return err
		}
		meta, err := ks.Get(signKeyName)
		if err != nil {
			return err
		}
		var pubkey bridge.Pubkey
		copy(pubkey[:], meta.PubKey)

		keeper, commit, err := openKeeper()
		if err != nil {
			return err
		}

		entry, err := keeper.OutboxEntry(ctx(), idx)
		if err != nil {
			return err
		}

		sig, err := signer.Sign(priv, entry.Sigs.Message[:])
		if err != nil {
			return err
		}

		env := bridge.StaticHostEnv{HasSigner: true}
		if err := keeper.Sign(ctx(), env, idx, pubkey, sig); err != nil {
			return err
		}
		if err := commit(); err != nil {
			return err
		}

		fmt.Printf("signed message %d with key %q\n", idx, signKeyName)
		return nil
	},
}

func init() {
	signCmd.Flags().StringVar(&signKeyName, "key", "", "name of the local validator key to sign with")
}
