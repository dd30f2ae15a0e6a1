package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Bidon15/nbtcbridge/bridge"
)

func checkpointHashOf(snap *bridge.Ethereum) ([32]byte, error) {
	return bridge.CheckpointHash(snap.ID, &snap.Valset, uint64(snap.Valset.Index))
}

var valsetCmd = &cobra.Command{
	Use:   "valset",
	Short: "Inspect the current signatory set",
}

var valsetShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the current signatory set and its checkpoint hash",
	RunE: func(cmd *cobra.Command, args []string) error {
		keeper, _, err := openKeeper()
		if err != nil {
			return err
		}
		snap, err := keeper.Snapshot(ctx())
		if err != nil {
			return err
		}

		hash, err := checkpointHashOf(snap)
		if err != nil {
			return err
		}

		if jsonOut {
			return printJSON(map[string]interface{}{
				"index":           snap.Valset.Index,
				"create_time":     snap.Valset.CreateTime,
				"present_vp":      snap.Valset.PresentVP,
				"possible_vp":     snap.Valset.PossibleVP,
				"checkpoint_hash": fmt.Sprintf("%x", hash),
				"signatories":     snap.Valset.Signatories,
			})
		}

		fmt.Printf("valset index:     %d\n", snap.Valset.Index)
		fmt.Printf("checkpoint hash:  %x\n", hash)
		fmt.Printf("present VP:       %d\n", snap.Valset.PresentVP)

		w := newTable()
		fmt.Fprintln(w, "PUBKEY\tVOTING POWER")
		for _, s := range snap.Valset.Signatories {
			fmt.Fprintf(w, "%x\t%d\n", s.Pubkey, s.VotingPower)
		}
		return w.Flush()
	},
}

func init() {
	valsetCmd.AddCommand(valsetShowCmd)
}
