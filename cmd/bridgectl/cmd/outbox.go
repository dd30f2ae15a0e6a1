package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/Bidon15/nbtcbridge/bridge"
)

var outboxCmd = &cobra.Command{
	Use:   "outbox",
	Short: "Inspect the bridge outbox",
}

var outboxListCmd = &cobra.Command{
	Use:   "list",
	Short: "List every retained outbox message",
	RunE: func(cmd *cobra.Command, args []string) error {
		keeper, _, err := openKeeper()
		if err != nil {
			return err
		}
		snap, err := keeper.Snapshot(ctx())
		if err != nil {
			return err
		}

		if jsonOut {
			return printJSON(snap.Outbox)
		}

		w := newTable()
		fmt.Fprintln(w, "INDEX\tKIND\tSIGSET\tSIGNED VP\tTHRESHOLD")
		start := uint64(0)
		if len(snap.Outbox) > 0 {
			start = snap.MessageIndex + 1 - uint64(len(snap.Outbox))
		}
		for i, m := range snap.Outbox {
			fmt.Fprintf(w, "%d\t%s\t%d\t%d\t%d\n",
				start+uint64(i), kindName(m.Msg.Kind), m.SigsetIndex, m.Sigs.SignedVP, m.Sigs.Threshold)
		}
		return w.Flush()
	},
}

var outboxGetCmd = &cobra.Command{
	Use:   "get [index]",
	Short: "Show a single outbox message",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		idx, err := strconv.ParseUint(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid index: %w", err)
		}

		keeper, _, err := openKeeper()
		if err != nil {
			return err
		}
		msg, err := keeper.OutboxEntry(ctx(), idx)
		if err != nil {
			return err
		}
		return printJSON(msg)
	},
}

var outboxSigstatusCmd = &cobra.Command{
	Use:   "sigstatus [index]",
	Short: "Show which signatories have signed a message",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		idx, err := strconv.ParseUint(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid index: %w", err)
		}

		keeper, _, err := openKeeper()
		if err != nil {
			return err
		}
		slots, err := keeper.Sigs(ctx(), idx)
		if err != nil {
			return err
		}

		if jsonOut {
			return printJSON(slots)
		}

		w := newTable()
		fmt.Fprintln(w, "PUBKEY\tVOTING POWER\tSIGNED")
		for _, s := range slots {
			fmt.Fprintf(w, "%x\t%d\t%v\n", s.Pubkey, s.VotingPower, s.Signature != nil)
		}
		return w.Flush()
	},
}

func kindName(k bridge.MessageKind) string {
	switch k {
	case bridge.MessageBatch:
		return "batch"
	case bridge.MessageLogicCall:
		return "logic_call"
	case bridge.MessageUpdateValset:
		return "update_valset"
	default:
		return "unknown"
	}
}

func init() {
	outboxCmd.AddCommand(outboxListCmd, outboxGetCmd, outboxSigstatusCmd)
}
