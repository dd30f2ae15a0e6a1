package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var keysCmd = &cobra.Command{
	Use:   "keys",
	Short: "Manage local validator signing keys",
}

var keysGenerateCmd = &cobra.Command{
	Use:   "generate [name]",
	Short: "Generate a new validator signing key",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ks, err := openKeystore()
		if err != nil {
			return err
		}
		meta, err := ks.Generate(args[0])
		if err != nil {
			return err
		}

		if jsonOut {
			return printJSON(meta)
		}
		fmt.Printf("generated key %q\n  eth address: %s\n", meta.Name, meta.EthAddress)
		return nil
	},
}

var keysListCmd = &cobra.Command{
	Use:   "list",
	Short: "List local validator signing keys",
	RunE: func(cmd *cobra.Command, args []string) error {
		ks, err := openKeystore()
		if err != nil {
			return err
		}
		keys := ks.List()

		if jsonOut {
			return printJSON(keys)
		}

		w := newTable()
		fmt.Fprintln(w, "NAME\tETH ADDRESS\tCREATED")
		for _, meta := range keys {
			fmt.Fprintf(w, "%s\t%s\t%s\n", meta.Name, meta.EthAddress, meta.CreatedAt.Format("2006-01-02T15:04:05Z07:00"))
		}
		return w.Flush()
	},
}

var keysShowCmd = &cobra.Command{
	Use:   "show [name]",
	Short: "Show a single validator signing key",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ks, err := openKeystore()
		if err != nil {
			return err
		}
		meta, err := ks.Get(args[0])
		if err != nil {
			return err
		}
		return printJSON(meta)
	},
}

func init() {
	keysCmd.AddCommand(keysGenerateCmd, keysListCmd, keysShowCmd)
}
