package commands

import (
	"github.com/spf13/cobra"

	"github.com/arvindsh/dfscore/internal/protocol/wire"
)

var deleteCmd = &cobra.Command{
	Use:   "delete <file>",
	Short: "Delete a file you own",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		nm, err := dialNM()
		if err != nil {
			return err
		}
		defer nm.Close()

		if err := nm.WriteRecord(&wire.Record{Kind: wire.KindDelete, Username: username, Filename: args[0]}); err != nil {
			return err
		}
		resp, err := nm.ReadRecord()
		if err != nil {
			return err
		}
		printResponse(resp)
		return nil
	},
}
