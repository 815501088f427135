package commands

import (
	"github.com/spf13/cobra"

	"github.com/arvindsh/dfscore/internal/protocol/wire"
)

var remAccessCmd = &cobra.Command{
	Use:   "remaccess <file> <target-user>",
	Short: "Revoke another user's access to a file you own",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		nm, err := dialNM()
		if err != nil {
			return err
		}
		defer nm.Close()

		if err := nm.WriteRecord(&wire.Record{
			Kind:     wire.KindRemAccess,
			Username: username,
			Filename: args[0],
			Target:   args[1],
		}); err != nil {
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
