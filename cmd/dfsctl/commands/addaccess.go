package commands

import (
	"github.com/spf13/cobra"

	"github.com/arvindsh/dfscore/internal/protocol/wire"
)

var addAccessReadWrite bool

var addAccessCmd = &cobra.Command{
	Use:   "addaccess <file> <target-user>",
	Short: "Grant another user access to a file you own",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		nm, err := dialNM()
		if err != nil {
			return err
		}
		defer nm.Close()

		var mode int32
		if addAccessReadWrite {
			mode = 1
		}

		if err := nm.WriteRecord(&wire.Record{
			Kind:     wire.KindAddAccess,
			Username: username,
			Filename: args[0],
			Target:   args[1],
			Flags:    mode,
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

func init() {
	addAccessCmd.Flags().BoolVarP(&addAccessReadWrite, "write", "W", false, "grant read-write access (default read-only)")
}
