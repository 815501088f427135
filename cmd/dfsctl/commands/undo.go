package commands

import (
	"github.com/spf13/cobra"

	"github.com/arvindsh/dfscore/internal/protocol/wire"
)

var undoCmd = &cobra.Command{
	Use:   "undo <file>",
	Short: "Revert a file to the pre-image before its last write",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		nm, err := dialNM()
		if err != nil {
			return err
		}
		defer nm.Close()

		ss, err := locate(nm, wire.KindUndo, args[0])
		if err != nil {
			return err
		}
		defer ss.Close()

		if err := ss.WriteRecord(&wire.Record{Kind: wire.KindUndo, Filename: args[0]}); err != nil {
			return err
		}
		resp, err := ss.ReadRecord()
		if err != nil {
			return err
		}
		printResponse(resp)
		return nil
	},
}
