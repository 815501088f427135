package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/arvindsh/dfscore/internal/protocol/wire"
)

var streamCmd = &cobra.Command{
	Use:   "stream <file>",
	Short: "Print a file's contents one word at a time",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		nm, err := dialNM()
		if err != nil {
			return err
		}
		defer nm.Close()

		ss, err := locate(nm, wire.KindStream, args[0])
		if err != nil {
			return err
		}
		defer ss.Close()

		if err := ss.WriteRecord(&wire.Record{Kind: wire.KindStream, Filename: args[0]}); err != nil {
			return err
		}

		for {
			resp, err := ss.ReadRecord()
			if err != nil {
				return err
			}
			if !resp.OK() {
				printResponse(resp)
				return nil
			}
			if string(resp.Data) == wire.StreamStop {
				return nil
			}
			fmt.Println(string(resp.Data))
		}
	},
}
