package commands

import (
	"github.com/spf13/cobra"

	"github.com/arvindsh/dfscore/internal/protocol/wire"
)

var (
	viewAll     bool
	viewDetails bool
)

var viewCmd = &cobra.Command{
	Use:   "view",
	Short: "List files visible to the current user",
	RunE: func(cmd *cobra.Command, args []string) error {
		nm, err := dialNM()
		if err != nil {
			return err
		}
		defer nm.Close()

		var flags int32
		if viewAll {
			flags |= 1 << 0
		}
		if viewDetails {
			flags |= 1 << 1
		}

		if err := nm.WriteRecord(&wire.Record{Kind: wire.KindView, Username: username, Flags: flags}); err != nil {
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
	viewCmd.Flags().BoolVarP(&viewAll, "all", "a", false, "show every file, not just ones the user can access")
	viewCmd.Flags().BoolVarP(&viewDetails, "long", "l", false, "show owner, word/char counts, and last-modified time")
}
