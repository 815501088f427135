package commands

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/arvindsh/dfscore/internal/protocol/wire"
)

var writeEdits []string

var writeCmd = &cobra.Command{
	Use:   "write <file> <sentence-index>",
	Short: "Open a write session on a sentence and apply a batch of edits",
	Long: `Open a write session on the sentence at <sentence-index> (pass the
file's current sentence count to append a new sentence) and apply each
--edit "<word-index>:<content>" in order, then commit with the ETIRW
sentinel.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		filename := args[0]
		sentenceIndex, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("invalid sentence index %q: %w", args[1], err)
		}

		nm, err := dialNM()
		if err != nil {
			return err
		}
		defer nm.Close()

		ss, err := locate(nm, wire.KindWrite, filename)
		if err != nil {
			return err
		}
		defer ss.Close()

		if err := ss.WriteRecord(&wire.Record{
			Kind:     wire.KindWrite,
			Username: username,
			Filename: filename,
			Flags:    int32(sentenceIndex),
		}); err != nil {
			return err
		}
		lockAck, err := ss.ReadRecord()
		if err != nil {
			return err
		}
		if !lockAck.OK() {
			printResponse(lockAck)
			return nil
		}

		for _, edit := range writeEdits {
			wordIndex, content, err := parseEdit(edit)
			if err != nil {
				return err
			}
			if err := ss.WriteRecord(&wire.Record{WordIndex: int32(wordIndex), Data: []byte(content)}); err != nil {
				return err
			}
			ack, err := ss.ReadRecord()
			if err != nil {
				return err
			}
			printResponse(ack)
		}

		if err := ss.WriteRecord(&wire.Record{Data: []byte(wire.ETIRW)}); err != nil {
			return err
		}
		final, err := ss.ReadRecord()
		if err != nil {
			return err
		}
		printResponse(final)
		return nil
	},
}

func parseEdit(edit string) (int, string, error) {
	idx := strings.IndexByte(edit, ':')
	if idx < 0 {
		return 0, "", fmt.Errorf("malformed --edit %q, expected \"<word-index>:<content>\"", edit)
	}
	wordIndex, err := strconv.Atoi(edit[:idx])
	if err != nil {
		return 0, "", fmt.Errorf("malformed word index in --edit %q: %w", edit, err)
	}
	return wordIndex, edit[idx+1:], nil
}

func init() {
	writeCmd.Flags().StringArrayVar(&writeEdits, "edit", nil, `an edit to apply, "<word-index>:<content>" (repeatable)`)
}
