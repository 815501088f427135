// Package commands implements the dfsctl CLI, a thin client adequate to
// drive the DFS wire protocol for manual testing. Every operation is a
// one-shot subcommand; there is no interactive menu.
package commands

import (
	"os"

	"github.com/spf13/cobra"
)

var (
	// Version information injected at build time.
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"

	nmAddr   string
	username string
)

var rootCmd = &cobra.Command{
	Use:   "dfsctl",
	Short: "dfsctl - a thin client for the DFS name server and storage servers",
	Long: `dfsctl is a one-shot command-line client for the distributed file
system. Each subcommand opens a connection, performs exactly one
operation, prints the result, and exits.

Use "dfsctl [command] --help" for more information about a command.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and runs it.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&nmAddr, "nm", "127.0.0.1:8080", "name server address")
	rootCmd.PersistentFlags().StringVar(&username, "user", os.Getenv("USER"), "username to act as")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(completionCmd)
	rootCmd.AddCommand(viewCmd)
	rootCmd.AddCommand(createCmd)
	rootCmd.AddCommand(deleteCmd)
	rootCmd.AddCommand(infoCmd)
	rootCmd.AddCommand(readCmd)
	rootCmd.AddCommand(streamCmd)
	rootCmd.AddCommand(undoCmd)
	rootCmd.AddCommand(writeCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(addAccessCmd)
	rootCmd.AddCommand(remAccessCmd)
	rootCmd.AddCommand(execCmd)

	rootCmd.CompletionOptions.DisableDefaultCmd = true
}

// PrintErr prints an error message to stderr.
func PrintErr(format string, args ...any) {
	rootCmd.PrintErrf(format+"\n", args...)
}
