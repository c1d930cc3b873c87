package cli

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "sheetguard",
	Short: "DLP policy enforcement for spreadsheet content",
	Long: "Resolves caller-supplied classification records over documents, sheets,\n" +
		"columns, cells, and ranges into effective classifications, and turns them\n" +
		"into allow/redact/block decisions before content leaves for an external\n" +
		"AI or cloud process.",
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
