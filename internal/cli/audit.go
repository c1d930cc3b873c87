package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/nvoronin/sheetguard/internal/audit"
)

var auditVerifyFormat string

func init() {
	rootCmd.AddCommand(auditCmd)
	auditCmd.AddCommand(auditVerifyCmd)
	auditVerifyCmd.Flags().StringVarP(&auditVerifyFormat, "format", "f", "text", "Output format (text|json)")
}

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Audit log operations",
}

var auditVerifyCmd = &cobra.Command{
	Use:   "verify <path>",
	Short: "Verify the audit log hash chain",
	Long: "Walks the JSONL audit log and validates the SHA-256 hash chain.\n" +
		"Exit code 0 if the chain is intact, 1 if broken.",
	Args: cobra.ExactArgs(1),
	RunE: runAuditVerify,
}

func runAuditVerify(cmd *cobra.Command, args []string) error {
	result := audit.Verify(args[0])

	switch auditVerifyFormat {
	case "json":
		out, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(out))
	default:
		if result.Valid {
			fmt.Printf("valid chain, %d entries\n", result.Lines)
		} else {
			fmt.Printf("INVALID: %s", result.Error)
			if result.ErrorLine > 0 {
				fmt.Printf(" (line %d)", result.ErrorLine)
			}
			fmt.Println()
		}
	}

	if !result.Valid {
		os.Exit(1)
	}
	return nil
}
