package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/nvoronin/sheetguard/internal/mcp"
)

var (
	mcpDB      string
	mcpRecords string
	mcpPolicy  string
	mcpAudit   string
	mcpAction  string
)

func init() {
	rootCmd.AddCommand(mcpCmd)
	mcpCmd.Flags().StringVar(&mcpDB, "db", "", "Path to SQLite record store")
	mcpCmd.Flags().StringVar(&mcpRecords, "records", "", "Path to classification records YAML")
	mcpCmd.Flags().StringVar(&mcpPolicy, "policy", "", "Path to policy YAML (optional)")
	mcpCmd.Flags().StringVar(&mcpAudit, "audit-log", "", "Path to the audit log (optional)")
	mcpCmd.Flags().StringVar(&mcpAction, "action", "", "Protected action name (default ai_cloud_processing)")
}

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve sheetguard tools over MCP (stdio)",
	Long: "Starts an MCP server on stdio exposing sheetguard_check,\n" +
		"sheetguard_classify, and sheetguard_mask. The policy file is watched\n" +
		"and hot-reloaded on change.",
	RunE: runMCP,
}

func runMCP(cmd *cobra.Command, args []string) error {
	srv, err := mcp.New(mcp.Config{
		StorePath:   mcpDB,
		RecordsPath: mcpRecords,
		PolicyPath:  mcpPolicy,
		AuditPath:   mcpAudit,
		Action:      mcpAction,
	})
	if err != nil {
		return err
	}
	defer srv.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if mcpPolicy != "" {
		reloader, err := mcp.NewReloader(srv, []string{mcpPolicy})
		if err != nil {
			fmt.Fprintf(os.Stderr, "policy watcher disabled: %v\n", err)
		} else {
			go reloader.Run(ctx)
		}
	}

	return srv.Run(ctx)
}
