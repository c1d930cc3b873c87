package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nvoronin/sheetguard/internal/guard"
	"github.com/nvoronin/sheetguard/internal/model"
	"github.com/nvoronin/sheetguard/internal/policy"
	"github.com/nvoronin/sheetguard/internal/store"
)

var (
	checkRecords  string
	checkDB       string
	checkPolicy   string
	checkAction   string
	checkDocument string
	checkSheet    string
	checkStartRow int
	checkStartCol int
	checkEndRow   int
	checkEndCol   int
	checkInclude  bool
	checkFormat   string
)

func init() {
	rootCmd.AddCommand(checkCmd)
	checkCmd.Flags().StringVar(&checkRecords, "records", "", "Path to classification records YAML")
	checkCmd.Flags().StringVar(&checkDB, "db", "", "Path to SQLite record store")
	checkCmd.Flags().StringVar(&checkPolicy, "policy", "", "Path to policy YAML (optional)")
	checkCmd.Flags().StringVar(&checkAction, "action", "", "Protected action name (default ai_cloud_processing)")
	checkCmd.Flags().StringVar(&checkDocument, "document", "", "Document ID (required)")
	checkCmd.Flags().StringVar(&checkSheet, "sheet", "", "Sheet ID (required)")
	checkCmd.Flags().IntVar(&checkStartRow, "start-row", 0, "First row of the range (inclusive)")
	checkCmd.Flags().IntVar(&checkStartCol, "start-col", 0, "First column of the range (inclusive)")
	checkCmd.Flags().IntVar(&checkEndRow, "end-row", 0, "Last row of the range (inclusive)")
	checkCmd.Flags().IntVar(&checkEndCol, "end-col", 0, "Last column of the range (inclusive)")
	checkCmd.Flags().BoolVar(&checkInclude, "include-restricted", false, "Caller opt-in for the restricted-content override")
	checkCmd.Flags().StringVarP(&checkFormat, "format", "f", "text", "Output format (text|json)")
	checkCmd.MarkFlagRequired("document")
	checkCmd.MarkFlagRequired("sheet")
}

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Evaluate the policy decision for a range",
	Long: "Loads classification records from a YAML file or SQLite store, computes\n" +
		"the effective classification of the given range, and prints the policy\n" +
		"decision.\n\n" +
		"Exit code 0 for allow and redact, 1 for block.",
	RunE: runCheck,
}

func runCheck(cmd *cobra.Command, args []string) error {
	st, closer, err := openStore(checkDB, checkRecords)
	if err != nil {
		return err
	}
	if closer != nil {
		defer closer()
	}

	g, err := guard.New(st, guard.Config{Action: checkAction, PolicyPath: checkPolicy})
	if err != nil {
		return err
	}
	defer g.Close()

	q := model.RangeQuery{
		DocumentID: checkDocument,
		SheetID:    checkSheet,
		Range: model.Range{
			StartRow: checkStartRow,
			StartCol: checkStartCol,
			EndRow:   checkEndRow,
			EndCol:   checkEndCol,
		}.Normalize(),
	}

	eval, err := g.Begin().EvaluateRange(context.Background(), q, guard.EvalOptions{
		IncludeRestrictedContent: checkInclude,
	})
	if err != nil {
		return err
	}

	switch checkFormat {
	case "json":
		out, err := json.MarshalIndent(map[string]any{
			"outcome":         string(eval.Decision.Outcome),
			"level":           string(eval.Classification.Level),
			"labels":          eval.Classification.Labels,
			"records_total":   eval.RecordsTotal,
			"records_applied": eval.RecordsApplied,
		}, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(out))
	default:
		fmt.Printf("outcome: %s\n", eval.Decision.Outcome)
		fmt.Printf("level:   %s\n", eval.Classification.Level)
		if len(eval.Classification.Labels) > 0 {
			fmt.Printf("labels:  %s\n", strings.Join(eval.Classification.Labels, ", "))
		}
		fmt.Printf("records: %d applied of %d total\n", eval.RecordsApplied, eval.RecordsTotal)
	}

	if eval.Decision.Outcome == policy.Block {
		os.Exit(1)
	}
	return nil
}

// openStore resolves the record source flags shared by check and the mcp
// serve command: a SQLite path wins over a YAML records file.
func openStore(dbPath, recordsPath string) (store.Store, func() error, error) {
	switch {
	case dbPath != "":
		db, err := store.OpenSQLite(dbPath)
		if err != nil {
			return nil, nil, err
		}
		return db, db.Close, nil
	case recordsPath != "":
		records, err := store.LoadRecords(recordsPath)
		if err != nil {
			return nil, nil, err
		}
		mem := store.NewMemory()
		for _, rec := range records {
			if err := mem.Put(context.Background(), rec); err != nil {
				return nil, nil, err
			}
		}
		return mem, nil, nil
	default:
		return nil, nil, fmt.Errorf("either --db or --records is required")
	}
}
