package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nvoronin/sheetguard/internal/store"
)

var (
	recordsImportDB string
	recordsListDB   string
)

func init() {
	rootCmd.AddCommand(recordsCmd)
	recordsCmd.AddCommand(recordsImportCmd)
	recordsCmd.AddCommand(recordsListCmd)
	recordsImportCmd.Flags().StringVar(&recordsImportDB, "db", "", "Path to SQLite record store (required)")
	recordsImportCmd.MarkFlagRequired("db")
	recordsListCmd.Flags().StringVar(&recordsListDB, "db", "", "Path to SQLite record store (required)")
	recordsListCmd.MarkFlagRequired("db")
}

var recordsCmd = &cobra.Command{
	Use:   "records",
	Short: "Classification record store operations",
}

var recordsImportCmd = &cobra.Command{
	Use:   "import <records.yaml>",
	Short: "Import classification records from YAML into SQLite",
	Args:  cobra.ExactArgs(1),
	RunE:  runRecordsImport,
}

var recordsListCmd = &cobra.Command{
	Use:   "list <document-id>",
	Short: "List stored classification records for a document",
	Args:  cobra.ExactArgs(1),
	RunE:  runRecordsList,
}

func runRecordsImport(cmd *cobra.Command, args []string) error {
	records, err := store.LoadRecords(args[0])
	if err != nil {
		return err
	}

	db, err := store.OpenSQLite(recordsImportDB)
	if err != nil {
		return err
	}
	defer db.Close()

	ctx := context.Background()
	for _, rec := range records {
		if err := db.Put(ctx, rec); err != nil {
			return fmt.Errorf("import record for %s: %w", rec.Selector.DocID(), err)
		}
	}

	fmt.Printf("imported %d records into %s\n", len(records), recordsImportDB)
	return nil
}

func runRecordsList(cmd *cobra.Command, args []string) error {
	db, err := store.OpenSQLite(recordsListDB)
	if err != nil {
		return err
	}
	defer db.Close()

	records, err := db.List(context.Background(), args[0])
	if err != nil {
		return err
	}

	for _, rec := range records {
		fmt.Printf("%-12s %v\n", rec.Classification.Level, rec.Selector)
	}
	fmt.Printf("%d records\n", len(records))
	return nil
}
