package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/nvoronin/sheetguard/internal/model"

	_ "modernc.org/sqlite"
)

var errNilSelector = errors.New("store: record has no selector")

// Selector scope names as stored in the scope column.
const (
	scopeDocument = "document"
	scopeSheet    = "sheet"
	scopeColumn   = "column"
	scopeCell     = "cell"
	scopeRange    = "range"
)

const schema = `
CREATE TABLE IF NOT EXISTS classification_records (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	document_id TEXT NOT NULL,
	scope       TEXT NOT NULL,
	sheet_id    TEXT NOT NULL DEFAULT '',
	row_idx     INTEGER NOT NULL DEFAULT 0,
	col_idx     INTEGER NOT NULL DEFAULT 0,
	start_row   INTEGER NOT NULL DEFAULT 0,
	start_col   INTEGER NOT NULL DEFAULT 0,
	end_row     INTEGER NOT NULL DEFAULT 0,
	end_col     INTEGER NOT NULL DEFAULT 0,
	level       TEXT NOT NULL,
	labels      TEXT NOT NULL DEFAULT '[]'
);
CREATE INDEX IF NOT EXISTS idx_records_document
	ON classification_records(document_id);
`

// SQLite is a Store backed by a single SQLite database file
// (pure-Go driver, no cgo).
type SQLite struct {
	db *sql.DB
}

// OpenSQLite opens (or creates) the database at path and ensures the
// schema exists. Use ":memory:" for an ephemeral store.
func OpenSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("store: open database: %w", err)
	}
	// Single connection: avoids writer lock contention and keeps
	// ":memory:" databases from splitting across pool connections.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: create schema: %w", err)
	}
	return &SQLite{db: db}, nil
}

// Close closes the underlying database.
func (s *SQLite) Close() error {
	return s.db.Close()
}

// Put inserts a record, flattening the selector by scope.
func (s *SQLite) Put(ctx context.Context, rec model.Record) error {
	if rec.Selector == nil {
		return errNilSelector
	}

	var (
		scope    string
		sheetID  string
		rowIdx   int
		colIdx   int
		startRow int
		startCol int
		endRow   int
		endCol   int
	)

	switch sel := rec.Selector.(type) {
	case model.DocumentSelector:
		scope = scopeDocument
	case model.SheetSelector:
		scope, sheetID = scopeSheet, sel.SheetID
	case model.ColumnSelector:
		scope, sheetID, colIdx = scopeColumn, sel.SheetID, sel.Col
	case model.CellSelector:
		scope, sheetID, rowIdx, colIdx = scopeCell, sel.SheetID, sel.Row, sel.Col
	case model.RangeSelector:
		scope, sheetID = scopeRange, sel.SheetID
		rng := sel.Range.Normalize()
		startRow, startCol, endRow, endCol = rng.StartRow, rng.StartCol, rng.EndRow, rng.EndCol
	default:
		return fmt.Errorf("store: unsupported selector type %T", rec.Selector)
	}

	labels, err := json.Marshal(rec.Classification.Labels)
	if err != nil {
		return fmt.Errorf("store: marshal labels: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO classification_records
			(document_id, scope, sheet_id, row_idx, col_idx, start_row, start_col, end_row, end_col, level, labels)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.Selector.DocID(), scope, sheetID, rowIdx, colIdx,
		startRow, startCol, endRow, endCol,
		string(rec.Classification.Level), string(labels),
	)
	if err != nil {
		return fmt.Errorf("store: insert record: %w", err)
	}
	return nil
}

// List loads every record for a document in one query. Rows with an
// unrecognized scope or level are skipped, not fatal: one corrupt or
// future-versioned row must not make the document un-classifiable.
func (s *SQLite) List(ctx context.Context, documentID string) ([]model.Record, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT scope, sheet_id, row_idx, col_idx, start_row, start_col, end_row, end_col, level, labels
		FROM classification_records
		WHERE document_id = ?`,
		documentID,
	)
	if err != nil {
		return nil, fmt.Errorf("store: query records: %w", err)
	}
	defer rows.Close()

	var records []model.Record
	for rows.Next() {
		var (
			scope, sheetID, levelStr, labelsJSON string
			rowIdx, colIdx                       int
			startRow, startCol, endRow, endCol   int
		)
		if err := rows.Scan(&scope, &sheetID, &rowIdx, &colIdx,
			&startRow, &startCol, &endRow, &endCol, &levelStr, &labelsJSON); err != nil {
			return nil, fmt.Errorf("store: scan record: %w", err)
		}

		level, ok := model.ParseLevel(levelStr)
		if !ok {
			continue
		}

		var labels []string
		if err := json.Unmarshal([]byte(labelsJSON), &labels); err != nil {
			continue
		}

		var sel model.Selector
		switch scope {
		case scopeDocument:
			sel = model.DocumentSelector{DocumentID: documentID}
		case scopeSheet:
			sel = model.SheetSelector{DocumentID: documentID, SheetID: sheetID}
		case scopeColumn:
			sel = model.ColumnSelector{DocumentID: documentID, SheetID: sheetID, Col: colIdx}
		case scopeCell:
			sel = model.CellSelector{DocumentID: documentID, SheetID: sheetID, Row: rowIdx, Col: colIdx}
		case scopeRange:
			sel = model.RangeSelector{DocumentID: documentID, SheetID: sheetID, Range: model.Range{
				StartRow: startRow, StartCol: startCol, EndRow: endRow, EndCol: endCol,
			}}
		default:
			continue
		}

		records = append(records, model.Record{
			Selector:       sel,
			Classification: model.Classification{Level: level, Labels: labels},
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: iterate records: %w", err)
	}
	return records, nil
}

// DeleteDocument removes all records for a document.
func (s *SQLite) DeleteDocument(ctx context.Context, documentID string) error {
	if _, err := s.db.ExecContext(ctx,
		`DELETE FROM classification_records WHERE document_id = ?`, documentID); err != nil {
		return fmt.Errorf("store: delete document: %w", err)
	}
	return nil
}
