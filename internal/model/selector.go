package model

// Selector describes which part of a document a classification record
// applies to. It is a closed sum type over five scopes: document, sheet,
// column, cell, range. Index builds dispatch with exhaustive type switches;
// a selector value outside this set is treated as malformed and skipped,
// never fatal.
type Selector interface {
	// DocID returns the document the selector is bound to. Records with a
	// mismatched document never influence a query (document isolation).
	DocID() string

	sealed()
}

// DocumentSelector applies to an entire document.
type DocumentSelector struct {
	DocumentID string
}

// SheetSelector applies to one sheet of a document.
type SheetSelector struct {
	DocumentID string
	SheetID    string
}

// ColumnSelector applies to one column of a sheet.
type ColumnSelector struct {
	DocumentID string
	SheetID    string
	Col        int
}

// CellSelector applies to a single cell of a sheet.
type CellSelector struct {
	DocumentID string
	SheetID    string
	Row        int
	Col        int
}

// RangeSelector applies to a rectangle of cells within a sheet.
type RangeSelector struct {
	DocumentID string
	SheetID    string
	Range      Range
}

func (s DocumentSelector) DocID() string { return s.DocumentID }
func (s SheetSelector) DocID() string    { return s.DocumentID }
func (s ColumnSelector) DocID() string   { return s.DocumentID }
func (s CellSelector) DocID() string     { return s.DocumentID }
func (s RangeSelector) DocID() string    { return s.DocumentID }

func (DocumentSelector) sealed() {}
func (SheetSelector) sealed()    {}
func (ColumnSelector) sealed()   {}
func (CellSelector) sealed()     {}
func (RangeSelector) sealed()    {}

// Record binds a selector to a classification. Records are immutable,
// caller-supplied, and only read during index construction.
type Record struct {
	Selector       Selector
	Classification Classification
}
