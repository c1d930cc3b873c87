package model

// Range is an inclusive rectangle of cells. Coordinates are zero-based.
type Range struct {
	StartRow int `json:"start_row" yaml:"start_row"`
	StartCol int `json:"start_col" yaml:"start_col"`
	EndRow   int `json:"end_row" yaml:"end_row"`
	EndCol   int `json:"end_col" yaml:"end_col"`
}

// Normalize returns the range with start <= end on both axes.
func (r Range) Normalize() Range {
	if r.StartRow > r.EndRow {
		r.StartRow, r.EndRow = r.EndRow, r.StartRow
	}
	if r.StartCol > r.EndCol {
		r.StartCol, r.EndCol = r.EndCol, r.StartCol
	}
	return r
}

// Contains reports whether the point lies inside the range.
func (r Range) Contains(row, col int) bool {
	return row >= r.StartRow && row <= r.EndRow && col >= r.StartCol && col <= r.EndCol
}

// ContainsCol reports whether the column index falls inside the column span.
func (r Range) ContainsCol(col int) bool {
	return col >= r.StartCol && col <= r.EndCol
}

// Intersects reports whether two ranges share at least one cell.
func (r Range) Intersects(o Range) bool {
	return r.StartRow <= o.EndRow && o.StartRow <= r.EndRow &&
		r.StartCol <= o.EndCol && o.StartCol <= r.EndCol
}

// Rows returns the number of rows in the range.
func (r Range) Rows() int { return r.EndRow - r.StartRow + 1 }

// Cols returns the number of columns in the range.
func (r Range) Cols() int { return r.EndCol - r.StartCol + 1 }

// Area returns the number of cells in the range.
func (r Range) Area() int { return r.Rows() * r.Cols() }

// RangeQuery addresses a rectangle inside a named sheet of a named document.
// The range must be normalized before querying.
type RangeQuery struct {
	DocumentID string `json:"document_id" yaml:"document_id"`
	SheetID    string `json:"sheet_id" yaml:"sheet_id"`
	Range      Range  `json:"range" yaml:"range"`
}
