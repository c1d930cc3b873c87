// Package docindex builds a reusable per-document classification index.
// One O(records) build buckets records by scope per sheet; after that,
// arbitrarily many range queries resolve against the buckets without
// re-scanning the record set. The index is a derived, read-only view:
// callers rebuild it when the underlying records change.
package docindex

import (
	"context"

	"github.com/nvoronin/sheetguard/internal/model"
)

type cellKey struct {
	row, col int
}

type rectEntry struct {
	rng model.Range
	cls model.Classification
}

// sheetIndex holds the per-sheet scope buckets.
type sheetIndex struct {
	max     model.Classification // combined sheet-scoped records
	hasMax  bool
	columns map[int]model.Classification
	cells   map[cellKey]model.Classification
	rects   []rectEntry
}

// Index resolves range classifications for one document. Read-only after
// Build; safe to share across concurrent queries for the lifetime of one
// logical operation.
type Index struct {
	documentID string
	docMax     model.Classification // combined document-scoped records
	hasDocMax  bool
	sheets     map[string]*sheetIndex
	retained   int
}

// Build constructs the index in a single pass over the records. Records
// bound to a different document are discarded, as are records with an
// unrecognized selector. Build checks ctx at each record and returns
// ctx.Err() on cancellation, never a partial index.
func Build(ctx context.Context, records []model.Record, documentID string) (*Index, error) {
	idx := &Index{
		documentID: documentID,
		sheets:     make(map[string]*sheetIndex),
	}

	for _, rec := range records {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if rec.Selector == nil || rec.Selector.DocID() != documentID {
			continue
		}

		switch sel := rec.Selector.(type) {
		case model.DocumentSelector:
			idx.docMax = model.Combine(idx.docMax, rec.Classification)
			idx.hasDocMax = true
		case model.SheetSelector:
			sh := idx.sheet(sel.SheetID)
			sh.max = model.Combine(sh.max, rec.Classification)
			sh.hasMax = true
		case model.ColumnSelector:
			sh := idx.sheet(sel.SheetID)
			if sh.columns == nil {
				sh.columns = make(map[int]model.Classification)
			}
			sh.columns[sel.Col] = model.Combine(sh.columns[sel.Col], rec.Classification)
		case model.CellSelector:
			sh := idx.sheet(sel.SheetID)
			if sh.cells == nil {
				sh.cells = make(map[cellKey]model.Classification)
			}
			key := cellKey{row: sel.Row, col: sel.Col}
			sh.cells[key] = model.Combine(sh.cells[key], rec.Classification)
		case model.RangeSelector:
			sh := idx.sheet(sel.SheetID)
			sh.rects = append(sh.rects, rectEntry{rng: sel.Range.Normalize(), cls: rec.Classification})
		default:
			continue // unrecognized scope: malformed record, skipped
		}
		idx.retained++
	}

	return idx, nil
}

func (idx *Index) sheet(sheetID string) *sheetIndex {
	sh, ok := idx.sheets[sheetID]
	if !ok {
		sh = &sheetIndex{}
		idx.sheets[sheetID] = sh
	}
	return sh
}

// DocumentID returns the document the index was built for.
func (idx *Index) DocumentID() string { return idx.documentID }

// Retained returns the number of records kept during the build.
func (idx *Index) Retained() int { return idx.retained }

// RangeClassification computes the effective classification of a rectangle
// in a sheet: the combination of every applicable record, folding scopes
// from broadest to narrowest and returning early once the accumulated level
// reaches restricted. The range must be normalized.
//
// The cell stage checks ctx at loop boundaries so a cancelled caller does
// not block on a large scan; on cancellation it returns ctx.Err(), never a
// partial classification.
func (idx *Index) RangeClassification(ctx context.Context, sheetID string, rng model.Range) (model.Classification, error) {
	acc := model.Classification{Level: model.LevelPublic}
	var done bool

	if idx.hasDocMax {
		if acc, done = model.Fold(acc, idx.docMax); done {
			return acc, nil
		}
	}

	sh, ok := idx.sheets[sheetID]
	if !ok {
		return acc, nil
	}

	if sh.hasMax {
		if acc, done = model.Fold(acc, sh.max); done {
			return acc, nil
		}
	}

	for col, cls := range sh.columns {
		if err := ctx.Err(); err != nil {
			return model.Classification{}, err
		}
		if !rng.ContainsCol(col) {
			continue
		}
		if acc, done = model.Fold(acc, cls); done {
			return acc, nil
		}
	}

	for _, e := range sh.rects {
		if err := ctx.Err(); err != nil {
			return model.Classification{}, err
		}
		if !rng.Intersects(e.rng) {
			continue
		}
		if acc, done = model.Fold(acc, e.cls); done {
			return acc, nil
		}
	}

	return idx.foldCells(ctx, sh, rng, acc)
}

// foldCells folds cell-scoped classifications that fall inside the range,
// choosing whichever side is cheaper to enumerate: the range's cells or the
// cell map's entries.
func (idx *Index) foldCells(ctx context.Context, sh *sheetIndex, rng model.Range, acc model.Classification) (model.Classification, error) {
	if len(sh.cells) == 0 {
		return acc, nil
	}

	var done bool
	switch chooseStrategy(rng.Area(), len(sh.cells)) {
	case scanRange:
		for row := rng.StartRow; row <= rng.EndRow; row++ {
			if err := ctx.Err(); err != nil {
				return model.Classification{}, err
			}
			for col := rng.StartCol; col <= rng.EndCol; col++ {
				cls, ok := sh.cells[cellKey{row: row, col: col}]
				if !ok {
					continue
				}
				if acc, done = model.Fold(acc, cls); done {
					return acc, nil
				}
			}
		}
	case scanEntries:
		for key, cls := range sh.cells {
			if err := ctx.Err(); err != nil {
				return model.Classification{}, err
			}
			if !rng.Contains(key.row, key.col) {
				continue
			}
			if acc, done = model.Fold(acc, cls); done {
				return acc, nil
			}
		}
	}

	return acc, nil
}
