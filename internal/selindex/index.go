// Package selindex builds a point-query index over one rectangular
// selection. The index is built once per selection in O(records) and then
// answers per-point allow/disallow queries in O(1) amortized time, so a
// caller masking tens of thousands of cells never re-scans the record set.
package selindex

import (
	"context"
	"fmt"
	"sort"

	"github.com/nvoronin/sheetguard/internal/model"
)

// rangeEntry is a surviving range-scoped record, reduced to its geometry
// and rank. Entries are kept sorted by descending rank so point queries can
// stop at the first containing rectangle.
type rangeEntry struct {
	rng  model.Range
	rank int
}

// Index answers "is point (row, col) allowed under the build threshold?"
// for points inside the rectangle it was built for. Read-only after Build;
// safe for concurrent queries.
type Index struct {
	query     model.RangeQuery
	threshold int
	forbidAll bool // nil threshold at build: policy forbids everything

	baseRank   int   // max of document- and sheet-scoped record ranks
	columnRank []int // per column offset, -1 when no column record applies
	cellRank   []int // rows*cols dense array, allocated only if cell records survive
	ranges     []rangeEntry

	retained int
}

// Build constructs an index for the query rectangle. Records whose rank is
// at or below maxAllowed are pruned: they can never push a point above the
// threshold, so discarding them cannot change any allow/disallow answer.
// A nil maxAllowed means the policy forbids everything; the returned index
// answers false for every point without inspecting records.
//
// Build checks ctx at each record and returns ctx.Err() on cancellation,
// never a partial index.
func Build(ctx context.Context, records []model.Record, query model.RangeQuery, maxAllowed *int) (*Index, error) {
	idx := &Index{
		query:      query,
		baseRank:   -1,
		columnRank: make([]int, query.Range.Cols()),
	}
	for i := range idx.columnRank {
		idx.columnRank[i] = -1
	}

	if maxAllowed == nil {
		idx.forbidAll = true
		return idx, nil
	}
	idx.threshold = *maxAllowed

	for _, rec := range records {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		rank := rec.Classification.Rank()
		if rank <= idx.threshold {
			continue // pruned: cannot affect any outcome
		}
		if rec.Selector == nil || rec.Selector.DocID() != query.DocumentID {
			continue
		}

		switch sel := rec.Selector.(type) {
		case model.DocumentSelector:
			if rank > idx.baseRank {
				idx.baseRank = rank
			}
		case model.SheetSelector:
			if sel.SheetID != query.SheetID {
				continue
			}
			if rank > idx.baseRank {
				idx.baseRank = rank
			}
		case model.ColumnSelector:
			if sel.SheetID != query.SheetID || !query.Range.ContainsCol(sel.Col) {
				continue
			}
			off := sel.Col - query.Range.StartCol
			if rank > idx.columnRank[off] {
				idx.columnRank[off] = rank
			}
		case model.CellSelector:
			if sel.SheetID != query.SheetID || !query.Range.Contains(sel.Row, sel.Col) {
				continue
			}
			if idx.cellRank == nil {
				idx.cellRank = make([]int, query.Range.Area())
				for i := range idx.cellRank {
					idx.cellRank[i] = -1
				}
			}
			off := idx.cellOffset(sel.Row, sel.Col)
			if rank > idx.cellRank[off] {
				idx.cellRank[off] = rank
			}
		case model.RangeSelector:
			rng := sel.Range.Normalize()
			if sel.SheetID != query.SheetID || !query.Range.Intersects(rng) {
				continue
			}
			idx.ranges = append(idx.ranges, rangeEntry{rng: rng, rank: rank})
		default:
			continue // unrecognized scope: malformed record, skipped
		}
		idx.retained++
	}

	sort.SliceStable(idx.ranges, func(i, j int) bool {
		return idx.ranges[i].rank > idx.ranges[j].rank
	})

	return idx, nil
}

// Allowed reports whether the point may be sent through under the build
// threshold. Scopes fold from least to most specific, short-circuiting as
// soon as the accumulated rank exceeds the threshold.
//
// Querying a point outside the build rectangle is a caller contract
// violation and panics.
func (idx *Index) Allowed(row, col int) bool {
	if !idx.query.Range.Contains(row, col) {
		panic(fmt.Sprintf("selindex: point (%d,%d) outside indexed range %+v", row, col, idx.query.Range))
	}
	if idx.forbidAll {
		return false
	}

	rank := idx.baseRank
	if rank > idx.threshold {
		return false
	}

	if r := idx.columnRank[col-idx.query.Range.StartCol]; r > rank {
		rank = r
		if rank > idx.threshold {
			return false
		}
	}

	if idx.cellRank != nil {
		if r := idx.cellRank[idx.cellOffset(row, col)]; r > rank {
			rank = r
			if rank > idx.threshold {
				return false
			}
		}
	}

	// Entries are sorted by descending rank: the first containing rectangle
	// is the best possible, and once remaining ranks cannot beat the
	// accumulated rank the scan stops.
	for _, e := range idx.ranges {
		if e.rank <= rank {
			break
		}
		if e.rng.Contains(row, col) {
			rank = e.rank
			break
		}
	}

	return rank <= idx.threshold
}

// Retained returns the number of records that survived pruning and
// scope filtering during the build.
func (idx *Index) Retained() int { return idx.retained }

func (idx *Index) cellOffset(row, col int) int {
	return (row-idx.query.Range.StartRow)*idx.query.Range.Cols() + (col - idx.query.Range.StartCol)
}
