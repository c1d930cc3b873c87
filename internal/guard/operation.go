package guard

import (
	"context"
	"fmt"
	"sync"

	"github.com/nvoronin/sheetguard/internal/audit"
	"github.com/nvoronin/sheetguard/internal/detect"
	"github.com/nvoronin/sheetguard/internal/docindex"
	"github.com/nvoronin/sheetguard/internal/model"
	"github.com/nvoronin/sheetguard/internal/policy"
	"github.com/nvoronin/sheetguard/internal/redact"
	"github.com/nvoronin/sheetguard/internal/selindex"
)

// docEntry caches one document's loaded records and built index for the
// lifetime of an operation.
type docEntry struct {
	records []model.Record
	index   *docindex.Index
}

// Operation scopes index reuse to one logical operation: every range query
// against the same document shares one record snapshot and one document
// index. Records changing mid-operation are the caller's problem; start a
// new Operation to see them.
type Operation struct {
	g    *Guard
	mu   sync.Mutex
	docs map[string]*docEntry
}

// Begin starts a logical operation with an empty index cache.
func (g *Guard) Begin() *Operation {
	return &Operation{g: g, docs: make(map[string]*docEntry)}
}

// EvalOptions carries per-call inputs for EvaluateRange.
type EvalOptions struct {
	// IncludeRestrictedContent is the caller half of the restricted-content
	// override.
	IncludeRestrictedContent bool
	// CellText, when non-nil, is the range's cell content; it enables the
	// heuristic tier. CellText[r][c] corresponds to the point
	// (range.StartRow+r, range.StartCol+c).
	CellText [][]string
}

// Evaluation is the result of one range evaluation.
type Evaluation struct {
	// Decision is the enforced decision: the stricter of the structured
	// tier and (when cell text was supplied) the combined tier.
	Decision policy.Decision
	// Classification is the effective classification behind Decision.
	Classification model.Classification
	// RecordsTotal is the number of records loaded for the document.
	RecordsTotal int
	// RecordsApplied is the number retained by the document index.
	RecordsApplied int
}

// entry returns the cached record snapshot and document index for a
// document, loading and building them on first use.
func (op *Operation) entry(ctx context.Context, documentID string) (*docEntry, error) {
	op.mu.Lock()
	defer op.mu.Unlock()

	if e, ok := op.docs[documentID]; ok {
		return e, nil
	}

	records, err := op.g.store.List(ctx, documentID)
	if err != nil {
		return nil, fmt.Errorf("guard: list records: %w", err)
	}
	idx, err := docindex.Build(ctx, records, documentID)
	if err != nil {
		return nil, err
	}

	e := &docEntry{records: records, index: idx}
	op.docs[documentID] = e
	return e, nil
}

// EvaluateRange computes the effective classification of a range and the
// policy decision for it. Two tiers are evaluated: the structured
// classification alone, and — when opts.CellText is supplied — the
// combination of structured and heuristic classification. The stricter
// decision wins. Every evaluation is written to the audit log.
func (op *Operation) EvaluateRange(ctx context.Context, q model.RangeQuery, opts EvalOptions) (Evaluation, error) {
	e, err := op.entry(ctx, q.DocumentID)
	if err != nil {
		return Evaluation{}, err
	}

	structured, err := e.index.RangeClassification(ctx, q.SheetID, q.Range)
	if err != nil {
		return Evaluation{}, err
	}

	pol := op.g.Policy()
	dopts := policy.DecideOptions{IncludeRestrictedContent: opts.IncludeRestrictedContent}

	cls := structured
	decision := policy.Decide(structured, pol, dopts)

	if opts.CellText != nil {
		heuristic, err := detect.ClassifyGrid(ctx, opts.CellText)
		if err != nil {
			return Evaluation{}, err
		}
		combined := model.Combine(structured, heuristic)
		combinedDecision := policy.Decide(combined, pol, dopts)
		if policy.MoreRestrictive(decision.Outcome, combinedDecision.Outcome) != decision.Outcome {
			decision = combinedDecision
		}
		cls = combined
	}

	eval := Evaluation{
		Decision:       decision,
		Classification: cls,
		RecordsTotal:   len(e.records),
		RecordsApplied: e.index.Retained(),
	}

	op.g.recordAudit(audit.Entry{
		Query:          audit.QueryRefFrom(q),
		Outcome:        string(decision.Outcome),
		Level:          string(cls.Level),
		Labels:         cls.Labels,
		RecordsTotal:   eval.RecordsTotal,
		RecordsApplied: eval.RecordsApplied,
	})

	return eval, nil
}

// MaskSelection evaluates a range and returns a copy of grid fit to send
// out: unmodified on Allow, fully masked on Block, and per-point masked on
// Redact using a selection index built with the decision's threshold.
// grid[r][c] corresponds to (q.Range.StartRow+r, q.Range.StartCol+c).
func (op *Operation) MaskSelection(ctx context.Context, q model.RangeQuery, grid [][]string, opts EvalOptions) ([][]string, Evaluation, error) {
	if opts.CellText == nil {
		opts.CellText = grid
	}

	eval, err := op.EvaluateRange(ctx, q, opts)
	if err != nil {
		return nil, Evaluation{}, err
	}

	switch eval.Decision.Outcome {
	case policy.Allow:
		return redact.CopyGrid(grid), eval, nil

	case policy.Block:
		return redact.MaskAll(grid, ""), eval, nil

	default: // policy.Redact
		e, err := op.entry(ctx, q.DocumentID)
		if err != nil {
			return nil, Evaluation{}, err
		}
		idx, err := selindex.Build(ctx, e.records, q, eval.Decision.MaxAllowedRank())
		if err != nil {
			return nil, Evaluation{}, err
		}

		maxRank := eval.Decision.MaxAllowedRank()
		allowed := func(row, col int) bool {
			if !idx.Allowed(row, col) {
				return false
			}
			if maxRank == nil {
				return false
			}
			// Heuristic tier per cell: text that scans above the
			// threshold is masked even where no structured record
			// applies.
			r := row - q.Range.StartRow
			c := col - q.Range.StartCol
			if r < len(grid) && c < len(grid[r]) {
				if detect.Classify(grid[r][c]).Rank() > *maxRank {
					return false
				}
			}
			return true
		}
		return redact.MaskGrid(grid, q.Range.StartRow, q.Range.StartCol, allowed, ""), eval, nil
	}
}
