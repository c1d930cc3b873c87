package guard

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nvoronin/sheetguard/internal/audit"
	"github.com/nvoronin/sheetguard/internal/model"
	"github.com/nvoronin/sheetguard/internal/policy"
	"github.com/nvoronin/sheetguard/internal/store"
)

func writePolicy(t *testing.T, yaml string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "policy.yaml")
	if err := os.WriteFile(path, []byte(yaml), 0600); err != nil {
		t.Fatal(err)
	}
	return path
}

func newGuard(t *testing.T, records []model.Record, cfg Config) *Guard {
	t.Helper()
	st := store.NewMemory()
	ctx := context.Background()
	for _, rec := range records {
		if err := st.Put(ctx, rec); err != nil {
			t.Fatal(err)
		}
	}
	g, err := New(st, cfg)
	if err != nil {
		t.Fatalf("new guard: %v", err)
	}
	t.Cleanup(func() { g.Close() })
	return g
}

func TestEvaluateRangeRedactsRestrictedCell(t *testing.T) {
	records := []model.Record{
		{
			Selector:       model.CellSelector{DocumentID: "doc-1", SheetID: "S1", Row: 1, Col: 1},
			Classification: model.Classification{Level: model.LevelRestricted, Labels: []string{"pii"}},
		},
	}
	g := newGuard(t, records, Config{})
	op := g.Begin()

	q := model.RangeQuery{DocumentID: "doc-1", SheetID: "S1", Range: model.Range{EndRow: 2, EndCol: 2}}
	eval, err := op.EvaluateRange(context.Background(), q, EvalOptions{})
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}

	// Default ai_cloud_processing policy: max internal, redact on.
	if eval.Decision.Outcome != policy.Redact {
		t.Errorf("expected redact, got %s", eval.Decision.Outcome)
	}
	if eval.Classification.Level != model.LevelRestricted {
		t.Errorf("expected restricted classification, got %s", eval.Classification.Level)
	}
	if eval.RecordsTotal != 1 || eval.RecordsApplied != 1 {
		t.Errorf("unexpected counts: total=%d applied=%d", eval.RecordsTotal, eval.RecordsApplied)
	}
}

func TestEvaluateRangeCleanDocumentAllows(t *testing.T) {
	g := newGuard(t, nil, Config{})
	op := g.Begin()

	q := model.RangeQuery{DocumentID: "doc-1", SheetID: "S1", Range: model.Range{EndRow: 9, EndCol: 9}}
	eval, err := op.EvaluateRange(context.Background(), q, EvalOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if eval.Decision.Outcome != policy.Allow {
		t.Errorf("expected allow, got %s", eval.Decision.Outcome)
	}
}

func TestHeuristicTierTightensDecision(t *testing.T) {
	// No structured records, but the cell text carries an SSN: the
	// combined tier must win over the structured allow.
	g := newGuard(t, nil, Config{})
	op := g.Begin()

	q := model.RangeQuery{DocumentID: "doc-1", SheetID: "S1", Range: model.Range{EndRow: 0, EndCol: 1}}
	opts := EvalOptions{CellText: [][]string{{"note", "ssn 123-45-6789"}}}

	eval, err := op.EvaluateRange(context.Background(), q, opts)
	if err != nil {
		t.Fatal(err)
	}
	if eval.Decision.Outcome != policy.Redact {
		t.Errorf("expected redact from heuristic tier, got %s", eval.Decision.Outcome)
	}
	if eval.Classification.Level != model.LevelRestricted {
		t.Errorf("expected restricted combined classification, got %s", eval.Classification.Level)
	}
}

func TestOperationReusesDocumentIndex(t *testing.T) {
	records := []model.Record{
		{
			Selector:       model.SheetSelector{DocumentID: "doc-1", SheetID: "S1"},
			Classification: model.Classification{Level: model.LevelConfidential},
		},
	}
	st := store.NewMemory()
	ctx := context.Background()
	for _, rec := range records {
		if err := st.Put(ctx, rec); err != nil {
			t.Fatal(err)
		}
	}
	counting := &countingStore{Store: st}
	g, err := New(counting, Config{})
	if err != nil {
		t.Fatal(err)
	}
	defer g.Close()

	op := g.Begin()
	for i := 0; i < 20; i++ {
		q := model.RangeQuery{DocumentID: "doc-1", SheetID: "S1", Range: model.Range{StartRow: i, EndRow: i + 5, EndCol: 5}}
		if _, err := op.EvaluateRange(ctx, q, EvalOptions{}); err != nil {
			t.Fatal(err)
		}
	}

	if counting.lists != 1 {
		t.Errorf("expected 1 store read per operation, got %d", counting.lists)
	}

	// A new operation re-reads the store.
	op2 := g.Begin()
	q := model.RangeQuery{DocumentID: "doc-1", SheetID: "S1", Range: model.Range{EndRow: 1, EndCol: 1}}
	if _, err := op2.EvaluateRange(ctx, q, EvalOptions{}); err != nil {
		t.Fatal(err)
	}
	if counting.lists != 2 {
		t.Errorf("expected fresh read for a new operation, got %d reads", counting.lists)
	}
}

type countingStore struct {
	store.Store
	lists int
}

func (c *countingStore) List(ctx context.Context, documentID string) ([]model.Record, error) {
	c.lists++
	return c.Store.List(ctx, documentID)
}

func TestMaskSelectionRedactsOnlyDisallowedCells(t *testing.T) {
	records := []model.Record{
		{
			Selector:       model.CellSelector{DocumentID: "doc-1", SheetID: "S1", Row: 1, Col: 1},
			Classification: model.Classification{Level: model.LevelRestricted},
		},
	}
	g := newGuard(t, records, Config{})
	op := g.Begin()

	grid := [][]string{
		{"a", "b"},
		{"c", "d"},
	}
	q := model.RangeQuery{DocumentID: "doc-1", SheetID: "S1", Range: model.Range{EndRow: 1, EndCol: 1}}

	masked, eval, err := op.MaskSelection(context.Background(), q, grid, EvalOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if eval.Decision.Outcome != policy.Redact {
		t.Fatalf("expected redact, got %s", eval.Decision.Outcome)
	}
	if masked[1][1] != "[REDACTED]" {
		t.Errorf("restricted cell not masked: %q", masked[1][1])
	}
	for _, p := range [][2]int{{0, 0}, {0, 1}, {1, 0}} {
		if masked[p[0]][p[1]] == "[REDACTED]" {
			t.Errorf("cell (%d,%d) masked without cause", p[0], p[1])
		}
	}
}

func TestMaskSelectionMasksHeuristicHits(t *testing.T) {
	g := newGuard(t, nil, Config{})
	op := g.Begin()

	grid := [][]string{
		{"name", "contact"},
		{"alice", "alice@corp.example"},
	}
	q := model.RangeQuery{DocumentID: "doc-1", SheetID: "S1", Range: model.Range{EndRow: 1, EndCol: 1}}

	masked, eval, err := op.MaskSelection(context.Background(), q, grid, EvalOptions{})
	if err != nil {
		t.Fatal(err)
	}
	// Email is confidential, above the default internal threshold.
	if eval.Decision.Outcome != policy.Redact {
		t.Fatalf("expected redact, got %s", eval.Decision.Outcome)
	}
	if masked[1][1] != "[REDACTED]" {
		t.Errorf("cell with email not masked: %q", masked[1][1])
	}
	if masked[0][0] != "name" || masked[1][0] != "alice" {
		t.Errorf("clean cells were masked: %v", masked)
	}
}

func TestMaskSelectionBlockMasksEverything(t *testing.T) {
	records := []model.Record{
		{
			Selector:       model.DocumentSelector{DocumentID: "doc-1"},
			Classification: model.Classification{Level: model.LevelConfidential},
		},
	}
	policyPath := writePolicy(t, `actions:
  ai_cloud_processing:
    max_allowed: internal
    redact_disallowed: false
`)
	g := newGuard(t, records, Config{PolicyPath: policyPath})
	op := g.Begin()

	grid := [][]string{{"x", "y"}}
	q := model.RangeQuery{DocumentID: "doc-1", SheetID: "S1", Range: model.Range{EndRow: 0, EndCol: 1}}

	masked, eval, err := op.MaskSelection(context.Background(), q, grid, EvalOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if eval.Decision.Outcome != policy.Block {
		t.Fatalf("expected block, got %s", eval.Decision.Outcome)
	}
	for _, v := range masked[0] {
		if v != "[REDACTED]" {
			t.Errorf("block must mask every cell, found %q", v)
		}
	}
}

func TestRestrictedOverrideEndToEnd(t *testing.T) {
	records := []model.Record{
		{
			Selector:       model.SheetSelector{DocumentID: "doc-1", SheetID: "S1"},
			Classification: model.Classification{Level: model.LevelRestricted},
		},
	}
	policyPath := writePolicy(t, `actions:
  ai_cloud_processing:
    max_allowed: internal
    allow_restricted_content: true
    redact_disallowed: false
`)
	g := newGuard(t, records, Config{PolicyPath: policyPath})
	op := g.Begin()
	q := model.RangeQuery{DocumentID: "doc-1", SheetID: "S1", Range: model.Range{EndRow: 1, EndCol: 1}}

	eval, err := op.EvaluateRange(context.Background(), q, EvalOptions{IncludeRestrictedContent: true})
	if err != nil {
		t.Fatal(err)
	}
	if eval.Decision.Outcome != policy.Allow {
		t.Errorf("expected allow via override, got %s", eval.Decision.Outcome)
	}

	eval, err = op.EvaluateRange(context.Background(), q, EvalOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if eval.Decision.Outcome != policy.Block {
		t.Errorf("expected block without caller opt-in, got %s", eval.Decision.Outcome)
	}
}

func TestEvaluationsAreAudited(t *testing.T) {
	auditPath := filepath.Join(t.TempDir(), "audit.jsonl")
	g := newGuard(t, nil, Config{AuditPath: auditPath})
	op := g.Begin()

	q := model.RangeQuery{DocumentID: "doc-1", SheetID: "S1", Range: model.Range{EndRow: 1, EndCol: 1}}
	if _, err := op.EvaluateRange(context.Background(), q, EvalOptions{}); err != nil {
		t.Fatal(err)
	}
	g.Close()

	result := audit.Verify(auditPath)
	if !result.Valid || result.Lines != 1 {
		t.Fatalf("expected 1 valid audit line, got %+v", result)
	}
	data, err := os.ReadFile(auditPath)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `"outcome":"allow"`) {
		t.Errorf("audit entry missing outcome: %s", data)
	}
	if !strings.Contains(string(data), `"action":"ai_cloud_processing"`) {
		t.Errorf("audit entry missing action: %s", data)
	}
}

func TestReloadPolicy(t *testing.T) {
	policyPath := writePolicy(t, `actions:
  ai_cloud_processing:
    max_allowed: restricted
`)
	g := newGuard(t, nil, Config{PolicyPath: policyPath})
	if g.Policy().MaxAllowed != "restricted" {
		t.Fatalf("initial policy not loaded: %+v", g.Policy())
	}

	if err := os.WriteFile(policyPath, []byte(`actions:
  ai_cloud_processing:
    max_allowed: public
`), 0600); err != nil {
		t.Fatal(err)
	}
	if err := g.ReloadPolicy(policyPath); err != nil {
		t.Fatal(err)
	}
	if g.Policy().MaxAllowed != "public" {
		t.Errorf("policy not reloaded: %+v", g.Policy())
	}
}
