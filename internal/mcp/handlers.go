package mcp

import (
	"context"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/nvoronin/sheetguard/internal/guard"
	"github.com/nvoronin/sheetguard/internal/model"
)

// RangeInput addresses a rectangle inside a sheet of a document.
type RangeInput struct {
	DocumentID string `json:"document_id" jsonschema:"document identifier"`
	SheetID    string `json:"sheet_id" jsonschema:"sheet identifier"`
	StartRow   int    `json:"start_row,omitempty" jsonschema:"first row of the range (inclusive)"`
	StartCol   int    `json:"start_col,omitempty" jsonschema:"first column of the range (inclusive)"`
	EndRow     int    `json:"end_row" jsonschema:"last row of the range (inclusive)"`
	EndCol     int    `json:"end_col" jsonschema:"last column of the range (inclusive)"`
}

func (in RangeInput) query() model.RangeQuery {
	return model.RangeQuery{
		DocumentID: in.DocumentID,
		SheetID:    in.SheetID,
		Range: model.Range{
			StartRow: in.StartRow,
			StartCol: in.StartCol,
			EndRow:   in.EndRow,
			EndCol:   in.EndCol,
		}.Normalize(),
	}
}

// CheckInput defines parameters for the sheetguard_check tool.
type CheckInput struct {
	RangeInput
	IncludeRestrictedContent bool `json:"include_restricted_content,omitempty" jsonschema:"caller opt-in for the restricted-content override"`
}

// CheckOutput contains the policy decision for a range.
type CheckOutput struct {
	Outcome        string   `json:"outcome"`
	Level          string   `json:"level"`
	Labels         []string `json:"labels,omitempty"`
	MaxAllowed     string   `json:"max_allowed,omitempty"`
	RecordsApplied int      `json:"records_applied"`
}

func (s *Server) handleCheck(ctx context.Context, req *mcpsdk.CallToolRequest, input CheckInput) (*mcpsdk.CallToolResult, CheckOutput, error) {
	op := s.guard.Begin()
	eval, err := op.EvaluateRange(ctx, input.query(), guard.EvalOptions{
		IncludeRestrictedContent: input.IncludeRestrictedContent,
	})
	if err != nil {
		return nil, CheckOutput{}, err
	}

	out := CheckOutput{
		Outcome:        string(eval.Decision.Outcome),
		Level:          string(eval.Classification.Level),
		Labels:         eval.Classification.Labels,
		RecordsApplied: eval.RecordsApplied,
	}
	if eval.Decision.MaxAllowed != nil {
		out.MaxAllowed = string(*eval.Decision.MaxAllowed)
	}
	return nil, out, nil
}

// ClassifyInput defines parameters for the sheetguard_classify tool.
type ClassifyInput struct {
	RangeInput
}

// ClassifyOutput contains the effective classification of a range.
type ClassifyOutput struct {
	Level          string   `json:"level"`
	Labels         []string `json:"labels,omitempty"`
	RecordsTotal   int      `json:"records_total"`
	RecordsApplied int      `json:"records_applied"`
}

func (s *Server) handleClassify(ctx context.Context, req *mcpsdk.CallToolRequest, input ClassifyInput) (*mcpsdk.CallToolResult, ClassifyOutput, error) {
	op := s.guard.Begin()
	eval, err := op.EvaluateRange(ctx, input.query(), guard.EvalOptions{})
	if err != nil {
		return nil, ClassifyOutput{}, err
	}
	return nil, ClassifyOutput{
		Level:          string(eval.Classification.Level),
		Labels:         eval.Classification.Labels,
		RecordsTotal:   eval.RecordsTotal,
		RecordsApplied: eval.RecordsApplied,
	}, nil
}

// MaskInput defines parameters for the sheetguard_mask tool.
type MaskInput struct {
	RangeInput
	Grid                     [][]string `json:"grid" jsonschema:"cell values of the range, row-major, grid[0][0] at (start_row, start_col)"`
	IncludeRestrictedContent bool       `json:"include_restricted_content,omitempty" jsonschema:"caller opt-in for the restricted-content override"`
}

// MaskOutput contains the masked grid and the decision that produced it.
type MaskOutput struct {
	Outcome string     `json:"outcome"`
	Level   string     `json:"level"`
	Grid    [][]string `json:"grid"`
}

func (s *Server) handleMask(ctx context.Context, req *mcpsdk.CallToolRequest, input MaskInput) (*mcpsdk.CallToolResult, MaskOutput, error) {
	op := s.guard.Begin()
	masked, eval, err := op.MaskSelection(ctx, input.query(), input.Grid, guard.EvalOptions{
		IncludeRestrictedContent: input.IncludeRestrictedContent,
	})
	if err != nil {
		return nil, MaskOutput{}, err
	}
	return nil, MaskOutput{
		Outcome: string(eval.Decision.Outcome),
		Level:   string(eval.Classification.Level),
		Grid:    masked,
	}, nil
}
