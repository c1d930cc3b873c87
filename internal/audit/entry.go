package audit

import "github.com/nvoronin/sheetguard/internal/model"

// QueryRef is the flattened range query recorded in each audit entry.
type QueryRef struct {
	DocumentID string `json:"document_id"`
	SheetID    string `json:"sheet_id"`
	StartRow   int    `json:"start_row"`
	StartCol   int    `json:"start_col"`
	EndRow     int    `json:"end_row"`
	EndCol     int    `json:"end_col"`
}

// QueryRefFrom flattens a range query for audit.
func QueryRefFrom(q model.RangeQuery) QueryRef {
	return QueryRef{
		DocumentID: q.DocumentID,
		SheetID:    q.SheetID,
		StartRow:   q.Range.StartRow,
		StartCol:   q.Range.StartCol,
		EndRow:     q.Range.EndRow,
		EndCol:     q.Range.EndCol,
	}
}

// Entry is one line in the hash-chained JSONL audit log: the decision, the
// classification it was based on, and the record counts behind it.
// All fields are structs and slices (no map[string]any) to guarantee
// deterministic json.Marshal field order for reproducible hashing.
type Entry struct {
	Timestamp      string   `json:"ts"`
	EventID        string   `json:"event_id"`
	Action         string   `json:"action"`
	Query          QueryRef `json:"query"`
	Outcome        string   `json:"outcome"`
	Level          string   `json:"level"`
	Labels         []string `json:"labels,omitempty"`
	RecordsTotal   int      `json:"records_total"`
	RecordsApplied int      `json:"records_applied"`
	PolicyHash     string   `json:"policy_hash"`
	PrevHash       string   `json:"prev_hash"`
}
