package docindex

import (
	"context"
	"testing"

	"github.com/nvoronin/sheetguard/internal/model"
)

func benchRecords(n int) []model.Record {
	records := make([]model.Record, 0, n)
	for i := 0; i < n; i++ {
		records = append(records, model.Record{
			Selector:       model.CellSelector{DocumentID: "doc-1", SheetID: "S1", Row: i / 100, Col: i % 100},
			Classification: model.Classification{Level: model.LevelConfidential},
		})
	}
	return records
}

func BenchmarkBuild_10kRecords(b *testing.B) {
	records := benchRecords(10000)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := Build(context.Background(), records, "doc-1"); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkRangeClassification_ChunkSized(b *testing.B) {
	idx, err := Build(context.Background(), benchRecords(10000), "doc-1")
	if err != nil {
		b.Fatal(err)
	}
	ctx := context.Background()
	rng := model.Range{StartRow: 10, StartCol: 0, EndRow: 30, EndCol: 20}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := idx.RangeClassification(ctx, "S1", rng); err != nil {
			b.Fatal(err)
		}
	}
}
