package store

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/nvoronin/sheetguard/internal/model"
)

// recordSpec is the flattened YAML shape of one classification record.
type recordSpec struct {
	Scope      string   `yaml:"scope"`
	DocumentID string   `yaml:"document_id"`
	SheetID    string   `yaml:"sheet_id"`
	Row        int      `yaml:"row"`
	Col        int      `yaml:"col"`
	StartRow   int      `yaml:"start_row"`
	StartCol   int      `yaml:"start_col"`
	EndRow     int      `yaml:"end_row"`
	EndCol     int      `yaml:"end_col"`
	Level      string   `yaml:"level"`
	Labels     []string `yaml:"labels"`
}

type recordFile struct {
	Records []recordSpec `yaml:"records"`
}

// LoadRecords reads classification records from a YAML file. Entries with
// an unrecognized scope or level are skipped, mirroring the index builds'
// malformed-record rule; a parse failure of the file itself is an error.
func LoadRecords(path string) ([]model.Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("store: read records file: %w", err)
	}

	var file recordFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("store: parse records file: %w", err)
	}

	var records []model.Record
	for _, spec := range file.Records {
		rec, ok := spec.toRecord()
		if !ok {
			continue
		}
		records = append(records, rec)
	}
	return records, nil
}

func (s recordSpec) toRecord() (model.Record, bool) {
	level, ok := model.ParseLevel(s.Level)
	if !ok || s.DocumentID == "" {
		return model.Record{}, false
	}

	var sel model.Selector
	switch s.Scope {
	case scopeDocument:
		sel = model.DocumentSelector{DocumentID: s.DocumentID}
	case scopeSheet:
		sel = model.SheetSelector{DocumentID: s.DocumentID, SheetID: s.SheetID}
	case scopeColumn:
		sel = model.ColumnSelector{DocumentID: s.DocumentID, SheetID: s.SheetID, Col: s.Col}
	case scopeCell:
		sel = model.CellSelector{DocumentID: s.DocumentID, SheetID: s.SheetID, Row: s.Row, Col: s.Col}
	case scopeRange:
		sel = model.RangeSelector{DocumentID: s.DocumentID, SheetID: s.SheetID, Range: model.Range{
			StartRow: s.StartRow, StartCol: s.StartCol, EndRow: s.EndRow, EndCol: s.EndCol,
		}}
	default:
		return model.Record{}, false
	}

	return model.Record{
		Selector:       sel,
		Classification: model.Classification{Level: level, Labels: s.Labels},
	}, true
}
