package detect

import (
	"context"
	"testing"

	"github.com/nvoronin/sheetguard/internal/model"
)

func TestScanFindsPatterns(t *testing.T) {
	cases := []struct {
		name string
		text string
		typ  PatternType
	}{
		{"email", "contact alice@corp.example for details", PatternEmail},
		{"ssn", "SSN 123-45-6789 on file", PatternSSN},
		{"credit card", "card 4111 1111 1111 1111 exp 09/27", PatternCard},
		{"api key", "api_key=sk_live_abc123def", PatternAPIKey},
		{"phone", "call 555-867-5309 x22", PatternPhone},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			matches := Scan(c.text)
			if len(matches) == 0 {
				t.Fatalf("no match in %q", c.text)
			}
			found := false
			for _, m := range matches {
				if m.Type == c.typ {
					found = true
				}
			}
			if !found {
				t.Errorf("expected a %s match in %q, got %v", c.typ, c.text, matches)
			}
		})
	}
}

func TestScanCleanText(t *testing.T) {
	if matches := Scan("quarterly revenue by region"); len(matches) != 0 {
		t.Errorf("expected no matches, got %v", matches)
	}
}

func TestClassifyLevels(t *testing.T) {
	cases := []struct {
		text string
		want model.Level
	}{
		{"plain text", model.LevelPublic},
		{"bob@corp.example", model.LevelConfidential},
		{"ssn 987-65-4321", model.LevelRestricted},
		{"bob@corp.example ssn 987-65-4321", model.LevelRestricted},
	}
	for _, c := range cases {
		if got := Classify(c.text); got.Level != c.want {
			t.Errorf("Classify(%q).Level = %s, want %s", c.text, got.Level, c.want)
		}
	}
}

func TestClassifyLabelsNamePatterns(t *testing.T) {
	got := Classify("bob@corp.example ssn 987-65-4321")
	want := map[string]bool{"email": true, "ssn": true}
	if len(got.Labels) != 2 {
		t.Fatalf("expected 2 labels, got %v", got.Labels)
	}
	for _, l := range got.Labels {
		if !want[l] {
			t.Errorf("unexpected label %q", l)
		}
	}
}

func TestClassifyGrid(t *testing.T) {
	grid := [][]string{
		{"name", "email"},
		{"alice", "alice@corp.example"},
	}
	got, err := ClassifyGrid(context.Background(), grid)
	if err != nil {
		t.Fatal(err)
	}
	if got.Level != model.LevelConfidential {
		t.Errorf("expected confidential, got %s", got.Level)
	}
}

func TestClassifyGridCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := ClassifyGrid(ctx, [][]string{{"x"}}); err != context.Canceled {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}
