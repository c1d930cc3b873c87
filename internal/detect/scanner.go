// Package detect is the heuristic pattern scanner for sensitive cell
// content. It supplies the second tier of evaluation: callers combine its
// output with the structured classification and enforce whichever decision
// is stricter. The index packages never call it — structured records are
// the system of record, heuristics only tighten.
package detect

import (
	"context"
	"regexp"
	"sort"

	"github.com/nvoronin/sheetguard/internal/model"
)

// PatternType identifies the category of sensitive data.
type PatternType string

const (
	PatternEmail  PatternType = "email"
	PatternSSN    PatternType = "ssn"
	PatternCard   PatternType = "credit_card"
	PatternPhone  PatternType = "phone"
	PatternAPIKey PatternType = "api_key"
)

// Match is a single occurrence of sensitive data in text.
type Match struct {
	Type  PatternType
	Value string
	Start int
	End   int
}

type pattern struct {
	typ   PatternType
	re    *regexp.Regexp
	level model.Level
}

// Compiled patterns, checked in order. Identifiers that directly expose a
// person or a credential rank restricted; contact details rank
// confidential.
var patterns = []pattern{
	{PatternSSN, regexp.MustCompile(`\b(\d{3}-\d{2}-\d{4})\b`), model.LevelRestricted},
	{PatternCard, regexp.MustCompile(`\b((?:\d{4}[ -]){3}\d{4})\b`), model.LevelRestricted},
	{PatternAPIKey, regexp.MustCompile(`(?i)\b((?:api_key|apikey|secret|token|password)[ \t]*[=:][ \t]*\S+)`), model.LevelRestricted},
	{PatternEmail, regexp.MustCompile(`\b([a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,})\b`), model.LevelConfidential},
	{PatternPhone, regexp.MustCompile(`\b(\(?\d{3}\)?[ .-]\d{3}[ .-]\d{4})\b`), model.LevelConfidential},
}

// levelFor maps a pattern type to its sensitivity level.
func levelFor(typ PatternType) model.Level {
	for _, p := range patterns {
		if p.typ == typ {
			return p.level
		}
	}
	return model.LevelPublic
}

// Scan finds all sensitive patterns in text and returns deduplicated
// matches sorted by position (earliest first).
func Scan(text string) []Match {
	seen := make(map[string]bool)
	var matches []Match

	for _, p := range patterns {
		for _, loc := range p.re.FindAllStringIndex(text, -1) {
			v := text[loc[0]:loc[1]]
			if seen[v] {
				continue
			}
			seen[v] = true
			matches = append(matches, Match{Type: p.typ, Value: v, Start: loc[0], End: loc[1]})
		}
	}

	sort.Slice(matches, func(i, j int) bool {
		return matches[i].Start < matches[j].Start
	})

	return matches
}

// Classify returns the heuristic classification of one cell's text: the
// most severe pattern level found, with the pattern names as labels.
// Text with no matches classifies as public with no labels.
func Classify(text string) model.Classification {
	acc := model.Classification{Level: model.LevelPublic}
	for _, m := range Scan(text) {
		// No early exit here: later matches may still add labels.
		acc = model.Combine(acc, model.Classification{Level: levelFor(m.Type), Labels: []string{string(m.Type)}})
	}
	return acc
}

// ClassifyGrid folds the heuristic classification of every cell in a value
// grid. ctx is checked at each row so a cancelled caller does not wait out
// a large grid scan.
func ClassifyGrid(ctx context.Context, grid [][]string) (model.Classification, error) {
	acc := model.Classification{Level: model.LevelPublic}
	for _, row := range grid {
		if err := ctx.Err(); err != nil {
			return model.Classification{}, err
		}
		for _, cell := range row {
			acc = model.Combine(acc, Classify(cell))
		}
	}
	return acc, nil
}
