package model

import "sort"

// Level classifies data sensitivity. Levels are totally ordered; comparisons
// go through LevelRank, never through string comparison.
type Level string

const (
	LevelPublic       Level = "public"
	LevelInternal     Level = "internal"
	LevelConfidential Level = "confidential"
	LevelRestricted   Level = "restricted"
)

// levelRank maps levels to comparable integers for "more severe wins"
// escalation. Higher rank = more sensitive.
var levelRank = map[Level]int{
	LevelPublic:       0,
	LevelInternal:     1,
	LevelConfidential: 2,
	LevelRestricted:   3,
}

// LevelRank returns the integer rank of a level. Unknown levels return -1;
// callers that accept untrusted input must go through ParseLevel first.
func LevelRank(l Level) int {
	if r, ok := levelRank[l]; ok {
		return r
	}
	return -1
}

// ParseLevel validates a level string. Unknown values are rejected, not
// coerced — a record with an unrecognized level is skipped by index builds.
func ParseLevel(s string) (Level, bool) {
	switch Level(s) {
	case LevelPublic, LevelInternal, LevelConfidential, LevelRestricted:
		return Level(s), true
	}
	return "", false
}

// Classification is a sensitivity level plus descriptive labels.
// The zero value (public, no labels) is the identity for Combine.
type Classification struct {
	Level  Level    `json:"level" yaml:"level"`
	Labels []string `json:"labels,omitempty" yaml:"labels,omitempty"`
}

// Rank returns the integer rank of the classification's level.
// The zero-value classification ranks as public.
func (c Classification) Rank() int {
	if c.Level == "" {
		return levelRank[LevelPublic]
	}
	return LevelRank(c.Level)
}

// Combine merges two classifications: the more severe level wins and label
// sets are unioned. Commutative, associative, idempotent.
func Combine(a, b Classification) Classification {
	out := Classification{Level: a.Level}
	if b.Rank() > a.Rank() {
		out.Level = b.Level
	}
	if out.Level == "" {
		out.Level = LevelPublic
	}
	out.Labels = unionLabels(a.Labels, b.Labels)
	return out
}

// Fold combines next into acc and reports whether scanning can stop: once
// the accumulated level is restricted (the maximum), no further record can
// change the rank.
func Fold(acc, next Classification) (Classification, bool) {
	acc = Combine(acc, next)
	return acc, acc.Level == LevelRestricted
}

// unionLabels returns the sorted, deduplicated union of two label sets.
// Sorted output keeps audit entries and combine results deterministic
// regardless of record order.
func unionLabels(a, b []string) []string {
	if len(a) == 0 && len(b) == 0 {
		return nil
	}
	seen := make(map[string]bool, len(a)+len(b))
	out := make([]string, 0, len(a)+len(b))
	for _, s := range a {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	for _, s := range b {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	sort.Strings(out)
	return out
}
