package policy

import (
	"testing"

	"github.com/nvoronin/sheetguard/internal/model"
)

func TestDecideTable(t *testing.T) {
	cases := []struct {
		name    string
		level   model.Level
		pol     Policy
		include bool
		want    Outcome
	}{
		{
			name:  "under threshold allows",
			level: model.LevelInternal,
			pol:   Policy{MaxAllowed: "internal", RedactDisallowed: true},
			want:  Allow,
		},
		{
			name:  "over threshold redacts when configured",
			level: model.LevelConfidential,
			pol:   Policy{MaxAllowed: "internal", RedactDisallowed: true},
			want:  Redact,
		},
		{
			name:  "over threshold blocks when redaction off",
			level: model.LevelConfidential,
			pol:   Policy{MaxAllowed: "internal"},
			want:  Block,
		},
		{
			name:  "max_allowed restricted permits restricted without override",
			level: model.LevelRestricted,
			pol:   Policy{MaxAllowed: "restricted"},
			want:  Allow,
		},
		{
			name:    "override path allows restricted",
			level:   model.LevelRestricted,
			pol:     Policy{MaxAllowed: "internal", AllowRestrictedContent: true},
			include: true,
			want:    Allow,
		},
		{
			name:  "same policy without caller opt-in blocks",
			level: model.LevelRestricted,
			pol:   Policy{MaxAllowed: "internal", AllowRestrictedContent: true},
			want:  Block,
		},
		{
			name:    "caller opt-in without policy opt-in blocks",
			level:   model.LevelRestricted,
			pol:     Policy{MaxAllowed: "internal"},
			include: true,
			want:    Block,
		},
		{
			name:  "none threshold forbids public",
			level: model.LevelPublic,
			pol:   Policy{MaxAllowed: "none"},
			want:  Block,
		},
		{
			name:  "unconfigured action fails closed",
			level: model.LevelPublic,
			pol:   Policy{},
			want:  Block,
		},
		{
			name:    "override also lifts non-restricted over threshold",
			level:   model.LevelConfidential,
			pol:     Policy{MaxAllowed: "internal", AllowRestrictedContent: true},
			include: true,
			want:    Allow,
		},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got := Decide(model.Classification{Level: c.level}, c.pol, DecideOptions{IncludeRestrictedContent: c.include})
			if got.Outcome != c.want {
				t.Errorf("expected %s, got %s", c.want, got.Outcome)
			}
		})
	}
}

func TestRedactCarriesThreshold(t *testing.T) {
	got := Decide(
		model.Classification{Level: model.LevelRestricted},
		Policy{MaxAllowed: "internal", RedactDisallowed: true},
		DecideOptions{},
	)
	if got.Outcome != Redact {
		t.Fatalf("expected redact, got %s", got.Outcome)
	}
	if got.MaxAllowed == nil || *got.MaxAllowed != model.LevelInternal {
		t.Errorf("redact decision must carry the policy threshold, got %v", got.MaxAllowed)
	}
	if r := got.MaxAllowedRank(); r == nil || *r != model.LevelRank(model.LevelInternal) {
		t.Errorf("expected threshold rank %d, got %v", model.LevelRank(model.LevelInternal), r)
	}
}

func TestRedactWithNoneThresholdCarriesNil(t *testing.T) {
	got := Decide(
		model.Classification{Level: model.LevelPublic},
		Policy{MaxAllowed: "none", RedactDisallowed: true},
		DecideOptions{},
	)
	if got.Outcome != Redact {
		t.Fatalf("expected redact, got %s", got.Outcome)
	}
	if got.MaxAllowed != nil {
		t.Errorf("nil threshold must stay nil on the decision, got %v", *got.MaxAllowed)
	}
}

func TestBlockCarriesNothing(t *testing.T) {
	got := Decide(
		model.Classification{Level: model.LevelRestricted},
		Policy{MaxAllowed: "internal"},
		DecideOptions{},
	)
	if got.Outcome != Block {
		t.Fatalf("expected block, got %s", got.Outcome)
	}
	if got.MaxAllowed != nil {
		t.Errorf("block decision must not carry a partial result")
	}
}

func TestMoreRestrictive(t *testing.T) {
	cases := []struct {
		a, b, want Outcome
	}{
		{Allow, Allow, Allow},
		{Allow, Redact, Redact},
		{Redact, Allow, Redact},
		{Redact, Block, Block},
		{Block, Allow, Block},
	}
	for _, c := range cases {
		if got := MoreRestrictive(c.a, c.b); got != c.want {
			t.Errorf("MoreRestrictive(%s, %s) = %s, want %s", c.a, c.b, got, c.want)
		}
	}
}
