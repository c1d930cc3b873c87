package policy

import (
	"github.com/nvoronin/sheetguard/internal/model"
)

// Outcome is the enforcement result for a protected action.
type Outcome string

const (
	Allow  Outcome = "allow"
	Redact Outcome = "redact"
	Block  Outcome = "block"
)

// restrictiveness orders outcomes for the two-tier "more restrictive wins"
// rule: block > redact > allow.
var restrictiveness = map[Outcome]int{
	Allow:  0,
	Redact: 1,
	Block:  2,
}

// MoreRestrictive returns the stricter of two outcomes.
func MoreRestrictive(a, b Outcome) Outcome {
	if restrictiveness[b] > restrictiveness[a] {
		return b
	}
	return a
}

// Policy configures one protected action (e.g. AI cloud processing).
type Policy struct {
	// MaxAllowed is the highest level that may pass. Empty or "none"
	// forbids every level (the nil-threshold state).
	MaxAllowed string `yaml:"max_allowed"`
	// AllowRestrictedContent opts the policy into the restricted-content
	// override: restricted data passes only when the caller also opts in.
	AllowRestrictedContent bool `yaml:"allow_restricted_content"`
	// RedactDisallowed turns disallowed content into a Redact decision
	// instead of a Block.
	RedactDisallowed bool `yaml:"redact_disallowed"`
}

// MaxAllowedRank returns the threshold rank, or ok=false when the policy
// forbids everything. Unrecognized level strings fail closed.
func (p Policy) MaxAllowedRank() (int, bool) {
	lvl, ok := model.ParseLevel(p.MaxAllowed)
	if !ok {
		return 0, false
	}
	return model.LevelRank(lvl), true
}

// Decision is the outcome of evaluating a classification against a policy.
// Redact decisions carry the policy threshold so the caller can build a
// selection index and mask exactly the disallowed points; Block decisions
// carry nothing — the caller suppresses the whole query's content.
type Decision struct {
	Outcome    Outcome      `json:"outcome"`
	MaxAllowed *model.Level `json:"max_allowed,omitempty"`
}

// MaxAllowedRank returns the rank of the decision's threshold for
// selection-index builds, or nil when the policy forbids everything.
func (d Decision) MaxAllowedRank() *int {
	if d.MaxAllowed == nil {
		return nil
	}
	r := model.LevelRank(*d.MaxAllowed)
	return &r
}

// DecideOptions carries per-call caller opt-ins.
type DecideOptions struct {
	// IncludeRestrictedContent is the caller half of the restricted-content
	// override; it has effect only when the policy also opts in.
	IncludeRestrictedContent bool
}

// Decide turns a classification plus a policy into an enforcement decision.
// Pure function, no failure modes.
func Decide(cls model.Classification, pol Policy, opts DecideOptions) Decision {
	maxRank, hasMax := pol.MaxAllowedRank()
	override := opts.IncludeRestrictedContent && pol.AllowRestrictedContent

	var allowed bool
	if cls.Level == model.LevelRestricted {
		if opts.IncludeRestrictedContent {
			allowed = pol.AllowRestrictedContent
		} else {
			allowed = hasMax && maxRank >= model.LevelRank(model.LevelRestricted)
		}
	} else {
		allowed = override || (hasMax && cls.Rank() <= maxRank)
	}

	if allowed {
		return Decision{Outcome: Allow}
	}
	if pol.RedactDisallowed {
		d := Decision{Outcome: Redact}
		if hasMax {
			lvl, _ := model.ParseLevel(pol.MaxAllowed)
			d.MaxAllowed = &lvl
		}
		return d
	}
	return Decision{Outcome: Block}
}
