package policy

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// DefaultAction is the protected action used when the caller names none.
const DefaultAction = "ai_cloud_processing"

// Config maps protected-action names to their policies.
type Config struct {
	Actions map[string]Policy `yaml:"actions"`
}

// DefaultConfig returns the built-in policy set: AI cloud processing
// redacts anything above internal, export blocks anything above public.
func DefaultConfig() *Config {
	return &Config{
		Actions: map[string]Policy{
			"ai_cloud_processing": {
				MaxAllowed:             "internal",
				AllowRestrictedContent: false,
				RedactDisallowed:       true,
			},
			"export": {
				MaxAllowed:             "public",
				AllowRestrictedContent: false,
				RedactDisallowed:       false,
			},
		},
	}
}

// For returns the policy for a protected action. An unconfigured action
// fails closed: no level passes and nothing is redacted back in.
func (c *Config) For(action string) Policy {
	if p, ok := c.Actions[action]; ok {
		return p
	}
	return Policy{}
}

// LoadConfig loads policy configuration from a YAML file.
// Empty path falls back to ~/.sheetguard/policy.yaml.
// Missing file returns defaults. Invalid YAML returns an error.
func LoadConfig(path string) (*Config, error) {
	cfg, _, err := LoadConfigWithHash(path)
	return cfg, err
}

// LoadConfigWithHash loads policy configuration and returns its SHA-256
// hash for audit correlation. The hash is computed over the raw YAML bytes
// on disk; when no file exists (defaults used), it is the hash of empty
// input.
func LoadConfigWithHash(path string) (*Config, string, error) {
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return DefaultConfig(), emptyHash(), nil
		}
		path = filepath.Join(home, ".sheetguard", "policy.yaml")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), emptyHash(), nil
		}
		return nil, "", fmt.Errorf("policy: read config: %w", err)
	}

	h := sha256.Sum256(data)
	hash := "sha256:" + hex.EncodeToString(h[:])

	// Start with defaults, YAML overwrites only specified actions.
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, "", fmt.Errorf("policy: parse config: %w", err)
	}

	return cfg, hash, nil
}

func emptyHash() string {
	h := sha256.Sum256(nil)
	return "sha256:" + hex.EncodeToString(h[:])
}

// DefaultConfigYAML returns a commented YAML string for init-policy.
func DefaultConfigYAML() string {
	return `# sheetguard policy configuration
# Generated by: sheetguard init-policy
#
# Each protected action gets its own policy. A query's effective
# classification is compared against the action's max_allowed level:
#   level <= max_allowed            -> allow
#   level >  max_allowed, redact_disallowed: true  -> redact
#   level >  max_allowed, redact_disallowed: false -> block
#
# Fields:
#   max_allowed: public | internal | confidential | restricted | none
#     "none" forbids every level.
#   allow_restricted_content: when true AND the caller opts in per call,
#     restricted content passes (the restricted-content override).
#   redact_disallowed: redact disallowed cells instead of blocking the
#     whole range.
actions:
  ai_cloud_processing:
    max_allowed: internal
    allow_restricted_content: false
    redact_disallowed: true
  export:
    max_allowed: public
    allow_restricted_content: false
    redact_disallowed: false
`
}
