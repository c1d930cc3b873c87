// Package guard wires the classification store, the document and selection
// indexes, the policy evaluator, and the audit log into the two calls the
// rest of the system uses: "may this range go out?" and "mask this grid".
package guard

import (
	"fmt"
	"sync"

	"github.com/nvoronin/sheetguard/internal/audit"
	"github.com/nvoronin/sheetguard/internal/policy"
	"github.com/nvoronin/sheetguard/internal/store"
)

// Config holds guard configuration.
type Config struct {
	// Action names the protected action whose policy applies.
	// Empty means policy.DefaultAction.
	Action string
	// PolicyPath is the policy YAML location; empty uses the default
	// search path, missing file uses built-in defaults.
	PolicyPath string
	// AuditPath enables the hash-chained audit log when non-empty.
	AuditPath string
}

// Guard evaluates DLP policy over spreadsheet content. Safe for concurrent
// use; each logical operation gets its own index cache via Begin.
type Guard struct {
	store      store.Store
	cfg        *policy.Config
	policyHash string
	action     string

	mu       sync.Mutex
	auditLog *audit.Log
}

// New creates a Guard over the given record store.
func New(st store.Store, cfg Config) (*Guard, error) {
	pcfg, hash, err := policy.LoadConfigWithHash(cfg.PolicyPath)
	if err != nil {
		return nil, fmt.Errorf("guard: load policy: %w", err)
	}

	action := cfg.Action
	if action == "" {
		action = policy.DefaultAction
	}

	var auditLog *audit.Log
	if cfg.AuditPath != "" {
		auditLog, err = audit.Open(cfg.AuditPath)
		if err != nil {
			return nil, fmt.Errorf("guard: open audit log: %w", err)
		}
	}

	return &Guard{
		store:      st,
		cfg:        pcfg,
		policyHash: hash,
		action:     action,
		auditLog:   auditLog,
	}, nil
}

// Policy returns the policy for the guard's protected action.
func (g *Guard) Policy() policy.Policy {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.cfg.For(g.action)
}

// PolicyHash returns the hash of the loaded policy configuration.
func (g *Guard) PolicyHash() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.policyHash
}

// ReloadPolicy re-reads the policy configuration from disk.
func (g *Guard) ReloadPolicy(path string) error {
	pcfg, hash, err := policy.LoadConfigWithHash(path)
	if err != nil {
		return fmt.Errorf("guard: reload policy: %w", err)
	}
	g.mu.Lock()
	g.cfg = pcfg
	g.policyHash = hash
	g.mu.Unlock()
	return nil
}

// Close closes the audit log if configured.
func (g *Guard) Close() error {
	if g.auditLog != nil {
		return g.auditLog.Close()
	}
	return nil
}

func (g *Guard) recordAudit(entry audit.Entry) {
	if g.auditLog == nil {
		return
	}
	entry.Action = g.action
	entry.PolicyHash = g.PolicyHash()
	// A failed audit write must not turn a finished decision into an
	// error for the caller.
	_ = g.auditLog.Record(entry)
}
