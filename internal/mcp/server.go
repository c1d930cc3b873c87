// Package mcp exposes sheetguard over the Model Context Protocol, so an
// agent framework can ask for range decisions, classifications, and masked
// grids before shipping spreadsheet content to a model.
package mcp

import (
	"context"
	"fmt"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/nvoronin/sheetguard/internal/guard"
	"github.com/nvoronin/sheetguard/internal/store"
)

// Config holds MCP server configuration.
type Config struct {
	// StorePath is the SQLite record store. Empty with RecordsPath set
	// loads a YAML record file into an in-memory store instead.
	StorePath   string
	RecordsPath string
	PolicyPath  string
	AuditPath   string
	// Action selects the protected-action policy; empty uses the default.
	Action string
}

// Server wraps the MCP SDK server around a guard.
type Server struct {
	mcpServer  *mcpsdk.Server
	guard      *guard.Guard
	policyPath string
	closer     func() error
}

// New creates an MCP server with a loaded store, policy, and tools.
func New(cfg Config) (*Server, error) {
	var (
		st     store.Store
		closer func() error
	)
	switch {
	case cfg.StorePath != "":
		db, err := store.OpenSQLite(cfg.StorePath)
		if err != nil {
			return nil, err
		}
		st = db
		closer = db.Close
	case cfg.RecordsPath != "":
		records, err := store.LoadRecords(cfg.RecordsPath)
		if err != nil {
			return nil, err
		}
		mem := store.NewMemory()
		for _, rec := range records {
			if err := mem.Put(context.Background(), rec); err != nil {
				return nil, err
			}
		}
		st = mem
	default:
		return nil, fmt.Errorf("mcp: either a store path or a records file is required")
	}

	g, err := guard.New(st, guard.Config{
		Action:     cfg.Action,
		PolicyPath: cfg.PolicyPath,
		AuditPath:  cfg.AuditPath,
	})
	if err != nil {
		if closer != nil {
			closer()
		}
		return nil, err
	}

	s := &Server{
		guard:      g,
		policyPath: cfg.PolicyPath,
		closer:     closer,
	}

	s.mcpServer = mcpsdk.NewServer(
		&mcpsdk.Implementation{
			Name:    "sheetguard",
			Version: "0.2.0",
		},
		nil,
	)

	s.registerTools()
	return s, nil
}

// Run starts the MCP server on stdio transport. Blocks until ctx is
// cancelled.
func (s *Server) Run(ctx context.Context) error {
	return s.mcpServer.Run(ctx, &mcpsdk.StdioTransport{})
}

// ReloadPolicy re-reads the policy configuration from disk.
func (s *Server) ReloadPolicy() error {
	return s.guard.ReloadPolicy(s.policyPath)
}

// Close releases the guard and the underlying store.
func (s *Server) Close() error {
	err := s.guard.Close()
	if s.closer != nil {
		if cerr := s.closer(); err == nil {
			err = cerr
		}
	}
	return err
}

// registerTools adds all sheetguard tools to the MCP server.
func (s *Server) registerTools() {
	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "sheetguard_check",
		Description: "Check the policy decision for a range of a spreadsheet document without transforming any content (dry-run).",
	}, s.handleCheck)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "sheetguard_classify",
		Description: "Compute the effective sensitivity classification of a range from the stored classification records.",
	}, s.handleClassify)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "sheetguard_mask",
		Description: "Evaluate a range and return the supplied cell grid with disallowed cells masked.",
	}, s.handleMask)
}
