// Package store persists classification records keyed by document. The
// index packages consume a snapshot from List; stores are the system of
// record, indices are derived views rebuilt per logical operation.
package store

import (
	"context"
	"sync"

	"github.com/nvoronin/sheetguard/internal/model"
)

// Store is the classification record source.
type Store interface {
	// List returns every record for a document. Order is irrelevant to
	// the index builds.
	List(ctx context.Context, documentID string) ([]model.Record, error)
	// Put appends a record for its selector's document.
	Put(ctx context.Context, rec model.Record) error
	// DeleteDocument removes all records for a document.
	DeleteDocument(ctx context.Context, documentID string) error
}

// Memory is an in-process Store for tests and ad-hoc CLI runs.
type Memory struct {
	mu      sync.RWMutex
	records map[string][]model.Record
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{records: make(map[string][]model.Record)}
}

// List returns a copy of the document's records.
func (m *Memory) List(ctx context.Context, documentID string) ([]model.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	recs := m.records[documentID]
	out := make([]model.Record, len(recs))
	copy(out, recs)
	return out, nil
}

// Put appends a record under its selector's document.
func (m *Memory) Put(ctx context.Context, rec model.Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if rec.Selector == nil {
		return errNilSelector
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	doc := rec.Selector.DocID()
	m.records[doc] = append(m.records[doc], rec)
	return nil
}

// DeleteDocument removes all records for a document.
func (m *Memory) DeleteDocument(ctx context.Context, documentID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.records, documentID)
	return nil
}
