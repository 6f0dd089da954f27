package testkit

import (
	"context"
	"sync"

	"github.com/Jincheol-Lim/SEMtrees/domain/study"
)

// InMemorySink collects persisted results for assertions. It is safe for
// concurrent use.
type InMemorySink struct {
	mu sync.Mutex

	SchemaCalls int
	Manifests   []*study.Manifest
	Tables      []*study.ResultTable
}

// NewInMemorySink creates an empty sink.
func NewInMemorySink() *InMemorySink {
	return &InMemorySink{}
}

// EnsureSchema counts schema calls and always succeeds.
func (s *InMemorySink) EnsureSchema(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.SchemaCalls++
	return nil
}

// SaveResults records the manifest and table.
func (s *InMemorySink) SaveResults(ctx context.Context, manifest *study.Manifest, table *study.ResultTable) error {
	if err := manifest.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Manifests = append(s.Manifests, manifest)
	s.Tables = append(s.Tables, table)
	return nil
}

// LastTable returns the most recently saved table, or nil.
func (s *InMemorySink) LastTable() *study.ResultTable {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.Tables) == 0 {
		return nil
	}
	return s.Tables[len(s.Tables)-1]
}
