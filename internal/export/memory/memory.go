package memory

import (
	"context"
	"fmt"
	"sync"

	"finsight/internal/core"
)

// Store keeps exported report rows in memory. Used when no spreadsheet is
// configured and in tests.
type Store struct {
	mu    sync.Mutex
	items []core.Report
}

func New() *Store {
	return &Store{}
}

// Append stores the report and returns a synthetic row reference.
func (s *Store) Append(_ context.Context, r core.Report) (string, error) {
	if err := r.Validate(); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = append(s.items, r)
	return fmt.Sprintf("mem:%d", len(s.items)), nil
}

// Items returns a copy of the stored reports.
func (s *Store) Items() []core.Report {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Report(nil), s.items...)
}
