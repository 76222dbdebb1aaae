package storage

import (
	"context"
	"sort"
	"sync"

	"docfix/internal/domain"
)

// Memory keeps runs in process. It backs the CLI and tests when no DSN is
// configured.
type Memory struct {
	mu   sync.RWMutex
	runs map[string]domain.Run
}

func NewMemory() *Memory {
	return &Memory{runs: make(map[string]domain.Run)}
}

func (m *Memory) Save(_ context.Context, run domain.Run) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.runs[run.ID]; !ok {
		m.runs[run.ID] = run
	}
	return nil
}

func (m *Memory) FindByID(_ context.Context, id string) (*domain.Run, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	run, ok := m.runs[id]
	if !ok {
		return nil, nil
	}
	return &run, nil
}

func (m *Memory) FindAll(_ context.Context, limit, offset int) ([]domain.Run, error) {
	runs := m.sorted()
	if offset >= len(runs) {
		return nil, nil
	}
	runs = runs[offset:]
	if limit > 0 && limit < len(runs) {
		runs = runs[:limit]
	}
	return runs, nil
}

func (m *Memory) FindLatestByPath(_ context.Context, path string) (*domain.Run, error) {
	for _, run := range m.sorted() {
		if run.Path == path {
			return &run, nil
		}
	}
	return nil, nil
}

func (m *Memory) GetStats(_ context.Context) (Stats, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var s Stats
	paths := make(map[string]bool)
	for _, run := range m.runs {
		s.Runs++
		s.Labeled += run.Labeled
		s.Unlabeled += run.Unlabeled
		paths[run.Path] = true
	}
	s.Documents = len(paths)
	return s, nil
}

func (m *Memory) sorted() []domain.Run {
	m.mu.RLock()
	runs := make([]domain.Run, 0, len(m.runs))
	for _, run := range m.runs {
		runs = append(runs, run)
	}
	m.mu.RUnlock()

	sort.Slice(runs, func(i, j int) bool {
		return runs[i].CreatedAt.After(runs[j].CreatedAt)
	})
	return runs
}

func (m *Memory) Close() error {
	return nil
}
