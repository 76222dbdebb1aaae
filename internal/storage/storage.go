package storage

import (
	"context"
	"log"

	"docfix/internal/domain"
)

type Stats struct {
	Runs      int `json:"runs"`
	Documents int `json:"documents"`
	Labeled   int `json:"labeled"`
	Unlabeled int `json:"unlabeled"`
}

type RunRepository interface {
	Save(ctx context.Context, run domain.Run) error
	FindByID(ctx context.Context, id string) (*domain.Run, error)
	FindAll(ctx context.Context, limit, offset int) ([]domain.Run, error)
	FindLatestByPath(ctx context.Context, path string) (*domain.Run, error)
	GetStats(ctx context.Context) (Stats, error)
}

// Store is a RunRepository that holds a connection.
type Store interface {
	RunRepository
	Close() error
}

// Open connects to Postgres, or returns an in-process store when dsn is
// empty.
func Open(dsn string) (Store, error) {
	if dsn == "" {
		log.Printf("[STORAGE] no dsn configured, runs are kept in memory")
		return NewMemory(), nil
	}
	return NewPostgres(dsn)
}
