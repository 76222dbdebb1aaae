package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "github.com/lib/pq"
	"github.com/sethvargo/go-retry"

	"docfix/internal/domain"
)

const schema = `
	CREATE TABLE IF NOT EXISTS runs (
		id            TEXT PRIMARY KEY,
		path          TEXT NOT NULL,
		checksum      TEXT NOT NULL,
		labeled       INTEGER NOT NULL,
		skipped       INTEGER NOT NULL,
		unlabeled     INTEGER NOT NULL,
		substitutions INTEGER NOT NULL,
		distribution  JSONB NOT NULL,
		dry_run       BOOLEAN NOT NULL,
		created_at    TIMESTAMPTZ NOT NULL
	);
	CREATE INDEX IF NOT EXISTS runs_path_created_at ON runs (path, created_at DESC);
`

const runColumns = `id, path, checksum, labeled, skipped, unlabeled, substitutions, distribution, dry_run, created_at`

type Postgres struct {
	db *sql.DB
}

func NewPostgres(dsn string) (*Postgres, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	backoff := retry.WithMaxRetries(5, retry.NewExponential(500*time.Millisecond))
	if err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		if err := db.PingContext(ctx); err != nil {
			return retry.RetryableError(err)
		}
		return nil
	}); err != nil {
		db.Close()
		return nil, err
	}

	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return &Postgres{db: db}, nil
}

func (p *Postgres) Close() error {
	return p.db.Close()
}

func (p *Postgres) Save(ctx context.Context, run domain.Run) error {
	dist, err := json.Marshal(run.Distribution)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO runs (` + runColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (id) DO NOTHING
	`

	_, err = p.db.ExecContext(ctx, query,
		run.ID,
		run.Path,
		run.Checksum,
		run.Labeled,
		run.Skipped,
		run.Unlabeled,
		run.Substitutions,
		string(dist),
		run.DryRun,
		run.CreatedAt,
	)

	return err
}

func (p *Postgres) FindByID(ctx context.Context, id string) (*domain.Run, error) {
	query := `SELECT ` + runColumns + ` FROM runs WHERE id = $1`
	return p.findOne(ctx, query, id)
}

func (p *Postgres) FindLatestByPath(ctx context.Context, path string) (*domain.Run, error) {
	query := `SELECT ` + runColumns + ` FROM runs WHERE path = $1 ORDER BY created_at DESC LIMIT 1`
	return p.findOne(ctx, query, path)
}

func (p *Postgres) findOne(ctx context.Context, query string, arg any) (*domain.Run, error) {
	run, err := scanRun(p.db.QueryRowContext(ctx, query, arg))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return run, nil
}

func (p *Postgres) FindAll(ctx context.Context, limit, offset int) ([]domain.Run, error) {
	query := `SELECT ` + runColumns + ` FROM runs ORDER BY created_at DESC LIMIT $1 OFFSET $2`

	rows, err := p.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []domain.Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *run)
	}

	return runs, rows.Err()
}

func (p *Postgres) GetStats(ctx context.Context) (Stats, error) {
	query := `
		SELECT COUNT(*), COUNT(DISTINCT path), COALESCE(SUM(labeled), 0), COALESCE(SUM(unlabeled), 0)
		FROM runs
	`

	var s Stats
	err := p.db.QueryRowContext(ctx, query).Scan(&s.Runs, &s.Documents, &s.Labeled, &s.Unlabeled)
	return s, err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (*domain.Run, error) {
	var (
		run  domain.Run
		dist []byte
	)
	if err := row.Scan(
		&run.ID,
		&run.Path,
		&run.Checksum,
		&run.Labeled,
		&run.Skipped,
		&run.Unlabeled,
		&run.Substitutions,
		&dist,
		&run.DryRun,
		&run.CreatedAt,
	); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(dist, &run.Distribution); err != nil {
		return nil, fmt.Errorf("decode distribution: %w", err)
	}
	return &run, nil
}
