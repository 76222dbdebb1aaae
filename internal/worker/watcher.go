package worker

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"

	"docfix/internal/config"
	"docfix/internal/domain"
	"docfix/internal/queue"
)

type Tracker interface {
	GetDocuments(ctx context.Context) ([]string, error)
	GetChecksum(ctx context.Context, path string) (string, error)
	SetChecksum(ctx context.Context, path, sum string) error
}

// Watcher polls tracked documents and queues a job whenever a file's
// content differs from the last checksum seen.
type Watcher struct {
	tracker   Tracker
	publisher queue.Publisher
	documents []string
	interval  time.Duration
}

const defaultInterval = 30 * time.Second

func NewWatcher(t Tracker, p queue.Publisher, cfg config.WatcherConfig) *Watcher {
	interval := cfg.Interval
	if interval <= 0 {
		interval = defaultInterval
	}
	return &Watcher{
		tracker:   t,
		publisher: p,
		documents: cfg.Documents,
		interval:  interval,
	}
}

func (w *Watcher) Start(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.scanAll(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.scanAll(ctx)
		}
	}
}

func (w *Watcher) scanAll(ctx context.Context) {
	paths, err := w.paths(ctx)
	if err != nil {
		log.Printf("[ERROR] tracked documents: %v", err)
		return
	}

	queued := 0
	unchanged := 0

	for _, path := range paths {
		sum, err := fileChecksum(path)
		if err != nil {
			log.Printf("[ERROR] %s: %v", path, err)
			continue
		}

		last, err := w.tracker.GetChecksum(ctx, path)
		if err != nil {
			log.Printf("[ERROR] checksum %s: %v", path, err)
			continue
		}
		if sum == last {
			unchanged++
			continue
		}

		job := domain.Job{
			ID:          uuid.NewString(),
			Path:        path,
			Checksum:    sum,
			Source:      domain.SourceWatcher,
			RequestedAt: time.Now().UTC(),
		}
		if err := w.publisher.Publish(ctx, job); err != nil {
			log.Printf("[ERROR] publish: %v", err)
			continue
		}
		if err := w.tracker.SetChecksum(ctx, path, sum); err != nil {
			log.Printf("[ERROR] checksum %s: %v", path, err)
		}
		queued++
		log.Printf("[QUEUED] %s", path)
	}

	log.Printf("[STATS] documents=%d, queued=%d, unchanged=%d", len(paths), queued, unchanged)
}

// paths returns configured documents first, then tracked ones, without
// duplicates.
func (w *Watcher) paths(ctx context.Context) ([]string, error) {
	tracked, err := w.tracker.GetDocuments(ctx)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool, len(w.documents)+len(tracked))
	var out []string
	for _, p := range append(append([]string{}, w.documents...), tracked...) {
		if !seen[p] {
			seen[p] = true
			out = append(out, p)
		}
	}
	return out, nil
}
