package worker

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"docfix/internal/config"
	"docfix/internal/domain"
	"docfix/internal/report"
	"docfix/internal/rewriter"
	"docfix/internal/storage"
)

type Result struct {
	Run    domain.Run
	Report *report.Report
}

// Processor rewrites documents on disk and records a Run for each.
type Processor struct {
	rewriter      *rewriter.Rewriter
	substitutions []config.Substitution
	repo          storage.RunRepository
	concurrency   int
	dryRun        bool
}

func NewProcessor(rw *rewriter.Rewriter, repo storage.RunRepository, rcfg config.RewriterConfig, pcfg config.ProcessorConfig) *Processor {
	concurrency := pcfg.Concurrency
	if concurrency < 1 {
		concurrency = 1
	}
	return &Processor{
		rewriter:      rw,
		substitutions: rcfg.Substitutions,
		repo:          repo,
		concurrency:   concurrency,
		dryRun:        pcfg.DryRun,
	}
}

func (p *Processor) Process(ctx context.Context, path string) (*Result, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}

	original, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	out, res := p.rewriter.Apply(string(original))

	rep, err := report.Verify(out, p.substitutions)
	if err != nil {
		return nil, fmt.Errorf("verify %s: %w", path, err)
	}

	if !p.dryRun && out != string(original) {
		if err := os.WriteFile(path, []byte(out), info.Mode().Perm()); err != nil {
			return nil, err
		}
	}

	run := domain.Run{
		ID:            uuid.NewString(),
		Path:          path,
		Checksum:      checksum([]byte(out)),
		Labeled:       res.Labeled,
		Skipped:       res.Skipped,
		Unlabeled:     rep.Unlabeled,
		Substitutions: res.Substitutions,
		Distribution:  res.Distribution,
		DryRun:        p.dryRun,
		CreatedAt:     time.Now().UTC(),
	}

	if p.repo != nil {
		if err := p.repo.Save(ctx, run); err != nil {
			log.Printf("[ERROR] save run %s: %v", path, err)
		}
	}

	return &Result{Run: run, Report: rep}, nil
}

// ProcessAll runs Process over paths with bounded parallelism. Results keep
// the order of paths. The first failure cancels the remaining work.
func (p *Processor) ProcessAll(ctx context.Context, paths []string) ([]*Result, error) {
	results := make([]*Result, len(paths))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(p.concurrency)

	for i, path := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			res, err := p.Process(ctx, path)
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			results[i] = res
			return nil
		})
	}

	return results, g.Wait()
}

func checksum(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

func fileChecksum(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return checksum(data), nil
}
