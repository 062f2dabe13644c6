package uploads

import (
	"context"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// Worker drains the queue on a fixed interval. DrainOnce is also called
// directly from the operator "sync now" endpoint; both paths share the same
// claim-and-process routine, and only the ticker carries a skip-if-busy guard.
type Worker struct {
	Repo      *Repo
	Processor *Processor
	Interval  time.Duration
	BatchSize int
	Log       *zap.Logger

	started atomic.Bool
	busy    atomic.Bool
}

// Start launches the background loop. Only the first call does anything, so
// wiring code can call it unconditionally; the return value reports whether
// this call started the loop.
func (w *Worker) Start(ctx context.Context) bool {
	if !w.started.CompareAndSwap(false, true) {
		return false
	}
	go w.run(ctx)
	return true
}

func (w *Worker) run(ctx context.Context) {
	ticker := time.NewTicker(w.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			// A tick landing while the previous drain is still going is
			// dropped, not queued.
			if !w.busy.CompareAndSwap(false, true) {
				continue
			}
			n, err := w.DrainOnce(ctx, w.BatchSize)
			if err != nil {
				w.Log.Error("background drain failed", zap.Error(err))
			} else if n > 0 {
				w.Log.Info("drained upload jobs", zap.Int("processed", n))
			}
			w.busy.Store(false)
		}
	}
}

// DrainOnce claims up to limit queued jobs and processes them sequentially,
// returning how many it ran. Individual job failures are recorded on the rows
// and do not touch sibling jobs; only a failing claim query aborts the drain.
func (w *Worker) DrainOnce(ctx context.Context, limit int) (int, error) {
	if limit <= 0 {
		limit = w.BatchSize
	}
	jobs, err := w.Repo.ClaimBatch(ctx, limit)
	if err != nil {
		return 0, err
	}
	for _, job := range jobs {
		if err := w.Processor.Process(ctx, job.ID); err != nil {
			w.Log.Warn("upload job failed",
				zap.String("job_id", job.ID),
				zap.String("invoice", job.InvoiceCode),
				zap.Error(err))
		}
	}
	return len(jobs), nil
}
