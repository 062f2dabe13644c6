package invoice

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Sweeper runs SweepPendingImages on a cron schedule.
type Sweeper struct {
	Svc      *Service
	Schedule string // standard cron expression or @every descriptor
	Log      *zap.Logger
}

// Start parses the schedule and launches the loop. An empty schedule disables
// the sweeper.
func (s *Sweeper) Start(ctx context.Context) error {
	if s.Schedule == "" {
		return nil
	}
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
	sched, err := parser.Parse(s.Schedule)
	if err != nil {
		return fmt.Errorf("parse sweep schedule %q: %w", s.Schedule, err)
	}
	go s.run(ctx, sched)
	return nil
}

func (s *Sweeper) run(ctx context.Context, sched cron.Schedule) {
	for {
		timer := time.NewTimer(time.Until(sched.Next(time.Now())))
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}

		n, err := s.Svc.SweepPendingImages(ctx)
		if err != nil {
			s.Log.Error("image sweep failed", zap.Error(err))
			continue
		}
		if n > 0 {
			s.Log.Info("image sweep enqueued uploads", zap.Int("jobs", n))
		}
	}
}
