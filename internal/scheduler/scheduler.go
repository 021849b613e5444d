package scheduler

import (
	"context"
	"log"
	"time"

	"github.com/robfig/cron/v3"
)

// Scheduler runs the periodic conversation cleanup sweep.
type Scheduler struct {
	cron    *cron.Cron
	ctx     context.Context
	cancel  context.CancelFunc
	spec    string
	cleanup func(ctx context.Context) int
}

// New creates a scheduler that invokes cleanup on the given cron spec (UTC).
func New(spec string, cleanup func(ctx context.Context) int) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())

	return &Scheduler{
		cron:    cron.New(cron.WithLocation(time.UTC)),
		ctx:     ctx,
		cancel:  cancel,
		spec:    spec,
		cleanup: cleanup,
	}
}

func (s *Scheduler) Start() error {
	if s.cleanup == nil {
		log.Println("⚠️ Cleanup function not set, scheduler will not run sweeps")
		return nil
	}

	_, err := s.cron.AddFunc(s.spec, func() {
		log.Println("🧹 Triggered scheduled conversation cleanup")
		removed := s.cleanup(s.ctx)
		log.Printf("🧹 Scheduled cleanup removed %d conversation(s)", removed)
	})
	if err != nil {
		return err
	}

	s.cron.Start()
	log.Printf("📅 Scheduler started - conversation cleanup on %q (UTC)", s.spec)
	return nil
}

func (s *Scheduler) Stop() {
	if s.cron != nil {
		ctx := s.cron.Stop()
		<-ctx.Done()
	}
	if s.cancel != nil {
		s.cancel()
	}
	log.Println("📅 Scheduler stopped")
}

// IsRunning reports whether any cleanup job is registered and active.
func (s *Scheduler) IsRunning() bool {
	return s.cron != nil && len(s.cron.Entries()) > 0
}
