package service

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"
)

var ErrUnknownBrand = errors.New("brand is not watched")

type RunFunc func(ctx context.Context, brand string) error

// Scheduler runs every watched brand on a cron schedule. Runs never overlap,
// whether they come from the schedule or from Trigger.
type Scheduler struct {
	cron     *cron.Cron
	schedule string
	brands   []string
	run      RunFunc

	mu      sync.Mutex
	baseCtx context.Context
}

func NewScheduler(schedule string, brands []string, run RunFunc) *Scheduler {
	logger := cron.PrintfLogger(log.StandardLogger())
	return &Scheduler{
		cron:     cron.New(cron.WithLogger(logger), cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger))),
		schedule: schedule,
		brands:   brands,
		run:      run,
		baseCtx:  context.Background(),
	}
}

// Start registers the schedule and starts the cron loop. ctx bounds every run.
func (s *Scheduler) Start(ctx context.Context) error {
	s.baseCtx = ctx
	if _, err := s.cron.AddFunc(s.schedule, func() { s.runAll(ctx) }); err != nil {
		return err
	}
	s.cron.Start()
	log.WithField("schedule", s.schedule).WithField("brands", s.brands).Info("scheduler started")
	return nil
}

// Stop halts the schedule and waits for a running job to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	log.Info("scheduler stopped")
}

func (s *Scheduler) runAll(ctx context.Context) {
	for _, brand := range s.brands {
		if ctx.Err() != nil {
			return
		}
		if err := s.RunBrand(ctx, brand); err != nil {
			log.WithField("brand", brand).Errorf("scheduled run failed: %v", err)
		}
	}
}

// RunBrand runs one brand, waiting for any run already in progress.
func (s *Scheduler) RunBrand(ctx context.Context, brand string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.run(ctx, brand)
}

// Trigger queues an out-of-schedule run for a watched brand and returns
// without waiting for it.
func (s *Scheduler) Trigger(brand string) error {
	watched, ok := s.lookup(brand)
	if !ok {
		return ErrUnknownBrand
	}
	go func() {
		if err := s.RunBrand(s.baseCtx, watched); err != nil {
			log.WithField("brand", watched).Errorf("triggered run failed: %v", err)
		}
	}()
	return nil
}

func (s *Scheduler) lookup(brand string) (string, bool) {
	for _, b := range s.brands {
		if strings.EqualFold(b, brand) {
			return b, true
		}
	}
	return "", false
}
