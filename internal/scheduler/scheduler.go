package scheduler

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/Evan-Linder/AgriProfit/internal/usecase/pricing"
)

// Scheduler warms the price cache on a cron schedule so interactive requests
// mostly hit fresh entries.
type Scheduler struct {
	cron     *cron.Cron
	prices   *pricing.Service
	schedule string
	logger   *zap.Logger
}

// NewScheduler creates a new scheduler instance.
func NewScheduler(schedule string, prices *pricing.Service, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scheduler{
		cron:     cron.New(),
		prices:   prices,
		schedule: schedule,
		logger:   logger,
	}
}

// Start registers the refresh job and starts the cron runner.
func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc(s.schedule, s.refreshPrices); err != nil {
		return err
	}

	s.cron.Start()
	s.logger.Info("price refresh scheduled", zap.String("schedule", s.schedule))
	return nil
}

// Stop stops the cron runner; running jobs finish on their own.
func (s *Scheduler) Stop() {
	s.logger.Info("stopping scheduler")
	s.cron.Stop()
}

func (s *Scheduler) refreshPrices() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	prices := s.prices.FetchPrices(ctx, nil)
	s.logger.Info("price cache refreshed", zap.Int("crops", len(prices)))
}
