package service

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/localmarkets/marketplace/internal/domain"
	"github.com/localmarkets/marketplace/internal/marketday"
	"github.com/localmarkets/marketplace/internal/metrics"
)

type ScheduledMarketRepository interface {
	FindScheduled(ctx context.Context) ([]domain.Market, error)
	UpdateDates(ctx context.Context, id uint, prev, next time.Time) error
}

// MarketDayJob moves each market's stored dates forward so that prevDate is
// the latest market day on or before today and nextDate the one after it.
type MarketDayJob struct {
	repo ScheduledMarketRepository
	calc *marketday.Calculator
	cron *cron.Cron
}

func NewMarketDayJob(repo ScheduledMarketRepository, calc *marketday.Calculator) *MarketDayJob {
	return &MarketDayJob{
		repo: repo,
		calc: calc,
		cron: cron.New(cron.WithLocation(calc.Location)),
	}
}

// Start schedules Roll with a standard five field cron spec.
func (j *MarketDayJob) Start(spec string) error {
	_, err := j.cron.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()

		updated, err := j.Roll(ctx)
		if err != nil {
			zap.L().Error("market day roll failed", zap.Error(err))
			return
		}
		zap.L().Info("market days rolled", zap.Int("updated", updated))
	})
	if err != nil {
		return fmt.Errorf("j.cron.AddFunc(%q) -> %w", spec, err)
	}

	j.cron.Start()

	return nil
}

// Stop waits for a running roll to finish.
func (j *MarketDayJob) Stop() {
	<-j.cron.Stop().Done()
}

// Roll recomputes every market with both dates and persists the ones that
// changed. Markets with an unusable schedule are logged and skipped.
func (j *MarketDayJob) Roll(ctx context.Context) (int, error) {
	markets, err := j.repo.FindScheduled(ctx)
	if err != nil {
		return 0, fmt.Errorf("j.repo.FindScheduled -> %w", err)
	}

	updated := 0
	for _, m := range markets {
		if m.PrevDate == nil || m.NextDate == nil {
			continue
		}

		s, err := j.calc.Compute(*m.PrevDate, *m.NextDate, 0)
		if err != nil {
			zap.L().Warn("skipping market with invalid schedule", zap.Uint("marketID", m.ID), zap.Error(err))
			continue
		}

		if sameDay(s.Last, *m.PrevDate) && sameDay(s.Next, *m.NextDate) {
			continue
		}

		if err = j.repo.UpdateDates(ctx, m.ID, calendarDate(s.Last), calendarDate(s.Next)); err != nil {
			return updated, fmt.Errorf("j.repo.UpdateDates(%d) -> %w", m.ID, err)
		}
		updated++
		metrics.MarketDaysRolled.Inc()
	}

	return updated, nil
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()

	return ay == by && am == bm && ad == bd
}

// calendarDate pins t's date to UTC midnight so a date column stores the
// same day regardless of the session time zone.
func calendarDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
