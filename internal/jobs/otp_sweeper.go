package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

const sweepTimeout = 30 * time.Second

// ExpiredOTPSweeper clears passcodes whose expiry has passed.
type ExpiredOTPSweeper interface {
	SweepExpired(ctx context.Context) (int64, error)
}

// OTPSweeper runs ExpiredOTPSweeper on a cron schedule.
type OTPSweeper struct {
	cron    *cron.Cron
	sweeper ExpiredOTPSweeper
	logger  *slog.Logger
}

// NewOTPSweeper schedules sweeps. schedule is a six-field cron spec with a
// leading seconds field.
func NewOTPSweeper(sweeper ExpiredOTPSweeper, schedule string, logger *slog.Logger) (*OTPSweeper, error) {
	s := &OTPSweeper{
		cron:    cron.New(cron.WithSeconds()),
		sweeper: sweeper,
		logger:  logger.With("component", "otp_sweeper"),
	}

	if _, err := s.cron.AddFunc(schedule, func() { s.Run(context.Background()) }); err != nil {
		return nil, fmt.Errorf("invalid otp sweep schedule %q: %w", schedule, err)
	}
	return s, nil
}

// Start begins running sweeps in the background.
func (s *OTPSweeper) Start() {
	s.cron.Start()
	s.logger.Info("otp sweeper started")
}

// Stop halts the schedule and waits for a running sweep to finish or ctx to
// end.
func (s *OTPSweeper) Stop(ctx context.Context) {
	done := s.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
		s.logger.Warn("otp sweeper stop timed out")
	}
}

// Run performs one sweep.
func (s *OTPSweeper) Run(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, sweepTimeout)
	defer cancel()

	n, err := s.sweeper.SweepExpired(ctx)
	if err != nil {
		s.logger.ErrorContext(ctx, "otp sweep failed", "error", err)
		return
	}
	if n > 0 {
		s.logger.InfoContext(ctx, "expired otps cleared", "count", n)
	}
}
