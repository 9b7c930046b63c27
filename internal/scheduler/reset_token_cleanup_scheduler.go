package scheduler

import (
	"context"
	"time"

	"github.com/omsapp/oms-backend/pkg/logger"
	"github.com/robfig/cron/v3"
)

const cleanupTimeout = time.Minute

// TokenPurger removes reset tokens that can no longer be redeemed
type TokenPurger interface {
	PurgeStaleTokens(ctx context.Context) (int64, error)
}

// ResetTokenCleanupScheduler periodically purges stale password reset tokens
type ResetTokenCleanupScheduler struct {
	cron   *cron.Cron
	purger TokenPurger
	spec   string
}

// NewResetTokenCleanupScheduler accepts standard five-field specs and descriptors such as @hourly
func NewResetTokenCleanupScheduler(purger TokenPurger, spec string) *ResetTokenCleanupScheduler {
	return &ResetTokenCleanupScheduler{
		cron:   cron.New(),
		purger: purger,
		spec:   spec,
	}
}

func (s *ResetTokenCleanupScheduler) Start() error {
	if _, err := s.cron.AddFunc(s.spec, s.RunOnce); err != nil {
		logger.Error("Failed to add cron job for reset token cleanup", err, map[string]interface{}{
			"spec": s.spec,
		})
		return err
	}

	s.cron.Start()
	logger.Info("Reset token cleanup scheduler started", map[string]interface{}{
		"spec": s.spec,
	})
	return nil
}

// RunOnce purges once. Failures are logged and left for the next tick.
func (s *ResetTokenCleanupScheduler) RunOnce() {
	ctx, cancel := context.WithTimeout(context.Background(), cleanupTimeout)
	defer cancel()

	removed, err := s.purger.PurgeStaleTokens(ctx)
	if err != nil {
		logger.Error("Failed to purge stale reset tokens", err)
		return
	}

	logger.Info("Purged stale reset tokens", map[string]interface{}{
		"removed": removed,
	})
}

// Stop halts the schedule and waits for a running purge to finish
func (s *ResetTokenCleanupScheduler) Stop() {
	logger.Info("Stopping reset token cleanup scheduler...")
	<-s.cron.Stop().Done()
	logger.Info("Reset token cleanup scheduler stopped")
}
