package background

import (
	"context"
	"log/slog"
	"time"
)

// Sweeper removes entries that are past their useful life
type Sweeper interface {
	SweepIdle() int
}

// ExpirySweeper removes entries whose tokens have naturally expired
type ExpirySweeper interface {
	SweepExpired() int
}

// CleanupManager periodically sweeps idle rate-limit records and expired
// revocation entries so the in-memory maps do not grow over long uptimes.
type CleanupManager struct {
	attempts    Sweeper
	revocations ExpirySweeper
	logger      *slog.Logger
	interval    time.Duration
	stopCh      chan struct{}
}

// NewCleanupManager creates a new cleanup manager
func NewCleanupManager(attempts Sweeper, revocations ExpirySweeper, logger *slog.Logger, interval time.Duration) *CleanupManager {
	return &CleanupManager{
		attempts:    attempts,
		revocations: revocations,
		logger:      logger,
		interval:    interval,
		stopCh:      make(chan struct{}),
	}
}

// Start begins the periodic cleanup task
func (cm *CleanupManager) Start(ctx context.Context) {
	ticker := time.NewTicker(cm.interval)
	defer ticker.Stop()

	// Run immediately on startup
	cm.runCleanup()

	for {
		select {
		case <-ticker.C:
			cm.runCleanup()
		case <-cm.stopCh:
			cm.logger.Info("cleanup manager stopped")
			return
		case <-ctx.Done():
			cm.logger.Info("cleanup manager context cancelled")
			return
		}
	}
}

func (cm *CleanupManager) runCleanup() {
	idle := cm.attempts.SweepIdle()
	expired := cm.revocations.SweepExpired()

	if idle > 0 || expired > 0 {
		cm.logger.Info("cleanup completed",
			slog.Int("idle_attempt_records", idle),
			slog.Int("expired_revocations", expired))
	}
}

// Stop signals the cleanup manager to stop
func (cm *CleanupManager) Stop() {
	close(cm.stopCh)
}
