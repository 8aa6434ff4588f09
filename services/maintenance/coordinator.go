package maintenance

import (
	"math/rand"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/tech-arch1tect/authcore/config"
	"github.com/tech-arch1tect/authcore/services/cleanup"
	"github.com/tech-arch1tect/authcore/services/logging"
	"go.uber.org/zap"
)

type CleanupRunner interface {
	PerformCleanup() (cleanup.Result, error)
}

type BlacklistPruner interface {
	PruneExpiredTokens() (int64, error)
}

// Coordinator owns the recurring maintenance timers. It ticks a fast queue
// interval that currently delegates to the cleanup sweep, and runs two daily
// jobs with a random pre-delay so a fleet of instances does not hit the store
// at the same wall-clock second. The overlap guard is per-process only; the
// jobs themselves are idempotent, so concurrent runs across instances are
// harmless.
type Coordinator struct {
	config     *config.Config
	cleanup    CleanupRunner
	blacklist  BlacklistPruner
	logger     *logging.Service
	instanceID string

	ticking atomic.Bool

	mu      sync.Mutex
	started bool
	stopCh  chan struct{}
	wg      sync.WaitGroup
}

func NewCoordinator(cfg *config.Config, cleanupRunner CleanupRunner, blacklistPruner BlacklistPruner, logger *logging.Service) *Coordinator {
	instanceID := uuid.New().String()[:8]

	if logger != nil {
		logger.Info("initializing maintenance coordinator",
			zap.String("instance_id", instanceID),
			zap.Duration("tick_interval", cfg.Maintenance.TickInterval),
			zap.Duration("daily_interval", cfg.Maintenance.DailyInterval),
			zap.Duration("jitter_max", cfg.Maintenance.JitterMax))
	}

	return &Coordinator{
		config:     cfg,
		cleanup:    cleanupRunner,
		blacklist:  blacklistPruner,
		logger:     logger,
		instanceID: instanceID,
	}
}

func (c *Coordinator) InstanceID() string {
	return c.instanceID
}

// Start arms the tick loop and both daily jobs. Calling Start on a running
// coordinator is a no-op.
func (c *Coordinator) Start() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.started {
		return
	}
	c.started = true
	c.stopCh = make(chan struct{})

	c.wg.Add(3)
	go c.runTicker(c.stopCh)
	go c.runScheduled("cleanup_tokens", c.config.Cleanup.Interval, c.cleanupTokens, c.stopCh)
	go c.runScheduled("synchronize_blacklist", c.config.Maintenance.DailyInterval, c.synchronizeBlacklist, c.stopCh)

	if c.logger != nil {
		c.logger.Info("maintenance coordinator started",
			zap.String("instance_id", c.instanceID))
	}
}

// Stop clears all timers and waits for in-flight jobs. Safe to call multiple
// times and before Start.
func (c *Coordinator) Stop() {
	c.mu.Lock()
	if !c.started {
		c.mu.Unlock()
		return
	}
	c.started = false
	close(c.stopCh)
	c.mu.Unlock()

	c.wg.Wait()

	if c.logger != nil {
		c.logger.Info("maintenance coordinator stopped",
			zap.String("instance_id", c.instanceID))
	}
}

// TriggerProcessing runs one tick immediately, as from an admin endpoint. It
// reports false when a tick was already in flight and this one was dropped.
func (c *Coordinator) TriggerProcessing() bool {
	return c.tick()
}

func (c *Coordinator) runTicker(stopCh chan struct{}) {
	defer c.wg.Done()

	ticker := time.NewTicker(c.config.Maintenance.TickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-stopCh:
			return
		case <-ticker.C:
			c.tick()
		}
	}
}

// tick transitions the coordinator from idle to ticking for the duration of
// one queue pass. A tick that lands while another is running is dropped and
// logged rather than queued: the work is idempotent and the next tick retries.
func (c *Coordinator) tick() bool {
	if !c.ticking.CompareAndSwap(false, true) {
		if c.logger != nil {
			c.logger.Warn("maintenance tick skipped - previous tick still running",
				zap.String("instance_id", c.instanceID))
		}
		return false
	}
	defer c.ticking.Store(false)

	result, err := c.cleanup.PerformCleanup()
	if err != nil {
		if c.logger != nil {
			c.logger.Error("maintenance tick failed",
				zap.String("instance_id", c.instanceID),
				zap.Error(err))
		}
		return true
	}

	if c.logger != nil && (result.Revoked > 0 || result.Deleted > 0) {
		c.logger.Info("maintenance tick completed",
			zap.String("instance_id", c.instanceID),
			zap.Int64("revoked", result.Revoked),
			zap.Int64("deleted", result.Deleted))
	}

	return true
}

func (c *Coordinator) runScheduled(name string, interval time.Duration, job func(), stopCh chan struct{}) {
	defer c.wg.Done()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-stopCh:
			return
		case <-ticker.C:
			delay := c.jitter()
			if c.logger != nil {
				c.logger.Debug("delaying scheduled job",
					zap.String("instance_id", c.instanceID),
					zap.String("job", name),
					zap.Duration("jitter", delay))
			}

			select {
			case <-stopCh:
				return
			case <-time.After(delay):
			}

			job()
		}
	}
}

func (c *Coordinator) jitter() time.Duration {
	max := c.config.Maintenance.JitterMax
	if max <= 0 {
		return 0
	}
	return time.Duration(rand.Int63n(int64(max)))
}

// cleanupTokens is the daily full pass: the two-phase token sweep followed by
// a blacklist prune. Errors are logged per job and never stop the schedule;
// the next interval is the retry.
func (c *Coordinator) cleanupTokens() {
	result, err := c.cleanup.PerformCleanup()
	if err != nil {
		if c.logger != nil {
			c.logger.Error("daily token cleanup failed",
				zap.String("instance_id", c.instanceID),
				zap.Error(err))
		}
	} else if c.logger != nil {
		c.logger.Info("daily token cleanup completed",
			zap.String("instance_id", c.instanceID),
			zap.Int64("revoked", result.Revoked),
			zap.Int64("deleted", result.Deleted))
	}

	pruned, err := c.blacklist.PruneExpiredTokens()
	if err != nil {
		if c.logger != nil {
			c.logger.Error("blacklist prune after token cleanup failed",
				zap.String("instance_id", c.instanceID),
				zap.Error(err))
		}
		return
	}

	if c.logger != nil {
		c.logger.Info("blacklist pruned after token cleanup",
			zap.String("instance_id", c.instanceID),
			zap.Int64("pruned", pruned))
	}
}

func (c *Coordinator) synchronizeBlacklist() {
	pruned, err := c.blacklist.PruneExpiredTokens()
	if err != nil {
		if c.logger != nil {
			c.logger.Error("blacklist synchronization failed",
				zap.String("instance_id", c.instanceID),
				zap.Error(err))
		}
		return
	}

	if c.logger != nil {
		c.logger.Info("blacklist synchronized",
			zap.String("instance_id", c.instanceID),
			zap.Int64("pruned", pruned))
	}
}
