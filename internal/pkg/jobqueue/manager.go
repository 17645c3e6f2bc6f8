package jobqueue

import (
	"strconv"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2/log"

	"github.com/MelodiaryApp/Melodiary/app/models"
	"github.com/MelodiaryApp/Melodiary/internal/pkg/database"
	"github.com/MelodiaryApp/Melodiary/internal/pkg/env"
)

// Calls that never received an end-of-call report are failed after this age.
const staleCallMaxAge = 2 * time.Hour

// Manager manages the global job queue and background tasks
type Manager struct {
	queue            *Queue
	usageResetTicker *time.Ticker
	staleCallTicker  *time.Ticker
	stopCh           chan struct{}
	wg               sync.WaitGroup
	mu               sync.Mutex
	running          bool
}

var (
	globalManager *Manager
	managerOnce   sync.Once
)

// GetManager returns the global job queue manager (singleton)
func GetManager() *Manager {
	managerOnce.Do(func() {
		workerCount := 5
		if v, err := strconv.Atoi(env.GetEnv("JOB_QUEUE_WORKERS", "5")); err == nil && v > 0 {
			workerCount = v
		}

		globalManager = &Manager{
			queue:  NewQueue(workerCount),
			stopCh: make(chan struct{}),
		}
	})
	return globalManager
}

// GetQueue returns the managed job queue
func (m *Manager) GetQueue() *Queue {
	return m.queue
}

// GetScheduler returns the enqueue facade for webhook services
func (m *Manager) GetScheduler() *Scheduler {
	return NewScheduler(m.queue)
}

// Start starts the job queue and background tasks
func (m *Manager) Start() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.running {
		return
	}

	// Recreate stop channel for each start cycle so manager can be restarted safely.
	m.stopCh = make(chan struct{})
	m.running = true
	log.Info("[JobQueue Manager] Starting job queue and background tasks")

	// Start the job queue
	m.queue.Start()

	// Monthly usage window rollover - hourly check
	m.usageResetTicker = time.NewTicker(time.Hour)
	m.wg.Add(1)
	go m.usageResetWorker()

	// Stale call detection - every 15 minutes
	m.staleCallTicker = time.NewTicker(15 * time.Minute)
	m.wg.Add(1)
	go m.staleCallWorker()

	log.Info("[JobQueue Manager] Started successfully")
}

// Stop stops the job queue and background tasks
func (m *Manager) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.running {
		return
	}

	log.Info("[JobQueue Manager] Stopping job queue and background tasks...")

	if m.usageResetTicker != nil {
		m.usageResetTicker.Stop()
	}
	if m.staleCallTicker != nil {
		m.staleCallTicker.Stop()
	}

	// Signal workers to stop. Start recreates the channel.
	close(m.stopCh)
	m.running = false

	// Wait for background workers to finish
	m.wg.Wait()

	// Stop the job queue
	m.queue.Stop()

	log.Info("[JobQueue Manager] Stopped successfully")
}

// usageResetWorker runs periodically to roll over expired usage windows
func (m *Manager) usageResetWorker() {
	defer m.wg.Done()
	log.Info("[JobQueue Manager] Started usage reset worker (interval: 1 hour)")

	for {
		select {
		case <-m.stopCh:
			log.Info("[JobQueue Manager] Usage reset worker stopping")
			return
		case <-m.usageResetTicker.C:
			log.Debug("[JobQueue Manager] Running usage window rollover")
			if err := m.resetExpiredUsageWindows(); err != nil {
				log.Errorf("[JobQueue Manager] Error rolling over usage windows: %v", err)
			}
		}
	}
}

// staleCallWorker runs periodically to fail calls that never completed
func (m *Manager) staleCallWorker() {
	defer m.wg.Done()
	log.Info("[JobQueue Manager] Started stale call worker (interval: 15 minutes)")

	for {
		select {
		case <-m.stopCh:
			log.Info("[JobQueue Manager] Stale call worker stopping")
			return
		case <-m.staleCallTicker.C:
			log.Debug("[JobQueue Manager] Running stale call check")
			if err := m.failStaleCalls(); err != nil {
				log.Errorf("[JobQueue Manager] Error failing stale calls: %v", err)
			}
		}
	}
}

// resetExpiredUsageWindows zeroes the generation counter for every
// subscription whose monthly window elapsed and advances the window.
func (m *Manager) resetExpiredUsageWindows() error {
	db := database.GetDB()
	if db == nil {
		return nil
	}

	now := time.Now()
	var expired []models.SubscriptionStatus
	if err := db.Where("usage_reset_at IS NOT NULL AND usage_reset_at <= ?", now).Find(&expired).Error; err != nil {
		return err
	}

	for i := range expired {
		sub := &expired[i]
		next := now.AddDate(0, 1, 0)
		sub.GenerationsUsed = 0
		sub.UsageResetAt = &next
		if err := db.Save(sub).Error; err != nil {
			log.Errorf("[JobQueue Manager] Failed to reset usage for subscription %d: %v", sub.ID, err)
			continue
		}
		log.Infof("[JobQueue Manager] Reset usage window for user %d (next reset: %s)", sub.UserID, next.Format(time.RFC3339))
	}

	return nil
}

// failStaleCalls marks call jobs stuck in a non-terminal state as failed.
func (m *Manager) failStaleCalls() error {
	db := database.GetDB()
	if db == nil {
		return nil
	}

	cutoff := time.Now().Add(-staleCallMaxAge)
	result := db.Model(&models.CallJob{}).
		Where("status IN ? AND updated_at < ?", []string{
			models.CallJobStatusQueued,
			models.CallJobStatusScheduled,
			models.CallJobStatusStarted,
		}, cutoff).
		Update("status", models.CallJobStatusFailed)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected > 0 {
		log.Warnf("[JobQueue Manager] Failed %d stale call jobs older than %s", result.RowsAffected, staleCallMaxAge)
	}
	return nil
}

// IsRunning returns whether the manager is currently running
func (m *Manager) IsRunning() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.running
}
