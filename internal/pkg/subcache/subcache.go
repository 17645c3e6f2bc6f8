package subcache

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2/log"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/MelodiaryApp/Melodiary/app/models"
	"github.com/MelodiaryApp/Melodiary/internal/pkg/cache"
	"github.com/MelodiaryApp/Melodiary/internal/pkg/entitlements"
)

const (
	snapshotKeyPrefix = "subsnap:"
	// Snapshot freshness window. Entitlement reads within this window
	// after a refresh are served from cache.
	snapshotTTL = 30 * time.Second
)

// ErrNotFound means the user has no subscription record.
var ErrNotFound = errors.New("subscription not found")

// Snapshot is the denormalized entitlement view served to clients.
type Snapshot struct {
	UserID          uint       `json:"user_id"`
	Tier            string     `json:"tier"`
	Status          string     `json:"status"`
	Platform        string     `json:"platform"`
	Entitled        bool       `json:"entitled"`
	GenerationsUsed int        `json:"generations_used"`
	GenerationLimit int        `json:"generation_limit"`
	Remaining       int        `json:"remaining"`
	ExpiresAt       *time.Time `json:"expires_at,omitempty"`
	UsageResetAt    *time.Time `json:"usage_reset_at,omitempty"`
	RefreshedAt     time.Time  `json:"refreshed_at"`
}

// Cache serves subscription snapshots with a short freshness window and
// coalesces concurrent refreshes for the same user behind one DB read.
type Cache struct {
	db *gorm.DB

	mu       sync.Mutex
	inFlight map[uint]*userLock
}

// userLock serializes refreshes for one user. The refcount lets the
// in-flight map drop the entry once the last waiter releases it, so the
// map stays proportional to concurrent refreshes, not to users ever seen.
type userLock struct {
	mu   sync.Mutex
	refs int
}

// New creates a snapshot cache on top of a GORM DB handle.
func New(db *gorm.DB) *Cache {
	return &Cache{
		db:       db,
		inFlight: make(map[uint]*userLock),
	}
}

// Get returns the entitlement snapshot for a user, from cache when fresh.
func (c *Cache) Get(userID uint) (*Snapshot, error) {
	if snap, ok := c.cached(userID); ok {
		return snap, nil
	}
	return c.refresh(userID)
}

// ForceRefresh bypasses the freshness window. Clients use this right
// after a purchase so the new entitlement shows up immediately.
func (c *Cache) ForceRefresh(userID uint) (*Snapshot, error) {
	c.Invalidate(userID)
	return c.refresh(userID)
}

// Invalidate drops the cached snapshot without reloading it.
func (c *Cache) Invalidate(userID uint) {
	if err := cache.Delete(snapshotKey(userID)); err != nil {
		log.Warnf("[SubCache] Failed to invalidate snapshot for user %d: %v", userID, err)
	}
}

func (c *Cache) cached(userID uint) (*Snapshot, bool) {
	raw, err := cache.Get(snapshotKey(userID))
	if err != nil {
		if err != redis.Nil {
			log.Warnf("[SubCache] Cache read failed for user %d: %v", userID, err)
		}
		return nil, false
	}
	var snap Snapshot
	if err := json.Unmarshal([]byte(raw), &snap); err != nil {
		log.Warnf("[SubCache] Corrupt snapshot for user %d: %v", userID, err)
		return nil, false
	}
	return &snap, true
}

// refresh loads the subscription from the DB and stores the snapshot.
// A per-user mutex serializes concurrent refreshes: the second caller
// finds the fresh snapshot the first one just wrote.
func (c *Cache) refresh(userID uint) (*Snapshot, error) {
	lock := c.acquireUserLock(userID)
	lock.mu.Lock()
	defer func() {
		lock.mu.Unlock()
		c.releaseUserLock(userID, lock)
	}()

	// Re-check under the lock; another goroutine may have refreshed.
	if snap, ok := c.cached(userID); ok && time.Since(snap.RefreshedAt) < snapshotTTL {
		return snap, nil
	}

	var sub models.SubscriptionStatus
	if err := c.db.Where("user_id = ?", userID).First(&sub).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	snap := &Snapshot{
		UserID:          sub.UserID,
		Tier:            string(entitlements.Normalize(sub.Tier)),
		Status:          sub.Status,
		Platform:        sub.Platform,
		Entitled:        sub.IsEntitled(),
		GenerationsUsed: sub.GenerationsUsed,
		GenerationLimit: entitlements.EffectiveLimit(&sub),
		Remaining:       entitlements.RemainingGenerations(&sub),
		ExpiresAt:       sub.ExpiresAt,
		UsageResetAt:    sub.UsageResetAt,
		RefreshedAt:     time.Now(),
	}

	if data, err := json.Marshal(snap); err == nil {
		if err := cache.Set(snapshotKey(userID), string(data), snapshotTTL); err != nil {
			log.Warnf("[SubCache] Failed to store snapshot for user %d: %v", userID, err)
		}
	}

	return snap, nil
}

func (c *Cache) acquireUserLock(userID uint) *userLock {
	c.mu.Lock()
	defer c.mu.Unlock()
	l, ok := c.inFlight[userID]
	if !ok {
		l = &userLock{}
		c.inFlight[userID] = l
	}
	l.refs++
	return l
}

func (c *Cache) releaseUserLock(userID uint, l *userLock) {
	c.mu.Lock()
	defer c.mu.Unlock()
	l.refs--
	if l.refs == 0 {
		delete(c.inFlight, userID)
	}
}

func snapshotKey(userID uint) string {
	return fmt.Sprintf("%s%d", snapshotKeyPrefix, userID)
}
