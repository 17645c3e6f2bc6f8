package controllers

import (
	"errors"
	"sync"

	"github.com/gofiber/fiber/v2"

	"github.com/MelodiaryApp/Melodiary/internal/pkg/database"
	"github.com/MelodiaryApp/Melodiary/internal/pkg/env"
	"github.com/MelodiaryApp/Melodiary/internal/pkg/subcache"
	"github.com/MelodiaryApp/Melodiary/internal/pkg/webhookauth"
	"github.com/MelodiaryApp/Melodiary/internal/pkg/webhooklog"
)

var (
	subCache     *subcache.Cache
	subCacheOnce sync.Once
)

// subscriptionCache returns the process-wide snapshot cache.
func subscriptionCache() *subcache.Cache {
	subCacheOnce.Do(func() {
		subCache = subcache.New(database.GetDB())
	})
	return subCache
}

// HandleGetSubscription serves the entitlement snapshot for a user.
// Reads within the freshness window come from cache; ?refresh=1 forces a
// reload, which clients use right after a purchase.
func HandleGetSubscription(c *fiber.Ctx) error {
	lg := webhooklog.New("SubscriptionRead")

	// Internal API, called service-to-service with a shared token.
	if err := webhookauth.CheckBearer(
		c.Get(fiber.HeaderAuthorization),
		env.GetEnv("INTERNAL_API_TOKEN", ""),
	); err != nil {
		return authError(c, lg, err)
	}

	userID, err := c.ParamsInt("userID")
	if err != nil || userID <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid user id",
		})
	}

	cache := subscriptionCache()
	var snap *subcache.Snapshot
	if c.QueryBool("refresh") {
		snap, err = cache.ForceRefresh(uint(userID))
	} else {
		snap, err = cache.Get(uint(userID))
	}
	if err != nil {
		if errors.Is(err, subcache.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "subscription not found",
			})
		}
		lg.Errorf("snapshot load failed for user %d: %v", userID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "internal error",
		})
	}

	return c.Status(fiber.StatusOK).JSON(snap)
}
