package identity

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/MelodiaryApp/Melodiary/app/models"
	"github.com/MelodiaryApp/Melodiary/internal/pkg/entitlements"
)

// Service provisions users from identity-provider events.
type Service struct {
	repo Repository
}

// NewService creates an identity service from an injected repository.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// NewServiceFromDB creates an identity service from a GORM DB handle.
func NewServiceFromDB(db *gorm.DB) *Service {
	return NewService(NewRepository(db))
}

// ProvisionUser creates the user and a default free-tier subscription for
// a user.created event. Provisioning is idempotent under at-least-once
// delivery: an existing user with the same external ID is returned
// unchanged with created=false.
func (s *Service) ProvisionUser(ctx context.Context, ev *UserCreatedEvent) (*models.User, bool, error) {
	_ = ctx
	if ev == nil || ev.ExternalID == "" {
		return nil, false, errors.New("external user id is required")
	}

	existing, err := s.repo.GetUserByExternalID(ev.ExternalID)
	if err == nil {
		return existing, false, nil
	}
	if !IsNotFound(err) {
		return nil, false, err
	}

	user := &models.User{
		ExternalID:  ev.ExternalID,
		Email:       ev.Email,
		DisplayName: ev.DisplayName,
		Tags:        models.TagList(ev.Tags),
	}
	if err := user.Validate(); err != nil {
		return nil, false, fmt.Errorf("invalid user payload: %w", err)
	}
	now := time.Now()
	resetAt := now.AddDate(0, 1, 0)
	sub := &models.SubscriptionStatus{
		Platform:       models.PlatformIdentityFree,
		Status:         models.SubscriptionStatusActive,
		Tier:           string(entitlements.PlanFree),
		UsageResetAt:   &resetAt,
		LastVerifiedAt: &now,
	}
	if err := s.repo.CreateUserWithSubscription(user, sub); err != nil {
		return nil, false, err
	}
	return user, true, nil
}
