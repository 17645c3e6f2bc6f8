package identity

import (
	"errors"

	"gorm.io/gorm"

	"github.com/MelodiaryApp/Melodiary/app/models"
)

// Repository provides DB operations used by the identity service.
type Repository interface {
	GetUserByExternalID(externalID string) (*models.User, error)
	CreateUserWithSubscription(user *models.User, sub *models.SubscriptionStatus) error
}

type gormRepository struct {
	db *gorm.DB
}

// NewRepository creates an identity repository backed by GORM.
func NewRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) GetUserByExternalID(externalID string) (*models.User, error) {
	var user models.User
	err := r.db.Where("external_id = ?", externalID).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// CreateUserWithSubscription inserts the user and their default
// subscription in one transaction and links the subscription back onto
// the user row.
func (r *gormRepository) CreateUserWithSubscription(user *models.User, sub *models.SubscriptionStatus) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(user).Error; err != nil {
			return err
		}
		sub.UserID = user.ID
		if err := tx.Create(sub).Error; err != nil {
			return err
		}
		user.ActiveSubscriptionID = &sub.ID
		return tx.Model(user).Update("active_subscription_id", sub.ID).Error
	})
}

// IsNotFound reports whether err is a missing-record lookup result.
func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
