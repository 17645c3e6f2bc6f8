package billing

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/MelodiaryApp/Melodiary/app/models"
)

// Repository provides DB operations used by the billing service.
type Repository interface {
	GetUserByExternalID(externalID string) (*models.User, error)
	GetOrCreateSubscriptionStatus(userID uint) (*models.SubscriptionStatus, error)
	SaveSubscriptionStatus(sub *models.SubscriptionStatus) error
	AppendLogIfNotExists(row *models.SubscriptionLog) (bool, error)
}

type gormRepository struct {
	db *gorm.DB
}

// NewRepository creates a billing repository backed by GORM.
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

func (r *gormRepository) GetOrCreateSubscriptionStatus(userID uint) (*models.SubscriptionStatus, error) {
	var sub models.SubscriptionStatus
	err := r.db.Where("user_id = ?", userID).First(&sub).Error
	if err == nil {
		return &sub, nil
	}
	if err != gorm.ErrRecordNotFound {
		return nil, err
	}

	sub = models.SubscriptionStatus{
		UserID:   userID,
		Platform: models.PlatformIdentityFree,
		Status:   models.SubscriptionStatusActive,
		Tier:     "free",
	}
	if err := r.db.Create(&sub).Error; err != nil {
		return nil, err
	}
	return &sub, nil
}

func (r *gormRepository) SaveSubscriptionStatus(sub *models.SubscriptionStatus) error {
	return r.db.Save(sub).Error
}

// AppendLogIfNotExists inserts the audit row unless an identical
// (provider, provider_event_id) row already exists. Returns whether a new
// row was written.
func (r *gormRepository) AppendLogIfNotExists(row *models.SubscriptionLog) (bool, error) {
	tx := r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "provider"},
			{Name: "provider_event_id"},
		},
		DoNothing: true,
	}).Create(row)
	if tx.Error != nil {
		return false, tx.Error
	}
	return tx.RowsAffected > 0, nil
}
