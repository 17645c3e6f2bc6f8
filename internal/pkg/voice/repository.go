package voice

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/MelodiaryApp/Melodiary/app/models"
)

// Repository provides DB operations used by the voice service.
type Repository interface {
	GetCallJobByProviderCallID(providerCallID string) (*models.CallJob, error)
	SaveCallJob(job *models.CallJob) error
	UpsertCallSession(session *models.CallSession) error
	GetLatestCallJobByPhone(phoneNumber string) (*models.CallJob, error)
	GetUserByID(userID uint) (*models.User, error)
}

type gormRepository struct {
	db *gorm.DB
}

// NewRepository creates a voice repository backed by GORM.
func NewRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) GetCallJobByProviderCallID(providerCallID string) (*models.CallJob, error) {
	var job models.CallJob
	err := r.db.Where("provider_call_id = ?", providerCallID).First(&job).Error
	if err != nil {
		return nil, err
	}
	return &job, nil
}

func (r *gormRepository) SaveCallJob(job *models.CallJob) error {
	return r.db.Save(job).Error
}

// UpsertCallSession writes the session keyed by call_job_id. Re-delivered
// reports converge onto the same row without duplicating it.
func (r *gormRepository) UpsertCallSession(session *models.CallSession) error {
	if err := r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "call_job_id"},
		},
		DoUpdates: clause.AssignmentColumns([]string{
			"transcript",
			"messages_json",
			"recording_url",
			"ended_reason",
			"duration_seconds",
			"updated_at",
		}),
	}).Create(session).Error; err != nil {
		return err
	}

	// Ensure ID and DiaryEntryID reflect the stored row after upsert.
	return r.db.Where("call_job_id = ?", session.CallJobID).First(session).Error
}

func (r *gormRepository) GetLatestCallJobByPhone(phoneNumber string) (*models.CallJob, error) {
	var job models.CallJob
	err := r.db.Where("phone_number = ?", phoneNumber).Order("created_at DESC").First(&job).Error
	if err != nil {
		return nil, err
	}
	return &job, nil
}

func (r *gormRepository) GetUserByID(userID uint) (*models.User, error) {
	var user models.User
	err := r.db.First(&user, userID).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}
