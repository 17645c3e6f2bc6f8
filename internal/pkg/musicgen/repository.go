package musicgen

import (
	"gorm.io/gorm"

	"github.com/MelodiaryApp/Melodiary/app/models"
)

// Repository provides DB operations used by the music generation service.
type Repository interface {
	GetMusicByTaskAndIndex(taskID string, musicIndex int) (*models.Music, error)
	ListMusicByTask(taskID string) ([]models.Music, error)
	SaveMusic(m *models.Music) error
	GetVideoByTaskID(taskID string) (*models.MusicVideo, error)
	SaveVideo(v *models.MusicVideo) error
	SetFavoriteVideo(musicID, videoID uint) error
}

type gormRepository struct {
	db *gorm.DB
}

// NewRepository creates a music generation repository backed by GORM.
func NewRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) GetMusicByTaskAndIndex(taskID string, musicIndex int) (*models.Music, error) {
	var m models.Music
	err := r.db.Where("task_id = ? AND music_index = ?", taskID, musicIndex).First(&m).Error
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *gormRepository) ListMusicByTask(taskID string) ([]models.Music, error) {
	var rows []models.Music
	err := r.db.Where("task_id = ?", taskID).Order("music_index ASC").Find(&rows).Error
	return rows, err
}

func (r *gormRepository) SaveMusic(m *models.Music) error {
	return r.db.Save(m).Error
}

func (r *gormRepository) GetVideoByTaskID(taskID string) (*models.MusicVideo, error) {
	var v models.MusicVideo
	err := r.db.Where("task_id = ?", taskID).First(&v).Error
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func (r *gormRepository) SaveVideo(v *models.MusicVideo) error {
	return r.db.Save(v).Error
}

// SetFavoriteVideo marks the video as the track's primary one unless the
// track already has a favorite.
func (r *gormRepository) SetFavoriteVideo(musicID, videoID uint) error {
	return r.db.Model(&models.Music{}).
		Where("id = ? AND favorite_video_id IS NULL", musicID).
		Update("favorite_video_id", videoID).Error
}
