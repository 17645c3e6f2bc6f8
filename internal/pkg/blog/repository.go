package blog

import (
	"gorm.io/gorm"

	"github.com/MelodiaryApp/Melodiary/app/models"
)

// Repository provides DB operations used by the blog service.
type Repository interface {
	GetPostByID(id uint) (*models.BlogPost, error)
	SlugExists(slug string) (bool, error)
	CreatePost(post *models.BlogPost) error
	SavePost(post *models.BlogPost) error
}

type gormRepository struct {
	db *gorm.DB
}

// NewRepository creates a blog repository backed by GORM.
func NewRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) GetPostByID(id uint) (*models.BlogPost, error) {
	var post models.BlogPost
	err := r.db.First(&post, id).Error
	if err != nil {
		return nil, err
	}
	return &post, nil
}

func (r *gormRepository) SlugExists(slug string) (bool, error) {
	var count int64
	err := r.db.Model(&models.BlogPost{}).Where("slug = ?", slug).Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *gormRepository) CreatePost(post *models.BlogPost) error {
	return r.db.Create(post).Error
}

func (r *gormRepository) SavePost(post *models.BlogPost) error {
	return r.db.Save(post).Error
}
