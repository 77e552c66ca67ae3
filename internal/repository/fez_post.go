package repository

import (
	"context"
	"errors"

	"quayside/internal/models"

	"gorm.io/gorm"
)

// FezPostRepository defines the interface for fez discussion post operations
type FezPostRepository interface {
	Create(ctx context.Context, post *models.FezPost) error
	GetByID(ctx context.Context, id uint) (*models.FezPost, error)
	Delete(ctx context.Context, id uint) error
	// ListForFez returns the posts attached to a fez in ascending creation
	// order, excluding posts whose author is in excludedAuthorIDs.
	ListForFez(ctx context.Context, fezID uint, excludedAuthorIDs []uint) ([]models.FezPost, error)
}

// fezPostRepository implements FezPostRepository
type fezPostRepository struct {
	db *gorm.DB
}

// NewFezPostRepository creates a new fez post repository
func NewFezPostRepository(db *gorm.DB) FezPostRepository {
	return &fezPostRepository{db: db}
}

func (r *fezPostRepository) Create(ctx context.Context, post *models.FezPost) error {
	if err := r.db.WithContext(ctx).Create(post).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *fezPostRepository) GetByID(ctx context.Context, id uint) (*models.FezPost, error) {
	var post models.FezPost
	if err := r.db.WithContext(ctx).Preload("Author").First(&post, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Post", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &post, nil
}

func (r *fezPostRepository) Delete(ctx context.Context, id uint) error {
	if err := r.db.WithContext(ctx).Delete(&models.FezPost{}, id).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *fezPostRepository) ListForFez(ctx context.Context, fezID uint, excludedAuthorIDs []uint) ([]models.FezPost, error) {
	var posts []models.FezPost
	query := r.db.WithContext(ctx).
		Where("barrel_id = ?", fezID).
		Preload("Author").
		Order("created_at asc")
	if len(excludedAuthorIDs) > 0 {
		query = query.Where("author_id NOT IN ?", excludedAuthorIDs)
	}
	if err := query.Find(&posts).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return posts, nil
}
