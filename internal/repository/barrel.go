// Package repository provides data access layer implementations for the application.
package repository

import (
	"context"
	"errors"

	"quayside/internal/middleware"
	"quayside/internal/models"

	"gorm.io/gorm"
)

// BarrelRepository defines the interface for barrel data operations
type BarrelRepository interface {
	Create(ctx context.Context, barrel *models.Barrel) error
	GetByID(ctx context.Context, id uint) (*models.Barrel, error)
	// Save persists a mutated barrel. The write succeeds only if the stored
	// version still matches the one the barrel was loaded with; a stale save
	// fails with a CONFLICT error and leaves the stored state untouched.
	Save(ctx context.Context, barrel *models.Barrel) error
	Delete(ctx context.Context, id uint) error
	ListByType(ctx context.Context, barrelType models.BarrelType) ([]models.Barrel, error)
	ListByOwnerAndType(ctx context.Context, ownerID uint, barrelType models.BarrelType) ([]models.Barrel, error)
	// GetOwnerBarrel returns the owner's singleton barrel of the given type,
	// or nil if none exists yet.
	GetOwnerBarrel(ctx context.Context, ownerID uint, barrelType models.BarrelType) (*models.Barrel, error)
}

// barrelRepository implements BarrelRepository
type barrelRepository struct {
	db *gorm.DB
}

// NewBarrelRepository creates a new barrel repository
func NewBarrelRepository(db *gorm.DB) BarrelRepository {
	return &barrelRepository{db: db}
}

func (r *barrelRepository) Create(ctx context.Context, barrel *models.Barrel) error {
	if err := r.db.WithContext(ctx).Create(barrel).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *barrelRepository) GetByID(ctx context.Context, id uint) (*models.Barrel, error) {
	var barrel models.Barrel
	if err := r.db.WithContext(ctx).First(&barrel, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Barrel", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &barrel, nil
}

func (r *barrelRepository) Save(ctx context.Context, barrel *models.Barrel) error {
	next := *barrel
	next.Version = barrel.Version + 1

	res := r.db.WithContext(ctx).
		Model(&models.Barrel{}).
		Where("id = ? AND version = ?", barrel.ID, barrel.Version).
		Select("Name", "MemberIDs", "Attributes", "Version").
		Updates(&next)
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		middleware.BarrelSaveConflicts.Inc()
		return models.NewConflictError("Barrel", barrel.ID)
	}

	barrel.Version = next.Version
	return nil
}

func (r *barrelRepository) Delete(ctx context.Context, id uint) error {
	if err := r.db.WithContext(ctx).Delete(&models.Barrel{}, id).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *barrelRepository) ListByType(ctx context.Context, barrelType models.BarrelType) ([]models.Barrel, error) {
	var barrels []models.Barrel
	if err := r.db.WithContext(ctx).
		Where("type = ?", barrelType).
		Order("created_at desc").
		Find(&barrels).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return barrels, nil
}

func (r *barrelRepository) ListByOwnerAndType(ctx context.Context, ownerID uint, barrelType models.BarrelType) ([]models.Barrel, error) {
	var barrels []models.Barrel
	if err := r.db.WithContext(ctx).
		Where("owner_id = ? AND type = ?", ownerID, barrelType).
		Order("created_at desc").
		Find(&barrels).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return barrels, nil
}

func (r *barrelRepository) GetOwnerBarrel(ctx context.Context, ownerID uint, barrelType models.BarrelType) (*models.Barrel, error) {
	var barrel models.Barrel
	err := r.db.WithContext(ctx).
		Where("owner_id = ? AND type = ?", ownerID, barrelType).
		Order("id asc").
		First(&barrel).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, models.NewInternalError(err)
	}
	return &barrel, nil
}
