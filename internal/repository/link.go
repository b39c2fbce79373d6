// Package repository implements the data access layer for the application.
package repository

import (
	"context"

	"quill/internal/models"

	"gorm.io/gorm"
)

// LinkRepository defines persistence operations for profile links.
type LinkRepository interface {
	Create(ctx context.Context, link *models.Link) error
	ListByUser(ctx context.Context, userID uint) ([]models.Link, error)
	// DeleteOwned removes the link only when it belongs to userID and
	// reports whether a row was deleted. Ownership and existence are
	// deliberately indistinguishable to callers.
	DeleteOwned(ctx context.Context, userID, linkID uint) (bool, error)
}

type linkRepository struct {
	db *gorm.DB
}

// NewLinkRepository creates a new LinkRepository
func NewLinkRepository(db *gorm.DB) LinkRepository {
	return &linkRepository{db: db}
}

func (r *linkRepository) Create(ctx context.Context, link *models.Link) error {
	if err := r.db.WithContext(ctx).Create(link).Error; err != nil {
		return models.NewStorageError(err)
	}
	return nil
}

func (r *linkRepository) ListByUser(ctx context.Context, userID uint) ([]models.Link, error) {
	var links []models.Link
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("id").
		Find(&links).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return links, nil
}

func (r *linkRepository) DeleteOwned(ctx context.Context, userID, linkID uint) (bool, error) {
	res := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", linkID, userID).
		Delete(&models.Link{})
	if res.Error != nil {
		return false, models.NewStorageError(res.Error)
	}
	return res.RowsAffected > 0, nil
}
