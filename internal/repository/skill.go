// Package repository implements the data access layer for the application.
package repository

import (
	"context"

	"quill/internal/models"

	"gorm.io/gorm"
)

// SkillRepository defines persistence operations for profile skills.
type SkillRepository interface {
	Create(ctx context.Context, skill *models.Skill) error
	ListByUser(ctx context.Context, userID uint) ([]models.Skill, error)
	// DeleteByName removes the user's skill matching name and reports
	// whether a row was deleted.
	DeleteByName(ctx context.Context, userID uint, name string) (bool, error)
}

type skillRepository struct {
	db *gorm.DB
}

// NewSkillRepository creates a new SkillRepository
func NewSkillRepository(db *gorm.DB) SkillRepository {
	return &skillRepository{db: db}
}

func (r *skillRepository) Create(ctx context.Context, skill *models.Skill) error {
	if err := r.db.WithContext(ctx).Create(skill).Error; err != nil {
		return models.NewStorageError(err)
	}
	return nil
}

func (r *skillRepository) ListByUser(ctx context.Context, userID uint) ([]models.Skill, error) {
	var skills []models.Skill
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("id").
		Find(&skills).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return skills, nil
}

func (r *skillRepository) DeleteByName(ctx context.Context, userID uint, name string) (bool, error) {
	res := r.db.WithContext(ctx).
		Where("user_id = ? AND name = ?", userID, name).
		Delete(&models.Skill{})
	if res.Error != nil {
		return false, models.NewStorageError(res.Error)
	}
	return res.RowsAffected > 0, nil
}
