package repository

import (
	"time"

	"assesspro_backend/internal/model"

	"gorm.io/gorm"
)

type CooldownExceptionRepository struct {
	DB *gorm.DB
}

func NewCooldownExceptionRepository(db *gorm.DB) *CooldownExceptionRepository {
	return &CooldownExceptionRepository{DB: db}
}

func (r *CooldownExceptionRepository) Create(exception *model.RetryCooldownException) error {
	return r.DB.Create(exception).Error
}

func (r *CooldownExceptionRepository) FindByTestAndUser(testID, userID uint) (*model.RetryCooldownException, error) {
	var e model.RetryCooldownException
	err := r.DB.Where("test_id = ? AND user_id = ?", testID, userID).First(&e).Error
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// HasActiveException reports whether a permanent or still-unexpired override
// exists for the pair at now.
func (r *CooldownExceptionRepository) HasActiveException(testID, userID uint, now time.Time) (bool, error) {
	var count int64
	err := r.DB.Model(&model.RetryCooldownException{}).
		Where("test_id = ? AND user_id = ?", testID, userID).
		Where("is_permanent = ? OR expires_at > ?", true, now).
		Count(&count).Error
	return count > 0, err
}

func (r *CooldownExceptionRepository) DeleteByTestAndUser(testID, userID uint) error {
	return r.DB.Unscoped().
		Where("test_id = ? AND user_id = ?", testID, userID).
		Delete(&model.RetryCooldownException{}).Error
}

func (r *CooldownExceptionRepository) ListByTest(testID uint) ([]model.RetryCooldownException, error) {
	var exceptions []model.RetryCooldownException
	err := r.DB.Where("test_id = ?", testID).Order("created_at DESC").Find(&exceptions).Error
	return exceptions, err
}
