package repository

import (
	"assesspro_backend/internal/model"

	"gorm.io/gorm"
)

type UserAnswerRepository struct {
	DB *gorm.DB
}

func NewUserAnswerRepository(db *gorm.DB) *UserAnswerRepository {
	return &UserAnswerRepository{DB: db}
}

func (r *UserAnswerRepository) FindByAttemptAndQuestion(tx *gorm.DB, attemptID, questionID uint) (*model.UserAnswer, error) {
	var a model.UserAnswer
	err := tx.Where("attempt_id = ? AND question_id = ?", attemptID, questionID).First(&a).Error
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *UserAnswerRepository) ListByAttempt(attemptID uint) ([]model.UserAnswer, error) {
	var answers []model.UserAnswer
	err := r.DB.Where("attempt_id = ?", attemptID).Order("question_id ASC").Find(&answers).Error
	return answers, err
}

// SumPoints recomputes the attempt total from its answer rows. Runs inside
// the caller's transaction so the total never drifts from the rows it sums.
func (r *UserAnswerRepository) SumPoints(tx *gorm.DB, attemptID uint) (int, error) {
	var total *int
	err := tx.Model(&model.UserAnswer{}).
		Where("attempt_id = ?", attemptID).
		Select("SUM(points_earned)").Scan(&total).Error
	if err != nil || total == nil {
		return 0, err
	}
	return *total, nil
}

func (r *UserAnswerRepository) CountByAttempt(attemptID uint) (int64, error) {
	var count int64
	err := r.DB.Model(&model.UserAnswer{}).Where("attempt_id = ?", attemptID).Count(&count).Error
	return count, err
}

func (r *UserAnswerRepository) DeleteByAttempt(tx *gorm.DB, attemptID uint) error {
	return tx.Where("attempt_id = ?", attemptID).Delete(&model.UserAnswer{}).Error
}
