package repository

import (
	"time"

	"assesspro_backend/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type AttemptRepository struct {
	DB *gorm.DB
}

func NewAttemptRepository(db *gorm.DB) *AttemptRepository {
	return &AttemptRepository{DB: db}
}

func (r *AttemptRepository) Create(attempt *model.TestAttempt) error {
	return r.DB.Create(attempt).Error
}

func (r *AttemptRepository) Update(attempt *model.TestAttempt) error {
	return r.DB.Save(attempt).Error
}

func (r *AttemptRepository) FindByID(id uint) (*model.TestAttempt, error) {
	var a model.TestAttempt
	if err := r.DB.First(&a, id).Error; err != nil {
		return nil, err
	}
	return &a, nil
}

// FindByIDForUpdate loads an attempt row under a FOR UPDATE lock. Must run
// inside the transaction tx; every write path for one attempt goes through
// this lock so concurrent submissions and finishes serialize per attempt.
func (r *AttemptRepository) FindByIDForUpdate(tx *gorm.DB, id uint) (*model.TestAttempt, error) {
	var a model.TestAttempt
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&a, id).Error
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *AttemptRepository) FindInProgress(testID, userID uint) (*model.TestAttempt, error) {
	var a model.TestAttempt
	err := r.DB.Where("test_id = ? AND user_id = ? AND status = ?",
		testID, userID, model.AttemptInProgress).First(&a).Error
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// FindLatestCompleted returns the tester's most recent COMPLETED attempt for
// the test, the reference point for the cooldown arithmetic.
func (r *AttemptRepository) FindLatestCompleted(testID, userID uint) (*model.TestAttempt, error) {
	var a model.TestAttempt
	err := r.DB.Where("test_id = ? AND user_id = ? AND status = ?",
		testID, userID, model.AttemptCompleted).
		Order("start_time DESC").
		First(&a).Error
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *AttemptRepository) HistoryByUser(userID uint, page, limit int) ([]model.TestAttempt, int64, error) {
	query := r.DB.Model(&model.TestAttempt{}).Where("user_id = ?", userID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var attempts []model.TestAttempt
	err := query.Order("start_time DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&attempts).Error
	return attempts, total, err
}

func (r *AttemptRepository) CountByUser(userID uint) (int64, error) {
	var count int64
	err := r.DB.Model(&model.TestAttempt{}).Where("user_id = ?", userID).Count(&count).Error
	return count, err
}

func (r *AttemptRepository) CountByUserAndStatus(userID uint, status model.AttemptStatus) (int64, error) {
	var count int64
	err := r.DB.Model(&model.TestAttempt{}).
		Where("user_id = ? AND status = ?", userID, status).Count(&count).Error
	return count, err
}

func (r *AttemptRepository) AverageScoreByUser(userID uint) (float64, error) {
	var avg *float64
	err := r.DB.Model(&model.TestAttempt{}).
		Where("user_id = ? AND status = ?", userID, model.AttemptCompleted).
		Select("AVG(total_score)").Scan(&avg).Error
	if err != nil || avg == nil {
		return 0, err
	}
	return *avg, nil
}

// ExpiredCandidate pairs an IN_PROGRESS attempt with its test's time limit.
type ExpiredCandidate struct {
	AttemptID        uint
	StartTime        time.Time
	TimeLimitMinutes int
}

// FindExpiredCandidates returns IN_PROGRESS attempts on time-limited tests.
// The caller decides which have actually run out; the deadline arithmetic
// stays in Go so it works the same on every SQL dialect.
func (r *AttemptRepository) FindExpiredCandidates(now time.Time) ([]ExpiredCandidate, error) {
	var candidates []ExpiredCandidate
	err := r.DB.Model(&model.TestAttempt{}).
		Select("test_attempts.id AS attempt_id, test_attempts.start_time, tests.time_limit_minutes").
		Joins("JOIN tests ON tests.id = test_attempts.test_id").
		Where("test_attempts.status = ?", model.AttemptInProgress).
		Where("tests.time_limit_minutes > 0").
		Where("test_attempts.start_time <= ?", now).
		Scan(&candidates).Error
	return candidates, err
}

func (r *AttemptRepository) CountAll() (int64, error) {
	var count int64
	err := r.DB.Model(&model.TestAttempt{}).Count(&count).Error
	return count, err
}
