package service

import (
	"assesspro_backend/internal/model"
	"assesspro_backend/internal/repository"
)

// AdminService backs the administrative surface: user listing, attempt
// cancellation and application-wide statistics.
type AdminService struct {
	UserRepo    *repository.UserRepository
	AttemptRepo *repository.AttemptRepository
	Passing     *TestPassingService
}

func NewAdminService(userRepo *repository.UserRepository, attemptRepo *repository.AttemptRepository, passing *TestPassingService) *AdminService {
	return &AdminService{
		UserRepo:    userRepo,
		AttemptRepo: attemptRepo,
		Passing:     passing,
	}
}

type AppStatistics struct {
	TotalUsers        int64 `json:"totalUsers"`
	TotalTests        int64 `json:"totalTests"`
	PublishedTests    int64 `json:"publishedTests"`
	TotalAttempts     int64 `json:"totalAttempts"`
	CompletedAttempts int64 `json:"completedAttempts"`
}

func (s *AdminService) ListUsers(page, limit int) ([]model.User, int64, error) {
	return s.UserRepo.List(page, limit)
}

func (s *AdminService) SetUserDisabled(userID uint, disabled bool) error {
	user, err := s.UserRepo.FindByID(userID)
	if err != nil {
		return err
	}
	user.Disabled = disabled
	return s.UserRepo.Update(user)
}

// CancelAttempt drives the administrative IN_PROGRESS -> CANCELLED transition.
func (s *AdminService) CancelAttempt(attemptID uint) error {
	return s.Passing.CancelAttempt(attemptID)
}

func (s *AdminService) GetStatistics() (*AppStatistics, error) {
	stats := &AppStatistics{}
	db := s.UserRepo.DB

	if err := db.Model(&model.User{}).Count(&stats.TotalUsers).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&model.Test{}).Count(&stats.TotalTests).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&model.Test{}).Where("is_published = ?", true).Count(&stats.PublishedTests).Error; err != nil {
		return nil, err
	}
	var err error
	if stats.TotalAttempts, err = s.AttemptRepo.CountAll(); err != nil {
		return nil, err
	}
	if err := db.Model(&model.TestAttempt{}).Where("status = ?", model.AttemptCompleted).Count(&stats.CompletedAttempts).Error; err != nil {
		return nil, err
	}
	return stats, nil
}
