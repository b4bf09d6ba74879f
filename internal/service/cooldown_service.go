package service

import (
	"errors"
	"fmt"
	"time"

	"assesspro_backend/internal/model"
	"assesspro_backend/internal/repository"
	"assesspro_backend/pkg/logger"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Reason codes for a start decision.
const (
	ReasonNoCooldown     = "no_cooldown"
	ReasonException      = "exception"
	ReasonFirstAttempt   = "first_attempt"
	ReasonCooldownPassed = "cooldown_elapsed"
	ReasonCooldownActive = "cooldown_active"
)

// CooldownService decides whether a tester may begin a new attempt on a test.
// It only reads attempt and exception rows; it never writes attempt state.
type CooldownService struct {
	AttemptRepo   *repository.AttemptRepository
	ExceptionRepo *repository.CooldownExceptionRepository
}

func NewCooldownService(attemptRepo *repository.AttemptRepository, exceptionRepo *repository.CooldownExceptionRepository) *CooldownService {
	return &CooldownService{
		AttemptRepo:   attemptRepo,
		ExceptionRepo: exceptionRepo,
	}
}

// StartDecision is the outcome of a CanStart evaluation.
type StartDecision struct {
	Allowed         bool      `json:"allowed"`
	NextAvailableAt time.Time `json:"nextAvailableAt"`
	Reason          string    `json:"reason"`
}

// CanStart evaluates the retry rules for (test, tester) at now:
// no cooldown on the test, an active exception, or no completed attempt all
// allow immediately. Otherwise the next slot opens effectiveCooldownHours
// after the last completed attempt's end time (falling back to its start
// time), boundary inclusive.
func (s *CooldownService) CanStart(test *model.Test, userID uint, now time.Time) (StartDecision, error) {
	if !test.HasRetryCooldown() {
		return StartDecision{Allowed: true, NextAvailableAt: now, Reason: ReasonNoCooldown}, nil
	}

	active, err := s.ExceptionRepo.HasActiveException(test.ID, userID, now)
	if err != nil {
		return StartDecision{}, err
	}
	if active {
		logger.Log.Debug("cooldown bypassed by exception",
			zap.Uint("testId", test.ID), zap.Uint("userId", userID))
		return StartDecision{Allowed: true, NextAvailableAt: now, Reason: ReasonException}, nil
	}

	lastAttempt, err := s.AttemptRepo.FindLatestCompleted(test.ID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return StartDecision{Allowed: true, NextAvailableAt: now, Reason: ReasonFirstAttempt}, nil
		}
		return StartDecision{}, err
	}

	referenceTime := lastAttempt.StartTime
	if lastAttempt.EndTime != nil {
		referenceTime = *lastAttempt.EndTime
	}

	nextAvailableAt := referenceTime.Add(time.Duration(test.EffectiveCooldownHours()) * time.Hour)
	if now.Before(nextAvailableAt) {
		return StartDecision{Allowed: false, NextAvailableAt: nextAvailableAt, Reason: ReasonCooldownActive}, nil
	}
	return StartDecision{Allowed: true, NextAvailableAt: nextAvailableAt, Reason: ReasonCooldownPassed}, nil
}

// NextAvailableTime returns when the tester may start the test next. For an
// already-allowed tester this is now (or the elapsed boundary).
func (s *CooldownService) NextAvailableTime(test *model.Test, userID uint, now time.Time) (time.Time, error) {
	decision, err := s.CanStart(test, userID, now)
	if err != nil {
		return time.Time{}, err
	}
	return decision.NextAvailableAt, nil
}

// CooldownStatus renders the decision for display. Not load-bearing for
// correctness, only for messaging.
func (s *CooldownService) CooldownStatus(test *model.Test, userID uint, now time.Time) (string, error) {
	decision, err := s.CanStart(test, userID, now)
	if err != nil {
		return "", err
	}
	if decision.Allowed {
		if decision.Reason == ReasonException {
			return "Available (exception)", nil
		}
		return "Available", nil
	}

	remaining := decision.NextAvailableAt.Sub(now)
	hours := int(remaining.Hours())
	if hours > 24 {
		days := hours / 24
		return fmt.Sprintf("Unavailable for another %d %s", days, pluralize(days, "day", "days")), nil
	}
	if hours > 0 {
		return fmt.Sprintf("Unavailable for another %d %s", hours, pluralize(hours, "hour", "hours")), nil
	}
	minutes := int(remaining.Minutes())
	return fmt.Sprintf("Unavailable for another %d min", minutes), nil
}

func pluralize(n int, singular, plural string) string {
	if n == 1 {
		return singular
	}
	return plural
}

// CreateException grants a cooldown override for (test, tester), superseding
// any previous one. With permanent unset and hours <= 0 the row is created
// already expired; callers are expected to guard that combination.
func (s *CooldownService) CreateException(testID, userID, createdByID uint, hours int, permanent bool, reason string) (*model.RetryCooldownException, error) {
	if err := s.ExceptionRepo.DeleteByTestAndUser(testID, userID); err != nil {
		return nil, err
	}

	exception := &model.RetryCooldownException{
		TestID:      testID,
		UserID:      userID,
		CreatedByID: createdByID,
		IsPermanent: permanent,
		Reason:      reason,
	}
	if !permanent && hours > 0 {
		expiresAt := time.Now().Add(time.Duration(hours) * time.Hour)
		exception.ExpiresAt = &expiresAt
	}

	if err := s.ExceptionRepo.Create(exception); err != nil {
		return nil, err
	}

	logger.Log.Info("cooldown exception created",
		zap.Uint("testId", testID),
		zap.Uint("userId", userID),
		zap.Uint("createdBy", createdByID),
		zap.Bool("permanent", permanent))

	return exception, nil
}

// RemoveException deletes the override for the pair; removing a missing one
// is a no-op.
func (s *CooldownService) RemoveException(testID, userID uint) error {
	if err := s.ExceptionRepo.DeleteByTestAndUser(testID, userID); err != nil {
		return err
	}
	logger.Log.Info("cooldown exception removed",
		zap.Uint("testId", testID), zap.Uint("userId", userID))
	return nil
}

// ListExceptions returns the exceptions configured for a test.
func (s *CooldownService) ListExceptions(testID uint) ([]model.RetryCooldownException, error) {
	return s.ExceptionRepo.ListByTest(testID)
}
