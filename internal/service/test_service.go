package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"assesspro_backend/internal/config"
	"assesspro_backend/internal/model"
	"assesspro_backend/internal/repository"
	"assesspro_backend/internal/util"
	"assesspro_backend/pkg/logger"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// TestService covers creator-side authoring and the tester-facing catalog.
// Published listings are cached in redis and invalidated on any authoring
// write.
type TestService struct {
	TestRepo     *repository.TestRepository
	CategoryRepo *repository.CategoryRepository
	Redis        *redis.Client
	Cfg          *config.Config
	DB           *gorm.DB
}

func NewTestService(testRepo *repository.TestRepository, categoryRepo *repository.CategoryRepository, rdb *redis.Client, cfg *config.Config, db *gorm.DB) *TestService {
	return &TestService{
		TestRepo:     testRepo,
		CategoryRepo: categoryRepo,
		Redis:        rdb,
		Cfg:          cfg,
		DB:           db,
	}
}

type AnswerOptionRequest struct {
	Text      string `json:"text" binding:"required"`
	IsCorrect bool   `json:"isCorrect"`
}

type QuestionRequest struct {
	Text          string                `json:"text" binding:"required"`
	AnswerOptions []AnswerOptionRequest `json:"answerOptions" binding:"required"`
}

type TestCreateRequest struct {
	Title              string            `json:"title" binding:"required,min=3,max=200"`
	Description        string            `json:"description" binding:"max=1000"`
	CategoryID         *uint             `json:"categoryId"`
	TimeLimitMinutes   int               `json:"timeLimitMinutes" binding:"min=0,max=300"`
	RetryCooldownHours int               `json:"retryCooldownHours" binding:"min=0,max=336"`
	RetryCooldownDays  int               `json:"retryCooldownDays" binding:"min=0,max=14"`
	Questions          []QuestionRequest `json:"questions"`
}

// TestInfo is the catalog projection of a published test.
type TestInfo struct {
	ID               uint      `json:"id"`
	Title            string    `json:"title"`
	Description      string    `json:"description"`
	CategoryID       *uint     `json:"categoryId,omitempty"`
	TimeLimitMinutes int       `json:"timeLimitMinutes"`
	QuestionCount    int       `json:"questionCount"`
	CooldownHours    int       `json:"cooldownHours"`
	CreatedAt        time.Time `json:"createdAt"`
}

func (s *TestService) CreateTest(creatorID uint, req TestCreateRequest) (*model.Test, error) {
	var created *model.Test
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		test := &model.Test{
			Title:              req.Title,
			Description:        req.Description,
			CreatedByID:        creatorID,
			CategoryID:         req.CategoryID,
			TimeLimitMinutes:   req.TimeLimitMinutes,
			RetryCooldownHours: req.RetryCooldownHours,
			RetryCooldownDays:  req.RetryCooldownDays,
		}
		if err := tx.Create(test).Error; err != nil {
			return err
		}

		if err := s.createQuestions(tx, test.ID, req.Questions); err != nil {
			return err
		}

		created = test
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.invalidateCatalogCache()
	return created, nil
}

func (s *TestService) createQuestions(tx *gorm.DB, testID uint, questions []QuestionRequest) error {
	for idx, q := range questions {
		question := &model.Question{
			TestID:     testID,
			Text:       q.Text,
			OrderIndex: idx + 1,
		}
		if err := tx.Create(question).Error; err != nil {
			return err
		}
		for oidx, o := range q.AnswerOptions {
			option := &model.AnswerOption{
				QuestionID: question.ID,
				Text:       o.Text,
				IsCorrect:  o.IsCorrect,
				OrderIndex: oidx + 1,
			}
			if err := tx.Create(option).Error; err != nil {
				return err
			}
		}
	}
	return nil
}

// UpdateTest replaces the scalar fields and the whole question set.
func (s *TestService) UpdateTest(creatorID, testID uint, req TestCreateRequest) (*model.Test, error) {
	var updated *model.Test
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		test, err := s.findOwnedTest(creatorID, testID)
		if err != nil {
			return err
		}

		test.Title = req.Title
		test.Description = req.Description
		test.CategoryID = req.CategoryID
		test.TimeLimitMinutes = req.TimeLimitMinutes
		test.RetryCooldownHours = req.RetryCooldownHours
		test.RetryCooldownDays = req.RetryCooldownDays
		if err := tx.Save(test).Error; err != nil {
			return err
		}

		if err := s.TestRepo.DeleteQuestionsByTest(tx, test.ID); err != nil {
			return err
		}
		if err := s.createQuestions(tx, test.ID, req.Questions); err != nil {
			return err
		}

		updated = test
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.invalidateCatalogCache()
	return updated, nil
}

// PublishTest toggles publication. Publishing requires at least one question
// and two options per question.
func (s *TestService) PublishTest(creatorID, testID uint, publish bool) error {
	test, err := s.findOwnedTest(creatorID, testID)
	if err != nil {
		return err
	}

	if publish {
		full, err := s.TestRepo.FindByID(test.ID)
		if err != nil {
			return err
		}
		if len(full.Questions) == 0 {
			return util.ErrTestNotPublishable
		}
		for _, q := range full.Questions {
			if len(q.AnswerOptions) < 2 {
				return util.ErrTestNotPublishable
			}
		}
	}

	test.IsPublished = publish
	if err := s.TestRepo.Update(test); err != nil {
		return err
	}
	s.invalidateCatalogCache()
	return nil
}

func (s *TestService) GetTestForCreator(creatorID, testID uint) (*model.Test, error) {
	if _, err := s.findOwnedTest(creatorID, testID); err != nil {
		return nil, err
	}
	return s.TestRepo.FindByID(testID)
}

func (s *TestService) ListByCreator(creatorID uint, page, limit int) ([]model.Test, int64, error) {
	return s.TestRepo.ListByCreator(creatorID, page, limit)
}

// OwnsTest verifies the creator-owns-test rule for exception management.
func (s *TestService) OwnsTest(creatorID, testID uint) error {
	_, err := s.findOwnedTest(creatorID, testID)
	return err
}

func (s *TestService) FindPublished(testID uint) (*model.Test, error) {
	test, err := s.TestRepo.FindPublishedByID(testID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrTestNotFound
		}
		return nil, err
	}
	return test, nil
}

// ListPublished serves the tester catalog. Unfiltered pages come from the
// redis cache when possible.
func (s *TestService) ListPublished(ctx context.Context, categoryID uint, search string, page, limit int) ([]TestInfo, int64, error) {
	cacheable := s.Redis != nil && search == ""
	cacheKey := fmt.Sprintf("catalog:published:%d:%d:%d", categoryID, page, limit)

	if cacheable {
		if raw, err := s.Redis.Get(ctx, cacheKey).Result(); err == nil {
			var cached struct {
				List  []TestInfo `json:"list"`
				Total int64      `json:"total"`
			}
			if json.Unmarshal([]byte(raw), &cached) == nil {
				return cached.List, cached.Total, nil
			}
		}
	}

	tests, total, err := s.TestRepo.ListPublished(categoryID, search, page, limit)
	if err != nil {
		return nil, 0, err
	}

	infos := make([]TestInfo, 0, len(tests))
	for _, t := range tests {
		count, err := s.TestRepo.CountQuestions(t.ID)
		if err != nil {
			return nil, 0, err
		}
		infos = append(infos, TestInfo{
			ID:               t.ID,
			Title:            t.Title,
			Description:      t.Description,
			CategoryID:       t.CategoryID,
			TimeLimitMinutes: t.TimeLimitMinutes,
			QuestionCount:    int(count),
			CooldownHours:    t.EffectiveCooldownHours(),
			CreatedAt:        t.CreatedAt,
		})
	}

	if cacheable {
		payload, _ := json.Marshal(struct {
			List  []TestInfo `json:"list"`
			Total int64      `json:"total"`
		}{List: infos, Total: total})
		ttl := time.Duration(s.Cfg.Attempts.CatalogCacheMinutes) * time.Minute
		if err := s.Redis.Set(ctx, cacheKey, payload, ttl).Err(); err != nil {
			logger.Log.Warn("failed to cache catalog page", zap.Error(err))
		}
	}

	return infos, total, nil
}

func (s *TestService) ListCategories() ([]model.Category, error) {
	return s.CategoryRepo.ListActive()
}

func (s *TestService) findOwnedTest(creatorID, testID uint) (*model.Test, error) {
	var test model.Test
	if err := s.DB.First(&test, testID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrTestNotFound
		}
		return nil, err
	}
	if test.CreatedByID != creatorID {
		return nil, util.ErrPermissionDenied
	}
	return &test, nil
}

func (s *TestService) invalidateCatalogCache() {
	if s.Redis == nil {
		return
	}
	ctx := context.Background()
	iter := s.Redis.Scan(ctx, 0, "catalog:published:*", 100).Iterator()
	for iter.Next(ctx) {
		s.Redis.Del(ctx, iter.Val())
	}
	if err := iter.Err(); err != nil {
		logger.Log.Warn("failed to invalidate catalog cache", zap.Error(err))
	}
}
