package service

import (
	"fmt"
	"testing"
	"time"

	"assesspro_backend/internal/config"
	"assesspro_backend/internal/model"
	"assesspro_backend/internal/repository"
	"assesspro_backend/pkg/logger"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func init() {
	logger.Log = zap.NewNop()
}

// newTestDB opens a per-test in-memory database. The shared-cache DSN keeps
// every pooled connection pointed at the same database.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&model.User{},
		&model.Category{},
		&model.Test{},
		&model.Question{},
		&model.AnswerOption{},
		&model.TestAttempt{},
		&model.UserAnswer{},
		&model.RetryCooldownException{},
	))
	return db
}

func testConfig() *config.Config {
	return &config.Config{
		JWT: config.JWTConfig{
			Secret:     "unit-test-secret-key-0123456789abcdef",
			ExpireTime: time.Hour,
		},
		Attempts: config.AttemptsConfig{
			ExpirySweepSeconds:  60,
			CatalogCacheMinutes: 10,
		},
	}
}

type fixture struct {
	db         *gorm.DB
	users      *repository.UserRepository
	tests      *repository.TestRepository
	categories *repository.CategoryRepository
	attempts   *repository.AttemptRepository
	answers    *repository.UserAnswerRepository
	exceptions *repository.CooldownExceptionRepository

	auth        *AuthService
	cooldown    *CooldownService
	passing     *TestPassingService
	testService *TestService
	admin       *AdminService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := newTestDB(t)

	f := &fixture{
		db:         db,
		users:      repository.NewUserRepository(db),
		tests:      repository.NewTestRepository(db),
		categories: repository.NewCategoryRepository(db),
		attempts:   repository.NewAttemptRepository(db),
		answers:    repository.NewUserAnswerRepository(db),
		exceptions: repository.NewCooldownExceptionRepository(db),
	}

	cfg := testConfig()
	f.auth = NewAuthService(f.users, cfg)
	f.cooldown = NewCooldownService(f.attempts, f.exceptions)
	f.passing = NewTestPassingService(f.tests, f.attempts, f.answers, f.users, f.cooldown, db)
	f.testService = NewTestService(f.tests, f.categories, nil, cfg, db)
	f.admin = NewAdminService(f.users, f.attempts, f.passing)
	return f
}

func (f *fixture) seedUser(t *testing.T, username string, role model.UserRole) *model.User {
	t.Helper()
	user := &model.User{
		Username:  username,
		Email:     username + "@example.com",
		Password:  "not-a-real-hash",
		Role:      role,
		LastLogin: time.Now(),
	}
	require.NoError(t, f.db.Create(user).Error)
	return user
}

// seedTest creates a published test with questionCount questions of three
// options each; the first option of every question is the correct one.
func (f *fixture) seedTest(t *testing.T, creatorID uint, cooldownHours, questionCount int) *model.Test {
	t.Helper()

	test := &model.Test{
		Title:              fmt.Sprintf("Test %s", t.Name()),
		CreatedByID:        creatorID,
		IsPublished:        true,
		RetryCooldownHours: cooldownHours,
	}
	for i := 1; i <= questionCount; i++ {
		test.Questions = append(test.Questions, model.Question{
			Text:       fmt.Sprintf("Question %d", i),
			OrderIndex: i,
			AnswerOptions: []model.AnswerOption{
				{Text: "Right", IsCorrect: true, OrderIndex: 1},
				{Text: "Wrong", OrderIndex: 2},
				{Text: "Also wrong", OrderIndex: 3},
			},
		})
	}
	require.NoError(t, f.db.Create(test).Error)
	return test
}

func (f *fixture) correctOption(q *model.Question) *uint {
	return &q.AnswerOptions[0].ID
}

func (f *fixture) wrongOption(q *model.Question) *uint {
	return &q.AnswerOptions[1].ID
}

// seedCompletedAttempt records a finished attempt with the given end time,
// the reference point for cooldown arithmetic.
func (f *fixture) seedCompletedAttempt(t *testing.T, testID, userID uint, start time.Time, end *time.Time) *model.TestAttempt {
	t.Helper()
	attempt := &model.TestAttempt{
		TestID:    testID,
		UserID:    userID,
		StartTime: start,
		EndTime:   end,
		Status:    model.AttemptCompleted,
	}
	require.NoError(t, f.db.Create(attempt).Error)
	return attempt
}
