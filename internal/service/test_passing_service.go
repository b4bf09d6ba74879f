package service

import (
	"errors"
	"time"

	"assesspro_backend/internal/model"
	"assesspro_backend/internal/repository"
	"assesspro_backend/internal/util"
	"assesspro_backend/pkg/logger"
	"assesspro_backend/pkg/monitoring"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// TestPassingService owns the attempt lifecycle: start-or-resume, answer
// upsert, completion and result snapshots. Start is the only operation that
// consults the cooldown rules; everything after an attempt exists is pure
// lifecycle. All writes to one attempt serialize on a FOR UPDATE lock of its
// row, so concurrent submissions (or a submission racing a finish) cannot
// lose an update or write into a closed attempt.
type TestPassingService struct {
	TestRepo    *repository.TestRepository
	AttemptRepo *repository.AttemptRepository
	AnswerRepo  *repository.UserAnswerRepository
	UserRepo    *repository.UserRepository
	Cooldown    *CooldownService
	DB          *gorm.DB
}

func NewTestPassingService(
	testRepo *repository.TestRepository,
	attemptRepo *repository.AttemptRepository,
	answerRepo *repository.UserAnswerRepository,
	userRepo *repository.UserRepository,
	cooldown *CooldownService,
	db *gorm.DB,
) *TestPassingService {
	return &TestPassingService{
		TestRepo:    testRepo,
		AttemptRepo: attemptRepo,
		AnswerRepo:  answerRepo,
		UserRepo:    userRepo,
		Cooldown:    cooldown,
		DB:          db,
	}
}

type OptionForTaking struct {
	ID   uint   `json:"id"`
	Text string `json:"text"`
}

type QuestionForTaking struct {
	ID            uint              `json:"id"`
	Text          string            `json:"text"`
	OrderIndex    int               `json:"orderIndex"`
	AnswerOptions []OptionForTaking `json:"answerOptions"`
}

// TestTakingView is what a tester sees when an attempt starts or resumes.
// Options carry no correctness flags.
type TestTakingView struct {
	AttemptID        uint                `json:"attemptId"`
	TestID           uint                `json:"testId"`
	TestTitle        string              `json:"testTitle"`
	TimeLimitMinutes int                 `json:"timeLimitMinutes"`
	TotalQuestions   int                 `json:"totalQuestions"`
	Questions        []QuestionForTaking `json:"questions"`
}

type QuestionResult struct {
	QuestionID        uint   `json:"questionId"`
	QuestionText      string `json:"questionText"`
	ChosenOptionID    *uint  `json:"chosenOptionId,omitempty"`
	ChosenOptionText  string `json:"chosenOptionText"`
	CorrectOptionID   *uint  `json:"correctOptionId,omitempty"`
	CorrectOptionText string `json:"correctOptionText"`
	IsCorrect         bool   `json:"isCorrect"`
	PointsEarned      int    `json:"pointsEarned"`
}

// AttemptResults is the snapshot returned by Finish and GetResults. It is a
// partial snapshot while the attempt is still in progress and final once the
// attempt is closed.
type AttemptResults struct {
	AttemptID uint                `json:"attemptId"`
	TestID    uint                `json:"testId"`
	TestTitle string              `json:"testTitle"`
	Status    model.AttemptStatus `json:"status"`
	StartTime time.Time           `json:"startTime"`
	EndTime   *time.Time          `json:"endTime,omitempty"`
	AttemptAggregate
	QuestionResults []QuestionResult `json:"questionResults"`
}

type AttemptSummary struct {
	AttemptID        uint                `json:"attemptId"`
	TestID           uint                `json:"testId"`
	TestTitle        string              `json:"testTitle"`
	Status           model.AttemptStatus `json:"status"`
	StartTime        time.Time           `json:"startTime"`
	EndTime          *time.Time          `json:"endTime,omitempty"`
	TotalScore       int                 `json:"totalScore"`
	MaxPossibleScore int                 `json:"maxPossibleScore"`
}

type UserStatistics struct {
	TotalAttempts      int64   `json:"totalAttempts"`
	CompletedAttempts  int64   `json:"completedAttempts"`
	InProgressAttempts int64   `json:"inProgressAttempts"`
	AverageScore       float64 `json:"averageScore"`
}

// Start begins or resumes an attempt for the tester. It is the only entry
// point that consults the cooldown rules; a rejection surfaces as
// *util.CooldownError with the next available timestamp.
func (s *TestPassingService) Start(testID uint, username string) (*TestTakingView, error) {
	user, err := s.findUser(username)
	if err != nil {
		return nil, err
	}

	test, err := s.TestRepo.FindPublishedByID(testID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrTestNotFound
		}
		return nil, err
	}

	decision, err := s.Cooldown.CanStart(test, user.ID, time.Now())
	if err != nil {
		return nil, err
	}
	if !decision.Allowed {
		monitoring.CooldownRejections.Inc()
		return nil, &util.CooldownError{NextAvailableAt: decision.NextAvailableAt}
	}

	attempt, err := s.startOrResume(test, user.ID)
	if err != nil {
		return nil, err
	}

	view := &TestTakingView{
		AttemptID:        attempt.ID,
		TestID:           test.ID,
		TestTitle:        test.Title,
		TimeLimitMinutes: test.TimeLimitMinutes,
		TotalQuestions:   len(test.Questions),
		Questions:        make([]QuestionForTaking, 0, len(test.Questions)),
	}
	for _, q := range test.Questions {
		qv := QuestionForTaking{
			ID:            q.ID,
			Text:          q.Text,
			OrderIndex:    q.OrderIndex,
			AnswerOptions: make([]OptionForTaking, 0, len(q.AnswerOptions)),
		}
		for _, o := range q.AnswerOptions {
			qv.AnswerOptions = append(qv.AnswerOptions, OptionForTaking{ID: o.ID, Text: o.Text})
		}
		view.Questions = append(view.Questions, qv)
	}
	return view, nil
}

// startOrResume returns the tester's IN_PROGRESS attempt for the test,
// creating one only when none exists. The lookup and create run in one
// transaction so two racing starts resolve to a single attempt.
func (s *TestPassingService) startOrResume(test *model.Test, userID uint) (*model.TestAttempt, error) {
	var attempt *model.TestAttempt
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var existing model.TestAttempt
		err := tx.Where("test_id = ? AND user_id = ? AND status = ?",
			test.ID, userID, model.AttemptInProgress).First(&existing).Error
		if err == nil {
			attempt = &existing
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		attempt = &model.TestAttempt{
			TestID:     test.ID,
			UserID:     userID,
			StartTime:  time.Now(),
			Status:     model.AttemptInProgress,
			TotalScore: 0,
		}
		if err := tx.Create(attempt).Error; err != nil {
			return err
		}
		monitoring.AttemptsStarted.Inc()
		logger.Log.Info("attempt started",
			zap.Uint("testId", test.ID),
			zap.Uint("userId", userID),
			zap.Uint("attemptId", attempt.ID))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return attempt, nil
}

// SubmitAnswer upserts the tester's answer for one question and recomputes
// the attempt total from the answer rows. Resubmitting the same option is a
// no-op on the total.
func (s *TestPassingService) SubmitAnswer(attemptID uint, username string, questionID uint, chosenOptionID *uint) error {
	user, err := s.findUser(username)
	if err != nil {
		return err
	}

	return s.DB.Transaction(func(tx *gorm.DB) error {
		attempt, err := s.AttemptRepo.FindByIDForUpdate(tx, attemptID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return util.ErrAttemptNotFound
			}
			return err
		}
		if attempt.UserID != user.ID {
			return util.ErrPermissionDenied
		}
		if attempt.Status != model.AttemptInProgress {
			return util.ErrAttemptFinished
		}

		question, err := s.TestRepo.FindQuestionByID(questionID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return util.ErrQuestionNotFound
			}
			return err
		}
		if question.TestID != attempt.TestID {
			return util.ErrQuestionNotInTest
		}

		var chosen *model.AnswerOption
		if chosenOptionID != nil {
			chosen, err = s.TestRepo.FindOptionByID(*chosenOptionID)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return util.ErrAnswerOptionNotFound
				}
				return err
			}
			if chosen.QuestionID != question.ID {
				return util.ErrOptionNotInQuestion
			}
		}

		isCorrect, points := ScoreAnswer(chosen)

		answer, err := s.AnswerRepo.FindByAttemptAndQuestion(tx, attempt.ID, question.ID)
		if err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}
			answer = &model.UserAnswer{
				AttemptID:  attempt.ID,
				QuestionID: question.ID,
			}
		}
		answer.ChosenOptionID = chosenOptionID
		answer.IsCorrect = isCorrect
		answer.PointsEarned = points
		if err := tx.Save(answer).Error; err != nil {
			return err
		}

		total, err := s.AnswerRepo.SumPoints(tx, attempt.ID)
		if err != nil {
			return err
		}
		return tx.Model(&model.TestAttempt{}).
			Where("id = ?", attempt.ID).
			Update("total_score", total).Error
	})
}

// Finish moves an IN_PROGRESS attempt to COMPLETED and returns the final
// snapshot. A second Finish is rejected; the caller falls back to GetResults
// for the already-computed snapshot.
func (s *TestPassingService) Finish(attemptID uint, username string) (*AttemptResults, error) {
	user, err := s.findUser(username)
	if err != nil {
		return nil, err
	}

	if err := s.closeAttempt(attemptID, &user.ID, model.AttemptCompleted); err != nil {
		return nil, err
	}

	return s.GetResults(attemptID, username)
}

// CancelAttempt is the administrative terminal transition.
func (s *TestPassingService) CancelAttempt(attemptID uint) error {
	return s.closeAttempt(attemptID, nil, model.AttemptCancelled)
}

// closeAttempt applies a terminal transition under the same per-attempt lock
// the answer path uses. ownerID, when set, must match the attempt's tester.
func (s *TestPassingService) closeAttempt(attemptID uint, ownerID *uint, status model.AttemptStatus) error {
	return s.DB.Transaction(func(tx *gorm.DB) error {
		attempt, err := s.AttemptRepo.FindByIDForUpdate(tx, attemptID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return util.ErrAttemptNotFound
			}
			return err
		}
		if ownerID != nil && attempt.UserID != *ownerID {
			return util.ErrPermissionDenied
		}
		if attempt.Status != model.AttemptInProgress {
			return util.ErrAttemptFinished
		}

		now := time.Now()
		attempt.Status = status
		attempt.EndTime = &now
		if err := tx.Save(attempt).Error; err != nil {
			return err
		}

		monitoring.AttemptsFinished.WithLabelValues(string(status)).Inc()
		logger.Log.Info("attempt closed",
			zap.Uint("attemptId", attempt.ID),
			zap.String("status", string(status)))
		return nil
	})
}

// GetResults builds the results snapshot for an attempt in any state.
func (s *TestPassingService) GetResults(attemptID uint, username string) (*AttemptResults, error) {
	user, err := s.findUser(username)
	if err != nil {
		return nil, err
	}

	attempt, err := s.AttemptRepo.FindByID(attemptID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrAttemptNotFound
		}
		return nil, err
	}
	if attempt.UserID != user.ID {
		return nil, util.ErrPermissionDenied
	}

	test, err := s.TestRepo.FindByID(attempt.TestID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrTestNotFound
		}
		return nil, err
	}

	answers, err := s.AnswerRepo.ListByAttempt(attempt.ID)
	if err != nil {
		return nil, err
	}

	results := &AttemptResults{
		AttemptID:        attempt.ID,
		TestID:           test.ID,
		TestTitle:        test.Title,
		Status:           attempt.Status,
		StartTime:        attempt.StartTime,
		EndTime:          attempt.EndTime,
		AttemptAggregate: AggregateAnswers(len(test.Questions), answers),
		QuestionResults:  make([]QuestionResult, 0, len(answers)),
	}
	// The persisted attempt total is authoritative; the aggregate recomputes
	// the same sum from the rows.
	results.TotalScore = attempt.TotalScore
	if results.MaxPossibleScore > 0 {
		results.Percentage = float64(results.TotalScore) / float64(results.MaxPossibleScore) * 100
	}

	questionsByID := make(map[uint]*model.Question, len(test.Questions))
	optionsByID := make(map[uint]*model.AnswerOption)
	for i := range test.Questions {
		q := &test.Questions[i]
		questionsByID[q.ID] = q
		for j := range q.AnswerOptions {
			optionsByID[q.AnswerOptions[j].ID] = &q.AnswerOptions[j]
		}
	}

	for _, a := range answers {
		qr := QuestionResult{
			QuestionID:       a.QuestionID,
			ChosenOptionID:   a.ChosenOptionID,
			ChosenOptionText: "No answer provided",
			IsCorrect:        a.IsCorrect,
			PointsEarned:     a.PointsEarned,
		}
		if q, ok := questionsByID[a.QuestionID]; ok {
			qr.QuestionText = q.Text
			for i := range q.AnswerOptions {
				if q.AnswerOptions[i].IsCorrect {
					qr.CorrectOptionID = &q.AnswerOptions[i].ID
					qr.CorrectOptionText = q.AnswerOptions[i].Text
					break
				}
			}
		}
		if a.ChosenOptionID != nil {
			if o, ok := optionsByID[*a.ChosenOptionID]; ok {
				qr.ChosenOptionText = o.Text
			}
		}
		results.QuestionResults = append(results.QuestionResults, qr)
	}

	return results, nil
}

// GetHistory lists the tester's attempts, most recent first.
func (s *TestPassingService) GetHistory(username string, page, limit int) ([]AttemptSummary, int64, error) {
	user, err := s.findUser(username)
	if err != nil {
		return nil, 0, err
	}

	attempts, total, err := s.AttemptRepo.HistoryByUser(user.ID, page, limit)
	if err != nil {
		return nil, 0, err
	}

	testIDs := make([]uint, 0, len(attempts))
	seen := make(map[uint]bool, len(attempts))
	for _, a := range attempts {
		if !seen[a.TestID] {
			seen[a.TestID] = true
			testIDs = append(testIDs, a.TestID)
		}
	}

	titles := make(map[uint]string, len(testIDs))
	questionCounts := make(map[uint]int, len(testIDs))
	if len(testIDs) > 0 {
		var tests []model.Test
		if err := s.DB.Where("id IN ?", testIDs).Find(&tests).Error; err != nil {
			return nil, 0, err
		}
		for _, t := range tests {
			titles[t.ID] = t.Title
			count, err := s.TestRepo.CountQuestions(t.ID)
			if err != nil {
				return nil, 0, err
			}
			questionCounts[t.ID] = int(count)
		}
	}

	summaries := make([]AttemptSummary, 0, len(attempts))
	for _, a := range attempts {
		summaries = append(summaries, AttemptSummary{
			AttemptID:        a.ID,
			TestID:           a.TestID,
			TestTitle:        titles[a.TestID],
			Status:           a.Status,
			StartTime:        a.StartTime,
			EndTime:          a.EndTime,
			TotalScore:       a.TotalScore,
			MaxPossibleScore: questionCounts[a.TestID],
		})
	}
	return summaries, total, nil
}

// GetUserStatistics returns the tester's attempt rollup for the dashboard.
func (s *TestPassingService) GetUserStatistics(username string) (*UserStatistics, error) {
	user, err := s.findUser(username)
	if err != nil {
		return nil, err
	}

	stats := &UserStatistics{}
	if stats.TotalAttempts, err = s.AttemptRepo.CountByUser(user.ID); err != nil {
		return nil, err
	}
	if stats.CompletedAttempts, err = s.AttemptRepo.CountByUserAndStatus(user.ID, model.AttemptCompleted); err != nil {
		return nil, err
	}
	if stats.InProgressAttempts, err = s.AttemptRepo.CountByUserAndStatus(user.ID, model.AttemptInProgress); err != nil {
		return nil, err
	}
	if stats.AverageScore, err = s.AttemptRepo.AverageScoreByUser(user.ID); err != nil {
		return nil, err
	}
	return stats, nil
}

// ProcessExpiredAttempts closes IN_PROGRESS attempts whose test time limit
// has elapsed, using the same locked transition as Finish. Triggered by the
// background sweeper.
func (s *TestPassingService) ProcessExpiredAttempts(now time.Time) error {
	candidates, err := s.AttemptRepo.FindExpiredCandidates(now)
	if err != nil {
		return err
	}
	for _, c := range candidates {
		deadline := c.StartTime.Add(time.Duration(c.TimeLimitMinutes) * time.Minute)
		if now.Before(deadline) {
			continue
		}
		if err := s.closeAttempt(c.AttemptID, nil, model.AttemptTimeout); err != nil {
			// Losing the race against a finish is fine, the attempt is closed.
			if errors.Is(err, util.ErrAttemptFinished) {
				continue
			}
			logger.Log.Error("failed to expire attempt",
				zap.Uint("attemptId", c.AttemptID), zap.Error(err))
		}
	}
	return nil
}

func (s *TestPassingService) findUser(username string) (*model.User, error) {
	user, err := s.UserRepo.FindByUsername(username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}
