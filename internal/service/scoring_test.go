package service

import (
	"testing"

	"assesspro_backend/internal/model"

	"github.com/stretchr/testify/assert"
)

func TestScoreAnswer(t *testing.T) {
	tests := []struct {
		name       string
		chosen     *model.AnswerOption
		wantRight  bool
		wantPoints int
	}{
		{"skip scores zero", nil, false, 0},
		{"wrong option scores zero", &model.AnswerOption{IsCorrect: false}, false, 0},
		{"correct option scores one", &model.AnswerOption{IsCorrect: true}, true, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			isCorrect, points := ScoreAnswer(tt.chosen)
			assert.Equal(t, tt.wantRight, isCorrect)
			assert.Equal(t, tt.wantPoints, points)
		})
	}
}

func TestAggregateAnswers(t *testing.T) {
	t.Run("no answers", func(t *testing.T) {
		agg := AggregateAnswers(5, nil)
		assert.Equal(t, 5, agg.MaxPossibleScore)
		assert.Equal(t, 5, agg.TotalQuestions)
		assert.Equal(t, 0, agg.AnsweredQuestions)
		assert.Equal(t, 0, agg.TotalScore)
		assert.Equal(t, 0.0, agg.Percentage)
	})

	t.Run("mixed answers with a skip", func(t *testing.T) {
		one := uint(1)
		answers := []model.UserAnswer{
			{QuestionID: 1, ChosenOptionID: &one, IsCorrect: true, PointsEarned: 1},
			{QuestionID: 2, ChosenOptionID: &one, IsCorrect: true, PointsEarned: 1},
			{QuestionID: 3, ChosenOptionID: nil, IsCorrect: false, PointsEarned: 0},
		}
		agg := AggregateAnswers(3, answers)
		assert.Equal(t, 2, agg.TotalScore)
		assert.Equal(t, 3, agg.MaxPossibleScore)
		// A recorded skip still counts as answered.
		assert.Equal(t, 3, agg.AnsweredQuestions)
		assert.Equal(t, 2, agg.CorrectAnswers)
		assert.InDelta(t, 66.67, agg.Percentage, 0.01)
	})

	t.Run("all correct is a hundred percent", func(t *testing.T) {
		answers := []model.UserAnswer{
			{QuestionID: 1, IsCorrect: true, PointsEarned: 1},
			{QuestionID: 2, IsCorrect: true, PointsEarned: 1},
		}
		agg := AggregateAnswers(2, answers)
		assert.Equal(t, 100.0, agg.Percentage)
	})

	t.Run("zero questions never divides", func(t *testing.T) {
		agg := AggregateAnswers(0, nil)
		assert.Equal(t, 0.0, agg.Percentage)
	})
}
