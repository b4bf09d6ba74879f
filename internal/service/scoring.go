package service

import "assesspro_backend/internal/model"

// Scoring is pure computation over recorded answers and the answer key.
// Persistence of the results is the caller's job.

// ScoreAnswer grades one chosen option. A nil option is an explicit skip and
// scores as incorrect, zero points.
func ScoreAnswer(chosen *model.AnswerOption) (isCorrect bool, points int) {
	if chosen == nil || !chosen.IsCorrect {
		return false, 0
	}
	return true, 1
}

// AttemptAggregate is the rollup over one attempt's recorded answers.
type AttemptAggregate struct {
	TotalScore        int     `json:"totalScore"`
	MaxPossibleScore  int     `json:"maxPossibleScore"`
	TotalQuestions    int     `json:"totalQuestions"`
	AnsweredQuestions int     `json:"answeredQuestions"`
	CorrectAnswers    int     `json:"correctAnswers"`
	Percentage        float64 `json:"percentage"`
}

// AggregateAnswers computes the rollup for an attempt. Every question is
// worth one point, so the maximum equals the question count. A skip row
// (nil chosen option) counts toward answered but not toward correct.
func AggregateAnswers(questionCount int, answers []model.UserAnswer) AttemptAggregate {
	agg := AttemptAggregate{
		MaxPossibleScore:  questionCount,
		TotalQuestions:    questionCount,
		AnsweredQuestions: len(answers),
	}
	for _, a := range answers {
		agg.TotalScore += a.PointsEarned
		if a.IsCorrect {
			agg.CorrectAnswers++
		}
	}
	if agg.MaxPossibleScore > 0 {
		agg.Percentage = float64(agg.TotalScore) / float64(agg.MaxPossibleScore) * 100
	}
	return agg
}
