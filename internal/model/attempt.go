package model

import "time"

type AttemptStatus string

const (
	AttemptInProgress AttemptStatus = "IN_PROGRESS"
	AttemptCompleted  AttemptStatus = "COMPLETED"
	AttemptTimeout    AttemptStatus = "TIMEOUT"
	AttemptCancelled  AttemptStatus = "CANCELLED"
)

// Finished reports whether the status is terminal. A finished attempt accepts
// no further answers or transitions.
func (s AttemptStatus) Finished() bool {
	return s == AttemptCompleted || s == AttemptTimeout || s == AttemptCancelled
}

// swagger:model TestAttempt
type TestAttempt struct {
	BaseModel

	TestID     uint          `gorm:"index;type:bigint unsigned;not null" json:"testId"`
	UserID     uint          `gorm:"index;type:bigint unsigned;not null" json:"userId"`
	StartTime  time.Time     `json:"startTime"`
	EndTime    *time.Time    `json:"endTime,omitempty"`
	Status     AttemptStatus `gorm:"size:20;index;default:'IN_PROGRESS'" json:"status"`
	TotalScore int           `gorm:"default:0" json:"totalScore"`
}

func (TestAttempt) TableName() string {
	return "test_attempts"
}

// UserAnswer records the option a tester chose for one question within one
// attempt. At most one row exists per (attempt, question); a resubmission
// overwrites it. A nil ChosenOptionID is an explicit skip.
// swagger:model UserAnswer
type UserAnswer struct {
	BaseModel

	AttemptID      uint  `gorm:"uniqueIndex:uk_answer_attempt_question;type:bigint unsigned;not null" json:"attemptId"`
	QuestionID     uint  `gorm:"uniqueIndex:uk_answer_attempt_question;type:bigint unsigned;not null" json:"questionId"`
	ChosenOptionID *uint `gorm:"type:bigint unsigned" json:"chosenOptionId,omitempty"`
	IsCorrect      bool  `gorm:"default:false" json:"isCorrect"`
	PointsEarned   int   `gorm:"default:0" json:"pointsEarned"`
}

func (UserAnswer) TableName() string {
	return "user_answers"
}
