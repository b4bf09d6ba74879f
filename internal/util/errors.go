package util

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrUserNotFound         = errors.New("user not found")
	ErrUsernameTaken        = errors.New("username already registered")
	ErrEmailRegistered      = errors.New("email already registered")
	ErrInvalidCredentials   = errors.New("invalid credentials")
	ErrTestNotFound         = errors.New("test not found or not published")
	ErrAttemptNotFound      = errors.New("attempt not found")
	ErrQuestionNotFound     = errors.New("question not found")
	ErrAnswerOptionNotFound = errors.New("answer option not found")
	ErrPermissionDenied     = errors.New("permission denied")
	ErrAttemptFinished      = errors.New("attempt already finished")
	ErrQuestionNotInTest    = errors.New("question does not belong to this test")
	ErrOptionNotInQuestion  = errors.New("answer option does not belong to this question")
	ErrTestNotPublishable   = errors.New("test cannot be published")
)

// CooldownError rejects a start while the retry cooldown is still running.
// NextAvailableAt lets the caller render a countdown.
type CooldownError struct {
	NextAvailableAt time.Time
}

func (e *CooldownError) Error() string {
	return fmt.Sprintf("retry cooldown active, next attempt available at %s",
		e.NextAvailableAt.Format("02.01.2006 15:04"))
}
