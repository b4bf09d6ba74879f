package model

import "time"

// RetryCooldownException is a creator-granted override that lets one tester
// bypass a test's retry cooldown. At most one row exists per (test, user);
// creating a new one supersedes the previous.
// swagger:model RetryCooldownException
type RetryCooldownException struct {
	BaseModel

	TestID      uint       `gorm:"uniqueIndex:uk_cooldown_exception_test_user;type:bigint unsigned;not null" json:"testId"`
	UserID      uint       `gorm:"uniqueIndex:uk_cooldown_exception_test_user;type:bigint unsigned;not null" json:"userId"`
	CreatedByID uint       `gorm:"type:bigint unsigned;not null" json:"createdById"`
	IsPermanent bool       `gorm:"default:false" json:"isPermanent"`
	ExpiresAt   *time.Time `json:"expiresAt,omitempty"`
	Reason      string     `gorm:"type:text" json:"reason"`
}

func (RetryCooldownException) TableName() string {
	return "retry_cooldown_exceptions"
}

// ActiveAt reports whether the exception still bypasses the cooldown at now.
func (e *RetryCooldownException) ActiveAt(now time.Time) bool {
	if e.IsPermanent {
		return true
	}
	return e.ExpiresAt != nil && now.Before(*e.ExpiresAt)
}
