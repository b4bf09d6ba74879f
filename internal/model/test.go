package model

// swagger:model Test
type Test struct {
	BaseModel

	Title            string `gorm:"size:200;not null" json:"title"`
	Description      string `gorm:"type:text" json:"description"`
	CreatedByID      uint   `gorm:"index;type:bigint unsigned;not null" json:"createdById"`
	CategoryID       *uint  `gorm:"index;type:bigint unsigned" json:"categoryId,omitempty"`
	IsPublished      bool   `gorm:"default:false" json:"isPublished"`
	TimeLimitMinutes int    `gorm:"default:0" json:"timeLimitMinutes"`

	// Retry cooldown policy. Days take precedence over hours when both are set.
	RetryCooldownHours int `gorm:"default:0" json:"retryCooldownHours"`
	RetryCooldownDays  int `gorm:"default:0" json:"retryCooldownDays"`

	Questions []Question `gorm:"foreignKey:TestID" json:"questions,omitempty"`
}

func (Test) TableName() string {
	return "tests"
}

func (t *Test) EffectiveCooldownHours() int {
	if t.RetryCooldownDays > 0 {
		return t.RetryCooldownDays * 24
	}
	return t.RetryCooldownHours
}

func (t *Test) HasRetryCooldown() bool {
	return t.EffectiveCooldownHours() > 0
}

// swagger:model Question
type Question struct {
	BaseModel

	TestID        uint           `gorm:"index;type:bigint unsigned;not null" json:"testId"`
	Text          string         `gorm:"type:text;not null" json:"text"`
	OrderIndex    int            `gorm:"default:0" json:"orderIndex"`
	AnswerOptions []AnswerOption `gorm:"foreignKey:QuestionID" json:"answerOptions,omitempty"`
}

func (Question) TableName() string {
	return "questions"
}

// swagger:model AnswerOption
type AnswerOption struct {
	BaseModel

	QuestionID uint   `gorm:"index;type:bigint unsigned;not null" json:"questionId"`
	Text       string `gorm:"type:text;not null" json:"text"`
	IsCorrect  bool   `gorm:"default:false" json:"-"`
	OrderIndex int    `gorm:"default:0" json:"orderIndex"`
}

func (AnswerOption) TableName() string {
	return "answer_options"
}

// swagger:model Category
type Category struct {
	BaseModel

	Name        string `gorm:"size:100;unique;not null" json:"name"`
	Description string `gorm:"type:text" json:"description"`
	IsActive    bool   `gorm:"default:true" json:"isActive"`
}

func (Category) TableName() string {
	return "categories"
}
