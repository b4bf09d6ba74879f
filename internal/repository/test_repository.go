package repository

import (
	"assesspro_backend/internal/model"

	"gorm.io/gorm"
)

type TestRepository struct {
	DB *gorm.DB
}

func NewTestRepository(db *gorm.DB) *TestRepository {
	return &TestRepository{DB: db}
}

func (r *TestRepository) Create(test *model.Test) error {
	return r.DB.Create(test).Error
}

func (r *TestRepository) Update(test *model.Test) error {
	return r.DB.Save(test).Error
}

func (r *TestRepository) FindByID(id uint) (*model.Test, error) {
	var t model.Test
	err := r.DB.
		Preload("Questions", func(db *gorm.DB) *gorm.DB {
			return db.Order("questions.order_index ASC")
		}).
		Preload("Questions.AnswerOptions", func(db *gorm.DB) *gorm.DB {
			return db.Order("answer_options.order_index ASC")
		}).
		First(&t, id).Error
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *TestRepository) FindPublishedByID(id uint) (*model.Test, error) {
	var t model.Test
	err := r.DB.
		Preload("Questions", func(db *gorm.DB) *gorm.DB {
			return db.Order("questions.order_index ASC")
		}).
		Preload("Questions.AnswerOptions", func(db *gorm.DB) *gorm.DB {
			return db.Order("answer_options.order_index ASC")
		}).
		Where("is_published = ?", true).
		First(&t, id).Error
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *TestRepository) ListPublished(categoryID uint, search string, page, limit int) ([]model.Test, int64, error) {
	query := r.DB.Model(&model.Test{}).Where("is_published = ?", true)
	if categoryID > 0 {
		query = query.Where("category_id = ?", categoryID)
	}
	if search != "" {
		query = query.Where("title LIKE ?", "%"+search+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var tests []model.Test
	err := query.Order("created_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&tests).Error
	return tests, total, err
}

func (r *TestRepository) ListByCreator(creatorID uint, page, limit int) ([]model.Test, int64, error) {
	query := r.DB.Model(&model.Test{}).Where("created_by_id = ?", creatorID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var tests []model.Test
	err := query.Order("created_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&tests).Error
	return tests, total, err
}

func (r *TestRepository) FindQuestionByID(id uint) (*model.Question, error) {
	var q model.Question
	if err := r.DB.First(&q, id).Error; err != nil {
		return nil, err
	}
	return &q, nil
}

func (r *TestRepository) FindOptionByID(id uint) (*model.AnswerOption, error) {
	var o model.AnswerOption
	if err := r.DB.First(&o, id).Error; err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *TestRepository) CountQuestions(testID uint) (int64, error) {
	var count int64
	err := r.DB.Model(&model.Question{}).Where("test_id = ?", testID).Count(&count).Error
	return count, err
}

func (r *TestRepository) DeleteQuestionsByTest(tx *gorm.DB, testID uint) error {
	var questionIDs []uint
	if err := tx.Model(&model.Question{}).Where("test_id = ?", testID).Pluck("id", &questionIDs).Error; err != nil {
		return err
	}
	if len(questionIDs) > 0 {
		if err := tx.Where("question_id IN ?", questionIDs).Delete(&model.AnswerOption{}).Error; err != nil {
			return err
		}
	}
	return tx.Where("test_id = ?", testID).Delete(&model.Question{}).Error
}
