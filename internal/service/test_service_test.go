package service

import (
	"context"
	"testing"

	"assesspro_backend/internal/model"
	"assesspro_backend/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func questionSet(n int) []QuestionRequest {
	questions := make([]QuestionRequest, 0, n)
	for i := 0; i < n; i++ {
		questions = append(questions, QuestionRequest{
			Text: "Question",
			AnswerOptions: []AnswerOptionRequest{
				{Text: "Right", IsCorrect: true},
				{Text: "Wrong"},
			},
		})
	}
	return questions
}

func TestCreateTest(t *testing.T) {
	f := newFixture(t)
	creator := f.seedUser(t, "creator", model.Creator)

	created, err := f.testService.CreateTest(creator.ID, TestCreateRequest{
		Title:             "Go basics",
		RetryCooldownDays: 1,
		Questions:         questionSet(2),
	})
	require.NoError(t, err)

	full, err := f.tests.FindByID(created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Go basics", full.Title)
	assert.False(t, full.IsPublished)
	assert.Equal(t, 24, full.EffectiveCooldownHours())
	require.Len(t, full.Questions, 2)
	assert.Equal(t, 1, full.Questions[0].OrderIndex)
	assert.Equal(t, 2, full.Questions[1].OrderIndex)
	require.Len(t, full.Questions[0].AnswerOptions, 2)
}

func TestUpdateTest_ReplacesQuestionSet(t *testing.T) {
	f := newFixture(t)
	creator := f.seedUser(t, "creator", model.Creator)

	created, err := f.testService.CreateTest(creator.ID, TestCreateRequest{
		Title:     "Before",
		Questions: questionSet(3),
	})
	require.NoError(t, err)

	_, err = f.testService.UpdateTest(creator.ID, created.ID, TestCreateRequest{
		Title:     "After",
		Questions: questionSet(1),
	})
	require.NoError(t, err)

	full, err := f.tests.FindByID(created.ID)
	require.NoError(t, err)
	assert.Equal(t, "After", full.Title)
	assert.Len(t, full.Questions, 1)

	count, err := f.tests.CountQuestions(created.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestUpdateTest_RequiresOwnership(t *testing.T) {
	f := newFixture(t)
	creator := f.seedUser(t, "creator", model.Creator)
	intruder := f.seedUser(t, "intruder", model.Creator)

	created, err := f.testService.CreateTest(creator.ID, TestCreateRequest{
		Title:     "Mine",
		Questions: questionSet(1),
	})
	require.NoError(t, err)

	_, err = f.testService.UpdateTest(intruder.ID, created.ID, TestCreateRequest{Title: "Stolen"})
	assert.ErrorIs(t, err, util.ErrPermissionDenied)

	assert.ErrorIs(t, f.testService.OwnsTest(intruder.ID, created.ID), util.ErrPermissionDenied)
	assert.NoError(t, f.testService.OwnsTest(creator.ID, created.ID))
}

func TestPublishTest(t *testing.T) {
	f := newFixture(t)
	creator := f.seedUser(t, "creator", model.Creator)

	t.Run("rejects a test without questions", func(t *testing.T) {
		created, err := f.testService.CreateTest(creator.ID, TestCreateRequest{Title: "Empty test"})
		require.NoError(t, err)
		assert.ErrorIs(t, f.testService.PublishTest(creator.ID, created.ID, true), util.ErrTestNotPublishable)
	})

	t.Run("rejects a question with one option", func(t *testing.T) {
		created, err := f.testService.CreateTest(creator.ID, TestCreateRequest{
			Title: "Thin test",
			Questions: []QuestionRequest{{
				Text:          "Only one way",
				AnswerOptions: []AnswerOptionRequest{{Text: "Right", IsCorrect: true}},
			}},
		})
		require.NoError(t, err)
		assert.ErrorIs(t, f.testService.PublishTest(creator.ID, created.ID, true), util.ErrTestNotPublishable)
	})

	t.Run("publishes and unpublishes a valid test", func(t *testing.T) {
		created, err := f.testService.CreateTest(creator.ID, TestCreateRequest{
			Title:     "Valid test",
			Questions: questionSet(1),
		})
		require.NoError(t, err)

		require.NoError(t, f.testService.PublishTest(creator.ID, created.ID, true))
		published, err := f.testService.FindPublished(created.ID)
		require.NoError(t, err)
		assert.True(t, published.IsPublished)

		require.NoError(t, f.testService.PublishTest(creator.ID, created.ID, false))
		_, err = f.testService.FindPublished(created.ID)
		assert.ErrorIs(t, err, util.ErrTestNotFound)
	})
}

func TestListPublished(t *testing.T) {
	f := newFixture(t)
	creator := f.seedUser(t, "creator", model.Creator)

	f.seedTest(t, creator.ID, 48, 2)
	draft, err := f.testService.CreateTest(creator.ID, TestCreateRequest{
		Title:     "Unlisted draft",
		Questions: questionSet(1),
	})
	require.NoError(t, err)

	infos, total, err := f.testService.ListPublished(context.Background(), 0, "", 1, 20)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, infos, 1)
	assert.NotEqual(t, draft.ID, infos[0].ID)
	assert.Equal(t, 2, infos[0].QuestionCount)
	assert.Equal(t, 48, infos[0].CooldownHours)
}
