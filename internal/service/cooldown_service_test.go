package service

import (
	"testing"
	"time"

	"assesspro_backend/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanStart_NoCooldownConfigured(t *testing.T) {
	f := newFixture(t)
	creator := f.seedUser(t, "creator", model.Creator)
	tester := f.seedUser(t, "tester", model.Tester)
	test := f.seedTest(t, creator.ID, 0, 1)

	now := time.Now()
	f.seedCompletedAttempt(t, test.ID, tester.ID, now.Add(-time.Minute), &now)

	decision, err := f.cooldown.CanStart(test, tester.ID, now)
	require.NoError(t, err)
	assert.True(t, decision.Allowed)
	assert.Equal(t, ReasonNoCooldown, decision.Reason)
}

func TestCanStart_FirstAttempt(t *testing.T) {
	f := newFixture(t)
	creator := f.seedUser(t, "creator", model.Creator)
	tester := f.seedUser(t, "tester", model.Tester)
	test := f.seedTest(t, creator.ID, 24, 1)

	decision, err := f.cooldown.CanStart(test, tester.ID, time.Now())
	require.NoError(t, err)
	assert.True(t, decision.Allowed)
	assert.Equal(t, ReasonFirstAttempt, decision.Reason)
}

func TestCanStart_CooldownBoundary(t *testing.T) {
	f := newFixture(t)
	creator := f.seedUser(t, "creator", model.Creator)
	tester := f.seedUser(t, "tester", model.Tester)
	test := f.seedTest(t, creator.ID, 24, 1)

	end := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	f.seedCompletedAttempt(t, test.ID, tester.ID, end.Add(-30*time.Minute), &end)

	t.Run("one minute before the boundary", func(t *testing.T) {
		decision, err := f.cooldown.CanStart(test, tester.ID, end.Add(24*time.Hour-time.Minute))
		require.NoError(t, err)
		assert.False(t, decision.Allowed)
		assert.Equal(t, ReasonCooldownActive, decision.Reason)
		assert.True(t, decision.NextAvailableAt.Equal(end.Add(24*time.Hour)))
	})

	t.Run("exactly at the boundary", func(t *testing.T) {
		decision, err := f.cooldown.CanStart(test, tester.ID, end.Add(24*time.Hour))
		require.NoError(t, err)
		assert.True(t, decision.Allowed)
		assert.Equal(t, ReasonCooldownPassed, decision.Reason)
	})
}

func TestCanStart_FortyEightHourWindow(t *testing.T) {
	f := newFixture(t)
	creator := f.seedUser(t, "creator", model.Creator)
	tester := f.seedUser(t, "tester", model.Tester)
	test := f.seedTest(t, creator.ID, 48, 1)

	end := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	f.seedCompletedAttempt(t, test.ID, tester.ID, end.Add(-time.Hour), &end)

	decision, err := f.cooldown.CanStart(test, tester.ID, end.Add(36*time.Hour))
	require.NoError(t, err)
	assert.False(t, decision.Allowed)
	assert.True(t, decision.NextAvailableAt.Equal(time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC)))
}

func TestCanStart_FallsBackToStartTime(t *testing.T) {
	f := newFixture(t)
	creator := f.seedUser(t, "creator", model.Creator)
	tester := f.seedUser(t, "tester", model.Tester)
	test := f.seedTest(t, creator.ID, 24, 1)

	start := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	f.seedCompletedAttempt(t, test.ID, tester.ID, start, nil)

	decision, err := f.cooldown.CanStart(test, tester.ID, start.Add(time.Hour))
	require.NoError(t, err)
	assert.False(t, decision.Allowed)
	assert.True(t, decision.NextAvailableAt.Equal(start.Add(24*time.Hour)))
}

func TestCanStart_LatestCompletedWins(t *testing.T) {
	f := newFixture(t)
	creator := f.seedUser(t, "creator", model.Creator)
	tester := f.seedUser(t, "tester", model.Tester)
	test := f.seedTest(t, creator.ID, 24, 1)

	early := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	late := early.Add(30 * time.Hour)
	f.seedCompletedAttempt(t, test.ID, tester.ID, early.Add(-time.Hour), &early)
	f.seedCompletedAttempt(t, test.ID, tester.ID, late.Add(-time.Hour), &late)

	decision, err := f.cooldown.CanStart(test, tester.ID, late.Add(time.Hour))
	require.NoError(t, err)
	assert.False(t, decision.Allowed)
	assert.True(t, decision.NextAvailableAt.Equal(late.Add(24*time.Hour)))
}

func TestCanStart_IgnoresNonCompletedAttempts(t *testing.T) {
	f := newFixture(t)
	creator := f.seedUser(t, "creator", model.Creator)
	tester := f.seedUser(t, "tester", model.Tester)
	test := f.seedTest(t, creator.ID, 24, 1)

	now := time.Now()
	for _, status := range []model.AttemptStatus{model.AttemptCancelled, model.AttemptTimeout} {
		end := now.Add(-time.Minute)
		require.NoError(t, f.db.Create(&model.TestAttempt{
			TestID:    test.ID,
			UserID:    tester.ID,
			StartTime: now.Add(-time.Hour),
			EndTime:   &end,
			Status:    status,
		}).Error)
	}

	decision, err := f.cooldown.CanStart(test, tester.ID, now)
	require.NoError(t, err)
	assert.True(t, decision.Allowed)
	assert.Equal(t, ReasonFirstAttempt, decision.Reason)
}

func TestCanStart_DaysTakePrecedenceOverHours(t *testing.T) {
	f := newFixture(t)
	creator := f.seedUser(t, "creator", model.Creator)
	tester := f.seedUser(t, "tester", model.Tester)

	test := f.seedTest(t, creator.ID, 5, 1)
	test.RetryCooldownDays = 2
	require.NoError(t, f.db.Save(test).Error)

	end := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	f.seedCompletedAttempt(t, test.ID, tester.ID, end.Add(-time.Hour), &end)

	// 5 hours in: the 5-hour setting would already allow, the 2-day one wins.
	decision, err := f.cooldown.CanStart(test, tester.ID, end.Add(5*time.Hour))
	require.NoError(t, err)
	assert.False(t, decision.Allowed)
	assert.True(t, decision.NextAvailableAt.Equal(end.Add(48*time.Hour)))
}

func TestCanStart_ExceptionBypassesCooldown(t *testing.T) {
	f := newFixture(t)
	creator := f.seedUser(t, "creator", model.Creator)
	tester := f.seedUser(t, "tester", model.Tester)
	test := f.seedTest(t, creator.ID, 24, 1)

	now := time.Now()
	end := now.Add(-time.Hour)
	f.seedCompletedAttempt(t, test.ID, tester.ID, end.Add(-time.Minute), &end)

	t.Run("permanent", func(t *testing.T) {
		_, err := f.cooldown.CreateException(test.ID, tester.ID, creator.ID, 0, true, "appeal granted")
		require.NoError(t, err)

		decision, err := f.cooldown.CanStart(test, tester.ID, now)
		require.NoError(t, err)
		assert.True(t, decision.Allowed)
		assert.Equal(t, ReasonException, decision.Reason)
	})

	t.Run("temporary still valid", func(t *testing.T) {
		_, err := f.cooldown.CreateException(test.ID, tester.ID, creator.ID, 2, false, "one more try")
		require.NoError(t, err)

		decision, err := f.cooldown.CanStart(test, tester.ID, now)
		require.NoError(t, err)
		assert.True(t, decision.Allowed)
		assert.Equal(t, ReasonException, decision.Reason)
	})

	t.Run("expired temporary does not bypass", func(t *testing.T) {
		expired := now.Add(-time.Minute)
		require.NoError(t, f.exceptions.DeleteByTestAndUser(test.ID, tester.ID))
		require.NoError(t, f.db.Create(&model.RetryCooldownException{
			TestID:      test.ID,
			UserID:      tester.ID,
			CreatedByID: creator.ID,
			ExpiresAt:   &expired,
		}).Error)

		decision, err := f.cooldown.CanStart(test, tester.ID, now)
		require.NoError(t, err)
		assert.False(t, decision.Allowed)
	})
}

func TestCreateException_SupersedesPrevious(t *testing.T) {
	f := newFixture(t)
	creator := f.seedUser(t, "creator", model.Creator)
	tester := f.seedUser(t, "tester", model.Tester)
	test := f.seedTest(t, creator.ID, 24, 1)

	_, err := f.cooldown.CreateException(test.ID, tester.ID, creator.ID, 2, false, "first")
	require.NoError(t, err)
	_, err = f.cooldown.CreateException(test.ID, tester.ID, creator.ID, 0, true, "second")
	require.NoError(t, err)

	exceptions, err := f.cooldown.ListExceptions(test.ID)
	require.NoError(t, err)
	require.Len(t, exceptions, 1)
	assert.True(t, exceptions[0].IsPermanent)
	assert.Equal(t, "second", exceptions[0].Reason)
}

func TestCreateException_ZeroHoursIsBornExpired(t *testing.T) {
	f := newFixture(t)
	creator := f.seedUser(t, "creator", model.Creator)
	tester := f.seedUser(t, "tester", model.Tester)
	test := f.seedTest(t, creator.ID, 24, 1)

	exception, err := f.cooldown.CreateException(test.ID, tester.ID, creator.ID, 0, false, "")
	require.NoError(t, err)
	assert.Nil(t, exception.ExpiresAt)
	assert.False(t, exception.ActiveAt(time.Now()))

	active, err := f.exceptions.HasActiveException(test.ID, tester.ID, time.Now())
	require.NoError(t, err)
	assert.False(t, active)
}

func TestRemoveException(t *testing.T) {
	f := newFixture(t)
	creator := f.seedUser(t, "creator", model.Creator)
	tester := f.seedUser(t, "tester", model.Tester)
	test := f.seedTest(t, creator.ID, 24, 1)

	_, err := f.cooldown.CreateException(test.ID, tester.ID, creator.ID, 0, true, "")
	require.NoError(t, err)
	require.NoError(t, f.cooldown.RemoveException(test.ID, tester.ID))

	exceptions, err := f.cooldown.ListExceptions(test.ID)
	require.NoError(t, err)
	assert.Empty(t, exceptions)

	// Removing again is a no-op.
	require.NoError(t, f.cooldown.RemoveException(test.ID, tester.ID))
}

func TestCooldownStatus_Messages(t *testing.T) {
	f := newFixture(t)
	creator := f.seedUser(t, "creator", model.Creator)
	tester := f.seedUser(t, "tester", model.Tester)
	test := f.seedTest(t, creator.ID, 72, 1)

	end := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	f.seedCompletedAttempt(t, test.ID, tester.ID, end.Add(-time.Hour), &end)

	tests := []struct {
		name string
		now  time.Time
		want string
	}{
		{"days remaining", end.Add(10 * time.Hour), "Unavailable for another 2 days"},
		{"hours remaining", end.Add(69 * time.Hour), "Unavailable for another 3 hours"},
		{"one hour remaining", end.Add(71 * time.Hour).Add(-30 * time.Minute), "Unavailable for another 1 hour"},
		{"minutes remaining", end.Add(72*time.Hour - 30*time.Minute), "Unavailable for another 30 min"},
		{"available after the window", end.Add(72 * time.Hour), "Available"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, err := f.cooldown.CooldownStatus(test, tester.ID, tt.now)
			require.NoError(t, err)
			assert.Equal(t, tt.want, status)
		})
	}

	t.Run("exception is called out", func(t *testing.T) {
		_, err := f.cooldown.CreateException(test.ID, tester.ID, creator.ID, 0, true, "")
		require.NoError(t, err)
		status, err := f.cooldown.CooldownStatus(test, tester.ID, end.Add(time.Hour))
		require.NoError(t, err)
		assert.Equal(t, "Available (exception)", status)
	})
}
