package service

import (
	"testing"

	"assesspro_backend/internal/model"
	"assesspro_backend/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestRegister(t *testing.T) {
	f := newFixture(t)

	user := &model.User{Username: "alice", Email: "alice@example.com", Password: "s3cret-pass"}
	require.NoError(t, f.auth.Register(user))

	stored, err := f.users.FindByUsername("alice")
	require.NoError(t, err)
	assert.Equal(t, model.Tester, stored.Role)
	assert.NotEqual(t, "s3cret-pass", stored.Password)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.Password), []byte("s3cret-pass")))

	t.Run("duplicate username", func(t *testing.T) {
		err := f.auth.Register(&model.User{Username: "alice", Email: "alice2@example.com", Password: "x"})
		assert.ErrorIs(t, err, util.ErrUsernameTaken)
	})

	t.Run("duplicate email", func(t *testing.T) {
		err := f.auth.Register(&model.User{Username: "alice2", Email: "alice@example.com", Password: "x"})
		assert.ErrorIs(t, err, util.ErrEmailRegistered)
	})

	t.Run("explicit role survives", func(t *testing.T) {
		creator := &model.User{Username: "bob", Email: "bob@example.com", Password: "x", Role: model.Creator}
		require.NoError(t, f.auth.Register(creator))
		stored, err := f.users.FindByUsername("bob")
		require.NoError(t, err)
		assert.Equal(t, model.Creator, stored.Role)
	})
}

func TestLogin(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.auth.Register(&model.User{
		Username: "alice", Email: "alice@example.com", Password: "s3cret-pass",
	}))

	t.Run("valid credentials return a parseable token", func(t *testing.T) {
		token, err := f.auth.Login("alice", "s3cret-pass")
		require.NoError(t, err)

		claims, err := util.ParseJWT(token, testConfig().JWT.Secret)
		require.NoError(t, err)
		assert.Equal(t, "alice", claims.Username)
		assert.Equal(t, model.Tester, claims.Role)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := f.auth.Login("alice", "wrong")
		assert.ErrorIs(t, err, util.ErrInvalidCredentials)
	})

	t.Run("unknown user", func(t *testing.T) {
		_, err := f.auth.Login("nobody", "whatever")
		assert.ErrorIs(t, err, util.ErrInvalidCredentials)
	})

	t.Run("disabled account", func(t *testing.T) {
		user, err := f.users.FindByUsername("alice")
		require.NoError(t, err)
		user.Disabled = true
		require.NoError(t, f.users.Update(user))

		_, err = f.auth.Login("alice", "s3cret-pass")
		assert.ErrorIs(t, err, util.ErrInvalidCredentials)
	})
}
