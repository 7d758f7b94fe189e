package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegister(t *testing.T) {
	ctx := context.Background()

	t.Run("creates a player with a hashed password", func(t *testing.T) {
		svc := NewAuthService(newFakeUserRepo())

		user, err := svc.Register(ctx, RegisterInput{
			FirstName: "Aigerim",
			LastName:  "Satybaldy",
			Email:     "aigerim@example.edu",
			Password:  "correct horse",
		})
		require.NoError(t, err)
		assert.NotZero(t, user.ID)
		assert.Equal(t, "player", string(user.Role))
		assert.NotEqual(t, "correct horse", user.PasswordHash)
	})

	t.Run("rejects a short password", func(t *testing.T) {
		svc := NewAuthService(newFakeUserRepo())

		_, err := svc.Register(ctx, RegisterInput{Email: "a@example.edu", Password: "short"})
		assert.ErrorIs(t, err, ErrPasswordTooShort)
	})

	t.Run("rejects a taken email", func(t *testing.T) {
		repo := newFakeUserRepo()
		svc := NewAuthService(repo)

		input := RegisterInput{Email: "a@example.edu", Password: "correct horse"}
		_, err := svc.Register(ctx, input)
		require.NoError(t, err)

		_, err = svc.Register(ctx, input)
		assert.ErrorIs(t, err, ErrAuthEmailTaken)
	})
}

func TestLogin(t *testing.T) {
	ctx := context.Background()

	t.Run("round-trips a registration", func(t *testing.T) {
		svc := NewAuthService(newFakeUserRepo())

		_, err := svc.Register(ctx, RegisterInput{Email: "a@example.edu", Password: "correct horse"})
		require.NoError(t, err)

		user, err := svc.Login(ctx, LoginInput{Email: "a@example.edu", Password: "correct horse"})
		require.NoError(t, err)
		assert.Empty(t, user.PasswordHash)
	})

	t.Run("wrong password", func(t *testing.T) {
		svc := NewAuthService(newFakeUserRepo())

		_, err := svc.Register(ctx, RegisterInput{Email: "a@example.edu", Password: "correct horse"})
		require.NoError(t, err)

		_, err = svc.Login(ctx, LoginInput{Email: "a@example.edu", Password: "wrong horse"})
		assert.ErrorIs(t, err, ErrAuthInvalidCredentials)
	})

	t.Run("unknown email", func(t *testing.T) {
		svc := NewAuthService(newFakeUserRepo())

		_, err := svc.Login(ctx, LoginInput{Email: "nobody@example.edu", Password: "whatever"})
		assert.ErrorIs(t, err, ErrAuthInvalidCredentials)
	})
}
