package interviewquiz

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidEmail(t *testing.T) {
	assert.True(t, ValidEmail("user@example.com"))
	assert.True(t, ValidEmail("first.last+tag@sub.example.org"))
	assert.False(t, ValidEmail("user@example"))
	assert.False(t, ValidEmail("user example@x.com"))
	assert.False(t, ValidEmail("@example.com"))
	assert.False(t, ValidEmail(""))
}

func TestRegisterAndLogin(t *testing.T) {
	accounts := NewAccounts(openTestDB(t))
	ctx := context.Background()

	user, err := accounts.Register(ctx, RegisterRequest{
		Email:    " Grace@Example.com ",
		Password: "hopper1",
		Name:     "Grace",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, user.ID)
	assert.Equal(t, "grace@example.com", user.Email)
	assert.Equal(t, DefaultTopic, user.PreferredTopic)
	assert.Equal(t, DefaultDifficulty, user.Experience)
	assert.NotEqual(t, "hopper1", user.PasswordHash)
	assert.Zero(t, user.Stats.QuizzesTaken)

	loggedIn, err := accounts.Login(ctx, "grace@example.com", "hopper1")
	require.NoError(t, err)
	assert.Equal(t, user.ID, loggedIn.ID)

	_, err = accounts.Login(ctx, "grace@example.com", "wrong-password")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = accounts.Login(ctx, "nobody@example.com", "hopper1")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = accounts.Register(ctx, RegisterRequest{Email: "grace@example.com", Password: "another1", Name: "G"})
	assert.ErrorIs(t, err, ErrEmailTaken)

	got, err := accounts.GetUser(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "Grace", got.Name)

	_, err = accounts.GetUser(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRegisterValidation(t *testing.T) {
	accounts := NewAccounts(openTestDB(t))

	tests := []struct {
		name  string
		req   RegisterRequest
		field string
	}{
		{"missing email", RegisterRequest{Password: "secret1", Name: "N"}, "email"},
		{"bad email", RegisterRequest{Email: "nope", Password: "secret1", Name: "N"}, "email"},
		{"missing name", RegisterRequest{Email: "a@b.co", Password: "secret1"}, "name"},
		{"missing password", RegisterRequest{Email: "a@b.co", Name: "N"}, "password"},
		{"short password", RegisterRequest{Email: "a@b.co", Password: "12345", Name: "N"}, "password"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := accounts.Register(context.Background(), tt.req)
			var ve *ValidationError
			require.True(t, errors.As(err, &ve), "expected *ValidationError, got %v", err)
			assert.Equal(t, tt.field, ve.Field)
		})
	}
}

func TestLoginRequiresPassword(t *testing.T) {
	accounts := NewAccounts(openTestDB(t))

	_, err := accounts.Login(context.Background(), "a@b.co", "")
	assert.True(t, IsValidationError(err))

	_, err = accounts.Login(context.Background(), "", "secret1")
	assert.True(t, IsValidationError(err))
}
