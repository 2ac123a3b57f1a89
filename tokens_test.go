package interviewquiz

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenRoundTrip(t *testing.T) {
	issuer := NewTokenIssuer("secret")

	token, err := issuer.Issue("user-42")
	require.NoError(t, err)

	userID, err := issuer.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "user-42", userID)
}

func TestTokenRejectsWrongSecret(t *testing.T) {
	token, err := NewTokenIssuer("secret").Issue("user-42")
	require.NoError(t, err)

	_, err = NewTokenIssuer("other").Verify(token)
	assert.Error(t, err)
}

func TestTokenExpires(t *testing.T) {
	issuer := NewTokenIssuer("secret")
	issued := time.Now()
	issuer.now = func() time.Time { return issued }

	token, err := issuer.Issue("user-42")
	require.NoError(t, err)

	issuer.now = func() time.Time { return issued.Add(tokenTTL + time.Minute) }
	_, err = issuer.Verify(token)
	assert.Error(t, err)
}

func TestTokenRejectsOtherAlgorithms(t *testing.T) {
	claims := jwt.RegisteredClaims{Subject: "user-42", ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte("secret"))
	require.NoError(t, err)

	_, err = NewTokenIssuer("secret").Verify(token)
	assert.Error(t, err)

	_, err = NewTokenIssuer("secret").Verify("not-a-token")
	assert.Error(t, err)
}
