package util

import (
	"errors"
	"testing"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenRoundTrip(t *testing.T) {
	tm := NewTokenManager("s3cret", 1)
	token, err := tm.CreateToken(&JWTMessage{UserID: 7, Email: "a@example.com"})
	require.NoError(t, err)

	msg, err := tm.CheckToken(token)
	require.NoError(t, err)
	assert.Equal(t, JWTMessage{UserID: 7, Email: "a@example.com"}, msg)
}

func TestTokenRejections(t *testing.T) {
	tm := NewTokenManager("s3cret", 1)
	token, err := tm.CreateToken(&JWTMessage{UserID: 7})
	require.NoError(t, err)

	_, err = NewTokenManager("other", 1).CheckToken(token)
	assert.True(t, errors.Is(err, ErrInvalidToken), "wrong secret")

	_, err = tm.CheckToken(token + "x")
	assert.True(t, errors.Is(err, ErrInvalidToken), "tampered")

	later := NewTokenManager("s3cret", 1)
	later.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	_, err = later.CheckToken(token)
	assert.True(t, errors.Is(err, ErrInvalidToken))
	assert.True(t, errors.Is(err, jwt.ErrTokenExpired))

	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, &JWTClaims{UserID: 7}).
		SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = tm.CheckToken(none)
	assert.True(t, errors.Is(err, ErrInvalidToken), "alg none")
}
