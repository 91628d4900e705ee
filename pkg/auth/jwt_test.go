package auth_test

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/ayoo/config"
	"github.com/shashiranjanraj/ayoo/pkg/auth"
)

func TestTokenRoundTrip(t *testing.T) {
	token, err := auth.GenerateToken("rider-1", "RIDER")
	require.NoError(t, err)

	claims, err := auth.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "rider-1", claims.UserID)
	assert.Equal(t, "RIDER", claims.Role)
	assert.Equal(t, auth.Issuer, claims.Issuer)
}

func sign(t *testing.T, key string, claims auth.Claims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(key))
	require.NoError(t, err)
	return s
}

func TestValidateTokenRejects(t *testing.T) {
	secret := config.JWTSecret()
	valid := jwt.RegisteredClaims{
		Issuer:    auth.Issuer,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}
	expired := valid
	expired.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Minute))
	foreign := valid
	foreign.Issuer = "someone-else"

	cases := map[string]string{
		"foreign key":    sign(t, "not-the-secret", auth.Claims{UserID: "x", Role: "ADMIN", RegisteredClaims: valid}),
		"expired":        sign(t, secret, auth.Claims{UserID: "x", Role: "ADMIN", RegisteredClaims: expired}),
		"foreign issuer": sign(t, secret, auth.Claims{UserID: "x", Role: "ADMIN", RegisteredClaims: foreign}),
		"no expiry":      sign(t, secret, auth.Claims{UserID: "x", Role: "ADMIN", RegisteredClaims: jwt.RegisteredClaims{Issuer: auth.Issuer}}),
		"no user":        sign(t, secret, auth.Claims{Role: "ADMIN", RegisteredClaims: valid}),
		"garbage":        "not.a.token",
	}
	for name, token := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := auth.ValidateToken(token)
			assert.ErrorIs(t, err, auth.ErrInvalidToken)
		})
	}
}

func TestValidateTokenRejectsNone(t *testing.T) {
	claims := auth.Claims{UserID: "x", Role: "ADMIN", RegisteredClaims: jwt.RegisteredClaims{
		Issuer:    auth.Issuer,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}}
	token, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = auth.ValidateToken(token)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestPasswordHash(t *testing.T) {
	hash, err := auth.HashPassword("hunter22")
	require.NoError(t, err)

	assert.True(t, auth.CheckPassword(hash, "hunter22"))
	assert.False(t, auth.CheckPassword(hash, "hunter23"))
	assert.False(t, auth.CheckPassword("not-a-hash", "hunter22"))
}
