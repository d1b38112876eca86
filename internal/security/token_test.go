package security

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"freighthub-backend/internal/domain"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func TestTokenManager_RoundTrip(t *testing.T) {
	tm := NewTokenManager(testSecret, "freighthub-auth", time.Hour)
	actor := domain.Actor{ID: uuid.New(), Role: domain.RoleTransporter}

	token, err := tm.GenerateAccessToken(actor, "t@example.com")
	require.NoError(t, err)

	claims, err := tm.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, TokenTypeAccess, claims.Type)
	assert.Equal(t, "t@example.com", claims.Email)

	got, err := claims.Actor()
	require.NoError(t, err)
	assert.Equal(t, actor, got)
}

func TestTokenManager_Expired(t *testing.T) {
	m := NewTokenManager(testSecret, "freighthub-auth", time.Minute).(*tokenManager)
	m.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }

	token, err := m.GenerateAccessToken(domain.Actor{ID: uuid.New(), Role: domain.RoleCompany}, "")
	require.NoError(t, err)

	_, err = m.ValidateToken(token)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestTokenManager_Invalid(t *testing.T) {
	tm := NewTokenManager(testSecret, "freighthub-auth", time.Hour)
	other := NewTokenManager("ffffffffffffffffffffffffffffffff", "freighthub-auth", time.Hour)
	wrongIssuer := NewTokenManager(testSecret, "someone-else", time.Hour)
	actor := domain.Actor{ID: uuid.New(), Role: domain.RoleAdmin}

	t.Run("WrongSecret", func(t *testing.T) {
		token, err := other.GenerateAccessToken(actor, "")
		require.NoError(t, err)
		_, err = tm.ValidateToken(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("WrongIssuer", func(t *testing.T) {
		token, err := wrongIssuer.GenerateAccessToken(actor, "")
		require.NoError(t, err)
		_, err = tm.ValidateToken(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("Garbage", func(t *testing.T) {
		_, err := tm.ValidateToken("not-a-token")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("NoneAlgorithm", func(t *testing.T) {
		claims := UserClaims{UserID: actor.ID.String(), Role: actor.Role, Type: TokenTypeAccess,
			RegisteredClaims: jwt.RegisteredClaims{Issuer: "freighthub-auth"}}
		token, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)
		_, err = tm.ValidateToken(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}

func TestUserClaims_Actor(t *testing.T) {
	_, err := (&UserClaims{UserID: "nope", Role: domain.RoleCompany}).Actor()
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = (&UserClaims{UserID: uuid.NewString(), Role: "pilot"}).Actor()
	assert.ErrorIs(t, err, ErrInvalidToken)
}
