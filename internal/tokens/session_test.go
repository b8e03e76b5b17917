package tokens

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/shop_admin/internal/models"
)

func TestIssuer_IssueAndParse(t *testing.T) {
	t.Parallel()

	iss := &Issuer{Secret: []byte("test-secret"), TTL: time.Hour}
	id := models.Identity{ID: uuid.NewString(), Email: "admin@example.com", Name: "Admin User"}

	token, exp, err := iss.Issue(id)
	require.NoError(t, err)
	require.NotEmpty(t, token)
	assert.WithinDuration(t, time.Now().Add(time.Hour), exp, 2*time.Second)

	claims, err := iss.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, id, claims.Identity())
	require.NotNil(t, claims.IssuedAt)
}

func TestIssuer_ParseRejects(t *testing.T) {
	t.Parallel()

	iss := &Issuer{Secret: []byte("test-secret"), TTL: time.Hour}
	id := models.Identity{ID: "1", Email: "a@example.com", Name: "A"}
	token, _, err := iss.Issue(id)
	require.NoError(t, err)

	t.Run("wrong secret", func(t *testing.T) {
		other := &Issuer{Secret: []byte("other"), TTL: time.Hour}
		_, err := other.Parse(token)
		require.Error(t, err)
	})

	t.Run("expired", func(t *testing.T) {
		late := &Issuer{Secret: iss.Secret, TTL: time.Hour, Now: func() time.Time { return time.Now().Add(2 * time.Hour) }}
		_, err := late.Parse(token)
		require.Error(t, err)
		assert.True(t, errors.Is(err, jwt.ErrTokenExpired))
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := iss.Parse("not.a.token")
		require.Error(t, err)
	})

	t.Run("none algorithm", func(t *testing.T) {
		unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, SessionClaims{
			RegisteredClaims: jwt.RegisteredClaims{Subject: "1", ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
		}).SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)
		_, err = iss.Parse(unsigned)
		require.Error(t, err)
	})

	t.Run("missing subject", func(t *testing.T) {
		noSub, err := jwt.NewWithClaims(jwt.SigningMethodHS256, SessionClaims{
			RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
		}).SignedString(iss.Secret)
		require.NoError(t, err)
		_, err = iss.Parse(noSub)
		require.Error(t, err)
	})
}
