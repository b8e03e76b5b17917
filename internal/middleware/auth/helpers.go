package auth

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/shop_admin/internal/models"
	"github.com/Skotchmaster/shop_admin/internal/tokens"
)

const (
	identityKey = "identity"
	expiresKey  = "session_expires"
)

func CreateCookie(name, value, path string, expTime time.Time, secure bool) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     path,
		Expires:  expTime,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
}

func DeleteCookie(name, path string, secure bool) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     path,
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
}

func setIdentity(c echo.Context, claims *tokens.SessionClaims) {
	c.Set(identityKey, claims.Identity())
	if claims.ExpiresAt != nil {
		c.Set(expiresKey, claims.ExpiresAt.Time)
	}
}

// IdentityFrom returns the admin attached by the session middleware.
func IdentityFrom(c echo.Context) (models.Identity, bool) {
	id, ok := c.Get(identityKey).(models.Identity)
	return id, ok
}

func ExpiresFrom(c echo.Context) (time.Time, bool) {
	exp, ok := c.Get(expiresKey).(time.Time)
	return exp, ok
}
