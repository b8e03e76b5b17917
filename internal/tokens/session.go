package tokens

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/Skotchmaster/shop_admin/internal/models"
)

// CookieName carries the signed session between browser and server.
const CookieName = "session"

type SessionClaims struct {
	Email string `json:"email"`
	Name  string `json:"name"`
	jwt.RegisteredClaims
}

func (c *SessionClaims) Identity() models.Identity {
	return models.Identity{ID: c.Subject, Email: c.Email, Name: c.Name}
}

type Issuer struct {
	Secret []byte
	TTL    time.Duration
	Now    func() time.Time
}

func (i *Issuer) now() time.Time {
	if i.Now != nil {
		return i.Now()
	}
	return time.Now()
}

func (i *Issuer) Issue(id models.Identity) (string, time.Time, error) {
	iat := i.now()
	exp := iat.Add(i.TTL)
	claims := SessionClaims{
		Email: id.Email,
		Name:  id.Name,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   id.ID,
			IssuedAt:  jwt.NewNumericDate(iat),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.Secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, exp, nil
}

func (i *Issuer) Parse(tokenStr string) (*SessionClaims, error) {
	return SessionClaimsFromToken(tokenStr, i.Secret, jwt.WithTimeFunc(i.now))
}

func SessionClaimsFromToken(tokenStr string, secret []byte, opts ...jwt.ParserOption) (*SessionClaims, error) {
	var claims SessionClaims
	opts = append(opts, jwt.WithExpirationRequired())
	tkn, err := jwt.ParseWithClaims(tokenStr, &claims, func(t *jwt.Token) (any, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, errors.New("unexpected sign method")
		}
		return secret, nil
	}, opts...)
	if err != nil {
		return nil, err
	}
	if !tkn.Valid || claims.Subject == "" {
		return nil, errors.New("invalid session token")
	}
	return &claims, nil
}
