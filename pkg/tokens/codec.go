// Package tokens signs and verifies the HS256 access tokens handed out
// at login. The codec is pure: the caller supplies the clock.
package tokens

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrTokenInvalid = errors.New("token invalid")
	ErrTokenExpired = errors.New("token expired")
)

const DefaultIssuer = "example.com"

// AccessClaims is the wire shape {sub, iss, exp, roles}.
type AccessClaims struct {
	Roles []string `json:"roles"`
	jwt.RegisteredClaims
}

type Codec struct {
	Secret []byte
	Issuer string
	TTL    time.Duration
}

func NewCodec(secret []byte, issuer string, ttl time.Duration) *Codec {
	if issuer == "" {
		issuer = DefaultIssuer
	}
	return &Codec{Secret: secret, Issuer: issuer, TTL: ttl}
}

// Issue is deterministic for equal inputs: no iat or jti is embedded.
func (c *Codec) Issue(subject string, roles []string, now time.Time) (string, error) {
	if len(c.Secret) == 0 {
		return "", errors.New("signing secret is empty")
	}
	if roles == nil {
		roles = []string{}
	}
	claims := AccessClaims{
		Roles: roles,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			Issuer:    c.Issuer,
			ExpiresAt: jwt.NewNumericDate(now.Add(c.TTL)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.Secret)
	if err != nil {
		return "", fmt.Errorf("signing access token: %w", err)
	}
	return signed, nil
}

// Verify accepts the token only while exp > now.
func (c *Codec) Verify(token string, now time.Time) (*AccessClaims, error) {
	var claims AccessClaims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return c.Secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(c.Issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(func() time.Time { return now }),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, fmt.Errorf("%w: %w", ErrTokenExpired, err)
		}
		return nil, fmt.Errorf("%w: %w", ErrTokenInvalid, err)
	}
	if !parsed.Valid {
		return nil, ErrTokenInvalid
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("%w: missing subject", ErrTokenInvalid)
	}
	if claims.Roles == nil {
		claims.Roles = []string{}
	}
	return &claims, nil
}
