package security

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/parkwise/auth-service/internal/application/auth"
	"github.com/parkwise/auth-service/internal/domain"
)

// JWTCodec signs and validates the access/refresh token pair with a
// process-wide symmetric secret. The algorithm is pinned to HS256 for the
// life of the deployment; rotating the secret invalidates every
// outstanding token.
type JWTCodec struct {
	secret     []byte
	issuer     string
	accessTTL  time.Duration
	refreshTTL time.Duration

	now func() time.Time
}

func NewJWTCodec(secret, issuer string, accessTTL, refreshTTL time.Duration) *JWTCodec {
	return &JWTCodec{
		secret:     []byte(secret),
		issuer:     issuer,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		now:        time.Now,
	}
}

// WithClock overrides the codec's clock, for deterministic expiry tests.
func (c *JWTCodec) WithClock(now func() time.Time) *JWTCodec {
	if now != nil {
		c.now = now
	}
	return c
}

type tokenClaims struct {
	TokenType string `json:"type"`
	jwt.RegisteredClaims
}

func (c *JWTCodec) ttl(typ auth.TokenType) time.Duration {
	if typ == auth.TokenRefresh {
		return c.refreshTTL
	}
	return c.accessTTL
}

func (c *JWTCodec) Issue(userID string, typ auth.TokenType) (string, error) {
	if typ != auth.TokenAccess && typ != auth.TokenRefresh {
		return "", domain.ErrTokenSignFailed(errors.New("unknown token type"))
	}

	now := c.now()
	claims := tokenClaims{
		TokenType: string(typ),
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    c.issuer,
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.ttl(typ))),
		},
	}

	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := tok.SignedString(c.secret)
	if err != nil {
		return "", domain.ErrTokenSignFailed(err)
	}
	return signed, nil
}

// Validate checks signature, expiry and token type, in that order of
// trust: any failure is terminal. The type claim is compared explicitly;
// a refresh token is never accepted where an access token is required.
func (c *JWTCodec) Validate(token string, want auth.TokenType) (string, error) {
	parsed, err := jwt.ParseWithClaims(token, &tokenClaims{}, func(t *jwt.Token) (any, error) {
		// prevent alg confusion
		if t.Method != jwt.SigningMethodHS256 {
			return nil, domain.ErrTokenInvalid()
		}
		return c.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(c.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", domain.ErrTokenExpired()
		}
		return "", domain.ErrTokenInvalid()
	}

	claims, ok := parsed.Claims.(*tokenClaims)
	if !ok || !parsed.Valid {
		return "", domain.ErrTokenInvalid()
	}

	if claims.TokenType != string(want) {
		return "", domain.ErrTokenWrongType()
	}
	if claims.Subject == "" {
		return "", domain.ErrTokenInvalid()
	}

	return claims.Subject, nil
}
