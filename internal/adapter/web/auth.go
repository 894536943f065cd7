package web

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/labstack/echo/v4"
)

const requesterContextKey = "requester_id"

// AuthConfig holds JWT validation configuration. Tokens are issued by the
// platform's auth service; this service only verifies them.
type AuthConfig struct {
	Secret   string
	Issuer   string
	Audience string
}

// cachedIdentity is a verified token's subject plus the token's own expiry,
// so a cache hit never outlives the token.
type cachedIdentity struct {
	id        uuid.UUID
	expiresAt time.Time
}

func (ci cachedIdentity) valid(now time.Time) bool {
	return ci.expiresAt.IsZero() || now.Before(ci.expiresAt)
}

// Authenticator validates bearer tokens and resolves the requesting tenant.
// Parsed tokens are cached in an expirable LRU so hot clients do not pay
// signature verification on every request.
type Authenticator struct {
	cfg   AuthConfig
	cache *expirable.LRU[string, cachedIdentity]
}

func NewAuthenticator(cfg AuthConfig) *Authenticator {
	return &Authenticator{
		cfg:   cfg,
		cache: expirable.NewLRU[string, cachedIdentity](1024, nil, time.Minute),
	}
}

// Middleware rejects unauthenticated requests and stores the requester ID
// on the echo context.
func (a *Authenticator) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get(echo.HeaderAuthorization)
			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || token == "" {
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": "missing bearer token"})
			}

			if entry, ok := a.cache.Get(token); ok {
				if entry.valid(time.Now()) {
					c.Set(requesterContextKey, entry.id)
					return next(c)
				}
				a.cache.Remove(token)
			}

			id, expiresAt, err := a.verify(token)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": "invalid token"})
			}

			a.cache.Add(token, cachedIdentity{id: id, expiresAt: expiresAt})
			c.Set(requesterContextKey, id)
			return next(c)
		}
	}
}

func (a *Authenticator) verify(tokenString string) (uuid.UUID, time.Time, error) {
	token, err := jwt.Parse(tokenString,
		func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
			}
			return []byte(a.cfg.Secret), nil
		},
		jwt.WithIssuer(a.cfg.Issuer),
		jwt.WithAudience(a.cfg.Audience),
		jwt.WithValidMethods([]string{"HS256"}),
	)
	if err != nil {
		return uuid.Nil, time.Time{}, fmt.Errorf("failed to parse token: %w", err)
	}

	subject, err := token.Claims.GetSubject()
	if err != nil {
		return uuid.Nil, time.Time{}, fmt.Errorf("failed to read subject: %w", err)
	}

	id, err := uuid.Parse(subject)
	if err != nil {
		return uuid.Nil, time.Time{}, fmt.Errorf("subject is not a tenant id: %w", err)
	}

	var expiresAt time.Time
	if exp, err := token.Claims.GetExpirationTime(); err == nil && exp != nil {
		expiresAt = exp.Time
	}
	return id, expiresAt, nil
}

// RequesterID returns the authenticated tenant ID set by the middleware.
func RequesterID(c echo.Context) (uuid.UUID, bool) {
	id, ok := c.Get(requesterContextKey).(uuid.UUID)
	return id, ok
}
