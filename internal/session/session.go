// Package session mints and validates the signed session credential carried
// in the "jwt" cookie, and tracks revoked credentials in Redis.
package session

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"threads/internal/cache"
	"threads/internal/middleware"
	"threads/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	CookieName = "jwt"
	Issuer     = "threads-api"
	Audience   = "threads-client"
)

// Token is a freshly signed credential.
type Token struct {
	Value     string
	ID        string
	ExpiresAt time.Time
}

// Identity is what a valid credential resolves to.
type Identity struct {
	UserID    uint
	TokenID   string
	ExpiresAt time.Time
}

// Manager issues, parses and revokes session credentials.
type Manager struct {
	secret []byte
	ttl    time.Duration
	secure bool
	redis  *redis.Client
	now    func() time.Time
}

// NewManager returns a Manager signing with secret. client may be nil, in
// which case revocation is a no-op.
func NewManager(secret string, ttl time.Duration, secureCookie bool, client *redis.Client) *Manager {
	return &Manager{
		secret: []byte(secret),
		ttl:    ttl,
		secure: secureCookie,
		redis:  client,
		now:    time.Now,
	}
}

// Issue signs a credential for userID.
func (m *Manager) Issue(userID uint) (*Token, error) {
	if len(m.secret) == 0 {
		return nil, fmt.Errorf("JWT secret not configured")
	}

	now := m.now()
	claims := jwt.RegisteredClaims{
		Subject:   strconv.FormatUint(uint64(userID), 10),
		Issuer:    Issuer,
		Audience:  jwt.ClaimStrings{Audience},
		ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
		ID:        uuid.NewString(),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return nil, err
	}
	return &Token{Value: signed, ID: claims.ID, ExpiresAt: claims.ExpiresAt.Time}, nil
}

// Parse validates tokenString and returns the identity it names. Every
// failure is an unauthorized error.
func (m *Manager) Parse(tokenString string) (*Identity, error) {
	if tokenString == "" {
		return nil, models.NewUnauthorizedError("Unauthorized: no session")
	}

	var claims jwt.RegisteredClaims
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(*jwt.Token) (any, error) {
		return m.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(Issuer),
		jwt.WithAudience(Audience),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil || !token.Valid {
		return nil, models.NewUnauthorizedError("Invalid or expired token")
	}

	userID, err := strconv.ParseUint(claims.Subject, 10, 32)
	if err != nil || userID == 0 {
		return nil, models.NewUnauthorizedError("Invalid user ID in token")
	}

	return &Identity{
		UserID:    uint(userID),
		TokenID:   claims.ID,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}

// Revoke blacklists id's token until it would have expired anyway.
func (m *Manager) Revoke(ctx context.Context, id *Identity) error {
	if m.redis == nil || id == nil || id.TokenID == "" {
		return nil
	}
	remaining := id.ExpiresAt.Sub(m.now())
	if remaining <= 0 {
		return nil
	}
	return m.redis.Set(ctx, cache.BlacklistKey(id.TokenID), "1", remaining).Err()
}

// IsRevoked reports whether tokenID was revoked. Without Redis, or when
// Redis fails, nothing is considered revoked.
func (m *Manager) IsRevoked(ctx context.Context, tokenID string) bool {
	if m.redis == nil || tokenID == "" {
		return false
	}
	n, err := m.redis.Exists(ctx, cache.BlacklistKey(tokenID)).Result()
	if err != nil {
		middleware.Logger.WarnContext(ctx, "token revocation check failed",
			slog.String("error", err.Error()))
		return false
	}
	return n > 0
}

// Cookie carries tok to the browser.
func (m *Manager) Cookie(tok *Token) *fiber.Cookie {
	return &fiber.Cookie{
		Name:     CookieName,
		Value:    tok.Value,
		Path:     "/",
		MaxAge:   int(m.ttl.Seconds()),
		Expires:  tok.ExpiresAt,
		HTTPOnly: true,
		Secure:   m.secure,
		SameSite: fiber.CookieSameSiteStrictMode,
	}
}

// ClearCookie expires the session cookie.
func (m *Manager) ClearCookie() *fiber.Cookie {
	return &fiber.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		HTTPOnly: true,
		Secure:   m.secure,
		SameSite: fiber.CookieSameSiteStrictMode,
	}
}

// TokenFromRequest reads the credential from the session cookie, falling
// back to an "Authorization: Bearer" header.
func TokenFromRequest(c *fiber.Ctx) string {
	if tok := c.Cookies(CookieName); tok != "" {
		return tok
	}
	authHeader := c.Get(fiber.HeaderAuthorization)
	parts := strings.Split(authHeader, " ")
	if len(parts) == 2 && parts[0] == "Bearer" {
		return parts[1]
	}
	return ""
}
