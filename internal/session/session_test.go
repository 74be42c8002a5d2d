package session

import (
	"context"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"threads/internal/cache"
	"threads/internal/models"
	"threads/internal/testutil"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-that-is-long-enough-for-hs256"

func TestManager_IssueAndParse(t *testing.T) {
	m := NewManager(testSecret, time.Hour, false, nil)

	tok, err := m.Issue(42)
	require.NoError(t, err)
	assert.NotEmpty(t, tok.ID)

	id, err := m.Parse(tok.Value)
	require.NoError(t, err)
	assert.Equal(t, uint(42), id.UserID)
	assert.Equal(t, tok.ID, id.TokenID)
	assert.WithinDuration(t, tok.ExpiresAt, id.ExpiresAt, time.Second)
}

func TestManager_ParseRejects(t *testing.T) {
	m := NewManager(testSecret, time.Hour, false, nil)
	other := NewManager("a-completely-different-signing-secret", time.Hour, false, nil)

	foreign, err := other.Issue(1)
	require.NoError(t, err)

	expired := NewManager(testSecret, time.Hour, false, nil)
	expired.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	old, err := expired.Issue(1)
	require.NoError(t, err)

	wrongIssuer, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "1",
		Issuer:    "someone-else",
		Audience:  jwt.ClaimStrings{Audience},
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}).SignedString([]byte(testSecret))
	require.NoError(t, err)

	noneAlg, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{
		Subject:   "1",
		Issuer:    Issuer,
		Audience:  jwt.ClaimStrings{Audience},
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	for name, tokenString := range map[string]string{
		"empty":        "",
		"garbage":      "not-a-token",
		"wrong secret": foreign.Value,
		"expired":      old.Value,
		"wrong issuer": wrongIssuer,
		"alg none":     noneAlg,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := m.Parse(tokenString)
			require.Error(t, err)
			assert.True(t, models.IsCode(err, models.CodeUnauthorized))
		})
	}
}

func TestManager_RevokeUntilExpiry(t *testing.T) {
	client, mr := testutil.NewRedis(t)
	m := NewManager(testSecret, time.Hour, false, client)
	ctx := context.Background()

	tok, err := m.Issue(7)
	require.NoError(t, err)
	id, err := m.Parse(tok.Value)
	require.NoError(t, err)

	assert.False(t, m.IsRevoked(ctx, id.TokenID))
	require.NoError(t, m.Revoke(ctx, id))
	assert.True(t, m.IsRevoked(ctx, id.TokenID))

	ttl := mr.TTL(cache.BlacklistKey(id.TokenID))
	assert.Greater(t, ttl, 59*time.Minute)
	assert.LessOrEqual(t, ttl, time.Hour)

	mr.FastForward(time.Hour + time.Second)
	assert.False(t, m.IsRevoked(ctx, id.TokenID))
}

func TestManager_RevocationWithoutRedis(t *testing.T) {
	m := NewManager(testSecret, time.Hour, false, nil)
	tok, err := m.Issue(7)
	require.NoError(t, err)
	id, err := m.Parse(tok.Value)
	require.NoError(t, err)

	assert.NoError(t, m.Revoke(context.Background(), id))
	assert.False(t, m.IsRevoked(context.Background(), id.TokenID))
}

func TestCookies(t *testing.T) {
	m := NewManager(testSecret, 15*24*time.Hour, true, nil)
	tok, err := m.Issue(1)
	require.NoError(t, err)

	c := m.Cookie(tok)
	assert.Equal(t, CookieName, c.Name)
	assert.Equal(t, tok.Value, c.Value)
	assert.True(t, c.HTTPOnly)
	assert.True(t, c.Secure)
	assert.Equal(t, 15*24*60*60, c.MaxAge)

	cleared := m.ClearCookie()
	assert.Empty(t, cleared.Value)
	assert.Equal(t, -1, cleared.MaxAge)
}

func TestTokenFromRequest(t *testing.T) {
	app := fiber.New()
	app.Get("/", func(c *fiber.Ctx) error {
		return c.SendString(TokenFromRequest(c))
	})

	tests := []struct {
		name   string
		cookie string
		header string
		want   string
	}{
		{"cookie", "from-cookie", "", "from-cookie"},
		{"bearer fallback", "", "Bearer from-header", "from-header"},
		{"cookie wins", "from-cookie", "Bearer from-header", "from-cookie"},
		{"malformed header", "", "Token abc", ""},
		{"nothing", "", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/", nil)
			if tt.cookie != "" {
				req.Header.Set("Cookie", CookieName+"="+tt.cookie)
			}
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			resp, err := app.Test(req)
			require.NoError(t, err)
			defer func() { _ = resp.Body.Close() }()

			body, err := io.ReadAll(resp.Body)
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(body))
		})
	}
}
