package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"incognitor/internal/auth"
	"incognitor/internal/repository"
	"incognitor/internal/testutil"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupAuthApp(t *testing.T) (*fiber.App, repository.TokenRepository, uint) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	tokens := repository.NewTokenRepository(db)
	user := testutil.CreateTestUser(t, db, "alice", "alice@example.com", "pw")

	app := fiber.New()
	app.Get("/protected", AuthRequired(tokens), func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"user_id": UserID(c)})
	})
	return app, tokens, user.ID
}

func TestAuthRequired(t *testing.T) {
	app, tokens, userID := setupAuthApp(t)

	plain, err := auth.Issue(context.Background(), tokens, userID, "auth_token")
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"valid token", "Bearer " + plain, http.StatusOK},
		{"missing header", "", http.StatusUnauthorized},
		{"not bearer", "Basic abc", http.StatusUnauthorized},
		{"malformed token", "Bearer garbage", http.StatusUnauthorized},
		{"wrong secret", "Bearer 1|0000", http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/protected", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, tt.want, resp.StatusCode)
			_ = resp.Body.Close()
		})
	}
}

func TestAuthRequiredUpdatesLastUsed(t *testing.T) {
	app, tokens, userID := setupAuthApp(t)
	ctx := context.Background()

	plain, err := auth.Issue(ctx, tokens, userID, "auth_token")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+plain)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	_ = resp.Body.Close()

	token, err := auth.Verify(ctx, tokens, plain)
	require.NoError(t, err)
	require.NotNil(t, token)
	assert.NotNil(t, token.LastUsedAt)
}

func TestAuthRequiredInjectsUserIDIntoContext(t *testing.T) {
	db := testutil.SetupTestDB(t)
	tokens := repository.NewTokenRepository(db)
	user := testutil.CreateTestUser(t, db, "alice", "alice@example.com", "pw")

	var got any
	app := fiber.New()
	app.Get("/protected", AuthRequired(tokens), func(c *fiber.Ctx) error {
		got = c.UserContext().Value(UserIDKey)
		return c.SendStatus(http.StatusOK)
	})

	plain, err := auth.Issue(context.Background(), tokens, user.ID, "auth_token")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+plain)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	_ = resp.Body.Close()

	assert.Equal(t, user.ID, got)
}
