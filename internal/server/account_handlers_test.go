package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"incognitor/internal/config"
	"incognitor/internal/models"
	"incognitor/internal/testutil"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupTestServer(t *testing.T) (*Server, *fiber.App, *gorm.DB) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	_, rdb := testutil.SetupTestRedis(t)

	cfg := &config.Config{
		Env:          "test",
		Port:         "0",
		FeatureFlags: "post_summary=on",
	}
	srv, err := NewServerWithDeps(cfg, db, rdb)
	require.NoError(t, err)
	return srv, srv.App(), db
}

func jsonRequest(t *testing.T, app *fiber.App, method, path string, body any, token string) (*http.Response, map[string]any) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	_ = resp.Body.Close()

	var parsed map[string]any
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &parsed), "body: %s", raw)
	}
	return resp, parsed
}

func registerTestUser(t *testing.T, app *fiber.App, username, email, password string) string {
	t.Helper()
	resp, body := jsonRequest(t, app, http.MethodPost, "/api/register", map[string]string{
		"username":              username,
		"email":                 email,
		"password":              password,
		"password_confirmation": password,
	}, "")
	require.Equal(t, http.StatusCreated, resp.StatusCode, "register body: %v", body)

	token, _ := body["token"].(string)
	require.NotEmpty(t, token)
	return token
}

func TestRegister(t *testing.T) {
	_, app, db := setupTestServer(t)

	resp, body := jsonRequest(t, app, http.MethodPost, "/api/register", map[string]string{
		"username":              "alice",
		"email":                 "alice@example.com",
		"password":              "pw",
		"password_confirmation": "pw",
	}, "")

	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, "User registered successfully", body["message"])
	assert.NotEmpty(t, body["token"])

	user, ok := body["user"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "alice", user["username"])
	// Password hash never leaves the server.
	assert.NotContains(t, user, "password")

	var count int64
	require.NoError(t, db.Model(&models.User{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestRegisterValidation(t *testing.T) {
	_, app, db := setupTestServer(t)
	registerTestUser(t, app, "alice", "alice@example.com", "pw")

	tests := []struct {
		name      string
		body      map[string]string
		wantField string
	}{
		{
			name: "duplicate email",
			body: map[string]string{
				"username": "alice2", "email": "alice@example.com",
				"password": "pw", "password_confirmation": "pw",
			},
			wantField: "email",
		},
		{
			name: "duplicate username",
			body: map[string]string{
				"username": "alice", "email": "other@example.com",
				"password": "pw", "password_confirmation": "pw",
			},
			wantField: "username",
		},
		{
			name: "password too short",
			body: map[string]string{
				"username": "bob", "email": "bob@example.com",
				"password": "x", "password_confirmation": "x",
			},
			wantField: "password",
		},
		{
			name: "confirmation mismatch",
			body: map[string]string{
				"username": "bob", "email": "bob@example.com",
				"password": "pw", "password_confirmation": "other",
			},
			wantField: "password",
		},
		{
			name: "invalid email",
			body: map[string]string{
				"username": "bob", "email": "not-an-email",
				"password": "pw", "password_confirmation": "pw",
			},
			wantField: "email",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, body := jsonRequest(t, app, http.MethodPost, "/api/register", tt.body, "")
			assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

			fields, ok := body["errors"].(map[string]any)
			require.True(t, ok, "body: %v", body)
			assert.Contains(t, fields, tt.wantField)
		})
	}

	// Failed registrations leave no partial rows behind.
	var count int64
	require.NoError(t, db.Model(&models.User{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestLogin(t *testing.T) {
	_, app, _ := setupTestServer(t)
	registerTestUser(t, app, "alice", "alice@example.com", "secret")

	t.Run("by email", func(t *testing.T) {
		resp, body := jsonRequest(t, app, http.MethodPost, "/api/login", map[string]string{
			"identifier": "alice@example.com", "password": "secret",
		}, "")
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "User Logged In Successfully", body["message"])
		assert.NotEmpty(t, body["token"])
	})

	t.Run("by username", func(t *testing.T) {
		resp, _ := jsonRequest(t, app, http.MethodPost, "/api/login", map[string]string{
			"identifier": "alice", "password": "secret",
		}, "")
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("unknown identifier", func(t *testing.T) {
		resp, _ := jsonRequest(t, app, http.MethodPost, "/api/login", map[string]string{
			"identifier": "nobody", "password": "secret",
		}, "")
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("wrong password", func(t *testing.T) {
		resp, body := jsonRequest(t, app, http.MethodPost, "/api/login", map[string]string{
			"identifier": "alice", "password": "wrong",
		}, "")
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		assert.Equal(t, "Password does not match our records.", body["error"])
	})
}

func TestLogoutRevokesAllSessions(t *testing.T) {
	_, app, _ := setupTestServer(t)
	first := registerTestUser(t, app, "alice", "alice@example.com", "secret")

	// Second session via login.
	resp, body := jsonRequest(t, app, http.MethodPost, "/api/login", map[string]string{
		"identifier": "alice", "password": "secret",
	}, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	second := body["token"].(string)

	resp, _ = jsonRequest(t, app, http.MethodPost, "/api/logout", nil, second)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	// Both tokens stop working.
	for _, token := range []string{first, second} {
		resp, _ := jsonRequest(t, app, http.MethodGet, "/api/me", nil, token)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	}
}

func TestMe(t *testing.T) {
	_, app, _ := setupTestServer(t)
	token := registerTestUser(t, app, "alice", "alice@example.com", "secret")

	resp, body := jsonRequest(t, app, http.MethodGet, "/api/me", nil, token)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	user, ok := body["user"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "alice", user["username"])
	assert.Equal(t, "alice@example.com", user["email"])
}

func TestMeRequiresAuth(t *testing.T) {
	_, app, _ := setupTestServer(t)

	resp, _ := jsonRequest(t, app, http.MethodGet, "/api/me", nil, "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, _ = jsonRequest(t, app, http.MethodGet, "/api/me", nil, "not|a-real-token")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestUpdateProfile(t *testing.T) {
	_, app, _ := setupTestServer(t)
	token := registerTestUser(t, app, "alice", "alice@example.com", "secret")
	registerTestUser(t, app, "bob", "bob@example.com", "secret")

	t.Run("change username", func(t *testing.T) {
		resp, body := jsonRequest(t, app, http.MethodPost, "/api/profile/update", map[string]string{
			"username": "alice-renamed",
		}, token)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		user := body["user"].(map[string]any)
		assert.Equal(t, "alice-renamed", user["username"])
		// Untouched fields survive a partial update.
		assert.Equal(t, "alice@example.com", user["email"])
	})

	t.Run("own email is not a conflict", func(t *testing.T) {
		resp, _ := jsonRequest(t, app, http.MethodPost, "/api/profile/update", map[string]string{
			"email": "alice@example.com",
		}, token)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("taken email rejected", func(t *testing.T) {
		resp, body := jsonRequest(t, app, http.MethodPost, "/api/profile/update", map[string]string{
			"email": "bob@example.com",
		}, token)
		assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
		fields := body["errors"].(map[string]any)
		assert.Contains(t, fields, "email")
	})
}

func TestForgotPassword(t *testing.T) {
	_, app, _ := setupTestServer(t)
	registerTestUser(t, app, "alice", "alice@example.com", "oldpassword")

	resp, _ := jsonRequest(t, app, http.MethodPost, "/api/forgot-password", map[string]string{
		"identifier": "alice@example.com", "password": "short",
	}, "")
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

	resp, _ = jsonRequest(t, app, http.MethodPost, "/api/forgot-password", map[string]string{
		"identifier": "alice@example.com", "password": "newpassword",
	}, "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	// Old password no longer works, new one does.
	resp, _ = jsonRequest(t, app, http.MethodPost, "/api/login", map[string]string{
		"identifier": "alice", "password": "oldpassword",
	}, "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, _ = jsonRequest(t, app, http.MethodPost, "/api/login", map[string]string{
		"identifier": "alice", "password": "newpassword",
	}, "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestListPeoplePagination(t *testing.T) {
	_, app, _ := setupTestServer(t)
	for i := 0; i < 7; i++ {
		registerTestUser(t, app,
			fmt.Sprintf("user%d", i), fmt.Sprintf("user%d@example.com", i), "pw")
	}

	resp, body := jsonRequest(t, app, http.MethodGet, "/api/people", nil, "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	data := body["data"].([]any)
	assert.Len(t, data, 5)
	meta := body["meta"].(map[string]any)
	assert.Equal(t, float64(1), meta["current_page"])
	assert.Equal(t, float64(2), meta["last_page"])
	assert.Equal(t, float64(7), meta["total"])

	resp, body = jsonRequest(t, app, http.MethodGet, "/api/people?page=2", nil, "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, body["data"].([]any), 2)
}
