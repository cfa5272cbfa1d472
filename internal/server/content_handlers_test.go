package server

import (
	"net/http"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTestPost(t *testing.T, app *fiber.App, token, title, body string) map[string]any {
	t.Helper()
	resp, respBody := jsonRequest(t, app, http.MethodPost, "/api/content", map[string]string{
		"type":    "post",
		"title":   title,
		"content": body,
		"tags":    "#go #testing",
	}, token)
	require.Equal(t, http.StatusCreated, resp.StatusCode, "create body: %v", respBody)
	data, ok := respBody["data"].(map[string]any)
	require.True(t, ok)
	return data
}

func TestCreatePost(t *testing.T) {
	_, app, _ := setupTestServer(t)
	token := registerTestUser(t, app, "alice", "alice@example.com", "pw")

	data := createTestPost(t, app, token, "Hello World", "First sentence. Second sentence. Third sentence.")

	assert.Equal(t, "Hello World", data["title"])
	assert.Equal(t, "hello-world", data["slug"])
	assert.Equal(t, "#go #testing", data["tags"])
	assert.Equal(t, "First sentence. Second sentence.", data["excerpt"])

	author, ok := data["author"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "alice", author["username"])
}

func TestCreateContentValidation(t *testing.T) {
	_, app, _ := setupTestServer(t)
	token := registerTestUser(t, app, "alice", "alice@example.com", "pw")

	t.Run("missing fields", func(t *testing.T) {
		resp, body := jsonRequest(t, app, http.MethodPost, "/api/content", map[string]string{
			"type": "post",
		}, token)
		assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
		fields := body["errors"].(map[string]any)
		assert.Contains(t, fields, "title")
		assert.Contains(t, fields, "content")
	})

	t.Run("unknown type", func(t *testing.T) {
		resp, _ := jsonRequest(t, app, http.MethodPost, "/api/content", map[string]string{
			"type": "podcast", "title": "X", "content": "Y",
		}, token)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("event requires schedule", func(t *testing.T) {
		resp, body := jsonRequest(t, app, http.MethodPost, "/api/content", map[string]string{
			"type": "event", "title": "Meetup",
		}, token)
		assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
		fields := body["errors"].(map[string]any)
		assert.Contains(t, fields, "from")
		assert.Contains(t, fields, "to")
		assert.Contains(t, fields, "location")
	})

	t.Run("requires auth", func(t *testing.T) {
		resp, _ := jsonRequest(t, app, http.MethodPost, "/api/content", map[string]string{
			"type": "post", "title": "X", "content": "Y",
		}, "")
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})
}

func TestDuplicateTitlesGetDistinctSlugs(t *testing.T) {
	_, app, _ := setupTestServer(t)
	token := registerTestUser(t, app, "alice", "alice@example.com", "pw")

	first := createTestPost(t, app, token, "Hello World", "Body one.")
	second := createTestPost(t, app, token, "Hello World", "Body two.")
	third := createTestPost(t, app, token, "Hello World", "Body three.")

	assert.Equal(t, "hello-world", first["slug"])
	assert.Equal(t, "hello-world-2", second["slug"])
	assert.Equal(t, "hello-world-3", third["slug"])
}

func TestCreateSanitizesHTML(t *testing.T) {
	_, app, _ := setupTestServer(t)
	token := registerTestUser(t, app, "alice", "alice@example.com", "pw")

	data := createTestPost(t, app, token,
		"<b>Bold Title</b>",
		`<p>Hello</p><script>alert(1)</script>`)

	assert.Equal(t, "Bold Title", data["title"])
	assert.Equal(t, "bold-title", data["slug"])
	assert.NotContains(t, data["content"], "<script>")
	assert.Contains(t, data["content"], "<p>Hello</p>")
}

func TestGetContentBySlug(t *testing.T) {
	_, app, _ := setupTestServer(t)
	token := registerTestUser(t, app, "alice", "alice@example.com", "pw")
	createTestPost(t, app, token, "Findable", "Body.")

	resp, body := jsonRequest(t, app, http.MethodGet, "/api/content/findable?type=post", nil, token)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	data := body["data"].(map[string]any)
	assert.Equal(t, "Findable", data["title"])

	resp, _ = jsonRequest(t, app, http.MethodGet, "/api/content/missing?type=post", nil, token)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	// Slugs are scoped per kind.
	resp, _ = jsonRequest(t, app, http.MethodGet, "/api/content/findable?type=blog", nil, token)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestFeedPagination(t *testing.T) {
	_, app, _ := setupTestServer(t)
	token := registerTestUser(t, app, "alice", "alice@example.com", "pw")

	for i := 0; i < 7; i++ {
		createTestPost(t, app, token, "Post "+strings.Repeat("x", i+1), "Body.")
	}

	resp, body := jsonRequest(t, app, http.MethodGet, "/api/contents?type=post", nil, "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, body["data"].([]any), 5)

	meta := body["meta"].(map[string]any)
	assert.Equal(t, float64(1), meta["current_page"])
	assert.Equal(t, float64(2), meta["last_page"])
	assert.Equal(t, float64(7), meta["total"])

	resp, body = jsonRequest(t, app, http.MethodGet, "/api/contents?type=post&page=2", nil, "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, body["data"].([]any), 2)

	// Unknown kind is rejected at the boundary.
	resp, _ = jsonRequest(t, app, http.MethodGet, "/api/contents?type=podcast", nil, "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestUpdateContent(t *testing.T) {
	_, app, _ := setupTestServer(t)
	token := registerTestUser(t, app, "alice", "alice@example.com", "pw")
	createTestPost(t, app, token, "Original", "Original body.")

	resp, body := jsonRequest(t, app, http.MethodPatch, "/api/content/original?type=post", map[string]string{
		"title": "Renamed", "content": "New body.", "tags": "#new",
	}, token)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	data := body["data"].(map[string]any)
	assert.Equal(t, "Renamed", data["title"])
	assert.Equal(t, "renamed", data["slug"])
	assert.Equal(t, "#new", data["tags"])

	// The old slug is gone.
	resp, _ = jsonRequest(t, app, http.MethodGet, "/api/content/original?type=post", nil, token)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestUpdateIsNotOwnershipScoped(t *testing.T) {
	_, app, _ := setupTestServer(t)
	owner := registerTestUser(t, app, "owner", "owner@example.com", "pw")
	other := registerTestUser(t, app, "other", "other@example.com", "pw")

	createTestPost(t, app, owner, "Shared", "Body.")

	// Any authenticated user can update by slug; delete is the
	// ownership-checked operation.
	resp, _ := jsonRequest(t, app, http.MethodPatch, "/api/content/shared?type=post", map[string]string{
		"title": "Shared", "content": "Edited by someone else.",
	}, other)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestDeleteContent(t *testing.T) {
	_, app, _ := setupTestServer(t)
	owner := registerTestUser(t, app, "owner", "owner@example.com", "pw")
	other := registerTestUser(t, app, "other", "other@example.com", "pw")

	createTestPost(t, app, owner, "Mine", "Body.")

	t.Run("non-owner delete reports not found", func(t *testing.T) {
		resp, _ := jsonRequest(t, app, http.MethodDelete, "/api/content/mine?type=post", nil, other)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("owner delete succeeds", func(t *testing.T) {
		resp, body := jsonRequest(t, app, http.MethodDelete, "/api/content/mine?type=post", nil, owner)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "Content deleted successfully", body["message"])
	})

	t.Run("deleted item is gone everywhere", func(t *testing.T) {
		resp, _ := jsonRequest(t, app, http.MethodGet, "/api/content/mine?type=post", nil, owner)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)

		resp, body := jsonRequest(t, app, http.MethodGet, "/api/contents?type=post", nil, "")
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Empty(t, body["data"])
	})

	t.Run("second delete is not found", func(t *testing.T) {
		resp, _ := jsonRequest(t, app, http.MethodDelete, "/api/content/mine?type=post", nil, owner)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})
}

func TestMyContent(t *testing.T) {
	_, app, _ := setupTestServer(t)
	alice := registerTestUser(t, app, "alice", "alice@example.com", "pw")
	bob := registerTestUser(t, app, "bob", "bob@example.com", "pw")

	createTestPost(t, app, alice, "Alice post", "Body.")
	createTestPost(t, app, bob, "Bob post", "Body.")

	resp, body := jsonRequest(t, app, http.MethodGet, "/api/me/posts?type=post", nil, alice)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "List of your posts", body["message"])

	data := body["data"].([]any)
	require.Len(t, data, 1)
	assert.Equal(t, "Alice post", data[0].(map[string]any)["title"])
}

func TestTagsAggregation(t *testing.T) {
	_, app, _ := setupTestServer(t)
	token := registerTestUser(t, app, "alice", "alice@example.com", "pw")

	resp, respBody := jsonRequest(t, app, http.MethodPost, "/api/content", map[string]string{
		"type": "post", "title": "One", "content": "Body.", "tags": " #go   #web ",
	}, token)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	_ = respBody

	resp, _ = jsonRequest(t, app, http.MethodPost, "/api/content", map[string]string{
		"type": "blog", "title": "Two", "content": "Body.", "tags": "#go #infra",
	}, token)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, body := jsonRequest(t, app, http.MethodGet, "/api/tags", nil, "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var tags []string
	for _, v := range body["tags"].([]any) {
		tags = append(tags, v.(string))
	}
	// De-duplicated across kinds and sorted.
	assert.Equal(t, []string{"#go", "#infra", "#web"}, tags)
}

func TestBlogAndEventShapes(t *testing.T) {
	_, app, _ := setupTestServer(t)
	token := registerTestUser(t, app, "alice", "alice@example.com", "pw")

	resp, body := jsonRequest(t, app, http.MethodPost, "/api/content", map[string]string{
		"type": "blog", "title": "Long read", "content": "One. Two. Three.",
	}, token)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	blog := body["data"].(map[string]any)
	assert.Equal(t, "One. Two.", blog["excerpt"])
	assert.NotContains(t, blog, "from")

	resp, body = jsonRequest(t, app, http.MethodPost, "/api/content", map[string]string{
		"type": "event", "title": "Meetup",
		"from": "18:00", "to": "20:00", "location": "https://example.com/venue",
	}, token)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	event := body["data"].(map[string]any)
	assert.Equal(t, "18:00", event["from"])
	assert.Equal(t, "20:00", event["to"])
	assert.Equal(t, "https://example.com/venue", event["location"])
	assert.NotContains(t, event, "content")
}
