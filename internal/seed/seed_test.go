package seed

import (
	"os"
	"testing"

	"incognitor/internal/models"
	"incognitor/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunCreatesRequestedVolume(t *testing.T) {
	db := testutil.SetupTestDB(t)

	err := Run(db, Options{NumUsers: 3, NumPosts: 5, NumBlogs: 2, NumEvents: 1})
	require.NoError(t, err)

	var users, posts, blogs, events int64
	require.NoError(t, db.Model(&models.User{}).Count(&users).Error)
	require.NoError(t, db.Model(&models.Post{}).Count(&posts).Error)
	require.NoError(t, db.Model(&models.Blog{}).Count(&blogs).Error)
	require.NoError(t, db.Model(&models.Event{}).Count(&events).Error)

	assert.Equal(t, int64(3), users)
	assert.Equal(t, int64(5), posts)
	assert.Equal(t, int64(2), blogs)
	assert.Equal(t, int64(1), events)

	// Every seeded post has a slug and an excerpt derived from its body.
	var sample models.Post
	require.NoError(t, db.First(&sample).Error)
	assert.NotEmpty(t, sample.Slug)
	assert.NotEmpty(t, sample.Excerpt)
	assert.NotZero(t, sample.UserID)
}

func TestRunCleanResets(t *testing.T) {
	db := testutil.SetupTestDB(t)

	require.NoError(t, Run(db, Options{NumUsers: 2, NumPosts: 3}))
	require.NoError(t, Run(db, Options{NumUsers: 1, NumPosts: 1, ShouldClean: true}))

	var users, posts int64
	require.NoError(t, db.Model(&models.User{}).Count(&users).Error)
	require.NoError(t, db.Model(&models.Post{}).Count(&posts).Error)
	assert.Equal(t, int64(1), users)
	assert.Equal(t, int64(1), posts)
}

func TestLoadFixture(t *testing.T) {
	db := testutil.SetupTestDB(t)

	path := t.TempDir() + "/fixture.yml"
	fixture := `
users:
  - username: demo
    email: demo@example.com
    password: password
posts:
  - author: demo
    title: Welcome Post
    content: "First. Second. Third."
    tags: "#welcome #demo"
events:
  - author: demo
    title: Launch Party
    from: "18:00"
    to: "22:00"
    location: https://example.com/party
`
	require.NoError(t, writeFile(path, fixture))
	require.NoError(t, LoadFixture(db, path))

	var post models.Post
	require.NoError(t, db.Where("slug = ?", "welcome-post").First(&post).Error)
	assert.Equal(t, "First. Second.", post.Excerpt)
	assert.Equal(t, "#welcome #demo", post.Tags)

	var event models.Event
	require.NoError(t, db.Where("slug = ?", "launch-party").First(&event).Error)
	assert.Equal(t, "18:00", event.From)

	// Loading twice reuses the user instead of failing on uniqueness.
	require.NoError(t, LoadFixture(db, path))
	var users int64
	require.NoError(t, db.Model(&models.User{}).Count(&users).Error)
	assert.Equal(t, int64(1), users)
}

func TestLoadFixtureUnknownAuthor(t *testing.T) {
	db := testutil.SetupTestDB(t)

	path := t.TempDir() + "/fixture.yml"
	require.NoError(t, writeFile(path, `
posts:
  - author: ghost
    title: Orphan
    content: Body.
`))
	assert.Error(t, LoadFixture(db, path))
}

func writeFile(path, content string) error {
	return os.WriteFile(path, []byte(content), 0o644)
}
