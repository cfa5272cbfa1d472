// Package seed provides helpers to create test and demo data for the
// application database. These helpers are intended for development and
// testing only.
package seed

import (
	"fmt"
	"log"
	"math/rand"
	"strings"
	"time"

	"incognitor/internal/content"
	"incognitor/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Options configuration for the seeder
type Options struct {
	NumUsers    int
	NumPosts    int
	NumBlogs    int
	NumEvents   int
	ShouldClean bool
}

var tagPool = []string{
	"#tech", "#travel", "#food", "#music", "#art", "#books",
	"#fitness", "#gaming", "#science", "#nature", "#photography",
}

// Run populates the database with fake users and content.
func Run(db *gorm.DB, opts Options) error {
	gofakeit.Seed(time.Now().UnixNano())
	r := rand.New(rand.NewSource(time.Now().UnixNano()))

	if opts.ShouldClean {
		if err := clean(db); err != nil {
			return err
		}
	}

	users, err := createUsers(db, opts.NumUsers)
	if err != nil {
		return err
	}

	for i := 0; i < opts.NumPosts; i++ {
		user := users[r.Intn(len(users))]
		post := &models.Post{}
		fillBase(&post.ContentBase, user, r)
		post.Content = gofakeit.Paragraph(2, 4, 8, " ")
		post.Excerpt = content.Excerpt(post.Content)
		if err := db.Create(post).Error; err != nil {
			return fmt.Errorf("seeding post: %w", err)
		}
		if err := addComments(db, post, users, r); err != nil {
			return err
		}
	}

	for i := 0; i < opts.NumBlogs; i++ {
		user := users[r.Intn(len(users))]
		blog := &models.Blog{}
		fillBase(&blog.ContentBase, user, r)
		blog.Content = gofakeit.Paragraph(3, 5, 10, " ")
		blog.Excerpt = content.Excerpt(blog.Content)
		if err := db.Create(blog).Error; err != nil {
			return fmt.Errorf("seeding blog: %w", err)
		}
	}

	for i := 0; i < opts.NumEvents; i++ {
		user := users[r.Intn(len(users))]
		event := &models.Event{}
		fillBase(&event.ContentBase, user, r)
		event.From = fmt.Sprintf("%02d:00", 8+r.Intn(10))
		event.To = fmt.Sprintf("%02d:00", 18+r.Intn(6))
		event.Location = gofakeit.URL()
		if err := db.Create(event).Error; err != nil {
			return fmt.Errorf("seeding event: %w", err)
		}
	}

	log.Printf("Seeded %d users, %d posts, %d blogs, %d events",
		len(users), opts.NumPosts, opts.NumBlogs, opts.NumEvents)
	return nil
}

func clean(db *gorm.DB) error {
	for _, model := range []any{
		&models.Comment{}, &models.Thumbnail{}, &models.Post{},
		&models.Blog{}, &models.Event{}, &models.AuthToken{}, &models.User{},
	} {
		if err := db.Unscoped().Where("1 = 1").Delete(model).Error; err != nil {
			return fmt.Errorf("cleaning: %w", err)
		}
	}
	return nil
}

func createUsers(db *gorm.DB, n int) ([]*models.User, error) {
	if n < 1 {
		n = 1
	}
	hash, err := bcrypt.GenerateFromPassword([]byte("password"), bcrypt.MinCost)
	if err != nil {
		return nil, err
	}

	users := make([]*models.User, 0, n)
	for i := 0; i < n; i++ {
		user := &models.User{
			Username: fmt.Sprintf("%s%d", strings.ToLower(gofakeit.Username()), i),
			Email:    fmt.Sprintf("user%d.%s", i, gofakeit.Email()),
			Password: string(hash),
			Avatar:   fmt.Sprintf("https://i.pravatar.cc/150?u=%s", gofakeit.UUID()),
		}
		if err := db.Create(user).Error; err != nil {
			return nil, fmt.Errorf("seeding user: %w", err)
		}
		users = append(users, user)
	}
	return users, nil
}

func fillBase(base *models.ContentBase, user *models.User, r *rand.Rand) {
	title := strings.TrimSuffix(gofakeit.Sentence(r.Intn(5)+3), ".")
	base.UserID = user.ID
	base.Title = title
	base.Slug = content.SlugBase(title) + "-" + gofakeit.LetterN(6)
	base.Tags = content.NormalizeTags(randomTags(r))
	base.CreatedAt = time.Now().Add(-time.Duration(r.Intn(90*24)) * time.Hour)
}

func randomTags(r *rand.Rand) string {
	n := r.Intn(3) + 1
	picked := make([]string, 0, n)
	for _, idx := range r.Perm(len(tagPool))[:n] {
		picked = append(picked, tagPool[idx])
	}
	return strings.Join(picked, " ")
}

func addComments(db *gorm.DB, post *models.Post, users []*models.User, r *rand.Rand) error {
	for i := 0; i < r.Intn(4); i++ {
		comment := &models.Comment{
			PostID:  post.ID,
			UserID:  users[r.Intn(len(users))].ID,
			Content: gofakeit.Sentence(r.Intn(10) + 3),
		}
		if err := db.Create(comment).Error; err != nil {
			return fmt.Errorf("seeding comment: %w", err)
		}
	}
	return nil
}
