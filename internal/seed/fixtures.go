package seed

import (
	"errors"
	"fmt"
	"os"

	"incognitor/internal/content"
	"incognitor/internal/models"

	"golang.org/x/crypto/bcrypt"
	"gopkg.in/yaml.v3"
	"gorm.io/gorm"
)

// Fixture holds curated demo content loaded from a YAML file. Curated
// items are deterministic, unlike the random factory output, so demo
// environments always show the same front page.
type Fixture struct {
	Users []struct {
		Username string `yaml:"username"`
		Email    string `yaml:"email"`
		Password string `yaml:"password"`
	} `yaml:"users"`
	Posts []fixtureItem `yaml:"posts"`
	Blogs []fixtureItem `yaml:"blogs"`
	Events []struct {
		fixtureItem `yaml:",inline"`
		From        string `yaml:"from"`
		To          string `yaml:"to"`
		Location    string `yaml:"location"`
	} `yaml:"events"`
}

type fixtureItem struct {
	Author  string `yaml:"author"`
	Title   string `yaml:"title"`
	Content string `yaml:"content"`
	Tags    string `yaml:"tags"`
}

// LoadFixture reads and applies a curated YAML fixture file.
func LoadFixture(db *gorm.DB, path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading fixture: %w", err)
	}

	var fx Fixture
	if err := yaml.Unmarshal(raw, &fx); err != nil {
		return fmt.Errorf("parsing fixture: %w", err)
	}

	byUsername := map[string]*models.User{}
	for _, u := range fx.Users {
		user, err := upsertUser(db, u.Username, u.Email, u.Password)
		if err != nil {
			return err
		}
		byUsername[u.Username] = user
	}

	for _, p := range fx.Posts {
		user := byUsername[p.Author]
		if user == nil {
			return fmt.Errorf("fixture post %q references unknown user %q", p.Title, p.Author)
		}
		post := &models.Post{}
		applyFixtureItem(&post.ContentBase, p, user)
		post.Content = p.Content
		post.Excerpt = content.Excerpt(p.Content)
		if err := db.Create(post).Error; err != nil {
			return fmt.Errorf("fixture post %q: %w", p.Title, err)
		}
	}

	for _, b := range fx.Blogs {
		user := byUsername[b.Author]
		if user == nil {
			return fmt.Errorf("fixture blog %q references unknown user %q", b.Title, b.Author)
		}
		blog := &models.Blog{}
		applyFixtureItem(&blog.ContentBase, b, user)
		blog.Content = b.Content
		blog.Excerpt = content.Excerpt(b.Content)
		if err := db.Create(blog).Error; err != nil {
			return fmt.Errorf("fixture blog %q: %w", b.Title, err)
		}
	}

	for _, e := range fx.Events {
		user := byUsername[e.Author]
		if user == nil {
			return fmt.Errorf("fixture event %q references unknown user %q", e.Title, e.Author)
		}
		event := &models.Event{}
		applyFixtureItem(&event.ContentBase, e.fixtureItem, user)
		event.From = e.From
		event.To = e.To
		event.Location = e.Location
		if err := db.Create(event).Error; err != nil {
			return fmt.Errorf("fixture event %q: %w", e.Title, err)
		}
	}

	return nil
}

func upsertUser(db *gorm.DB, username, email, password string) (*models.User, error) {
	var existing models.User
	err := db.Where("username = ?", username).First(&existing).Error
	if err == nil {
		return &existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("fixture user %q: %w", username, err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		return nil, err
	}
	user := &models.User{
		Username: username,
		Email:    email,
		Password: string(hash),
	}
	if err := db.Create(user).Error; err != nil {
		return nil, fmt.Errorf("fixture user %q: %w", username, err)
	}
	return user, nil
}

func applyFixtureItem(base *models.ContentBase, item fixtureItem, user *models.User) {
	base.UserID = user.ID
	base.Title = content.SanitizeTitle(item.Title)
	base.Slug = content.SlugBase(base.Title)
	base.Tags = content.NormalizeTags(item.Tags)
}
