// Package testutil provides shared test fixtures and doubles for backend tests.
package testutil

import (
	"context"
	"testing"

	"incognitor/internal/cache"
	"incognitor/internal/database"
	"incognitor/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// SetupTestDB opens an in-memory SQLite database with the full schema.
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.ConnectSQLite(":memory:")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	return db
}

// SetupTestRedis starts a miniredis server and installs a client backed by it
// as the process-wide cache client. The previous client is restored when the
// test finishes.
func SetupTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("start miniredis: %v", err)
	}
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	prev := cache.GetClient()
	cache.SetClient(rdb)
	t.Cleanup(func() {
		cache.SetClient(prev)
		_ = rdb.Close()
		mr.Close()
	})
	return mr, rdb
}

// CreateTestUser inserts a user with a bcrypt-hashed password.
func CreateTestUser(t *testing.T, db *gorm.DB, username, email, password string) *models.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	user := &models.User{Username: username, Email: email, Password: string(hash)}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}
	return user
}

// SummarizerStub is a canned summarizer for tests.
type SummarizerStub struct {
	Text string
	Err  error
	Seen string
}

// Summarize records the input and returns the canned response.
func (s *SummarizerStub) Summarize(_ context.Context, text string) (string, error) {
	s.Seen = text
	if s.Err != nil {
		return "", s.Err
	}
	return s.Text, nil
}
