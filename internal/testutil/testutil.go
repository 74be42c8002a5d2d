// Package testutil provides shared test doubles and fixtures.
package testutil

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"sync"
	"testing"
	"time"

	"threads/internal/cache"
	"threads/internal/database"
	"threads/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// NewSQLiteDB returns a migrated in-memory database closed at test cleanup.
func NewSQLiteDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.OpenSQLite(":memory:")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = database.Close(db) })
	return db
}

// NewRedis starts a miniredis server and returns a client connected to it.
func NewRedis(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return client, mr
}

// NewCacheStore returns a cache store backed by miniredis.
func NewCacheStore(t *testing.T) (*cache.Store, *miniredis.Miniredis) {
	t.Helper()
	client, mr := NewRedis(t)
	return cache.NewStore(client, time.Minute), mr
}

// CreateUser inserts a user with a placeholder password hash.
func CreateUser(t *testing.T, db *gorm.DB, username string) *models.User {
	t.Helper()
	u := &models.User{
		Name:     username,
		Username: username,
		Email:    username + "@example.com",
		Password: "not-a-real-hash",
	}
	if err := db.Create(u).Error; err != nil {
		t.Fatalf("create user %s: %v", username, err)
	}
	return u
}

// CreatePost inserts a post authored by userID.
func CreatePost(t *testing.T, db *gorm.DB, userID uint, text string) *models.Post {
	t.Helper()
	p := &models.Post{PostedBy: userID, Text: text}
	if err := db.Omit("Reactions", "Replies").Create(p).Error; err != nil {
		t.Fatalf("create post: %v", err)
	}
	return p
}

// PNGDataURL renders a solid w x h PNG as a base64 data URL.
func PNGDataURL(w, h int) string {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x % 256), G: uint8(y % 256), B: 128, A: 255})
		}
	}
	var buf bytes.Buffer
	_ = png.Encode(&buf, img)
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes())
}

// ErrAssetHostDown is returned by AssetHostStub when failures are switched on.
var ErrAssetHostDown = errors.New("asset host unavailable")

// AssetHostStub records uploads and destroys in memory.
type AssetHostStub struct {
	mu          sync.Mutex
	next        int
	Uploaded    []string
	Destroyed   []string
	FailUpload  bool
	FailDestroy bool
}

// Upload returns a fake URL for payload.
func (s *AssetHostStub) Upload(_ context.Context, payload string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailUpload {
		return "", ErrAssetHostDown
	}
	if payload == "" {
		return "", errors.New("empty payload")
	}
	s.next++
	url := fmt.Sprintf("https://assets.test/%d.jpg", s.next)
	s.Uploaded = append(s.Uploaded, url)
	return url, nil
}

// Destroy records url as destroyed.
func (s *AssetHostStub) Destroy(_ context.Context, url string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailDestroy {
		return ErrAssetHostDown
	}
	s.Destroyed = append(s.Destroyed, url)
	return nil
}
