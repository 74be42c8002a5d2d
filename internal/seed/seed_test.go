package seed

import (
	"os"
	"path/filepath"
	"testing"

	"threads/internal/models"
	"threads/internal/testutil"
	"threads/internal/validation"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestBuiltinPresets(t *testing.T) {
	presets, err := LoadPresets("")
	require.NoError(t, err)
	assert.Equal(t, []string{"demo", "populated", "small"}, PresetNames(presets))
	assert.Equal(t, 8, presets["small"].Users)
}

func TestLoadPresetsOverlaysFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "presets.yml")
	require.NoError(t, os.WriteFile(path, []byte(`
small:
  users: 2
tiny:
  users: 1
  posts_per_user: 1
`), 0o600))

	presets, err := LoadPresets(path)
	require.NoError(t, err)
	assert.Equal(t, 2, presets["small"].Users)
	assert.Equal(t, 1, presets["tiny"].PostsPerUser)
	assert.Contains(t, presets, "demo")
}

func TestParsePresetsRejectsInvalid(t *testing.T) {
	_, err := ParsePresets([]byte("broken:\n  users: 0\n"))
	assert.Error(t, err)

	_, err = ParsePresets([]byte("broken:\n  users: 3\n  image_ratio: 2\n"))
	assert.Error(t, err)

	_, err = ParsePresets([]byte("not: [valid"))
	assert.Error(t, err)
}

func TestSeederRun(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	opts := Options{
		Users:            5,
		PostsPerUser:     2,
		FollowsPerUser:   2,
		ReactionsPerPost: 3,
		RepliesPerPost:   2,
		ImageRatio:       0.5,
		RandomSeed:       42,
	}

	summary, err := NewSeeder(db, opts).Run()
	require.NoError(t, err)
	assert.Equal(t, 5, summary.Users)
	assert.Equal(t, 10, summary.Follows)
	assert.Equal(t, 10, summary.Posts)
	assert.Equal(t, 30, summary.Reactions)

	var users []models.User
	require.NoError(t, db.Find(&users).Error)
	require.Len(t, users, 5)
	for _, u := range users {
		assert.NoError(t, validation.ValidateUsername(u.Username), u.Username)
	}
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(users[0].Password), []byte(DefaultPassword)))

	var selfFollows int64
	require.NoError(t, db.Model(&models.Follow{}).Where("follower_id = followee_id").Count(&selfFollows).Error)
	assert.Zero(t, selfFollows)

	var posts []models.Post
	require.NoError(t, db.Find(&posts).Error)
	for _, p := range posts {
		assert.NoError(t, validation.ValidatePostText(p.Text))
	}

	var replies int64
	require.NoError(t, db.Model(&models.Reply{}).Count(&replies).Error)
	assert.Equal(t, int64(summary.Replies), replies)
}

func TestSeederClearAll(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	s := NewSeeder(db, Options{Users: 3, PostsPerUser: 1, FollowsPerUser: 1, ReactionsPerPost: 1, RepliesPerPost: 1, RandomSeed: 7})
	_, err := s.Run()
	require.NoError(t, err)

	require.NoError(t, s.ClearAll())

	for _, model := range []interface{}{&models.User{}, &models.Follow{}, &models.Post{}, &models.Reaction{}, &models.Reply{}} {
		var n int64
		require.NoError(t, db.Model(model).Count(&n).Error)
		assert.Zero(t, n, "%T", model)
	}
}

func TestSeederRejectsInvalidOptions(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	_, err := NewSeeder(db, Options{}).Run()
	assert.Error(t, err)
}
