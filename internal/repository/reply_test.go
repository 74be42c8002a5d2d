package repository

import (
	"context"
	"testing"

	"threads/internal/models"
	"threads/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReplyRepository_DeletePreservesOrder(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	repo := NewReplyRepository(db, nil)
	ctx := context.Background()

	alice := testutil.CreateUser(t, db, "alice")
	post := testutil.CreatePost(t, db, alice.ID, "thread")

	var ids []uint
	for _, text := range []string{"one", "two", "three", "four"} {
		r := &models.Reply{PostID: post.ID, UserID: alice.ID, Text: text, Username: "alice"}
		require.NoError(t, repo.Create(ctx, r))
		ids = append(ids, r.ID)
	}

	require.NoError(t, repo.Delete(ctx, post.ID, ids[1]))

	replies, err := repo.ListByPost(ctx, post.ID)
	require.NoError(t, err)
	var texts []string
	for _, r := range replies {
		texts = append(texts, r.Text)
	}
	assert.Equal(t, []string{"one", "three", "four"}, texts)
}

func TestReplyRepository_NotFound(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	repo := NewReplyRepository(db, nil)
	ctx := context.Background()

	alice := testutil.CreateUser(t, db, "alice")
	post := testutil.CreatePost(t, db, alice.ID, "thread")
	other := testutil.CreatePost(t, db, alice.ID, "other thread")

	r := &models.Reply{PostID: other.ID, UserID: alice.ID, Text: "elsewhere", Username: "alice"}
	require.NoError(t, repo.Create(ctx, r))

	// The reply exists, but not under this post.
	err := repo.Delete(ctx, post.ID, r.ID)
	assert.True(t, models.IsCode(err, models.CodeNotFound))

	err = repo.Create(ctx, &models.Reply{PostID: 999, UserID: alice.ID, Text: "void"})
	assert.True(t, models.IsCode(err, models.CodeNotFound))
}
