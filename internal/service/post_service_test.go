package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"threads/internal/models"
	"threads/internal/testutil"
	"threads/internal/toggle"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPostService(posts *postRepoStub, host *testutil.AssetHostStub) *PostService {
	return NewPostService(posts, noopUserRepo(), noopFollowRepo(), host)
}

func TestPostService_Create_TextLength(t *testing.T) {
	svc := newPostService(noopPostRepo(), &testutil.AssetHostStub{})
	ctx := context.Background()

	post, err := svc.Create(ctx, CreatePostInput{ActorID: 1, Text: strings.Repeat("a", 500)})
	require.NoError(t, err)
	assert.Equal(t, uint(1), post.PostedBy)
	assert.Equal(t, []uint{}, post.Likes)
	assert.Equal(t, []uint{}, post.Dislikes)
	assert.Equal(t, []models.Reply{}, post.Replies)

	_, err = svc.Create(ctx, CreatePostInput{ActorID: 1, Text: strings.Repeat("a", 501)})
	assertValidationError(t, err)

	_, err = svc.Create(ctx, CreatePostInput{ActorID: 1, Text: ""})
	assertValidationError(t, err)
}

func TestPostService_Create_PostedByMustBeActor(t *testing.T) {
	svc := newPostService(noopPostRepo(), &testutil.AssetHostStub{})
	ctx := context.Background()

	_, err := svc.Create(ctx, CreatePostInput{ActorID: 1, PostedBy: 2, Text: "hi"})
	assertCode(t, err, models.CodeForbidden)

	_, err = svc.Create(ctx, CreatePostInput{ActorID: 1, PostedBy: 1, Text: "hi"})
	assert.NoError(t, err)

	_, err = svc.Create(ctx, CreatePostInput{Text: "hi"})
	assertCode(t, err, models.CodeUnauthorized)
}

func TestPostService_Create_StoresImageReference(t *testing.T) {
	host := &testutil.AssetHostStub{}
	svc := newPostService(noopPostRepo(), host)

	post, err := svc.Create(context.Background(), CreatePostInput{ActorID: 1, Text: "pic", Img: testutil.PNGDataURL(2, 2)})
	require.NoError(t, err)
	assert.Equal(t, "https://assets.test/1.jpg", post.Img)
}

func TestPostService_Create_ImageFailures(t *testing.T) {
	posts := noopPostRepo()
	posts.createFn = func(_ context.Context, _ *models.Post) error {
		t.Fatal("post must not be stored when the upload fails")
		return nil
	}
	svc := newPostService(posts, &testutil.AssetHostStub{FailUpload: true})

	_, err := svc.Create(context.Background(), CreatePostInput{ActorID: 1, Text: "pic", Img: "data"})
	assertCode(t, err, models.CodeInternal)

	// A failed insert releases the uploaded image.
	posts.createFn = func(_ context.Context, _ *models.Post) error {
		return models.NewInternalError(errors.New("db down"))
	}
	host := &testutil.AssetHostStub{}
	svc = newPostService(posts, host)
	_, err = svc.Create(context.Background(), CreatePostInput{ActorID: 1, Text: "pic", Img: "data"})
	assertCode(t, err, models.CodeInternal)
	assert.Equal(t, host.Uploaded, host.Destroyed)
}

func TestPostService_Delete(t *testing.T) {
	posts := noopPostRepo()
	posts.getByIDFn = func(_ context.Context, id uint) (*models.Post, error) {
		return &models.Post{ID: id, PostedBy: 1, Img: "https://assets.test/p.jpg"}, nil
	}
	deleted := 0
	posts.deleteFn = func(_ context.Context, _ uint) error {
		deleted++
		return nil
	}
	host := &testutil.AssetHostStub{}
	svc := newPostService(posts, host)
	ctx := context.Background()

	assertCode(t, svc.Delete(ctx, 2, 10), models.CodeForbidden)
	assert.Zero(t, deleted)

	require.NoError(t, svc.Delete(ctx, 1, 10))
	assert.Equal(t, 1, deleted)
	assert.Equal(t, []string{"https://assets.test/p.jpg"}, host.Destroyed)

	host.FailDestroy = true
	require.NoError(t, svc.Delete(ctx, 1, 10))
	assert.Equal(t, 2, deleted)
}

func TestPostService_Delete_NotFound(t *testing.T) {
	svc := newPostService(noopPostRepo(), &testutil.AssetHostStub{})
	assertCode(t, svc.Delete(context.Background(), 1, 99), models.CodeNotFound)
}

func TestPostService_React(t *testing.T) {
	posts := noopPostRepo()
	posts.reactFn = func(_ context.Context, postID, userID uint, kind models.ReactionKind) (toggle.ReactionOutcome, error) {
		assert.Equal(t, uint(10), postID)
		assert.Equal(t, uint(3), userID)
		assert.Equal(t, models.ReactionDislike, kind)
		return toggle.ReactionSwitched, nil
	}
	posts.getByIDFn = func(_ context.Context, id uint) (*models.Post, error) {
		return &models.Post{ID: id, Likes: []uint{}, Dislikes: []uint{3}}, nil
	}
	svc := newPostService(posts, &testutil.AssetHostStub{})
	ctx := context.Background()

	post, outcome, err := svc.React(ctx, 3, 10, models.ReactionDislike)
	require.NoError(t, err)
	assert.Equal(t, toggle.ReactionSwitched, outcome)
	assert.Equal(t, []uint{3}, post.Dislikes)

	_, _, err = svc.React(ctx, 3, 10, models.ReactionKind("love"))
	assertValidationError(t, err)
}

func TestPostService_FeedUsesFollowees(t *testing.T) {
	follows := noopFollowRepo()
	follows.followeeIDsFn = func(_ context.Context, id uint) ([]uint, error) {
		assert.Equal(t, uint(1), id)
		return []uint{2, 3}, nil
	}
	posts := noopPostRepo()
	posts.listByAuthorsFn = func(_ context.Context, ids []uint) ([]*models.Post, error) {
		assert.Equal(t, []uint{2, 3}, ids)
		return []*models.Post{{ID: 7}}, nil
	}
	svc := NewPostService(posts, noopUserRepo(), follows, &testutil.AssetHostStub{})

	feed, err := svc.Feed(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, feed, 1)
	assert.Equal(t, uint(7), feed[0].ID)
}

func TestPostService_ListByUsername(t *testing.T) {
	users := noopUserRepo()
	users.getProfileFn = func(_ context.Context, name string) (*models.User, error) {
		if name == "bob" {
			return &models.User{ID: 2, Username: "bob"}, nil
		}
		return nil, models.NewNotFoundError("User", name)
	}
	posts := noopPostRepo()
	posts.listByAuthorFn = func(_ context.Context, id uint) ([]*models.Post, error) {
		assert.Equal(t, uint(2), id)
		return []*models.Post{{ID: 5, PostedBy: 2}}, nil
	}
	svc := NewPostService(posts, users, noopFollowRepo(), &testutil.AssetHostStub{})
	ctx := context.Background()

	list, err := svc.ListByUsername(ctx, "bob")
	require.NoError(t, err)
	assert.Len(t, list, 1)

	_, err = svc.ListByUsername(ctx, "ghost")
	assertCode(t, err, models.CodeNotFound)
}
