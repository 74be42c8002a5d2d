package service

import (
	"context"
	"errors"
	"testing"

	"threads/internal/models"
	"threads/internal/repository"
	"threads/internal/toggle"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// userRepoStub is a stub for repository.UserRepository.
type userRepoStub struct {
	getByIDFn       func(context.Context, uint) (*models.User, error)
	existsByIDFn    func(context.Context, uint) (bool, error)
	getByUsernameFn func(context.Context, string) (*models.User, error)
	getProfileFn    func(context.Context, string) (*models.User, error)
	existsFn        func(context.Context, string, string, uint) (bool, error)
	createFn        func(context.Context, *models.User) error
	updateFn        func(context.Context, *models.User, string) error
	deleteFn        func(context.Context, uint) (*repository.DeletedAccount, error)
}

func (s *userRepoStub) GetByID(ctx context.Context, id uint) (*models.User, error) {
	return s.getByIDFn(ctx, id)
}
func (s *userRepoStub) Exists(ctx context.Context, id uint) (bool, error) {
	return s.existsByIDFn(ctx, id)
}
func (s *userRepoStub) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return s.getByUsernameFn(ctx, username)
}
func (s *userRepoStub) GetProfile(ctx context.Context, username string) (*models.User, error) {
	return s.getProfileFn(ctx, username)
}
func (s *userRepoStub) ExistsByUsernameOrEmail(ctx context.Context, username, email string, excludeID uint) (bool, error) {
	return s.existsFn(ctx, username, email, excludeID)
}
func (s *userRepoStub) Create(ctx context.Context, user *models.User) error {
	return s.createFn(ctx, user)
}
func (s *userRepoStub) Update(ctx context.Context, user *models.User, previousUsername string) error {
	return s.updateFn(ctx, user, previousUsername)
}
func (s *userRepoStub) Delete(ctx context.Context, id uint) (*repository.DeletedAccount, error) {
	return s.deleteFn(ctx, id)
}

func noopUserRepo() *userRepoStub {
	return &userRepoStub{
		getByIDFn: func(_ context.Context, id uint) (*models.User, error) {
			return &models.User{ID: id, Username: "user", Email: "user@example.com"}, nil
		},
		existsByIDFn: func(_ context.Context, _ uint) (bool, error) { return true, nil },
		getByUsernameFn: func(_ context.Context, name string) (*models.User, error) {
			return nil, models.NewNotFoundError("User", name)
		},
		getProfileFn: func(_ context.Context, name string) (*models.User, error) {
			return nil, models.NewNotFoundError("User", name)
		},
		existsFn: func(_ context.Context, _, _ string, _ uint) (bool, error) { return false, nil },
		createFn: func(_ context.Context, _ *models.User) error { return nil },
		updateFn: func(_ context.Context, _ *models.User, _ string) error { return nil },
		deleteFn: func(_ context.Context, id uint) (*repository.DeletedAccount, error) {
			return &repository.DeletedAccount{User: models.User{ID: id}}, nil
		},
	}
}

// followRepoStub is a stub for repository.FollowRepository.
type followRepoStub struct {
	toggleFn      func(context.Context, uint, uint) (toggle.FollowOutcome, error)
	isFollowingFn func(context.Context, uint, uint) (bool, error)
	followeeIDsFn func(context.Context, uint) ([]uint, error)
}

func (s *followRepoStub) Toggle(ctx context.Context, followerID, followeeID uint) (toggle.FollowOutcome, error) {
	return s.toggleFn(ctx, followerID, followeeID)
}
func (s *followRepoStub) IsFollowing(ctx context.Context, followerID, followeeID uint) (bool, error) {
	return s.isFollowingFn(ctx, followerID, followeeID)
}
func (s *followRepoStub) FolloweeIDs(ctx context.Context, followerID uint) ([]uint, error) {
	return s.followeeIDsFn(ctx, followerID)
}

func noopFollowRepo() *followRepoStub {
	return &followRepoStub{
		toggleFn:      func(_ context.Context, _, _ uint) (toggle.FollowOutcome, error) { return toggle.Followed, nil },
		isFollowingFn: func(_ context.Context, _, _ uint) (bool, error) { return false, nil },
		followeeIDsFn: func(_ context.Context, _ uint) ([]uint, error) { return []uint{}, nil },
	}
}

// postRepoStub is a stub for repository.PostRepository.
type postRepoStub struct {
	createFn        func(context.Context, *models.Post) error
	getByIDFn       func(context.Context, uint) (*models.Post, error)
	listByAuthorFn  func(context.Context, uint) ([]*models.Post, error)
	listByAuthorsFn func(context.Context, []uint) ([]*models.Post, error)
	deleteFn        func(context.Context, uint) error
	reactFn         func(context.Context, uint, uint, models.ReactionKind) (toggle.ReactionOutcome, error)
}

func (s *postRepoStub) Create(ctx context.Context, post *models.Post) error {
	return s.createFn(ctx, post)
}
func (s *postRepoStub) GetByID(ctx context.Context, id uint) (*models.Post, error) {
	return s.getByIDFn(ctx, id)
}
func (s *postRepoStub) ListByAuthor(ctx context.Context, userID uint) ([]*models.Post, error) {
	return s.listByAuthorFn(ctx, userID)
}
func (s *postRepoStub) ListByAuthors(ctx context.Context, userIDs []uint) ([]*models.Post, error) {
	return s.listByAuthorsFn(ctx, userIDs)
}
func (s *postRepoStub) Delete(ctx context.Context, id uint) error {
	return s.deleteFn(ctx, id)
}
func (s *postRepoStub) React(ctx context.Context, postID, userID uint, kind models.ReactionKind) (toggle.ReactionOutcome, error) {
	return s.reactFn(ctx, postID, userID, kind)
}

func noopPostRepo() *postRepoStub {
	return &postRepoStub{
		createFn: func(_ context.Context, p *models.Post) error {
			p.ID = 1
			p.SplitReactions()
			return nil
		},
		getByIDFn: func(_ context.Context, id uint) (*models.Post, error) {
			return nil, models.NewNotFoundError("Post", id)
		},
		listByAuthorFn:  func(_ context.Context, _ uint) ([]*models.Post, error) { return []*models.Post{}, nil },
		listByAuthorsFn: func(_ context.Context, _ []uint) ([]*models.Post, error) { return []*models.Post{}, nil },
		deleteFn:        func(_ context.Context, _ uint) error { return nil },
		reactFn: func(_ context.Context, _, _ uint, _ models.ReactionKind) (toggle.ReactionOutcome, error) {
			return toggle.ReactionAdded, nil
		},
	}
}

// replyRepoStub is a stub for repository.ReplyRepository.
type replyRepoStub struct {
	createFn     func(context.Context, *models.Reply) error
	listByPostFn func(context.Context, uint) ([]models.Reply, error)
	deleteFn     func(context.Context, uint, uint) error
}

func (s *replyRepoStub) Create(ctx context.Context, reply *models.Reply) error {
	return s.createFn(ctx, reply)
}
func (s *replyRepoStub) ListByPost(ctx context.Context, postID uint) ([]models.Reply, error) {
	return s.listByPostFn(ctx, postID)
}
func (s *replyRepoStub) Delete(ctx context.Context, postID, replyID uint) error {
	return s.deleteFn(ctx, postID, replyID)
}

func noopReplyRepo() *replyRepoStub {
	return &replyRepoStub{
		createFn:     func(_ context.Context, _ *models.Reply) error { return nil },
		listByPostFn: func(_ context.Context, _ uint) ([]models.Reply, error) { return []models.Reply{}, nil },
		deleteFn:     func(_ context.Context, _, _ uint) error { return nil },
	}
}

// assertCode asserts that err is an AppError carrying code.
func assertCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	var appErr *models.AppError
	require.True(t, errors.As(err, &appErr), "expected AppError, got %T: %v", err, err)
	assert.Equal(t, code, appErr.Code)
}

// assertValidationError asserts that err is an AppError with code VALIDATION_ERROR.
func assertValidationError(t *testing.T, err error) {
	t.Helper()
	assertCode(t, err, models.CodeValidation)
}

func strPtr(s string) *string { return &s }
