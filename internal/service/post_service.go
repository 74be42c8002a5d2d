package service

import (
	"context"

	"threads/internal/assets"
	"threads/internal/models"
	"threads/internal/observability"
	"threads/internal/policy"
	"threads/internal/repository"
	"threads/internal/toggle"
	"threads/internal/validation"

	"go.opentelemetry.io/otel/attribute"
)

type PostService struct {
	postRepo   repository.PostRepository
	userRepo   repository.UserRepository
	followRepo repository.FollowRepository
	assets     assets.Host
}

// CreatePostInput is a publish request. PostedBy is optional; when set it
// must name the actor.
type CreatePostInput struct {
	ActorID  uint
	PostedBy uint
	Text     string
	Img      string
}

func NewPostService(
	postRepo repository.PostRepository,
	userRepo repository.UserRepository,
	followRepo repository.FollowRepository,
	host assets.Host,
) *PostService {
	return &PostService{
		postRepo:   postRepo,
		userRepo:   userRepo,
		followRepo: followRepo,
		assets:     host,
	}
}

func (s *PostService) Create(ctx context.Context, in CreatePostInput) (*models.Post, error) {
	if in.ActorID == 0 {
		return nil, models.NewUnauthorizedError("Unauthorized")
	}
	if in.PostedBy != 0 && in.PostedBy != in.ActorID {
		return nil, models.NewForbiddenError("You can publish a post only from your account")
	}
	if err := validation.ValidatePostText(in.Text); err != nil {
		return nil, models.NewValidationError(err.Error())
	}

	post := &models.Post{PostedBy: in.ActorID, Text: in.Text}
	if in.Img != "" {
		url, err := uploadAsset(ctx, s.assets, in.Img)
		if err != nil {
			return nil, err
		}
		post.Img = url
	}

	if err := s.postRepo.Create(ctx, post); err != nil {
		destroyAsset(ctx, s.assets, post.Img)
		return nil, err
	}
	return post, nil
}

func (s *PostService) Get(ctx context.Context, id uint) (*models.Post, error) {
	return s.postRepo.GetByID(ctx, id)
}

// ListByUsername returns the author's posts, newest first.
func (s *PostService) ListByUsername(ctx context.Context, username string) ([]*models.Post, error) {
	author, err := s.userRepo.GetProfile(ctx, username)
	if err != nil {
		return nil, err
	}
	return s.postRepo.ListByAuthor(ctx, author.ID)
}

// Feed returns the posts of every identity actorID follows, newest first.
func (s *PostService) Feed(ctx context.Context, actorID uint) ([]*models.Post, error) {
	followees, err := s.followRepo.FolloweeIDs(ctx, actorID)
	if err != nil {
		return nil, err
	}
	return s.postRepo.ListByAuthors(ctx, followees)
}

// Delete removes the actor's own post. The image is released first and a
// failing asset host does not keep the post alive.
func (s *PostService) Delete(ctx context.Context, actorID, postID uint) error {
	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return err
	}
	if !policy.CanModifyPost(actorID, post) {
		return models.NewForbiddenError("Unauthorized to delete this post")
	}

	destroyAsset(ctx, s.assets, post.Img)
	return s.postRepo.Delete(ctx, postID)
}

// React toggles the actor's like or dislike on a post and returns the post
// as it stands afterwards.
func (s *PostService) React(ctx context.Context, actorID, postID uint, kind models.ReactionKind) (*models.Post, toggle.ReactionOutcome, error) {
	if !kind.Valid() {
		return nil, "", models.NewValidationError("Unknown reaction")
	}

	span, ctx := observability.NewSpan(ctx, "post.react",
		attribute.Int64("post.id", int64(postID)),
		attribute.String("reaction.kind", string(kind)),
	)
	defer span.End()

	outcome, err := s.postRepo.React(ctx, postID, actorID, kind)
	if err != nil {
		span.SetError(err)
		return nil, "", err
	}
	span.AddAttributes(attribute.String("reaction.outcome", string(outcome)))
	observability.ReactionToggles.WithLabelValues(string(kind), string(outcome)).Inc()

	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return nil, "", err
	}
	return post, outcome, nil
}
