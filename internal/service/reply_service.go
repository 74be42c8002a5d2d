package service

import (
	"context"

	"threads/internal/models"
	"threads/internal/policy"
	"threads/internal/repository"
	"threads/internal/validation"
)

type ReplyService struct {
	replyRepo repository.ReplyRepository
	postRepo  repository.PostRepository
	userRepo  repository.UserRepository
}

type AddReplyInput struct {
	ActorID uint
	PostID  uint
	Text    string
}

func NewReplyService(
	replyRepo repository.ReplyRepository,
	postRepo repository.PostRepository,
	userRepo repository.UserRepository,
) *ReplyService {
	return &ReplyService{
		replyRepo: replyRepo,
		postRepo:  postRepo,
		userRepo:  userRepo,
	}
}

// Add appends a reply carrying the actor's current username and picture and
// returns the post's replies in order.
func (s *ReplyService) Add(ctx context.Context, in AddReplyInput) ([]models.Reply, error) {
	if err := validation.ValidateReplyText(in.Text); err != nil {
		return nil, models.NewValidationError(err.Error())
	}

	author, err := s.userRepo.GetByID(ctx, in.ActorID)
	if err != nil {
		if models.IsCode(err, models.CodeNotFound) {
			return nil, models.NewUnauthorizedError("Unauthorized")
		}
		return nil, err
	}

	reply := &models.Reply{
		PostID:         in.PostID,
		UserID:         author.ID,
		Text:           in.Text,
		Username:       author.Username,
		UserProfilePic: author.ProfilePic,
	}
	if err := s.replyRepo.Create(ctx, reply); err != nil {
		return nil, err
	}
	return s.replyRepo.ListByPost(ctx, in.PostID)
}

// Delete removes one reply. The post owner and the reply's author may do so.
func (s *ReplyService) Delete(ctx context.Context, actorID, postID, replyID uint) ([]models.Reply, error) {
	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	reply := post.FindReply(replyID)
	if reply == nil {
		return nil, models.NewNotFoundError("Reply", replyID)
	}
	if !policy.CanDeleteReply(actorID, post, reply) {
		return nil, models.NewForbiddenError("You can delete only your replies or replies on your posts")
	}

	if err := s.replyRepo.Delete(ctx, postID, replyID); err != nil {
		return nil, err
	}
	return s.replyRepo.ListByPost(ctx, postID)
}
