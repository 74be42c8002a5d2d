package repository

import (
	"context"

	"threads/internal/cache"
	"threads/internal/models"

	"gorm.io/gorm"
)

// ReplyRepository defines persistence operations for replies on a post.
type ReplyRepository interface {
	Create(ctx context.Context, reply *models.Reply) error
	ListByPost(ctx context.Context, postID uint) ([]models.Reply, error)
	Delete(ctx context.Context, postID, replyID uint) error
}

type replyRepository struct {
	db    *gorm.DB
	cache *cache.Store
}

// NewReplyRepository returns a new ReplyRepository implementation.
func NewReplyRepository(db *gorm.DB, store *cache.Store) ReplyRepository {
	return &replyRepository{db: db, cache: store}
}

// Create appends reply to its post. The post row is share-locked until the
// insert commits; a concurrent delete either waits for the reply or wins
// first and the reply fails with NotFound.
func (r *replyRepository) Create(ctx context.Context, reply *models.Reply) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var post models.Post
		if err := lockShare(tx).Select("id").First(&post, reply.PostID).Error; err != nil {
			return err
		}
		return tx.Create(reply).Error
	})
	if err != nil {
		return storeError(err, "Post", reply.PostID)
	}
	r.cache.Invalidate(ctx, cache.PostKey(reply.PostID))
	return nil
}

// ListByPost returns the replies of a post in the order they were written.
func (r *replyRepository) ListByPost(ctx context.Context, postID uint) ([]models.Reply, error) {
	replies := []models.Reply{}
	if err := r.db.WithContext(ctx).Where("post_id = ?", postID).Order("id ASC").Find(&replies).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return replies, nil
}

func (r *replyRepository) Delete(ctx context.Context, postID, replyID uint) error {
	res := r.db.WithContext(ctx).Where("id = ? AND post_id = ?", replyID, postID).Delete(&models.Reply{})
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Reply", replyID)
	}
	r.cache.Invalidate(ctx, cache.PostKey(postID))
	return nil
}
