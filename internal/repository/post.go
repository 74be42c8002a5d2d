package repository

import (
	"context"

	"threads/internal/cache"
	"threads/internal/models"
	"threads/internal/toggle"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PostRepository defines persistence operations for posts and their reactions.
type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	GetByID(ctx context.Context, id uint) (*models.Post, error)
	ListByAuthor(ctx context.Context, userID uint) ([]*models.Post, error)
	ListByAuthors(ctx context.Context, userIDs []uint) ([]*models.Post, error)
	Delete(ctx context.Context, id uint) error
	React(ctx context.Context, postID, userID uint, kind models.ReactionKind) (toggle.ReactionOutcome, error)
}

type postRepository struct {
	db    *gorm.DB
	cache *cache.Store
}

// NewPostRepository returns a new PostRepository implementation.
func NewPostRepository(db *gorm.DB, store *cache.Store) PostRepository {
	return &postRepository{db: db, cache: store}
}

// withRelations preloads reactions and replies in a stable order.
func withRelations(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Reactions", func(db *gorm.DB) *gorm.DB {
			return db.Order("post_reactions.created_at ASC, post_reactions.user_id ASC")
		}).
		Preload("Replies", func(db *gorm.DB) *gorm.DB {
			return db.Order("replies.id ASC")
		})
}

func (r *postRepository) Create(ctx context.Context, post *models.Post) error {
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(post).Error; err != nil {
		return models.NewInternalError(err)
	}
	post.SplitReactions()
	return nil
}

func (r *postRepository) GetByID(ctx context.Context, id uint) (*models.Post, error) {
	var post models.Post
	err := r.cache.Aside(ctx, cache.FamilyPost, cache.PostKey(id), &post, func() error {
		if err := withRelations(r.db.WithContext(ctx)).First(&post, id).Error; err != nil {
			return storeError(err, "Post", id)
		}
		post.SplitReactions()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &post, nil
}

func (r *postRepository) ListByAuthor(ctx context.Context, userID uint) ([]*models.Post, error) {
	return r.ListByAuthors(ctx, []uint{userID})
}

// ListByAuthors returns every post by the given authors, newest first.
func (r *postRepository) ListByAuthors(ctx context.Context, userIDs []uint) ([]*models.Post, error) {
	posts := []*models.Post{}
	if len(userIDs) == 0 {
		return posts, nil
	}
	err := withRelations(r.db.WithContext(ctx)).
		Where("user_id IN ?", userIDs).
		Order("created_at DESC, id DESC").
		Find(&posts).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	for _, p := range posts {
		p.SplitReactions()
	}
	return posts, nil
}

func (r *postRepository) Delete(ctx context.Context, id uint) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var post models.Post
		if err := lockUpdate(tx).Select("id").First(&post, id).Error; err != nil {
			return err
		}
		if err := tx.Where("post_id = ?", id).Delete(&models.Reaction{}).Error; err != nil {
			return err
		}
		if err := tx.Where("post_id = ?", id).Delete(&models.Reply{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&models.Post{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
	if err != nil {
		return storeError(err, "Post", id)
	}
	r.cache.Invalidate(ctx, cache.PostKey(id))
	return nil
}

// React applies one like/dislike toggle for userID on postID. The current
// reaction row is read under a row lock and replaced in the same
// transaction; the (post_id, user_id) key means a user holds at most one
// reaction, so likes and dislikes stay disjoint even when two requests race.
func (r *postRepository) React(ctx context.Context, postID, userID uint, kind models.ReactionKind) (toggle.ReactionOutcome, error) {
	var outcome toggle.ReactionOutcome

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var post models.Post
		if err := lockShare(tx).Select("id").First(&post, postID).Error; err != nil {
			return err
		}

		var existing []models.Reaction
		if err := lockUpdate(tx).
			Where("post_id = ? AND user_id = ?", postID, userID).
			Find(&existing).Error; err != nil {
			return err
		}
		current := models.ReactionNone
		if len(existing) > 0 {
			current = existing[0].Kind
		}

		next, o := toggle.NextReaction(current, kind)
		outcome = o

		if next == models.ReactionNone {
			return tx.Where("post_id = ? AND user_id = ?", postID, userID).
				Delete(&models.Reaction{}).Error
		}
		return tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "post_id"}, {Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"kind"}),
		}).Create(&models.Reaction{PostID: postID, UserID: userID, Kind: next}).Error
	})
	if err != nil {
		return "", storeError(err, "Post", postID)
	}

	r.cache.Invalidate(ctx, cache.PostKey(postID))
	return outcome, nil
}
