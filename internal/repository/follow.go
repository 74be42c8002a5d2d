package repository

import (
	"context"

	"threads/internal/cache"
	"threads/internal/models"
	"threads/internal/toggle"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// FollowRepository maintains the directed follow graph.
type FollowRepository interface {
	Toggle(ctx context.Context, followerID, followeeID uint) (toggle.FollowOutcome, error)
	IsFollowing(ctx context.Context, followerID, followeeID uint) (bool, error)
	FolloweeIDs(ctx context.Context, followerID uint) ([]uint, error)
}

type followRepository struct {
	db    *gorm.DB
	cache *cache.Store
}

// NewFollowRepository returns a new FollowRepository implementation.
func NewFollowRepository(db *gorm.DB, store *cache.Store) FollowRepository {
	return &followRepository{db: db, cache: store}
}

// Toggle flips the edge followerID -> followeeID. Both directions of the
// relation are read from the same row, so one insert or delete inside the
// transaction keeps followers and following mirrored. Both users stay
// share-locked until commit so an account deletion cannot strand the edge.
func (r *followRepository) Toggle(ctx context.Context, followerID, followeeID uint) (toggle.FollowOutcome, error) {
	var outcome toggle.FollowOutcome
	var usernames []string

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var users []models.User
		if err := lockShare(tx).Select("id", "username").Where("id IN ?", []uint{followerID, followeeID}).Find(&users).Error; err != nil {
			return err
		}
		var followerFound, followeeFound bool
		for _, u := range users {
			if u.ID == followerID {
				followerFound = true
			}
			if u.ID == followeeID {
				followeeFound = true
			}
			usernames = append(usernames, u.Username)
		}
		if !followeeFound {
			return models.NewNotFoundError("User", followeeID)
		}
		if !followerFound {
			return models.NewNotFoundError("User", followerID)
		}

		var edges []models.Follow
		if err := lockUpdate(tx).
			Where("follower_id = ? AND followee_id = ?", followerID, followeeID).
			Find(&edges).Error; err != nil {
			return err
		}

		next, o, err := toggle.NextFollow(followerID, followeeID, len(edges) > 0)
		if err != nil {
			return err
		}
		outcome = o

		if !next {
			return tx.Where("follower_id = ? AND followee_id = ?", followerID, followeeID).
				Delete(&models.Follow{}).Error
		}
		return tx.Clauses(clause.OnConflict{DoNothing: true}).
			Create(&models.Follow{FollowerID: followerID, FolloweeID: followeeID}).Error
	})
	if err != nil {
		return "", storeError(err, "User", followeeID)
	}

	keys := make([]string, 0, len(usernames))
	for _, name := range usernames {
		keys = append(keys, cache.ProfileKey(name))
	}
	r.cache.Invalidate(ctx, keys...)
	return outcome, nil
}

func (r *followRepository) IsFollowing(ctx context.Context, followerID, followeeID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Follow{}).
		Where("follower_id = ? AND followee_id = ?", followerID, followeeID).
		Count(&count).Error
	if err != nil {
		return false, models.NewInternalError(err)
	}
	return count > 0, nil
}

func (r *followRepository) FolloweeIDs(ctx context.Context, followerID uint) ([]uint, error) {
	ids := []uint{}
	err := r.db.WithContext(ctx).Model(&models.Follow{}).
		Where("follower_id = ?", followerID).
		Pluck("followee_id", &ids).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return ids, nil
}
