package repository

import (
	"context"

	"threads/internal/cache"
	"threads/internal/models"

	"gorm.io/gorm"
)

// UserRepository defines persistence operations for users.
type UserRepository interface {
	GetByID(ctx context.Context, id uint) (*models.User, error)
	Exists(ctx context.Context, id uint) (bool, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	GetProfile(ctx context.Context, username string) (*models.User, error)
	ExistsByUsernameOrEmail(ctx context.Context, username, email string, excludeID uint) (bool, error)
	Create(ctx context.Context, user *models.User) error
	Update(ctx context.Context, user *models.User, previousUsername string) error
	Delete(ctx context.Context, id uint) (*DeletedAccount, error)
}

// DeletedAccount describes what a cascading account deletion removed, so the
// caller can release hosted assets afterwards.
type DeletedAccount struct {
	User      models.User
	PostIDs   []uint
	AssetURLs []string
}

type userRepository struct {
	db    *gorm.DB
	cache *cache.Store
}

// NewUserRepository returns a new UserRepository implementation.
func NewUserRepository(db *gorm.DB, store *cache.Store) UserRepository {
	return &userRepository{db: db, cache: store}
}

func (r *userRepository) GetByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, storeError(err, "User", id)
	}
	if err := loadGraph(r.db.WithContext(ctx), &user); err != nil {
		return nil, models.NewInternalError(err)
	}
	return &user, nil
}

// Exists looks up the user id alone, without loading the follow graph.
func (r *userRepository) Exists(ctx context.Context, id uint) (bool, error) {
	var ids []uint
	if err := r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Limit(1).Pluck("id", &ids).Error; err != nil {
		return false, models.NewInternalError(err)
	}
	return len(ids) > 0, nil
}

// GetByUsername returns the full row including the password hash.
func (r *userRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		return nil, storeError(err, "User", username)
	}
	if err := loadGraph(r.db.WithContext(ctx), &user); err != nil {
		return nil, models.NewInternalError(err)
	}
	return &user, nil
}

// GetProfile is the cached public view of a user.
func (r *userRepository) GetProfile(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	err := r.cache.Aside(ctx, cache.FamilyProfile, cache.ProfileKey(username), &user, func() error {
		found, err := r.GetByUsername(ctx, username)
		if err != nil {
			return err
		}
		user = *found
		return nil
	})
	if err != nil {
		return nil, err
	}
	user.Password = ""
	return &user, nil
}

func (r *userRepository) ExistsByUsernameOrEmail(ctx context.Context, username, email string, excludeID uint) (bool, error) {
	q := r.db.WithContext(ctx).Model(&models.User{}).Where("username = ? OR email = ?", username, email)
	if excludeID != 0 {
		q = q.Where("id <> ?", excludeID)
	}
	var count int64
	if err := q.Count(&count).Error; err != nil {
		return false, models.NewInternalError(err)
	}
	return count > 0, nil
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		if isUniqueConstraintError(err) {
			return models.NewConflictError("Username or email already taken")
		}
		return models.NewInternalError(err)
	}
	user.Followers = []uint{}
	user.Following = []uint{}
	return nil
}

// Update writes the profile columns of user. previousUsername is the name the
// profile was cached under before the change.
func (r *userRepository) Update(ctx context.Context, user *models.User, previousUsername string) error {
	err := r.db.WithContext(ctx).Model(user).
		Select("name", "username", "email", "password", "bio", "profile_pic").
		Updates(user).Error
	if err != nil {
		if isUniqueConstraintError(err) {
			return models.NewConflictError("Username or email already taken")
		}
		return models.NewInternalError(err)
	}
	r.cache.Invalidate(ctx, cache.ProfileKey(previousUsername), cache.ProfileKey(user.Username))
	return nil
}

// Delete removes the user and everything that hangs off it in one
// transaction: authored posts with their reactions and replies, the user's
// reactions and replies elsewhere, and every follow edge touching the user.
func (r *userRepository) Delete(ctx context.Context, id uint) (*DeletedAccount, error) {
	out := &DeletedAccount{}
	var touchedUsernames []string

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockUpdate(tx).First(&out.User, id).Error; err != nil {
			return err
		}

		var posts []models.Post
		if err := tx.Select("id", "img").Where("user_id = ?", id).Find(&posts).Error; err != nil {
			return err
		}
		owned := make([]uint, 0, len(posts))
		for _, p := range posts {
			owned = append(owned, p.ID)
			if p.Img != "" {
				out.AssetURLs = append(out.AssetURLs, p.Img)
			}
		}

		// Posts elsewhere whose rendering changes once this user's reactions and replies go.
		var touched []uint
		if err := tx.Model(&models.Reaction{}).Where("user_id = ?", id).Distinct().Pluck("post_id", &touched).Error; err != nil {
			return err
		}
		var replied []uint
		if err := tx.Model(&models.Reply{}).Where("user_id = ?", id).Distinct().Pluck("post_id", &replied).Error; err != nil {
			return err
		}
		out.PostIDs = mergeIDs(owned, touched, replied)

		if err := tx.Model(&models.User{}).
			Where("id IN (?)", tx.Model(&models.Follow{}).Select("follower_id").Where("followee_id = ?", id)).
			Or("id IN (?)", tx.Model(&models.Follow{}).Select("followee_id").Where("follower_id = ?", id)).
			Pluck("username", &touchedUsernames).Error; err != nil {
			return err
		}

		if len(owned) > 0 {
			if err := tx.Where("post_id IN ?", owned).Delete(&models.Reaction{}).Error; err != nil {
				return err
			}
			if err := tx.Where("post_id IN ?", owned).Delete(&models.Reply{}).Error; err != nil {
				return err
			}
			if err := tx.Where("id IN ?", owned).Delete(&models.Post{}).Error; err != nil {
				return err
			}
		}
		if err := tx.Where("user_id = ?", id).Delete(&models.Reaction{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", id).Delete(&models.Reply{}).Error; err != nil {
			return err
		}
		if err := tx.Where("follower_id = ? OR followee_id = ?", id, id).Delete(&models.Follow{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.User{}, id).Error
	})
	if err != nil {
		return nil, storeError(err, "User", id)
	}

	if out.User.ProfilePic != "" {
		out.AssetURLs = append(out.AssetURLs, out.User.ProfilePic)
	}

	keys := make([]string, 0, len(out.PostIDs)+len(touchedUsernames)+1)
	keys = append(keys, cache.ProfileKey(out.User.Username))
	for _, name := range touchedUsernames {
		keys = append(keys, cache.ProfileKey(name))
	}
	for _, postID := range out.PostIDs {
		keys = append(keys, cache.PostKey(postID))
	}
	r.cache.Invalidate(ctx, keys...)

	return out, nil
}

// loadGraph fills Followers and Following from the follows edge table.
func loadGraph(db *gorm.DB, user *models.User) error {
	user.Followers = []uint{}
	user.Following = []uint{}
	if err := db.Model(&models.Follow{}).
		Where("followee_id = ?", user.ID).
		Order("created_at ASC, follower_id ASC").
		Pluck("follower_id", &user.Followers).Error; err != nil {
		return err
	}
	return db.Model(&models.Follow{}).
		Where("follower_id = ?", user.ID).
		Order("created_at ASC, followee_id ASC").
		Pluck("followee_id", &user.Following).Error
}

func mergeIDs(groups ...[]uint) []uint {
	seen := make(map[uint]struct{})
	var out []uint
	for _, g := range groups {
		for _, id := range g {
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			out = append(out, id)
		}
	}
	return out
}
