package service

import (
	"context"
	"strings"
	"unicode/utf8"

	"threads/internal/assets"
	"threads/internal/models"
	"threads/internal/observability"
	"threads/internal/policy"
	"threads/internal/repository"
	"threads/internal/toggle"
	"threads/internal/validation"

	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/crypto/bcrypt"
)

const maxBioLen = 500

type UserService struct {
	userRepo   repository.UserRepository
	followRepo repository.FollowRepository
	assets     assets.Host
}

type SignupInput struct {
	Name     string
	Email    string
	Username string
	Password string
}

type LoginInput struct {
	Username string
	Password string
}

// UpdateProfileInput carries the fields to change. Nil or blank leaves a
// field unchanged, except Bio, which may be cleared with "". The picture is
// only dropped through RemoveProfilePic.
type UpdateProfileInput struct {
	ActorID          uint
	TargetID         uint
	Name             *string
	Email            *string
	Username         *string
	Password         *string
	Bio              *string
	ProfilePic       *string
	RemoveProfilePic bool
}

func NewUserService(userRepo repository.UserRepository, followRepo repository.FollowRepository, host assets.Host) *UserService {
	return &UserService{
		userRepo:   userRepo,
		followRepo: followRepo,
		assets:     host,
	}
}

func (s *UserService) Signup(ctx context.Context, in SignupInput) (*models.User, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)
	in.Username = strings.TrimSpace(in.Username)
	if in.Name == "" || in.Email == "" || in.Username == "" || in.Password == "" {
		return nil, models.NewValidationError("Name, email, username and password are required")
	}
	if err := validation.ValidateUsername(in.Username); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if err := validation.ValidateEmail(in.Email); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if err := validation.ValidatePassword(in.Password); err != nil {
		return nil, models.NewValidationError(err.Error())
	}

	taken, err := s.userRepo.ExistsByUsernameOrEmail(ctx, in.Username, in.Email, 0)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, models.NewConflictError("User already exists")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	user := &models.User{
		Name:     in.Name,
		Email:    in.Email,
		Username: in.Username,
		Password: string(hashed),
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Login checks credentials. Unknown usernames and wrong passwords fail alike.
func (s *UserService) Login(ctx context.Context, in LoginInput) (*models.User, error) {
	if in.Username == "" || in.Password == "" {
		return nil, models.NewValidationError("Username and password are required")
	}

	user, err := s.userRepo.GetByUsername(ctx, in.Username)
	if err != nil {
		if models.IsCode(err, models.CodeNotFound) {
			return nil, models.NewUnauthorizedError("Invalid username or password")
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(in.Password)); err != nil {
		return nil, models.NewUnauthorizedError("Invalid username or password")
	}
	return user, nil
}

// Exists reports whether the account behind a session is still there.
func (s *UserService) Exists(ctx context.Context, id uint) (bool, error) {
	return s.userRepo.Exists(ctx, id)
}

func (s *UserService) GetProfile(ctx context.Context, username string) (*models.User, error) {
	return s.userRepo.GetProfile(ctx, username)
}

// UpdateProfile applies in to the target profile. A new picture is uploaded
// before the write and destroyed again if the write fails; the replaced
// picture is destroyed only after the write commits.
func (s *UserService) UpdateProfile(ctx context.Context, in UpdateProfileInput) (*models.User, error) {
	if !policy.CanModifyProfile(in.ActorID, in.TargetID) {
		return nil, models.NewForbiddenError("You can update only your profile")
	}

	user, err := s.userRepo.GetByID(ctx, in.TargetID)
	if err != nil {
		return nil, err
	}
	previousUsername := user.Username
	previousPic := user.ProfilePic

	if name := provided(in.Name); name != "" {
		user.Name = name
	}
	if username := provided(in.Username); username != "" {
		if err := validation.ValidateUsername(username); err != nil {
			return nil, models.NewValidationError(err.Error())
		}
		user.Username = username
	}
	email := provided(in.Email)
	if email != "" {
		if err := validation.ValidateEmail(email); err != nil {
			return nil, models.NewValidationError(err.Error())
		}
		user.Email = email
	}
	if in.Bio != nil {
		if utf8.RuneCountInString(*in.Bio) > maxBioLen {
			return nil, models.NewValidationError("Bio too long (max 500 characters)")
		}
		user.Bio = *in.Bio
	}
	if in.Password != nil && *in.Password != "" {
		if err := validation.ValidatePassword(*in.Password); err != nil {
			return nil, models.NewValidationError(err.Error())
		}
		hashed, err := bcrypt.GenerateFromPassword([]byte(*in.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, models.NewInternalError(err)
		}
		user.Password = string(hashed)
	}

	if user.Username != previousUsername || email != "" {
		taken, err := s.userRepo.ExistsByUsernameOrEmail(ctx, user.Username, user.Email, user.ID)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, models.NewConflictError("Username or email already taken")
		}
	}

	uploaded := ""
	switch pic := provided(in.ProfilePic); {
	case pic != "" && pic != previousPic:
		uploaded, err = uploadAsset(ctx, s.assets, pic)
		if err != nil {
			return nil, err
		}
		user.ProfilePic = uploaded
	case in.RemoveProfilePic:
		user.ProfilePic = ""
	}

	if err := s.userRepo.Update(ctx, user, previousUsername); err != nil {
		destroyAsset(ctx, s.assets, uploaded)
		return nil, err
	}

	if user.ProfilePic != previousPic {
		destroyAsset(ctx, s.assets, previousPic)
	}
	return user, nil
}

// provided returns the trimmed value of an optional field, "" when absent.
func provided(v *string) string {
	if v == nil {
		return ""
	}
	return strings.TrimSpace(*v)
}

// DeleteAccount removes the actor's own account with everything it owns.
// Hosted images are released after the rows are gone.
func (s *UserService) DeleteAccount(ctx context.Context, actorID, targetID uint) error {
	if !policy.CanModifyProfile(actorID, targetID) {
		return models.NewForbiddenError("You can delete only your account")
	}

	deleted, err := s.userRepo.Delete(ctx, targetID)
	if err != nil {
		return err
	}
	for _, url := range deleted.AssetURLs {
		destroyAsset(ctx, s.assets, url)
	}
	return nil
}

// ToggleFollow follows targetID if the actor does not follow it yet, and
// unfollows it otherwise.
func (s *UserService) ToggleFollow(ctx context.Context, actorID, targetID uint) (toggle.FollowOutcome, error) {
	span, ctx := observability.NewSpan(ctx, "user.toggle_follow",
		attribute.Int64("follower.id", int64(actorID)),
		attribute.Int64("followee.id", int64(targetID)),
	)
	defer span.End()

	outcome, err := s.followRepo.Toggle(ctx, actorID, targetID)
	if err != nil {
		span.SetError(err)
		return "", err
	}

	span.AddAttributes(attribute.String("follow.outcome", string(outcome)))
	observability.FollowToggles.WithLabelValues(string(outcome)).Inc()
	return outcome, nil
}
