package server

import (
	"log/slog"

	"threads/internal/middleware"
	"threads/internal/models"
	"threads/internal/service"
	"threads/internal/session"

	"github.com/gofiber/fiber/v2"
)

// startSession issues a credential for user and attaches it as a cookie.
func (s *Server) startSession(c *fiber.Ctx, user *models.User) error {
	tok, err := s.sessions.Issue(user.ID)
	if err != nil {
		return models.NewInternalError(err)
	}
	c.Cookie(s.sessions.Cookie(tok))
	return nil
}

// endSession revokes the presented credential, if any, and clears the cookie.
func (s *Server) endSession(c *fiber.Ctx, identity *session.Identity) {
	if identity != nil {
		if err := s.sessions.Revoke(c.UserContext(), identity); err != nil {
			middleware.Logger.WarnContext(c.UserContext(), "failed to revoke session",
				slog.String("error", err.Error()))
		}
	}
	c.Cookie(s.sessions.ClearCookie())
}

// Signup handles POST /api/users/signup
// @Summary User signup
// @Description Register a new user account and start a session
// @Tags users
// @Accept json
// @Produce json
// @Param request body object{name=string,email=string,username=string,password=string} true "Signup request"
// @Success 201 {object} models.User
// @Failure 400 {object} models.ErrorResponse
// @Router /users/signup [post]
func (s *Server) Signup(c *fiber.Ctx) error {
	var req struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	user, err := s.userService.Signup(c.UserContext(), service.SignupInput{
		Name:     req.Name,
		Email:    req.Email,
		Username: req.Username,
		Password: req.Password,
	})
	if err != nil {
		return models.Respond(c, err)
	}
	if err := s.startSession(c, user); err != nil {
		return models.Respond(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(user)
}

// Login handles POST /api/users/login
// @Summary User login
// @Description Authenticate by username and password and start a session
// @Tags users
// @Accept json
// @Produce json
// @Param request body object{username=string,password=string} true "Login credentials"
// @Success 200 {object} models.User
// @Failure 400 {object} models.ErrorResponse
// @Failure 401 {object} models.ErrorResponse
// @Router /users/login [post]
func (s *Server) Login(c *fiber.Ctx) error {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	user, err := s.userService.Login(c.UserContext(), service.LoginInput{
		Username: req.Username,
		Password: req.Password,
	})
	if err != nil {
		return models.Respond(c, err)
	}
	if err := s.startSession(c, user); err != nil {
		return models.Respond(c, err)
	}

	return c.JSON(user)
}

// Logout handles POST /api/users/logout
// @Summary User logout
// @Description Clear the session cookie and revoke the presented token
// @Tags users
// @Produce json
// @Success 200 {object} object{message=string}
// @Router /users/logout [post]
func (s *Server) Logout(c *fiber.Ctx) error {
	var identity *session.Identity
	if tok := session.TokenFromRequest(c); tok != "" {
		// An invalid token has nothing left to revoke.
		identity, _ = s.sessions.Parse(tok)
	}
	s.endSession(c, identity)

	return c.JSON(fiber.Map{"message": "User logged out successfully"})
}

// FollowUnfollowUser handles POST /api/users/follow/:id
// @Summary Toggle follow
// @Description Follow the user if not followed yet, unfollow otherwise
// @Tags users
// @Produce json
// @Param id path int true "User ID"
// @Success 200 {object} object{message=string,outcome=string}
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /users/follow/{id} [post]
func (s *Server) FollowUnfollowUser(c *fiber.Ctx) error {
	targetID, err := parseID(c, "id")
	if err != nil {
		return nil
	}

	outcome, err := s.userService.ToggleFollow(c.UserContext(), actorID(c), targetID)
	if err != nil {
		return models.Respond(c, err)
	}

	return c.JSON(fiber.Map{
		"message": outcome.Message(),
		"outcome": outcome,
	})
}

// UpdateUser handles PUT /api/users/update/:id
// @Summary Update profile
// @Description Change the caller's own profile. Omitted or blank fields stay unchanged; profilePic takes an image data URL and removeProfilePic drops the picture.
// @Tags users
// @Accept json
// @Produce json
// @Param id path int true "User ID"
// @Param request body object{name=string,email=string,username=string,password=string,bio=string,profilePic=string,removeProfilePic=boolean} true "Profile changes"
// @Success 200 {object} models.User
// @Failure 400 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /users/update/{id} [put]
func (s *Server) UpdateUser(c *fiber.Ctx) error {
	targetID, err := parseID(c, "id")
	if err != nil {
		return nil
	}

	var req struct {
		Name             *string `json:"name"`
		Email            *string `json:"email"`
		Username         *string `json:"username"`
		Password         *string `json:"password"`
		Bio              *string `json:"bio"`
		ProfilePic       *string `json:"profilePic"`
		RemoveProfilePic bool    `json:"removeProfilePic"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	user, err := s.userService.UpdateProfile(c.UserContext(), service.UpdateProfileInput{
		ActorID:          actorID(c),
		TargetID:         targetID,
		Name:             req.Name,
		Email:            req.Email,
		Username:         req.Username,
		Password:         req.Password,
		Bio:              req.Bio,
		ProfilePic:       req.ProfilePic,
		RemoveProfilePic: req.RemoveProfilePic,
	})
	if err != nil {
		return models.Respond(c, err)
	}

	return c.JSON(user)
}

// GetUserProfile handles GET /api/users/profile/:username
// @Summary Get profile
// @Description Public profile of a user, without credentials
// @Tags users
// @Produce json
// @Param username path string true "Username"
// @Success 200 {object} models.User
// @Failure 404 {object} models.ErrorResponse
// @Router /users/profile/{username} [get]
func (s *Server) GetUserProfile(c *fiber.Ctx) error {
	user, err := s.userService.GetProfile(c.UserContext(), c.Params("username"))
	if err != nil {
		return models.Respond(c, err)
	}
	return c.JSON(user)
}

// DeleteUser handles DELETE /api/users/delete/:id
// @Summary Delete account
// @Description Delete the caller's own account together with its posts, reactions, replies and follow edges
// @Tags users
// @Produce json
// @Param id path int true "User ID"
// @Success 200 {object} object{message=string}
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /users/delete/{id} [delete]
func (s *Server) DeleteUser(c *fiber.Ctx) error {
	targetID, err := parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.userService.DeleteAccount(c.UserContext(), actorID(c), targetID); err != nil {
		return models.Respond(c, err)
	}
	s.endSession(c, currentSession(c))

	return c.JSON(fiber.Map{"message": "User has been deleted"})
}
