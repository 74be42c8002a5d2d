package server

import (
	"threads/internal/models"
	"threads/internal/service"

	"github.com/gofiber/fiber/v2"
)

// CreatePost handles POST /api/posts/publish
// @Summary Publish a post
// @Description Create a text post with an optional image (data URL). postedBy, when sent, must be the caller.
// @Tags posts
// @Accept json
// @Produce json
// @Param request body object{text=string,img=string,postedBy=int} true "Post"
// @Success 201 {object} models.Post
// @Failure 400 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /posts/publish [post]
func (s *Server) CreatePost(c *fiber.Ctx) error {
	var req struct {
		Text     string `json:"text"`
		Img      string `json:"img"`
		PostedBy uint   `json:"postedBy"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	post, err := s.postService.Create(c.UserContext(), service.CreatePostInput{
		ActorID:  actorID(c),
		PostedBy: req.PostedBy,
		Text:     req.Text,
		Img:      req.Img,
	})
	if err != nil {
		return models.Respond(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(post)
}

// GetPost handles GET /api/posts/get-post/:id
// @Summary Get a post
// @Tags posts
// @Produce json
// @Param id path int true "Post ID"
// @Success 200 {object} models.Post
// @Failure 404 {object} models.ErrorResponse
// @Router /posts/get-post/{id} [get]
func (s *Server) GetPost(c *fiber.Ctx) error {
	postID, err := parseID(c, "id")
	if err != nil {
		return nil
	}

	post, err := s.postService.Get(c.UserContext(), postID)
	if err != nil {
		return models.Respond(c, err)
	}
	return c.JSON(post)
}

// GetUserPosts handles GET /api/posts/user/:username
// @Summary List a user's posts
// @Description Posts by the given author, newest first
// @Tags posts
// @Produce json
// @Param username path string true "Username"
// @Success 200 {array} models.Post
// @Failure 404 {object} models.ErrorResponse
// @Router /posts/user/{username} [get]
func (s *Server) GetUserPosts(c *fiber.Ctx) error {
	posts, err := s.postService.ListByUsername(c.UserContext(), c.Params("username"))
	if err != nil {
		return models.Respond(c, err)
	}
	return c.JSON(posts)
}

// GetFeed handles GET /api/posts/feed
// @Summary Feed
// @Description Posts by every user the caller follows, newest first
// @Tags posts
// @Produce json
// @Success 200 {array} models.Post
// @Security BearerAuth
// @Router /posts/feed [get]
func (s *Server) GetFeed(c *fiber.Ctx) error {
	posts, err := s.postService.Feed(c.UserContext(), actorID(c))
	if err != nil {
		return models.Respond(c, err)
	}
	return c.JSON(posts)
}

// LikePost handles PUT|POST /api/posts/like/:id
// @Summary Toggle like
// @Description Add, remove, or switch to a like
// @Tags posts
// @Produce json
// @Param id path int true "Post ID"
// @Success 200 {object} object{message=string,outcome=string,post=models.Post}
// @Failure 404 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /posts/like/{id} [put]
func (s *Server) LikePost(c *fiber.Ctx) error {
	return s.react(c, models.ReactionLike)
}

// DislikePost handles PUT|POST /api/posts/dislike/:id
// @Summary Toggle dislike
// @Description Add, remove, or switch to a dislike
// @Tags posts
// @Produce json
// @Param id path int true "Post ID"
// @Success 200 {object} object{message=string,outcome=string,post=models.Post}
// @Failure 404 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /posts/dislike/{id} [put]
func (s *Server) DislikePost(c *fiber.Ctx) error {
	return s.react(c, models.ReactionDislike)
}

func (s *Server) react(c *fiber.Ctx, kind models.ReactionKind) error {
	postID, err := parseID(c, "id")
	if err != nil {
		return nil
	}

	post, outcome, err := s.postService.React(c.UserContext(), actorID(c), postID, kind)
	if err != nil {
		return models.Respond(c, err)
	}

	return c.JSON(fiber.Map{
		"message": outcome.Message(),
		"outcome": outcome,
		"post":    post,
	})
}

// DeletePost handles DELETE /api/posts/delete/:id
// @Summary Delete a post
// @Description Owner only. The attached image is released on a best-effort basis.
// @Tags posts
// @Produce json
// @Param id path int true "Post ID"
// @Success 200 {object} object{message=string}
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /posts/delete/{id} [delete]
func (s *Server) DeletePost(c *fiber.Ctx) error {
	postID, err := parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.postService.Delete(c.UserContext(), actorID(c), postID); err != nil {
		return models.Respond(c, err)
	}
	return c.JSON(fiber.Map{"message": "Post has been deleted"})
}
