package server

import (
	"threads/internal/models"
	"threads/internal/service"

	"github.com/gofiber/fiber/v2"
)

// ReplyToPost handles PUT|POST /api/posts/reply/:id
// @Summary Reply to a post
// @Tags replies
// @Accept json
// @Produce json
// @Param id path int true "Post ID"
// @Param request body object{text=string} true "Reply"
// @Success 201 {object} object{message=string,replies=[]models.Reply}
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /posts/reply/{id} [put]
func (s *Server) ReplyToPost(c *fiber.Ctx) error {
	postID, err := parseID(c, "id")
	if err != nil {
		return nil
	}

	var req struct {
		Text string `json:"text"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	replies, err := s.replyService.Add(c.UserContext(), service.AddReplyInput{
		ActorID: actorID(c),
		PostID:  postID,
		Text:    req.Text,
	})
	if err != nil {
		return models.Respond(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Reply added",
		"replies": replies,
	})
}

// DeleteReply handles DELETE /api/posts/delete/:postId/:commentId
// @Summary Delete a reply
// @Description Allowed for the post owner and the reply's author
// @Tags replies
// @Produce json
// @Param postId path int true "Post ID"
// @Param commentId path int true "Reply ID"
// @Success 200 {object} object{message=string,replies=[]models.Reply}
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /posts/delete/{postId}/{commentId} [delete]
func (s *Server) DeleteReply(c *fiber.Ctx) error {
	postID, err := parseID(c, "postId")
	if err != nil {
		return nil
	}
	replyID, err := parseID(c, "commentId")
	if err != nil {
		return nil
	}

	replies, err := s.replyService.Delete(c.UserContext(), actorID(c), postID, replyID)
	if err != nil {
		return models.Respond(c, err)
	}

	return c.JSON(fiber.Map{
		"message": "Reply deleted",
		"replies": replies,
	})
}
