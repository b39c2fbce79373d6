package server

import (
	"log/slog"
	"strconv"

	"quill/internal/models"
	"quill/internal/service"

	"github.com/gofiber/fiber/v2"
)

// HomeComment handles POST /comment, the comment form on the home feed.
func (s *Server) HomeComment(c *fiber.Ctx) error {
	return s.createComment(c, "/")
}

// PostDetailComment handles POST /post_detail_comment, the comment form on
// the post detail page. It redirects back to the post it commented on.
func (s *Server) PostDetailComment(c *fiber.Ctx) error {
	postID := parseFormID(c, "blog_id")
	return s.createComment(c, "/post_detail/"+strconv.FormatUint(uint64(postID), 10))
}

func (s *Server) createComment(c *fiber.Ctx, redirectTo string) error {
	postID := parseFormID(c, "blog_id")
	if postID == 0 {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid post reference"))
	}

	comment, err := s.commentService.CreateComment(c.Context(), service.CreateCommentInput{
		UserID:  currentUserID(c),
		PostID:  postID,
		Content: c.FormValue("content"),
	})
	if err != nil {
		return mapServiceError(c, err)
	}

	if s.notifier != nil {
		author := service.UnknownUserName
		if comment.User.ID != 0 {
			author = comment.User.DisplayName()
		}
		if pubErr := s.notifier.PublishNewComment(c.Context(), comment.PostID, comment.ID, author); pubErr != nil {
			slog.WarnContext(c.UserContext(), "failed to publish new comment event", "error", pubErr)
		}
	}

	return s.redirectWithFlash(c, redirectTo, "success", "Comment added.")
}

// parseFormID reads a positive uint form field, returning 0 when invalid.
func parseFormID(c *fiber.Ctx, field string) uint {
	raw := c.FormValue(field)
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return 0
	}
	return uint(id)
}
