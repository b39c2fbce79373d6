package server

import (
	"io"
	"log/slog"
	"strings"

	"quill/internal/models"
	"quill/internal/service"

	"github.com/gofiber/fiber/v2"
)

// MakePostPage handles GET /make_post
func (s *Server) MakePostPage(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"page":   "make_post",
		"fields": []string{"title", "content", "excerpt", "category", "tags", "featured_image"},
	})
}

// MakePost handles POST /make_post. The form is multipart; featured_image
// is optional but a file with a bad extension rejects the whole submission.
func (s *Server) MakePost(c *fiber.Ctx) error {
	userID := currentUserID(c)

	input := service.CreatePostInput{
		UserID:   userID,
		Title:    c.FormValue("title"),
		Content:  c.FormValue("content"),
		Excerpt:  c.FormValue("excerpt"),
		Category: c.FormValue("category"),
		Tags:     splitTags(c.FormValue("tags")),
	}

	if fileHeader, err := c.FormFile("featured_image"); err == nil && fileHeader != nil {
		file, openErr := fileHeader.Open()
		if openErr != nil {
			return models.RespondWithError(c, fiber.StatusBadRequest,
				models.NewValidationError("Could not read uploaded file"))
		}
		content, readErr := io.ReadAll(file)
		_ = file.Close()
		if readErr != nil {
			return models.RespondWithError(c, fiber.StatusBadRequest,
				models.NewValidationError("Could not read uploaded file"))
		}
		input.Image = &service.ImageUpload{
			Filename: fileHeader.Filename,
			Content:  content,
		}
	}

	post, err := s.postService.CreatePost(c.Context(), input)
	if err != nil {
		return mapServiceError(c, err)
	}

	if s.notifier != nil {
		author := post.User.DisplayName()
		if author == "" {
			author = service.UnknownUserName
		}
		if pubErr := s.notifier.PublishNewPost(c.Context(), post.ID, post.Title, author); pubErr != nil {
			slog.WarnContext(c.UserContext(), "failed to publish new post event", "error", pubErr)
		}
	}

	return s.redirectWithFlash(c, "/", "success", "Your post has been published.")
}

// splitTags turns a comma-separated tag field into trimmed tags, dropping
// empties.
func splitTags(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	tags := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}
