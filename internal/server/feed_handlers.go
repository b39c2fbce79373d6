package server

import (
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"
)

// HomePage handles GET /. Visitors without a session are sent to the
// landing page instead of receiving a 401.
func (s *Server) HomePage(c *fiber.Ctx) error {
	userID, ok := s.authenticate(c)
	if !ok {
		return c.Redirect("/landing_page", fiber.StatusSeeOther)
	}

	user, err := s.userRepo.GetByID(c.Context(), userID)
	if err != nil {
		return mapServiceError(c, err)
	}

	// First authenticated visit stamps the join date.
	if user.Joined == "" {
		user.Joined = time.Now().Format("January 2, 2006")
		if updErr := s.userRepo.Update(c.Context(), user); updErr != nil {
			slog.WarnContext(c.UserContext(), "failed to back-fill join date",
				"user_id", userID, "error", updErr)
		}
	}

	feed, err := s.feedService.HomeFeed(c.Context())
	if err != nil {
		return mapServiceError(c, err)
	}

	return c.JSON(fiber.Map{
		"user": fiber.Map{
			"id":            user.ID,
			"username":      user.Username,
			"fullname":      user.FullName,
			"profile_image": user.ProfileImage,
			"joined":        user.Joined,
		},
		"posts": feed,
	})
}

// LandingPage handles GET /landing_page, the public view of the feed.
func (s *Server) LandingPage(c *fiber.Ctx) error {
	feed, err := s.feedService.HomeFeed(c.Context())
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(fiber.Map{
		"page":  "landing_page",
		"posts": feed,
	})
}

// PostDetailPage handles GET /post_detail/:post_id
func (s *Server) PostDetailPage(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "post_id")
	if err != nil {
		return nil
	}

	item, svcErr := s.feedService.PostDetail(c.Context(), postID)
	if svcErr != nil {
		return mapServiceError(c, svcErr)
	}
	return c.JSON(item)
}
