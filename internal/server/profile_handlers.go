package server

import (
	"errors"

	"quill/internal/models"
	"quill/internal/service"

	"github.com/gofiber/fiber/v2"
)

// ProfilePage handles GET /profile
func (s *Server) ProfilePage(c *fiber.Ctx) error {
	profile, err := s.profileService.Profile(c.Context(), currentUserID(c))
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(profile)
}

// UpdateProfile handles POST /profile. Every field is submitted each time,
// so empty values clear the corresponding column.
func (s *Server) UpdateProfile(c *fiber.Ctx) error {
	input := service.UpdateProfileInput{
		FullName:   c.FormValue("fullname"),
		Bio:        c.FormValue("bio"),
		About:      c.FormValue("about"),
		Profession: c.FormValue("profession"),
		Education:  c.FormValue("education"),
		Country:    c.FormValue("country"),
		City:       c.FormValue("city"),
	}

	if _, err := s.profileService.UpdateProfile(c.Context(), currentUserID(c), input); err != nil {
		return mapServiceError(c, err)
	}

	return s.redirectWithFlash(c, "/profile", "success", "Profile updated.")
}

// AddSkill handles POST /add-skill
func (s *Server) AddSkill(c *fiber.Ctx) error {
	name := formOrJSONValue(c, "skill")
	if err := s.profileService.AddSkill(c.Context(), currentUserID(c), name); err != nil {
		return actionError(c, err)
	}
	return c.JSON(fiber.Map{
		"success": true,
		"message": "Skill added",
	})
}

// RemoveSkill handles POST /remove-skill
func (s *Server) RemoveSkill(c *fiber.Ctx) error {
	name := formOrJSONValue(c, "skill")
	if err := s.profileService.RemoveSkill(c.Context(), currentUserID(c), name); err != nil {
		return actionError(c, err)
	}
	return c.JSON(fiber.Map{
		"success": true,
		"message": "Skill removed",
	})
}

// AddLink handles POST /add-link
func (s *Server) AddLink(c *fiber.Ctx) error {
	title := formOrJSONValue(c, "title")
	url := formOrJSONValue(c, "url")
	if err := s.profileService.AddLink(c.Context(), currentUserID(c), title, url); err != nil {
		return actionError(c, err)
	}
	return c.JSON(fiber.Map{
		"success": true,
		"message": "Link added",
	})
}

// DeleteLink handles POST /delete-link/:link_id. Deleting a link that does
// not exist and deleting someone else's link are indistinguishable.
func (s *Server) DeleteLink(c *fiber.Ctx) error {
	id, err := c.ParamsInt("link_id")
	if err != nil || id <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Invalid link ID",
		})
	}

	if err := s.profileService.DeleteLink(c.Context(), currentUserID(c), uint(id)); err != nil {
		return actionError(c, err)
	}
	return c.JSON(fiber.Map{
		"success": true,
		"message": "Link deleted",
	})
}

// actionError writes a failed skill or link mutation. These endpoints always
// answer the {success, message} shape, failures included.
func actionError(c *fiber.Ctx, err error) error {
	message := "Something went wrong"
	var appErr *models.AppError
	if errors.As(err, &appErr) && appErr.Code != models.CodeStorage && appErr.Code != models.CodeInternal {
		message = appErr.Message
	}
	return c.Status(errorStatus(err)).JSON(fiber.Map{
		"success": false,
		"message": message,
	})
}

// formOrJSONValue reads a field from the form body or, for JSON requests,
// from the JSON body.
func formOrJSONValue(c *fiber.Ctx, field string) string {
	if v := c.FormValue(field); v != "" {
		return v
	}
	var body map[string]string
	if err := c.BodyParser(&body); err == nil {
		return body[field]
	}
	return ""
}
