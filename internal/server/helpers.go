// Package server contains the HTTP and WebSocket handlers for the blog API.
package server

import (
	"errors"
	"net/url"
	"strings"
	"unicode"

	"quill/internal/models"

	"github.com/gofiber/fiber/v2"
)

// errResponseWritten is a sentinel indicating the HTTP response was already
// committed by a helper.  Handlers must return nil (not this error) to avoid
// Fiber's ErrorHandler overwriting the response.
var errResponseWritten = errors.New("response already written")

// parseID extracts a route parameter by name as a positive uint.
// On failure it writes a 400 JSON response and returns errResponseWritten.
// Callers should check: if err != nil { return nil }
func (s *Server) parseID(c *fiber.Ctx, param string) (uint, error) {
	id, err := c.ParamsInt(param)
	if err != nil || id <= 0 {
		_ = models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid "+humanizeParam(param)))
		return 0, errResponseWritten
	}
	return uint(id), nil
}

// humanizeParam converts a route param name into a human-readable label.
// Examples: "id" -> "ID", "post_id" -> "post ID", "linkId" -> "link ID".
func humanizeParam(param string) string {
	if param == "id" {
		return "ID"
	}
	if strings.HasSuffix(param, "_id") {
		return strings.ReplaceAll(param[:len(param)-3], "_", " ") + " ID"
	}
	if strings.HasSuffix(param, "Id") {
		words := splitCamel(param[:len(param)-2])
		return strings.ToLower(strings.Join(words, " ")) + " ID"
	}
	return param
}

// splitCamel splits a camelCase string into words.
func splitCamel(s string) []string {
	var words []string
	start := 0
	for i, r := range s {
		if i > 0 && unicode.IsUpper(r) {
			words = append(words, s[start:i])
			start = i
		}
	}
	words = append(words, s[start:])
	return words
}

// currentUserID returns the authenticated user ID stored by AuthRequired.
func currentUserID(c *fiber.Ctx) uint {
	if uid, ok := c.Locals("userID").(uint); ok {
		return uid
	}
	return 0
}

// errorStatus maps an application error code to an HTTP status.
func errorStatus(err error) int {
	switch models.ErrorCode(err) {
	case models.CodeValidation:
		return fiber.StatusBadRequest
	case models.CodeUnauthorized:
		return fiber.StatusUnauthorized
	case models.CodeForbidden:
		return fiber.StatusForbidden
	case models.CodeNotFound:
		return fiber.StatusNotFound
	}
	return fiber.StatusInternalServerError
}

// mapServiceError translates an application error into the right HTTP
// status and writes the response.
func mapServiceError(c *fiber.Ctx, err error) error {
	return models.RespondWithError(c, errorStatus(err), err)
}

// wantsJSON reports whether the client asked for a JSON response instead of
// the browser redirect flow.
func wantsJSON(c *fiber.Ctx) bool {
	accept := c.Get(fiber.HeaderAccept)
	return strings.Contains(accept, fiber.MIMEApplicationJSON) &&
		!strings.Contains(accept, fiber.MIMETextHTML)
}

// redirectWithFlash sends the browser to location carrying a one-shot flash
// message in a short-lived cookie. API clients get JSON instead.
func (s *Server) redirectWithFlash(c *fiber.Ctx, location, category, message string) error {
	if wantsJSON(c) {
		return c.JSON(fiber.Map{
			"success":  category != "error",
			"message":  message,
			"redirect": location,
		})
	}
	if message != "" {
		setFlash(c, category, message)
	}
	return c.Redirect(location, fiber.StatusSeeOther)
}

func setFlash(c *fiber.Ctx, category, message string) {
	c.Cookie(&fiber.Cookie{
		Name:     "flash",
		Value:    url.QueryEscape(category + "|" + message),
		Path:     "/",
		MaxAge:   10,
		HTTPOnly: false,
	})
}
