package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"

	"quill/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProfile_UpdateAndView(t *testing.T) {
	_, app, _ := setupTestServer(t)
	cookie := signupAndLogin(t, app, "profiled", "profiled@example.com", "pw1")

	req := formRequest("/profile", url.Values{
		"fullname":   {"Pat Profiled"},
		"bio":        {"writes tests"},
		"about":      {"long form about text"},
		"profession": {"Engineer"},
		"education":  {"State University"},
		"country":    {"Iceland"},
		"city":       {"Reykjavik"},
	})
	req.AddCookie(cookie)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/profile", resp.Header.Get("Location"))

	req = httptest.NewRequest(http.MethodGet, "/profile", nil)
	req.AddCookie(cookie)
	resp, err = app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var view struct {
		FullName  string   `json:"fullname"`
		Location  string   `json:"location"`
		Skills    []string `json:"skills"`
		PostCount int      `json:"post_count"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&view))
	assert.Equal(t, "Pat Profiled", view.FullName)
	assert.Equal(t, "Reykjavik, Iceland", view.Location)
	assert.Empty(t, view.Skills)
	assert.Zero(t, view.PostCount)
}

func TestSkillEndpoints(t *testing.T) {
	_, app, _ := setupTestServer(t)
	cookie := signupAndLogin(t, app, "skilled", "skilled@example.com", "pw1")

	addReq := formRequest("/add-skill", url.Values{"skill": {"Go"}})
	addReq.AddCookie(cookie)
	resp, err := app.Test(addReq)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var result struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	assert.True(t, result.Success)
	assert.Equal(t, "Skill added", result.Message)

	rmReq := formRequest("/remove-skill", url.Values{"skill": {"Go"}})
	rmReq.AddCookie(cookie)
	resp, err = app.Test(rmReq)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	assert.True(t, result.Success)
	assert.Equal(t, "Skill removed", result.Message)

	// Removing again reports not found, still in the {success, message} shape.
	rmReq = formRequest("/remove-skill", url.Values{"skill": {"Go"}})
	rmReq.AddCookie(cookie)
	resp, err = app.Test(rmReq)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	assert.False(t, result.Success)
	assert.Contains(t, result.Message, "not found")
}

func TestRemoveSkill_AcceptsJSONBody(t *testing.T) {
	_, app, _ := setupTestServer(t)
	cookie := signupAndLogin(t, app, "jsonuser", "jsonuser@example.com", "pw1")

	addReq := formRequest("/add-skill", url.Values{"skill": {"SQL"}})
	addReq.AddCookie(cookie)
	resp, err := app.Test(addReq)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	req := httptest.NewRequest(http.MethodPost, "/remove-skill", strings.NewReader(`{"skill":"SQL"}`))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	req.AddCookie(cookie)
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestDeleteLink_CrossUserLooksLikeMissing(t *testing.T) {
	_, app, db := setupTestServer(t)
	ownerCookie := signupAndLogin(t, app, "linkowner", "linkowner@example.com", "pw1")
	otherCookie := signupAndLogin(t, app, "intruder", "intruder@example.com", "pw1")

	addReq := formRequest("/add-link", url.Values{
		"title": {"My Site"},
		"url":   {"https://example.com"},
	})
	addReq.AddCookie(ownerCookie)
	resp, err := app.Test(addReq)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var link models.Link
	require.NoError(t, db.First(&link).Error)

	// The intruder's delete returns the same 404 as a nonexistent link.
	var result struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
	}
	linkID := strconv.FormatUint(uint64(link.ID), 10)
	delReq := httptest.NewRequest(http.MethodPost, "/delete-link/"+linkID, nil)
	delReq.AddCookie(otherCookie)
	resp, err = app.Test(delReq)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	assert.False(t, result.Success)
	assert.Contains(t, result.Message, "not found")

	delReq = httptest.NewRequest(http.MethodPost, "/delete-link/9999", nil)
	delReq.AddCookie(otherCookie)
	resp, err = app.Test(delReq)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	assert.False(t, result.Success)

	// The link is still there for its owner.
	var count int64
	db.Model(&models.Link{}).Count(&count)
	assert.Equal(t, int64(1), count)

	delReq = httptest.NewRequest(http.MethodPost, "/delete-link/"+linkID, nil)
	delReq.AddCookie(ownerCookie)
	resp, err = app.Test(delReq)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestAddLink_RejectsBadURL(t *testing.T) {
	_, app, _ := setupTestServer(t)
	cookie := signupAndLogin(t, app, "linker", "linker@example.com", "pw1")

	req := formRequest("/add-link", url.Values{
		"title": {"bad"},
		"url":   {"javascript:alert(1)"},
	})
	req.AddCookie(cookie)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	var result struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	assert.False(t, result.Success)
	assert.Contains(t, result.Message, "valid http or https")
}

func TestDeleteLink_BadParam(t *testing.T) {
	_, app, _ := setupTestServer(t)
	cookie := signupAndLogin(t, app, "badparam", "badparam@example.com", "pw1")

	req := httptest.NewRequest(http.MethodPost, "/delete-link/abc", nil)
	req.AddCookie(cookie)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	var result struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	assert.False(t, result.Success)
	assert.Equal(t, "Invalid link ID", result.Message)
}
