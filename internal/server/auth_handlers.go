package server

import (
	"fmt"
	"strconv"
	"time"

	"quill/internal/models"
	"quill/internal/validation"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const sessionTTL = time.Hour * 24 * 7

// SignupPage handles GET /signup
func (s *Server) SignupPage(c *fiber.Ctx) error {
	if uid, ok := s.authenticate(c); ok && uid != 0 {
		return c.Redirect("/", fiber.StatusSeeOther)
	}
	return c.JSON(fiber.Map{
		"page":   "signup",
		"fields": []string{"username", "email", "password", "confirm_password"},
	})
}

// Signup handles POST /signup. Accounts store the password exactly as
// submitted; login compares with direct string equality.
func (s *Server) Signup(c *fiber.Ctx) error {
	var req struct {
		Username        string `json:"username" form:"username"`
		Email           string `json:"email" form:"email"`
		Password        string `json:"password" form:"password"`
		ConfirmPassword string `json:"confirm_password" form:"confirm_password"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	if req.Username == "" || req.Email == "" || req.Password == "" {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Username, email, and password are required"))
	}
	if err := validation.ValidateUsername(req.Username); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError(err.Error()))
	}
	if err := validation.ValidateEmail(req.Email); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError(err.Error()))
	}
	if req.Password != req.ConfirmPassword {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Passwords do not match!"))
	}

	if existing, err := s.userRepo.GetByEmail(c.Context(), req.Email); err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	} else if existing != nil {
		return models.RespondWithError(c, fiber.StatusConflict,
			models.NewValidationError("Email already exists"))
	}
	if existing, err := s.userRepo.GetByUsername(c.Context(), req.Username); err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	} else if existing != nil {
		return models.RespondWithError(c, fiber.StatusConflict,
			models.NewValidationError("Username already exists"))
	}

	user := &models.User{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	}
	if createErr := s.userRepo.Create(c.Context(), user); createErr != nil {
		return mapServiceError(c, createErr)
	}

	return s.redirectWithFlash(c, "/login", "success",
		"Account created successfully. Please log in.")
}

// LoginPage handles GET /login
func (s *Server) LoginPage(c *fiber.Ctx) error {
	if uid, ok := s.authenticate(c); ok && uid != 0 {
		return c.Redirect("/", fiber.StatusSeeOther)
	}
	return c.JSON(fiber.Map{
		"page":   "login",
		"fields": []string{"email", "password"},
	})
}

// Login handles POST /login. The submitted password must match the stored
// one exactly.
func (s *Server) Login(c *fiber.Ctx) error {
	var req struct {
		Email    string `json:"email" form:"email"`
		Password string `json:"password" form:"password"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	user, err := s.userRepo.GetByEmail(c.Context(), req.Email)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	if user == nil || user.Password != req.Password {
		return models.RespondWithError(c, fiber.StatusUnauthorized,
			models.NewUnauthorizedError("Invalid email or password"))
	}

	token, err := s.generateToken(user.ID, user.Username)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(err))
	}

	s.setSessionCookie(c, token)

	if wantsJSON(c) {
		return c.JSON(fiber.Map{
			"token": token,
			"user":  user,
		})
	}
	return c.Redirect("/", fiber.StatusSeeOther)
}

// Logout handles GET /logout and GET /sign_out. It always succeeds: an
// expired or missing session still clears the cookie and redirects.
func (s *Server) Logout(c *fiber.Ctx) error {
	if tokenString := c.Cookies(sessionCookie); tokenString != "" {
		s.blacklistToken(c, tokenString)
	}

	s.clearSessionCookie(c)

	return s.redirectWithFlash(c, "/login", "success", "You have been logged out.")
}

// blacklistToken revokes a token's jti for its remaining lifetime. Best
// effort: an unparseable token or missing Redis just skips revocation.
func (s *Server) blacklistToken(c *fiber.Ctx, tokenString string) {
	if s.redis == nil {
		return
	}
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("invalid signing method")
		}
		return []byte(s.config.SecretKey), nil
	})
	if err != nil || !token.Valid {
		return
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return
	}
	jti, ok := claims["jti"].(string)
	if !ok || jti == "" {
		return
	}

	ttl := sessionTTL
	if exp, expOk := claims["exp"].(float64); expOk {
		if remaining := time.Until(time.Unix(int64(exp), 0)); remaining > 0 {
			ttl = remaining
		}
	}
	s.redis.Set(c.Context(), "blacklist:"+jti, "1", ttl)
}

func (s *Server) setSessionCookie(c *fiber.Ctx, token string) {
	c.Cookie(&fiber.Cookie{
		Name:     sessionCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   int(sessionTTL.Seconds()),
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
		Secure:   s.config.Env == "production",
	})
}

func (s *Server) clearSessionCookie(c *fiber.Ctx) {
	c.Cookie(&fiber.Cookie{
		Name:     sessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

// generateToken creates a JWT token for the given user ID and username
func (s *Server) generateToken(userID uint, username string) (string, error) {
	if s.config.SecretKey == "" {
		return "", fmt.Errorf("secret key not configured")
	}

	now := time.Now()
	claims := jwt.MapClaims{
		"sub":      strconv.FormatUint(uint64(userID), 10),
		"username": username,
		"iss":      tokenIssuer,
		"aud":      tokenAudience,
		"exp":      now.Add(sessionTTL).Unix(),
		"iat":      now.Unix(),
		"nbf":      now.Unix(),
		"jti":      s.generateJTI(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.config.SecretKey))
}

// generateJTI creates a unique JWT ID to prevent replay attacks
func (s *Server) generateJTI() string {
	return fmt.Sprintf("%d-%s", time.Now().Unix(), uuid.New().String()[:8])
}
