package server

import (
	"log/slog"
	"time"

	"creepycorners/internal/middleware"
	"creepycorners/internal/models"
	"creepycorners/internal/service"

	"github.com/gofiber/fiber/v2"
)

// RegisterRequest is the body of POST /api/register.
type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest is the body of POST /api/login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Register handles POST /api/register
// @Summary Register
// @Description Create an account with email and password; also sets the "token" cookie
// @Tags auth
// @Accept json
// @Produce json
// @Param request body RegisterRequest true "Registration"
// @Success 201 {object} object{message=string,user=models.User,token=string}
// @Failure 400 {object} models.ErrorResponse
// @Router /register [post]
func (s *Server) Register(c *fiber.Ctx) error {
	var req RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	user, err := s.authService.Register(c.UserContext(), service.RegisterInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		return mapServiceError(c, err)
	}

	session, err := s.authService.IssueSession(user)
	if err != nil {
		return mapServiceError(c, err)
	}

	if s.config.AuthCookieEnabled {
		s.setSessionCookie(c, session.Token, session.ExpiresAt)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Registration successful",
		"user":    user,
		"token":   session.Token,
	})
}

// Login handles POST /api/login
// @Summary Login
// @Description Authenticate and receive a session token (also set as the "token" cookie)
// @Tags auth
// @Accept json
// @Produce json
// @Param request body LoginRequest true "Credentials"
// @Success 200 {object} object{message=string,user=models.User,token=string,expires_at=string}
// @Failure 400 {object} models.ErrorResponse
// @Failure 401 {object} models.ErrorResponse
// @Router /login [post]
func (s *Server) Login(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	session, err := s.authService.Login(c.UserContext(), service.LoginInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if models.HasCode(err, models.CodeNotFound) {
		// login reports an unknown account as a bad request, not a missing resource
		return models.RespondWithError(c, fiber.StatusBadRequest, err)
	}
	if err != nil {
		return mapServiceError(c, err)
	}

	if s.config.AuthCookieEnabled {
		s.setSessionCookie(c, session.Token, session.ExpiresAt)
	}

	return c.JSON(fiber.Map{
		"message":    "Login successful",
		"user":       session.User,
		"token":      session.Token,
		"expires_at": session.ExpiresAt,
	})
}

// Logout handles POST /api/logout
// @Summary Logout
// @Description Clear the session cookie and, when enabled, revoke the token
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} object{message=string}
// @Router /logout [post]
func (s *Server) Logout(c *fiber.Ctx) error {
	if id, ok := middleware.CurrentIdentity(c); ok {
		if err := s.authService.Logout(c.UserContext(), id); err != nil {
			middleware.Logger.WarnContext(c.UserContext(), "token revocation failed",
				slog.String("error", err.Error()))
		}
	}

	s.setSessionCookie(c, "", time.Unix(0, 0))
	return c.JSON(fiber.Map{"message": "Logged out"})
}

func (s *Server) setSessionCookie(c *fiber.Ctx, token string, expires time.Time) {
	c.Cookie(&fiber.Cookie{
		Name:     middleware.SessionCookie,
		Value:    token,
		Path:     "/",
		Expires:  expires,
		HTTPOnly: true,
		Secure:   s.config.AuthCookieSecure,
		SameSite: fiber.CookieSameSiteStrictMode,
	})
}
