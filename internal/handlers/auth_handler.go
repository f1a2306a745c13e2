package handlers

import (
	"crypto/rand"
	"encoding/base64"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/smurfolan/likkle-backend/internal/httpx"
	"github.com/smurfolan/likkle-backend/internal/service"
	"github.com/smurfolan/likkle-backend/internal/validation"
)

type AuthHandler struct {
	authService *service.AuthService
}

func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// CSRF mints the double-submit token for cookie-authenticated browser
// clients: the value is set as a readable cookie and echoed in the body so
// the client can mirror it into the X-LK-CSRF header.
func (h *AuthHandler) CSRF(c *fiber.Ctx) error {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return httpx.Internal(c, "csrf_failed")
	}
	token := base64.RawURLEncoding.EncodeToString(buf)

	c.Cookie(&fiber.Cookie{
		Name:     "lk_csrf",
		Value:    token,
		Expires:  time.Now().Add(12 * time.Hour),
		Secure:   true,
		SameSite: "Lax",
		Path:     "/",
	})

	return c.JSON(fiber.Map{"csrf_token": token})
}

func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var input service.RegisterInput
	if err := c.BodyParser(&input); err != nil {
		return httpx.BadRequest(c, "invalid_request_body", "Invalid request body")
	}

	input.Email = validation.NormalizeEmail(input.Email)
	input.Username = validation.NormalizeUsername(input.Username)
	if !validation.ValidateEmail(input.Email) {
		return httpx.BadRequest(c, "invalid_email", "Invalid email")
	}
	if !validation.ValidateUsername(input.Username) {
		return httpx.BadRequest(c, "invalid_username", "Invalid username")
	}
	if !validation.ValidatePassword(input.Password) {
		return httpx.BadRequest(c, "invalid_password", "Password is too short")
	}

	result, err := h.authService.Register(input)
	if err != nil {
		return httpx.BadRequest(c, "register_failed", err.Error())
	}

	return c.Status(fiber.StatusCreated).JSON(result)
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var input service.LoginInput
	if err := c.BodyParser(&input); err != nil {
		return httpx.BadRequest(c, "invalid_request_body", "Invalid request body")
	}

	input.Email = validation.NormalizeEmail(input.Email)
	if input.Email == "" || input.Password == "" {
		return httpx.BadRequest(c, "missing_credentials", "Email and password are required")
	}

	result, err := h.authService.Login(input)
	if err != nil {
		return httpx.Unauthorized(c, "login_failed", err.Error())
	}

	return c.JSON(result)
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

func (h *AuthHandler) Refresh(c *fiber.Ctx) error {
	var req refreshRequest
	if err := c.BodyParser(&req); err != nil {
		return httpx.BadRequest(c, "invalid_request_body", "Invalid request body")
	}
	if req.RefreshToken == "" {
		return httpx.BadRequest(c, "missing_refresh_token", "refresh_token is required")
	}

	result, err := h.authService.Refresh(req.RefreshToken)
	if err != nil {
		return httpx.Unauthorized(c, "refresh_failed", err.Error())
	}

	return c.JSON(result)
}

func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	userID, err := httpx.LocalUint(c, "userID")
	if err != nil {
		return httpx.Unauthorized(c, "unauthorized", "Unauthorized")
	}

	if err := h.authService.Logout(userID); err != nil {
		return httpx.Internal(c, "logout_failed")
	}

	return c.JSON(fiber.Map{"message": "Logged out"})
}
