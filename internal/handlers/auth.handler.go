package handlers

import (
	"riego/internal/app"
	authController "riego/internal/controllers/auth"
	"riego/internal/handlers/middleware"

	"github.com/gofiber/fiber/v2"
)

type AuthHandler struct {
	Handler
	authController authController.AuthControllerInterface
}

func NewAuthHandler(app *app.App, router fiber.Router) *AuthHandler {
	return &AuthHandler{
		Handler:        newHandler(app, router, "auth_handler"),
		authController: app.Controllers.Auth,
	}
}

func (h *AuthHandler) Register() {
	h.router.Post("/register", h.register)
	h.router.Post("/login", h.login)
	h.router.Post("/refresh", h.refresh)
	h.router.Post("/password-reset", h.passwordReset)
	h.router.Post("/set-password", h.setPassword)

	h.router.Get("/me", h.middleware.RequireAuth(), h.me)
}

func (h *AuthHandler) register(c *fiber.Ctx) error {
	var req authController.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c)
	}

	profile, err := h.authController.Register(c.UserContext(), req)
	if err != nil {
		return handleError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(profile)
}

func (h *AuthHandler) login(c *fiber.Ctx) error {
	var req authController.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c)
	}

	pair, err := h.authController.Login(c.UserContext(), req)
	if err != nil {
		return handleError(c, h.log, err)
	}
	return c.JSON(pair)
}

func (h *AuthHandler) refresh(c *fiber.Ctx) error {
	var req authController.RefreshRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c)
	}

	access, err := h.authController.Refresh(c.UserContext(), req)
	if err != nil {
		return handleError(c, h.log, err)
	}
	return c.JSON(access)
}

func (h *AuthHandler) passwordReset(c *fiber.Ctx) error {
	var req authController.PasswordResetRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c)
	}

	response, err := h.authController.RequestPasswordReset(c.UserContext(), req)
	if err != nil {
		return handleError(c, h.log, err)
	}
	return c.JSON(response)
}

func (h *AuthHandler) setPassword(c *fiber.Ctx) error {
	var req authController.SetPasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c)
	}

	response, err := h.authController.SetPassword(c.UserContext(), req)
	if err != nil {
		return handleError(c, h.log, err)
	}
	return c.JSON(response)
}

func (h *AuthHandler) me(c *fiber.Ctx) error {
	user := middleware.GetUser(c)
	if user == nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": ErrMsgBadCredentials})
	}

	profile, err := h.authController.Profile(c.UserContext(), user.ID)
	if err != nil {
		return handleError(c, h.log, err)
	}
	return c.JSON(profile)
}
