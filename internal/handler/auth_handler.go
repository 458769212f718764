package handler

import (
	"github.com/gofiber/fiber/v2"

	"quizduel/internal/domain"
	"quizduel/internal/middleware"
	"quizduel/internal/pkg/validation"
	"quizduel/internal/service/auth"
	"quizduel/internal/service/user"
)

type AuthHandler struct {
	authService auth.Service
	userService user.Service
	validator   *validation.Validator
}

func NewAuthHandler(authService auth.Service, userService user.Service, v *validation.Validator) *AuthHandler {
	return &AuthHandler{authService: authService, userService: userService, validator: v}
}

func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var input domain.RegisterInput
	if err := bind(c, h.validator, &input); err != nil {
		return err
	}

	user, tokens, err := h.authService.Register(c.UserContext(), input, c.Get(fiber.HeaderUserAgent))
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"user":         user,
		"access_token": tokens.AccessToken,
		"expires_in":   tokens.ExpiresIn,
	})
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var input domain.LoginInput
	if err := bind(c, h.validator, &input); err != nil {
		return err
	}

	user, tokens, err := h.authService.Login(c.UserContext(), input, c.Get(fiber.HeaderUserAgent))
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"user":         user,
		"access_token": tokens.AccessToken,
		"expires_in":   tokens.ExpiresIn,
	})
}

func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	if err := h.authService.Logout(c.UserContext(), middleware.GetSessionID(c)); err != nil {
		return err
	}

	return c.JSON(fiber.Map{"ok": true})
}

func (h *AuthHandler) Me(c *fiber.Ctx) error {
	user, err := h.userService.GetByID(c.UserContext(), middleware.GetCurrentUserID(c))
	if err != nil {
		return err
	}

	return c.JSON(user)
}

func (h *AuthHandler) UploadAvatar(c *fiber.Ctx) error {
	file, err := c.FormFile("avatar")
	if err != nil {
		return middleware.BadRequest("Missing avatar file")
	}
	if file.Size > user.MaxAvatarSize {
		return fiber.NewError(fiber.StatusRequestEntityTooLarge, "Avatar must not exceed 5MB")
	}

	src, err := file.Open()
	if err != nil {
		return err
	}
	defer src.Close()

	updated, err := h.userService.UploadAvatar(c.UserContext(), middleware.GetCurrentUserID(c),
		file.Header.Get(fiber.HeaderContentType), file.Size, src)
	if err != nil {
		return err
	}

	return c.JSON(updated)
}

func (h *AuthHandler) RegisterPushToken(c *fiber.Ctx) error {
	var input domain.PushTokenInput
	if err := bind(c, h.validator, &input); err != nil {
		return err
	}

	if err := h.userService.RegisterPushToken(c.UserContext(), middleware.GetCurrentUserID(c), input.Token); err != nil {
		return err
	}

	return c.JSON(fiber.Map{"ok": true})
}
