package handler

import (
	"github.com/gofiber/fiber/v2"

	"quizduel/internal/domain"
	"quizduel/internal/middleware"
	"quizduel/internal/pkg/validation"
	"quizduel/internal/service/social"
)

type SocialHandler struct {
	socialService social.Service
	validator     *validation.Validator
}

func NewSocialHandler(socialService social.Service, v *validation.Validator) *SocialHandler {
	return &SocialHandler{socialService: socialService, validator: v}
}

func (h *SocialHandler) Search(c *fiber.Ctx) error {
	users, err := h.socialService.Search(c.UserContext(), c.Query("query"), middleware.GetCurrentUserID(c))
	if err != nil {
		return err
	}

	return c.JSON(users)
}

func (h *SocialHandler) SendFriendRequest(c *fiber.Ctx) error {
	var input domain.FriendActionInput
	if err := bind(c, h.validator, &input); err != nil {
		return err
	}

	if err := h.socialService.SendFriendRequest(c.UserContext(), middleware.GetCurrentUserID(c), input.UserID); err != nil {
		return err
	}

	return c.JSON(fiber.Map{"ok": true})
}

func (h *SocialHandler) AcceptFriendRequest(c *fiber.Ctx) error {
	var input domain.FriendActionInput
	if err := bind(c, h.validator, &input); err != nil {
		return err
	}

	if err := h.socialService.AcceptFriendRequest(c.UserContext(), input.UserID, middleware.GetCurrentUserID(c)); err != nil {
		return err
	}

	return c.JSON(fiber.Map{"ok": true})
}

func (h *SocialHandler) ListFriends(c *fiber.Ctx) error {
	friends, err := h.socialService.ListFriends(c.UserContext(), middleware.GetCurrentUserID(c))
	if err != nil {
		return err
	}

	return c.JSON(friends)
}
