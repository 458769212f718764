package handler

import (
	"github.com/gofiber/fiber/v2"

	"quizduel/internal/domain"
	"quizduel/internal/middleware"
	"quizduel/internal/pkg/validation"
	"quizduel/internal/service/challenge"
)

type ChallengeHandler struct {
	challengeService challenge.Service
	validator        *validation.Validator
}

func NewChallengeHandler(challengeService challenge.Service, v *validation.Validator) *ChallengeHandler {
	return &ChallengeHandler{challengeService: challengeService, validator: v}
}

func (h *ChallengeHandler) Create(c *fiber.Ctx) error {
	var input domain.CreateChallengeInput
	if err := bind(c, h.validator, &input); err != nil {
		return err
	}

	ch, err := h.challengeService.Create(c.UserContext(), middleware.GetCurrentUserID(c), input)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(ch)
}

func (h *ChallengeHandler) Accept(c *fiber.Ctx) error {
	var input domain.ChallengeActionInput
	if err := bind(c, h.validator, &input); err != nil {
		return err
	}

	ch, err := h.challengeService.Accept(c.UserContext(), input.ChallengeID, middleware.GetCurrentUserID(c))
	if err != nil {
		return err
	}

	return c.JSON(ch)
}

func (h *ChallengeHandler) Reject(c *fiber.Ctx) error {
	var input domain.ChallengeActionInput
	if err := bind(c, h.validator, &input); err != nil {
		return err
	}

	ch, err := h.challengeService.Reject(c.UserContext(), input.ChallengeID, middleware.GetCurrentUserID(c))
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{"ok": true, "challenge": ch})
}

func (h *ChallengeHandler) Complete(c *fiber.Ctx) error {
	var input domain.CompleteChallengeInput
	if err := bind(c, h.validator, &input); err != nil {
		return err
	}

	ch, err := h.challengeService.SubmitScore(c.UserContext(), input.ChallengeID, middleware.GetCurrentUserID(c), *input.Score)
	if err != nil {
		return err
	}

	return c.JSON(ch)
}

func (h *ChallengeHandler) ListActive(c *fiber.Ctx) error {
	challenges, err := h.challengeService.ListActive(c.UserContext(), middleware.GetCurrentUserID(c))
	if err != nil {
		return err
	}
	if challenges == nil {
		challenges = []domain.Challenge{}
	}

	return c.JSON(challenges)
}

func (h *ChallengeHandler) Status(c *fiber.Ctx) error {
	id, err := paramUUID(c, "id")
	if err != nil {
		return err
	}

	view, err := h.challengeService.Status(c.UserContext(), id, middleware.GetCurrentUserID(c))
	if err != nil {
		return err
	}

	return c.JSON(view)
}

func (h *ChallengeHandler) GetQuestions(c *fiber.Ctx) error {
	id, err := paramUUID(c, "id")
	if err != nil {
		return err
	}

	questions, err := h.challengeService.Questions(c.UserContext(), id, middleware.GetCurrentUserID(c))
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{"questions": questions})
}

func (h *ChallengeHandler) SaveQuestions(c *fiber.Ctx) error {
	id, err := paramUUID(c, "id")
	if err != nil {
		return err
	}

	var input domain.SaveQuestionsInput
	if err := bind(c, h.validator, &input); err != nil {
		return err
	}

	questions, err := h.challengeService.SaveQuestions(c.UserContext(), id, middleware.GetCurrentUserID(c), input.Questions)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{"ok": true, "questions": questions})
}
