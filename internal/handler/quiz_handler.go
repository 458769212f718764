package handler

import (
	"github.com/gofiber/fiber/v2"

	"quizduel/internal/domain"
	"quizduel/internal/middleware"
	"quizduel/internal/pkg/validation"
	"quizduel/internal/service/quiz"
)

type QuizHandler struct {
	quizService quiz.Service
	validator   *validation.Validator
}

func NewQuizHandler(quizService quiz.Service, v *validation.Validator) *QuizHandler {
	return &QuizHandler{quizService: quizService, validator: v}
}

func (h *QuizHandler) SaveScore(c *fiber.Ctx) error {
	var input domain.SaveScoreInput
	if err := bind(c, h.validator, &input); err != nil {
		return err
	}

	score, err := h.quizService.SaveScore(c.UserContext(), middleware.GetCurrentUserID(c), input)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(score)
}

func (h *QuizHandler) ListScores(c *fiber.Ctx) error {
	scores, err := h.quizService.ListScores(c.UserContext(), middleware.GetCurrentUserID(c))
	if err != nil {
		return err
	}

	return c.JSON(scores)
}

func (h *QuizHandler) Leaderboard(c *fiber.Ctx) error {
	entries, err := h.quizService.Leaderboard(c.UserContext(), c.Query("category"))
	if err != nil {
		return err
	}

	return c.JSON(entries)
}

func (h *QuizHandler) Categories(c *fiber.Ctx) error {
	return c.JSON(h.quizService.Categories())
}
