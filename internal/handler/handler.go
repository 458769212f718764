package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"quizduel/internal/domain"
	"quizduel/internal/middleware"
	"quizduel/internal/pkg/validation"
	"quizduel/internal/service"
)

type Handlers struct {
	Auth         *AuthHandler
	Challenge    *ChallengeHandler
	Notification *NotificationHandler
	Social       *SocialHandler
	Quiz         *QuizHandler
}

func NewHandlers(services *service.Services, v *validation.Validator) *Handlers {
	return &Handlers{
		Auth:         NewAuthHandler(services.Auth, services.User, v),
		Challenge:    NewChallengeHandler(services.Challenge, v),
		Notification: NewNotificationHandler(services.Notification),
		Social:       NewSocialHandler(services.Social, v),
		Quiz:         NewQuizHandler(services.Quiz, v),
	}
}

// bind parses the JSON body into dst and validates it.
func bind(c *fiber.Ctx, v *validation.Validator, dst interface{}) error {
	if err := c.BodyParser(dst); err != nil {
		return middleware.BadRequest("Invalid request body")
	}
	return v.Validate(dst)
}

func paramUUID(c *fiber.Ctx, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Params(name))
	if err != nil {
		return uuid.Nil, middleware.BadRequest("Invalid " + name)
	}
	return id, nil
}

func getPaginationParams(c *fiber.Ctx) domain.PaginationParams {
	params := domain.Unpaginated()

	if page := c.QueryInt("page", 1); page > 0 {
		params.Page = page
	}
	if pageSize := c.QueryInt("page_size", 0); pageSize > 0 {
		params.PageSize = pageSize
	}

	params.Validate()
	return params
}
