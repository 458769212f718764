package middleware

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"quizduel/internal/domain"
	"quizduel/internal/pkg/validation"
	"quizduel/internal/service/auth"
)

type ErrorResponse struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
	TraceID string            `json:"trace_id,omitempty"`
}

// NewErrorHandler maps domain errors onto HTTP statuses. Unmapped errors are logged and
// reported as 500 without their message.
func NewErrorHandler(log *logrus.Entry) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		traceID := uuid.New().String()[:8]
		resp := ErrorResponse{TraceID: traceID}
		status := fiber.StatusInternalServerError

		var fe *fiber.Error
		var fields *validation.FieldErrors
		switch {
		case errors.As(err, &fe):
			status = fe.Code
			resp.Message = fe.Message
		case errors.As(err, &fields):
			status = fiber.StatusUnprocessableEntity
			resp.Message = "Validation failed"
			resp.Fields = fields.Fields
		case errors.Is(err, auth.ErrInvalidCredentials), errors.Is(err, auth.ErrInvalidToken):
			status = fiber.StatusUnauthorized
			resp.Message = err.Error()
		case errors.Is(err, domain.ErrNotFound):
			status = fiber.StatusNotFound
			resp.Message = err.Error()
		case errors.Is(err, domain.ErrUnauthorized):
			status = fiber.StatusForbidden
			resp.Message = err.Error()
		case errors.Is(err, domain.ErrInvalidTransition), errors.Is(err, domain.ErrConflict):
			status = fiber.StatusConflict
			resp.Message = err.Error()
		case errors.Is(err, domain.ErrValidation):
			status = fiber.StatusUnprocessableEntity
			resp.Message = err.Error()
		default:
			resp.Message = "Internal server error"
			if log != nil {
				log.WithError(err).WithFields(logrus.Fields{
					"trace_id": traceID,
					"method":   c.Method(),
					"path":     c.Path(),
				}).Error("unhandled request error")
			}
		}
		resp.Code = statusCode(status)

		return c.Status(status).JSON(resp)
	}
}

func statusCode(status int) string {
	switch status {
	case fiber.StatusBadRequest:
		return "BAD_REQUEST"
	case fiber.StatusUnauthorized:
		return "UNAUTHORIZED"
	case fiber.StatusForbidden:
		return "FORBIDDEN"
	case fiber.StatusNotFound:
		return "NOT_FOUND"
	case fiber.StatusConflict:
		return "CONFLICT"
	case fiber.StatusRequestEntityTooLarge:
		return "PAYLOAD_TOO_LARGE"
	case fiber.StatusUnprocessableEntity:
		return "VALIDATION_ERROR"
	case fiber.StatusBadGateway:
		return "UPSTREAM_ERROR"
	default:
		if status >= 500 {
			return "INTERNAL_ERROR"
		}
		return "ERROR"
	}
}

func BadRequest(message string) *fiber.Error {
	return fiber.NewError(fiber.StatusBadRequest, message)
}

func Unauthorized(message string) *fiber.Error {
	return fiber.NewError(fiber.StatusUnauthorized, message)
}
