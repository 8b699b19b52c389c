package middleware

import (
	"strings"

	"wikiquiz/internal/domain"
	"wikiquiz/internal/dto"
	"wikiquiz/internal/validation"

	"github.com/gofiber/fiber/v2"
)

const (
	LocalGenerateRequest = "validated_generate_request"
	LocalSkip            = "validated_skip"
	LocalLimit           = "validated_limit"
	LocalQuizID          = "validated_quiz_id"
)

// ValidationMiddleware provides request validation middleware
type ValidationMiddleware struct {
	validator *validation.Validator
}

// NewValidationMiddleware creates a new validation middleware instance
func NewValidationMiddleware() *ValidationMiddleware {
	return &ValidationMiddleware{
		validator: validation.NewValidator(),
	}
}

// ValidateGenerateQuizRequest parses and validates the generation body
func (vm *ValidationMiddleware) ValidateGenerateQuizRequest() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req dto.GenerateQuizRequest
		if err := c.BodyParser(&req); err != nil {
			return domain.NewInvalidInputError("request body must be valid JSON")
		}
		req.URL = strings.TrimSpace(req.URL)

		if errs := vm.validator.ValidateGenerateQuizRequest(req.URL); len(errs) > 0 {
			return errs // handled by ErrorHandler
		}

		c.Locals(LocalGenerateRequest, req)
		return c.Next()
	}
}

// ValidatePagination validates skip/limit query parameters for history
func (vm *ValidationMiddleware) ValidatePagination() fiber.Handler {
	return func(c *fiber.Ctx) error {
		skip := c.QueryInt("skip", 0)
		limit := c.QueryInt("limit", 10)

		if errs := vm.validator.ValidatePagination(skip, limit); len(errs) > 0 {
			return errs
		}

		c.Locals(LocalSkip, skip)
		c.Locals(LocalLimit, limit)
		return c.Next()
	}
}

// ValidateQuizID validates the :id path parameter
func (vm *ValidationMiddleware) ValidateQuizID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, errs := vm.validator.ParseQuizID(c.Params("id"))
		if len(errs) > 0 {
			return errs
		}

		c.Locals(LocalQuizID, id)
		return c.Next()
	}
}
