package handler

import (
	"wikiquiz/internal/dto"
	"wikiquiz/internal/logger"
	"wikiquiz/internal/middleware"
	"wikiquiz/internal/service"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

const (
	apiName    = "AI Wiki Quiz Generator"
	apiVersion = "1.0.0"
)

// QuizHandler handles quiz-related HTTP requests
type QuizHandler struct {
	service service.QuizService
}

// NewQuizHandler creates a new QuizHandler instance
func NewQuizHandler(service service.QuizService) *QuizHandler {
	return &QuizHandler{
		service: service,
	}
}

// GenerateQuiz godoc
// @Summary Generate a quiz from a Wikipedia article
// @Description Scrapes the article behind the given URL and generates a multiple-choice quiz
// @Tags quiz
// @Accept json
// @Produce json
// @Param request body dto.GenerateQuizRequest true "Article URL"
// @Success 200 {object} dto.QuizResponse
// @Failure 400 {object} middleware.ErrorResponse
// @Failure 503 {object} middleware.ErrorResponse
// @Router /generate-quiz-from-url [post]
func (h *QuizHandler) GenerateQuiz(c *fiber.Ctx) error {
	req := c.Locals(middleware.LocalGenerateRequest).(dto.GenerateQuizRequest)

	quiz, err := h.service.GenerateQuizFromURL(c.Context(), req.URL)
	if err != nil {
		logger.Get().Warn("Quiz generation failed",
			zap.Error(err),
			zap.String("url", req.URL),
		)
		return err
	}

	return c.JSON(quiz)
}

// GetQuizByID godoc
// @Summary Get a stored quiz
// @Description Returns a previously generated quiz by its id
// @Tags quiz
// @Produce json
// @Param id path int true "Quiz ID"
// @Success 200 {object} dto.QuizResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Router /quiz/{id} [get]
func (h *QuizHandler) GetQuizByID(c *fiber.Ctx) error {
	id := c.Locals(middleware.LocalQuizID).(int64)

	quiz, err := h.service.GetQuizByID(c.Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(quiz)
}

// GetHistory godoc
// @Summary List previously generated quizzes
// @Description Returns quiz summaries, newest first
// @Tags quiz
// @Produce json
// @Param skip query int false "Offset" default(0)
// @Param limit query int false "Page size" default(10)
// @Success 200 {object} dto.HistoryResponse
// @Failure 400 {object} middleware.ErrorResponse
// @Router /quiz-history [get]
func (h *QuizHandler) GetHistory(c *fiber.Ctx) error {
	skip := c.Locals(middleware.LocalSkip).(int)
	limit := c.Locals(middleware.LocalLimit).(int)

	history, err := h.service.GetHistory(c.Context(), skip, limit)
	if err != nil {
		return err
	}
	return c.JSON(history)
}

// Health godoc
// @Summary Service health
// @Description Reports whether the service and its database are reachable
// @Tags meta
// @Produce json
// @Success 200 {object} dto.HealthResponse
// @Failure 503 {object} dto.HealthResponse
// @Router /health [get]
func (h *QuizHandler) Health(c *fiber.Ctx) error {
	health := h.service.Health(c.Context())
	if !health.DatabaseConnected {
		return c.Status(fiber.StatusServiceUnavailable).JSON(health)
	}
	return c.JSON(health)
}

// Root godoc
// @Summary API landing endpoint
// @Tags meta
// @Produce json
// @Success 200 {object} dto.RootResponse
// @Router / [get]
func (h *QuizHandler) Root(c *fiber.Ctx) error {
	return c.JSON(dto.RootResponse{
		Message: apiName + " API",
		Version: apiVersion,
	})
}

// APIInfo godoc
// @Summary API metadata
// @Description Returns service metadata, endpoint index and URL cache state
// @Tags meta
// @Produce json
// @Success 200 {object} dto.APIInfoResponse
// @Router /info [get]
func (h *QuizHandler) APIInfo(c *fiber.Ctx) error {
	return c.JSON(dto.APIInfoResponse{
		Name:        apiName,
		Version:     apiVersion,
		Description: "Generates multiple-choice quizzes from Wikipedia articles",
		Endpoints: map[string]string{
			"POST /api/generate-quiz-from-url": "Generate a quiz from a Wikipedia article URL",
			"GET /api/quiz/:id":                "Fetch a stored quiz by id",
			"GET /api/quiz-history":            "List previously generated quizzes",
			"GET /api/health":                  "Service health",
			"GET /api/info":                    "This document",
		},
		CacheInfo: h.service.CacheInfo(),
	})
}
