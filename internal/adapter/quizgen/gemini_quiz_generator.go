// Package quizgen generates structured quizzes from article text with
// a Gemini model behind langchaingo.
package quizgen

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"wikiquiz/internal/config"
	"wikiquiz/internal/domain"
	"wikiquiz/internal/retry"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/googleai"
	"go.uber.org/zap"
)

// quizSchemaJSON is the structural gate for model output. Shape only;
// count bounds and enums are enforced by domain.Quiz.Validate so that
// structural and semantic failures stay distinguishable.
const quizSchemaJSON = `{
	"$schema": "https://json-schema.org/draft/2020-12/schema",
	"type": "object",
	"properties": {
		"title": {"type": "string"},
		"summary": {"type": "string"},
		"key_entities": {
			"type": "object",
			"properties": {
				"people": {"type": "array", "items": {"type": "string"}},
				"organizations": {"type": "array", "items": {"type": "string"}},
				"locations": {"type": "array", "items": {"type": "string"}}
			},
			"required": ["people", "organizations", "locations"]
		},
		"sections": {"type": "array", "items": {"type": "string"}},
		"quiz": {
			"type": "array",
			"items": {
				"type": "object",
				"properties": {
					"question": {"type": "string"},
					"options": {"type": "array", "items": {"type": "string"}},
					"answer": {"type": "string"},
					"difficulty": {"type": "string"},
					"explanation": {"type": "string"}
				},
				"required": ["question", "options", "answer", "difficulty", "explanation"]
			}
		},
		"related_topics": {"type": "array", "items": {"type": "string"}}
	},
	"required": ["title", "summary", "key_entities", "sections", "quiz", "related_topics"]
}`

const promptTemplate = `You are an expert educational content creator specializing in transforming Wikipedia articles into comprehensive, structured quizzes. Your task is to analyze the provided article and generate educational content that is entirely grounded in the source material.

ARTICLE INFORMATION:
Title: %s
Content: %s

GENERATION REQUIREMENTS:

1. SUMMARY (2-3 sentences):
   - Provide a concise overview of the main topic
   - Focus on the most important aspects covered in the article
   - Use clear, accessible language

2. KEY ENTITIES (Extract and categorize):
   - People: Names of individuals mentioned (historical figures, scientists, leaders, etc.)
   - Organizations: Companies, institutions, groups, governments, agencies
   - Locations: Countries, cities, regions, geographic features, landmarks

3. SECTIONS (Main topics covered):
   - List the primary sections or themes from the article
   - Focus on substantial content areas, not minor subsections
   - Use clear, descriptive names

4. QUIZ QUESTIONS (Generate 5-10 questions):
   For each question, ensure:
   - Question is clear, specific, and tests understanding (not just memorization)
   - Exactly 4 options labeled A, B, C, D
   - One correct answer based strictly on article content
   - Difficulty level: "easy" (basic facts), "medium" (connections/analysis), or "hard" (complex concepts)
   - Brief explanation that references the specific article section or context
   - Vary difficulty levels across all questions
   - Cover different aspects of the article, not just the introduction

5. RELATED TOPICS (3-5 suggestions):
   - Suggest related Wikipedia topics for further reading
   - Base suggestions on concepts, people, or themes mentioned in the article
   - Provide topics that would naturally extend the reader's knowledge

CRITICAL GUIDELINES:
- Base ALL content strictly on the provided article - do not add external knowledge
- Ensure questions test comprehension and analysis, not trivial details
- Make explanations educational and reference specific parts of the article
- Avoid questions about exact dates unless they are central to the topic
- Ensure all extracted entities are actually mentioned in the article
- Keep language clear and accessible for educational purposes
- Maintain consistency in terminology throughout

QUALITY STANDARDS:
- Questions should be unambiguous with only one clearly correct answer
- Options should be plausible but distinctly different
- Explanations should help readers understand why the answer is correct
- All content must be verifiable from the source article

Respond with a single JSON object and nothing else, matching this structure exactly:
{
  "title": "article title",
  "summary": "2-3 sentence summary",
  "key_entities": {"people": [], "organizations": [], "locations": []},
  "sections": ["section name"],
  "quiz": [
    {
      "question": "question text",
      "options": ["option A", "option B", "option C", "option D"],
      "answer": "A",
      "difficulty": "easy",
      "explanation": "why the answer is correct"
    }
  ],
  "related_topics": ["related topic"]
}

Generate the response in the exact JSON format specified above. Ensure all fields are properly filled and the structure matches the requirements exactly.`

// GeminiQuizGenerator implements domain.QuizGenerator against a Gemini
// model. The model client, compiled schema and retry driver are built
// once at construction and shared across requests.
type GeminiQuizGenerator struct {
	model  llms.Model
	schema *jsonschema.Schema
	cfg    config.GeminiConfig
	driver *retry.Driver
	logger *zap.Logger
}

// NewGeminiQuizGenerator creates the production generator. A missing
// API key is a fatal configuration error, never retried.
func NewGeminiQuizGenerator(ctx context.Context, cfg config.GeminiConfig, logger *zap.Logger) (*GeminiQuizGenerator, error) {
	if cfg.APIKey == "" {
		return nil, domain.NewConfigurationError("GOOGLE_API_KEY is required for quiz generation")
	}

	model, err := googleai.New(ctx,
		googleai.WithAPIKey(cfg.APIKey),
		googleai.WithDefaultModel(cfg.Model),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	logger.Info("Gemini model initialized", zap.String("model", cfg.Model))
	return NewWithModel(model, cfg, logger)
}

// NewWithModel wires the generator around an existing model client.
// Tests use it to substitute scripted stub models.
func NewWithModel(model llms.Model, cfg config.GeminiConfig, logger *zap.Logger) (*GeminiQuizGenerator, error) {
	schema, err := compileQuizSchema()
	if err != nil {
		return nil, fmt.Errorf("failed to compile quiz schema: %w", err)
	}

	maxRetries := cfg.MaxRetries
	if maxRetries <= 0 {
		maxRetries = 3
	}

	return &GeminiQuizGenerator{
		model:  model,
		schema: schema,
		cfg:    cfg,
		driver: retry.NewDriver(maxRetries, retry.ExponentialBackoff),
		logger: logger,
	}, nil
}

// SetSleep replaces the backoff sleep so tests can drive the retry
// state machine with a fake clock.
func (g *GeminiQuizGenerator) SetSleep(sleep retry.SleepFunc) {
	g.driver.Sleep = sleep
}

// Generate implements domain.QuizGenerator.
func (g *GeminiQuizGenerator) Generate(ctx context.Context, title string, content string) (*domain.Quiz, error) {
	if strings.TrimSpace(title) == "" {
		return nil, domain.NewInvalidInputError("Article title cannot be empty")
	}
	if len(strings.TrimSpace(content)) < domain.MinContentChars {
		return nil, domain.NewInvalidInputError(
			fmt.Sprintf("Article content too short for quiz generation (minimum %d characters)", domain.MinContentChars))
	}

	// The prompt is deterministic and identical across attempts.
	prompt := fmt.Sprintf(promptTemplate, strings.TrimSpace(title), strings.TrimSpace(content))

	var quiz *domain.Quiz
	attempts, err := g.driver.Do(ctx, func(ctx context.Context, attempt int) error {
		g.logger.Info("Quiz generation attempt",
			zap.Int("attempt", attempt+1),
			zap.Int("max_attempts", g.driver.MaxAttempts),
			zap.String("title", title))

		result, attemptErr := g.attempt(ctx, prompt)
		if attemptErr != nil {
			g.logger.Warn("Quiz generation attempt failed",
				zap.Int("attempt", attempt+1),
				zap.Error(attemptErr))
			return attemptErr
		}
		quiz = result
		return nil
	})

	if err != nil {
		return nil, domain.NewGenerationExhaustedError(attempts, err)
	}

	g.logger.Info("Quiz generated successfully",
		zap.String("title", quiz.Title),
		zap.Int("questions", len(quiz.Questions)))
	return quiz, nil
}

// attempt is one full pass: model call, JSON extraction, structural
// schema validation, typed decode and semantic validation.
func (g *GeminiQuizGenerator) attempt(ctx context.Context, prompt string) (*domain.Quiz, error) {
	raw, err := llms.GenerateFromSinglePrompt(ctx, g.model, prompt,
		llms.WithTemperature(g.cfg.Temperature),
		llms.WithMaxTokens(g.cfg.MaxTokens),
	)
	if err != nil {
		return nil, domain.NewNetworkError("LLM call failed", err)
	}

	payload, err := extractJSON(raw)
	if err != nil {
		return nil, err
	}

	var parsed any
	if err := json.Unmarshal([]byte(payload), &parsed); err != nil {
		return nil, domain.NewParseError("LLM output is not valid JSON", err)
	}
	if err := g.schema.Validate(parsed); err != nil {
		return nil, domain.NewParseError("LLM output does not match the quiz schema", err)
	}

	var quiz domain.Quiz
	if err := json.Unmarshal([]byte(payload), &quiz); err != nil {
		return nil, domain.NewParseError("Failed to decode quiz payload", err)
	}
	quiz.ID = 0
	quiz.URL = "" // populated by the caller

	if err := quiz.Validate(); err != nil {
		return nil, err
	}
	return &quiz, nil
}

// extractJSON pulls the JSON object out of the raw model output,
// tolerating markdown fences and surrounding prose.
func extractJSON(raw string) (string, error) {
	cleaned := strings.TrimSpace(raw)
	start := strings.Index(cleaned, "{")
	end := strings.LastIndex(cleaned, "}")
	if start == -1 || end == -1 || end <= start {
		return "", domain.NewParseError("No JSON object found in LLM response", nil)
	}
	return cleaned[start : end+1], nil
}

func compileQuizSchema() (*jsonschema.Schema, error) {
	doc, err := jsonschema.UnmarshalJSON(strings.NewReader(quizSchemaJSON))
	if err != nil {
		return nil, fmt.Errorf("parse schema definition: %w", err)
	}

	c := jsonschema.NewCompiler()
	if err := c.AddResource("schema://quiz.json", doc); err != nil {
		return nil, fmt.Errorf("add resource: %w", err)
	}
	return c.Compile("schema://quiz.json")
}

var _ domain.QuizGenerator = (*GeminiQuizGenerator)(nil)
