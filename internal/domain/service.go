package domain

import "context"

// ArticleExtractor defines the port for turning a Wikipedia URL into a
// cleaned article ready for quiz generation.
type ArticleExtractor interface {
	// Extract fetches and cleans the article behind url.
	Extract(ctx context.Context, url string) (*ScrapedArticle, error)
}

// QuizGenerator defines the port for structured quiz generation.
type QuizGenerator interface {
	// Generate produces a validated Quiz from the article title and
	// cleaned content. The returned quiz has no URL or ID set.
	Generate(ctx context.Context, title string, content string) (*Quiz, error)
}

// QuizRepository defines the interface for quiz persistence
type QuizRepository interface {
	// SaveQuiz persists a new quiz together with the raw scraped content
	// and returns the generated id.
	SaveQuiz(ctx context.Context, quiz *Quiz, scrapedContent string) (int64, error)

	// GetQuizByID retrieves a quiz by its ID; (nil, nil) when absent.
	GetQuizByID(ctx context.Context, id int64) (*Quiz, error)

	// GetHistory returns summaries of stored quizzes, newest first.
	GetHistory(ctx context.Context, skip, limit int) ([]QuizSummary, error)

	// Ping reports database connectivity.
	Ping(ctx context.Context) error
}
