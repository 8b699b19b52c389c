package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"
	"wikiquiz/internal/domain"
	"wikiquiz/internal/repository/models"
	"wikiquiz/internal/util"

	"github.com/jmoiron/sqlx"
)

// QuizDatabaseAdapter implements domain.QuizRepository using sqlx.DB
type QuizDatabaseAdapter struct {
	db *sqlx.DB
}

// NewQuizDatabaseAdapter creates a new instance of QuizDatabaseAdapter
func NewQuizDatabaseAdapter(db *sqlx.DB) domain.QuizRepository {
	return &QuizDatabaseAdapter{db: db}
}

// SaveQuiz implements domain.QuizRepository. The quiz document and the
// scraped article text are written in a single transaction so a failed
// insert never leaves a partial row behind.
func (a *QuizDatabaseAdapter) SaveQuiz(ctx context.Context, quiz *domain.Quiz, scrapedContent string) (int64, error) {
	modelQuiz, err := toModelQuiz(quiz, scrapedContent)
	if err != nil {
		return 0, err
	}
	modelQuiz.DateGenerated = time.Now().UTC()

	tx, err := a.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}

	query := `INSERT INTO quizzes (
		url, title, date_generated, scraped_content, full_quiz_data
	) VALUES (
		$1, $2, $3, $4, $5
	) RETURNING id`

	var id int64
	err = tx.QueryRowxContext(ctx, query,
		modelQuiz.URL,
		modelQuiz.Title,
		modelQuiz.DateGenerated,
		modelQuiz.ScrapedContent,
		modelQuiz.FullQuizData,
	).Scan(&id)
	if err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return 0, fmt.Errorf("failed to save quiz: %w (rollback failed: %v)", err, rbErr)
		}
		return 0, fmt.Errorf("failed to save quiz: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit quiz insert: %w", err)
	}

	return id, nil
}

// GetQuizByID implements domain.QuizRepository. Returns (nil, nil) when
// no quiz with the given id exists.
func (a *QuizDatabaseAdapter) GetQuizByID(ctx context.Context, id int64) (*domain.Quiz, error) {
	var modelQuiz models.Quiz
	query := `SELECT
		id,
		url,
		title,
		date_generated,
		scraped_content,
		full_quiz_data
	FROM quizzes
	WHERE id = $1`

	err := a.db.GetContext(ctx, &modelQuiz, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get quiz by ID %d: %w", id, err)
	}
	return toDomainQuiz(&modelQuiz)
}

// GetHistory implements domain.QuizRepository. Results are ordered
// newest first; skip/limit map directly onto OFFSET/LIMIT.
func (a *QuizDatabaseAdapter) GetHistory(ctx context.Context, skip, limit int) ([]domain.QuizSummary, error) {
	query := `SELECT
		id,
		url,
		title,
		date_generated
	FROM quizzes
	ORDER BY date_generated DESC, id DESC
	OFFSET $1 LIMIT $2`

	rows, err := a.db.QueryxContext(ctx, query, skip, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query quiz history: %w", err)
	}
	defer rows.Close()

	summaries := make([]domain.QuizSummary, 0, limit)
	for rows.Next() {
		var row struct {
			ID            int64     `db:"id"`
			URL           string    `db:"url"`
			Title         string    `db:"title"`
			DateGenerated time.Time `db:"date_generated"`
		}
		if err := rows.StructScan(&row); err != nil {
			return nil, fmt.Errorf("failed to scan history row: %w", err)
		}
		summaries = append(summaries, domain.QuizSummary{
			ID:            row.ID,
			URL:           row.URL,
			Title:         row.Title,
			DateGenerated: row.DateGenerated,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during history rows iteration: %w", err)
	}
	return summaries, nil
}

// Ping implements domain.QuizRepository
func (a *QuizDatabaseAdapter) Ping(ctx context.Context) error {
	if err := a.db.PingContext(ctx); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}
	return nil
}

// Helper functions for model conversion
func toDomainQuiz(m *models.Quiz) (*domain.Quiz, error) {
	if m == nil {
		return nil, fmt.Errorf("cannot convert nil models.Quiz to domain.Quiz")
	}
	var quiz domain.Quiz
	if err := json.Unmarshal(m.FullQuizData, &quiz); err != nil {
		return nil, fmt.Errorf("failed to decode stored quiz %d: %w", m.ID, err)
	}
	// The columns are authoritative for identity fields.
	quiz.ID = m.ID
	quiz.URL = m.URL
	quiz.Title = m.Title
	return &quiz, nil
}

func toModelQuiz(d *domain.Quiz, scrapedContent string) (*models.Quiz, error) {
	if d == nil {
		return nil, fmt.Errorf("cannot save nil quiz")
	}
	data, err := json.Marshal(d)
	if err != nil {
		return nil, fmt.Errorf("failed to encode quiz for storage: %w", err)
	}
	return &models.Quiz{
		URL:            d.URL,
		Title:          d.Title,
		ScrapedContent: util.StringToNullString(scrapedContent),
		FullQuizData:   data,
	}, nil
}
