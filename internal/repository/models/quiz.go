package models

import (
	"database/sql"
	"time"
)

// Quiz is the database model for a stored quiz. The full quiz document
// is kept as JSON in FullQuizData; the scalar columns exist so history
// listings never have to decode the document.
type Quiz struct {
	ID             int64          `db:"id"`
	URL            string         `db:"url"`
	Title          string         `db:"title"`
	DateGenerated  time.Time      `db:"date_generated"`
	ScrapedContent sql.NullString `db:"scraped_content"`
	FullQuizData   []byte         `db:"full_quiz_data"`
}
