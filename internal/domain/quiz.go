package domain

import (
	"fmt"
	"strings"
	"time"
)

// Content bounds enforced across scraping and generation.
const (
	MinContentChars    = 500
	MinQuestions       = 5
	MaxQuestions       = 10
	OptionsPerQuestion = 4
	MinRelatedTopics   = 3
	MaxRelatedTopics   = 5
	MinSummaryChars    = 50
	MaxSummaryChars    = 1000
	MaxTitleChars      = 200
)

// ScrapedArticle is the cleaned output of the Wikipedia extractor.
// Content is guaranteed to be at least MinContentChars characters.
type ScrapedArticle struct {
	Title     string
	Content   string
	SourceURL string
}

// QuizQuestion is a single multiple-choice question with exactly four
// options, a correct-answer letter and a short grounded explanation.
type QuizQuestion struct {
	Question    string   `json:"question"`
	Options     []string `json:"options"`
	Answer      string   `json:"answer"`
	Difficulty  string   `json:"difficulty"`
	Explanation string   `json:"explanation"`
}

// Validate enforces the per-question invariants. index is used only for
// error messages, which are numbered from 1 like the prompt's options.
func (q *QuizQuestion) Validate(index int) error {
	n := index + 1
	if l := len(strings.TrimSpace(q.Question)); l < 10 || l > 500 {
		return NewSemanticValidationError(fmt.Sprintf("Question %d text must be 10-500 characters", n))
	}
	if len(q.Options) != OptionsPerQuestion {
		return NewSemanticValidationError(fmt.Sprintf("Question %d must have exactly %d options", n, OptionsPerQuestion))
	}
	for _, opt := range q.Options {
		if strings.TrimSpace(opt) == "" {
			return NewSemanticValidationError(fmt.Sprintf("Question %d has a blank option", n))
		}
	}
	switch q.Answer {
	case "A", "B", "C", "D":
	default:
		return NewSemanticValidationError(fmt.Sprintf("Question %d answer must be A, B, C, or D", n))
	}
	switch q.Difficulty {
	case "easy", "medium", "hard":
	default:
		return NewSemanticValidationError(fmt.Sprintf("Question %d difficulty must be easy, medium, or hard", n))
	}
	if l := len(strings.TrimSpace(q.Explanation)); l < 10 || l > 300 {
		return NewSemanticValidationError(fmt.Sprintf("Question %d explanation must be 10-300 characters", n))
	}
	return nil
}

// KeyEntities holds categorized entities extracted from the article.
// Lists may be empty; the prompt restricts them to terms from the text.
type KeyEntities struct {
	People        []string `json:"people"`
	Organizations []string `json:"organizations"`
	Locations     []string `json:"locations"`
}

// Quiz is the aggregate produced by generation. ID is zero until the
// quiz has been persisted; URL is populated by the orchestrator.
type Quiz struct {
	ID            int64          `json:"id,omitempty"`
	URL           string         `json:"url"`
	Title         string         `json:"title"`
	Summary       string         `json:"summary"`
	KeyEntities   KeyEntities    `json:"key_entities"`
	Sections      []string       `json:"sections"`
	Questions     []QuizQuestion `json:"quiz"`
	RelatedTopics []string       `json:"related_topics"`
}

// Validate enforces the aggregate invariants. The URL field is allowed
// to be empty because the generator produces quizzes before the caller
// attaches the source URL.
func (q *Quiz) Validate() error {
	if l := len(strings.TrimSpace(q.Title)); l < 1 || l > MaxTitleChars {
		return NewSemanticValidationError(fmt.Sprintf("Quiz title must be 1-%d characters", MaxTitleChars))
	}
	if l := len(strings.TrimSpace(q.Summary)); l < MinSummaryChars || l > MaxSummaryChars {
		return NewSemanticValidationError(fmt.Sprintf("Quiz summary must be %d-%d characters", MinSummaryChars, MaxSummaryChars))
	}
	if len(q.Sections) == 0 {
		return NewSemanticValidationError("Quiz must have at least one section")
	}
	if len(q.Questions) < MinQuestions {
		return NewSemanticValidationError(fmt.Sprintf("Quiz must contain at least %d questions", MinQuestions))
	}
	if len(q.Questions) > MaxQuestions {
		return NewSemanticValidationError(fmt.Sprintf("Quiz must contain at most %d questions", MaxQuestions))
	}
	for i := range q.Questions {
		if err := q.Questions[i].Validate(i); err != nil {
			return err
		}
	}
	if len(q.RelatedTopics) < MinRelatedTopics {
		return NewSemanticValidationError(fmt.Sprintf("Quiz must have at least %d related topics", MinRelatedTopics))
	}
	if len(q.RelatedTopics) > MaxRelatedTopics {
		return NewSemanticValidationError(fmt.Sprintf("Quiz must have at most %d related topics", MaxRelatedTopics))
	}
	return nil
}

// QuizSummary is the read model for the history listing.
type QuizSummary struct {
	ID            int64     `json:"id"`
	URL           string    `json:"url"`
	Title         string    `json:"title"`
	DateGenerated time.Time `json:"date_generated"`
}
