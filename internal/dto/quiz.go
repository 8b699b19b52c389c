package dto

import "time"

// GenerateQuizRequest represents the body for quiz generation
// @Description Request body holding the Wikipedia article URL
type GenerateQuizRequest struct {
	URL string `json:"url"`
}

// QuizQuestionResponse represents a single multiple-choice question
type QuizQuestionResponse struct {
	Question    string   `json:"question"`
	Options     []string `json:"options"`
	Answer      string   `json:"answer"`
	Difficulty  string   `json:"difficulty"`
	Explanation string   `json:"explanation"`
}

// KeyEntitiesResponse groups the named entities found in the article
type KeyEntitiesResponse struct {
	People        []string `json:"people"`
	Organizations []string `json:"organizations"`
	Locations     []string `json:"locations"`
}

// QuizResponse represents a full quiz document in the API response
// @Description Generated quiz with questions, entities and related topics
type QuizResponse struct {
	ID            int64                  `json:"id"`
	URL           string                 `json:"url"`
	Title         string                 `json:"title"`
	Summary       string                 `json:"summary"`
	KeyEntities   KeyEntitiesResponse    `json:"key_entities"`
	Sections      []string               `json:"sections"`
	Questions     []QuizQuestionResponse `json:"quiz"`
	RelatedTopics []string               `json:"related_topics"`
}

// QuizSummaryResponse represents one history entry
type QuizSummaryResponse struct {
	ID            int64     `json:"id"`
	URL           string    `json:"url"`
	Title         string    `json:"title"`
	DateGenerated time.Time `json:"date_generated"`
}

// HistoryResponse represents a page of previously generated quizzes
type HistoryResponse struct {
	Quizzes []QuizSummaryResponse `json:"quizzes"`
	Skip    int                   `json:"skip"`
	Limit   int                   `json:"limit"`
}

// HealthResponse represents the service health in the API response
type HealthResponse struct {
	Status            string `json:"status"`
	DatabaseConnected bool   `json:"database_connected"`
}

// CacheInfoResponse describes the in-process URL cache state
type CacheInfoResponse struct {
	Size    int `json:"size"`
	MaxSize int `json:"max_size"`
}

// APIInfoResponse represents the service metadata returned by /api/info
type APIInfoResponse struct {
	Name        string            `json:"name"`
	Version     string            `json:"version"`
	Description string            `json:"description"`
	Endpoints   map[string]string `json:"endpoints"`
	CacheInfo   CacheInfoResponse `json:"cache_info"`
}

// RootResponse represents the landing payload at /
type RootResponse struct {
	Message string `json:"message"`
	Version string `json:"version"`
}

// ErrorResponse represents an error in the API response
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}
