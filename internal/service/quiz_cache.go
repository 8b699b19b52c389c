package service

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"wikiquiz/internal/cache"
	"wikiquiz/internal/domain"
	"wikiquiz/internal/logger"

	"go.uber.org/zap"
)

// QuizCacheService defines the read-through cache for full quiz
// documents. Implementations must tolerate a missing backend: a nil
// cache behaves like a permanent miss, never an error.
type QuizCacheService interface {
	GetQuiz(ctx context.Context, id int64) (*domain.Quiz, error)
	PutQuiz(ctx context.Context, quiz *domain.Quiz) error
}

// quizCacheServiceImpl implements QuizCacheService on domain.Cache
type quizCacheServiceImpl struct {
	cache domain.Cache
	ttl   time.Duration
}

// NewQuizCacheService creates a new instance of quizCacheServiceImpl.
// cacheBackend may be nil when Redis is disabled.
func NewQuizCacheService(cacheBackend domain.Cache, ttl time.Duration) QuizCacheService {
	return &quizCacheServiceImpl{
		cache: cacheBackend,
		ttl:   ttl,
	}
}

func quizCacheKey(id int64) string {
	return cache.GenerateCacheKey("quiz", "document", strconv.FormatInt(id, 10))
}

// GetQuiz returns the cached quiz document, or (nil, nil) on a miss.
func (s *quizCacheServiceImpl) GetQuiz(ctx context.Context, id int64) (*domain.Quiz, error) {
	if s.cache == nil {
		return nil, nil
	}

	key := quizCacheKey(id)
	payload, err := s.cache.Get(ctx, key)
	if err != nil {
		if err == domain.ErrCacheMiss {
			return nil, nil
		}
		logger.Get().Error("QuizCacheService: cache Get failed",
			zap.Error(err),
			zap.String("key", key))
		return nil, err
	}

	var quiz domain.Quiz
	if err := json.Unmarshal([]byte(payload), &quiz); err != nil {
		// A corrupt entry is treated as a miss so the caller falls
		// back to the database.
		logger.Get().Warn("QuizCacheService: failed to unmarshal cached quiz, dropping entry",
			zap.Error(err),
			zap.Int64("quizID", id))
		if delErr := s.cache.Delete(ctx, key); delErr != nil {
			logger.Get().Warn("QuizCacheService: failed to drop corrupt entry",
				zap.Error(delErr),
				zap.String("key", key))
		}
		return nil, nil
	}
	return &quiz, nil
}

// PutQuiz stores the quiz document under its id with the configured TTL.
func (s *quizCacheServiceImpl) PutQuiz(ctx context.Context, quiz *domain.Quiz) error {
	if s.cache == nil || quiz == nil {
		return nil
	}
	if quiz.ID == 0 {
		logger.Get().Warn("QuizCacheService: refusing to cache quiz without id")
		return nil
	}

	payload, err := json.Marshal(quiz)
	if err != nil {
		logger.Get().Error("QuizCacheService: failed to marshal quiz for caching",
			zap.Error(err),
			zap.Int64("quizID", quiz.ID))
		return err
	}

	if err := s.cache.Set(ctx, quizCacheKey(quiz.ID), string(payload), s.ttl); err != nil {
		logger.Get().Error("QuizCacheService: cache Set failed",
			zap.Error(err),
			zap.Int64("quizID", quiz.ID))
		return err
	}
	return nil
}
