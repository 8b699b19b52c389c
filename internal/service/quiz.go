package service

import (
	"context"
	"fmt"
	"strconv"

	"wikiquiz/internal/cache"
	"wikiquiz/internal/config"
	"wikiquiz/internal/domain"
	"wikiquiz/internal/dto"
	"wikiquiz/internal/logger"
	"wikiquiz/internal/wiki"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// QuizService defines the interface for quiz-related operations
type QuizService interface {
	GenerateQuizFromURL(ctx context.Context, url string) (*dto.QuizResponse, error)
	GetQuizByID(ctx context.Context, id int64) (*dto.QuizResponse, error)
	GetHistory(ctx context.Context, skip, limit int) (*dto.HistoryResponse, error)
	Health(ctx context.Context) *dto.HealthResponse
	CacheInfo() dto.CacheInfoResponse
}

// quizService implements QuizService
type quizService struct {
	repo      domain.QuizRepository
	extractor domain.ArticleExtractor
	generator domain.QuizGenerator
	urlCache  *cache.URLCache
	quizCache QuizCacheService
	cfg       *config.Config
	group     singleflight.Group

	// validateURL is swappable so tests can feed non-Wikipedia URLs.
	validateURL func(string) bool
}

// NewQuizService creates a new instance of quizService
func NewQuizService(
	repo domain.QuizRepository,
	extractor domain.ArticleExtractor,
	generator domain.QuizGenerator,
	urlCache *cache.URLCache,
	quizCache QuizCacheService,
	cfg *config.Config,
) QuizService {
	return &quizService{
		repo:        repo,
		extractor:   extractor,
		generator:   generator,
		urlCache:    urlCache,
		quizCache:   quizCache,
		cfg:         cfg,
		validateURL: wiki.IsValidArticleURL,
	}
}

// GenerateQuizFromURL implements QuizService. A URL already seen is
// served from storage via the URL cache; otherwise the article is
// scraped, a quiz is generated and persisted, and the mapping is
// remembered. Concurrent requests for the same URL are collapsed into
// a single scrape-and-generate pass.
func (s *quizService) GenerateQuizFromURL(ctx context.Context, url string) (*dto.QuizResponse, error) {
	if !s.validateURL(url) {
		return nil, domain.NewInvalidURLError(url)
	}

	if cached, ok := s.tryServeFromURLCache(ctx, url); ok {
		return cached, nil
	}

	result, err, shared := s.group.Do(url, func() (interface{}, error) {
		// A request that waited on the flight leader may find the
		// cache populated by the time it gets here.
		if cached, ok := s.tryServeFromURLCache(ctx, url); ok {
			return cached, nil
		}
		return s.generateAndPersist(ctx, url)
	})
	if err != nil {
		return nil, err
	}
	if shared {
		logger.Get().Debug("QuizService: request collapsed into in-flight generation", zap.String("url", url))
	}
	return result.(*dto.QuizResponse), nil
}

// tryServeFromURLCache resolves url through the LRU cache and storage.
// A mapping whose quiz row no longer exists is evicted so the URL can
// be regenerated.
func (s *quizService) tryServeFromURLCache(ctx context.Context, url string) (*dto.QuizResponse, bool) {
	id, ok := s.urlCache.Get(url)
	if !ok {
		return nil, false
	}

	quiz, err := s.lookupQuiz(ctx, id)
	if err != nil {
		logger.Get().Warn("QuizService: cached quiz lookup failed, regenerating",
			zap.Error(err),
			zap.String("url", url),
			zap.Int64("quizID", id))
		return nil, false
	}
	if quiz == nil {
		logger.Get().Warn("QuizService: evicting stale URL cache entry",
			zap.String("url", url),
			zap.Int64("quizID", id))
		s.urlCache.Remove(url)
		return nil, false
	}

	logger.Get().Info("QuizService: URL cache hit",
		zap.String("url", url),
		zap.Int64("quizID", id))
	return toQuizResponse(quiz), true
}

func (s *quizService) generateAndPersist(ctx context.Context, url string) (*dto.QuizResponse, error) {
	article, err := s.extractor.Extract(ctx, url)
	if err != nil {
		return nil, err
	}

	quiz, err := s.generator.Generate(ctx, article.Title, article.Content)
	if err != nil {
		return nil, err
	}
	quiz.URL = url

	id, err := s.repo.SaveQuiz(ctx, quiz, article.Content)
	if err != nil {
		// The generation work is done at this point; keep the title in
		// the log and the error so the lost quiz stays traceable.
		logger.Get().Error("QuizService: failed to persist generated quiz",
			zap.Error(err),
			zap.String("url", url),
			zap.String("title", quiz.Title))
		return nil, domain.NewPersistenceError(
			fmt.Sprintf("failed to persist generated quiz %q", quiz.Title), err)
	}
	quiz.ID = id

	s.urlCache.Add(url, id)
	if s.quizCache != nil {
		// Priming the document cache is best effort; the quiz is
		// already durable at this point.
		if cacheErr := s.quizCache.PutQuiz(ctx, quiz); cacheErr != nil {
			logger.Get().Warn("QuizService: failed to prime quiz cache",
				zap.Error(cacheErr),
				zap.Int64("quizID", id))
		}
	}

	logger.Get().Info("QuizService: quiz generated and stored",
		zap.String("url", url),
		zap.String("title", article.Title),
		zap.Int64("quizID", id),
		zap.Int("questions", len(quiz.Questions)))
	return toQuizResponse(quiz), nil
}

// GetQuizByID implements QuizService
func (s *quizService) GetQuizByID(ctx context.Context, id int64) (*dto.QuizResponse, error) {
	quiz, err := s.lookupQuiz(ctx, id)
	if err != nil {
		return nil, domain.NewPersistenceError("failed to load quiz "+strconv.FormatInt(id, 10), err)
	}
	if quiz == nil {
		return nil, domain.NewQuizNotFoundError(id)
	}
	return toQuizResponse(quiz), nil
}

// lookupQuiz reads through the document cache to storage; (nil, nil)
// means the quiz does not exist.
func (s *quizService) lookupQuiz(ctx context.Context, id int64) (*domain.Quiz, error) {
	if s.quizCache != nil {
		if quiz, err := s.quizCache.GetQuiz(ctx, id); err == nil && quiz != nil {
			return quiz, nil
		}
	}

	quiz, err := s.repo.GetQuizByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if quiz != nil && s.quizCache != nil {
		if cacheErr := s.quizCache.PutQuiz(ctx, quiz); cacheErr != nil {
			logger.Get().Debug("QuizService: failed to backfill quiz cache",
				zap.Error(cacheErr),
				zap.Int64("quizID", id))
		}
	}
	return quiz, nil
}

// GetHistory implements QuizService
func (s *quizService) GetHistory(ctx context.Context, skip, limit int) (*dto.HistoryResponse, error) {
	summaries, err := s.repo.GetHistory(ctx, skip, limit)
	if err != nil {
		return nil, domain.NewPersistenceError("failed to load quiz history", err)
	}

	entries := make([]dto.QuizSummaryResponse, 0, len(summaries))
	for _, summary := range summaries {
		entries = append(entries, dto.QuizSummaryResponse{
			ID:            summary.ID,
			URL:           summary.URL,
			Title:         summary.Title,
			DateGenerated: summary.DateGenerated,
		})
	}
	return &dto.HistoryResponse{
		Quizzes: entries,
		Skip:    skip,
		Limit:   limit,
	}, nil
}

// Health implements QuizService. The service stays up without a
// database, it just reports itself degraded.
func (s *quizService) Health(ctx context.Context) *dto.HealthResponse {
	if err := s.repo.Ping(ctx); err != nil {
		logger.Get().Warn("QuizService: database unreachable", zap.Error(err))
		return &dto.HealthResponse{Status: "degraded", DatabaseConnected: false}
	}
	return &dto.HealthResponse{Status: "healthy", DatabaseConnected: true}
}

// CacheInfo implements QuizService
func (s *quizService) CacheInfo() dto.CacheInfoResponse {
	return dto.CacheInfoResponse{
		Size:    s.urlCache.Len(),
		MaxSize: s.cfg.Cache.URLCacheSize,
	}
}

func toQuizResponse(quiz *domain.Quiz) *dto.QuizResponse {
	questions := make([]dto.QuizQuestionResponse, 0, len(quiz.Questions))
	for _, q := range quiz.Questions {
		questions = append(questions, dto.QuizQuestionResponse{
			Question:    q.Question,
			Options:     q.Options,
			Answer:      q.Answer,
			Difficulty:  q.Difficulty,
			Explanation: q.Explanation,
		})
	}
	return &dto.QuizResponse{
		ID:      quiz.ID,
		URL:     quiz.URL,
		Title:   quiz.Title,
		Summary: quiz.Summary,
		KeyEntities: dto.KeyEntitiesResponse{
			People:        quiz.KeyEntities.People,
			Organizations: quiz.KeyEntities.Organizations,
			Locations:     quiz.KeyEntities.Locations,
		},
		Sections:      quiz.Sections,
		Questions:     questions,
		RelatedTopics: quiz.RelatedTopics,
	}
}
