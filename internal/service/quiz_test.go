package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"wikiquiz/internal/cache"
	"wikiquiz/internal/config"
	"wikiquiz/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const testArticleURL = "https://en.wikipedia.org/wiki/Go_(programming_language)"

func generatedQuiz() *domain.Quiz {
	questions := make([]domain.QuizQuestion, 5)
	for i := range questions {
		questions[i] = domain.QuizQuestion{
			Question:    "What is the primary subject of this article section?",
			Options:     []string{"Option A", "Option B", "Option C", "Option D"},
			Answer:      "A",
			Difficulty:  "medium",
			Explanation: "The article states this directly in its opening paragraph.",
		}
	}
	return &domain.Quiz{
		Title:   "Test",
		Summary: strings.Repeat("A concise factual summary of the article. ", 3),
		KeyEntities: domain.KeyEntities{
			People:        []string{"Rob Pike"},
			Organizations: []string{"Google"},
			Locations:     []string{},
		},
		Sections:      []string{"History"},
		Questions:     questions,
		RelatedTopics: []string{"Compilers", "Concurrency", "Type systems"},
	}
}

func scrapedArticle() *domain.ScrapedArticle {
	return &domain.ScrapedArticle{
		Title:     "Test",
		Content:   strings.Repeat("x", domain.MinContentChars+1),
		SourceURL: testArticleURL,
	}
}

type serviceFixture struct {
	svc       *quizService
	repo      *MockQuizRepository
	extractor *MockArticleExtractor
	generator *MockQuizGenerator
	urlCache  *cache.URLCache
}

func newTestService(t *testing.T) *serviceFixture {
	t.Helper()
	urlCache, err := cache.NewURLCache(100)
	require.NoError(t, err)

	repo := new(MockQuizRepository)
	extractor := new(MockArticleExtractor)
	generator := new(MockQuizGenerator)

	cfg := &config.Config{
		Cache: config.CacheConfig{URLCacheSize: 100, QuizTTL: time.Hour},
	}

	svc := NewQuizService(repo, extractor, generator, urlCache, NewQuizCacheService(nil, time.Hour), cfg).(*quizService)
	return &serviceFixture{
		svc:       svc,
		repo:      repo,
		extractor: extractor,
		generator: generator,
		urlCache:  urlCache,
	}
}

func TestGenerateQuizFromURL_InvalidURL(t *testing.T) {
	f := newTestService(t)

	_, err := f.svc.GenerateQuizFromURL(context.Background(), "https://example.com/wiki/Not_Wikipedia")

	var domainErr *domain.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, domain.ErrInvalidURL, domainErr.Code)
	f.extractor.AssertNotCalled(t, "Extract", mock.Anything, mock.Anything)
}

func TestGenerateQuizFromURL_Success(t *testing.T) {
	f := newTestService(t)

	f.extractor.On("Extract", mock.Anything, testArticleURL).Return(scrapedArticle(), nil)
	f.generator.On("Generate", mock.Anything, "Test", mock.Anything).Return(generatedQuiz(), nil)
	f.repo.On("SaveQuiz", mock.Anything, mock.Anything, mock.Anything).Return(int64(101), nil)

	resp, err := f.svc.GenerateQuizFromURL(context.Background(), testArticleURL)
	require.NoError(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, int64(101), resp.ID)
	assert.Equal(t, testArticleURL, resp.URL)
	assert.Equal(t, "Test", resp.Title)
	assert.Len(t, resp.Questions, 5)

	// The URL is remembered so a repeat request skips generation.
	id, ok := f.urlCache.Get(testArticleURL)
	assert.True(t, ok)
	assert.Equal(t, int64(101), id)

	f.repo.AssertExpectations(t)
	f.extractor.AssertExpectations(t)
	f.generator.AssertExpectations(t)
}

func TestGenerateQuizFromURL_CacheHitSkipsPipeline(t *testing.T) {
	f := newTestService(t)

	stored := generatedQuiz()
	stored.ID = 7
	stored.URL = testArticleURL
	f.urlCache.Add(testArticleURL, 7)
	f.repo.On("GetQuizByID", mock.Anything, int64(7)).Return(stored, nil)

	resp, err := f.svc.GenerateQuizFromURL(context.Background(), testArticleURL)
	require.NoError(t, err)
	assert.Equal(t, int64(7), resp.ID)

	f.extractor.AssertNotCalled(t, "Extract", mock.Anything, mock.Anything)
	f.generator.AssertNotCalled(t, "Generate", mock.Anything, mock.Anything, mock.Anything)
}

func TestGenerateQuizFromURL_StaleCacheEntryRegenerates(t *testing.T) {
	f := newTestService(t)

	// The cached id points at a row that no longer exists.
	f.urlCache.Add(testArticleURL, 5)
	f.repo.On("GetQuizByID", mock.Anything, int64(5)).Return(nil, nil)

	f.extractor.On("Extract", mock.Anything, testArticleURL).Return(scrapedArticle(), nil)
	f.generator.On("Generate", mock.Anything, "Test", mock.Anything).Return(generatedQuiz(), nil)
	f.repo.On("SaveQuiz", mock.Anything, mock.Anything, mock.Anything).Return(int64(9), nil)

	resp, err := f.svc.GenerateQuizFromURL(context.Background(), testArticleURL)
	require.NoError(t, err)
	assert.Equal(t, int64(9), resp.ID)

	id, ok := f.urlCache.Get(testArticleURL)
	assert.True(t, ok)
	assert.Equal(t, int64(9), id)
}

func TestGenerateQuizFromURL_ExtractorErrorPropagates(t *testing.T) {
	f := newTestService(t)

	f.extractor.On("Extract", mock.Anything, testArticleURL).
		Return(nil, domain.NewDisambiguationError(testArticleURL))

	_, err := f.svc.GenerateQuizFromURL(context.Background(), testArticleURL)

	var domainErr *domain.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, domain.ErrDisambiguation, domainErr.Code)
	f.generator.AssertNotCalled(t, "Generate", mock.Anything, mock.Anything, mock.Anything)
}

func TestGenerateQuizFromURL_PersistFailure(t *testing.T) {
	f := newTestService(t)

	f.extractor.On("Extract", mock.Anything, testArticleURL).Return(scrapedArticle(), nil)
	f.generator.On("Generate", mock.Anything, "Test", mock.Anything).Return(generatedQuiz(), nil)
	f.repo.On("SaveQuiz", mock.Anything, mock.Anything, mock.Anything).
		Return(int64(0), errors.New("connection refused"))

	_, err := f.svc.GenerateQuizFromURL(context.Background(), testArticleURL)

	var domainErr *domain.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, domain.ErrPersistence, domainErr.Code)
	// The generated quiz title travels with the failure so the lost
	// work stays traceable in the handler's log.
	assert.Contains(t, domainErr.Message, `"Test"`)

	// A failed save must not leave a URL mapping behind.
	_, ok := f.urlCache.Get(testArticleURL)
	assert.False(t, ok)
}

func TestGenerateQuizFromURL_ConcurrentRequestsCollapse(t *testing.T) {
	f := newTestService(t)

	var extractCalls int32
	f.extractor.On("Extract", mock.Anything, testArticleURL).
		Run(func(args mock.Arguments) {
			atomic.AddInt32(&extractCalls, 1)
			time.Sleep(100 * time.Millisecond)
		}).
		Return(scrapedArticle(), nil)
	f.generator.On("Generate", mock.Anything, "Test", mock.Anything).Return(generatedQuiz(), nil)
	f.repo.On("SaveQuiz", mock.Anything, mock.Anything, mock.Anything).Return(int64(3), nil)

	// A late second request may resolve through the URL cache instead
	// of joining the flight; both paths must yield the same quiz.
	stored := generatedQuiz()
	stored.ID = 3
	stored.URL = testArticleURL
	f.repo.On("GetQuizByID", mock.Anything, int64(3)).Return(stored, nil).Maybe()

	var wg sync.WaitGroup
	ids := make([]int64, 2)
	errs := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			resp, err := f.svc.GenerateQuizFromURL(context.Background(), testArticleURL)
			errs[i] = err
			if resp != nil {
				ids[i] = resp.ID
			}
		}(i)
	}
	wg.Wait()

	require.NoError(t, errs[0])
	require.NoError(t, errs[1])
	assert.Equal(t, int32(1), atomic.LoadInt32(&extractCalls))
	assert.Equal(t, int64(3), ids[0])
	assert.Equal(t, int64(3), ids[1])
}

func TestGetQuizByID_Success(t *testing.T) {
	f := newTestService(t)

	stored := generatedQuiz()
	stored.ID = 12
	stored.URL = testArticleURL
	f.repo.On("GetQuizByID", mock.Anything, int64(12)).Return(stored, nil)

	resp, err := f.svc.GetQuizByID(context.Background(), 12)
	require.NoError(t, err)
	assert.Equal(t, int64(12), resp.ID)
	assert.Len(t, resp.Questions, 5)
}

func TestGetQuizByID_NotFound(t *testing.T) {
	f := newTestService(t)

	f.repo.On("GetQuizByID", mock.Anything, int64(404)).Return(nil, nil)

	_, err := f.svc.GetQuizByID(context.Background(), 404)

	var domainErr *domain.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, domain.ErrNotFound, domainErr.Code)
}

func TestGetHistory(t *testing.T) {
	f := newTestService(t)

	now := time.Now()
	f.repo.On("GetHistory", mock.Anything, 10, 5).Return([]domain.QuizSummary{
		{ID: 2, URL: "https://en.wikipedia.org/wiki/B", Title: "B", DateGenerated: now},
		{ID: 1, URL: "https://en.wikipedia.org/wiki/A", Title: "A", DateGenerated: now.Add(-time.Hour)},
	}, nil)

	resp, err := f.svc.GetHistory(context.Background(), 10, 5)
	require.NoError(t, err)
	assert.Equal(t, 10, resp.Skip)
	assert.Equal(t, 5, resp.Limit)
	require.Len(t, resp.Quizzes, 2)
	assert.Equal(t, int64(2), resp.Quizzes[0].ID)
}

func TestGetHistory_RepositoryError(t *testing.T) {
	f := newTestService(t)

	f.repo.On("GetHistory", mock.Anything, 0, 10).Return(nil, errors.New("connection refused"))

	_, err := f.svc.GetHistory(context.Background(), 0, 10)

	var domainErr *domain.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, domain.ErrPersistence, domainErr.Code)
}

func TestHealth(t *testing.T) {
	f := newTestService(t)
	f.repo.On("Ping", mock.Anything).Return(nil)

	resp := f.svc.Health(context.Background())
	assert.Equal(t, "healthy", resp.Status)
	assert.True(t, resp.DatabaseConnected)
}

func TestHealth_Degraded(t *testing.T) {
	f := newTestService(t)
	f.repo.On("Ping", mock.Anything).Return(errors.New("connection refused"))

	resp := f.svc.Health(context.Background())
	assert.Equal(t, "degraded", resp.Status)
	assert.False(t, resp.DatabaseConnected)
}

func TestCacheInfo(t *testing.T) {
	f := newTestService(t)
	f.urlCache.Add(testArticleURL, 1)

	info := f.svc.CacheInfo()
	assert.Equal(t, 1, info.Size)
	assert.Equal(t, 100, info.MaxSize)
}
