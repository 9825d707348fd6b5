// Package services holds the ingestion-and-aggregation pipeline between
// the upstream news provider and the article store.
package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"

	"github.com/JerryLinyx/NewsGOAT/models"
	"github.com/JerryLinyx/NewsGOAT/newsapi"
)

const (
	// ingestPageSize is the maximum page size NewsAPI allows in one call.
	ingestPageSize = 100

	statsCacheKey  = "news:statistics"
	statsCacheTTL  = 10 * time.Minute
	fleetStatusKey = "news:fleet:last_run"
)

// ErrInvalidArticle marks an upstream record missing url or title. Such
// records are dropped silently within a batch.
var ErrInvalidArticle = errors.New("article missing url or title")

// Provider is the slice of the upstream API the service consumes.
type Provider interface {
	TopHeadlines(ctx context.Context, p newsapi.TopHeadlinesParams) (*newsapi.ArticlesResponse, error)
	Everything(ctx context.Context, p newsapi.EverythingParams) (*newsapi.ArticlesResponse, error)
	Sources(ctx context.Context, p newsapi.SourcesParams) (*newsapi.SourcesResponse, error)
}

// ArticleStore is what the pipeline needs from storage.
type ArticleStore interface {
	UpsertIfAbsent(ctx context.Context, article *models.Article) (bool, error)
	CountAll(ctx context.Context) (int64, error)
	AggregateCounts(ctx context.Context, field string) (map[string]int64, error)
}

// BatchResult summarizes one category's ingestion.
type BatchResult struct {
	Category string `json:"category"`
	Fetched  int    `json:"fetched"`
	Saved    int    `json:"saved"`
	Success  bool   `json:"success"`
	Error    string `json:"error,omitempty"`
}

// FleetRun is the record of the last full-category sweep, kept in Redis
// as the observable outcome of the background job.
type FleetRun struct {
	Country    string        `json:"country"`
	Language   string        `json:"language"`
	StartedAt  time.Time     `json:"startedAt"`
	FinishedAt time.Time     `json:"finishedAt"`
	Results    []BatchResult `json:"results"`
}

type Statistics struct {
	Total      int64            `json:"total"`
	ByCategory map[string]int64 `json:"byCategory"`
	ByLanguage map[string]int64 `json:"byLanguage"`
	ByStatus   map[string]int64 `json:"byStatus"`
}

// ArticleMeta is the taxonomy attached to a batch of raw articles.
type ArticleMeta struct {
	Category string
	Language string
	Country  string
}

type NewsService struct {
	store    ArticleStore
	provider Provider
	redis    *redis.Client
	log      logrus.FieldLogger
	pacing   time.Duration
}

// NewNewsService wires the pipeline. The Redis client may be nil; caching
// and the fleet status record then degrade to no-ops.
func NewNewsService(store ArticleStore, provider Provider, rdb *redis.Client, log logrus.FieldLogger) *NewsService {
	return &NewsService{
		store:    store,
		provider: provider,
		redis:    rdb,
		log:      log,
		pacing:   time.Second,
	}
}

// WithPacing overrides the delay between fleet categories.
func (s *NewsService) WithPacing(d time.Duration) *NewsService {
	s.pacing = d
	return s
}

// normalizeArticle maps a raw upstream payload into the stored shape and
// attaches taxonomy defaults. It rejects records without url or title.
func normalizeArticle(raw newsapi.RawArticle, meta ArticleMeta) (models.Article, error) {
	if raw.URL == "" || raw.Title == "" {
		return models.Article{}, ErrInvalidArticle
	}

	article := models.Article{
		Title:       raw.Title,
		Description: raw.Description,
		Content:     raw.Content,
		URL:         raw.URL,
		URLToImage:  raw.URLToImage,
		Author:      raw.Author,
		PublishedAt: raw.PublishedAt,
		Source:      models.Source{ID: raw.Source.ID, Name: raw.Source.Name},
		Category:    meta.Category,
		Language:    meta.Language,
		Country:     meta.Country,
		Status:      models.StatusActive,
	}
	if article.Category == "" {
		article.Category = models.CategoryGeneral
	}
	if article.Language == "" {
		article.Language = models.DefaultLanguage
	}
	if article.Country == "" {
		article.Country = models.DefaultCountry
	}
	return article, nil
}

// saveBatch folds raw articles into the store, producing the stored
// records and an accumulated warning list. Invalid records are skipped
// without a warning; a failed store write lands in warnings and the loop
// moves on, so one bad article never fails the batch. Returned articles
// include pre-existing records; saved counts only new inserts.
func (s *NewsService) saveBatch(ctx context.Context, raw []newsapi.RawArticle, meta ArticleMeta) ([]models.Article, int, []string) {
	stored := make([]models.Article, 0, len(raw))
	saved := 0
	var warnings []string

	for _, item := range raw {
		article, err := normalizeArticle(item, meta)
		if err != nil {
			continue
		}

		inserted, err := s.store.UpsertIfAbsent(ctx, &article)
		if err != nil {
			warnings = append(warnings, article.URL+": "+err.Error())
			continue
		}
		if inserted {
			saved++
		}
		stored = append(stored, article)
	}

	return stored, saved, warnings
}

// IngestCategory fetches one category's top headlines and stores what is
// new. An upstream failure fails the whole batch; everything past that
// point is isolated per article.
func (s *NewsService) IngestCategory(ctx context.Context, category, country, language string) BatchResult {
	resp, err := s.provider.TopHeadlines(ctx, newsapi.TopHeadlinesParams{
		Country:  country,
		Category: category,
		PageSize: ingestPageSize,
	})
	if err != nil {
		s.log.WithError(err).WithField("category", category).Error("headlines fetch failed")
		return BatchResult{Category: category, Success: false, Error: err.Error()}
	}

	_, saved, warnings := s.saveBatch(ctx, resp.Articles, ArticleMeta{
		Category: category,
		Language: language,
		Country:  country,
	})
	for _, warning := range warnings {
		s.log.WithField("category", category).Warn("failed to save article: " + warning)
	}
	s.invalidateStatsCache()

	return BatchResult{
		Category: category,
		Fetched:  len(resp.Articles),
		Saved:    saved,
		Success:  true,
	}
}

// IngestAllCategories sweeps every category in the fixed taxonomy order,
// pacing successive upstream calls to stay under rate limits. All seven
// categories are always attempted; failures ride along in the results.
func (s *NewsService) IngestAllCategories(ctx context.Context, country, language string) []BatchResult {
	run := FleetRun{
		Country:   country,
		Language:  language,
		StartedAt: time.Now().UTC(),
	}

	for i, category := range models.Categories {
		if i > 0 && s.pacing > 0 {
			time.Sleep(s.pacing)
		}
		result := s.IngestCategory(ctx, category, country, language)
		run.Results = append(run.Results, result)
	}
	run.FinishedAt = time.Now().UTC()

	fetched, saved := 0, 0
	for _, r := range run.Results {
		fetched += r.Fetched
		saved += r.Saved
	}
	s.log.WithFields(logrus.Fields{
		"country":  country,
		"language": language,
		"fetched":  fetched,
		"saved":    saved,
		"took":     run.FinishedAt.Sub(run.StartedAt).String(),
	}).Info("fleet fetch finished")

	s.recordFleetRun(run)
	return run.Results
}

// recordFleetRun persists the last-run record so callers of the
// fire-and-forget fetch can poll its outcome.
func (s *NewsService) recordFleetRun(run FleetRun) {
	if s.redis == nil {
		return
	}
	data, err := json.Marshal(run)
	if err != nil {
		s.log.WithError(err).Warn("failed to encode fleet run")
		return
	}
	if err := s.redis.Set(context.Background(), fleetStatusKey, data, 0).Err(); err != nil {
		s.log.WithError(err).Warn("failed to record fleet run")
	}
}

// LastFleetRun returns the most recent fleet record, or nil when none
// has completed yet.
func (s *NewsService) LastFleetRun(ctx context.Context) (*FleetRun, error) {
	if s.redis == nil {
		return nil, nil
	}
	data, err := s.redis.Get(ctx, fleetStatusKey).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var run FleetRun
	if err := json.Unmarshal([]byte(data), &run); err != nil {
		return nil, err
	}
	return &run, nil
}

// HeadlinesRequest mirrors the upstream top-headlines parameters exposed
// to clients.
type HeadlinesRequest struct {
	Country  string
	Category string
	Query    string
	Sources  string
	Page     int
	PageSize int
}

type HeadlinesResult struct {
	TotalResults int
	Articles     []models.Article
}

// FetchHeadlines proxies a top-headlines call and auto-saves the results.
// Articles already in the store come back as their stored records.
func (s *NewsService) FetchHeadlines(ctx context.Context, req HeadlinesRequest) (*HeadlinesResult, error) {
	resp, err := s.provider.TopHeadlines(ctx, newsapi.TopHeadlinesParams{
		Country:  req.Country,
		Category: req.Category,
		Query:    req.Query,
		Sources:  req.Sources,
		Page:     req.Page,
		PageSize: req.PageSize,
	})
	if err != nil {
		return nil, err
	}

	stored, _, warnings := s.saveBatch(ctx, resp.Articles, ArticleMeta{
		Category: req.Category,
		Country:  req.Country,
	})
	for _, warning := range warnings {
		s.log.Warn("failed to save headline: " + warning)
	}
	s.invalidateStatsCache()

	return &HeadlinesResult{TotalResults: resp.TotalResults, Articles: stored}, nil
}

type SearchRequest struct {
	Query    string
	SortBy   string
	Language string
	Sources  string
	Domains  string
	From     string
	To       string
	Page     int
	PageSize int
}

// SearchEverything proxies a full-text search and auto-saves the results.
// Relevance ranking is the upstream's business.
func (s *NewsService) SearchEverything(ctx context.Context, req SearchRequest) (*HeadlinesResult, error) {
	resp, err := s.provider.Everything(ctx, newsapi.EverythingParams{
		Query:    req.Query,
		SortBy:   req.SortBy,
		Language: req.Language,
		Sources:  req.Sources,
		Domains:  req.Domains,
		From:     req.From,
		To:       req.To,
		Page:     req.Page,
		PageSize: req.PageSize,
	})
	if err != nil {
		return nil, err
	}

	stored, _, warnings := s.saveBatch(ctx, resp.Articles, ArticleMeta{
		Language: req.Language,
	})
	for _, warning := range warnings {
		s.log.Warn("failed to save search result: " + warning)
	}
	s.invalidateStatsCache()

	return &HeadlinesResult{TotalResults: resp.TotalResults, Articles: stored}, nil
}

// ListSources proxies the upstream source directory.
func (s *NewsService) ListSources(ctx context.Context, category, language, country string) ([]newsapi.RawSource, error) {
	resp, err := s.provider.Sources(ctx, newsapi.SourcesParams{
		Category: category,
		Language: language,
		Country:  country,
	})
	if err != nil {
		return nil, err
	}
	return resp.Sources, nil
}

// Statistics aggregates counts over the full store, all statuses
// included. Results are cached in Redis for a few minutes; a cache
// failure degrades to direct computation.
func (s *NewsService) Statistics(ctx context.Context) (*Statistics, error) {
	if s.redis != nil {
		cached, err := s.redis.Get(ctx, statsCacheKey).Result()
		if err == nil {
			var stats Statistics
			if err := json.Unmarshal([]byte(cached), &stats); err == nil {
				return &stats, nil
			}
		} else if err != redis.Nil {
			s.log.WithError(err).Warn("statistics cache read failed")
		}
	}

	stats, err := s.computeStatistics(ctx)
	if err != nil {
		return nil, err
	}

	if s.redis != nil {
		if data, err := json.Marshal(stats); err == nil {
			if err := s.redis.Set(ctx, statsCacheKey, data, statsCacheTTL).Err(); err != nil {
				s.log.WithError(err).Warn("statistics cache write failed")
			}
		}
	}
	return stats, nil
}

func (s *NewsService) computeStatistics(ctx context.Context) (*Statistics, error) {
	total, err := s.store.CountAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("compute statistics: %w", err)
	}
	byCategory, err := s.store.AggregateCounts(ctx, "category")
	if err != nil {
		return nil, fmt.Errorf("compute statistics: %w", err)
	}
	byLanguage, err := s.store.AggregateCounts(ctx, "language")
	if err != nil {
		return nil, fmt.Errorf("compute statistics: %w", err)
	}
	byStatus, err := s.store.AggregateCounts(ctx, "status")
	if err != nil {
		return nil, fmt.Errorf("compute statistics: %w", err)
	}

	return &Statistics{
		Total:      total,
		ByCategory: byCategory,
		ByLanguage: byLanguage,
		ByStatus:   byStatus,
	}, nil
}

// invalidateStatsCache drops the cached statistics off the hot path.
func (s *NewsService) invalidateStatsCache() {
	if s.redis == nil {
		return
	}
	go func() {
		_ = s.redis.Del(context.Background(), statsCacheKey).Err()
	}()
}
