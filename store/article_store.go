// Package store owns all database access for articles and their
// per-user save/read relations.
package store

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/JerryLinyx/NewsGOAT/models"
)

var (
	ErrNotFound      = errors.New("article not found")
	ErrInvalidStatus = errors.New("invalid article status")
)

type ArticleStore struct {
	db *gorm.DB
}

func NewArticleStore(db *gorm.DB) *ArticleStore {
	return &ArticleStore{db: db}
}

func (s *ArticleStore) FindByURL(ctx context.Context, url string) (*models.Article, error) {
	var article models.Article
	err := s.db.WithContext(ctx).Where("url = ?", url).First(&article).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &article, nil
}

func (s *ArticleStore) FindByID(ctx context.Context, id uint) (*models.Article, error) {
	var article models.Article
	err := s.db.WithContext(ctx).Preload("ReadBy").First(&article, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &article, nil
}

// UpsertIfAbsent inserts the article unless one with the same URL already
// exists, in which case the stored record replaces *article and no write
// happens. A lost insert race surfaces as a duplicate-key error on the
// url unique index and is folded into the "already exists" outcome.
func (s *ArticleStore) UpsertIfAbsent(ctx context.Context, article *models.Article) (bool, error) {
	db := s.db.WithContext(ctx)

	var existing models.Article
	err := db.Where("url = ?", article.URL).First(&existing).Error
	if err == nil {
		*article = existing
		return false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return false, err
	}

	if err := db.Create(article).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			if err := db.Where("url = ?", article.URL).First(&existing).Error; err != nil {
				return false, err
			}
			*article = existing
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// SetStatus validates the status before touching the record; an unknown
// status leaves the row unchanged.
func (s *ArticleStore) SetStatus(ctx context.Context, id uint, status string) (*models.Article, error) {
	if !models.ValidStatus(status) {
		return nil, ErrInvalidStatus
	}

	article, err := s.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.db.WithContext(ctx).Model(article).Update("status", status).Error; err != nil {
		return nil, err
	}
	return article, nil
}

// MarkRead appends a read receipt unless the user already has one.
func (s *ArticleStore) MarkRead(ctx context.Context, id, userID uint) (*models.Article, error) {
	db := s.db.WithContext(ctx)

	if _, err := s.FindByID(ctx, id); err != nil {
		return nil, err
	}

	var count int64
	if err := db.Model(&models.ReadReceipt{}).
		Where("article_id = ? AND user_id = ?", id, userID).
		Count(&count).Error; err != nil {
		return nil, err
	}
	if count == 0 {
		receipt := models.ReadReceipt{ArticleID: id, UserID: userID, ReadAt: time.Now()}
		if err := db.Create(&receipt).Error; err != nil && !errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, err
		}
	}

	return s.FindByID(ctx, id)
}

// AddSaver records that the user bookmarked the article. Adding twice
// has no additional effect.
func (s *ArticleStore) AddSaver(ctx context.Context, id, userID uint) (*models.Article, error) {
	db := s.db.WithContext(ctx)

	article, err := s.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := db.Model(article).Association("SavedBy").Append(&models.User{ID: userID}); err != nil {
		return nil, err
	}
	return article, nil
}

// RemoveSaver drops the bookmark; removing an absent member is a no-op.
func (s *ArticleStore) RemoveSaver(ctx context.Context, id, userID uint) error {
	db := s.db.WithContext(ctx)

	article, err := s.FindByID(ctx, id)
	if err != nil {
		return err
	}
	return db.Model(article).Association("SavedBy").Delete(&models.User{ID: userID})
}

// ListSavedBy returns the user's favorites, newest publication first.
func (s *ArticleStore) ListSavedBy(ctx context.Context, userID uint) ([]models.Article, error) {
	var articles []models.Article
	err := s.db.WithContext(ctx).
		Joins("JOIN article_saves ON article_saves.article_id = articles.id").
		Where("article_saves.user_id = ?", userID).
		Order("published_at DESC").
		Find(&articles).Error
	return articles, err
}

// Search runs a planned query. Total is counted before pagination.
func (s *ArticleStore) Search(ctx context.Context, q ArticleQuery) ([]models.Article, int64, error) {
	tx := s.db.WithContext(ctx).Model(&models.Article{})

	if q.Status != "" {
		tx = tx.Where("status = ?", q.Status)
	}
	if q.Category != "" {
		tx = tx.Where("category = ?", q.Category)
	}
	if q.Language != "" {
		tx = tx.Where("language = ?", q.Language)
	}
	if q.Source != "" {
		tx = tx.Where("LOWER(source_name) LIKE ?", "%"+strings.ToLower(q.Source)+"%")
	}
	if q.Search != "" {
		pattern := "%" + strings.ToLower(q.Search) + "%"
		tx = tx.Where("LOWER(title) LIKE ? OR LOWER(description) LIKE ?", pattern, pattern)
	}
	if q.FromDate != nil {
		tx = tx.Where("published_at >= ?", q.FromDate)
	}
	if q.ToDate != nil {
		tx = tx.Where("published_at <= ?", q.ToDate)
	}

	var total int64
	if err := tx.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var articles []models.Article
	err := tx.Order(q.OrderClause()).
		Offset(q.Offset()).
		Limit(q.Limit).
		Find(&articles).Error
	if err != nil {
		return nil, 0, err
	}
	return articles, total, nil
}

func (s *ArticleStore) CountAll(ctx context.Context) (int64, error) {
	var total int64
	err := s.db.WithContext(ctx).Model(&models.Article{}).Count(&total).Error
	return total, err
}

var groupColumns = map[string]string{
	"category": "category",
	"language": "language",
	"status":   "status",
}

// AggregateCounts groups all articles by the given field. Only taxonomy
// fields are valid group keys.
func (s *ArticleStore) AggregateCounts(ctx context.Context, field string) (map[string]int64, error) {
	column, ok := groupColumns[field]
	if !ok {
		return nil, errors.New("unsupported group field: " + field)
	}

	var rows []struct {
		Value string
		Count int64
	}
	err := s.db.WithContext(ctx).Model(&models.Article{}).
		Select(column + " AS value, COUNT(*) AS count").
		Group(column).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int64, len(rows))
	for _, row := range rows {
		counts[row.Value] = row.Count
	}
	return counts, nil
}
