package store

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/JerryLinyx/NewsGOAT/models"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Article{}, &models.ReadReceipt{}))
	return db
}

func newTestStore(t *testing.T) (*ArticleStore, *gorm.DB) {
	db := newTestDB(t)
	return NewArticleStore(db), db
}

func testArticle(url, title string) models.Article {
	now := time.Now().UTC().Truncate(time.Second)
	return models.Article{
		Title:       title,
		URL:         url,
		Category:    models.CategoryGeneral,
		Language:    models.DefaultLanguage,
		Country:     models.DefaultCountry,
		Status:      models.StatusActive,
		PublishedAt: &now,
	}
}

func TestUpsertIfAbsentDedup(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	first := testArticle("https://example.com/a", "Original")
	inserted, err := s.UpsertIfAbsent(ctx, &first)
	require.NoError(t, err)
	require.True(t, inserted)

	second := testArticle("https://example.com/a", "Rewritten")
	inserted, err = s.UpsertIfAbsent(ctx, &second)
	require.NoError(t, err)
	require.False(t, inserted)
	require.Equal(t, first.ID, second.ID)
	require.Equal(t, "Original", second.Title)

	total, err := s.CountAll(ctx)
	require.NoError(t, err)
	require.EqualValues(t, 1, total)
}

func TestFindByURL(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	article := testArticle("https://example.com/find", "Findable")
	_, err := s.UpsertIfAbsent(ctx, &article)
	require.NoError(t, err)

	found, err := s.FindByURL(ctx, "https://example.com/find")
	require.NoError(t, err)
	require.Equal(t, article.ID, found.ID)

	_, err = s.FindByURL(ctx, "https://example.com/missing")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestSetStatusEnumClosure(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	article := testArticle("https://example.com/status", "Status")
	_, err := s.UpsertIfAbsent(ctx, &article)
	require.NoError(t, err)

	_, err = s.SetStatus(ctx, article.ID, "published")
	require.ErrorIs(t, err, ErrInvalidStatus)

	unchanged, err := s.FindByURL(ctx, article.URL)
	require.NoError(t, err)
	require.Equal(t, models.StatusActive, unchanged.Status)

	for _, status := range []string{models.StatusArchived, models.StatusDeleted, models.StatusActive} {
		_, err := s.SetStatus(ctx, article.ID, status)
		require.NoError(t, err)

		current, err := s.FindByURL(ctx, article.URL)
		require.NoError(t, err)
		require.Equal(t, status, current.Status)
	}

	_, err = s.SetStatus(ctx, 9999, models.StatusArchived)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestMarkReadIdempotent(t *testing.T) {
	s, db := newTestStore(t)
	ctx := context.Background()

	user := models.User{Username: "reader"}
	require.NoError(t, db.Create(&user).Error)

	article := testArticle("https://example.com/read", "Readable")
	_, err := s.UpsertIfAbsent(ctx, &article)
	require.NoError(t, err)

	_, err = s.MarkRead(ctx, article.ID, user.ID)
	require.NoError(t, err)
	result, err := s.MarkRead(ctx, article.ID, user.ID)
	require.NoError(t, err)

	require.Len(t, result.ReadBy, 1)
	require.Equal(t, user.ID, result.ReadBy[0].UserID)

	_, err = s.MarkRead(ctx, 9999, user.ID)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestSaversIdempotent(t *testing.T) {
	s, db := newTestStore(t)
	ctx := context.Background()

	user := models.User{Username: "saver"}
	require.NoError(t, db.Create(&user).Error)

	article := testArticle("https://example.com/save", "Saveable")
	_, err := s.UpsertIfAbsent(ctx, &article)
	require.NoError(t, err)

	_, err = s.AddSaver(ctx, article.ID, user.ID)
	require.NoError(t, err)
	_, err = s.AddSaver(ctx, article.ID, user.ID)
	require.NoError(t, err)

	favorites, err := s.ListSavedBy(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, favorites, 1)
	require.Equal(t, article.URL, favorites[0].URL)

	require.NoError(t, s.RemoveSaver(ctx, article.ID, user.ID))
	require.NoError(t, s.RemoveSaver(ctx, article.ID, user.ID))

	favorites, err = s.ListSavedBy(ctx, user.ID)
	require.NoError(t, err)
	require.Empty(t, favorites)
}

func TestSearchPagination(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	for i := 0; i < 25; i++ {
		article := testArticle(fmt.Sprintf("https://example.com/page/%d", i), fmt.Sprintf("Story %d", i))
		published := time.Date(2026, 8, 1, i, 0, 0, 0, time.UTC)
		article.PublishedAt = &published
		_, err := s.UpsertIfAbsent(ctx, &article)
		require.NoError(t, err)
	}

	q := ArticleQuery{Status: models.StatusActive, Page: 2, Limit: 10, SortBy: "publishedAt"}
	items, total, err := s.Search(ctx, q)
	require.NoError(t, err)
	require.Len(t, items, 10)
	require.EqualValues(t, 25, total)
	require.EqualValues(t, 3, q.Pages(total))

	// Descending by publishedAt: page 2 starts at the 11th newest.
	require.Equal(t, "Story 14", items[0].Title)
}

func TestSearchFilterComposition(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	seed := []struct {
		url      string
		category string
		status   string
	}{
		{"https://example.com/t1", models.CategoryTechnology, models.StatusActive},
		{"https://example.com/t2", models.CategoryTechnology, models.StatusActive},
		{"https://example.com/t3", models.CategoryTechnology, models.StatusArchived},
		{"https://example.com/h1", models.CategoryHealth, models.StatusActive},
		{"https://example.com/h2", models.CategoryHealth, models.StatusActive},
	}
	for _, row := range seed {
		article := testArticle(row.url, row.url)
		article.Category = row.category
		article.Status = row.status
		_, err := s.UpsertIfAbsent(ctx, &article)
		require.NoError(t, err)
	}

	items, total, err := s.Search(ctx, ArticleQuery{
		Status:   models.StatusActive,
		Category: models.CategoryTechnology,
		Page:     1,
		Limit:    20,
	})
	require.NoError(t, err)
	require.EqualValues(t, 2, total)
	for _, item := range items {
		require.Equal(t, models.CategoryTechnology, item.Category)
		require.Equal(t, models.StatusActive, item.Status)
	}
}

func TestSearchTextAndSourceFilters(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	a := testArticle("https://example.com/s1", "Quantum Breakthrough")
	a.Source.Name = "TechCrunch"
	b := testArticle("https://example.com/s2", "Election Night")
	b.Description = "A quantum leap in polling"
	b.Source.Name = "Reuters"
	c := testArticle("https://example.com/s3", "Sports Roundup")
	c.Source.Name = "ESPN"
	for _, article := range []*models.Article{&a, &b, &c} {
		_, err := s.UpsertIfAbsent(ctx, article)
		require.NoError(t, err)
	}

	// search hits title OR description, case-insensitive
	items, total, err := s.Search(ctx, ArticleQuery{Status: models.StatusActive, Search: "QUANTUM", Page: 1, Limit: 20})
	require.NoError(t, err)
	require.EqualValues(t, 2, total)
	require.Len(t, items, 2)

	// source is a case-insensitive substring match
	items, total, err = s.Search(ctx, ArticleQuery{Status: models.StatusActive, Source: "crunch", Page: 1, Limit: 20})
	require.NoError(t, err)
	require.EqualValues(t, 1, total)
	require.Equal(t, "Quantum Breakthrough", items[0].Title)
}

func TestSearchDateBounds(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	days := []int{1, 10, 20}
	for _, day := range days {
		article := testArticle(fmt.Sprintf("https://example.com/d%d", day), fmt.Sprintf("Day %d", day))
		published := time.Date(2026, 8, day, 12, 0, 0, 0, time.UTC)
		article.PublishedAt = &published
		_, err := s.UpsertIfAbsent(ctx, &article)
		require.NoError(t, err)
	}

	from := time.Date(2026, 8, 5, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 8, 15, 0, 0, 0, 0, time.UTC)

	_, total, err := s.Search(ctx, ArticleQuery{Status: models.StatusActive, FromDate: &from, Page: 1, Limit: 20})
	require.NoError(t, err)
	require.EqualValues(t, 2, total)

	_, total, err = s.Search(ctx, ArticleQuery{Status: models.StatusActive, FromDate: &from, ToDate: &to, Page: 1, Limit: 20})
	require.NoError(t, err)
	require.EqualValues(t, 1, total)
}

func TestAggregateCounts(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	for i, category := range []string{models.CategoryTechnology, models.CategoryTechnology, models.CategoryHealth} {
		article := testArticle(fmt.Sprintf("https://example.com/agg/%d", i), "Agg")
		article.Category = category
		_, err := s.UpsertIfAbsent(ctx, &article)
		require.NoError(t, err)
	}

	counts, err := s.AggregateCounts(ctx, "category")
	require.NoError(t, err)
	require.EqualValues(t, 2, counts[models.CategoryTechnology])
	require.EqualValues(t, 1, counts[models.CategoryHealth])

	_, err = s.AggregateCounts(ctx, "author")
	require.Error(t, err)
}
