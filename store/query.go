package store

import (
	"net/url"
	"strconv"
	"time"

	"github.com/JerryLinyx/NewsGOAT/models"
)

const (
	defaultPage  = 1
	defaultLimit = 20
	maxLimit     = 100
)

// sortColumns whitelists sortable fields; anything else falls back to
// the publishedAt default.
var sortColumns = map[string]string{
	"publishedAt": "published_at",
	"createdAt":   "created_at",
	"title":       "title",
}

// ArticleQuery is a planned filtered/sorted/paginated store query.
type ArticleQuery struct {
	Status   string
	Category string
	Language string
	Source   string
	Search   string
	FromDate *time.Time
	ToDate   *time.Time

	Page      int
	Limit     int
	SortBy    string
	Ascending bool
}

func (q ArticleQuery) Offset() int {
	return (q.Page - 1) * q.Limit
}

func (q ArticleQuery) OrderClause() string {
	column, ok := sortColumns[q.SortBy]
	if !ok {
		column = "published_at"
	}
	if q.Ascending {
		return column + " ASC"
	}
	return column + " DESC"
}

// Pages returns the page count for a matching total.
func (q ArticleQuery) Pages(total int64) int64 {
	if q.Limit <= 0 {
		return 0
	}
	return (total + int64(q.Limit) - 1) / int64(q.Limit)
}

// ParseArticleQuery builds a query from raw request parameters. Parsing
// is deliberately forgiving: malformed numbers and dates fall back to
// defaults instead of erroring, and deleted/archived articles are
// excluded unless a status is asked for explicitly.
func ParseArticleQuery(values url.Values) ArticleQuery {
	q := ArticleQuery{
		Status:   values.Get("status"),
		Category: values.Get("category"),
		Language: values.Get("language"),
		Source:   values.Get("source"),
		Search:   values.Get("search"),
		Page:     parseIntDefault(values.Get("page"), defaultPage),
		Limit:    parseIntDefault(values.Get("limit"), defaultLimit),
		SortBy:   values.Get("sortBy"),
	}

	if q.Status == "" {
		q.Status = models.StatusActive
	}
	if q.Page < 1 {
		q.Page = defaultPage
	}
	if q.Limit < 1 {
		q.Limit = defaultLimit
	}
	if q.Limit > maxLimit {
		q.Limit = maxLimit
	}
	if _, ok := sortColumns[q.SortBy]; !ok {
		q.SortBy = "publishedAt"
	}
	q.Ascending = values.Get("order") == "asc"

	q.FromDate = parseDate(values.Get("fromDate"))
	q.ToDate = parseDate(values.Get("toDate"))

	return q
}

func parseIntDefault(raw string, fallback int) int {
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return n
}

func parseDate(raw string) *time.Time {
	if raw == "" {
		return nil
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return &t
		}
	}
	return nil
}
