package newsapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTopHeadlinesRequestShape(t *testing.T) {
	var gotPath string
	var gotQuery map[string][]string
	var gotKey string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.Query()
		gotKey = r.Header.Get("X-Api-Key")
		w.Write([]byte(`{
			"status": "ok",
			"totalResults": 1,
			"articles": [{
				"source": {"id": "bbc-news", "name": "BBC News"},
				"title": "Headline",
				"url": "https://example.com/hl",
				"publishedAt": "2026-08-30T09:00:00Z"
			}]
		}`))
	}))
	defer server.Close()

	client := NewClient("test-key").WithBaseURL(server.URL)
	resp, err := client.TopHeadlines(context.Background(), TopHeadlinesParams{
		Country:  "us",
		Category: "technology",
		PageSize: 100,
	})
	require.NoError(t, err)

	require.Equal(t, "/top-headlines", gotPath)
	require.Equal(t, "test-key", gotKey)
	require.Equal(t, []string{"us"}, gotQuery["country"])
	require.Equal(t, []string{"technology"}, gotQuery["category"])
	require.Equal(t, []string{"100"}, gotQuery["pageSize"])
	require.NotContains(t, gotQuery, "q")
	require.NotContains(t, gotQuery, "page")

	require.Equal(t, 1, resp.TotalResults)
	require.Len(t, resp.Articles, 1)
	require.Equal(t, "BBC News", resp.Articles[0].Source.Name)
	require.NotNil(t, resp.Articles[0].PublishedAt)
}

func TestEverythingRequestShape(t *testing.T) {
	var gotQuery map[string][]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query()
		w.Write([]byte(`{"status": "ok", "totalResults": 0, "articles": []}`))
	}))
	defer server.Close()

	client := NewClient("test-key").WithBaseURL(server.URL)
	_, err := client.Everything(context.Background(), EverythingParams{
		Query:    "golang",
		SortBy:   "relevancy",
		Language: "en",
		From:     "2026-08-01",
	})
	require.NoError(t, err)

	require.Equal(t, []string{"golang"}, gotQuery["q"])
	require.Equal(t, []string{"relevancy"}, gotQuery["sortBy"])
	require.Equal(t, []string{"2026-08-01"}, gotQuery["from"])
	require.NotContains(t, gotQuery, "to")
}

func TestErrorEnvelope(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"status": "error", "code": "apiKeyInvalid", "message": "Your API key is invalid"}`))
	}))
	defer server.Close()

	client := NewClient("bad-key").WithBaseURL(server.URL)
	_, err := client.TopHeadlines(context.Background(), TopHeadlinesParams{Country: "us"})
	require.Error(t, err)
	require.Contains(t, err.Error(), "apiKeyInvalid")
	require.Contains(t, err.Error(), "Your API key is invalid")
}

func TestSourcesDecode(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/sources", r.URL.Path)
		w.Write([]byte(`{
			"status": "ok",
			"sources": [{
				"id": "wired", "name": "Wired",
				"category": "technology", "language": "en", "country": "us"
			}]
		}`))
	}))
	defer server.Close()

	client := NewClient("test-key").WithBaseURL(server.URL)
	resp, err := client.Sources(context.Background(), SourcesParams{Category: "technology"})
	require.NoError(t, err)
	require.Len(t, resp.Sources, 1)
	require.Equal(t, "wired", resp.Sources[0].ID)
	require.Equal(t, "technology", resp.Sources[0].Category)
}
