// Package newsapi is a thin client for the NewsAPI v2 endpoints this
// service consumes: top-headlines, everything and sources.
package newsapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

const defaultBaseURL = "https://newsapi.org/v2"

var httpClient = &http.Client{Timeout: 10 * time.Second}

// RawArticle is the upstream article payload. Fields beyond these are
// ignored on decode.
type RawArticle struct {
	Source struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	} `json:"source"`
	Author      string     `json:"author"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	URL         string     `json:"url"`
	URLToImage  string     `json:"urlToImage"`
	PublishedAt *time.Time `json:"publishedAt"`
	Content     string     `json:"content"`
}

type ArticlesResponse struct {
	Status       string       `json:"status"`
	TotalResults int          `json:"totalResults"`
	Articles     []RawArticle `json:"articles"`
}

type RawSource struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	URL         string `json:"url"`
	Category    string `json:"category"`
	Language    string `json:"language"`
	Country     string `json:"country"`
}

type SourcesResponse struct {
	Status  string      `json:"status"`
	Sources []RawSource `json:"sources"`
}

// apiError is NewsAPI's error envelope ({"status":"error", ...}).
type apiError struct {
	Status  string `json:"status"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *apiError) Error() string {
	return fmt.Sprintf("newsapi: %s: %s", e.Code, e.Message)
}

type TopHeadlinesParams struct {
	Country  string
	Category string
	Query    string
	Sources  string
	Page     int
	PageSize int
}

type EverythingParams struct {
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

type SourcesParams struct {
	Category string
	Language string
	Country  string
}

type Client struct {
	apiKey  string
	baseURL string
	http    *http.Client
}

func NewClient(apiKey string) *Client {
	return &Client{apiKey: apiKey, baseURL: defaultBaseURL, http: httpClient}
}

// WithBaseURL points the client at a different host, e.g. a test server.
func (c *Client) WithBaseURL(base string) *Client {
	c.baseURL = base
	return c
}

func (c *Client) TopHeadlines(ctx context.Context, p TopHeadlinesParams) (*ArticlesResponse, error) {
	q := url.Values{}
	setIfPresent(q, "country", p.Country)
	setIfPresent(q, "category", p.Category)
	setIfPresent(q, "q", p.Query)
	setIfPresent(q, "sources", p.Sources)
	setPage(q, p.Page, p.PageSize)

	var out ArticlesResponse
	if err := c.get(ctx, "/top-headlines", q, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Everything(ctx context.Context, p EverythingParams) (*ArticlesResponse, error) {
	q := url.Values{}
	setIfPresent(q, "q", p.Query)
	setIfPresent(q, "sortBy", p.SortBy)
	setIfPresent(q, "language", p.Language)
	setIfPresent(q, "sources", p.Sources)
	setIfPresent(q, "domains", p.Domains)
	setIfPresent(q, "from", p.From)
	setIfPresent(q, "to", p.To)
	setPage(q, p.Page, p.PageSize)

	var out ArticlesResponse
	if err := c.get(ctx, "/everything", q, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Sources(ctx context.Context, p SourcesParams) (*SourcesResponse, error) {
	q := url.Values{}
	setIfPresent(q, "category", p.Category)
	setIfPresent(q, "language", p.Language)
	setIfPresent(q, "country", p.Country)

	var out SourcesResponse
	if err := c.get(ctx, "/sources", q, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) get(ctx context.Context, path string, q url.Values, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+q.Encode(), nil)
	if err != nil {
		return err
	}
	req.Header.Set("X-Api-Key", c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20)) // limit to 8MB
	if err != nil {
		return err
	}

	var envelope apiError
	if err := json.Unmarshal(data, &envelope); err != nil {
		return fmt.Errorf("newsapi: decode response: %w", err)
	}
	if envelope.Status == "error" {
		return &envelope
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("newsapi: unexpected status %d", resp.StatusCode)
	}

	return json.Unmarshal(data, out)
}

func setIfPresent(q url.Values, key, value string) {
	if value != "" {
		q.Set(key, value)
	}
}

func setPage(q url.Values, page, pageSize int) {
	if page > 0 {
		q.Set("page", strconv.Itoa(page))
	}
	if pageSize > 0 {
		q.Set("pageSize", strconv.Itoa(pageSize))
	}
}
