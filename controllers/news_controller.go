package controllers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/JerryLinyx/NewsGOAT/models"
	"github.com/JerryLinyx/NewsGOAT/services"
	"github.com/JerryLinyx/NewsGOAT/store"
)

type NewsController struct {
	news  *services.NewsService
	store *store.ArticleStore
}

func NewNewsController(news *services.NewsService, articles *store.ArticleStore) *NewsController {
	return &NewsController{news: news, store: articles}
}

// GetHeadlines proxies upstream top headlines and auto-saves them.
func (ctl *NewsController) GetHeadlines(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("pageSize", "20"))

	result, err := ctl.news.FetchHeadlines(c.Request.Context(), services.HeadlinesRequest{
		Country:  c.DefaultQuery("country", models.DefaultCountry),
		Category: c.Query("category"),
		Query:    c.Query("q"),
		Sources:  c.Query("sources"),
		Page:     page,
		PageSize: pageSize,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"message": "Failed to fetch headlines",
			"error":   err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":      true,
		"totalResults": result.TotalResults,
		"articles":     result.Articles,
		"page":         page,
		"pageSize":     pageSize,
	})
}

// SearchNews proxies the upstream everything endpoint and auto-saves
// the results. The query term is mandatory.
func (ctl *NewsController) SearchNews(c *gin.Context) {
	q := c.Query("q")
	if q == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"message": "Search query required",
		})
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("pageSize", "20"))

	result, err := ctl.news.SearchEverything(c.Request.Context(), services.SearchRequest{
		Query:    q,
		SortBy:   c.DefaultQuery("sortBy", "relevancy"),
		Language: c.DefaultQuery("language", models.DefaultLanguage),
		Sources:  c.Query("sources"),
		Domains:  c.Query("domains"),
		From:     c.Query("from"),
		To:       c.Query("to"),
		Page:     page,
		PageSize: pageSize,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"message": "Failed to search articles",
			"error":   err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":      true,
		"totalResults": result.TotalResults,
		"articles":     result.Articles,
		"page":         page,
		"pageSize":     pageSize,
	})
}

// GetFiltered serves stored articles through the query planner.
func (ctl *NewsController) GetFiltered(c *gin.Context) {
	q := store.ParseArticleQuery(c.Request.URL.Query())

	articles, total, err := ctl.store.Search(c.Request.Context(), q)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"message": "Failed to fetch filtered news",
			"error":   err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"articles": articles,
		"pagination": gin.H{
			"page":  q.Page,
			"limit": q.Limit,
			"total": total,
			"pages": q.Pages(total),
		},
	})
}

// GetSources proxies the upstream source directory.
func (ctl *NewsController) GetSources(c *gin.Context) {
	sources, err := ctl.news.ListSources(
		c.Request.Context(),
		c.Query("category"),
		c.Query("language"),
		c.Query("country"),
	)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"message": "Failed to fetch sources",
			"error":   err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "sources": sources})
}

// GetCategories lists the fixed taxonomy.
func (ctl *NewsController) GetCategories(c *gin.Context) {
	categories := make([]gin.H, 0, len(models.Categories))
	for _, id := range models.Categories {
		categories = append(categories, gin.H{
			"id":   id,
			"name": strings.ToUpper(id[:1]) + id[1:],
		})
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "categories": categories})
}

// MarkRead records a read receipt for the authenticated user.
func (ctl *NewsController) MarkRead(c *gin.Context) {
	id, err := parseID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid article id"})
		return
	}
	userID := c.GetUint("user_id")

	article, err := ctl.store.MarkRead(c.Request.Context(), id, userID)
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Article not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Server error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Article marked as read",
		"article": article,
	})
}

// UpdateStatus archives, deletes or reactivates an article. The status
// value is checked before anything is written.
func (ctl *NewsController) UpdateStatus(c *gin.Context) {
	id, err := parseID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid article id"})
		return
	}

	var body struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid status"})
		return
	}

	article, err := ctl.store.SetStatus(c.Request.Context(), id, body.Status)
	if errors.Is(err, store.ErrInvalidStatus) {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid status"})
		return
	}
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Article not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Server error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Article " + body.Status,
		"article": article,
	})
}

func parseID(raw string) (uint, error) {
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return 0, err
	}
	return uint(id), nil
}
