package controllers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/JerryLinyx/NewsGOAT/models"
	"github.com/JerryLinyx/NewsGOAT/store"
)

type FavoritesController struct {
	store *store.ArticleStore
}

func NewFavoritesController(articles *store.ArticleStore) *FavoritesController {
	return &FavoritesController{store: articles}
}

type favoriteBody struct {
	Title       string        `json:"title" binding:"required"`
	Description string        `json:"description"`
	Content     string        `json:"content"`
	URL         string        `json:"url" binding:"required"`
	URLToImage  string        `json:"urlToImage"`
	Author      string        `json:"author"`
	PublishedAt *time.Time    `json:"publishedAt"`
	Source      models.Source `json:"source"`
}

// Add bookmarks an article for the authenticated user, creating the
// article first when its URL is not yet stored.
func (ctl *FavoritesController) Add(c *gin.Context) {
	var body favoriteBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}
	userID := c.GetUint("user_id")

	article := models.Article{
		Title:       body.Title,
		Description: body.Description,
		Content:     body.Content,
		URL:         body.URL,
		URLToImage:  body.URLToImage,
		Author:      body.Author,
		PublishedAt: body.PublishedAt,
		Source:      body.Source,
		Category:    models.CategoryGeneral,
		Language:    models.DefaultLanguage,
		Country:     models.DefaultCountry,
		Status:      models.StatusActive,
	}

	ctx := c.Request.Context()
	if _, err := ctl.store.UpsertIfAbsent(ctx, &article); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Server error"})
		return
	}

	saved, err := ctl.store.AddSaver(ctx, article.ID, userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Server error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Article added to favorites",
		"article": saved,
	})
}

// List returns the user's bookmarked articles.
func (ctl *FavoritesController) List(c *gin.Context) {
	userID := c.GetUint("user_id")

	favorites, err := ctl.store.ListSavedBy(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Server error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "favorites": favorites})
}

// Remove drops a bookmark. Removing an article that was never saved, or
// no longer exists, is a no-op.
func (ctl *FavoritesController) Remove(c *gin.Context) {
	id, err := parseID(c.Param("articleId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid article id"})
		return
	}
	userID := c.GetUint("user_id")

	if err := ctl.store.RemoveSaver(c.Request.Context(), id, userID); err != nil && !errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Server error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Article removed from favorites",
	})
}
