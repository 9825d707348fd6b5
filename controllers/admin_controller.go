package controllers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/JerryLinyx/NewsGOAT/models"
	"github.com/JerryLinyx/NewsGOAT/services"
)

type AdminController struct {
	news *services.NewsService
	log  logrus.FieldLogger
}

func NewAdminController(news *services.NewsService, log logrus.FieldLogger) *AdminController {
	return &AdminController{news: news, log: log}
}

type fleetFetchBody struct {
	Country  string `json:"country"`
	Language string `json:"language"`
}

// FetchAll acknowledges immediately and runs the full-category sweep in
// the background. The sweep takes minutes because of upstream pacing;
// its outcome is observable via logs and GET /api/admin/fetch-status.
func (ctl *AdminController) FetchAll(c *gin.Context) {
	body := fleetFetchBody{Country: models.DefaultCountry, Language: models.DefaultLanguage}
	_ = c.ShouldBindJSON(&body)
	if body.Country == "" {
		body.Country = models.DefaultCountry
	}
	if body.Language == "" {
		body.Language = models.DefaultLanguage
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Fetching all categories in background. This may take a few minutes.",
		"status":  "processing",
	})

	// Detached from the request context so client disconnects cannot
	// cancel the sweep mid-flight.
	go func() {
		ctl.log.WithFields(logrus.Fields{
			"country":  body.Country,
			"language": body.Language,
		}).Info("fleet fetch started")
		ctl.news.IngestAllCategories(context.Background(), body.Country, body.Language)
	}()
}

type categoryFetchBody struct {
	Category string `json:"category"`
	Country  string `json:"country"`
	Language string `json:"language"`
}

// FetchCategory runs one category's ingestion synchronously and returns
// its BatchResult, failed or not.
func (ctl *AdminController) FetchCategory(c *gin.Context) {
	var body categoryFetchBody
	if err := c.ShouldBindJSON(&body); err != nil || body.Category == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"message": "Category is required",
		})
		return
	}
	if !models.ValidCategory(body.Category) {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"message": "Unknown category: " + body.Category,
		})
		return
	}
	if body.Country == "" {
		body.Country = models.DefaultCountry
	}
	if body.Language == "" {
		body.Language = models.DefaultLanguage
	}

	result := ctl.news.IngestCategory(c.Request.Context(), body.Category, body.Country, body.Language)
	c.JSON(http.StatusOK, result)
}

// Statistics reports store-wide counts grouped by taxonomy fields.
func (ctl *AdminController) Statistics(c *gin.Context) {
	stats, err := ctl.news.Statistics(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"message": "Failed to get statistics",
			"error":   err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "statistics": stats})
}

// FetchStatus returns the last fleet-fetch record, the polling side
// channel for the fire-and-forget FetchAll.
func (ctl *AdminController) FetchStatus(c *gin.Context) {
	run, err := ctl.news.LastFleetRun(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"message": "Failed to read fetch status",
			"error":   err.Error(),
		})
		return
	}
	if run == nil {
		c.JSON(http.StatusOK, gin.H{"success": true, "message": "No fleet fetch recorded yet"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "lastRun": run})
}
