package router

import (
	"os"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/JerryLinyx/NewsGOAT/controllers"
	"github.com/JerryLinyx/NewsGOAT/middlewares"
)

// Deps carries everything the route tree needs.
type Deps struct {
	DB        *gorm.DB
	JWTSecret string
	News      *controllers.NewsController
	Admin     *controllers.AdminController
	Favorites *controllers.FavoritesController
}

func InitRouter(deps Deps) *gin.Engine {
	r := gin.Default()

	allowedOrigins := []string{"http://localhost:5173", "http://localhost:8080"}
	if raw := os.Getenv("FRONTEND_ORIGINS"); raw != "" {
		split := strings.Split(raw, ",")
		allowedOrigins = allowedOrigins[:0]
		for _, v := range split {
			trimmed := strings.TrimSpace(v)
			if trimmed != "" {
				allowedOrigins = append(allowedOrigins, trimmed)
			}
		}
		if len(allowedOrigins) == 0 {
			allowedOrigins = []string{"*"}
		}
	}

	allowCreds := true
	if len(allowedOrigins) == 1 && allowedOrigins[0] == "*" {
		allowCreds = false
	}

	r.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: allowCreds,
		MaxAge:           12 * time.Hour,
	}))

	// Public health endpoint for liveness/readiness checks
	r.GET("/api/health", controllers.Health)

	news := r.Group("/api/news")
	{
		news.GET("/headlines", deps.News.GetHeadlines)
		news.GET("/search", deps.News.SearchNews)
		news.GET("/filtered", deps.News.GetFiltered)
		news.GET("/sources", deps.News.GetSources)
		news.GET("/categories", deps.News.GetCategories)
	}

	authed := r.Group("/api")
	authed.Use(middlewares.AuthMiddleware(deps.DB, deps.JWTSecret))
	{
		authed.PATCH("/news/:id/read", deps.News.MarkRead)
		authed.PATCH("/news/:id/status", deps.News.UpdateStatus)

		favorites := authed.Group("/favorites")
		{
			favorites.GET("", deps.Favorites.List)
			favorites.POST("", deps.Favorites.Add)
			favorites.DELETE("/:articleId", deps.Favorites.Remove)
		}

		admin := authed.Group("/admin")
		{
			admin.POST("/fetch-all", deps.Admin.FetchAll)
			admin.POST("/fetch-category", deps.Admin.FetchCategory)
			admin.GET("/fetch-status", deps.Admin.FetchStatus)
			admin.GET("/statistics", deps.Admin.Statistics)
		}
	}

	return r
}
