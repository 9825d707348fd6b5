package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/JerryLinyx/NewsGOAT/config"
	"github.com/JerryLinyx/NewsGOAT/controllers"
	"github.com/JerryLinyx/NewsGOAT/newsapi"
	"github.com/JerryLinyx/NewsGOAT/router"
	"github.com/JerryLinyx/NewsGOAT/scheduler"
	"github.com/JerryLinyx/NewsGOAT/services"
	"github.com/JerryLinyx/NewsGOAT/store"
)

func main() {
	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	db, err := config.InitDB(cfg)
	if err != nil {
		log.Fatalf("init database: %v", err)
	}
	if err := config.MigrateDB(db); err != nil {
		log.Fatalf("migrate database: %v", err)
	}

	rdb, err := config.InitRedis(cfg)
	if err != nil {
		log.Fatalf("init redis: %v", err)
	}

	articles := store.NewArticleStore(db)
	provider := newsapi.NewClient(cfg.NewsAPI.Key)
	news := services.NewNewsService(articles, provider, rdb, log)

	sched := scheduler.New(news, log, cfg.Fetch.CronSpec, cfg.Fetch.Country, cfg.Fetch.Language)
	if err := sched.Start(); err != nil {
		log.Fatalf("start scheduler: %v", err)
	}
	defer sched.Stop()

	r := router.InitRouter(router.Deps{
		DB:        db,
		JWTSecret: cfg.Auth.JWTSecret,
		News:      controllers.NewNewsController(news, articles),
		Admin:     controllers.NewAdminController(news, log),
		Favorites: controllers.NewFavoritesController(articles),
	})

	port := cfg.App.Port
	if port == "" {
		port = ":8080"
	}
	srv := &http.Server{
		Addr:    port,
		Handler: r,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s", err)
		}
	}()
	log.Infof("%s listening on %s", cfg.App.Name, port)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt)
	<-quit
	log.Info("Shutdown Server ...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Server Shutdown: %v", err)
	}
	log.Info("Server exiting")
}
