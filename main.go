package main

import (
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"

	"blockpress/auth"
	"blockpress/cache"
	"blockpress/common"
	"blockpress/config"
	"blockpress/database"
	"blockpress/frontoffice"
	"blockpress/pages"
	"blockpress/site"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		bootLogger := common.NewLogger(nil, "info")
		bootLogger.Fatal().Err(err).Msg("failed to load configuration")
	}

	logger := common.NewLogger(nil, cfg.LogLevel)

	db, err := common.ConnectDb(cfg.DBPath)
	if err != nil {
		logger.Fatal().Err(err).Str("path", cfg.DBPath).Msg("failed to open database")
	}

	if err := database.RunMigrations(db); err != nil {
		logger.Fatal().Err(err).Msg("failed to run migrations")
	}

	if cfg.DoSeed {
		if err := database.Seed(db); err != nil {
			logger.Fatal().Err(err).Msg("failed to seed database")
		}
	}

	if !cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery(), common.RequestLogger(logger))

	store := cookie.NewStore([]byte(cfg.SessionSecret))
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   86400 * 7,
		HttpOnly: true,
		Secure:   !cfg.IsDevelopment(),
	})
	router.Use(sessions.Sessions("blockpress-session", store))

	pageCache := cache.NewStore(cfg.CacheDir, time.Duration(cfg.CacheTTL)*time.Second)

	authModule := auth.NewAuthModule(db)
	authModule.RegisterRoutes(router)

	pageModule := pages.NewPageModule(db, authModule, pageCache)
	pageModule.RegisterRoutes(router)

	siteModule := site.NewSiteModule(db, authModule)
	siteModule.RegisterRoutes(router)

	frontModule := frontoffice.NewFrontofficeModule(db, pageCache)
	frontModule.RegisterRoutes(router)

	router.Static("/static", "./public")

	logger.Info().Str("addr", cfg.ServerAddr()).Msg("starting server")
	if err := router.Run(cfg.ServerAddr()); err != nil {
		logger.Fatal().Err(err).Msg("server stopped")
	}
}
