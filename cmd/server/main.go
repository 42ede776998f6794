package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"techmarks/internal/config"
	"techmarks/internal/db"
	"techmarks/internal/handlers"
	"techmarks/internal/logger"
	"techmarks/internal/middleware"
	"techmarks/internal/repository"
	"techmarks/internal/router"
	"techmarks/internal/services"
	"techmarks/internal/views"

	"github.com/gin-contrib/gzip"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
)

func main() {
	cfg := config.Load()

	log := logger.New(cfg.LogLevel, cfg.LogPretty)
	defer func() { _ = log.Sync() }()

	if err := run(cfg, log); err != nil {
		log.Fatal("server stopped", logger.Error(err))
	}
}

func run(cfg *config.Config, log logger.Logger) error {
	gdb, err := db.Open(cfg, log)
	if err != nil {
		return err
	}

	bookmarkRepo := repository.NewBookmarkRepository(gdb)
	categoryRepo := repository.NewCategoryRepository(gdb)
	userRepo := repository.NewUserRepository(gdb)

	var fetcherOpts []services.FetcherOption
	if cfg.MetadataAllowPrivate {
		log.Warn("metadata fetcher may reach private networks")
		fetcherOpts = append(fetcherOpts, services.AllowPrivateNetworks())
	}
	fetcher := services.NewHTMLMetadataFetcher(cfg.MetadataTimeout, cfg.MetadataUserAgent, fetcherOpts...)
	bookmarkService := services.NewBookmarkService(bookmarkRepo, categoryRepo, userRepo, fetcher, log)
	authService := services.NewAuthService(userRepo, log)

	gin.SetMode(cfg.GinMode)
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger(log))
	r.Use(gzip.Gzip(gzip.DefaultCompression))

	// Setup Sessions
	store := cookie.NewStore([]byte(cfg.SessionSecret))
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   30 * 24 * 3600,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	r.Use(sessions.Sessions("techmarks_session", store))

	renderer, err := views.Load("./web/templates")
	if err != nil {
		return err
	}
	r.HTMLRender = renderer
	handlers.SetSiteURL(cfg.SiteURL)

	// Static Assets
	r.Static("/static", "./web/static")

	r.Use(middleware.LoadUser(userRepo))

	bookmarkHandler := handlers.NewBookmarkHandler(bookmarkService, log)
	router.RegisterRoutes(r, router.Handlers{
		Bookmark: bookmarkHandler,
		Auth:     handlers.NewAuthHandler(authService, log),
		User:     handlers.NewUserHandler(bookmarkHandler),
		SEO:      handlers.NewSEOHandler(bookmarkService, log),
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Infof("techmarks server starting on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-quit:
		log.Info("shutdown signal received", logger.String("signal", sig.String()))
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		return err
	}

	if sqlDB, err := gdb.DB(); err == nil {
		_ = sqlDB.Close()
	}
	log.Info("server exited cleanly")
	return nil
}
