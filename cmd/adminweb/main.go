package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/shopfront/adminweb/internal/catalog"
	"github.com/shopfront/adminweb/internal/config"
	"github.com/shopfront/adminweb/internal/session"
	"github.com/shopfront/adminweb/internal/shopapi"
	"github.com/shopfront/adminweb/internal/web"
	"github.com/shopfront/adminweb/pkg/logger"
)

func main() {
	cfg, err := config.Load(context.Background())
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	zlog := logger.Init(logger.Options{Level: cfg.LogLevel, Pretty: cfg.LogPretty})

	api := shopapi.NewClient(cfg.APIBaseURL, cfg.APITimeout)
	ctl := catalog.NewController(api)

	hub := session.NewHub()
	hub.Subscribe(func(ev session.Event) {
		if ev.Type == session.EventLogout {
			ctl.Reset()
		}
	})

	e := echo.New()
	e.HideBanner = true
	e.Server.ReadTimeout = 10 * time.Second
	e.Server.WriteTimeout = 15 * time.Second
	e.Server.ReadHeaderTimeout = 3 * time.Second

	h := &web.Handlers{
		API:      api,
		Catalog:  ctl,
		Provider: session.NewProvider(),
		Hub:      hub,
		Log:      zlog,
	}
	if err := web.Register(e, h); err != nil {
		zlog.Fatal().Err(err).Msg("register routes")
	}

	go func() {
		zlog.Info().Str("addr", cfg.ListenAddr).Str("backend", cfg.APIBaseURL).Msg("starting admin console")
		if err := e.Start(cfg.ListenAddr); err != nil && err != http.ErrServerClosed {
			zlog.Fatal().Err(err).Msg("start")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		zlog.Fatal().Err(err).Msg("shutdown")
	}
}
