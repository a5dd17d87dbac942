package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"gorm.io/gorm"

	"forkful/internal/config"
	"forkful/internal/db"
	"forkful/internal/db/mock"
	applog "forkful/internal/log"
	"forkful/internal/media"
	"forkful/internal/server"
)

type serverLifecycle interface {
	Start() error
	Stop() error
}

// The indirections below let the run flow be exercised without opening
// listeners or real database connections.
var (
	loadConfigFunc      = config.Load
	setLogLevelFunc     = applog.SetLevel
	newMockDatabaseFunc = mock.New
	configureDatabase   = db.Configure
	newMediaStoreFunc   = media.NewStore
	newServerFunc       = func(cfg server.Config) (serverLifecycle, error) {
		return server.New(cfg)
	}
	subscribeShutdownSig = func() (<-chan os.Signal, func()) {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT)
		return sigCh, func() { signal.Stop(sigCh) }
	}
)

func main() {
	os.Exit(run(context.Background()))
}

func run(ctx context.Context) int {
	cfg, err := loadConfigFunc()
	if err != nil {
		applog.Error(ctx, "failed to load configuration", "error", err)
		return 1
	}

	if err := setLogLevelFunc(cfg.Server.LogLevel); err != nil {
		applog.Error(ctx, "invalid log level", "error", err, "level", cfg.Server.LogLevel)
		return 1
	}

	var database *gorm.DB
	if cfg.Database.URL == "" {
		applog.Info(ctx, "no database url configured, serving seeded in-memory data")
		database, err = newMockDatabaseFunc(ctx)
	} else {
		database, err = configureDatabase(cfg.Database)
	}
	if err != nil {
		applog.Error(ctx, "failed to initialize database", "error", err)
		return 1
	}

	mediaStore, err := newMediaStoreFunc(cfg.Media.Root, cfg.Media.BaseURL)
	if err != nil {
		applog.Error(ctx, "failed to initialize media store", "error", err)
		return 1
	}

	srv, err := newServerFunc(server.Config{
		Addr: cfg.Server.Addr,
		Session: server.SessionConfig{
			Lifetime:     cfg.Session.Lifetime,
			CookieName:   cfg.Session.CookieName,
			CookieDomain: cfg.Session.CookieDomain,
			CookieSecure: cfg.Session.CookieSecure,
		},
		Token: server.TokenConfig{
			Secret: cfg.Token.Secret,
			TTL:    cfg.Token.TTL,
		},
		Database: database,
		Media:    mediaStore,
	})
	if err != nil {
		applog.Error(ctx, "failed to build server", "error", err)
		return 1
	}

	errCh := make(chan error, 1)
	go func() {
		applog.Info(ctx, "starting http server", "addr", cfg.Server.Addr)
		errCh <- srv.Start()
	}()

	sigCh, cancel := subscribeShutdownSig()
	defer cancel()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			applog.Error(ctx, "server encountered an error", "error", err)
			return 1
		}
		return 0
	case sig := <-sigCh:
		applog.Info(ctx, "shutdown signal received", "signal", sig.String())
		if err := srv.Stop(); err != nil {
			applog.Error(ctx, "graceful shutdown failed", "error", err)
			return 1
		}
		if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
			applog.Error(ctx, "server encountered an error", "error", err)
			return 1
		}
		return 0
	}
}
