package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	_ "github.com/noah-isme/admission-api/api/swagger"
	"github.com/noah-isme/admission-api/internal/app"
	"github.com/noah-isme/admission-api/internal/handler"
	"github.com/noah-isme/admission-api/internal/repository"
	"github.com/noah-isme/admission-api/pkg/cache"
	"github.com/noah-isme/admission-api/pkg/config"
	"github.com/noah-isme/admission-api/pkg/database"
	"github.com/noah-isme/admission-api/pkg/logger"
	"github.com/noah-isme/admission-api/pkg/messaging"
)

// @title Admission API
// @version 1.0.0
// @description Applicant registry, entrance exams, affirmative-action segments and seat allocation.
// @BasePath /api/v1
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	deps := app.Dependencies{Readiness: map[string]handler.ReadinessCheck{}}
	var closers []func() error

	if cfg.Stats.CacheEnabled {
		client, err := cache.NewRedis(ctx, cfg.Redis)
		if err != nil {
			logr.Warn("redis unavailable, statistics cache disabled", zap.Error(err))
		} else {
			repo := repository.NewCacheRepository(client, logr.Named("redis"))
			deps.Cache = repo
			deps.Readiness["redis"] = repo.Ping
			closers = append(closers, repo.Close)
		}
	}

	if cfg.Catalog.Enabled {
		db, err := database.NewPostgres(ctx, cfg.Database)
		if err != nil {
			logr.Fatal("failed to connect offering catalog", zap.Error(err))
		}
		deps.Catalog = repository.NewOfferingCatalogRepository(db)
		deps.Readiness["catalog"] = db.PingContext
		closers = append(closers, db.Close)
	}

	if cfg.Events.Enabled {
		publisher := messaging.NewRabbitPublisher(cfg.Events.RabbitMQURL, logr.Named("rabbitmq"))
		deps.Publisher = publisher
		closers = append(closers, publisher.Close)
	}

	api := app.New(cfg, logr, deps)
	if err := api.ImportCatalog(ctx); err != nil {
		logr.Fatal("failed to import offering catalog", zap.Error(err))
	}
	api.Dispatcher.Start(ctx)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           api.Engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logr.Info("server starting", zap.String("addr", srv.Addr), zap.String("env", cfg.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		logr.Info("shutting down server")
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logr.Error("server stopped with error", zap.Error(err))
	}

	api.Dispatcher.Stop()
	for _, closeFn := range closers {
		if err := closeFn(); err != nil {
			logr.Warn("failed to release resource", zap.Error(err))
		}
	}
}
