package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mealtrack/backend/config"
	httpDelivery "github.com/mealtrack/backend/internal/delivery/http"
	"github.com/mealtrack/backend/internal/infrastructure/cache"
	"github.com/mealtrack/backend/internal/infrastructure/storage"
	"github.com/mealtrack/backend/internal/infrastructure/usda"
	"github.com/mealtrack/backend/internal/usecase"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

const shutdownTimeout = 10 * time.Second

// newLogger builds the process logger from the log section.
func newLogger(cfg config.LogConfig) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(os.Stdout)

	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	log.SetLevel(level)

	if cfg.Format == "json" {
		log.SetFormatter(&logrus.JSONFormatter{})
	} else {
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	return log
}

type application struct {
	db      *gorm.DB
	cache   *cache.MemoryCache
	catalog *usecase.CatalogService
	meals   *usecase.MealService
	recipes *usecase.RecipeService
}

// newApplication opens storage and wires every service.
func newApplication(cfg *config.Config, log *logrus.Logger) (*application, error) {
	db, err := storage.Open(cfg.Database.Driver, cfg.Database.DSN, log)
	if err != nil {
		return nil, fmt.Errorf("init storage: %w", err)
	}
	log.WithFields(logrus.Fields{
		"driver": cfg.Database.Driver,
	}).Info("Database ready")

	memoryCache := cache.NewMemoryCache(cfg.Cache.CleanupInterval)

	usdaClient := usda.NewClient(cfg.USDA.APIKey, cfg.USDA.BaseURL,
		usda.WithRequestsPerHour(cfg.USDA.RequestsPerHour),
		usda.WithTimeout(cfg.USDA.Timeout),
		usda.WithLogger(log.WithField("component", "usda")),
	)
	if cfg.Server.Environment == "development" {
		usdaClient.SetDebug(true)
		log.Debug("USDA client debug mode enabled")
	}

	foods := storage.NewFoodStore(db)
	recipes := storage.NewRecipeStore(db)

	app := &application{
		db:    db,
		cache: memoryCache,
		catalog: usecase.NewCatalogService(foods, usdaClient, usecase.CatalogServiceConfig{
			SearchLimit:      cfg.Import.SearchLimit,
			SearchPageSize:   cfg.Import.SearchPageSize,
			MaxCandidates:    cfg.Import.MaxCandidates,
			CandidateDelay:   cfg.Import.Delay,
			CandidateTimeout: cfg.Import.CandidateTimeout,
		}, log.WithField("component", "catalog")),
		meals: usecase.NewMealService(foods, recipes, storage.NewMealStore(db), storage.NewGoalStore(db), memoryCache,
			usecase.MealServiceConfig{SummaryTTL: cfg.Cache.TTL},
			log.WithField("component", "meals")),
		recipes: usecase.NewRecipeService(recipes, foods, log.WithField("component", "recipes")),
	}
	return app, nil
}

func (a *application) Close() {
	a.cache.Close()
	_ = storage.Close(a.db)
}

// run serves the API until ctx is cancelled or a termination signal arrives.
func run(ctx context.Context, cfg *config.Config) error {
	log := newLogger(cfg.Log)

	log.WithFields(logrus.Fields{
		"version":     version,
		"environment": cfg.Server.Environment,
		"address":     cfg.Server.Address(),
		"usda_url":    cfg.USDA.BaseURL,
	}).Info("Starting MealTrack backend")

	app, err := newApplication(cfg, log)
	if err != nil {
		return err
	}
	defer app.Close()

	handler := httpDelivery.NewHandler(app.catalog, app.meals, app.recipes, version, log.WithField("component", "http"))
	router := httpDelivery.SetupRouter(cfg, handler, log)

	httpServer := &http.Server{
		Addr:              cfg.Server.Address(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.WithField("address", httpServer.Addr).Info("Server listening")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(sigCh)

		select {
		case sig := <-sigCh:
			log.WithField("signal", sig.String()).Info("Shutting down")
		case <-gCtx.Done():
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
