package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/gartstein/directory/internal/directory/config"
	"github.com/gartstein/directory/internal/directory/controller"
	"github.com/gartstein/directory/internal/directory/db"
	"github.com/gartstein/directory/internal/directory/events"
	"github.com/gartstein/directory/internal/directory/handlers"
	"github.com/gartstein/directory/internal/directory/metrics"
	"github.com/gartstein/directory/internal/directory/seed"
	"github.com/gartstein/directory/internal/directory/store"
	"go.uber.org/zap"
)

func main() {
	cfg, help, err := config.Load(config.Path())
	if err != nil {
		if errors.Is(err, config.ErrHelpWanted) {
			fmt.Println(help)
			return
		}
		log.Fatalf("failed to load config: %v", err)
	}

	logger := initLogger(cfg.Log.Development)
	defer func(logger *zap.Logger) {
		_ = logger.Sync()
	}(logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	repo, closeRepo, err := initStore(cfg)
	if err != nil {
		logger.Fatal("failed to initialize store", zap.Error(err))
	}
	defer closeRepo()

	producer, closeProducer := initProducer(ctx, cfg, logger)
	defer closeProducer()

	data, err := seed.Load(cfg.Seed.Path)
	if err != nil {
		logger.Fatal("failed to read seed", zap.Error(err))
	}

	m := metrics.New()
	directorySvc := controller.NewDirectoryService(repo, producer, logger,
		controller.WithPageSize(cfg.Directory.PageSize),
		controller.WithRecorder(m),
	)

	loaded := seed.After(ctx, cfg.Seed.Delay, func(ctx context.Context) {
		if err := directorySvc.Load(ctx, data.Companies, data.Industries); err != nil {
			logger.Error("failed to install seed", zap.Error(err))
		}
	})

	// Create handlers
	directoryHandler := handlers.NewDirectoryHandler(directorySvc, logger)
	router := handlers.NewRouter(handlers.RouterConfig{
		CORSOrigins: cfg.HTTP.CORSOrigins,
		RateLimit:   cfg.HTTP.RateLimit,
	}, directoryHandler, m.Handler(), logger)

	server := handlers.NewServer(handlers.ServerConfig{
		Port:            cfg.HTTP.Port,
		ReadTimeout:     cfg.HTTP.ReadTimeout,
		WriteTimeout:    cfg.HTTP.WriteTimeout,
		ShutdownTimeout: cfg.HTTP.ShutdownTimeout,
	}, router, logger)

	go func() {
		if err := server.Start(); err != nil {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	waitForShutdown(server, cancel, logger)
	<-loaded
}

// initLogger initializes a Zap production logger, or a development one
// when requested.
func initLogger(development bool) *zap.Logger {
	if development {
		logger, _ := zap.NewDevelopment()
		return logger
	}
	logger, _ := zap.NewProduction()
	return logger
}

// initStore selects the entity store backend.
func initStore(cfg *config.Config) (controller.Repository, func(), error) {
	if cfg.Store.Driver != config.DriverSQLite {
		return store.NewMemory(), func() {}, nil
	}
	repo, err := db.NewRepository(&db.Config{DSN: cfg.Store.DSN})
	if err != nil {
		return nil, nil, err
	}
	return repo, func() { _ = repo.Close() }, nil
}

// initProducer connects to Kafka with retries. Without brokers, or when the
// brokers stay unreachable, events are discarded.
func initProducer(ctx context.Context, cfg *config.Config, logger *zap.Logger) (controller.EventProducer, func()) {
	if len(cfg.Kafka.Brokers) == 0 {
		logger.Info("No Kafka brokers configured, change feed disabled")
		return events.Discard{}, func() {}
	}

	b := backoff.NewExponentialBackOff()
	b.MaxElapsedTime = 30 * time.Second

	var producer *events.Producer
	err := backoff.Retry(func() error {
		var err error
		producer, err = events.NewProducer(cfg.Kafka.Brokers, logger, cfg.Kafka.Topic)
		if err != nil {
			logger.Warn("Kafka not ready, retrying", zap.Error(err))
		}
		return err
	}, backoff.WithContext(b, ctx))
	if err != nil {
		logger.Error("failed to initialize Kafka producer, change feed disabled", zap.Error(err))
		return events.Discard{}, func() {}
	}
	return producer, producer.Close
}

// waitForShutdown blocks until an interrupt or SIGTERM is received, then
// cancels background work and shuts down the server.
func waitForShutdown(server *handlers.Server, cancel context.CancelFunc, logger *zap.Logger) {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	cancel()
	server.Stop()
	logger.Info("Server stopped properly")
}
