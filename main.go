// TaskWheelService is a personal task manager with a "spinning wheel" that picks
// one of the caller's pending tasks at random.
//
// Users register and log in to receive a bearer token; every task operation is
// scoped to the owner behind that token. Tasks are stored in MySQL or SQLite through
// GORM, requests are rate limited, and Prometheus metrics are exposed on /metrics.
//
// Commands:
//
//  1. serve - Run the HTTP API
//  2. migrate - Create or update the database tables and exit
//
// Configuration is read from the environment, optionally loaded from .env files
// given with --env-file.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"TaskWheelService/config"
	"TaskWheelService/handlers"
	"TaskWheelService/repository"
	"TaskWheelService/services"
	"TaskWheelService/validation"

	gfshutdown "github.com/gelmium/graceful-shutdown"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
	"golang.org/x/time/rate"
)

const shutdownTimeout = 10 * time.Second

var log = logrus.New()

func main() {
	log.SetFormatter(&logrus.JSONFormatter{})

	app := &cli.App{
		Name:  "taskwheel",
		Usage: "personal task manager with a random task picker",
		Flags: []cli.Flag{
			&cli.StringSliceFlag{
				Name:  "env-file",
				Usage: "`FILE` with environment variables to load before reading the configuration",
				Value: cli.NewStringSlice(".env"),
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "run the HTTP API",
				Action: serve,
			},
			{
				Name:   "migrate",
				Usage:  "create or update the database tables",
				Action: migrate,
			},
		},
		DefaultCommand: "serve",
	}
	if err := app.Run(os.Args); err != nil {
		log.WithField("task operation", "startup").Fatal(err)
	}
}

// loadConfig reads the configuration and applies the log level.
func loadConfig(c *cli.Context) (*config.Config, error) {
	if err := config.LoadEnvFiles(c.StringSlice("env-file")...); err != nil {
		return nil, err
	}
	cfg, err := config.FromEnv()
	if err != nil {
		return nil, err
	}
	log.SetLevel(cfg.LogLevel)
	return cfg, nil
}

func migrate(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	db, err := repository.OpenDatabase(c.Context, cfg.Database)
	if err != nil {
		return err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	if err := repository.Migrate(db); err != nil {
		return err
	}
	log.WithFields(logrus.Fields{
		"task operation": "migrate",
		"driver":         cfg.Database.Driver,
	}).Info("database schema is up to date")
	return nil
}

func serve(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	if err := cfg.RequireSecret(); err != nil {
		return err
	}

	db, err := repository.OpenDatabase(c.Context, cfg.Database)
	if err != nil {
		return err
	}
	if err := repository.Migrate(db); err != nil {
		return err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}

	taskService := services.NewTaskService(
		repository.NewGormTaskRepository(db),
		cfg.Vocabulary,
		services.WithLogger(log),
	)
	authService := services.NewAuthService(
		repository.NewGormUserRepository(db),
		services.NewPasswordHasher(cfg.Auth.BcryptCost),
		services.NewTokenManager(cfg.Auth.SecretKey, cfg.Auth.TokenTTL),
		validation.New(cfg.Vocabulary),
		log,
	)

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics, err := handlers.NewMetrics(registry)
	if err != nil {
		return fmt.Errorf("register metrics: %w", err)
	}

	router := handlers.NewRouter(handlers.RouterConfig{
		Tasks:          handlers.NewTaskHandler(taskService, log),
		Auth:           handlers.NewAuthHandler(authService, log),
		Authenticator:  authService,
		Metrics:        metrics,
		Gatherer:       registry,
		Limiter:        rate.NewLimiter(rate.Limit(cfg.RateLimit), cfg.RateBurst),
		RequestTimeout: cfg.RequestTimeout,
		Log:            log,
	})

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		log.WithFields(logrus.Fields{
			"task operation": "serve",
			"vocabulary":     cfg.Vocabulary.Name,
			"driver":         cfg.Database.Driver,
		}).Info("Server listening on port " + cfg.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithField("task operation", "serve").Fatal(err)
		}
	}()

	wait := gfshutdown.GracefulShutdown(
		context.Background(),
		shutdownTimeout,
		map[string]gfshutdown.Operation{
			"http-server": func(ctx context.Context) error {
				log.WithField("task operation", "shutdown").Info("stopping HTTP server")
				// the database closes only after in-flight requests are done with it
				err := server.Shutdown(ctx)
				return errors.Join(err, sqlDB.Close())
			},
		},
	)
	if exitCode := <-wait; exitCode != 0 {
		return cli.Exit("shutdown did not complete cleanly", exitCode)
	}
	return nil
}
