package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/BerylCAtieno/avatar-analyzer/internal/a2a"
	"github.com/BerylCAtieno/avatar-analyzer/internal/analyzer"
	"github.com/BerylCAtieno/avatar-analyzer/internal/api"
	"github.com/BerylCAtieno/avatar-analyzer/internal/config"
	"github.com/BerylCAtieno/avatar-analyzer/internal/logger"
	"github.com/BerylCAtieno/avatar-analyzer/internal/metrics"
	"github.com/BerylCAtieno/avatar-analyzer/internal/notify"
	"github.com/BerylCAtieno/avatar-analyzer/internal/service"
	"github.com/BerylCAtieno/avatar-analyzer/internal/storage"
)

func main() {
	configPath := flag.String("config", "", "path to a YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.Log.Level, cfg.Log.File)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to init logger: %v\n", err)
		os.Exit(1)
	}

	if err := run(cfg, log); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}

func run(cfg *config.Config, log *logrus.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	m := metrics.New()
	notifier := notify.New(notify.LogSink{Log: log}, cfg.Notify.Duration)

	opts := service.Options{
		Notifier: notifier,
		Metrics:  m,
		Log:      log,
	}

	if cfg.GeminiConfigured() {
		client, err := analyzer.NewGeminiClient(ctx, analyzer.Options{
			APIKey: cfg.Gemini.APIKey,
			Model:  cfg.Gemini.Model,
			RPM:    cfg.Analyze.RPM,
			Burst:  cfg.Analyze.Burst,
		}, log)
		if err != nil {
			return err
		}
		defer client.Close()
		opts.Analyzer = client
	} else {
		log.Warn("GEMINI_API_KEY not set, /api/analyze will answer 503")
	}

	if cfg.DatabaseConfigured() {
		store, err := storage.NewPostgres(ctx, cfg.Database.URL, log)
		if err != nil {
			return err
		}
		defer store.Close()

		templates, err := storage.DefaultTemplates()
		if err != nil {
			return err
		}
		if err := store.SeedTemplates(ctx, templates); err != nil {
			log.WithError(err).Warn("Failed to seed templates")
		}
		opts.Store = store
	} else {
		log.Warn("DATABASE_URL not set, running without persistence")
	}

	svc := service.New(opts)
	router := api.NewRouter(api.Options{
		Service:     svc,
		Metrics:     m,
		Log:         log,
		CORSOrigins: cfg.CORSOrigins,
	})

	baseURL := fmt.Sprintf("http://localhost:%s", cfg.Port)
	a2a.NewA2AHandler(svc, baseURL, log).Register(router)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	log.Infof("Avatar Analyzer starting on port %s", cfg.Port)
	log.Infof("Agent card available at: %s%s", baseURL, a2a.CardPath)
	log.Infof("A2A endpoint available at: %s%s", baseURL, a2a.AgentPath)

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
