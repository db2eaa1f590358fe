package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/pratik-mahalle/costlens/internal/api/handlers"
	"github.com/pratik-mahalle/costlens/internal/api/router"
	"github.com/pratik-mahalle/costlens/internal/config"
	"github.com/pratik-mahalle/costlens/internal/detector"
	"github.com/pratik-mahalle/costlens/internal/pkg/logger"
	"github.com/pratik-mahalle/costlens/internal/pkg/validator"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(logger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	})

	engine := detector.NewEngine(detector.Config{
		Seed:               cfg.Detector.Seed,
		IsolationTrees:     cfg.Detector.IsolationTrees,
		IsolationSubsample: cfg.Detector.IsolationSubsample,
		IsolationMaxDepth:  cfg.Detector.IsolationMaxDepth,
	}, log)

	val := validator.New()

	h := &router.Handlers{
		Health:  handlers.NewHealthHandler(log),
		Anomaly: handlers.NewAnomalyHandler(engine, cfg.Detector.MaxObservations, log, val),
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router.New(cfg, log, h),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		log.WithFields(map[string]interface{}{
			"addr":        srv.Addr,
			"environment": cfg.Server.Environment,
		}).Info("Starting HTTP server")

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.ErrorWithErr(err, "HTTP server failed")
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.ErrorWithErr(err, "Server forced to shutdown")
		os.Exit(1)
	}

	log.Info("Server exited")
}
