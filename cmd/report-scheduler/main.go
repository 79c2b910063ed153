package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"planboard/internal/amqp"
	"planboard/internal/config"
	applog "planboard/internal/log"
	"planboard/internal/services"
	"planboard/internal/storage"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	logger := applog.New(applog.Config{
		Level:     slog.LevelInfo,
		Component: applog.ComponentScheduler,
	})
	applog.SetDefault(logger)

	logger.Info("Starting report-scheduler")

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}

	repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
	if err != nil {
		logger.Error("Failed to initialize SQLite repository", "error", err, "path", cfg.SQLiteDBPath)
		os.Exit(1)
	}
	defer repo.Close()

	// AMQP is optional; scheduled reports are still archived without it.
	var publisher services.ReportPublisher
	if cfg.AMQPURL != "" {
		amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Warn("Failed to initialize AMQP client, continuing without report notifications", "error", err)
		} else {
			defer amqpClient.Close()
			publisher = amqpClient
			logger.Info("AMQP client initialized - alerts will be raised by planboard-worker")
		}
	} else {
		logger.Info("AMQP disabled - scheduled reports will not be announced")
	}

	reportService := services.NewReportService(repo, repo, publisher)
	processor := services.NewScheduleProcessor(repo, reportService)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	logger.Info("Report scheduler configured",
		"interval", cfg.SchedulerInterval,
		"sqlite_db", cfg.SQLiteDBPath)

	ticker := time.NewTicker(cfg.SchedulerInterval)
	defer ticker.Stop()

	// Run once on startup so a restart never skips an already-due schedule.
	if count, err := processor.ProcessDueSchedules(ctx, time.Now()); err != nil {
		logger.Error("Initial schedule processing failed", "error", err)
	} else {
		logger.Info("Initial schedule processing complete", "reports_generated", count)
	}

	for {
		select {
		case <-ctx.Done():
			logger.Info("Report-scheduler stopped gracefully")
			return
		case now := <-ticker.C:
			count, err := processor.ProcessDueSchedules(ctx, now)
			if err != nil {
				logger.Error("Schedule processing failed", "error", err)
				continue
			}
			logger.Info("Schedule processing complete",
				"reports_generated", count,
				"next_check", now.Add(cfg.SchedulerInterval).Format("15:04:05"))
		}
	}
}
