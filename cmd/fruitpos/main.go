package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"fruitpos/internal/auth"
	"fruitpos/internal/config"
	"fruitpos/internal/db"
	httpx "fruitpos/internal/http"
	"fruitpos/internal/invoice"
	"fruitpos/internal/storage"
	"fruitpos/internal/uploads"
)

func main() {
	logger, _ := zap.NewProduction()
	defer func() { _ = logger.Sync() }()

	cfg, _ := config.Load()

	gdb, err := db.Connect(cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("connect database", zap.Error(err))
	}
	if err := db.AutoMigrateAndIndexes(gdb); err != nil {
		logger.Fatal("migrate database", zap.Error(err))
	}

	jwtSvc := auth.NewJWT(cfg.JWTSecret)

	store := &storage.LocalStore{Dir: cfg.UploadDir, BaseURL: cfg.UploadBaseURL}
	upRepo := &uploads.Repo{DB: gdb}
	upSvc := &uploads.Service{Repo: upRepo}
	invSvc := &invoice.Service{DB: gdb, Uploads: upSvc, Log: logger}

	proc := &uploads.Processor{Repo: upRepo, Store: store, Items: invSvc, Log: logger}
	worker := &uploads.Worker{
		Repo:      upRepo,
		Processor: proc,
		Interval:  cfg.UploadDrainInterval,
		BatchSize: cfg.UploadBatchSize,
		Log:       logger,
	}

	ctx, cancel := context.WithCancel(context.Background())
	worker.Start(ctx)

	sweeper := &invoice.Sweeper{Svc: invSvc, Schedule: cfg.ImageSweepSchedule, Log: logger}
	if err := sweeper.Start(ctx); err != nil {
		logger.Fatal("start image sweeper", zap.Error(err))
	}

	r := httpx.NewRouter(cfg, gdb, jwtSvc, invSvc, upRepo, worker)

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("listening", zap.String("addr", cfg.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("http server", zap.Error(err))
		}
	}()

	// graceful shutdown
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
	<-ch

	cancel()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	_ = srv.Shutdown(shutdownCtx)
}
