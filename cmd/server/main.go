package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/shopspring/decimal"

	"pajakos/internal/config"
	"pajakos/internal/email/noop"
	"pajakos/internal/email/ses"
	"pajakos/internal/handler"
	"pajakos/internal/parser"
	"pajakos/internal/port"
	"pajakos/internal/repository/postgres"
	"pajakos/internal/router"
	"pajakos/internal/service"
	s3storage "pajakos/internal/storage/s3"
	"pajakos/internal/validator"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	db, err := postgres.NewDB(&cfg.DB)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	// Initialize repositories
	userRepo := postgres.NewUserRepo(db)
	docRepo := postgres.NewDocumentRepo(db)

	// Initialize storage
	s3Client, err := s3storage.NewS3Client(&cfg.S3)
	if err != nil {
		return fmt.Errorf("failed to initialize S3 client: %w", err)
	}

	// Initialize email sender
	var emailSender port.EmailSender
	switch cfg.Email.Provider {
	case "ses":
		emailSender, err = ses.NewSESSender(cfg.Email.Region, cfg.Email.FromAddress, cfg.Email.FromName, cfg.Email.FrontendURL)
		if err != nil {
			return fmt.Errorf("failed to initialize SES sender: %w", err)
		}
	default:
		emailSender = noop.NewNoopSender(cfg.Email.FrontendURL)
	}

	// Build the extraction pipeline from configured thresholds
	tol := validator.Tolerances{
		ArithmeticPct:     decimal.NewFromFloat(cfg.Pipeline.ArithmeticPct),
		ReconcileAbsFloor: decimal.NewFromFloat(cfg.Pipeline.ReconcileAbsFloor),
		ReconcilePct:      decimal.NewFromFloat(cfg.Pipeline.ReconcilePct),
		MagnitudeFloor:    decimal.NewFromFloat(cfg.Pipeline.MagnitudeFloor),
		MagnitudeCeiling:  decimal.NewFromFloat(cfg.Pipeline.MagnitudeCeiling),
	}
	opts := parser.Options{
		RateTolerance:     decimal.NewFromFloat(cfg.Pipeline.RateTolerance),
		StatutoryRate:     decimal.NewFromFloat(cfg.Pipeline.StatutoryRate),
		MinAmount:         decimal.NewFromFloat(cfg.Pipeline.MinAmount),
		MatchTolerancePct: decimal.NewFromFloat(cfg.Pipeline.MatchTolerancePct),
	}
	engine := validator.NewEngine(validator.DefaultRegistry(tol), tol)
	pipeline := parser.NewPipeline(opts, engine)

	// Initialize services
	authSvc := service.NewAuthService(userRepo, cfg.JWT)
	userSvc := service.NewUserService(userRepo)
	docSvc := service.NewDocumentService(docRepo, userRepo, pipeline, s3Client, emailSender, cfg.S3)

	// Initialize handlers
	authH := handler.NewAuthHandler(authSvc)
	docH := handler.NewDocumentHandler(docSvc)
	userH := handler.NewUserHandler(userSvc)
	healthH := handler.NewHealthHandler(db)

	r := router.Setup(cfg, authSvc, authH, docH, userH, healthH)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Start the parse queue worker
	worker := service.NewParseQueueWorker(docRepo, docSvc, service.ParseQueueConfig{
		PollInterval: time.Duration(cfg.Queue.PollIntervalSecs) * time.Second,
		Concurrency:  cfg.Queue.Concurrency,
	})
	workerDone := make(chan struct{})
	go func() {
		defer close(workerDone)
		worker.Start(ctx)
	}()

	srv := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Printf("Server starting on %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case err := <-serverErr:
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	log.Printf("Shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	<-workerDone
	log.Printf("Shutdown complete")
	return nil
}
