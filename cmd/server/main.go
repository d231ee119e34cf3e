// @title           Claimdesk API
// @version         1.0
// @description     Insurance document extraction and effective policy resolution.

// @host      localhost:8080
// @BasePath  /api/v1
// @schemes   http https
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"go.uber.org/zap"

	"claimdesk/internal/alert/noop"
	"claimdesk/internal/alert/ses"
	"claimdesk/internal/config"
	"claimdesk/internal/domain"
	"claimdesk/internal/extractor"
	_ "claimdesk/internal/extractor/claude"
	_ "claimdesk/internal/extractor/gemini"
	_ "claimdesk/internal/extractor/openai"
	"claimdesk/internal/handler"
	"claimdesk/internal/logger"
	"claimdesk/internal/peril"
	"claimdesk/internal/port"
	"claimdesk/internal/raster"
	"claimdesk/internal/repository/postgres"
	"claimdesk/internal/router"
	"claimdesk/internal/service"
	s3storage "claimdesk/internal/storage/s3"
)

const shutdownTimeout = 30 * time.Second

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

	flush, err := logger.Init(&cfg.Log)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer flush()

	db, err := postgres.NewDB(context.Background(), &cfg.DB)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	// Initialize repositories
	docRepo := postgres.NewDocumentRepo(db)
	auditRepo := postgres.NewDocumentAuditRepo(db)
	claimRepo := postgres.NewClaimRepo(db)
	canonicalRepo := postgres.NewCanonicalRepo(db)

	// Initialize storage
	s3Client, err := s3storage.NewS3Client(&cfg.S3)
	if err != nil {
		return fmt.Errorf("failed to initialize S3 client: %w", err)
	}

	// Initialize extraction chain
	pageExtractor, err := extractor.NewChain(&cfg.Extractor)
	if err != nil {
		return fmt.Errorf("failed to initialize extractor: %w", err)
	}

	alerts, err := newAlertSender(&cfg.Alert)
	if err != nil {
		return fmt.Errorf("failed to initialize alert sender: %w", err)
	}

	// Pipeline
	followUps := service.NewFollowUpDispatcher(service.FollowUpConfig{
		Workers:    cfg.Queue.FollowUpWorkers,
		MaxRetries: cfg.Queue.MaxRetries,
		RetryDelay: cfg.Queue.RetryDelay(),
	})
	policySvc := service.NewPolicyService(claimRepo, canonicalRepo)
	registerFollowUps(followUps, policySvc)

	writer := service.NewCanonicalWriter(canonicalRepo)
	materializer := service.NewClaimMaterializer(
		claimRepo, docRepo, auditRepo, writer, peril.NewKeywordClassifier(),
		followUps, cfg.Materializer.SiblingWindow(),
	)
	processor := service.NewDocumentProcessor(
		docRepo, auditRepo, s3Client, raster.New(cfg.Raster, nil), pageExtractor, writer, materializer,
		service.ProcessorConfig{UploadPages: cfg.Raster.UploadPages, FollowUps: followUps},
	)
	queue := service.NewProcessingQueue(docRepo, auditRepo, processor, alerts, service.QueueConfig{
		Workers:    cfg.Queue.Workers,
		MaxRetries: cfg.Queue.MaxRetries,
		RetryDelay: cfg.Queue.RetryDelay(),
	})

	// Initialize services and handlers
	docSvc := service.NewDocumentService(docRepo, auditRepo, queue)
	docH := handler.NewDocumentHandler(docSvc)
	claimH := handler.NewClaimHandler(policySvc)
	healthH := handler.NewHealthHandler(db, queue)

	r := router.Setup(&cfg.Server, docH, claimH, healthH)
	srv := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		followUps.Start(ctx)
	}()
	go func() {
		defer wg.Done()
		queue.Start(ctx)
	}()

	if _, err := queue.Recover(ctx); err != nil {
		zap.S().Errorf("server: recovering unfinished documents: %v", err)
	}

	errCh := make(chan error, 1)
	go func() {
		zap.S().Infof("server: listening on %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		stop()
		wg.Wait()
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	zap.S().Infof("server: shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zap.S().Errorf("server: shutdown: %v", err)
	}
	wg.Wait()
	return nil
}

func newAlertSender(cfg *config.AlertConfig) (port.AlertSender, error) {
	switch cfg.Provider {
	case "ses":
		return ses.NewSESSender(cfg.Region, cfg.FromAddress, cfg.FromName, cfg.ToAddress)
	case "", "noop":
		return noop.NewNoopSender(), nil
	default:
		return nil, fmt.Errorf("unknown alert provider: %s", cfg.Provider)
	}
}

// registerFollowUps resolves the effective policy whenever a claim's policy
// inputs change so resolution problems surface in the logs right away.
func registerFollowUps(d *service.FollowUpDispatcher, policySvc service.PolicyService) {
	resolve := func(ctx context.Context, task domain.FollowUpTask) error {
		_, ep, err := policySvc.EffectivePolicy(ctx, task.OrganizationID, task.ClaimID)
		if err != nil {
			return err
		}
		zap.S().Infow("effective policy resolved",
			"kind", task.Kind,
			"claim_id", task.ClaimID,
			"base_forms", ep.BaseForms,
			"endorsements", len(ep.AppliedEndorsements),
		)
		return nil
	}
	d.Register(domain.FollowUpClaimMaterialized, resolve)
	d.Register(domain.FollowUpPolicyUpdated, resolve)
}
