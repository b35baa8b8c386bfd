package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"domainly/internal/config"
	"domainly/internal/database"
	"domainly/internal/dnsclient"
	"domainly/internal/handlers"
	"domainly/internal/models"
	"domainly/internal/services"
	"domainly/internal/store"
)

func main() {
	// 1. Load Config
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// 2. Init DB
	db, err := database.InitDB(cfg.DatabasePath)
	if err != nil {
		log.Fatalf("Failed to init DB: %v", err)
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	// 3. Services
	resolver := dnsclient.New(cfg.DNSTimeout)
	engine := services.NewValidationEngine(resolver, cfg.TXTPrefix, cfg.HostingIPs, logger)
	provisioner := services.NewProvisioningClient(cfg)
	diag := services.NewDiagnosticService(cfg, provisioner, resolver)
	domains := store.New(db)

	if cfg.HostingAPIToken == "" {
		log.Printf("Warning: hosting API token not set; domain provisioning will be unavailable")
	}

	// 4. Background re-validation of failed domains, bounded by the retry cap.
	// Same trigger semantics as the API with trigger=auto.
	go retryLoop(cfg, domains, engine, logger)

	// 5. API Server
	e := echo.New()
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())

	api := e.Group("/api")
	handlers.RegisterRoutes(api, domains, engine, provisioner, diag)

	log.Printf("Domainly starting on %s...", cfg.ListenAddr)
	e.Logger.Fatal(e.Start(cfg.ListenAddr))
}

func retryLoop(cfg *config.Config, domains *store.DomainStore, engine *services.ValidationEngine, logger *slog.Logger) {
	interval := cfg.AutoRetryInterval
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for range ticker.C {
		ctx, cancel := context.WithTimeout(context.Background(), interval)
		sweep(ctx, cfg, domains, engine, logger)
		cancel()
	}
}

func sweep(ctx context.Context, cfg *config.Config, domains *store.DomainStore, engine *services.ValidationEngine, logger *slog.Logger) {
	failed, err := domains.ListByStatus(ctx, models.StatusFailed, cfg.AutoRetryMax)
	if err != nil {
		logger.Error("retry sweep: listing failed domains", "err", err)
		return
	}
	for i := range failed {
		d := &failed[i]
		if err := domains.BeginValidation(ctx, d.ID); err != nil {
			logger.Error("retry sweep: begin validation", "domain", d.DomainName, "err", err)
			continue
		}
		result := engine.Validate(ctx, d)
		if _, err := domains.ApplyResult(ctx, d.ID, result, false); err != nil {
			logger.Error("retry sweep: apply result", "domain", d.DomainName, "err", err)
		}
	}
}
