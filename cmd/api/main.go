package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/sla-dashboard/internal/api/http"
	"github.com/spec-kit/sla-dashboard/internal/api/http/handlers"
	"github.com/spec-kit/sla-dashboard/internal/config"
	"github.com/spec-kit/sla-dashboard/internal/domain"
	"github.com/spec-kit/sla-dashboard/internal/observability"
	"github.com/spec-kit/sla-dashboard/internal/service"
	"github.com/spec-kit/sla-dashboard/internal/tracker"
	"github.com/spec-kit/sla-dashboard/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	metrics := observability.NewMetrics(cfg.App.Name)

	source := tracker.NewClient(tracker.Config{
		BaseURL:  cfg.Tracker.BaseURL,
		APIToken: cfg.Tracker.APIToken,
		Timeout:  cfg.Tracker.Timeout(),
	})

	runner := worker.NewRunner(cfg.App.BackgroundWorkers, 16, logger)
	defer runner.Close()

	sampler := service.NewResponseSampler(source, cfg.Sampler, cfg.Team.InternalDomain, logger, metrics)
	responseCache := service.NewResponseTimeCache(sampler, runner, cfg.Cache.TTL(), logger, metrics)

	policy := service.ResolvePolicy(cfg.SLA.PolicyJSON, logger)
	slaService := service.NewSLAService(source, policy, logger)
	teamService := service.NewTeamService(service.TeamDependencies{
		Source:         source,
		ResponseTimes:  responseCache,
		Thresholds:     teamThresholds(cfg.Team),
		InternalDomain: cfg.Team.InternalDomain,
		Logger:         logger,
	})

	app := fiber.New()
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:  handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, source),
		SLA:     handlers.NewSLAHandler(slaService),
		Team:    handlers.NewTeamHandler(teamService),
		Metrics: metrics,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
}

func teamThresholds(cfg config.TeamConfig) domain.TeamThresholds {
	return domain.TeamThresholds{
		NeedsAttentionPending:  cfg.NeedsAttentionPending,
		NeedsAttentionAssigned: cfg.NeedsAttentionAssigned,
		BehindPending:          cfg.BehindPending,
		BehindAssigned:         cfg.BehindAssigned,
	}
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
