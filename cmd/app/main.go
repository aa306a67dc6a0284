package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"sales-copilot-bff/internal/config"
	"sales-copilot-bff/internal/domain/ports/adapter"
	aiAdapters "sales-copilot-bff/internal/infra/adapters/ai"
	"sales-copilot-bff/internal/infra/adapters/notify"
	pg "sales-copilot-bff/internal/infra/db/postgres"
	"sales-copilot-bff/internal/infra/logging"
	"sales-copilot-bff/internal/infra/metrics"
	"sales-copilot-bff/internal/infra/poller"
	red "sales-copilot-bff/internal/infra/redis"
	"sales-copilot-bff/internal/infra/sched"
	"sales-copilot-bff/internal/infra/upstream"
	"sales-copilot-bff/internal/infra/web"
	"sales-copilot-bff/internal/infra/worker"
	"sales-copilot-bff/internal/usecase"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ---- CLI flags ----
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	devMode := flag.Bool("dev", false, "enable developer mode (relaxed validation, console logs)")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, *devMode)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := logging.New(cfg.Log, cfg.Runtime.Dev)
	if cfg.Runtime.Dev {
		logger.Info().Msg("dev mode enabled")
	}
	metrics.MustRegister()

	// ---- Postgres ----
	pool, err := pg.Connect(ctx, cfg.Database.URL)
	if err != nil {
		logger.Fatal().Err(err).Msg("postgres connect failed")
	}
	defer pool.Close()
	tm := pg.NewTxManager(pool)
	actionLog := pg.NewActionLogRepo(pool)
	creditsRepo := pg.NewCreditsRepo(pool, tm)

	// ---- Redis ----
	redisClient, err := red.NewClient(ctx, &cfg.Redis)
	if err != nil {
		logger.Fatal().Err(err).Msg("redis connect failed")
	}
	defer redisClient.Close()
	rateLimiter := red.NewRateLimiter(redisClient)
	tipCache := red.NewTipCache(redisClient, cfg.Redis.TipTTL)

	// ---- Upstream platform client ----
	api := upstream.NewClient(cfg.Upstream, logger)

	// ---- Pollers ----
	jobPoller := poller.NewJobPoller(api, logger)
	pollOpts := poller.Options{Interval: cfg.Poll.Interval, MaxAttempts: cfg.Poll.MaxAttempts}

	// ---- AI drafting (OpenAI and/or Gemini, concurrency-capped) ----
	draftAI, err := buildDraftService(ctx, cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("draft service init failed")
	}

	// ---- Notifier ----
	var notifier adapter.Notifier
	if cfg.Notify.TelegramToken != "" {
		notifier, err = notify.NewTelegramNotifier(&cfg.Notify, *logger)
		if err != nil {
			logger.Fatal().Err(err).Msg("telegram notifier init failed")
		}
	} else {
		notifier = notify.NewNoopNotifier(*logger)
	}

	// ---- Use cases ----
	inboxUC := usecase.NewInboxUseCase(api, actionLog, logger)
	researchUC := usecase.NewResearchUseCase(api, jobPoller, pollOpts, logger)
	prospectingUC := usecase.NewProspectingUseCase(api, jobPoller, pollOpts, logger)
	draftUC := usecase.NewDraftUseCase(draftAI, creditsRepo, cfg.AI, logger)
	tipUC := usecase.NewTipUseCase(api, tipCache, logger)
	entityUC := usecase.NewEntityUseCase(api)

	// Warm the inbox before serving; a failure here is not fatal, the
	// refresh worker retries on its interval.
	if err := inboxUC.FetchAll(ctx); err != nil {
		logger.Warn().Err(err).Msg("initial inbox fetch failed")
	}

	// ---- Workers ----
	workerPool := worker.NewPool(cfg.Workers.Count, *logger)
	workerPool.Start(ctx)
	defer workerPool.Stop()

	refreshWorker := sched.NewRefreshWorker(cfg.Poll.RefreshInterval, inboxUC, notifier, logger)
	go func() { _ = refreshWorker.Run(ctx) }()
	snoozeWorker := sched.NewSnoozeWorker(cfg.Poll.SnoozeInterval, api, inboxUC, logger)
	go func() { _ = snoozeWorker.Run(ctx) }()

	// ---- Dashboard HTTP server ----
	auth := web.NewAuthManager(cfg.Server.SessionSecret, cfg.Server.SecureCookie, cfg.Server.CookieDomain, cfg.Server.SessionTTL)
	srv := web.NewServer(inboxUC, researchUC, prospectingUC, draftUC, tipUC, entityUC, auth, rateLimiter, workerPool, cfg.Server, logger)
	server := &http.Server{Addr: fmt.Sprintf(":%d", cfg.Server.Port), Handler: srv.Routes()}
	go func() {
		logger.Info().Str("addr", server.Addr).Msg("dashboard api listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error().Err(err).Msg("http server error")
		}
	}()

	// ---- Admin server (/metrics, health probe) ----
	adminMux := http.NewServeMux()
	adminMux.Handle("/metrics", promhttp.Handler())
	adminMux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
	admin := &http.Server{Addr: fmt.Sprintf(":%d", cfg.Admin.Port), Handler: adminMux}
	go func() {
		logger.Info().Str("addr", admin.Addr).Msg("admin listening")
		if err := admin.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error().Err(err).Msg("admin server error")
		}
	}()

	// ---- Graceful shutdown ----
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	<-sigc
	logger.Info().Msg("shutdown requested")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	_ = server.Shutdown(shutdownCtx)
	_ = admin.Shutdown(shutdownCtx)
}

// buildDraftService assembles the provider chain from the configured keys:
// both keys get the routing adapter, one key gets that provider directly,
// no keys fall back to the noop drafter (dev only).
func buildDraftService(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) (adapter.DraftService, error) {
	byProvider := map[string]adapter.DraftService{}

	if cfg.AI.OpenAIKey != "" {
		oa, err := aiAdapters.NewOpenAIAdapter(cfg.AI.OpenAIKey, cfg.AI.DefaultModel)
		if err != nil {
			return nil, err
		}
		byProvider["openai"] = oa
	}
	if cfg.AI.GeminiKey != "" {
		gm, err := aiAdapters.NewGeminiAdapter(ctx, cfg.AI.GeminiKey, cfg.AI.GeminiURL, cfg.AI.DefaultModel, 2048)
		if err != nil {
			return nil, err
		}
		byProvider["gemini"] = gm
	}

	var svc adapter.DraftService
	switch len(byProvider) {
	case 0:
		if !cfg.Runtime.Dev {
			return nil, fmt.Errorf("no AI provider configured: set ai.openai_key or ai.gemini_key")
		}
		logger.Warn().Msg("no AI provider configured; drafting runs on the noop adapter")
		svc = aiAdapters.NewNoopDraftAdapter()
	case 1:
		for _, a := range byProvider {
			svc = a
		}
	default:
		svc = aiAdapters.NewMultiDraftAdapter("openai", byProvider, nil)
	}

	return aiAdapters.NewLimitedDraft(svc, cfg.AI.ConcurrentLimit), nil
}
