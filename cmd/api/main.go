package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ergolab/human-factors-backend/internal/analysis"
	"github.com/ergolab/human-factors-backend/internal/api"
	"github.com/ergolab/human-factors-backend/internal/config"
	"github.com/ergolab/human-factors-backend/internal/ergo"
	"github.com/ergolab/human-factors-backend/internal/insight"
	"github.com/ergolab/human-factors-backend/internal/pose"
)

func main() {
	// ── Logger ────────────────────────────────────────────────────────────────
	// JSON in production, pretty text in development.
	var logger *slog.Logger
	if os.Getenv("ENV") == "production" {
		logger = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		}))
	} else {
		logger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		}))
	}
	slog.SetDefault(logger)

	if err := run(logger); err != nil {
		logger.Error("fatal", "error", err)
		os.Exit(1)
	}
}

func run(logger *slog.Logger) error {
	// ── Config ────────────────────────────────────────────────────────────────
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	logger.Info("config loaded", "env", cfg.Env, "port", cfg.Port, "provider", cfg.LLMProvider)

	// ── Pose estimation ───────────────────────────────────────────────────────
	estimator := pose.NewHTTPEstimator(cfg.PoseServiceURL, cfg.PoseTimeout)

	// ── Insight provider ──────────────────────────────────────────────────────
	completer, err := buildCompleter(cfg, logger)
	if err != nil {
		return fmt.Errorf("insight provider: %w", err)
	}

	orchestrator := insight.NewOrchestrator(completer, insight.SamplingConfig{
		Temperature: cfg.LLMTemperature,
		TopP:        cfg.LLMTopP,
		MaxTokens:   cfg.LLMMaxTokens,
		Stream:      cfg.LLMStream,
	}, logger)

	// ── Pipeline ──────────────────────────────────────────────────────────────
	svc := analysis.NewService(
		estimator,
		ergo.NewAnalyzer(),
		orchestrator,
		analysis.Config{Concurrency: cfg.BatchConcurrency},
		logger,
	)

	// ── HTTP server ───────────────────────────────────────────────────────────
	handler := api.NewServer(svc, api.Config{
		Env:            cfg.Env,
		MaxUploadBytes: cfg.MaxUploadBytes,
	}, logger)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  60 * time.Second,  // batch uploads can be large
		WriteTimeout: 300 * time.Second, // estimation plus narrative can run long
		IdleTimeout:  120 * time.Second,
	}

	// ── Graceful shutdown ─────────────────────────────────────────────────────
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// Block until either a signal arrives or the server dies unexpectedly.
	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err := <-serverErr:
		return fmt.Errorf("server error: %w", err)
	}

	// Give in-flight requests up to 20 seconds to finish.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	logger.Info("shutdown complete")
	return nil
}

// buildCompleter selects the primary narrative provider from LLM_PROVIDER.
// When exactly one other provider's API key is also set, that provider
// becomes the fallback. In production, set two keys for maximum resilience.
func buildCompleter(cfg *config.Config, logger *slog.Logger) (insight.Completer, error) {
	clientFor := func(provider string) insight.Completer {
		switch provider {
		case config.ProviderAnthropic:
			return insight.NewAnthropicClient(cfg.AnthropicAPIKey, cfg.AnthropicModel)
		case config.ProviderOpenAI:
			return insight.NewOpenAIClient(cfg.OpenAIAPIKey, cfg.OpenAIModel)
		case config.ProviderNvidia:
			return insight.NewNvidiaClient(cfg.NvidiaAPIKey, cfg.NvidiaModel)
		}
		return nil
	}

	primary := clientFor(cfg.LLMProvider)
	if primary == nil {
		return nil, fmt.Errorf("unknown provider %q", cfg.LLMProvider)
	}

	keyFor := map[string]string{
		config.ProviderAnthropic: cfg.AnthropicAPIKey,
		config.ProviderOpenAI:    cfg.OpenAIAPIKey,
		config.ProviderNvidia:    cfg.NvidiaAPIKey,
	}

	var fallbackProvider string
	for _, provider := range []string{config.ProviderAnthropic, config.ProviderOpenAI, config.ProviderNvidia} {
		if provider != cfg.LLMProvider && keyFor[provider] != "" {
			fallbackProvider = provider
			break
		}
	}

	if fallbackProvider == "" {
		logger.Info("insight: single provider", "provider", cfg.LLMProvider)
		return primary, nil
	}

	logger.Info("insight: provider with fallback",
		"primary", cfg.LLMProvider,
		"fallback", fallbackProvider,
	)
	return insight.NewFallbackCompleter(primary, clientFor(fallbackProvider), logger), nil
}
