package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/coco-labs/coco/internal/config"
	"github.com/coco-labs/coco/internal/gateway"
	"github.com/coco-labs/coco/internal/llm"
	"github.com/coco-labs/coco/internal/observability"
	"github.com/coco-labs/coco/internal/server"
	"github.com/coco-labs/coco/internal/session"
)

func main() {
	log.Println("coco: starting")

	configPath := os.Getenv(config.EnvPrefix + "CONFIG")
	if configPath == "" {
		configPath = "coco.yaml"
	}

	cfg, warnings, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}
	for _, warning := range warnings {
		log.Printf("warning: %s", warning)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	slog.SetDefault(logger)

	gw, err := buildGateway(cfg)
	if err != nil {
		log.Fatalf("gateway init failed: %v", err)
	}

	metrics := observability.New()
	registry := session.NewRegistry()

	handler := server.Handler(server.Deps{
		Registry:       registry,
		Gateway:        gw,
		Policy:         cfg.Policy(),
		Observer:       metrics,
		MetricsHandler: metrics.Handler(),
		Logger:         logger,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	httpServer := &http.Server{Addr: cfg.Addr, Handler: handler}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Printf("coco: listening on %s", cfg.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		log.Println("coco: shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Fatalf("coco: %v", err)
	}
	log.Println("coco: stopped")
}

func buildGateway(cfg config.Config) (session.Gateway, error) {
	var transcriber gateway.Transcriber
	switch cfg.TranscriptionProvider {
	case "deepgram":
		transcriber = gateway.NewDeepgramTranscriber(cfg.DeepgramAPIKey, cfg.TranscriptionModel)
	default:
		transcriber = gateway.NewOpenAITranscriber(cfg.OpenAIAPIKey, cfg.TranscriptionModel)
	}

	suggester, err := chatClient(cfg, cfg.SuggestionModel)
	if err != nil {
		return nil, fmt.Errorf("suggestion model: %w", err)
	}
	analyzer, err := chatClient(cfg, cfg.AnalysisModel)
	if err != nil {
		return nil, fmt.Errorf("analysis model: %w", err)
	}

	synthesizer := gateway.NewOpenAISynthesizer(cfg.OpenAIAPIKey, cfg.SpeechModel, cfg.SpeechVoice)

	return gateway.NewService(transcriber, suggester, analyzer, synthesizer, cfg.SampleRate), nil
}

func chatClient(cfg config.Config, modelStr string) (llm.Client, error) {
	provider, model, err := llm.ParseModel(modelStr)
	if err != nil {
		return nil, err
	}

	var key string
	switch provider {
	case "openai":
		key = cfg.OpenAIAPIKey
	case "anthropic":
		key = cfg.AnthropicAPIKey
	case "gemini":
		key = cfg.GeminiAPIKey
	}

	return llm.NewClient(provider, key, model)
}
