// Command campuslinkd runs the CampusLink assistant service.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/campuslink/campuslink/internal/chat"
	"github.com/campuslink/campuslink/internal/community"
	"github.com/campuslink/campuslink/internal/config"
	"github.com/campuslink/campuslink/internal/provider/gemini"
	"github.com/campuslink/campuslink/internal/server"
	"google.golang.org/genai"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "campuslinkd: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}

	level, err := config.ParseLogLevel(cfg.LogLevel)
	if err != nil {
		return err
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		return errors.New("GEMINI_API_KEY environment variable is required")
	}
	genaiClient, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apiKey})
	if err != nil {
		return fmt.Errorf("create Gemini client: %w", err)
	}

	store, err := community.NewStore(cfg.Store.Path)
	if err != nil {
		return err
	}
	defer store.Close()

	registry, err := chat.NewRegistry(community.Tools(store)...)
	if err != nil {
		return fmt.Errorf("build tool registry: %w", err)
	}

	modelProvider := gemini.New(
		gemini.NewSDKClient(genaiClient),
		cfg.Gemini.Model,
		gemini.WithSystemPrompt(cfg.Gemini.SystemPrompt),
		gemini.WithTimeout(time.Duration(cfg.Gemini.TimeoutSeconds)*time.Second),
	)

	executor := chat.NewExecutor(registry, time.Duration(cfg.Chat.ToolTimeoutSeconds)*time.Second, logger)
	loop := chat.NewLoop(modelProvider, registry, executor, logger, cfg.Chat.MaxRounds)

	handler := server.New(loop, server.StaticTokenVerifier(cfg.Auth.Tokens), cfg.Chat.HistoryLimit, logger)

	srv := &http.Server{
		Addr:              cfg.Listen.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", cfg.Listen.Addr, "model", cfg.Gemini.Model)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
