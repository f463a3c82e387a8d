// File path: cmd/commsforge/main.go
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/commsforge/commsforge/internal/api"
	"github.com/commsforge/commsforge/internal/backend"
	"github.com/commsforge/commsforge/internal/common"
	"github.com/commsforge/commsforge/internal/config"
	"github.com/commsforge/commsforge/internal/pipeline"
)

func main() {
	logger := common.Logger()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := godotenv.Load(); err != nil {
		logger.Warn("commsforge: .env file not loaded", "error", err)
	} else {
		logger.Info("commsforge: environment loaded from .env")
	}

	addr := flag.String("addr", ":8080", "listen address")
	configPath := flag.String("config", strings.TrimSpace(os.Getenv("COMMSFORGE_CONFIG")), "path to YAML configuration overrides")
	letterPath := flag.String("letter", "", "one-shot mode: path to a source letter file")
	customerPath := flag.String("customer", "", "one-shot mode: path to a customer record JSON file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Error("commsforge: config load failed", "error", err)
		fmt.Println("config error:", err)
		os.Exit(1)
	}

	gen := backend.NewGenerator(cfg.Backend)
	logger.Info("commsforge: backend ready", "backend", gen.Name())

	pipe, err := pipeline.New(cfg, gen)
	if err != nil {
		logger.Error("commsforge: pipeline construction failed", "error", err)
		fmt.Println("pipeline error:", err)
		os.Exit(1)
	}

	if *letterPath != "" {
		if err := runOnce(ctx, pipe, *letterPath, *customerPath); err != nil {
			logger.Error("commsforge: one-shot run failed", "error", err)
			fmt.Println("error:", err)
			os.Exit(1)
		}
		return
	}

	server, err := api.NewServer(pipe, gen.Name())
	if err != nil {
		logger.Error("commsforge: server construction failed", "error", err)
		fmt.Println("server error:", err)
		os.Exit(1)
	}

	httpServer := &http.Server{
		Addr:              *addr,
		Handler:           server,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("commsforge: listening", "addr", *addr)
		errCh <- httpServer.ListenAndServe()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logger.Info("commsforge: shutdown signal received", "signal", sig.String())
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("commsforge: server stopped", "error", err)
			fmt.Println("server error:", err)
			os.Exit(1)
		}
		return
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Warn("commsforge: graceful shutdown incomplete", "error", err)
	}
}

// runOnce personalizes a single letter from disk and prints the bundle as
// JSON, for scripted use without the HTTP surface.
func runOnce(ctx context.Context, pipe *pipeline.Pipeline, letterPath, customerPath string) error {
	letter, err := os.ReadFile(letterPath)
	if err != nil {
		return fmt.Errorf("read letter: %w", err)
	}
	record := map[string]any{}
	if customerPath != "" {
		data, err := os.ReadFile(customerPath)
		if err != nil {
			return fmt.Errorf("read customer record: %w", err)
		}
		if err := json.Unmarshal(data, &record); err != nil {
			return fmt.Errorf("parse customer record: %w", err)
		}
	}
	bundle, err := pipe.Personalize(ctx, string(letter), record)
	if err != nil {
		return err
	}
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(bundle)
}
