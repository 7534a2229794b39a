package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"companion-bot/internal/config"
	"companion-bot/internal/handlers"
	"companion-bot/internal/router"
	"companion-bot/internal/upstream"
)

func main() {
	log.Println("🚀 Starting companion relay...")

	// ──── Step 1: Load Environment Variables ────
	cfg := config.LoadRelay()
	log.Println("✓ Environment variables loaded")
	if cfg.APIKey == "" {
		log.Println("⚠ OPENROUTER_API_KEY is not set; chat requests will fail until it is configured")
	}

	// ──── Step 2: Select Upstream Calling Convention ────
	client := upstream.FromConfig(cfg)
	log.Printf("✓ Upstream calling convention: %s", cfg.APIMethod)

	// ──── Step 3: Start HTTP Server ────
	chatHandler := handlers.NewChatHandler(client, cfg.DefaultModel)
	r := router.New(chatHandler)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: time.Duration(cfg.TimeoutSeconds+10) * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		log.Println("Shutting down...")
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		server.Shutdown(ctx)
	}()

	log.Printf("✓ Companion relay ready on http://localhost:%s", cfg.Port)
	log.Printf("  API: http://localhost:%s/api", cfg.Port)

	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		log.Fatalf("Server error: %v", err)
	}
}
