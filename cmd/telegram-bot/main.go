package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"companion-bot/internal/bot"
	"companion-bot/internal/config"
	"companion-bot/internal/relayclient"
	"companion-bot/internal/session"
	"companion-bot/internal/telegram"
)

func main() {
	cfg, err := config.LoadBot()
	if err != nil {
		log.Fatalf("[telegram-bot] %v", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// The HTTP timeout must outlast the long-poll window.
	tg := telegram.NewClient(
		"https://api.telegram.org/bot"+cfg.Token,
		time.Duration(cfg.PollTimeout+10)*time.Second,
	)
	rc := relayclient.New(cfg.APIURL, 2*time.Minute)
	sessions := session.NewStore(session.DefaultLimit)

	b := bot.New(tg, rc, sessions, cfg.DefaultModel, cfg.PollTimeout)

	log.Printf("[telegram-bot] polling for updates (relay: %s, default model: %s)", cfg.APIURL, cfg.DefaultModel)
	if err := b.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatalf("[telegram-bot] %v", err)
	}
	log.Println("[telegram-bot] shutdown complete")
}
