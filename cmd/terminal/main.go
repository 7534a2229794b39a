package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"time"

	"github.com/joho/godotenv"
	"github.com/peterbourgon/ff/v3"
	"github.com/peterbourgon/ff/v3/ffyaml"

	"companion-bot/internal/console"
	"companion-bot/internal/relayclient"
	"companion-bot/internal/session"
)

func main() {
	godotenv.Load()

	fs := flag.NewFlagSet("companion-terminal", flag.ExitOnError)
	var (
		apiURL = fs.String("api-url", envOrDefault("API_URL", "http://localhost:8000"), "relay base URL")
		model  = fs.String("model", envOrDefault("DEFAULT_MODEL", "qwen/qwen-2.5-coder-32b-instruct:free"), "model ID to use")
		_      = fs.String("config", "", "config file (optional)")
	)
	if err := ff.Parse(fs, os.Args[1:],
		ff.WithEnvVarPrefix("COMPANION"),
		ff.WithConfigFileFlag("config"),
		ff.WithConfigFileParser(ffyaml.Parser),
	); err != nil {
		log.Fatal(err)
	}

	// Ctrl-C is a hint to use /exit, not an immediate exit.
	interrupts := make(chan os.Signal, 1)
	signal.Notify(interrupts, os.Interrupt)
	go func() {
		for range interrupts {
			fmt.Println("\nInterrupted. Type /exit to quit.")
		}
	}()

	rc := relayclient.New(*apiURL, 2*time.Minute)
	c := console.New(rc, session.NewStore(session.DefaultLimit), *model, os.Stdin, os.Stdout)
	if err := c.Run(context.Background()); err != nil {
		log.Fatal(err)
	}
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
