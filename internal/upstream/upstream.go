// Package upstream talks to the OpenRouter aggregation API. Two equivalent
// calling conventions are available behind one interface; which one the relay
// uses is decided once at startup from configuration.
package upstream

import (
	"context"
	"errors"
	"fmt"
	"time"

	"companion-bot/internal/config"
	"companion-bot/internal/models"
)

// ErrMissingKey indicates no upstream API key was configured. Callers must
// surface it as a server misconfiguration, not an upstream failure.
var ErrMissingKey = errors.New("OpenRouter API key not configured")

// StatusError is a non-2xx reply from the upstream provider.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("upstream returned status %d: %s", e.StatusCode, e.Body)
}

// Request is the provider-facing chat completion request. All fields are
// already defaulted by the caller.
type Request struct {
	Messages    []models.Message
	Model       string
	MaxTokens   int
	Temperature float32
}

// Result is a provider reply reduced to what the relay returns to its caller.
type Result struct {
	Content string
	Model   string
}

// Client abstracts one calling convention against the upstream provider.
// Both implementations must yield the same Result for the same Request.
type Client interface {
	ChatCompletion(ctx context.Context, req Request) (Result, error)
	ListModels(ctx context.Context) (models.ModelCatalog, error)
}

// FromConfig selects the calling convention. "openai" is accepted as a
// legacy alias for the wrapped convention.
func FromConfig(cfg *config.RelayConfig) Client {
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	switch cfg.APIMethod {
	case "wrapped", "openai":
		return NewWrapped(cfg.APIKey, cfg.BaseURL, cfg.AppURL, cfg.AppTitle, timeout)
	default:
		return NewDirect(cfg.APIKey, cfg.BaseURL, cfg.AppURL, cfg.AppTitle, timeout)
	}
}
