// File path: internal/backend/backend.go
package backend

import (
	"context"
	"errors"
	"os"
	"strings"
	"time"

	"github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"

	"github.com/commsforge/commsforge/internal/common"
	"github.com/commsforge/commsforge/internal/config"
)

// Sentinel failures a generator can return. Anything else is treated as a
// malformed-output problem by the caller, not a transport problem.
var (
	ErrUnavailable = errors.New("backend unavailable")
	ErrTimeout     = errors.New("backend timeout")
	ErrRateLimited = errors.New("backend rate limited")
)

// Request is a single text-generation call.
type Request struct {
	System      string
	Prompt      string
	MaxTokens   int
	Temperature float64
}

// Generator produces free text from a prompt. Implementations must be safe
// for concurrent use.
type Generator interface {
	Generate(ctx context.Context, req Request) (string, error)
	Name() string
}

// NewGenerator selects a backend from the environment: a configured API key
// selects the hosted model, otherwise the offline backend is returned and
// every channel degrades to its deterministic rendering.
func NewGenerator(cfg config.BackendConfig) Generator {
	logger := common.Logger()
	apiKey := strings.TrimSpace(os.Getenv("OPENAI_API_KEY"))
	if apiKey == "" {
		logger.Warn("backend: OPENAI_API_KEY not set; using offline backend")
		return Offline{}
	}
	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if endpoint := strings.TrimSpace(os.Getenv("OPENAI_ENDPOINT")); endpoint != "" {
		logger.Info("backend: using custom endpoint " + endpoint)
		opts = append(opts, option.WithBaseURL(endpoint))
	}
	if cfg.CallTimeout.Std() > 0 {
		opts = append(opts, option.WithRequestTimeout(cfg.CallTimeout.Std()))
	}
	model := strings.TrimSpace(os.Getenv("OPENAI_MODEL"))
	if model == "" {
		model = cfg.Model
	}
	logger.Info("backend: hosted model selected model=" + model)
	return &OpenAI{
		client: openai.NewClient(opts...),
		model:  model,
	}
}

// withDeadline applies the configured per-call timeout when the caller has
// not already set one.
func withDeadline(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if _, ok := ctx.Deadline(); ok || d <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, d)
}
