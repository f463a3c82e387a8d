// File path: internal/backend/openai.go
package backend

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/shared"

	"github.com/commsforge/commsforge/internal/common"
)

// OpenAI generates text through the hosted chat completions API.
type OpenAI struct {
	client openai.Client
	model  string
}

func (o *OpenAI) Name() string { return "openai" }

func (o *OpenAI) Generate(ctx context.Context, req Request) (string, error) {
	if strings.TrimSpace(req.Prompt) == "" {
		return "", fmt.Errorf("openai: empty prompt")
	}
	messages := make([]openai.ChatCompletionMessageParamUnion, 0, 2)
	if strings.TrimSpace(req.System) != "" {
		messages = append(messages, openai.SystemMessage(req.System))
	}
	messages = append(messages, openai.UserMessage(req.Prompt))
	params := openai.ChatCompletionNewParams{
		Model:    shared.ChatModel(o.model),
		Messages: messages,
	}
	if req.MaxTokens > 0 {
		params.MaxTokens = openai.Int(int64(req.MaxTokens))
	}
	if req.Temperature > 0 {
		params.Temperature = openai.Float(req.Temperature)
	}
	resp, err := o.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", o.mapError(err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("openai: response contained no choices")
	}
	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	if content == "" {
		return "", fmt.Errorf("openai: response contained empty content")
	}
	return content, nil
}

// mapError folds transport failures into the sentinel errors the pipeline
// keys its degradation decisions on.
func (o *OpenAI) mapError(err error) error {
	logger := common.Logger()
	if errors.Is(err, context.DeadlineExceeded) {
		logger.Warn("backend: openai call timed out")
		return fmt.Errorf("openai: %w", ErrTimeout)
	}
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		switch apiErr.StatusCode {
		case http.StatusTooManyRequests:
			logger.Warn("backend: openai rate limited")
			return fmt.Errorf("openai: %w", ErrRateLimited)
		case http.StatusUnauthorized, http.StatusForbidden,
			http.StatusInternalServerError, http.StatusBadGateway, http.StatusServiceUnavailable:
			logger.Warn(fmt.Sprintf("backend: openai unavailable status=%d", apiErr.StatusCode))
			return fmt.Errorf("openai: %w", ErrUnavailable)
		}
		return fmt.Errorf("openai: status %d: %w", apiErr.StatusCode, err)
	}
	logger.Warn("backend: openai transport failure: " + err.Error())
	return fmt.Errorf("openai: %w", ErrUnavailable)
}
