// Package gemini implements provider.Provider on the Gemini API through
// google.golang.org/genai.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"whispr/core/provider"
)

// ErrNoAPIKey is returned by New when no key is supplied.
var ErrNoAPIKey = errors.New("gemini: API key is required")

// generator is the subset of genai.Models used for completions.
// Defined as an interface for testability.
type generator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// Gemini sends each request as a single user turn with the persona as the
// system instruction.
type Gemini struct {
	models generator
	log    *zap.Logger
}

// New creates a Gemini provider authenticated with apiKey.
func New(ctx context.Context, apiKey string, logger *zap.Logger) (*Gemini, error) {
	if apiKey == "" {
		return nil, ErrNoAPIKey
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("creating Gemini client: %w", err)
	}
	return newWithGenerator(client.Models, logger), nil
}

func newWithGenerator(g generator, logger *zap.Logger) *Gemini {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Gemini{models: g, log: logger.Named("gemini")}
}

// Complete sends req.Prompt to req.Model and returns the reply text.
func (g *Gemini) Complete(ctx context.Context, req provider.Request) (string, error) {
	if req.Model == "" {
		return "", errors.New("gemini: request has no model")
	}

	contents := []*genai.Content{
		genai.NewContentFromText(req.Prompt, genai.RoleUser),
	}
	var cfg *genai.GenerateContentConfig
	if req.System != "" || req.MaxTokens > 0 {
		cfg = &genai.GenerateContentConfig{}
		if req.System != "" {
			cfg.SystemInstruction = genai.NewContentFromText(req.System, genai.RoleUser)
		}
		if req.MaxTokens > 0 {
			cfg.MaxOutputTokens = int32(req.MaxTokens)
		}
	}

	resp, err := g.models.GenerateContent(ctx, req.Model, contents, cfg)
	if err != nil {
		return "", classifyErr(err)
	}

	text := resp.Text()
	if strings.TrimSpace(text) == "" {
		if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != "" {
			return "", fmt.Errorf("gemini: prompt blocked: %s", resp.PromptFeedback.BlockReason)
		}
		return "", fmt.Errorf("gemini: empty response from %s", req.Model)
	}

	if resp.UsageMetadata != nil {
		g.log.Debug("generate finished",
			zap.String("model", req.Model),
			zap.Int32("prompt_tokens", resp.UsageMetadata.PromptTokenCount),
			zap.Int32("output_tokens", resp.UsageMetadata.CandidatesTokenCount))
	}
	return text, nil
}

// classifyErr wraps Gemini API errors into provider-level sentinels.
func classifyErr(err error) error {
	if err == nil {
		return nil
	}

	apiErr, ok := asAPIError(err)
	if !ok {
		return fmt.Errorf("gemini: %w", err)
	}

	msg := apiErr.Message
	switch {
	case apiErr.Code == http.StatusServiceUnavailable || apiErr.Status == "UNAVAILABLE":
		return fmt.Errorf("%w: %s", provider.ErrOverloaded, msg)
	case apiErr.Code == http.StatusUnauthorized || apiErr.Status == "UNAUTHENTICATED",
		apiErr.Code == http.StatusBadRequest && strings.Contains(strings.ToLower(msg), "api key"):
		return fmt.Errorf("%w: %s", provider.ErrInvalidCredential, msg)
	case apiErr.Code == http.StatusTooManyRequests || apiErr.Status == "RESOURCE_EXHAUSTED":
		return fmt.Errorf("%w: %s", provider.ErrQuotaExceeded, msg)
	case apiErr.Code == http.StatusForbidden || apiErr.Status == "PERMISSION_DENIED":
		return fmt.Errorf("%w: %s", provider.ErrPermissionDenied, msg)
	}
	return fmt.Errorf("gemini %d %s: %w", apiErr.Code, apiErr.Status, err)
}

func asAPIError(err error) (genai.APIError, bool) {
	var v genai.APIError
	if errors.As(err, &v) {
		return v, true
	}
	var p *genai.APIError
	if errors.As(err, &p) && p != nil {
		return *p, true
	}
	return genai.APIError{}, false
}

// Compile-time check that Gemini implements provider.Provider
var _ provider.Provider = (*Gemini)(nil)
