// Package provider defines the completion backend abstraction for Whispr.
// It contains only interfaces, data types and sentinel errors.
package provider

import (
	"context"
	"errors"
)

// Common errors returned by providers. Implementations wrap the underlying
// SDK error with one of these so the client can classify failures without
// parsing messages.
var (
	ErrOverloaded        = errors.New("provider: model overloaded")
	ErrInvalidCredential = errors.New("provider: invalid credential")
	ErrQuotaExceeded     = errors.New("provider: quota exceeded")
	ErrPermissionDenied  = errors.New("provider: permission denied")
	ErrNetwork           = errors.New("provider: network unavailable")
)

// Request bundles everything sent to the model for one completion.
type Request struct {
	Model     string
	System    string // persona and formatting instructions
	Prompt    string // conversation transcript plus the new user message
	MaxTokens int    // 0 means provider default
}

// Provider produces a single text completion. Calls are stateless; the
// conversation context travels inside Request.Prompt.
type Provider interface {
	Complete(ctx context.Context, req Request) (string, error)
}

