package provider

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

// mockProvider is a minimal Provider implementation for compile-time checks.
type mockProvider struct{}

func (m *mockProvider) Complete(_ context.Context, _ Request) (string, error) {
	return "", nil
}

// Compile-time interface satisfaction checks.
var _ Provider = (*mockProvider)(nil)
var _ Provider = Func(nil)

func TestFuncAdapter(t *testing.T) {
	var seen Request
	p := Func(func(_ context.Context, req Request) (string, error) {
		seen = req
		return "reply to " + req.Prompt, nil
	})

	got, err := p.Complete(context.Background(), Request{Model: "m1", Prompt: "hi"})
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if got != "reply to hi" {
		t.Errorf("got %q", got)
	}
	if seen.Model != "m1" {
		t.Errorf("model = %q, want m1", seen.Model)
	}
}

func TestSentinelsAreDistinct(t *testing.T) {
	sentinels := []error{ErrOverloaded, ErrInvalidCredential, ErrQuotaExceeded, ErrPermissionDenied, ErrNetwork}
	for i, a := range sentinels {
		for j, b := range sentinels {
			if i != j && errors.Is(a, b) {
				t.Errorf("%v should not match %v", a, b)
			}
		}
	}
}

func TestSentinelsSurviveWrapping(t *testing.T) {
	wrapped := fmt.Errorf("gemini: %w: 503 model is overloaded", ErrOverloaded)
	if !errors.Is(wrapped, ErrOverloaded) {
		t.Error("wrapped error should match ErrOverloaded")
	}
}
