package gemini

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"google.golang.org/genai"

	"whispr/core/provider"
)

// stubGenerator records the last call and returns a canned response.
type stubGenerator struct {
	resp *genai.GenerateContentResponse
	err  error

	model    string
	contents []*genai.Content
	config   *genai.GenerateContentConfig
}

func (s *stubGenerator) GenerateContent(_ context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	s.model, s.contents, s.config = model, contents, config
	return s.resp, s.err
}

func textResponse(text string) *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{
			{Content: genai.NewContentFromText(text, genai.RoleModel)},
		},
	}
}

func TestCompleteSendsPromptAndSystem(t *testing.T) {
	stub := &stubGenerator{resp: textResponse("Hi **there**")}
	g := newWithGenerator(stub, nil)

	got, err := g.Complete(context.Background(), provider.Request{
		Model:     "gemini-2.5-flash",
		System:    "You are Whispr.",
		Prompt:    "User message: hello",
		MaxTokens: 256,
	})
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if got != "Hi **there**" {
		t.Errorf("got %q", got)
	}
	if stub.model != "gemini-2.5-flash" {
		t.Errorf("model = %q", stub.model)
	}
	if len(stub.contents) != 1 || stub.contents[0].Role != genai.RoleUser {
		t.Fatalf("contents = %+v", stub.contents)
	}
	if stub.contents[0].Parts[0].Text != "User message: hello" {
		t.Errorf("prompt = %q", stub.contents[0].Parts[0].Text)
	}
	if stub.config == nil || stub.config.SystemInstruction == nil {
		t.Fatal("expected system instruction")
	}
	if stub.config.SystemInstruction.Parts[0].Text != "You are Whispr." {
		t.Errorf("system = %q", stub.config.SystemInstruction.Parts[0].Text)
	}
	if stub.config.MaxOutputTokens != 256 {
		t.Errorf("MaxOutputTokens = %d", stub.config.MaxOutputTokens)
	}
}

func TestCompleteNoConfigWhenUnset(t *testing.T) {
	stub := &stubGenerator{resp: textResponse("ok")}
	if _, err := newWithGenerator(stub, nil).Complete(context.Background(), provider.Request{Model: "m", Prompt: "p"}); err != nil {
		t.Fatal(err)
	}
	if stub.config != nil {
		t.Errorf("expected nil config, got %+v", stub.config)
	}
}

func TestCompleteEmptyResponse(t *testing.T) {
	stub := &stubGenerator{resp: &genai.GenerateContentResponse{}}
	_, err := newWithGenerator(stub, nil).Complete(context.Background(), provider.Request{Model: "m", Prompt: "p"})
	if err == nil {
		t.Fatal("expected error for empty response")
	}
}

func TestCompleteRequiresModel(t *testing.T) {
	stub := &stubGenerator{resp: textResponse("x")}
	if _, err := newWithGenerator(stub, nil).Complete(context.Background(), provider.Request{Prompt: "p"}); err == nil {
		t.Fatal("expected error for missing model")
	}
}

func TestCompleteClassifiesError(t *testing.T) {
	stub := &stubGenerator{err: genai.APIError{Code: 503, Status: "UNAVAILABLE", Message: "The model is overloaded."}}
	_, err := newWithGenerator(stub, nil).Complete(context.Background(), provider.Request{Model: "m", Prompt: "p"})
	if !errors.Is(err, provider.ErrOverloaded) {
		t.Fatalf("expected ErrOverloaded, got %v", err)
	}
}

func TestClassifyErr(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantSent error
	}{
		{"nil", nil, nil},
		{"overloaded", genai.APIError{Code: 503, Status: "UNAVAILABLE", Message: "overloaded"}, provider.ErrOverloaded},
		{"pointer overloaded", &genai.APIError{Code: 503, Message: "busy"}, provider.ErrOverloaded},
		{"bad key", genai.APIError{Code: 400, Status: "INVALID_ARGUMENT", Message: "API key not valid. Please pass a valid API key."}, provider.ErrInvalidCredential},
		{"unauthenticated", genai.APIError{Code: 401, Status: "UNAUTHENTICATED"}, provider.ErrInvalidCredential},
		{"quota", genai.APIError{Code: 429, Status: "RESOURCE_EXHAUSTED", Message: "quota"}, provider.ErrQuotaExceeded},
		{"forbidden", genai.APIError{Code: 403, Status: "PERMISSION_DENIED"}, provider.ErrPermissionDenied},
		{"wrapped", fmt.Errorf("call: %w", genai.APIError{Code: 403}), provider.ErrPermissionDenied},
		{"other api error", genai.APIError{Code: 400, Status: "INVALID_ARGUMENT", Message: "bad field"}, nil},
		{"plain error", errors.New("dial tcp: no such host"), nil},
	}

	sentinels := []error{provider.ErrOverloaded, provider.ErrInvalidCredential, provider.ErrQuotaExceeded, provider.ErrPermissionDenied}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := classifyErr(tt.err)
			if tt.err == nil {
				if got != nil {
					t.Errorf("expected nil, got %v", got)
				}
				return
			}
			if got == nil {
				t.Fatal("expected non-nil error")
			}
			if tt.wantSent != nil {
				if !errors.Is(got, tt.wantSent) {
					t.Errorf("expected errors.Is(%v, %v) = true", got, tt.wantSent)
				}
				return
			}
			for _, s := range sentinels {
				if errors.Is(got, s) {
					t.Errorf("%v should not match %v", got, s)
				}
			}
		})
	}
}

func TestNewRequiresKey(t *testing.T) {
	if _, err := New(context.Background(), "", nil); !errors.Is(err, ErrNoAPIKey) {
		t.Fatalf("expected ErrNoAPIKey, got %v", err)
	}
}
