package core

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"whispr/core/provider"
)

// ErrNoModels is returned when the model preference list is empty.
var ErrNoModels = errors.New("core: no models configured")

// Notifier interface for UI updates. The Send method accepts any event type;
// the adapter in app/ translates core events into framework-specific messages.
type Notifier interface {
	Send(msg any)
}

type nopNotifier struct{}

func (nopNotifier) Send(any) {}

// ClientConfig wires a Client. Provider, Window and Cursor are required.
type ClientConfig struct {
	Provider  provider.Provider
	Window    *Window
	Cursor    *ModelCursor
	Backoff   BackoffPolicy
	Persona   Persona
	MaxTokens int
	Sleep     Sleeper     // defaults to ContextSleep
	Notifier  Notifier    // optional, receives RetryEvent and FallbackEvent
	Logger    *zap.Logger // defaults to a no-op logger
}

// Completion describes a successful exchange.
type Completion struct {
	Text      string
	Model     string // model that produced Text
	Attempts  int    // provider calls made, including the successful one
	Retries   int    // backoff waits taken
	Fallbacks int    // model switches made
}

// Client sends one message at a time to the provider, recovering from
// overload by switching to a lower-preference model first and waiting with
// backoff only once no model remains. Successful turns are recorded in the
// window. Callers must serialize calls; Session does this.
type Client struct {
	provider  provider.Provider
	window    *Window
	cursor    *ModelCursor
	backoff   BackoffPolicy
	persona   Persona
	maxTokens int
	sleep     Sleeper
	notifier  Notifier
	log       *zap.Logger
}

// NewClient builds a Client from cfg, filling defaults.
func NewClient(cfg ClientConfig) *Client {
	c := &Client{
		provider:  cfg.Provider,
		window:    cfg.Window,
		cursor:    cfg.Cursor,
		backoff:   cfg.Backoff,
		persona:   cfg.Persona,
		maxTokens: cfg.MaxTokens,
		sleep:     cfg.Sleep,
		notifier:  cfg.Notifier,
		log:       cfg.Logger,
	}
	if c.window == nil {
		c.window = NewWindow(DefaultWindowSize)
	}
	if c.cursor == nil {
		c.cursor = NewModelCursor(nil)
	}
	if c.sleep == nil {
		c.sleep = ContextSleep
	}
	if c.notifier == nil {
		c.notifier = nopNotifier{}
	}
	if c.log == nil {
		c.log = zap.NewNop()
	}
	return c
}

// Window returns the conversation window the client records into.
func (c *Client) Window() *Window { return c.window }

// Model returns the model the next call will use.
func (c *Client) Model() string { return c.cursor.Current() }

// Complete sends message and returns the post-processed reply text.
func (c *Client) Complete(ctx context.Context, message string) (string, error) {
	res, err := c.Exchange(ctx, message)
	if err != nil {
		return "", err
	}
	return res.Text, nil
}

// Exchange is Complete with attempt statistics. Failures are returned as
// *CompletionError.
func (c *Client) Exchange(ctx context.Context, message string) (Completion, error) {
	var res Completion
	if c.cursor.Current() == "" {
		return res, &CompletionError{Kind: KindUnclassified, Err: ErrNoModels}
	}

	hadHistory := c.window.Len() > 0
	req := provider.Request{
		System:    c.persona.SystemPrompt(),
		Prompt:    BuildPrompt(c.window.Transcript(), message),
		MaxTokens: c.maxTokens,
	}

	for {
		model := c.cursor.Current()
		req.Model = model
		res.Attempts++

		text, err := c.provider.Complete(ctx, req)
		if err == nil {
			if hadHistory {
				text = StripBoilerplate(text, c.persona.name())
			}
			c.window.Append(Turn{User: message, Assistant: text})
			res.Text = text
			res.Model = model
			c.log.Debug("completion succeeded",
				zap.String("model", model),
				zap.Int("attempts", res.Attempts),
				zap.Int("retries", res.Retries),
				zap.Int("fallbacks", res.Fallbacks))
			return res, nil
		}

		kind := Classify(err)
		if !kind.Transient() {
			c.log.Warn("completion failed", zap.String("model", model), zap.Stringer("kind", kind), zap.Error(err))
			return res, &CompletionError{Kind: kind, Err: err}
		}

		// Fallback is preferred over waiting and does not spend retry budget.
		if c.cursor.Advance() {
			next := c.cursor.Current()
			res.Fallbacks++
			c.log.Info("model overloaded, falling back",
				zap.String("from", model), zap.String("to", next), zap.Error(err))
			c.notifier.Send(FallbackEvent{From: model, To: next})
			continue
		}

		if !c.backoff.Allows(res.Retries) {
			c.log.Warn("completion retries exhausted",
				zap.String("model", model), zap.Int("attempts", res.Attempts), zap.Error(err))
			return res, &CompletionError{Kind: KindTransientOverload, Err: err}
		}

		delay := c.backoff.Delay(res.Retries)
		res.Retries++
		c.log.Info("model overloaded, retrying",
			zap.String("model", model), zap.Int("retry", res.Retries), zap.Duration("delay", delay))
		c.notifier.Send(RetryEvent{Attempt: res.Retries, Delay: delay, Model: model})

		if serr := c.sleep(ctx, delay); serr != nil {
			return res, &CompletionError{Kind: KindUnclassified, Err: fmt.Errorf("waiting to retry: %w", serr)}
		}
	}
}
