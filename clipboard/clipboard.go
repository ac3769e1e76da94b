// Package clipboard copies text through a chain of strategies, trying each
// available one in order until a write succeeds.
package clipboard

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/atotto/clipboard"
	osc52 "github.com/aymanbagabas/go-osc52/v2"
)

// Common errors returned by Chain.Copy.
var (
	ErrEmpty       = errors.New("clipboard: nothing to copy")
	ErrUnavailable = errors.New("clipboard: no copy method succeeded")
)

// Method names a copy strategy.
type Method string

const (
	MethodNative Method = "native"
	MethodOSC52  Method = "osc52"
	MethodManual Method = "manual"
)

// Writer is one copy strategy.
type Writer interface {
	Method() Method
	// Available checks whether the strategy can be attempted at all.
	Available() bool
	Write(text string) error
	// Confirms reports whether a nil error from Write proves the text reached
	// the clipboard. Strategies that cannot observe the outcome return false.
	Confirms() bool
}

// Result describes which strategy handled a copy.
type Result struct {
	Method    Method
	Confirmed bool
}

// Chain tries writers in order.
type Chain struct {
	writers []Writer
}

// NewChain builds a chain from writers in preference order.
func NewChain(writers ...Writer) *Chain {
	return &Chain{writers: writers}
}

// Default returns the standard chain: the OS clipboard, then an OSC52
// escape written to out, then manual, which hands the text to present for
// the user to select and copy themselves. Nil out or present skip that step.
func Default(out io.Writer, present func(text string)) *Chain {
	return NewChain(
		NativeWriter{},
		&OSC52Writer{Out: out},
		ManualWriter{Present: present},
	)
}

// Copy writes text with the first available strategy that does not fail.
func (c *Chain) Copy(text string) (Result, error) {
	if strings.TrimSpace(text) == "" {
		return Result{}, ErrEmpty
	}

	var errs []error
	for _, w := range c.writers {
		if !w.Available() {
			continue
		}
		if err := w.Write(text); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", w.Method(), err))
			continue
		}
		return Result{Method: w.Method(), Confirmed: w.Confirms()}, nil
	}

	if len(errs) == 0 {
		return Result{}, ErrUnavailable
	}
	return Result{}, fmt.Errorf("%w: %w", ErrUnavailable, errors.Join(errs...))
}

// NativeWriter uses the operating system clipboard, which reports failures.
type NativeWriter struct{}

func (NativeWriter) Method() Method          { return MethodNative }
func (NativeWriter) Available() bool         { return !clipboard.Unsupported }
func (NativeWriter) Write(text string) error { return clipboard.WriteAll(text) }
func (NativeWriter) Confirms() bool          { return true }

// OSC52Writer asks the terminal to set its clipboard. Terminals never
// acknowledge the sequence, so success is assumed once it is written.
type OSC52Writer struct {
	Out io.Writer
}

func (w *OSC52Writer) Method() Method  { return MethodOSC52 }
func (w *OSC52Writer) Available() bool { return w.Out != nil }
func (w *OSC52Writer) Confirms() bool  { return false }

func (w *OSC52Writer) Write(text string) error {
	_, err := fmt.Fprint(w.Out, osc52.New(text))
	return err
}

// ManualWriter shows the text so the user can select and copy it.
type ManualWriter struct {
	Present func(text string)
}

func (ManualWriter) Method() Method    { return MethodManual }
func (w ManualWriter) Available() bool { return w.Present != nil }
func (ManualWriter) Confirms() bool    { return false }

func (w ManualWriter) Write(text string) error {
	w.Present(text)
	return nil
}
