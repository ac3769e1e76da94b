package core

import (
	"strings"
	"testing"
)

func TestStripBoilerplate(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "leading intro removed",
			in:   "Hello! I'm **Whispr**, your personal AI chatbot.\nHere is the answer.",
			want: "Here is the answer.",
		},
		{
			name: "curly apostrophe and greeting",
			in:   "Hi there, I’m Whispr.\n\nSure thing.",
			want: "Sure thing.",
		},
		{
			name: "my name is",
			in:   "My name is Whispr and I can help.\n1. Step one",
			want: "1. Step one",
		},
		{
			name: "creator line anywhere",
			in:   "The answer is 4.\nI was created by Someone.\nAnything else?",
			want: "The answer is 4.\nAnything else?",
		},
		{
			name: "intro only on first line",
			in:   "First point.\nI'm Whispr, by the way.",
			want: "First point.\nI'm Whispr, by the way.",
		},
		{
			name: "other names kept",
			in:   "I'm Claude.\nok",
			want: "I'm Claude.\nok",
		},
		{
			name: "whitespace trimmed",
			in:   "\n\n  plain reply  \n",
			want: "plain reply",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StripBoilerplate(tt.in, "Whispr"); got != tt.want {
				t.Errorf("StripBoilerplate() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestStripBoilerplateKeepsTextWhenEverythingMatches(t *testing.T) {
	in := "I'm Whispr!"
	if got := StripBoilerplate(in, ""); got != in {
		t.Errorf("got %q, want original %q", got, in)
	}
}

func TestSystemPromptMentionsPersona(t *testing.T) {
	p := Persona{Name: "Echo", Creator: "Ada"}
	sys := p.SystemPrompt()
	for _, want := range []string{"You are Echo", "created by Ada", "FORMATTING INSTRUCTIONS"} {
		if !strings.Contains(sys, want) {
			t.Errorf("system prompt missing %q:\n%s", want, sys)
		}
	}
	if strings.Contains(Persona{}.SystemPrompt(), "created by") {
		t.Error("no creator line expected when Creator is empty")
	}
}

func TestBuildPrompt(t *testing.T) {
	got := BuildPrompt(EmptyTranscript, "what is Go?")
	if !strings.Contains(got, EmptyTranscript) {
		t.Error("prompt should include the transcript")
	}
	if !strings.Contains(got, "Do not introduce yourself again") {
		t.Error("prompt should include the guidelines")
	}
	if !strings.HasSuffix(got, "User message: what is Go?") {
		t.Errorf("prompt should end with the user message, got %q", got)
	}
}
