package core

import (
	"fmt"
	"strings"
)

// DefaultAssistantName is used when Persona.Name is empty.
const DefaultAssistantName = "Whispr"

// Persona describes who the assistant claims to be.
type Persona struct {
	Name    string
	Creator string // optional
}

func (p Persona) name() string {
	if p.Name == "" {
		return DefaultAssistantName
	}
	return p.Name
}

const formattingInstructions = `FORMATTING INSTRUCTIONS:
- Use **bold text** for important words and emphasis
- Use *italic text* for subtle emphasis
- Use ` + "`inline code`" + ` for technical terms, variables, and short code
- Use numbered lists (1. 2. 3.) for step-by-step instructions
- Use bullet lists (- or *) for feature lists or options
- Use ### headings for section titles when explaining complex topics
- Use code blocks with ` + "```" + ` for multi-line code examples
- Use ~~strikethrough~~ sparingly`

const conversationGuidelines = `GUIDELINES:
- Do not introduce yourself again; the user already knows who you are
- Do not repeat earlier answers word for word
- Answer the new message directly and concisely`

// SystemPrompt builds the persona and formatting block sent as the system
// instruction.
func (p Persona) SystemPrompt() string {
	var b strings.Builder
	fmt.Fprintf(&b, "You are %s, a helpful, friendly and knowledgeable AI chat assistant", p.name())
	if p.Creator != "" {
		fmt.Fprintf(&b, " created by %s", p.Creator)
	}
	b.WriteString(".\n\n")
	if p.Creator != "" {
		fmt.Fprintf(&b, "If someone asks who made you, answer that you were created by %s.\n\n", p.Creator)
	}
	b.WriteString(formattingInstructions)
	return b.String()
}

// BuildPrompt composes the user-side prompt from the transcript, the
// conversation guidelines and the new message.
func BuildPrompt(transcript, message string) string {
	var b strings.Builder
	b.WriteString("PREVIOUS CONVERSATION:\n")
	b.WriteString(transcript)
	b.WriteString("\n\n")
	b.WriteString(conversationGuidelines)
	b.WriteString("\n\nUser message: ")
	b.WriteString(message)
	return b.String()
}
