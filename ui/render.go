package ui

import (
	"fmt"
	"strings"

	"github.com/alecthomas/chroma/v2/quick"
	"github.com/charmbracelet/lipgloss"

	"whispr/format"
)

var (
	boldStyle    = lipgloss.NewStyle().Bold(true)
	italicStyle  = lipgloss.NewStyle().Italic(true)
	strikeStyle  = lipgloss.NewStyle().Strikethrough(true)
	inlineCode   = lipgloss.NewStyle().Foreground(lipgloss.Color("203")).Background(lipgloss.Color("236"))
	headingStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("208"))
	codeLabel    = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Italic(true)
	codeGutter   = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	moreHint     = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Italic(true)
)

// BlockRenderer turns parsed blocks into terminal text.
type BlockRenderer struct {
	Width int
	// Highlight enables chroma syntax highlighting inside code blocks.
	Highlight bool
	// CodeStyle names a chroma style; empty means "monokai".
	CodeStyle string
}

// NewBlockRenderer returns a renderer with highlighting on.
func NewBlockRenderer(width int) *BlockRenderer {
	return &BlockRenderer{Width: width, Highlight: true, CodeStyle: "monokai"}
}

// RenderText parses and renders text.
func (r *BlockRenderer) RenderText(text string) string {
	return r.Render(format.ParseBlocks(text))
}

// Render renders blocks one per line group. Consecutive breaks collapse to
// a single blank line.
func (r *BlockRenderer) Render(blocks []format.Block) string {
	var out []string
	lastBreak := false
	for _, b := range blocks {
		if _, ok := b.(format.Break); ok {
			if !lastBreak && len(out) > 0 {
				out = append(out, "")
			}
			lastBreak = true
			continue
		}
		lastBreak = false
		out = append(out, r.renderBlock(b))
	}
	return strings.TrimRight(strings.Join(out, "\n"), "\n")
}

func (r *BlockRenderer) renderBlock(b format.Block) string {
	switch v := b.(type) {
	case format.Paragraph:
		return r.wrap(RenderSpans(v.Spans), 0)
	case format.Heading:
		text := headingStyle.Render(format.SpanText(v.Spans))
		if v.Level == 1 {
			text = headingStyle.Underline(true).Render(format.SpanText(v.Spans))
		}
		return r.wrap(text, 0)
	case format.List:
		lines := make([]string, 0, len(v.Items))
		for i, item := range v.Items {
			marker := "• "
			if v.Ordered {
				marker = fmt.Sprintf("%d. ", i+1)
			}
			body := r.wrap(RenderSpans(item), lipgloss.Width(marker))
			lines = append(lines, marker+indentTail(body, lipgloss.Width(marker)))
		}
		return strings.Join(lines, "\n")
	case format.CodeBlock:
		return r.renderCode(v)
	}
	return ""
}

func (r *BlockRenderer) renderCode(c format.CodeBlock) string {
	label := c.Language
	if label == "" {
		label = "code"
	}
	body := strings.Join(c.Lines, "\n")
	if r.Highlight && body != "" {
		var sb strings.Builder
		style := r.CodeStyle
		if style == "" {
			style = "monokai"
		}
		if err := quick.Highlight(&sb, body, c.Language, "terminal256", style); err == nil {
			body = strings.TrimRight(sb.String(), "\n")
		}
	}

	gutter := codeGutter.Render("│ ")
	var b strings.Builder
	b.WriteString(codeGutter.Render("╭ ") + codeLabel.Render(label))
	for _, line := range strings.Split(body, "\n") {
		b.WriteString("\n" + gutter + line)
	}
	b.WriteString("\n" + codeGutter.Render("╰"))
	return b.String()
}

func (r *BlockRenderer) wrap(text string, indent int) string {
	if r.Width <= indent {
		return text
	}
	return lipgloss.NewStyle().Width(r.Width - indent).Render(text)
}

// indentTail pads every line after the first by n spaces.
func indentTail(s string, n int) string {
	pad := strings.Repeat(" ", n)
	return strings.ReplaceAll(s, "\n", "\n"+pad)
}

// RenderSpans styles inline spans.
func RenderSpans(spans []format.Span) string {
	var b strings.Builder
	for _, s := range spans {
		switch s.Kind {
		case format.SpanBold:
			b.WriteString(boldStyle.Render(s.Text))
		case format.SpanItalic:
			b.WriteString(italicStyle.Render(s.Text))
		case format.SpanStrike:
			b.WriteString(strikeStyle.Render(s.Text))
		case format.SpanCode:
			b.WriteString(inlineCode.Render(s.Text))
		default:
			b.WriteString(s.Text)
		}
	}
	return b.String()
}

// LastCodeBlock returns the last fenced block in text.
func LastCodeBlock(text string) (format.CodeBlock, bool) {
	blocks := format.ParseBlocks(text)
	for i := len(blocks) - 1; i >= 0; i-- {
		if c, ok := blocks[i].(format.CodeBlock); ok {
			return c, true
		}
	}
	return format.CodeBlock{}, false
}
