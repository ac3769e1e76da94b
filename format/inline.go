// Package format turns markdown-flavored model replies into renderable blocks.
// It understands a deliberately small subset: fenced code, ATX headings,
// flat lists and single-line inline emphasis. Nothing here returns an error;
// input it does not recognize becomes plain paragraph text.
package format

import "regexp"

// SpanKind identifies the inline style of a Span.
type SpanKind int

const (
	SpanPlain SpanKind = iota
	SpanBold
	SpanItalic
	SpanStrike
	SpanCode
)

func (k SpanKind) String() string {
	switch k {
	case SpanBold:
		return "bold"
	case SpanItalic:
		return "italic"
	case SpanStrike:
		return "strike"
	case SpanCode:
		return "code"
	default:
		return "plain"
	}
}

// Span is one inline fragment. Text never includes the marker characters.
type Span struct {
	Kind SpanKind
	Text string
}

// inlineRe lists the markers in priority order. Bold must precede italic so
// that "**x**" is not consumed as "*" + "*x*" + "*".
var inlineRe = regexp.MustCompile("\\*\\*[^*]+\\*\\*|\\*[^*]+\\*|`[^`]+`|~~[^~]+~~|__[^_]+__|_[^_]+_")

// ParseInline splits a single line into spans. Markers must open and close on
// the same line; an unpaired marker stays in the surrounding plain text.
// Spans are never nested: the inside of a bold span is not rescanned.
func ParseInline(line string) []Span {
	if line == "" {
		return nil
	}

	var spans []Span
	last := 0
	for _, loc := range inlineRe.FindAllStringIndex(line, -1) {
		if loc[0] > last {
			spans = append(spans, Span{Kind: SpanPlain, Text: line[last:loc[0]]})
		}
		spans = append(spans, classifyToken(line[loc[0]:loc[1]]))
		last = loc[1]
	}
	if last < len(line) {
		spans = append(spans, Span{Kind: SpanPlain, Text: line[last:]})
	}
	return spans
}

func classifyToken(tok string) Span {
	switch {
	case len(tok) >= 4 && tok[:2] == "**":
		return Span{Kind: SpanBold, Text: tok[2 : len(tok)-2]}
	case len(tok) >= 4 && tok[:2] == "__":
		return Span{Kind: SpanBold, Text: tok[2 : len(tok)-2]}
	case len(tok) >= 4 && tok[:2] == "~~":
		return Span{Kind: SpanStrike, Text: tok[2 : len(tok)-2]}
	case tok[0] == '`':
		return Span{Kind: SpanCode, Text: tok[1 : len(tok)-1]}
	default:
		// "*x*" or "_x_"
		return Span{Kind: SpanItalic, Text: tok[1 : len(tok)-1]}
	}
}

// SpanText concatenates the text of spans, dropping all markers.
func SpanText(spans []Span) string {
	n := 0
	for _, s := range spans {
		n += len(s.Text)
	}
	b := make([]byte, 0, n)
	for _, s := range spans {
		b = append(b, s.Text...)
	}
	return string(b)
}
