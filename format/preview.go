package format

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// Ellipsis is appended to truncated previews.
const Ellipsis = "..."

// minPartialLine is the smallest leftover budget worth spending on a
// character-level cut of the line that overflowed the preview.
const minPartialLine = 20

// DefaultCodeKeywords mark a message as code-like even when it is short.
var DefaultCodeKeywords = []string{"function", "class", "import", "const", "let", "var"}

var codeKeywordRe = keywordRegexp(DefaultCodeKeywords)

// Stripping order matters: inline code first so markers inside backticks are
// not treated as emphasis, bold before italic.
var plainRules = []struct {
	re   *regexp.Regexp
	repl string
}{
	{regexp.MustCompile("`([^`\n]+)`"), "$1"},
	{regexp.MustCompile(`\*\*([^*\n]+)\*\*`), "$1"},
	{regexp.MustCompile(`\*([^*\n]+)\*`), "$1"},
	{regexp.MustCompile(`__([^_\n]+)__`), "$1"},
	{regexp.MustCompile(`_([^_\n]+)_`), "$1"},
	{regexp.MustCompile(`~~([^~\n]+)~~`), "$1"},
	{regexp.MustCompile(`(?m)^([ \t]*)#{1,6}[ \t]`), "$1"},
	{regexp.MustCompile(`(?im)^[ \t]*(?:\d+\.|[a-z]\)|[-*•])[ \t]`), "• "},
}

func keywordRegexp(words []string) *regexp.Regexp {
	quoted := make([]string, len(words))
	for i, w := range words {
		quoted[i] = regexp.QuoteMeta(w)
	}
	return regexp.MustCompile(`\b(?:` + strings.Join(quoted, "|") + `)\b`)
}

// HasCodeFence reports whether text contains a fenced code marker anywhere.
func HasCodeFence(text string) bool {
	return strings.Contains(text, codeFence)
}

// PlainText strips formatting markers. Text containing a code fence is
// returned untouched so code is never altered.
func PlainText(text string) string {
	if HasCodeFence(text) {
		return text
	}
	for _, r := range plainRules {
		text = r.re.ReplaceAllString(text, r.repl)
	}
	return text
}

// PlainLength is the length of PlainText in runes.
func PlainLength(text string) int {
	return utf8.RuneCountInString(PlainText(text))
}

// IsOverLength reports whether the plain length of text exceeds threshold.
func IsOverLength(text string, threshold int) bool {
	return PlainLength(text) > threshold
}

// IsLong decides whether a message should be shown as a preview. Messages
// with a code fence are never long; otherwise a message is long when it is
// over threshold or mentions a code keyword as a whole word.
func IsLong(text string, threshold int) bool {
	if HasCodeFence(text) {
		return false
	}
	return IsOverLength(text, threshold) || codeKeywordRe.MatchString(text)
}

// Preview returns the blocks of text, truncated to roughly maxLength plain
// characters when it is longer than that. Whole lines are kept while they fit;
// the overflowing line is cut at character level only when more than
// minPartialLine characters of budget remain. A single Ellipsis ends every
// truncated preview, so its plain length is at most maxLength+len(Ellipsis).
func Preview(text string, maxLength int) []Block {
	if HasCodeFence(text) || PlainLength(text) <= maxLength {
		return ParseBlocks(text)
	}
	return ParseBlocks(truncateText(text, maxLength))
}

func truncateText(text string, maxLength int) string {
	var b strings.Builder
	used := 0
	for _, line := range strings.Split(text, "\n") {
		n := PlainLength(line)
		if used+n > maxLength {
			if remaining := maxLength - used; remaining > minPartialLine {
				b.WriteString(cutLine(line, remaining))
			}
			break
		}
		b.WriteString(line)
		b.WriteByte('\n')
		used += n
	}
	out := strings.TrimRight(b.String(), " \t\n")
	return out + Ellipsis
}

var linePrefixRe = regexp.MustCompile(`(?i)^[ \t]*(?:#{1,6}|\d+\.|[a-z]\)|[-*•])[ \t]`)

// cutLine keeps the first n plain characters of a single line. Inline spans
// are kept whole or trimmed inside their markers, so a marker pair is never
// split.
func cutLine(line string, n int) string {
	var b strings.Builder
	if p := linePrefixRe.FindString(line); p != "" {
		b.WriteString(p)
		n -= PlainLength(p)
		line = line[len(p):]
	}

	last := 0
	for _, loc := range inlineRe.FindAllStringIndex(line, -1) {
		if n <= 0 {
			return b.String()
		}
		lead := line[last:loc[0]]
		if k := utf8.RuneCountInString(lead); k >= n {
			b.WriteString(truncateRunes(lead, n))
			return b.String()
		}
		b.WriteString(lead)
		n -= utf8.RuneCountInString(lead)

		tok := line[loc[0]:loc[1]]
		m := markerLen(tok)
		inner := tok[m : len(tok)-m]
		if k := utf8.RuneCountInString(inner); k > n {
			b.WriteString(tok[:m] + truncateRunes(inner, n) + tok[len(tok)-m:])
			return b.String()
		}
		b.WriteString(tok)
		n -= utf8.RuneCountInString(inner)
		last = loc[1]
	}
	if n > 0 {
		b.WriteString(truncateRunes(line[last:], n))
	}
	return b.String()
}

// markerLen is the width of one side of an inline span's markers.
func markerLen(tok string) int {
	for _, double := range []string{"**", "__", "~~"} {
		if strings.HasPrefix(tok, double) && len(tok) >= 4 {
			return 2
		}
	}
	return 1
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}

// BlocksPlainLength sums the rune length of all visible text in blocks.
func BlocksPlainLength(blocks []Block) int {
	n := 0
	for _, b := range blocks {
		switch b := b.(type) {
		case Paragraph:
			n += utf8.RuneCountInString(SpanText(b.Spans))
		case Heading:
			n += utf8.RuneCountInString(SpanText(b.Spans))
		case List:
			for _, item := range b.Items {
				n += utf8.RuneCountInString(SpanText(item))
			}
		case CodeBlock:
			for _, l := range b.Lines {
				n += utf8.RuneCountInString(l)
			}
		}
	}
	return n
}
