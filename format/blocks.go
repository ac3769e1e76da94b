package format

import (
	"regexp"
	"strings"
)

// BlockKind identifies a Block variant.
type BlockKind int

const (
	BlockParagraph BlockKind = iota
	BlockHeading
	BlockList
	BlockCode
	BlockBreak
)

// Block is one structural unit of a rendered message.
type Block interface {
	Kind() BlockKind
}

type Paragraph struct {
	Spans []Span
}

func (Paragraph) Kind() BlockKind { return BlockParagraph }

// Heading is an ATX heading; Level is 1..6.
type Heading struct {
	Level int
	Spans []Span
}

func (Heading) Kind() BlockKind { return BlockHeading }

// List is a flat run of list items. Ordered is decided by the first item.
type List struct {
	Ordered bool
	Items   [][]Span
}

func (List) Kind() BlockKind { return BlockList }

// CodeBlock holds fenced lines verbatim; Language may be empty.
type CodeBlock struct {
	Language string
	Lines    []string
}

func (CodeBlock) Kind() BlockKind { return BlockCode }

// Break marks a blank input line.
type Break struct{}

func (Break) Kind() BlockKind { return BlockBreak }

// TextCopier receives text for the clipboard.
type TextCopier interface {
	CopyText(text string) error
}

// CopyText returns the text a copy action places on the clipboard: trailing
// whitespace is trimmed from every line and blank lines at either end of the
// block are dropped.
func (c CodeBlock) CopyText() string {
	lines := make([]string, len(c.Lines))
	for i, l := range c.Lines {
		lines[i] = strings.TrimRight(l, " \t\r")
	}
	start, end := 0, len(lines)
	for start < end && lines[start] == "" {
		start++
	}
	for end > start && lines[end-1] == "" {
		end--
	}
	return strings.Join(lines[start:end], "\n")
}

// Copy hands the block's copy text to dst.
func (c CodeBlock) Copy(dst TextCopier) error {
	return dst.CopyText(c.CopyText())
}

var (
	orderedItemRe  = regexp.MustCompile(`^\d+\.\s`)
	letteredItemRe = regexp.MustCompile(`(?i)^[a-z]\)\s`)
	bulletItemRe   = regexp.MustCompile(`^[-*•]\s`)
	listMarkerRe   = regexp.MustCompile(`(?i)^\s*(?:\d+\.|[a-z]\)|[-*•])\s+`)
	headingRe      = regexp.MustCompile(`^(#{1,6})\s+(.*)$`)
)

const codeFence = "```"

var (
	_ Block = Paragraph{}
	_ Block = Heading{}
	_ Block = List{}
	_ Block = CodeBlock{}
	_ Block = Break{}
)

func isListItem(line string) bool {
	t := strings.TrimSpace(line)
	return orderedItemRe.MatchString(t) || bulletItemRe.MatchString(t) || letteredItemRe.MatchString(t)
}

func isOrderedItem(line string) bool {
	t := strings.TrimSpace(line)
	return orderedItemRe.MatchString(t) || letteredItemRe.MatchString(t)
}

type parseState int

const (
	stateNormal parseState = iota
	stateInCode
	stateInList
)

// blockParser is a line-at-a-time state machine. Only one of the code or list
// accumulators is live at a time, selected by state.
type blockParser struct {
	state    parseState
	blocks   []Block
	codeLang string
	code     []string
	items    []string
}

// ParseBlocks splits text into blocks. The result is built fresh on every call.
func ParseBlocks(text string) []Block {
	if text == "" {
		return nil
	}
	p := &blockParser{}
	for _, line := range strings.Split(text, "\n") {
		p.feed(line)
	}
	p.finish()
	return p.blocks
}

func (p *blockParser) feed(line string) {
	trimmed := strings.TrimSpace(line)

	if p.state == stateInCode {
		if strings.HasPrefix(trimmed, codeFence) {
			p.closeCode()
			return
		}
		p.code = append(p.code, line)
		return
	}

	if strings.HasPrefix(trimmed, codeFence) {
		p.flushList()
		p.state = stateInCode
		p.codeLang = strings.TrimSpace(trimmed[len(codeFence):])
		p.code = nil
		return
	}

	if isListItem(line) {
		p.state = stateInList
		p.items = append(p.items, line)
		return
	}
	p.flushList()

	switch {
	case trimmed == "":
		p.emit(Break{})
	case headingRe.MatchString(trimmed):
		m := headingRe.FindStringSubmatch(trimmed)
		p.emit(Heading{Level: len(m[1]), Spans: ParseInline(m[2])})
	default:
		p.emit(Paragraph{Spans: ParseInline(line)})
	}
}

func (p *blockParser) finish() {
	switch p.state {
	case stateInCode:
		p.closeCode()
	case stateInList:
		p.flushList()
	}
}

func (p *blockParser) emit(b Block) {
	p.blocks = append(p.blocks, b)
}

func (p *blockParser) closeCode() {
	lines := p.code
	if lines == nil {
		lines = []string{}
	}
	p.emit(CodeBlock{Language: p.codeLang, Lines: lines})
	p.code = nil
	p.codeLang = ""
	p.state = stateNormal
}

func (p *blockParser) flushList() {
	if p.state != stateInList {
		return
	}
	list := List{Ordered: isOrderedItem(p.items[0])}
	for _, item := range p.items {
		list.Items = append(list.Items, ParseInline(listMarkerRe.ReplaceAllString(item, "")))
	}
	p.emit(list)
	p.items = nil
	p.state = stateNormal
}
