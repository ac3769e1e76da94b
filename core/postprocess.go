package core

import (
	"regexp"
	"strings"
)

var creatorLineRe = regexp.MustCompile(`(?i)\b(?:i was|i've been|i have been)\s+(?:created|made|developed|built|designed)\s+by\b`)

// introRe matches a first line in which the assistant restates its name.
func introRe(name string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)^\W*(?:(?:hello|hi|hey)(?:\s+there)?)?[\s,!.]*(?:i['’]m|i am|my name is|this is)\s+\W*` + regexp.QuoteMeta(name) + `\b`)
}

// StripBoilerplate removes a leading self-introduction naming the assistant
// and any line stating who created it, then trims the result. If nothing
// would remain the original text is returned trimmed.
func StripBoilerplate(text, assistantName string) string {
	if assistantName == "" {
		assistantName = DefaultAssistantName
	}
	lines := strings.Split(text, "\n")

	// Skip leading blank lines when locating the first line.
	first := 0
	for first < len(lines) && strings.TrimSpace(lines[first]) == "" {
		first++
	}
	if first < len(lines) && introRe(assistantName).MatchString(lines[first]) {
		lines = append(lines[:first:first], lines[first+1:]...)
	}

	kept := lines[:0]
	for _, line := range lines {
		if creatorLineRe.MatchString(line) {
			continue
		}
		kept = append(kept, line)
	}

	out := strings.TrimSpace(strings.Join(kept, "\n"))
	if out == "" {
		return strings.TrimSpace(text)
	}
	return out
}
