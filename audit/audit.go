// Package audit appends a JSON-lines record of every chat exchange to a
// per-session file and prunes old files. The log is write-only from the
// chat's point of view; nothing in it is fed back into a conversation.
package audit

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
	"time"
)

// Exchange outcomes.
const (
	OutcomeSuccess = "success"
	OutcomeFailed  = "failed"
)

// Entry is a single audit log record (JSON-lines format).
type Entry struct {
	Timestamp  string `json:"timestamp"` // RFC3339
	SessionID  string `json:"session_id"`
	Model      string `json:"model"`
	Outcome    string `json:"outcome"`
	User       string `json:"user"`
	Assistant  string `json:"assistant,omitempty"`
	ErrorKind  string `json:"error_kind,omitempty"`
	Error      string `json:"error,omitempty"`
	Attempts   int    `json:"attempts"`
	Retries    int    `json:"retries"`
	Fallbacks  int    `json:"fallbacks"`
	DurationMS int64  `json:"duration_ms"`
}

// Logger appends entries to a session-specific JSON-lines file.
type Logger struct {
	mu        sync.Mutex
	file      *os.File
	path      string
	sessionID string
	now       func() time.Time
}

// FileName returns the log file name for a session.
func FileName(sessionID string) string {
	return fmt.Sprintf("audit-%s.jsonl", sessionID)
}

// Open creates or appends to dir/audit-<session-id>.jsonl.
func Open(sessionID, dir string) (*Logger, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("create audit directory: %w", err)
	}

	path := filepath.Join(dir, FileName(sessionID))
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return nil, fmt.Errorf("open audit log: %w", err)
	}

	return &Logger{
		file:      file,
		path:      path,
		sessionID: sessionID,
		now:       time.Now,
	}, nil
}

// Path returns the log file path.
func (l *Logger) Path() string { return l.path }

// Log stamps, redacts and writes an entry.
func (l *Logger) Log(entry Entry) error {
	entry.SessionID = l.sessionID
	entry.Timestamp = l.now().UTC().Format(time.RFC3339)
	entry.User = Redact(entry.User)
	entry.Assistant = Redact(entry.Assistant)
	entry.Error = Redact(entry.Error)

	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshal audit entry: %w", err)
	}
	data = append(data, '\n')

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.file == nil {
		return fmt.Errorf("audit logger closed")
	}
	if _, err := l.file.Write(data); err != nil {
		return fmt.Errorf("write audit entry: %w", err)
	}
	return nil
}

// Close flushes and closes the log file. Later calls are no-ops.
func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.file == nil {
		return nil
	}
	if err := l.file.Sync(); err != nil {
		return fmt.Errorf("sync audit log: %w", err)
	}
	if err := l.file.Close(); err != nil {
		return fmt.Errorf("close audit log: %w", err)
	}
	l.file = nil
	return nil
}

const redacted = "[REDACTED]"

var (
	// Provider credentials that users sometimes paste into chat or that
	// appear in SDK error text.
	googleKeyRe = regexp.MustCompile(`AIza[0-9A-Za-z_\-]{35}`)
	awsKeyRe    = regexp.MustCompile(`\b(?:AKIA|ASIA)[0-9A-Z]{16}\b`)
	// key=value or key: value pairs whose key names a secret.
	secretPairRe = regexp.MustCompile(`(?i)\b([a-z_\-]*(?:api[_\-]?key|token|password|secret)[a-z_\-]*)(\s*[:=]\s*)("[^"]*"|\S+)`)
)

// Redact masks credential-looking substrings in free text.
func Redact(s string) string {
	if s == "" {
		return s
	}
	s = googleKeyRe.ReplaceAllString(s, redacted)
	s = awsKeyRe.ReplaceAllString(s, redacted)
	return secretPairRe.ReplaceAllString(s, "${1}${2}"+redacted)
}

// Read returns every entry in a session's log, oldest first. A missing
// file yields an empty slice.
func Read(sessionID, dir string) ([]Entry, error) {
	data, err := os.ReadFile(filepath.Join(dir, FileName(sessionID)))
	if err != nil {
		if os.IsNotExist(err) {
			return []Entry{}, nil
		}
		return nil, fmt.Errorf("read audit log: %w", err)
	}

	var entries []Entry
	for i, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		var e Entry
		if err := json.Unmarshal([]byte(line), &e); err != nil {
			return nil, fmt.Errorf("parse audit entry line %d: %w", i+1, err)
		}
		entries = append(entries, e)
	}
	return entries, nil
}
