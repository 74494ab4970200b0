// Package audit persists the chat audit trail: every incoming message,
// outgoing reply and handling error, as a single JSON array capped at the
// newest entries.
package audit

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Entry kinds.
const (
	KindIncoming = "incoming"
	KindOutgoing = "outgoing"
	KindError    = "error"
)

// DefaultMax is how many entries the persisted log keeps.
const DefaultMax = 1000

// Entry is one audit record. Sender and MessageID are empty when unknown
// (outgoing confirmations and errors without an attributable sender).
type Entry struct {
	Timestamp int64  `json:"timestamp"` // unix milliseconds
	Date      string `json:"date"`      // ISO 8601, derived from Timestamp
	Kind      string `json:"type"`
	Sender    string `json:"sender,omitempty"`
	Message   string `json:"message"`
	MessageID string `json:"messageId,omitempty"`
}

// Stats summarizes the persisted log.
type Stats struct {
	Total         int `json:"totalMessages"`
	Incoming      int `json:"incomingMessages"`
	Outgoing      int `json:"outgoingMessages"`
	Errors        int `json:"errors"`
	UniqueSenders int `json:"uniqueSenders"`
}

// Log is an append-only JSON array file. Writes trim the oldest entries
// beyond Max; the whole array is loaded and rewritten per append.
type Log struct {
	Path string
	Max  int

	mu sync.Mutex
}

// NewLog creates a Log at path with the default cap.
func NewLog(path string) *Log {
	return &Log{Path: path, Max: DefaultMax}
}

// Append writes an entry with the given timestamp (unix ms; 0 means now)
// and echoes a one-line summary to the process log.
func (l *Log) Append(kind, sender, message, messageID string, timestampMs int64) error {
	if timestampMs == 0 {
		timestampMs = time.Now().UnixMilli()
	}

	entry := Entry{
		Timestamp: timestampMs,
		Date:      time.UnixMilli(timestampMs).UTC().Format(time.RFC3339),
		Kind:      kind,
		Sender:    sender,
		Message:   message,
		MessageID: messageID,
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	entries, err := l.load()
	if err != nil {
		return err
	}

	entries = append(entries, entry)
	if max := l.cap(); len(entries) > max {
		entries = entries[len(entries)-max:]
	}

	if err := l.save(entries); err != nil {
		return err
	}

	log.Printf("audit %s%s: %s", kind, senderSuffix(sender), truncate(message, 100))
	return nil
}

// Recent returns the newest n entries in arrival order.
func (l *Log) Recent(n int) ([]Entry, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	entries, err := l.load()
	if err != nil {
		return nil, err
	}
	if n > 0 && len(entries) > n {
		entries = entries[len(entries)-n:]
	}
	return entries, nil
}

// GetStats computes counters over the persisted log.
func (l *Log) GetStats() (Stats, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	entries, err := l.load()
	if err != nil {
		return Stats{}, err
	}

	stats := Stats{Total: len(entries)}
	senders := make(map[string]struct{})
	for _, e := range entries {
		switch e.Kind {
		case KindIncoming:
			stats.Incoming++
			if e.Sender != "" {
				senders[e.Sender] = struct{}{}
			}
		case KindOutgoing:
			stats.Outgoing++
		case KindError:
			stats.Errors++
		}
	}
	stats.UniqueSenders = len(senders)
	return stats, nil
}

// Clear empties the persisted log.
func (l *Log) Clear() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.save([]Entry{})
}

func (l *Log) cap() int {
	if l.Max > 0 {
		return l.Max
	}
	return DefaultMax
}

func (l *Log) load() ([]Entry, error) {
	data, err := os.ReadFile(l.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read audit log: %w", err)
	}

	var entries []Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parse audit log: %w", err)
	}
	return entries, nil
}

func (l *Log) save(entries []Entry) error {
	if dir := filepath.Dir(l.Path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create audit log dir: %w", err)
		}
	}

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal audit log: %w", err)
	}

	if err := os.WriteFile(l.Path, data, 0644); err != nil {
		return fmt.Errorf("save audit log: %w", err)
	}
	return nil
}

func senderSuffix(sender string) string {
	if sender == "" {
		return ""
	}
	return " from " + sender
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "..."
}
