// Package knowledge holds the hand-curated trigger→answer shortcut store
// consulted before any model call.
package knowledge

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// Entry maps a trigger substring to a canned answer.
type Entry struct {
	Trigger string `json:"trigger"`
	Answer  string `json:"answer"`
}

// document is the persisted shape. Entries are an ordered array, not a map:
// lookup is first-match-wins, so precedence follows the stored order.
type document struct {
	Version int     `json:"version"`
	Entries []Entry `json:"entries"`
}

// Store persists the knowledge base as a single JSON document, read and
// written wholesale. Single-writer by design; the owner's chat commands are
// the only intended mutation path.
type Store struct {
	Path string
	mu   sync.Mutex
}

// NewStore creates a store backed by the given path. The file is created
// lazily on first Add.
func NewStore(path string) *Store {
	return &Store{Path: path}
}

// Lookup returns the answer for the first entry whose trigger is a
// case-insensitive substring of the question. The document is loaded on
// every call so external edits are picked up; a missing or unreadable
// store simply yields no match.
func (s *Store) Lookup(question string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.load()
	if err != nil {
		return "", false
	}

	q := strings.ToLower(question)
	for _, e := range doc.Entries {
		if e.Trigger == "" {
			continue
		}
		if strings.Contains(q, strings.ToLower(e.Trigger)) {
			return e.Answer, true
		}
	}
	return "", false
}

// Add sets the answer for a trigger, replacing a matching entry in place or
// appending a new one. The whole document is read, modified and rewritten.
func (s *Store) Add(trigger, answer string) error {
	trigger = strings.TrimSpace(trigger)
	if trigger == "" {
		return fmt.Errorf("empty trigger")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.load()
	if err != nil {
		return err
	}

	replaced := false
	for i, e := range doc.Entries {
		if strings.EqualFold(e.Trigger, trigger) {
			doc.Entries[i].Answer = answer
			replaced = true
			break
		}
	}
	if !replaced {
		doc.Entries = append(doc.Entries, Entry{Trigger: trigger, Answer: answer})
	}

	return s.save(doc)
}

// Len returns the number of stored entries.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.load()
	if err != nil {
		return 0
	}
	return len(doc.Entries)
}

func (s *Store) load() (document, error) {
	doc := document{Version: 1}

	data, err := os.ReadFile(s.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return doc, nil
		}
		return doc, fmt.Errorf("read knowledge base: %w", err)
	}

	if err := json.Unmarshal(data, &doc); err != nil {
		return doc, fmt.Errorf("parse knowledge base: %w", err)
	}
	return doc, nil
}

func (s *Store) save(doc document) error {
	if dir := filepath.Dir(s.Path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create knowledge base dir: %w", err)
		}
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal knowledge base: %w", err)
	}

	if err := os.WriteFile(s.Path, data, 0644); err != nil {
		return fmt.Errorf("save knowledge base: %w", err)
	}
	return nil
}
