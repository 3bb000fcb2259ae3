// Package filestore is a reference memory.Store implementation over
// plain JSON files on disk: one append-only transcript file per
// session, plus an optional memory_snapshot.json a separate extraction
// pipeline may drop into baseDir. Lazily creates baseDir/<session>/ on
// first write, the way pkg/statelog's Sink does.
package filestore

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sync"
	"time"

	jsoniter "github.com/json-iterator/go"

	"aurelia/pkg/memory"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

var filenameSafe = regexp.MustCompile(`[^a-zA-Z0-9_\-]`)

type entry struct {
	Sender memory.Sender  `json:"sender"`
	Text   string         `json:"text"`
	Extras map[string]any `json:"extras,omitempty"`
	At     time.Time      `json:"at"`
}

// Store is a filesystem-backed memory.Store. Every method is
// best-effort: a read/write failure is returned to the caller, who
// (per the Store contract) must never let it fail the turn.
type Store struct {
	baseDir string

	mu   sync.Mutex
	open map[string]*os.File
}

// New creates a Store rooted at baseDir.
func New(baseDir string) *Store {
	return &Store{baseDir: baseDir, open: make(map[string]*os.File)}
}

func (s *Store) transcriptPath(sessionID string) string {
	return filepath.Join(s.baseDir, filenameSafe.ReplaceAllString(sessionID, "_"), "transcript.jsonl")
}

func (s *Store) snapshotPath() string {
	return filepath.Join(s.baseDir, "memory_snapshot.json")
}

// AppendConversationMessage appends one line of JSON to the session's
// transcript file, creating the session directory on first use.
func (s *Store) AppendConversationMessage(_ context.Context, sessionID string, sender memory.Sender, text string, extras map[string]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, ok := s.open[sessionID]
	if !ok {
		path := s.transcriptPath(sessionID)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return fmt.Errorf("filestore: mkdir: %w", err)
		}
		opened, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
		if err != nil {
			return fmt.Errorf("filestore: open transcript: %w", err)
		}
		f = opened
		s.open[sessionID] = f
	}

	line, err := json.Marshal(entry{Sender: sender, Text: text, Extras: extras, At: time.Now()})
	if err != nil {
		return fmt.Errorf("filestore: marshal entry: %w", err)
	}
	line = append(line, '\n')
	if _, err := f.Write(line); err != nil {
		return fmt.Errorf("filestore: write entry: %w", err)
	}
	return nil
}

// LoadLatestMemorySnapshot reads memory_snapshot.json from baseDir.
// ok=false when the file is absent — this store never writes it
// itself; an external extraction/compression pipeline owns that file.
func (s *Store) LoadLatestMemorySnapshot(_ context.Context) (string, bool) {
	data, err := os.ReadFile(s.snapshotPath())
	if err != nil {
		return "", false
	}
	return string(data), true
}

// RecentConversations always returns empty: this store only keeps a
// flat per-session transcript, not pre-summarized past conversations —
// that grouping is produced by the same out-of-scope extraction
// pipeline LoadLatestMemorySnapshot defers to.
func (s *Store) RecentConversations(_ context.Context, _ int, _ memory.Order) ([]memory.Conversation, error) {
	return nil, nil
}
