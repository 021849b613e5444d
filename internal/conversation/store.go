package conversation

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"edu-chatbot/internal/llm"
)

// Store owns every conversation. The in-memory index and the per-session
// JSON files stay consistent because every mutation persists to disk before
// the call returns. A single coarse lock serializes mutations, so concurrent
// appends against the same session cannot lose updates.
type Store struct {
	dir   string
	mu    sync.RWMutex
	convs map[string]*Conversation
}

// NewStore creates the storage directory if needed and loads every persisted
// conversation into the index. Files that fail to parse are skipped with a
// warning; startup never fails on a bad file.
func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("ensure storage dir: %w", err)
	}
	s := &Store{dir: dir, convs: make(map[string]*Conversation)}
	s.loadAll()
	return s, nil
}

func (s *Store) loadAll() {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		log.Printf("⚠️ failed to read storage dir %s: %v", s.dir, err)
		return
	}
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(s.dir, e.Name()))
		if err != nil {
			log.Printf("⚠️ failed to read conversation file %s: %v", e.Name(), err)
			continue
		}
		var c Conversation
		if err := json.Unmarshal(data, &c); err != nil {
			log.Printf("⚠️ skipping malformed conversation file %s: %v", e.Name(), err)
			continue
		}
		if c.SessionID == "" {
			c.SessionID = strings.TrimSuffix(e.Name(), ".json")
		}
		s.convs[c.SessionID] = &c
	}
	if len(s.convs) > 0 {
		log.Printf("💬 loaded %d stored conversation(s) from %s", len(s.convs), s.dir)
	}
}

// Create allocates a new conversation for the given domain and persists it.
// Domain validity is the caller's concern; the store accepts any tag.
func (s *Store) Create(domain string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	c := &Conversation{
		SessionID: uuid.NewString(),
		Domain:    domain,
		Messages:  []Message{},
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.saveUnlocked(c); err != nil {
		return "", err
	}
	s.convs[c.SessionID] = c
	return c.SessionID, nil
}

// AddMessage appends one turn and refreshes UpdatedAt. The role string is
// stored as given; values other than "user" and "assistant" are kept on disk
// but never exported for generation. Returns false with no side effect when
// the session is unknown. A persistence error propagates to the caller.
func (s *Store) AddMessage(sessionID, role, content string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.convs[sessionID]
	if !ok {
		return false, nil
	}
	now := time.Now()
	c.Messages = append(c.Messages, Message{Role: role, Content: content, Timestamp: now})
	c.UpdatedAt = now
	if err := s.saveUnlocked(c); err != nil {
		return true, err
	}
	return true, nil
}

// Get returns a copy of the conversation, so callers cannot mutate the
// store's state through the result.
func (s *Store) Get(sessionID string) (Conversation, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.convs[sessionID]
	if !ok {
		return Conversation{}, false
	}
	out := *c
	out.Messages = append([]Message(nil), c.Messages...)
	return out, true
}

// HistoryForGeneration exports the transcript in the generation API's shape:
// "user" stays "user", "assistant" becomes "model", any other role is
// silently dropped. Order is preserved.
func (s *Store) HistoryForGeneration(sessionID string) []llm.Message {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.convs[sessionID]
	if !ok {
		return nil
	}
	var out []llm.Message
	for _, m := range c.Messages {
		switch m.Role {
		case RoleUser:
			out = append(out, llm.Message{Role: "user", Content: m.Content})
		case RoleAssistant:
			out = append(out, llm.Message{Role: "model", Content: m.Content})
		}
	}
	return out
}

// Remove deletes the conversation from the index and its file from disk.
// Removing an unknown session is a no-op.
func (s *Store) Remove(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.removeUnlocked(sessionID)
}

func (s *Store) removeUnlocked(sessionID string) {
	delete(s.convs, sessionID)
	path := s.filePath(sessionID)
	if _, err := os.Stat(path); err == nil {
		if err := os.Remove(path); err != nil {
			log.Printf("⚠️ failed to remove conversation file %s: %v", sessionID, err)
		}
	}
}

// Cleanup removes every conversation whose last activity is strictly older
// than maxAge. Candidates are collected before any removal so the sweep never
// mutates the index while ranging over it. Returns the number removed.
func (s *Store) Cleanup(maxAge time.Duration) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	cutoff := time.Now().Add(-maxAge)
	var expired []string
	for id, c := range s.convs {
		if c.UpdatedAt.Before(cutoff) {
			expired = append(expired, id)
		}
	}
	for _, id := range expired {
		s.removeUnlocked(id)
	}
	return len(expired)
}

// Summary reports per-session counters; ok is false for an unknown session.
func (s *Store) Summary(sessionID string) (Summary, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.convs[sessionID]
	if !ok {
		return Summary{}, false
	}
	sum := Summary{
		SessionID:    c.SessionID,
		Domain:       c.Domain,
		MessageCount: len(c.Messages),
		CreatedAt:    c.CreatedAt,
		UpdatedAt:    c.UpdatedAt,
	}
	if n := len(c.Messages); n > 0 {
		sum.LastMessage = c.Messages[n-1].Content
	}
	return sum, true
}

func (s *Store) filePath(sessionID string) string {
	return filepath.Join(s.dir, sessionID+".json")
}

func (s *Store) saveUnlocked(c *Conversation) error {
	f, err := os.OpenFile(s.filePath(c.SessionID), os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open conversation file: %w", err)
	}
	defer func(f *os.File) {
		err := f.Close()
		if err != nil {
		}
	}(f)
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(c); err != nil {
		return fmt.Errorf("encode conversation: %w", err)
	}
	return nil
}
