package conversation

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func newTestStore(t *testing.T) (*Store, string) {
	t.Helper()
	dir := t.TempDir()
	s, err := NewStore(dir)
	if err != nil {
		t.Fatalf("init store: %v", err)
	}
	return s, dir
}

func TestCreateYieldsFreshEmptySessions(t *testing.T) {
	s, dir := newTestStore(t)

	seen := map[string]bool{}
	for _, domain := range []string{"html_css_js", "python", "web_development"} {
		id, err := s.Create(domain)
		if err != nil {
			t.Fatalf("create(%s): %v", domain, err)
		}
		if id == "" || seen[id] {
			t.Fatalf("session id not fresh: %q", id)
		}
		seen[id] = true

		conv, ok := s.Get(id)
		if !ok {
			t.Fatalf("created session %s not found", id)
		}
		if conv.Domain != domain {
			t.Fatalf("domain mismatch: want %s got %s", domain, conv.Domain)
		}
		if len(conv.Messages) != 0 {
			t.Fatalf("new conversation should be empty, got %d messages", len(conv.Messages))
		}
		if _, err := os.Stat(filepath.Join(dir, id+".json")); err != nil {
			t.Fatalf("conversation file missing: %v", err)
		}
	}
}

func TestAppendUpdatesCountAndTimestamps(t *testing.T) {
	s, _ := newTestStore(t)
	id, err := s.Create("python")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	before, _ := s.Get(id)

	const n = 5
	prev := before.UpdatedAt
	for i := 0; i < n; i++ {
		ok, err := s.AddMessage(id, RoleUser, "msg")
		if err != nil || !ok {
			t.Fatalf("add message %d: ok=%v err=%v", i, ok, err)
		}
		conv, _ := s.Get(id)
		if conv.UpdatedAt.Before(prev) {
			t.Fatalf("updated_at went backwards: %v < %v", conv.UpdatedAt, prev)
		}
		prev = conv.UpdatedAt
	}

	after, _ := s.Get(id)
	if len(after.Messages) != n {
		t.Fatalf("want %d messages, got %d", n, len(after.Messages))
	}
	if !after.CreatedAt.Equal(before.CreatedAt) {
		t.Fatalf("created_at changed: %v -> %v", before.CreatedAt, after.CreatedAt)
	}
	sum, ok := s.Summary(id)
	if !ok || sum.MessageCount != n {
		t.Fatalf("summary count: want %d got %+v", n, sum)
	}
}

func TestFileRoundTrip(t *testing.T) {
	s, dir := newTestStore(t)
	id, err := s.Create("html_css_js")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := s.AddMessage(id, RoleUser, "hello"); err != nil {
		t.Fatalf("add: %v", err)
	}
	if _, err := s.AddMessage(id, RoleAssistant, "hi there"); err != nil {
		t.Fatalf("add: %v", err)
	}
	want, _ := s.Get(id)

	reloaded, err := NewStore(dir)
	if err != nil {
		t.Fatalf("reload store: %v", err)
	}
	got, ok := reloaded.Get(id)
	if !ok {
		t.Fatalf("conversation lost after reload")
	}

	if got.SessionID != want.SessionID || got.Domain != want.Domain {
		t.Fatalf("identity mismatch: %+v vs %+v", got, want)
	}
	if !got.CreatedAt.Equal(want.CreatedAt) || !got.UpdatedAt.Equal(want.UpdatedAt) {
		t.Fatalf("timestamp mismatch: %v/%v vs %v/%v", got.CreatedAt, got.UpdatedAt, want.CreatedAt, want.UpdatedAt)
	}
	if len(got.Messages) != len(want.Messages) {
		t.Fatalf("message count mismatch: %d vs %d", len(got.Messages), len(want.Messages))
	}
	for i := range want.Messages {
		if got.Messages[i].Role != want.Messages[i].Role ||
			got.Messages[i].Content != want.Messages[i].Content ||
			!got.Messages[i].Timestamp.Equal(want.Messages[i].Timestamp) {
			t.Fatalf("message %d mismatch: %+v vs %+v", i, got.Messages[i], want.Messages[i])
		}
	}
}

func TestHistoryExportMapsAndDropsRoles(t *testing.T) {
	s, _ := newTestStore(t)
	id, _ := s.Create("python")

	// Any role string is accepted and stored; only user/assistant export
	for _, m := range []struct{ role, content string }{
		{RoleUser, "first"},
		{"system", "should be dropped"},
		{RoleAssistant, "second"},
		{"tool", "also dropped"},
		{RoleUser, "third"},
	} {
		if ok, err := s.AddMessage(id, m.role, m.content); !ok || err != nil {
			t.Fatalf("add(%s): ok=%v err=%v", m.role, ok, err)
		}
	}

	history := s.HistoryForGeneration(id)
	if len(history) != 3 {
		t.Fatalf("want 3 exported messages, got %d: %+v", len(history), history)
	}
	if history[0].Role != "user" || history[0].Content != "first" {
		t.Fatalf("unexpected history[0]: %+v", history[0])
	}
	if history[1].Role != "model" || history[1].Content != "second" {
		t.Fatalf("unexpected history[1]: %+v", history[1])
	}
	if history[2].Role != "user" || history[2].Content != "third" {
		t.Fatalf("unexpected history[2]: %+v", history[2])
	}

	// The dropped messages remain persisted unchanged
	conv, _ := s.Get(id)
	if len(conv.Messages) != 5 {
		t.Fatalf("stored transcript should keep all roles, got %d", len(conv.Messages))
	}
}

func TestAddMessageUnknownSession(t *testing.T) {
	s, dir := newTestStore(t)

	ok, err := s.AddMessage("no-such-session", RoleUser, "hello")
	if ok || err != nil {
		t.Fatalf("want ok=false err=nil, got ok=%v err=%v", ok, err)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("no file should be created, found %d entries", len(entries))
	}
	if h := s.HistoryForGeneration("no-such-session"); len(h) != 0 {
		t.Fatalf("unexpected history for unknown session: %+v", h)
	}
}

func TestCleanupRemovesOnlyExpired(t *testing.T) {
	s, dir := newTestStore(t)

	day := 24 * time.Hour
	ages := map[string]time.Duration{}
	for _, age := range []time.Duration{1 * day, 29 * day, 31 * day, 40 * day} {
		id, err := s.Create("python")
		if err != nil {
			t.Fatalf("create: %v", err)
		}
		s.convs[id].UpdatedAt = time.Now().Add(-age)
		ages[id] = age
	}

	removed := s.Cleanup(30 * day)
	if removed != 2 {
		t.Fatalf("want 2 removed, got %d", removed)
	}

	for id, age := range ages {
		_, inIndex := s.Get(id)
		_, fileErr := os.Stat(filepath.Join(dir, id+".json"))
		expired := age > 30*day
		if expired && (inIndex || fileErr == nil) {
			t.Fatalf("session aged %v should be gone (index=%v fileErr=%v)", age, inIndex, fileErr)
		}
		if !expired && (!inIndex || fileErr != nil) {
			t.Fatalf("session aged %v should remain (index=%v fileErr=%v)", age, inIndex, fileErr)
		}
	}
}

func TestRemoveIsIdempotent(t *testing.T) {
	s, dir := newTestStore(t)
	id, _ := s.Create("python")
	other, _ := s.Create("html_css_js")

	s.Remove(id)
	// Second removal and removing an unknown id are both no-ops
	s.Remove(id)
	s.Remove("never-existed")

	if _, ok := s.Get(id); ok {
		t.Fatalf("removed session still present")
	}
	if _, err := os.Stat(filepath.Join(dir, id+".json")); !os.IsNotExist(err) {
		t.Fatalf("removed session file still present: %v", err)
	}
	if _, ok := s.Get(other); !ok {
		t.Fatalf("unrelated session disturbed by removal")
	}
}

func TestSummaryUnknownSession(t *testing.T) {
	s, _ := newTestStore(t)
	if sum, ok := s.Summary("missing"); ok || sum.SessionID != "" {
		t.Fatalf("want absent summary, got ok=%v %+v", ok, sum)
	}
}

func TestSummaryLastMessage(t *testing.T) {
	s, _ := newTestStore(t)
	id, _ := s.Create("python")

	sum, _ := s.Summary(id)
	if sum.LastMessage != "" {
		t.Fatalf("empty conversation should have no last message: %+v", sum)
	}

	_, _ = s.AddMessage(id, RoleUser, "what is a list?")
	_, _ = s.AddMessage(id, RoleAssistant, "A list is an ordered collection.")

	sum, _ = s.Summary(id)
	if sum.MessageCount != 2 || sum.LastMessage != "A list is an ordered collection." {
		t.Fatalf("unexpected summary: %+v", sum)
	}
}

func TestLoadSkipsMalformedFiles(t *testing.T) {
	s, dir := newTestStore(t)
	id, _ := s.Create("python")
	_, _ = s.AddMessage(id, RoleUser, "hello")

	if err := os.WriteFile(filepath.Join(dir, "broken.json"), []byte("{not json"), 0o644); err != nil {
		t.Fatalf("write broken file: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "badtime.json"), []byte(`{"session_id":"badtime","domain":"python","messages":[],"created_at":"not-a-time","updated_at":"not-a-time"}`), 0o644); err != nil {
		t.Fatalf("write badtime file: %v", err)
	}

	reloaded, err := NewStore(dir)
	if err != nil {
		t.Fatalf("startup must survive malformed files: %v", err)
	}
	if _, ok := reloaded.Get(id); !ok {
		t.Fatalf("valid conversation lost")
	}
	if _, ok := reloaded.Get("broken"); ok {
		t.Fatalf("malformed file should not load")
	}
	if _, ok := reloaded.Get("badtime"); ok {
		t.Fatalf("file with corrupt timestamps should not load")
	}
}
