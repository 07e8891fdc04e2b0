package history

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestStore_CreateAndGet(t *testing.T) {
	s := openTestStore(t)

	id, err := s.CreateConversation("codellama", "demo", "/tmp/t.md")
	if err != nil {
		t.Fatalf("CreateConversation failed: %v", err)
	}
	if id == "" {
		t.Fatal("empty conversation id")
	}

	c, err := s.GetConversation(id)
	if err != nil {
		t.Fatalf("GetConversation failed: %v", err)
	}
	if c.Model != "codellama" || c.Project != "demo" || c.TranscriptPath != "/tmp/t.md" {
		t.Errorf("conversation = %+v", c)
	}

	if _, err := s.GetConversation("nope"); err == nil {
		t.Error("expected error for unknown id")
	}
}

func TestStore_TurnsIdempotent(t *testing.T) {
	s := openTestStore(t)
	id, err := s.CreateConversation("m", "p", "")
	if err != nil {
		t.Fatal(err)
	}

	if err := s.AddTurn(id, 1, "user", "hello"); err != nil {
		t.Fatal(err)
	}
	if err := s.AddTurn(id, 2, "assistant", "hi"); err != nil {
		t.Fatal(err)
	}
	// Re-syncing the same turn number is silently skipped.
	if err := s.AddTurn(id, 1, "user", "hello again"); err != nil {
		t.Fatalf("duplicate turn should be ignored, got %v", err)
	}

	turns, err := s.GetTurns(id)
	if err != nil {
		t.Fatal(err)
	}
	if len(turns) != 2 {
		t.Fatalf("turns = %d, want 2", len(turns))
	}
	if turns[0].Content != "hello" {
		t.Errorf("turn 1 content = %q, want original preserved", turns[0].Content)
	}
	if turns[1].Role != "assistant" {
		t.Errorf("turn 2 role = %q", turns[1].Role)
	}
}

func TestStore_ListNewestFirst(t *testing.T) {
	s := openTestStore(t)
	for i := 0; i < 3; i++ {
		if _, err := s.CreateConversation("m", "p", ""); err != nil {
			t.Fatal(err)
		}
	}

	convs, err := s.ListConversations(2)
	if err != nil {
		t.Fatal(err)
	}
	if len(convs) != 2 {
		t.Errorf("listed %d conversations, want limit 2", len(convs))
	}

	all, err := s.ListConversations(0)
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 3 {
		t.Errorf("listed %d conversations, want 3 with default limit", len(all))
	}
}

func TestTranscript_Save(t *testing.T) {
	dir := t.TempDir()
	tr := NewTranscript(dir, "codellama", "demo")

	turns := []Turn{
		{Number: 1, Role: "user", Content: "how do I sort a slice?"},
		{Number: 2, Role: "assistant", Content: "Use `sort.Slice`."},
	}
	if err := tr.Save(turns); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	data, err := os.ReadFile(tr.Path)
	if err != nil {
		t.Fatalf("transcript not written: %v", err)
	}
	text := string(data)

	for _, fragment := range []string{
		"# Offline Code Assistant Conversation",
		"Model: codellama",
		"Project: demo",
		"## User\n\n```\nhow do I sort a slice?\n```",
		"## Assistant\n\nUse `sort.Slice`.",
	} {
		if !strings.Contains(text, fragment) {
			t.Errorf("transcript missing %q:\n%s", fragment, text)
		}
	}

	// Saving again rewrites in place.
	turns = append(turns, Turn{Number: 3, Role: "user", Content: "thanks"})
	if err := tr.Save(turns); err != nil {
		t.Fatal(err)
	}
	data, _ = os.ReadFile(tr.Path)
	if strings.Count(string(data), "## User") != 2 {
		t.Errorf("rewritten transcript wrong:\n%s", data)
	}
}
