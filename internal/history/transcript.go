package history

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Transcript renders a conversation to a markdown file. The whole file is
// rewritten on every save, header included, so a partial write never leaves
// a torn transcript behind on the next save.
type Transcript struct {
	Path      string
	Model     string
	Project   string
	StartedAt time.Time
}

// NewTranscript builds a transcript under dir with a timestamped filename.
func NewTranscript(dir, model, project string) *Transcript {
	now := time.Now()
	return &Transcript{
		Path:      filepath.Join(dir, fmt.Sprintf("conversation_%s.md", now.Format("20060102_150405"))),
		Model:     model,
		Project:   project,
		StartedAt: now,
	}
}

// Save writes the full transcript: header plus every turn. User turns are
// fenced verbatim; assistant turns are kept as markdown.
func (t *Transcript) Save(turns []Turn) error {
	if err := os.MkdirAll(filepath.Dir(t.Path), 0755); err != nil {
		return fmt.Errorf("creating transcript directory: %w", err)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# Offline Code Assistant Conversation - %s\n\n", t.StartedAt.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(&b, "Model: %s\n", t.Model)
	fmt.Fprintf(&b, "Project: %s\n\n", t.Project)
	b.WriteString("---\n\n")

	for _, turn := range turns {
		if turn.Role == "user" {
			fmt.Fprintf(&b, "## User\n\n```\n%s\n```\n\n", turn.Content)
		} else {
			fmt.Fprintf(&b, "## Assistant\n\n%s\n\n", turn.Content)
		}
	}

	if err := os.WriteFile(t.Path, []byte(b.String()), 0644); err != nil {
		return fmt.Errorf("writing transcript: %w", err)
	}
	return nil
}
