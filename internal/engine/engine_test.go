package engine

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"oca/internal/analyzer"
	"oca/internal/config"
	"oca/internal/llm"
	"oca/internal/render"
)

func TestDecode(t *testing.T) {
	tests := []struct {
		name    string
		argv    []string
		wantErr bool
	}{
		{"analyze", []string{"--project-path", "/p", "--analyze"}, false},
		{"error", []string{"--project-path", "/p", "--error", "boom"}, false},
		{"file with line", []string{"--project-path", "/p", "--file", "a.c", "--line", "3"}, false},
		{"model accepted", []string{"--project-path", "/p", "--model", "m", "--analyze"}, false},
		{"missing project path", []string{"--analyze"}, true},
		{"no action", []string{"--project-path", "/p"}, true},
		{"two actions", []string{"--project-path", "/p", "--analyze", "--error", "x"}, true},
		{"line without file", []string{"--project-path", "/p", "--analyze", "--line", "3"}, true},
		{"bad line", []string{"--project-path", "/p", "--file", "a.c", "--line", "zero"}, true},
		{"dangling value", []string{"--project-path"}, true},
		{"unknown argument", []string{"--project-path", "/p", "--analyze", "--wat"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := decode(tt.argv)
			if (err != nil) != tt.wantErr {
				t.Errorf("decode(%v) error = %v, wantErr %v", tt.argv, err, tt.wantErr)
			}
		})
	}
}

func TestDecode_ErrorTextWithSpaces(t *testing.T) {
	task, err := decode([]string{"--project-path", "/p", "--error", "segfault at 0x00 (core dumped)"})
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if task.errorText != "segfault at 0x00 (core dumped)" {
		t.Errorf("errorText = %q, whitespace must survive", task.errorText)
	}
}

// newTestEngine backs an Engine with a stub daemon; the last generate
// request lands in got.
func newTestEngine(t *testing.T, got *map[string]any, out *bytes.Buffer) *Engine {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(got)
		json.NewEncoder(w).Encode(map[string]any{"response": "model says ok", "done": true})
	}))
	t.Cleanup(srv.Close)

	cfg := config.DefaultConfig()
	cfg.Ollama.Host = srv.URL
	manager := llm.NewManager(cfg, nil)
	return New(analyzer.New(cfg, nil), manager, render.New(out), nil)
}

func TestInvoke_InvalidArgvExitsTwo(t *testing.T) {
	var got map[string]any
	var out bytes.Buffer
	e := newTestEngine(t, &got, &out)

	code, err := e.Invoke(context.Background(), []string{"--analyze"})
	if code != 2 || err == nil {
		t.Errorf("Invoke = (%d, %v), want (2, error)", code, err)
	}
	if got != nil {
		t.Error("model must not be queried for an invalid vector")
	}
}

func TestInvoke_Analyze(t *testing.T) {
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, "main.go"), []byte("package main\n\nfunc main() {}\n"), 0644); err != nil {
		t.Fatal(err)
	}

	var got map[string]any
	var out bytes.Buffer
	e := newTestEngine(t, &got, &out)

	code, err := e.Invoke(context.Background(), []string{"--project-path", root, "--analyze"})
	if err != nil || code != 0 {
		t.Fatalf("Invoke = (%d, %v)", code, err)
	}

	prompt, _ := got["prompt"].(string)
	if !strings.Contains(prompt, "Files: 1") {
		t.Errorf("prompt missing file count:\n%s", prompt)
	}
	if !strings.Contains(prompt, "main.go") {
		t.Errorf("prompt missing important file:\n%s", prompt)
	}
	if !strings.Contains(out.String(), "Project Summary") {
		t.Errorf("output missing summary panel:\n%s", out.String())
	}
	if !strings.Contains(out.String(), "model says ok") {
		t.Errorf("output missing model response:\n%s", out.String())
	}
}

func TestInvoke_Error(t *testing.T) {
	var got map[string]any
	var out bytes.Buffer
	e := newTestEngine(t, &got, &out)

	code, err := e.Invoke(context.Background(), []string{"--project-path", "/proj", "--error", "undefined reference to foo"})
	if err != nil || code != 0 {
		t.Fatalf("Invoke = (%d, %v)", code, err)
	}

	prompt, _ := got["prompt"].(string)
	for _, fragment := range []string{"undefined reference to foo", "/proj", "likely cause"} {
		if !strings.Contains(prompt, fragment) {
			t.Errorf("prompt missing %q:\n%s", fragment, prompt)
		}
	}
}

func TestInvoke_FileWithLine(t *testing.T) {
	root := t.TempDir()
	var lines []string
	for i := 1; i <= 30; i++ {
		lines = append(lines, "line")
	}
	content := strings.Join(lines, "\n")
	if err := os.WriteFile(filepath.Join(root, "main.c"), []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	var got map[string]any
	var out bytes.Buffer
	e := newTestEngine(t, &got, &out)

	code, err := e.Invoke(context.Background(), []string{"--project-path", root, "--file", "main.c", "--line", "15"})
	if err != nil || code != 0 {
		t.Fatalf("Invoke = (%d, %v)", code, err)
	}

	prompt, _ := got["prompt"].(string)
	if !strings.Contains(prompt, "line 15") {
		t.Errorf("prompt missing line note:\n%s", prompt)
	}
	// The listing shows the window around line 15.
	if !strings.Contains(out.String(), "   15 |") {
		t.Errorf("output missing numbered listing:\n%s", out.String())
	}
}

func TestInvoke_ModelOverride(t *testing.T) {
	root := t.TempDir()
	var got map[string]any
	var out bytes.Buffer
	e := newTestEngine(t, &got, &out)

	code, err := e.Invoke(context.Background(), []string{"--project-path", root, "--model", "llama3", "--analyze"})
	if err != nil || code != 0 {
		t.Fatalf("Invoke = (%d, %v)", code, err)
	}
	if got["model"] != "llama3" {
		t.Errorf("model = %v, want llama3", got["model"])
	}
}
