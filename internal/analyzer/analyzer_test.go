package analyzer

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"oca/internal/config"
)

func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for rel, content := range files {
		p := filepath.Join(root, rel)
		if err := os.MkdirAll(filepath.Dir(p), 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(p, []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}
}

func newTestAnalyzer() *Analyzer {
	return New(config.DefaultConfig(), nil)
}

func TestAnalyzeProject(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"main.go":                "package main\n",
		"src/util.go":            "package src\n",
		"src/util_test.go":       "package src\n",
		"README.md":              "# readme\n",
		".git/HEAD":              "ref: refs/heads/main\n",
		"node_modules/x/x.js":    "console.log(1)\n",
		"__pycache__/a.cpython":  "x",
		"docs/guide.md":          "guide\n",
	})

	a := newTestAnalyzer()
	info, err := a.AnalyzeProject(root)
	if err != nil {
		t.Fatalf("AnalyzeProject failed: %v", err)
	}

	if info.FileCount != 5 {
		t.Errorf("FileCount = %d, want 5 (ignored dirs skipped): files=%v", info.FileCount, info.Files)
	}
	for _, f := range info.Files {
		if strings.Contains(f, "node_modules") || strings.Contains(f, ".git") || strings.Contains(f, "__pycache__") {
			t.Errorf("ignored path leaked into scan: %s", f)
		}
	}
	if info.FileTypes[".go"] != 3 {
		t.Errorf("FileTypes[.go] = %d, want 3", info.FileTypes[".go"])
	}
	if info.FileTypes[".md"] != 2 {
		t.Errorf("FileTypes[.md] = %d, want 2", info.FileTypes[".md"])
	}
}

func TestAnalyzeProject_MissingPath(t *testing.T) {
	a := newTestAnalyzer()
	if _, err := a.AnalyzeProject(filepath.Join(t.TempDir(), "ghost")); err == nil {
		t.Fatal("expected error for missing path")
	}
}

func TestSummarize_ImportantFiles(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"main.go":        "package main\n",
		"app/index.js":   "x\n",
		"config.yaml":    "x\n",
		"helper.go":      "package main\n",
	})

	a := newTestAnalyzer()
	s, err := a.Summarize(root)
	if err != nil {
		t.Fatalf("Summarize failed: %v", err)
	}

	want := map[string]bool{"main.go": true, "app/index.js": true, "config.yaml": true}
	if len(s.ImportantFiles) != len(want) {
		t.Fatalf("ImportantFiles = %v, want %v", s.ImportantFiles, want)
	}
	for _, f := range s.ImportantFiles {
		if !want[f] {
			t.Errorf("unexpected important file %s", f)
		}
	}
}

func TestFileContext(t *testing.T) {
	root := t.TempDir()
	var lines []string
	for i := 1; i <= 20; i++ {
		lines = append(lines, strings.Repeat("x", i))
	}
	p := filepath.Join(root, "f.txt")
	if err := os.WriteFile(p, []byte(strings.Join(lines, "\n")), 0644); err != nil {
		t.Fatal(err)
	}

	a := newTestAnalyzer()

	// Middle of the file: full window.
	out, err := a.FileContext(p, 10, 2)
	if err != nil {
		t.Fatalf("FileContext failed: %v", err)
	}
	got := strings.Split(out, "\n")
	if len(got) != 5 || got[0] != lines[7] || got[4] != lines[11] {
		t.Errorf("window = %v", got)
	}

	// Clamped at the start.
	out, _ = a.FileContext(p, 1, 5)
	if got := strings.Split(out, "\n"); len(got) != 6 || got[0] != lines[0] {
		t.Errorf("start-clamped window = %v", got)
	}

	// Clamped at the end.
	out, _ = a.FileContext(p, 20, 5)
	if got := strings.Split(out, "\n"); len(got) != 6 || got[len(got)-1] != lines[19] {
		t.Errorf("end-clamped window = %v", got)
	}

	// Zero line returns the whole file.
	out, _ = a.FileContext(p, 0, 5)
	if out != strings.Join(lines, "\n") {
		t.Error("line 0 should return the whole file")
	}
}

func TestReadFile_Caches(t *testing.T) {
	root := t.TempDir()
	p := filepath.Join(root, "f.txt")
	if err := os.WriteFile(p, []byte("original"), 0644); err != nil {
		t.Fatal(err)
	}

	a := newTestAnalyzer()
	if out, _ := a.ReadFile(p); out != "original" {
		t.Fatalf("ReadFile = %q", out)
	}

	// A rewrite behind the cache's back is not observed within one run.
	if err := os.WriteFile(p, []byte("changed"), 0644); err != nil {
		t.Fatal(err)
	}
	if out, _ := a.ReadFile(p); out != "original" {
		t.Errorf("ReadFile = %q, want cached original", out)
	}
}

func TestAnalyzeFiles_SkipsUnreadable(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"a.py": "def one():\n    pass\n",
		"b.py": "def two():\n    pass\n",
	})

	a := newTestAnalyzer()
	paths := []string{
		filepath.Join(root, "a.py"),
		filepath.Join(root, "b.py"),
		filepath.Join(root, "missing.py"),
	}
	got := a.AnalyzeFiles(paths)
	if len(got) != 2 {
		t.Fatalf("AnalyzeFiles returned %d results, want 2", len(got))
	}
	if got[paths[0]].Functions[0] != "one" {
		t.Errorf("a.py functions = %v", got[paths[0]].Functions)
	}
}
