// Package analyzer inspects project trees and single files to build the
// context handed to the model: file counts and types, important files, and
// lightweight structural extraction per language.
package analyzer

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"oca/internal/config"
)

// analyzeConcurrency bounds the worker pool in AnalyzeFiles.
const analyzeConcurrency = 8

// Analyzer scans projects and files.
type Analyzer struct {
	ignoredDirs []string
	mu          sync.Mutex
	cache       map[string]string
	log         *zap.Logger
}

// New builds an Analyzer from the project configuration.
func New(cfg *config.Config, log *zap.Logger) *Analyzer {
	if log == nil {
		log = zap.NewNop()
	}
	return &Analyzer{
		ignoredDirs: cfg.Project.IgnoredDirectories,
		cache:       make(map[string]string),
		log:         log,
	}
}

// ProjectInfo describes a scanned project tree.
type ProjectInfo struct {
	Path           string
	Files          []string
	FileCount      int
	Directories    []string
	DirectoryCount int
	FileTypes      map[string]int
}

// AnalyzeProject walks the project tree, skipping ignored directories, and
// collects file and directory statistics. Paths in the result are relative
// to root.
func (a *Analyzer) AnalyzeProject(root string) (*ProjectInfo, error) {
	if _, err := os.Stat(root); err != nil {
		return nil, fmt.Errorf("project path does not exist: %s", root)
	}

	info := &ProjectInfo{
		Path:      root,
		FileTypes: make(map[string]int),
	}

	err := filepath.Walk(root, func(p string, fi os.FileInfo, err error) error {
		if err != nil {
			return nil // unreadable entries are skipped, not fatal
		}
		rel, relErr := filepath.Rel(root, p)
		if relErr != nil || rel == "." {
			return nil
		}

		if fi.IsDir() {
			if a.isIgnoredDir(fi.Name()) {
				return filepath.SkipDir
			}
			info.Directories = append(info.Directories, rel)
			info.DirectoryCount++
			return nil
		}

		info.Files = append(info.Files, rel)
		info.FileCount++
		if ext := strings.ToLower(filepath.Ext(fi.Name())); ext != "" {
			info.FileTypes[ext]++
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking %s: %w", root, err)
	}

	a.log.Debug("project scanned",
		zap.String("path", root),
		zap.Int("files", info.FileCount),
		zap.Int("dirs", info.DirectoryCount))
	return info, nil
}

// Summary condenses a project scan for display and prompting.
type Summary struct {
	Path           string
	FileCount      int
	DirectoryCount int
	FileTypes      map[string]int
	ImportantFiles []string
}

// importantNamePatterns marks files worth surfacing in a project summary.
var importantNamePatterns = []string{"main", "index", "app", "config"}

// Summarize scans the project and picks out the files most likely to matter
// for a high-level overview.
func (a *Analyzer) Summarize(root string) (*Summary, error) {
	info, err := a.AnalyzeProject(root)
	if err != nil {
		return nil, err
	}

	s := &Summary{
		Path:           info.Path,
		FileCount:      info.FileCount,
		DirectoryCount: info.DirectoryCount,
		FileTypes:      info.FileTypes,
	}
	for _, f := range info.Files {
		lower := strings.ToLower(f)
		for _, pat := range importantNamePatterns {
			if strings.Contains(lower, pat) {
				s.ImportantFiles = append(s.ImportantFiles, f)
				break
			}
		}
	}
	sort.Strings(s.ImportantFiles)
	return s, nil
}

// ReadFile reads a file through the in-memory cache. Contents are cached by
// path for the Analyzer's lifetime (one process invocation).
func (a *Analyzer) ReadFile(p string) (string, error) {
	a.mu.Lock()
	if content, ok := a.cache[p]; ok {
		a.mu.Unlock()
		return content, nil
	}
	a.mu.Unlock()

	data, err := os.ReadFile(p)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", p, err)
	}
	content := string(data)

	a.mu.Lock()
	a.cache[p] = content
	a.mu.Unlock()
	return content, nil
}

// FileContext returns the lines around line (1-based) with contextLines of
// surrounding context on each side, clamped at the file edges. A line of 0
// returns the whole file.
func (a *Analyzer) FileContext(p string, line, contextLines int) (string, error) {
	content, err := a.ReadFile(p)
	if err != nil {
		return "", err
	}
	if line <= 0 {
		return content, nil
	}

	lines := strings.Split(content, "\n")
	start := line - contextLines - 1
	if start < 0 {
		start = 0
	}
	end := line + contextLines
	if end > len(lines) {
		end = len(lines)
	}
	if start >= len(lines) {
		return "", nil
	}
	return strings.Join(lines[start:end], "\n"), nil
}

// AnalyzeFiles runs AnalyzeFile over many paths with a bounded worker pool.
// Unreadable files are skipped rather than failing the batch.
func (a *Analyzer) AnalyzeFiles(paths []string) map[string]*FileInfo {
	results := make(map[string]*FileInfo, len(paths))
	var mu sync.Mutex

	var g errgroup.Group
	g.SetLimit(analyzeConcurrency)
	for _, p := range paths {
		g.Go(func() error {
			fi, err := a.AnalyzeFile(p)
			if err != nil {
				a.log.Debug("skipping file", zap.String("path", p), zap.Error(err))
				return nil
			}
			mu.Lock()
			results[p] = fi
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()
	return results
}

func (a *Analyzer) isIgnoredDir(name string) bool {
	for _, pat := range a.ignoredDirs {
		if ok, _ := path.Match(pat, name); ok {
			return true
		}
	}
	return false
}
