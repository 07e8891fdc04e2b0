// Package engine is the analysis backend behind the dispatch layer. It
// accepts the dispatched argument vector, runs the requested analysis
// through the analyzer and the model, and reports an exit code.
package engine

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"oca/internal/analyzer"
	"oca/internal/llm"
	"oca/internal/render"
)

// contextLines is the window shown around a requested line.
const contextLines = 5

// maxPromptContent caps how much file content goes into a prompt.
const maxPromptContent = 10000

// Engine implements dispatch.Collaborator in-process.
type Engine struct {
	analyzer *analyzer.Analyzer
	llm      *llm.Manager
	render   *render.Renderer
	log      *zap.Logger
}

// New wires an Engine.
func New(an *analyzer.Analyzer, manager *llm.Manager, r *render.Renderer, log *zap.Logger) *Engine {
	if log == nil {
		log = zap.NewNop()
	}
	return &Engine{analyzer: an, llm: manager, render: r, log: log}
}

// task is the decoded argument vector.
type task struct {
	projectPath string
	model       string
	analyze     bool
	errorText   string
	filePath    string
	line        int
}

// Invoke decodes the dispatched argument vector and runs the single action
// it names. The vector is trusted to the extent the dispatch layer built
// it; anything malformed exits 2 without touching the model.
func (e *Engine) Invoke(ctx context.Context, argv []string) (int, error) {
	t, err := decode(argv)
	if err != nil {
		return 2, fmt.Errorf("invalid invocation: %w", err)
	}

	if t.model != "" {
		e.llm.UseModel(t.model)
	}

	switch {
	case t.analyze:
		err = e.runAnalyze(ctx, t)
	case t.errorText != "":
		err = e.runExplainError(ctx, t)
	case t.filePath != "":
		err = e.runInspectFile(ctx, t)
	}
	if err != nil {
		return 1, err
	}
	return 0, nil
}

func decode(argv []string) (task, error) {
	var t task
	actions := 0

	value := func(i *int) (string, error) {
		if *i+1 >= len(argv) {
			return "", fmt.Errorf("missing value for %s", argv[*i])
		}
		*i++
		return argv[*i], nil
	}

	for i := 0; i < len(argv); i++ {
		switch argv[i] {
		case "--project-path":
			v, err := value(&i)
			if err != nil {
				return t, err
			}
			t.projectPath = v
		case "--model":
			v, err := value(&i)
			if err != nil {
				return t, err
			}
			t.model = v
		case "--analyze":
			t.analyze = true
			actions++
		case "--error":
			v, err := value(&i)
			if err != nil {
				return t, err
			}
			t.errorText = v
			actions++
		case "--file":
			v, err := value(&i)
			if err != nil {
				return t, err
			}
			t.filePath = v
			actions++
		case "--line":
			v, err := value(&i)
			if err != nil {
				return t, err
			}
			n, convErr := strconv.Atoi(v)
			if convErr != nil || n <= 0 {
				return t, fmt.Errorf("invalid --line value %q", v)
			}
			t.line = n
		default:
			return t, fmt.Errorf("unexpected argument %q", argv[i])
		}
	}

	if t.projectPath == "" {
		return t, fmt.Errorf("--project-path is required")
	}
	if actions != 1 {
		return t, fmt.Errorf("exactly one of --analyze, --error, --file is required")
	}
	if t.line > 0 && t.filePath == "" {
		return t, fmt.Errorf("--line requires --file")
	}
	return t, nil
}

func (e *Engine) runAnalyze(ctx context.Context, t task) error {
	name := filepath.Base(t.projectPath)
	e.render.Printf("Analyzing folder: %s\n", name)

	summary, err := e.analyzer.Summarize(t.projectPath)
	if err != nil {
		return err
	}

	e.render.Panel(fmt.Sprintf("Project Summary: %s", name), formatSummary(summary))

	prompt := fmt.Sprintf(`Analyze the following project structure for a high-level overview:

Project: %s
Files: %d
Directories: %d
Important Files: %s
%s
Provide a concise project description and assessment.
`, name, summary.FileCount, summary.DirectoryCount,
		strings.Join(summary.ImportantFiles, ", "),
		e.importantFileDetail(summary))

	response, err := e.llm.Query(ctx, prompt, nil)
	if err != nil {
		return err
	}
	e.render.ResultPanel("AI Analysis", response)
	return nil
}

// importantFileDetail enriches the overview prompt with a structural sketch
// of the important files.
func (e *Engine) importantFileDetail(summary *analyzer.Summary) string {
	if len(summary.ImportantFiles) == 0 {
		return ""
	}
	paths := make([]string, 0, len(summary.ImportantFiles))
	for _, f := range summary.ImportantFiles {
		paths = append(paths, filepath.Join(summary.Path, f))
	}
	infos := e.analyzer.AnalyzeFiles(paths)

	keys := make([]string, 0, len(infos))
	for p := range infos {
		keys = append(keys, p)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, p := range keys {
		fi := infos[p]
		rel, _ := filepath.Rel(summary.Path, p)
		fmt.Fprintf(&b, "- %s: %d lines", rel, fi.Lines)
		if names := symbolNames(fi); names != "" {
			fmt.Fprintf(&b, " (%s)", names)
		}
		b.WriteString("\n")
	}
	if b.Len() == 0 {
		return ""
	}
	return "\nFile details:\n" + b.String()
}

func symbolNames(fi *analyzer.FileInfo) string {
	var names []string
	names = append(names, fi.Functions...)
	names = append(names, fi.Classes...)
	names = append(names, fi.Types...)
	if len(names) > 8 {
		names = names[:8]
	}
	return strings.Join(names, ", ")
}

func (e *Engine) runExplainError(ctx context.Context, t task) error {
	e.render.WarningPanel("Analyzing Error", t.errorText)

	prompt := fmt.Sprintf(`Analyze this error in the context of a software project:

Error: %s

The project is located at: %s

Provide:
1. A likely cause of this error
2. Potential solutions
3. Debugging steps to locate the issue
`, t.errorText, t.projectPath)

	response, err := e.llm.Query(ctx, prompt, nil)
	if err != nil {
		return err
	}
	e.render.ResultPanel("Error Analysis", response)
	return nil
}

func (e *Engine) runInspectFile(ctx context.Context, t task) error {
	full := filepath.Join(t.projectPath, t.filePath)

	info, err := e.analyzer.AnalyzeFile(full)
	if err != nil {
		return err
	}

	e.render.Panel(fmt.Sprintf("File Analysis: %s", t.filePath), fmt.Sprintf(
		"Type: %s\nLines: %d\nFunctions/Classes: %d",
		info.Type, info.Lines, len(info.Functions)+len(info.Classes)+len(info.Types)))

	content := ""
	if t.line > 0 {
		window, err := e.analyzer.FileContext(full, t.line, contextLines)
		if err != nil {
			return err
		}
		first := t.line - contextLines
		if first < 1 {
			first = 1
		}
		e.render.Listing(window, first)
		content = window
	} else {
		content, err = e.analyzer.ReadFile(full)
		if err != nil {
			return err
		}
		if len(content) > maxPromptContent {
			content = content[:maxPromptContent]
		}
	}

	prompt := fmt.Sprintf(`Analyze this file: %s

File type: %s
Lines: %d
%s
Content:
%s

Provide a concise analysis of the file's purpose and structure.
`, filepath.Base(t.filePath), info.Type, info.Lines, lineNote(t.line), content)

	response, err := e.llm.Query(ctx, prompt, nil)
	if err != nil {
		return err
	}
	e.render.ResultPanel("File Analysis", response)
	return nil
}

func lineNote(line int) string {
	if line <= 0 {
		return ""
	}
	return fmt.Sprintf("The user is asking about line %d; the content below is a window around it.\n", line)
}

func formatSummary(s *analyzer.Summary) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Files: %d\n", s.FileCount)
	fmt.Fprintf(&b, "Directories: %d\n", s.DirectoryCount)

	exts := make([]string, 0, len(s.FileTypes))
	for ext := range s.FileTypes {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	parts := make([]string, 0, len(exts))
	for _, ext := range exts {
		parts = append(parts, fmt.Sprintf("%s (%d)", ext, s.FileTypes[ext]))
	}
	fmt.Fprintf(&b, "File Types: %s\n", strings.Join(parts, ", "))

	if len(s.ImportantFiles) > 0 {
		b.WriteString("\nImportant Files:\n")
		for _, f := range s.ImportantFiles {
			fmt.Fprintf(&b, "- %s\n", f)
		}
	}
	return b.String()
}
