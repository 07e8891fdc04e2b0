// Package generator produces code through the model: generation from a
// description, completion, and error-driven fixes. Responses are reduced to
// their first fenced code block when one is present.
package generator

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"oca/internal/llm"
)

// codeSystemPrompt steers the model toward complete, directly usable code.
const codeSystemPrompt = `You are an expert programmer. You generate high-quality, functional code based on requirements.
Make sure the code is:
- Well-documented with minimal comments
- Follows best practices for the language
- Complete and ready to use without additional changes
- Written in a clean, maintainable style`

// codeTemperature keeps generation close to deterministic.
const codeTemperature = 0.2

// Generator drives code generation through the LLM manager.
type Generator struct {
	llm *llm.Manager
	log *zap.Logger
}

// New builds a Generator on top of an LLM manager.
func New(manager *llm.Manager, log *zap.Logger) *Generator {
	if log == nil {
		log = zap.NewNop()
	}
	return &Generator{llm: manager, log: log}
}

// Generate produces code from a prompt, with optional supporting context.
func (g *Generator) Generate(ctx context.Context, prompt, contextText string) (string, error) {
	formatted := prompt
	if contextText != "" {
		formatted = fmt.Sprintf(`Context:
%s

Generate the following code:
%s
`, contextText, prompt)
	}

	response, err := g.llm.Query(ctx, formatted, &llm.QueryOptions{
		SystemPrompt: codeSystemPrompt,
		Temperature:  codeTemperature,
	})
	if err != nil {
		return "", err
	}
	return ExtractCode(response), nil
}

// GenerateFunction produces a single function in the given language.
func (g *Generator) GenerateFunction(ctx context.Context, description, language string) (string, error) {
	prompt := fmt.Sprintf(`Generate a function in %s that does the following:
%s

Only give me the function code without explanations.
`, language, description)
	return g.Generate(ctx, prompt, "")
}

// CompleteCode finishes partial code.
func (g *Generator) CompleteCode(ctx context.Context, partial, language string) (string, error) {
	prompt := fmt.Sprintf("Complete the following %s code:\n\n```%s\n%s\n```\n\nOnly provide the completed code without explanations.\n", language, language, partial)
	return g.Generate(ctx, prompt, "")
}

// FixCode repairs code that produces the given error.
func (g *Generator) FixCode(ctx context.Context, broken, errorMessage, language string) (string, error) {
	prompt := fmt.Sprintf(`Fix the following %s code that is producing this error:

Error: %s

Code:
`+"```%s\n%s\n```"+`

Only provide the fixed code without explanations.
`, language, errorMessage, language, broken)
	return g.Generate(ctx, prompt, "")
}

// extMap maps language names to file extensions for GenerateFile.
var extMap = map[string]string{
	"python":     "py",
	"javascript": "js",
	"typescript": "ts",
	"html":       "html",
	"css":        "css",
	"c":          "c",
	"cpp":        "cpp",
	"c++":        "cpp",
	"java":       "java",
	"go":         "go",
	"rust":       "rs",
}

// GenerateFile produces a complete file and, when projectPath is set, writes
// it there. The generated code is returned either way.
func (g *Generator) GenerateFile(ctx context.Context, description, filename, language, projectPath string) (string, error) {
	if filepath.Ext(filename) == "" && language != "" {
		if ext, ok := extMap[strings.ToLower(language)]; ok {
			filename = filename + "." + ext
		}
	}

	prompt := fmt.Sprintf(`Generate a complete %s file named '%s' that:
%s

Only provide the code for the file without explanations.
`, language, filename, description)

	code, err := g.Generate(ctx, prompt, "")
	if err != nil {
		return "", err
	}

	if projectPath != "" {
		target := filepath.Join(projectPath, filename)
		if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
			return code, fmt.Errorf("creating directory for %s: %w", filename, err)
		}
		if err := os.WriteFile(target, []byte(code), 0644); err != nil {
			return code, fmt.Errorf("writing %s: %w", filename, err)
		}
		g.log.Info("generated file", zap.String("path", target))
	}
	return code, nil
}

var codeBlockRe = regexp.MustCompile("(?s)```(?:\\w+)?\\n(.*?)```")

// ExtractCode pulls the first fenced code block from a response, or returns
// the whole trimmed response when no fence is present.
func ExtractCode(response string) string {
	if m := codeBlockRe.FindStringSubmatch(response); m != nil {
		return strings.TrimSpace(m[1])
	}
	return strings.TrimSpace(response)
}
