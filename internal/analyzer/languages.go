package analyzer

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// FileInfo describes a single analyzed file. The extraction slices are
// populated per language; unrecognized types carry only the basic fields.
type FileInfo struct {
	Path  string
	Type  string // extension without the dot
	Lines int
	Size  int

	Imports   []string
	Functions []string
	Classes   []string
	Includes  []string
	Structs   []string
	Types     []string
}

// AnalyzeFile reads and analyzes one file. Extraction is regex-based and
// deliberately shallow: enough structure for a prompt, not a parse tree.
func (a *Analyzer) AnalyzeFile(p string) (*FileInfo, error) {
	if _, err := os.Stat(p); err != nil {
		return nil, fmt.Errorf("file does not exist: %s", p)
	}
	content, err := a.ReadFile(p)
	if err != nil {
		return nil, err
	}

	info := &FileInfo{
		Path:  p,
		Type:  strings.ToLower(strings.TrimPrefix(filepath.Ext(p), ".")),
		Lines: strings.Count(content, "\n") + 1,
		Size:  len(content),
	}

	switch info.Type {
	case "py":
		analyzePython(info, content)
	case "c", "cpp", "h", "hpp":
		analyzeCFamily(info, content)
	case "js", "ts":
		analyzeJavaScript(info, content)
	case "go":
		analyzeGo(info, content)
	}
	return info, nil
}

var (
	pyImportRe   = regexp.MustCompile(`(?m)^(?:from\s+(\S+)\s+)?import\s+(.+)$`)
	pyFunctionRe = regexp.MustCompile(`(?m)^def\s+([^\s(]+)`)
	pyClassRe    = regexp.MustCompile(`(?m)^class\s+([^\s:(]+)`)
)

func analyzePython(info *FileInfo, content string) {
	for _, m := range pyImportRe.FindAllStringSubmatch(content, -1) {
		if m[1] != "" {
			for _, item := range strings.Split(m[2], ",") {
				info.Imports = append(info.Imports, m[1]+"."+strings.TrimSpace(item))
			}
		} else {
			for _, item := range strings.Split(m[2], ",") {
				info.Imports = append(info.Imports, strings.TrimSpace(item))
			}
		}
	}
	for _, m := range pyFunctionRe.FindAllStringSubmatch(content, -1) {
		info.Functions = append(info.Functions, m[1])
	}
	for _, m := range pyClassRe.FindAllStringSubmatch(content, -1) {
		info.Classes = append(info.Classes, m[1])
	}
}

var (
	cIncludeRe  = regexp.MustCompile(`(?m)#include\s+[<"]([^>"]+)[>"]`)
	cFunctionRe = regexp.MustCompile(`(?m)(\w+)\s+(\w+)\s*\([^)]*\)\s*{`)
	cStructRe   = regexp.MustCompile(`(?m)(struct|class|enum)\s+(\w+)`)

	cKeywords = map[string]bool{"if": true, "for": true, "while": true, "switch": true}
)

func analyzeCFamily(info *FileInfo, content string) {
	for _, m := range cIncludeRe.FindAllStringSubmatch(content, -1) {
		info.Includes = append(info.Includes, m[1])
	}
	for _, m := range cFunctionRe.FindAllStringSubmatch(content, -1) {
		if !cKeywords[m[1]] {
			info.Functions = append(info.Functions, m[2])
		}
	}
	for _, m := range cStructRe.FindAllStringSubmatch(content, -1) {
		info.Structs = append(info.Structs, m[1]+" "+m[2])
	}
}

var (
	jsImportRe   = regexp.MustCompile(`(?m)(import|require)\s+.+?['"]([^'"]+)['"]`)
	jsFunctionRe = regexp.MustCompile(`(?m)function\s+(\w+)|(\w+)\s*=\s*function`)
	jsClassRe    = regexp.MustCompile(`(?m)class\s+(\w+)`)
)

func analyzeJavaScript(info *FileInfo, content string) {
	for _, m := range jsImportRe.FindAllStringSubmatch(content, -1) {
		info.Imports = append(info.Imports, m[2])
	}
	for _, m := range jsFunctionRe.FindAllStringSubmatch(content, -1) {
		if name := m[1]; name != "" {
			info.Functions = append(info.Functions, name)
		} else if m[2] != "" {
			info.Functions = append(info.Functions, m[2])
		}
	}
	for _, m := range jsClassRe.FindAllStringSubmatch(content, -1) {
		info.Classes = append(info.Classes, m[1])
	}
}

var (
	goImportSingleRe = regexp.MustCompile(`(?m)^import\s+(?:\w+\s+)?"([^"]+)"`)
	goImportBlockRe  = regexp.MustCompile(`(?ms)^import\s*\((.*?)\)`)
	goImportLineRe   = regexp.MustCompile(`"([^"]+)"`)
	goFuncRe         = regexp.MustCompile(`(?m)^func\s+(?:\([^)]+\)\s+)?(\w+)`)
	goTypeRe         = regexp.MustCompile(`(?m)^type\s+(\w+)`)
)

func analyzeGo(info *FileInfo, content string) {
	for _, m := range goImportSingleRe.FindAllStringSubmatch(content, -1) {
		info.Imports = append(info.Imports, m[1])
	}
	for _, block := range goImportBlockRe.FindAllStringSubmatch(content, -1) {
		for _, m := range goImportLineRe.FindAllStringSubmatch(block[1], -1) {
			info.Imports = append(info.Imports, m[1])
		}
	}
	for _, m := range goFuncRe.FindAllStringSubmatch(content, -1) {
		info.Functions = append(info.Functions, m[1])
	}
	for _, m := range goTypeRe.FindAllStringSubmatch(content, -1) {
		info.Types = append(info.Types, m[1])
	}
}
