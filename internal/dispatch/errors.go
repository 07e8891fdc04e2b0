package dispatch

import (
	"fmt"
	"strings"
)

// ParseError reports a malformed command line. Exactly one of the fields is
// populated per error.
type ParseError struct {
	MissingValueFor string // flag seen with no following value token
	UnknownOption   string // token matching no recognized flag
	MissingRequired string // required field absent after parsing
	InvalidValue    string // flag whose value failed to parse
	Detail          string // supplement for InvalidValue
}

func (e *ParseError) Error() string {
	switch {
	case e.MissingValueFor != "":
		return fmt.Sprintf("missing value for %s", e.MissingValueFor)
	case e.UnknownOption != "":
		return fmt.Sprintf("unknown option: %s", e.UnknownOption)
	case e.MissingRequired != "":
		return fmt.Sprintf("missing required option: --%s", e.MissingRequired)
	case e.InvalidValue != "":
		return fmt.Sprintf("invalid value for %s: %s", e.InvalidValue, e.Detail)
	}
	return "invalid arguments"
}

// NotFoundError reports a repository folder absent under the base directory.
// Siblings enumerates the directories that do exist, for user guidance.
type NotFoundError struct {
	RepoName string
	BaseDir  string
	Siblings []string
}

func (e *NotFoundError) Error() string {
	msg := fmt.Sprintf("folder not found: %s (under %s)", e.RepoName, e.BaseDir)
	if len(e.Siblings) > 0 {
		msg += "\navailable folders:\n  - " + strings.Join(e.Siblings, "\n  - ")
	}
	return msg
}

// FileNotFoundError reports a file target absent under the resolved repo.
type FileNotFoundError struct {
	FilePath string
	RepoPath string
}

func (e *FileNotFoundError) Error() string {
	return fmt.Sprintf("file not found: %s (under %s)", e.FilePath, e.RepoPath)
}
