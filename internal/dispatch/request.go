// Package dispatch implements the command-dispatch layer of oca: it parses
// a raw token list into a Request, resolves the target repository on disk,
// selects exactly one downstream Action, builds the collaborator argument
// vector, and delegates. Each run is stateless end to end.
package dispatch

// Request is the structured form of a parsed command line. Optional fields
// are zero-valued when absent.
type Request struct {
	RepoName         string
	FilePath         string
	LineNumber       int // positive when set; meaningful only with FilePath
	ErrorText        string
	ModelName        string
	AnalyzeRequested bool
	HelpRequested    bool
}

// ResolvedTarget is a repository folder whose existence has been confirmed.
// It lives for a single dispatch and is never persisted.
type ResolvedTarget struct {
	RepoName     string
	AbsolutePath string
}

// ActionKind discriminates the Action variants.
type ActionKind int

const (
	ActionAnalyze ActionKind = iota
	ActionExplainError
	ActionInspectFile
)

func (k ActionKind) String() string {
	switch k {
	case ActionAnalyze:
		return "analyze"
	case ActionExplainError:
		return "explain-error"
	case ActionInspectFile:
		return "inspect-file"
	}
	return "unknown"
}

// Action is the single downstream operation chosen for one dispatch.
// Exactly one Action exists per successful run.
type Action struct {
	Kind      ActionKind
	ErrorText string // ActionExplainError
	FilePath  string // ActionInspectFile
	Line      int    // ActionInspectFile, 0 when no line was given
}
