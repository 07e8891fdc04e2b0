package dispatch

import "strconv"

// Build serializes an Action into the argument vector handed to the
// collaborator. The vector is constructed structurally, each value its own
// element: ErrorText in particular stays a single token and is never
// re-split, whatever whitespace it contains.
func Build(action Action, resolved ResolvedTarget, modelName string) []string {
	args := []string{"--project-path", resolved.AbsolutePath}
	if modelName != "" {
		args = append(args, "--model", modelName)
	}

	switch action.Kind {
	case ActionAnalyze:
		args = append(args, "--analyze")
	case ActionExplainError:
		args = append(args, "--error", action.ErrorText)
	case ActionInspectFile:
		args = append(args, "--file", action.FilePath)
		if action.Line > 0 {
			args = append(args, "--line", strconv.Itoa(action.Line))
		}
	}
	return args
}
