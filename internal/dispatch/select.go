package dispatch

// Select chooses the single downstream Action for a well-formed Request.
//
// Precedence is fixed and checked in order, first match wins:
//
//  1. analyze flag
//  2. error text
//  3. file target
//  4. default: analyze
//
// The default-terminating chain makes Select total: every Request maps to
// exactly one Action and none is ever rejected here.
func Select(req Request) Action {
	switch {
	case req.AnalyzeRequested:
		return Action{Kind: ActionAnalyze}
	case req.ErrorText != "":
		return Action{Kind: ActionExplainError, ErrorText: req.ErrorText}
	case req.FilePath != "":
		return Action{Kind: ActionInspectFile, FilePath: req.FilePath, Line: req.LineNumber}
	default:
		return Action{Kind: ActionAnalyze}
	}
}
