package dispatch

import "strconv"

// Parse converts a raw token list into a Request.
//
// Flags are matched by exact token; short and long forms are aliases. A
// value-bearing flag consumes exactly the next token. Repeated flags are not
// an error; the last occurrence wins. -h/--help short-circuits: the returned
// Request has HelpRequested set and no further validation runs, so a help
// token is honored even when later tokens would be rejected.
func Parse(tokens []string) (Request, error) {
	var req Request

	for i := 0; i < len(tokens); i++ {
		tok := tokens[i]
		switch tok {
		case "-h", "--help":
			req.HelpRequested = true
			return req, nil
		case "-a", "--analyze":
			req.AnalyzeRequested = true
		case "-r", "--repo":
			val, ok := next(tokens, &i)
			if !ok {
				return req, &ParseError{MissingValueFor: tok}
			}
			req.RepoName = val
		case "-f", "--file":
			val, ok := next(tokens, &i)
			if !ok {
				return req, &ParseError{MissingValueFor: tok}
			}
			req.FilePath = val
		case "-l", "--line":
			val, ok := next(tokens, &i)
			if !ok {
				return req, &ParseError{MissingValueFor: tok}
			}
			n, err := strconv.Atoi(val)
			if err != nil || n <= 0 {
				return req, &ParseError{InvalidValue: tok, Detail: val + " (want a positive integer)"}
			}
			req.LineNumber = n
		case "-e", "--error":
			val, ok := next(tokens, &i)
			if !ok {
				return req, &ParseError{MissingValueFor: tok}
			}
			req.ErrorText = val
		case "-m", "--model":
			val, ok := next(tokens, &i)
			if !ok {
				return req, &ParseError{MissingValueFor: tok}
			}
			req.ModelName = val
		default:
			return req, &ParseError{UnknownOption: tok}
		}
	}

	if req.RepoName == "" {
		return req, &ParseError{MissingRequired: "repo"}
	}
	return req, nil
}

// next consumes the token after *i, advancing the cursor. Reports false when
// the flag sits at the end of the sequence.
func next(tokens []string, i *int) (string, bool) {
	if *i+1 >= len(tokens) {
		return "", false
	}
	*i++
	return tokens[*i], true
}
