package dispatch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"

	"go.uber.org/zap"
)

// Collaborator is the downstream process or component that performs the
// actual analysis. The dispatcher's whole contract with it: hand over a
// well-formed argument vector, block until it finishes, and propagate its
// exit code unchanged.
type Collaborator interface {
	Invoke(ctx context.Context, argv []string) (int, error)
}

// ExecCollaborator runs an external command with the built argument vector
// and reports its exit code verbatim.
type ExecCollaborator struct {
	Command string
	Args    []string // fixed arguments placed before the built vector
}

func (c *ExecCollaborator) Invoke(ctx context.Context, argv []string) (int, error) {
	cmd := exec.CommandContext(ctx, c.Command, append(append([]string{}, c.Args...), argv...)...)
	cmd.Stdin = nil
	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return exitErr.ExitCode(), nil
		}
		return 1, fmt.Errorf("running %s: %w", c.Command, err)
	}
	return 0, nil
}

// Dispatcher wires the dispatch sequence together: parse, resolve, select,
// build, delegate.
type Dispatcher struct {
	BaseDir      string
	Collaborator Collaborator
	Out          io.Writer
	Err          io.Writer
	Logger       *zap.Logger
}

const usage = `Usage: oca [options]

Options:
  -r, --repo <name>     folder under the base directory to analyze (required)
  -f, --file <path>     file to inspect, relative to the repo
  -l, --line <n>        line of interest within the file
  -e, --error <text>    error message to explain
  -m, --model <name>    model to use (defaults to the configured model)
  -a, --analyze         analyze the whole project
  -h, --help            show this help

With no action flag, the whole project is analyzed.`

// Usage returns the help text for the dispatch surface.
func Usage() string { return usage }

// Run executes one full dispatch for the given token list and returns the
// process exit code. Dispatch-layer failures print a message (plus usage or
// the sibling list, as appropriate) and return 1; a successful delegation
// returns the collaborator's exit code unchanged.
func (d *Dispatcher) Run(ctx context.Context, tokens []string) int {
	log := d.Logger
	if log == nil {
		log = zap.NewNop()
	}

	req, err := Parse(tokens)
	if err != nil {
		fmt.Fprintf(d.Err, "oca: %v\n\n%s\n", err, usage)
		return 1
	}
	if req.HelpRequested {
		fmt.Fprintln(d.Out, usage)
		return 0
	}

	resolved, err := Resolve(d.BaseDir, req.RepoName)
	if err != nil {
		fmt.Fprintf(d.Err, "oca: %v\n", err)
		return 1
	}
	if req.FilePath != "" {
		if err := ResolveFile(resolved, req.FilePath); err != nil {
			fmt.Fprintf(d.Err, "oca: %v\n", err)
			return 1
		}
	}

	action := Select(req)
	argv := Build(action, resolved, req.ModelName)
	log.Debug("dispatching",
		zap.String("action", action.Kind.String()),
		zap.String("repo", resolved.RepoName),
		zap.Strings("argv", argv))

	code, err := d.Collaborator.Invoke(ctx, argv)
	if err != nil {
		fmt.Fprintf(d.Err, "oca: %v\n", err)
	}
	return code
}
