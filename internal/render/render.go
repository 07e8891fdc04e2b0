// Package render draws oca's terminal output: bordered panels, markdown
// responses, and numbered source listings.
package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
)

const defaultWidth = 100

var (
	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			Padding(0, 1)

	titleStyle = lipgloss.NewStyle().Bold(true)

	infoBorder    = lipgloss.Color("12") // blue: informational panels
	resultBorder  = lipgloss.Color("10") // green: model output
	warningBorder = lipgloss.Color("11") // yellow: warnings, error analysis input
)

// Renderer writes styled output to a terminal.
type Renderer struct {
	out      io.Writer
	markdown *glamour.TermRenderer
}

// New builds a Renderer targeting out. Markdown rendering degrades to plain
// text when the term renderer cannot be constructed.
func New(out io.Writer) *Renderer {
	md, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(defaultWidth-4),
	)
	if err != nil {
		md = nil
	}
	return &Renderer{out: out, markdown: md}
}

// Panel draws body in a bordered box with an optional title.
func (r *Renderer) Panel(title, body string) {
	r.panel(title, body, infoBorder)
}

// ResultPanel draws model output, rendered as markdown, in a green box.
func (r *Renderer) ResultPanel(title, body string) {
	r.panel(title, r.Markdown(body), resultBorder)
}

// WarningPanel draws body in a yellow box.
func (r *Renderer) WarningPanel(title, body string) {
	r.panel(title, body, warningBorder)
}

func (r *Renderer) panel(title, body string, border lipgloss.Color) {
	content := strings.TrimRight(body, "\n")
	if title != "" {
		content = titleStyle.Render(title) + "\n\n" + content
	}
	fmt.Fprintln(r.out, panelStyle.BorderForeground(border).Render(content))
}

// Markdown renders markdown for the terminal, falling back to the raw text
// on any renderer failure.
func (r *Renderer) Markdown(content string) string {
	if r.markdown == nil || content == "" {
		return content
	}
	rendered, err := r.markdown.Render(content)
	if err != nil {
		return content
	}
	return strings.TrimRight(rendered, "\n")
}

// Listing prints source lines with 1-based line numbers, starting at first.
func (r *Renderer) Listing(content string, first int) {
	if first < 1 {
		first = 1
	}
	lines := strings.Split(strings.TrimRight(content, "\n"), "\n")
	var b strings.Builder
	for i, line := range lines {
		fmt.Fprintf(&b, "%5d | %s\n", first+i, line)
	}
	fmt.Fprint(r.out, b.String())
}

// Println writes a plain line.
func (r *Renderer) Println(a ...any) {
	fmt.Fprintln(r.out, a...)
}

// Printf writes plain formatted output.
func (r *Renderer) Printf(format string, a ...any) {
	fmt.Fprintf(r.out, format, a...)
}
