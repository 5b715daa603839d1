// Package console renders operator-facing terminal output: streamed
// assistant text, the SQL audit echo, tool result previews and errors.
package console

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

const previewLines = 8

// Console writes styled output to a single writer. Styles degrade to plain
// text when the writer is not a terminal.
type Console struct {
	out       io.Writer
	query     lipgloss.Style
	tool      lipgloss.Style
	result    lipgloss.Style
	errStyle  lipgloss.Style
	assistant lipgloss.Style
}

func New(out io.Writer) *Console {
	r := lipgloss.NewRenderer(out)
	return &Console{
		out:       out,
		query:     r.NewStyle().Foreground(lipgloss.Color("3")),
		tool:      r.NewStyle().Foreground(lipgloss.Color("3")).Bold(true),
		result:    r.NewStyle().Foreground(lipgloss.Color("8")),
		errStyle:  r.NewStyle().Foreground(lipgloss.Color("1")),
		assistant: r.NewStyle().Foreground(lipgloss.Color("2")),
	}
}

// Writer returns the underlying unstyled writer.
func (c *Console) Writer() io.Writer {
	return c.out
}

// Text writes a streamed delta as-is.
func (c *Console) Text(delta string) {
	fmt.Fprint(c.out, delta)
}

func (c *Console) Println(a ...any) {
	fmt.Fprintln(c.out, a...)
}

func (c *Console) Printf(format string, a ...any) {
	fmt.Fprintf(c.out, format, a...)
}

// Reply prints a complete, non-streamed assistant reply after prefix.
func (c *Console) Reply(prefix, text string) {
	fmt.Fprintf(c.out, "%s%s\n", c.assistant.Render(prefix), text)
}

// ToolCall announces a tool invocation.
func (c *Console) ToolCall(name, arguments string) {
	fmt.Fprintf(c.out, "\n%s\n", c.tool.Render(fmt.Sprintf("  ⚡ Tool: %s(%s)", name, arguments)))
}

// ToolResult shows the first lines of a tool result.
func (c *Console) ToolResult(result string) {
	lines := strings.Split(strings.TrimSpace(result), "\n")
	preview := lines
	if len(preview) > previewLines {
		preview = preview[:previewLines]
	}
	for _, line := range preview {
		fmt.Fprintln(c.out, c.result.Render("  │ "+line))
	}
	if len(lines) > previewLines {
		fmt.Fprintln(c.out, c.result.Render(fmt.Sprintf("  │ ... (%d more lines)", len(lines)-previewLines)))
	}
	fmt.Fprintln(c.out)
}

func (c *Console) Error(err error) {
	fmt.Fprintf(c.out, "\n%s\n\n", c.errStyle.Render("error: "+err.Error()))
}

// QueryWriter returns a writer that echoes the SQL audit lines in the
// query style.
func (c *Console) QueryWriter() io.Writer {
	return styledWriter{out: c.out, style: c.query}
}

type styledWriter struct {
	out   io.Writer
	style lipgloss.Style
}

func (w styledWriter) Write(p []byte) (int, error) {
	text := strings.TrimSuffix(string(p), "\n")
	if _, err := fmt.Fprintln(w.out, w.style.Render(text)); err != nil {
		return 0, err
	}
	return len(p), nil
}
