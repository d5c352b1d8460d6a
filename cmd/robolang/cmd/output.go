package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
	"github.com/msto63/robolang/pkg/lang/diag"
	"github.com/msto63/robolang/pkg/lang/highlight"
)

var (
	okStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true)
	errStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	dimStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	titleStyle = lipgloss.NewStyle().Bold(true).Underline(true)
	codeStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
)

// printer writes check results, styled when the output is a terminal
type printer struct {
	out   io.Writer
	color bool
}

func newPrinter(out *os.File, noColor bool) *printer {
	fd := out.Fd()
	color := !noColor && (isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd))
	return &printer{out: out, color: color}
}

func (p *printer) paint(style lipgloss.Style, s string) string {
	if !p.color {
		return s
	}
	return style.Render(s)
}

// accepted prints one accepted document
func (p *printer) accepted(name string, functions int) {
	fmt.Fprintf(p.out, "%s %s %s\n",
		p.paint(okStyle, "ok"),
		name,
		p.paint(dimStyle, fmt.Sprintf("(%d functions)", functions)))
}

// rejected prints one diagnostic with a source excerpt
func (p *printer) rejected(name, source string, d *diag.Diagnostic) {
	fmt.Fprintf(p.out, "%s %s:%d:%d: %s %s\n",
		p.paint(errStyle, "error"),
		name,
		d.Range.Start.Line+1,
		d.Range.Start.Character+1,
		d.Message,
		p.paint(codeStyle, "["+d.Code.String()+"]"))

	if source == "" {
		return
	}
	snippet := highlight.Snippet(source, d.Range, 1, p.color, highlight.DefaultOptions())
	fmt.Fprint(p.out, snippet)
}
