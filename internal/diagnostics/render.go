package diagnostics

import (
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/mattn/go-isatty"
)

const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorYellow = "\033[33m"
	colorCyan   = "\033[36m"
	colorGreen  = "\033[32m"
)

func severityColor(s Severity) string {
	switch s {
	case SeverityError:
		return colorRed
	case SeverityWarning:
		return colorYellow
	case SeverityNote:
		return colorCyan
	case SeveritySuggestion:
		return colorGreen
	}
	return ""
}

// Renderer writes diagnostics to an output stream, colorizing when the
// stream is a terminal.
type Renderer struct {
	out   io.Writer
	color bool
}

// NewRenderer creates a renderer for out. Color is enabled only when out is
// an *os.File attached to a terminal.
func NewRenderer(out io.Writer) *Renderer {
	color := false
	if f, ok := out.(*os.File); ok {
		color = isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}
	return &Renderer{out: out, color: color}
}

// Render writes errs sorted by file, line and column, followed by a summary
// line with error and warning counts.
func (r *Renderer) Render(errs []*DiagnosticError) {
	sorted := make([]*DiagnosticError, len(errs))
	copy(sorted, errs)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].File != sorted[j].File {
			return sorted[i].File < sorted[j].File
		}
		if sorted[i].Token.Line != sorted[j].Token.Line {
			return sorted[i].Token.Line < sorted[j].Token.Line
		}
		return sorted[i].Token.Column < sorted[j].Token.Column
	})

	errCount, warnCount := 0, 0
	for _, e := range sorted {
		r.renderOne(e, 0)
		switch e.Severity {
		case SeverityError:
			errCount++
		case SeverityWarning:
			warnCount++
		}
	}

	if errCount > 0 || warnCount > 0 {
		fmt.Fprintln(r.out)
		switch {
		case errCount > 0 && warnCount > 0:
			fmt.Fprintf(r.out, "%s, %s\n", plural(errCount, "error"), plural(warnCount, "warning"))
		case errCount > 0:
			fmt.Fprintf(r.out, "%s\n", plural(errCount, "error"))
		default:
			fmt.Fprintf(r.out, "%s\n", plural(warnCount, "warning"))
		}
	}
}

func (r *Renderer) renderOne(e *DiagnosticError, depth int) {
	file := e.File
	if file == "" {
		file = e.Token.File
	}
	if file == "" {
		file = "--"
	}

	sev := e.Severity.String()
	if r.color {
		sev = severityColor(e.Severity) + sev + colorReset
	}

	if depth == 0 {
		fmt.Fprintf(r.out, "%s:%d:%d - %s %s: %s\n", file, e.Token.Line, e.Token.Column, sev, e.Code, e.Message)
	} else {
		fmt.Fprintf(r.out, "  %s: %s\n", sev, e.Message)
	}

	for _, note := range e.Notes {
		r.renderOne(note, depth+1)
	}
}

func plural(n int, noun string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", noun)
	}
	return fmt.Sprintf("%d %ss", n, noun)
}
