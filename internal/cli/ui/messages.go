package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
)

// Problem describes a failure shown to the user
type Problem struct {
	Context     string
	Message     string
	Suggestions []string
	Help        []string
}

// FormatProblem renders a problem with suggestions and help commands
//
// Example output:
//
//	✗ COLLECTION NOT FOUND: Cannot find collection 'blgo'.
//
//	   Did you mean: blog?
//
//	   → See all collections: folio collection list
func FormatProblem(p Problem, noColor bool) string {
	var b strings.Builder

	red := newColor(noColor, color.FgRed, color.Bold)
	if p.Context != "" {
		red.Fprintf(&b, "✗ %s: %s\n", strings.ToUpper(p.Context), p.Message)
	} else {
		red.Fprintf(&b, "✗ %s\n", p.Message)
	}

	if len(p.Suggestions) > 0 {
		b.WriteString("\n")
		newColor(noColor, color.FgYellow).Fprintf(&b, "   Did you mean: %s?\n", strings.Join(p.Suggestions, ", "))
	}

	if len(p.Help) > 0 {
		b.WriteString("\n")
		cyan := newColor(noColor, color.FgCyan)
		for _, line := range p.Help {
			cyan.Fprintf(&b, "   → %s\n", line)
		}
	}

	return b.String()
}

// NotFound formats a missing item with close matches among known names
func NotFound(kind, name string, known []string, help string, noColor bool) string {
	p := Problem{
		Context:     kind + " not found",
		Message:     fmt.Sprintf("Cannot find %s '%s'.", kind, name),
		Suggestions: FindSimilar(name, known, 3),
	}
	if help != "" {
		p.Help = []string{help}
	}
	return FormatProblem(p, noColor)
}

// WriteSuccess writes a success line
func WriteSuccess(w io.Writer, message string, noColor bool) {
	newColor(noColor, color.FgGreen, color.Bold).Fprintf(w, "✓ %s\n", message)
}
