package view

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/imadgeboyega/datewrapped/internal/client"
	"github.com/imadgeboyega/datewrapped/internal/dating"
)

// TableOptions control the grid view.
type TableOptions struct {
	// Fields to show, in order. Empty means every field.
	Fields []string
	// Widths overrides the content width of a column by field name.
	Widths map[string]int
	// Filter keeps rows whose name matches.
	Filter    string
	LastError error
}

var rowMarker = map[client.RowState]string{
	client.RowCommitted: " ",
	client.RowPending:   "•",
	client.RowFailed:    "!",
}

// Table renders rows as a grid. The first column is the row's index in the
// editor, which is what edit commands take.
func Table(rows []client.Row, opts TableOptions, styles Styles) string {
	fields := columns(opts.Fields)

	headers := []string{"#", ""}
	for _, f := range fields {
		headers = append(headers, f.Label)
	}

	visible := client.FilterRows(rows, opts.Filter)
	cells := make([][]string, 0, len(visible))
	for _, i := range visible {
		r := rows[i]
		line := []string{fmt.Sprint(i), rowMarker[r.State]}
		for _, f := range fields {
			line = append(line, Cell(r.Entry, f))
		}
		cells = append(cells, line)
	}

	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = lipgloss.Width(h)
	}
	for _, line := range cells {
		for i, c := range line {
			if w := lipgloss.Width(c); w > widths[i] {
				widths[i] = w
			}
		}
	}
	for i, f := range fields {
		if w, ok := opts.Widths[f.Name]; ok && w > 0 {
			widths[i+2] = w
		}
	}

	headerStyle := styles.Bold.Padding(0, 1)
	cellStyle := styles.Body.Padding(0, 1)
	sep := styles.Muted.Render("│")

	var sb strings.Builder
	for i, h := range headers {
		if i > 0 {
			sb.WriteString(sep)
		}
		sb.WriteString(headerStyle.Width(widths[i] + 2).Render(truncate(h, widths[i])))
	}
	sb.WriteString("\n")

	total := len(headers) - 1
	for _, w := range widths {
		total += w + 2
	}
	sb.WriteString(styles.Muted.Render(strings.Repeat("─", total)))
	sb.WriteString("\n")

	for _, line := range cells {
		for i, c := range line {
			if i > 0 {
				sb.WriteString(sep)
			}
			sb.WriteString(cellStyle.Width(widths[i] + 2).Render(truncate(c, widths[i])))
		}
		sb.WriteString("\n")
	}

	if len(visible) == 0 {
		sb.WriteString(styles.Muted.Render("no entries"))
		sb.WriteString("\n")
	}
	sb.WriteString(errorLines(rows, visible, opts.LastError, styles))
	return sb.String()
}

func columns(names []string) []dating.FieldSpec {
	if len(names) == 0 {
		return dating.Fields
	}
	out := make([]dating.FieldSpec, 0, len(names))
	for _, n := range names {
		if f, ok := dating.LookupField(n); ok {
			out = append(out, f)
		}
	}
	return out
}

// errorLines lists per-field errors of the visible rows and the last
// operation error.
func errorLines(rows []client.Row, visible []int, last error, styles Styles) string {
	var sb strings.Builder
	for _, i := range visible {
		r := rows[i]
		for _, f := range dating.Fields {
			if msg, ok := r.FieldErrors[f.Name]; ok {
				sb.WriteString(styles.Error.Render(fmt.Sprintf("row %d %s: %s", i, f.Label, msg)))
				sb.WriteString("\n")
			}
		}
	}
	if last != nil {
		sb.WriteString(styles.Error.Render("last error: " + last.Error()))
		sb.WriteString("\n")
	}
	return sb.String()
}
