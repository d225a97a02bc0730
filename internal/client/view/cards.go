package view

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/imadgeboyega/datewrapped/internal/client"
	"github.com/imadgeboyega/datewrapped/internal/dating"
)

// Cards renders each matching row as a bordered card.
func Cards(rows []client.Row, filter string, styles Styles) string {
	visible := client.FilterRows(rows, filter)
	if len(visible) == 0 {
		return styles.Muted.Render("no entries") + "\n"
	}

	labelWidth := 0
	for _, f := range dating.Fields {
		if w := lipgloss.Width(f.Label); w > labelWidth {
			labelWidth = w
		}
	}
	label := styles.Muted.Width(labelWidth + 1)

	cards := make([]string, 0, len(visible))
	for _, i := range visible {
		r := rows[i]
		var body strings.Builder
		title := fmt.Sprintf("%d. %s", i, r.Entry.PersonName)
		switch r.State {
		case client.RowPending:
			title += " " + styles.Warning.Render("saving…")
		case client.RowFailed:
			title += " " + styles.Error.Render("not saved")
		}
		body.WriteString(styles.Title.Render(title))

		for _, f := range dating.Fields {
			if f.Name == dating.FieldPersonName {
				continue
			}
			body.WriteString("\n")
			body.WriteString(label.Render(f.Label))
			body.WriteString(Cell(r.Entry, f))
			if msg, ok := r.FieldErrors[f.Name]; ok {
				body.WriteString(" " + styles.Error.Render(msg))
			}
		}
		cards = append(cards, styles.Card.Render(body.String()))
	}
	return strings.Join(cards, "\n") + "\n"
}
