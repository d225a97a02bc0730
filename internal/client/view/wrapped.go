package view

import (
	"encoding/json"
	"fmt"
	"slices"
	"sort"
	"strings"

	"github.com/imadgeboyega/datewrapped/internal/wrapped"
)

// Templates lists templates with a check mark on the selected ones.
func Templates(templates []wrapped.Template, selected []string, styles Styles) string {
	var sb strings.Builder
	for _, t := range templates {
		mark := "[ ]"
		if slices.Contains(selected, t.ID) {
			mark = styles.Success.Render("[x]")
		}
		tags := styles.Muted.Render(strings.Join(t.Tags, ", "))
		sb.WriteString(fmt.Sprintf("%s %s  %s %s\n", mark, styles.Bold.Render(t.Title), styles.Muted.Render(t.ID), tags))
		if t.Description != "" {
			sb.WriteString("    " + t.Description + "\n")
		}
	}
	sb.WriteString(styles.Muted.Render(fmt.Sprintf("%d of %d selected", len(selected), wrapped.MaxSelected)))
	sb.WriteString("\n")
	return sb.String()
}

// Session summarizes a wrapped session and renders its slides once
// generated.
func Session(s *wrapped.Session, styles Styles) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%s %s\n", styles.Bold.Render("session"), s.ID))
	sb.WriteString(fmt.Sprintf("%s %s\n", styles.Bold.Render("state"), s.State))
	if s.LastError != "" {
		sb.WriteString(styles.Error.Render("last error: "+s.LastError) + "\n")
	}
	if s.State == wrapped.StateRendered {
		sb.WriteString("\n")
		sb.WriteString(Slides(s.Slides, styles))
	}
	return sb.String()
}

// Slides renders one card per slide. Data keys are listed in sorted order.
func Slides(slides []wrapped.Slide, styles Styles) string {
	cards := make([]string, 0, len(slides))
	for i, s := range slides {
		var body strings.Builder
		body.WriteString(styles.Muted.Render(fmt.Sprintf("%d/%d  %s", i+1, len(slides), s.Type)))
		body.WriteString("\n")
		body.WriteString(styles.Title.Render(s.Title))
		if s.Description != "" {
			body.WriteString("\n" + s.Description)
		}

		keys := make([]string, 0, len(s.Data))
		for k := range s.Data {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			body.WriteString("\n" + styles.Accent.Render(k) + ": " + dataValue(s.Data[k]))
		}
		cards = append(cards, styles.Card.Render(body.String()))
	}
	return strings.Join(cards, "\n") + "\n"
}

func dataValue(v interface{}) string {
	switch t := v.(type) {
	case string:
		return t
	case float64, bool, nil:
		return fmt.Sprint(t)
	}
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(b)
}
