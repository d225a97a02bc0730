package view

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/imadgeboyega/datewrapped/internal/dating"
)

// Stars draws n filled stars out of max.
func Stars(n, max int) string {
	if n < 0 {
		n = 0
	}
	if n > max {
		n = max
	}
	return strings.Repeat("★", n) + strings.Repeat("☆", max-n)
}

// Cell renders one field of e with the widget for its kind.
func Cell(e *dating.Entry, f dating.FieldSpec) string {
	switch f.Kind {
	case dating.KindStars:
		if f.Name == dating.FieldHotness && e.Hotness == nil {
			return "-"
		}
		v, _ := strconv.Atoi(dating.FieldValue(e, f.Name))
		return Stars(v, f.MaxStars)
	case dating.KindTags:
		v := dating.FieldValue(e, f.Name)
		if v == "" {
			return "-"
		}
		return strings.ReplaceAll(v, ",", " · ")
	}

	switch f.Name {
	case dating.FieldTotalCost:
		return "$" + strconv.FormatFloat(e.TotalCost, 'f', 2, 64)
	case dating.FieldAvgDuration:
		return dating.FieldValue(e, f.Name) + "h"
	}

	v := dating.FieldValue(e, f.Name)
	if v == "" {
		return "-"
	}
	return v
}

// truncate shortens s to at most w cells.
func truncate(s string, w int) string {
	if w <= 0 || lipgloss.Width(s) <= w {
		return s
	}
	if w == 1 {
		return "…"
	}
	runes := []rune(s)
	for len(runes) > 0 && lipgloss.Width(string(runes))+1 > w {
		runes = runes[:len(runes)-1]
	}
	return string(runes) + "…"
}
