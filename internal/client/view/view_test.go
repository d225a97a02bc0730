package view

import (
	"errors"
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/require"

	"github.com/imadgeboyega/datewrapped/internal/client"
	"github.com/imadgeboyega/datewrapped/internal/dating"
	"github.com/imadgeboyega/datewrapped/internal/stats"
	"github.com/imadgeboyega/datewrapped/internal/wrapped"
)

func sampleRows() []client.Row {
	hot := 8
	a := dating.NewBlank(0)
	a.PersonName = "Ana"
	a.Rating = 4
	a.Hotness = &hot
	a.TotalCost = 42.5
	a.RedFlags = []string{"late", "rude"}

	b := dating.NewBlank(1)
	b.PersonName = "Ben"

	return []client.Row{
		{Key: 1, Entry: a, State: client.RowCommitted, Saved: true, FieldErrors: map[string]string{}},
		{Key: 2, Entry: b, State: client.RowFailed, FieldErrors: map[string]string{dating.FieldRating: "rating must be 5 or less"}},
	}
}

func TestStars(t *testing.T) {
	require.Equal(t, "★★★☆☆", Stars(3, 5))
	require.Equal(t, "☆☆☆☆☆", Stars(-1, 5))
	require.Equal(t, "★★★★★★★★★★", Stars(12, 10))
}

func TestCellWidgets(t *testing.T) {
	rows := sampleRows()
	rating, _ := dating.LookupField(dating.FieldRating)
	hotness, _ := dating.LookupField(dating.FieldHotness)
	cost, _ := dating.LookupField(dating.FieldTotalCost)
	flags, _ := dating.LookupField(dating.FieldRedFlags)

	require.Equal(t, "★★★★☆", Cell(rows[0].Entry, rating))
	require.Equal(t, "★★★★★★★★☆☆", Cell(rows[0].Entry, hotness))
	require.Equal(t, "-", Cell(rows[1].Entry, hotness))
	require.Equal(t, "$42.50", Cell(rows[0].Entry, cost))
	require.Equal(t, "late · rude", Cell(rows[0].Entry, flags))
	require.Equal(t, "-", Cell(rows[1].Entry, flags))
}

func TestTableFiltersAndResizes(t *testing.T) {
	styles := DefaultStyles()
	rows := sampleRows()

	out := Table(rows, TableOptions{Fields: []string{dating.FieldPersonName, dating.FieldPlatform}}, styles)
	require.Contains(t, out, "Ana")
	require.Contains(t, out, "Ben")
	require.Contains(t, out, "row 1 Rating: rating must be 5 or less")

	out = Table(rows, TableOptions{Fields: []string{dating.FieldPersonName}, Filter: "an"}, styles)
	require.Contains(t, out, "Ana")
	require.NotContains(t, out, "Ben")

	out = Table(rows, TableOptions{
		Fields:    []string{dating.FieldPersonName, dating.FieldNotes},
		Widths:    map[string]int{dating.FieldPlatform: 3, dating.FieldPersonName: 2},
		LastError: errors.New("connection refused"),
	}, styles)
	require.Contains(t, out, "A…")
	require.Contains(t, out, "last error: connection refused")

	lines := strings.Split(Table(rows, TableOptions{}, styles), "\n")
	require.Equal(t, lipgloss.Width(lines[0]), lipgloss.Width(lines[2]))
}

func TestCards(t *testing.T) {
	out := Cards(sampleRows(), "", DefaultStyles())
	require.Contains(t, out, "0. Ana")
	require.Contains(t, out, "not saved")
	require.Contains(t, out, "Tinder")

	require.Contains(t, Cards(sampleRows(), "zzz", DefaultStyles()), "no entries")
}

func TestSummaryView(t *testing.T) {
	rows := sampleRows()
	s := stats.Aggregate([]*dating.Entry{rows[0].Entry, rows[1].Entry})

	out := Summary(s, DefaultStyles())
	require.Contains(t, out, "$42.50")
	require.Contains(t, out, "By platform")
	require.Contains(t, out, "late")
}

func TestSlidesView(t *testing.T) {
	out := Slides([]wrapped.Slide{{
		ID:    "total-dates",
		Title: "Your Dating Year in Numbers",
		Type:  wrapped.TypeStat,
		Data:  map[string]interface{}{"dates": float64(12), "top": []interface{}{"Hinge"}},
	}}, DefaultStyles())
	require.Contains(t, out, "1/1")
	require.Contains(t, out, "dates: 12")
	require.Contains(t, out, `top: ["Hinge"]`)

	tpl := Templates(wrapped.Builtins()[:2], []string{"total-dates"}, DefaultStyles())
	require.Contains(t, tpl, "[x]")
	require.Contains(t, tpl, "1 of 10 selected")
}
