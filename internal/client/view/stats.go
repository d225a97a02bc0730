package view

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/imadgeboyega/datewrapped/internal/stats"
)

const barWidth = 24

// Summary renders the stats page: headline figures, scores and one bar chart
// per frequency table.
func Summary(s *stats.Summary, styles Styles) string {
	var sb strings.Builder

	figures := []string{
		figure("Dates", fmt.Sprint(s.TotalDates), styles),
		figure("People", fmt.Sprint(s.TotalPeople), styles),
		figure("Spent", money(s.TotalSpent), styles),
		figure("Per date", money(s.AvgCostPerDate), styles),
		figure("Avg rating", fmt.Sprintf("%.2f", s.AvgRating), styles),
	}
	sb.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, figures...))
	sb.WriteString("\n\n")

	sb.WriteString(styles.Title.Render("Scores"))
	sb.WriteString("\n")
	sb.WriteString(bars([]bar{
		{"Rating", s.Scores.Rating, percent(s.Scores.Rating)},
		{"Success rate", s.Scores.SuccessRate, percent(s.Scores.SuccessRate)},
		{"Frequency", s.Scores.DatingFrequency, percent(s.Scores.DatingFrequency)},
	}, styles))

	sb.WriteString(countChart("By platform", s.ByPlatform, styles))
	sb.WriteString(countChart("By outcome", s.ByOutcome, styles))
	sb.WriteString(countChart("Ratings", s.RatingDistribution, styles))
	sb.WriteString(countChart("Red flags", s.RedFlags, styles))
	sb.WriteString(countChart("Green flags", s.GreenFlags, styles))

	if len(s.CostPerPerson) > 0 {
		max := 0.0
		for _, p := range s.CostPerPerson {
			if p.CostPerDate > max {
				max = p.CostPerDate
			}
		}
		items := make([]bar, 0, len(s.CostPerPerson))
		for _, p := range s.CostPerPerson {
			items = append(items, bar{p.Name, ratio(p.CostPerDate, max), money(p.CostPerDate)})
		}
		sb.WriteString("\n")
		sb.WriteString(styles.Title.Render("Cost per date"))
		sb.WriteString("\n")
		sb.WriteString(bars(items, styles))
	}

	if len(s.Timeline) > 0 {
		sb.WriteString("\n")
		sb.WriteString(styles.Title.Render("Timeline"))
		sb.WriteString("\n")
		for _, m := range s.Timeline {
			sb.WriteString(fmt.Sprintf("%s  %s  %s\n",
				styles.Bold.Render(m.Month),
				styles.Muted.Render(fmt.Sprintf("%d dates, %s", m.Dates, money(m.Spent))),
				strings.Join(m.People, ", ")))
		}
	}
	return sb.String()
}

func figure(label, value string, styles Styles) string {
	return styles.Card.Render(styles.Muted.Render(label) + "\n" + styles.Bold.Render(value))
}

type bar struct {
	label string
	ratio float64
	value string
}

func bars(items []bar, styles Styles) string {
	labelWidth := 0
	for _, b := range items {
		if w := lipgloss.Width(b.label); w > labelWidth {
			labelWidth = w
		}
	}
	var sb strings.Builder
	for _, b := range items {
		n := int(b.ratio*barWidth + 0.5)
		sb.WriteString(styles.Body.Width(labelWidth + 2).Render(b.label))
		sb.WriteString(styles.Bar.Render(strings.Repeat("█", n)))
		sb.WriteString(styles.Muted.Render(strings.Repeat("░", barWidth-n)))
		sb.WriteString(" " + b.value + "\n")
	}
	return sb.String()
}

func countChart(title string, counts []stats.Count, styles Styles) string {
	if len(counts) == 0 {
		return ""
	}
	max := 0
	for _, c := range counts {
		if c.Count > max {
			max = c.Count
		}
	}
	items := make([]bar, 0, len(counts))
	for _, c := range counts {
		items = append(items, bar{c.Label, ratio(float64(c.Count), float64(max)), fmt.Sprint(c.Count)})
	}
	return "\n" + styles.Title.Render(title) + "\n" + bars(items, styles)
}

func ratio(v, max float64) float64 {
	if max <= 0 {
		return 0
	}
	return v / max
}

func money(v float64) string {
	return fmt.Sprintf("$%.2f", v)
}

func percent(v float64) string {
	return fmt.Sprintf("%.0f%%", v*100)
}
