package wrapped

import "slices"

// Template types a slide can take.
const (
	TypeInsight = "insight"
	TypeStat    = "stat"
	TypeFunFact = "fun_fact"
)

// Template tags.
const (
	TagNumbers  = "numbers"
	TagMoney    = "money"
	TagPeople   = "people"
	TagTime     = "time"
	TagOutcomes = "outcomes"
	TagCustom   = "custom"
)

var Tags = []string{TagNumbers, TagMoney, TagPeople, TagTime, TagOutcomes, TagCustom}

// Template is a slide topic the user can pick for generation.
type Template struct {
	ID          string   `json:"id" validate:"required"`
	Title       string   `json:"title" validate:"required"`
	Description string   `json:"description"`
	Type        string   `json:"type,omitempty"`
	Tags        []string `json:"tags,omitempty"`
	Custom      bool     `json:"custom,omitempty"`
}

var builtins = []Template{
	{ID: "total-dates", Title: "Your Dating Year in Numbers", Description: "Total number of dates and unique people you met this year", Type: TypeStat, Tags: []string{TagNumbers}},
	{ID: "meeting-sources", Title: "How You Met", Description: "Breakdown of how you met your dates - apps, mutual friends, events, etc.", Type: TypeInsight, Tags: []string{TagPeople}},
	{ID: "success-rate", Title: "Your Success Rate", Description: "How many first dates led to second dates and beyond", Type: TypeStat, Tags: []string{TagOutcomes}},
	{ID: "occupation-insights", Title: "Professional Patterns", Description: "Most common occupations among your dates", Type: TypeInsight, Tags: []string{TagPeople}},
	{ID: "age-range", Title: "Age Demographics", Description: "Age distribution of your dating pool", Type: TypeStat, Tags: []string{TagNumbers, TagPeople}},
	{ID: "meeting-places", Title: "Where the Magic Happens", Description: "Top locations and venues for your dates", Type: TypeInsight, Tags: []string{TagPeople}},
	{ID: "ghosting-stats", Title: "The Ghost Report", Description: "Analyzing the ghosting patterns in your dating life", Type: TypeFunFact, Tags: []string{TagOutcomes}},
	{ID: "date-costs", Title: "Dating Economics", Description: "Your dating expenses and most lavish dates", Type: TypeStat, Tags: []string{TagMoney}},
	{ID: "red-flags", Title: "Red Flag Collection", Description: "Most common red flags you encountered", Type: TypeFunFact, Tags: []string{TagOutcomes}},
	{ID: "green-flags", Title: "Green Flag Gallery", Description: "Positive patterns and traits you appreciated", Type: TypeInsight, Tags: []string{TagOutcomes}},
	{ID: "date-duration", Title: "Time Well Spent?", Description: "Average date duration and your longest dates", Type: TypeStat, Tags: []string{TagTime}},
	{ID: "relationship-outcomes", Title: "Where Are They Now?", Description: "The various outcomes of your dating adventures", Type: TypeInsight, Tags: []string{TagOutcomes}},
	{ID: "best-dates", Title: "Greatest Hits", Description: "Your highest-rated dates and what made them special", Type: TypeInsight, Tags: []string{TagOutcomes}},
	{ID: "hotness-analysis", Title: "Attraction Insights", Description: "Analyzing your attraction patterns and preferences", Type: TypeFunFact, Tags: []string{TagNumbers, TagPeople}},
	{ID: "dating-seasons", Title: "Dating Seasons", Description: "Your most active dating months and seasonal patterns", Type: TypeInsight, Tags: []string{TagTime}},
	{ID: "platform-success", Title: "Platform Performance", Description: "Which dating platforms led to your most successful matches", Type: TypeStat, Tags: []string{TagNumbers, TagOutcomes}},
	{ID: "relationship-status-insights", Title: "Status Stories", Description: "How relationship status affected your dating outcomes", Type: TypeInsight, Tags: []string{TagPeople, TagOutcomes}},
	{ID: "rating-patterns", Title: "Rating Revelations", Description: "Analyzing the correlation between ratings and outcomes", Type: TypeInsight, Tags: []string{TagNumbers, TagOutcomes}},
	{ID: "cost-analysis", Title: "Cost vs. Success", Description: "How spending patterns related to date success", Type: TypeStat, Tags: []string{TagMoney, TagNumbers}},
	{ID: "duration-insights", Title: "Time Investment", Description: "How date duration influenced your connections", Type: TypeInsight, Tags: []string{TagTime, TagNumbers}},
}

// Builtins returns a copy of the built-in templates.
func Builtins() []Template {
	out := make([]Template, len(builtins))
	for i, t := range builtins {
		t.Tags = slices.Clone(t.Tags)
		out[i] = t
	}
	return out
}

func isBuiltin(id string) bool {
	_, ok := lookupBuiltin(id)
	return ok
}

func lookupBuiltin(id string) (Template, bool) {
	for _, t := range builtins {
		if t.ID == id {
			t.Tags = slices.Clone(t.Tags)
			return t, true
		}
	}
	return Template{}, false
}

// FilterByTag keeps templates carrying tag. An empty tag keeps everything.
func FilterByTag(templates []Template, tag string) []Template {
	if tag == "" {
		return templates
	}
	out := []Template{}
	for _, t := range templates {
		if slices.Contains(t.Tags, tag) {
			out = append(out, t)
		}
	}
	return out
}
