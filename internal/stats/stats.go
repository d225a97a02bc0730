// Package stats derives summary figures from a user's entries. Nothing here
// is stored; every summary is recomputed from the current list.
package stats

import (
	"math"
	"sort"
	"strconv"
	"time"

	"github.com/imadgeboyega/datewrapped/internal/dating"
)

const costChartSize = 8

type Count struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

type PersonCost struct {
	Name        string  `json:"name"`
	CostPerDate float64 `json:"cost_per_date"`
}

// Scores are ratios in [0, 1].
type Scores struct {
	Rating          float64 `json:"rating"`
	SuccessRate     float64 `json:"success_rate"`
	DatingFrequency float64 `json:"dating_frequency"`
}

type Month struct {
	Month  string   `json:"month"`
	People []string `json:"people"`
	Dates  int      `json:"dates"`
	Spent  float64  `json:"spent"`
	start  time.Time
}

type Summary struct {
	TotalDates         int          `json:"total_dates"`
	TotalPeople        int          `json:"total_people"`
	TotalSpent         float64      `json:"total_spent"`
	AvgCostPerDate     float64      `json:"avg_cost_per_date"`
	AvgRating          float64      `json:"avg_rating"`
	ByPlatform         []Count      `json:"by_platform"`
	ByOutcome          []Count      `json:"by_outcome"`
	RatingDistribution []Count      `json:"rating_distribution"`
	RedFlags           []Count      `json:"red_flags"`
	GreenFlags         []Count      `json:"green_flags"`
	CostPerPerson      []PersonCost `json:"cost_per_person"`
	Scores             Scores       `json:"scores"`
	Timeline           []Month      `json:"timeline"`
}

// Aggregate computes the summary. Sums and counts do not depend on the order
// of entries; the cost chart covers the newest entries by created_at.
func Aggregate(entries []*dating.Entry) *Summary {
	s := &Summary{TotalPeople: len(entries)}

	platforms := map[string]int{}
	outcomes := map[string]int{}
	red := map[string]int{}
	green := map[string]int{}
	ratings := make([]int, 6)
	ratingSum := 0

	for _, e := range entries {
		s.TotalDates += e.NumDates
		s.TotalSpent += e.TotalCost
		ratingSum += e.Rating
		platforms[e.Platform]++
		outcomes[e.Outcome]++
		if e.Rating >= 1 && e.Rating <= 5 {
			ratings[e.Rating]++
		}
		for _, f := range e.RedFlags {
			red[f]++
		}
		for _, f := range e.GreenFlags {
			green[f]++
		}
	}

	if s.TotalDates > 0 {
		s.AvgCostPerDate = roundCents(s.TotalSpent / float64(s.TotalDates))
	}
	s.TotalSpent = roundCents(s.TotalSpent)

	var avgRating float64
	if s.TotalPeople > 0 {
		avgRating = float64(ratingSum) / float64(s.TotalPeople)
		s.Scores.SuccessRate = round(float64(outcomes[dating.OutcomeRelationship])/float64(s.TotalPeople), 4)
		s.Scores.DatingFrequency = round(math.Min(float64(s.TotalDates)/float64(s.TotalPeople*3), 1), 4)
	}
	s.AvgRating = round(avgRating, 2)
	s.Scores.Rating = round(avgRating/5, 4)

	s.ByPlatform = sortedCounts(platforms)
	s.ByOutcome = sortedCounts(outcomes)
	s.RedFlags = sortedCounts(red)
	s.GreenFlags = sortedCounts(green)

	s.RatingDistribution = make([]Count, 0, 5)
	for r := 1; r <= 5; r++ {
		s.RatingDistribution = append(s.RatingDistribution, Count{Label: strconv.Itoa(r), Count: ratings[r]})
	}

	s.CostPerPerson = costPerPerson(entries)
	s.Timeline = timeline(entries)
	return s
}

func costPerPerson(entries []*dating.Entry) []PersonCost {
	newest := newestFirst(entries)
	if len(newest) > costChartSize {
		newest = newest[:costChartSize]
	}
	out := make([]PersonCost, 0, len(newest))
	for _, e := range newest {
		pc := PersonCost{Name: e.PersonName}
		if e.NumDates > 0 {
			pc.CostPerDate = roundCents(e.TotalCost / float64(e.NumDates))
		}
		out = append(out, pc)
	}
	return out
}

// timeline groups entries by the calendar month they were created in, oldest
// month first.
func timeline(entries []*dating.Entry) []Month {
	byMonth := map[string]*Month{}
	for _, e := range newestFirst(entries) {
		created := e.CreatedAt.UTC()
		start := time.Date(created.Year(), created.Month(), 1, 0, 0, 0, 0, time.UTC)
		key := start.Format("January 2006")
		m, ok := byMonth[key]
		if !ok {
			m = &Month{Month: key, People: []string{}, start: start}
			byMonth[key] = m
		}
		m.People = append(m.People, e.PersonName)
		m.Dates += e.NumDates
		m.Spent += e.TotalCost
	}

	out := make([]Month, 0, len(byMonth))
	for _, m := range byMonth {
		m.Spent = roundCents(m.Spent)
		out = append(out, *m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].start.Before(out[j].start) })
	return out
}

func newestFirst(entries []*dating.Entry) []*dating.Entry {
	out := append([]*dating.Entry(nil), entries...)
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// sortedCounts orders by count descending, then label.
func sortedCounts(m map[string]int) []Count {
	out := make([]Count, 0, len(m))
	for label, n := range m {
		out = append(out, Count{Label: label, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Label < out[j].Label
	})
	return out
}

func roundCents(v float64) float64 {
	return round(v, 2)
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
