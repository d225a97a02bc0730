package dating

import "github.com/lib/pq"

// EntryRequest is the body of POST /entries and PUT /entries/{id}. It always
// carries the full record; omitted fields are stored as their zero value.
type EntryRequest struct {
	ID                 string   `json:"id" validate:"omitempty,uuid"`
	PersonName         string   `json:"person_name"`
	Platform           string   `json:"platform" validate:"required"`
	NumDates           int      `json:"num_dates"`
	TotalCost          float64  `json:"total_cost"`
	AvgDuration        float64  `json:"avg_duration"`
	Rating             int      `json:"rating"`
	Hotness            *int     `json:"hotness"`
	Outcome            string   `json:"outcome" validate:"required"`
	Occupation         string   `json:"occupation"`
	Age                *int     `json:"age"`
	RelationshipStatus string   `json:"relationship_status" validate:"required"`
	Status             string   `json:"status" validate:"required"`
	RedFlags           []string `json:"red_flags"`
	GreenFlags         []string `json:"green_flags"`
	Notes              string   `json:"notes"`
}

func (r *EntryRequest) ToEntry() *Entry {
	return &Entry{
		ID:                 r.ID,
		PersonName:         r.PersonName,
		Platform:           r.Platform,
		NumDates:           r.NumDates,
		TotalCost:          r.TotalCost,
		AvgDuration:        r.AvgDuration,
		Rating:             r.Rating,
		Hotness:            r.Hotness,
		Outcome:            r.Outcome,
		Occupation:         r.Occupation,
		Age:                r.Age,
		RelationshipStatus: r.RelationshipStatus,
		Status:             r.Status,
		RedFlags:           pq.StringArray(r.RedFlags),
		GreenFlags:         pq.StringArray(r.GreenFlags),
		Notes:              r.Notes,
	}
}

// RequestFromEntry builds the wire body for e.
func RequestFromEntry(e *Entry) *EntryRequest {
	return &EntryRequest{
		ID:                 e.ID,
		PersonName:         e.PersonName,
		Platform:           e.Platform,
		NumDates:           e.NumDates,
		TotalCost:          e.TotalCost,
		AvgDuration:        e.AvgDuration,
		Rating:             e.Rating,
		Hotness:            e.Hotness,
		Outcome:            e.Outcome,
		Occupation:         e.Occupation,
		Age:                e.Age,
		RelationshipStatus: e.RelationshipStatus,
		Status:             e.Status,
		RedFlags:           append([]string{}, e.RedFlags...),
		GreenFlags:         append([]string{}, e.GreenFlags...),
		Notes:              e.Notes,
	}
}
