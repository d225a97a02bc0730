package dating

import (
	"strconv"
	"strings"
	"time"

	"github.com/lib/pq"
)

// Entry is one person the owner dated. ID is empty until the row has been
// stored for the first time.
type Entry struct {
	ID                 string         `json:"id" db:"id"`
	OwnerID            int64          `json:"owner_id" db:"owner_id"`
	PersonName         string         `json:"person_name" db:"person_name"`
	Platform           string         `json:"platform" db:"platform"`
	NumDates           int            `json:"num_dates" db:"num_dates"`
	TotalCost          float64        `json:"total_cost" db:"total_cost"`
	AvgDuration        float64        `json:"avg_duration" db:"avg_duration"`
	Rating             int            `json:"rating" db:"rating"`
	Hotness            *int           `json:"hotness" db:"hotness"`
	Outcome            string         `json:"outcome" db:"outcome"`
	Occupation         string         `json:"occupation" db:"occupation"`
	Age                *int           `json:"age" db:"age"`
	RelationshipStatus string         `json:"relationship_status" db:"relationship_status"`
	Status             string         `json:"status" db:"status"`
	RedFlags           pq.StringArray `json:"red_flags" db:"red_flags"`
	GreenFlags         pq.StringArray `json:"green_flags" db:"green_flags"`
	Notes              string         `json:"notes" db:"notes"`
	CreatedAt          time.Time      `json:"created_at" db:"created_at"`
}

// Identified reports whether the entry has been stored.
func (e *Entry) Identified() bool {
	return e.ID != ""
}

// Clone returns a deep copy.
func (e *Entry) Clone() *Entry {
	c := *e
	if e.Hotness != nil {
		h := *e.Hotness
		c.Hotness = &h
	}
	if e.Age != nil {
		a := *e.Age
		c.Age = &a
	}
	c.RedFlags = append(pq.StringArray{}, e.RedFlags...)
	c.GreenFlags = append(pq.StringArray{}, e.GreenFlags...)
	return &c
}

// Normalize trims text fields and replaces nil flag lists with empty ones so
// the wire form never carries null arrays.
func (e *Entry) Normalize() {
	e.PersonName = strings.TrimSpace(e.PersonName)
	e.Occupation = strings.TrimSpace(e.Occupation)
	e.RedFlags = cleanFlags(e.RedFlags)
	e.GreenFlags = cleanFlags(e.GreenFlags)
}

func cleanFlags(flags []string) pq.StringArray {
	out := make(pq.StringArray, 0, len(flags))
	seen := make(map[string]bool, len(flags))
	for _, f := range flags {
		f = strings.TrimSpace(f)
		if f == "" || seen[f] {
			continue
		}
		seen[f] = true
		out = append(out, f)
	}
	return out
}

// NewBlank returns the template row a user starts from. n is the number of
// entries that already exist.
func NewBlank(n int) *Entry {
	return &Entry{
		PersonName:         "Date #" + strconv.Itoa(n+1),
		Platform:           PlatformTinder,
		NumDates:           1,
		Outcome:            OutcomeOngoing,
		RelationshipStatus: RelationshipSingle,
		Status:             StatusActive,
		RedFlags:           pq.StringArray{},
		GreenFlags:         pq.StringArray{},
	}
}
