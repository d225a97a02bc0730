package dating

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/lib/pq"

	"github.com/imadgeboyega/datewrapped/internal/common/apperr"
	"github.com/imadgeboyega/datewrapped/internal/common/utils"
)

// Editable field names, matching the JSON and column names.
const (
	FieldPersonName         = "person_name"
	FieldPlatform           = "platform"
	FieldNumDates           = "num_dates"
	FieldTotalCost          = "total_cost"
	FieldAvgDuration        = "avg_duration"
	FieldRating             = "rating"
	FieldHotness            = "hotness"
	FieldOutcome            = "outcome"
	FieldOccupation         = "occupation"
	FieldAge                = "age"
	FieldRelationshipStatus = "relationship_status"
	FieldStatus             = "status"
	FieldRedFlags           = "red_flags"
	FieldGreenFlags         = "green_flags"
	FieldNotes              = "notes"
)

type FieldKind int

const (
	KindText FieldKind = iota
	KindNumber
	KindSelect
	KindStars
	KindTags
)

// FieldSpec describes how a field is edited and displayed.
type FieldSpec struct {
	Name     string    `json:"name"`
	Label    string    `json:"label"`
	Kind     FieldKind `json:"kind"`
	Options  []string  `json:"options,omitempty"`
	MaxStars int       `json:"max_stars,omitempty"`
	rule     string
}

// Fields lists every editable field in display order.
var Fields = []FieldSpec{
	{Name: FieldPersonName, Label: "Name", Kind: KindText, rule: "max=100"},
	{Name: FieldPlatform, Label: "Platform", Kind: KindSelect, Options: PlatformOptions},
	{Name: FieldNumDates, Label: "Dates", Kind: KindNumber, rule: "gte=0,lte=1000"},
	{Name: FieldTotalCost, Label: "Total Cost", Kind: KindNumber, rule: "gte=0"},
	{Name: FieldAvgDuration, Label: "Avg Hours", Kind: KindNumber, rule: "gte=0,lte=24"},
	{Name: FieldRating, Label: "Rating", Kind: KindStars, MaxStars: 5, rule: "gte=0,lte=5"},
	{Name: FieldHotness, Label: "Hotness", Kind: KindStars, MaxStars: 10, rule: "omitempty,gte=0,lte=10"},
	{Name: FieldOutcome, Label: "Outcome", Kind: KindSelect, Options: OutcomeOptions},
	{Name: FieldOccupation, Label: "Occupation", Kind: KindText, rule: "max=100"},
	{Name: FieldAge, Label: "Age", Kind: KindNumber, rule: "omitempty,gte=0,lte=120"},
	{Name: FieldRelationshipStatus, Label: "Rel. Status", Kind: KindSelect, Options: RelationshipStatusOptions},
	{Name: FieldStatus, Label: "Status", Kind: KindSelect, Options: StatusOptions},
	{Name: FieldRedFlags, Label: "Red Flags", Kind: KindTags, rule: "max=20,dive,max=50"},
	{Name: FieldGreenFlags, Label: "Green Flags", Kind: KindTags, rule: "max=20,dive,max=50"},
	{Name: FieldNotes, Label: "Notes", Kind: KindText, rule: "max=2000"},
}

// LookupField returns the spec for name.
func LookupField(name string) (FieldSpec, bool) {
	for _, f := range Fields {
		if f.Name == name {
			return f, true
		}
	}
	return FieldSpec{}, false
}

// Validate checks every field of e.
func (e *Entry) Validate() error {
	for _, f := range Fields {
		if err := validateField(e, f); err != nil {
			return err
		}
	}
	return nil
}

func validateField(e *Entry, f FieldSpec) error {
	if f.Kind == KindSelect {
		v := FieldValue(e, f.Name)
		if !slices.Contains(f.Options, v) {
			return apperr.Validation("dating.Validate", f.Name,
				fmt.Sprintf("%s must be one of %s", f.Name, strings.Join(f.Options, ", ")))
		}
		return nil
	}
	if f.rule == "" {
		return nil
	}
	return utils.ValidateVar(f.Name, rawValue(e, f.Name), f.rule)
}

// CopyField sets field of dst to the value it has on src. Values are copied
// as they are, so flags keep any commas they contain.
func CopyField(dst, src *Entry, field string) {
	switch field {
	case FieldPersonName:
		dst.PersonName = src.PersonName
	case FieldPlatform:
		dst.Platform = src.Platform
	case FieldNumDates:
		dst.NumDates = src.NumDates
	case FieldTotalCost:
		dst.TotalCost = src.TotalCost
	case FieldAvgDuration:
		dst.AvgDuration = src.AvgDuration
	case FieldRating:
		dst.Rating = src.Rating
	case FieldHotness:
		dst.Hotness = copyInt(src.Hotness)
	case FieldOutcome:
		dst.Outcome = src.Outcome
	case FieldOccupation:
		dst.Occupation = src.Occupation
	case FieldAge:
		dst.Age = copyInt(src.Age)
	case FieldRelationshipStatus:
		dst.RelationshipStatus = src.RelationshipStatus
	case FieldStatus:
		dst.Status = src.Status
	case FieldRedFlags:
		dst.RedFlags = append(pq.StringArray{}, src.RedFlags...)
	case FieldGreenFlags:
		dst.GreenFlags = append(pq.StringArray{}, src.GreenFlags...)
	case FieldNotes:
		dst.Notes = src.Notes
	}
}

// FieldEqual reports whether a and b hold the same value for field.
func FieldEqual(a, b *Entry, field string) bool {
	switch field {
	case FieldHotness:
		return equalInt(a.Hotness, b.Hotness)
	case FieldAge:
		return equalInt(a.Age, b.Age)
	case FieldRedFlags:
		return slices.Equal(a.RedFlags, b.RedFlags)
	case FieldGreenFlags:
		return slices.Equal(a.GreenFlags, b.GreenFlags)
	}
	return FieldValue(a, field) == FieldValue(b, field)
}

func copyInt(n *int) *int {
	if n == nil {
		return nil
	}
	v := *n
	return &v
}

func equalInt(a, b *int) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func rawValue(e *Entry, field string) interface{} {
	switch field {
	case FieldPersonName:
		return e.PersonName
	case FieldNumDates:
		return e.NumDates
	case FieldTotalCost:
		return e.TotalCost
	case FieldAvgDuration:
		return e.AvgDuration
	case FieldRating:
		return e.Rating
	case FieldHotness:
		return e.Hotness
	case FieldOccupation:
		return e.Occupation
	case FieldAge:
		return e.Age
	case FieldRedFlags:
		return []string(e.RedFlags)
	case FieldGreenFlags:
		return []string(e.GreenFlags)
	case FieldNotes:
		return e.Notes
	}
	return nil
}

// FieldValue renders a field in its canonical text form. Flag lists are
// comma separated and absent optional numbers are empty.
func FieldValue(e *Entry, field string) string {
	switch field {
	case FieldPersonName:
		return e.PersonName
	case FieldPlatform:
		return e.Platform
	case FieldNumDates:
		return strconv.Itoa(e.NumDates)
	case FieldTotalCost:
		return formatFloat(e.TotalCost)
	case FieldAvgDuration:
		return formatFloat(e.AvgDuration)
	case FieldRating:
		return strconv.Itoa(e.Rating)
	case FieldHotness:
		return formatOptionalInt(e.Hotness)
	case FieldOutcome:
		return e.Outcome
	case FieldOccupation:
		return e.Occupation
	case FieldAge:
		return formatOptionalInt(e.Age)
	case FieldRelationshipStatus:
		return e.RelationshipStatus
	case FieldStatus:
		return e.Status
	case FieldRedFlags:
		return strings.Join(e.RedFlags, ",")
	case FieldGreenFlags:
		return strings.Join(e.GreenFlags, ",")
	case FieldNotes:
		return e.Notes
	}
	return ""
}

// SetField parses value for field and stores it on e. The entry is left
// untouched when the value does not parse or fails validation.
func SetField(e *Entry, field, value string) error {
	spec, ok := LookupField(field)
	if !ok {
		return apperr.Validation("dating.SetField", field, "unknown field "+field)
	}

	next := e.Clone()
	if err := assign(next, field, value); err != nil {
		return apperr.Validation("dating.SetField", field, err.Error())
	}
	next.Normalize()
	if err := validateField(next, spec); err != nil {
		return err
	}
	*e = *next
	return nil
}

func assign(e *Entry, field, value string) error {
	value = strings.TrimSpace(value)
	var err error
	switch field {
	case FieldPersonName:
		e.PersonName = value
	case FieldPlatform:
		e.Platform = value
	case FieldNumDates:
		e.NumDates, err = parseInt(field, value)
	case FieldTotalCost:
		e.TotalCost, err = parseFloat(field, value)
	case FieldAvgDuration:
		e.AvgDuration, err = parseFloat(field, value)
	case FieldRating:
		e.Rating, err = parseInt(field, value)
	case FieldHotness:
		e.Hotness, err = parseOptionalInt(field, value)
	case FieldOutcome:
		e.Outcome = value
	case FieldOccupation:
		e.Occupation = value
	case FieldAge:
		e.Age, err = parseOptionalInt(field, value)
	case FieldRelationshipStatus:
		e.RelationshipStatus = value
	case FieldStatus:
		e.Status = value
	case FieldRedFlags:
		e.RedFlags = splitFlags(value)
	case FieldGreenFlags:
		e.GreenFlags = splitFlags(value)
	case FieldNotes:
		e.Notes = value
	}
	return err
}

func parseInt(field, value string) (int, error) {
	if value == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%s must be a whole number", field)
	}
	return n, nil
}

func parseOptionalInt(field, value string) (*int, error) {
	if value == "" {
		return nil, nil
	}
	n, err := parseInt(field, value)
	if err != nil {
		return nil, err
	}
	return &n, nil
}

func parseFloat(field, value string) (float64, error) {
	if value == "" {
		return 0, nil
	}
	f, err := strconv.ParseFloat(strings.TrimPrefix(value, "$"), 64)
	if err != nil {
		return 0, fmt.Errorf("%s must be a number", field)
	}
	return f, nil
}

func splitFlags(value string) pq.StringArray {
	if value == "" {
		return pq.StringArray{}
	}
	return pq.StringArray(strings.Split(value, ","))
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func formatOptionalInt(n *int) string {
	if n == nil {
		return ""
	}
	return strconv.Itoa(*n)
}
