package wrapped

import (
	"errors"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/imadgeboyega/datewrapped/internal/common/apperr"
	"github.com/imadgeboyega/datewrapped/internal/common/utils"
)

// MaxSelected is the most templates one generation can cover.
const MaxSelected = 10

type State string

const (
	StateBrowsing   State = "browsing"
	StateGenerating State = "generating"
	StateRendered   State = "rendered"
)

var (
	ErrSelectionFull   = errors.New("at most 10 templates can be selected")
	ErrNotBrowsing     = errors.New("templates can only be changed while browsing")
	ErrBuiltinTemplate = errors.New("built-in templates cannot be deleted")
)

// Slide is one generated card.
type Slide struct {
	ID          string                 `json:"id"`
	Title       string                 `json:"title"`
	Description string                 `json:"description"`
	Type        string                 `json:"type"`
	Data        map[string]interface{} `json:"data"`
}

// CustomTemplateRequest is a user-authored template.
type CustomTemplateRequest struct {
	Title       string `json:"title" validate:"required,max=50"`
	Description string `json:"description" validate:"max=100"`
	Type        string `json:"type" validate:"required,oneof=insight stat fun_fact"`
}

// Session is a resumable wrapped-generation session. Its methods only change
// the value in memory; Store persists it.
type Session struct {
	ID        string     `json:"id"`
	OwnerID   int64      `json:"owner_id"`
	State     State      `json:"state"`
	Selected  []string   `json:"selected"`
	Custom    []Template `json:"custom"`
	Slides    []Slide    `json:"slides"`
	LastError string     `json:"last_error,omitempty"`
	UpdatedAt time.Time  `json:"updated_at"`
}

func NewSession(ownerID int64) *Session {
	return &Session{
		ID:        uuid.NewString(),
		OwnerID:   ownerID,
		State:     StateBrowsing,
		Selected:  []string{},
		Custom:    []Template{},
		Slides:    []Slide{},
		UpdatedAt: time.Now().UTC(),
	}
}

// Templates lists the built-in templates followed by the custom ones.
func (s *Session) Templates() []Template {
	return append(Builtins(), s.Custom...)
}

func (s *Session) lookup(id string) (Template, bool) {
	if t, ok := lookupBuiltin(id); ok {
		return t, true
	}
	for _, t := range s.Custom {
		if t.ID == id {
			return t, true
		}
	}
	return Template{}, false
}

func (s *Session) requireBrowsing(op string) error {
	if s.State != StateBrowsing {
		return &apperr.Error{Kind: apperr.ErrConflict, Op: op, Err: ErrNotBrowsing}
	}
	return nil
}

// Select adds a template to the selection. Selecting an already selected
// template does nothing; selecting past MaxSelected leaves the selection as
// it was.
func (s *Session) Select(templateID string) error {
	const op = "wrapped.Select"
	if err := s.requireBrowsing(op); err != nil {
		return err
	}
	if _, ok := s.lookup(templateID); !ok {
		return apperr.NotFound(op)
	}
	if slices.Contains(s.Selected, templateID) {
		return nil
	}
	if len(s.Selected) >= MaxSelected {
		return &apperr.Error{Kind: apperr.ErrConflict, Op: op, Field: "template_id", Err: ErrSelectionFull}
	}
	s.Selected = append(s.Selected, templateID)
	s.touch()
	return nil
}

func (s *Session) Deselect(templateID string) error {
	if err := s.requireBrowsing("wrapped.Deselect"); err != nil {
		return err
	}
	s.Selected = slices.DeleteFunc(s.Selected, func(id string) bool { return id == templateID })
	s.touch()
	return nil
}

// AddCustom creates a custom template and selects it when there is room.
func (s *Session) AddCustom(req *CustomTemplateRequest) (Template, error) {
	if err := s.requireBrowsing("wrapped.AddCustom"); err != nil {
		return Template{}, err
	}
	req.Title = strings.TrimSpace(req.Title)
	req.Description = strings.TrimSpace(req.Description)
	if err := utils.ValidateStruct(req); err != nil {
		return Template{}, err
	}

	t := Template{
		ID:          "custom-" + uuid.NewString(),
		Title:       req.Title,
		Description: req.Description,
		Type:        req.Type,
		Tags:        []string{TagCustom},
		Custom:      true,
	}
	s.Custom = append(s.Custom, t)
	if len(s.Selected) < MaxSelected {
		s.Selected = append(s.Selected, t.ID)
	}
	s.touch()
	return t, nil
}

// DeleteCustom removes a custom template and drops it from the selection.
func (s *Session) DeleteCustom(templateID string) error {
	const op = "wrapped.DeleteCustom"
	if err := s.requireBrowsing(op); err != nil {
		return err
	}
	if isBuiltin(templateID) {
		return &apperr.Error{Kind: apperr.ErrValidation, Op: op, Field: "template_id", Err: ErrBuiltinTemplate}
	}
	i := slices.IndexFunc(s.Custom, func(t Template) bool { return t.ID == templateID })
	if i < 0 {
		return apperr.NotFound(op)
	}
	s.Custom = slices.Delete(s.Custom, i, i+1)
	s.Selected = slices.DeleteFunc(s.Selected, func(id string) bool { return id == templateID })
	s.touch()
	return nil
}

// SelectedTemplates resolves the selection in the order it was made.
func (s *Session) SelectedTemplates() []Template {
	out := make([]Template, 0, len(s.Selected))
	for _, id := range s.Selected {
		if t, ok := s.lookup(id); ok {
			out = append(out, t)
		}
	}
	return out
}

// BeginGeneration moves a browsing session with a non-empty selection to
// generating.
func (s *Session) BeginGeneration() error {
	const op = "wrapped.Generate"
	if err := s.requireBrowsing(op); err != nil {
		return err
	}
	if len(s.Selected) == 0 {
		return apperr.Validation(op, "selected", "select at least one template")
	}
	s.State = StateGenerating
	s.LastError = ""
	s.touch()
	return nil
}

// FinishGeneration records the outcome of a generation. A failure returns
// the session to browsing with the selection intact.
func (s *Session) FinishGeneration(slides []Slide, genErr error) {
	if genErr != nil {
		s.State = StateBrowsing
		s.LastError = genErr.Error()
	} else {
		s.State = StateRendered
		s.Slides = slides
	}
	s.touch()
}

// Reset discards the selection, custom templates and slides.
func (s *Session) Reset() {
	s.State = StateBrowsing
	s.Selected = []string{}
	s.Custom = []Template{}
	s.Slides = []Slide{}
	s.LastError = ""
	s.touch()
}

func (s *Session) touch() {
	s.UpdatedAt = time.Now().UTC()
}
