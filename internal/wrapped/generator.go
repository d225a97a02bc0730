package wrapped

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/imadgeboyega/datewrapped/internal/common/apperr"
	"github.com/imadgeboyega/datewrapped/internal/dating"
)

const systemPrompt = `You are an expert data analyst and storyteller. Your task is to analyze dating history data and generate content for specific slides in a "Dating Wrapped" presentation.

For each slide template provided, analyze the date entries and generate relevant data and insights.
Each slide should be unique and interesting, focusing specifically on the topic described in the template.

Keep the tone light and engaging while being respectful and appropriate.

Return the response as a JSON object with a 'slides' array, where each slide contains:
{
  "id": string (matching the template ID),
  "title": string (matching the template title),
  "description": string (matching the template description),
  "type": string (matching the template type),
  "data": object (containing relevant statistics and information for this slide)
}`

const userInstruction = "Please analyze these date entries and generate content for each selected slide template. Follow the format specified in the system prompt."

type generationRequest struct {
	DateEntries       []*dating.Entry `json:"dateEntries"`
	SelectedTemplates []Template      `json:"selectedTemplates"`
	Request           string          `json:"request"`
}

type Generator struct {
	completer Completer
	timeout   time.Duration
	logger    *zap.Logger
}

func NewGenerator(completer Completer, timeout time.Duration, logger *zap.Logger) *Generator {
	return &Generator{completer: completer, timeout: timeout, logger: logger.Named("wrapped")}
}

// Generate asks the model for one slide per template and returns them in
// template order. Slides for ids that were not requested are dropped; a
// missing slide fails the whole generation.
func (g *Generator) Generate(ctx context.Context, entries []*dating.Entry, templates []Template) ([]Slide, error) {
	const op = "wrapped.Generate"
	if len(entries) == 0 {
		return nil, apperr.Validation(op, "dateEntries", "at least one date entry is required")
	}
	if len(templates) == 0 {
		return nil, apperr.Validation(op, "selectedTemplates", "at least one template is required")
	}

	payload, err := json.Marshal(generationRequest{
		DateEntries:       entries,
		SelectedTemplates: templates,
		Request:           userInstruction,
	})
	if err != nil {
		return nil, apperr.Generation(op, err)
	}

	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	start := time.Now()
	content, err := g.completer.Complete(ctx, systemPrompt, string(payload))
	generationDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		return nil, g.fail(apperr.Generation(op, err))
	}

	slides, err := parseSlides(content, templates)
	if err != nil {
		return nil, g.fail(err)
	}

	generationsTotal.WithLabelValues("ok").Inc()
	g.logger.Info("slides generated",
		zap.Int("slides", len(slides)),
		zap.Int("entries", len(entries)),
		zap.Duration("took", time.Since(start)))
	return slides, nil
}

func (g *Generator) fail(err error) error {
	generationsTotal.WithLabelValues("error").Inc()
	g.logger.Warn("slide generation failed", zap.Error(err))
	return err
}

func parseSlides(content string, templates []Template) ([]Slide, error) {
	const op = "wrapped.parseSlides"
	if strings.TrimSpace(content) == "" {
		return nil, apperr.Generationf(op, "no content received")
	}

	var resp struct {
		Slides []Slide `json:"slides"`
	}
	if err := json.Unmarshal([]byte(content), &resp); err != nil {
		return nil, apperr.Generationf(op, "response is not valid JSON: %v", err)
	}

	byID := make(map[string]Slide, len(resp.Slides))
	for _, s := range resp.Slides {
		if _, dup := byID[s.ID]; !dup {
			byID[s.ID] = s
		}
	}

	out := make([]Slide, 0, len(templates))
	for _, t := range templates {
		s, ok := byID[t.ID]
		if !ok {
			continue
		}
		if s.Title == "" {
			s.Title = t.Title
		}
		if s.Description == "" {
			s.Description = t.Description
		}
		if s.Type == "" {
			s.Type = t.Type
		}
		if s.Data == nil {
			s.Data = map[string]interface{}{}
		}
		out = append(out, s)
	}
	if len(out) < len(templates) {
		return nil, apperr.Generationf(op, "got %d of %d slides", len(out), len(templates))
	}
	return out, nil
}
