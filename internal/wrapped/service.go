package wrapped

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/imadgeboyega/datewrapped/internal/common/apperr"
	"github.com/imadgeboyega/datewrapped/internal/dating"
)

// EntryLister is the part of the entry service generation reads from.
type EntryLister interface {
	List(ctx context.Context, ownerID int64) ([]*dating.Entry, error)
}

// Service runs wrapped sessions for signed-in users.
type Service struct {
	store     Store
	entries   EntryLister
	generator *Generator
	logger    *zap.Logger
}

func NewService(store Store, entries EntryLister, generator *Generator, logger *zap.Logger) *Service {
	return &Service{store: store, entries: entries, generator: generator, logger: logger.Named("wrapped")}
}

func (s *Service) CreateSession(ctx context.Context, ownerID int64) (*Session, error) {
	if ownerID == 0 {
		return nil, apperr.Auth("wrapped.CreateSession")
	}
	sess := NewSession(ownerID)
	if err := s.store.Create(ctx, sess); err != nil {
		return nil, apperr.Storage("wrapped.CreateSession", err)
	}
	return sess, nil
}

func (s *Service) GetSession(ctx context.Context, ownerID int64, id string) (*Session, error) {
	const op = "wrapped.GetSession"
	if ownerID == 0 {
		return nil, apperr.Auth(op)
	}
	sess, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, storeError(op, err)
	}
	if sess.OwnerID != ownerID {
		return nil, apperr.NotFound(op)
	}
	return sess, nil
}

// update applies fn to a session the owner holds.
func (s *Service) update(ctx context.Context, op string, ownerID int64, id string, fn func(*Session) error) (*Session, error) {
	if ownerID == 0 {
		return nil, apperr.Auth(op)
	}
	sess, err := s.store.Update(ctx, id, func(sess *Session) error {
		if sess.OwnerID != ownerID {
			return apperr.NotFound(op)
		}
		return fn(sess)
	})
	if err != nil {
		return nil, storeError(op, err)
	}
	return sess, nil
}

func (s *Service) Select(ctx context.Context, ownerID int64, id, templateID string) (*Session, error) {
	return s.update(ctx, "wrapped.Select", ownerID, id, func(sess *Session) error {
		return sess.Select(templateID)
	})
}

func (s *Service) Deselect(ctx context.Context, ownerID int64, id, templateID string) (*Session, error) {
	return s.update(ctx, "wrapped.Deselect", ownerID, id, func(sess *Session) error {
		return sess.Deselect(templateID)
	})
}

func (s *Service) AddCustom(ctx context.Context, ownerID int64, id string, req *CustomTemplateRequest) (*Session, error) {
	return s.update(ctx, "wrapped.AddCustom", ownerID, id, func(sess *Session) error {
		_, err := sess.AddCustom(req)
		return err
	})
}

func (s *Service) DeleteCustom(ctx context.Context, ownerID int64, id, templateID string) (*Session, error) {
	return s.update(ctx, "wrapped.DeleteCustom", ownerID, id, func(sess *Session) error {
		return sess.DeleteCustom(templateID)
	})
}

func (s *Service) Reset(ctx context.Context, ownerID int64, id string) (*Session, error) {
	return s.update(ctx, "wrapped.Reset", ownerID, id, func(sess *Session) error {
		sess.Reset()
		return nil
	})
}

// Generate moves the session to generating, runs the generator over the
// owner's current entries and records the result. Only one of several
// concurrent calls gets past the state check.
func (s *Service) Generate(ctx context.Context, ownerID int64, id string) (*Session, error) {
	const op = "wrapped.Generate"
	var templates []Template
	_, err := s.update(ctx, op, ownerID, id, func(sess *Session) error {
		if err := sess.BeginGeneration(); err != nil {
			return err
		}
		templates = sess.SelectedTemplates()
		return nil
	})
	if err != nil {
		return nil, err
	}

	slides, genErr := s.generate(ctx, ownerID, templates)

	// record the outcome even if the caller has gone away
	sess, err := s.update(context.WithoutCancel(ctx), op, ownerID, id, func(sess *Session) error {
		sess.FinishGeneration(slides, genErr)
		return nil
	})
	if err != nil {
		s.logger.Error("record generation result", zap.String("session_id", id), zap.Error(err))
		return nil, err
	}
	if genErr != nil {
		return nil, genErr
	}
	return sess, nil
}

func (s *Service) generate(ctx context.Context, ownerID int64, templates []Template) ([]Slide, error) {
	entries, err := s.entries.List(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	return s.generator.Generate(ctx, entries, templates)
}

// GenerateSlides is the stateless form used by POST /api/wrapped/generate.
func (s *Service) GenerateSlides(ctx context.Context, entries []*dating.Entry, templates []Template) ([]Slide, error) {
	return s.generator.Generate(ctx, entries, templates)
}

func storeError(op string, err error) error {
	var appErr *apperr.Error
	switch {
	case errors.As(err, &appErr):
		return err
	case errors.Is(err, ErrSessionNotFound):
		return apperr.NotFound(op)
	default:
		return apperr.Storage(op, err)
	}
}
