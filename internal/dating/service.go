package dating

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/imadgeboyega/datewrapped/internal/common/apperr"
)

// Service is the owner-scoped entry API used by handlers and stats.
type Service interface {
	List(ctx context.Context, ownerID int64) ([]*Entry, error)
	// Upsert inserts e when it has no id and otherwise overwrites every
	// mutable field of the stored row.
	Upsert(ctx context.Context, ownerID int64, e *Entry) (*Entry, error)
	Delete(ctx context.Context, ownerID int64, id string) error
}

type service struct {
	repo   Repository
	logger *zap.Logger
}

func NewService(repo Repository, logger *zap.Logger) Service {
	return &service{repo: repo, logger: logger.Named("dating")}
}

func (s *service) List(ctx context.Context, ownerID int64) ([]*Entry, error) {
	if ownerID == 0 {
		return nil, apperr.Auth("dating.List")
	}

	start := time.Now()
	entries, err := s.repo.List(ctx, ownerID)
	recordOp("list", start, err)
	if err != nil {
		s.logger.Error("list entries", zap.Int64("owner_id", ownerID), zap.Error(err))
		return nil, apperr.Storage("dating.List", err)
	}
	for _, e := range entries {
		e.Normalize()
	}
	return entries, nil
}

func (s *service) Upsert(ctx context.Context, ownerID int64, e *Entry) (*Entry, error) {
	if ownerID == 0 {
		return nil, apperr.Auth("dating.Upsert")
	}

	out := e.Clone()
	out.OwnerID = ownerID
	out.Normalize()
	if err := out.Validate(); err != nil {
		return nil, err
	}

	op := "update"
	if !out.Identified() {
		op = "insert"
	} else if _, err := uuid.Parse(out.ID); err != nil {
		return nil, apperr.NotFound("dating.Upsert")
	}

	start := time.Now()
	var err error
	if op == "insert" {
		err = s.repo.Insert(ctx, out)
	} else {
		err = s.repo.Update(ctx, out)
	}
	recordOp(op, start, err)

	switch {
	case errors.Is(err, ErrEntryNotFound):
		return nil, apperr.NotFound("dating.Upsert")
	case err != nil:
		s.logger.Error("upsert entry", zap.String("op", op), zap.Int64("owner_id", ownerID), zap.Error(err))
		return nil, apperr.Storage("dating.Upsert", err)
	}

	s.logger.Debug("entry stored", zap.String("op", op), zap.String("id", out.ID))
	return out, nil
}

func (s *service) Delete(ctx context.Context, ownerID int64, id string) error {
	if ownerID == 0 {
		return apperr.Auth("dating.Delete")
	}
	if _, err := uuid.Parse(id); err != nil {
		return apperr.Validation("dating.Delete", "id", "id must be a UUID")
	}

	start := time.Now()
	err := s.repo.Delete(ctx, ownerID, id)
	recordOp("delete", start, err)
	if err != nil {
		s.logger.Error("delete entry", zap.String("id", id), zap.Error(err))
		return apperr.Storage("dating.Delete", err)
	}
	return nil
}
