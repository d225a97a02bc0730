package stats

import (
	"context"

	"github.com/imadgeboyega/datewrapped/internal/dating"
)

// EntryLister is the part of the entry service stats reads from.
type EntryLister interface {
	List(ctx context.Context, ownerID int64) ([]*dating.Entry, error)
}

type Service struct {
	entries EntryLister
}

func NewService(entries EntryLister) *Service {
	return &Service{entries: entries}
}

// Summary recomputes the owner's figures from the current entry list.
func (s *Service) Summary(ctx context.Context, ownerID int64) (*Summary, error) {
	entries, err := s.entries.List(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	return Aggregate(entries), nil
}
