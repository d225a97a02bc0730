package client

import (
	"context"
	"errors"
	"slices"
	"sync"

	"go.uber.org/zap"

	"github.com/imadgeboyega/datewrapped/internal/dating"
)

// EntryStore is the entry half of the API, scoped to the signed-in user.
type EntryStore interface {
	List(ctx context.Context) ([]*dating.Entry, error)
	Upsert(ctx context.Context, e *dating.Entry) (*dating.Entry, error)
	Delete(ctx context.Context, id string) error
}

type RowState int

const (
	// RowCommitted rows match what the server last confirmed.
	RowCommitted RowState = iota
	// RowPending rows have a write in flight or queued.
	RowPending
	// RowFailed rows were reverted after a failed write.
	RowFailed
)

func (s RowState) String() string {
	switch s {
	case RowPending:
		return "pending"
	case RowFailed:
		return "failed"
	}
	return "committed"
}

type row struct {
	key       int64
	current   *dating.Entry
	committed *dating.Entry
	state     RowState
	errs      map[string]error

	// fields edited since the last write was sent
	dirty    []string
	inflight bool
	removed  bool
}

// Row is a read-only snapshot of one editor row.
type Row struct {
	Key         int64
	Entry       *dating.Entry
	State       RowState
	Saved       bool
	FieldErrors map[string]string
}

// Editor is the in-memory list of entries being edited. Field edits show
// immediately and are written in the background: each row has at most one
// write in flight, later edits are folded into a single follow-up write, and
// a failed write puts the row back to its last committed value.
type Editor struct {
	store  EntryStore
	logger *zap.Logger

	mu      sync.Mutex
	rows    []*row
	nextKey int64
	lastErr error
	pending []error

	// writes counts flush goroutines; idle is closed when it drops to zero
	// while Sync waits.
	writes int
	idle   chan struct{}
}

func NewEditor(store EntryStore, logger *zap.Logger) *Editor {
	return &Editor{store: store, logger: logger.Named("editor")}
}

// Load replaces the rows with the server's list, newest first.
func (e *Editor) Load(ctx context.Context) error {
	entries, err := e.store.List(ctx)
	if err != nil {
		e.mu.Lock()
		e.lastErr = err
		e.mu.Unlock()
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.rows = make([]*row, 0, len(entries))
	for _, entry := range entries {
		e.rows = append(e.rows, e.newRow(entry))
	}
	e.lastErr = nil
	return nil
}

func (e *Editor) newRow(entry *dating.Entry) *row {
	e.nextKey++
	return &row{
		key:       e.nextKey,
		current:   entry.Clone(),
		committed: entry.Clone(),
		errs:      map[string]error{},
	}
}

// AddBlank puts a new unsaved row at the top and returns its index.
func (e *Editor) AddBlank() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	r := e.newRow(dating.NewBlank(len(e.rows)))
	e.rows = slices.Insert(e.rows, 0, r)
	return 0
}

// UpdateField sets field on the row at index and schedules the write. An
// invalid value is rejected and recorded against the field without touching
// the row. ctx only supplies values to the write; cancelling it does not
// abort a write already sent.
func (e *Editor) UpdateField(ctx context.Context, index int, field, value string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	r, err := e.rowAt(index)
	if err != nil {
		return err
	}

	next := r.current.Clone()
	if err := dating.SetField(next, field, value); err != nil {
		r.errs[field] = err
		return err
	}
	delete(r.errs, field)

	unchanged := dating.FieldEqual(next, r.current, field)
	if unchanged && (r.current.Identified() || r.inflight) {
		return nil
	}

	r.current = next
	if !slices.Contains(r.dirty, field) {
		r.dirty = append(r.dirty, field)
	}
	r.state = RowPending
	if !r.inflight {
		r.inflight = true
		e.writes++
		go e.flush(context.WithoutCancel(ctx), r)
	}
	return nil
}

// flush writes r until no edits are left. It owns the row's in-flight slot.
func (e *Editor) flush(ctx context.Context, r *row) {
	defer e.writeDone()

	for {
		e.mu.Lock()
		if r.removed {
			r.inflight = false
			e.mu.Unlock()
			return
		}
		snapshot := r.current.Clone()
		batch := r.dirty
		r.dirty = nil
		e.mu.Unlock()

		saved, err := e.store.Upsert(ctx, snapshot)

		e.mu.Lock()
		if r.removed {
			r.inflight = false
			e.mu.Unlock()
			// the row was removed while its insert was in flight
			if err == nil && !snapshot.Identified() {
				e.deleteOrphan(ctx, saved.ID)
			}
			return
		}

		if err != nil {
			e.fail(r, append(batch, r.dirty...), err)
			e.mu.Unlock()
			return
		}

		r.committed = saved.Clone()
		merged := saved.Clone()
		for _, f := range r.dirty {
			dating.CopyField(merged, r.current, f)
		}
		r.current = merged
		for _, f := range batch {
			delete(r.errs, f)
		}

		if len(r.dirty) == 0 {
			r.inflight = false
			r.state = RowCommitted
			e.mu.Unlock()
			return
		}
		e.mu.Unlock()
	}
}

func (e *Editor) writeDone() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.writes--
	if e.writes == 0 && e.idle != nil {
		close(e.idle)
		e.idle = nil
	}
}

// fail reverts r to its committed value. Called with e.mu held.
func (e *Editor) fail(r *row, fields []string, err error) {
	r.current = r.committed.Clone()
	r.dirty = nil
	r.inflight = false
	r.state = RowFailed
	for _, f := range fields {
		r.errs[f] = err
	}
	e.lastErr = err
	e.pending = append(e.pending, err)
	e.logger.Warn("entry write failed", zap.Int64("row", r.key), zap.Strings("fields", fields), zap.Error(err))
}

func (e *Editor) deleteOrphan(ctx context.Context, id string) {
	if err := e.store.Delete(ctx, id); err != nil {
		e.mu.Lock()
		e.lastErr = err
		e.pending = append(e.pending, err)
		e.mu.Unlock()
		e.logger.Warn("delete removed row", zap.String("id", id), zap.Error(err))
	}
}

// RemoveAt drops the row at index. Saved rows are deleted on the server; a
// row whose first write is still in flight is deleted once that write
// returns. Unsaved rows never reach the server.
func (e *Editor) RemoveAt(ctx context.Context, index int) error {
	e.mu.Lock()
	r, err := e.rowAt(index)
	if err != nil {
		e.mu.Unlock()
		return err
	}
	e.rows = slices.Delete(e.rows, index, index+1)
	r.removed = true
	id := r.committed.ID
	e.mu.Unlock()

	if id == "" {
		return nil
	}
	if err := e.store.Delete(ctx, id); err != nil {
		e.mu.Lock()
		e.lastErr = err
		e.mu.Unlock()
		return err
	}
	return nil
}

// Sync waits until no write is in flight and returns the write failures
// seen since the previous Sync. It may run alongside UpdateField; writes
// started while it waits are waited for as well.
func (e *Editor) Sync(ctx context.Context) error {
	e.mu.Lock()
	if e.writes > 0 {
		if e.idle == nil {
			e.idle = make(chan struct{})
		}
		idle := e.idle
		e.mu.Unlock()

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-idle:
		}
		e.mu.Lock()
	}
	defer e.mu.Unlock()
	err := errors.Join(e.pending...)
	e.pending = nil
	return err
}

func (e *Editor) Len() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.rows)
}

// Rows returns a snapshot of every row in display order.
func (e *Editor) Rows() []Row {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]Row, 0, len(e.rows))
	for _, r := range e.rows {
		out = append(out, r.snapshot())
	}
	return out
}

func (e *Editor) Row(index int) (Row, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	r, err := e.rowAt(index)
	if err != nil {
		return Row{}, err
	}
	return r.snapshot(), nil
}

// IndexOf finds the row holding the entry with id.
func (e *Editor) IndexOf(id string) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return slices.IndexFunc(e.rows, func(r *row) bool { return r.current.ID == id })
}

// LastError is the most recent failed operation, if any.
func (e *Editor) LastError() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.lastErr
}

func (e *Editor) rowAt(index int) (*row, error) {
	if index < 0 || index >= len(e.rows) {
		return nil, ErrNoSuchRow
	}
	return e.rows[index], nil
}

var ErrNoSuchRow = errors.New("no such row")

func (r *row) snapshot() Row {
	errs := make(map[string]string, len(r.errs))
	for f, err := range r.errs {
		errs[f] = err.Error()
	}
	return Row{
		Key:         r.key,
		Entry:       r.current.Clone(),
		State:       r.state,
		Saved:       r.committed.Identified(),
		FieldErrors: errs,
	}
}
