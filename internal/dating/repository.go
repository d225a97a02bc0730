package dating

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

var ErrEntryNotFound = errors.New("entry not found")

// Repository stores entries. Every statement is scoped to one owner.
type Repository interface {
	List(ctx context.Context, ownerID int64) ([]*Entry, error)
	Insert(ctx context.Context, e *Entry) error
	Update(ctx context.Context, e *Entry) error
	Delete(ctx context.Context, ownerID int64, id string) error
}

const entryColumns = `id, owner_id, person_name, platform, num_dates, total_cost, avg_duration,
       rating, hotness, outcome, occupation, age, relationship_status, status,
       red_flags, green_flags, notes, created_at`

type postgresRepository struct {
	db *sqlx.DB
}

func NewPostgresRepository(db *sqlx.DB) Repository {
	return &postgresRepository{db: db}
}

func (r *postgresRepository) List(ctx context.Context, ownerID int64) ([]*Entry, error) {
	entries := []*Entry{}
	query := `
        SELECT ` + entryColumns + `
        FROM dating_entries
        WHERE owner_id = $1
        ORDER BY created_at DESC`

	if err := r.db.SelectContext(ctx, &entries, query, ownerID); err != nil {
		return nil, err
	}
	return entries, nil
}

// Insert assigns a fresh id and stores e. created_at comes back from the
// database.
func (r *postgresRepository) Insert(ctx context.Context, e *Entry) error {
	query := `
        INSERT INTO dating_entries (
            id, owner_id, person_name, platform, num_dates, total_cost, avg_duration,
            rating, hotness, hotness_scale, outcome, occupation, age, relationship_status,
            status, red_flags, green_flags, notes
        ) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, 10, $10, $11, $12, $13, $14, $15, $16, $17)
        RETURNING created_at`

	id := uuid.NewString()
	err := r.db.QueryRowxContext(
		ctx, query,
		id, e.OwnerID, e.PersonName, e.Platform, e.NumDates, e.TotalCost, e.AvgDuration,
		e.Rating, e.Hotness, e.Outcome, e.Occupation, e.Age, e.RelationshipStatus,
		e.Status, e.RedFlags, e.GreenFlags, e.Notes,
	).Scan(&e.CreatedAt)
	if err != nil {
		return err
	}
	e.ID = id
	return nil
}

// Update overwrites every mutable column of the row keyed by (id, owner).
func (r *postgresRepository) Update(ctx context.Context, e *Entry) error {
	query := `
        UPDATE dating_entries SET
            person_name = $3, platform = $4, num_dates = $5, total_cost = $6,
            avg_duration = $7, rating = $8, hotness = $9, hotness_scale = 10, outcome = $10,
            occupation = $11, age = $12, relationship_status = $13, status = $14,
            red_flags = $15, green_flags = $16, notes = $17
        WHERE id = $1 AND owner_id = $2
        RETURNING created_at`

	err := r.db.QueryRowxContext(
		ctx, query,
		e.ID, e.OwnerID, e.PersonName, e.Platform, e.NumDates, e.TotalCost,
		e.AvgDuration, e.Rating, e.Hotness, e.Outcome,
		e.Occupation, e.Age, e.RelationshipStatus, e.Status,
		e.RedFlags, e.GreenFlags, e.Notes,
	).Scan(&e.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrEntryNotFound
	}
	return err
}

// Delete removes the row if it exists. A missing row is not an error.
func (r *postgresRepository) Delete(ctx context.Context, ownerID int64, id string) error {
	query := `DELETE FROM dating_entries WHERE id = $1 AND owner_id = $2`
	_, err := r.db.ExecContext(ctx, query, id, ownerID)
	return err
}
