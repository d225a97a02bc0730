package dating

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
)

var entryCols = []string{
	"id", "owner_id", "person_name", "platform", "num_dates", "total_cost", "avg_duration",
	"rating", "hotness", "outcome", "occupation", "age", "relationship_status", "status",
	"red_flags", "green_flags", "notes", "created_at",
}

func newRepoWithMock(t *testing.T) (Repository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, mock.ExpectationsWereMet())
		db.Close()
	})
	return NewPostgresRepository(sqlx.NewDb(db, "sqlmock")), mock
}

func TestRepositoryList(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	now := time.Now()

	mock.ExpectQuery(`(?s)SELECT .* FROM dating_entries\s+WHERE owner_id = \$1\s+ORDER BY created_at DESC`).
		WithArgs(int64(9)).
		WillReturnRows(sqlmock.NewRows(entryCols).
			AddRow("b", 9, "Bo", "Hinge", 2, 40.0, 1.5, 4, 7, "Ongoing", "", nil, "Single", "Active", "{late}", "{}", "", now).
			AddRow("a", 9, "Al", "IRL", 1, 0.0, 0.0, 0, nil, "Ghosted", "", 30, "Single", "Active", "{}", "{kind}", "", now.Add(-time.Hour)))

	entries, err := repo.List(context.Background(), 9)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	require.Equal(t, "Bo", entries[0].PersonName)
	require.Equal(t, 7, *entries[0].Hotness)
	require.Equal(t, []string{"late"}, []string(entries[0].RedFlags))
	require.Nil(t, entries[1].Hotness)
	require.Equal(t, 30, *entries[1].Age)
}

func TestRepositoryInsertAssignsID(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	created := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`(?s)INSERT INTO dating_entries .*hotness_scale.* VALUES \(.*, 10, .*\)\s+RETURNING created_at`).
		WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(created))

	e := NewBlank(0)
	e.OwnerID = 9
	require.NoError(t, repo.Insert(context.Background(), e))
	require.True(t, e.Identified())
	require.Equal(t, created, e.CreatedAt)
}

func TestRepositoryUpdateMissingRow(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(`(?s)UPDATE dating_entries SET .* WHERE id = \$1 AND owner_id = \$2`).
		WillReturnError(sql.ErrNoRows)

	e := NewBlank(0)
	e.ID = "0b6a7c5e-2f71-4f43-9a39-6f0c1a2b3c4d"
	e.OwnerID = 9
	err := repo.Update(context.Background(), e)
	require.ErrorIs(t, err, ErrEntryNotFound)
}

func TestRepositoryDelete(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectExec(`DELETE FROM dating_entries WHERE id = \$1 AND owner_id = \$2`).
		WithArgs("x", int64(9)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(`DELETE FROM dating_entries`).
		WillReturnError(errors.New("connection reset"))

	require.NoError(t, repo.Delete(context.Background(), 9, "x"))
	require.Error(t, repo.Delete(context.Background(), 9, "y"))
}
